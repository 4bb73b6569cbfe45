package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/verdantlabs/catalogd/config"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginPayload struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type loginResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      webserver.Principal `json:"user"`
}

func registerAuthRoutes(srv *webserver.AdminServer) {
	srv.ApiPOST("/auth/login", login)
	srv.ApiGET("/auth/me", currentUser, srv.Auth())
}

func findAuthUser(users []config.AuthUser, username string) (config.AuthUser, bool) {
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return config.AuthUser{}, false
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	cfg := GetAppContext(c).Config()
	user, found := findAuthUser(cfg.Auth.Users, payload.Username)
	if !found || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		zap.L().Warn("login failed", zap.String("username", payload.Username), zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil)
	}

	role := strings.ToLower(user.Role)
	if role == "" {
		role = webserver.RoleEditor
	}
	token, expires, err := webserver.IssueToken(cfg.Web.Secret, cfg.Web.TokenTTL, user.Username, role)
	if err != nil {
		return serverError(c, err, "failed to issue token")
	}
	zap.L().Info("operator signed in", zap.String("username", user.Username), zap.String("role", role))
	return ok(c, loginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      webserver.Principal{Username: user.Username, Role: role},
	})
}

func currentUser(c echo.Context) error {
	p, found := webserver.CurrentPrincipal(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized", nil)
	}
	return ok(c, p)
}
