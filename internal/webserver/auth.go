package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	UserContextKey = "user"

	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Claims carried by admin API tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated operator of a request.
type Principal struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IssueToken signs an HS256 token for username.
func IssueToken(secret string, ttl time.Duration, username, role string) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("token secret is not configured")
	}
	now := time.Now()
	expires := now.Add(ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			Issuer:    "catalogd",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, expires, nil
}

func parseToken(secret, raw string) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token, nil
}

// authMiddleware rejects requests without a valid bearer token.
func authMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: UserContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return parseToken(secret, auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token missing or invalid").SetInternal(err)
		},
	})
}

// requireRole must run after authMiddleware.
func requireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
			}
			for _, r := range roles {
				if strings.EqualFold(p.Role, r) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
	}
}

// CurrentPrincipal returns the operator authenticated for c.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	token, ok := c.Get(UserContextKey).(*jwt.Token)
	if !ok {
		return Principal{}, false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Principal{}, false
	}
	return Principal{Username: claims.Subject, Role: claims.Role}, true
}
