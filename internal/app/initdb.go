package app

import (
	"strings"

	"go.uber.org/zap"
)

// checkAuthUsers warns about operator entries that cannot sign in.
func (a *Application) checkAuthUsers() {
	users := a.appConfig.Auth.Users
	if len(users) == 0 {
		zap.L().Warn("no operators configured, admin routes are unreachable")
		return
	}
	admins := 0
	for _, u := range users {
		switch {
		case strings.TrimSpace(u.Username) == "":
			zap.L().Warn("operator without username ignored")
		case !strings.HasPrefix(u.PasswordHash, "$2"):
			zap.L().Warn("operator password is not a bcrypt hash", zap.String("username", u.Username))
		case strings.EqualFold(u.Role, "admin"):
			admins++
		}
	}
	if admins == 0 {
		zap.L().Warn("no operator has the admin role")
	}
	if a.appConfig.Web.Secret == "" {
		zap.L().Warn("web.secret is empty, tokens cannot be issued")
	}
}
