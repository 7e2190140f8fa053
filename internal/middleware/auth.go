package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicavet/vet-scheduler/internal/auth"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
	"github.com/clinicavet/vet-scheduler/internal/session"
)

const (
	ContextUser         = "currentUser"
	ContextSessionToken = "sessionToken"
)

// AuthMiddleware resolves the acting user from the session cookie, falling
// back to a bearer JWT so API clients without cookies keep working.
func AuthMiddleware(sessions session.Store, authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(session.CookieName); err == nil && token != "" {
			user, err := sessions.Get(c.Request.Context(), token)
			if err != nil {
				httperr.Abort(c, httperr.Internal(err))
				return
			}
			if user != nil {
				c.Set(ContextUser, *user)
				c.Set(ContextSessionToken, token)
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httperr.Abort(c, httperr.Unauthorized("invalid authorization header"))
				return
			}
			user, err := authSvc.ParseToken(parts[1])
			if err != nil {
				httperr.Abort(c, err)
				return
			}
			c.Set(ContextUser, *user)
			c.Next()
			return
		}

		httperr.Abort(c, httperr.Unauthorized("not authenticated"))
	}
}

// RequireRoles guards routes restricted to the given roles. Must run after
// AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			httperr.Abort(c, httperr.Unauthorized("not authenticated"))
			return
		}
		if !auth.HasRole(user, roles...) {
			httperr.Abort(c, httperr.Forbidden("access denied"))
			return
		}
		c.Next()
	}
}

func UserFromContext(c *gin.Context) (models.UserView, bool) {
	val, exists := c.Get(ContextUser)
	if !exists {
		return models.UserView{}, false
	}
	user, ok := val.(models.UserView)
	return user, ok
}
