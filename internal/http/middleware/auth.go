package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estol/auth-service/internal/http/response"
	"github.com/estol/auth-service/internal/pkg/authctx"
	"github.com/estol/auth-service/internal/pkg/logger"
	"github.com/estol/auth-service/internal/services"
)

const sessionCookie = "sid"

type AuthMiddleware struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewAuthMiddleware(log *logger.Logger, sessions services.SessionService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), sessions: sessions}
}

// RequireAuth resolves the session cookie to a principal and attaches it to
// the request context. Any failure, missing cookie or stale token alike, is
// a single uniform 401.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Envelope{
				Success: false, Message: "unauthorized",
			})
			return
		}
		u, err := am.sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			am.log.Debug("Session resolution failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Envelope{
				Success: false, Message: "unauthorized",
			})
			return
		}
		c.Request = c.Request.WithContext(authctx.WithPrincipal(c.Request.Context(), u))
		c.Next()
	}
}
