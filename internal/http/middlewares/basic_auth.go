package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/dmunozv/crudhub/internal/security"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type CredentialChecker interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type AuthMiddleware struct {
	users CredentialChecker
}

func NewAuthMiddleware(users CredentialChecker) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

const (
	ctxUserIDKey = "auth.userID"
	ctxEmailKey  = "auth.email"
	ctxRoleKey   = "auth.role"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Basic realm="crudhub"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// RequireAuth authenticates every request with HTTP basic credentials
// against the stored bcrypt hash, then stashes the principal on the
// gin context for handlers to resolve.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()

		if !ok || email == "" {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		u, err := m.users.GetByEmail(ctx, email)

		if err != nil {
			// same response for unknown email and bad password
			abortUnauthorized(c, "Invalid credentials")
			return
		}

		if err := security.CheckPassword(u.PasswordHash, password); err != nil {
			abortUnauthorized(c, "Invalid credentials")
			return
		}

		// Stash useful bits of identity on the context
		c.Set(ctxUserIDKey, u.ID)
		c.Set(ctxEmailKey, u.Email)
		c.Set(ctxRoleKey, u.Role)

		c.Next()
	}
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxEmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
