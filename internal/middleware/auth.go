package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

const (
	ContextUserID   = "userID"
	ContextClinicID = "clinicID"
	ContextEmail    = "email"
	ContextRole     = "role"
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token and puts the caller's identity in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperrors.Unauthorized(nil), "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, apperrors.Unauthorized(nil), "invalid authorization format")
			return
		}

		claims, err := m.tokens.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			abort(c, apperrors.Unauthorized(err), "invalid token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextClinicID, claims.ClinicID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole admits only the listed roles. It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, apperrors.Forbidden("dashboard access is limited to dentists"))
		c.Abort()
	}
}

func UserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

func ClinicID(c *gin.Context) int64 {
	return c.GetInt64(ContextClinicID)
}

func abort(c *gin.Context, err *apperrors.AppError, message string) {
	err.Message = message
	httputil.RespondWithError(c, err)
	c.Abort()
}
