package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/pkg/apperrors"
	"github.com/yigit/unitime/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// JWTAuth validates the bearer token and stores the caller's identity in the
// request context.
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			HandleAPIError(c, apperrors.ErrInvalidFormat)
			return
		}

		claims, err := jwtService.ValidateAndExtractClaims(token)
		if err != nil {
			if err == auth.ErrExpiredToken {
				HandleAPIError(c, apperrors.ErrTokenExpired)
				return
			}
			HandleAPIError(c, apperrors.ErrTokenInvalid)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, models.RoleType(claims.RoleType))
		c.Next()
	}
}

// RoleRequired rejects callers whose role is not in the allowed set.
// Must run after JWTAuth.
func RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CallerRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		HandleAPIError(c, apperrors.NewForbiddenError("insufficient role for this operation"))
	}
}

// CallerID returns the authenticated user's id, or 0 when unauthenticated
func CallerID(c *gin.Context) int64 {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// CallerRole returns the authenticated user's role
func CallerRole(c *gin.Context) models.RoleType {
	if v, ok := c.Get(ContextUserRole); ok {
		if role, ok := v.(models.RoleType); ok {
			return role
		}
	}
	return ""
}

// IsAdmin reports whether the caller has the admin role
func IsAdmin(c *gin.Context) bool {
	return CallerRole(c) == models.RoleAdmin
}
