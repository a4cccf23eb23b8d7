package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"imagibox-server/internal/models"
)

const (
	ctxUserIDKey = "user_id"
	ctxRoleKey   = "user_role"
)

// AuthMiddleware verifies the Bearer token and stores the caller's identity
// on the request context. Identity is always passed explicitly from here
// on; nothing downstream reads ambient auth state.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			zap.L().Warn("Invalid Authorization header format")
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		claims, err := h.auth.ValidateToken(parts[1])
		if err != nil {
			zap.L().Warn("Access token verification failed", zap.Error(err))
			handleServiceError(c, err)
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxRoleKey, claims.Role)
		c.Next()
	}
}

// currentUserID returns the authenticated caller's ID set by AuthMiddleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(ctxUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
