// Package handler exposes the story pipeline over HTTP with gin.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"imagibox-server/internal/models"
)

// Child-facing rejection messages stay friendly; internal failures never
// leak model output or stack traces.
const (
	msgContentUnsafe = "Hình như nội dung này không phù hợp cho bé. Hãy thử ý tưởng khác nhé! 🌈"
	msgQuotaExceeded = "Hôm nay bé đã tạo đủ số truyện rồi! Hãy quay lại vào ngày mai nhé! 🌟"
	msgGeneric       = "Có lỗi xảy ra. Vui lòng thử lại sau!"
)

func errorResponse(status int, message string) models.ErrorResponse {
	return models.ErrorResponse{
		Message: message,
		Status:  status,
		Time:    time.Now(),
	}
}

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, models.ErrContentUnsafe):
		statusCode = http.StatusBadRequest
		message = msgContentUnsafe
	case errors.Is(err, models.ErrQuotaExceeded):
		statusCode = http.StatusTooManyRequests
		message = msgQuotaExceeded
	case errors.Is(err, models.ErrStoryNotFound), errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Story not found"
	case errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "User not found"
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "You do not have access to this resource"
	case errors.Is(err, models.ErrInvalidMode):
		statusCode = http.StatusBadRequest
		message = "Only interactive stories can have multiple chapters"
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "Invalid username or password"
	case errors.Is(err, models.ErrUserAlreadyExists):
		statusCode = http.StatusConflict
		message = "Username already exists"
	case errors.Is(err, models.ErrTokenInvalid):
		statusCode = http.StatusUnauthorized
		message = "Token is invalid or malformed"
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		message = "Token has expired"
	case errors.Is(err, models.ErrGenerationFailed),
		errors.Is(err, models.ErrMalformedResponse),
		errors.Is(err, models.ErrChapterNumberConflict):
		zap.L().Error("Generation pipeline failed", zap.Error(err))
		statusCode = http.StatusServiceUnavailable
		message = msgGeneric
	case errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = msgGeneric
	}

	c.AbortWithStatusJSON(statusCode, errorResponse(statusCode, message))
}
