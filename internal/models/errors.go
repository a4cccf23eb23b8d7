package models

import "errors"

// Application-wide standard errors
var (
	// Common resource/DB errors
	ErrNotFound      = errors.New("resource not found")
	ErrStoryNotFound = errors.New("story not found")

	// User & authentication errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	// Token errors
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")

	// Pipeline errors
	ErrContentUnsafe         = errors.New("prompt contains unsafe content")
	ErrQuotaExceeded         = errors.New("daily story quota exceeded")
	ErrInvalidMode           = errors.New("operation not valid for story mode")
	ErrGenerationFailed      = errors.New("story generation failed")
	ErrMalformedResponse     = errors.New("malformed generation response")
	ErrImageGenerationFailed = errors.New("image generation failed")

	// Persistence conflicts
	ErrChapterNumberConflict = errors.New("chapter number already taken for this story")

	// General request/server errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
