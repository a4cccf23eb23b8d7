package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"imagibox-server/internal/models"
)

// @Summary Register a parent account
// @Description Creates a new parent account and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterParentRequest true "Registration data"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse "Invalid request data"
// @Failure 409 {object} models.ErrorResponse "Username already taken"
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var req models.RegisterParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	resp, err := h.auth.RegisterParent(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Log in
// @Description Authenticates a parent or kid account and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Create a kid account
// @Description Creates a kid account linked to the calling parent
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.CreateKidRequest true "Kid account data"
// @Success 201 {object} models.AuthResponse
// @Failure 403 {object} models.ErrorResponse "Caller is not a parent"
// @Failure 409 {object} models.ErrorResponse "Username already taken"
// @Security BearerAuth
// @Router /auth/kids [post]
func (h *Handler) createKid(c *gin.Context) {
	parentID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	var req models.CreateKidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	resp, err := h.auth.CreateKid(c.Request.Context(), parentID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary List the caller's kid accounts
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "kids"
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/kids [get]
func (h *Handler) listKids(c *gin.Context) {
	parentID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	kids, err := h.auth.ListKids(c.Request.Context(), parentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kids": kids})
}

// @Summary Get the current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	resp, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
