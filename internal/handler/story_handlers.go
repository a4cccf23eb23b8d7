package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"imagibox-server/internal/models"
)

// 5 MB is plenty for a kid's sketch.
const maxSketchBytes = 5 << 20

// parseGenerateRequest reads the multipart "request" JSON part and the
// optional "sketch" file.
func parseGenerateRequest(c *gin.Context) (models.GenerateStoryRequest, []byte, error) {
	var req models.GenerateStoryRequest

	requestPart := c.PostForm("request")
	if requestPart == "" {
		return req, nil, models.ErrBadRequest
	}
	if err := json.Unmarshal([]byte(requestPart), &req); err != nil {
		return req, nil, models.ErrBadRequest
	}
	if req.Prompt == "" {
		return req, nil, models.ErrInvalidInput
	}

	fileHeader, err := c.FormFile("sketch")
	if err != nil {
		// Sketch is optional.
		return req, nil, nil
	}
	if fileHeader.Size > maxSketchBytes {
		return req, nil, models.ErrInvalidInput
	}

	file, err := fileHeader.Open()
	if err != nil {
		return req, nil, models.ErrBadRequest
	}
	defer file.Close()

	sketch, err := io.ReadAll(io.LimitReader(file, maxSketchBytes+1))
	if err != nil || len(sketch) > maxSketchBytes {
		return req, nil, models.ErrBadRequest
	}
	return req, sketch, nil
}

// @Summary Generate a complete story
// @Description Runs the full pipeline and returns a finished single-chapter story
// @Tags stories
// @Accept multipart/form-data
// @Produce json
// @Param request formData string true "JSON with prompt and mood"
// @Param sketch formData file false "Optional kid's sketch, max 5 MB"
// @Success 201 {object} models.StoryResponse
// @Failure 400 {object} models.ErrorResponse "Unsafe or invalid prompt"
// @Failure 429 {object} models.ErrorResponse "Daily quota exhausted"
// @Security BearerAuth
// @Router /stories/generate-one-shot [post]
func (h *Handler) generateOneShot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	req, sketch, err := parseGenerateRequest(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp, err := h.stories.GenerateOneShot(c.Request.Context(), userID, req, sketch)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Start an interactive story
// @Description Generates chapter 1 of a story the child extends with choices
// @Tags stories
// @Accept multipart/form-data
// @Produce json
// @Param request formData string true "JSON with prompt and mood"
// @Param sketch formData file false "Optional kid's sketch, max 5 MB"
// @Success 201 {object} models.StoryResponse
// @Failure 400 {object} models.ErrorResponse "Unsafe or invalid prompt"
// @Failure 429 {object} models.ErrorResponse "Daily quota exhausted"
// @Security BearerAuth
// @Router /stories/generate-interactive [post]
func (h *Handler) generateInteractive(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	req, sketch, err := parseGenerateRequest(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp, err := h.stories.GenerateInteractive(c.Request.Context(), userID, req, sketch)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Continue an interactive story
// @Description Generates the next chapter from the child's choice
// @Tags stories
// @Accept json
// @Produce json
// @Param id path string true "Story ID"
// @Param request body models.NextChapterRequest true "Selected choice"
// @Success 201 {object} models.ChapterResponse
// @Failure 400 {object} models.ErrorResponse "Story is not interactive"
// @Failure 403 {object} models.ErrorResponse "Story belongs to another user"
// @Failure 404 {object} models.ErrorResponse "Story not found"
// @Security BearerAuth
// @Router /stories/{id}/chapters/next [post]
func (h *Handler) continueChapter(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleServiceError(c, models.ErrStoryNotFound)
		return
	}

	var req models.NextChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrBadRequest)
		return
	}

	resp, err := h.stories.ContinueChapter(c.Request.Context(), userID, storyID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary List the caller's stories
// @Tags stories
// @Produce json
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size, max 100" default(20)
// @Success 200 {object} map[string]interface{} "stories, page, size"
// @Security BearerAuth
// @Router /stories [get]
func (h *Handler) listStories(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	// Clamp before computing the offset so an oversized size query cannot
	// skip rows once the page size is normalized downstream.
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 0 {
		page = 0
	}

	stories, err := h.stories.ListStories(c.Request.Context(), userID, limit, page*limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories, "page": page, "size": limit})
}

// @Summary Get a story with its chapters
// @Tags stories
// @Produce json
// @Param id path string true "Story ID"
// @Success 200 {object} models.StoryResponse
// @Failure 403 {object} models.ErrorResponse "Story belongs to another user"
// @Failure 404 {object} models.ErrorResponse "Story not found"
// @Security BearerAuth
// @Router /stories/{id} [get]
func (h *Handler) getStory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleServiceError(c, models.ErrStoryNotFound)
		return
	}

	resp, err := h.stories.GetStory(c.Request.Context(), userID, storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a story
// @Description Deletes the story and cascades to its chapters
// @Tags stories
// @Param id path string true "Story ID"
// @Success 204 "Deleted"
// @Failure 403 {object} models.ErrorResponse "Story belongs to another user"
// @Failure 404 {object} models.ErrorResponse "Story not found"
// @Security BearerAuth
// @Router /stories/{id} [delete]
func (h *Handler) deleteStory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleServiceError(c, models.ErrStoryNotFound)
		return
	}

	if err := h.stories.DeleteStory(c.Request.Context(), userID, storyID); err != nil {
		handleServiceError(c, err)
		return
	}

	zap.L().Info("Story deleted via API", zap.String("storyID", storyID.String()))
	c.Status(http.StatusNoContent)
}

// @Summary Get today's remaining generation quota
// @Tags quota
// @Produce json
// @Success 200 {object} map[string]interface{} "remaining"
// @Security BearerAuth
// @Router /quota/remaining [get]
func (h *Handler) remainingQuota(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	remaining, err := h.stories.RemainingQuota(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}
