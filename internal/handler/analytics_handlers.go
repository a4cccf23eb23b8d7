package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"imagibox-server/internal/models"
)

// @Summary Parent dashboard
// @Description Aggregated story activity across the caller's kid accounts
// @Tags analytics
// @Produce json
// @Success 200 {object} models.DashboardResponse
// @Failure 403 {object} models.ErrorResponse "Caller is not a parent"
// @Security BearerAuth
// @Router /analytics/dashboard [get]
func (h *Handler) dashboard(c *gin.Context) {
	parentID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	resp, err := h.analytics.Dashboard(c.Request.Context(), parentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Mood distribution across the caller's kids
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]interface{} "moodDistribution"
// @Failure 403 {object} models.ErrorResponse "Caller is not a parent"
// @Security BearerAuth
// @Router /analytics/mood-distribution [get]
func (h *Handler) moodDistribution(c *gin.Context) {
	parentID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	distribution, err := h.analytics.MoodDistribution(c.Request.Context(), parentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moodDistribution": distribution})
}
