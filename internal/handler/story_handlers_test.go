package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces/mocks"
	"imagibox-server/internal/models"
	"imagibox-server/internal/service"
)

func newListStoriesHandler(stories *mocks.MockStoryRepository) *Handler {
	svc := service.NewStoryService(service.StoryServiceDeps{
		Stories:  stories,
		Chapters: new(mocks.MockChapterRepository),
	}, zap.NewNop())
	return New(nil, svc, nil, zap.NewNop())
}

func TestListStories_OversizedPageSizeClampedBeforeOffset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stories := new(mocks.MockStoryRepository)
	h := newListStoriesHandler(stories)
	userID := uuid.New()

	// size=1000 clamps to the default of 20, so page 1 starts at offset 20
	// rather than offset 1000.
	stories.On("ListByUser", mock.Anything, userID, 20, 20).
		Return([]models.Story{}, nil).Once()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/stories?size=1000&page=1", nil)
	c.Set(ctxUserIDKey, userID)

	h.listStories(c)

	assert.Equal(t, http.StatusOK, w.Code)
	stories.AssertExpectations(t)
}

func TestListStories_NegativePageTreatedAsFirst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stories := new(mocks.MockStoryRepository)
	h := newListStoriesHandler(stories)
	userID := uuid.New()

	stories.On("ListByUser", mock.Anything, userID, 20, 0).
		Return([]models.Story{}, nil).Once()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/stories?page=-3", nil)
	c.Set(ctxUserIDKey, userID)

	h.listStories(c)

	assert.Equal(t, http.StatusOK, w.Code)
	stories.AssertExpectations(t)
}
