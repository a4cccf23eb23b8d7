package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces/mocks"
	"imagibox-server/internal/models"
	"imagibox-server/internal/safety"
	"imagibox-server/pkg/taskmanager"
)

type storyServiceFixture struct {
	stories  *mocks.MockStoryRepository
	chapters *mocks.MockChapterRepository
	users    *mocks.MockUserRepository
	quota    *mocks.MockQuotaLedger
	textGen  *mocks.MockTextGenerator
	images   *mocks.MockImageSynthesizer
	tasks    *taskmanager.Manager
	svc      *StoryService
}

func newStoryServiceFixture(t *testing.T) *storyServiceFixture {
	t.Helper()

	gate, err := safety.NewGate(nil, zap.NewNop())
	require.NoError(t, err)

	f := &storyServiceFixture{
		stories:  &mocks.MockStoryRepository{},
		chapters: &mocks.MockChapterRepository{},
		users:    &mocks.MockUserRepository{},
		quota:    &mocks.MockQuotaLedger{},
		textGen:  &mocks.MockTextGenerator{},
		images:   &mocks.MockImageSynthesizer{},
		tasks:    taskmanager.New(taskmanager.Config{MaxTasks: 4}),
	}
	t.Cleanup(f.tasks.Close)

	f.svc = NewStoryService(StoryServiceDeps{
		Stories:          f.stories,
		Chapters:         f.chapters,
		MoodTags:         &mocks.MockMoodTagRepository{},
		Users:            f.users,
		Quota:            f.quota,
		TextGen:          f.textGen,
		Images:           f.images,
		Gate:             gate,
		Tasks:            f.tasks,
		ImageWaitTimeout: 2 * time.Second,
	}, zap.NewNop())
	return f
}

func testUser(id uuid.UUID) *models.User {
	return &models.User{
		ID:         id,
		Username:   "bé-an",
		Role:       models.RoleKid,
		DailyQuota: models.DefaultDailyQuota,
	}
}

func TestGenerateOneShot_Success(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	raw := `{"title": "Phi hành gia nhỏ", "content": "Ngày xửa ngày xưa...", "moral": "Hãy dũng cảm"}`
	f.users.On("GetByID", mock.Anything, userID).Return(testUser(userID), nil)
	f.quota.On("CheckAndIncrement", mock.Anything, userID, models.DefaultDailyQuota).Return(nil)
	f.textGen.On("GenerateStory", mock.Anything, "A brave astronaut exploring a magical planet", "Adventurous").Return(raw, nil)
	f.images.On("IllustrateFromText", mock.Anything, "A brave astronaut exploring a magical planet", "Adventurous").
		Return(&models.Illustration{ImageURL: "http://img/1.jpg"}, nil)
	f.stories.On("CreateStoryWithChapter", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.GenerateOneShot(ctx, userID, models.GenerateStoryRequest{
		Prompt: "A brave astronaut exploring a magical planet",
		Mood:   "Adventurous",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Phi hành gia nhỏ", resp.Title)
	assert.Equal(t, string(models.StoryStatusPublished), resp.Status)
	assert.Equal(t, string(models.StoryModeOneShot), resp.Mode)
	require.Len(t, resp.Chapters, 1)
	assert.Equal(t, 1, resp.Chapters[0].ChapterNumber)
	assert.NotEmpty(t, resp.Chapters[0].Content.Text)
	require.NotNil(t, resp.Chapters[0].ImageURL)
	assert.Equal(t, "http://img/1.jpg", *resp.Chapters[0].ImageURL)

	f.stories.AssertExpectations(t)
}

func TestGenerateOneShot_BlankPromptRejected(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()

	_, err := f.svc.GenerateOneShot(context.Background(), userID, models.GenerateStoryRequest{
		Prompt: "   ",
	}, nil)

	assert.ErrorIs(t, err, models.ErrInvalidInput)
	f.textGen.AssertNotCalled(t, "GenerateStory", mock.Anything, mock.Anything, mock.Anything)
	f.quota.AssertNotCalled(t, "CheckAndIncrement", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateOneShot_UnsafePromptSkipsModel(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()

	_, err := f.svc.GenerateOneShot(context.Background(), userID, models.GenerateStoryRequest{
		Prompt: "a story with a gun in it",
	}, nil)

	assert.ErrorIs(t, err, models.ErrContentUnsafe)
	f.textGen.AssertNotCalled(t, "GenerateStory", mock.Anything, mock.Anything, mock.Anything)
	f.quota.AssertNotCalled(t, "CheckAndIncrement", mock.Anything, mock.Anything, mock.Anything)
	f.stories.AssertNotCalled(t, "CreateStoryWithChapter", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateOneShot_QuotaExceededSkipsGeneration(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()

	f.users.On("GetByID", mock.Anything, userID).Return(testUser(userID), nil)
	f.quota.On("CheckAndIncrement", mock.Anything, userID, models.DefaultDailyQuota).Return(models.ErrQuotaExceeded)

	_, err := f.svc.GenerateOneShot(context.Background(), userID, models.GenerateStoryRequest{
		Prompt: "Một chú mèo con",
	}, nil)

	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
	f.textGen.AssertNotCalled(t, "GenerateStory", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateOneShot_ImageFailureDegradesToNoImage(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()

	raw := `{"title": "T", "content": "C", "moral": "M"}`
	f.users.On("GetByID", mock.Anything, userID).Return(testUser(userID), nil)
	f.quota.On("CheckAndIncrement", mock.Anything, userID, models.DefaultDailyQuota).Return(nil)
	f.textGen.On("GenerateStory", mock.Anything, mock.Anything, mock.Anything).Return(raw, nil)
	f.images.On("IllustrateFromText", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, models.ErrImageGenerationFailed)
	f.stories.On("CreateStoryWithChapter", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.GenerateOneShot(context.Background(), userID, models.GenerateStoryRequest{
		Prompt: "Một chú mèo con",
	}, nil)

	require.NoError(t, err)
	require.Len(t, resp.Chapters, 1)
	assert.Equal(t, 1, resp.Chapters[0].ChapterNumber)
	assert.Nil(t, resp.Chapters[0].ImageURL)
}

func TestGenerateOneShot_MalformedResponseAbortsPipeline(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()

	f.users.On("GetByID", mock.Anything, userID).Return(testUser(userID), nil)
	f.quota.On("CheckAndIncrement", mock.Anything, userID, models.DefaultDailyQuota).Return(nil)
	f.textGen.On("GenerateStory", mock.Anything, mock.Anything, mock.Anything).Return("no json here", nil)
	f.images.On("IllustrateFromText", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Illustration{ImageURL: "http://img/1.jpg"}, nil)

	_, err := f.svc.GenerateOneShot(context.Background(), userID, models.GenerateStoryRequest{
		Prompt: "Một chú mèo con",
	}, nil)

	assert.ErrorIs(t, err, models.ErrMalformedResponse)
	f.stories.AssertNotCalled(t, "CreateStoryWithChapter", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateInteractive_SetsMode(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()

	raw := `{"title": "T", "content": "C"}`
	f.users.On("GetByID", mock.Anything, userID).Return(testUser(userID), nil)
	f.quota.On("CheckAndIncrement", mock.Anything, userID, models.DefaultDailyQuota).Return(nil)
	f.textGen.On("GenerateStory", mock.Anything, mock.Anything, mock.Anything).Return(raw, nil)
	f.images.On("IllustrateFromText", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Illustration{}, nil)
	f.stories.On("CreateStoryWithChapter", mock.Anything, mock.MatchedBy(func(st *models.Story) bool {
		return st.Mode == models.StoryModeInteractive
	}), mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.GenerateInteractive(context.Background(), userID, models.GenerateStoryRequest{
		Prompt: "Một chú mèo con",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, string(models.StoryModeInteractive), resp.Mode)
}

func TestGenerateOneShot_SketchUsesSketchPath(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()
	sketch := []byte{0xff, 0xd8, 0x01}

	raw := `{"title": "T", "content": "C"}`
	f.users.On("GetByID", mock.Anything, userID).Return(testUser(userID), nil)
	f.quota.On("CheckAndIncrement", mock.Anything, userID, models.DefaultDailyQuota).Return(nil)
	f.textGen.On("GenerateStory", mock.Anything, mock.Anything, mock.Anything).Return(raw, nil)
	f.images.On("IllustrateFromSketch", mock.Anything, mock.Anything, mock.Anything, sketch).
		Return(&models.Illustration{ImageURL: "http://img/2.jpg", SketchURL: "http://img/s.jpg"}, nil)
	f.stories.On("CreateStoryWithChapter", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.GenerateOneShot(context.Background(), userID, models.GenerateStoryRequest{
		Prompt: "Một chú mèo con",
	}, sketch)

	require.NoError(t, err)
	require.NotNil(t, resp.Chapters[0].OriginalSketchURL)
	assert.Equal(t, "http://img/s.jpg", *resp.Chapters[0].OriginalSketchURL)
	f.images.AssertNotCalled(t, "IllustrateFromText", mock.Anything, mock.Anything, mock.Anything)
}

func interactiveStory(id, userID uuid.UUID) *models.Story {
	return &models.Story{
		ID:       id,
		UserID:   userID,
		Title:    "T",
		Status:   models.StoryStatusPublished,
		Mode:     models.StoryModeInteractive,
		Metadata: map[string]string{"mood": "Vui vẻ"},
	}
}

func TestContinueChapter_Success(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()
	storyID := uuid.New()

	prior := []models.Chapter{
		{StoryID: storyID, ChapterNumber: 1, Content: models.ChapterContent{Text: "Mở đầu"}},
		{StoryID: storyID, ChapterNumber: 2, Content: models.ChapterContent{Text: "Tiếp theo"}},
	}
	raw := `{"content": "Chương ba", "choiceA": "Đi tiếp", "choiceB": "Quay lại"}`

	f.stories.On("GetByID", mock.Anything, storyID).Return(interactiveStory(storyID, userID), nil)
	f.chapters.On("ListByStory", mock.Anything, storyID).Return(prior, nil)
	f.textGen.On("GenerateNextChapter", mock.Anything, "Chương 1: Mở đầu\n\nChương 2: Tiếp theo", "Đi vào rừng").
		Return(raw, nil)
	f.images.On("IllustrateFromText", mock.Anything, "Chương ba", "Vui vẻ").
		Return(&models.Illustration{ImageURL: "http://img/3.jpg"}, nil)
	f.chapters.On("Create", mock.Anything, mock.MatchedBy(func(ch *models.Chapter) bool {
		return ch.ChapterNumber == 3
	})).Return(nil)

	resp, err := f.svc.ContinueChapter(context.Background(), userID, storyID, models.NextChapterRequest{
		UserChoice: "Đi vào rừng",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.ChapterNumber)
	assert.Equal(t, "Chương ba", resp.Content.Text)
	assert.Equal(t, map[string]string{"A": "Đi tiếp", "B": "Quay lại"}, resp.Choices)
	f.quota.AssertNotCalled(t, "CheckAndIncrement", mock.Anything, mock.Anything, mock.Anything)
}

func TestContinueChapter_OmitsEmptyChoices(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()
	storyID := uuid.New()

	f.stories.On("GetByID", mock.Anything, storyID).Return(interactiveStory(storyID, userID), nil)
	f.chapters.On("ListByStory", mock.Anything, storyID).Return([]models.Chapter{
		{StoryID: storyID, ChapterNumber: 1, Content: models.ChapterContent{Text: "Mở đầu"}},
	}, nil)
	f.textGen.On("GenerateNextChapter", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"content": "Hết truyện"}`, nil)
	f.images.On("IllustrateFromText", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Illustration{}, nil)
	f.chapters.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.ContinueChapter(context.Background(), userID, storyID, models.NextChapterRequest{})
	require.NoError(t, err)
	assert.Nil(t, resp.Choices)
}

func TestContinueChapter_WrongModeFails(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()
	storyID := uuid.New()

	story := interactiveStory(storyID, userID)
	story.Mode = models.StoryModeOneShot
	f.stories.On("GetByID", mock.Anything, storyID).Return(story, nil)

	_, err := f.svc.ContinueChapter(context.Background(), userID, storyID, models.NextChapterRequest{})
	assert.ErrorIs(t, err, models.ErrInvalidMode)
	f.chapters.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestContinueChapter_ForbiddenForNonOwner(t *testing.T) {
	f := newStoryServiceFixture(t)
	storyID := uuid.New()

	f.stories.On("GetByID", mock.Anything, storyID).Return(interactiveStory(storyID, uuid.New()), nil)

	_, err := f.svc.ContinueChapter(context.Background(), uuid.New(), storyID, models.NextChapterRequest{})
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestContinueChapter_RetriesOnNumberConflict(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()
	storyID := uuid.New()

	f.stories.On("GetByID", mock.Anything, storyID).Return(interactiveStory(storyID, userID), nil)
	f.chapters.On("ListByStory", mock.Anything, storyID).Return([]models.Chapter{
		{StoryID: storyID, ChapterNumber: 1, Content: models.ChapterContent{Text: "Mở đầu"}},
	}, nil)
	f.textGen.On("GenerateNextChapter", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"content": "C"}`, nil)
	f.images.On("IllustrateFromText", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Illustration{}, nil)

	// A concurrent continuation grabbed chapter 2 first.
	f.chapters.On("Create", mock.Anything, mock.MatchedBy(func(ch *models.Chapter) bool {
		return ch.ChapterNumber == 2
	})).Return(models.ErrChapterNumberConflict).Once()
	f.chapters.On("CountByStory", mock.Anything, storyID).Return(2, nil).Once()
	f.chapters.On("Create", mock.Anything, mock.MatchedBy(func(ch *models.Chapter) bool {
		return ch.ChapterNumber == 3
	})).Return(nil).Once()

	resp, err := f.svc.ContinueChapter(context.Background(), userID, storyID, models.NextChapterRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.ChapterNumber)
	f.chapters.AssertExpectations(t)
}

func TestDeleteStory_OwnerOnly(t *testing.T) {
	f := newStoryServiceFixture(t)
	userID := uuid.New()
	storyID := uuid.New()

	f.stories.On("GetByID", mock.Anything, storyID).Return(interactiveStory(storyID, uuid.New()), nil)

	err := f.svc.DeleteStory(context.Background(), userID, storyID)
	assert.ErrorIs(t, err, models.ErrForbidden)
	f.stories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

type fixedTokenCounter struct{}

func (fixedTokenCounter) Count(text string) int { return len([]rune(text)) }

func TestBuildContext_TrimsOldestChaptersToBudget(t *testing.T) {
	f := newStoryServiceFixture(t)
	f.svc.tokens = fixedTokenCounter{}
	f.svc.tokenBudget = 30

	chapters := []models.Chapter{
		{ChapterNumber: 1, Content: models.ChapterContent{Text: "Một đoạn văn rất dài ở chương đầu tiên"}},
		{ChapterNumber: 2, Content: models.ChapterContent{Text: "Ngắn"}},
		{ChapterNumber: 3, Content: models.ChapterContent{Text: "Cũng ngắn"}},
	}

	got := f.svc.buildContext(chapters)
	assert.NotContains(t, got, "Chương 1:")
	assert.Contains(t, got, "Chương 2: Ngắn")
	assert.Contains(t, got, "Chương 3: Cũng ngắn")
}

func TestBuildContext_KeepsMostRecentChapterEvenOverBudget(t *testing.T) {
	f := newStoryServiceFixture(t)
	f.svc.tokens = fixedTokenCounter{}
	f.svc.tokenBudget = 5

	chapters := []models.Chapter{
		{ChapterNumber: 1, Content: models.ChapterContent{Text: "Chương cuối cùng vẫn phải có mặt"}},
	}

	got := f.svc.buildContext(chapters)
	assert.Contains(t, got, "Chương 1:")
}
