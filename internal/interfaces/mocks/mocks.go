// Package mocks provides testify mocks for the pipeline contracts.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// MockStoryRepository is a mock type for the StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

var _ interfaces.StoryRepository = (*MockStoryRepository)(nil)

func (_m *MockStoryRepository) CreateStoryWithChapter(ctx context.Context, story *models.Story, chapter *models.Chapter, moodTag *models.MoodTag) error {
	ret := _m.Called(ctx, story, chapter, moodTag)
	return ret.Error(0)
}

func (_m *MockStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, id)
	var r0 *models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Story, error) {
	ret := _m.Called(ctx, userID, limit, offset)
	var r0 []models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) CountByUsers(ctx context.Context, userIDs []uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, userIDs)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *MockStoryRepository) CountByUsersSince(ctx context.Context, userIDs []uuid.UUID, sinceDays int) (int64, error) {
	ret := _m.Called(ctx, userIDs, sinceDays)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *MockStoryRepository) AvgChaptersForUsers(ctx context.Context, userIDs []uuid.UUID) (float64, error) {
	ret := _m.Called(ctx, userIDs)
	return ret.Get(0).(float64), ret.Error(1)
}

func (_m *MockStoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// MockChapterRepository is a mock type for the ChapterRepository type
type MockChapterRepository struct {
	mock.Mock
}

var _ interfaces.ChapterRepository = (*MockChapterRepository)(nil)

func (_m *MockChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	ret := _m.Called(ctx, chapter)
	return ret.Error(0)
}

func (_m *MockChapterRepository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]models.Chapter, error) {
	ret := _m.Called(ctx, storyID)
	var r0 []models.Chapter
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Chapter)
	}
	return r0, ret.Error(1)
}

func (_m *MockChapterRepository) CountByStory(ctx context.Context, storyID uuid.UUID) (int, error) {
	ret := _m.Called(ctx, storyID)
	return ret.Get(0).(int), ret.Error(1)
}

// MockMoodTagRepository is a mock type for the MoodTagRepository type
type MockMoodTagRepository struct {
	mock.Mock
}

var _ interfaces.MoodTagRepository = (*MockMoodTagRepository)(nil)

func (_m *MockMoodTagRepository) Create(ctx context.Context, tag *models.MoodTag) error {
	ret := _m.Called(ctx, tag)
	return ret.Error(0)
}

func (_m *MockMoodTagRepository) DistributionByUsers(ctx context.Context, userIDs []uuid.UUID) (map[string]int64, error) {
	ret := _m.Called(ctx, userIDs)
	var r0 map[string]int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]int64)
	}
	return r0, ret.Error(1)
}

// MockUserRepository is a mock type for the UserRepository type
type MockUserRepository struct {
	mock.Mock
}

var _ interfaces.UserRepository = (*MockUserRepository)(nil)

func (_m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

func (_m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ret := _m.Called(ctx, id)
	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ret := _m.Called(ctx, username)
	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	ret := _m.Called(ctx, username)
	return ret.Get(0).(bool), ret.Error(1)
}

func (_m *MockUserRepository) ListKidsByParent(ctx context.Context, parentID uuid.UUID) ([]models.User, error) {
	ret := _m.Called(ctx, parentID)
	var r0 []models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserRepository) ListKidIDsByParent(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	ret := _m.Called(ctx, parentID)
	var r0 []uuid.UUID
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]uuid.UUID)
	}
	return r0, ret.Error(1)
}

// MockQuotaLedger is a mock type for the QuotaLedger type
type MockQuotaLedger struct {
	mock.Mock
}

var _ interfaces.QuotaLedger = (*MockQuotaLedger)(nil)

func (_m *MockQuotaLedger) CheckAndIncrement(ctx context.Context, userID uuid.UUID, limit int) error {
	ret := _m.Called(ctx, userID, limit)
	return ret.Error(0)
}

func (_m *MockQuotaLedger) Remaining(ctx context.Context, userID uuid.UUID, limit int) (int, error) {
	ret := _m.Called(ctx, userID, limit)
	return ret.Get(0).(int), ret.Error(1)
}

func (_m *MockQuotaLedger) Reset(ctx context.Context, userID uuid.UUID) error {
	ret := _m.Called(ctx, userID)
	return ret.Error(0)
}

// MockTextGenerator is a mock type for the TextGenerator type
type MockTextGenerator struct {
	mock.Mock
}

var _ interfaces.TextGenerator = (*MockTextGenerator)(nil)

func (_m *MockTextGenerator) GenerateStory(ctx context.Context, prompt, mood string) (string, error) {
	ret := _m.Called(ctx, prompt, mood)
	return ret.String(0), ret.Error(1)
}

func (_m *MockTextGenerator) GenerateNextChapter(ctx context.Context, priorContext, userChoice string) (string, error) {
	ret := _m.Called(ctx, priorContext, userChoice)
	return ret.String(0), ret.Error(1)
}

func (_m *MockTextGenerator) GenerateImagePrompt(ctx context.Context, prompt, mood string) (string, error) {
	ret := _m.Called(ctx, prompt, mood)
	return ret.String(0), ret.Error(1)
}

// MockBlobStore is a mock type for the BlobStore type
type MockBlobStore struct {
	mock.Mock
}

var _ interfaces.BlobStore = (*MockBlobStore)(nil)

func (_m *MockBlobStore) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	ret := _m.Called(ctx, data, folder)
	return ret.String(0), ret.Error(1)
}

func (_m *MockBlobStore) Delete(ctx context.Context, publicID string) error {
	ret := _m.Called(ctx, publicID)
	return ret.Error(0)
}

// MockImageModelClient is a mock type for the ImageModelClient type
type MockImageModelClient struct {
	mock.Mock
}

var _ interfaces.ImageModelClient = (*MockImageModelClient)(nil)

func (_m *MockImageModelClient) Generate(ctx context.Context, prompt string, sourceImage []byte) ([]byte, error) {
	ret := _m.Called(ctx, prompt, sourceImage)
	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

// MockImageSynthesizer is a mock type for the ImageSynthesizer type
type MockImageSynthesizer struct {
	mock.Mock
}

var _ interfaces.ImageSynthesizer = (*MockImageSynthesizer)(nil)

func (_m *MockImageSynthesizer) IllustrateFromText(ctx context.Context, storyIdea, mood string) (*models.Illustration, error) {
	ret := _m.Called(ctx, storyIdea, mood)
	var r0 *models.Illustration
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Illustration)
	}
	return r0, ret.Error(1)
}

func (_m *MockImageSynthesizer) IllustrateFromSketch(ctx context.Context, storyIdea, mood string, sketch []byte) (*models.Illustration, error) {
	ret := _m.Called(ctx, storyIdea, mood, sketch)
	var r0 *models.Illustration
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Illustration)
	}
	return r0, ret.Error(1)
}
