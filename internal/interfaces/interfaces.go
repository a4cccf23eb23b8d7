// Package interfaces declares the contracts between the story pipeline and
// its collaborators so that implementations stay swappable and mockable.
package interfaces

import (
	"context"

	"github.com/google/uuid"

	"imagibox-server/internal/models"
)

// StoryRepository is the persistence boundary for Story aggregates.
type StoryRepository interface {
	// CreateStoryWithChapter persists the story, its first chapter and the
	// optional mood tag as one transaction: either everything lands or
	// nothing does.
	CreateStoryWithChapter(ctx context.Context, story *models.Story, chapter *models.Chapter, moodTag *models.MoodTag) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Story, error)
	CountByUsers(ctx context.Context, userIDs []uuid.UUID) (int64, error)
	CountByUsersSince(ctx context.Context, userIDs []uuid.UUID, sinceDays int) (int64, error)
	AvgChaptersForUsers(ctx context.Context, userIDs []uuid.UUID) (float64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChapterRepository is the persistence boundary for chapters.
type ChapterRepository interface {
	// Create returns models.ErrChapterNumberConflict when another writer
	// already took the chapter number for this story.
	Create(ctx context.Context, chapter *models.Chapter) error
	ListByStory(ctx context.Context, storyID uuid.UUID) ([]models.Chapter, error)
	CountByStory(ctx context.Context, storyID uuid.UUID) (int, error)
}

// MoodTagRepository records append-only mood facts for analytics.
type MoodTagRepository interface {
	Create(ctx context.Context, tag *models.MoodTag) error
	DistributionByUsers(ctx context.Context, userIDs []uuid.UUID) (map[string]int64, error)
}

// UserRepository is the persistence boundary for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ListKidsByParent(ctx context.Context, parentID uuid.UUID) ([]models.User, error)
	ListKidIDsByParent(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error)
}

// QuotaLedger tracks per-user, per-day generation counters. Implementations
// must make CheckAndIncrement atomic from the caller's point of view.
type QuotaLedger interface {
	CheckAndIncrement(ctx context.Context, userID uuid.UUID, limit int) error
	Remaining(ctx context.Context, userID uuid.UUID, limit int) (int, error)
	Reset(ctx context.Context, userID uuid.UUID) error
}

// TextGenerator wraps the language model behind the three fixed prompt
// templates.
type TextGenerator interface {
	GenerateStory(ctx context.Context, prompt, mood string) (string, error)
	GenerateNextChapter(ctx context.Context, priorContext, userChoice string) (string, error)
	GenerateImagePrompt(ctx context.Context, prompt, mood string) (string, error)
}

// BlobStore stores image artifacts durably and hands back public URLs.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
	Delete(ctx context.Context, publicID string) error
}

// ImageModelClient calls the image model. sourceImage may be nil for pure
// text-to-image generation.
type ImageModelClient interface {
	Generate(ctx context.Context, prompt string, sourceImage []byte) ([]byte, error)
}

// ImageSynthesizer produces an illustration for a chapter. Callers treat it
// as best-effort and degrade to no image on failure.
type ImageSynthesizer interface {
	IllustrateFromText(ctx context.Context, storyIdea, mood string) (*models.Illustration, error)
	IllustrateFromSketch(ctx context.Context, storyIdea, mood string, sketch []byte) (*models.Illustration, error)
}
