package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryStatus represents the lifecycle state of a story.
type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "DRAFT"
	StoryStatusPublished StoryStatus = "PUBLISHED"
)

// StoryMode is fixed at creation and gates which operations are legal:
// one-shot stories have exactly one chapter, interactive stories grow one
// chapter per child choice.
type StoryMode string

const (
	StoryModeOneShot     StoryMode = "ONE_SHOT"
	StoryModeInteractive StoryMode = "INTERACTIVE"
)

// Story represents a generated story owned by a user. A story exclusively
// owns its chapters; deleting a story cascades to them.
type Story struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	UserID    uuid.UUID         `db:"user_id" json:"userId"`
	Title     string            `db:"title" json:"title"`
	Status    StoryStatus       `db:"status" json:"status"`
	Mode      StoryMode         `db:"mode" json:"mode"`
	Metadata  map[string]string `db:"metadata" json:"metadata"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time         `db:"updated_at" json:"updatedAt"`
}

// ChapterContent is the structured body of a chapter.
type ChapterContent struct {
	Text  string `json:"text"`
	Moral string `json:"moral,omitempty"`
}

// Chapter represents one chapter of a story. ChapterNumber is 1-based and
// unique within the story. Choices, when present, map "A"/"B" to short
// descriptions and only appear on non-terminal interactive chapters.
type Chapter struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	StoryID           uuid.UUID         `db:"story_id" json:"storyId"`
	ChapterNumber     int               `db:"chapter_number" json:"chapterNumber"`
	Content           ChapterContent    `db:"content" json:"content"`
	UserPrompt        string            `db:"user_prompt" json:"userPrompt"`
	MoodTag           string            `db:"mood_tag" json:"moodTag,omitempty"`
	ImageURL          *string           `db:"image_url" json:"imageUrl"`
	OriginalSketchURL *string           `db:"original_sketch_url" json:"originalSketchUrl"`
	Choices           map[string]string `db:"choices" json:"choices,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
}

// MoodTag is an append-only analytics fact recording the mood attached to a
// chapter. Never updated after insert.
type MoodTag struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ChapterID uuid.UUID `db:"chapter_id" json:"chapterId"`
	Mood      string    `db:"mood_tag" json:"mood"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
