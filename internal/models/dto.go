package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerateStoryRequest is the JSON part of the multipart generation request.
type GenerateStoryRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Mood   string `json:"mood"`
}

// NextChapterRequest carries the child's branch selection for an
// interactive story.
type NextChapterRequest struct {
	UserChoice string `json:"user_choice"`
}

// RegisterParentRequest creates a new parent account.
type RegisterParentRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest works for both parent and kid accounts.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateKidRequest creates a kid account linked to the calling parent.
type CreateKidRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50"`
	Password   string `json:"password" binding:"required,min=6"`
	DailyQuota *int   `json:"daily_quota"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	Token    string    `json:"token"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Message  string    `json:"message,omitempty"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	DailyQuota int       `json:"daily_quota"`
}

// ChapterResponse is the field-level chapter contract.
type ChapterResponse struct {
	ID                uuid.UUID         `json:"id"`
	ChapterNumber     int               `json:"chapterNumber"`
	Content           ChapterContent    `json:"content"`
	ImageURL          *string           `json:"imageUrl"`
	OriginalSketchURL *string           `json:"originalSketchUrl"`
	MoodTag           string            `json:"moodTag,omitempty"`
	Choices           map[string]string `json:"choices,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// StoryResponse is the field-level story contract.
type StoryResponse struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Status    string            `json:"status"`
	Mode      string            `json:"mode"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"createdAt"`
	Chapters  []ChapterResponse `json:"chapters"`
}

// DashboardResponse aggregates activity across a parent's kids.
type DashboardResponse struct {
	TotalStories        int64            `json:"totalStories"`
	StoriesThisWeek     int64            `json:"storiesThisWeek"`
	AvgChaptersPerStory float64          `json:"avgChaptersPerStory"`
	MoodDistribution    map[string]int64 `json:"moodDistribution"`
	ActivitySummary     map[string]int64 `json:"activitySummary"`
}

// ErrorResponse is the standardized error payload.
type ErrorResponse struct {
	Message string    `json:"message"`
	Status  int       `json:"status"`
	Time    time.Time `json:"timestamp"`
}

// NewStoryResponse assembles the response for a story and its ordered
// chapters.
func NewStoryResponse(story *Story, chapters []Chapter) StoryResponse {
	resp := StoryResponse{
		ID:        story.ID,
		Title:     story.Title,
		Status:    string(story.Status),
		Mode:      string(story.Mode),
		Metadata:  story.Metadata,
		CreatedAt: story.CreatedAt,
		Chapters:  make([]ChapterResponse, 0, len(chapters)),
	}
	for i := range chapters {
		resp.Chapters = append(resp.Chapters, NewChapterResponse(&chapters[i]))
	}
	return resp
}

// NewChapterResponse maps a chapter entity onto the response contract.
func NewChapterResponse(ch *Chapter) ChapterResponse {
	return ChapterResponse{
		ID:                ch.ID,
		ChapterNumber:     ch.ChapterNumber,
		Content:           ch.Content,
		ImageURL:          ch.ImageURL,
		OriginalSketchURL: ch.OriginalSketchURL,
		MoodTag:           ch.MoodTag,
		Choices:           ch.Choices,
		CreatedAt:         ch.CreatedAt,
	}
}
