// Package service contains the application services: the story pipeline,
// authentication and the parent analytics dashboard.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"imagibox-server/internal/ai"
	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
	"imagibox-server/internal/safety"
	"imagibox-server/pkg/taskmanager"
)

// chapterNumberRetries bounds how often a continuation retries after losing
// the chapter-number race to a concurrent request.
const chapterNumberRetries = 3

// tokenCounter measures text size for the continuation context budget.
type tokenCounter interface {
	Count(text string) int
}

// StoryService orchestrates the generation pipeline: safety gate, quota,
// text generation, parsing, best-effort image synthesis and persistence.
type StoryService struct {
	stories  interfaces.StoryRepository
	chapters interfaces.ChapterRepository
	moodTags interfaces.MoodTagRepository
	users    interfaces.UserRepository
	quota    interfaces.QuotaLedger
	textGen  interfaces.TextGenerator
	images   interfaces.ImageSynthesizer
	gate     *safety.Gate
	tasks    *taskmanager.Manager
	tokens   tokenCounter

	imageWait   time.Duration
	tokenBudget int
	logger      *zap.Logger
	metrics     *Metrics
}

// StoryServiceDeps bundles the orchestrator's collaborators.
type StoryServiceDeps struct {
	Stories  interfaces.StoryRepository
	Chapters interfaces.ChapterRepository
	MoodTags interfaces.MoodTagRepository
	Users    interfaces.UserRepository
	Quota    interfaces.QuotaLedger
	TextGen  interfaces.TextGenerator
	Images   interfaces.ImageSynthesizer
	Gate     *safety.Gate
	Tasks    *taskmanager.Manager
	Tokens   tokenCounter

	ImageWaitTimeout   time.Duration
	ContextTokenBudget int
	Metrics            *Metrics
}

// NewStoryService creates the story orchestrator.
func NewStoryService(deps StoryServiceDeps, logger *zap.Logger) *StoryService {
	imageWait := deps.ImageWaitTimeout
	if imageWait <= 0 {
		imageWait = 90 * time.Second
	}
	return &StoryService{
		stories:     deps.Stories,
		chapters:    deps.Chapters,
		moodTags:    deps.MoodTags,
		users:       deps.Users,
		quota:       deps.Quota,
		textGen:     deps.TextGen,
		images:      deps.Images,
		gate:        deps.Gate,
		tasks:       deps.Tasks,
		tokens:      deps.Tokens,
		imageWait:   imageWait,
		tokenBudget: deps.ContextTokenBudget,
		logger:      logger.Named("StoryService"),
		metrics:     deps.Metrics,
	}
}

// GenerateOneShot runs the full pipeline for a complete single-chapter
// story. sketch may be nil.
func (s *StoryService) GenerateOneShot(ctx context.Context, userID uuid.UUID, req models.GenerateStoryRequest, sketch []byte) (*models.StoryResponse, error) {
	return s.generateStory(ctx, userID, req, sketch, models.StoryModeOneShot)
}

// GenerateInteractive seeds chapter 1 of a story the child will extend with
// choices. sketch may be nil.
func (s *StoryService) GenerateInteractive(ctx context.Context, userID uuid.UUID, req models.GenerateStoryRequest, sketch []byte) (*models.StoryResponse, error) {
	return s.generateStory(ctx, userID, req, sketch, models.StoryModeInteractive)
}

func (s *StoryService) generateStory(ctx context.Context, userID uuid.UUID, req models.GenerateStoryRequest, sketch []byte, mode models.StoryMode) (*models.StoryResponse, error) {
	log := s.logger.With(zap.String("userID", userID.String()), zap.String("mode", string(mode)))
	log.Info("Generating story")

	// Safety and quota fail fast, before any model call or side effect.
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, models.ErrInvalidInput
	}
	if err := s.gate.Check(req.Prompt); err != nil {
		s.metrics.IncBlockedPrompt()
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.quota.CheckAndIncrement(ctx, userID, user.DailyQuota); err != nil {
		if errors.Is(err, models.ErrQuotaExceeded) {
			s.metrics.IncQuotaRejected()
		}
		return nil, err
	}

	// Image synthesis only depends on the prompt, so it runs alongside
	// text generation and is collected with a bounded wait below.
	imageTaskID := s.submitImageTask(req.Prompt, req.Mood, sketch)

	raw, err := s.textGen.GenerateStory(ctx, req.Prompt, req.Mood)
	if err != nil {
		s.metrics.IncGenerationFailed()
		return nil, err
	}
	fields, err := ai.ParseStoryResponse(raw)
	if err != nil {
		s.metrics.IncGenerationFailed()
		return nil, err
	}

	illustration := s.collectIllustration(ctx, imageTaskID)

	mood := req.Mood
	if mood == "" {
		mood = "Vui vẻ"
	}
	story := &models.Story{
		UserID: userID,
		Title:  fields.Title,
		Status: models.StoryStatusPublished,
		Mode:   mode,
		Metadata: map[string]string{
			"moral": fields.Moral,
			"mood":  mood,
		},
	}
	chapter := &models.Chapter{
		ChapterNumber: 1,
		Content: models.ChapterContent{
			Text:  fields.Content,
			Moral: fields.Moral,
		},
		UserPrompt: req.Prompt,
		MoodTag:    req.Mood,
	}
	if illustration != nil {
		if illustration.ImageURL != "" {
			chapter.ImageURL = &illustration.ImageURL
		}
		if illustration.SketchURL != "" {
			chapter.OriginalSketchURL = &illustration.SketchURL
		}
	}

	var moodTag *models.MoodTag
	if req.Mood != "" {
		moodTag = &models.MoodTag{Mood: req.Mood}
	}

	if err := s.stories.CreateStoryWithChapter(ctx, story, chapter, moodTag); err != nil {
		return nil, err
	}

	s.metrics.IncStoryCreated(string(mode))
	log.Info("Story created", zap.String("storyID", story.ID.String()))

	resp := models.NewStoryResponse(story, []models.Chapter{*chapter})
	return &resp, nil
}

// ContinueChapter extends an interactive story by one chapter. Continuation
// does not consume quota; only the initial generation does.
func (s *StoryService) ContinueChapter(ctx context.Context, userID, storyID uuid.UUID, req models.NextChapterRequest) (*models.ChapterResponse, error) {
	log := s.logger.With(zap.String("storyID", storyID.String()), zap.String("userID", userID.String()))
	log.Info("Continuing story")

	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.UserID != userID {
		return nil, models.ErrForbidden
	}
	if story.Mode != models.StoryModeInteractive {
		return nil, models.ErrInvalidMode
	}

	previous, err := s.chapters.ListByStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	priorContext := s.buildContext(previous)

	raw, err := s.textGen.GenerateNextChapter(ctx, priorContext, req.UserChoice)
	if err != nil {
		s.metrics.IncGenerationFailed()
		return nil, err
	}
	fields, err := ai.ParseChapterResponse(raw)
	if err != nil {
		s.metrics.IncGenerationFailed()
		return nil, err
	}

	// The continuation illustration comes from the new chapter's text, so
	// it cannot overlap with text generation.
	imageTaskID := s.submitImageTask(fields.Content, story.Metadata["mood"], nil)
	illustration := s.collectIllustration(ctx, imageTaskID)

	userPrompt := req.UserChoice
	if userPrompt == "" {
		userPrompt = "Tiếp tục phiêu lưu"
	}

	chapter := &models.Chapter{
		StoryID: storyID,
		Content: models.ChapterContent{
			Text: fields.Content,
		},
		UserPrompt: userPrompt,
	}
	if illustration != nil && illustration.ImageURL != "" {
		chapter.ImageURL = &illustration.ImageURL
	}
	if fields.ChoiceA != "" || fields.ChoiceB != "" {
		chapter.Choices = make(map[string]string)
		if fields.ChoiceA != "" {
			chapter.Choices["A"] = fields.ChoiceA
		}
		if fields.ChoiceB != "" {
			chapter.Choices["B"] = fields.ChoiceB
		}
	}

	if err := s.persistNextChapter(ctx, storyID, len(previous)+1, chapter); err != nil {
		return nil, err
	}

	s.metrics.IncChapterCreated()
	log.Info("Chapter created", zap.Int("chapterNumber", chapter.ChapterNumber))

	resp := models.NewChapterResponse(chapter)
	return &resp, nil
}

// persistNextChapter claims the next chapter number. When a concurrent
// continuation wins the number, the unique constraint rejects the insert
// and the count is re-read for another attempt.
func (s *StoryService) persistNextChapter(ctx context.Context, storyID uuid.UUID, nextNumber int, chapter *models.Chapter) error {
	for attempt := 0; attempt < chapterNumberRetries; attempt++ {
		chapter.ID = uuid.Nil
		chapter.ChapterNumber = nextNumber

		err := s.chapters.Create(ctx, chapter)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrChapterNumberConflict) {
			return err
		}

		s.logger.Warn("Chapter number conflict, retrying",
			zap.String("storyID", storyID.String()),
			zap.Int("chapterNumber", nextNumber),
		)
		count, countErr := s.chapters.CountByStory(ctx, storyID)
		if countErr != nil {
			return countErr
		}
		nextNumber = count + 1
	}
	return fmt.Errorf("%w: all %d attempts lost the chapter number race", models.ErrChapterNumberConflict, chapterNumberRetries)
}

// GetStory returns a story with its chapters, owner-only.
func (s *StoryService) GetStory(ctx context.Context, userID, storyID uuid.UUID) (*models.StoryResponse, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.UserID != userID {
		return nil, models.ErrForbidden
	}

	chapters, err := s.chapters.ListByStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	resp := models.NewStoryResponse(story, chapters)
	return &resp, nil
}

// ListStories returns a page of the user's stories, chapters included.
func (s *StoryService) ListStories(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.StoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	stories, err := s.stories.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]models.StoryResponse, 0, len(stories))
	for i := range stories {
		chapters, err := s.chapters.ListByStory(ctx, stories[i].ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, models.NewStoryResponse(&stories[i], chapters))
	}
	return responses, nil
}

// DeleteStory removes a story and its chapters, owner-only.
func (s *StoryService) DeleteStory(ctx context.Context, userID, storyID uuid.UUID) error {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != userID {
		return models.ErrForbidden
	}
	return s.stories.Delete(ctx, storyID)
}

// RemainingQuota reports how many generations the user has left today.
func (s *StoryService) RemainingQuota(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.quota.Remaining(ctx, userID, user.DailyQuota)
}

// buildContext concatenates prior chapters as "Chương {n}: {text}" blocks.
// When a token counter and budget are configured, the oldest chapters are
// dropped first to stay inside the budget; the most recent chapter is
// always kept.
func (s *StoryService) buildContext(chapters []models.Chapter) string {
	blocks := make([]string, 0, len(chapters))
	for i := range chapters {
		blocks = append(blocks, fmt.Sprintf("Chương %d: %s", chapters[i].ChapterNumber, chapters[i].Content.Text))
	}

	if s.tokens == nil || s.tokenBudget <= 0 {
		return strings.Join(blocks, "\n\n")
	}

	for start := 0; start < len(blocks); start++ {
		candidate := strings.Join(blocks[start:], "\n\n")
		if s.tokens.Count(candidate) <= s.tokenBudget || start == len(blocks)-1 {
			if start > 0 {
				s.logger.Debug("Trimmed continuation context",
					zap.Int("droppedChapters", start),
					zap.Int("totalChapters", len(blocks)),
				)
			}
			return candidate
		}
	}
	return ""
}

// submitImageTask dispatches best-effort image synthesis. Returns uuid.Nil
// when the task could not even be submitted.
func (s *StoryService) submitImageTask(prompt, mood string, sketch []byte) uuid.UUID {
	taskID, err := s.tasks.Submit(func(taskCtx context.Context) (interface{}, error) {
		if len(sketch) > 0 {
			return s.images.IllustrateFromSketch(taskCtx, prompt, mood, sketch)
		}
		return s.images.IllustrateFromText(taskCtx, prompt, mood)
	})
	if err != nil {
		s.logger.Warn("Could not submit image task, continuing without image", zap.Error(err))
		return uuid.Nil
	}
	return taskID
}

// collectIllustration waits for the image task up to the configured bound.
// Every failure mode degrades to "no image"; image synthesis never aborts
// story creation.
func (s *StoryService) collectIllustration(ctx context.Context, taskID uuid.UUID) *models.Illustration {
	if taskID == uuid.Nil {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.imageWait)
	defer cancel()

	result, err := s.tasks.Wait(waitCtx, taskID)
	if err != nil {
		s.metrics.IncImageFailed()
		s.logger.Warn("Image synthesis did not complete, continuing without image", zap.Error(err))
		return nil
	}
	illustration, ok := result.(*models.Illustration)
	if !ok || illustration == nil {
		return nil
	}
	return illustration
}
