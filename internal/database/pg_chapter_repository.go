package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// Compile-time check to ensure pgChapterRepository implements ChapterRepository
var _ interfaces.ChapterRepository = (*pgChapterRepository)(nil)

// pgxExecutor is satisfied by both *pgxpool.Pool and pgx.Tx, so chapter
// inserts can run standalone or inside the story-creation transaction.
type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgChapterRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgChapterRepository creates a new PostgreSQL-backed ChapterRepository.
func NewPgChapterRepository(pool *pgxpool.Pool, logger *zap.Logger) interfaces.ChapterRepository {
	return &pgChapterRepository{
		pool:   pool,
		logger: logger.Named("PgChapterRepo"),
	}
}

func insertChapter(ctx context.Context, exec pgxExecutor, chapter *models.Chapter) error {
	if chapter.ID == uuid.Nil {
		chapter.ID = uuid.New()
	}
	chapter.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO chapters (id, story_id, chapter_number, content, user_prompt, mood_tag, image_url, original_sketch_url, choices, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := exec.Exec(ctx, query,
		chapter.ID, chapter.StoryID, chapter.ChapterNumber, chapter.Content,
		chapter.UserPrompt, chapter.MoodTag, chapter.ImageURL, chapter.OriginalSketchURL,
		chapter.Choices, chapter.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 on chapters_story_id_chapter_number_key means another
		// continuation claimed this chapter number first.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrChapterNumberConflict
		}
		return fmt.Errorf("failed to insert chapter: %w", err)
	}
	return nil
}

// Create persists a chapter. Returns models.ErrChapterNumberConflict when
// the (story, chapter number) pair is already taken.
func (r *pgChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	if err := insertChapter(ctx, r.pool, chapter); err != nil {
		if !errors.Is(err, models.ErrChapterNumberConflict) {
			r.logger.Error("Failed to insert chapter",
				zap.Error(err),
				zap.String("storyID", chapter.StoryID.String()),
				zap.Int("chapterNumber", chapter.ChapterNumber),
			)
		}
		return err
	}
	r.logger.Info("Chapter created",
		zap.String("chapterID", chapter.ID.String()),
		zap.String("storyID", chapter.StoryID.String()),
		zap.Int("chapterNumber", chapter.ChapterNumber),
	)
	return nil
}

// ListByStory returns all chapters of a story ordered by chapter number.
func (r *pgChapterRepository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]models.Chapter, error) {
	query := `
		SELECT id, story_id, chapter_number, content, user_prompt, mood_tag, image_url, original_sketch_url, choices, created_at
		FROM chapters
		WHERE story_id = $1
		ORDER BY chapter_number ASC
	`
	rows, err := r.pool.Query(ctx, query, storyID)
	if err != nil {
		r.logger.Error("Failed to list chapters", zap.Error(err), zap.String("storyID", storyID.String()))
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []models.Chapter
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(
			&ch.ID, &ch.StoryID, &ch.ChapterNumber, &ch.Content,
			&ch.UserPrompt, &ch.MoodTag, &ch.ImageURL, &ch.OriginalSketchURL,
			&ch.Choices, &ch.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chapter row: %w", err)
		}
		chapters = append(chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chapter rows: %w", err)
	}
	return chapters, nil
}

// CountByStory returns the number of persisted chapters for a story.
func (r *pgChapterRepository) CountByStory(ctx context.Context, storyID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM chapters WHERE story_id = $1`
	if err := r.pool.QueryRow(ctx, query, storyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	return count, nil
}
