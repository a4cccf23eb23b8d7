package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// Compile-time check to ensure pgStoryRepository implements StoryRepository
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgStoryRepository creates a new PostgreSQL-backed StoryRepository.
func NewPgStoryRepository(pool *pgxpool.Pool, logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		pool:   pool,
		logger: logger.Named("PgStoryRepo"),
	}
}

// CreateStoryWithChapter persists the story, its first chapter and the
// optional mood tag inside a single transaction.
func (r *pgStoryRepository) CreateStoryWithChapter(ctx context.Context, story *models.Story, chapter *models.Chapter, moodTag *models.MoodTag) error {
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	now := time.Now().UTC()
	story.CreatedAt = now
	story.UpdatedAt = now
	chapter.StoryID = story.ID

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	storyQuery := `
		INSERT INTO stories (id, user_id, title, status, mode, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	if _, err := tx.Exec(ctx, storyQuery,
		story.ID, story.UserID, story.Title, story.Status, story.Mode, story.Metadata, now,
	); err != nil {
		r.logger.Error("Failed to insert story", zap.Error(err), zap.String("userID", story.UserID.String()))
		return fmt.Errorf("failed to insert story: %w", err)
	}

	if err := insertChapter(ctx, tx, chapter); err != nil {
		r.logger.Error("Failed to insert first chapter", zap.Error(err), zap.String("storyID", story.ID.String()))
		return err
	}

	if moodTag != nil {
		moodTag.ChapterID = chapter.ID
		if err := insertMoodTag(ctx, tx, moodTag); err != nil {
			r.logger.Error("Failed to insert mood tag", zap.Error(err), zap.String("chapterID", chapter.ID.String()))
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit story transaction: %w", err)
	}

	r.logger.Info("Story created",
		zap.String("storyID", story.ID.String()),
		zap.String("userID", story.UserID.String()),
		zap.String("mode", string(story.Mode)),
	)
	return nil
}

// GetByID retrieves a story by its ID.
func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	query := `
		SELECT id, user_id, title, status, mode, metadata, created_at, updated_at
		FROM stories
		WHERE id = $1
	`
	story := &models.Story{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&story.ID, &story.UserID, &story.Title, &story.Status, &story.Mode,
		&story.Metadata, &story.CreatedAt, &story.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story by id", zap.Error(err), zap.String("storyID", id.String()))
		return nil, fmt.Errorf("failed to get story by id: %w", err)
	}
	return story, nil
}

// ListByUser returns the user's stories ordered by creation time, newest
// first.
func (r *pgStoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Story, error) {
	query := `
		SELECT id, user_id, title, status, mode, metadata, created_at, updated_at
		FROM stories
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var stories []models.Story
	if err := pgxscan.Select(ctx, r.pool, &stories, query, userID, limit, offset); err != nil {
		r.logger.Error("Failed to list stories", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

// CountByUsers counts all stories owned by any of the given users.
func (r *pgStoryRepository) CountByUsers(ctx context.Context, userIDs []uuid.UUID) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var count int64
	query := `SELECT COUNT(*) FROM stories WHERE user_id = ANY($1)`
	if err := r.pool.QueryRow(ctx, query, userIDs).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return count, nil
}

// CountByUsersSince counts stories created within the trailing sinceDays
// window.
func (r *pgStoryRepository) CountByUsersSince(ctx context.Context, userIDs []uuid.UUID, sinceDays int) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var count int64
	query := `SELECT COUNT(*) FROM stories WHERE user_id = ANY($1) AND created_at >= now() - ($2 * INTERVAL '1 day')`
	if err := r.pool.QueryRow(ctx, query, userIDs, sinceDays).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent stories: %w", err)
	}
	return count, nil
}

// AvgChaptersForUsers returns the average chapter count per story across
// the given users. Stories without chapters count as zero.
func (r *pgStoryRepository) AvgChaptersForUsers(ctx context.Context, userIDs []uuid.UUID) (float64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var avg *float64
	query := `
		SELECT AVG(chapter_count)::float8 FROM (
			SELECT COUNT(c.id) AS chapter_count
			FROM stories s
			LEFT JOIN chapters c ON c.story_id = s.id
			WHERE s.user_id = ANY($1)
			GROUP BY s.id
		) per_story
	`
	if err := r.pool.QueryRow(ctx, query, userIDs).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to compute average chapters: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// Delete removes a story; chapters and mood tags go with it via FK cascade.
func (r *pgStoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete story", zap.Error(err), zap.String("storyID", id.String()))
		return fmt.Errorf("failed to delete story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}
	r.logger.Info("Story deleted", zap.String("storyID", id.String()))
	return nil
}
