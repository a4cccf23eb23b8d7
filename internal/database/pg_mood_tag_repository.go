package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// Compile-time check to ensure pgMoodTagRepository implements MoodTagRepository
var _ interfaces.MoodTagRepository = (*pgMoodTagRepository)(nil)

type pgMoodTagRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgMoodTagRepository creates a new PostgreSQL-backed MoodTagRepository.
func NewPgMoodTagRepository(pool *pgxpool.Pool, logger *zap.Logger) interfaces.MoodTagRepository {
	return &pgMoodTagRepository{
		pool:   pool,
		logger: logger.Named("PgMoodTagRepo"),
	}
}

func insertMoodTag(ctx context.Context, exec pgxExecutor, tag *models.MoodTag) error {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	tag.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO mood_tags (id, chapter_id, mood_tag, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := exec.Exec(ctx, query, tag.ID, tag.ChapterID, tag.Mood, tag.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert mood tag: %w", err)
	}
	return nil
}

// Create persists a mood tag for a chapter.
func (r *pgMoodTagRepository) Create(ctx context.Context, tag *models.MoodTag) error {
	if err := insertMoodTag(ctx, r.pool, tag); err != nil {
		r.logger.Error("Failed to insert mood tag", zap.Error(err), zap.String("chapterID", tag.ChapterID.String()))
		return err
	}
	return nil
}

// DistributionByUsers returns how often each mood appears across the
// chapters belonging to the given users' stories.
func (r *pgMoodTagRepository) DistributionByUsers(ctx context.Context, userIDs []uuid.UUID) (map[string]int64, error) {
	distribution := make(map[string]int64)
	if len(userIDs) == 0 {
		return distribution, nil
	}

	query := `
		SELECT mt.mood_tag, COUNT(*)
		FROM mood_tags mt
		JOIN chapters c ON c.id = mt.chapter_id
		JOIN stories s ON s.id = c.story_id
		WHERE s.user_id = ANY($1)
		GROUP BY mt.mood_tag
	`
	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		r.logger.Error("Failed to query mood distribution", zap.Error(err))
		return nil, fmt.Errorf("failed to query mood distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mood string
		var count int64
		if err := rows.Scan(&mood, &count); err != nil {
			return nil, fmt.Errorf("failed to scan mood distribution row: %w", err)
		}
		distribution[mood] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mood distribution rows: %w", err)
	}
	return distribution, nil
}
