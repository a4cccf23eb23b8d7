package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(pool *pgxpool.Pool, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		pool:   pool,
		logger: logger.Named("PgUserRepo"),
	}
}

// Create persists a new user. Returns models.ErrUserAlreadyExists if the
// username or email is taken.
func (r *pgUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, email, password_hash, role, parent_id, daily_quota, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.Role, user.ParentID, user.DailyQuota, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrUserAlreadyExists
		}
		r.logger.Error("Failed to insert user", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to insert user: %w", err)
	}

	r.logger.Info("User created",
		zap.String("userID", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return nil
}

// GetByID retrieves a user by ID.
func (r *pgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, parent_id, daily_quota, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	user := &models.User{}
	if err := pgxscan.Get(ctx, r.pool, user, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by id", zap.Error(err), zap.String("userID", id.String()))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username.
func (r *pgUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, parent_id, daily_quota, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	user := &models.User{}
	if err := pgxscan.Get(ctx, r.pool, user, query, username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// ExistsByUsername reports whether a user with the given username exists.
func (r *pgUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// ListKidsByParent returns the kid accounts owned by a parent.
func (r *pgUserRepository) ListKidsByParent(ctx context.Context, parentID uuid.UUID) ([]models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, parent_id, daily_quota, created_at, updated_at
		FROM users
		WHERE parent_id = $1
		ORDER BY created_at ASC
	`
	var kids []models.User
	if err := pgxscan.Select(ctx, r.pool, &kids, query, parentID); err != nil {
		r.logger.Error("Failed to list kids", zap.Error(err), zap.String("parentID", parentID.String()))
		return nil, fmt.Errorf("failed to list kids: %w", err)
	}
	return kids, nil
}

// ListKidIDsByParent returns just the IDs of a parent's kid accounts.
func (r *pgUserRepository) ListKidIDsByParent(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT id FROM users WHERE parent_id = $1`
	rows, err := r.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list kid ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan kid id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kid id rows: %w", err)
	}
	return ids, nil
}
