package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// Compile-time check to ensure redisQuotaLedger implements QuotaLedger
var _ interfaces.QuotaLedger = (*redisQuotaLedger)(nil)

// checkAndIncrementScript atomically checks the day's counter against the
// limit and increments it. The key expires at the next local midnight so
// the quota resets with the calendar day. Returns -1 when the quota is
// exhausted, otherwise the new counter value.
var checkAndIncrementScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return -1
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('EXPIREAT', KEYS[1], tonumber(ARGV[2]))
end
return current
`)

type redisQuotaLedger struct {
	client *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewRedisQuotaLedger creates a Redis-backed daily generation quota ledger.
func NewRedisQuotaLedger(client *redis.Client, logger *zap.Logger) interfaces.QuotaLedger {
	return &redisQuotaLedger{
		client: client,
		logger: logger.Named("RedisQuotaLedger"),
		now:    time.Now,
	}
}

func quotaKey(userID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("quota:user:%s:%s", userID, day.Format("2006-01-02"))
}

func nextMidnight(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
}

// CheckAndIncrement consumes one unit of the user's daily quota. Returns
// models.ErrQuotaExceeded when the limit is already reached; the counter
// is not incremented in that case.
func (l *redisQuotaLedger) CheckAndIncrement(ctx context.Context, userID uuid.UUID, limit int) error {
	now := l.now()
	key := quotaKey(userID, now)
	expireAt := nextMidnight(now).Unix()

	result, err := checkAndIncrementScript.Run(ctx, l.client, []string{key}, limit, expireAt).Int64()
	if err != nil {
		l.logger.Error("Failed to run quota script", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("failed to check quota: %w", err)
	}
	if result == -1 {
		l.logger.Info("Daily quota exceeded",
			zap.String("userID", userID.String()),
			zap.Int("limit", limit),
		)
		return models.ErrQuotaExceeded
	}

	l.logger.Debug("Quota consumed",
		zap.String("userID", userID.String()),
		zap.Int64("used", result),
		zap.Int("limit", limit),
	)
	return nil
}

// Remaining returns how many generations the user has left today.
func (l *redisQuotaLedger) Remaining(ctx context.Context, userID uuid.UUID, limit int) (int, error) {
	key := quotaKey(userID, l.now())
	value, err := l.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return limit, nil
		}
		return 0, fmt.Errorf("failed to read quota counter: %w", err)
	}

	used, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse quota counter %q: %w", value, err)
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset clears the user's counter for today.
func (l *redisQuotaLedger) Reset(ctx context.Context, userID uuid.UUID) error {
	key := quotaKey(userID, l.now())
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to reset quota counter: %w", err)
	}
	l.logger.Info("Quota reset", zap.String("userID", userID.String()))
	return nil
}
