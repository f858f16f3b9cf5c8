package runstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/promptops/experiment-hub/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	lockTTL    = 10 * time.Minute
	lastRunTTL = 24 * time.Hour
)

// RedisTracker implements Tracker on a shared Redis instance so the lock
// holds across replicas.
type RedisTracker struct {
	client *redis.Client
	logger *zerolog.Logger
}

func NewRedisTracker(client *redis.Client, logger *zerolog.Logger) *RedisTracker {
	return &RedisTracker{
		client: client,
		logger: logger,
	}
}

func lockKey(experimentID int64) string {
	return fmt.Sprintf("run:lock:%d", experimentID)
}

func lastRunKey(experimentID int64) string {
	return fmt.Sprintf("run:last:%d", experimentID)
}

func (t *RedisTracker) TryAcquire(ctx context.Context, experimentID int64) (bool, error) {
	acquired, err := t.client.SetNX(ctx, lockKey(experimentID), "running", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return acquired, nil
}

func (t *RedisTracker) Release(ctx context.Context, experimentID int64) error {
	if err := t.client.Del(ctx, lockKey(experimentID)).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

func (t *RedisTracker) SetLastRun(ctx context.Context, experimentID int64, report models.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	if err := t.client.Set(ctx, lastRunKey(experimentID), data, lastRunTTL).Err(); err != nil {
		return fmt.Errorf("failed to store run report: %w", err)
	}
	return nil
}

func (t *RedisTracker) LastRun(ctx context.Context, experimentID int64) (*models.RunReport, error) {
	data, err := t.client.Get(ctx, lastRunKey(experimentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}

	var report models.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
	}
	return &report, nil
}

// Connect dials Redis with a bounded retry loop.
func Connect(ctx context.Context, addr string, password string, maxRetries int, logger *zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              0,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})

	var err error
	for i := range maxRetries {
		if i > 0 {
			backoff := time.Duration(1<<uint(i)) * time.Second
			logger.Info().Dur("backoff", backoff).Msg("Waiting before Redis retry")
			time.Sleep(backoff)
		}

		logger.Info().Int("attempt", i+1).Int("max_retries", maxRetries).Msg("Connecting to Redis")

		err = client.Ping(ctx).Err()
		if err == nil {
			logger.Info().Int("attempts_needed", i+1).Msg("Redis connected")
			return client, nil
		}

		logger.Warn().Err(err).Int("attempt", i+1).Msg("Redis ping failed")
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxRetries, err)
}
