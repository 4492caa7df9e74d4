package db

import (
	"context"
	"fmt"
	"time"

	"leadscope_backend/platform/config"
	"leadscope_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Startup retry policy for dependencies that may come up after the process.
const (
	StartupAttempts  = 5
	StartupBaseDelay = 2 * time.Second
)

// Retry calls fn up to attempts times, waiting attempt² × baseDelay between
// tries. It stops early when ctx is done.
func Retry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", lastErr)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*attempt) * baseDelay):
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}

// Connect opens the pool, retrying while the database is unreachable.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := Retry(ctx, log, "database connection", StartupAttempts, StartupBaseDelay, func() error {
		p, err := NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	return pool, err
}
