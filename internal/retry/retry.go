package retry

import (
	"context"
	"fmt"
	"time"
)

// Config bounds the attempts. The delay between tries is fixed on purpose:
// the bot polls again a few minutes later anyway, so backoff tuning buys
// nothing here.
type Config struct {
	Attempts int
	Delay    time.Duration
}

// Do runs fn up to cfg.Attempts times, sleeping cfg.Delay between failures.
// It stops early when ctx is cancelled.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == cfg.Attempts {
				return fmt.Errorf("failed after %d attempts: %w", cfg.Attempts, err)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}
