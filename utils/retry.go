package utils

import (
	"fmt"
	"time"
)

// AttemptPolicy holds the parameters for retrying a page-level operation.
// With Backoff false every attempt waits BaseDelay; with Backoff true the
// delay doubles after each failure.
type AttemptPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     bool
	Logger      *Logger
}

// Do executes fn until it succeeds or MaxAttempts is reached. The returned
// error wraps the last failure; callers that scrape pages append a
// placeholder listing when Do gives up.
func (p *AttemptPolicy) Do(operationName string, fn func() error) error {
	var lastErr error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < p.MaxAttempts {
			p.Logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, p.MaxAttempts, lastErr, delay)
			time.Sleep(delay)
			if p.Backoff {
				delay *= 2
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, p.MaxAttempts, lastErr)
}
