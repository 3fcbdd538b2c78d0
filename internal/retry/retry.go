// Package retry is the single retry decorator for the module. Nothing
// else in the tree loops on failures; callers that want retries wrap
// the operation here so policy lives in one place.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/utils"
	"google.golang.org/api/googleapi"
)

// Policy controls attempt count and backoff shape.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	logger     logging.Logger
}

// NewPolicy creates a retry policy
func NewPolicy(maxRetries int, baseDelay time.Duration, logger logging.Logger) *Policy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = time.Duration(utils.DefaultRetryDelayMs) * time.Millisecond
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Policy{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxDelay:   time.Duration(utils.MaxRetryDelayMs) * time.Millisecond,
		logger:     logger,
	}
}

// Do executes an operation with exponential backoff. Whether an error
// is worth retrying is decided solely by its classified category, so
// adding a category to the taxonomy automatically picks the right
// behavior here.
func Do[T any](ctx context.Context, policy *Policy, operation string, fn func(context.Context) (T, error)) (T, error) {
	var result T
	var lastErr error

	start := time.Now()

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		result, lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 0 {
				policy.logger.Info("operation recovered after retry",
					logging.F("operation", operation),
					logging.F("attempts", attempt+1),
					logging.F("duration_ms", time.Since(start).Milliseconds()),
				)
			}
			return result, nil
		}

		if !Retryable(lastErr) {
			policy.logger.Error("operation failed (non-retryable)",
				logging.F("operation", operation),
				logging.F("category", utils.CategoryOf(lastErr)),
				logging.F("attempts", attempt+1),
			)
			return result, lastErr
		}

		if attempt < policy.MaxRetries {
			delay := policy.backoff(attempt, lastErr)
			policy.logger.Warn("operation failed (retryable)",
				logging.F("operation", operation),
				logging.F("category", utils.CategoryOf(lastErr)),
				logging.F("attempt", attempt+1),
				logging.F("delay_ms", delay.Milliseconds()),
			)
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	policy.logger.Error("operation failed after max retries",
		logging.F("operation", operation),
		logging.F("attempts", policy.MaxRetries+1),
		logging.F("duration_ms", time.Since(start).Milliseconds()),
	)
	return result, lastErr
}

// Retryable reports whether err carries a retryable classification.
// Unclassified errors fall back to transport-level status codes.
func Retryable(err error) bool {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.ClientError.Retryable
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}

// backoff computes the delay before the next attempt. A server-sent
// Retry-After wins over the exponential schedule.
func (p *Policy) backoff(attempt int, err error) time.Duration {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if retryAfter := apiErr.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, parseErr := strconv.Atoi(retryAfter); parseErr == nil {
				delay := time.Duration(seconds) * time.Second
				if delay > p.MaxDelay {
					return p.MaxDelay
				}
				return delay
			}
		}
	}

	delay := p.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	// Jitter of up to 25% either way keeps concurrent callers from
	// hammering the API in lockstep.
	jitterRange := delay / 4
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(int64(jitterRange*2))) - jitterRange
	}
	if delay < 0 {
		delay = p.BaseDelay
	}
	return delay
}
