package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "boardharvest/pkg/errors"
	"boardharvest/pkg/logger"
)

// Policy controls how often and how patiently an operation is re-run
type Policy struct {
	// MaxAttempts counts the first try. Values below 1 mean a single try.
	MaxAttempts int
	Backoff     Backoff
	// RetryIf decides whether an error is transient. nil means Transient.
	RetryIf func(error) bool
	Logger  logger.Logger
}

// DefaultPolicy tries three times with DefaultBackoff
func DefaultPolicy(log logger.Logger) Policy {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return Policy{
		MaxAttempts: 3,
		Backoff:     DefaultBackoff(),
		RetryIf:     Transient,
		Logger:      log,
	}
}

// Transient reports whether err is worth another attempt: network failures,
// 429 and 5xx responses. Cancellation never is.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Type {
	case apperrors.ErrorTypeNetwork:
		return true
	case apperrors.ErrorTypeHTTPStatus:
		return appErr.Code == http.StatusTooManyRequests || appErr.Code >= 500
	default:
		return false
	}
}

// Do runs op until it succeeds, fails permanently, runs out of attempts or
// ctx is done.
func Do(ctx context.Context, p Policy, op func() error) error {
	_, err := DoWithResult(ctx, p, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

// DoWithResult is Do for operations that produce a value
func DoWithResult[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	retryIf := p.RetryIf
	if retryIf == nil {
		retryIf = Transient
	}
	log := p.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op()
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("Operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return result, nil
		}

		if !retryIf(err) {
			return zero, err
		}
		if attempt >= maxAttempts {
			return zero, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff.NextDelay(attempt)
		}
		log.WithError(err).WarnWithFields("Retrying after transient failure", map[string]interface{}{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
			"delay":        delay,
		})

		if werr := Wait(ctx, delay); werr != nil {
			return zero, fmt.Errorf("retry interrupted: %w", werr)
		}
	}
}
