package importer

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/lbx/internal/services"
	"github.com/desertthunder/lbx/internal/shared"
)

// BackoffPolicy bounds how a failing operation is retried.
type BackoffPolicy struct {
	MaxAttempts int           // total attempts, including the first
	Initial     time.Duration // delay before the second attempt
	Multiplier  float64       // delay growth per attempt

	// Notify, when set, is called with the failed attempt number and the
	// upcoming wait before each retry sleep.
	Notify func(attempt int, wait time.Duration)
}

// DefaultBackoff retries a batch three times with 2s/4s waits between
// attempts.
var DefaultBackoff = BackoffPolicy{
	MaxAttempts: 3,
	Initial:     2 * time.Second,
	Multiplier:  2,
}

// normalize fills zero fields with DefaultBackoff values.
func (p BackoffPolicy) normalize() BackoffPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultBackoff.MaxAttempts
	}
	if p.Initial <= 0 {
		p.Initial = DefaultBackoff.Initial
	}
	if p.Multiplier <= 1 {
		p.Multiplier = DefaultBackoff.Multiplier
	}
	return p
}

// Retry runs op until it succeeds, fails permanently, or the attempt bound
// is hit.
//
// Only transient failures are retried: rate limits and server errors (see
// [services.APIError.Transient]) plus plain transport errors. An invalid
// token or any other client error returns immediately. When the server
// suggested a wait (rate-limit headers) that wait replaces the backoff delay.
// Context cancellation interrupts both op and the waits.
func Retry(ctx context.Context, policy BackoffPolicy, op func() error) error {
	policy = policy.normalize()
	delay := policy.Initial

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil {
			return nil
		}

		if !transient(err) || attempt >= policy.MaxAttempts {
			return err
		}

		wait := delay
		var apiErr *services.APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}
		delay = time.Duration(float64(delay) * policy.Multiplier)

		if policy.Notify != nil {
			policy.Notify(attempt, wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// transient classifies an error as retryable.
func transient(err error) bool {
	if errors.Is(err, shared.ErrInvalidToken) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}

	// No API response at all: a transport-level failure, worth retrying.
	return true
}
