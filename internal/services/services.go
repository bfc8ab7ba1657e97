// package services defines interface Service for interacting with listen-tracking HTTP APIs
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/lbx/internal/models"
)

// Service defines the interface for listen-tracking providers that accept
// batched listen submissions.
type Service interface {
	// ValidateToken checks the configured user token against the service and
	// returns the account name it belongs to.
	ValidateToken(ctx context.Context) (string, error)

	// SubmitListens submits one batch of listens. The batch must respect the
	// service's per-request limit; callers own batching and ordering.
	SubmitListens(ctx context.Context, listens []models.Listen) error

	// Name returns the name of the service (e.g., "ListenBrainz")
	Name() string
}

// APIError represents a non-2xx response from a service.
type APIError struct {
	StatusCode int
	Message    string
	// RetryAfter is the server-suggested wait before retrying, when the
	// response carried one (rate-limit headers). Zero otherwise.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}

// Transient reports whether the error is worth retrying: rate limiting or a
// server-side failure.
func (e *APIError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
