package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrInvalidToken = fmt.Errorf("invalid auth token")

	// Input data errors
	ErrMalformedRow   = fmt.Errorf("malformed row")
	ErrValidation     = fmt.Errorf("validation failed")
	ErrTimestampParse = fmt.Errorf("timestamp parse failed")

	// Progress file errors
	ErrCorruptProgress  = fmt.Errorf("corrupt progress file")
	ErrProgressMismatch = fmt.Errorf("progress file does not match input")

	// API and service errors
	ErrSubmission         = fmt.Errorf("submission failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
