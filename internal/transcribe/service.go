package transcribe

import (
	"context"
	"fmt"
)

// Options configures a transcription request.
type Options struct {
	Language    string  // BCP-47 code; empty or "auto" lets the service detect
	Model       string  // service-specific model override
	Temperature float64 // sampling temperature, 0.0 to 1.0
}

// Service is the contract a speech-to-text adapter must satisfy.
type Service interface {
	// Transcribe converts the audio file to timed text segments.
	Transcribe(ctx context.Context, audioPath string, opts Options) (*Result, error)

	// SupportedFormats returns the audio extensions the service accepts.
	SupportedFormats() []string

	// Available reports whether the service is usable (credentials set).
	Available() bool

	// Name identifies the service in logs.
	Name() string
}

// APIError is a transcription endpoint failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("transcription failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx) and rate limiting.
// Other client errors (4xx) are considered permanent.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
