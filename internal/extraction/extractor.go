package extraction

import (
	"context"
	"errors"

	"github.com/zombor/cashclose/internal/closing"
)

var (
	// ErrMissingCredential is returned when a provider is built without its API key
	ErrMissingCredential = errors.New("extraction provider credential is missing")
	// ErrNoStructuredOutput is returned when the provider answers without a usable JSON object
	ErrNoStructuredOutput = errors.New("no structured output from extraction provider")
)

// Extractor reads a closing sheet and returns the figures it found
type Extractor interface {
	// Extract analyzes a closing sheet image/PDF and returns the raw figures
	Extract(ctx context.Context, data []byte, contentType string) (*closing.RawExtraction, error)
	// Close releases the provider client
	Close() error
}
