// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// ErrMissingAPIKey is returned when the configured provider has no key.
var ErrMissingAPIKey = errors.New("API key not configured")

// AIBackend abstracts the language-model API so tests can supply a mock.
// Each call sends one prompt and returns the response text.
type AIBackend interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
	Model() string
}

// APIError is a non-2xx response from a language-model API.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
	// Exhausted is set when the transport already spent its own retries
	// on this status.
	Exhausted bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request may succeed. Errors the
// transport already retried are not retried again.
func (e *APIError) Retryable() bool {
	if e.Exhausted {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NewBackend builds the backend selected by cfg.Provider.
func NewBackend(ctx context.Context, cfg types.AIConfig, client *http.Client) (AIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %s", ErrMissingAPIKey, cfg.Provider)
	}
	switch cfg.Provider {
	case types.ProviderClaude, "":
		return &ClaudeBackend{
			APIKey:     cfg.APIKey,
			ModelName:  cfg.ModelOrDefault(),
			MaxTokens:  cfg.MaxTokens,
			MaxRetries: cfg.MaxRetries,
			Client:     client,
		}, nil
	case types.ProviderGemini:
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.ModelOrDefault(), cfg.MaxTokens, client)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
