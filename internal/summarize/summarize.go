// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize sends chunk text to a language-model API and builds the
// final summary, timeline and dramatis personae from the chunk summaries.
package summarize

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pdf-summarizer/internal/logging"
	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// ErrAllChunksFailed is returned when no chunk produced a summary.
var ErrAllChunksFailed = errors.New("no chunk could be summarized")

// Cache stores responses by prompt key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, kind, model, text string) error
}

// BatchSummary holds counts from summarising the chunks.
type BatchSummary struct {
	Summarized int
	CacheHits  int
	Skipped    int
	Failed     int
}

// Total returns the number of chunks processed.
func (s BatchSummary) Total() int {
	return s.Summarized + s.Skipped + s.Failed
}

// HasFailures reports whether any chunk failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Options configures a Summarizer.
type Options struct {
	// MaxRetries is the number of retries after a failed call (default 3).
	MaxRetries int
	// RequestsPerMinute spaces calls to the backend; 0 disables the limiter.
	RequestsPerMinute int
	// Cache is optional.
	Cache Cache
}

// Summarizer wraps an AIBackend with retries, rate limiting and caching.
type Summarizer struct {
	backend    AIBackend
	cache      Cache
	limiter    *rate.Limiter
	maxRetries int
}

// New returns a Summarizer around backend.
func New(backend AIBackend, opts Options) *Summarizer {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = types.DefaultMaxRetries
	}
	s := &Summarizer{
		backend:    backend,
		cache:      opts.Cache,
		maxRetries: maxRetries,
	}
	if opts.RequestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return s
}

// Backend returns the wrapped backend.
func (s *Summarizer) Backend() AIBackend { return s.backend }

// CacheKey identifies a response by provider, model, prompt kind and prompt.
func CacheKey(provider, model string, kind Kind, prompt string) string {
	h := sha256.New()
	for _, part := range []string{provider, model, string(kind), prompt} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Complete returns the response for prompt, from the cache when possible.
// The boolean reports a cache hit.
func (s *Summarizer) Complete(ctx context.Context, kind Kind, prompt string) (string, bool, error) {
	log := logging.FromContext(ctx)
	key := CacheKey(s.backend.Name(), s.backend.Model(), kind, prompt)

	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("cache lookup failed")
		} else if ok {
			return text, true, nil
		}
	}

	text, err := s.callWithRetry(ctx, prompt)
	if err != nil {
		return "", false, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, string(kind), s.backend.Model(), text); err != nil {
			log.Warn().Err(err).Msg("cache store failed")
		}
	}
	return text, false, nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = 2 * time.Second

// callWithRetry calls the backend with exponential backoff. Errors the API
// marks as permanent (bad key, bad request) are not retried.
func (s *Summarizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			logging.FromContext(ctx).Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", backoff).Msg("retrying API call")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		text, err := s.backend.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d retries: %w", s.maxRetries, lastErr)
}

// SummarizeChunks summarises each chunk in order, printing a line per chunk
// to w. Chunks without text are skipped and failed chunks are recorded;
// both leave the rest of the run going. ErrAllChunksFailed is returned when
// nothing was summarised.
func (s *Summarizer) SummarizeChunks(ctx context.Context, texts []types.ChunkText, w io.Writer) ([]types.ChunkSummary, BatchSummary, error) {
	var summary BatchSummary
	results := make([]types.ChunkSummary, 0, len(texts))
	total := len(texts)

	for _, ct := range texts {
		res := types.ChunkSummary{Chunk: ct.Chunk}
		n := ct.Chunk.Number()

		if strings.TrimSpace(ct.Text) == "" {
			fmt.Fprintf(w, "skipped chunk %d/%d (%s): no text extracted\n", n, total, ct.Chunk.Label())
			res.Skipped = true
			summary.Skipped++
			results = append(results, res)
			continue
		}

		prompt, err := RenderChunkPrompt(ct, total)
		if err != nil {
			return results, summary, err
		}

		fmt.Fprintf(w, "summarizing chunk %d/%d (%s)\n", n, total, ct.Chunk.Label())
		text, hit, err := s.Complete(ctx, KindChunkSummary, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return results, summary, ctx.Err()
			}
			fmt.Fprintf(w, "failed  chunk %d/%d: %v\n", n, total, err)
			res.Err = err
			summary.Failed++
			results = append(results, res)
			continue
		}

		res.Summary = text
		res.CacheHit = hit
		summary.Summarized++
		if hit {
			summary.CacheHits++
		}
		results = append(results, res)
	}

	if summary.Summarized == 0 && total > 0 {
		return results, summary, ErrAllChunksFailed
	}
	return results, summary, nil
}

// Aggregate builds one of the AggregateKinds from the usable summaries.
func (s *Summarizer) Aggregate(ctx context.Context, kind Kind, summaries []types.ChunkSummary) (string, error) {
	prompt, err := RenderAggregatePrompt(kind, summaries)
	if err != nil {
		return "", err
	}
	if CombineSummaries(summaries) == "" {
		return "", ErrAllChunksFailed
	}
	text, _, err := s.Complete(ctx, kind, prompt)
	if err != nil {
		return "", fmt.Errorf("generating %s: %w", kind, err)
	}
	return text, nil
}
