// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the configuration and data structures shared by
// the pdf-summarizer packages.
package types

import (
	"errors"
	"fmt"
	"time"
)

// Default values shared by the CLI, the config file and the tests.
const (
	DefaultMaxPages          = 100
	DefaultOverlap           = 10
	DefaultMinChars          = 1
	DefaultPageTimeout       = 30 * time.Second
	DefaultOCRLanguage       = "eng"
	DefaultOCRDPI            = 300
	DefaultMaxRetries        = 3
	DefaultMaxTokens         = 4000
	DefaultRequestTimeout    = 5 * time.Minute
	DefaultClaudeModel       = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultOutputSubdir      = "output"
	DefaultSummariesSubdir   = "summaries"
	DefaultCacheSubdir       = ".cache"
	DefaultConcatenatedName  = "concatenated.pdf"
	DefaultManifestName      = "manifest.yaml"
	DefaultRequestsPerMinute = 0
)

// DefaultExtractors is the fallback order used when none is configured.
// OCR is appended by the pipeline when enabled.
var DefaultExtractors = []string{"tabula", "plaintext", "pdftotext"}

// ChunkConfig controls how the concatenated document is split.
type ChunkConfig struct {
	// MaxPages is the largest number of pages in one chunk (default 100).
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`

	// Overlap is the number of pages shared by adjacent chunks (default 10).
	Overlap int `json:"overlap" yaml:"overlap" mapstructure:"overlap"`
}

// Validate reports whether the chunk settings describe a terminating plan.
func (c ChunkConfig) Validate() error {
	if c.MaxPages <= 0 {
		return fmt.Errorf("max_pages must be positive, got %d", c.MaxPages)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("overlap must not be negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.MaxPages {
		return fmt.Errorf("overlap (%d) must be smaller than max_pages (%d)", c.Overlap, c.MaxPages)
	}
	return nil
}

// OCRConfig controls the last-resort OCR extractor.
type OCRConfig struct {
	// Enabled appends the OCR extractor to the fallback chain.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Language is the Tesseract language string, e.g. "eng" or "eng+fra".
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// DPI is the resolution used when a page has to be rendered for OCR.
	DPI int `json:"dpi" yaml:"dpi" mapstructure:"dpi"`
}

// ExtractionConfig holds settings for the text extraction pipeline.
type ExtractionConfig struct {
	// Extractors lists text backends in fallback order.
	Extractors []string `json:"extractors" yaml:"extractors" mapstructure:"extractors"`

	// MinChars is the minimum trimmed text length for an attempt to count
	// as a success. Shorter results fall through to the next backend.
	MinChars int `json:"min_chars" yaml:"min_chars" mapstructure:"min_chars"`

	// PageTimeout bounds a single backend attempt on a single page.
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout" mapstructure:"page_timeout"`

	OCR OCRConfig `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
}

// Provider names the language-model API.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
)

// AIConfig holds settings for the language-model calls.
type AIConfig struct {
	// Provider selects the API: claude or gemini.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MaxTokens caps the length of each response (default 4000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// RequestsPerMinute spaces API calls; 0 disables the limiter.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute" mapstructure:"requests_per_minute"`

	// Timeout is the HTTP timeout of one API call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ModelOrDefault returns the configured model or the provider default.
func (c AIConfig) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultClaudeModel
}

// OutputFormat selects which file formats the writers produce.
type OutputFormat string

const (
	FormatText OutputFormat = "txt"
	FormatPDF  OutputFormat = "pdf"
	FormatBoth OutputFormat = "both"
)

// WantsText reports whether .txt files are written.
func (f OutputFormat) WantsText() bool { return f == FormatText || f == FormatBoth || f == "" }

// WantsPDF reports whether .pdf files are written.
func (f OutputFormat) WantsPDF() bool { return f == FormatPDF || f == FormatBoth }

// OutputConfig holds settings for the artifact writers.
type OutputConfig struct {
	// Dir is the output directory. Empty means <folder>/output.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Format selects txt, pdf, or both.
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`

	// KeepChunks writes one PDF per chunk next to the summaries.
	KeepChunks bool `json:"keep_chunks" yaml:"keep_chunks" mapstructure:"keep_chunks"`

	// UploadURI is an optional gs://bucket/prefix destination.
	UploadURI string `json:"upload_uri,omitempty" yaml:"upload_uri,omitempty" mapstructure:"upload_uri"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite file. Empty means <output>/.cache/responses.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
}

// SummarizeConfig groups every setting of a summarize run.
type SummarizeConfig struct {
	Chunk      ChunkConfig      `json:"chunk" yaml:"chunk" mapstructure:"chunk"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Cache      CacheConfig      `json:"cache" yaml:"cache" mapstructure:"cache"`
}

// DefaultSummarizeConfig returns the settings used when nothing is configured.
func DefaultSummarizeConfig() SummarizeConfig {
	return SummarizeConfig{
		Chunk: ChunkConfig{
			MaxPages: DefaultMaxPages,
			Overlap:  DefaultOverlap,
		},
		Extraction: ExtractionConfig{
			Extractors:  append([]string(nil), DefaultExtractors...),
			MinChars:    DefaultMinChars,
			PageTimeout: DefaultPageTimeout,
			OCR: OCRConfig{
				Enabled:  true,
				Language: DefaultOCRLanguage,
				DPI:      DefaultOCRDPI,
			},
		},
		AI: AIConfig{
			Provider:   ProviderClaude,
			MaxRetries: DefaultMaxRetries,
			MaxTokens:  DefaultMaxTokens,
			Timeout:    DefaultRequestTimeout,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
	}
}

// Validate checks the settings that would otherwise fail deep in the pipeline.
func (c SummarizeConfig) Validate() error {
	var errs []error
	if err := c.Chunk.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.AI.Provider {
	case ProviderClaude, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (want claude or gemini)", c.AI.Provider))
	}
	switch c.Output.Format {
	case FormatText, FormatPDF, FormatBoth:
	default:
		errs = append(errs, fmt.Errorf("unknown format %q (want txt, pdf or both)", c.Output.Format))
	}
	if len(c.Extraction.Extractors) == 0 && !c.Extraction.OCR.Enabled {
		errs = append(errs, errors.New("no extractors configured and OCR disabled"))
	}
	if c.Extraction.PageTimeout < 0 {
		errs = append(errs, fmt.Errorf("page_timeout must not be negative, got %s", c.Extraction.PageTimeout))
	}
	return errors.Join(errs...)
}
