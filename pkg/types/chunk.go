// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Chunk is a contiguous page range of the concatenated document.
// Pages are 0-based; EndPage is exclusive.
type Chunk struct {
	Index     int `json:"index" yaml:"index"`
	StartPage int `json:"start_page" yaml:"start_page"`
	EndPage   int `json:"end_page" yaml:"end_page"`
}

// Pages returns the number of pages in the chunk.
func (c Chunk) Pages() int { return c.EndPage - c.StartPage }

// Number is the 1-based chunk number used in file names and prompts.
func (c Chunk) Number() int { return c.Index + 1 }

// Label renders the 1-based inclusive page range, e.g. "pages 1-100".
func (c Chunk) Label() string {
	return fmt.Sprintf("pages %d-%d", c.StartPage+1, c.EndPage)
}

// ExtractionMethod names the backend that produced a page's text.
type ExtractionMethod string

// MethodNone marks a page where every backend failed.
const MethodNone ExtractionMethod = "none"

// Attempt records a failed extraction attempt on one page.
type Attempt struct {
	Method ExtractionMethod `json:"method" yaml:"method"`
	Error  string           `json:"error" yaml:"error"`
}

// PageText is the extracted text of one page (0-based).
type PageText struct {
	Page     int              `json:"page" yaml:"page"`
	Text     string           `json:"-" yaml:"-"`
	Method   ExtractionMethod `json:"method" yaml:"method"`
	Failures []Attempt        `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// ChunkText is the extracted text of one chunk.
type ChunkText struct {
	Chunk Chunk      `json:"chunk" yaml:"chunk"`
	Pages []PageText `json:"pages" yaml:"pages"`
	Text  string     `json:"-" yaml:"-"`
}

// MethodCounts tallies pages per extraction method.
func (c ChunkText) MethodCounts() map[ExtractionMethod]int {
	counts := make(map[ExtractionMethod]int)
	for _, p := range c.Pages {
		counts[p.Method]++
	}
	return counts
}

// ChunkSummary is the model's summary of one chunk.
type ChunkSummary struct {
	Chunk    Chunk  `json:"chunk" yaml:"chunk"`
	Summary  string `json:"-" yaml:"-"`
	Err      error  `json:"-" yaml:"-"`
	Skipped  bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	CacheHit bool   `json:"cache_hit,omitempty" yaml:"cache_hit,omitempty"`
}

// OK reports whether the chunk produced a usable summary.
func (s ChunkSummary) OK() bool { return s.Err == nil && !s.Skipped && s.Summary != "" }
