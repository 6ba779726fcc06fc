// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ContentType classifies what a page mostly contains.
type ContentType string

const (
	ContentTableOfContents ContentType = "table_of_contents"
	ContentTableHeavy      ContentType = "table_heavy"
	ContentImageHeavy      ContentType = "image_heavy"
	ContentSparseText      ContentType = "sparse_text"
	ContentNormalText      ContentType = "normal_text"
	ContentUnknown         ContentType = "unknown"
)

// BackendProbe is the outcome of running one text backend on one page.
type BackendProbe struct {
	Backend    string        `yaml:"backend"`
	TextLength int           `yaml:"text_length"`
	Duration   time.Duration `yaml:"duration"`
	TimedOut   bool          `yaml:"timed_out,omitempty"`
	Error      string        `yaml:"error,omitempty"`
}

// OK reports whether the backend produced text.
func (p BackendProbe) OK() bool { return p.Error == "" && !p.TimedOut && p.TextLength > 0 }

// PageReport describes one page for diagnosing extraction problems.
type PageReport struct {
	File          string         `yaml:"file"`
	FileSizeMB    float64        `yaml:"file_size_mb"`
	PageNumber    int            `yaml:"page_number"` // 1-based
	PageCount     int            `yaml:"page_count"`
	Width         float64        `yaml:"width,omitempty"`
	Height        float64        `yaml:"height,omitempty"`
	Rotation      int            `yaml:"rotation"`
	ImageCount    int            `yaml:"image_count"`
	Streams       int            `yaml:"content_streams"`
	Columns       int            `yaml:"columns"`
	MultiColumn   bool           `yaml:"multi_column"`
	TableCount    int            `yaml:"table_count"`
	ComplexLayout bool           `yaml:"complex_layout"`
	ContentType   ContentType    `yaml:"content_type"`
	TextSample    string         `yaml:"text_sample,omitempty"`
	Probes        []BackendProbe `yaml:"probes"`
	Rules         []string       `yaml:"suggested_rules,omitempty"`

	// StructureError is set when the page structure could not be read.
	StructureError string `yaml:"structure_error,omitempty"`
}

// Probe returns the probe for a backend, if it ran.
func (r PageReport) Probe(backend string) (BackendProbe, bool) {
	for _, p := range r.Probes {
		if p.Backend == backend {
			return p, true
		}
	}
	return BackendProbe{}, false
}
