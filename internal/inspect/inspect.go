// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inspect diagnoses single pages that hang or defeat text
// extraction. It runs every backend on the page under the page timeout,
// reads the page structure, classifies the content and suggests rules for
// detecting similar pages.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf-summarizer/internal/extract"
	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

const (
	// sparseThreshold is the trimmed text length below which a page is sparse.
	sparseThreshold = 50
	sampleLength    = 200
)

// ErrPageOutOfRange is returned for a page number outside the document.
var ErrPageOutOfRange = errors.New("page number out of range")

// ErrStructureTimeout is recorded when reading the page structure takes
// longer than the page timeout.
var ErrStructureTimeout = errors.New("structure read timed out")

// Structure is what can be read from the page object itself.
type Structure struct {
	PageCount   int
	Width       float64
	Height      float64
	Rotation    int
	ImageCount  int
	Streams     int
	Columns     int
	MultiColumn bool

	TableCount    int
	ComplexLayout bool
}

// StructureFunc reads the structure of a 0-based page.
type StructureFunc func(path string, page int) (Structure, error)

// Inspector runs the diagnostics.
type Inspector struct {
	backends  []extract.Backend
	timeout   time.Duration
	structure StructureFunc
}

// New returns an Inspector probing backends with timeout per attempt.
func New(backends []extract.Backend, timeout time.Duration) *Inspector {
	return &Inspector{backends: backends, timeout: timeout, structure: ReadStructure}
}

// Inspect analyses page (1-based) of the PDF at path.
func (in *Inspector) Inspect(ctx context.Context, path string, page int) (types.PageReport, error) {
	report := types.PageReport{File: filepath.Base(path), PageNumber: page}

	info, err := os.Stat(path)
	if err != nil {
		return report, fmt.Errorf("reading %s: %w", path, err)
	}
	report.FileSizeMB = float64(info.Size()) / (1024 * 1024)

	if page < 1 {
		return report, fmt.Errorf("%w: %d", ErrPageOutOfRange, page)
	}

	st, err := in.readStructure(ctx, path, page-1)
	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	if errors.Is(err, ErrPageOutOfRange) {
		return report, err
	}
	if err != nil {
		report.StructureError = err.Error()
	} else {
		report.PageCount = st.PageCount
		report.Width = st.Width
		report.Height = st.Height
		report.Rotation = st.Rotation
		report.ImageCount = st.ImageCount
		report.Streams = st.Streams
		report.Columns = st.Columns
		report.MultiColumn = st.MultiColumn
		report.TableCount = st.TableCount
		report.ComplexLayout = st.ComplexLayout
	}

	pipeline := extract.New(in.backends, 1, in.timeout)
	session := pipeline.Open(path)
	defer session.Close()

	if report.PageCount == 0 {
		if n, err := session.PageCount(); err == nil {
			report.PageCount = n
		}
	}
	if report.PageCount > 0 && page > report.PageCount {
		return report, fmt.Errorf("%w: %d (document has %d pages)", ErrPageOutOfRange, page, report.PageCount)
	}

	var text string
	for _, b := range in.backends {
		start := time.Now()
		t, err := session.Attempt(ctx, b, page-1)
		probe := types.BackendProbe{Backend: b.Name(), Duration: time.Since(start)}
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			probe.Error = err.Error()
			probe.TimedOut = errors.Is(err, extract.ErrTimeout)
		} else {
			probe.TextLength = len(strings.TrimSpace(t))
			if text == "" && probe.TextLength > 0 {
				text = t
			}
		}
		report.Probes = append(report.Probes, probe)
	}

	report.ContentType = Classify(text, report.TableCount, report.ImageCount)
	report.TextSample = sample(text)
	report.Rules = SuggestRules(report)
	return report, nil
}

// readStructure runs the structure reader under the page timeout. A read
// that outlives the timeout is abandoned and reported as an error.
func (in *Inspector) readStructure(ctx context.Context, path string, page int) (Structure, error) {
	if in.timeout <= 0 {
		return in.structure(path, page)
	}

	type result struct {
		st  Structure
		err error
	}
	done := make(chan result, 1)
	go func() {
		st, err := in.structure(path, page)
		done <- result{st, err}
	}()

	timer := time.NewTimer(in.timeout)
	defer timer.Stop()
	select {
	case res := <-done:
		return res.st, res.err
	case <-timer.C:
		return Structure{}, fmt.Errorf("%w after %s", ErrStructureTimeout, in.timeout)
	case <-ctx.Done():
		return Structure{}, ctx.Err()
	}
}

// Classify names the dominant content of a page. The checks run in order:
// table of contents, tables, images, then text length.
func Classify(text string, tables, images int) types.ContentType {
	if strings.Contains(strings.ToLower(text), "contents") {
		return types.ContentTableOfContents
	}
	if tables > 0 {
		return types.ContentTableHeavy
	}
	if images > 0 {
		return types.ContentImageHeavy
	}
	if len(strings.TrimSpace(text)) < sparseThreshold {
		return types.ContentSparseText
	}
	return types.ContentNormalText
}

// SuggestRules proposes detection rules when the primary backend hung or
// failed on the page.
func SuggestRules(r types.PageReport) []string {
	if len(r.Probes) == 0 {
		return nil
	}
	primary := r.Probes[0]
	if primary.OK() {
		return nil
	}

	var rules []string
	if primary.TimedOut {
		rules = append(rules, fmt.Sprintf("%s hangs on this page (no result after %s)", primary.Backend, primary.Duration.Round(time.Millisecond)))
	}
	if r.ContentType == types.ContentTableOfContents {
		rules = append(rules, "detect table-of-contents pages")
	}
	switch {
	case r.TableCount > 2:
		rules = append(rules, fmt.Sprintf("detect pages with multiple tables (%d)", r.TableCount))
	case r.TableCount > 0:
		rules = append(rules, "detect pages with tables")
	}
	if r.ComplexLayout {
		rules = append(rules, fmt.Sprintf("detect complex table layouts (tables with more than %d cells)", complexTableCells))
	}
	if r.Streams > 1 {
		rules = append(rules, fmt.Sprintf("detect pages with %d content streams", r.Streams))
	}
	if r.ImageCount > 0 {
		rules = append(rules, fmt.Sprintf("detect pages with %d embedded images and route them to OCR", r.ImageCount))
	}
	if r.MultiColumn {
		rules = append(rules, fmt.Sprintf("detect %d-column layouts", r.Columns))
	}
	if r.Rotation != 0 {
		rules = append(rules, fmt.Sprintf("detect pages rotated by %d degrees", r.Rotation))
	}

	fallback := ""
	for _, p := range r.Probes[1:] {
		if p.OK() {
			fallback = p.Backend
			break
		}
	}
	if fallback != "" {
		rules = append(rules, fmt.Sprintf("put %s before %s for pages like this one", fallback, primary.Backend))
	} else {
		rules = append(rules, "no backend extracted text; enable OCR for this document")
	}
	return rules
}

func sample(text string) string {
	text = strings.TrimSpace(text)
	r := []rune(text)
	if len(r) > sampleLength {
		return string(r[:sampleLength]) + "..."
	}
	return text
}

// ReportName is the file name of the report for a 1-based page.
func ReportName(page int) string {
	return fmt.Sprintf("page_analysis_%d.yaml", page)
}

// WriteReport writes the report as YAML into dir and returns its path.
func WriteReport(dir string, r types.PageReport) (string, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, ReportName(r.PageNumber))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// PrintReport writes a human summary of r to w.
func PrintReport(w io.Writer, r types.PageReport) {
	fmt.Fprintf(w, "Page %d of %s (%d pages, %.2f MB)\n", r.PageNumber, r.File, r.PageCount, r.FileSizeMB)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	for _, p := range r.Probes {
		switch {
		case p.TimedOut:
			fmt.Fprintf(w, "  %-10s timed out after %s\n", p.Backend, p.Duration.Round(time.Millisecond))
		case p.Error != "":
			fmt.Fprintf(w, "  %-10s error: %s\n", p.Backend, p.Error)
		default:
			fmt.Fprintf(w, "  %-10s %d chars in %s\n", p.Backend, p.TextLength, p.Duration.Round(time.Millisecond))
		}
	}
	fmt.Fprintf(w, "\nContent type:    %s\n", r.ContentType)
	fmt.Fprintf(w, "Page size:       %.1f x %.1f\n", r.Width, r.Height)
	fmt.Fprintf(w, "Rotation:        %d\n", r.Rotation)
	fmt.Fprintf(w, "Images:          %d\n", r.ImageCount)
	fmt.Fprintf(w, "Content streams: %d\n", r.Streams)
	fmt.Fprintf(w, "Columns:         %d\n", r.Columns)
	fmt.Fprintf(w, "Tables:          %d\n", r.TableCount)
	if r.ComplexLayout {
		fmt.Fprintln(w, "Complex table layout")
	}
	if r.StructureError != "" {
		fmt.Fprintf(w, "Structure error: %s\n", r.StructureError)
	}
	if len(r.Rules) > 0 {
		fmt.Fprintln(w, "\nSuggested detection rules:")
		for _, rule := range r.Rules {
			fmt.Fprintf(w, "  - %s\n", rule)
		}
	}
}
