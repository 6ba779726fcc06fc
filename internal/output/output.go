// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output writes the run artifacts: per-chunk summaries, the final
// summary, the timeline, the dramatis personae and the run manifest.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// ruleWidth is the width of the "=" rule under a chunk header.
const ruleWidth = 50

// Writer writes artifacts under one output directory and remembers them.
type Writer struct {
	dir      string
	format   types.OutputFormat
	progress io.Writer
	written  []string
}

// NewWriter returns a Writer rooted at dir. A "saved: <path>" line goes to
// progress for each file.
func NewWriter(dir string, format types.OutputFormat, progress io.Writer) *Writer {
	if format == "" {
		format = types.FormatText
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Writer{dir: dir, format: format, progress: progress}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// SummariesDir returns the directory holding chunk summaries.
func (w *Writer) SummariesDir() string {
	return filepath.Join(w.dir, types.DefaultSummariesSubdir)
}

// Written returns every file written so far, in order.
func (w *Writer) Written() []string {
	return append([]string(nil), w.written...)
}

// Rel returns path relative to the output directory when possible.
func (w *Writer) Rel(path string) string {
	if rel, err := filepath.Rel(w.dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

// Record registers a file written by someone else, such as a chunk PDF.
func (w *Writer) Record(path string) {
	w.written = append(w.written, path)
	fmt.Fprintf(w.progress, "saved: %s\n", path)
}

// ChunkSummaryName is the base name of a chunk summary file, e.g.
// "chunk_1_pages_1-100".
func ChunkSummaryName(c types.Chunk) string {
	return fmt.Sprintf("chunk_%d_pages_%d-%d", c.Number(), c.StartPage+1, c.EndPage)
}

// ChunkHeader is the first line of a chunk summary file.
func ChunkHeader(c types.Chunk) string {
	return fmt.Sprintf("Chunk %d (Pages %d-%d)", c.Number(), c.StartPage+1, c.EndPage)
}

// ChunkSummaryText renders a chunk summary file body.
func ChunkSummaryText(c types.ChunkSummary) string {
	return ChunkHeader(c.Chunk) + "\n" + strings.Repeat("=", ruleWidth) + "\n\n" + c.Summary
}

// WriteChunkSummary writes one chunk summary in the configured formats and
// returns the paths written.
func (w *Writer) WriteChunkSummary(s types.ChunkSummary) ([]string, error) {
	if err := os.MkdirAll(w.SummariesDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating summaries directory: %w", err)
	}
	base := filepath.Join(w.SummariesDir(), ChunkSummaryName(s.Chunk))
	return w.write(base, ChunkHeader(s.Chunk), ChunkSummaryText(s), s.Summary)
}

// WriteDocument writes one aggregate document, e.g. name "timeline" with
// title "Timeline", and returns the paths written.
func (w *Writer) WriteDocument(name, title, body string) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return w.write(filepath.Join(w.dir, name), title, body, body)
}

func (w *Writer) write(base, title, text, markdown string) ([]string, error) {
	var paths []string
	if w.format.WantsText() {
		path := base + ".txt"
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		w.Record(path)
		paths = append(paths, path)
	}
	if w.format.WantsPDF() {
		path := base + ".pdf"
		if err := RenderPDF(path, title, markdown); err != nil {
			return paths, err
		}
		w.Record(path)
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteManifest writes manifest.yaml. Artifact paths are made relative to
// the output directory.
func (w *Writer) WriteManifest(m *types.RunManifest) (string, error) {
	for _, p := range w.written {
		m.AddArtifact(w.Rel(p))
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(w.dir, types.DefaultManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	w.Record(path)
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*types.RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m types.RunManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
