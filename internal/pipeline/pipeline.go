// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a summarize job end to end: find the PDFs,
// concatenate, chunk, extract, summarise, aggregate, write and optionally
// upload.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pdf-summarizer/internal/chunk"
	"github.com/pdiddy/pdf-summarizer/internal/logging"
	"github.com/pdiddy/pdf-summarizer/internal/output"
	"github.com/pdiddy/pdf-summarizer/internal/pdfdoc"
	"github.com/pdiddy/pdf-summarizer/internal/publish"
	"github.com/pdiddy/pdf-summarizer/internal/summarize"
	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// ErrIncomplete is returned when the run finished but some chunk or
// aggregate document failed. The outputs that succeeded are written.
var ErrIncomplete = errors.New("run finished with failures")

// ErrNoPages is returned when the concatenated document has no pages.
var ErrNoPages = errors.New("concatenated document has no pages")

// Extractor turns chunks of a PDF into text.
type Extractor interface {
	ExtractAll(ctx context.Context, path string, chunks []types.Chunk, w io.Writer) ([]types.ChunkText, error)
}

// Runner holds the collaborators of a run.
type Runner struct {
	Extractor  Extractor
	Summarizer *summarize.Summarizer
	// Uploader is required only when an upload URI is configured.
	Uploader publish.Uploader
	Out      io.Writer

	// PageCount defaults to pdfdoc.PageCount.
	PageCount func(path string) (int, error)
	Now       func() time.Time
	NewID     func() string
}

// OutputDir returns the configured output directory or <folder>/output.
func OutputDir(folder string, cfg types.OutputConfig) string {
	if cfg.Dir != "" {
		return cfg.Dir
	}
	return filepath.Join(folder, types.DefaultOutputSubdir)
}

// Concat finds the PDFs in folder and writes concatenated.pdf to outDir.
// It returns the inputs and the path written.
func Concat(ctx context.Context, folder, outDir string, w io.Writer) ([]string, string, error) {
	inputs, err := pdfdoc.FindPDFs(folder, outDir)
	if err != nil {
		return nil, "", err
	}
	fmt.Fprintf(w, "found %d PDF file(s)\n", len(inputs))
	path := filepath.Join(outDir, types.DefaultConcatenatedName)
	if err := pdfdoc.Concatenate(ctx, inputs, path, w); err != nil {
		return inputs, "", err
	}
	return inputs, path, nil
}

func (r *Runner) defaults() {
	if r.Out == nil {
		r.Out = io.Discard
	}
	if r.PageCount == nil {
		r.PageCount = pdfdoc.PageCount
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.NewID == nil {
		r.NewID = uuid.NewString
	}
}

// Run processes folder with cfg. The manifest is returned whenever the run
// got far enough to write one.
func (r *Runner) Run(ctx context.Context, folder string, cfg types.SummarizeConfig) (*types.RunManifest, error) {
	r.defaults()
	log := logging.FromContext(ctx)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Output.UploadURI != "" && r.Uploader == nil {
		return nil, fmt.Errorf("upload to %s requested but no uploader configured", cfg.Output.UploadURI)
	}

	backend := r.Summarizer.Backend()
	m := &types.RunManifest{
		RunID:     r.NewID(),
		StartedAt: r.Now().UTC(),
		Folder:    folder,
		Provider:  types.Provider(backend.Name()),
		Model:     backend.Model(),
		Chunking:  cfg.Chunk,
	}
	outDir := OutputDir(folder, cfg.Output)
	log.Info().Str("run_id", m.RunID).Str("folder", folder).Str("output", outDir).Msg("starting run")

	inputs, concatPath, err := Concat(ctx, folder, outDir, r.Out)
	m.Inputs = inputs
	if err != nil {
		return nil, err
	}

	total, err := r.PageCount(concatPath)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, concatPath)
	}
	m.TotalPages = total
	fmt.Fprintf(r.Out, "total pages: %d\n", total)

	chunks, err := chunk.PlanConfig(total, cfg.Chunk)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(r.Out, "created %d chunk(s) of up to %d pages with %d pages overlap\n",
		len(chunks), cfg.Chunk.MaxPages, cfg.Chunk.Overlap)

	w := output.NewWriter(outDir, cfg.Output.Format, r.Out)
	w.Record(concatPath)

	records := make([]types.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i].Chunk = c
	}

	if cfg.Output.KeepChunks {
		r.writeChunkPDFs(ctx, concatPath, w, records)
	}

	texts, err := r.Extractor.ExtractAll(ctx, concatPath, chunks, r.Out)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	for i, ct := range texts {
		records[i].Methods = ct.MethodCounts()
		for _, p := range ct.Pages {
			if p.Method == types.MethodNone {
				records[i].EmptyPages = append(records[i].EmptyPages, p.Page+1)
			}
		}
	}

	summaries, batch, sumErr := r.Summarizer.SummarizeChunks(ctx, texts, r.Out)
	if sumErr != nil && !errors.Is(sumErr, summarize.ErrAllChunksFailed) {
		return nil, sumErr
	}

	for i, s := range summaries {
		rec := &records[i]
		rec.CacheHit = s.CacheHit
		rec.Skipped = s.Skipped
		if s.Err != nil {
			rec.Error = s.Err.Error()
			m.Failures = append(m.Failures, fmt.Sprintf("chunk %d (%s): %v", s.Chunk.Number(), s.Chunk.Label(), s.Err))
			continue
		}
		if !s.OK() {
			continue
		}
		paths, err := w.WriteChunkSummary(s)
		if err != nil {
			return nil, err
		}
		rec.SummaryFile = w.Rel(paths[0])
	}
	m.Chunks = records

	if sumErr == nil {
		for _, kind := range summarize.AggregateKinds {
			fmt.Fprintf(r.Out, "generating %s\n", kind.Title())
			text, err := r.Summarizer.Aggregate(ctx, kind, summaries)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				m.Failures = append(m.Failures, err.Error())
				continue
			}
			if _, err := w.WriteDocument(string(kind), kind.Title(), text); err != nil {
				return nil, err
			}
		}
	}

	fmt.Fprintf(r.Out, "\nRun summary: %d summarized (%d cached), %d skipped, %d failed (total: %d)\n",
		batch.Summarized, batch.CacheHits, batch.Skipped, batch.Failed, batch.Total())
	if batch.HasFailures() {
		fmt.Fprintf(r.Out, "failed chunks are listed in %s\n", types.DefaultManifestName)
	}

	if err := r.finish(ctx, cfg, w, m); err != nil {
		return m, err
	}

	if sumErr != nil {
		return m, sumErr
	}
	if len(m.Failures) > 0 {
		return m, fmt.Errorf("%w: %d failure(s), see %s", ErrIncomplete, len(m.Failures), types.DefaultManifestName)
	}
	return m, nil
}

// writeChunkPDFs writes one PDF per chunk into the summaries directory.
// Failures are logged; the chunk PDFs are a convenience.
func (r *Runner) writeChunkPDFs(ctx context.Context, src string, w *output.Writer, records []types.ChunkRecord) {
	log := logging.FromContext(ctx)
	for i := range records {
		c := records[i].Chunk
		path := filepath.Join(w.SummariesDir(), pdfdoc.ChunkPDFName(c))
		if err := pdfdoc.WriteChunkPDF(src, path, c); err != nil {
			log.Warn().Err(err).Int("chunk", c.Number()).Msg("could not write chunk PDF")
			continue
		}
		w.Record(path)
		records[i].ChunkPDF = w.Rel(path)
	}
}

// finish uploads the artifacts when configured and writes the manifest.
func (r *Runner) finish(ctx context.Context, cfg types.SummarizeConfig, w *output.Writer, m *types.RunManifest) error {
	m.FinishedAt = r.Now().UTC()

	if cfg.Output.UploadURI == "" {
		_, err := w.WriteManifest(m)
		return err
	}

	uploaded, err := publish.Publish(ctx, r.Uploader, cfg.Output.UploadURI, m.RunID, w.Dir(), w.Written(), r.Out)
	m.Uploaded = uploaded
	if err != nil {
		m.Failures = append(m.Failures, err.Error())
	}
	path, werr := w.WriteManifest(m)
	if werr != nil {
		return werr
	}
	if err != nil {
		return nil
	}
	more, err := publish.Publish(ctx, r.Uploader, cfg.Output.UploadURI, m.RunID, w.Dir(), []string{path}, r.Out)
	m.Uploaded = append(m.Uploaded, more...)
	if err != nil {
		m.Failures = append(m.Failures, err.Error())
	}
	return nil
}
