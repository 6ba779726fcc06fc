// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf-summarizer/internal/output"
	"github.com/pdiddy/pdf-summarizer/internal/pdfdoc"
	"github.com/pdiddy/pdf-summarizer/internal/summarize"
	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// --- fakes ---

// fakeExtractor returns one ChunkText per chunk. Chunks listed in empty get
// no text and every page marked MethodNone.
type fakeExtractor struct {
	empty map[int]bool
	err   error
	path  string
}

func (f *fakeExtractor) ExtractAll(_ context.Context, path string, chunks []types.Chunk, _ io.Writer) ([]types.ChunkText, error) {
	f.path = path
	if f.err != nil {
		return nil, f.err
	}
	texts := make([]types.ChunkText, len(chunks))
	for i, c := range chunks {
		ct := types.ChunkText{Chunk: c}
		for p := c.StartPage; p < c.EndPage; p++ {
			if f.empty[c.Index] {
				ct.Pages = append(ct.Pages, types.PageText{Page: p, Method: types.MethodNone})
				continue
			}
			ct.Pages = append(ct.Pages, types.PageText{Page: p, Method: "tabula", Text: fmt.Sprintf("page %d", p+1)})
			ct.Text += fmt.Sprintf("page %d\n", p+1)
		}
		texts[i] = ct
	}
	return texts, nil
}

type mockBackend struct {
	fail  func(prompt string) bool
	calls int
}

func (m *mockBackend) Complete(_ context.Context, prompt string) (string, error) {
	m.calls++
	if m.fail != nil && m.fail(prompt) {
		return "", &summarize.APIError{Provider: "mock", StatusCode: 400, Body: "bad request"}
	}
	if strings.Contains(prompt, "document chunk") {
		return "chunk summary", nil
	}
	return "## Aggregate\n\nbody", nil
}

func (m *mockBackend) Name() string  { return "claude" }
func (m *mockBackend) Model() string { return "mock-model" }

type mockUploader struct {
	objects []string
	failOn  string
}

func (m *mockUploader) Upload(_ context.Context, bucket, object, _ string) error {
	if m.failOn != "" && strings.HasSuffix(object, m.failOn) {
		return errors.New("permission denied")
	}
	m.objects = append(m.objects, bucket+"/"+object)
	return nil
}

// --- helpers ---

// newFolder creates a folder holding one input PDF. A single input is
// copied rather than merged, so its content does not need to parse.
func newFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("%PDF-1.4\n"), 0o644))
	return dir
}

func writeTestPDF(t *testing.T, path string, pages int) {
	t.Helper()
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Cell(0, 20, fmt.Sprintf("page %d", i))
	}
	require.NoError(t, pdf.OutputFileAndClose(path))
}

func newRunner(ext Extractor, backend summarize.AIBackend, pages int) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Runner{
		Extractor:  ext,
		Summarizer: summarize.New(backend, summarize.Options{MaxRetries: 1}),
		Out:        &out,
		PageCount:  func(string) (int, error) { return pages, nil },
		Now:        func() time.Time { return fixed },
		NewID:      func() string { return "run-1" },
	}, &out
}

func testConfig() types.SummarizeConfig {
	cfg := types.DefaultSummarizeConfig()
	cfg.Cache.Enabled = false
	return cfg
}

// --- tests ---

func TestOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("docs", "output"), OutputDir("docs", types.OutputConfig{}))
	assert.Equal(t, "/tmp/out", OutputDir("docs", types.OutputConfig{Dir: "/tmp/out"}))
}

func TestRunWritesAllArtifacts(t *testing.T) {
	folder := newFolder(t)
	ext := &fakeExtractor{}
	r, out := newRunner(ext, &mockBackend{}, 250)

	m, err := r.Run(context.Background(), folder, testConfig())
	require.NoError(t, err)

	outDir := filepath.Join(folder, "output")
	assert.Equal(t, filepath.Join(outDir, types.DefaultConcatenatedName), ext.path)

	for _, name := range []string{
		"concatenated.pdf",
		"summaries/chunk_1_pages_1-100.txt",
		"summaries/chunk_2_pages_91-190.txt",
		"summaries/chunk_3_pages_181-250.txt",
		"final_summary.txt",
		"timeline.txt",
		"dramatis_personae.txt",
		"manifest.yaml",
	} {
		assert.FileExists(t, filepath.Join(outDir, filepath.FromSlash(name)))
	}

	data, err := os.ReadFile(filepath.Join(outDir, "summaries", "chunk_2_pages_91-190.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Chunk 2 (Pages 91-190)\n"))

	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, 250, m.TotalPages)
	assert.Equal(t, types.ProviderClaude, m.Provider)
	require.Len(t, m.Chunks, 3)
	assert.Equal(t, "summaries/chunk_1_pages_1-100.txt", m.Chunks[0].SummaryFile)
	assert.Equal(t, 100, m.Chunks[0].Methods["tabula"])
	assert.Empty(t, m.Failures)

	onDisk, err := output.ReadManifest(filepath.Join(outDir, "manifest.yaml"))
	require.NoError(t, err)
	assert.Contains(t, onDisk.Artifacts, "timeline.txt")
	assert.Contains(t, onDisk.Artifacts, "concatenated.pdf")

	assert.Contains(t, out.String(), "created 3 chunk(s) of up to 100 pages with 10 pages overlap")
	assert.Contains(t, out.String(), "Run summary: 3 summarized (0 cached), 0 skipped, 0 failed (total: 3)")
	assert.NotContains(t, out.String(), "failed chunks are listed")
}

func TestRunPartialFailure(t *testing.T) {
	folder := newFolder(t)
	ext := &fakeExtractor{empty: map[int]bool{1: true}}
	backend := &mockBackend{fail: func(p string) bool { return strings.Contains(p, "3 of 3") }}
	r, out := newRunner(ext, backend, 250)

	m, err := r.Run(context.Background(), folder, testConfig())
	require.ErrorIs(t, err, ErrIncomplete)
	require.NotNil(t, m)

	outDir := filepath.Join(folder, "output")
	assert.FileExists(t, filepath.Join(outDir, "summaries", "chunk_1_pages_1-100.txt"))
	assert.NoFileExists(t, filepath.Join(outDir, "summaries", "chunk_2_pages_91-190.txt"))
	assert.NoFileExists(t, filepath.Join(outDir, "summaries", "chunk_3_pages_181-250.txt"))
	assert.FileExists(t, filepath.Join(outDir, "final_summary.txt"))

	assert.True(t, m.Chunks[1].Skipped)
	assert.Len(t, m.Chunks[1].EmptyPages, 100)
	assert.Equal(t, 91, m.Chunks[1].EmptyPages[0])
	assert.NotEmpty(t, m.Chunks[2].Error)
	require.Len(t, m.Failures, 1)
	assert.Contains(t, m.Failures[0], "chunk 3 (pages 181-250)")

	assert.Contains(t, out.String(), "1 summarized (0 cached), 1 skipped, 1 failed (total: 3)")
	assert.Contains(t, out.String(), "failed chunks are listed in manifest.yaml")
}

func TestRunAllChunksFail(t *testing.T) {
	folder := newFolder(t)
	backend := &mockBackend{fail: func(string) bool { return true }}
	r, _ := newRunner(&fakeExtractor{}, backend, 50)

	m, err := r.Run(context.Background(), folder, testConfig())
	require.ErrorIs(t, err, summarize.ErrAllChunksFailed)
	require.NotNil(t, m)

	outDir := filepath.Join(folder, "output")
	assert.NoFileExists(t, filepath.Join(outDir, "final_summary.txt"))
	assert.FileExists(t, filepath.Join(outDir, "manifest.yaml"))
	// One chunk attempt, no aggregate calls.
	assert.Equal(t, 1, backend.calls)
}

func TestRunAggregateFailureContinues(t *testing.T) {
	folder := newFolder(t)
	backend := &mockBackend{fail: func(p string) bool { return strings.Contains(p, "chronological timeline") }}
	r, _ := newRunner(&fakeExtractor{}, backend, 10)

	m, err := r.Run(context.Background(), folder, testConfig())
	require.ErrorIs(t, err, ErrIncomplete)

	outDir := filepath.Join(folder, "output")
	assert.FileExists(t, filepath.Join(outDir, "final_summary.txt"))
	assert.FileExists(t, filepath.Join(outDir, "dramatis_personae.txt"))
	assert.NoFileExists(t, filepath.Join(outDir, "timeline.txt"))
	require.Len(t, m.Failures, 1)
	assert.Contains(t, m.Failures[0], "timeline")
}

func TestRunKeepChunks(t *testing.T) {
	folder := t.TempDir()
	writeTestPDF(t, filepath.Join(folder, "doc.pdf"), 10)
	r, _ := newRunner(&fakeExtractor{}, &mockBackend{}, 10)

	cfg := testConfig()
	cfg.Output.KeepChunks = true
	cfg.Chunk = types.ChunkConfig{MaxPages: 6, Overlap: 2}

	m, err := r.Run(context.Background(), folder, cfg)
	require.NoError(t, err)
	require.Len(t, m.Chunks, 2)
	assert.Equal(t, "summaries/chunk_1_pages_1-6.pdf", m.Chunks[0].ChunkPDF)
	assert.Equal(t, "summaries/chunk_2_pages_5-10.pdf", m.Chunks[1].ChunkPDF)

	n, err := pdfdoc.PageCount(filepath.Join(folder, "output", "summaries", "chunk_2_pages_5-10.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestRunUpload(t *testing.T) {
	folder := newFolder(t)
	up := &mockUploader{}
	r, out := newRunner(&fakeExtractor{}, &mockBackend{}, 10)
	r.Uploader = up

	cfg := testConfig()
	cfg.Output.UploadURI = "gs://bucket/summaries"

	m, err := r.Run(context.Background(), folder, cfg)
	require.NoError(t, err)

	assert.Contains(t, up.objects, "bucket/summaries/run-1/concatenated.pdf")
	assert.Contains(t, up.objects, "bucket/summaries/run-1/summaries/chunk_1_pages_1-10.txt")
	assert.Contains(t, up.objects, "bucket/summaries/run-1/manifest.yaml")
	assert.Equal(t, "bucket/summaries/run-1/manifest.yaml", up.objects[len(up.objects)-1])
	assert.Contains(t, m.Uploaded, "gs://bucket/summaries/run-1/timeline.txt")
	assert.Contains(t, out.String(), "uploaded: gs://bucket/summaries/run-1/manifest.yaml")
}

func TestRunUploadFailureIsRecorded(t *testing.T) {
	folder := newFolder(t)
	up := &mockUploader{failOn: "timeline.txt"}
	r, _ := newRunner(&fakeExtractor{}, &mockBackend{}, 10)
	r.Uploader = up

	cfg := testConfig()
	cfg.Output.UploadURI = "gs://bucket"

	m, err := r.Run(context.Background(), folder, cfg)
	require.ErrorIs(t, err, ErrIncomplete)
	require.Len(t, m.Failures, 1)
	assert.Contains(t, m.Failures[0], "permission denied")
	assert.FileExists(t, filepath.Join(folder, "output", "manifest.yaml"))
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		cfg     func() types.SummarizeConfig
		ext     *fakeExtractor
		wantErr error
		wantMsg string
	}{
		{
			name:    "no PDFs",
			setup:   func(t *testing.T) string { return t.TempDir() },
			cfg:     testConfig,
			ext:     &fakeExtractor{},
			wantErr: pdfdoc.ErrNoPDFs,
		},
		{
			name:  "invalid chunking",
			setup: newFolder,
			cfg: func() types.SummarizeConfig {
				cfg := testConfig()
				cfg.Chunk.Overlap = cfg.Chunk.MaxPages
				return cfg
			},
			ext:     &fakeExtractor{},
			wantMsg: "overlap",
		},
		{
			name:  "upload without uploader",
			setup: newFolder,
			cfg: func() types.SummarizeConfig {
				cfg := testConfig()
				cfg.Output.UploadURI = "gs://bucket"
				return cfg
			},
			ext:     &fakeExtractor{},
			wantMsg: "no uploader",
		},
		{
			name:    "extraction error",
			setup:   newFolder,
			cfg:     testConfig,
			ext:     &fakeExtractor{err: errors.New("boom")},
			wantMsg: "extracting text: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRunner(tt.ext, &mockBackend{}, 10)
			m, err := r.Run(context.Background(), tt.setup(t), tt.cfg())
			require.Error(t, err)
			assert.Nil(t, m)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRunEmptyDocument(t *testing.T) {
	folder := newFolder(t)
	ext := &fakeExtractor{}
	backend := &mockBackend{}
	r, out := newRunner(ext, backend, 0)

	m, err := r.Run(context.Background(), folder, testConfig())
	require.ErrorIs(t, err, ErrNoPages)
	assert.Nil(t, m)
	assert.Zero(t, backend.calls)
	assert.Empty(t, ext.path)
	assert.NotContains(t, out.String(), "Run summary")
	assert.NoFileExists(t, filepath.Join(folder, "output", "final_summary.txt"))
	assert.NoFileExists(t, filepath.Join(folder, "output", "manifest.yaml"))
}

func TestConcat(t *testing.T) {
	folder := newFolder(t)
	outDir := t.TempDir()
	var out bytes.Buffer

	inputs, path, err := Concat(context.Background(), folder, outDir, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(folder, "doc.pdf")}, inputs)
	assert.Equal(t, filepath.Join(outDir, "concatenated.pdf"), path)
	assert.FileExists(t, path)
	assert.Contains(t, out.String(), "found 1 PDF file(s)")
}
