// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

func TestChunkNaming(t *testing.T) {
	tests := []struct {
		chunk      types.Chunk
		wantName   string
		wantHeader string
	}{
		{types.Chunk{Index: 0, StartPage: 0, EndPage: 100}, "chunk_1_pages_1-100", "Chunk 1 (Pages 1-100)"},
		{types.Chunk{Index: 1, StartPage: 90, EndPage: 190}, "chunk_2_pages_91-190", "Chunk 2 (Pages 91-190)"},
		{types.Chunk{Index: 0, StartPage: 0, EndPage: 1}, "chunk_1_pages_1-1", "Chunk 1 (Pages 1-1)"},
	}
	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			assert.Equal(t, tt.wantName, ChunkSummaryName(tt.chunk))
			assert.Equal(t, tt.wantHeader, ChunkHeader(tt.chunk))
		})
	}
}

func TestWriteChunkSummary_Text(t *testing.T) {
	dir := t.TempDir()
	var progress bytes.Buffer
	w := NewWriter(dir, types.FormatText, &progress)

	s := types.ChunkSummary{Chunk: types.Chunk{Index: 1, StartPage: 90, EndPage: 190}, Summary: "The summary."}
	paths, err := w.WriteChunkSummary(s)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	want := filepath.Join(dir, "summaries", "chunk_2_pages_91-190.txt")
	assert.Equal(t, want, paths[0])

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "Chunk 2 (Pages 91-190)\n"+strings.Repeat("=", 50)+"\n\nThe summary.", string(data))
	assert.Contains(t, progress.String(), "saved: "+want)
}

func TestWriteDocument_Formats(t *testing.T) {
	tests := []struct {
		format types.OutputFormat
		want   []string
	}{
		{types.FormatText, []string{"timeline.txt"}},
		{types.FormatPDF, []string{"timeline.pdf"}},
		{types.FormatBoth, []string{"timeline.txt", "timeline.pdf"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			dir := t.TempDir()
			w := NewWriter(dir, tt.format, nil)

			paths, err := w.WriteDocument("timeline", "Timeline", "- 1990: Founded\n- 2001: Merger\n")
			require.NoError(t, err)
			require.Len(t, paths, len(tt.want))
			for i, name := range tt.want {
				assert.Equal(t, filepath.Join(dir, name), paths[i])
				info, err := os.Stat(paths[i])
				require.NoError(t, err)
				assert.Positive(t, info.Size())
			}
			assert.Equal(t, paths, w.Written())
		})
	}
}

func TestRenderPDF_Markdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final_summary.pdf")
	md := strings.Join([]string{
		"# OVERALL SUMMARY",
		"",
		"A **bold** claim and an *aside* about café prices — with “quotes”.",
		"",
		"## MAIN THEMES",
		"",
		"1. First theme",
		"2. Second theme",
		"   - nested point",
		"",
		"> quoted text",
		"",
		"---",
		"",
		"```",
		"code line",
		"```",
		"",
		"**Jane Doe** - Chief Executive",
	}, "\n")

	require.NoError(t, RenderPDF(path, "Final Summary", md))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderPDF_LongDocumentPaginates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.pdf")
	md := strings.Repeat("A paragraph of summary text that wraps across the line.\n\n", 300)
	require.NoError(t, RenderPDF(path, "Long", md))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Greater(t, bytes.Count(data, []byte("/Type /Page\n")), 1)
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, types.FormatText, nil)

	_, err := w.WriteDocument("final_summary", "Final Summary", "text")
	require.NoError(t, err)

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := &types.RunManifest{
		RunID:      "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Folder:     "/docs",
		Inputs:     []string{"/docs/a.pdf"},
		TotalPages: 150,
		Provider:   types.ProviderClaude,
		Model:      "m",
		Chunking:   types.ChunkConfig{MaxPages: 100, Overlap: 10},
		Chunks: []types.ChunkRecord{{
			Chunk:       types.Chunk{Index: 0, EndPage: 100},
			Methods:     map[types.ExtractionMethod]int{"tabula": 99, "none": 1},
			EmptyPages:  []int{42},
			SummaryFile: "summaries/chunk_1_pages_1-100.txt",
		}},
		Failures: []string{"chunk 2: boom"},
	}

	path, err := w.WriteManifest(m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manifest.yaml"), path)

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 150, got.TotalPages)
	assert.Equal(t, []string{"final_summary.txt"}, got.Artifacts)
	require.Len(t, got.Chunks, 1)
	assert.Equal(t, 99, got.Chunks[0].Methods["tabula"])
	assert.Equal(t, []int{42}, got.Chunks[0].EmptyPages)
	assert.Equal(t, []string{"chunk 2: boom"}, got.Failures)
}

func TestWriter_Rel(t *testing.T) {
	w := NewWriter("/out", types.FormatText, nil)
	assert.Equal(t, "summaries/x.txt", w.Rel("/out/summaries/x.txt"))
	assert.Equal(t, "/elsewhere/x.txt", w.Rel("/elsewhere/x.txt"))
}
