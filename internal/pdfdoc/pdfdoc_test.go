// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// writeTestPDF writes a PDF with the given number of text pages.
func writeTestPDF(t *testing.T, path string, pages int) {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		doc.AddPage()
		doc.Cell(40, 10, fmt.Sprintf("%s page %d", filepath.Base(path), i))
	}
	require.NoError(t, doc.OutputFileAndClose(path))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))
}

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"b.pdf", "a.PDF", "c.txt", ".hidden.pdf",
		"concatenated.pdf", "final_summary.pdf", "chunk_1_pages_1-100.pdf",
	} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "output"), 0o755))
	touch(t, filepath.Join(dir, "output", "nested.pdf"))

	tests := []struct {
		name      string
		outputDir string
		want      []string
	}{
		{
			name:      "separate output folder keeps inputs with output names",
			outputDir: filepath.Join(dir, "output"),
			want:      []string{"a.PDF", "b.pdf", "chunk_1_pages_1-100.pdf", "final_summary.pdf"},
		},
		{
			name:      "output folder is the input folder",
			outputDir: dir,
			want:      []string{"a.PDF", "b.pdf"},
		},
		{
			name:      "relative spelling of the input folder",
			outputDir: filepath.Join(dir, "output", ".."),
			want:      []string{"a.PDF", "b.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindPDFs(dir, tt.outputDir)
			require.NoError(t, err)
			var want []string
			for _, name := range tt.want {
				want = append(want, filepath.Join(dir, name))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestFindPDFs_KeepsChunkLikeInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"chunk_1_intro.pdf", "final_summary.pdf", "b.pdf"} {
		touch(t, filepath.Join(dir, name))
	}

	got, err := FindPDFs(dir, filepath.Join(dir, "output"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "chunk_1_intro.pdf"),
		filepath.Join(dir, "final_summary.pdf"),
	}, got)
}

func TestFindPDFs_Empty(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"))

	_, err := FindPDFs(dir, filepath.Join(dir, "output"))
	assert.ErrorIs(t, err, ErrNoPDFs)
}

func TestFindPDFs_MissingDir(t *testing.T) {
	_, err := FindPDFs(filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoPDFs)
}

func TestIsGenerated(t *testing.T) {
	assert.True(t, IsGenerated("Concatenated.pdf"))
	assert.True(t, IsGenerated("timeline.pdf"))
	assert.True(t, IsGenerated("chunk_3_pages_181-280.pdf"))
	assert.False(t, IsGenerated("chunk_1_intro.pdf"))
	assert.False(t, IsGenerated("chapter_1.pdf"))
}

func TestChunkNames(t *testing.T) {
	c := types.Chunk{Index: 1, StartPage: 90, EndPage: 190}
	assert.Equal(t, "chunk_2_pages_91-190.pdf", ChunkPDFName(c))
	assert.Equal(t, []string{"91-190"}, PageSelection(c))
}

func TestConcatenate_SingleInputIsCopied(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "only.pdf")
	writeTestPDF(t, src, 2)

	out := filepath.Join(dir, "output", "concatenated.pdf")
	var log bytes.Buffer
	require.NoError(t, Concatenate(context.Background(), []string{src}, out, &log))

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Contains(t, log.String(), "adding only.pdf")
}

func TestConcatenate_MergesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	writeTestPDF(t, a, 2)
	writeTestPDF(t, b, 3)

	out := filepath.Join(dir, "output", "concatenated.pdf")
	var log bytes.Buffer
	require.NoError(t, Concatenate(context.Background(), []string{a, b}, out, &log))

	n, err := PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	chunkPath := filepath.Join(dir, "output", "chunk.pdf")
	require.NoError(t, WriteChunkPDF(out, chunkPath, types.Chunk{Index: 0, StartPage: 1, EndPage: 4}))
	n, err = PageCount(chunkPath)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestConcatenate_Errors(t *testing.T) {
	var log bytes.Buffer
	assert.ErrorIs(t, Concatenate(context.Background(), nil, filepath.Join(t.TempDir(), "x.pdf"), &log), ErrNoPDFs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Concatenate(ctx, []string{"a.pdf"}, filepath.Join(t.TempDir(), "x.pdf"), &log)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteChunkPDF_EmptyChunk(t *testing.T) {
	err := WriteChunkPDF("in.pdf", "out.pdf", types.Chunk{StartPage: 3, EndPage: 3})
	assert.Error(t, err)
}
