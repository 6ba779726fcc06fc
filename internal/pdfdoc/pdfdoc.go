// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc finds input PDFs, concatenates them, counts pages, and
// writes per-chunk PDFs.
package pdfdoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// ErrNoPDFs is returned when a folder contains no input PDFs.
var ErrNoPDFs = errors.New("no PDF files found")

// outputNames are the aggregate documents a run writes into the output
// directory.
var outputNames = map[string]bool{
	"final_summary.pdf":     true,
	"timeline.pdf":          true,
	"dramatis_personae.pdf": true,
}

var chunkPDFPattern = regexp.MustCompile(`^chunk_\d+_pages_\d+-\d+\.pdf$`)

// IsGenerated reports whether name is a PDF this tool writes into an
// output directory.
func IsGenerated(name string) bool {
	lower := strings.ToLower(name)
	return lower == types.DefaultConcatenatedName || outputNames[lower] || chunkPDFPattern.MatchString(lower)
}

// sameDir reports whether a and b name the same directory.
func sameDir(a, b string) bool {
	if b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// FindPDFs lists the PDFs directly inside dir, sorted by file name.
// Matching is case-insensitive. concatenated.pdf is always skipped; the
// other files a run writes are skipped only when outputDir is dir itself,
// so inputs that merely share an output name are kept.
func FindPDFs(dir, outputDir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", dir, err)
	}
	skipOutputs := sameDir(dir, outputDir)

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		if strings.EqualFold(name, types.DefaultConcatenatedName) {
			continue
		}
		if skipOutputs && IsGenerated(name) {
			continue
		}
		pdfs = append(pdfs, filepath.Join(dir, name))
	}

	if len(pdfs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPDFs, dir)
	}

	sort.Slice(pdfs, func(i, j int) bool {
		return filepath.Base(pdfs[i]) < filepath.Base(pdfs[j])
	})
	return pdfs, nil
}

func pdfcpuConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Concatenate merges inputs in order into outPath. A single input is copied.
func Concatenate(ctx context.Context, inputs []string, outPath string, w io.Writer) error {
	if len(inputs) == 0 {
		return ErrNoPDFs
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintf(w, "concatenating %d PDF file(s)\n", len(inputs))
	for _, in := range inputs {
		fmt.Fprintf(w, "  adding %s\n", filepath.Base(in))
	}

	if len(inputs) == 1 {
		if err := copyFile(inputs[0], outPath); err != nil {
			return fmt.Errorf("copying %s: %w", inputs[0], err)
		}
	} else if err := api.MergeCreateFile(inputs, outPath, false, pdfcpuConfig()); err != nil {
		return fmt.Errorf("merging PDFs: %w", err)
	}

	fmt.Fprintf(w, "concatenated PDF saved to %s\n", outPath)
	return ctx.Err()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages in %s: %w", path, err)
	}
	return n, nil
}

// ChunkPDFName is the file name of a chunk's standalone PDF.
func ChunkPDFName(c types.Chunk) string {
	return fmt.Sprintf("chunk_%d_pages_%d-%d.pdf", c.Number(), c.StartPage+1, c.EndPage)
}

// PageSelection renders a chunk as a pdfcpu page selection ("1-100").
func PageSelection(c types.Chunk) []string {
	return []string{fmt.Sprintf("%d-%d", c.StartPage+1, c.EndPage)}
}

// WriteChunkPDF writes the pages of c from src into outPath.
func WriteChunkPDF(src, outPath string, c types.Chunk) error {
	if c.Pages() <= 0 {
		return fmt.Errorf("chunk %d has no pages", c.Number())
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating chunk directory: %w", err)
	}
	if err := api.TrimFile(src, outPath, PageSelection(c), pdfcpuConfig()); err != nil {
		return fmt.Errorf("writing chunk %d PDF: %w", c.Number(), err)
	}
	return nil
}
