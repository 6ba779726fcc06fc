// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"strconv"

	"github.com/pdiddy/pdf-summarizer/internal/command"
)

// Pdftotext runs poppler's pdftotext binary one page at a time.
type Pdftotext struct {
	runner command.Runner
}

// NewPdftotext returns a backend that runs pdftotext through r.
func NewPdftotext(r command.Runner) *Pdftotext {
	if r == nil {
		r = command.Default
	}
	return &Pdftotext{runner: r}
}

func (p *Pdftotext) Name() string { return NamePdftotext }

func (p *Pdftotext) Open(path string) (Document, error) {
	return &pdftotextDoc{runner: p.runner, path: path}, nil
}

type pdftotextDoc struct {
	runner command.Runner
	path   string
}

func (d *pdftotextDoc) PageCount() (int, error) { return 0, ErrUnsupported }

// PageText runs `pdftotext -f N -l N -enc UTF-8 -layout <path> -`.
func (d *pdftotextDoc) PageText(ctx context.Context, page int) (string, error) {
	n := strconv.Itoa(page + 1)
	args := []string{"-f", n, "-l", n, "-enc", "UTF-8", "-layout", d.path, "-"}
	out, err := command.Output(ctx, d.runner, command.BinPdftotext, args, nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (d *pdftotextDoc) Close() error { return nil }
