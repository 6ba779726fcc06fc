// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/reader"

	"github.com/pdiddy/pdf-summarizer/internal/logging"
)

// Tabula is the primary backend. It reads the text layer with layout-aware
// fragment assembly.
type Tabula struct{}

func (Tabula) Name() string { return NameTabula }

func (Tabula) Open(path string) (Document, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	return &tabulaDoc{r: r}, nil
}

type tabulaDoc struct {
	r *reader.Reader
}

func (d *tabulaDoc) PageCount() (int, error) { return d.r.PageCount() }

func (d *tabulaDoc) PageText(ctx context.Context, page int) (string, error) {
	text, warnings, err := tabula.FromReader(d.r).Pages(page + 1).Text()
	if err != nil {
		return "", err
	}
	if len(warnings) > 0 {
		logging.FromContext(ctx).Debug().Int("page", page+1).Int("warnings", len(warnings)).Msg("tabula reported warnings")
	}
	return text, nil
}

func (d *tabulaDoc) Close() error { return d.r.Close() }
