// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PlainText is the secondary backend. It walks the content streams of a
// page and returns the shown strings without layout analysis, which copes
// with some files the primary parser rejects.
type PlainText struct{}

func (PlainText) Name() string { return NamePlainText }

func (PlainText) Open(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	return &plainTextDoc{f: f, r: r}, nil
}

type plainTextDoc struct {
	f *os.File
	r *pdf.Reader
}

func (d *plainTextDoc) PageCount() (int, error) { return d.r.NumPage(), nil }

func (d *plainTextDoc) PageText(_ context.Context, page int) (string, error) {
	if page < 0 || page >= d.r.NumPage() {
		return "", fmt.Errorf("page %d out of range (1-%d)", page+1, d.r.NumPage())
	}
	p := d.r.Page(page + 1)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d not found", page+1)
	}
	return p.GetPlainText(nil)
}

func (d *plainTextDoc) Close() error { return d.f.Close() }
