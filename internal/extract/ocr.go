// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"

	"github.com/pdiddy/pdf-summarizer/internal/ocr"
)

// OCR is the last-resort backend. It recognises the page images of
// scanned pages that have no text layer.
type OCR struct {
	engine ocr.Engine
	imager ocr.PageImager
}

// NewOCR returns a backend over engine and imager. Both are closed by Close.
func NewOCR(engine ocr.Engine, imager ocr.PageImager) *OCR {
	return &OCR{engine: engine, imager: imager}
}

func (o *OCR) Name() string { return NameOCR }

func (o *OCR) Open(path string) (Document, error) {
	return &ocrDoc{o: o, path: path}, nil
}

// Close releases the engine and the imager's readers.
func (o *OCR) Close() error {
	return errors.Join(o.engine.Close(), o.imager.Close())
}

type ocrDoc struct {
	o    *OCR
	path string
}

func (d *ocrDoc) PageCount() (int, error) { return 0, ErrUnsupported }

func (d *ocrDoc) PageText(ctx context.Context, page int) (string, error) {
	return ocr.PageText(ctx, d.o.engine, d.o.imager, d.path, page)
}

func (d *ocrDoc) Close() error { return nil }
