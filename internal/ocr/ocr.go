// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr recognises text on page images. It is the last resort of the
// extraction pipeline for scanned pages with no text layer.
//
// Two engines are available: the Tesseract library through gosseract,
// compiled in with the "ocr" build tag, and the tesseract binary run as a
// subprocess. NewEngine prefers the library.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/pdf-summarizer/internal/command"
)

// ErrOCRNotEnabled is returned when no OCR engine is available.
var ErrOCRNotEnabled = errors.New("OCR not available: rebuild with -tags ocr or install tesseract")

// Engine recognises text in a PNG image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, png []byte) (string, error)
	Close() error
}

// NewEngine returns the gosseract engine when compiled in, otherwise the
// tesseract CLI engine when the binary is on PATH.
func NewEngine(lang string, r command.Runner) (Engine, error) {
	if lang == "" {
		lang = "eng"
	}
	if e, err := newGosseract(lang); err == nil {
		return e, nil
	} else if !errors.Is(err, ErrOCRNotEnabled) {
		return nil, err
	}
	if command.Available(r, command.BinTesseract) {
		return NewTesseractCLI(lang, r), nil
	}
	return nil, ErrOCRNotEnabled
}

// TesseractCLI runs the tesseract binary, feeding the image on stdin.
type TesseractCLI struct {
	lang   string
	runner command.Runner
}

// NewTesseractCLI returns an engine backed by the tesseract binary.
func NewTesseractCLI(lang string, r command.Runner) *TesseractCLI {
	if r == nil {
		r = command.Default
	}
	return &TesseractCLI{lang: lang, runner: r}
}

func (t *TesseractCLI) Name() string { return command.BinTesseract }

// Recognize runs `tesseract stdin stdout -l <lang>`.
func (t *TesseractCLI) Recognize(ctx context.Context, png []byte) (string, error) {
	args := []string{"stdin", "stdout", "-l", t.lang}
	out, err := command.Output(ctx, t.runner, command.BinTesseract, args, bytes.NewReader(png))
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (t *TesseractCLI) Close() error { return nil }
