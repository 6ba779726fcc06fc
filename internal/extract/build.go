// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/pdiddy/pdf-summarizer/internal/command"
	"github.com/pdiddy/pdf-summarizer/internal/logging"
	"github.com/pdiddy/pdf-summarizer/internal/ocr"
	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// Build assembles a pipeline from the configured extractor names. Backends
// whose binaries are missing are skipped with a warning. OCR is appended
// last when enabled and not already listed.
func Build(ctx context.Context, cfg types.ExtractionConfig, r command.Runner) (*Pipeline, error) {
	if r == nil {
		r = command.Default
	}
	log := logging.FromContext(ctx)

	names := cfg.Extractors
	if len(names) == 0 {
		names = types.DefaultExtractors
	}
	if cfg.OCR.Enabled && !slices.Contains(names, NameOCR) {
		names = append(slices.Clone(names), NameOCR)
	}

	var backends []Backend
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case NameTabula:
			backends = append(backends, Tabula{})
		case NamePlainText:
			backends = append(backends, PlainText{})
		case NamePdftotext:
			if !command.Available(r, command.BinPdftotext) {
				log.Warn().Str("binary", command.BinPdftotext).Msg("binary not found, skipping extractor")
				continue
			}
			backends = append(backends, NewPdftotext(r))
		case NameOCR:
			engine, err := ocr.NewEngine(cfg.OCR.Language, r)
			if errors.Is(err, ocr.ErrOCRNotEnabled) {
				log.Warn().Err(err).Msg("skipping OCR extractor")
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("starting OCR engine: %w", err)
			}
			log.Debug().Str("engine", engine.Name()).Msg("OCR enabled")
			backends = append(backends, NewOCR(engine, ocr.NewImager(r, cfg.OCR.DPI)))
		default:
			return nil, fmt.Errorf("unknown extractor %q (want %s, %s, %s or %s)",
				name, NameTabula, NamePlainText, NamePdftotext, NameOCR)
		}
	}

	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	return New(backends, cfg.MinChars, cfg.PageTimeout), nil
}
