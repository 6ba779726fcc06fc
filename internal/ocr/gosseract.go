//go:build ocr

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract wraps a Tesseract client. The client is not safe for concurrent
// use, so calls are serialised.
type Gosseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func newGosseract(lang string) (Engine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting OCR language %q: %w", lang, err)
	}
	return &Gosseract{client: client}, nil
}

func (g *Gosseract) Name() string { return "gosseract" }

func (g *Gosseract) Recognize(ctx context.Context, png []byte) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := g.client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("setting OCR image: %w", err)
	}
	text, err := g.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (g *Gosseract) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.client.Close()
}
