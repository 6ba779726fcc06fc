//go:build !ocr

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

func newGosseract(string) (Engine, error) {
	return nil, ErrOCRNotEnabled
}
