// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits a page count into overlapping page ranges.
package chunk

import (
	"errors"
	"fmt"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// ErrInvalidPlan is returned when the parameters cannot produce a plan.
var ErrInvalidPlan = errors.New("invalid chunk plan")

// Plan splits totalPages into chunks of at most maxPages pages where each
// chunk after the first starts overlap pages before the previous one ended.
// A document that fits in one chunk yields exactly one chunk; an empty
// document yields none.
func Plan(totalPages, maxPages, overlap int) ([]types.Chunk, error) {
	if totalPages < 0 {
		return nil, fmt.Errorf("%w: negative page count %d", ErrInvalidPlan, totalPages)
	}
	cfg := types.ChunkConfig{MaxPages: maxPages, Overlap: overlap}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if totalPages == 0 {
		return nil, nil
	}
	if totalPages <= maxPages {
		return []types.Chunk{{Index: 0, StartPage: 0, EndPage: totalPages}}, nil
	}

	var chunks []types.Chunk
	start := 0
	for {
		end := min(start+maxPages, totalPages)
		chunks = append(chunks, types.Chunk{
			Index:     len(chunks),
			StartPage: start,
			EndPage:   end,
		})
		if end == totalPages {
			break
		}
		start = end - overlap
	}
	return chunks, nil
}

// PlanConfig is Plan with the settings taken from cfg.
func PlanConfig(totalPages int, cfg types.ChunkConfig) ([]types.Chunk, error) {
	return Plan(totalPages, cfg.MaxPages, cfg.Overlap)
}
