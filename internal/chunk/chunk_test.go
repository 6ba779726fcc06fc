// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		maxPages int
		overlap  int
		want     [][2]int
	}{
		{name: "empty document", total: 0, maxPages: 100, overlap: 10, want: nil},
		{name: "single page", total: 1, maxPages: 100, overlap: 10, want: [][2]int{{0, 1}}},
		{name: "exactly max pages", total: 100, maxPages: 100, overlap: 10, want: [][2]int{{0, 100}}},
		{name: "one page over", total: 101, maxPages: 100, overlap: 10, want: [][2]int{{0, 100}, {90, 101}}},
		{name: "two full windows", total: 190, maxPages: 100, overlap: 10, want: [][2]int{{0, 100}, {90, 190}}},
		{name: "three windows", total: 250, maxPages: 100, overlap: 10, want: [][2]int{{0, 100}, {90, 190}, {180, 250}}},
		{name: "no overlap", total: 25, maxPages: 10, overlap: 0, want: [][2]int{{0, 10}, {10, 20}, {20, 25}}},
		{name: "overlap one less than max", total: 5, maxPages: 3, overlap: 2, want: [][2]int{{0, 3}, {1, 4}, {2, 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Plan(tt.total, tt.maxPages, tt.overlap)
			require.NoError(t, err)

			var got [][2]int
			for i, c := range chunks {
				assert.Equal(t, i, c.Index)
				got = append(got, [2]int{c.StartPage, c.EndPage})
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan_Invariants(t *testing.T) {
	for _, maxPages := range []int{1, 2, 7, 50, 100} {
		for overlap := 0; overlap < maxPages && overlap <= 12; overlap++ {
			for total := 1; total <= 400; total += 13 {
				chunks, err := Plan(total, maxPages, overlap)
				require.NoError(t, err)
				require.NotEmpty(t, chunks)

				assert.Equal(t, 0, chunks[0].StartPage)
				assert.Equal(t, total, chunks[len(chunks)-1].EndPage)

				covered := make([]bool, total)
				for i, c := range chunks {
					assert.GreaterOrEqual(t, c.Pages(), 1)
					assert.LessOrEqual(t, c.Pages(), maxPages)
					for p := c.StartPage; p < c.EndPage; p++ {
						covered[p] = true
					}
					if i > 0 {
						prev := chunks[i-1]
						assert.Greater(t, c.StartPage, prev.StartPage)
						assert.Equal(t, overlap, prev.EndPage-c.StartPage,
							"max=%d overlap=%d total=%d chunk=%d", maxPages, overlap, total, i)
					}
				}
				for p, ok := range covered {
					assert.True(t, ok, "page %d not covered (max=%d overlap=%d total=%d)", p, maxPages, overlap, total)
				}
			}
		}
	}
}

func TestPlan_Invalid(t *testing.T) {
	tests := []struct {
		name                     string
		total, maxPages, overlap int
	}{
		{"zero max pages", 10, 0, 0},
		{"negative overlap", 10, 5, -1},
		{"overlap equals max", 10, 5, 5},
		{"overlap above max", 10, 5, 6},
		{"negative total", -1, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.total, tt.maxPages, tt.overlap)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPlan))
		})
	}
}

func TestPlanConfig_Defaults(t *testing.T) {
	cfg := types.DefaultSummarizeConfig().Chunk
	chunks, err := PlanConfig(1000, cfg)
	require.NoError(t, err)
	assert.Len(t, chunks, 11)
	assert.Equal(t, "pages 1-100", chunks[0].Label())
	assert.Equal(t, "pages 901-1000", chunks[10].Label())
}
