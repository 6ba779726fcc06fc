// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inspect

import (
	"fmt"

	"github.com/tsawler/tabula/layout"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"
)

// complexTableCells is the cell count above which a table counts as a
// complex layout.
const complexTableCells = 50

// ReadStructure reads page geometry, images, content streams, column
// layout and tables with the tabula reader.
func ReadStructure(path string, page int) (st Structure, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic reading page structure: %v", r)
		}
	}()

	r, err := reader.Open(path)
	if err != nil {
		return st, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	if st.PageCount, err = r.PageCount(); err != nil {
		return st, fmt.Errorf("counting pages: %w", err)
	}
	if page < 0 || page >= st.PageCount {
		return st, fmt.Errorf("%w: %d (document has %d pages)", ErrPageOutOfRange, page+1, st.PageCount)
	}

	p, err := r.GetPage(page)
	if err != nil {
		return st, fmt.Errorf("loading page %d: %w", page+1, err)
	}
	st.Width, _ = p.Width()
	st.Height, _ = p.Height()
	st.Rotation = p.Rotate()

	if streams, err := p.Contents(); err == nil {
		st.Streams = len(streams)
	}
	if imgs, err := r.ExtractPageImages(p); err == nil {
		st.ImageCount = len(imgs)
	}

	fragments, err := r.ExtractTextFragments(p)
	if err != nil {
		return st, fmt.Errorf("reading text fragments: %w", err)
	}
	cols := layout.NewColumnDetector().Detect(fragments, st.Width, st.Height)
	if cols != nil {
		st.Columns = cols.ColumnCount()
		st.MultiColumn = cols.IsMultiColumn()
	}

	found, err := tables.NewGeometricDetector().Detect(tablePage(st, fragments))
	if err != nil {
		return st, fmt.Errorf("detecting tables: %w", err)
	}
	st.TableCount, st.ComplexLayout = tableStats(found)
	return st, nil
}

// tablePage builds the model page the table detector works on.
func tablePage(st Structure, fragments []text.TextFragment) *model.Page {
	page := model.NewPage(st.Width, st.Height)
	page.Rotation = st.Rotation
	page.RawText = make([]model.TextFragment, 0, len(fragments))
	for _, f := range fragments {
		page.RawText = append(page.RawText, model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		})
	}
	return page
}

// tableStats counts tables and reports whether any has more than
// complexTableCells cells.
func tableStats(found []*model.Table) (count int, crowded bool) {
	for _, t := range found {
		if t == nil {
			continue
		}
		count++
		cells := 0
		for _, row := range t.Rows {
			cells += len(row)
		}
		if cells > complexTableCells {
			crowded = true
		}
	}
	return count, crowded
}
