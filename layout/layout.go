// Package layout selects the displayable glyph subset of a parsed font and
// computes the uniform cell size and near-square grid of the sprite sheet.
// Everything here is pure arithmetic over glyph metadata; no pixels are
// touched until the raster stage.
package layout

import (
	"errors"
	"math"

	"github.com/okdsh/bmfgen/bdf"
)

// DefaultMinCodepoint keeps space and everything above it; control
// characters have no displayable bitmap.
const DefaultMinCodepoint rune = 0x20

// ErrNoGlyphs reports that filtering left nothing to lay out.
var ErrNoGlyphs = errors.New("layout: no displayable glyphs after filtering")

// Options configure the layout stage.
type Options struct {
	// MinCodepoint is the lowest codepoint the filter keeps.
	// Zero selects DefaultMinCodepoint.
	MinCodepoint rune
}

// CellSize is the uniform pixel size shared by every cell in the sheet.
type CellSize struct {
	W, H int
}

// Grid is the cell arrangement of the sheet.
type Grid struct {
	Cols, Rows int
}

// CellOrigin returns the sheet pixel origin of the i-th cell. Cells fill
// rows left to right, top to bottom, in glyph placement order.
func (g Grid) CellOrigin(i int, cell CellSize) (x, y int) {
	return (i % g.Cols) * cell.W, (i / g.Cols) * cell.H
}

// Result is the computed sheet plan. Glyphs keeps the filtered subset in
// source declaration order; that order is also the cell placement order and
// the codepoint index order, so it must not be re-sorted.
type Result struct {
	Glyphs []bdf.Glyph
	Cell   CellSize
	Grid   Grid
}

// SheetSize returns the pixel footprint of the sheet.
func (r *Result) SheetSize() (w, h int) {
	return r.Grid.Cols * r.Cell.W, r.Grid.Rows * r.Cell.H
}

// Index returns the codepoint placed in each cell, in cell order.
func (r *Result) Index() []rune {
	index := make([]rune, len(r.Glyphs))
	for i, g := range r.Glyphs {
		index[i] = g.Codepoint
	}
	return index
}

// Build filters the font's glyphs and computes cell size and grid.
// Returns ErrNoGlyphs when no glyph survives the filter.
func Build(font *bdf.Font, opts Options) (*Result, error) {
	min := opts.MinCodepoint
	if min == 0 {
		min = DefaultMinCodepoint
	}
	glyphs := Filter(font.Glyphs, min)
	if len(glyphs) == 0 {
		return nil, ErrNoGlyphs
	}
	return &Result{
		Glyphs: glyphs,
		Cell:   MeasureCell(glyphs),
		Grid:   FitGrid(len(glyphs)),
	}, nil
}

// Filter keeps the glyphs a display can use: a codepoint at or above min,
// a positive declared width and at least one bitmap row. Order is
// preserved.
func Filter(glyphs []bdf.Glyph, min rune) []bdf.Glyph {
	kept := make([]bdf.Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if !g.Mapped() || g.Codepoint < min {
			continue
		}
		if g.Bounds.W <= 0 || len(g.Rows) == 0 {
			continue
		}
		kept = append(kept, g)
	}
	return kept
}

// MeasureCell computes the uniform cell size: the maximum declared width
// and the maximum bitmap row count over the set, taken independently.
// Height deliberately comes from the actual row count rather than the
// declared BBX height; the hardware renderer's pixel alignment depends on
// this.
func MeasureCell(glyphs []bdf.Glyph) CellSize {
	var cell CellSize
	for _, g := range glyphs {
		if g.Bounds.W > cell.W {
			cell.W = g.Bounds.W
		}
		if len(g.Rows) > cell.H {
			cell.H = len(g.Rows)
		}
	}
	return cell
}

// FitGrid arranges n cells in a near-square grid: ceil(sqrt(n)) columns,
// then as many rows as needed.
func FitGrid(n int) Grid {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	if cols < 1 {
		cols = 1
	}
	rows := (n + cols - 1) / cols
	return Grid{Cols: cols, Rows: rows}
}
