package raster

import (
	"github.com/okdsh/bmfgen/bdf"
	"github.com/okdsh/bmfgen/layout"
)

// FlipVertical maps a top-origin row index to the bottom-origin row
// convention of the target display hardware. Kept as a named transform so a
// future top-origin target is a one-line change.
func FlipVertical(y, height int) int { return height - 1 - y }

// DrawGlyph renders one glyph into a fresh cell-sized bitmap. Row y, bit x
// of the source (most significant bit = leftmost of the declared width)
// lands at (x, FlipVertical(y, cell.H)); every other cell pixel stays
// clear.
func DrawGlyph(g bdf.Glyph, cell layout.CellSize) *Bitmap {
	bm := New(cell.W, cell.H)
	w := g.Bounds.W
	for y, mask := range g.Rows {
		for x := 0; x < w; x++ {
			if mask>>uint(w-1-x)&1 == 1 {
				bm.Set(x, FlipVertical(y, cell.H), true)
			}
		}
	}
	return bm
}

// Render rasterizes every glyph of the plan into one sprite sheet. Cells
// are written strictly in placement order; regions are disjoint by
// construction and the single sheet buffer has a single writer, so the loop
// stays serial.
func Render(plan *layout.Result) *Bitmap {
	w, h := plan.SheetSize()
	sheet := New(w, h)
	for i, g := range plan.Glyphs {
		ox, oy := plan.Grid.CellOrigin(i, plan.Cell)
		sheet.Blit(DrawGlyph(g, plan.Cell), ox, oy)
	}
	return sheet
}
