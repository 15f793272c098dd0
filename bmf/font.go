package bmf

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/okdsh/bmfgen/raster"
)

// Font is a loaded artifact ready for rendering: it resolves codepoints to
// their glyph cells and measures strings for layout.
type Font struct {
	art  *Artifact
	cols int
	pos  map[rune]int // codepoint to cell index; first occurrence wins
}

// Load reads a compiled font from path.
func Load(path string) (*Font, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	art, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading font %s: %w", path, err)
	}
	return NewFont(art)
}

// NewFont wraps a decoded artifact for rendering use.
func NewFont(art *Artifact) (*Font, error) {
	if art.Cell.W <= 0 || art.Cell.H <= 0 {
		return nil, fmt.Errorf("bmf: degenerate cell size %dx%d", art.Cell.W, art.Cell.H)
	}
	cols := art.Sheet.W / art.Cell.W
	rows := art.Sheet.H / art.Cell.H
	if cols*rows < len(art.Index) {
		return nil, fmt.Errorf("bmf: sheet holds %d cells but index lists %d", cols*rows, len(art.Index))
	}
	pos := make(map[rune]int, len(art.Index))
	for i, cp := range art.Index {
		if _, ok := pos[cp]; !ok {
			pos[cp] = i
		}
	}
	return &Font{art: art, cols: cols, pos: pos}, nil
}

// CellSize returns the pixel size of every glyph cell.
func (f *Font) CellSize() (w, h int) { return f.art.Cell.W, f.art.Cell.H }

// Glyph returns a copy of the codepoint's pixel cell, or false when the
// font does not cover it.
func (f *Font) Glyph(cp rune) (*raster.Bitmap, bool) {
	i, ok := f.pos[cp]
	if !ok {
		return nil, false
	}
	ox := (i % f.cols) * f.art.Cell.W
	oy := (i / f.cols) * f.art.Cell.H
	cell := raster.New(f.art.Cell.W, f.art.Cell.H)
	for y := 0; y < cell.H; y++ {
		for x := 0; x < cell.W; x++ {
			cell.Set(x, y, f.art.Sheet.At(ox+x, oy+y))
		}
	}
	return cell, true
}

// MeasureString returns the pixel width s occupies on the display. Cells
// share one fixed advance, so the width is rune count times the declared
// glyph width; runes outside the font still advance by one blank cell.
func (f *Font) MeasureString(s string) int {
	return utf8.RuneCountInString(s) * f.art.Glyph.W
}
