package raster_test

import (
	"strings"
	"testing"

	"github.com/okdsh/bmfgen/bdf"
	"github.com/okdsh/bmfgen/layout"
	"github.com/okdsh/bmfgen/raster"
)

func TestBitmapSetAt(t *testing.T) {
	bm := raster.New(10, 3)
	bm.Set(0, 0, true)
	bm.Set(9, 2, true)
	bm.Set(7, 1, true)
	bm.Set(8, 1, true)
	bm.Set(8, 1, false)

	for y := 0; y < 3; y++ {
		for x := 0; x < 10; x++ {
			want := (x == 0 && y == 0) || (x == 9 && y == 2) || (x == 7 && y == 1)
			if bm.At(x, y) != want {
				t.Errorf("pixel (%d,%d): got %v, want %v", x, y, bm.At(x, y), want)
			}
		}
	}
}

func TestBitmapStrideAndBytes(t *testing.T) {
	bm := raster.New(10, 2)
	if bm.Stride() != 2 {
		t.Fatalf("stride: got %d, want 2", bm.Stride())
	}
	if len(bm.Bytes()) != 4 {
		t.Fatalf("backing size: got %d, want 4", len(bm.Bytes()))
	}
	bm.Set(0, 1, true) // second row, leftmost pixel: MSB of byte 2
	if bm.Bytes()[2] != 0x80 {
		t.Errorf("packed byte: got %#x, want 0x80", bm.Bytes()[2])
	}
}

func TestBlitOverwrites(t *testing.T) {
	dst := raster.New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			dst.Set(x, y, true)
		}
	}
	src := raster.New(2, 2)
	src.Set(0, 0, true)

	dst.Blit(src, 1, 1)

	// The blit region mirrors src exactly: clear source pixels clear the
	// destination.
	if !dst.At(1, 1) || dst.At(2, 1) || dst.At(1, 2) || dst.At(2, 2) {
		t.Errorf("blit region not overwritten: %s", dump(dst))
	}
	// Pixels outside the region are untouched.
	if !dst.At(0, 0) || !dst.At(3, 3) || !dst.At(0, 2) {
		t.Errorf("blit touched pixels outside its region: %s", dump(dst))
	}
}

func TestFlipVertical(t *testing.T) {
	if got := raster.FlipVertical(0, 8); got != 7 {
		t.Errorf("FlipVertical(0,8) = %d, want 7", got)
	}
	if got := raster.FlipVertical(7, 8); got != 0 {
		t.Errorf("FlipVertical(7,8) = %d, want 0", got)
	}
}

// TestDrawGlyphFlipRule checks the rasterization contract pixel by pixel:
// bit x of source row y lands at (x, cellH-1-y) and nothing else is set.
func TestDrawGlyphFlipRule(t *testing.T) {
	g := bdf.Glyph{
		Codepoint: 'B',
		Bounds:    bdf.BoundingBox{W: 2, H: 3},
		Rows:      []uint32{0b01, 0b10, 0b11},
	}
	cell := layout.CellSize{W: 3, H: 3}

	bm := raster.DrawGlyph(g, cell)

	w := g.Bounds.W
	for y, mask := range g.Rows {
		for x := 0; x < w; x++ {
			want := mask>>uint(w-1-x)&1 == 1
			fy := cell.H - 1 - y
			if bm.At(x, fy) != want {
				t.Errorf("cell pixel (%d,%d): got %v, want %v", x, fy, bm.At(x, fy), want)
			}
		}
	}
	// The column beyond the glyph's declared width stays clear.
	for y := 0; y < cell.H; y++ {
		if bm.At(2, y) {
			t.Errorf("cell pixel (2,%d) set outside glyph width", y)
		}
	}
}

// TestRenderTwoGlyphSheet pins the full 6×3 sheet for the two-glyph plan.
func TestRenderTwoGlyphSheet(t *testing.T) {
	font := &bdf.Font{Glyphs: []bdf.Glyph{
		{Codepoint: 0x41, Bounds: bdf.BoundingBox{W: 3, H: 2}, Rows: []uint32{0b101, 0b111}},
		{Codepoint: 0x42, Bounds: bdf.BoundingBox{W: 2, H: 3}, Rows: []uint32{0b01, 0b10, 0b11}},
	}}
	plan, err := layout.Build(font, layout.Options{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	sheet := raster.Render(plan)

	// Derived by hand from the flip rule: glyph rows render bottom-up.
	want := strings.Join([]string{
		"...##.",
		"####..",
		"#.#.#.",
	}, "\n")
	if got := dump(sheet); got != want {
		t.Errorf("sheet mismatch:\ngot\n%s\nwant\n%s", got, want)
	}
}

func dump(bm *raster.Bitmap) string {
	var sb strings.Builder
	for y := 0; y < bm.H; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < bm.W; x++ {
			if bm.At(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}
