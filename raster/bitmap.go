// Package raster owns the one-bit pixel buffers of the compiler: the
// per-glyph cell bitmaps and the shared sprite sheet, plus the rasterizer
// that fills them.
package raster

import "fmt"

// Bitmap is a monochrome pixel buffer. Pixels are packed row-major, eight
// per byte, most significant bit = leftmost pixel, each row padded to a
// whole byte.
type Bitmap struct {
	W, H int
	pix  []byte
}

// New returns an all-zero bitmap of the given size.
func New(w, h int) *Bitmap {
	if w < 0 || h < 0 {
		panic(fmt.Sprintf("raster: invalid bitmap size %dx%d", w, h))
	}
	return &Bitmap{W: w, H: h, pix: make([]byte, ((w+7)/8)*h)}
}

// FromBytes wraps existing packed pixel data, as produced by Bytes. The
// slice is retained, not copied.
func FromBytes(w, h int, pix []byte) (*Bitmap, error) {
	want := ((w + 7) / 8) * h
	if len(pix) != want {
		return nil, fmt.Errorf("raster: %dx%d bitmap needs %d bytes, have %d", w, h, want, len(pix))
	}
	return &Bitmap{W: w, H: h, pix: pix}, nil
}

// Stride is the number of bytes per packed row.
func (b *Bitmap) Stride() int { return (b.W + 7) / 8 }

// Bytes exposes the packed pixel data backing the bitmap. The serializer
// writes it verbatim; mutating the slice mutates the bitmap.
func (b *Bitmap) Bytes() []byte { return b.pix }

// At reports whether the pixel at (x, y) is set.
func (b *Bitmap) At(x, y int) bool {
	b.check(x, y)
	return b.pix[y*b.Stride()+x>>3]>>(7-uint(x&7))&1 == 1
}

// Set writes the pixel at (x, y).
func (b *Bitmap) Set(x, y int, on bool) {
	b.check(x, y)
	i, mask := y*b.Stride()+x>>3, byte(1)<<(7-uint(x&7))
	if on {
		b.pix[i] |= mask
	} else {
		b.pix[i] &^= mask
	}
}

// Blit copies src into b with its top-left corner at (ox, oy), overwriting
// the destination region pixel for pixel. There is no blending: a clear
// source pixel clears the destination. The region must lie inside b.
func (b *Bitmap) Blit(src *Bitmap, ox, oy int) {
	if ox < 0 || oy < 0 || ox+src.W > b.W || oy+src.H > b.H {
		panic(fmt.Sprintf("raster: blit of %dx%d at (%d,%d) outside %dx%d bitmap", src.W, src.H, ox, oy, b.W, b.H))
	}
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			b.Set(ox+x, oy+y, src.At(x, y))
		}
	}
}

// Clone returns an independent copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	pix := make([]byte, len(b.pix))
	copy(pix, b.pix)
	return &Bitmap{W: b.W, H: b.H, pix: pix}
}

func (b *Bitmap) check(x, y int) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		panic(fmt.Sprintf("raster: pixel (%d,%d) outside %dx%d bitmap", x, y, b.W, b.H))
	}
}
