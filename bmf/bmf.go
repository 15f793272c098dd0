// Package bmf defines the compiled bitmap font artifact: the sprite sheet,
// its codepoint index and the sizing metadata, in a single binary file the
// display renderer loads at startup.
//
// On-disk layout, little-endian throughout:
//
//	"BMF1"                     4-byte magic
//	sheetW sheetH              uint32 each, sheet pixel size
//	cellW cellH                uint32 each, cell size
//	glyphW glyphH              uint32 each, declared glyph size
//	count                      uint32, number of indexed cells
//	index[count]               uint32 codepoints, cell placement order
//	pix                        1 bit per pixel, row-major, rows padded
//	                           to whole bytes at the sheet width
package bmf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okdsh/bmfgen/layout"
	"github.com/okdsh/bmfgen/raster"
)

var magic = [4]byte{'B', 'M', 'F', '1'}

// Ext is the designated artifact file extension.
const Ext = ".bmf"

// Artifact is a compiled bitmap font ready to be written or freshly loaded.
type Artifact struct {
	Cell  layout.CellSize
	Glyph layout.CellSize // declared glyph size; the compiler emits Cell
	Index []rune          // codepoint per cell, placement order
	Sheet *raster.Bitmap
}

// New assembles the artifact for a rendered sheet plan.
func New(plan *layout.Result, sheet *raster.Bitmap) *Artifact {
	return &Artifact{
		Cell:  plan.Cell,
		Glyph: plan.Cell,
		Index: plan.Index(),
		Sheet: sheet,
	}
}

// WriteError reports a failure to persist an artifact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("bmf: writing %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// Encode writes the artifact to w. The output is a pure function of the
// artifact's contents: the same font compiles to byte-identical files.
func (a *Artifact) Encode(w io.Writer) error {
	var buf bytes.Buffer
	buf.Write(magic[:])
	for _, v := range []uint32{
		uint32(a.Sheet.W), uint32(a.Sheet.H),
		uint32(a.Cell.W), uint32(a.Cell.H),
		uint32(a.Glyph.W), uint32(a.Glyph.H),
		uint32(len(a.Index)),
	} {
		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], v)
		buf.Write(word[:])
	}
	for _, cp := range a.Index {
		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], uint32(cp))
		buf.Write(word[:])
	}
	buf.Write(a.Sheet.Bytes())

	_, err := w.Write(buf.Bytes())
	return err
}

// Decode reads an artifact from r, rejecting anything that is not a
// complete well-formed file.
func Decode(r io.Reader) (*Artifact, error) {
	var head [4 + 7*4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("bmf: truncated header: %w", err)
	}
	if !bytes.Equal(head[:4], magic[:]) {
		return nil, fmt.Errorf("bmf: bad magic %q", head[:4])
	}
	field := func(i int) int { return int(binary.LittleEndian.Uint32(head[4+4*i:])) }
	sheetW, sheetH := field(0), field(1)
	a := &Artifact{
		Cell:  layout.CellSize{W: field(2), H: field(3)},
		Glyph: layout.CellSize{W: field(4), H: field(5)},
	}
	count := field(6)
	// Reject obviously corrupt headers before sizing any buffers.
	const maxDim, maxCount = 1 << 16, 1 << 24
	if sheetW > maxDim || sheetH > maxDim || count > maxCount {
		return nil, fmt.Errorf("bmf: implausible dimensions %dx%d, %d glyphs", sheetW, sheetH, count)
	}

	rawIndex := make([]byte, 4*count)
	if _, err := io.ReadFull(r, rawIndex); err != nil {
		return nil, fmt.Errorf("bmf: truncated index: %w", err)
	}
	a.Index = make([]rune, count)
	for i := range a.Index {
		a.Index[i] = rune(binary.LittleEndian.Uint32(rawIndex[4*i:]))
	}

	pix := make([]byte, ((sheetW+7)/8)*sheetH)
	if _, err := io.ReadFull(r, pix); err != nil {
		return nil, fmt.Errorf("bmf: truncated sheet data: %w", err)
	}
	sheet, err := raster.FromBytes(sheetW, sheetH, pix)
	if err != nil {
		return nil, fmt.Errorf("bmf: %w", err)
	}
	a.Sheet = sheet
	return a, nil
}

// Save writes the artifact to path, silently replacing an existing file.
// The bytes go to a temporary file first and move into place with a rename,
// so a failed write never leaves a half-written artifact under the final
// name.
func (a *Artifact) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".bmf-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := a.Encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// OutputPath derives the artifact path for a font source by swapping its
// extension for Ext.
func OutputPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return sourcePath[:len(sourcePath)-len(ext)] + Ext
}
