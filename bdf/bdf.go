// Package bdf reads Adobe Glyph Bitmap Distribution Format font sources into
// an in-memory glyph collection, preserving declaration order.
package bdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// maxGlyphWidth bounds a row mask to one uint32, leftmost pixel in the most
// significant of the width's bits.
const maxGlyphWidth = 32

// Unmapped marks a glyph whose ENCODING is -1 (no codepoint assigned).
const Unmapped rune = -1

// BoundingBox carries the declared glyph metrics of a BBX or
// FONTBOUNDINGBOX line.
type BoundingBox struct {
	X, Y int // offsets from the origin
	W, H int // extent in pixels
}

// Glyph is one character bitmap in declaration order. Rows holds one mask
// per scanline, top row first, with exactly Bounds.W significant bits and
// the leftmost pixel in the most significant bit.
type Glyph struct {
	Name      string
	Codepoint rune // Unmapped when the glyph has no encoding
	Bounds    BoundingBox
	Rows      []uint32
}

// Mapped reports whether the glyph carries a codepoint.
func (g Glyph) Mapped() bool { return g.Codepoint != Unmapped }

// Font is a parsed BDF source. Glyphs keeps the source's declaration order,
// which downstream stages rely on for sheet placement.
type Font struct {
	Version       string
	Name          string
	Bounds        BoundingBox // FONTBOUNDINGBOX
	DeclaredCount int         // CHARS line, informational only
	Glyphs        []Glyph
}

// ParseError reports a malformed header, an incomplete glyph block or a
// truncated bitmap section.
type ParseError struct {
	Pos lexer.Position
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos.Line == 0 {
		return "bdf: " + e.Msg
	}
	return fmt.Sprintf("bdf: %s: %s", e.Pos, e.Msg)
}

// Parse reads a BDF font from r.
func Parse(r io.Reader) (*Font, error) {
	return parse("", r)
}

// ParseString reads a BDF font from a string.
func ParseString(input string) (*Font, error) {
	return parse("", strings.NewReader(input))
}

func parse(filename string, r io.Reader) (*Font, error) {
	ast, err := parseFile(filename, r)
	if err != nil {
		return nil, err
	}
	return convert(ast)
}

// convert validates the AST and builds the glyph model. No partial Font is
// returned: the first invalid glyph block aborts the whole parse.
func convert(ast *fontFile) (*Font, error) {
	font := &Font{Version: ast.Version}
	var props []prop
	if ast.Header != nil {
		props = ast.Header.Props
	}
	for _, p := range props {
		switch p.Key {
		case "FONT":
			font.Name = strings.Join(p.Values, " ")
		case "FONTBOUNDINGBOX":
			box, err := parseBoundingBox(p)
			if err != nil {
				return nil, err
			}
			font.Bounds = box
		case "CHARS":
			n, err := propInt(p, 0)
			if err != nil {
				return nil, err
			}
			font.DeclaredCount = n
		}
	}

	font.Glyphs = make([]Glyph, 0, len(ast.Glyphs))
	for _, node := range ast.Glyphs {
		g, err := convertGlyph(node)
		if err != nil {
			return nil, err
		}
		font.Glyphs = append(font.Glyphs, g)
	}
	return font, nil
}

func convertGlyph(node *glyphNode) (Glyph, error) {
	g := Glyph{Name: node.Name, Codepoint: Unmapped}
	if node.Body == nil || !node.Body.Closed {
		return Glyph{}, &ParseError{Pos: node.Pos, Msg: fmt.Sprintf("glyph %s: missing ENDCHAR", node.Name)}
	}

	var haveEncoding, haveBBX bool
	for _, p := range node.Body.Props {
		switch p.Key {
		case "ENCODING":
			cp, err := propInt(p, 0)
			if err != nil {
				return Glyph{}, err
			}
			if cp >= 0 {
				g.Codepoint = rune(cp)
			}
			haveEncoding = true
		case "BBX":
			box, err := parseBoundingBox(p)
			if err != nil {
				return Glyph{}, err
			}
			g.Bounds = box
			haveBBX = true
		}
	}
	if !haveEncoding {
		return Glyph{}, &ParseError{Pos: node.Pos, Msg: fmt.Sprintf("glyph %s: missing ENCODING", node.Name)}
	}
	if !haveBBX {
		return Glyph{}, &ParseError{Pos: node.Pos, Msg: fmt.Sprintf("glyph %s: missing BBX", node.Name)}
	}
	if g.Bounds.W > maxGlyphWidth {
		return Glyph{}, &ParseError{Pos: node.Pos, Msg: fmt.Sprintf("glyph %s: width %d exceeds %d pixels", node.Name, g.Bounds.W, maxGlyphWidth)}
	}
	if len(node.Body.RawRows) != g.Bounds.H {
		return Glyph{}, &ParseError{
			Pos: node.Pos,
			Msg: fmt.Sprintf("glyph %s: bitmap has %d rows, BBX declares %d", node.Name, len(node.Body.RawRows), g.Bounds.H),
		}
	}

	g.Rows = make([]uint32, 0, len(node.Body.RawRows))
	for _, row := range node.Body.RawRows {
		mask, err := parseRowMask(row, g.Bounds.W)
		if err != nil {
			return Glyph{}, err
		}
		g.Rows = append(g.Rows, mask)
	}
	return g, nil
}

// parseRowMask decodes one hex bitmap line. BDF pads each row to whole
// bytes with the pixels left-aligned; the padding bits are shifted away so
// the mask holds exactly width significant bits.
func parseRowMask(row prop, width int) (uint32, error) {
	hexDigits := row.Key
	if len(row.Values) != 0 {
		return 0, &ParseError{Pos: row.Pos, Msg: fmt.Sprintf("bitmap row %q: unexpected trailing data", hexDigits)}
	}
	wantDigits := 2 * ((width + 7) / 8)
	if len(hexDigits) != wantDigits {
		return 0, &ParseError{Pos: row.Pos, Msg: fmt.Sprintf("bitmap row %q: want %d hex digits for width %d", hexDigits, wantDigits, width)}
	}
	v, err := strconv.ParseUint(hexDigits, 16, 64)
	if err != nil {
		return 0, &ParseError{Pos: row.Pos, Msg: fmt.Sprintf("bitmap row %q: %v", hexDigits, err)}
	}
	pad := uint(4*len(hexDigits) - width)
	return uint32(v >> pad), nil
}

func parseBoundingBox(p prop) (BoundingBox, error) {
	if len(p.Values) != 4 {
		return BoundingBox{}, &ParseError{Pos: p.Pos, Msg: fmt.Sprintf("%s: want 4 integers, have %d", p.Key, len(p.Values))}
	}
	ints := make([]int, 4)
	for i, raw := range p.Values {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return BoundingBox{}, &ParseError{Pos: p.Pos, Msg: fmt.Sprintf("%s: bad integer %q", p.Key, raw)}
		}
		ints[i] = n
	}
	// BDF declares width and height first, offsets last.
	return BoundingBox{W: ints[0], H: ints[1], X: ints[2], Y: ints[3]}, nil
}

// propInt parses the i-th value of a property line as an integer.
func propInt(p prop, i int) (int, error) {
	if i >= len(p.Values) {
		return 0, &ParseError{Pos: p.Pos, Msg: fmt.Sprintf("%s: missing value", p.Key)}
	}
	n, err := strconv.Atoi(p.Values[i])
	if err != nil {
		return 0, &ParseError{Pos: p.Pos, Msg: fmt.Sprintf("%s: bad integer %q", p.Key, p.Values[i])}
	}
	return n, nil
}
