package bdf

import (
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	bdfLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Word", Pattern: `[^ \t\r\n"]+`},
	})

	newlineTokenType = mustTokenType("Newline")

	fontParser = participle.MustBuild[fontFile](
		participle.Lexer(bdfLexer),
		participle.Elide("Whitespace"),
	)
)

// fontFile is the root AST node for a BDF source.
type fontFile struct {
	Pos     lexer.Position `parser:""`
	Version string         `parser:"Newline* 'STARTFONT' @Word Newline"`
	Header  *headerProps   `parser:"@@"`
	Glyphs  []*glyphNode   `parser:"( @@ )* 'ENDFONT' Newline*"`
}

// prop is one header or glyph property line: a keyword followed by its
// values, terminated by a newline.
type prop struct {
	Pos    lexer.Position
	Key    string
	Values []string
}

// headerProps collects every property line between STARTFONT and the first
// glyph block. BDF allows arbitrary vendor properties (and a
// STARTPROPERTIES..ENDPROPERTIES run of them), so the header is consumed as
// a flat keyword/values sequence rather than a fixed grammar.
type headerProps struct {
	Props []prop
}

// Parse implements participle.Parseable for headerProps.
func (h *headerProps) Parse(lex *lexer.PeekingLexer) error {
	for {
		tok := lex.Peek()
		if tok.EOF() {
			return nil
		}
		if tok.Type == newlineTokenType {
			lex.Next()
			continue
		}
		if tok.Value == "STARTCHAR" || tok.Value == "ENDFONT" {
			return nil
		}
		h.Props = append(h.Props, consumeLine(lex))
	}
}

// glyphNode is one STARTCHAR..ENDCHAR block.
type glyphNode struct {
	Pos  lexer.Position `parser:""`
	Name string         `parser:"'STARTCHAR' @Word Newline"`
	Body *glyphBody     `parser:"@@"`
}

// glyphBody holds the property lines of a glyph block plus its bitmap
// section. The bitmap rows are kept as raw hex words; conversion to row
// masks needs the declared BBX width and happens in a later pass.
type glyphBody struct {
	Props   []prop
	RawRows []prop // one prop per BITMAP row, Key = hex word
	Closed  bool   // ENDCHAR seen
}

// Parse implements participle.Parseable for glyphBody. It consumes property
// lines until BITMAP, then hex rows until ENDCHAR. A missing ENDCHAR (EOF or
// the next STARTCHAR first) leaves Closed unset for the validation pass.
func (b *glyphBody) Parse(lex *lexer.PeekingLexer) error {
	inBitmap := false
	for {
		tok := lex.Peek()
		if tok.EOF() {
			return nil
		}
		if tok.Type == newlineTokenType {
			lex.Next()
			continue
		}
		switch tok.Value {
		case "STARTCHAR", "ENDFONT":
			return nil
		case "ENDCHAR":
			lex.Next()
			b.Closed = true
			// Swallow trailing newlines so the enclosing grammar peeks
			// straight at the next STARTCHAR or ENDFONT.
			for lex.Peek().Type == newlineTokenType {
				lex.Next()
			}
			return nil
		case "BITMAP":
			lex.Next()
			inBitmap = true
			continue
		}
		line := consumeLine(lex)
		if inBitmap {
			b.RawRows = append(b.RawRows, line)
		} else {
			b.Props = append(b.Props, line)
		}
	}
}

// consumeLine reads one property line: the keyword token and every further
// token up to (not including) the terminating newline.
func consumeLine(lex *lexer.PeekingLexer) prop {
	first := lex.Next()
	p := prop{Pos: first.Pos, Key: first.Value}
	for {
		tok := lex.Peek()
		if tok.EOF() || tok.Type == newlineTokenType {
			return p
		}
		p.Values = append(p.Values, lex.Next().Value)
	}
}

// parseFile runs the participle parser and converts its errors to ParseError.
func parseFile(filename string, r io.Reader) (*fontFile, error) {
	ast, err := fontParser.Parse(filename, r)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, &ParseError{Pos: perr.Position(), Msg: perr.Message()}
		}
		return nil, &ParseError{Msg: err.Error()}
	}
	return ast, nil
}

func mustTokenType(name string) lexer.TokenType {
	symbols := bdfLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
