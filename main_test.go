package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okdsh/bmfgen/bdf"
	"github.com/okdsh/bmfgen/bmf"
	"github.com/okdsh/bmfgen/layout"
)

const sampleBDF = `STARTFONT 2.1
FONT -okdsh-demo-medium-r-normal--8-80-75-75-c-80-iso10646-1
CHARS 3
STARTCHAR A
ENCODING 65
BBX 3 2 0 0
BITMAP
A0
E0
ENDCHAR
STARTCHAR B
ENCODING 66
BBX 2 3 0 0
BITMAP
40
80
C0
ENDCHAR
STARTCHAR ctrl
ENCODING 7
BBX 1 1 0 0
BITMAP
80
ENDCHAR
ENDFONT
`

func writeSource(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "demo.bdf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func TestRunConvertsFont(t *testing.T) {
	dir, src := writeSource(t, sampleBDF)
	out := filepath.Join(dir, "demo.bmf")

	plan, err := run(src, out, "", layout.Options{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(plan.Glyphs) != 2 {
		t.Errorf("converted %d glyphs, want 2 (control char filtered)", len(plan.Glyphs))
	}

	font, err := bmf.Load(out)
	if err != nil {
		t.Fatalf("artifact unreadable: %v", err)
	}
	if _, ok := font.Glyph('A'); !ok {
		t.Error("artifact does not resolve glyph A")
	}
}

// TestRunDeterministic re-runs the conversion on an unchanged source and
// expects a byte-identical artifact.
func TestRunDeterministic(t *testing.T) {
	dir, src := writeSource(t, sampleBDF)
	out := filepath.Join(dir, "demo.bmf")

	if _, err := run(src, out, "", layout.Options{}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := run(src, out, "", layout.Options{}); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("re-running the conversion changed the artifact bytes")
	}
}

func TestRunWritesPreview(t *testing.T) {
	dir, src := writeSource(t, sampleBDF)
	out := filepath.Join(dir, "demo.bmf")
	pv := filepath.Join(dir, "sheet.png")

	if _, err := run(src, out, pv, layout.Options{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := os.Stat(pv); err != nil {
		t.Errorf("preview not written: %v", err)
	}
}

func TestRunMissingSource(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "demo.bmf")

	_, err := run(filepath.Join(dir, "nope.bdf"), out, "", layout.Options{})
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("artifact written despite missing source")
	}
}

func TestRunNoDisplayableGlyphs(t *testing.T) {
	const controlOnly = `STARTFONT 2.1
STARTCHAR ctrl
ENCODING 7
BBX 1 1 0 0
BITMAP
80
ENDCHAR
ENDFONT
`
	dir, src := writeSource(t, controlOnly)
	out := filepath.Join(dir, "demo.bmf")

	_, err := run(src, out, "", layout.Options{})
	if !errors.Is(err, layout.ErrNoGlyphs) {
		t.Fatalf("got %v, want ErrNoGlyphs", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("artifact written despite empty glyph set")
	}
}

func TestRunParseFailure(t *testing.T) {
	dir, src := writeSource(t, "this is not a font\n")
	out := filepath.Join(dir, "demo.bmf")

	_, err := run(src, out, "", layout.Options{})
	var perr *bdf.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want a *bdf.ParseError", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("artifact written despite parse failure")
	}
}
