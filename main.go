// bmfgen compiles a BDF bitmap font into a sprite-sheet font artifact
// (.bmf) for a dot-matrix display: printable glyphs are packed into a
// near-square grid of uniform cells, vertically flipped into the display's
// bottom-origin pixel convention, and written alongside a codepoint index.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/okdsh/bmfgen/bdf"
	"github.com/okdsh/bmfgen/bmf"
	"github.com/okdsh/bmfgen/layout"
	"github.com/okdsh/bmfgen/preview"
	"github.com/okdsh/bmfgen/raster"
)

const defaultSource = "misaki_gothic.bdf"

func main() {
	// An optional .env file supplies site defaults; flags override it.
	_ = godotenv.Load()

	input := flag.String("in", envOr("BMFGEN_SOURCE", defaultSource), "BDF font source path")
	output := flag.String("out", "", "artifact output path (default: source with "+bmf.Ext+" extension)")
	previewPath := flag.String("preview", os.Getenv("BMFGEN_PREVIEW"), "also write the sprite sheet as a PNG or BMP image")
	flag.Parse()

	outPath := *output
	if outPath == "" {
		outPath = bmf.OutputPath(*input)
	}

	plan, err := run(*input, outPath, *previewPath, layout.Options{})
	if err != nil {
		log.Fatalf("conversion failed: %v", err)
	}
	fmt.Printf("converted %d glyphs (%d×%d grid) to %s\n", len(plan.Glyphs), plan.Grid.Cols, plan.Grid.Rows, outPath)
}

// run chains parsing, layout, rasterization and serialization. Each stage's
// error surfaces unchanged; nothing is written on any error path.
func run(inputPath, outputPath, previewPath string, opts layout.Options) (*layout.Result, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("font source %s not found", inputPath)
		}
		return nil, fmt.Errorf("opening font source %s: %w", inputPath, err)
	}
	defer file.Close()

	font, err := bdf.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", inputPath, err)
	}

	plan, err := layout.Build(font, opts)
	if err != nil {
		return nil, err
	}

	sheet := raster.Render(plan)

	if previewPath != "" {
		if err := preview.Write(previewPath, sheet); err != nil {
			return nil, fmt.Errorf("writing preview: %w", err)
		}
	}

	if err := bmf.New(plan, sheet).Save(outputPath); err != nil {
		return nil, err
	}
	return plan, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
