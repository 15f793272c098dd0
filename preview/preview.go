// Package preview exports a sprite sheet as an ordinary image file for
// visual inspection. It is a debugging side output; the artifact path never
// goes through here.
package preview

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/okdsh/bmfgen/raster"
)

// Write encodes the bitmap to path. The format follows the extension:
// .png or .bmp.
func Write(path string, bm *raster.Bitmap) error {
	img := image.NewGray(image.Rect(0, 0, bm.W, bm.H))
	for y := 0; y < bm.H; y++ {
		for x := 0; x < bm.W; x++ {
			if bm.At(x, y) {
				img.Pix[y*img.Stride+x] = 0xFF
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		err = png.Encode(f, img)
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = fmt.Errorf("preview: unsupported image format %q", ext)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
