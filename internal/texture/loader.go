package texture

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// decoders is keyed by lowercase extension. TGA has no magic number, so
// formats are chosen by extension rather than sniffed.
var decoders = map[string]func(*os.File) (image.Image, error){
	".jpg":  func(f *os.File) (image.Image, error) { return jpeg.Decode(f) },
	".jpeg": func(f *os.File) (image.Image, error) { return jpeg.Decode(f) },
	".png":  func(f *os.File) (image.Image, error) { return png.Decode(f) },
	".tga":  func(f *os.File) (image.Image, error) { return tga.Decode(f) },
	".bmp":  func(f *os.File) (image.Image, error) { return bmp.Decode(f) },
	".tif":  func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
	".tiff": func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
	".webp": func(f *os.File) (image.Image, error) { return webp.Decode(f) },
}

// Supported reports whether path has an extension Load can decode.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads an image file and returns it as NRGBA with its origin at 0,0
// and no row padding.
func Load(path string) (*image.NRGBA, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("texture: unknown extension: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to a tightly packed NRGBA.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
