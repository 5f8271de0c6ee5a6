package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture holds CPU-side pixel data for a 2D texture.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	// HasAlpha is set when the source image carries translucent pixels.
	// The backend clamps such textures to the edge instead of repeating them.
	HasAlpha bool
}

// LoadTexture reads a PNG, JPEG, BMP, TIFF or WebP file and returns a
// CPU-side Texture converted to RGBA8.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return NewTextureFromImage(path, img), nil
}

// NewTextureFromImage converts any image to an RGBA8 texture.
func NewTextureFromImage(name string, img image.Image) *Texture {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return &Texture{
		Name:     name,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Pixels:   rgba.Pix,
		HasAlpha: !rgba.Opaque(),
	}
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:     name,
		Width:    1,
		Height:   1,
		Pixels:   []byte{r, g, b, a},
		HasAlpha: a != 0xff,
	}
}
