package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
)

// Texture is an image converted to linear RGB colors in [0,1], stored in
// row-major order starting at the top-left pixel.
type Texture struct {
	Width  int
	Height int
	Pixels []mgl32.Vec3
}

// LoadTexture loads a PNG, JPEG, BMP or TIFF image.
func LoadTexture(filename string) (*Texture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open texture file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", filename, err)
	}
	return NewTexture(img), nil
}

// NewTexture converts img to a texture.
func NewTexture(img image.Image) *Texture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]mgl32.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			pixels[y*width+x] = mgl32.Vec3{
				float32(r) / 65535,
				float32(g) / 65535,
				float32(b) / 65535,
			}
		}
	}
	return &Texture{Width: width, Height: height, Pixels: pixels}
}

// Sample returns the nearest texel to uv. Coordinates wrap, and v=0 is the
// bottom row.
func (t *Texture) Sample(uv mgl32.Vec2) mgl32.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return mgl32.Vec3{}
	}
	u := wrap(uv.X())
	v := 1 - wrap(uv.Y())
	x := min(int(u*float32(t.Width)), t.Width-1)
	y := min(int(v*float32(t.Height)), t.Height-1)
	return t.Pixels[y*t.Width+x]
}

func wrap(f float32) float32 {
	w := f - float32(math.Floor(float64(f)))
	if w < 0 || w >= 1 {
		return 0
	}
	return w
}
