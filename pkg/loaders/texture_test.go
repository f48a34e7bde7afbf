package loaders

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/bmp"
)

// quadImage is a 2x2 image: white, red on the top row and green, blue below.
func quadImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{G: 255, A: 255})
	img.Set(1, 1, color.RGBA{B: 255, A: 255})
	return img
}

var (
	white = mgl32.Vec3{1, 1, 1}
	red   = mgl32.Vec3{1, 0, 0}
	green = mgl32.Vec3{0, 1, 0}
	blue  = mgl32.Vec3{0, 0, 1}
)

func colorNear(a, b mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(float64(a[i]-b[i])) > 0.01 {
			return false
		}
	}
	return true
}

func TestLoadTexture(t *testing.T) {
	tests := []struct {
		name   string
		ext    string
		encode func(f *os.File, img image.Image) error
	}{
		{"png", ".png", func(f *os.File, img image.Image) error { return png.Encode(f, img) }},
		{"bmp", ".bmp", func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testFile := filepath.Join(t.TempDir(), "test"+tt.ext)
			f, err := os.Create(testFile)
			if err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			if err := tt.encode(f, quadImage()); err != nil {
				f.Close()
				t.Fatalf("Failed to encode: %v", err)
			}
			f.Close()

			tex, err := LoadTexture(testFile)
			if err != nil {
				t.Fatalf("LoadTexture failed: %v", err)
			}
			if tex.Width != 2 || tex.Height != 2 || len(tex.Pixels) != 4 {
				t.Fatalf("Expected 2x2 texture, got %dx%d with %d pixels", tex.Width, tex.Height, len(tex.Pixels))
			}
			for i, want := range []mgl32.Vec3{white, red, green, blue} {
				if !colorNear(tex.Pixels[i], want) {
					t.Errorf("pixel %d: expected %v, got %v", i, want, tex.Pixels[i])
				}
			}
		})
	}
}

func TestLoadTexture_Errors(t *testing.T) {
	if _, err := LoadTexture("nonexistent.png"); err == nil {
		t.Error("Expected error for non-existent file")
	}

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTexture(garbage); err == nil {
		t.Error("Expected decode error")
	}
}

func TestTexture_Sample(t *testing.T) {
	tex := NewTexture(quadImage())

	tests := []struct {
		name string
		uv   mgl32.Vec2
		want mgl32.Vec3
	}{
		{"bottom left", mgl32.Vec2{0.25, 0.25}, green},
		{"bottom right", mgl32.Vec2{0.75, 0.25}, blue},
		{"top left", mgl32.Vec2{0.25, 0.75}, white},
		{"top right", mgl32.Vec2{0.75, 0.75}, red},
		{"wraps positive", mgl32.Vec2{1.25, 1.75}, white},
		{"wraps negative", mgl32.Vec2{-0.25, -0.75}, blue},
		{"upper edge", mgl32.Vec2{0.999999, 0.999999}, red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tex.Sample(tt.uv); !colorNear(got, tt.want) {
				t.Errorf("Sample(%v) = %v, want %v", tt.uv, got, tt.want)
			}
		})
	}

	if got := (&Texture{}).Sample(mgl32.Vec2{0.5, 0.5}); got != (mgl32.Vec3{}) {
		t.Errorf("empty texture sampled %v", got)
	}
}
