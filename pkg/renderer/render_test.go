package renderer

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/primitives"
	"github.com/df07/go-embree/pkg/rtcore/soft"
	"github.com/go-gl/mathgl/mgl32"
)

// sphereScene builds a scene holding a unit sphere at the origin.
func sphereScene(t *testing.T) *embree.Scene {
	t.Helper()
	d, err := embree.Open(embree.Config{Engine: soft.New()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(d.Release)

	user := embree.NewUserGeometry(d, []primitives.Sphere{primitives.NewSphere(mgl32.Vec3{}, 1)})
	b := embree.NewSceneBuilder(d)
	b.Attach(user.Build())
	scene := b.Build()
	t.Cleanup(scene.Release)
	return scene
}

func testConfig() Config {
	return Config{
		Width:    32,
		Height:   24,
		TileSize: 8,
		Workers:  3,
		Camera: CameraConfig{
			Center: mgl32.Vec3{0, 0, 5},
			VFov:   40,
		},
		Shading: DefaultShading(),
		Albedo:  func(embree.HitRecord) mgl32.Vec3 { return mgl32.Vec3{1, 0, 0} },
	}
}

func TestRender_Sphere(t *testing.T) {
	img, stats, err := Render(context.Background(), sphereScene(t), testConfig())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if stats.TotalPixels != 32*24 || stats.PrimaryRays != 32*24 || stats.TilesDone != 12 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Hits == 0 || stats.Hits == stats.PrimaryRays {
		t.Errorf("expected some but not all rays to hit, got %d of %d", stats.Hits, stats.PrimaryRays)
	}
	if stats.ShadowRays == 0 {
		t.Error("expected shadow rays for lit pixels")
	}

	// The sphere is red, the background is a blue-white gradient.
	center := img.RGBAAt(16, 12)
	if center.R == 0 || center.G != 0 || center.B != 0 {
		t.Errorf("center pixel = %v, want red", center)
	}
	corner := img.RGBAAt(0, 0)
	if corner.B != 255 || corner.G == 0 {
		t.Errorf("corner pixel = %v, want sky", corner)
	}
}

func TestRender_Deterministic(t *testing.T) {
	scene := sphereScene(t)
	config := testConfig()
	config.SamplesPerPixel = 4

	first, _, err := Render(context.Background(), scene, config)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	config.Workers = 1
	second, _, err := Render(context.Background(), scene, config)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatalf("images differ at byte %d", i)
		}
	}
}

func TestRender_Errors(t *testing.T) {
	scene := sphereScene(t)

	t.Run("invalid size", func(t *testing.T) {
		config := testConfig()
		config.Width = 0
		if _, _, err := Render(context.Background(), scene, config); err == nil {
			t.Error("expected error for zero width")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		img, stats, err := Render(ctx, scene, testConfig())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
		if img == nil || stats.TilesDone != 0 {
			t.Errorf("img = %v, tiles done = %d", img != nil, stats.TilesDone)
		}
	})
}

func TestRenderStats(t *testing.T) {
	var total RenderStats
	total.Add(RenderStats{TotalPixels: 4, PrimaryRays: 4, ShadowRays: 2, Hits: 2, TilesDone: 1})
	total.Add(RenderStats{TotalPixels: 4, PrimaryRays: 4, ShadowRays: 0, Hits: 0, TilesDone: 1})
	total.Elapsed = time.Second

	if total.TotalPixels != 8 || total.PrimaryRays != 8 || total.ShadowRays != 2 || total.Hits != 2 || total.TilesDone != 2 {
		t.Errorf("total = %+v", total)
	}
	if got := total.HitRatio(); got != 0.25 {
		t.Errorf("HitRatio = %v, want 0.25", got)
	}
	if got := total.RaysPerSecond(); got != 10 {
		t.Errorf("RaysPerSecond = %v, want 10", got)
	}
	if (RenderStats{}).HitRatio() != 0 || (RenderStats{}).RaysPerSecond() != 0 {
		t.Error("empty stats should report zero rates")
	}
	if total.Summary() == "" {
		t.Error("empty summary")
	}
}

func TestDrawLabel(t *testing.T) {
	scene := sphereScene(t)
	config := testConfig()
	config.Width, config.Height = 120, 40
	img, _, err := Render(context.Background(), scene, config)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	before := img.RGBAAt(1, 1)

	DrawLabel(img, "label")

	if after := img.RGBAAt(1, 1); after == before {
		t.Error("backdrop not drawn")
	}
	white := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 50; x++ {
			if img.RGBAAt(x, y) == (color.RGBA{255, 255, 255, 255}) {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("no text pixels drawn")
	}
}
