package scene

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/loaders"
	"github.com/df07/go-embree/pkg/rtcore/soft"
	"github.com/go-gl/mathgl/mgl32"
)

func openDevice(t *testing.T) *embree.Device {
	t.Helper()
	d, err := embree.Open(embree.Config{Engine: soft.New()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(d.Release)
	return d
}

const testPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
property float u
property float v
element face 1
property list uchar int vertex_indices
end_header
-1 0 -1 0 0
-1 0 1 0 1
1 0 1 1 1
1 2 -1 1 0
4 0 1 2 3
`

func writePLY(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mesh.ply")
	if err := os.WriteFile(path, []byte(testPLY), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestList(t *testing.T) {
	infos := List()
	if len(infos) != 4 {
		t.Fatalf("got %d presets, want 4", len(infos))
	}
	for i := 1; i < len(infos); i++ {
		if infos[i-1].DisplayName > infos[i].DisplayName {
			t.Errorf("presets not sorted: %q before %q", infos[i-1].DisplayName, infos[i].DisplayName)
		}
	}
	ids := map[string]bool{}
	for _, info := range infos {
		ids[info.ID] = true
		if info.Description == "" || info.Group == "" {
			t.Errorf("preset %s missing metadata", info.ID)
		}
	}
	for _, id := range []string{"default", "spheregrid", "sdf", "mesh"} {
		if !ids[id] {
			t.Errorf("preset %s not listed", id)
		}
	}
}

func TestBuild_Presets(t *testing.T) {
	tests := []struct {
		id             string
		opts           func(t *testing.T) Options
		wantGeometries int
		minPrimitives  int
	}{
		{"default", func(*testing.T) Options { return Options{} }, 5, 1 + 1 + 1 + 12 + 5},
		{"spheregrid", func(*testing.T) Options { return Options{} }, 2, 401},
		{"sdf", func(*testing.T) Options { return Options{MeshCells: 24, Quality: embree.BuildQualityLow} }, 3, 3},
		{"mesh", func(t *testing.T) Options { return Options{PLYPath: writePLY(t)} }, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d := openDevice(t)
			s, err := Build(d, tt.id, tt.opts(t))
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			defer s.Release()

			if s.Info.ID != tt.id {
				t.Errorf("Info.ID = %q", s.Info.ID)
			}
			if got := s.GeometryCount(); got != tt.wantGeometries {
				t.Errorf("GeometryCount = %d, want %d", got, tt.wantGeometries)
			}
			if got := s.PrimitiveCount(); got < tt.minPrimitives {
				t.Errorf("PrimitiveCount = %d, want at least %d", got, tt.minPrimitives)
			}

			// The camera looks at something in every preset.
			dir := s.Camera.LookAt.Sub(s.Camera.Center).Normalize()
			rec := s.Intersect(embree.NewRayInfinite(s.Camera.Center, dir))
			if !rec.IsHit() {
				t.Fatal("camera's view ray missed")
			}
			if c := s.Albedo(rec); c == fallbackColor {
				t.Errorf("hit geometry %v has no shader", rec.GeomID)
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	d := openDevice(t)

	tests := []struct {
		name    string
		id      string
		opts    Options
		wantErr string
	}{
		{"unknown", "nope", Options{}, "unknown scene"},
		{"mesh without file", "mesh", Options{}, "requires a PLY file"},
		{"mesh missing file", "mesh", Options{PLYPath: filepath.Join(t.TempDir(), "missing.ply")}, "load mesh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(d, tt.id, tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestScene_Albedo(t *testing.T) {
	d := openDevice(t)
	s, err := Build(d, "spheregrid", Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer s.Release()

	// Straight down onto the first sphere of the grid, then onto the ground
	// between spheres.
	first := s.Intersect(embree.NewRayInfinite(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0}))
	if !first.IsHit() || first.PrimID != 0 {
		t.Fatalf("expected first grid sphere, got %+v", first)
	}
	second := s.Intersect(embree.NewRayInfinite(mgl32.Vec3{0, 5, 9.0 / 19}, mgl32.Vec3{0, -1, 0}))
	if !second.IsHit() || second.PrimID != 1 || second.GeomID != first.GeomID {
		t.Fatalf("expected second grid sphere, got %+v", second)
	}
	if s.Albedo(first) == s.Albedo(second) {
		t.Error("neighbouring spheres share a color")
	}

	unknown := first
	unknown.GeomID = 99
	if got := s.Albedo(unknown); got != fallbackColor {
		t.Errorf("unknown geometry albedo = %v", got)
	}
}

func TestShaders(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})
	tex := loaders.NewTexture(img)

	rec := embree.HitRecord{Hit: embree.EmptyHit()}
	rec.GeomID = 0

	t.Run("solid", func(t *testing.T) {
		if got := Solid(mgl32.Vec3{1, 2, 3})(rec); got != (mgl32.Vec3{1, 2, 3}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("per primitive wraps", func(t *testing.T) {
		shader := PerPrimitive([]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}})
		rec := rec
		rec.PrimID = 3
		if got := shader(rec); got != (mgl32.Vec3{0, 1, 0}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("textured", func(t *testing.T) {
		rec := rec
		rec.UV = mgl32.Vec2{0.75, 0.5}
		if got := Textured(tex)(rec); got != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("mesh textured interpolates", func(t *testing.T) {
		triangles := []embree.Triangle{{0, 1, 2}}
		texCoords := []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}
		shader := MeshTextured(tex, triangles, texCoords)

		rec := rec
		rec.PrimID = 0
		rec.UV = mgl32.Vec2{0.1, 0.1} // near vertex 0, u=0.1
		if got := shader(rec); got != (mgl32.Vec3{1, 0, 0}) {
			t.Errorf("near vertex 0: got %v", got)
		}
		rec.UV = mgl32.Vec2{0.8, 0.1} // near vertex 1, u=0.8
		if got := shader(rec); got != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("near vertex 1: got %v", got)
		}
	})
}

func TestOKLCHToRGB(t *testing.T) {
	// Zero chroma is a neutral gray of the cubed lightness.
	gray := oklchToRGB(0.8, 0, 123)
	want := float32(math.Pow(0.8, 3))
	for i := 0; i < 3; i++ {
		if math.Abs(float64(gray[i]-want)) > 1e-3 {
			t.Errorf("channel %d = %v, want %v", i, gray[i], want)
		}
	}

	for _, hue := range []float64{0, 90, 180, 270} {
		c := oklchToRGB(0.65, 0.25, hue)
		for i := 0; i < 3; i++ {
			if c[i] < 0 || c[i] > 1 {
				t.Errorf("hue %v channel %d = %v out of range", hue, i, c[i])
			}
		}
	}
}

func TestMeshScene_Textured(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})

	d := openDevice(t)
	s, err := Build(d, "mesh", Options{PLYPath: writePLY(t), Texture: loaders.NewTexture(img)})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer s.Release()

	rec := s.Intersect(embree.NewRayInfinite(mgl32.Vec3{-0.5, 5, 0.5}, mgl32.Vec3{0, -1, 0}))
	if !rec.IsHit() {
		t.Fatal("expected mesh hit")
	}
	if got := s.Albedo(rec); got != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("albedo = %v, want texture green", got)
	}
}
