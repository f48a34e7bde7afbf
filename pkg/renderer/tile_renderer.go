package renderer

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/go-gl/mathgl/mgl32"
)

// shadowEpsilon offsets shadow ray origins along the normal to avoid
// self-intersection.
const shadowEpsilon = 1e-3

// Scene is what the renderer traces rays against. *embree.Scene implements
// it.
type Scene interface {
	Intersect(ray embree.Ray) embree.HitRecord
	Occluded(ray embree.Ray) bool
}

// AlbedoFunc returns the surface color at a hit.
type AlbedoFunc func(rec embree.HitRecord) mgl32.Vec3

// ShadingConfig controls how hits are turned into colors.
type ShadingConfig struct {
	LightDir    mgl32.Vec3 // Direction towards a distant light; zero shades by normal
	Ambient     float32    // Light reaching surfaces facing away from the light
	Shadows     bool       // Trace occlusion rays towards the light
	TopColor    mgl32.Vec3 // Background at the zenith
	BottomColor mgl32.Vec3 // Background at the horizon
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	Random *rand.Rand      // Tile-specific random generator for deterministic results
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
		Random: rand.New(rand.NewSource(int64(id) + 1)),
	}
}

// NewTileGrid splits a width x height image into tiles of at most
// tileSize x tileSize pixels, in row-major order.
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Ceiling division
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}

// TileRenderer traces and shades the pixels of individual tiles
type TileRenderer struct {
	scene   Scene
	camera  *Camera
	albedo  AlbedoFunc
	shading ShadingConfig
	width   int
	height  int
	samples int
}

// NewTileRenderer creates a tile renderer for a width x height image. A nil
// albedo colors surfaces white.
func NewTileRenderer(scene Scene, camera *Camera, albedo AlbedoFunc, shading ShadingConfig, width, height, samples int) *TileRenderer {
	if albedo == nil {
		albedo = func(embree.HitRecord) mgl32.Vec3 { return mgl32.Vec3{1, 1, 1} }
	}
	if shading.LightDir != (mgl32.Vec3{}) {
		shading.LightDir = shading.LightDir.Normalize()
	}
	return &TileRenderer{
		scene:   scene,
		camera:  camera,
		albedo:  albedo,
		shading: shading,
		width:   width,
		height:  height,
		samples: max(1, samples),
	}
}

// RenderTile renders the tile's pixels into img. Tiles never overlap, so
// concurrent calls for different tiles may share img.
func (tr *TileRenderer) RenderTile(tile *Tile, img *image.RGBA) RenderStats {
	stats := RenderStats{TotalPixels: tile.Bounds.Dx() * tile.Bounds.Dy(), TilesDone: 1}

	for j := tile.Bounds.Min.Y; j < tile.Bounds.Max.Y; j++ {
		for i := tile.Bounds.Min.X; i < tile.Bounds.Max.X; i++ {
			var sum mgl32.Vec3
			for n := 0; n < tr.samples; n++ {
				du, dv := float32(0.5), float32(0.5)
				if tr.samples > 1 {
					du, dv = tile.Random.Float32(), tile.Random.Float32()
				}
				s := (float32(i) + du) / float32(tr.width)
				t := 1 - (float32(j)+dv)/float32(tr.height)
				sum = sum.Add(tr.trace(tr.camera.GetRay(s, t), &stats))
			}
			img.SetRGBA(i, j, toRGBA(sum.Mul(1/float32(tr.samples))))
		}
	}
	return stats
}

// trace returns the color seen along a camera ray.
func (tr *TileRenderer) trace(ray embree.Ray, stats *RenderStats) mgl32.Vec3 {
	stats.PrimaryRays++
	rec := tr.scene.Intersect(ray)
	if !rec.IsHit() {
		return tr.background(ray.Dir)
	}
	stats.Hits++

	normal := rec.Ng
	if normal.Dot(ray.Dir) > 0 {
		normal = normal.Mul(-1)
	}
	if tr.shading.LightDir == (mgl32.Vec3{}) {
		return normal.Add(mgl32.Vec3{1, 1, 1}).Mul(0.5)
	}

	albedo := tr.albedo(rec)
	diffuse := max(0, normal.Dot(tr.shading.LightDir))
	if diffuse > 0 && tr.shading.Shadows {
		stats.ShadowRays++
		origin := ray.PointAt(rec.T).Add(normal.Mul(shadowEpsilon))
		if tr.scene.Occluded(embree.NewRayInfinite(origin, tr.shading.LightDir)) {
			diffuse = 0
		}
	}
	ambient := tr.shading.Ambient
	return albedo.Mul(ambient + (1-ambient)*diffuse)
}

// background blends between the horizon and zenith colors by ray elevation.
func (tr *TileRenderer) background(dir mgl32.Vec3) mgl32.Vec3 {
	unit := dir.Normalize()
	a := 0.5 * (unit.Y() + 1)
	return tr.shading.BottomColor.Mul(1 - a).Add(tr.shading.TopColor.Mul(a))
}

// toRGBA gamma corrects a linear color and clamps it to 8 bits.
func toRGBA(c mgl32.Vec3) color.RGBA {
	channel := func(v float32) uint8 {
		g := math.Sqrt(float64(mgl32.Clamp(v, 0, 1)))
		return uint8(g*255 + 0.5)
	}
	return color.RGBA{R: channel(c.X()), G: channel(c.Y()), B: channel(c.Z()), A: 255}
}
