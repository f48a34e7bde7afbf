package renderer

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/go-gl/mathgl/mgl32"
)

// Config controls a render.
type Config struct {
	Width           int
	Height          int
	TileSize        int // Edge length of square tiles; 0 uses DefaultTileSize
	Workers         int // Parallel tile workers; 0 uses one per CPU
	SamplesPerPixel int // Jittered samples per pixel; values below 1 mean 1
	Camera          CameraConfig
	Shading         ShadingConfig
	Albedo          AlbedoFunc
}

// DefaultTileSize is the tile edge length used when Config.TileSize is 0.
const DefaultTileSize = 32

// DefaultShading lights the scene from the upper right with shadows over a
// blue sky gradient.
func DefaultShading() ShadingConfig {
	return ShadingConfig{
		LightDir:    mgl32.Vec3{1, 2, 1.5},
		Ambient:     0.15,
		Shadows:     true,
		TopColor:    mgl32.Vec3{0.5, 0.7, 1.0},
		BottomColor: mgl32.Vec3{1.0, 1.0, 1.0},
	}
}

// Render traces scene into a new image. The scene must not be released until
// Render returns. On cancellation the partially rendered image is returned
// with the context's error.
func Render(ctx context.Context, scene Scene, config Config) (*image.RGBA, RenderStats, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, RenderStats{}, errors.New("renderer: image dimensions must be positive")
	}
	tileSize := config.TileSize
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	if config.Camera.AspectRatio == 0 {
		config.Camera.AspectRatio = float32(config.Width) / float32(config.Height)
	}

	start := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, config.Width, config.Height))
	tr := NewTileRenderer(scene, NewCamera(config.Camera), config.Albedo, config.Shading,
		config.Width, config.Height, config.SamplesPerPixel)

	tiles := NewTileGrid(config.Width, config.Height, tileSize)
	pool := NewWorkerPool(ctx, tr, len(tiles), config.Workers)
	pool.Start()
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, Image: img, TaskID: i})
	}
	pool.Stop()

	stats := RenderStats{SamplesPerPixel: tr.samples}
	var renderErr error
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			renderErr = result.Error
			continue
		}
		stats.Add(result.Stats)
	}
	stats.Elapsed = time.Since(start)

	embree.Logger().Debug("render finished",
		"width", config.Width,
		"height", config.Height,
		"tiles", stats.TilesDone,
		"workers", pool.GetNumWorkers(),
		"rays", stats.PrimaryRays+stats.ShadowRays,
		"elapsed", stats.Elapsed)
	return img, stats, renderErr
}
