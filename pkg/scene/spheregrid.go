package scene

import (
	"math"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// newSphereGridScene creates a scene with a grid of point spheres on a ground
// quad. Hue varies across x and chroma across z.
func newSphereGridScene(d *embree.Device, info SceneInfo, opts Options) (*Scene, error) {
	camera := renderer.CameraConfig{
		Center: mgl32.Vec3{4.5, 6, 18},
		LookAt: mgl32.Vec3{4.5, 0.8, 4.5},
		Up:     mgl32.Vec3{0, 1, 0},
		VFov:   40,
	}

	b := newBuilder(d, opts)
	b.add(groundQuad(d, mgl32.Vec3{4.5, 0, 4.5}, 200).Commit(), Solid(mgl32.Vec3{0.5, 0.5, 0.5}))

	const gridSize = 20

	// Fit the grid into a 9x9 area around x=z=4.5
	targetArea := 9.0
	spacing := targetArea / float64(gridSize-1)
	sphereRadius := math.Max(0.02, math.Min(0.35, spacing*0.35))

	// OKLCH parameters for color variation
	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25

	spheres := make([]embree.Sphere, 0, gridSize*gridSize)
	colors := make([]mgl32.Vec3, 0, gridSize*gridSize)
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)

			spheres = append(spheres, embree.Sphere{
				Center: mgl32.Vec3{float32(x), float32(sphereRadius), float32(z)},
				Radius: float32(sphereRadius),
			})
			colors = append(colors, oklchToRGB(lightness, chroma, hue))
		}
	}
	b.add(embree.NewSphereGeometry(d, spheres).Commit(), PerPrimitive(colors))

	return b.finish(info, camera), nil
}
