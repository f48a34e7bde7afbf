package scene

import (
	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/primitives"
	"github.com/df07/go-embree/pkg/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// newDefaultScene places one shape of each kind on a ground quad: an
// analytic user sphere in the center, an engine point sphere on the left, a
// rotated cube mesh on the right and a row of discs in front.
func newDefaultScene(d *embree.Device, info SceneInfo, opts Options) (*Scene, error) {
	camera := renderer.CameraConfig{
		Center: mgl32.Vec3{0, 0.75, 2},
		LookAt: mgl32.Vec3{0, 0.5, -1},
		Up:     mgl32.Vec3{0, 1, 0},
		VFov:   40,
	}

	green := mgl32.Vec3{0.8, 0.8, 0.0}.Mul(0.6)
	red := mgl32.Vec3{0.65, 0.25, 0.2}
	silver := mgl32.Vec3{0.8, 0.8, 0.8}
	gold := mgl32.Vec3{0.8, 0.6, 0.2}
	blue := mgl32.Vec3{0.1, 0.2, 0.5}

	b := newBuilder(d, opts)

	b.add(groundQuad(d, mgl32.Vec3{}, 100).Commit(), Solid(green))

	center := embree.NewUserGeometry(d, []primitives.Sphere{
		primitives.NewSphere(mgl32.Vec3{0, 0.5, -1}, 0.5),
	})
	centerShader := Solid(red)
	if opts.Texture != nil {
		centerShader = Textured(opts.Texture)
	}
	b.add(center.Build(), centerShader)

	left := embree.NewSphereGeometry(d, []embree.Sphere{
		{Center: mgl32.Vec3{-1, 0.5, -1}, Radius: 0.5},
	})
	b.add(left.Commit(), Solid(silver))

	cube := cubeMesh(d)
	embree.TransformMesh(cube, mgl32.Translate3D(1, 0.35, -1).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(30))).
		Mul4(mgl32.Scale3D(0.35, 0.35, 0.35)))
	b.add(cube.Commit(), Solid(gold))

	discs := make([]embree.Disc, 5)
	for i := range discs {
		discs[i] = embree.Disc{
			Center: mgl32.Vec3{float32(i)*0.3 - 0.6, 0.001, -0.2},
			Radius: 0.1,
			Normal: mgl32.Vec3{0, 1, 0},
		}
	}
	b.add(embree.NewDiscGeometry(d, discs).Commit(), Solid(blue))

	return b.finish(info, camera), nil
}
