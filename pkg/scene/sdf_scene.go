package scene

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/primitives"
	"github.com/df07/go-embree/pkg/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// csgSolid is a rounded box with a sphere carved out of its top and a
// cylinder through it, resting on y=0.
func csgSolid() (sdf.SDF3, error) {
	box, err := sdf.Box3D(v3.Vec{X: 1.2, Y: 1.2, Z: 1.2}, 0.1)
	if err != nil {
		return nil, err
	}
	ball, err := sdf.Sphere3D(0.75)
	if err != nil {
		return nil, err
	}
	hole, err := sdf.Cylinder3D(2, 0.3, 0)
	if err != nil {
		return nil, err
	}
	carved := sdf.Difference3D(box, sdf.Transform3D(ball, sdf.Translate3d(v3.Vec{Y: 0.6})))
	carved = sdf.Difference3D(carved, sdf.Transform3D(hole, sdf.RotateX(1.5707963267948966)))
	return sdf.Transform3D(carved, sdf.Translate3d(v3.Vec{Y: 0.6})), nil
}

// newSDFScene renders the same distance field twice: sphere traced as a user
// primitive on the left and tessellated into a triangle mesh on the right.
func newSDFScene(d *embree.Device, info SceneInfo, opts Options) (*Scene, error) {
	camera := renderer.CameraConfig{
		Center: mgl32.Vec3{0, 2.2, 4.5},
		LookAt: mgl32.Vec3{0, 0.5, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		VFov:   40,
	}

	solid, err := csgSolid()
	if err != nil {
		return nil, fmt.Errorf("build distance field: %w", err)
	}
	left := sdf.Transform3D(solid, sdf.Translate3d(v3.Vec{X: -1}))
	right := sdf.Transform3D(solid, sdf.Translate3d(v3.Vec{X: 1}))

	b := newBuilder(d, opts)
	b.add(groundQuad(d, mgl32.Vec3{}, 100).Commit(), Solid(mgl32.Vec3{0.5, 0.5, 0.5}))

	traced := embree.NewUserGeometry(d, []primitives.SDF{primitives.NewSDF(left)})
	b.add(traced.Build(), Solid(mgl32.Vec3{0.2, 0.4, 0.8}))

	mesh := primitives.Tessellate(right, opts.MeshCells)
	b.add(mesh.NewTriangleMesh(d).Commit(), Solid(mgl32.Vec3{0.8, 0.4, 0.2}))

	return b.finish(info, camera), nil
}
