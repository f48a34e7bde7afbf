package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/loaders"
	"github.com/df07/go-embree/pkg/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// newMeshScene loads opts.PLYPath and frames it with the camera, placing a
// ground quad just below the mesh.
func newMeshScene(d *embree.Device, info SceneInfo, opts Options) (*Scene, error) {
	if opts.PLYPath == "" {
		return nil, errors.New("mesh scene requires a PLY file")
	}
	ply, err := loaders.LoadPLY(opts.PLYPath)
	if err != nil {
		return nil, fmt.Errorf("load mesh: %w", err)
	}
	if len(ply.Triangles) == 0 {
		return nil, fmt.Errorf("mesh %s has no faces", opts.PLYPath)
	}

	bounds := embree.EmptyAABB()
	for _, v := range ply.Vertices {
		bounds = bounds.Extend(v)
	}
	size := bounds.Size()
	center := bounds.Center()
	extent := max(size.X(), size.Y(), size.Z())

	camera := renderer.CameraConfig{
		Center: center.Add(mgl32.Vec3{0.6, 0.5, 1.6}.Mul(extent)),
		LookAt: center,
		Up:     mgl32.Vec3{0, 1, 0},
		VFov:   35,
	}

	b := newBuilder(d, opts)
	ground := mgl32.Vec3{center.X(), bounds.Lower.Y() - 0.001*extent, center.Z()}
	b.add(groundQuad(d, ground, 50*extent).Commit(), Solid(mgl32.Vec3{0.5, 0.5, 0.5}))

	mesh := ply.NewTriangleMesh(d)
	shader := Solid(mgl32.Vec3{0.7, 0.7, 0.7})
	if opts.Texture != nil && len(ply.TexCoords) > 0 {
		shader = MeshTextured(opts.Texture, ply.Triangles, ply.TexCoords)
	}
	b.add(mesh.Commit(), shader)

	return b.finish(info, camera), nil
}
