package primitives

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/df07/go-embree/pkg/embree"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMeshCells is the marching cubes resolution along the longest axis
// of the bounding box.
const DefaultMeshCells = 64

// Mesh is a tessellated distance field. Vertices are not shared between
// triangles so every triangle carries its own face normal.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Normals   []mgl32.Vec3
	Triangles []embree.Triangle
}

// Tessellate converts shape to triangles using uniform marching cubes.
func Tessellate(shape sdf.SDF3, cells int) Mesh {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	triangles := render.ToTriangles(shape, render.NewMarchingCubesUniform(cells))

	m := Mesh{
		Vertices:  make([]mgl32.Vec3, 0, len(triangles)*3),
		Normals:   make([]mgl32.Vec3, 0, len(triangles)*3),
		Triangles: make([]embree.Triangle, 0, len(triangles)),
	}
	for i, tri := range triangles {
		n := fromV3(tri.Normal())
		for j := 0; j < 3; j++ {
			m.Vertices = append(m.Vertices, fromV3(tri[j]))
			m.Normals = append(m.Normals, n)
		}
		base := uint32(i * 3)
		m.Triangles = append(m.Triangles, embree.Triangle{base, base + 1, base + 2})
	}
	return m
}

// NewTriangleMesh builds an uncommitted triangle mesh for m on d with the
// face normals bound as a vertex attribute.
func (m Mesh) NewTriangleMesh(d *embree.Device) *embree.TriangleMesh {
	mesh := embree.NewTriangleMesh(d, m.Vertices, m.Triangles)
	mesh.SetNormals(m.Normals)
	return mesh
}
