package embree

import (
	"fmt"

	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/go-gl/mathgl/mgl32"
)

// Triangle holds the vertex indices of one triangle.
type Triangle [3]uint32

// BufferFormat implements Formatted.
func (Triangle) BufferFormat() Format { return FormatUInt3 }

// Quad holds the vertex indices of one quad. A quad is split into the
// triangles (v0, v1, v3) and (v2, v3, v1).
type Quad [4]uint32

// BufferFormat implements Formatted.
func (Quad) BufferFormat() Format { return FormatUInt4 }

// Polygon constrains the index element types of a PolygonMesh.
type Polygon interface {
	Triangle | Quad
}

const (
	normalSlot   = 0
	texCoordSlot = 1

	maxAttributeSlots = 2
)

// PolygonMesh is a mesh of triangles or quads under construction. Vertices
// and indices are shared with the engine without copying.
type PolygonMesh[P Polygon] struct {
	h        *Handle
	indices  *Buffer[P]
	vertices *Buffer[mgl32.Vec3]
	attribs  [maxAttributeSlots]AttributeBuffer
}

// TriangleMesh is a mesh of triangles.
type TriangleMesh = PolygonMesh[Triangle]

// QuadMesh is a mesh of quads.
type QuadMesh = PolygonMesh[Quad]

// NewTriangleMesh creates a triangle mesh over vertices and indices.
func NewTriangleMesh(d *Device, vertices []mgl32.Vec3, indices []Triangle) *TriangleMesh {
	return newPolygonMesh(d, rtcore.GeometryTypeTriangle, vertices, indices)
}

// NewQuadMesh creates a quad mesh over vertices and indices.
func NewQuadMesh(d *Device, vertices []mgl32.Vec3, indices []Quad) *QuadMesh {
	return newPolygonMesh(d, rtcore.GeometryTypeQuad, vertices, indices)
}

func newPolygonMesh[P Polygon](d *Device, typ rtcore.GeometryType, vertices []mgl32.Vec3, indices []P) *PolygonMesh[P] {
	return &PolygonMesh[P]{
		h:        newHandle(d, typ),
		indices:  NewBuffer(indices),
		vertices: NewBuffer(vertices),
	}
}

// Vertices returns the vertex positions.
func (m *PolygonMesh[P]) Vertices() []mgl32.Vec3 { return m.vertices.Data() }

// Indices returns the polygon index records.
func (m *PolygonMesh[P]) Indices() []P { return m.indices.Data() }

// Normals returns the per-vertex normals, or nil if none were set.
func (m *PolygonMesh[P]) Normals() []mgl32.Vec3 {
	if n, ok := m.attribs[normalSlot].(*Buffer[mgl32.Vec3]); ok {
		return n.Data()
	}
	return nil
}

// TexCoords returns the per-vertex texture coordinates, or nil.
func (m *PolygonMesh[P]) TexCoords() []mgl32.Vec2 {
	if uv, ok := m.attribs[texCoordSlot].(*Buffer[mgl32.Vec2]); ok {
		return uv.Data()
	}
	return nil
}

// SetNormals sets per-vertex normals, bound as vertex attribute slot 0.
func (m *PolygonMesh[P]) SetNormals(normals []mgl32.Vec3) {
	m.SetVertexAttribBuffer(normalSlot, NewBuffer(normals))
}

// SetTexCoords sets per-vertex texture coordinates, bound as vertex
// attribute slot 1.
func (m *PolygonMesh[P]) SetTexCoords(uv []mgl32.Vec2) {
	m.SetVertexAttribBuffer(texCoordSlot, NewBuffer(uv))
}

// SetVertexAttribBuffer sets the vertex attribute in slot, which must be 0
// or 1. The buffer must have one element per vertex.
func (m *PolygonMesh[P]) SetVertexAttribBuffer(slot uint32, buf AttributeBuffer) {
	m.h.checkMutable()
	if slot >= maxAttributeSlots {
		panic(fmt.Sprintf("embree: vertex attribute slot %d out of range", slot))
	}
	if buf != nil && buf.Len() != m.vertices.Len() {
		panic(fmt.Sprintf("embree: vertex attribute has %d elements for %d vertices", buf.Len(), m.vertices.Len()))
	}
	m.attribs[slot] = buf
}

// Handle returns the mesh's geometry handle.
func (m *PolygonMesh[P]) Handle() *Handle { return m.h }

// SetBuildQuality sets the geometry's build quality.
func (m *PolygonMesh[P]) SetBuildQuality(q BuildQuality) { m.h.SetBuildQuality(q) }

// attributeCount is one past the highest populated attribute slot.
func (m *PolygonMesh[P]) attributeCount() uint32 {
	for i := maxAttributeSlots - 1; i >= 0; i-- {
		if m.attribs[i] != nil {
			return uint32(i + 1)
		}
	}
	return 0
}

// Commit binds the mesh's buffers and commits it. The mesh must not be
// modified afterwards.
func (m *PolygonMesh[P]) Commit() *Geometry {
	m.indices.bind(m.h, BufferIndex, 0)
	m.vertices.bind(m.h, BufferVertex, 0)
	count := m.attributeCount()
	m.h.obj.engine.SetGeometryVertexAttributeCount(m.h.raw(), count)
	for slot, buf := range m.attribs[:count] {
		if buf != nil {
			buf.bind(m.h, BufferVertexAttribute, uint32(slot))
		}
	}
	m.h.commit()
	Logger().Debug("mesh committed", "type", m.h.obj.typ, "polygons", m.indices.Len(), "vertices", m.vertices.Len())

	kind := KindTriangleMesh
	if m.h.obj.typ == rtcore.GeometryTypeQuad {
		kind = KindQuadMesh
	}
	return newGeometry(kind, m)
}

func (m *PolygonMesh[P]) handle() *Handle  { return m.h }
func (m *PolygonMesh[P]) setGeomID(GeomID) {}
func (m *PolygonMesh[P]) release()         { m.h.Release() }

// TransformMesh applies an affine transform to the mesh's vertices in place.
// Normals are transformed by the inverse transpose and renormalized.
func TransformMesh[P Polygon](m *PolygonMesh[P], xfm mgl32.Mat4) {
	m.h.checkMutable()
	for i, v := range m.vertices.data {
		m.vertices.data[i] = mgl32.TransformCoordinate(v, xfm)
	}
	normals := m.Normals()
	if normals == nil {
		return
	}
	nxfm := xfm.Inv().Transpose()
	for i, n := range normals {
		normals[i] = mgl32.TransformNormal(n, nxfm).Normalize()
	}
}
