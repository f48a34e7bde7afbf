package embree

// GeometryKind names the variant of a committed Geometry.
type GeometryKind int

const (
	KindTriangleMesh GeometryKind = iota
	KindQuadMesh
	KindSpheres
	KindDiscs
	KindUser
)

func (k GeometryKind) String() string {
	switch k {
	case KindTriangleMesh:
		return "triangle mesh"
	case KindQuadMesh:
		return "quad mesh"
	case KindSpheres:
		return "spheres"
	case KindDiscs:
		return "discs"
	case KindUser:
		return "user"
	}
	return "unknown"
}

// geometryData is the committed variant a Geometry owns.
type geometryData interface {
	handle() *Handle
	setGeomID(id GeomID)
	release()
}

// Geometry is a committed geometry. It can only be attached to a
// SceneBuilder, which takes ownership of it.
type Geometry struct {
	kind     GeometryKind
	data     geometryData
	attached bool
}

func newGeometry(kind GeometryKind, data geometryData) *Geometry {
	return &Geometry{kind: kind, data: data}
}

// Kind returns the variant of the geometry.
func (g *Geometry) Kind() GeometryKind { return g.kind }

// Handle returns the geometry's engine handle.
func (g *Geometry) Handle() *Handle { return g.data.handle() }

// Data returns the committed variant: *TriangleMesh, *QuadMesh,
// *SphereGeometry, *DiscGeometry or *ErasedUserGeometry. It must be treated
// as read-only.
func (g *Geometry) Data() any { return g.data }

// UserGeometry returns the type-erased user geometry when g is one.
func (g *Geometry) UserGeometry() (*ErasedUserGeometry, bool) {
	e, ok := g.data.(*ErasedUserGeometry)
	return e, ok
}

// Release frees a geometry that was never attached. Attached geometries are
// released with their scene.
func (g *Geometry) Release() {
	if g.attached {
		panic("embree: attached geometry is owned by its scene")
	}
	g.data.release()
}
