package embree

import (
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is a sphere point primitive. Center and radius share one
// four-float record.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// BufferFormat implements Formatted.
func (Sphere) BufferFormat() Format { return FormatFloat4 }

// Disc is an oriented disc point primitive facing along Normal.
type Disc struct {
	Center mgl32.Vec3
	Radius float32
	Normal mgl32.Vec3
}

// BufferFormat implements Formatted.
func (Disc) BufferFormat() Format { return FormatFloat4 }

// discNormalOffset is the byte offset of the normal within a Disc record.
const discNormalOffset = unsafe.Offsetof(Disc{}.Normal)

// SphereGeometry is a set of spheres under construction.
type SphereGeometry struct {
	h     *Handle
	prims *Buffer[Sphere]
}

// NewSphereGeometry creates a geometry of spheres.
func NewSphereGeometry(d *Device, prims []Sphere) *SphereGeometry {
	return &SphereGeometry{h: newHandle(d, rtcore.GeometryTypeSpherePoint), prims: NewBuffer(prims)}
}

// Prims returns the spheres.
func (g *SphereGeometry) Prims() []Sphere { return g.prims.Data() }

// Handle returns the geometry handle.
func (g *SphereGeometry) Handle() *Handle { return g.h }

// SetBuildQuality sets the geometry's build quality.
func (g *SphereGeometry) SetBuildQuality(q BuildQuality) { g.h.SetBuildQuality(q) }

// Commit binds the sphere records and commits the geometry.
func (g *SphereGeometry) Commit() *Geometry {
	g.prims.bind(g.h, BufferVertex, 0)
	g.h.commit()
	Logger().Debug("spheres committed", "count", g.prims.Len())
	return newGeometry(KindSpheres, g)
}

func (g *SphereGeometry) handle() *Handle  { return g.h }
func (g *SphereGeometry) setGeomID(GeomID) {}
func (g *SphereGeometry) release()         { g.h.Release() }

// DiscGeometry is a set of oriented discs under construction.
type DiscGeometry struct {
	h     *Handle
	prims *Buffer[Disc]
}

// NewDiscGeometry creates a geometry of oriented discs.
func NewDiscGeometry(d *Device, prims []Disc) *DiscGeometry {
	return &DiscGeometry{h: newHandle(d, rtcore.GeometryTypeOrientedDiscPoint), prims: NewBuffer(prims)}
}

// Prims returns the discs.
func (g *DiscGeometry) Prims() []Disc { return g.prims.Data() }

// Handle returns the geometry handle.
func (g *DiscGeometry) Handle() *Handle { return g.h }

// SetBuildQuality sets the geometry's build quality.
func (g *DiscGeometry) SetBuildQuality(q BuildQuality) { g.h.SetBuildQuality(q) }

// Commit binds the disc records as positions and normals and commits the
// geometry. Both bindings view the same records.
func (g *DiscGeometry) Commit() *Geometry {
	bindShared(g.h, &g.prims.data, BufferVertex, 0, FormatFloat4, 0)
	bindShared(g.h, &g.prims.data, BufferNormal, 0, FormatFloat3, discNormalOffset)
	g.h.commit()
	Logger().Debug("discs committed", "count", g.prims.Len())
	return newGeometry(KindDiscs, g)
}

func (g *DiscGeometry) handle() *Handle  { return g.h }
func (g *DiscGeometry) setGeomID(GeomID) {}
func (g *DiscGeometry) release()         { g.h.Release() }
