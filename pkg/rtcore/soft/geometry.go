package soft

import (
	"sync/atomic"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-embree/pkg/rtcore"
)

type bufferKey struct {
	typ  rtcore.BufferType
	slot uint32
}

// sharedBuffer is a view of caller memory; nothing is copied
type sharedBuffer struct {
	ptr    unsafe.Pointer
	format rtcore.Format
	offset uintptr
	stride uintptr
	count  uintptr
}

// at returns the address of element i
func (b sharedBuffer) at(i uintptr) unsafe.Pointer {
	return unsafe.Add(b.ptr, b.offset+i*b.stride)
}

func (b sharedBuffer) vec3(i uintptr) mgl32.Vec3 { return *(*mgl32.Vec3)(b.at(i)) }
func (b sharedBuffer) vec4(i uintptr) mgl32.Vec4 { return *(*mgl32.Vec4)(b.at(i)) }
func (b sharedBuffer) uint3(i uintptr) [3]uint32 { return *(*[3]uint32)(b.at(i)) }
func (b sharedBuffer) uint4(i uintptr) [4]uint32 { return *(*[4]uint32)(b.at(i)) }

type geometry struct {
	dev  *device
	typ  rtcore.GeometryType
	refs atomic.Int32

	quality     rtcore.BuildQuality
	attribCount uint32
	buffers     map[bufferKey]sharedBuffer

	userCount   uint32
	userPtr     unsafe.Pointer
	boundsUser  unsafe.Pointer
	boundsFn    rtcore.BoundsFunc
	intersectFn rtcore.IntersectFunc
	occludedFn  rtcore.OccludedFunc

	committed bool
}

func toGeometry(g rtcore.Geometry) *geometry { return (*geometry)(g) }

// GeometryRefCount reports the engine-side reference count of a geometry.
func GeometryRefCount(g rtcore.Geometry) int32 { return toGeometry(g).refs.Load() }

// NewGeometry implements rtcore.Engine.
func (e *Engine) NewGeometry(d rtcore.Device, typ rtcore.GeometryType) rtcore.Geometry {
	dev := toDevice(d)
	switch typ {
	case rtcore.GeometryTypeTriangle, rtcore.GeometryTypeQuad,
		rtcore.GeometryTypeSpherePoint, rtcore.GeometryTypeDiscPoint,
		rtcore.GeometryTypeOrientedDiscPoint, rtcore.GeometryTypeUser:
	default:
		dev.report(rtcore.ErrorInvalidArgument, "unsupported geometry type %d", typ)
		return nil
	}

	dev.refs.Add(1)
	g := &geometry{
		dev:     dev,
		typ:     typ,
		quality: rtcore.BuildQualityMedium,
		buffers: make(map[bufferKey]sharedBuffer),
	}
	g.refs.Store(1)
	return rtcore.Geometry(unsafe.Pointer(g))
}

// RetainGeometry implements rtcore.Engine.
func (e *Engine) RetainGeometry(g rtcore.Geometry) {
	toGeometry(g).refs.Add(1)
}

// ReleaseGeometry implements rtcore.Engine. The geometry drops its shared
// buffer views and its device reference when the count reaches zero.
func (e *Engine) ReleaseGeometry(g rtcore.Geometry) {
	geom := toGeometry(g)
	n := geom.refs.Add(-1)
	switch {
	case n == 0:
		geom.buffers = nil
		geom.userPtr, geom.boundsUser = nil, nil
		e.ReleaseDevice(rtcore.Device(unsafe.Pointer(geom.dev)))
	case n < 0:
		geom.dev.report(rtcore.ErrorInvalidOperation, "geometry released more often than retained")
	}
}

// SetGeometryBuildQuality implements rtcore.Engine.
func (e *Engine) SetGeometryBuildQuality(g rtcore.Geometry, q rtcore.BuildQuality) {
	geom := toGeometry(g)
	if q < rtcore.BuildQualityLow || q > rtcore.BuildQualityHigh {
		geom.dev.report(rtcore.ErrorInvalidArgument, "invalid build quality %d", q)
		return
	}
	geom.quality = q
}

// SetGeometryTransform implements rtcore.Engine. Only instances carry a
// transform and this engine does not build instances, so a well-formed call
// is rejected as an invalid operation.
func (e *Engine) SetGeometryTransform(g rtcore.Geometry, timeStep uint32, format rtcore.Format, xfm unsafe.Pointer) {
	geom := toGeometry(g)
	switch format {
	case rtcore.FormatFloat3x4RowMajor, rtcore.FormatFloat3x4ColumnMajor, rtcore.FormatFloat4x4ColumnMajor:
	default:
		geom.dev.report(rtcore.ErrorInvalidArgument, "invalid transform format %#x", int32(format))
		return
	}
	if timeStep != 0 || xfm == nil {
		geom.dev.report(rtcore.ErrorInvalidArgument, "invalid transform arguments")
		return
	}
	if geom.typ != rtcore.GeometryTypeInstance {
		geom.dev.report(rtcore.ErrorInvalidOperation, "transform can only be set on instance geometries")
	}
}

// SetGeometryVertexAttributeCount implements rtcore.Engine.
func (e *Engine) SetGeometryVertexAttributeCount(g rtcore.Geometry, count uint32) {
	geom := toGeometry(g)
	if geom.typ == rtcore.GeometryTypeUser {
		geom.dev.report(rtcore.ErrorInvalidOperation, "user geometries have no vertex attributes")
		return
	}
	geom.attribCount = count
}

// SetSharedGeometryBuffer implements rtcore.Engine.
func (e *Engine) SetSharedGeometryBuffer(g rtcore.Geometry, typ rtcore.BufferType, slot uint32, format rtcore.Format,
	ptr unsafe.Pointer, byteOffset, byteStride, itemCount uintptr) {
	geom := toGeometry(g)
	if geom.committed {
		geom.dev.report(rtcore.ErrorInvalidOperation, "geometry is already committed")
		return
	}
	if byteOffset%4 != 0 || byteStride%4 != 0 {
		geom.dev.report(rtcore.ErrorInvalidArgument, "buffer offset and stride must be 4-byte aligned")
		return
	}
	if size := format.ByteSize(); size == 0 || byteStride < size {
		geom.dev.report(rtcore.ErrorInvalidArgument, "stride %d too small for format %#x", byteStride, int32(format))
		return
	}
	if ptr == nil && itemCount > 0 {
		geom.dev.report(rtcore.ErrorInvalidArgument, "nil buffer with %d items", itemCount)
		return
	}

	switch typ {
	case rtcore.BufferTypeIndex, rtcore.BufferTypeVertex, rtcore.BufferTypeNormal:
		if slot != 0 {
			geom.dev.report(rtcore.ErrorInvalidArgument, "invalid slot %d for buffer type %d", slot, typ)
			return
		}
	case rtcore.BufferTypeVertexAttribute:
		if slot >= geom.attribCount {
			geom.dev.report(rtcore.ErrorInvalidArgument, "vertex attribute slot %d exceeds attribute count %d", slot, geom.attribCount)
			return
		}
	default:
		geom.dev.report(rtcore.ErrorInvalidArgument, "unsupported buffer type %d", typ)
		return
	}

	geom.buffers[bufferKey{typ, slot}] = sharedBuffer{
		ptr:    ptr,
		format: format,
		offset: byteOffset,
		stride: byteStride,
		count:  itemCount,
	}
}

// SetGeometryUserPrimitiveCount implements rtcore.Engine.
func (e *Engine) SetGeometryUserPrimitiveCount(g rtcore.Geometry, count uint32) {
	geom := toGeometry(g)
	if !geom.requireUser() {
		return
	}
	geom.userCount = count
}

// SetGeometryUserData implements rtcore.Engine.
func (e *Engine) SetGeometryUserData(g rtcore.Geometry, userPtr unsafe.Pointer) {
	toGeometry(g).userPtr = userPtr
}

// SetGeometryBoundsFunction implements rtcore.Engine.
func (e *Engine) SetGeometryBoundsFunction(g rtcore.Geometry, fn rtcore.BoundsFunc, userPtr unsafe.Pointer) {
	geom := toGeometry(g)
	if !geom.requireUser() {
		return
	}
	geom.boundsFn, geom.boundsUser = fn, userPtr
}

// SetGeometryIntersectFunction implements rtcore.Engine.
func (e *Engine) SetGeometryIntersectFunction(g rtcore.Geometry, fn rtcore.IntersectFunc) {
	geom := toGeometry(g)
	if !geom.requireUser() {
		return
	}
	geom.intersectFn = fn
}

// SetGeometryOccludedFunction implements rtcore.Engine.
func (e *Engine) SetGeometryOccludedFunction(g rtcore.Geometry, fn rtcore.OccludedFunc) {
	geom := toGeometry(g)
	if !geom.requireUser() {
		return
	}
	geom.occludedFn = fn
}

func (g *geometry) requireUser() bool {
	if g.typ != rtcore.GeometryTypeUser {
		g.dev.report(rtcore.ErrorInvalidOperation, "operation only valid for user geometries")
		return false
	}
	return true
}

// CommitGeometry implements rtcore.Engine. Missing buffers or callbacks are
// reported and leave the geometry uncommitted.
func (e *Engine) CommitGeometry(g rtcore.Geometry) {
	geom := toGeometry(g)
	if err := geom.validate(); err != "" {
		geom.dev.report(rtcore.ErrorInvalidOperation, "%s", err)
		return
	}
	geom.committed = true
	geom.dev.debug("geometry committed", "type", geom.typ, "quality", geom.quality, "primitives", geom.primitiveCount())
}

func (g *geometry) requireBuffer(typ rtcore.BufferType, format rtcore.Format) string {
	b, ok := g.buffers[bufferKey{typ, 0}]
	if !ok {
		return "missing required buffer"
	}
	if b.format != format {
		return "buffer has unexpected format"
	}
	return ""
}

func (g *geometry) validate() string {
	switch g.typ {
	case rtcore.GeometryTypeTriangle:
		if err := g.requireBuffer(rtcore.BufferTypeIndex, rtcore.FormatUInt3); err != "" {
			return "triangle index buffer: " + err
		}
		if err := g.requireBuffer(rtcore.BufferTypeVertex, rtcore.FormatFloat3); err != "" {
			return "triangle vertex buffer: " + err
		}
	case rtcore.GeometryTypeQuad:
		if err := g.requireBuffer(rtcore.BufferTypeIndex, rtcore.FormatUInt4); err != "" {
			return "quad index buffer: " + err
		}
		if err := g.requireBuffer(rtcore.BufferTypeVertex, rtcore.FormatFloat3); err != "" {
			return "quad vertex buffer: " + err
		}
	case rtcore.GeometryTypeSpherePoint, rtcore.GeometryTypeDiscPoint:
		if err := g.requireBuffer(rtcore.BufferTypeVertex, rtcore.FormatFloat4); err != "" {
			return "point vertex buffer: " + err
		}
	case rtcore.GeometryTypeOrientedDiscPoint:
		if err := g.requireBuffer(rtcore.BufferTypeVertex, rtcore.FormatFloat4); err != "" {
			return "disc vertex buffer: " + err
		}
		if err := g.requireBuffer(rtcore.BufferTypeNormal, rtcore.FormatFloat3); err != "" {
			return "disc normal buffer: " + err
		}
	case rtcore.GeometryTypeUser:
		if g.boundsFn == nil || g.intersectFn == nil {
			return "user geometry requires bounds and intersect functions"
		}
	}
	return ""
}

// primitiveCount returns the number of primitives the geometry describes
func (g *geometry) primitiveCount() uintptr {
	switch g.typ {
	case rtcore.GeometryTypeTriangle, rtcore.GeometryTypeQuad:
		return g.buffers[bufferKey{rtcore.BufferTypeIndex, 0}].count
	case rtcore.GeometryTypeUser:
		return uintptr(g.userCount)
	default:
		return g.buffers[bufferKey{rtcore.BufferTypeVertex, 0}].count
	}
}
