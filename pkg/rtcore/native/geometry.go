//go:build embree

package native

// #include <embree3/rtcore.h>
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
)

// NewGeometry implements rtcore.Engine. The geometry retains its device.
func (e *Engine) NewGeometry(d rtcore.Device, typ rtcore.GeometryType) rtcore.Geometry {
	g := rtcore.Geometry(unsafe.Pointer(C.rtcNewGeometry(cDevice(d), C.enum_RTCGeometryType(typ))))
	if g == nil {
		return nil
	}
	e.retainDevice(d)
	e.mu.Lock()
	e.geoms[g] = &geometryState{dev: d, refs: 1}
	e.mu.Unlock()
	return g
}

// RetainGeometry implements rtcore.Engine.
func (e *Engine) RetainGeometry(g rtcore.Geometry) {
	C.rtcRetainGeometry(cGeometry(g))
	e.retainGeometry(g)
}

func (e *Engine) retainGeometry(g rtcore.Geometry) {
	e.mu.Lock()
	if st := e.geoms[g]; st != nil {
		st.refs++
	}
	e.mu.Unlock()
}

// ReleaseGeometry implements rtcore.Engine.
func (e *Engine) ReleaseGeometry(g rtcore.Geometry) {
	C.rtcReleaseGeometry(cGeometry(g))
	e.releaseGeometry(g)
}

func (e *Engine) releaseGeometry(g rtcore.Geometry) {
	e.mu.Lock()
	st := e.geoms[g]
	if st == nil {
		e.mu.Unlock()
		return
	}
	st.refs--
	if st.refs > 0 {
		e.mu.Unlock()
		return
	}
	delete(e.geoms, g)
	e.mu.Unlock()

	if st.handle != 0 {
		st.handle.Delete()
	}
	e.releaseDevice(st.dev)
}

// CommitGeometry implements rtcore.Engine.
func (e *Engine) CommitGeometry(g rtcore.Geometry) {
	C.rtcCommitGeometry(cGeometry(g))
}

// SetGeometryBuildQuality implements rtcore.Engine.
func (e *Engine) SetGeometryBuildQuality(g rtcore.Geometry, q rtcore.BuildQuality) {
	C.rtcSetGeometryBuildQuality(cGeometry(g), C.enum_RTCBuildQuality(q))
}

// SetGeometryTransform implements rtcore.Engine.
func (e *Engine) SetGeometryTransform(g rtcore.Geometry, timeStep uint32, format rtcore.Format, xfm unsafe.Pointer) {
	C.rtcSetGeometryTransform(cGeometry(g), C.uint(timeStep), C.enum_RTCFormat(format), xfm)
}

// SetGeometryVertexAttributeCount implements rtcore.Engine.
func (e *Engine) SetGeometryVertexAttributeCount(g rtcore.Geometry, count uint32) {
	C.rtcSetGeometryVertexAttributeCount(cGeometry(g), C.uint(count))
}

// SetSharedGeometryBuffer implements rtcore.Engine. ptr must be pinned for
// the lifetime of the geometry.
func (e *Engine) SetSharedGeometryBuffer(g rtcore.Geometry, typ rtcore.BufferType, slot uint32, format rtcore.Format,
	ptr unsafe.Pointer, byteOffset, byteStride, itemCount uintptr) {
	C.rtcSetSharedGeometryBuffer(cGeometry(g), C.enum_RTCBufferType(typ), C.uint(slot), C.enum_RTCFormat(format),
		ptr, C.size_t(byteOffset), C.size_t(byteStride), C.size_t(itemCount))
}

// SetGeometryUserPrimitiveCount implements rtcore.Engine.
func (e *Engine) SetGeometryUserPrimitiveCount(g rtcore.Geometry, count uint32) {
	C.rtcSetGeometryUserPrimitiveCount(cGeometry(g), C.uint(count))
}

// userCallbacks returns the callback state of g, registering the trampolines
// with the library on first use.
func (e *Engine) userCallbacks(g rtcore.Geometry) *callbacks {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.geoms[g]
	if st.cb == nil {
		st.cb = &callbacks{}
		st.handle = cgo.NewHandle(st.cb)
		installUserCallbacks(g, st.handle)
	}
	return st.cb
}

// SetGeometryUserData implements rtcore.Engine. The library sees a handle;
// callbacks receive userPtr.
func (e *Engine) SetGeometryUserData(g rtcore.Geometry, userPtr unsafe.Pointer) {
	e.userCallbacks(g).userPtr = userPtr
}

// SetGeometryBoundsFunction implements rtcore.Engine.
func (e *Engine) SetGeometryBoundsFunction(g rtcore.Geometry, fn rtcore.BoundsFunc, userPtr unsafe.Pointer) {
	cb := e.userCallbacks(g)
	cb.bounds, cb.boundsUser = fn, userPtr
}

// SetGeometryIntersectFunction implements rtcore.Engine.
func (e *Engine) SetGeometryIntersectFunction(g rtcore.Geometry, fn rtcore.IntersectFunc) {
	e.userCallbacks(g).intersect = fn
}

// SetGeometryOccludedFunction implements rtcore.Engine.
func (e *Engine) SetGeometryOccludedFunction(g rtcore.Geometry, fn rtcore.OccludedFunc) {
	e.userCallbacks(g).occluded = fn
}
