package rtcore

import "unsafe"

// Engine is the set of engine entry points the scene-graph layer calls. Each
// method corresponds to one rtc* function of the C API and inherits its
// contract: errors are reported through the device error function and
// GetDeviceError, never returned.
type Engine interface {
	Name() string

	NewDevice(config string) Device
	RetainDevice(d Device)
	ReleaseDevice(d Device)
	GetDeviceError(d Device) Error
	SetDeviceErrorFunction(d Device, fn ErrorFunc, userPtr unsafe.Pointer)

	NewGeometry(d Device, typ GeometryType) Geometry
	RetainGeometry(g Geometry)
	ReleaseGeometry(g Geometry)
	CommitGeometry(g Geometry)
	SetGeometryBuildQuality(g Geometry, q BuildQuality)
	SetGeometryTransform(g Geometry, timeStep uint32, format Format, xfm unsafe.Pointer)
	SetGeometryVertexAttributeCount(g Geometry, count uint32)
	// SetSharedGeometryBuffer shares caller memory with the geometry. The
	// engine keeps ptr and reads from it until the geometry is destroyed.
	SetSharedGeometryBuffer(g Geometry, typ BufferType, slot uint32, format Format,
		ptr unsafe.Pointer, byteOffset, byteStride, itemCount uintptr)
	SetGeometryUserPrimitiveCount(g Geometry, count uint32)
	SetGeometryUserData(g Geometry, userPtr unsafe.Pointer)
	SetGeometryBoundsFunction(g Geometry, fn BoundsFunc, userPtr unsafe.Pointer)
	SetGeometryIntersectFunction(g Geometry, fn IntersectFunc)
	SetGeometryOccludedFunction(g Geometry, fn OccludedFunc)

	NewScene(d Device) Scene
	RetainScene(s Scene)
	ReleaseScene(s Scene)
	AttachGeometry(s Scene, g Geometry) uint32
	CommitScene(s Scene)
	SetSceneBuildQuality(s Scene, q BuildQuality)
	SetSceneFlags(s Scene, flags SceneFlags)
	GetSceneFlags(s Scene) SceneFlags
	GetSceneBounds(s Scene, out *Bounds)
	Intersect1(s Scene, ctx *IntersectContext, rayhit *RayHit)
	Occluded1(s Scene, ctx *IntersectContext, ray *Ray)
}

// Pinner is implemented by engines that hold raw pointers to caller memory
// outside the Go runtime's knowledge. Shared buffers handed to such an engine
// must be pinned for as long as the engine can read them.
type Pinner interface {
	PinsSharedMemory() bool
}

// NeedsPinning reports whether memory shared with e must be pinned.
func NeedsPinning(e Engine) bool {
	p, ok := e.(Pinner)
	return ok && p.PinsSharedMemory()
}
