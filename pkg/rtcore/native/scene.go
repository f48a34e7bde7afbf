//go:build embree

package native

// #include <embree3/rtcore.h>
import "C"

import (
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
)

// NewScene implements rtcore.Engine. The scene retains its device.
func (e *Engine) NewScene(d rtcore.Device) rtcore.Scene {
	s := rtcore.Scene(unsafe.Pointer(C.rtcNewScene(cDevice(d))))
	if s == nil {
		return nil
	}
	e.retainDevice(d)
	e.mu.Lock()
	e.scenes[s] = &sceneState{dev: d, refs: 1}
	e.mu.Unlock()
	return s
}

// RetainScene implements rtcore.Engine.
func (e *Engine) RetainScene(s rtcore.Scene) {
	C.rtcRetainScene(cScene(s))
	e.mu.Lock()
	if st := e.scenes[s]; st != nil {
		st.refs++
	}
	e.mu.Unlock()
}

// ReleaseScene implements rtcore.Engine. The last release drops the scene's
// references to its geometries and device.
func (e *Engine) ReleaseScene(s rtcore.Scene) {
	C.rtcReleaseScene(cScene(s))

	e.mu.Lock()
	st := e.scenes[s]
	if st == nil {
		e.mu.Unlock()
		return
	}
	st.refs--
	if st.refs > 0 {
		e.mu.Unlock()
		return
	}
	delete(e.scenes, s)
	e.mu.Unlock()

	for _, g := range st.attached {
		e.releaseGeometry(g)
	}
	e.releaseDevice(st.dev)
}

// AttachGeometry implements rtcore.Engine.
func (e *Engine) AttachGeometry(s rtcore.Scene, g rtcore.Geometry) uint32 {
	id := uint32(C.rtcAttachGeometry(cScene(s), cGeometry(g)))
	if id == rtcore.InvalidGeometryID {
		return id
	}
	e.retainGeometry(g)
	e.mu.Lock()
	if st := e.scenes[s]; st != nil {
		st.attached = append(st.attached, g)
	}
	e.mu.Unlock()
	return id
}

// CommitScene implements rtcore.Engine.
func (e *Engine) CommitScene(s rtcore.Scene) {
	C.rtcCommitScene(cScene(s))
}

// SetSceneBuildQuality implements rtcore.Engine.
func (e *Engine) SetSceneBuildQuality(s rtcore.Scene, q rtcore.BuildQuality) {
	C.rtcSetSceneBuildQuality(cScene(s), C.enum_RTCBuildQuality(q))
}

// SetSceneFlags implements rtcore.Engine.
func (e *Engine) SetSceneFlags(s rtcore.Scene, flags rtcore.SceneFlags) {
	C.rtcSetSceneFlags(cScene(s), C.enum_RTCSceneFlags(flags))
}

// GetSceneFlags implements rtcore.Engine.
func (e *Engine) GetSceneFlags(s rtcore.Scene) rtcore.SceneFlags {
	return rtcore.SceneFlags(C.rtcGetSceneFlags(cScene(s)))
}

// GetSceneBounds implements rtcore.Engine.
func (e *Engine) GetSceneBounds(s rtcore.Scene, out *rtcore.Bounds) {
	C.rtcGetSceneBounds(cScene(s), (*C.struct_RTCBounds)(unsafe.Pointer(out)))
}

// Intersect1 implements rtcore.Engine.
func (e *Engine) Intersect1(s rtcore.Scene, ctx *rtcore.IntersectContext, rayhit *rtcore.RayHit) {
	C.rtcIntersect1(cScene(s), (*C.struct_RTCIntersectContext)(unsafe.Pointer(ctx)),
		(*C.struct_RTCRayHit)(unsafe.Pointer(rayhit)))
}

// Occluded1 implements rtcore.Engine.
func (e *Engine) Occluded1(s rtcore.Scene, ctx *rtcore.IntersectContext, ray *rtcore.Ray) {
	C.rtcOccluded1(cScene(s), (*C.struct_RTCIntersectContext)(unsafe.Pointer(ctx)),
		(*C.struct_RTCRay)(unsafe.Pointer(ray)))
}
