//go:build embree

// Package native implements rtcore.Engine on top of the Embree 3 C library.
//
// Callbacks cross the C boundary through exported trampolines. The user data
// pointer the library stores is a cgo.Handle to the Go side callback state,
// so no Go pointer is ever retained by C code other than shared buffers,
// which callers must pin.
package native

/*
#cgo LDFLAGS: -lembree3
#include <stdint.h>
#include <stdlib.h>
#include <embree3/rtcore.h>

extern void goErrorFunction(uintptr_t handle, enum RTCError code, char* str);
extern void goBoundsFunction(struct RTCBoundsFunctionArguments* args);
extern void goIntersectFunction(struct RTCIntersectFunctionNArguments* args);
extern void goOccludedFunction(struct RTCOccludedFunctionNArguments* args);

static void errorTrampoline(void* userPtr, enum RTCError code, const char* str) {
	goErrorFunction((uintptr_t)userPtr, code, (char*)str);
}

static void boundsTrampoline(const struct RTCBoundsFunctionArguments* args) {
	goBoundsFunction((struct RTCBoundsFunctionArguments*)args);
}

static void intersectTrampoline(const struct RTCIntersectFunctionNArguments* args) {
	goIntersectFunction((struct RTCIntersectFunctionNArguments*)args);
}

static void occludedTrampoline(const struct RTCOccludedFunctionNArguments* args) {
	goOccludedFunction((struct RTCOccludedFunctionNArguments*)args);
}

static void setErrorFunction(RTCDevice d, uintptr_t handle) {
	rtcSetDeviceErrorFunction(d, errorTrampoline, (void*)handle);
}

static void setUserCallbacks(RTCGeometry g, uintptr_t handle) {
	rtcSetGeometryUserData(g, (void*)handle);
	rtcSetGeometryBoundsFunction(g, boundsTrampoline, (void*)handle);
	rtcSetGeometryIntersectFunction(g, intersectTrampoline);
	rtcSetGeometryOccludedFunction(g, occludedTrampoline);
}
*/
import "C"

import (
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
)

// Compile-time interface check.
var _ rtcore.Engine = (*Engine)(nil)

// Engine calls into libembree3. The reference counts it keeps mirror the
// library's so that callback state is freed together with the objects it
// belongs to.
type Engine struct {
	mu      sync.Mutex
	devices map[rtcore.Device]*deviceState
	geoms   map[rtcore.Geometry]*geometryState
	scenes  map[rtcore.Scene]*sceneState
}

type deviceState struct {
	refs   int
	handle cgo.Handle
}

type geometryState struct {
	dev    rtcore.Device
	refs   int
	handle cgo.Handle
	cb     *callbacks
}

type sceneState struct {
	dev      rtcore.Device
	refs     int
	attached []rtcore.Geometry
}

// callbacks is the Go side of a user geometry.
type callbacks struct {
	userPtr    unsafe.Pointer
	boundsUser unsafe.Pointer
	bounds     rtcore.BoundsFunc
	intersect  rtcore.IntersectFunc
	occluded   rtcore.OccludedFunc
}

type errorSink struct {
	fn      rtcore.ErrorFunc
	userPtr unsafe.Pointer
}

// New creates an engine bound to the C library.
func New() *Engine {
	return &Engine{
		devices: make(map[rtcore.Device]*deviceState),
		geoms:   make(map[rtcore.Geometry]*geometryState),
		scenes:  make(map[rtcore.Scene]*sceneState),
	}
}

// Name implements rtcore.Engine.
func (e *Engine) Name() string { return "embree3" }

// PinsSharedMemory implements rtcore.Pinner. The library keeps raw pointers
// to shared buffers.
func (e *Engine) PinsSharedMemory() bool { return true }

func cDevice(d rtcore.Device) C.RTCDevice       { return C.RTCDevice(unsafe.Pointer(d)) }
func cGeometry(g rtcore.Geometry) C.RTCGeometry { return C.RTCGeometry(unsafe.Pointer(g)) }
func cScene(s rtcore.Scene) C.RTCScene          { return C.RTCScene(unsafe.Pointer(s)) }

// NewDevice implements rtcore.Engine.
func (e *Engine) NewDevice(config string) rtcore.Device {
	cfg := C.CString(config)
	defer C.free(unsafe.Pointer(cfg))
	d := rtcore.Device(unsafe.Pointer(C.rtcNewDevice(cfg)))
	if d == nil {
		return nil
	}
	e.mu.Lock()
	e.devices[d] = &deviceState{refs: 1}
	e.mu.Unlock()
	return d
}

// RetainDevice implements rtcore.Engine.
func (e *Engine) RetainDevice(d rtcore.Device) {
	C.rtcRetainDevice(cDevice(d))
	e.retainDevice(d)
}

func (e *Engine) retainDevice(d rtcore.Device) {
	e.mu.Lock()
	if st := e.devices[d]; st != nil {
		st.refs++
	}
	e.mu.Unlock()
}

// ReleaseDevice implements rtcore.Engine.
func (e *Engine) ReleaseDevice(d rtcore.Device) {
	C.rtcReleaseDevice(cDevice(d))
	e.releaseDevice(d)
}

// releaseDevice drops the mirrored reference and frees the error sink with
// the last one.
func (e *Engine) releaseDevice(d rtcore.Device) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.devices[d]
	if st == nil {
		return
	}
	if st.refs--; st.refs == 0 {
		if st.handle != 0 {
			st.handle.Delete()
		}
		delete(e.devices, d)
	}
}

// GetDeviceError implements rtcore.Engine.
func (e *Engine) GetDeviceError(d rtcore.Device) rtcore.Error {
	return rtcore.Error(C.rtcGetDeviceError(cDevice(d)))
}

// SetDeviceErrorFunction implements rtcore.Engine.
func (e *Engine) SetDeviceErrorFunction(d rtcore.Device, fn rtcore.ErrorFunc, userPtr unsafe.Pointer) {
	e.mu.Lock()
	st := e.devices[d]
	old := st.handle
	st.handle = cgo.NewHandle(&errorSink{fn: fn, userPtr: userPtr})
	h := st.handle
	e.mu.Unlock()

	C.setErrorFunction(cDevice(d), C.uintptr_t(h))
	if old != 0 {
		old.Delete()
	}
}

func installUserCallbacks(g rtcore.Geometry, h cgo.Handle) {
	C.setUserCallbacks(cGeometry(g), C.uintptr_t(h))
}
