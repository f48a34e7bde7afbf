package embree

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/go-gl/mathgl/mgl32"
)

// geometryObject is the state shared by every Handle to one engine geometry.
type geometryObject struct {
	engine    rtcore.Engine
	dev       rtcore.Device
	state     *deviceState
	ptr       rtcore.Geometry
	typ       rtcore.GeometryType
	handles   atomic.Int32
	committed atomic.Bool

	pinMu  sync.Mutex
	pinner runtime.Pinner
}

// Handle is a reference-counted reference to an engine geometry. Cloning
// increments the engine's count and Release decrements it; the geometry is
// destroyed when the last reference, including those held by scenes, is gone.
//
// Memory shared with the engine through the geometry's buffers stays pinned
// until every Handle to it is released.
type Handle struct {
	obj      *geometryObject
	released atomic.Bool
}

func newHandle(d *Device, typ rtcore.GeometryType) *Handle {
	d.checkLive()
	ptr := d.engine.NewGeometry(d.ptr, typ)
	if ptr == nil {
		panic(fmt.Sprintf("embree: engine could not create geometry of type %d: %s", typ, d.LastError()))
	}
	obj := &geometryObject{engine: d.engine, dev: d.ptr, state: d.state, ptr: ptr, typ: typ}
	obj.handles.Store(1)
	return &Handle{obj: obj}
}

// Clone returns a new reference to the same geometry.
func (h *Handle) Clone() *Handle {
	h.checkLive()
	h.obj.engine.RetainGeometry(h.obj.ptr)
	h.obj.handles.Add(1)
	return &Handle{obj: h.obj}
}

// Release drops this reference. Releasing a handle twice panics.
func (h *Handle) Release() {
	if !h.released.CompareAndSwap(false, true) {
		panic("embree: geometry handle released twice")
	}
	h.obj.engine.ReleaseGeometry(h.obj.ptr)
	if h.obj.handles.Add(-1) == 0 {
		h.obj.pinMu.Lock()
		h.obj.pinner.Unpin()
		h.obj.pinMu.Unlock()
	}
}

// Committed reports whether the engine accepted the geometry's commit. A
// committed geometry can no longer be modified.
func (h *Handle) Committed() bool { return h.obj.committed.Load() }

// SetBuildQuality sets the build quality used for the geometry's part of the
// scene's acceleration structure.
func (h *Handle) SetBuildQuality(q BuildQuality) {
	h.checkMutable()
	h.obj.engine.SetGeometryBuildQuality(h.obj.ptr, rtcore.BuildQuality(q))
}

// SetTransform sets the geometry's transform from a column-major 4x4 matrix.
// Only instance geometries accept a transform; other geometries report an
// invalid operation to the device.
func (h *Handle) SetTransform(m mgl32.Mat4) {
	h.checkMutable()
	h.obj.engine.SetGeometryTransform(h.obj.ptr, 0, rtcore.FormatFloat4x4ColumnMajor, unsafe.Pointer(&m))
}

// SetTransform3x4 is SetTransform for an affine column-major 3x4 matrix.
func (h *Handle) SetTransform3x4(m mgl32.Mat3x4) {
	h.checkMutable()
	h.obj.engine.SetGeometryTransform(h.obj.ptr, 0, rtcore.FormatFloat3x4ColumnMajor, unsafe.Pointer(&m))
}

func (h *Handle) raw() rtcore.Geometry {
	h.checkLive()
	return h.obj.ptr
}

func (h *Handle) engine() rtcore.Engine { return h.obj.engine }

// commit commits the geometry and panics if the engine reports an error
// while doing so. The error stays pending for Device.LastError.
func (h *Handle) commit() {
	h.checkMutable()
	before := h.obj.state.reports.Load()
	h.obj.engine.CommitGeometry(h.obj.ptr)
	if h.obj.state.reports.Load() != before {
		panic(fmt.Sprintf("embree: engine rejected geometry commit: %s", ErrorKind(h.obj.state.lastKind.Load())))
	}
	h.obj.committed.Store(true)
}

// pin keeps p from moving while the engine may read it. Engines that only
// read memory through Go pointers do not need it.
func (h *Handle) pin(p unsafe.Pointer) {
	if p == nil || !rtcore.NeedsPinning(h.obj.engine) {
		return
	}
	h.obj.pinMu.Lock()
	h.obj.pinner.Pin(p)
	h.obj.pinMu.Unlock()
}

func (h *Handle) checkLive() {
	if h.released.Load() {
		panic("embree: use of released geometry handle")
	}
}

func (h *Handle) checkMutable() {
	h.checkLive()
	if h.obj.committed.Load() {
		panic("embree: geometry modified after commit")
	}
}
