package embree

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
)

// Device is a reference-counted handle to an engine device. Every geometry
// and scene is created from a Device and keeps it alive.
//
// A Device may be cloned and released from any goroutine. Each Device value
// returned by Open or Clone must be released exactly once.
type Device struct {
	engine   rtcore.Engine
	ptr      rtcore.Device
	state    *deviceState
	released atomic.Bool
}

// deviceState is shared by every clone of a device.
type deviceState struct {
	reports  atomic.Uint64 // errors delivered to the sink
	lastKind atomic.Int32
}

// Open creates a device configured by cfg. When the engine cannot create a
// device the returned error is an *EngineError carrying the reason.
func Open(cfg Config) (*Device, error) {
	engine := cfg.Engine
	if engine == nil {
		engine = defaultEngine()
	}
	ptr := engine.NewDevice(cfg.String())
	if ptr == nil {
		kind := ErrorKindFromCode(int32(engine.GetDeviceError(nil)))
		if kind == ErrorNone {
			kind = ErrorUnknown
		}
		return nil, fmt.Errorf("open %s device: %w", engine.Name(), &EngineError{Kind: kind})
	}

	sink := cfg.ErrorSink
	if sink == nil {
		sink = logErrorSink
	}
	state := &deviceState{}
	engine.SetDeviceErrorFunction(ptr, func(_ unsafe.Pointer, code rtcore.Error, msg string) {
		kind := ErrorKindFromCode(int32(code))
		state.lastKind.Store(int32(kind))
		state.reports.Add(1)
		sink(kind, msg)
	}, nil)

	Logger().Debug("device opened", "engine", engine.Name(), "config", cfg.String())
	return &Device{engine: engine, ptr: ptr, state: state}, nil
}

// MustOpen is like Open but panics if the device cannot be created.
func MustOpen(cfg Config) *Device {
	d, err := Open(cfg)
	if err != nil {
		panic("embree: " + err.Error())
	}
	return d
}

// Clone returns a new handle to the same device.
func (d *Device) Clone() *Device {
	d.checkLive()
	d.engine.RetainDevice(d.ptr)
	return &Device{engine: d.engine, ptr: d.ptr, state: d.state}
}

// Release drops this handle's reference. The device is destroyed once every
// handle, geometry and scene referring to it is released. Releasing a handle
// twice panics.
func (d *Device) Release() {
	if !d.released.CompareAndSwap(false, true) {
		panic("embree: device released twice")
	}
	d.engine.ReleaseDevice(d.ptr)
}

// LastError returns and clears the first error recorded since the last call.
func (d *Device) LastError() ErrorKind {
	d.checkLive()
	return ErrorKindFromCode(int32(d.engine.GetDeviceError(d.ptr)))
}

// Err is LastError wrapped as an error; it returns nil if no error is pending.
func (d *Device) Err() error {
	if k := d.LastError(); k != ErrorNone {
		return &EngineError{Kind: k}
	}
	return nil
}

// EngineName names the engine backing the device.
func (d *Device) EngineName() string { return d.engine.Name() }

func (d *Device) checkLive() {
	if d.released.Load() {
		panic("embree: use of released device")
	}
}
