// Package soft is a pure Go implementation of the engine ABI. It honours the
// same contracts as the native library (reference counted handles, shared
// buffers read in place, user geometry callbacks, asynchronous error
// reporting) so the scene-graph layer can run and be tested without it.
package soft

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/df07/go-embree/pkg/rtcore"
)

// Compile-time interface check.
var _ rtcore.Engine = (*Engine)(nil)

// Engine implements rtcore.Engine in pure Go.
type Engine struct {
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for verbose build diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates a software engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements rtcore.Engine.
func (e *Engine) Name() string { return "soft" }

// cpuSupported mirrors the native library's minimum ISA requirement.
var cpuSupported = func() bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return cpu.X86.HasSSE2
	}
	return true
}

// nullDeviceError holds errors raised while no device exists, readable via
// GetDeviceError(nil).
var nullDeviceError atomic.Int32

type device struct {
	engine *Engine
	refs   atomic.Int32

	threads int
	verbose int

	mu      sync.Mutex
	lastErr rtcore.Error
	errFn   rtcore.ErrorFunc
	errUser unsafe.Pointer
}

func toDevice(d rtcore.Device) *device { return (*device)(d) }

// report records the first unread error and forwards every error to the
// registered error function.
func (d *device) report(code rtcore.Error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.mu.Lock()
	if d.lastErr == rtcore.ErrorNone {
		d.lastErr = code
	}
	fn, user := d.errFn, d.errUser
	d.mu.Unlock()
	if fn != nil {
		fn(user, code, msg)
	}
}

func (d *device) debug(msg string, args ...any) {
	if d.verbose > 0 && d.engine.logger != nil {
		d.engine.logger.Debug(msg, args...)
	}
}

// parseConfig reads "key=value" pairs separated by commas. Unknown keys are
// ignored like the native library does.
func parseConfig(config string, d *device) error {
	for _, field := range strings.Split(config, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return fmt.Errorf("malformed config entry %q", field)
		}
		switch strings.TrimSpace(key) {
		case "threads":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return fmt.Errorf("invalid threads value %q", value)
			}
			d.threads = n
		case "verbose":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return fmt.Errorf("invalid verbose value %q", value)
			}
			d.verbose = n
		}
	}
	return nil
}

// NewDevice implements rtcore.Engine. It returns nil and records the error
// on the null device when the device cannot be created.
func (e *Engine) NewDevice(config string) rtcore.Device {
	if !cpuSupported() {
		nullDeviceError.Store(int32(rtcore.ErrorUnsupportedCPU))
		return nil
	}
	d := &device{engine: e}
	if err := parseConfig(config, d); err != nil {
		nullDeviceError.Store(int32(rtcore.ErrorInvalidArgument))
		return nil
	}
	if d.threads == 0 {
		d.threads = runtime.NumCPU()
	}
	d.refs.Store(1)
	d.debug("device created", "threads", d.threads)
	return rtcore.Device(unsafe.Pointer(d))
}

// RetainDevice implements rtcore.Engine.
func (e *Engine) RetainDevice(d rtcore.Device) {
	toDevice(d).refs.Add(1)
}

// ReleaseDevice implements rtcore.Engine.
func (e *Engine) ReleaseDevice(d rtcore.Device) {
	dev := toDevice(d)
	if n := dev.refs.Add(-1); n < 0 {
		dev.report(rtcore.ErrorInvalidOperation, "device released more often than retained")
	}
}

// GetDeviceError implements rtcore.Engine. Reading the error clears it.
func (e *Engine) GetDeviceError(d rtcore.Device) rtcore.Error {
	if d == nil {
		return rtcore.Error(nullDeviceError.Swap(int32(rtcore.ErrorNone)))
	}
	dev := toDevice(d)
	dev.mu.Lock()
	defer dev.mu.Unlock()
	code := dev.lastErr
	dev.lastErr = rtcore.ErrorNone
	return code
}

// SetDeviceErrorFunction implements rtcore.Engine.
func (e *Engine) SetDeviceErrorFunction(d rtcore.Device, fn rtcore.ErrorFunc, userPtr unsafe.Pointer) {
	dev := toDevice(d)
	dev.mu.Lock()
	dev.errFn, dev.errUser = fn, userPtr
	dev.mu.Unlock()
}

// DeviceRefCount reports the engine-side reference count of a device.
func DeviceRefCount(d rtcore.Device) int32 { return toDevice(d).refs.Load() }
