package embree

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/df07/go-embree/pkg/rtcore/soft"
	"github.com/go-gl/mathgl/mgl32"
)

// unsupportedEngine refuses to create devices, like an engine running on a
// CPU without the required instruction set.
type unsupportedEngine struct {
	*soft.Engine
}

func (unsupportedEngine) NewDevice(string) rtcore.Device { return nil }

func (unsupportedEngine) GetDeviceError(rtcore.Device) rtcore.Error {
	return rtcore.ErrorUnsupportedCPU
}

func TestConfig_String(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{}, ""},
		{Config{Threads: 4}, "threads=4"},
		{Config{Threads: 2, Verbose: 1, ISA: "avx2"}, "threads=2,verbose=1,isa=avx2"},
		{Config{Verbose: 3}, "verbose=3"},
	}
	for _, tt := range tests {
		if got := tt.cfg.String(); got != tt.want {
			t.Errorf("Config%+v.String() = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestErrorKindFromCode(t *testing.T) {
	tests := []struct {
		code int32
		want ErrorKind
	}{
		{0, ErrorNone},
		{1, ErrorUnknown},
		{2, ErrorInvalidArgument},
		{3, ErrorInvalidOperation},
		{4, ErrorOutOfMemory},
		{5, ErrorUnsupportedCPU},
		{6, ErrorCancelled},
		{7, ErrorUnknown},
		{-1, ErrorUnknown},
		{0x7fffffff, ErrorUnknown},
	}
	for _, tt := range tests {
		if got := ErrorKindFromCode(tt.code); got != tt.want {
			t.Errorf("ErrorKindFromCode(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestOpen_Failure(t *testing.T) {
	d, err := Open(Config{Engine: unsupportedEngine{soft.New()}})
	if err == nil {
		d.Release()
		t.Fatal("Expected Open to fail")
	}
	var engineErr *EngineError
	if !errors.As(err, &engineErr) || engineErr.Kind != ErrorUnsupportedCPU {
		t.Errorf("Expected unsupported cpu error, got %v", err)
	}
	expectPanic(t, "MustOpen", func() { MustOpen(Config{Engine: unsupportedEngine{soft.New()}}) })
}

func TestDevice_ErrorReporting(t *testing.T) {
	d, errs := openTestDevice(t)
	if d.Err() != nil {
		t.Fatalf("Expected no pending error, got %v", d.Err())
	}

	mesh := NewTriangleMesh(d, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []Triangle{{0, 1, 2}})

	// Only instances take a transform
	mesh.Handle().SetTransform(mgl32.Ident4())
	mesh.Handle().SetTransform3x4(mgl32.Mat3x4{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0})
	mesh.Commit().Release()

	if k := errs.reported(); len(k) != 2 || k[0] != ErrorInvalidOperation {
		t.Fatalf("Expected two invalid operation reports, got %v", k)
	}
	if k := d.LastError(); k != ErrorInvalidOperation {
		t.Errorf("Expected first error to be kept, got %v", k)
	}
	if k := d.LastError(); k != ErrorNone {
		t.Errorf("Expected error to be cleared after reading, got %v", k)
	}
}

func TestDevice_DefaultSinkLogs(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	d, err := Open(Config{Engine: soft.New()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Release()

	mesh := NewTriangleMesh(d, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []Triangle{{0, 1, 2}})
	mesh.Handle().SetTransform(mgl32.Ident4())
	mesh.Commit().Release()

	out := buf.String()
	if !strings.Contains(out, "engine error") || !strings.Contains(out, "kind=\"invalid operation\"") {
		t.Errorf("Expected logged engine error, got %q", out)
	}
	if err := d.Err(); err == nil || !strings.Contains(err.Error(), "invalid operation") {
		t.Errorf("Expected pending invalid operation, got %v", err)
	}
}

func TestDevice_RefCounting(t *testing.T) {
	d, _ := openTestDevice(t)
	refs := func() int32 { return soft.DeviceRefCount(d.ptr) }

	if refs() != 1 {
		t.Fatalf("Expected 1 reference after open, got %d", refs())
	}
	clone := d.Clone()
	if refs() != 2 {
		t.Errorf("Expected 2 references after clone, got %d", refs())
	}
	clone.Release()
	expectPanic(t, "double release", clone.Release)
	expectPanic(t, "use after release", func() { clone.LastError() })

	b := NewSceneBuilder(d)
	g := NewSphereGeometry(d, []Sphere{{Radius: 1}})
	if refs() != 3 {
		t.Errorf("Expected scene and geometry to retain the device, got %d", refs())
	}

	geom := g.Commit()
	h := geom.Handle().Clone()
	b.Attach(geom)
	if n := soft.GeometryRefCount(h.raw()); n != 3 {
		t.Errorf("Expected geometry held by mesh, clone and scene, got %d", n)
	}

	sc := b.Build()
	sc.Release()
	if n := soft.GeometryRefCount(h.raw()); n != 1 {
		t.Errorf("Expected only the clone to remain, got %d", n)
	}
	h.Release()
	if refs() != 1 {
		t.Errorf("Expected 1 reference after releasing everything, got %d", refs())
	}
	expectPanic(t, "handle double release", h.Release)
}

func TestHandle_RejectedCommit(t *testing.T) {
	d, errs := openTestDevice(t)
	clone := d.Clone()
	defer clone.Release()

	// A triangle geometry without index or vertex buffers fails validation.
	h := newHandle(clone, rtcore.GeometryTypeTriangle)
	defer h.Release()
	expectPanic(t, "commit without buffers", h.commit)

	if h.Committed() {
		t.Error("Expected rejected geometry to stay uncommitted")
	}
	if k := errs.reported(); len(k) != 1 || k[0] != ErrorInvalidOperation {
		t.Errorf("Expected one invalid operation report, got %v", k)
	}
	if k := d.LastError(); k != ErrorInvalidOperation {
		t.Errorf("Expected the commit error to stay pending, got %v", k)
	}

	// Errors reported before the commit do not fail it.
	mesh := NewTriangleMesh(d, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []Triangle{{0, 1, 2}})
	mesh.Handle().SetTransform(mgl32.Ident4())
	g := mesh.Commit()
	defer g.Release()
	if !mesh.Handle().Committed() {
		t.Error("Expected mesh to be committed")
	}
}
