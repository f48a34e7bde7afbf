package embree

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func spare[T any](s []T) int { return cap(s) - len(s) }

func TestReserveSlack(t *testing.T) {
	t.Run("4-byte elements reserve three", func(t *testing.T) {
		data := make([]float32, 5)
		reserveSlack(&data, BufferVertex)
		if spare(data) < 3 {
			t.Errorf("Expected at least 3 spare elements, got %d", spare(data))
		}
	})

	t.Run("12-byte elements reserve one", func(t *testing.T) {
		data := make([]mgl32.Vec3, 3)
		reserveSlack(&data, BufferVertex)
		if spare(data) < 1 {
			t.Errorf("Expected at least 1 spare element, got %d", spare(data))
		}
	})

	t.Run("28-byte elements reserve one", func(t *testing.T) {
		data := make([]Disc, 2)
		reserveSlack(&data, BufferVertexAttribute)
		if spare(data) < 1 {
			t.Errorf("Expected at least 1 spare element, got %d", spare(data))
		}
	})

	t.Run("16-byte elements reserve nothing", func(t *testing.T) {
		data := make([]Sphere, 4)
		reserveSlack(&data, BufferVertex)
		if len(data) != 4 || cap(data) != 4 {
			t.Errorf("Expected untouched slice, got len=%d cap=%d", len(data), cap(data))
		}
	})

	t.Run("64-byte elements reserve nothing", func(t *testing.T) {
		data := make([]mgl32.Mat4, 1)
		reserveSlack(&data, BufferVertex)
		if cap(data) != 1 {
			t.Errorf("Expected untouched slice, got cap=%d", cap(data))
		}
	})

	t.Run("index buffers reserve nothing", func(t *testing.T) {
		data := make([]Triangle, 2)
		reserveSlack(&data, BufferIndex)
		if cap(data) != 2 {
			t.Errorf("Expected untouched slice, got cap=%d", cap(data))
		}
	})

	t.Run("existing spare capacity is kept", func(t *testing.T) {
		data := make([]mgl32.Vec3, 2, 10)
		first := &data[:1][0]
		reserveSlack(&data, BufferVertex)
		if &data[:1][0] != first {
			t.Error("Expected no reallocation when capacity suffices")
		}
	})

	t.Run("odd element size panics", func(t *testing.T) {
		data := make([][3]uint16, 2)
		expectPanic(t, "6-byte element", func() { reserveSlack(&data, BufferVertex) })
	})
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		got  Format
		want Format
	}{
		{"uint32", FormatOf[uint32](), FormatUInt},
		{"[3]uint32", FormatOf[[3]uint32](), FormatUInt3},
		{"Triangle", FormatOf[Triangle](), FormatUInt3},
		{"Quad", FormatOf[Quad](), FormatUInt4},
		{"float32", FormatOf[float32](), FormatFloat},
		{"Vec2", FormatOf[mgl32.Vec2](), FormatFloat2},
		{"Vec3", FormatOf[mgl32.Vec3](), FormatFloat3},
		{"[3]float32", FormatOf[[3]float32](), FormatFloat3},
		{"Vec4", FormatOf[mgl32.Vec4](), FormatFloat4},
		{"Sphere", FormatOf[Sphere](), FormatFloat4},
		{"Mat3x4", FormatOf[mgl32.Mat3x4](), FormatFloat3x4ColumnMajor},
		{"Mat4", FormatOf[mgl32.Mat4](), FormatFloat4x4ColumnMajor},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("FormatOf[%s] = %#x, want %#x", tt.name, int32(tt.got), int32(tt.want))
		}
	}

	expectPanic(t, "string", func() { FormatOf[string]() })
}

func TestBuffer_SharedNotCopied(t *testing.T) {
	d, _ := openTestDevice(t)
	vertices, triangles := cubeMesh()
	mesh := NewTriangleMesh(d, vertices, triangles)
	geom := mesh.Commit()
	defer geom.Release()

	if &mesh.Indices()[0] != &triangles[0] {
		t.Error("Expected the index buffer to share the caller's array")
	}
	if spare(mesh.Vertices()) < 1 {
		t.Errorf("Expected vertex slack after commit, got %d spare", spare(mesh.Vertices()))
	}
	if !geom.Handle().Committed() {
		t.Error("Expected committed handle")
	}
}
