package embree

import (
	"fmt"

	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/go-gl/mathgl/mgl32"
)

// Format is the element format of a shared buffer.
type Format = rtcore.Format

// BufferType is the role a shared buffer plays in a geometry.
type BufferType = rtcore.BufferType

const (
	BufferIndex           = rtcore.BufferTypeIndex
	BufferVertex          = rtcore.BufferTypeVertex
	BufferVertexAttribute = rtcore.BufferTypeVertexAttribute
	BufferNormal          = rtcore.BufferTypeNormal
)

const (
	FormatUInt  = rtcore.FormatUInt
	FormatUInt2 = rtcore.FormatUInt2
	FormatUInt3 = rtcore.FormatUInt3
	FormatUInt4 = rtcore.FormatUInt4

	FormatFloat  = rtcore.FormatFloat
	FormatFloat2 = rtcore.FormatFloat2
	FormatFloat3 = rtcore.FormatFloat3
	FormatFloat4 = rtcore.FormatFloat4

	FormatFloat3x4RowMajor    = rtcore.FormatFloat3x4RowMajor
	FormatFloat3x4ColumnMajor = rtcore.FormatFloat3x4ColumnMajor
	FormatFloat4x4ColumnMajor = rtcore.FormatFloat4x4ColumnMajor
)

// Formatted is implemented by element types that describe their own buffer
// format.
type Formatted interface {
	BufferFormat() Format
}

// FormatOf returns the buffer format of element type T. It panics for types
// that have no engine format.
func FormatOf[T any]() Format {
	var zero T
	switch v := any(zero).(type) {
	case Formatted:
		return v.BufferFormat()
	case uint32:
		return FormatUInt
	case [2]uint32:
		return FormatUInt2
	case [3]uint32:
		return FormatUInt3
	case [4]uint32:
		return FormatUInt4
	case float32:
		return FormatFloat
	case mgl32.Vec2, [2]float32:
		return FormatFloat2
	case mgl32.Vec3, [3]float32:
		return FormatFloat3
	case mgl32.Vec4, [4]float32:
		return FormatFloat4
	case mgl32.Mat3x4:
		return FormatFloat3x4ColumnMajor
	case mgl32.Mat4:
		return FormatFloat4x4ColumnMajor
	}
	panic(fmt.Sprintf("embree: no buffer format for %T", zero))
}
