// Package rtcore describes the C ABI of the ray tracing engine: opaque handle
// types, enumerations and fixed-layout structs. Every struct in this package
// matches its C counterpart byte for byte so pointers can be handed across
// the boundary without copying.
package rtcore

import "unsafe"

// Opaque engine object handles. The engine owns the memory behind them.
type (
	Device   unsafe.Pointer
	Geometry unsafe.Pointer
	Scene    unsafe.Pointer
)

// InvalidGeometryID is RTC_INVALID_GEOMETRY_ID.
const InvalidGeometryID uint32 = ^uint32(0)

// Error mirrors RTCError.
type Error int32

const (
	ErrorNone             Error = 0
	ErrorUnknown          Error = 1
	ErrorInvalidArgument  Error = 2
	ErrorInvalidOperation Error = 3
	ErrorOutOfMemory      Error = 4
	ErrorUnsupportedCPU   Error = 5
	ErrorCancelled        Error = 6
)

// BufferType mirrors RTCBufferType.
type BufferType int32

const (
	BufferTypeIndex           BufferType = 0
	BufferTypeVertex          BufferType = 1
	BufferTypeVertexAttribute BufferType = 2
	BufferTypeNormal          BufferType = 3
)

// Format mirrors RTCFormat.
type Format int32

const (
	FormatUndefined Format = 0

	FormatUInt  Format = 0x5001
	FormatUInt2 Format = 0x5002
	FormatUInt3 Format = 0x5003
	FormatUInt4 Format = 0x5004

	FormatFloat   Format = 0x9001
	FormatFloat2  Format = 0x9002
	FormatFloat3  Format = 0x9003
	FormatFloat4  Format = 0x9004
	FormatFloat5  Format = 0x9005
	FormatFloat6  Format = 0x9006
	FormatFloat7  Format = 0x9007
	FormatFloat8  Format = 0x9008
	FormatFloat9  Format = 0x9009
	FormatFloat10 Format = 0x900A
	FormatFloat11 Format = 0x900B
	FormatFloat12 Format = 0x900C
	FormatFloat13 Format = 0x900D
	FormatFloat14 Format = 0x900E
	FormatFloat15 Format = 0x900F
	FormatFloat16 Format = 0x9010

	FormatFloat3x4RowMajor    Format = 0x9134
	FormatFloat3x4ColumnMajor Format = 0x9234
	FormatFloat4x4ColumnMajor Format = 0x9244
)

// ByteSize returns the size in bytes of one element of the format, or 0 for
// formats this package does not know.
func (f Format) ByteSize() uintptr {
	switch {
	case f >= FormatUInt && f <= FormatUInt4:
		return uintptr(f-FormatUInt+1) * 4
	case f >= FormatFloat && f <= FormatFloat16:
		return uintptr(f-FormatFloat+1) * 4
	case f == FormatFloat3x4RowMajor, f == FormatFloat3x4ColumnMajor:
		return 48
	case f == FormatFloat4x4ColumnMajor:
		return 64
	}
	return 0
}

// GeometryType mirrors RTCGeometryType.
type GeometryType int32

const (
	GeometryTypeTriangle          GeometryType = 0
	GeometryTypeQuad              GeometryType = 1
	GeometryTypeSpherePoint       GeometryType = 50
	GeometryTypeDiscPoint         GeometryType = 51
	GeometryTypeOrientedDiscPoint GeometryType = 52
	GeometryTypeUser              GeometryType = 120
	GeometryTypeInstance          GeometryType = 121
)

// BuildQuality mirrors RTCBuildQuality.
type BuildQuality int32

const (
	BuildQualityLow    BuildQuality = 0
	BuildQualityMedium BuildQuality = 1
	BuildQualityHigh   BuildQuality = 2
)

// SceneFlags mirrors RTCSceneFlags.
type SceneFlags int32

const (
	SceneFlagNone                  SceneFlags = 0
	SceneFlagDynamic               SceneFlags = 1 << 0
	SceneFlagCompact               SceneFlags = 1 << 1
	SceneFlagRobust                SceneFlags = 1 << 2
	SceneFlagContextFilterFunction SceneFlags = 1 << 3
)
