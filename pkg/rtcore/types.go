package rtcore

import "unsafe"

// Ray mirrors RTCRay. The engine expects it 16-byte aligned.
type Ray struct {
	OrgX, OrgY, OrgZ float32
	TNear            float32
	DirX, DirY, DirZ float32
	Time             float32
	TFar             float32
	Mask             uint32
	ID               uint32
	Flags            uint32
}

// Hit mirrors RTCHit with a single instance level.
type Hit struct {
	NgX, NgY, NgZ float32
	U, V          float32
	PrimID        uint32
	GeomID        uint32
	InstID        [1]uint32
}

// RayHit mirrors RTCRayHit. The engine expects it 16-byte aligned.
type RayHit struct {
	Ray Ray
	Hit Hit
}

// Bounds mirrors RTCBounds.
type Bounds struct {
	LowerX, LowerY, LowerZ float32
	Align0                 float32
	UpperX, UpperY, UpperZ float32
	Align1                 float32
}

// IntersectContext mirrors RTCIntersectContext. Filter holds a C function
// pointer and is always zero in this module.
type IntersectContext struct {
	Flags  int32
	Filter uintptr
	InstID [1]uint32
}

// NewIntersectContext returns a context with no flags, no filter function and
// an invalid instance id, equivalent to rtcInitIntersectContext.
func NewIntersectContext() IntersectContext {
	return IntersectContext{InstID: [1]uint32{InvalidGeometryID}}
}

// BoundsFunctionArguments mirrors RTCBoundsFunctionArguments.
type BoundsFunctionArguments struct {
	GeometryUserPtr unsafe.Pointer
	PrimID          uint32
	TimeStep        uint32
	BoundsO         *Bounds
}

// IntersectFunctionNArguments mirrors RTCIntersectFunctionNArguments.
// For N == 1 the ray/hit packet has the RayHit layout.
type IntersectFunctionNArguments struct {
	Valid           *int32
	GeometryUserPtr unsafe.Pointer
	PrimID          uint32
	Context         *IntersectContext
	RayHit          *RayHit
	N               uint32
	GeomID          uint32
}

// OccludedFunctionNArguments mirrors RTCOccludedFunctionNArguments.
type OccludedFunctionNArguments struct {
	Valid           *int32
	GeometryUserPtr unsafe.Pointer
	PrimID          uint32
	Context         *IntersectContext
	Ray             *Ray
	N               uint32
	GeomID          uint32
}

// Callback signatures for user geometries.
type (
	BoundsFunc    func(args *BoundsFunctionArguments)
	IntersectFunc func(args *IntersectFunctionNArguments)
	OccludedFunc  func(args *OccludedFunctionNArguments)
	ErrorFunc     func(userPtr unsafe.Pointer, code Error, msg string)
)
