package rtcore

import "unsafe"

// Alignment required by the engine for RayHit, Ray and Bounds.
const Alignment = 16

// alignedNew carves a T out of an over-allocated byte block so that it sits
// on a 16-byte boundary; Go only guarantees the alignment of T's largest
// field. T must not contain pointers, the backing block is not scanned.
func alignedNew[T any]() *T {
	var zero T
	size := unsafe.Sizeof(zero)
	buf := make([]byte, size+Alignment-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	off := (Alignment - base%Alignment) % Alignment
	return (*T)(unsafe.Pointer(&buf[off]))
}

// NewRayHit allocates a zeroed, 16-byte aligned RayHit.
func NewRayHit() *RayHit { return alignedNew[RayHit]() }

// NewRay allocates a zeroed, 16-byte aligned Ray.
func NewRay() *Ray { return alignedNew[Ray]() }

// NewBounds allocates a zeroed, 16-byte aligned Bounds.
func NewBounds() *Bounds { return alignedNew[Bounds]() }

// IsAligned reports whether p sits on a 16-byte boundary.
func IsAligned(p unsafe.Pointer) bool {
	return uintptr(p)%Alignment == 0
}
