package embree

import (
	"fmt"
	"slices"
	"unsafe"
)

// Buffer is typed element data shared with the engine without copying. The
// engine reads the buffer's memory in place for the lifetime of the geometry
// it is bound to, so the data must not be modified once the geometry is
// committed.
//
// NewBuffer takes ownership of the slice: binding may grow its capacity to
// leave the padding the engine reads past the last element.
type Buffer[T any] struct {
	data []T
}

// NewBuffer wraps data as a buffer.
func NewBuffer[T any](data []T) *Buffer[T] {
	return &Buffer[T]{data: data}
}

// Data returns the buffer's elements.
func (b *Buffer[T]) Data() []T { return b.data }

// Len returns the number of elements.
func (b *Buffer[T]) Len() int { return len(b.data) }

func (b *Buffer[T]) bind(h *Handle, typ BufferType, slot uint32) {
	bindShared(h, &b.data, typ, slot, FormatOf[T](), 0)
}

// AttributeBuffer is a buffer that can be bound as a vertex attribute. Every
// *Buffer[T] whose element type has a buffer format implements it.
type AttributeBuffer interface {
	Len() int
	bind(h *Handle, typ BufferType, slot uint32)
}

// bindShared shares *data with the geometry as elements of the given format
// starting byteOffset bytes into each element. The element size is the
// stride.
func bindShared[T any](h *Handle, data *[]T, typ BufferType, slot uint32, format Format, byteOffset uintptr) {
	h.checkMutable()
	reserveSlack(data, typ)

	var zero T
	stride := unsafe.Sizeof(zero)
	ptr := unsafe.Pointer(unsafe.SliceData(*data))
	h.pin(ptr)
	h.engine().SetSharedGeometryBuffer(h.raw(), typ, slot, format, ptr, byteOffset, stride, uintptr(len(*data)))
}

// reserveSlack makes sure vertex data has spare capacity past its length. The
// engine loads vertices 16 bytes at a time, so the read of the last element
// may run past its end: a 4-byte element needs three elements of slack, an
// element whose size is a multiple of 16 needs none, anything else one.
func reserveSlack[T any](data *[]T, typ BufferType) {
	var zero T
	size := unsafe.Sizeof(zero)
	if size%4 != 0 {
		panic(fmt.Sprintf("embree: buffer element %T is %d bytes, not a multiple of 4", zero, size))
	}
	if typ != BufferVertex && typ != BufferVertexAttribute {
		return
	}
	switch {
	case size == 4:
		*data = slices.Grow(*data, 3)
	case size%16 == 0:
	default:
		*data = slices.Grow(*data, 1)
	}
}
