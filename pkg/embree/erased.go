package embree

import (
	"reflect"
	"unsafe"
)

// ErasedUserGeometry is a committed user geometry with its primitive type
// erased, so that geometries of different primitive types can share a scene.
// UserPrims recovers the typed primitives.
type ErasedUserGeometry struct {
	h     *Handle
	elem  reflect.Type
	data  unsafe.Pointer
	len   int
	cap   int
	setID func(data unsafe.Pointer, n int, id GeomID)
	geoID func(data unsafe.Pointer, i int) GeomID
}

func eraseUserGeometry[T UserPrimitive](u *UserGeometry[T]) *ErasedUserGeometry {
	return &ErasedUserGeometry{
		h:     u.h,
		elem:  reflect.TypeFor[T](),
		data:  unsafe.Pointer(unsafe.SliceData(u.prims)),
		len:   len(u.prims),
		cap:   cap(u.prims),
		setID: stampUserGeomID[T],
		geoID: userGeomID[T],
	}
}

func userPrimSlice[T UserPrimitive](data unsafe.Pointer, n, c int) []userPrim[T] {
	if data == nil {
		return nil
	}
	return unsafe.Slice((*userPrim[T])(data), c)[:n]
}

func stampUserGeomID[T UserPrimitive](data unsafe.Pointer, n int, id GeomID) {
	for i := range n {
		userPrimAt[T](data, uint32(i)).id = id
	}
}

func userGeomID[T UserPrimitive](data unsafe.Pointer, i int) GeomID {
	return userPrimAt[T](data, uint32(i)).id
}

// ElemType returns the primitive type.
func (e *ErasedUserGeometry) ElemType() reflect.Type { return e.elem }

// Len returns the number of primitives.
func (e *ErasedUserGeometry) Len() int { return e.len }

// GeomID returns the id stamped on the primitives, or InvalidGeomID before
// the geometry is attached.
func (e *ErasedUserGeometry) GeomID() GeomID {
	if e.len == 0 || e.data == nil {
		return InvalidGeomID
	}
	return e.geoID(e.data, 0)
}

// UserPrims returns a copy of e's primitives if they have type T.
func UserPrims[T UserPrimitive](e *ErasedUserGeometry) ([]T, bool) {
	if e.elem != reflect.TypeFor[T]() {
		return nil, false
	}
	prims := userPrimSlice[T](e.data, e.len, e.cap)
	out := make([]T, len(prims))
	for i, p := range prims {
		out[i] = p.prim
	}
	return out, true
}

func (e *ErasedUserGeometry) handle() *Handle { return e.h }

func (e *ErasedUserGeometry) setGeomID(id GeomID) {
	if e.data != nil {
		e.setID(e.data, e.len, id)
	}
}

func (e *ErasedUserGeometry) release() {
	e.h.Release()
	e.data, e.len, e.cap = nil, 0, 0
}
