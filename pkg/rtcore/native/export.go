//go:build embree

package native

// #include <stdint.h>
// #include <embree3/rtcore.h>
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
)

func callbacksOf(userPtr unsafe.Pointer) *callbacks {
	return cgo.Handle(uintptr(userPtr)).Value().(*callbacks)
}

//export goErrorFunction
func goErrorFunction(handle C.uintptr_t, code C.enum_RTCError, str *C.char) {
	sink := cgo.Handle(handle).Value().(*errorSink)
	sink.fn(sink.userPtr, rtcore.Error(code), C.GoString(str))
}

//export goBoundsFunction
func goBoundsFunction(args *C.struct_RTCBoundsFunctionArguments) {
	cb := callbacksOf(args.geometryUserPtr)
	user := cb.boundsUser
	if user == nil {
		user = cb.userPtr
	}
	cb.bounds(&rtcore.BoundsFunctionArguments{
		GeometryUserPtr: user,
		PrimID:          uint32(args.primID),
		TimeStep:        uint32(args.timeStep),
		BoundsO:         (*rtcore.Bounds)(unsafe.Pointer(args.bounds_o)),
	})
}

//export goIntersectFunction
func goIntersectFunction(args *C.struct_RTCIntersectFunctionNArguments) {
	cb := callbacksOf(args.geometryUserPtr)
	cb.intersect(&rtcore.IntersectFunctionNArguments{
		Valid:           (*int32)(unsafe.Pointer(args.valid)),
		GeometryUserPtr: cb.userPtr,
		PrimID:          uint32(args.primID),
		Context:         (*rtcore.IntersectContext)(unsafe.Pointer(args.context)),
		RayHit:          (*rtcore.RayHit)(unsafe.Pointer(args.rayhit)),
		N:               uint32(args.N),
		GeomID:          uint32(args.geomID),
	})
}

//export goOccludedFunction
func goOccludedFunction(args *C.struct_RTCOccludedFunctionNArguments) {
	cb := callbacksOf(args.geometryUserPtr)
	if cb.occluded == nil {
		return
	}
	cb.occluded(&rtcore.OccludedFunctionNArguments{
		Valid:           (*int32)(unsafe.Pointer(args.valid)),
		GeometryUserPtr: cb.userPtr,
		PrimID:          uint32(args.primID),
		Context:         (*rtcore.IntersectContext)(unsafe.Pointer(args.context)),
		Ray:             (*rtcore.Ray)(unsafe.Pointer(args.ray)),
		N:               uint32(args.N),
		GeomID:          uint32(args.geomID),
	})
}
