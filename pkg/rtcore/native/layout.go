//go:build embree

package native

// #include <embree3/rtcore.h>
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
)

// Record sizes must match the library's exactly; a mismatch fails to compile.
var (
	_ [unsafe.Sizeof(rtcore.Ray{}) - unsafe.Sizeof(C.struct_RTCRay{})]byte
	_ [unsafe.Sizeof(C.struct_RTCRay{}) - unsafe.Sizeof(rtcore.Ray{})]byte
	_ [unsafe.Sizeof(rtcore.Hit{}) - unsafe.Sizeof(C.struct_RTCHit{})]byte
	_ [unsafe.Sizeof(C.struct_RTCHit{}) - unsafe.Sizeof(rtcore.Hit{})]byte
	_ [unsafe.Sizeof(rtcore.RayHit{}) - unsafe.Sizeof(C.struct_RTCRayHit{})]byte
	_ [unsafe.Sizeof(C.struct_RTCRayHit{}) - unsafe.Sizeof(rtcore.RayHit{})]byte
	_ [unsafe.Sizeof(rtcore.Bounds{}) - unsafe.Sizeof(C.struct_RTCBounds{})]byte
	_ [unsafe.Sizeof(C.struct_RTCBounds{}) - unsafe.Sizeof(rtcore.Bounds{})]byte
	_ [unsafe.Sizeof(rtcore.IntersectContext{}) - unsafe.Sizeof(C.struct_RTCIntersectContext{})]byte
	_ [unsafe.Sizeof(C.struct_RTCIntersectContext{}) - unsafe.Sizeof(rtcore.IntersectContext{})]byte
)

// layoutMismatches lists record fields whose offsets differ from the
// library's.
func layoutMismatches() []string {
	var (
		r  rtcore.Ray
		cr C.struct_RTCRay
		h  rtcore.Hit
		ch C.struct_RTCHit
		b  rtcore.Bounds
		cb C.struct_RTCBounds
	)
	fields := []struct {
		name      string
		got, want uintptr
	}{
		{"Ray.OrgX", unsafe.Offsetof(r.OrgX), unsafe.Offsetof(cr.org_x)},
		{"Ray.TNear", unsafe.Offsetof(r.TNear), unsafe.Offsetof(cr.tnear)},
		{"Ray.DirX", unsafe.Offsetof(r.DirX), unsafe.Offsetof(cr.dir_x)},
		{"Ray.Time", unsafe.Offsetof(r.Time), unsafe.Offsetof(cr.time)},
		{"Ray.TFar", unsafe.Offsetof(r.TFar), unsafe.Offsetof(cr.tfar)},
		{"Ray.Mask", unsafe.Offsetof(r.Mask), unsafe.Offsetof(cr.mask)},
		{"Ray.ID", unsafe.Offsetof(r.ID), unsafe.Offsetof(cr.id)},
		{"Ray.Flags", unsafe.Offsetof(r.Flags), unsafe.Offsetof(cr.flags)},
		{"Hit.NgX", unsafe.Offsetof(h.NgX), unsafe.Offsetof(ch.Ng_x)},
		{"Hit.U", unsafe.Offsetof(h.U), unsafe.Offsetof(ch.u)},
		{"Hit.PrimID", unsafe.Offsetof(h.PrimID), unsafe.Offsetof(ch.primID)},
		{"Hit.GeomID", unsafe.Offsetof(h.GeomID), unsafe.Offsetof(ch.geomID)},
		{"Hit.InstID", unsafe.Offsetof(h.InstID), unsafe.Offsetof(ch.instID)},
		{"Bounds.LowerX", unsafe.Offsetof(b.LowerX), unsafe.Offsetof(cb.lower_x)},
		{"Bounds.UpperX", unsafe.Offsetof(b.UpperX), unsafe.Offsetof(cb.upper_x)},
	}

	var out []string
	for _, f := range fields {
		if f.got != f.want {
			out = append(out, fmt.Sprintf("%s at %d, library has %d", f.name, f.got, f.want))
		}
	}
	return out
}
