package embree

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a ray with a valid distance interval [TNear, TFar]. Its memory
// layout is identical to the engine's ray record, so values are passed to the
// engine without conversion.
type Ray struct {
	Origin mgl32.Vec3
	TNear  float32
	Dir    mgl32.Vec3
	Time   float32 // motion blur time in [0, 1]
	TFar   float32
	Mask   uint32
	ID     uint32
	Flags  uint32
}

// NewRay creates a ray over [tnear, tfar] with all mask bits set.
// It panics unless 0 <= tnear < tfar.
func NewRay(origin, dir mgl32.Vec3, tnear, tfar float32) Ray {
	if !(tnear >= 0 && tnear < tfar) {
		panic("embree: ray requires 0 <= tnear < tfar")
	}
	return Ray{Origin: origin, Dir: dir, TNear: tnear, TFar: tfar, Mask: math.MaxUint32}
}

// NewRayInfinite creates a ray starting at the origin with no far bound.
func NewRayInfinite(origin, dir mgl32.Vec3) Ray {
	return NewRay(origin, dir, 0, float32(math.Inf(1)))
}

// PointAt returns Origin + t*Dir.
func (r Ray) PointAt(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// InRange reports whether tnear < t < tfar.
func (r Ray) InRange(t float32) bool {
	return t > r.TNear && t < r.TFar
}

// accepts reports whether a candidate distance would improve the current hit:
// tnear <= t < tfar.
func (r Ray) accepts(t float32) bool {
	return t >= r.TNear && t < r.TFar
}

// Hit describes where a ray hit a primitive. Its layout is identical to the
// engine's hit record; PrimID precedes GeomID there.
type Hit struct {
	Ng     mgl32.Vec3 // unnormalized geometric normal
	UV     mgl32.Vec2
	PrimID uint32
	GeomID GeomID
	InstID GeomID
}

// EmptyHit returns a hit with every id set to the invalid sentinel.
func EmptyHit() Hit {
	return Hit{
		PrimID: uint32(InvalidGeomID),
		GeomID: InvalidGeomID,
		InstID: InvalidGeomID,
	}
}

// IsHit reports whether the record refers to a geometry.
func (h Hit) IsHit() bool { return !h.GeomID.IsInvalid() }

// Empty reports whether the record is a miss.
func (h Hit) Empty() bool { return h.GeomID.IsInvalid() }

// RayHit pairs a ray with its hit record. Its layout is identical to the
// engine's combined ray/hit record.
type RayHit struct {
	Ray Ray
	Hit Hit
}

// HitRecord is the result of an intersection query. When IsHit is true, T is
// the distance along the ray and Ng is normalized; otherwise T is the ray's
// original far bound.
type HitRecord struct {
	Hit
	T float32
}
