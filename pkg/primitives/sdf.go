package primitives

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/df07/go-embree/pkg/embree"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	defaultMaxSteps = 256
	defaultEpsilon  = 1e-4
)

// SDF is a user primitive whose surface is the zero set of an sdfx signed
// distance field. Rays are sphere traced through the field's bounding box.
type SDF struct {
	shape    sdf.SDF3
	bounds   embree.AABB
	maxSteps int
	epsilon  float64
}

// SDFOption configures an SDF primitive.
type SDFOption func(*SDF)

// WithMaxSteps limits the number of sphere tracing steps per ray.
func WithMaxSteps(n int) SDFOption {
	return func(s *SDF) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// WithEpsilon sets the distance below which a ray is considered to have
// reached the surface.
func WithEpsilon(eps float64) SDFOption {
	return func(s *SDF) {
		if eps > 0 {
			s.epsilon = eps
		}
	}
}

// NewSDF wraps shape as a user primitive.
func NewSDF(shape sdf.SDF3, opts ...SDFOption) SDF {
	s := SDF{shape: shape, maxSteps: defaultMaxSteps, epsilon: defaultEpsilon}
	for _, opt := range opts {
		opt(&s)
	}
	bb := shape.BoundingBox()
	s.bounds = embree.NewAABB(fromV3(bb.Min), fromV3(bb.Max))
	return s
}

// Shape returns the wrapped distance field.
func (s SDF) Shape() sdf.SDF3 { return s.shape }

// Bounds returns the bounding box reported by the distance field.
func (s SDF) Bounds() embree.AABB { return s.bounds }

// Intersect sphere traces the ray from where it enters the bounding box.
// The field is evaluated in float64 and the ray parameter is scaled by the
// direction length so unnormalized directions step correctly.
func (s SDF) Intersect(ray embree.Ray) embree.UserHit {
	t0, t1, ok := s.clip(ray)
	if !ok {
		return embree.UserHitMiss()
	}
	dirLen := float64(ray.Dir.Len())
	if dirLen == 0 {
		return embree.UserHitMiss()
	}
	origin, dir := toV3(ray.Origin), toV3(ray.Dir)

	t := t0
	for range s.maxSteps {
		if t >= t1 {
			break
		}
		d := math.Abs(s.shape.Evaluate(origin.Add(dir.MulScalar(t))))
		if d < s.epsilon {
			hitT := float32(t)
			if hitT < ray.TNear || hitT >= ray.TFar {
				break
			}
			p := origin.Add(dir.MulScalar(t))
			return embree.UserHit{T: hitT, Ng: s.normal(p)}
		}
		t += d / dirLen
	}
	return embree.UserHitMiss()
}

// clip intersects the ray interval with the bounding box using the slab
// method.
func (s SDF) clip(ray embree.Ray) (float64, float64, bool) {
	tMin, tMax := float64(ray.TNear), float64(ray.TFar)
	for axis := 0; axis < 3; axis++ {
		inv := 1 / float64(ray.Dir[axis])
		t0 := (float64(s.bounds.Lower[axis]) - float64(ray.Origin[axis])) * inv
		t1 := (float64(s.bounds.Upper[axis]) - float64(ray.Origin[axis])) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		// NaN from 0*Inf leaves the interval unchanged.
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}

// normal estimates the field gradient at p with central differences.
func (s SDF) normal(p v3.Vec) mgl32.Vec3 {
	h := s.epsilon
	dx := v3.Vec{X: h}
	dy := v3.Vec{Y: h}
	dz := v3.Vec{Z: h}
	g := v3.Vec{
		X: s.shape.Evaluate(p.Add(dx)) - s.shape.Evaluate(p.Sub(dx)),
		Y: s.shape.Evaluate(p.Add(dy)) - s.shape.Evaluate(p.Sub(dy)),
		Z: s.shape.Evaluate(p.Add(dz)) - s.shape.Evaluate(p.Sub(dz)),
	}
	n := fromV3(g)
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}

func toV3(v mgl32.Vec3) v3.Vec {
	return v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

func fromV3(v v3.Vec) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
