// Package primitives provides user primitives that can be placed in an
// embree.UserGeometry: analytic spheres and shapes described by a signed
// distance field.
package primitives

import (
	"math"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is an analytic sphere intersected in user code.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// NewSphere creates a new sphere
func NewSphere(center mgl32.Vec3, radius float32) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Bounds returns the axis-aligned bounding box for this sphere
func (s Sphere) Bounds() embree.AABB {
	r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	return embree.NewAABB(s.Center.Sub(r), s.Center.Add(r))
}

// Intersect returns the nearest root of the ray/sphere quadratic inside the
// ray's [tnear, tfar) interval.
func (s Sphere) Intersect(ray embree.Ray) embree.UserHit {
	// Quadratic equation coefficients: at² + 2bt + c = 0
	oc := ray.Origin.Sub(s.Center)
	a := ray.Dir.Dot(ray.Dir)
	halfB := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return embree.UserHitMiss()
	}
	sqrtD := float32(math.Sqrt(float64(discriminant)))

	// Try the closer root first
	root := (-halfB - sqrtD) / a
	if root < ray.TNear || root >= ray.TFar {
		root = (-halfB + sqrtD) / a
		if root < ray.TNear || root >= ray.TFar {
			return embree.UserHitMiss()
		}
	}

	normal := ray.PointAt(root).Sub(s.Center).Mul(1 / s.Radius)
	return embree.UserHit{T: root, Ng: normal, UV: sphereUV(normal)}
}

// sphereUV maps a unit normal to longitude/latitude texture coordinates in
// [0,1]².
func sphereUV(n mgl32.Vec3) mgl32.Vec2 {
	theta := math.Acos(float64(mgl32.Clamp(-n.Y(), -1, 1)))
	phi := math.Atan2(float64(-n.Z()), float64(n.X())) + math.Pi
	return mgl32.Vec2{float32(phi / (2 * math.Pi)), float32(theta / math.Pi)}
}
