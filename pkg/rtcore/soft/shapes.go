package soft

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// surfaceHit is a candidate intersection produced by a built-in primitive
type surfaceHit struct {
	t    float32
	ng   mgl32.Vec3
	u, v float32
}

// intersectTriangle tests the ray against a triangle using the Möller-Trumbore
// algorithm. Ng is (v1-v0) x (v2-v0), so counter-clockwise faces point at the
// viewer.
func intersectTriangle(origin, dir, v0, v1, v2 mgl32.Vec3, tMin, tMax float32) (surfaceHit, bool) {
	const epsilon = 1e-8

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	h := dir.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -epsilon && a < epsilon {
		return surfaceHit{}, false
	}

	f := 1 / a
	s := origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return surfaceHit{}, false
	}

	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return surfaceHit{}, false
	}

	t := f * edge2.Dot(q)
	if t < tMin || t >= tMax {
		return surfaceHit{}, false
	}

	return surfaceHit{t: t, ng: edge1.Cross(edge2), u: u, v: v}, true
}

// intersectQuad splits the quad into triangles (v0,v1,v3) and (v2,v3,v1) and
// maps the barycentrics of either half back onto the quad's uv square.
func intersectQuad(origin, dir, v0, v1, v2, v3 mgl32.Vec3, tMin, tMax float32) (surfaceHit, bool) {
	best, found := intersectTriangle(origin, dir, v0, v1, v3, tMin, tMax)
	if found {
		tMax = best.t
	}
	if h, ok := intersectTriangle(origin, dir, v2, v3, v1, tMin, tMax); ok {
		h.u, h.v = 1-h.u, 1-h.v
		return h, true
	}
	return best, found
}

// intersectSphere tests the ray against a sphere. Ng points from the center
// to the hit point and is not normalized.
func intersectSphere(origin, dir, center mgl32.Vec3, radius, tMin, tMax float32) (surfaceHit, bool) {
	oc := origin.Sub(center)

	// Quadratic equation coefficients: at² + 2bt + c = 0
	a := dir.Dot(dir)
	halfB := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return surfaceHit{}, false
	}
	sqrtD := float32(math.Sqrt(float64(discriminant)))

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root >= tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root >= tMax {
			return surfaceHit{}, false
		}
	}

	p := origin.Add(dir.Mul(root))
	return surfaceHit{t: root, ng: p.Sub(center)}, true
}

// intersectDisc tests the ray against a disc lying in the plane through
// center with the given normal.
func intersectDisc(origin, dir, center, normal mgl32.Vec3, radius, tMin, tMax float32) (surfaceHit, bool) {
	denom := normal.Dot(dir)
	if denom > -1e-6 && denom < 1e-6 {
		return surfaceHit{}, false // Ray is parallel to disc
	}

	t := normal.Dot(center.Sub(origin)) / denom
	if t < tMin || t >= tMax {
		return surfaceHit{}, false
	}

	offset := origin.Add(dir.Mul(t)).Sub(center)
	if offset.Dot(offset) > radius*radius {
		return surfaceHit{}, false // Outside disc
	}
	return surfaceHit{t: t, ng: normal}, true
}
