package soft

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// aabb is an axis-aligned bounding box in engine (float32) precision
type aabb struct {
	min mgl32.Vec3
	max mgl32.Vec3
}

// emptyAABB returns the identity element for union
func emptyAABB() aabb {
	inf := float32(math.Inf(1))
	return aabb{
		min: mgl32.Vec3{inf, inf, inf},
		max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// aabbFromPoints returns the box bounding all given points
func aabbFromPoints(points ...mgl32.Vec3) aabb {
	box := emptyAABB()
	for _, p := range points {
		box = box.extend(p)
	}
	return box
}

func (b aabb) extend(p mgl32.Vec3) aabb {
	for axis := 0; axis < 3; axis++ {
		b.min[axis] = min(b.min[axis], p[axis])
		b.max[axis] = max(b.max[axis], p[axis])
	}
	return b
}

// union returns a box bounding both boxes
func (b aabb) union(other aabb) aabb {
	for axis := 0; axis < 3; axis++ {
		b.min[axis] = min(b.min[axis], other.min[axis])
		b.max[axis] = max(b.max[axis], other.max[axis])
	}
	return b
}

func (b aabb) center() mgl32.Vec3 {
	return b.min.Add(b.max).Mul(0.5)
}

// longestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (b aabb) longestAxis() int {
	size := b.max.Sub(b.min)
	if size[0] > size[1] && size[0] > size[2] {
		return 0
	}
	if size[1] > size[2] {
		return 1
	}
	return 2
}

// valid reports whether the box is finite and non-inverted. The engine
// silently drops primitives with invalid bounds.
func (b aabb) valid() bool {
	for axis := 0; axis < 3; axis++ {
		lo, hi := float64(b.min[axis]), float64(b.max[axis])
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
			return false
		}
	}
	return true
}

// hit tests the ray segment [tMin, tMax] against the box using the slab method
func (b aabb) hit(origin, dir mgl32.Vec3, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		if dir[axis] > -1e-12 && dir[axis] < 1e-12 {
			// Ray is parallel to this slab
			if origin[axis] < b.min[axis] || origin[axis] > b.max[axis] {
				return false
			}
			continue
		}

		inv := 1 / dir[axis]
		t1 := (b.min[axis] - origin[axis]) * inv
		t2 := (b.max[axis] - origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = max(tMin, t1)
		tMax = min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}
