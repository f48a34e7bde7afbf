package embree

import (
	"math"

	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box with the engine's bounds layout: each
// corner is padded to 16 bytes.
type AABB struct {
	Lower mgl32.Vec3
	_     float32
	Upper mgl32.Vec3
	_     float32
}

// NewAABB creates a box from its corners.
func NewAABB(lower, upper mgl32.Vec3) AABB {
	return AABB{Lower: lower, Upper: upper}
}

// EmptyAABB returns an inverted box that any Extend call replaces.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Lower: mgl32.Vec3{inf, inf, inf},
		Upper: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Extend returns the smallest box containing b and p.
func (b AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Lower[i] = min(b.Lower[i], p[i])
		b.Upper[i] = max(b.Upper[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return b.Extend(o.Lower).Extend(o.Upper)
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Lower.X() > b.Upper.X() || b.Lower.Y() > b.Upper.Y() || b.Lower.Z() > b.Upper.Z()
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Lower.Add(b.Upper).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b AABB) Size() mgl32.Vec3 {
	return b.Upper.Sub(b.Lower)
}

func (b AABB) raw() rtcore.Bounds {
	return rtcore.Bounds{
		LowerX: b.Lower[0], LowerY: b.Lower[1], LowerZ: b.Lower[2],
		UpperX: b.Upper[0], UpperY: b.Upper[1], UpperZ: b.Upper[2],
	}
}

func aabbFromRaw(r rtcore.Bounds) AABB {
	return AABB{
		Lower: mgl32.Vec3{r.LowerX, r.LowerY, r.LowerZ},
		Upper: mgl32.Vec3{r.UpperX, r.UpperY, r.UpperZ},
	}
}
