package renderer

import (
	"math"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraConfig describes a pinhole camera.
type CameraConfig struct {
	Center      mgl32.Vec3 // Camera position
	LookAt      mgl32.Vec3 // Point the camera looks at
	Up          mgl32.Vec3 // Up direction
	VFov        float32    // Vertical field of view in degrees
	AspectRatio float32    // Width / height
}

// MergeCameraConfig returns base with every non-zero field of override
// applied.
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if override.Center != (mgl32.Vec3{}) {
		result.Center = override.Center
	}
	if override.LookAt != (mgl32.Vec3{}) {
		result.LookAt = override.LookAt
	}
	if override.Up != (mgl32.Vec3{}) {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	return result
}

// Camera generates primary rays
type Camera struct {
	origin          mgl32.Vec3
	lowerLeftCorner mgl32.Vec3
	horizontal      mgl32.Vec3
	vertical        mgl32.Vec3
}

// NewCamera creates a camera from config. A zero aspect ratio means square
// pixels over a square image.
func NewCamera(config CameraConfig) *Camera {
	aspect := config.AspectRatio
	if aspect <= 0 {
		aspect = 1
	}
	up := config.Up
	if up == (mgl32.Vec3{}) {
		up = mgl32.Vec3{0, 1, 0}
	}

	theta := float64(mgl32.DegToRad(config.VFov))
	viewportHeight := float32(2 * math.Tan(theta/2))
	viewportWidth := aspect * viewportHeight

	// Orthonormal basis with w pointing away from the view direction
	w := config.Center.Sub(config.LookAt).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Mul(viewportWidth)
	vertical := v.Mul(viewportHeight)
	lowerLeftCorner := config.Center.
		Sub(horizontal.Mul(0.5)).
		Sub(vertical.Mul(0.5)).
		Sub(w)

	return &Camera{
		origin:          config.Center,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
	}
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1
// and (0, 0) is the lower left corner. The direction is normalized so hit
// distances are in world units.
func (c *Camera) GetRay(s, t float32) embree.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Mul(s)).
		Add(c.vertical.Mul(t)).
		Sub(c.origin)

	return embree.NewRayInfinite(c.origin, direction.Normalize())
}
