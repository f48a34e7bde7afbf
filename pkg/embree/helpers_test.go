package embree

import (
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/df07/go-embree/pkg/rtcore/soft"
	"github.com/go-gl/mathgl/mgl32"
)

const tolerance = 1e-4

// errorLog collects errors reported to a device's error sink.
type errorLog struct {
	mu    sync.Mutex
	kinds []ErrorKind
	msgs  []string
}

func (l *errorLog) sink(kind ErrorKind, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.kinds = append(l.kinds, kind)
	l.msgs = append(l.msgs, msg)
}

func (l *errorLog) reported() []ErrorKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.kinds)
}

// openTestDevice opens a soft device whose errors are collected into the
// returned log.
func openTestDevice(t *testing.T) (*Device, *errorLog) {
	t.Helper()
	errs := &errorLog{}
	d, err := Open(Config{Engine: soft.New(), ErrorSink: errs.sink})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(d.Release)
	return d, errs
}

// cubeMesh returns the vertices and outward-facing triangles of the cube
// [-1,1]^3. Vertex i has coordinate +1 on x, y and z where bits 0, 1 and 2 of
// i are set.
func cubeMesh() ([]mgl32.Vec3, []Triangle) {
	vertices := make([]mgl32.Vec3, 8)
	for i := range vertices {
		v := mgl32.Vec3{-1, -1, -1}
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				v[axis] = 1
			}
		}
		vertices[i] = v
	}
	triangles := []Triangle{
		{4, 5, 7}, {4, 7, 6}, // +z
		{0, 2, 3}, {0, 3, 1}, // -z
		{1, 3, 7}, {1, 7, 5}, // +x
		{0, 4, 6}, {0, 6, 2}, // -x
		{2, 6, 7}, {2, 7, 3}, // +y
		{0, 1, 5}, {0, 5, 4}, // -y
	}
	return vertices, triangles
}

// testSphere is a user primitive for an analytic sphere.
type testSphere struct {
	center mgl32.Vec3
	radius float32
}

func (s testSphere) Bounds() AABB {
	r := mgl32.Vec3{s.radius, s.radius, s.radius}
	return NewAABB(s.center.Sub(r), s.center.Add(r))
}

func (s testSphere) Intersect(ray Ray) UserHit {
	oc := ray.Origin.Sub(s.center)
	a := ray.Dir.Dot(ray.Dir)
	halfB := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - s.radius*s.radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return UserHitMiss()
	}
	sq := float32(math.Sqrt(float64(disc)))
	for _, t := range []float32{(-halfB - sq) / a, (-halfB + sq) / a} {
		if t >= ray.TNear && t < ray.TFar {
			return UserHit{T: t, Ng: ray.PointAt(t).Sub(s.center)}
		}
	}
	return UserHitMiss()
}

// testBox is a second user primitive type for mixed scenes.
type testBox struct {
	lower, upper mgl32.Vec3
}

func (b testBox) Bounds() AABB { return NewAABB(b.lower, b.upper) }

func (b testBox) Intersect(ray Ray) UserHit {
	tMin, tMax := ray.TNear, ray.TFar
	axisHit := 0
	for axis := 0; axis < 3; axis++ {
		inv := 1 / ray.Dir[axis]
		t0 := (b.lower[axis] - ray.Origin[axis]) * inv
		t1 := (b.upper[axis] - ray.Origin[axis]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
			axisHit = axis
		}
		tMax = min(tMax, t1)
		if tMin > tMax {
			return UserHitMiss()
		}
	}
	var ng mgl32.Vec3
	ng[axisHit] = -float32(math.Copysign(1, float64(ray.Dir[axisHit])))
	return UserHit{T: tMin, Ng: ng}
}

func vecNear(a, b mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(float64(a[i]-b[i])) > tolerance {
			return false
		}
	}
	return true
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
