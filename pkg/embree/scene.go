package embree

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sync/atomic"
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
)

// sceneHandle is a reference to an engine scene.
type sceneHandle struct {
	engine   rtcore.Engine
	ptr      rtcore.Scene
	released atomic.Bool
}

func (s *sceneHandle) release() {
	if !s.released.CompareAndSwap(false, true) {
		panic("embree: scene released twice")
	}
	s.engine.ReleaseScene(s.ptr)
}

// SceneBuilder collects geometries for a scene. Build turns it into a
// queryable Scene and Scene.Edit turns a scene back into a builder.
type SceneBuilder struct {
	s          *sceneHandle
	geometries map[GeomID]*Geometry
}

// NewSceneBuilder creates an empty scene on d.
func NewSceneBuilder(d *Device) *SceneBuilder {
	d.checkLive()
	ptr := d.engine.NewScene(d.ptr)
	if ptr == nil {
		panic(fmt.Sprintf("embree: engine could not create scene: %s", d.LastError()))
	}
	return &SceneBuilder{
		s:          &sceneHandle{engine: d.engine, ptr: ptr},
		geometries: make(map[GeomID]*Geometry),
	}
}

func (b *SceneBuilder) live() *sceneHandle {
	if b.s == nil {
		panic("embree: scene builder already built")
	}
	return b.s
}

// Attach adds g to the scene and returns its id. The scene takes ownership
// of g. User geometries learn their id here.
func (b *SceneBuilder) Attach(g *Geometry) GeomID {
	s := b.live()
	if g.attached {
		panic("embree: geometry is already attached to a scene")
	}
	id := GeomID(s.engine.AttachGeometry(s.ptr, g.data.handle().raw()))
	if id.IsInvalid() {
		panic("embree: engine rejected geometry; was it created on another device?")
	}
	if _, dup := b.geometries[id]; dup {
		panic(fmt.Sprintf("embree: geometry id %d assigned twice", id))
	}
	g.attached = true
	g.data.setGeomID(id)
	b.geometries[id] = g
	return id
}

// SetBuildQuality sets the quality of the scene's acceleration structure.
func (b *SceneBuilder) SetBuildQuality(q BuildQuality) {
	s := b.live()
	s.engine.SetSceneBuildQuality(s.ptr, rtcore.BuildQuality(q))
}

// SetFlags replaces the scene's build flags.
func (b *SceneBuilder) SetFlags(flags SceneFlags) {
	s := b.live()
	s.engine.SetSceneFlags(s.ptr, rtcore.SceneFlags(flags))
}

// Flags returns the scene's build flags.
func (b *SceneBuilder) Flags() SceneFlags {
	s := b.live()
	return SceneFlags(s.engine.GetSceneFlags(s.ptr))
}

// GeometryCount returns the number of attached geometries.
func (b *SceneBuilder) GeometryCount() int { return len(b.geometries) }

// Build commits the scene. The builder must not be used afterwards.
func (b *SceneBuilder) Build() *Scene {
	s := b.live()
	s.engine.CommitScene(s.ptr)
	Logger().Debug("scene committed", "geometries", len(b.geometries))
	sc := &Scene{s: s, geometries: b.geometries}
	b.s, b.geometries = nil, nil
	return sc
}

// Release frees the builder and every geometry attached to it without
// building.
func (b *SceneBuilder) Release() {
	s := b.live()
	releaseScene(s, b.geometries)
	b.s, b.geometries = nil, nil
}

// Scene is a committed scene ready for queries. Intersect, Occluded, Bounds
// and Geometry may be called concurrently.
type Scene struct {
	s          *sceneHandle
	geometries map[GeomID]*Geometry
}

func (sc *Scene) live() *sceneHandle {
	if sc.s == nil {
		panic("embree: use of released or edited scene")
	}
	return sc.s
}

// Edit returns a builder for the scene's geometries. The scene must not be
// used afterwards; build the returned builder to query again.
func (sc *Scene) Edit() *SceneBuilder {
	s := sc.live()
	b := &SceneBuilder{s: s, geometries: sc.geometries}
	sc.s, sc.geometries = nil, nil
	return b
}

// Release frees the scene and its geometries.
func (sc *Scene) Release() {
	s := sc.live()
	releaseScene(s, sc.geometries)
	sc.s, sc.geometries = nil, nil
}

func releaseScene(s *sceneHandle, geometries map[GeomID]*Geometry) {
	s.release()
	for _, id := range slices.Sorted(maps.Keys(geometries)) {
		geometries[id].data.release()
	}
}

// Geometry returns the geometry attached under id.
func (sc *Scene) Geometry(id GeomID) (*Geometry, bool) {
	sc.live()
	g, ok := sc.geometries[id]
	return g, ok
}

// GeometryCount returns the number of attached geometries.
func (sc *Scene) GeometryCount() int {
	sc.live()
	return len(sc.geometries)
}

// Bounds returns the bounding box of everything in the scene.
func (sc *Scene) Bounds() AABB {
	s := sc.live()
	b := rtcore.NewBounds()
	s.engine.GetSceneBounds(s.ptr, b)
	return aabbFromRaw(*b)
}

// Intersect finds the closest hit of ray. When nothing is hit the record's
// GeomID is InvalidGeomID.
func (sc *Scene) Intersect(ray Ray) HitRecord {
	s := sc.live()
	ctx := rtcore.NewIntersectContext()
	rh := rtcore.NewRayHit()
	out := (*RayHit)(unsafe.Pointer(rh))
	out.Ray = ray
	out.Hit = EmptyHit()
	s.engine.Intersect1(s.ptr, &ctx, rh)

	rec := HitRecord{Hit: out.Hit, T: out.Ray.TFar}
	if rec.IsHit() {
		rec.Ng = rec.Ng.Normalize()
	}
	return rec
}

// Occluded reports whether anything lies along ray within its interval.
func (sc *Scene) Occluded(ray Ray) bool {
	s := sc.live()
	ctx := rtcore.NewIntersectContext()
	r := rtcore.NewRay()
	*(*Ray)(unsafe.Pointer(r)) = ray
	s.engine.Occluded1(s.ptr, &ctx, r)
	return math.IsInf(float64(r.TFar), -1)
}
