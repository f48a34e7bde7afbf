package soft

import (
	"math"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-embree/pkg/rtcore"
)

type scene struct {
	dev  *device
	refs atomic.Int32

	geometries []*geometry // indexed by geometry id
	flags      rtcore.SceneFlags
	quality    rtcore.BuildQuality

	// Built by CommitScene; read-only afterwards so queries may run concurrently
	accel     *bvh
	committed bool
}

func toScene(s rtcore.Scene) *scene { return (*scene)(s) }

// SceneRefCount reports the engine-side reference count of a scene.
func SceneRefCount(s rtcore.Scene) int32 { return toScene(s).refs.Load() }

// NewScene implements rtcore.Engine.
func (e *Engine) NewScene(d rtcore.Device) rtcore.Scene {
	dev := toDevice(d)
	dev.refs.Add(1)
	s := &scene{dev: dev, quality: rtcore.BuildQualityMedium}
	s.refs.Store(1)
	return rtcore.Scene(unsafe.Pointer(s))
}

// RetainScene implements rtcore.Engine.
func (e *Engine) RetainScene(s rtcore.Scene) {
	toScene(s).refs.Add(1)
}

// ReleaseScene implements rtcore.Engine. The scene drops its references to
// the attached geometries and its device when the count reaches zero.
func (e *Engine) ReleaseScene(s rtcore.Scene) {
	sc := toScene(s)
	n := sc.refs.Add(-1)
	switch {
	case n == 0:
		for _, g := range sc.geometries {
			e.ReleaseGeometry(rtcore.Geometry(unsafe.Pointer(g)))
		}
		sc.geometries = nil
		sc.accel = nil
		e.ReleaseDevice(rtcore.Device(unsafe.Pointer(sc.dev)))
	case n < 0:
		sc.dev.report(rtcore.ErrorInvalidOperation, "scene released more often than retained")
	}
}

// AttachGeometry implements rtcore.Engine. Ids are dense and assigned in
// attach order.
func (e *Engine) AttachGeometry(s rtcore.Scene, g rtcore.Geometry) uint32 {
	sc := toScene(s)
	geom := toGeometry(g)
	if geom.dev != sc.dev {
		sc.dev.report(rtcore.ErrorInvalidArgument, "geometry belongs to a different device")
		return rtcore.InvalidGeometryID
	}
	geom.refs.Add(1)
	sc.geometries = append(sc.geometries, geom)
	sc.committed = false
	return uint32(len(sc.geometries) - 1)
}

// SetSceneBuildQuality implements rtcore.Engine.
func (e *Engine) SetSceneBuildQuality(s rtcore.Scene, q rtcore.BuildQuality) {
	sc := toScene(s)
	if q < rtcore.BuildQualityLow || q > rtcore.BuildQualityHigh {
		sc.dev.report(rtcore.ErrorInvalidArgument, "invalid build quality %d", q)
		return
	}
	sc.quality = q
}

// SetSceneFlags implements rtcore.Engine.
func (e *Engine) SetSceneFlags(s rtcore.Scene, flags rtcore.SceneFlags) {
	toScene(s).flags = flags
}

// GetSceneFlags implements rtcore.Engine.
func (e *Engine) GetSceneFlags(s rtcore.Scene) rtcore.SceneFlags {
	return toScene(s).flags
}

// leafSize returns the BVH leaf threshold for a build quality
func leafSize(q rtcore.BuildQuality) int {
	switch q {
	case rtcore.BuildQualityLow:
		return 2 * leafThreshold
	case rtcore.BuildQualityHigh:
		return leafThreshold / 2
	}
	return leafThreshold
}

// CommitScene implements rtcore.Engine. It gathers primitive bounds from every
// committed geometry, in parallel across up to the device's thread count, and
// builds the BVH.
func (e *Engine) CommitScene(s rtcore.Scene) {
	sc := toScene(s)

	refs := make([][]primRef, len(sc.geometries))
	sem := make(chan struct{}, max(1, sc.dev.threads))
	var wg sync.WaitGroup
	for id, geom := range sc.geometries {
		if !geom.committed {
			sc.dev.report(rtcore.ErrorInvalidOperation, "geometry %d is not committed", id)
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(id int, geom *geometry) {
			defer wg.Done()
			defer func() { <-sem }()
			refs[id] = geom.primRefs(uint32(id))
		}(id, geom)
	}
	wg.Wait()

	var prims []primRef
	for _, r := range refs {
		prims = append(prims, r...)
	}
	sc.accel = newBVHWithLeafSize(prims, leafSize(sc.quality))
	sc.committed = true
	sc.dev.debug("scene committed", "geometries", len(sc.geometries), "primitives", len(prims),
		"flags", sc.flags, "quality", sc.quality)
}

// primRefs computes the bounds of every valid primitive of the geometry
func (g *geometry) primRefs(geomID uint32) []primRef {
	n := g.primitiveCount()
	refs := make([]primRef, 0, n)
	for i := uintptr(0); i < n; i++ {
		box, ok := g.primBounds(i)
		if ok && box.valid() {
			refs = append(refs, primRef{geomID: geomID, primID: uint32(i), bounds: box})
		}
	}
	return refs
}

func (g *geometry) vertexBuffer() sharedBuffer {
	return g.buffers[bufferKey{rtcore.BufferTypeVertex, 0}]
}

func (g *geometry) indexBuffer() sharedBuffer {
	return g.buffers[bufferKey{rtcore.BufferTypeIndex, 0}]
}

// triangleVertices fetches the three vertices of triangle i, rejecting
// out-of-range indices
func (g *geometry) triangleVertices(i uintptr) (v0, v1, v2 mgl32.Vec3, ok bool) {
	idx := g.indexBuffer().uint3(i)
	vb := g.vertexBuffer()
	for _, k := range idx {
		if uintptr(k) >= vb.count {
			return v0, v1, v2, false
		}
	}
	return vb.vec3(uintptr(idx[0])), vb.vec3(uintptr(idx[1])), vb.vec3(uintptr(idx[2])), true
}

// quadVertices fetches the four vertices of quad i, rejecting out-of-range
// indices
func (g *geometry) quadVertices(i uintptr) (v [4]mgl32.Vec3, ok bool) {
	idx := g.indexBuffer().uint4(i)
	vb := g.vertexBuffer()
	for j, k := range idx {
		if uintptr(k) >= vb.count {
			return v, false
		}
		v[j] = vb.vec3(uintptr(k))
	}
	return v, true
}

// point returns the center and radius of point primitive i
func (g *geometry) point(i uintptr) (mgl32.Vec3, float32) {
	p := g.vertexBuffer().vec4(i)
	return p.Vec3(), p.W()
}

func (g *geometry) primBounds(i uintptr) (aabb, bool) {
	switch g.typ {
	case rtcore.GeometryTypeTriangle:
		v0, v1, v2, ok := g.triangleVertices(i)
		return aabbFromPoints(v0, v1, v2), ok
	case rtcore.GeometryTypeQuad:
		v, ok := g.quadVertices(i)
		return aabbFromPoints(v[:]...), ok
	case rtcore.GeometryTypeSpherePoint, rtcore.GeometryTypeDiscPoint, rtcore.GeometryTypeOrientedDiscPoint:
		c, r := g.point(i)
		if r < 0 {
			return aabb{}, false
		}
		ext := mgl32.Vec3{r, r, r}
		return aabb{min: c.Sub(ext), max: c.Add(ext)}, true
	case rtcore.GeometryTypeUser:
		out := rtcore.NewBounds()
		user := g.boundsUser
		if user == nil {
			user = g.userPtr
		}
		g.boundsFn(&rtcore.BoundsFunctionArguments{
			GeometryUserPtr: user,
			PrimID:          uint32(i),
			BoundsO:         out,
		})
		return aabb{
			min: mgl32.Vec3{out.LowerX, out.LowerY, out.LowerZ},
			max: mgl32.Vec3{out.UpperX, out.UpperY, out.UpperZ},
		}, true
	}
	return aabb{}, false
}

// GetSceneBounds implements rtcore.Engine.
func (e *Engine) GetSceneBounds(s rtcore.Scene, out *rtcore.Bounds) {
	sc := toScene(s)
	if !sc.committed {
		sc.dev.report(rtcore.ErrorInvalidOperation, "scene is not committed")
		return
	}
	box := sc.accel.bounds()
	*out = rtcore.Bounds{
		LowerX: box.min[0], LowerY: box.min[1], LowerZ: box.min[2],
		UpperX: box.max[0], UpperY: box.max[1], UpperZ: box.max[2],
	}
}

// query is one ray in flight through the hierarchy
type query struct {
	ray    *rtcore.Ray
	origin mgl32.Vec3
	dir    mgl32.Vec3
}

func newQuery(ray *rtcore.Ray) *query {
	return &query{
		ray:    ray,
		origin: mgl32.Vec3{ray.OrgX, ray.OrgY, ray.OrgZ},
		dir:    mgl32.Vec3{ray.DirX, ray.DirY, ray.DirZ},
	}
}

// segment returns the ray's current valid interval; tfar shrinks as closer
// hits are found
func (q *query) segment() (float32, float32) {
	return q.ray.TNear, q.ray.TFar
}

// checkQuery validates the common preconditions of Intersect1 and Occluded1
func (sc *scene) checkQuery(ray *rtcore.Ray) bool {
	if !sc.committed {
		sc.dev.report(rtcore.ErrorInvalidOperation, "scene is not committed")
		return false
	}
	if !rtcore.IsAligned(unsafe.Pointer(ray)) {
		sc.dev.report(rtcore.ErrorInvalidArgument, "ray is not 16-byte aligned")
		return false
	}
	// Rays with an empty or NaN interval are ignored
	return ray.TNear >= 0 && ray.TNear <= ray.TFar
}

// Intersect1 implements rtcore.Engine. On a hit the ray's tfar and the hit
// record are updated; on a miss both are left untouched.
func (e *Engine) Intersect1(s rtcore.Scene, ctx *rtcore.IntersectContext, rayhit *rtcore.RayHit) {
	sc := toScene(s)
	if !sc.checkQuery(&rayhit.Ray) {
		return
	}

	q := newQuery(&rayhit.Ray)
	valid := int32(-1)
	sc.accel.traverse(q, func(p primRef) bool {
		geom := sc.geometries[p.geomID]
		if geom.typ == rtcore.GeometryTypeUser {
			geom.intersectFn(&rtcore.IntersectFunctionNArguments{
				Valid:           &valid,
				GeometryUserPtr: geom.userPtr,
				PrimID:          p.primID,
				Context:         ctx,
				RayHit:          rayhit,
				N:               1,
				GeomID:          p.geomID,
			})
			return true
		}

		tNear, tFar := q.segment()
		h, ok := geom.intersect(uintptr(p.primID), q.origin, q.dir, tNear, tFar)
		if !ok {
			return true
		}
		rayhit.Ray.TFar = h.t
		rayhit.Hit = rtcore.Hit{
			NgX: h.ng[0], NgY: h.ng[1], NgZ: h.ng[2],
			U: h.u, V: h.v,
			PrimID: p.primID,
			GeomID: p.geomID,
			InstID: ctx.InstID,
		}
		return true
	})
}

// Occluded1 implements rtcore.Engine. An occluded ray gets tfar = -Inf.
func (e *Engine) Occluded1(s rtcore.Scene, ctx *rtcore.IntersectContext, ray *rtcore.Ray) {
	sc := toScene(s)
	if !sc.checkQuery(ray) {
		return
	}

	negInf := float32(math.Inf(-1))
	q := newQuery(ray)
	valid := int32(-1)
	sc.accel.traverse(q, func(p primRef) bool {
		geom := sc.geometries[p.geomID]
		if geom.typ == rtcore.GeometryTypeUser {
			if geom.occludedFn != nil {
				geom.occludedFn(&rtcore.OccludedFunctionNArguments{
					Valid:           &valid,
					GeometryUserPtr: geom.userPtr,
					PrimID:          p.primID,
					Context:         ctx,
					Ray:             ray,
					N:               1,
					GeomID:          p.geomID,
				})
			}
			return ray.TFar != negInf
		}

		tNear, tFar := q.segment()
		if _, ok := geom.intersect(uintptr(p.primID), q.origin, q.dir, tNear, tFar); ok {
			ray.TFar = negInf
			return false
		}
		return true
	})
}

// intersect tests one built-in primitive against the ray segment
func (g *geometry) intersect(i uintptr, origin, dir mgl32.Vec3, tMin, tMax float32) (surfaceHit, bool) {
	switch g.typ {
	case rtcore.GeometryTypeTriangle:
		v0, v1, v2, ok := g.triangleVertices(i)
		if !ok {
			return surfaceHit{}, false
		}
		return intersectTriangle(origin, dir, v0, v1, v2, tMin, tMax)
	case rtcore.GeometryTypeQuad:
		v, ok := g.quadVertices(i)
		if !ok {
			return surfaceHit{}, false
		}
		return intersectQuad(origin, dir, v[0], v[1], v[2], v[3], tMin, tMax)
	case rtcore.GeometryTypeSpherePoint:
		c, r := g.point(i)
		return intersectSphere(origin, dir, c, r, tMin, tMax)
	case rtcore.GeometryTypeDiscPoint:
		// Ray-facing disc
		c, r := g.point(i)
		return intersectDisc(origin, dir, c, dir.Mul(-1), r, tMin, tMax)
	case rtcore.GeometryTypeOrientedDiscPoint:
		c, r := g.point(i)
		n := g.buffers[bufferKey{rtcore.BufferTypeNormal, 0}].vec3(i)
		return intersectDisc(origin, dir, c, n, r, tMin, tMax)
	}
	return surfaceHit{}, false
}
