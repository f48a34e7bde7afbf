package embree

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/go-gl/mathgl/mgl32"
)

// UserPrimitive is a procedural primitive intersected by Go code during
// traversal. Implementations are called concurrently from every goroutine
// querying the scene and must not mutate shared state.
type UserPrimitive interface {
	// Intersect returns the closest hit of ray with the primitive, or
	// UserHitMiss.
	Intersect(ray Ray) UserHit
	// Bounds returns a box enclosing the primitive.
	Bounds() AABB
}

// UserHit is the result of intersecting a user primitive.
type UserHit struct {
	T  float32
	Ng mgl32.Vec3
	UV mgl32.Vec2
}

// UserHitMiss returns the hit value meaning "no intersection".
func UserHitMiss() UserHit {
	return UserHit{T: -math.MaxFloat32}
}

// Miss reports whether h is UserHitMiss.
func (h UserHit) Miss() bool {
	return h.T == -math.MaxFloat32
}

// userPrim pairs a primitive with the id of the geometry that holds it. The
// id is stamped when the geometry is attached to a scene.
type userPrim[T UserPrimitive] struct {
	prim T
	id   GeomID
}

// UserGeometry is a set of user primitives of one type under construction.
type UserGeometry[T UserPrimitive] struct {
	h     *Handle
	prims []userPrim[T]
}

// NewUserGeometry creates a user geometry over prims.
func NewUserGeometry[T UserPrimitive](d *Device, prims []T) *UserGeometry[T] {
	wrapped := make([]userPrim[T], len(prims))
	for i, p := range prims {
		wrapped[i] = userPrim[T]{prim: p, id: InvalidGeomID}
	}
	return &UserGeometry[T]{h: newHandle(d, rtcore.GeometryTypeUser), prims: wrapped}
}

// Len returns the number of primitives.
func (u *UserGeometry[T]) Len() int { return len(u.prims) }

// Handle returns the geometry handle.
func (u *UserGeometry[T]) Handle() *Handle { return u.h }

// SetBuildQuality sets the geometry's build quality.
func (u *UserGeometry[T]) SetBuildQuality(q BuildQuality) { u.h.SetBuildQuality(q) }

// Build registers the primitives and their callbacks with the engine and
// commits the geometry. The returned Geometry owns the primitives; u must
// not be used afterwards.
func (u *UserGeometry[T]) Build() *Geometry {
	if u.h == nil {
		panic("embree: user geometry already built")
	}
	if uint64(len(u.prims)) > math.MaxUint32 {
		panic(fmt.Sprintf("embree: %d user primitives exceed the engine's primitive count", len(u.prims)))
	}
	engine, g := u.h.engine(), u.h.raw()
	data := unsafe.Pointer(unsafe.SliceData(u.prims))
	engine.SetGeometryUserPrimitiveCount(g, uint32(len(u.prims)))
	engine.SetGeometryUserData(g, data)
	engine.SetGeometryBoundsFunction(g, userBounds[T], data)
	engine.SetGeometryIntersectFunction(g, userIntersect[T])
	engine.SetGeometryOccludedFunction(g, userOccluded[T])
	u.h.commit()
	Logger().Debug("user geometry committed", "type", fmt.Sprintf("%T", *new(T)), "count", len(u.prims))

	erased := eraseUserGeometry(u)
	u.h, u.prims = nil, nil
	return newGeometry(KindUser, erased)
}

// userPrimAt returns element primID of the primitive array starting at data.
// The engine only passes primitive ids below the registered count.
func userPrimAt[T UserPrimitive](data unsafe.Pointer, primID uint32) *userPrim[T] {
	return (*userPrim[T])(unsafe.Add(data, uintptr(primID)*unsafe.Sizeof(userPrim[T]{})))
}

func userBounds[T UserPrimitive](args *rtcore.BoundsFunctionArguments) {
	p := userPrimAt[T](args.GeometryUserPtr, args.PrimID)
	*args.BoundsO = p.prim.Bounds().raw()
}

func userIntersect[T UserPrimitive](args *rtcore.IntersectFunctionNArguments) {
	if args.N != 1 {
		panic("embree: packet queries on user geometry are not supported")
	}
	if *args.Valid == 0 {
		return
	}
	p := userPrimAt[T](args.GeometryUserPtr, args.PrimID)
	rh := (*RayHit)(unsafe.Pointer(args.RayHit))
	h := p.prim.Intersect(rh.Ray)
	if h.Miss() || !rh.Ray.accepts(h.T) {
		return
	}
	rh.Ray.TFar = h.T
	rh.Hit = Hit{
		Ng:     h.Ng,
		UV:     h.UV,
		PrimID: args.PrimID,
		GeomID: p.id,
		InstID: GeomID(args.Context.InstID[0]),
	}
}

func userOccluded[T UserPrimitive](args *rtcore.OccludedFunctionNArguments) {
	if args.N != 1 {
		panic("embree: packet queries on user geometry are not supported")
	}
	if *args.Valid == 0 {
		return
	}
	p := userPrimAt[T](args.GeometryUserPtr, args.PrimID)
	ray := (*Ray)(unsafe.Pointer(args.Ray))
	h := p.prim.Intersect(*ray)
	if h.Miss() || !ray.accepts(h.T) {
		return
	}
	ray.TFar = float32(math.Inf(-1))
}
