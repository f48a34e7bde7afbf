// Package scene assembles ready-made embree scenes together with a camera and
// per-geometry surface colors for the renderer.
package scene

import (
	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/loaders"
	"github.com/df07/go-embree/pkg/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader returns the surface color for a hit on one geometry.
type Shader func(rec embree.HitRecord) mgl32.Vec3

// Solid colors every primitive the same.
func Solid(c mgl32.Vec3) Shader {
	return func(embree.HitRecord) mgl32.Vec3 { return c }
}

// PerPrimitive colors primitive i with colors[i mod len(colors)].
func PerPrimitive(colors []mgl32.Vec3) Shader {
	return func(rec embree.HitRecord) mgl32.Vec3 {
		return colors[int(rec.PrimID)%len(colors)]
	}
}

// Textured samples tex at the hit's UV. User primitives such as
// primitives.Sphere report surface coordinates there.
func Textured(tex *loaders.Texture) Shader {
	return func(rec embree.HitRecord) mgl32.Vec3 { return tex.Sample(rec.UV) }
}

// MeshTextured samples tex at texture coordinates interpolated across the
// hit triangle from per-vertex coordinates. The hit's UV holds the
// barycentric coordinates of the second and third vertex.
func MeshTextured(tex *loaders.Texture, triangles []embree.Triangle, texCoords []mgl32.Vec2) Shader {
	return func(rec embree.HitRecord) mgl32.Vec3 {
		tri := triangles[rec.PrimID]
		u, v := rec.UV.X(), rec.UV.Y()
		uv := texCoords[tri[0]].Mul(1 - u - v).
			Add(texCoords[tri[1]].Mul(u)).
			Add(texCoords[tri[2]].Mul(v))
		return tex.Sample(uv)
	}
}

// fallbackColor marks geometries without a shader.
var fallbackColor = mgl32.Vec3{1, 0, 1}

// Scene is a committed embree scene ready to render. It owns the embree
// scene and must be released.
type Scene struct {
	*embree.Scene
	Info    SceneInfo
	Camera  renderer.CameraConfig
	shaders map[embree.GeomID]Shader
}

// Albedo returns the surface color at a hit. It satisfies
// renderer.AlbedoFunc.
func (s *Scene) Albedo(rec embree.HitRecord) mgl32.Vec3 {
	if shader, ok := s.shaders[rec.GeomID]; ok {
		return shader(rec)
	}
	return fallbackColor
}

// PrimitiveCount returns the number of primitives over all geometries.
func (s *Scene) PrimitiveCount() int {
	count := 0
	for id := range s.shaders {
		g, ok := s.Geometry(id)
		if !ok {
			continue
		}
		count += primitiveCount(g)
	}
	return count
}

func primitiveCount(g *embree.Geometry) int {
	switch data := g.Data().(type) {
	case *embree.TriangleMesh:
		return len(data.Indices())
	case *embree.QuadMesh:
		return len(data.Indices())
	case *embree.SphereGeometry:
		return len(data.Prims())
	case *embree.DiscGeometry:
		return len(data.Prims())
	}
	if user, ok := g.UserGeometry(); ok {
		return user.Len()
	}
	return 0
}

// builder collects geometries and their shaders.
type builder struct {
	device  *embree.Device
	scene   *embree.SceneBuilder
	shaders map[embree.GeomID]Shader
}

func newBuilder(d *embree.Device, opts Options) *builder {
	b := &builder{
		device:  d,
		scene:   embree.NewSceneBuilder(d),
		shaders: make(map[embree.GeomID]Shader),
	}
	b.scene.SetBuildQuality(opts.Quality)
	b.scene.SetFlags(opts.Flags)
	return b
}

// add attaches g and records its shader.
func (b *builder) add(g *embree.Geometry, shader Shader) embree.GeomID {
	id := b.scene.Attach(g)
	b.shaders[id] = shader
	return id
}

func (b *builder) finish(info SceneInfo, camera renderer.CameraConfig) *Scene {
	built := b.scene.Build()
	embree.Logger().Debug("scene built", "scene", info.ID, "geometries", built.GeometryCount())
	return &Scene{Scene: built, Info: info, Camera: camera, shaders: b.shaders}
}

// groundQuad returns a horizontal square quad mesh of the given size
// centered at center, facing +y.
func groundQuad(d *embree.Device, center mgl32.Vec3, size float32) *embree.QuadMesh {
	h := size / 2
	vertices := []mgl32.Vec3{
		center.Add(mgl32.Vec3{-h, 0, -h}),
		center.Add(mgl32.Vec3{-h, 0, h}),
		center.Add(mgl32.Vec3{h, 0, h}),
		center.Add(mgl32.Vec3{h, 0, -h}),
	}
	// (v1-v0) x (v3-v0) = (0,0,size) x (size,0,0) points up
	return embree.NewQuadMesh(d, vertices, []embree.Quad{{0, 1, 2, 3}})
}

// cubeMesh returns a triangle mesh of the cube [-1,1]^3 with outward facing
// triangles. Vertex i has coordinate +1 on x, y and z where bits 0, 1 and 2
// of i are set.
func cubeMesh(d *embree.Device) *embree.TriangleMesh {
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
	triangles := []embree.Triangle{
		{4, 5, 7}, {4, 7, 6}, // +z
		{0, 2, 3}, {0, 3, 1}, // -z
		{1, 3, 7}, {1, 7, 5}, // +x
		{0, 4, 6}, {0, 6, 2}, // -x
		{2, 6, 7}, {2, 7, 3}, // +y
		{0, 1, 5}, {0, 5, 4}, // -y
	}
	return embree.NewTriangleMesh(d, vertices, triangles)
}
