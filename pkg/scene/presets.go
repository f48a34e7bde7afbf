package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/loaders"
)

// SceneInfo describes a preset scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
}

// Options tune how a preset is built.
type Options struct {
	PLYPath   string              // Mesh file for the "mesh" preset
	Texture   *loaders.Texture    // Optional texture for the default scene's center sphere
	MeshCells int                 // Marching cubes resolution for tessellated distance fields
	Quality   embree.BuildQuality // Scene acceleration structure quality; the zero value is low
	Flags     embree.SceneFlags   // Scene flags
}

type preset struct {
	info  SceneInfo
	build func(d *embree.Device, info SceneInfo, opts Options) (*Scene, error)
}

var presets = map[string]preset{}

func register(info SceneInfo, build func(d *embree.Device, info SceneInfo, opts Options) (*Scene, error)) {
	if _, dup := presets[info.ID]; dup {
		panic("scene: duplicate preset " + info.ID)
	}
	presets[info.ID] = preset{info: info, build: build}
}

func init() {
	register(SceneInfo{
		ID:          "default",
		DisplayName: "Default",
		Description: "Analytic, point and mesh spheres on a ground quad",
		Group:       "Basic",
	}, newDefaultScene)
	register(SceneInfo{
		ID:          "spheregrid",
		DisplayName: "Sphere Grid",
		Description: "A 20x20 grid of point spheres colored in OKLCH",
		Group:       "Basic",
	}, newSphereGridScene)
	register(SceneInfo{
		ID:          "sdf",
		DisplayName: "Distance Fields",
		Description: "A CSG solid sphere traced and tessellated side by side",
		Group:       "Distance Fields",
	}, newSDFScene)
	register(SceneInfo{
		ID:          "mesh",
		DisplayName: "PLY Mesh",
		Description: "A triangle mesh loaded from a PLY file",
		Group:       "Meshes",
	}, newMeshScene)
}

// List returns the preset scenes sorted by display name.
func List() []SceneInfo {
	infos := make([]SceneInfo, 0, len(presets))
	for _, p := range presets {
		infos = append(infos, p.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].DisplayName < infos[j].DisplayName
	})
	return infos
}

// Build creates the preset scene id on d.
func Build(d *embree.Device, id string, opts Options) (*Scene, error) {
	p, ok := presets[id]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", id)
	}
	return p.build(d, p.info, opts)
}
