package soft

import (
	"math"
	"testing"

	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/go-gl/mathgl/mgl32"
)

// unitBoxes returns n unit boxes placed side by side along x
func unitBoxes(n int) []primRef {
	prims := make([]primRef, n)
	for i := range prims {
		prims[i] = primRef{
			primID: uint32(i),
			bounds: aabb{min: mgl32.Vec3{float32(i), 0, 0}, max: mgl32.Vec3{float32(i) + 1, 1, 1}},
		}
	}
	return prims
}

func rayQuery(origin, dir mgl32.Vec3, tnear, tfar float32) *query {
	ray := rtcore.NewRay()
	ray.OrgX, ray.OrgY, ray.OrgZ = origin[0], origin[1], origin[2]
	ray.DirX, ray.DirY, ray.DirZ = dir[0], dir[1], dir[2]
	ray.TNear, ray.TFar = tnear, tfar
	return newQuery(ray)
}

func TestBVH_LeafThresholdBoundary(t *testing.T) {
	// Exactly leafThreshold primitives should create a single leaf
	b := newBVH(unitBoxes(leafThreshold))
	stats := b.stats()
	if stats.totalNodes != 1 {
		t.Errorf("Expected 1 node for %d primitives, got %d", leafThreshold, stats.totalNodes)
	}
	if stats.leafNodes != 1 {
		t.Errorf("Expected 1 leaf node for %d primitives, got %d", leafThreshold, stats.leafNodes)
	}

	// One more should split
	b = newBVH(unitBoxes(leafThreshold + 1))
	stats = b.stats()
	if stats.totalNodes == 1 {
		t.Errorf("Expected split for %d primitives, but got single node", leafThreshold+1)
	}
	if stats.leafNodes < 2 {
		t.Errorf("Expected at least 2 leaf nodes after split, got %d", stats.leafNodes)
	}
}

func TestBVH_EmptyAndSingle(t *testing.T) {
	b := newBVH(nil)
	if b.root != nil {
		t.Error("Expected nil root for empty BVH")
	}
	visited := 0
	b.traverse(rayQuery(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 0, 1000), func(primRef) bool {
		visited++
		return true
	})
	if visited != 0 {
		t.Errorf("Expected no visits for empty BVH, got %d", visited)
	}
	if box := b.bounds(); box.valid() {
		t.Errorf("Expected empty bounds, got %v", box)
	}

	b = newBVH(unitBoxes(1))
	stats := b.stats()
	if stats.totalNodes != 1 || stats.leafNodes != 1 {
		t.Errorf("Expected a single leaf, got %+v", stats)
	}
}

func TestBVH_LeafSizeByQuality(t *testing.T) {
	tests := []struct {
		quality rtcore.BuildQuality
		leaf    int
	}{
		{rtcore.BuildQualityLow, 16},
		{rtcore.BuildQualityMedium, 8},
		{rtcore.BuildQualityHigh, 4},
	}
	for _, tt := range tests {
		if got := leafSize(tt.quality); got != tt.leaf {
			t.Errorf("leafSize(%d) = %d, want %d", tt.quality, got, tt.leaf)
		}

		stats := newBVHWithLeafSize(unitBoxes(64), tt.leaf).stats()
		if stats.totalPrims != 64 {
			t.Errorf("Expected 64 primitives, got %d", stats.totalPrims)
		}
		if want := 64 / tt.leaf; stats.leafNodes != want {
			t.Errorf("Expected %d leaves with leaf size %d, got %d", want, tt.leaf, stats.leafNodes)
		}
	}
}

func TestBVH_TraverseCullsBoxes(t *testing.T) {
	b := newBVH(unitBoxes(32))

	// A ray along y through x=20.5 only reaches box 20
	var visited []uint32
	b.traverse(rayQuery(mgl32.Vec3{20.5, -1, 0.5}, mgl32.Vec3{0, 1, 0}, 0, 100), func(p primRef) bool {
		if p.bounds.hit(mgl32.Vec3{20.5, -1, 0.5}, mgl32.Vec3{0, 1, 0}, 0, 100) {
			visited = append(visited, p.primID)
		}
		return true
	})
	if len(visited) != 1 || visited[0] != 20 {
		t.Errorf("Expected only box 20 to be hit, got %v", visited)
	}

	// Shrinking tfar inside the visitor prunes farther subtrees
	q := rayQuery(mgl32.Vec3{-1, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, 0, 100)
	count := 0
	b.traverse(q, func(p primRef) bool {
		count++
		q.ray.TFar = 2
		return true
	})
	if count >= 32 {
		t.Errorf("Expected pruning after tfar shrank, visited %d", count)
	}

	// Returning false stops traversal
	count = 0
	b.traverse(rayQuery(mgl32.Vec3{-1, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, 0, 100), func(primRef) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("Expected traversal to stop after one visit, got %d", count)
	}
}

func TestAABB_Hit(t *testing.T) {
	box := aabb{min: mgl32.Vec3{-1, -1, -1}, max: mgl32.Vec3{1, 1, 1}}
	inf := float32(math.Inf(1))

	tests := []struct {
		name        string
		origin, dir mgl32.Vec3
		tMin, tMax  float32
		want        bool
	}{
		{"straight through", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}, 0, inf, true},
		{"pointing away", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}, 0, inf, false},
		{"segment too short", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}, 0, 3, false},
		{"parallel outside", mgl32.Vec3{2, 0, 5}, mgl32.Vec3{0, 0, -1}, 0, inf, false},
		{"origin inside", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 0}, 0, inf, true},
		{"diagonal", mgl32.Vec3{-5, -5, -5}, mgl32.Vec3{1, 1, 1}, 0, inf, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.hit(tt.origin, tt.dir, tt.tMin, tt.tMax); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if !box.valid() {
		t.Error("Expected unit box to be valid")
	}
	if (aabb{min: mgl32.Vec3{1, 0, 0}, max: mgl32.Vec3{0, 1, 1}}).valid() {
		t.Error("Expected inverted box to be invalid")
	}
	if (aabb{min: mgl32.Vec3{0, 0, 0}, max: mgl32.Vec3{inf, 1, 1}}).valid() {
		t.Error("Expected infinite box to be invalid")
	}
}
