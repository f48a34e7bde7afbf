package soft

import (
	"sort"
)

// primRef identifies one primitive of one attached geometry
type primRef struct {
	geomID uint32
	primID uint32
	bounds aabb
}

// bvhNode represents a node in the Bounding Volume Hierarchy
type bvhNode struct {
	bounds aabb
	left   *bvhNode
	right  *bvhNode
	prims  []primRef // Leaf primitives (nil for internal nodes)
}

// bvh is the acceleration structure built at scene commit
type bvh struct {
	root *bvhNode
}

// Leaf threshold: if we have this many or fewer primitives, store them in a leaf node
const leafThreshold = 8

// newBVH builds a BVH over the primitive references. The slice is reordered.
func newBVH(prims []primRef) *bvh {
	return newBVHWithLeafSize(prims, leafThreshold)
}

// newBVHWithLeafSize builds a BVH storing up to leafSize primitives per leaf
func newBVHWithLeafSize(prims []primRef, leafSize int) *bvh {
	if len(prims) == 0 {
		return &bvh{}
	}
	return &bvh{root: buildBVH(prims, max(1, leafSize))}
}

// buildBVH recursively builds the BVH using a median split along the longest axis
func buildBVH(prims []primRef, leafSize int) *bvhNode {
	bounds := prims[0].bounds
	for i := 1; i < len(prims); i++ {
		bounds = bounds.union(prims[i].bounds)
	}

	if len(prims) <= leafSize {
		return &bvhNode{bounds: bounds, prims: prims}
	}

	axis := bounds.longestAxis()
	sort.Slice(prims, func(i, j int) bool {
		return prims[i].bounds.center()[axis] < prims[j].bounds.center()[axis]
	})

	mid := len(prims) / 2
	return &bvhNode{
		bounds: bounds,
		left:   buildBVH(prims[:mid], leafSize),
		right:  buildBVH(prims[mid:], leafSize),
	}
}

// bounds returns the bounds of the whole hierarchy
func (b *bvh) bounds() aabb {
	if b == nil || b.root == nil {
		return emptyAABB()
	}
	return b.root.bounds
}

// traverse visits every leaf primitive whose box, and its ancestors' boxes,
// are hit by the ray segment. The segment is re-read before each box test so
// visitors can shrink it; visit returns false to stop the traversal.
func (b *bvh) traverse(q *query, visit func(p primRef) bool) {
	if b == nil || b.root == nil {
		return
	}
	b.traverseNode(b.root, q, visit)
}

func (b *bvh) traverseNode(node *bvhNode, q *query, visit func(p primRef) bool) bool {
	tNear, tFar := q.segment()
	if !node.bounds.hit(q.origin, q.dir, tNear, tFar) {
		return true
	}

	if node.prims != nil {
		for _, p := range node.prims {
			tNear, tFar = q.segment()
			if !p.bounds.hit(q.origin, q.dir, tNear, tFar) {
				continue
			}
			if !visit(p) {
				return false
			}
		}
		return true
	}

	if node.left != nil && !b.traverseNode(node.left, q, visit) {
		return false
	}
	if node.right != nil && !b.traverseNode(node.right, q, visit) {
		return false
	}
	return true
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes int
	leafNodes  int
	maxDepth   int
	totalPrims int
}

// stats returns statistics about the BVH structure
func (b *bvh) stats() bvhStats {
	var s bvhStats
	if b.root != nil {
		collectStats(b.root, 0, &s)
	}
	return s
}

func collectStats(node *bvhNode, depth int, s *bvhStats) {
	s.totalNodes++
	s.maxDepth = max(s.maxDepth, depth)

	if node.prims != nil {
		s.leafNodes++
		s.totalPrims += len(node.prims)
		return
	}
	if node.left != nil {
		collectStats(node.left, depth+1, s)
	}
	if node.right != nil {
		collectStats(node.right, depth+1, s)
	}
}
