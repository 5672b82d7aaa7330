package broadphase

import (
	"math"
	"slices"

	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
)

const maxLeafSize = 2

// BVHNode is one node of the flattened hierarchy. Leaves have Left == -1 and
// reference LeafCount items starting at LeafFirst.
type BVHNode struct {
	Min       mgl32.Vec3
	Max       mgl32.Vec3
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

func (n *BVHNode) bounds() shape.AABB {
	return shape.AABB{Min: n.Min, Max: n.Max}
}

type bvhItem struct {
	id       ProxyID
	bounds   shape.AABB
	centroid mgl32.Vec3
}

// BVH is a bounding volume hierarchy rebuilt lazily from the current proxy
// bounds whenever a query follows a mutation. A median split on the longest
// axis keeps rebuilds O(n log n), which suits per-frame rebuilding.
type BVH struct {
	proxies map[ProxyID]shape.AABB
	items   []bvhItem
	nodes   []BVHNode
	dirty   bool
}

func NewBVH() *BVH {
	return &BVH{proxies: make(map[ProxyID]shape.AABB)}
}

func (b *BVH) Insert(id ProxyID, bounds shape.AABB) {
	b.proxies[id] = bounds
	b.dirty = true
}

func (b *BVH) Update(id ProxyID, bounds shape.AABB) {
	if old, ok := b.proxies[id]; ok && old == bounds {
		return
	}
	b.proxies[id] = bounds
	b.dirty = true
}

func (b *BVH) Remove(id ProxyID) {
	if _, ok := b.proxies[id]; !ok {
		return
	}
	delete(b.proxies, id)
	b.dirty = true
}

func (b *BVH) Bounds(id ProxyID) (shape.AABB, bool) {
	bounds, ok := b.proxies[id]
	return bounds, ok
}

func (b *BVH) Len() int { return len(b.proxies) }

func (b *BVH) Clear() {
	clear(b.proxies)
	b.items = b.items[:0]
	b.nodes = b.nodes[:0]
	b.dirty = false
}

// Nodes returns the flattened hierarchy, rebuilding it if needed.
func (b *BVH) Nodes() []BVHNode {
	b.rebuild()
	return b.nodes
}

func (b *BVH) rebuild() {
	if !b.dirty {
		return
	}
	b.dirty = false
	b.items = b.items[:0]
	b.nodes = b.nodes[:0]
	for id, bounds := range b.proxies {
		b.items = append(b.items, bvhItem{id: id, bounds: bounds, centroid: bounds.Center()})
	}
	if len(b.items) == 0 {
		return
	}
	// Map iteration order is random; sort by id so the tree is reproducible.
	slices.SortFunc(b.items, func(x, y bvhItem) int { return int(x.id) - int(y.id) })
	b.build(0, len(b.items))
}

func (b *BVH) build(first, end int) int32 {
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, BVHNode{Left: -1, Right: -1, LeafFirst: -1})

	items := b.items[first:end]
	bounds := shape.EmptyAABB()
	for _, it := range items {
		bounds = bounds.Union(it.bounds)
	}
	b.nodes[idx].Min = bounds.Min
	b.nodes[idx].Max = bounds.Max

	if len(items) <= maxLeafSize {
		b.nodes[idx].LeafFirst = int32(first)
		b.nodes[idx].LeafCount = int32(len(items))
		return idx
	}

	// Split on the longest axis of the centroid spread.
	cmin := mgl32.Vec3{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))}
	cmax := mgl32.Vec3{float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1))}
	for _, it := range items {
		for a := 0; a < 3; a++ {
			cmin[a] = min(cmin[a], it.centroid[a])
			cmax[a] = max(cmax[a], it.centroid[a])
		}
	}
	extent := cmax.Sub(cmin)
	axis := 0
	if extent.Y() > extent.X() {
		axis = 1
	}
	if extent.Z() > extent[axis] {
		axis = 2
	}

	slices.SortStableFunc(items, func(x, y bvhItem) int {
		switch {
		case x.centroid[axis] < y.centroid[axis]:
			return -1
		case x.centroid[axis] > y.centroid[axis]:
			return 1
		}
		return 0
	})

	mid := first + len(items)/2
	left := b.build(first, mid)
	right := b.build(mid, end)
	b.nodes[idx].Left = left
	b.nodes[idx].Right = right
	return idx
}

func (b *BVH) Pairs(dst []Pair) []Pair {
	b.rebuild()
	start := len(dst)
	for _, it := range b.items {
		self := it.id
		b.traverse(func(n *BVHNode) bool { return n.bounds().Overlaps(it.bounds) }, func(other bvhItem) {
			if other.id > self && other.bounds.Overlaps(it.bounds) {
				dst = append(dst, Pair{A: self, B: other.id})
			}
		})
	}
	sortPairs(dst[start:])
	return dst
}

func (b *BVH) QuerySegment(from, to mgl32.Vec3, visit func(id ProxyID)) {
	b.rebuild()
	b.traverse(func(n *BVHNode) bool {
		_, hit := n.bounds().SegmentFraction(from, to)
		return hit
	}, func(it bvhItem) {
		if _, hit := it.bounds.SegmentFraction(from, to); hit {
			visit(it.id)
		}
	})
}

func (b *BVH) QueryAABB(bounds shape.AABB, visit func(id ProxyID)) {
	b.rebuild()
	b.traverse(func(n *BVHNode) bool { return n.bounds().Overlaps(bounds) }, func(it bvhItem) {
		if it.bounds.Overlaps(bounds) {
			visit(it.id)
		}
	})
}

// traverse walks nodes accepted by enter and hands leaf items to leaf.
func (b *BVH) traverse(enter func(n *BVHNode) bool, leaf func(it bvhItem)) {
	if len(b.nodes) == 0 {
		return
	}
	stack := []int32{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &b.nodes[idx]
		if !enter(n) {
			continue
		}
		if n.Left == -1 {
			for i := n.LeafFirst; i < n.LeafFirst+n.LeafCount; i++ {
				leaf(b.items[i])
			}
			continue
		}
		stack = append(stack, n.Right, n.Left)
	}
}
