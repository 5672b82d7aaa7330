package broadphase

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x, y, z, h float32) shape.AABB {
	return shape.AABBFromCenter(mgl32.Vec3{x, y, z}, mgl32.Vec3{h, h, h})
}

func indexes() map[string]Index {
	return map[string]Index{
		KindBVH:  NewBVH(),
		KindGrid: NewGrid(2),
	}
}

func collectSegment(idx Index, from, to mgl32.Vec3) []ProxyID {
	var ids []ProxyID
	idx.QuerySegment(from, to, func(id ProxyID) { ids = append(ids, id) })
	slices.Sort(ids)
	return ids
}

func TestIndex_Pairs(t *testing.T) {
	for name, idx := range indexes() {
		t.Run(name, func(t *testing.T) {
			idx.Insert(1, box(0, 0, 0, 1))
			idx.Insert(2, box(1.5, 0, 0, 1))
			idx.Insert(3, box(10, 0, 0, 1))
			idx.Insert(4, box(0, 1.5, 0, 1))

			pairs := idx.Pairs(nil)
			assert.Equal(t, []Pair{{1, 2}, {1, 4}, {2, 4}}, pairs)

			idx.Update(3, box(10.5, 0.5, 0, 0.1))
			idx.Update(2, box(9.5, 0, 0, 1))
			assert.Equal(t, []Pair{{1, 4}, {2, 3}}, idx.Pairs(nil))

			idx.Remove(3)
			assert.Equal(t, []Pair{{1, 4}}, idx.Pairs(nil))
			assert.Equal(t, 3, idx.Len())

			idx.Clear()
			assert.Zero(t, idx.Len())
			assert.Empty(t, idx.Pairs(nil))
		})
	}
}

func TestIndex_PairsAppend(t *testing.T) {
	idx := NewBVH()
	idx.Insert(7, box(0, 0, 0, 1))
	idx.Insert(3, box(0.5, 0, 0, 1))

	buf := []Pair{{100, 200}}
	buf = idx.Pairs(buf)
	assert.Equal(t, []Pair{{100, 200}, {3, 7}}, buf)
}

func TestIndex_QuerySegment(t *testing.T) {
	for name, idx := range indexes() {
		t.Run(name, func(t *testing.T) {
			idx.Insert(1, box(0, 0, 0, 1))
			idx.Insert(2, box(5, 0, 0, 1))
			idx.Insert(3, box(5, 5, 0, 1))
			idx.Insert(4, box(-5, 0, 0, 1))

			assert.Equal(t, []ProxyID{1, 2}, collectSegment(idx, mgl32.Vec3{-2, 0, 0}, mgl32.Vec3{8, 0, 0}))
			assert.Equal(t, []ProxyID{2, 3}, collectSegment(idx, mgl32.Vec3{5, -3, 0}, mgl32.Vec3{5, 8, 0}))
			assert.Empty(t, collectSegment(idx, mgl32.Vec3{0, 3, 0}, mgl32.Vec3{3, 3, 0}))

			var found []ProxyID
			idx.QueryAABB(box(-5, 0, 0, 0.5), func(id ProxyID) { found = append(found, id) })
			assert.Equal(t, []ProxyID{4}, found)
		})
	}
}

func TestIndex_BVHAndGridAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bvh := NewBVH()
	grid := NewGrid(1.5)

	for i := 0; i < 200; i++ {
		b := box(rng.Float32()*20, rng.Float32()*20, rng.Float32()*20, 0.2+rng.Float32())
		bvh.Insert(ProxyID(i), b)
		grid.Insert(ProxyID(i), b)
	}

	require.Equal(t, bvh.Pairs(nil), grid.Pairs(nil))

	from, to := mgl32.Vec3{-1, 3, 4}, mgl32.Vec3{21, 17, 12}
	assert.Equal(t, collectSegment(bvh, from, to), collectSegment(grid, from, to))

	for i := 0; i < 200; i += 3 {
		b := box(rng.Float32()*20, rng.Float32()*20, rng.Float32()*20, 0.5)
		bvh.Update(ProxyID(i), b)
		grid.Update(ProxyID(i), b)
	}
	assert.Equal(t, bvh.Pairs(nil), grid.Pairs(nil))
}

func TestBVH_Nodes(t *testing.T) {
	idx := NewBVH()
	assert.Empty(t, idx.Nodes())

	for i := 0; i < 9; i++ {
		idx.Insert(ProxyID(i), box(float32(i)*3, 0, 0, 1))
	}
	nodes := idx.Nodes()
	require.NotEmpty(t, nodes)

	root := nodes[0]
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, root.Min)
	assert.Equal(t, mgl32.Vec3{25, 1, 1}, root.Max)

	leaves := 0
	for _, n := range nodes {
		if n.Left == -1 {
			leaves += int(n.LeafCount)
			assert.LessOrEqual(t, n.LeafCount, int32(maxLeafSize))
		}
	}
	assert.Equal(t, 9, leaves)
}

func TestNew(t *testing.T) {
	idx, err := New(KindGrid, 4)
	require.NoError(t, err)
	assert.IsType(t, &Grid{}, idx)

	idx, err = New("", 0)
	require.NoError(t, err)
	assert.IsType(t, &BVH{}, idx)

	_, err = New(KindGrid, 0)
	assert.Error(t, err)

	_, err = New("octree", 1)
	assert.Error(t, err)
}

func TestGrid_LongSegmentPastWalkBudget(t *testing.T) {
	g := NewGrid(1)
	g.maxSegmentCells = 4
	g.Insert(1, box(2, 0, 0, 0.5))
	g.Insert(2, box(50, 0, 0, 0.5))
	g.Insert(3, box(50, 10, 0, 0.5))

	assert.Equal(t, []ProxyID{1, 2}, collectSegment(g, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{100, 0, 0}))
}
