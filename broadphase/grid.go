package broadphase

import (
	"math"
	"slices"

	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
)

type cellKey [3]int32

// Grid is a uniform spatial hash. Each proxy is listed in every cell its
// bounds touch; cells are rebuilt lazily after mutations.
type Grid struct {
	cellSize float32
	proxies  map[ProxyID]shape.AABB
	cells    map[cellKey][]ProxyID
	dirty    bool

	// maxSegmentCells bounds the DDA walk of a single segment query. Proxies
	// past the walked cells are then tested directly.
	maxSegmentCells int
}

func NewGrid(cellSize float32) *Grid {
	return &Grid{
		cellSize:        cellSize,
		proxies:         make(map[ProxyID]shape.AABB),
		cells:           make(map[cellKey][]ProxyID),
		maxSegmentCells: 1 << 16,
	}
}

func (g *Grid) CellSize() float32 { return g.cellSize }

func (g *Grid) Insert(id ProxyID, bounds shape.AABB) {
	g.proxies[id] = bounds
	g.dirty = true
}

func (g *Grid) Update(id ProxyID, bounds shape.AABB) {
	if old, ok := g.proxies[id]; ok && old == bounds {
		return
	}
	g.proxies[id] = bounds
	g.dirty = true
}

func (g *Grid) Remove(id ProxyID) {
	if _, ok := g.proxies[id]; !ok {
		return
	}
	delete(g.proxies, id)
	g.dirty = true
}

func (g *Grid) Bounds(id ProxyID) (shape.AABB, bool) {
	b, ok := g.proxies[id]
	return b, ok
}

func (g *Grid) Len() int { return len(g.proxies) }

func (g *Grid) Clear() {
	clear(g.proxies)
	clear(g.cells)
	g.dirty = false
}

func (g *Grid) cellIndex(v float32) int32 {
	return int32(math.Floor(float64(v / g.cellSize)))
}

func (g *Grid) cellRange(b shape.AABB) (lo, hi cellKey) {
	for a := 0; a < 3; a++ {
		lo[a] = g.cellIndex(b.Min[a])
		hi[a] = g.cellIndex(b.Max[a])
	}
	return lo, hi
}

func (g *Grid) rebuild() {
	if !g.dirty {
		return
	}
	g.dirty = false
	clear(g.cells)
	for id, b := range g.proxies {
		lo, hi := g.cellRange(b)
		for x := lo[0]; x <= hi[0]; x++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for z := lo[2]; z <= hi[2]; z++ {
					key := cellKey{x, y, z}
					g.cells[key] = append(g.cells[key], id)
				}
			}
		}
	}
}

func (g *Grid) Pairs(dst []Pair) []Pair {
	g.rebuild()
	seen := make(map[Pair]struct{})
	start := len(dst)
	for _, ids := range g.cells {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				p := makePair(ids[i], ids[j])
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				if g.proxies[p.A].Overlaps(g.proxies[p.B]) {
					dst = append(dst, p)
				}
			}
		}
	}
	sortPairs(dst[start:])
	return dst
}

func (g *Grid) QueryAABB(b shape.AABB, visit func(id ProxyID)) {
	g.rebuild()
	seen := make(map[ProxyID]struct{})
	lo, hi := g.cellRange(b)
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				for _, id := range g.cells[cellKey{x, y, z}] {
					if _, ok := seen[id]; ok {
						continue
					}
					seen[id] = struct{}{}
					if g.proxies[id].Overlaps(b) {
						visit(id)
					}
				}
			}
		}
	}
}

// QuerySegment walks the cells the segment crosses (Amanatides & Woo).
func (g *Grid) QuerySegment(from, to mgl32.Vec3, visit func(id ProxyID)) {
	g.rebuild()
	seen := make(map[ProxyID]struct{})
	check := func(key cellKey) {
		for _, id := range g.cells[key] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if _, hit := g.proxies[id].SegmentFraction(from, to); hit {
				visit(id)
			}
		}
	}

	dir := to.Sub(from)
	var (
		cell   cellKey
		step   [3]int32
		tMax   [3]float64
		tDelta [3]float64
	)
	for a := 0; a < 3; a++ {
		cell[a] = g.cellIndex(from[a])
		switch {
		case dir[a] > 0:
			step[a] = 1
			next := float64(cell[a]+1) * float64(g.cellSize)
			tMax[a] = (next - float64(from[a])) / float64(dir[a])
			tDelta[a] = float64(g.cellSize) / float64(dir[a])
		case dir[a] < 0:
			step[a] = -1
			prev := float64(cell[a]) * float64(g.cellSize)
			tMax[a] = (prev - float64(from[a])) / float64(dir[a])
			tDelta[a] = -float64(g.cellSize) / float64(dir[a])
		default:
			tMax[a] = math.Inf(1)
			tDelta[a] = math.Inf(1)
		}
	}

	for i := 0; i < g.maxSegmentCells; i++ {
		check(cell)
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		if tMax[axis] > 1 {
			return
		}
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
	}

	rest := make([]ProxyID, 0, len(g.proxies)-len(seen))
	for id := range g.proxies {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	for _, id := range rest {
		if _, hit := g.proxies[id].SegmentFraction(from, to); hit {
			visit(id)
		}
	}
}
