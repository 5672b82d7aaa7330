// Package broadphase provides the spatial indexes that narrow collision
// candidates before exact testing. The collision world only sees the Index
// interface; which structure backs it is a configuration choice.
package broadphase

import (
	"fmt"
	"slices"

	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
)

// ProxyID identifies one registered volume. IDs are assigned by the caller.
type ProxyID uint32

// Pair is a candidate pair with A < B.
type Pair struct {
	A, B ProxyID
}

func makePair(a, b ProxyID) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

func comparePairs(x, y Pair) int {
	if x.A != y.A {
		return int(x.A) - int(y.A)
	}
	return int(x.B) - int(y.B)
}

// Index is the collision engine's spatial structure.
type Index interface {
	Insert(id ProxyID, bounds shape.AABB)
	Update(id ProxyID, bounds shape.AABB)
	Remove(id ProxyID)
	Bounds(id ProxyID) (shape.AABB, bool)
	Len() int
	Clear()

	// Pairs appends every pair of proxies whose bounds overlap to dst, each
	// once, sorted ascending.
	Pairs(dst []Pair) []Pair
	// QuerySegment visits each proxy whose bounds the segment crosses, once.
	QuerySegment(from, to mgl32.Vec3, visit func(id ProxyID))
	// QueryAABB visits each proxy whose bounds overlap b, once.
	QueryAABB(b shape.AABB, visit func(id ProxyID))
}

const (
	KindBVH  = "bvh"
	KindGrid = "grid"
)

// New builds the index named by kind. cellSize is used by the grid only.
func New(kind string, cellSize float32) (Index, error) {
	switch kind {
	case KindBVH, "":
		return NewBVH(), nil
	case KindGrid:
		if cellSize <= 0 {
			return nil, fmt.Errorf("broadphase: grid cell size must be positive, got %v", cellSize)
		}
		return NewGrid(cellSize), nil
	}
	return nil, fmt.Errorf("broadphase: unknown kind %q", kind)
}

func sortPairs(p []Pair) {
	slices.SortFunc(p, comparePairs)
}
