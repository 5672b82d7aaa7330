package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an inverted box that any Union replaces.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func AABBFromCenter(center, halfExtents mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

func (a AABB) IsEmpty() bool {
	return a.Min.X() > a.Max.X() || a.Min.Y() > a.Max.Y() || a.Min.Z() > a.Max.Z()
}

func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) HalfExtents() mgl32.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// Overlaps reports whether the boxes intersect. Touching faces count.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

func (a AABB) ContainsPoint(p mgl32.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{min(a.Min.X(), b.Min.X()), min(a.Min.Y(), b.Min.Y()), min(a.Min.Z(), b.Min.Z())},
		Max: mgl32.Vec3{max(a.Max.X(), b.Max.X()), max(a.Max.Y(), b.Max.Y()), max(a.Max.Z(), b.Max.Z())},
	}
}

// Expand grows the box by margin on every side.
func (a AABB) Expand(margin float32) AABB {
	m := mgl32.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Transform returns the world box enclosing a transformed by m.
// Arvo's method: each output axis accumulates the min/max of the matrix terms.
func (a AABB) Transform(m mgl32.Mat4) AABB {
	out := AABB{}
	for i := 0; i < 3; i++ {
		out.Min[i] = m.At(i, 3)
		out.Max[i] = m.At(i, 3)
		for j := 0; j < 3; j++ {
			e := m.At(i, j) * a.Min[j]
			f := m.At(i, j) * a.Max[j]
			if e < f {
				out.Min[i] += e
				out.Max[i] += f
			} else {
				out.Min[i] += f
				out.Max[i] += e
			}
		}
	}
	return out
}

// SegmentFraction intersects the segment from->to with the box using the slab
// test. It returns the entry fraction in [0,1] and true on a hit. A segment
// starting inside the box hits at fraction 0.
func (a AABB) SegmentFraction(from, to mgl32.Vec3) (float32, bool) {
	dir := to.Sub(from)
	tMin := float32(0)
	tMax := float32(1)
	for i := 0; i < 3; i++ {
		if mgl32.Abs(dir[i]) < 1e-9 {
			if from[i] < a.Min[i] || from[i] > a.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (a.Min[i] - from[i]) * inv
		t2 := (a.Max[i] - from[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = max(tMin, t1)
		tMax = min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// Corners returns the eight corners of the box.
func (a AABB) Corners() [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				c[i][axis] = a.Max[axis]
			} else {
				c[i][axis] = a.Min[axis]
			}
		}
	}
	return c
}
