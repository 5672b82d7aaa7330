package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RayHit is the entry point of a segment into a posed primitive. Fraction is
// in [0,1] along the segment.
type RayHit struct {
	Fraction float32
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
}

// Raycast intersects the segment from->to with p. Segments that start inside
// the primitive hit at fraction 0 with the normal facing the segment start.
func Raycast(p Posed, from, to mgl32.Vec3) (RayHit, bool) {
	dir := to.Sub(from)
	if dir.LenSqr() < 1e-12 {
		return RayHit{}, false
	}
	var (
		t      float32
		normal mgl32.Vec3
		ok     bool
	)
	switch p.Shape.Kind() {
	case KindSphere:
		t, normal, ok = raySphere(from, dir, p.Center, p.radius)
	case KindBox:
		t, normal, ok = rayBox(from, dir, p)
	case KindCapsule:
		t, normal, ok = rayCapsule(from, dir, p)
	}
	if !ok {
		return RayHit{}, false
	}
	return RayHit{Fraction: t, Point: from.Add(dir.Mul(t)), Normal: normal}, true
}

func raySphere(from, dir, center mgl32.Vec3, radius float32) (float32, mgl32.Vec3, bool) {
	m := from.Sub(center)
	c := m.Dot(m) - radius*radius
	if c <= 0 {
		return 0, dir.Normalize().Mul(-1), true
	}
	a := dir.Dot(dir)
	b := m.Dot(dir)
	disc := b*b - a*c
	if disc < 0 || b > 0 {
		return 0, mgl32.Vec3{}, false
	}
	t := (-b - float32(math.Sqrt(float64(disc)))) / a
	if t < 0 || t > 1 {
		return 0, mgl32.Vec3{}, false
	}
	hit := from.Add(dir.Mul(t))
	return t, hit.Sub(center).Normalize(), true
}

func rayBox(from, dir mgl32.Vec3, box Posed) (float32, mgl32.Vec3, bool) {
	o := box.toLocal(from)
	d := box.dirToLocal(dir)
	h := box.halfExtents

	tMin := float32(0)
	tMax := float32(1)
	entryAxis := -1
	var entrySign float32
	for i := 0; i < 3; i++ {
		if mgl32.Abs(d[i]) < 1e-9 {
			if o[i] < -h[i] || o[i] > h[i] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		inv := 1 / d[i]
		t1 := (-h[i] - o[i]) * inv
		t2 := (h[i] - o[i]) * inv
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tMin {
			tMin = t1
			entryAxis = i
			entrySign = sign
		}
		tMax = min(tMax, t2)
		if tMin > tMax {
			return 0, mgl32.Vec3{}, false
		}
	}
	if entryAxis < 0 {
		// Started inside.
		return 0, dir.Normalize().Mul(-1), true
	}
	return tMin, box.Axes[entryAxis].Mul(entrySign), true
}

func rayCapsule(from, dir mgl32.Vec3, c Posed) (float32, mgl32.Vec3, bool) {
	s0, s1 := c.Segment()
	if closestOnSegment(from, s0, s1).Sub(from).Len() <= c.radius {
		return 0, dir.Normalize().Mul(-1), true
	}

	best := float32(2)
	var bestNormal mgl32.Vec3
	for _, end := range [2]mgl32.Vec3{s0, s1} {
		if t, n, ok := raySphere(from, dir, end, c.radius); ok && t < best {
			best, bestNormal = t, n
		}
	}

	// Finite cylinder around local Y.
	o := c.toLocal(from)
	d := c.dirToLocal(dir)
	a := d.X()*d.X() + d.Z()*d.Z()
	if a > 1e-12 {
		b := o.X()*d.X() + o.Z()*d.Z()
		cc := o.X()*o.X() + o.Z()*o.Z() - c.radius*c.radius
		disc := b*b - a*cc
		if disc >= 0 {
			t := (-b - float32(math.Sqrt(float64(disc)))) / a
			y := o.Y() + d.Y()*t
			if t >= 0 && t <= 1 && mgl32.Abs(y) <= c.halfHeight && t < best {
				best = t
				local := o.Add(d.Mul(t))
				bestNormal = c.Axes[0].Mul(local.X()).Add(c.Axes[2].Mul(local.Z())).Normalize()
			}
		}
	}

	if best > 1 {
		return 0, mgl32.Vec3{}, false
	}
	return best, bestNormal, true
}
