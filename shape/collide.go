package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Contact is one overlap between posed primitives A and B. Moving A by
// Normal*Depth separates the pair.
type Contact struct {
	Point  mgl32.Vec3
	Normal mgl32.Vec3
	Depth  float32
}

func (c Contact) flipped() Contact {
	c.Normal = c.Normal.Mul(-1)
	return c
}

var up = mgl32.Vec3{0, 1, 0}

// Collide runs the exact overlap test for a posed pair. Touching surfaces do
// not overlap.
func Collide(a, b Posed) (Contact, bool) {
	ka, kb := a.Shape.Kind(), b.Shape.Kind()
	switch {
	case ka == KindSphere && kb == KindSphere:
		return sphereSphere(a.Center, a.radius, b.Center, b.radius)
	case ka == KindSphere && kb == KindBox:
		return sphereBox(a.Center, a.radius, b)
	case ka == KindBox && kb == KindSphere:
		c, ok := sphereBox(b.Center, b.radius, a)
		return c.flipped(), ok
	case ka == KindBox && kb == KindBox:
		return boxBox(a, b)
	case ka == KindCapsule && kb == KindCapsule:
		return capsuleCapsule(a, b)
	case ka == KindCapsule:
		return capsuleOther(a, b)
	case kb == KindCapsule:
		c, ok := capsuleOther(b, a)
		return c.flipped(), ok
	}
	return Contact{}, false
}

func sphereSphere(ca mgl32.Vec3, ra float32, cb mgl32.Vec3, rb float32) (Contact, bool) {
	d := ca.Sub(cb)
	dist := d.Len()
	sum := ra + rb
	if dist >= sum {
		return Contact{}, false
	}
	normal := up
	if dist > 1e-6 {
		normal = d.Mul(1 / dist)
	}
	return Contact{
		Point:  cb.Add(normal.Mul(rb)),
		Normal: normal,
		Depth:  sum - dist,
	}, true
}

// sphereBox tests a sphere (A) against an oriented box (B).
func sphereBox(center mgl32.Vec3, radius float32, box Posed) (Contact, bool) {
	local := box.toLocal(center)
	h := box.halfExtents

	inside := true
	var clamped mgl32.Vec3
	for i := 0; i < 3; i++ {
		clamped[i] = mgl32.Clamp(local[i], -h[i], h[i])
		if clamped[i] != local[i] {
			inside = false
		}
	}

	if inside {
		// Center inside the box: push out through the nearest face.
		axis := 0
		best := h[0] - mgl32.Abs(local[0])
		for i := 1; i < 3; i++ {
			if d := h[i] - mgl32.Abs(local[i]); d < best {
				best = d
				axis = i
			}
		}
		sign := float32(1)
		if local[axis] < 0 {
			sign = -1
		}
		normal := box.Axes[axis].Mul(sign)
		face := local
		face[axis] = h[axis] * sign
		return Contact{
			Point:  box.toWorld(face),
			Normal: normal,
			Depth:  best + radius,
		}, true
	}

	closest := box.toWorld(clamped)
	d := center.Sub(closest)
	dist := d.Len()
	if dist >= radius {
		return Contact{}, false
	}
	normal := up
	if dist > 1e-6 {
		normal = d.Mul(1 / dist)
	}
	return Contact{Point: closest, Normal: normal, Depth: radius - dist}, true
}

// boxBox is a separating axis test over the 15 candidate axes of two
// oriented boxes. The axis of least overlap becomes the contact normal.
func boxBox(a, b Posed) (Contact, bool) {
	l := b.Center.Sub(a.Center)

	axes := make([]mgl32.Vec3, 0, 15)
	axes = append(axes, a.Axes[:]...)
	axes = append(axes, b.Axes[:]...)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := a.Axes[i].Cross(b.Axes[j])
			if cross.LenSqr() > 1e-6 {
				axes = append(axes, cross.Normalize())
			}
		}
	}

	minOverlap := float32(math.MaxFloat32)
	var normal mgl32.Vec3
	for _, axis := range axes {
		overlap := projectedRadius(a, axis) + projectedRadius(b, axis) - mgl32.Abs(l.Dot(axis))
		if overlap <= 0 {
			return Contact{}, false
		}
		if overlap < minOverlap {
			minOverlap = overlap
			normal = axis
		}
	}

	// Point the normal from B to A.
	if l.Dot(normal) > 0 {
		normal = normal.Mul(-1)
	}

	return Contact{
		Point:  boxContactPoint(a, b),
		Normal: normal,
		Depth:  minOverlap,
	}, true
}

func projectedRadius(box Posed, axis mgl32.Vec3) float32 {
	var r float32
	for i := 0; i < 3; i++ {
		r += mgl32.Abs(box.Axes[i].Dot(axis)) * box.halfExtents[i]
	}
	return r
}

// boxContactPoint averages the corners of each box that lie inside the
// other, falling back to the midpoint of the centers.
func boxContactPoint(a, b Posed) mgl32.Vec3 {
	var sum mgl32.Vec3
	n := 0
	for _, p := range a.Corners() {
		if pointInBox(p, b) {
			sum = sum.Add(p)
			n++
		}
	}
	for _, p := range b.Corners() {
		if pointInBox(p, a) {
			sum = sum.Add(p)
			n++
		}
	}
	if n == 0 {
		return a.Center.Add(b.Center).Mul(0.5)
	}
	return sum.Mul(1 / float32(n))
}

func pointInBox(p mgl32.Vec3, box Posed) bool {
	local := box.toLocal(p)
	for i := 0; i < 3; i++ {
		if mgl32.Abs(local[i]) > box.halfExtents[i]+0.01 {
			return false
		}
	}
	return true
}

// capsuleOther reduces capsule A to the sphere on its core segment closest
// to B and tests that sphere.
func capsuleOther(capsule, other Posed) (Contact, bool) {
	s0, s1 := capsule.Segment()
	switch other.Shape.Kind() {
	case KindSphere:
		p := closestOnSegment(other.Center, s0, s1)
		return sphereSphere(p, capsule.radius, other.Center, other.radius)
	case KindBox:
		// Two rounds of alternating closest points converge well enough for
		// segment-vs-box at game scales.
		p := closestOnSegment(other.Center, s0, s1)
		for i := 0; i < 2; i++ {
			q := closestInBox(p, other)
			p = closestOnSegment(q, s0, s1)
		}
		return sphereBox(p, capsule.radius, other)
	}
	return Contact{}, false
}

func capsuleCapsule(a, b Posed) (Contact, bool) {
	a0, a1 := a.Segment()
	b0, b1 := b.Segment()
	pa, pb := closestSegmentSegment(a0, a1, b0, b1)
	return sphereSphere(pa, a.radius, pb, b.radius)
}

func closestInBox(p mgl32.Vec3, box Posed) mgl32.Vec3 {
	local := box.toLocal(p)
	for i := 0; i < 3; i++ {
		local[i] = mgl32.Clamp(local[i], -box.halfExtents[i], box.halfExtents[i])
	}
	return box.toWorld(local)
}

func closestOnSegment(p, a, b mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	denom := ab.LenSqr()
	if denom < 1e-12 {
		return a
	}
	t := mgl32.Clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	return a.Add(ab.Mul(t))
}

// closestSegmentSegment returns the closest points between segments p1q1
// and p2q2 (Ericson, Real-Time Collision Detection 5.1.9).
func closestSegmentSegment(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	const eps = 1e-9
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float32
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = mgl32.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = mgl32.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = mgl32.Clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = mgl32.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = mgl32.Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}
