package shape

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Posed is a primitive placed in world space. Scale is folded into the
// primitive's dimensions so the axes stay orthonormal: boxes scale per axis,
// spheres by the largest axis, capsules radially by max(x, z) and lengthwise
// by y.
type Posed struct {
	Shape  Shape
	Center mgl32.Vec3
	Axes   [3]mgl32.Vec3

	halfExtents mgl32.Vec3
	radius      float32
	halfHeight  float32
}

// Pose places primitive s with world matrix m. Compounds must be expanded by
// the caller, one Pose per child.
func Pose(s Shape, m mgl32.Mat4) Posed {
	p := Posed{Shape: s, Center: m.Col(3).Vec3()}
	var scale mgl32.Vec3
	for i := 0; i < 3; i++ {
		col := m.Col(i).Vec3()
		l := col.Len()
		scale[i] = l
		if l > 1e-9 {
			p.Axes[i] = col.Mul(1 / l)
		} else {
			p.Axes[i][i] = 1
		}
	}

	switch v := s.(type) {
	case *Box:
		p.halfExtents = mgl32.Vec3{
			v.HalfExtents.X() * scale.X(),
			v.HalfExtents.Y() * scale.Y(),
			v.HalfExtents.Z() * scale.Z(),
		}
	case *Sphere:
		p.radius = v.Radius * max(scale.X(), scale.Y(), scale.Z())
	case *Capsule:
		p.radius = v.Radius * max(scale.X(), scale.Z())
		p.halfHeight = v.HalfHeight * scale.Y()
	}
	return p
}

func (p Posed) HalfExtents() mgl32.Vec3 { return p.halfExtents }

func (p Posed) Radius() float32 { return p.radius }

// Segment returns the capsule core segment endpoints.
func (p Posed) Segment() (mgl32.Vec3, mgl32.Vec3) {
	off := p.Axes[1].Mul(p.halfHeight)
	return p.Center.Sub(off), p.Center.Add(off)
}

// Bounds is the world-space box enclosing the posed primitive.
func (p Posed) Bounds() AABB {
	switch p.Shape.Kind() {
	case KindBox:
		var e mgl32.Vec3
		for i := 0; i < 3; i++ {
			e = e.Add(absVec(p.Axes[i]).Mul(p.halfExtents[i]))
		}
		return AABBFromCenter(p.Center, e)
	case KindSphere:
		r := mgl32.Vec3{p.radius, p.radius, p.radius}
		return AABBFromCenter(p.Center, r)
	case KindCapsule:
		a, b := p.Segment()
		r := mgl32.Vec3{p.radius, p.radius, p.radius}
		return AABBFromCenter(a, r).Union(AABBFromCenter(b, r))
	}
	return EmptyAABB()
}

// toLocal expresses a world point in the primitive's axes, relative to Center.
func (p Posed) toLocal(w mgl32.Vec3) mgl32.Vec3 {
	d := w.Sub(p.Center)
	return mgl32.Vec3{d.Dot(p.Axes[0]), d.Dot(p.Axes[1]), d.Dot(p.Axes[2])}
}

func (p Posed) dirToLocal(w mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{w.Dot(p.Axes[0]), w.Dot(p.Axes[1]), w.Dot(p.Axes[2])}
}

func (p Posed) toWorld(l mgl32.Vec3) mgl32.Vec3 {
	return p.Center.
		Add(p.Axes[0].Mul(l.X())).
		Add(p.Axes[1].Mul(l.Y())).
		Add(p.Axes[2].Mul(l.Z()))
}

// Corners returns the eight box corners in world space.
func (p Posed) Corners() [8]mgl32.Vec3 {
	var corners [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		c := p.Center
		for axis := 0; axis < 3; axis++ {
			off := p.Axes[axis].Mul(p.halfExtents[axis])
			if i&(1<<axis) != 0 {
				c = c.Add(off)
			} else {
				c = c.Sub(off)
			}
		}
		corners[i] = c
	}
	return corners
}

// PoseCompound poses every child of c under the world matrix m.
func PoseCompound(c *Compound, m mgl32.Mat4) []Posed {
	out := make([]Posed, 0, len(c.children))
	for _, ch := range c.children {
		out = append(out, Pose(ch.Shape, m.Mul4(ch.Local)))
	}
	return out
}

func absVec(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.Abs(v.X()), mgl32.Abs(v.Y()), mgl32.Abs(v.Z())}
}
