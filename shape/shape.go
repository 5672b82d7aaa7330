// Package shape holds immutable collision geometry and the exact overlap and
// ray tests between posed primitives.
package shape

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type Kind int

const (
	KindBox Kind = iota
	KindSphere
	KindCapsule
	KindCompound
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	case KindCapsule:
		return "capsule"
	case KindCompound:
		return "compound"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Shape is collision geometry in its own local space.
type Shape interface {
	Kind() Kind
	// LocalBounds is the box enclosing the shape before any transform.
	LocalBounds() AABB
}

// Box is centered on its origin.
type Box struct {
	HalfExtents mgl32.Vec3
}

func NewBox(halfExtents mgl32.Vec3) *Box {
	return &Box{HalfExtents: halfExtents}
}

func (b *Box) Kind() Kind { return KindBox }

func (b *Box) LocalBounds() AABB {
	return AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
}

type Sphere struct {
	Radius float32
}

func NewSphere(radius float32) *Sphere {
	return &Sphere{Radius: radius}
}

func (s *Sphere) Kind() Kind { return KindSphere }

func (s *Sphere) LocalBounds() AABB {
	r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: r.Mul(-1), Max: r}
}

// Capsule is a segment along local Y of length 2*HalfHeight swept by Radius.
type Capsule struct {
	Radius     float32
	HalfHeight float32
}

func NewCapsule(radius, halfHeight float32) *Capsule {
	return &Capsule{Radius: radius, HalfHeight: halfHeight}
}

func (c *Capsule) Kind() Kind { return KindCapsule }

func (c *Capsule) LocalBounds() AABB {
	e := mgl32.Vec3{c.Radius, c.HalfHeight + c.Radius, c.Radius}
	return AABB{Min: e.Mul(-1), Max: e}
}

// Child is one primitive of a Compound placed by a local offset matrix.
type Child struct {
	Local mgl32.Mat4
	Shape Shape
}

// Compound groups primitives that share one collision handle. Its child list
// is fixed at construction.
type Compound struct {
	children []Child
	bounds   AABB
	disposed bool
}

// NewCompound builds a compound from children. Nested compounds are
// flattened; their offsets are folded into the outer offset.
func NewCompound(children ...Child) *Compound {
	c := &Compound{bounds: EmptyAABB()}
	for _, ch := range children {
		c.add(ch.Local, ch.Shape)
	}
	return c
}

func (c *Compound) add(local mgl32.Mat4, s Shape) {
	if nested, ok := s.(*Compound); ok {
		for _, ch := range nested.children {
			c.add(local.Mul4(ch.Local), ch.Shape)
		}
		return
	}
	c.children = append(c.children, Child{Local: local, Shape: s})
	c.bounds = c.bounds.Union(s.LocalBounds().Transform(local))
}

// Wrap returns s as a compound. A compound is returned unchanged; any other
// shape becomes the single child at the identity offset.
func Wrap(s Shape) *Compound {
	if c, ok := s.(*Compound); ok {
		return c
	}
	return NewCompound(Child{Local: mgl32.Ident4(), Shape: s})
}

func (c *Compound) Kind() Kind { return KindCompound }

func (c *Compound) LocalBounds() AABB { return c.bounds }

func (c *Compound) NumChildren() int { return len(c.children) }

func (c *Compound) Child(i int) Child { return c.children[i] }

// Children returns a copy of the child list.
func (c *Compound) Children() []Child {
	out := make([]Child, len(c.children))
	copy(out, c.children)
	return out
}

// Dispose releases the compound. The child list is dropped.
func (c *Compound) Dispose() {
	c.children = nil
	c.bounds = EmptyAABB()
	c.disposed = true
}

func (c *Compound) Disposed() bool { return c.disposed }
