package collide

import (
	"github.com/gekko3d/collide/broadphase"
	"github.com/go-gl/mathgl/mgl32"
)

// Contact describes one overlapping pair in one detection pass. When exactly
// one side is dynamic it is side A.
type Contact struct {
	A, B                   *CollisionObject
	ComponentA, ComponentB *PhysicsComponent
	CategoryA, CategoryB   Category
	VelocityA, VelocityB   mgl32.Vec3

	// Point is the deepest contact point in world space.
	Point mgl32.Vec3
	// Normal is a unit vector pointing from B toward A.
	Normal mgl32.Vec3
	Depth  float32
	// Points is the number of overlapping child pairs found.
	Points int

	proxyA, proxyB broadphase.ProxyID
}

// Penetration is how far A reaches into B. Feeding it to A's
// AddCollisionChange pushes A back out on the next update.
func (c *Contact) Penetration() mgl32.Vec3 {
	return c.Normal.Mul(-c.Depth)
}

// Involves reports whether either side carries tag.
func (c *Contact) Involves(tag CollisionTag) bool {
	return c.A.Tag() == tag || c.B.Tag() == tag
}

// ContactListener receives every overlapping pair during CollisionWorld.Update.
// A disabled listener receives nothing, though detection still runs.
type ContactListener interface {
	OnContact(c *Contact) error
	Enable()
	Disable()
	Enabled() bool
	Dispose()
	Disposed() bool
}

// ListenerBase implements the lifecycle half of ContactListener. Embed it.
type ListenerBase struct {
	enabled  bool
	disposed bool
	// OnDispose runs once, on the first Dispose.
	OnDispose func()
}

func (l *ListenerBase) Enable() {
	if !l.disposed {
		l.enabled = true
	}
}

func (l *ListenerBase) Disable() { l.enabled = false }

func (l *ListenerBase) Enabled() bool { return l.enabled && !l.disposed }

func (l *ListenerBase) Dispose() {
	if l.disposed {
		return
	}
	l.enabled = false
	l.disposed = true
	if l.OnDispose != nil {
		l.OnDispose()
	}
}

func (l *ListenerBase) Disposed() bool { return l.disposed }

// DefaultContactListener pushes dynamic entities out of static geometry.
// Triggers and dynamic-dynamic pairs get no response.
type DefaultContactListener struct {
	ListenerBase
}

func NewDefaultContactListener() *DefaultContactListener {
	return &DefaultContactListener{}
}

func (l *DefaultContactListener) OnContact(c *Contact) error {
	return ResolveStatic(c)
}

// ResolveStatic is the default response: a dynamic side overlapping static
// geometry accumulates the penetration for correction next update.
func ResolveStatic(c *Contact) error {
	if c.CategoryA != CategoryDynamic || c.CategoryB != CategoryStatic {
		return nil
	}
	return c.ComponentA.AddCollisionChange(c.Penetration())
}

// FuncListener adapts a function to ContactListener.
type FuncListener struct {
	ListenerBase
	Fn func(c *Contact) error
}

func NewFuncListener(fn func(c *Contact) error) *FuncListener {
	return &FuncListener{Fn: fn}
}

func (l *FuncListener) OnContact(c *Contact) error {
	if l.Fn == nil {
		return nil
	}
	return l.Fn(c)
}
