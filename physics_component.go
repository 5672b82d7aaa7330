package collide

import (
	"fmt"

	"github.com/gekko3d/collide/broadphase"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type ComponentID string

// correction sums the changes requested during one detection pass.
type correction struct {
	pass  uint64
	sum   mgl32.Vec3
	count int
}

// PhysicsComponent gives an entity a collision shape and a handle in one
// CollisionWorld. The entity owns the component; the world only references
// it while registered.
type PhysicsComponent struct {
	id        ComponentID
	tag       CollisionTag
	shape     *shape.Compound
	kinematic bool
	handled   bool

	// Handle state, copied from the entity on sync.
	transform mgl32.Mat4
	velocity  mgl32.Vec3
	posed     []shape.Posed
	bounds    shape.AABB

	acc correction

	world    *CollisionWorld
	proxy    broadphase.ProxyID
	category Category
	record   *CollisionObject
	disposed bool
}

// NewPhysicsComponent wraps s in a compound so single and multi-part shapes
// share one path. A compound is used as-is.
func NewPhysicsComponent(s shape.Shape, tag CollisionTag) *PhysicsComponent {
	c := &PhysicsComponent{
		id:        ComponentID(uuid.NewString()),
		tag:       tag,
		shape:     shape.Wrap(s),
		transform: mgl32.Ident4(),
	}
	c.repose()
	return c
}

func (c *PhysicsComponent) ID() ComponentID { return c.id }

func (c *PhysicsComponent) Tag() CollisionTag { return c.tag }

func (c *PhysicsComponent) Shape() *shape.Compound { return c.shape }

func (c *PhysicsComponent) IsKinematic() bool { return c.kinematic }

// SetKinematic is advisory; the world does not read it.
func (c *PhysicsComponent) SetKinematic(kinematic bool) { c.kinematic = kinematic }

func (c *PhysicsComponent) IsCollisionHandled() bool { return c.handled }

func (c *PhysicsComponent) SetCollisionHandled(handled bool) { c.handled = handled }

// Velocity is the entity velocity captured at the last sync.
func (c *PhysicsComponent) Velocity() mgl32.Vec3 { return c.velocity }

// Transform is the handle transform captured at the last sync.
func (c *PhysicsComponent) Transform() mgl32.Mat4 { return c.transform }

// Bounds is the world-space AABB of the handle.
func (c *PhysicsComponent) Bounds() shape.AABB { return c.bounds }

// Posed returns the world-space children of the handle.
func (c *PhysicsComponent) Posed() []shape.Posed { return c.posed }

func (c *PhysicsComponent) Registered() bool { return c.world != nil }

func (c *PhysicsComponent) Category() (Category, bool) {
	return c.category, c.world != nil
}

func (c *PhysicsComponent) Disposed() bool { return c.disposed }

// PendingCorrection is the translation the next Update will apply and the
// number of changes it averages. Only changes from the world's latest pass
// count.
func (c *PhysicsComponent) PendingCorrection() (mgl32.Vec3, int) {
	if c.acc.count == 0 || c.world == nil || c.acc.pass != c.world.pass {
		return mgl32.Vec3{}, 0
	}
	return c.acc.sum.Mul(-1 / float32(c.acc.count)), c.acc.count
}

// Update runs once per frame after the entity has integrated its velocity.
// It applies the mean of last pass's collision changes, negated, to the
// entity transform, then copies transform and velocity into the handle.
// world may be nil for a component that is not registered anywhere.
func (c *PhysicsComponent) Update(entity Entity, world *CollisionWorld) error {
	if c.disposed {
		return ErrComponentDisposed
	}
	if world != nil && world.disposed {
		return ErrWorldDisposed
	}
	if world != c.world {
		return fmt.Errorf("%w: update with a world the component is not registered in", ErrNotRegistered)
	}
	c.handled = false

	if delta, n := c.PendingCorrection(); n > 0 {
		entity.Transform().Translate(delta)
	}
	c.acc = correction{}

	c.sync(entity.Transform().Matrix(), entity.Velocity())
	return nil
}

// SetTransform moves the handle directly without touching any entity.
func (c *PhysicsComponent) SetTransform(m mgl32.Mat4) error {
	if c.disposed {
		return ErrComponentDisposed
	}
	c.sync(m, c.velocity)
	return nil
}

func (c *PhysicsComponent) sync(m mgl32.Mat4, v mgl32.Vec3) {
	c.velocity = v
	if m == c.transform && c.posed != nil {
		return
	}
	c.transform = m
	c.repose()
	if c.world != nil {
		c.world.moved(c)
	}
}

func (c *PhysicsComponent) repose() {
	c.posed = shape.PoseCompound(c.shape, c.transform)
	b := shape.EmptyAABB()
	for _, p := range c.posed {
		b = b.Union(p.Bounds())
	}
	c.bounds = b
}

// AddCollisionChange records one requested correction. It is only valid
// inside a contact callback of the world the component is registered in.
// The next Update translates the entity by the negated mean of all changes
// from the latest pass.
func (c *PhysicsComponent) AddCollisionChange(v mgl32.Vec3) error {
	if c.disposed {
		return ErrComponentDisposed
	}
	if c.world == nil || !c.world.inPass {
		return ErrOutsideContact
	}
	if c.acc.pass != c.world.pass {
		c.acc = correction{pass: c.world.pass}
	}
	c.acc.sum = c.acc.sum.Add(v)
	c.acc.count++
	return nil
}

// Dispose releases the shape and the handle. Unregister first.
func (c *PhysicsComponent) Dispose() error {
	if c.disposed {
		return nil
	}
	if c.world != nil {
		return ErrStillRegistered
	}
	c.shape.Dispose()
	c.posed = nil
	c.acc = correction{}
	c.disposed = true
	return nil
}
