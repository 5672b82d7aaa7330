package collide

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Entity is the game-level owner of a transform and a velocity.
type Entity interface {
	Transform() *Transform
	Velocity() mgl32.Vec3
}

// Mover is an Entity that integrates its own motion each frame.
type Mover interface {
	Entity
	Update(tm *Time)
}

type GameObject struct {
	Name string

	transform *Transform
	velocity  mgl32.Vec3
}

func NewGameObject(name string, position mgl32.Vec3) *GameObject {
	t := NewTransform()
	t.SetPosition(position)
	return &GameObject{Name: name, transform: t}
}

func (g *GameObject) Transform() *Transform { return g.transform }

func (g *GameObject) Velocity() mgl32.Vec3 { return g.velocity }

func (g *GameObject) SetVelocity(v mgl32.Vec3) { g.velocity = v }

func (g *GameObject) Position() mgl32.Vec3 { return g.transform.Position() }

func (g *GameObject) SetPosition(p mgl32.Vec3) { g.transform.SetPosition(p) }

// Update integrates position by velocity. It knows nothing about collisions.
func (g *GameObject) Update(tm *Time) {
	if tm == nil || tm.Dt == 0 {
		return
	}
	g.transform.Translate(g.velocity.Mul(tm.Seconds()))
}
