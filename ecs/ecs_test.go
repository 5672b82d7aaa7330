package ecs

import (
	"testing"
	"time"

	"github.com/gekko3d/collide"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

func setup(t *testing.T) (donburi.World, *collide.CollisionWorld) {
	t.Helper()
	cfg := collide.DefaultConfig()
	cfg.Logger = collide.NewNopLogger()
	cw, err := collide.NewCollisionWorld(cfg)
	require.NoError(t, err)
	t.Cleanup(cw.Dispose)
	return donburi.NewWorld(), cw
}

func TestStep_BallSettlesOnFloor(t *testing.T) {
	w, cw := setup(t)

	floor := collide.NewGameObject("floor", mgl32.Vec3{0, 0, 0})
	_, err := Spawn(w, cw, floor, collide.NewPhysicsComponent(shape.NewBox(mgl32.Vec3{4, 1, 4}), collide.TagStaticSolid), collide.CategoryStatic)
	require.NoError(t, err)

	ball := collide.NewGameObject("ball", mgl32.Vec3{0, 2, 0})
	ball.SetVelocity(mgl32.Vec3{0, -2, 0})
	_, err = Spawn(w, cw, ball, collide.NewPhysicsComponent(shape.NewSphere(0.5), collide.TagPlayer), collide.CategoryDynamic)
	require.NoError(t, err)

	assert.Equal(t, 1, Count(w, collide.CategoryStatic))
	assert.Equal(t, 1, Count(w, collide.CategoryDynamic))
	assert.Zero(t, Count(w, collide.CategoryTrigger))

	tm := collide.NewTime(time.Unix(0, 0))
	for frame := 0; frame < 30; frame++ {
		tm.Advance(50 * time.Millisecond)
		require.NoError(t, Step(w, cw, tm, nil))
		assert.GreaterOrEqual(t, ball.Position().Y()-0.5, float32(1-0.1-1e-3), "frame %d", frame)
	}
	assert.InDelta(t, 1.5, ball.Position().Y(), 0.11)
	assert.Equal(t, 1, cw.Profiler().Count(collide.CountContacts))
}

func TestDespawn(t *testing.T) {
	w, cw := setup(t)

	comp := collide.NewPhysicsComponent(shape.NewSphere(1), collide.TagPlayer)
	e, err := Spawn(w, cw, collide.NewGameObject("p", mgl32.Vec3{}), comp, collide.CategoryDynamic)
	require.NoError(t, err)
	assert.Equal(t, 1, cw.Len())

	require.NoError(t, Despawn(w, cw, e))
	assert.False(t, w.Valid(e))
	assert.True(t, comp.Disposed())
	assert.Zero(t, cw.Len())

	assert.ErrorIs(t, Despawn(w, cw, e), collide.ErrNotRegistered)
}

func TestSpawn_RejectsDoubleRegistration(t *testing.T) {
	w, cw := setup(t)

	comp := collide.NewPhysicsComponent(shape.NewSphere(1), collide.TagPlayer)
	obj := collide.NewGameObject("p", mgl32.Vec3{})
	_, err := Spawn(w, cw, obj, comp, collide.CategoryDynamic)
	require.NoError(t, err)

	_, err = Spawn(w, cw, obj, comp, collide.CategoryTrigger)
	assert.ErrorIs(t, err, collide.ErrAlreadyRegistered)
	assert.Equal(t, 1, w.Len())
}

func TestDespawnAll(t *testing.T) {
	w, cw := setup(t)

	var comps []*collide.PhysicsComponent
	for i := 0; i < 3; i++ {
		comp := collide.NewPhysicsComponent(shape.NewSphere(0.5), collide.TagPlayer)
		_, err := Spawn(w, cw, collide.NewGameObject("p", mgl32.Vec3{float32(i) * 3, 0, 0}), comp, collide.CategoryDynamic)
		require.NoError(t, err)
		comps = append(comps, comp)
	}

	require.NoError(t, DespawnAll(w, cw))
	assert.Zero(t, w.Len())
	assert.Zero(t, cw.Len())
	for _, c := range comps {
		assert.True(t, c.Disposed())
	}
}
