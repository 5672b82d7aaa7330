package level

import (
	"os"
	"testing"

	"github.com/gekko3d/collide"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T) *Level {
	t.Helper()
	lvl, err := LoadTMX(os.DirFS("testdata"), "arena.tmx", DefaultOptions())
	require.NoError(t, err)
	return lvl
}

func TestLoadTMX(t *testing.T) {
	lvl := load(t)

	assert.Equal(t, float32(4), lvl.Width)
	assert.Equal(t, float32(3), lvl.Depth)
	require.Len(t, lvl.Solids, 5, "rows merge into runs")
	require.Len(t, lvl.Triggers, 2)

	top := lvl.Solids[0]
	assert.Equal(t, mgl32.Vec3{2, 1, 0.5}, top.Object.Position())
	require.False(t, top.Component.Registered())
	b := top.Component.Bounds()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{4, 2, 1}, b.Max)

	goal := lvl.Triggers[0]
	assert.Equal(t, "goal", goal.Name)
	assert.Equal(t, mgl32.Vec3{2, 1, 1.5}, goal.Object.Position())
	assert.Equal(t, collide.TagTrigger, goal.Component.Tag())
	assert.Equal(t, "triggers#2", lvl.Triggers[1].Name)
	gb := goal.Component.Bounds()
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, gb.Min, "unregistered pieces are already posed")
	assert.Equal(t, mgl32.Vec3{3, 2, 2}, gb.Max)
}

func TestLoadTMX_Errors(t *testing.T) {
	_, err := LoadTMX(os.DirFS("testdata"), "missing.tmx", DefaultOptions())
	assert.Error(t, err)

	opts := DefaultOptions()
	opts.SolidLayer = "nope"
	_, err = LoadTMX(os.DirFS("testdata"), "arena.tmx", opts)
	assert.ErrorIs(t, err, collide.ErrConfiguration)

	opts = DefaultOptions()
	opts.UnitsPerPixel = 0
	_, err = LoadTMX(os.DirFS("testdata"), "arena.tmx", opts)
	assert.ErrorIs(t, err, collide.ErrConfiguration)
}

func TestLevel_RegisterIntoWorld(t *testing.T) {
	lvl := load(t)
	cfg := collide.DefaultConfig()
	cfg.Logger = collide.NewNopLogger()
	w, err := collide.NewCollisionWorld(cfg)
	require.NoError(t, err)
	defer w.Dispose()

	require.NoError(t, lvl.Register(w))
	assert.Len(t, w.RegisteredCollisionObjects(), 7)

	hit := w.RayTestFirst(mgl32.Vec3{2, 1, -5}, mgl32.Vec3{2, 1, 5}, collide.FilterDynamic, collide.FilterAll)
	require.NotNil(t, hit)
	assert.Equal(t, collide.TagStaticSolid, hit.Tag())
	assert.Same(t, lvl.Solids[0].Object, hit.Entity())

	var triggered []*collide.CollisionObject
	require.NoError(t, w.SetContactListener(collide.NewFuncListener(func(c *collide.Contact) error {
		triggered = append(triggered, c.B)
		return nil
	})))
	player := collide.NewGameObject("player", mgl32.Vec3{2, 1, 1.5})
	comp := collide.NewPhysicsComponent(shape.NewSphere(0.3), collide.TagPlayer)
	require.NoError(t, w.RegisterDynamicEntity(comp, player))

	require.NoError(t, w.Update(nil))
	require.Len(t, triggered, 1)
	assert.Same(t, lvl.Triggers[0].Object, triggered[0].Entity())

	assert.ErrorIs(t, lvl.Dispose(), collide.ErrStillRegistered)
	require.NoError(t, lvl.Unregister(w))
	require.NoError(t, lvl.Dispose())
	assert.Len(t, w.RegisteredCollisionObjects(), 1)
}
