package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gekko3d/collide"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

func TestParseScene_Default(t *testing.T) {
	s, err := parseScene(defaultScene)
	require.NoError(t, err)

	assert.Equal(t, 120, s.Frames)
	assert.Equal(t, 16*time.Millisecond, s.Dt)
	assert.Equal(t, collide.DebugDrawWireframe|collide.DebugDrawContacts, s.World.DebugMode)
	assert.Equal(t, "collidedemo", s.World.LogPrefix)
	require.Len(t, s.Balls, 3)
	assert.Equal(t, mgl32.Vec3{1.5, 6, 0.5}, s.Balls[1].Position)
}

func TestParseScene_Errors(t *testing.T) {
	for name, data := range map[string]string{
		"unknown field": "gravity: 9.8\n",
		"bad radius":    "balls:\n  - name: x\n    radius: 0\n",
		"bad frames":    "frames: -1\n",
		"bad world":     "world:\n  broadphase: octree\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseScene([]byte(data))
			assert.ErrorIs(t, err, collide.ErrConfiguration)
		})
	}
}

func TestSceneRuns(t *testing.T) {
	s, err := parseScene(defaultScene)
	require.NoError(t, err)
	s.World.Logger = collide.NewNopLogger()

	cw, err := collide.NewCollisionWorld(s.World)
	require.NoError(t, err)
	defer cw.Dispose()

	balls, err := s.populate(donburi.NewWorld(), cw)
	require.NoError(t, err)
	assert.Len(t, balls, 3)
	assert.Equal(t, 4, cw.Len())
}

func TestRun_WritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, run("", 30, out, false))
	assert.FileExists(t, out)
}
