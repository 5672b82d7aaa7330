package main

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gekko3d/collide"
	"github.com/gekko3d/collide/ecs"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
	"gopkg.in/yaml.v3"
)

//go:embed scene.yaml
var defaultScene []byte

type Ball struct {
	Name     string     `yaml:"name"`
	Position mgl32.Vec3 `yaml:"position"`
	Velocity mgl32.Vec3 `yaml:"velocity"`
	Radius   float32    `yaml:"radius"`
}

type Scene struct {
	World  collide.Config `yaml:"world"`
	Frames int            `yaml:"frames"`
	Dt     time.Duration  `yaml:"dt"`
	// Level is an optional TMX map, relative to the scene file.
	Level string `yaml:"level"`

	Floor struct {
		HalfExtents mgl32.Vec3 `yaml:"half_extents"`
	} `yaml:"floor"`

	Balls []Ball `yaml:"balls"`

	Camera struct {
		Position mgl32.Vec3 `yaml:"position"`
		Target   mgl32.Vec3 `yaml:"target"`
	} `yaml:"camera"`
}

func parseScene(data []byte) (Scene, error) {
	s := Scene{World: collide.DefaultConfig(), Frames: 60, Dt: 16 * time.Millisecond}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Scene{}, fmt.Errorf("%w: %v", collide.ErrConfiguration, err)
	}
	if err := s.World.Validate(); err != nil {
		return Scene{}, err
	}
	if s.Frames <= 0 || s.Dt <= 0 {
		return Scene{}, fmt.Errorf("%w: frames and dt must be positive", collide.ErrConfiguration)
	}
	for _, b := range s.Balls {
		if b.Radius <= 0 {
			return Scene{}, fmt.Errorf("%w: ball %q has radius %v", collide.ErrConfiguration, b.Name, b.Radius)
		}
	}
	return s, nil
}

func loadScene(path string) (Scene, error) {
	if path == "" {
		return parseScene(defaultScene)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, err
	}
	return parseScene(data)
}

// populate spawns the floor and the balls. The returned objects are the
// balls in scene order.
func (s Scene) populate(w donburi.World, cw *collide.CollisionWorld) ([]*collide.GameObject, error) {
	if s.Floor.HalfExtents != (mgl32.Vec3{}) {
		floor := collide.NewGameObject("floor", mgl32.Vec3{})
		comp := collide.NewPhysicsComponent(shape.NewBox(s.Floor.HalfExtents), collide.TagStaticSolid)
		if _, err := ecs.Spawn(w, cw, floor, comp, collide.CategoryStatic); err != nil {
			return nil, err
		}
	}

	balls := make([]*collide.GameObject, 0, len(s.Balls))
	for _, b := range s.Balls {
		obj := collide.NewGameObject(b.Name, b.Position)
		obj.SetVelocity(b.Velocity)
		comp := collide.NewPhysicsComponent(shape.NewSphere(b.Radius), collide.TagPlayer)
		if _, err := ecs.Spawn(w, cw, obj, comp, collide.CategoryDynamic); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", b.Name, err)
		}
		balls = append(balls, obj)
	}
	return balls, nil
}
