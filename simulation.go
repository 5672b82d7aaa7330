package collide

import (
	"errors"
	"fmt"
	"slices"
)

// Body pairs an entity with its physics component.
type Body struct {
	Object    Mover
	Component *PhysicsComponent
}

// Simulation runs the frame contract over a set of bodies: every entity
// integrates, then every component syncs, then the world runs one pass.
type Simulation struct {
	World *CollisionWorld
	// Paused freezes the frame: nothing integrates, syncs or collides.
	Paused bool

	bodies []Body
}

func NewSimulation(world *CollisionWorld) *Simulation {
	return &Simulation{World: world}
}

// Add registers comp for obj under category and starts stepping it.
func (s *Simulation) Add(obj Mover, comp *PhysicsComponent, category Category) error {
	if err := s.World.Register(comp, obj, category); err != nil {
		return err
	}
	s.bodies = append(s.bodies, Body{Object: obj, Component: comp})
	return nil
}

// Remove unregisters and disposes comp.
func (s *Simulation) Remove(comp *PhysicsComponent) error {
	i := slices.IndexFunc(s.bodies, func(b Body) bool { return b.Component == comp })
	if i < 0 {
		return ErrNotRegistered
	}
	s.bodies = slices.Delete(s.bodies, i, i+1)
	if err := s.World.Unregister(comp); err != nil {
		return err
	}
	return comp.Dispose()
}

func (s *Simulation) Bodies() []Body { return s.bodies }

// ToggleDebug flips the world's debug wireframe and reports the new state.
func (s *Simulation) ToggleDebug() bool {
	if s.World.IsDebugActive() {
		s.World.DisableDebug()
	} else {
		s.World.EnableDebug()
	}
	return s.World.IsDebugActive()
}

// Step advances one frame. A paused simulation keeps the last frame's
// profile.
func (s *Simulation) Step(tm *Time, cam Camera) error {
	if s.Paused {
		return nil
	}
	p := s.World.Profiler()
	p.Reset()

	for _, b := range s.bodies {
		b.Object.Update(tm)
	}

	var errs []error
	// Bodies removed from the world by a callback are not synced.
	p.BeginScope(ScopeSync)
	for _, b := range s.bodies {
		if !b.Component.Registered() {
			continue
		}
		if err := b.Component.Update(b.Object, s.World); err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", b.Component.ID(), err))
		}
	}
	p.EndScope(ScopeSync)

	if err := s.World.Update(cam); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Dispose unregisters and disposes every body, then the world.
func (s *Simulation) Dispose() error {
	var errs []error
	for _, b := range s.bodies {
		if b.Component.Registered() {
			if err := s.World.Unregister(b.Component); err != nil {
				errs = append(errs, err)
			}
		}
		if err := b.Component.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	s.bodies = nil
	s.World.Dispose()
	return errors.Join(errs...)
}
