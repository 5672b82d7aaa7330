// Package ecs drives collide bodies stored as donburi entities.
package ecs

import (
	"errors"
	"fmt"

	"github.com/gekko3d/collide"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

type ObjectData struct {
	Object collide.Mover
}

var Object = donburi.NewComponentType[ObjectData]()

type PhysicsData struct {
	Component *collide.PhysicsComponent
	Category  collide.Category
}

var Physics = donburi.NewComponentType[PhysicsData]()

var (
	Dynamic = donburi.NewTag().SetName("Dynamic")
	Static  = donburi.NewTag().SetName("Static")
	Trigger = donburi.NewTag().SetName("Trigger")
)

var bodies = donburi.NewQuery(filter.Contains(Object, Physics))

func categoryTag(c collide.Category) donburi.IComponentType {
	switch c {
	case collide.CategoryStatic:
		return Static
	case collide.CategoryTrigger:
		return Trigger
	}
	return Dynamic
}

// Spawn registers comp for obj in cw and creates an entity carrying both.
func Spawn(w donburi.World, cw *collide.CollisionWorld, obj collide.Mover, comp *collide.PhysicsComponent, category collide.Category) (donburi.Entity, error) {
	if err := cw.Register(comp, obj, category); err != nil {
		return donburi.Null, err
	}
	entry := w.Entry(w.Create(Object, Physics, categoryTag(category)))
	Object.SetValue(entry, ObjectData{Object: obj})
	Physics.SetValue(entry, PhysicsData{Component: comp, Category: category})
	return entry.Entity(), nil
}

// Despawn unregisters and disposes the entity's component, then removes the
// entity.
func Despawn(w donburi.World, cw *collide.CollisionWorld, e donburi.Entity) error {
	if !w.Valid(e) {
		return fmt.Errorf("%w: entity %d", collide.ErrNotRegistered, e)
	}
	entry := w.Entry(e)
	if !entry.HasComponent(Physics) {
		return fmt.Errorf("%w: entity %d has no physics", collide.ErrNotRegistered, e)
	}
	comp := Physics.Get(entry).Component
	if comp.Registered() {
		if err := cw.Unregister(comp); err != nil {
			return err
		}
	}
	if err := comp.Dispose(); err != nil {
		return err
	}
	w.Remove(e)
	return nil
}

// DespawnAll despawns every body entity in w.
func DespawnAll(w donburi.World, cw *collide.CollisionWorld) error {
	var entities []donburi.Entity
	bodies.Each(w, func(entry *donburi.Entry) {
		entities = append(entities, entry.Entity())
	})
	var errs []error
	for _, e := range entities {
		if err := Despawn(w, cw, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Step runs one frame over every body entity: all objects integrate, then all
// components sync, then cw runs its detection pass.
func Step(w donburi.World, cw *collide.CollisionWorld, tm *collide.Time, cam collide.Camera) error {
	p := cw.Profiler()
	p.Reset()

	var entries []*donburi.Entry
	bodies.Each(w, func(entry *donburi.Entry) {
		entries = append(entries, entry)
	})

	for _, entry := range entries {
		Object.Get(entry).Object.Update(tm)
	}

	var errs []error
	p.BeginScope(collide.ScopeSync)
	for _, entry := range entries {
		obj := Object.Get(entry).Object
		comp := Physics.Get(entry).Component
		if !comp.Registered() {
			continue
		}
		if err := comp.Update(obj, cw); err != nil {
			errs = append(errs, fmt.Errorf("sync entity %d: %w", entry.Entity(), err))
		}
	}
	p.EndScope(collide.ScopeSync)

	if err := cw.Update(cam); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Count reports how many body entities are registered under category.
func Count(w donburi.World, category collide.Category) int {
	return donburi.NewQuery(filter.Contains(Physics, categoryTag(category))).Count(w)
}
