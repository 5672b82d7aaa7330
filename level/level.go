// Package level imports static collision geometry and trigger volumes from
// Tiled TMX maps. The map is laid on the XZ plane: tile columns run along +X,
// tile rows along +Z, and every solid tile becomes a wall of fixed height.
package level

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gekko3d/collide"
	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lafriks/go-tiled"
)

type Options struct {
	// SolidLayer is the tile layer whose non-empty tiles are walls.
	SolidLayer string
	// TriggerGroup is the object group whose rectangles become triggers.
	TriggerGroup string
	// UnitsPerPixel converts map pixels to world units.
	UnitsPerPixel float32
	// WallHeight is the height of walls, and of triggers without a
	// "height" property.
	WallHeight float32
}

func DefaultOptions() Options {
	return Options{
		SolidLayer:    "solid",
		TriggerGroup:  "triggers",
		UnitsPerPixel: 1.0 / 16.0,
		WallHeight:    2,
	}
}

// Piece is one imported collidable.
type Piece struct {
	Name      string
	Object    *collide.GameObject
	Component *collide.PhysicsComponent
}

type Level struct {
	// Width and Depth are the map extents in world units.
	Width, Depth float32
	Solids       []*Piece
	Triggers     []*Piece
}

// LoadTMX parses the map at path within fsys. Horizontal runs of solid tiles
// are merged into a single box.
func LoadTMX(fsys fs.FS, path string, opts Options) (*Level, error) {
	if opts.UnitsPerPixel <= 0 || opts.WallHeight <= 0 {
		return nil, fmt.Errorf("%w: level scale and wall height must be positive", collide.ErrConfiguration)
	}
	m, err := tiled.LoadFile(path, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", path, err)
	}

	scale := opts.UnitsPerPixel
	tileW := float32(m.TileWidth) * scale
	tileD := float32(m.TileHeight) * scale
	lvl := &Level{
		Width: float32(m.Width) * tileW,
		Depth: float32(m.Height) * tileD,
	}

	found := false
	for _, layer := range m.Layers {
		if layer.Name != opts.SolidLayer {
			continue
		}
		found = true
		for y := 0; y < m.Height; y++ {
			run := -1
			for x := 0; x <= m.Width; x++ {
				solid := x < m.Width && !layer.Tiles[y*m.Width+x].IsNil()
				switch {
				case solid && run < 0:
					run = x
				case !solid && run >= 0:
					lvl.Solids = append(lvl.Solids, wall(
						fmt.Sprintf("%s[%d:%d,%d]", layer.Name, run, x, y),
						float32(run)*tileW, float32(y)*tileD,
						float32(x-run)*tileW, tileD, opts.WallHeight,
						collide.TagStaticSolid,
					))
					run = -1
				}
			}
		}
		break
	}
	if !found {
		return nil, fmt.Errorf("%w: TMX %s has no tile layer %q", collide.ErrConfiguration, path, opts.SolidLayer)
	}

	for _, og := range m.ObjectGroups {
		if og.Name != opts.TriggerGroup {
			continue
		}
		for _, o := range og.Objects {
			height := opts.WallHeight
			if h := o.Properties.GetFloat("height"); h > 0 {
				height = float32(h)
			}
			name := o.Name
			if name == "" {
				name = fmt.Sprintf("%s#%d", og.Name, o.ID)
			}
			lvl.Triggers = append(lvl.Triggers, wall(
				name,
				float32(o.X)*scale, float32(o.Y)*scale,
				float32(o.Width)*scale, float32(o.Height)*scale, height,
				collide.TagTrigger,
			))
		}
	}
	return lvl, nil
}

// wall builds a box whose footprint starts at (x, z) and sits on y = 0.
func wall(name string, x, z, w, d, h float32, tag collide.CollisionTag) *Piece {
	half := mgl32.Vec3{w / 2, h / 2, d / 2}
	obj := collide.NewGameObject(name, mgl32.Vec3{x + half.X(), half.Y(), z + half.Z()})
	comp := collide.NewPhysicsComponent(shape.NewBox(half), tag)
	// A fresh component cannot be disposed, so this never fails.
	_ = comp.SetTransform(obj.Transform().Matrix())
	return &Piece{Name: name, Object: obj, Component: comp}
}

// Register adds every solid as static geometry and every trigger as a
// trigger volume.
func (l *Level) Register(w *collide.CollisionWorld) error {
	for _, p := range l.Solids {
		if err := w.RegisterStaticGeometry(p.Component, p.Object); err != nil {
			return fmt.Errorf("register %s: %w", p.Name, err)
		}
	}
	for _, p := range l.Triggers {
		if err := w.RegisterTriggerEntity(p.Component, p.Object); err != nil {
			return fmt.Errorf("register %s: %w", p.Name, err)
		}
	}
	return nil
}

// Unregister removes every registered piece from w.
func (l *Level) Unregister(w *collide.CollisionWorld) error {
	var errs []error
	for _, p := range l.pieces() {
		if !p.Component.Registered() {
			continue
		}
		if err := w.Unregister(p.Component); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispose releases every piece. Unregister first.
func (l *Level) Dispose() error {
	var errs []error
	for _, p := range l.pieces() {
		if err := p.Component.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("dispose %s: %w", p.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (l *Level) pieces() []*Piece {
	out := make([]*Piece, 0, len(l.Solids)+len(l.Triggers))
	out = append(out, l.Solids...)
	return append(out, l.Triggers...)
}
