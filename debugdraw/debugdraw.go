// Package debugdraw provides line sinks for collision wireframes.
package debugdraw

import (
	"math"

	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
)

type Color = [4]float32

var (
	White  = Color{1, 1, 1, 1}
	Red    = Color{1, 0.2, 0.2, 1}
	Green  = Color{0.2, 1, 0.2, 1}
	Yellow = Color{1, 1, 0.2, 1}
	Cyan   = Color{0.2, 1, 1, 1}
)

// Line is one recorded debug segment.
type Line struct {
	From, To mgl32.Vec3
	Color    Color
}

// Recorder keeps every line drawn since the last Reset.
type Recorder struct {
	Lines []Line
}

func (r *Recorder) DrawLine(from, to mgl32.Vec3, color Color) {
	r.Lines = append(r.Lines, Line{From: from, To: to, Color: color})
}

func (r *Recorder) Reset() {
	r.Lines = r.Lines[:0]
}

// Drawer is anything that accepts debug lines.
type Drawer interface {
	DrawLine(from, to mgl32.Vec3, color Color)
}

var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Box draws the 12 edges of the given corner set, ordered as AABB.Corners.
func Box(d Drawer, corners [8]mgl32.Vec3, color Color) {
	for _, e := range boxEdges {
		d.DrawLine(corners[e[0]], corners[e[1]], color)
	}
}

// AABB draws an axis-aligned box.
func AABB(d Drawer, b shape.AABB, color Color) {
	Box(d, b.Corners(), color)
}

// Cross draws a small three-axis marker.
func Cross(d Drawer, p mgl32.Vec3, size float32, color Color) {
	for a := 0; a < 3; a++ {
		var off mgl32.Vec3
		off[a] = size
		d.DrawLine(p.Sub(off), p.Add(off), color)
	}
}

// Circle draws a closed polyline of segments around center in the plane
// spanned by the unit vectors u and v.
func Circle(d Drawer, center, u, v mgl32.Vec3, radius float32, segments int, color Color) {
	if segments < 3 {
		segments = 3
	}
	point := func(i int) mgl32.Vec3 {
		a := 2 * math.Pi * float64(i) / float64(segments)
		return center.Add(u.Mul(radius * float32(math.Cos(a)))).Add(v.Mul(radius * float32(math.Sin(a))))
	}
	prev := point(0)
	for i := 1; i <= segments; i++ {
		next := point(i)
		d.DrawLine(prev, next, color)
		prev = next
	}
}

// Posed draws the wireframe of one posed primitive.
func Posed(d Drawer, p shape.Posed, color Color) {
	x, y, z := p.Axes[0], p.Axes[1], p.Axes[2]
	switch p.Shape.Kind() {
	case shape.KindBox:
		Box(d, p.Corners(), color)
	case shape.KindSphere:
		r := p.Radius()
		Circle(d, p.Center, x, y, r, 16, color)
		Circle(d, p.Center, y, z, r, 16, color)
		Circle(d, p.Center, z, x, r, 16, color)
	case shape.KindCapsule:
		r := p.Radius()
		a, b := p.Segment()
		Circle(d, a, z, x, r, 16, color)
		Circle(d, b, z, x, r, 16, color)
		for _, off := range [4]mgl32.Vec3{x.Mul(r), x.Mul(-r), z.Mul(r), z.Mul(-r)} {
			d.DrawLine(a.Add(off), b.Add(off), color)
		}
	}
}
