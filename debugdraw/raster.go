package debugdraw

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/vector"
)

// nearW is the clip-space w below which geometry is treated as behind the eye.
const nearW = 1e-4

// Raster projects debug lines through a view-projection matrix and
// rasterizes them into an RGBA image.
type Raster struct {
	ViewProj mgl32.Mat4
	Width    float32 // stroke width in pixels

	img   *image.RGBA
	r     *vector.Rasterizer
	drawn int
}

func NewRaster(width, height int, viewProj mgl32.Mat4) *Raster {
	return &Raster{
		ViewProj: viewProj,
		Width:    1.5,
		img:      image.NewRGBA(image.Rect(0, 0, width, height)),
		r:        vector.NewRasterizer(width, height),
	}
}

func (r *Raster) Image() *image.RGBA { return r.img }

// Drawn reports how many lines reached the image since the last Clear.
func (r *Raster) Drawn() int { return r.drawn }

func (r *Raster) Clear(bg color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	r.drawn = 0
}

func (r *Raster) DrawLine(from, to mgl32.Vec3, c Color) {
	a := r.ViewProj.Mul4x1(from.Vec4(1))
	b := r.ViewProj.Mul4x1(to.Vec4(1))

	// Clip against the near side in homogeneous space.
	if a.W() < nearW && b.W() < nearW {
		return
	}
	if a.W() < nearW {
		a = b.Add(a.Sub(b).Mul((b.W() - nearW) / (b.W() - a.W())))
	} else if b.W() < nearW {
		b = a.Add(b.Sub(a).Mul((a.W() - nearW) / (a.W() - b.W())))
	}

	p0, p1 := r.toPixel(a), r.toPixel(b)
	d := p1.Sub(p0)
	if d.Len() < 1e-3 {
		d = mgl32.Vec2{1, 0}
	}
	n := mgl32.Vec2{-d.Y(), d.X()}.Normalize().Mul(r.Width / 2)

	size := r.img.Bounds().Size()
	r.r.Reset(size.X, size.Y)
	r.r.DrawOp = draw.Over
	r.r.MoveTo(p0.X()+n.X(), p0.Y()+n.Y())
	r.r.LineTo(p1.X()+n.X(), p1.Y()+n.Y())
	r.r.LineTo(p1.X()-n.X(), p1.Y()-n.Y())
	r.r.LineTo(p0.X()-n.X(), p0.Y()-n.Y())
	r.r.ClosePath()
	r.r.Draw(r.img, r.img.Bounds(), image.NewUniform(toRGBA(c)), image.Point{})
	r.drawn++
}

func (r *Raster) toPixel(clip mgl32.Vec4) mgl32.Vec2 {
	size := r.img.Bounds().Size()
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	return mgl32.Vec2{
		(ndcX + 1) * 0.5 * float32(size.X),
		(1 - ndcY) * 0.5 * float32(size.Y),
	}
}

// WritePNG encodes the current image.
func (r *Raster) WritePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

func toRGBA(c Color) color.RGBA {
	ch := func(v float32) uint8 {
		return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
	}
	// color.RGBA is alpha-premultiplied.
	a := mgl32.Clamp(c[3], 0, 1)
	return color.RGBA{ch(c[0] * a), ch(c[1] * a), ch(c[2] * a), ch(a)}
}
