package debugdraw

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/gekko3d/collide/shape"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_AABB(t *testing.T) {
	var rec Recorder
	AABB(&rec, shape.AABBFromCenter(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}), Green)
	require.Len(t, rec.Lines, 12)

	for _, l := range rec.Lines {
		assert.InDelta(t, 2, l.To.Sub(l.From).Len(), 1e-6, "every edge of a unit cube is 2 long")
		assert.Equal(t, Green, l.Color)
	}

	rec.Reset()
	assert.Empty(t, rec.Lines)
}

func TestPosed_Wireframes(t *testing.T) {
	tests := []struct {
		name  string
		shape shape.Shape
		lines int
	}{
		{"box", shape.NewBox(mgl32.Vec3{1, 1, 1}), 12},
		{"sphere", shape.NewSphere(1), 48},
		{"capsule", shape.NewCapsule(0.5, 1), 36},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Recorder
			Posed(&rec, shape.Pose(tt.shape, mgl32.Translate3D(0, 3, 0)), White)
			assert.Len(t, rec.Lines, tt.lines)
		})
	}
}

func TestRaster_DrawLine(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	r := NewRaster(64, 64, proj.Mul4(view))
	r.Clear(color.Black)

	r.DrawLine(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 0, 0}, Red)
	assert.Equal(t, 1, r.Drawn())

	center := r.Image().RGBAAt(32, 32)
	assert.Greater(t, center.R, uint8(100), "line crosses the image center")
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, r.Image().RGBAAt(32, 5))

	// Entirely behind the eye.
	r.DrawLine(mgl32.Vec3{-1, 0, 10}, mgl32.Vec3{1, 0, 10}, Red)
	assert.Equal(t, 1, r.Drawn())

	var buf bytes.Buffer
	require.NoError(t, r.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}
