package collide

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTransform_DecomposeRoundTrip(t *testing.T) {
	q := mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 1, 0})
	tr := NewTransformTRS(mgl32.Vec3{1, 2, 3}, q, mgl32.Vec3{2, 3, 4})

	assertVec(t, mgl32.Vec3{1, 2, 3}, tr.Position(), eps)
	assertVec(t, mgl32.Vec3{2, 3, 4}, tr.Scale(), eps, "scale %v", tr.Scale())
	assertQuat(t, q, tr.Rotation(), eps, "rotation %v", tr.Rotation())

	tr.SetScale(mgl32.Vec3{1, 1, 1})
	assertQuat(t, q, tr.Rotation(), eps)
	assertVec(t, mgl32.Vec3{1, 2, 3}, tr.Position(), eps)

	tr.SetRotation(mgl32.QuatIdent())
	assertMat(t, mgl32.Translate3D(1, 2, 3), tr.Matrix(), eps)
}

func TestTransform_Mutators(t *testing.T) {
	tr := NewTransformTRS(mgl32.Vec3{0, 0, 0}, mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}), mgl32.Vec3{2, 2, 2})

	tr.Translate(mgl32.Vec3{1, 0, 0})
	assertVec(t, mgl32.Vec3{1, 0, 0}, tr.Position(), eps, "world translate ignores rotation and scale")

	tr.TranslateLocal(mgl32.Vec3{1, 0, 0})
	// Local +X is world -Z after a 90 degree yaw, doubled by scale.
	assertVec(t, mgl32.Vec3{1, 0, -2}, tr.Position(), eps, "position %v", tr.Position())

	tr.ScaleBy(mgl32.Vec3{1, 0.5, 1})
	assertVec(t, mgl32.Vec3{2, 1, 2}, tr.Scale(), eps, "scale %v", tr.Scale())

	tr.Rotate(mgl32.QuatRotate(mgl32.DegToRad(-90), mgl32.Vec3{0, 1, 0}))
	assertQuat(t, mgl32.QuatIdent(), tr.Rotation(), eps, "rotation %v", tr.Rotation())
	assertVec(t, mgl32.Vec3{2, 1, 2}, tr.Scale(), eps, "scale survives rotation")

	inv := tr.WorldToObject()
	assertMat(t, mgl32.Ident4(), inv.Mul4(tr.Matrix()), eps)
}

func TestGameObject_Update(t *testing.T) {
	obj := NewGameObject("mover", mgl32.Vec3{1, 1, 1})
	obj.SetVelocity(mgl32.Vec3{2, 0, -4})

	tm := NewTime(time.Unix(0, 0))
	obj.Update(tm)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, obj.Position(), "zero dt does not move")

	tm.Advance(250 * time.Millisecond)
	obj.Update(tm)
	assertVec(t, mgl32.Vec3{1.5, 1, 0}, obj.Position(), eps, "position %v", obj.Position())

	tm.Tick(tm.Time.Add(500 * time.Millisecond))
	assert.InDelta(t, 0.5, tm.Seconds(), eps)
}
