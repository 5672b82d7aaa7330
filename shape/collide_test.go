package shape

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

// assertVec compares component-wise; mgl32's ApproxEqualThreshold is relative
// and rejects float noise against an exact zero.
func assertVec(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	return assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}

func at(x, y, z float32) mgl32.Mat4 {
	return mgl32.Translate3D(x, y, z)
}

func TestCollide_SphereSphere(t *testing.T) {
	a := Pose(NewSphere(1), at(1.5, 0, 0))
	b := Pose(NewSphere(1), at(0, 0, 0))

	c, ok := Collide(a, b)
	require.True(t, ok)
	assert.InDelta(t, 0.5, c.Depth, eps)
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Normal, eps, "normal %v", c.Normal)
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Point, eps, "point %v", c.Point)

	_, ok = Collide(Pose(NewSphere(1), at(2, 0, 0)), b)
	assert.False(t, ok, "touching spheres do not overlap")
}

func TestCollide_SphereBox(t *testing.T) {
	box := Pose(NewBox(mgl32.Vec3{1, 1, 1}), mgl32.Ident4())
	sphere := Pose(NewSphere(0.5), at(0, 1.4, 0))

	c, ok := Collide(sphere, box)
	require.True(t, ok)
	assert.InDelta(t, 0.1, c.Depth, eps)
	assertVec(t, mgl32.Vec3{0, 1, 0}, c.Normal, eps, "normal %v", c.Normal)
	assertVec(t, mgl32.Vec3{0, 1, 0}, c.Point, eps, "point %v", c.Point)

	flipped, ok := Collide(box, sphere)
	require.True(t, ok)
	assert.InDelta(t, c.Depth, flipped.Depth, eps)
	assertVec(t, mgl32.Vec3{0, -1, 0}, flipped.Normal, eps)

	_, ok = Collide(Pose(NewSphere(0.5), at(0, 1.6, 0)), box)
	assert.False(t, ok)
}

func TestCollide_SphereCenterInsideBox(t *testing.T) {
	box := Pose(NewBox(mgl32.Vec3{1, 1, 1}), mgl32.Ident4())
	sphere := Pose(NewSphere(0.25), at(0, 0.75, 0))

	c, ok := Collide(sphere, box)
	require.True(t, ok)
	assertVec(t, mgl32.Vec3{0, 1, 0}, c.Normal, eps, "normal %v", c.Normal)
	assert.InDelta(t, 0.5, c.Depth, eps)
}

func TestCollide_BoxBox(t *testing.T) {
	b := Pose(NewBox(mgl32.Vec3{1, 1, 1}), mgl32.Ident4())

	tests := []struct {
		name      string
		a         mgl32.Mat4
		overlap   bool
		depth     float32
		normal    mgl32.Vec3
		checkNorm bool
	}{
		{"stacked", at(0, 1.5, 0), true, 0.5, mgl32.Vec3{0, 1, 0}, true},
		{"side", at(-1.75, 0, 0), true, 0.25, mgl32.Vec3{-1, 0, 0}, true},
		{"separated", at(0, 2.5, 0), false, 0, mgl32.Vec3{}, false},
		{"rotated overlapping", at(2.2, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(45))), true, 0, mgl32.Vec3{}, false},
		{"rotated apart", at(2.5, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(45))), false, 0, mgl32.Vec3{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Collide(Pose(NewBox(mgl32.Vec3{1, 1, 1}), tt.a), b)
			require.Equal(t, tt.overlap, ok)
			if !ok {
				return
			}
			assert.Greater(t, c.Depth, float32(0))
			if tt.checkNorm {
				assert.InDelta(t, tt.depth, c.Depth, eps)
				assertVec(t, tt.normal, c.Normal, eps, "normal %v", c.Normal)
			}
		})
	}
}

func TestCollide_CapsuleBox(t *testing.T) {
	box := Pose(NewBox(mgl32.Vec3{1, 1, 1}), mgl32.Ident4())
	capsule := Pose(NewCapsule(0.25, 0.5), at(0, 1.6, 0))

	c, ok := Collide(capsule, box)
	require.True(t, ok)
	assert.InDelta(t, 0.15, c.Depth, eps)
	assertVec(t, mgl32.Vec3{0, 1, 0}, c.Normal, eps, "normal %v", c.Normal)

	c, ok = Collide(box, capsule)
	require.True(t, ok)
	assertVec(t, mgl32.Vec3{0, -1, 0}, c.Normal, eps, "normal %v", c.Normal)
}

func TestCollide_CapsuleCapsule(t *testing.T) {
	a := Pose(NewCapsule(0.5, 1), at(0.8, 0, 0))
	b := Pose(NewCapsule(0.5, 1), at(0, 0, 0))

	c, ok := Collide(a, b)
	require.True(t, ok)
	assert.InDelta(t, 0.2, c.Depth, eps)
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Normal, eps, "normal %v", c.Normal)

	_, ok = Collide(Pose(NewCapsule(0.5, 1), at(1.2, 0, 0)), b)
	assert.False(t, ok)
}

func TestCollide_CapsuleSphere(t *testing.T) {
	capsule := Pose(NewCapsule(0.5, 1), mgl32.Ident4())
	sphere := Pose(NewSphere(0.5), at(0.9, 0.8, 0))

	c, ok := Collide(sphere, capsule)
	require.True(t, ok)
	assert.InDelta(t, 0.1, c.Depth, eps)
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Normal, eps, "normal %v", c.Normal)
}

func TestPose_ScaleFoldsIntoDimensions(t *testing.T) {
	box := Pose(NewBox(mgl32.Vec3{1, 2, 3}), mgl32.Scale3D(2, 2, 2))
	assert.Equal(t, mgl32.Vec3{2, 4, 6}, box.HalfExtents())

	sphere := Pose(NewSphere(1), mgl32.Scale3D(1, 3, 1))
	assert.InDelta(t, 3, sphere.Radius(), eps)

	capsule := Pose(NewCapsule(1, 2), mgl32.Scale3D(2, 0.5, 1))
	a, b := capsule.Segment()
	assert.InDelta(t, 2, capsule.Radius(), eps)
	assert.InDelta(t, 2, b.Sub(a).Len(), eps)
}

func TestWrap(t *testing.T) {
	s := NewSphere(1)
	c := Wrap(s)
	require.Equal(t, 1, c.NumChildren())
	assert.Same(t, s, c.Child(0).Shape)
	assert.Equal(t, mgl32.Ident4(), c.Child(0).Local)

	assert.Same(t, c, Wrap(c), "compounds are kept as-is")
}

func TestCompound_FlattensNested(t *testing.T) {
	inner := NewCompound(
		Child{Local: at(1, 0, 0), Shape: NewSphere(0.5)},
		Child{Local: at(-1, 0, 0), Shape: NewSphere(0.5)},
	)
	outer := NewCompound(Child{Local: at(0, 2, 0), Shape: inner})

	require.Equal(t, 2, outer.NumChildren())
	assert.Equal(t, mgl32.Vec3{1, 2, 0}, outer.Child(0).Local.Col(3).Vec3())
	assert.Equal(t, mgl32.Vec3{-1, 2, 0}, outer.Child(1).Local.Col(3).Vec3())

	b := outer.LocalBounds()
	assertVec(t, mgl32.Vec3{-1.5, 1.5, -0.5}, b.Min, eps, "min %v", b.Min)
	assertVec(t, mgl32.Vec3{1.5, 2.5, 0.5}, b.Max, eps, "max %v", b.Max)

	posed := PoseCompound(outer, at(0, 1, 0))
	require.Len(t, posed, 2)
	assertVec(t, mgl32.Vec3{1, 3, 0}, posed[0].Center, eps)

	outer.Dispose()
	assert.True(t, outer.Disposed())
	assert.Zero(t, outer.NumChildren())
}
