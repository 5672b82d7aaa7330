package collide

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform stores position, rotation and scale as one composed matrix
// M = T * R * S. Accessors decompose on demand.
type Transform struct {
	m mgl32.Mat4
}

func NewTransform() *Transform {
	return &Transform{m: mgl32.Ident4()}
}

func NewTransformTRS(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) *Transform {
	t := &Transform{}
	t.compose(position, rotation, scale)
	return t
}

func (t *Transform) compose(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	translate := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	rotate := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	t.m = translate.Mul4(rotate).Mul4(s)
}

// Matrix returns the object-to-world matrix.
func (t *Transform) Matrix() mgl32.Mat4 { return t.m }

// SetMatrix replaces the matrix. m must be of the form T * R * S.
func (t *Transform) SetMatrix(m mgl32.Mat4) { t.m = m }

func (t *Transform) Position() mgl32.Vec3 {
	return t.m.Col(3).Vec3()
}

func (t *Transform) Scale() mgl32.Vec3 {
	return mgl32.Vec3{
		t.m.Col(0).Vec3().Len(),
		t.m.Col(1).Vec3().Len(),
		t.m.Col(2).Vec3().Len(),
	}
}

func (t *Transform) Rotation() mgl32.Quat {
	s := t.Scale()
	r := mgl32.Ident4()
	for i := 0; i < 3; i++ {
		if s[i] == 0 {
			continue
		}
		col := t.m.Col(i).Vec3().Mul(1 / s[i])
		r.SetCol(i, col.Vec4(0))
	}
	return mgl32.Mat4ToQuat(r).Normalize()
}

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.m.SetCol(3, p.Vec4(1))
}

func (t *Transform) SetRotation(q mgl32.Quat) {
	t.compose(t.Position(), q, t.Scale())
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.compose(t.Position(), t.Rotation(), s)
}

// Translate moves by d in world space.
func (t *Transform) Translate(d mgl32.Vec3) {
	t.m = mgl32.Translate3D(d.X(), d.Y(), d.Z()).Mul4(t.m)
}

// TranslateLocal moves by d in the object's own rotated and scaled frame.
func (t *Transform) TranslateLocal(d mgl32.Vec3) {
	t.m = t.m.Mul4(mgl32.Translate3D(d.X(), d.Y(), d.Z()))
}

// Rotate applies q in the object's local frame. The rotation is recomposed
// rather than post-multiplied so non-uniform scale cannot shear the basis.
func (t *Transform) Rotate(q mgl32.Quat) {
	t.compose(t.Position(), t.Rotation().Mul(q), t.Scale())
}

// ScaleBy multiplies the scale per axis.
func (t *Transform) ScaleBy(s mgl32.Vec3) {
	t.m = t.m.Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

func (t *Transform) WorldToObject() mgl32.Mat4 {
	s := t.Scale()
	invScale := mgl32.Scale3D(1.0/s.X(), 1.0/s.Y(), 1.0/s.Z())
	invRotate := t.Rotation().Conjugate().Mat4()
	p := t.Position()
	invTranslate := mgl32.Translate3D(-p.X(), -p.Y(), -p.Z())
	return invScale.Mul4(invRotate).Mul4(invTranslate)
}
