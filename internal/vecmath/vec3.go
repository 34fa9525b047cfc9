package vecmath

import "math"

// Vec3 is a 3D vector. Methods mutate the receiver and return it so calls
// can be chained.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (v *Vec3) Set(x, y, z float64) *Vec3 {
	v.X, v.Y, v.Z = x, y, z
	return v
}

func (v *Vec3) Copy(o Vec3) *Vec3 {
	*v = o
	return v
}

func (v *Vec3) Add(o Vec3) *Vec3 {
	v.X += o.X
	v.Y += o.Y
	v.Z += o.Z
	return v
}

func (v *Vec3) Sub(o Vec3) *Vec3 {
	v.X -= o.X
	v.Y -= o.Y
	v.Z -= o.Z
	return v
}

func (v *Vec3) Mul(s float64) *Vec3 {
	v.X *= s
	v.Y *= s
	v.Z *= s
	return v
}

// Normalize scales v to unit length. A zero vector is left unchanged.
func (v *Vec3) Normalize() *Vec3 {
	if l := v.Length(); l != 0 {
		v.Mul(1 / l)
	}
	return v
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) Distance(o Vec3) float64 {
	dx := o.X - v.X
	dy := o.Y - v.Y
	dz := o.Z - v.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// TransformMat4 stores m*src in v, with a perspective divide. A homogeneous
// w of exactly zero is treated as 1.
func (v *Vec3) TransformMat4(src Vec3, m *Mat4) *Vec3 {
	x, y, z := src.X, src.Y, src.Z
	w := m[3]*x + m[7]*y + m[11]*z + m[15]
	if w == 0 {
		w = 1
	}
	v.X = (m[0]*x + m[4]*y + m[8]*z + m[12]) / w
	v.Y = (m[1]*x + m[5]*y + m[9]*z + m[13]) / w
	v.Z = (m[2]*x + m[6]*y + m[10]*z + m[14]) / w
	return v
}
