package vecmath

// Mat3 is a column-major 3x3 matrix.
type Mat3 [9]float64

func NewMat3() *Mat3 {
	m := &Mat3{}
	return m.Identity()
}

func (m *Mat3) Identity() *Mat3 {
	*m = Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	return m
}

// FromMat4Rot stores the inverse transpose of the upper-left 3x3 block of
// src (the normal matrix). m is unchanged when the block is singular.
func (m *Mat3) FromMat4Rot(src *Mat4) error {
	a00, a01, a02 := src[0], src[1], src[2]
	a10, a11, a12 := src[4], src[5], src[6]
	a20, a21, a22 := src[8], src[9], src[10]
	b01 := a22*a11 - a12*a21
	b11 := -a22*a10 + a12*a20
	b21 := a21*a10 - a11*a20
	d := a00*b01 + a01*b11 + a02*b21
	if d == 0 {
		return ErrSingular
	}
	id := 1 / d
	m[0] = b01 * id
	m[3] = (-a22*a01 + a02*a21) * id
	m[6] = (a12*a01 - a02*a11) * id
	m[1] = b11 * id
	m[4] = (a22*a00 - a02*a20) * id
	m[7] = (-a12*a00 + a02*a10) * id
	m[2] = b21 * id
	m[5] = (-a21*a00 + a01*a20) * id
	m[8] = (a11*a00 - a01*a10) * id
	return nil
}

func (m *Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}
