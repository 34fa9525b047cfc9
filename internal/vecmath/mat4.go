package vecmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingular is returned when a matrix has a zero determinant.
var ErrSingular = errors.New("vecmath: singular matrix")

// Mat4 is a column-major 4x4 matrix: element (row r, column c) lives at
// index c*4+r.
type Mat4 [16]float64

func NewMat4() *Mat4 {
	m := &Mat4{}
	return m.Identity()
}

// FromSlice copies 16 column-major values into m.
func (m *Mat4) FromSlice(a []float64) error {
	if len(a) != 16 {
		return fmt.Errorf("vecmath: mat4 needs 16 values, got %d", len(a))
	}
	copy(m[:], a)
	return nil
}

func (m *Mat4) Identity() *Mat4 {
	*m = Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	return m
}

func (m *Mat4) Zero() *Mat4 {
	*m = Mat4{}
	return m
}

// Set takes the values in reading order (row by row) and stores them
// column-major.
func (m *Mat4) Set(
	a00, a10, a20, a30,
	a01, a11, a21, a31,
	a02, a12, a22, a32,
	a03, a13, a23, a33 float64,
) *Mat4 {
	m[0], m[4], m[8], m[12] = a00, a10, a20, a30
	m[1], m[5], m[9], m[13] = a01, a11, a21, a31
	m[2], m[6], m[10], m[14] = a02, a12, a22, a32
	m[3], m[7], m[11], m[15] = a03, a13, a23, a33
	return m
}

// Perspective builds a projection from a vertical field of view in degrees.
// Zero arguments fall back to fov 60, aspect 1, near 0.01 and far 100.
func (m *Mat4) Perspective(fov, aspect, near, far float64) *Mat4 {
	if fov == 0 {
		fov = 60
	}
	if aspect == 0 {
		aspect = 1
	}
	if near == 0 {
		near = 0.01
	}
	if far == 0 {
		far = 100
	}
	m.Zero()
	top := near * math.Tan(fov*math.Pi/360)
	right := top * aspect
	left := -right
	bottom := -top
	m[0] = (2 * near) / (right - left)
	m[5] = (2 * near) / (top - bottom)
	m[8] = (right + left) / (right - left)
	m[9] = (top + bottom) / (top - bottom)
	m[10] = -(far + near) / (far - near)
	m[11] = -1
	m[14] = -(2 * far * near) / (far - near)
	return m
}

func (m *Mat4) Ortho(near, far, top, bottom, left, right float64) *Mat4 {
	rl := right - left
	tb := top - bottom
	fn := far - near
	return m.Set(
		2/rl, 0, 0, -(left+right)/rl,
		0, 2/tb, 0, -(top+bottom)/tb,
		0, 0, -2/fn, -(far+near)/fn,
		0, 0, 0, 1,
	)
}

// Translate right-multiplies a translation onto m.
func (m *Mat4) Translate(x, y, z float64) *Mat4 {
	m[12] = m[0]*x + m[4]*y + m[8]*z + m[12]
	m[13] = m[1]*x + m[5]*y + m[9]*z + m[13]
	m[14] = m[2]*x + m[6]*y + m[10]*z + m[14]
	m[15] = m[3]*x + m[7]*y + m[11]*z + m[15]
	return m
}

// RotateX right-multiplies a rotation of deg degrees about the local x axis.
func (m *Mat4) RotateX(deg float64) *Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	m[4] = a10*c + a20*s
	m[5] = a11*c + a21*s
	m[6] = a12*c + a22*s
	m[7] = a13*c + a23*s
	m[8] = a10*-s + a20*c
	m[9] = a11*-s + a21*c
	m[10] = a12*-s + a22*c
	m[11] = a13*-s + a23*c
	return m
}

func (m *Mat4) RotateY(deg float64) *Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	m[0] = a00*c + a20*-s
	m[1] = a01*c + a21*-s
	m[2] = a02*c + a22*-s
	m[3] = a03*c + a23*-s
	m[8] = a00*s + a20*c
	m[9] = a01*s + a21*c
	m[10] = a02*s + a22*c
	m[11] = a03*s + a23*c
	return m
}

func (m *Mat4) RotateZ(deg float64) *Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	m[0] = a00*c + a10*s
	m[1] = a01*c + a11*s
	m[2] = a02*c + a12*s
	m[3] = a03*c + a13*s
	m[4] = a00*-s + a10*c
	m[5] = a01*-s + a11*c
	m[6] = a02*-s + a12*c
	m[7] = a03*-s + a13*c
	return m
}

func (m *Mat4) Scale(x, y, z float64) *Mat4 {
	for i := 0; i < 4; i++ {
		m[i] *= x
		m[4+i] *= y
		m[8+i] *= z
	}
	return m
}

// Multiply stores a*b in m. m may alias a or b.
func (m *Mat4) Multiply(a, b *Mat4) *Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		b0, b1, b2, b3 := b[col*4], b[col*4+1], b[col*4+2], b[col*4+3]
		for row := 0; row < 4; row++ {
			out[col*4+row] = b0*a[row] + b1*a[4+row] + b2*a[8+row] + b3*a[12+row]
		}
	}
	*m = out
	return m
}

func (m *Mat4) Determinant() float64 {
	b := m.cofactorPairs()
	return b[0]*b[11] - b[1]*b[10] + b[2]*b[9] + b[3]*b[8] - b[4]*b[7] + b[5]*b[6]
}

func (m *Mat4) cofactorPairs() [12]float64 {
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]
	return [12]float64{
		a00*a11 - a01*a10,
		a00*a12 - a02*a10,
		a00*a13 - a03*a10,
		a01*a12 - a02*a11,
		a01*a13 - a03*a11,
		a02*a13 - a03*a12,
		a20*a31 - a21*a30,
		a20*a32 - a22*a30,
		a20*a33 - a23*a30,
		a21*a32 - a22*a31,
		a21*a33 - a23*a31,
		a22*a33 - a23*a32,
	}
}

// Inverse inverts m in place using the adjugate. On a zero determinant m is
// left unchanged and ErrSingular is returned.
func (m *Mat4) Inverse() error {
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]
	b := m.cofactorPairs()
	b00, b01, b02, b03, b04, b05 := b[0], b[1], b[2], b[3], b[4], b[5]
	b06, b07, b08, b09, b10, b11 := b[6], b[7], b[8], b[9], b[10], b[11]

	d := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if d == 0 {
		return ErrSingular
	}
	inv := 1 / d
	m[0] = (a11*b11 - a12*b10 + a13*b09) * inv
	m[1] = (-a01*b11 + a02*b10 - a03*b09) * inv
	m[2] = (a31*b05 - a32*b04 + a33*b03) * inv
	m[3] = (-a21*b05 + a22*b04 - a23*b03) * inv
	m[4] = (-a10*b11 + a12*b08 - a13*b07) * inv
	m[5] = (a00*b11 - a02*b08 + a03*b07) * inv
	m[6] = (-a30*b05 + a32*b02 - a33*b01) * inv
	m[7] = (a20*b05 - a22*b02 + a23*b01) * inv
	m[8] = (a10*b10 - a11*b08 + a13*b06) * inv
	m[9] = (-a00*b10 + a01*b08 - a03*b06) * inv
	m[10] = (a30*b04 - a31*b02 + a33*b00) * inv
	m[11] = (-a20*b04 + a21*b02 - a23*b00) * inv
	m[12] = (-a10*b09 + a11*b07 - a12*b06) * inv
	m[13] = (a00*b09 - a01*b07 + a02*b06) * inv
	m[14] = (-a30*b03 + a31*b01 - a32*b00) * inv
	m[15] = (a20*b03 - a21*b01 + a22*b00) * inv
	return nil
}
