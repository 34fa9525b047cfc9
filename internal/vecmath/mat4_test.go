package vecmath

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tol = 1e-9

func deg(r float64) float64 { return r * math.Pi / 180 }

func assertMat(t *testing.T, got *Mat4, want mgl64.Mat4) {
	t.Helper()
	for i := 0; i < 16; i++ {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("element %d = %.9f, want %.9f\ngot  %v\nwant %v", i, got[i], want[i], *got, want)
		}
	}
}

func TestMat4Identity(t *testing.T) {
	assertMat(t, NewMat4(), mgl64.Ident4())

	m := NewMat4()
	m.Zero()
	for i, v := range m {
		if v != 0 {
			t.Fatalf("Zero left element %d = %v", i, v)
		}
	}
}

func TestMat4RotationsMatchReference(t *testing.T) {
	tests := []struct {
		name string
		ours func(m *Mat4, d float64) *Mat4
		ref  func(rad float64) mgl64.Mat4
	}{
		{"x", (*Mat4).RotateX, mgl64.HomogRotate3DX},
		{"y", (*Mat4).RotateY, mgl64.HomogRotate3DY},
		{"z", (*Mat4).RotateZ, mgl64.HomogRotate3DZ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, d := range []float64{0, 30, 90, -45, 270} {
				m := NewMat4().Translate(1, 2, 3)
				tt.ours(m, d)
				want := mgl64.Translate3D(1, 2, 3).Mul4(tt.ref(deg(d)))
				assertMat(t, m, want)
			}
		})
	}
}

func TestMat4ComposesInObjectSpace(t *testing.T) {
	m := NewMat4().Translate(1, 0, 0).RotateY(-20).RotateZ(35).RotateX(10).Scale(2, 3, 4)
	want := mgl64.Translate3D(1, 0, 0).
		Mul4(mgl64.HomogRotate3DY(deg(-20))).
		Mul4(mgl64.HomogRotate3DZ(deg(35))).
		Mul4(mgl64.HomogRotate3DX(deg(10))).
		Mul4(mgl64.Scale3D(2, 3, 4))
	assertMat(t, m, want)
}

func TestMat4Multiply(t *testing.T) {
	a := NewMat4().Translate(3, -1, 2).RotateZ(40)
	b := NewMat4().RotateX(-15).Scale(1, 2, 0.5)

	var out Mat4
	out.Multiply(a, b)
	want := mgl64.Mat4(*a).Mul4(mgl64.Mat4(*b))
	assertMat(t, &out, want)

	// aliasing the receiver with an operand
	a.Multiply(a, b)
	assertMat(t, a, want)
}

func TestMat4Perspective(t *testing.T) {
	m := NewMat4().Perspective(60, 16.0/9.0, 0.01, 100)
	assertMat(t, m, mgl64.Perspective(deg(60), 16.0/9.0, 0.01, 100))

	defaults := NewMat4().Perspective(0, 0, 0, 0)
	assertMat(t, defaults, mgl64.Perspective(deg(60), 1, 0.01, 100))
}

func TestMat4Ortho(t *testing.T) {
	m := NewMat4().Ortho(-1, 10, 3, -3, -4, 4)
	assertMat(t, m, mgl64.Ortho(-4, 4, -3, 3, -1, 10))
}

func TestMat4Set(t *testing.T) {
	m := NewMat4().Set(
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	)
	// first row is spread across the columns
	if m[0] != 1 || m[4] != 2 || m[8] != 3 || m[12] != 4 {
		t.Fatalf("row 0 stored wrong: %v", *m)
	}
	if m[3] != 13 || m[15] != 16 {
		t.Fatalf("row 3 stored wrong: %v", *m)
	}

	if err := m.FromSlice([]float64{1, 2, 3}); err == nil {
		t.Error("expected error for short slice")
	}
}

func TestMat4Inverse(t *testing.T) {
	m := NewMat4().Translate(1, 2, 3).RotateY(30).RotateX(-70).Scale(2, 2, 0.5)
	want := mgl64.Mat4(*m).Inv()

	if err := m.Inverse(); err != nil {
		t.Fatalf("inverse failed: %v", err)
	}
	assertMat(t, m, want)

	orig := NewMat4().Translate(4, 5, 6).RotateZ(12)
	inv := *orig
	if err := inv.Inverse(); err != nil {
		t.Fatal(err)
	}
	var prod Mat4
	prod.Multiply(orig, &inv)
	assertMat(t, &prod, mgl64.Ident4())
}

func TestMat4InverseSingular(t *testing.T) {
	m := NewMat4().Scale(1, 0, 1)
	before := *m

	err := m.Inverse()
	if !errors.Is(err, ErrSingular) {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
	if *m != before {
		t.Error("singular inverse modified the receiver")
	}
	if d := m.Determinant(); d != 0 {
		t.Errorf("determinant = %v, want 0", d)
	}
}

func TestMat3FromMat4Rot(t *testing.T) {
	m := NewMat4().RotateY(25).RotateX(40).Scale(1, 3, 0.5)
	want := mgl64.Mat4(*m).Mat3().Inv().Transpose()

	var n Mat3
	if err := n.FromMat4Rot(m); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 9; i++ {
		if math.Abs(n[i]-want[i]) > tol {
			t.Fatalf("element %d = %v, want %v", i, n[i], want[i])
		}
	}

	flat := NewMat4().Scale(0, 1, 1)
	id := NewMat3()
	if err := id.FromMat4Rot(flat); !errors.Is(err, ErrSingular) {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
	if *id != *NewMat3() {
		t.Error("singular FromMat4Rot modified the receiver")
	}
}
