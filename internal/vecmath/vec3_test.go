package vecmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestVec3Arithmetic(t *testing.T) {
	v := V(1, 2, 3)
	v.Add(V(1, 1, 1)).Mul(2).Sub(V(0, 1, 2))
	if v != V(4, 5, 6) {
		t.Errorf("chain = %v, want {4 5 6}", v)
	}

	var c Vec3
	c.Copy(v).Set(7, 8, 9)
	if v != V(4, 5, 6) {
		t.Error("Copy aliased the source")
	}
	if c != V(7, 8, 9) {
		t.Errorf("Set = %v", c)
	}
}

func TestVec3Length(t *testing.T) {
	tests := []struct {
		v    Vec3
		want float64
	}{
		{V(3, 4, 0), 5},
		{V(0, 0, 0), 0},
		{V(1, 2, 2), 3},
	}
	for _, tt := range tests {
		if got := tt.v.Length(); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Length(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}

	if d := V(1, 1, 1).Distance(V(1, 4, 5)); math.Abs(d-5) > 1e-12 {
		t.Errorf("Distance = %v, want 5", d)
	}

	n := V(0, 0, 0)
	n.Normalize()
	if n != V(0, 0, 0) {
		t.Error("normalizing zero vector changed it")
	}
	u := V(0, 3, 4)
	if l := u.Normalize().Length(); math.Abs(l-1) > 1e-12 {
		t.Errorf("normalized length = %v", l)
	}
}

func TestVec3TransformMat4(t *testing.T) {
	m := NewMat4().Translate(1, 2, 3).RotateY(90)
	src := V(1, 0, 0)

	var got Vec3
	got.TransformMat4(src, m)

	want := mgl64.TransformCoordinate(mgl64.Vec3{1, 0, 0}, mgl64.Mat4(*m))
	if math.Abs(got.X-want[0]) > tol || math.Abs(got.Y-want[1]) > tol || math.Abs(got.Z-want[2]) > tol {
		t.Errorf("TransformMat4 = %v, want %v", got, want)
	}

	// in-place use with the receiver as the source
	p := V(0, 0, 5)
	persp := NewMat4().Perspective(90, 1, 1, 10)
	p.TransformMat4(p, persp)
	if !p.IsFinite() {
		t.Fatalf("projected point not finite: %v", p)
	}
}

func TestVec3TransformZeroW(t *testing.T) {
	// w row all zero: the divide falls back to 1
	m := NewMat4()
	m[15] = 0
	var got Vec3
	got.TransformMat4(V(2, 3, 4), m)
	if got != V(2, 3, 4) {
		t.Errorf("zero-w transform = %v, want {2 3 4}", got)
	}
}
