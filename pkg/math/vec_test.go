package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	if got := v.Length(); got != 7 {
		t.Errorf("Vec3.Length() = %v, want 7", got)
	}
	if got := v.LengthSquared(); got != 49 {
		t.Errorf("Vec3.LengthSquared() = %v, want 49", got)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Normalize() = %v, want zero", got)
	}
}

func TestVec3AddScaled(t *testing.T) {
	got := Vec3{1, 1, 1}.AddScaled(Vec3{1, 2, 3}, 2)
	want := Vec3{3, 5, 7}
	if got != want {
		t.Errorf("AddScaled() = %v, want %v", got, want)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		x, want float32
	}{
		{-2, -1},
		{0.5, 0.5},
		{3, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, -1, 1); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestBufferAtSetAt(t *testing.T) {
	buf := make([]float32, 9)
	SetAt(buf, 1, Vec3{1, 2, 3})
	if got := At(buf, 1); got != (Vec3{1, 2, 3}) {
		t.Errorf("At(1) = %v, want (1,2,3)", got)
	}
	if buf[3] != 1 || buf[4] != 2 || buf[5] != 3 {
		t.Errorf("SetAt wrote wrong slots: %v", buf)
	}
	AddAt(buf, 1, Vec3{1, 1, 1}, 2)
	if got := At(buf, 1); got != (Vec3{3, 4, 5}) {
		t.Errorf("AddAt = %v, want (3,4,5)", got)
	}
}

func TestBufferKernels(t *testing.T) {
	pos := []float32{
		0, 0, 0,
		3, 4, 0,
		1, 0, 0,
	}

	if got := VecDistSquared(pos, 0, pos, 1); got != 25 {
		t.Errorf("VecDistSquared = %v, want 25", got)
	}

	diff := make([]float32, 3)
	VecSetDiff(diff, 0, pos, 1, pos, 0, 0.5)
	if got := At(diff, 0); got != (Vec3{1.5, 2, 0}) {
		t.Errorf("VecSetDiff = %v, want (1.5,2,0)", got)
	}
	if got := VecLengthSquared(diff, 0); got != 6.25 {
		t.Errorf("VecLengthSquared = %v, want 6.25", got)
	}

	cross := make([]float32, 3)
	VecSetCross(cross, 0, pos, 2, pos, 1)
	if got := At(cross, 0); got != (Vec3{0, 0, 4}) {
		t.Errorf("VecSetCross = %v, want (0,0,4)", got)
	}
	if got := VecDot(pos, 1, pos, 2); got != 3 {
		t.Errorf("VecDot = %v, want 3", got)
	}

	VecAdd(pos, 0, pos, 2, 3)
	if got := At(pos, 0); got != (Vec3{3, 0, 0}) {
		t.Errorf("VecAdd = %v, want (3,0,0)", got)
	}
	VecScale(pos, 0, -1)
	if got := At(pos, 0); got != (Vec3{-3, 0, 0}) {
		t.Errorf("VecScale = %v, want (-3,0,0)", got)
	}
	VecCopy(pos, 2, pos, 1)
	if got := At(pos, 2); got != (Vec3{3, 4, 0}) {
		t.Errorf("VecCopy = %v, want (3,4,0)", got)
	}
}
