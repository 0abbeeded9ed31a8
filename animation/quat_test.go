package animation

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestReadK40QuatIdentity(t *testing.T) {
	const delta = uint64((1 << 12) - 1) >> 1 // 2047

	var n uint64
	n |= delta
	n |= delta << 12
	n |= delta << 24
	n |= uint64(3) << 36 // shift=3
	// invert bit (38) left clear

	data := []byte{
		byte(n),
		byte(n >> 8),
		byte(n >> 16),
		byte(n >> 24),
		byte(n >> 32),
	}

	r := newBlockReader(data)
	got, err := readK40Quat(r)
	if err != nil {
		t.Fatalf("readK40Quat: %v", err)
	}

	want := [4]float32{0, 0, 0, 1}
	for i := range want {
		if !approxEqual(got[i], want[i], 1e-4) {
			t.Fatalf("readK40Quat() = %v, want %v", got, want)
		}
	}
}

func TestReadK40QuatShiftAndInvert(t *testing.T) {
	const delta = uint64((1 << 12) - 1) >> 1

	var n uint64
	n |= delta
	n |= delta << 12
	n |= delta << 24
	n |= uint64(1) << 36 // shift=1
	n |= uint64(1) << 38 // invert=1

	data := []byte{
		byte(n),
		byte(n >> 8),
		byte(n >> 16),
		byte(n >> 24),
		byte(n >> 32),
	}

	r := newBlockReader(data)
	got, err := readK40Quat(r)
	if err != nil {
		t.Fatalf("readK40Quat: %v", err)
	}

	magSq := float64(got[0])*float64(got[0]) + float64(got[1])*float64(got[1]) +
		float64(got[2])*float64(got[2]) + float64(got[3])*float64(got[3])
	if math.Abs(magSq-1) > 1e-3 {
		t.Fatalf("|q|^2 = %v, want ~1", magSq)
	}
}
