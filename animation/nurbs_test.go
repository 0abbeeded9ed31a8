package animation

import "testing"

func TestNurbsSingleControlPointDegreeZero(t *testing.T) {
	point := []float32{1, 2, 3}
	// degree 0 needs num_items+degree+2 = 0+0+2 = 2 knots bracketing the
	// single control point.
	n := newNurbs([][]float32{point}, []uint8{0, 10}, 0)

	for _, t32 := range []float32{0, 3, 9.999} {
		got := n.interpolate(t32)
		for i := range point {
			if got[i] != point[i] {
				t.Fatalf("interpolate(%v) = %v, want %v", t32, got, point)
			}
		}
	}
}

func TestNurbsPartitionOfUnity(t *testing.T) {
	points := [][]float32{{0}, {1}, {2}, {3}}
	knots := []uint8{0, 0, 1, 2, 3, 3}
	n := newNurbs(points, knots, 1)

	for _, tt := range []float32{0, 0.5, 1, 1.5, 2, 2.9} {
		span := n.findSpan(tt)
		basis := n.bsplineBasis(span, tt)
		var sum float32
		for _, b := range basis {
			sum += b
		}
		if sum < 0.99 || sum > 1.01 {
			t.Fatalf("basis sum at t=%v = %v, want ~1", tt, sum)
		}
	}
}
