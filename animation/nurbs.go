package animation

// nurbs evaluates a non-uniform B-spline with integer (u8) knots and
// N-component control points. The basis-function and
// span-search algorithms are Cox-de Boor, grounded on
// splinecompressedanimation.rs's Nurbs::interpolate/bspline_basis/find_span
// (itself credited there to PredatorCZ/HavokLib).
type nurbs struct {
	controlPoints [][]float32
	knots         []uint8
	degree        int
}

func newNurbs(controlPoints [][]float32, knots []uint8, degree int) *nurbs {
	return &nurbs{controlPoints: controlPoints, knots: knots, degree: degree}
}

func (n *nurbs) count() int {
	if len(n.controlPoints) == 0 {
		return 0
	}
	return len(n.controlPoints[0])
}

func (n *nurbs) interpolate(t float32) []float32 {
	span := n.findSpan(t)
	basis := n.bsplineBasis(span, t)

	value := make([]float32, n.count())
	for i := 0; i <= n.degree; i++ {
		cp := n.controlPoints[span-i]
		for j := range value {
			value[j] += cp[j] * basis[i]
		}
	}
	return value
}

// bsplineBasis returns the degree+1 nonzero basis function values at span,
// built incrementally in the standard triangular recurrence. A knot span
// of zero width (knots[span+i+1-j] == knots[span-j]) is a degenerate span;
// this is treated as contributing 0 rather than dividing by zero.
func (n *nurbs) bsplineBasis(span int, t float32) []float32 {
	res := make([]float32, n.degree+1)
	res[0] = 1

	for i := 0; i < n.degree; i++ {
		for j := i; j >= 0; j-- {
			tmp := res[j]
			denom := float32(n.knots[span+i+1-j]) - float32(n.knots[span-j])
			if denom == 0 {
				tmp = 0
			} else {
				tmp *= t - float32(n.knots[span-j])
				tmp /= denom
			}
			res[j+1] += res[j] - tmp
			res[j] = tmp
		}
	}

	return res
}

func (n *nurbs) findSpan(t float32) int {
	numControlPoints := len(n.controlPoints)

	if t >= float32(n.knots[numControlPoints]) {
		return numControlPoints - 1
	}

	low := n.degree
	high := numControlPoints
	mid := (low + high) / 2

	for t < float32(n.knots[mid]) || t >= float32(n.knots[mid+1]) {
		if t < float32(n.knots[mid]) {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}

	return mid
}
