package animation

import "github.com/kungfusheep/hktagfile"

// CompressedScalarType selects the fixed-point width used to pack a single
// spline control-point scalar.
type CompressedScalarType int

const (
	ScalarK8 CompressedScalarType = iota
	ScalarK16
)

func readScalarType(v uint8) (CompressedScalarType, error) {
	switch v {
	case 0:
		return ScalarK8, nil
	case 1:
		return ScalarK16, nil
	default:
		return 0, tagfile.NewInvalid("%d is not a valid compressed scalar type", v)
	}
}

// CompressedQuaternionType selects the fixed-point packing used for a
// rotation track. Only K32, K40 and K48 are implemented; K24, K16 and K128
// are recognized but rejected as Unsupported -- no sample data exists to
// ground a decoder for them.
type CompressedQuaternionType int

const (
	QuatK32 CompressedQuaternionType = iota
	QuatK40
	QuatK48
	QuatK24
	QuatK16
	QuatK128
)

func readQuaternionType(v uint8) (CompressedQuaternionType, error) {
	switch v {
	case 0:
		return QuatK32, nil
	case 1:
		return QuatK40, nil
	case 2:
		return QuatK48, nil
	case 3:
		return QuatK24, nil
	case 4:
		return QuatK16, nil
	case 5:
		return QuatK128, nil
	default:
		return 0, tagfile.NewInvalid("%d is not a valid compressed quaternion type", v)
	}
}

// valueMask classifies a single component of a vectorMask/quatMask: does it
// carry no data, a static value, or spline control points.
type valueMask int

const (
	maskEmpty valueMask = iota
	maskStatic
	maskSpline
)

// vectorMask packs the per-component Static/Spline bits for a 3-component
// (translate or scale) track into one byte: the low nibble flags which
// components are static, the high nibble flags which are spline-sampled.
type vectorMask struct{ bits uint8 }

func (m vectorMask) hasStatic() bool { return m.bits&0x0F != 0 }
func (m vectorMask) hasSpline() bool { return m.bits&0xF0 != 0 }

func (m vectorMask) component(index int) (valueMask, error) {
	if index >= 3 {
		return 0, tagfile.NewInvalid("vector mask component index %d out of range", index)
	}
	switch (m.bits >> uint(index)) & 0x11 {
	case 0x00:
		return maskEmpty, nil
	case 0x01:
		return maskStatic, nil
	case 0x10:
		return maskSpline, nil
	default:
		return 0, tagfile.NewInvalid("invalid vector mask byte 0x%02X", m.bits)
	}
}

// quatMask packs the Static/Spline flags for a rotation track. Unlike
// vectorMask it is never decomposed per-component: a rotation track is
// either entirely static (one packed quaternion) or entirely spline
// (a quaternion-valued NURBS).
type quatMask struct{ bits uint8 }

func (m quatMask) hasStatic() bool { return m.bits&0x0F != 0 }
func (m quatMask) hasSpline() bool { return m.bits&0xF0 != 0 }

// transformMask is the 4-byte header preceding each track's data: a
// compression byte packing the translate/rotate/scale primitive types, and
// one mask byte per component.
type transformMask struct {
	compression uint8
	translate   vectorMask
	rotate      quatMask
	scale       vectorMask
}

func readTransformMask(r *blockReader) (transformMask, error) {
	b, err := r.bytes(4)
	if err != nil {
		return transformMask{}, err
	}
	return transformMask{
		compression: b[0],
		translate:   vectorMask{b[1]},
		rotate:      quatMask{b[2]},
		scale:       vectorMask{b[3]},
	}, nil
}

func (m transformMask) translatePrimitiveType() (CompressedScalarType, error) {
	return readScalarType(m.compression & 0x3)
}

func (m transformMask) rotatePrimitiveType() (CompressedQuaternionType, error) {
	return readQuaternionType((m.compression >> 2) & 0xF)
}

func (m transformMask) scalePrimitiveType() (CompressedScalarType, error) {
	return readScalarType(m.compression >> 6)
}
