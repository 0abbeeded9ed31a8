package animation

import (
	"unsafe"

	"github.com/kungfusheep/hktagfile"
)

// blockReader is a little-endian cursor over one block's raw byte range,
// grounded on kungfusheep-glint/reader.go's Reader but returning errors
// rather than panicking: block data is a sub-slice already carved out by
// the caller, so bounds failures here are ordinary decode errors, not
// programmer-contract violations.
type blockReader struct {
	data []byte
	pos  int
}

func newBlockReader(data []byte) *blockReader {
	return &blockReader{data: data}
}

func (r *blockReader) bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, tagfile.NewInvalid("block data truncated: need %d bytes at offset %d, have %d", n, r.pos, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// align advances the cursor to the next multiple of unit, relative to the
// start of the block, per splinecompressedanimation.rs's BlockDataReader::align.
func (r *blockReader) align(unit int) error {
	if rem := r.pos % unit; rem != 0 {
		r.pos += unit - rem
	}
	if r.pos > len(r.data) {
		return tagfile.NewInvalid("alignment advanced past end of block data")
	}
	return nil
}

func (r *blockReader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *blockReader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func (r *blockReader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (r *blockReader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return *(*float32)(unsafe.Pointer(&v)), nil
}

// scaledScalar reads a K8 or K16 fixed-point scalar and normalizes it to
// [0, 1] by dividing by its type's maximum representable value.
func (r *blockReader) scaledScalar(t CompressedScalarType) (float32, error) {
	switch t {
	case ScalarK8:
		v, err := r.u8()
		if err != nil {
			return 0, err
		}
		return float32(v) / 255.0, nil
	case ScalarK16:
		v, err := r.u16()
		if err != nil {
			return 0, err
		}
		return float32(v) / 65535.0, nil
	default:
		return 0, tagfile.NewInvalid("unknown compressed scalar type %d", t)
	}
}
