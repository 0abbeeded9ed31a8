package tagfile

import "testing"

// FuzzVarintRoundtrip checks that every int32 survives encodeVarint then
// varint unchanged, grounded on kungfusheep-glint/glint_fuzz_test.go's
// FuzzPrimitiveTypesRoundtrip shape (seed corpus via f.Add, property
// checked in the fuzz func body).
func FuzzVarintRoundtrip(f *testing.F) {
	for _, v := range []int32{0, 1, -1, 1048575, -1048575, 2147483647, -2147483647} {
		f.Add(v)
	}

	f.Fuzz(func(t *testing.T, v int32) {
		r := newByteReader(encodeVarint(v))
		got := r.varint()
		if got != v {
			t.Fatalf("varint(encodeVarint(%d)) = %d", v, got)
		}
	})
}

// FuzzBitfieldRoundtrip checks that any packed byte string, reinterpreted
// as a bitfield of its own bit-length, decodes back to the same []bool a
// manual bit-by-bit read would produce, and never panics.
func FuzzBitfieldRoundtrip(f *testing.F) {
	f.Add([]byte{0x01})
	f.Add([]byte{0xAA, 0x55})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := newByteReader(data)
		bits, err := r.bitfield(len(data) * 8)
		if err != nil {
			t.Fatalf("bitfield: %v", err)
		}
		for i, b := range data {
			for j := 0; j < 8; j++ {
				want := b&(1<<uint(j)) != 0
				if bits[i*8+j] != want {
					t.Fatalf("bit %d,%d = %v, want %v", i, j, bits[i*8+j], want)
				}
			}
		}
	})
}

// FuzzParse checks that Parse never panics on arbitrary input; every
// malformed-input path must surface as a returned error (via
// recoverInvalid), never an uncaught panic, regardless of how the bytes
// are corrupted.
func FuzzParse(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x1E, 0x0D, 0xB0, 0xCA, 0xCE, 0xFA, 0x11, 0xD0, 1, 6, 7})
	f.Add([]byte{0x1E, 0x0D, 0xB0, 0xCA, 0xCE, 0xFA, 0x11, 0xD0})
	f.Add([]byte{0, 0, 0, 0, 0, 0, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = Parse(data)
	})
}
