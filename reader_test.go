package tagfile

import "testing"

func TestByteReaderVarint(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want int32
	}{
		{"zero", []byte{0}, 0},
		{"one", []byte{2}, 1},
		{"one_negative", []byte{3}, -1},
		{"large", []byte{0xFE, 0xFF, 0x7F}, 1048575},
		{"large_negative", []byte{0xFF, 0xFF, 0x7F}, -1048575},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newByteReader(c.in)
			got := r.varint()
			if got != c.want {
				t.Fatalf("varint(%v) = %d, want %d", c.in, got, c.want)
			}
		})
	}
}

func TestByteReaderBitfield(t *testing.T) {
	cases := []struct {
		name  string
		in    []byte
		count int
		want  []bool
	}{
		{"simple", []byte{1}, 8, []bool{true, false, false, false, false, false, false, false}},
		{"mixed", []byte{170}, 8, []bool{false, true, false, true, false, true, false, true}},
		{"multiple_bytes", []byte{1, 1}, 16, []bool{
			true, false, false, false, false, false, false, false,
			true, false, false, false, false, false, false, false,
		}},
		{"truncated", []byte{2}, 2, []bool{false, true}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newByteReader(c.in)
			got, err := r.bitfield(c.count)
			if err != nil {
				t.Fatalf("bitfield: %v", err)
			}
			if len(got) != len(c.want) {
				t.Fatalf("bitfield(%v, %d) = %v, want %v", c.in, c.count, got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("bitfield(%v, %d)[%d] = %v, want %v", c.in, c.count, i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestByteReaderBitfieldRejectsStraySetBit(t *testing.T) {
	r := newByteReader([]byte{2})
	if _, err := r.bitfield(1); err == nil {
		t.Fatal("expected an error for a set bit beyond count")
	}
}

func TestByteReaderAlign(t *testing.T) {
	r := newByteReader([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	r.bytesN(1)
	r.align(4)
	if r.position != 4 {
		t.Fatalf("position = %d, want 4", r.position)
	}
	r.align(4)
	if r.position != 4 {
		t.Fatalf("position after no-op align = %d, want 4", r.position)
	}
}

func TestByteReaderOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic reading past the end of the buffer")
		}
	}()
	r := newByteReader([]byte{1})
	r.u32()
}
