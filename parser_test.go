package tagfile

import "testing"

func newTestParser(data []byte) *parser {
	return &parser{
		r:           newByteReader(data),
		opts:        DefaultOptions,
		version:     -1,
		strings:     newStringPool(),
		definitions: newDefinitionPool(),
		references:  newReferencePool(),
		pending:     make(map[int]int),
	}
}

func TestReadCachedStringFromData(t *testing.T) {
	p := newTestParser([]byte{0x0A, 'h', 'e', 'l', 'l', 'o'})
	got, err := p.readCachedString()
	if err != nil {
		t.Fatalf("readCachedString: %v", err)
	}
	if got != "hello" {
		t.Fatalf("readCachedString = %q, want %q", got, "hello")
	}
	if p.strings.len() != 3 {
		t.Fatalf("pool length = %d, want 3", p.strings.len())
	}
}

func TestReadCachedStringFromCache(t *testing.T) {
	// varint(-3)=7: a cache hit at pool index 3. Indices 0 and 1 are the
	// pool's sentinels, so the two appended strings sit at 2 and 3.
	p := newTestParser([]byte{7})
	p.strings.append("not this one")
	p.strings.append("this one")

	got, err := p.readCachedString()
	if err != nil {
		t.Fatalf("readCachedString: %v", err)
	}
	if got != "this one" {
		t.Fatalf("readCachedString = %q, want %q", got, "this one")
	}
	if p.strings.len() != 4 {
		t.Fatalf("pool length changed on cache hit: %d", p.strings.len())
	}
}

func TestParseTagfileSkeleton(t *testing.T) {
	data := []byte{}
	// magic: 0xD011FACECAB00D1E, little-endian.
	for _, b := range []byte{0x1E, 0x0D, 0xB0, 0xCA, 0xCE, 0xFA, 0x11, 0xD0} {
		data = append(data, b)
	}
	data = append(data, 2, 6) // tag=Metadata(1) as varint(1)=2, varint(3)=6
	data = append(data, 14)   // tag=EndOfFile(7) as varint(7)=14

	// The bare tag-dispatch loop succeeds on this skeleton: version 3, an
	// empty node array, and no dangling references.
	p := newTestParser(data)
	if err := p.run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if p.version != 3 {
		t.Fatalf("version = %d, want 3", p.version)
	}
	if len(p.nodes) != 0 {
		t.Fatalf("node array length = %d, want 0", len(p.nodes))
	}

	// The public Parse API additionally requires a root node, so the same
	// root-less skeleton is reported as invalid there.
	if _, err := ParseWithOptions(data, DefaultOptions); err == nil {
		t.Fatal("expected an error: no root node was ever written")
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := ParseWithOptions([]byte{0, 0, 0, 0, 0, 0, 0, 0, 7}, DefaultOptions)
	if err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

// encodeVarint is the inverse of byteReader.varint, built for test data
// construction only.
func encodeVarint(v int32) []byte {
	negative := v < 0
	var u uint32
	if negative {
		u = uint32(-v)
	} else {
		u = uint32(v)
	}

	first := byte((u & 0x3F) << 1)
	if negative {
		first |= 1
	}
	out := []byte{first}

	rest := u >> 6
	for rest != 0 {
		out[len(out)-1] |= 0x80
		out = append(out, byte(rest&0x7F))
		rest >>= 7
	}
	return out
}

func encodeString(s string) []byte {
	out := encodeVarint(int32(len(s)))
	return append(out, []byte(s)...)
}

func TestParseEndToEnd(t *testing.T) {
	var data []byte
	data = append(data, 0x1E, 0x0D, 0xB0, 0xCA, 0xCE, 0xFA, 0x11, 0xD0) // magic
	data = append(data, encodeVarint(tagMetadata)...)
	data = append(data, encodeVarint(3)...) // version

	data = append(data, encodeVarint(tagDefinition)...)
	data = append(data, encodeString("Simple")...)
	data = append(data, encodeVarint(1)...) // definition version
	data = append(data, encodeVarint(0)...) // parent index (none)
	data = append(data, encodeVarint(1)...) // field count
	data = append(data, encodeString("value")...)
	data = append(data, encodeVarint(0x2)...) // FieldKind base=Integer

	data = append(data, encodeVarint(tagNode)...)
	data = append(data, encodeVarint(1)...) // definition pool index
	data = append(data, 0x01)               // bitfield: field 0 set
	data = append(data, encodeVarint(42)...)

	data = append(data, encodeVarint(tagEndOfFile)...)

	root, err := ParseWithOptions(data, DefaultOptions)
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	if root.Name() != "Simple" {
		t.Fatalf("Name() = %q, want %q", root.Name(), "Simple")
	}
	if root.Version() != 1 {
		t.Fatalf("Version() = %d, want 1", root.Version())
	}
	value, err := root.FieldI32("value")
	if err != nil {
		t.Fatalf("FieldI32: %v", err)
	}
	if value != 42 {
		t.Fatalf("FieldI32(value) = %d, want 42", value)
	}
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	data := []byte{0x1E, 0x0D, 0xB0, 0xCA, 0xCE, 0xFA, 0x11, 0xD0}
	data = append(data, 2, 8) // tag=Metadata(1) as varint(1)=2, varint(4)=8
	data = append(data, 14)   // tag=EndOfFile(7) as varint(7)=14

	_, err := ParseWithOptions(data, DefaultOptions)
	if err == nil {
		t.Fatal("expected an error for an unsupported version")
	}
}
