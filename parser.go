package tagfile

import "log"

const magic uint64 = 0xD011FACECAB00D1E

const (
	tagMetadata   = 1
	tagDefinition = 2
	tagNode       = 4
	tagEndOfFile  = 7
)

const supportedVersion int32 = 3

// DecodeLimits bounds parser resource usage, mirroring
// kungfusheep-glint/glint.go's DecodeLimits/DefaultLimits convention
// (zero means unlimited).
type DecodeLimits struct {
	MaxNodes        uint // maximum number of node-array slots
	MaxStringLen    uint // maximum length of a single cached string, in bytes
	MaxSchemaFields uint // maximum fields in a single Definition
}

// DefaultLimits provides sensible defaults for untrusted input.
var DefaultLimits = DecodeLimits{
	MaxNodes:        1_000_000,
	MaxStringLen:    16 * 1024 * 1024,
	MaxSchemaFields: 10_000,
}

// ParseOptions configures a Parse call.
type ParseOptions struct {
	Limits DecodeLimits
	Logger *log.Logger // diagnostic logging sink; defaults to log.Default()
}

// DefaultOptions is used by Parse.
var DefaultOptions = ParseOptions{Limits: DefaultLimits}

func (o ParseOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func checkLimit(length, limit uint, name string) {
	if limit > 0 && length > limit {
		panic(newInvalid("%s length %d exceeds limit %d", name, length, limit))
	}
}

// parser drives the tag-stream state machine that reads a tagfile body
// into a flat node array.
type parser struct {
	r       byteReader
	opts    ParseOptions
	version int32

	strings     *stringPool
	definitions *definitionPool
	references  *referencePool
	pending     map[int]int // reference-pool index -> reserved node-array slot

	nodes []*Node
}

// Parse decodes a complete tagfile byte stream and returns a Walker
// positioned at the root node.
func Parse(data []byte) (*Walker, error) {
	return ParseWithOptions(data, DefaultOptions)
}

// ParseWithOptions is Parse with explicit DecodeLimits/logging.
func ParseWithOptions(data []byte, opts ParseOptions) (w *Walker, err error) {
	defer recoverInvalid(&err)

	p := &parser{
		r:           newByteReader(data),
		opts:        opts,
		version:     -1,
		strings:     newStringPool(),
		definitions: newDefinitionPool(),
		references:  newReferencePool(),
		pending:     make(map[int]int),
	}

	if err := p.run(); err != nil {
		return nil, err
	}

	rootIndex, ok := p.references.get(1)
	if !ok {
		return nil, newInvalid("no root node found")
	}

	nodes := make([]Node, len(p.nodes))
	for i, n := range p.nodes {
		nodes[i] = *n
	}

	return &Walker{nodes: &nodes, index: rootIndex}, nil
}

// run drives the tag-stream state machine to completion.
// It does not itself require a root node to exist -- an empty, root-less
// stream still "completes" as long as its node array is fully filled and
// no forward reference is left dangling. Resolving a root is ParseWithOptions's
// concern, layered on top.
func (p *parser) run() error {
	if p.r.bytesLeft() < 8 {
		return newInvalid("truncated magic")
	}
	if got := p.r.u64(); got != magic {
		return newInvalid("unexpected magic 0x%016X", got)
	}

	for {
		tag := p.r.varint()
		switch tag {
		case tagMetadata:
			p.version = p.r.varint()
			if p.version != supportedVersion {
				return newInvalid("unsupported file version %d", p.version)
			}

		case tagDefinition:
			if _, err := p.readDefinition(); err != nil {
				return err
			}

		case tagNode:
			if _, err := p.readNode(nil, true); err != nil {
				return err
			}

		case tagEndOfFile:
			return p.checkComplete()

		default:
			return newInvalid("unknown tag id %d", tag)
		}
	}
}

// checkComplete enforces the node-array completeness invariant: every
// reserved slot was filled and no pending forward reference survives
// to the end of the file.
func (p *parser) checkComplete() error {
	if len(p.pending) > 0 {
		return newInvalid("%d dangling forward reference(s) remaining at end of file", len(p.pending))
	}
	for i, n := range p.nodes {
		if n == nil {
			return newInvalid("reserved node slot %d was never filled", i)
		}
	}
	return nil
}

// readCachedString reads a cached string: length<=0 hits
// the pool at index -length (index 0 is the empty string); length>0
// reads that many UTF-8 bytes and appends them to the pool.
func (p *parser) readCachedString() (string, error) {
	length := p.r.varint()
	if length <= 0 {
		return p.strings.get(int(-length))
	}

	checkLimit(uint(length), p.opts.Limits.MaxStringLen, "string")
	b := p.r.bytesN(uint(length))
	s := string(b)
	p.strings.append(s)
	return s, nil
}

// allocateNode reserves a fresh node-array slot and returns its index.
func (p *parser) allocateNode() int {
	checkLimit(uint(len(p.nodes)+1), p.opts.Limits.MaxNodes, "node array")
	p.nodes = append(p.nodes, nil)
	return len(p.nodes) - 1
}

// readNode reads one node instance. When definition is
// nil (top-level nodes), the definition is resolved from a definition-pool
// index read from the stream. When storeReference is true, the node
// claims the next reference-pool slot, binding to a pending forward
// reservation if one already exists for that slot.
func (p *parser) readNode(definition *Definition, storeReference bool) (int, error) {
	nodeIndex := len(p.nodes)

	if storeReference {
		refIndex := p.references.len()
		if slot, ok := p.pending[refIndex]; ok {
			nodeIndex = slot
			delete(p.pending, refIndex)
			p.opts.logger().Printf("tagfile: node at reference index %d resolves a forward reference reserved at node slot %d", refIndex, slot)
		}
		p.references.append(nodeIndex)
	}

	if nodeIndex == len(p.nodes) {
		p.allocateNode()
	}

	var err error
	if definition == nil {
		defIndex := int(p.r.varint())
		definition, err = p.definitions.get(defIndex)
		if err != nil {
			return 0, err
		}
		if definition == nil {
			return 0, newInvalid("missing definition at index %d", defIndex)
		}
	}

	node, err := p.readNodeBody(definition)
	if err != nil {
		return 0, err
	}

	p.nodes[nodeIndex] = node
	return nodeIndex, nil
}

// readNodeBody reads the bitfield + values for a node of the given
// definition, without touching the reference pool -- used both for
// top-level nodes (via readNode) and for inline Struct-field nodes.
func (p *parser) readNodeBody(definition *Definition) (*Node, error) {
	fields := definition.InheritedFields()
	mask, err := p.r.bitfield(len(fields))
	if err != nil {
		return nil, err
	}

	values := make([]Value, 0, len(fields))
	for i, f := range fields {
		if !mask[i] {
			continue
		}
		v, err := p.readValue(f.Kind)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return &Node{Definition: definition, FieldMask: mask, Values: values}, nil
}

// readReferenceValue resolves or reserves a forward reference for a
// Reference(name) field.
func (p *parser) readReferenceValue() (int, error) {
	refIndex := int(p.r.varint())

	if nodeIndex, ok := p.references.get(refIndex); ok {
		return nodeIndex, nil
	}

	if slot, ok := p.pending[refIndex]; ok {
		return slot, nil
	}

	slot := p.allocateNode()
	p.pending[refIndex] = slot
	return slot, nil
}

// readValue reads one field value according to its kind.
func (p *parser) readValue(kind FieldKind) (Value, error) {
	switch kind.Tag() {
	case KindByte:
		return valueU8(p.r.u8()), nil

	case KindInteger:
		return valueI32(p.r.varint()), nil

	case KindFloat:
		return valueF32(p.r.f32()), nil

	case KindString:
		s, err := p.readCachedString()
		if err != nil {
			return Value{}, err
		}
		return valueString(s), nil

	case KindStruct:
		def, err := p.definitions.byName(kind.Name())
		if err != nil {
			return Value{}, err
		}
		idx, err := p.readNode(def, false)
		if err != nil {
			return Value{}, err
		}
		return valueNode(idx), nil

	case KindReference:
		idx, err := p.readReferenceValue()
		if err != nil {
			return Value{}, err
		}
		return valueNode(idx), nil

	case KindVector:
		count := int(p.r.varint())
		return p.readValueVector(*kind.Inner(), count)

	case KindArray:
		return p.readFloatArrayValue(kind)

	default:
		return Value{}, newInvalid("unhandled field kind %d", kind.Tag())
	}
}

// readFloatArrayValue reads an Array(Float, N) field:
// for N==4 a leading varint selects 3 or 4 floats; otherwise exactly N
// floats are read.
func (p *parser) readFloatArrayValue(kind FieldKind) (Value, error) {
	inner := kind.Inner()
	n := kind.Count()
	if inner == nil || inner.Tag() != KindFloat || (n != 4 && n != 8 && n != 12 && n != 16) {
		return Value{}, newInvalid("unexpected array kind (inner=%v count=%d)", inner, n)
	}

	count := n
	if n == 4 {
		count = int(p.r.varint())
		if count != 3 && count != 4 {
			return Value{}, newInvalid("unexpected array length %d", count)
		}
	}

	vals := make([]Value, count)
	for i := range vals {
		vals[i] = valueF32(p.r.f32())
	}
	return valueVector(vals), nil
}

// readValueVector reads the `count` elements of a Vector(inner) field.
// Struct inners use the flattened struct-of-arrays layout described on
// readStructVector (do not attempt a row-major read for
// Vector(Struct(_))).
func (p *parser) readValueVector(kind FieldKind, count int) (Value, error) {
	switch kind.Tag() {
	case KindByte:
		vals := make([]Value, count)
		for i := range vals {
			vals[i] = valueU8(p.r.u8())
		}
		return valueVector(vals), nil

	case KindInteger:
		// A format quirk preserved from the original decoder: vectors of
		// plain integers are preceded by a marker that is always 4.
		marker := p.r.varint()
		if marker != 4 {
			return Value{}, newInvalid("unexpected integer vector marker %d", marker)
		}
		vals := make([]Value, count)
		for i := range vals {
			vals[i] = valueI32(p.r.varint())
		}
		return valueVector(vals), nil

	case KindString:
		vals := make([]Value, count)
		for i := range vals {
			s, err := p.readCachedString()
			if err != nil {
				return Value{}, err
			}
			vals[i] = valueString(s)
		}
		return valueVector(vals), nil

	case KindStruct:
		return p.readStructVector(kind, count)

	case KindReference:
		vals := make([]Value, count)
		for i := range vals {
			idx, err := p.readReferenceValue()
			if err != nil {
				return Value{}, err
			}
			vals[i] = valueNode(idx)
		}
		return valueVector(vals), nil

	case KindArray:
		return p.readArrayVector(kind, count)

	default:
		return Value{}, newInvalid("unhandled vector kind %d", kind.Tag())
	}
}

// readStructVector reads a Vector(Struct(name)) field using a flattened
// column-major layout: one bitfield for the whole vector, then one full
// Vector(field.kind) per set field (a column), transposed into `count`
// synthesized nodes that are appended to the node array.
func (p *parser) readStructVector(kind FieldKind, count int) (Value, error) {
	def, err := p.definitions.byName(kind.Name())
	if err != nil {
		return Value{}, err
	}

	fields := def.InheritedFields()
	mask, err := p.r.bitfield(len(fields))
	if err != nil {
		return Value{}, err
	}

	var columns [][]Value
	for i, f := range fields {
		if !mask[i] {
			continue
		}
		column, err := p.readValueVector(f.Kind, count)
		if err != nil {
			return Value{}, err
		}
		columns = append(columns, column.vector)
	}

	nodeVals := make([]Value, count)
	for row := 0; row < count; row++ {
		values := make([]Value, len(columns))
		for ci, column := range columns {
			values[ci] = column[row]
		}
		idx := p.allocateNode()
		p.nodes[idx] = &Node{Definition: def, FieldMask: mask, Values: values}
		nodeVals[row] = valueNode(idx)
	}

	return valueVector(nodeVals), nil
}

// readArrayVector reads a Vector(Array(Float,N)) field, applying the
// N==4 effective-count rule once per element.
func (p *parser) readArrayVector(kind FieldKind, count int) (Value, error) {
	inner := kind.Inner()
	n := kind.Count()
	if inner == nil || inner.Tag() != KindFloat || (n != 4 && n != 8 && n != 12 && n != 16) {
		return Value{}, newInvalid("unexpected vector-of-array kind (inner=%v count=%d)", inner, n)
	}

	vals := make([]Value, count)
	for i := range vals {
		elemCount := n
		if n == 4 {
			elemCount = int(p.r.varint())
			if elemCount != 3 && elemCount != 4 {
				return Value{}, newInvalid("unexpected array length %d", elemCount)
			}
		}
		arr := make([]Value, elemCount)
		for j := range arr {
			arr[j] = valueF32(p.r.f32())
		}
		vals[i] = valueVector(arr)
	}

	return valueVector(vals), nil
}
