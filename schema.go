package tagfile

// FieldKind is the tagged variant describing how a field's value is
// encoded.
type FieldKind struct {
	tag   fieldKindTag
	inner *FieldKind // Vector(inner), Array(inner, _)
	name  string     // Struct(name), Reference(name)
	count int        // Array(_, count)
}

type fieldKindTag int

const (
	KindVoid fieldKindTag = iota
	KindByte
	KindInteger
	KindFloat
	KindString
	KindStruct
	KindReference
	KindVector
	KindArray
)

func (k FieldKind) Tag() fieldKindTag { return k.tag }
func (k FieldKind) Inner() *FieldKind { return k.inner }
func (k FieldKind) Name() string      { return k.name }
func (k FieldKind) Count() int        { return k.count }

// Field is one named, typed entry in a Definition's own field list (not
// including inherited fields).
type Field struct {
	Name string
	Kind FieldKind
}

// Definition is an immutable struct schema: a name, a version, an
// optional parent forming a single-inheritance chain, and this
// definition's own ordered fields. Grounded on original_source's
// node.rs Definition/Field and tagfile/definition.rs's reader.
type Definition struct {
	Name    string
	Version int32
	Parent  *Definition
	Fields  []Field
}

// InheritedFields returns the concatenation of the parent chain's fields
// (parent-first) followed by this definition's own fields, last.
func (d *Definition) InheritedFields() []Field {
	if d.Parent == nil {
		return append([]Field(nil), d.Fields...)
	}
	fields := d.Parent.InheritedFields()
	return append(fields, d.Fields...)
}

// IsOrInheritedFrom walks the parent chain (including self) for a name
// match.
func (d *Definition) IsOrInheritedFrom(name string) bool {
	for cur := d; cur != nil; cur = cur.Parent {
		if cur.Name == name {
			return true
		}
	}
	return false
}

// readDefinition reads a `Definition` tag:
// cached string name, varint version, varint parent index into the
// definition pool (0 = no parent), varint field count, then that many
// (cached string name, FieldKind) pairs.
func (p *parser) readDefinition() (*Definition, error) {
	name, err := p.readCachedString()
	if err != nil {
		return nil, err
	}
	version := p.r.varint()

	parentIndex := int(p.r.varint())
	parent, err := p.definitions.get(parentIndex)
	if err != nil {
		return nil, err
	}

	fieldCount := int(p.r.varint())
	checkLimit(uint(fieldCount), p.opts.Limits.MaxSchemaFields, "definition fields")
	fields := make([]Field, fieldCount)
	for i := range fields {
		fieldName, err := p.readCachedString()
		if err != nil {
			return nil, err
		}
		kind, err := p.readFieldKind()
		if err != nil {
			return nil, err
		}
		fields[i] = Field{Name: fieldName, Kind: kind}
	}

	def := &Definition{Name: name, Version: version, Parent: parent, Fields: fields}
	p.definitions.add(def)
	return def, nil
}

// readFieldKind decodes one FieldKind:
// a single varint kind_data, base = kind_data&0xF, is_vector =
// kind_data&0x10, is_array = kind_data&0x20 (array count read before the
// base kind's own payload, and taking precedence over is_vector when
// both bits are set).
func (p *parser) readFieldKind() (FieldKind, error) {
	kindData := p.r.varint()
	base := kindData & 0xF
	isVector := kindData&0x10 != 0
	isArray := kindData&0x20 != 0

	var arrayCount int
	if isArray {
		arrayCount = int(p.r.varint())
	}

	var kind FieldKind
	switch base {
	case 0x0:
		kind = FieldKind{tag: KindVoid}
	case 0x1:
		kind = FieldKind{tag: KindByte}
	case 0x2:
		kind = FieldKind{tag: KindInteger}
	case 0x3:
		kind = FieldKind{tag: KindFloat}
	case 0x4:
		kind = floatArray(4)
	case 0x5:
		kind = floatArray(8)
	case 0x6:
		kind = floatArray(12)
	case 0x7:
		kind = floatArray(16)
	case 0x8:
		name, err := p.readCachedString()
		if err != nil {
			return FieldKind{}, err
		}
		kind = FieldKind{tag: KindReference, name: name}
	case 0x9:
		name, err := p.readCachedString()
		if err != nil {
			return FieldKind{}, err
		}
		kind = FieldKind{tag: KindStruct, name: name}
	case 0xA:
		kind = FieldKind{tag: KindString}
	default:
		return FieldKind{}, newInvalid("unexpected base field kind %d", base)
	}

	inner := kind
	switch {
	case isArray:
		kind = FieldKind{tag: KindArray, inner: &inner, count: arrayCount}
	case isVector:
		kind = FieldKind{tag: KindVector, inner: &inner}
	}

	return kind, nil
}

func floatArray(n int) FieldKind {
	f := FieldKind{tag: KindFloat}
	return FieldKind{tag: KindArray, inner: &f, count: n}
}
