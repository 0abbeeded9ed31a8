package tagfile

// Walker is a read-only cursor into a decoded node graph. It is a small
// value (a shared node-array pointer plus an index) and is safe to copy
// and share across goroutines: the graph it points at is immutable once
// Parse has returned.
type Walker struct {
	nodes *[]Node
	index int
}

func (w Walker) node() *Node {
	return &(*w.nodes)[w.index]
}

// Name returns the node's own definition name (not the root ancestor).
func (w Walker) Name() string {
	return w.node().Definition.Name
}

// Version returns the node's own definition version.
func (w Walker) Version() int32 {
	return w.node().Definition.Version
}

// IsOrInheritedFrom reports whether the node's definition is, or inherits
// from (directly or transitively), the named definition.
func (w Walker) IsOrInheritedFrom(name string) bool {
	return w.node().Definition.IsOrInheritedFrom(name)
}

// fieldIndex finds the inherited-field-array index of the named field,
// scanning parent-first: the root ancestor's field wins a name collision,
// matching the recursion-unwind order a walk up the definition chain to
// the root and back down would produce.
func (n *Node) fieldIndex(name string) (int, bool) {
	fields := n.Definition.InheritedFields()
	for i, f := range fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

func (w Walker) value(name string) (Value, error) {
	n := w.node()
	idx, ok := n.fieldIndex(name)
	if !ok {
		return Value{}, newInvalid("%s has no field %q", n.Definition.Name, name)
	}
	v, ok := n.valueAt(idx)
	if !ok {
		return Value{}, newInvalid("%s.%s is not set", n.Definition.Name, name)
	}
	return v, nil
}

func wrongKind(nodeName, field string, v Value) error {
	return newInvalid("%s.%s has unexpected value kind %d", nodeName, field, v.Tag())
}

// FieldU8 reads a Byte field. def, if given, is returned when the field is
// absent (unset by the node's bitfield); absence with no default is an
// error.
func (w Walker) FieldU8(name string, def ...uint8) (uint8, error) {
	v, err := w.value(name)
	if err != nil {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, err
	}
	if v.Tag() != ValueU8 {
		return 0, wrongKind(w.Name(), name, v)
	}
	return v.u8, nil
}

// FieldI32 reads an Integer field.
func (w Walker) FieldI32(name string, def ...int32) (int32, error) {
	v, err := w.value(name)
	if err != nil {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, err
	}
	if v.Tag() != ValueI32 {
		return 0, wrongKind(w.Name(), name, v)
	}
	return v.i32, nil
}

// FieldF32 reads a Float field.
func (w Walker) FieldF32(name string, def ...float32) (float32, error) {
	v, err := w.value(name)
	if err != nil {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, err
	}
	if v.Tag() != ValueF32 {
		return 0, wrongKind(w.Name(), name, v)
	}
	return v.f32, nil
}

// FieldString reads a String field.
func (w Walker) FieldString(name string, def ...string) (string, error) {
	v, err := w.value(name)
	if err != nil {
		if len(def) > 0 {
			return def[0], nil
		}
		return "", err
	}
	if v.Tag() != ValueString {
		return "", wrongKind(w.Name(), name, v)
	}
	return v.str, nil
}

// FieldNode reads a Struct or Reference field and returns a Walker
// positioned at the referenced node.
func (w Walker) FieldNode(name string) (Walker, error) {
	v, err := w.value(name)
	if err != nil {
		return Walker{}, err
	}
	if v.Tag() != ValueNode {
		return Walker{}, wrongKind(w.Name(), name, v)
	}
	return Walker{nodes: w.nodes, index: v.node}, nil
}

// FieldFloats reads an Array(Float, N) field as a plain []float32.
func (w Walker) FieldFloats(name string) ([]float32, error) {
	v, err := w.value(name)
	if err != nil {
		return nil, err
	}
	if v.Tag() != ValueVector {
		return nil, wrongKind(w.Name(), name, v)
	}
	out := make([]float32, len(v.vector))
	for i, e := range v.vector {
		if e.Tag() != ValueF32 {
			return nil, wrongKind(w.Name(), name, e)
		}
		out[i] = e.f32
	}
	return out, nil
}

// FieldNodeVec reads a Vector(Struct(_)) or Vector(Reference(_)) field as
// a slice of Walkers, one per element.
func (w Walker) FieldNodeVec(name string) ([]Walker, error) {
	v, err := w.value(name)
	if err != nil {
		return nil, err
	}
	if v.Tag() != ValueVector {
		return nil, wrongKind(w.Name(), name, v)
	}
	out := make([]Walker, len(v.vector))
	for i, e := range v.vector {
		if e.Tag() != ValueNode {
			return nil, wrongKind(w.Name(), name, e)
		}
		out[i] = Walker{nodes: w.nodes, index: e.node}
	}
	return out, nil
}

// FieldU8Vec reads a Vector(Byte) field.
func (w Walker) FieldU8Vec(name string) ([]uint8, error) {
	v, err := w.value(name)
	if err != nil {
		return nil, err
	}
	if v.Tag() != ValueVector {
		return nil, wrongKind(w.Name(), name, v)
	}
	out := make([]uint8, len(v.vector))
	for i, e := range v.vector {
		if e.Tag() != ValueU8 {
			return nil, wrongKind(w.Name(), name, e)
		}
		out[i] = e.u8
	}
	return out, nil
}

// FieldI32Vec reads a Vector(Integer) field.
func (w Walker) FieldI32Vec(name string) ([]int32, error) {
	v, err := w.value(name)
	if err != nil {
		return nil, err
	}
	if v.Tag() != ValueVector {
		return nil, wrongKind(w.Name(), name, v)
	}
	out := make([]int32, len(v.vector))
	for i, e := range v.vector {
		if e.Tag() != ValueI32 {
			return nil, wrongKind(w.Name(), name, e)
		}
		out[i] = e.i32
	}
	return out, nil
}

// FieldStringVec reads a Vector(String) field.
func (w Walker) FieldStringVec(name string) ([]string, error) {
	v, err := w.value(name)
	if err != nil {
		return nil, err
	}
	if v.Tag() != ValueVector {
		return nil, wrongKind(w.Name(), name, v)
	}
	out := make([]string, len(v.vector))
	for i, e := range v.vector {
		if e.Tag() != ValueString {
			return nil, wrongKind(w.Name(), name, e)
		}
		out[i] = e.str
	}
	return out, nil
}

// FieldFloatArrayVec reads a Vector(Array(Float,_)) field -- e.g. a
// vector of per-vertex positions -- as a slice of float32 slices.
func (w Walker) FieldFloatArrayVec(name string) ([][]float32, error) {
	v, err := w.value(name)
	if err != nil {
		return nil, err
	}
	if v.Tag() != ValueVector {
		return nil, wrongKind(w.Name(), name, v)
	}
	out := make([][]float32, len(v.vector))
	for i, e := range v.vector {
		if e.Tag() != ValueVector {
			return nil, wrongKind(w.Name(), name, e)
		}
		floats := make([]float32, len(e.vector))
		for j, f := range e.vector {
			if f.Tag() != ValueF32 {
				return nil, wrongKind(w.Name(), name, f)
			}
			floats[j] = f.f32
		}
		out[i] = floats
	}
	return out, nil
}

// HasField reports whether the field is present (declared and set) on
// this node, without erroring if it is not.
func (w Walker) HasField(name string) bool {
	_, err := w.value(name)
	return err == nil
}
