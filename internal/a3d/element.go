package a3d

import "fmt"

// ClassID tags every serialized object so a reader can dispatch on it.
type ClassID uint32

const (
	ClassUnknown    ClassID = 0
	ClassMesh       ClassID = 1
	ClassType       ClassID = 2
	ClassElement    ClassID = 3
	ClassAllocation ClassID = 4
)

func (c ClassID) String() string {
	switch c {
	case ClassMesh:
		return "Mesh"
	case ClassType:
		return "Type"
	case ClassElement:
		return "Element"
	case ClassAllocation:
		return "Allocation"
	}
	return fmt.Sprintf("Unknown(%d)", uint32(c))
}

// DataType is the scalar type of an element.
type DataType uint8

const (
	TypeNone    DataType = 0
	TypeFloat32 DataType = 2
	TypeUint8   DataType = 8
	TypeUint16  DataType = 9
	TypeUint32  DataType = 10
)

// Size returns the byte size of one scalar, or 0 for TypeNone.
func (t DataType) Size() uint32 {
	switch t {
	case TypeUint8:
		return 1
	case TypeUint16:
		return 2
	case TypeFloat32, TypeUint32:
		return 4
	}
	return 0
}

// DataKind describes how a scalar vector is interpreted.
type DataKind uint8

const (
	KindUser      DataKind = 0
	KindPixelRGBA DataKind = 11
)

// Element describes the layout of one cell of an allocation. An element
// is either a scalar vector (Type != TypeNone) or a struct of Fields.
type Element struct {
	Name       string
	Type       DataType
	Kind       DataKind
	Normalized bool
	VectorSize uint32
	Fields     []Field
}

// Field is a named member of a struct element.
type Field struct {
	Name      string
	ArraySize uint32
	Element   *Element
}

// Float32Element returns an n-component float element.
func Float32Element(n uint32) *Element {
	return &Element{Type: TypeFloat32, Kind: KindUser, VectorSize: n}
}

// Uint16Element returns a single unsigned 16-bit element, used for indices.
func Uint16Element() *Element {
	return &Element{Type: TypeUint16, Kind: KindUser, VectorSize: 1}
}

// RGBA8Element returns a normalized 4x8-bit pixel element.
func RGBA8Element() *Element {
	return &Element{Type: TypeUint8, Kind: KindPixelRGBA, Normalized: true, VectorSize: 4}
}

// StructElement returns a struct element with one entry per field, each
// of array size 1.
func StructElement(name string, fields ...Field) *Element {
	for i := range fields {
		if fields[i].ArraySize == 0 {
			fields[i].ArraySize = 1
		}
	}
	return &Element{Name: name, Fields: fields}
}

// Size is the byte size of one cell. Struct fields are packed.
func (e *Element) Size() uint32 {
	if len(e.Fields) == 0 {
		return e.Type.Size() * e.VectorSize
	}
	var n uint32
	for _, f := range e.Fields {
		n += f.Element.Size() * f.ArraySize
	}
	return n
}

// byteSize is Size computed in 64 bits. It reports false on overflow.
func (e *Element) byteSize() (uint64, bool) {
	if len(e.Fields) == 0 {
		return mulSize(uint64(e.Type.Size()), uint64(e.VectorSize))
	}
	var n uint64
	for _, f := range e.Fields {
		fs, ok := f.Element.byteSize()
		if !ok {
			return 0, false
		}
		if fs, ok = mulSize(fs, uint64(f.ArraySize)); !ok {
			return 0, false
		}
		if n += fs; n < fs {
			return 0, false
		}
	}
	return n, true
}

// FieldOffset returns the byte offset of the named field within a cell.
func (e *Element) FieldOffset(name string) (uint32, *Element, bool) {
	var off uint32
	for _, f := range e.Fields {
		if f.Name == name {
			return off, f.Element, true
		}
		off += f.Element.Size() * f.ArraySize
	}
	return 0, nil, false
}

func (e *Element) ClassID() ClassID { return ClassElement }
func (e *Element) ObjectName() string { return e.Name }

func (e *Element) serialize(w *writer) {
	w.u32(uint32(ClassElement))
	w.str(e.Name)
	w.u8(uint8(e.Type))
	w.u8(uint8(e.Kind))
	w.bool(e.Normalized)
	w.u32(e.VectorSize)
	w.u32(uint32(len(e.Fields)))
	for _, f := range e.Fields {
		w.str(f.Name)
		w.u32(f.ArraySize)
		f.Element.serialize(w)
	}
}

// maxFields bounds struct nesting fan-out when decoding untrusted input.
const maxFields = 256

func readElement(r *reader) (*Element, error) {
	if c := ClassID(r.u32()); c != ClassElement && r.err == nil {
		return nil, fmt.Errorf("a3d: expected %v, got %v", ClassElement, c)
	}
	e := &Element{
		Name:       r.str(),
		Type:       DataType(r.u8()),
		Kind:       DataKind(r.u8()),
		Normalized: r.bool(),
		VectorSize: r.u32(),
	}
	n := r.u32()
	if r.err != nil {
		return nil, r.err
	}
	if n > maxFields {
		return nil, fmt.Errorf("a3d: element %q has %d fields", e.Name, n)
	}
	for i := uint32(0); i < n; i++ {
		f := Field{Name: r.str(), ArraySize: r.u32()}
		sub, err := readElement(r)
		if err != nil {
			return nil, err
		}
		f.Element = sub
		e.Fields = append(e.Fields, f)
	}
	return e, r.err
}
