package a3d

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"math/bits"
)

// Type gives an element its dimensions.
type Type struct {
	Name    string
	Element *Element
	DimX    uint32
	DimY    uint32
	DimZ    uint32
	Mipmaps bool
	Faces   bool
}

func (t *Type) ClassID() ClassID { return ClassType }
func (t *Type) ObjectName() string { return t.Name }

// Count returns the number of cells described by the type, saturating at
// math.MaxUint64.
func (t *Type) Count() uint64 {
	n := uint64(t.DimX)
	for _, d := range []uint32{t.DimY, t.DimZ} {
		if d == 0 {
			continue
		}
		var ok bool
		if n, ok = mulSize(n, uint64(d)); !ok {
			return math.MaxUint64
		}
	}
	return n
}

func mulSize(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// span returns the byte size of the allocation's cells and of one cell,
// failing when they overflow or exceed Data.
func (a *Allocation) span() (total, stride uint64, err error) {
	stride, ok := a.Type.Element.byteSize()
	if ok {
		total, ok = mulSize(a.Type.Count(), stride)
	}
	if !ok || total > uint64(len(a.Data)) {
		return 0, 0, fmt.Errorf("a3d: allocation %q: %d data bytes do not cover its type", a.Name, len(a.Data))
	}
	return total, stride, nil
}

func (t *Type) serialize(w *writer) {
	w.u32(uint32(ClassType))
	w.str(t.Name)
	t.Element.serialize(w)
	w.u32(t.DimX)
	w.u32(t.DimY)
	w.u32(t.DimZ)
	w.bool(t.Mipmaps)
	w.bool(t.Faces)
}

func readType(r *reader) (*Type, error) {
	if c := ClassID(r.u32()); c != ClassType && r.err == nil {
		return nil, fmt.Errorf("a3d: expected %v, got %v", ClassType, c)
	}
	t := &Type{Name: r.str()}
	e, err := readElement(r)
	if err != nil {
		return nil, err
	}
	t.Element = e
	t.DimX = r.u32()
	t.DimY = r.u32()
	t.DimZ = r.u32()
	t.Mipmaps = r.bool()
	t.Faces = r.bool()
	return t, r.err
}

// Allocation is a typed block of cells.
type Allocation struct {
	Name string
	Type *Type
	Data []byte
}

func (a *Allocation) ClassID() ClassID { return ClassAllocation }
func (a *Allocation) ObjectName() string { return a.Name }

// Count returns the number of cells in the allocation.
func (a *Allocation) Count() int {
	n := a.Type.Count()
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

func (a *Allocation) serialize(w *writer) {
	w.u32(uint32(ClassAllocation))
	w.str(a.Name)
	a.Type.serialize(w)
	w.u32(uint32(len(a.Data)))
	w.bytes(a.Data)
}

func readAllocation(r *reader) (*Allocation, error) {
	if c := ClassID(r.u32()); c != ClassAllocation && r.err == nil {
		return nil, fmt.Errorf("a3d: expected %v, got %v", ClassAllocation, c)
	}
	a := &Allocation{Name: r.str()}
	t, err := readType(r)
	if err != nil {
		return nil, err
	}
	a.Type = t
	a.Data = r.bytes(int(r.u32()))
	if r.err != nil {
		return nil, r.err
	}
	total, _, err := a.span()
	if err != nil {
		return nil, err
	}
	if total != uint64(len(a.Data)) {
		return nil, fmt.Errorf("a3d: allocation %q: %d data bytes, type needs %d", a.Name, len(a.Data), total)
	}
	return a, nil
}

// NewVertexAllocation returns an allocation of count cells of the struct
// element e, backed by data.
func NewVertexAllocation(name string, e *Element, count int, data []byte) *Allocation {
	return &Allocation{
		Name: name,
		Type: &Type{Element: e, DimX: uint32(count)},
		Data: data,
	}
}

// NewIndexAllocation packs indices as little-endian uint16 cells. Callers
// must keep every index below 1<<16.
func NewIndexAllocation(name string, indices []uint32) *Allocation {
	data := make([]byte, 0, len(indices)*2)
	for _, idx := range indices {
		data = binary.LittleEndian.AppendUint16(data, uint16(idx))
	}
	return &Allocation{
		Name: name,
		Type: &Type{Element: Uint16Element(), DimX: uint32(len(indices))},
		Data: data,
	}
}

// NewImageAllocation wraps non-premultiplied RGBA8 pixels of a w*h image.
func NewImageAllocation(name string, w, h int, pix []byte) *Allocation {
	return &Allocation{
		Name: name,
		Type: &Type{Element: RGBA8Element(), DimX: uint32(w), DimY: uint32(h)},
		Data: pix,
	}
}

// IsImage reports whether the allocation holds RGBA8 pixels.
func (a *Allocation) IsImage() bool {
	e := a.Type.Element
	return len(e.Fields) == 0 && e.Kind == KindPixelRGBA && e.Type == TypeUint8 && e.VectorSize == 4
}

// Image returns the pixels of an image allocation. The image shares Data.
func (a *Allocation) Image() (*image.NRGBA, error) {
	if !a.IsImage() {
		return nil, fmt.Errorf("a3d: allocation %q is not an RGBA image", a.Name)
	}
	if _, _, err := a.span(); err != nil {
		return nil, err
	}
	w, h := int(a.Type.DimX), max(int(a.Type.DimY), 1)
	return &image.NRGBA{Pix: a.Data, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
}

// Indices decodes a uint16 index allocation.
func (a *Allocation) Indices() ([]uint32, error) {
	e := a.Type.Element
	if len(e.Fields) != 0 || e.Type != TypeUint16 || e.VectorSize != 1 {
		return nil, fmt.Errorf("a3d: allocation %q is not a uint16 index buffer", a.Name)
	}
	if _, _, err := a.span(); err != nil {
		return nil, err
	}
	out := make([]uint32, a.Count())
	for i := range out {
		out[i] = uint32(binary.LittleEndian.Uint16(a.Data[i*2:]))
	}
	return out, nil
}

// Vec3s extracts a float3 field from every cell of a struct allocation.
func (a *Allocation) Vec3s(field string) ([][3]float32, error) {
	e := a.Type.Element
	off, fe, ok := e.FieldOffset(field)
	if !ok {
		return nil, fmt.Errorf("a3d: allocation %q has no field %q", a.Name, field)
	}
	if fe.Type != TypeFloat32 || fe.VectorSize < 3 {
		return nil, fmt.Errorf("a3d: field %q is not float3", field)
	}
	_, size, err := a.span()
	if err != nil {
		return nil, err
	}
	if uint64(off)+12 > size {
		return nil, fmt.Errorf("a3d: field %q lies outside its %d-byte cell", field, size)
	}
	stride := int(size)
	out := make([][3]float32, a.Count())
	for i := range out {
		base := i*stride + int(off)
		for k := 0; k < 3; k++ {
			out[i][k] = math.Float32frombits(binary.LittleEndian.Uint32(a.Data[base+k*4:]))
		}
	}
	return out, nil
}
