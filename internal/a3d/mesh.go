package a3d

import "fmt"

// PrimitiveType is the topology of one index buffer.
type PrimitiveType uint8

const (
	PrimitivePoint         PrimitiveType = 0
	PrimitiveLine          PrimitiveType = 1
	PrimitiveLineStrip     PrimitiveType = 2
	PrimitiveTriangle      PrimitiveType = 3
	PrimitiveTriangleStrip PrimitiveType = 4
	PrimitiveTriangleFan   PrimitiveType = 5
)

// Primitive draws from the mesh vertex buffers. A nil Indices draws the
// vertices in order.
type Primitive struct {
	Type    PrimitiveType
	Indices *Allocation
}

// Mesh is the runtime mesh: vertex buffers plus one index buffer per
// primitive group.
type Mesh struct {
	Name          string
	VertexBuffers []*Allocation
	Primitives    []Primitive
}

func (m *Mesh) ClassID() ClassID { return ClassMesh }
func (m *Mesh) ObjectName() string { return m.Name }

// VertexCount returns the cell count of the first vertex buffer.
func (m *Mesh) VertexCount() int {
	if len(m.VertexBuffers) == 0 {
		return 0
	}
	return m.VertexBuffers[0].Count()
}

// TriangleCount sums the triangles of all indexed triangle primitives.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, p := range m.Primitives {
		if p.Type == PrimitiveTriangle && p.Indices != nil {
			n += p.Indices.Count() / 3
		}
	}
	return n
}

func (m *Mesh) serialize(w *writer) {
	w.u32(uint32(ClassMesh))
	w.str(m.Name)
	w.u32(uint32(len(m.VertexBuffers)))
	for _, vb := range m.VertexBuffers {
		vb.serialize(w)
	}
	w.u32(uint32(len(m.Primitives)))
	for _, p := range m.Primitives {
		w.u8(uint8(p.Type))
		if p.Indices == nil {
			w.u32(0)
			continue
		}
		w.u32(1)
		p.Indices.serialize(w)
	}
}

// maxBuffers bounds per-mesh counts when decoding untrusted input.
const maxBuffers = 1 << 12

func readMesh(r *reader) (*Mesh, error) {
	if c := ClassID(r.u32()); c != ClassMesh && r.err == nil {
		return nil, fmt.Errorf("a3d: expected %v, got %v", ClassMesh, c)
	}
	m := &Mesh{Name: r.str()}
	nvb := r.u32()
	if r.err != nil {
		return nil, r.err
	}
	if nvb > maxBuffers {
		return nil, fmt.Errorf("a3d: mesh %q has %d vertex buffers", m.Name, nvb)
	}
	for i := uint32(0); i < nvb; i++ {
		vb, err := readAllocation(r)
		if err != nil {
			return nil, fmt.Errorf("a3d: mesh %q vertex buffer %d: %w", m.Name, i, err)
		}
		m.VertexBuffers = append(m.VertexBuffers, vb)
	}
	nprim := r.u32()
	if r.err != nil {
		return nil, r.err
	}
	if nprim > maxBuffers {
		return nil, fmt.Errorf("a3d: mesh %q has %d primitives", m.Name, nprim)
	}
	for i := uint32(0); i < nprim; i++ {
		p := Primitive{Type: PrimitiveType(r.u8())}
		if r.u32() != 0 {
			idx, err := readAllocation(r)
			if err != nil {
				return nil, fmt.Errorf("a3d: mesh %q primitive %d: %w", m.Name, i, err)
			}
			p.Indices = idx
		}
		m.Primitives = append(m.Primitives, p)
	}
	return m, r.err
}
