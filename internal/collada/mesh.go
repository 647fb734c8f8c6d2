package collada

import "strings"

// PrimitiveKind is the element name of a mesh primitive.
type PrimitiveKind string

const (
	KindTriangles PrimitiveKind = "triangles"
	KindPolylist  PrimitiveKind = "polylist"
	KindPolygons  PrimitiveKind = "polygons"
)

// Mesh holds the sources, vertices and primitives of one <mesh>.
type Mesh struct {
	Sources    []Source
	Vertices   Vertices
	Primitives []*Primitive
}

// Source is a <source> holding a float array and its accessor.
type Source struct {
	ID         string
	Name       string
	FloatArray *FloatArray
	Accessor   *Accessor
}

type FloatArray struct {
	ID     string
	Count  int
	Values Floats
}

// Accessor describes how to read a float array as count elements of
// stride floats starting at offset.
type Accessor struct {
	Source string
	Count  int
	Offset int
	Stride int
}

// Vertices binds per-vertex inputs (at least POSITION) to an id that
// primitives reference through their VERTEX input.
type Vertices struct {
	ID     string
	Inputs []Input
}

// Input maps a semantic to a source. Offset and Set are only meaningful
// on primitive inputs.
type Input struct {
	Semantic string
	Source   string
	Offset   int
	Set      int
}

// Primitive is a <triangles>, <polylist> or <polygons> element. Polygons
// carry one <p> per face; the other kinds carry a single <p>.
type Primitive struct {
	Kind     PrimitiveKind
	Material string
	Count    int
	Inputs   []Input
	VCount   Ints
	P        []Ints
}

// InputStride is the number of indices per vertex in P.
func (p *Primitive) InputStride() int {
	stride := 0
	for _, in := range p.Inputs {
		if in.Offset+1 > stride {
			stride = in.Offset + 1
		}
	}
	return stride
}

// Indices returns all <p> contents concatenated.
func (p *Primitive) Indices() []int {
	if len(p.P) == 1 {
		return p.P[0]
	}
	var out []int
	for _, ps := range p.P {
		out = append(out, ps...)
	}
	return out
}

// Input returns the first input with the given semantic. For TEXCOORD
// the input with the lowest set wins.
func (p *Primitive) Input(semantic string) (Input, bool) {
	var (
		found Input
		ok    bool
	)
	for _, in := range p.Inputs {
		if in.Semantic != semantic {
			continue
		}
		if !ok || in.Set < found.Set {
			found, ok = in, true
		}
	}
	return found, ok
}

// Source looks up a source by URI fragment ("#id") or bare id.
func (m *Mesh) Source(ref string) *Source {
	id := strings.TrimPrefix(ref, "#")
	for i := range m.Sources {
		if m.Sources[i].ID == id {
			return &m.Sources[i]
		}
	}
	return nil
}

// Floats is a list of float array values.
type Floats []float32

// Ints is a list of indices or counts.
type Ints []int
