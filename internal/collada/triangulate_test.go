package collada

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestTriangulatePolylist(t *testing.T) {
	doc, err := Open(filepath.Join("testdata", "cube.dae"))
	if err != nil {
		t.Fatal(err)
	}
	Triangulate(doc)

	p := doc.Geometries[0].Mesh.Primitives[0]
	if p.Kind != KindTriangles {
		t.Fatalf("Kind = %s, want triangles", p.Kind)
	}
	if p.Count != 12 || p.Material != "Material-material" || len(p.Inputs) != 2 {
		t.Errorf("count=%d material=%q inputs=%d", p.Count, p.Material, len(p.Inputs))
	}
	idx := p.Indices()
	if len(idx) != 12*3*2 {
		t.Fatalf("got %d indices, want 72", len(idx))
	}
	// First quad 0 3 2 1 fans into (0 3 2) (0 2 1).
	want := []int{0, 0, 3, 0, 2, 0, 0, 0, 2, 0, 1, 0}
	if !slices.Equal(idx[:12], want) {
		t.Errorf("first quad = %v, want %v", idx[:12], want)
	}
}

func TestTriangulatePolygons(t *testing.T) {
	doc, err := Open(filepath.Join("testdata", "polygons.dae"))
	if err != nil {
		t.Fatal(err)
	}
	m := doc.Geometries[0].Mesh
	if len(m.Primitives) != 3 {
		t.Fatalf("got %d primitives, want 3 (lines skipped)", len(m.Primitives))
	}
	tri := m.Primitives[0]
	Triangulate(doc)

	if m.Primitives[0] != tri {
		t.Error("triangles primitive was replaced")
	}

	if m.Primitives[1].Kind != KindPolylist {
		t.Error("mismatched polylist was triangulated")
	}

	p := m.Primitives[2]
	if p.Kind != KindTriangles || p.Material != "skin" {
		t.Fatalf("primitive 2 = %s %q", p.Kind, p.Material)
	}
	// pentagon -> 3, two-vertex face -> 0, triangle -> 1; the <ph> face is not read.
	if p.Count != 4 {
		t.Errorf("Count = %d, want 4", p.Count)
	}
	want := []int{
		0, 0, 1, 1, 2, 2,
		0, 0, 2, 2, 3, 3,
		0, 0, 3, 3, 4, 4,
		2, 2, 3, 3, 4, 4,
	}
	if got := p.Indices(); !slices.Equal(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}
}

func TestTriangulateSkipsNonMesh(t *testing.T) {
	doc := &Document{Geometries: []Geometry{{ID: "spline"}}}
	Triangulate(doc)
	if doc.Geometries[0].Mesh != nil {
		t.Error("mesh created for non-mesh geometry")
	}
}
