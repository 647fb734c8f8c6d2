package geometry

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"a3dconvert/internal/collada"
)

func decode(t *testing.T, src string) *collada.Document {
	t.Helper()
	doc, err := collada.Decode(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	collada.Triangulate(doc)
	return doc
}

func library(geometries ...string) string {
	return `<COLLADA version="1.4.1"><library_geometries>` +
		strings.Join(geometries, "\n") +
		`</library_geometries></COLLADA>`
}

// quad returns a unit square geometry whose primitive body is prims.
func quad(id, name, prims string) string {
	nameAttr := ""
	if name != "" {
		nameAttr = fmt.Sprintf(` name="%s"`, name)
	}
	return fmt.Sprintf(`<geometry id="%[1]s"%[2]s><mesh>
  <source id="%[1]s-pos">
    <float_array count="12">0 0 0 1 0 0 1 1 0 0 1 0</float_array>
    <technique_common><accessor source="#%[1]s-pos-array" count="4" stride="3"/></technique_common>
  </source>
  <source id="%[1]s-uv">
    <float_array count="8">0 0 1 0 1 1 0 1</float_array>
    <technique_common><accessor count="4" stride="2"/></technique_common>
  </source>
  <vertices id="%[1]s-vtx"><input semantic="POSITION" source="#%[1]s-pos"/></vertices>
  %[3]s
</mesh></geometry>`, id, nameAttr, prims)
}

func vertexOnly(id, p string) string {
	return fmt.Sprintf(`<triangles count="2"><input semantic="VERTEX" source="#%s-vtx" offset="0"/><p>%s</p></triangles>`, id, p)
}

func TestConvertCube(t *testing.T) {
	doc, err := collada.Open(filepath.Join("..", "collada", "testdata", "cube.dae"))
	if err != nil {
		t.Fatal(err)
	}
	collada.Triangulate(doc)

	g, err := Convert(&doc.Geometries[0])
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != "Cube" {
		t.Errorf("Name = %q", g.Name)
	}
	// Six faces with their own normal: four distinct corners each.
	if g.VertexCount() != 24 || len(g.Normals) != 24 || len(g.TexCoords) != 0 {
		t.Errorf("%d positions, %d normals, %d texcoords", g.VertexCount(), len(g.Normals), len(g.TexCoords))
	}
	if g.TriangleCount() != 12 || len(g.Primitives) != 1 || g.Primitives[0].Material != "Material-material" {
		t.Errorf("%d triangles in %d primitives", g.TriangleCount(), len(g.Primitives))
	}
	if err := g.Validate(); err != nil {
		t.Error(err)
	}
	b := g.Bounds()
	if b.Min != (mgl32.Vec3{-1, -1, -1}) || b.Max != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("Bounds() = %+v", b)
	}
	if b.Center() != (mgl32.Vec3{}) || b.Size() != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("center %v, size %v", b.Center(), b.Size())
	}
	if !mgl32.FloatEqual(b.Radius(), float32(math.Sqrt(3))) {
		t.Errorf("Radius() = %v, want sqrt(3)", b.Radius())
	}

	// Every corner of the first face (back, z-) carries the back normal.
	for _, idx := range g.Primitives[0].Indices[:6] {
		if g.Normals[idx] != (mgl32.Vec3{0, 0, -1}) || g.Positions[idx][2] != -1 {
			t.Errorf("vertex %d = %v / %v", idx, g.Positions[idx], g.Normals[idx])
		}
	}
}

func TestConvertSharesCorners(t *testing.T) {
	doc := decode(t, library(quad("q", "Quad", vertexOnly("q", "0 1 2 0 2 3"))))
	g, err := Convert(&doc.Geometries[0])
	if err != nil {
		t.Fatal(err)
	}
	if g.VertexCount() != 4 || g.Normals != nil || g.TexCoords != nil {
		t.Errorf("%d vertices, normals=%v texcoords=%v", g.VertexCount(), g.Normals, g.TexCoords)
	}
	if got := g.Primitives[0].Indices; !slices.Equal(got, []uint32{0, 1, 2, 0, 2, 3}) {
		t.Errorf("indices = %v", got)
	}
	if g.Positions[2] != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("position 2 = %v", g.Positions[2])
	}
}

func TestConvertTexCoords(t *testing.T) {
	prims := `<triangles count="1">
	  <input semantic="VERTEX" source="#t-vtx" offset="0"/>
	  <p>0 1 2</p>
	</triangles>
	<polylist count="1">
	  <input semantic="VERTEX" source="#t-vtx" offset="0"/>
	  <input semantic="TEXCOORD" source="#t-uv" offset="1" set="1"/>
	  <vcount>4</vcount>
	  <p>0 0 1 1 2 2 3 3</p>
	</polylist>`
	doc := decode(t, library(quad("t", "", prims)))
	g, err := Convert(&doc.Geometries[0])
	if err != nil {
		t.Fatal(err)
	}
	// 3 untextured corners plus 4 textured ones.
	if g.VertexCount() != 7 || len(g.TexCoords) != 7 {
		t.Fatalf("%d vertices, %d texcoords", g.VertexCount(), len(g.TexCoords))
	}
	if g.TexCoords[0] != (mgl32.Vec2{}) {
		t.Errorf("untextured vertex has texcoord %v", g.TexCoords[0])
	}
	if g.TexCoords[5] != (mgl32.Vec2{1, 1}) {
		t.Errorf("texcoord 5 = %v", g.TexCoords[5])
	}
	if got := g.Primitives[1].Indices; !slices.Equal(got, []uint32{3, 4, 5, 3, 5, 6}) {
		t.Errorf("second primitive indices = %v", got)
	}
	if g.Name != "t" {
		t.Errorf("Name = %q, want id fallback", g.Name)
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name string
		geom string
		want string
	}{
		{
			name: "index out of range",
			geom: quad("g", "", vertexOnly("g", "0 1 7")),
			want: "index 7 out of range",
		},
		{
			name: "incomplete triangle",
			geom: quad("g", "", vertexOnly("g", "0 1 2 3")),
			want: "do not form triangles",
		},
		{
			name: "foreign vertices",
			geom: quad("g", "", vertexOnly("other", "0 1 2")),
			want: "not the mesh vertices",
		},
		{
			name: "missing normal source",
			geom: quad("g", "", `<triangles count="1">
				<input semantic="VERTEX" source="#g-vtx" offset="0"/>
				<input semantic="NORMAL" source="#g-normals" offset="1"/>
				<p>0 0 1 0 2 0</p></triangles>`),
			want: "source #g-normals not found",
		},
		{
			name: "no VERTEX input",
			geom: quad("g", "", `<triangles count="1">
				<input semantic="TEXCOORD" source="#g-uv" offset="0"/>
				<p>0 1 2</p></triangles>`),
			want: "no VERTEX input",
		},
		{
			name: "untriangulated polylist",
			geom: quad("g", "", `<polylist count="1">
				<input semantic="VERTEX" source="#g-vtx" offset="0"/>
				<vcount>4</vcount><p>0 1 2</p></polylist>`),
			want: "polylist was not triangulated",
		},
		{
			name: "no position",
			geom: `<geometry id="g"><mesh><vertices id="g-vtx"/></mesh></geometry>`,
			want: "no POSITION input",
		},
		{
			name: "short float array",
			geom: `<geometry id="g"><mesh>
				<source id="p"><float_array count="5">0 0 0 1 0</float_array>
				<technique_common><accessor count="2" stride="3"/></technique_common></source>
				<vertices id="g-vtx"><input semantic="POSITION" source="#p"/></vertices>
				</mesh></geometry>`,
			want: "float_array holds 5 values, accessor reads 2 elements of stride 3",
		},
		{
			name: "narrow stride",
			geom: `<geometry id="g"><mesh>
				<source id="p"><float_array count="4">0 0 1 1</float_array>
				<technique_common><accessor count="2" stride="2"/></technique_common></source>
				<vertices id="g-vtx"><input semantic="POSITION" source="#p"/></vertices>
				</mesh></geometry>`,
			want: "stride 2 is narrower than 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decode(t, library(tt.geom))
			g, err := Convert(&doc.Geometries[0])
			if err == nil {
				t.Fatalf("Convert = %+v, want error", g)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestConvertHugeAccessor(t *testing.T) {
	tests := []struct {
		name     string
		accessor collada.Accessor
		want     string
	}{
		{"count", collada.Accessor{Count: math.MaxInt/2 + 2, Stride: 3}, fmt.Sprintf("accessor reads %d elements", math.MaxInt/2+2)},
		{"offset", collada.Accessor{Count: 1, Offset: math.MaxInt, Stride: 3}, fmt.Sprintf("from offset %d", math.MaxInt)},
		{"stride", collada.Accessor{Count: 2, Stride: math.MaxInt}, "elements of stride"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := tt.accessor
			src := &collada.Geometry{ID: "g", Mesh: &collada.Mesh{
				Sources: []collada.Source{{
					ID:         "p",
					FloatArray: &collada.FloatArray{Values: collada.Floats{0, 0, 0, 1, 0, 0, 0, 1, 0}},
					Accessor:   &acc,
				}},
				Vertices: collada.Vertices{ID: "g-vtx", Inputs: []collada.Input{{Semantic: "POSITION", Source: "#p"}}},
				Primitives: []*collada.Primitive{{
					Kind:   collada.KindTriangles,
					Inputs: []collada.Input{{Semantic: "VERTEX", Source: "#g-vtx"}},
					P:      []collada.Ints{{0, 1, 5}},
				}},
			}}
			g, err := Convert(src)
			if err == nil {
				t.Fatalf("Convert = %+v, want error", g)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestConvertNoMesh(t *testing.T) {
	if _, err := Convert(&collada.Geometry{ID: "spline"}); !errors.Is(err, ErrNoMesh) {
		t.Errorf("err = %v, want ErrNoMesh", err)
	}
}

func TestConvertLibrary(t *testing.T) {
	doc, err := collada.Open(filepath.Join("..", "collada", "testdata", "cube.dae"))
	if err != nil {
		t.Fatal(err)
	}
	collada.Triangulate(doc)

	var out bytes.Buffer
	geoms, err := ConvertLibrary(doc, &out)
	if err != nil {
		t.Fatal(err)
	}
	if len(geoms) != 1 || geoms[0].Name != "Cube" {
		t.Fatalf("geometries = %v", names(geoms))
	}
	want := "Converting geometry: Cube\nSkipping geometry: CameraRig, unsupported type\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestConvertLibraryKeepsGoing(t *testing.T) {
	doc := decode(t, library(
		quad("a", "First", vertexOnly("a", "0 1 2")),
		quad("b", "Broken", vertexOnly("b", "0 1 9")),
		`<geometry id="s" name="Spline"><spline/></geometry>`,
		quad("c", "", vertexOnly("c", "0 2 3")),
	))

	var out bytes.Buffer
	geoms, err := ConvertLibrary(doc, &out)
	if err == nil {
		t.Fatal("ConvertLibrary reported success with a broken geometry")
	}
	if !strings.Contains(err.Error(), "geometry Broken") {
		t.Errorf("error %q does not name the broken geometry", err)
	}
	if got := names(geoms); !slices.Equal(got, []string{"First", "c"}) {
		t.Errorf("converted = %v, want [First c]", got)
	}
	for _, line := range []string{
		"Converting geometry: First",
		"Converting geometry: Broken",
		"Skipping geometry: Spline, unsupported type",
		"Converting geometry: c",
	} {
		if !strings.Contains(out.String(), line+"\n") {
			t.Errorf("output missing %q:\n%s", line, out.String())
		}
	}
}

func TestConvertLibraryEmpty(t *testing.T) {
	doc := decode(t, `<COLLADA version="1.4.1"/>`)
	geoms, err := ConvertLibrary(doc, &bytes.Buffer{})
	if err != nil || len(geoms) != 0 {
		t.Errorf("ConvertLibrary = %v, %v; want nothing", names(geoms), err)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		id, name, want string
	}{
		{"Cube-mesh", "Cube", "Cube"},
		{"Cube-mesh", "", "Cube-mesh"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(&collada.Geometry{ID: tt.id, Name: tt.name}); got != tt.want {
			t.Errorf("DisplayName(%q, %q) = %q, want %q", tt.id, tt.name, got, tt.want)
		}
	}
}

func TestBoundsOf(t *testing.T) {
	if b := BoundsOf(nil); b != (Box{}) {
		t.Errorf("BoundsOf(nil) = %+v", b)
	}
	b := BoundsOf([]mgl32.Vec3{{2, -1, 5}, {0, 3, 4}, {1, 1, -2}})
	if b.Min != (mgl32.Vec3{0, -1, -2}) || b.Max != (mgl32.Vec3{2, 3, 5}) {
		t.Errorf("BoundsOf = %+v", b)
	}
	if b.Center() != (mgl32.Vec3{1, 1, 1.5}) {
		t.Errorf("Center() = %v", b.Center())
	}
}

func TestValidate(t *testing.T) {
	base := func() *Geometry {
		return &Geometry{
			Name:       "tri",
			Positions:  []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Primitives: []Primitive{{Indices: []uint32{0, 1, 2}}},
		}
	}
	if err := base().Validate(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(g *Geometry)
	}{
		{"index out of range", func(g *Geometry) { g.Primitives[0].Indices[2] = 3 }},
		{"partial triangle", func(g *Geometry) { g.Primitives[0].Indices = g.Primitives[0].Indices[:2] }},
		{"short normals", func(g *Geometry) { g.Normals = make([]mgl32.Vec3, 2) }},
		{"long texcoords", func(g *Geometry) { g.TexCoords = make([]mgl32.Vec2, 4) }},
		{"too many vertices", func(g *Geometry) { g.Positions = make([]mgl32.Vec3, MaxVertices+1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := base()
			tt.mutate(g)
			if err := g.Validate(); err == nil {
				t.Error("Validate accepted an invalid geometry")
			}
		})
	}
}

func names(geoms []*Geometry) []string {
	out := make([]string, len(geoms))
	for i, g := range geoms {
		out[i] = g.Name
	}
	return out
}
