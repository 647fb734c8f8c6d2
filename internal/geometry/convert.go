package geometry

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"a3dconvert/internal/collada"
)

// DisplayName returns the geometry name, or its id when it has none.
func DisplayName(src *collada.Geometry) string {
	if src.Name != "" {
		return src.Name
	}
	return src.ID
}

// ConvertLibrary converts every mesh geometry of doc in document order,
// printing one progress line per geometry to out. Geometries without a
// mesh are skipped. A geometry that fails to convert does not stop the
// others: the converted ones are returned together with the joined
// per-geometry errors.
func ConvertLibrary(doc *collada.Document, out io.Writer) ([]*Geometry, error) {
	var (
		geoms []*Geometry
		errs  []error
	)
	for i := range doc.Geometries {
		src := &doc.Geometries[i]
		name := DisplayName(src)
		if src.Mesh == nil {
			fmt.Fprintf(out, "Skipping geometry: %s, unsupported type\n", name)
			continue
		}

		fmt.Fprintf(out, "Converting geometry: %s\n", name)
		g, err := Convert(src)
		if err != nil {
			errs = append(errs, fmt.Errorf("geometry %s: %w", name, err))
			continue
		}
		geoms = append(geoms, g)
	}
	return geoms, errors.Join(errs...)
}

// Convert extracts positions, normals, texture coordinates and triangle
// indices from a triangulated mesh geometry. Each distinct combination of
// position, normal and texcoord index becomes one output vertex.
func Convert(src *collada.Geometry) (*Geometry, error) {
	if src.Mesh == nil {
		return nil, ErrNoMesh
	}
	b := &builder{
		mesh:    src.Mesh,
		streams: make(map[string]*stream),
		index:   make(map[corner]uint32),
	}
	if err := b.bindVertices(); err != nil {
		return nil, err
	}

	var prims []Primitive
	for i, p := range src.Mesh.Primitives {
		indices, err := b.addPrimitive(p)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		prims = append(prims, Primitive{Material: p.Material, Indices: indices})
	}

	g := b.build(DisplayName(src))
	g.Primitives = prims
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// attr is one attribute lookup: element i of stream s. A nil stream means
// the attribute is absent.
type attr struct {
	s *stream
	i int
}

type corner struct {
	position int
	normal   attr
	texcoord attr
}

type builder struct {
	mesh    *collada.Mesh
	streams map[string]*stream
	index   map[corner]uint32
	corners []corner

	// inputs declared on <vertices>, indexed by the VERTEX index
	position       *stream
	vertexNormal   *stream
	vertexTexCoord *stream
}

func (b *builder) source(ref string, width int) (*stream, error) {
	src := b.mesh.Source(ref)
	if src == nil {
		return nil, fmt.Errorf("source %s not found", ref)
	}
	key := fmt.Sprintf("%s/%d", src.ID, width)
	if s, ok := b.streams[key]; ok {
		return s, nil
	}
	s, err := newStream(src, width)
	if err != nil {
		return nil, err
	}
	b.streams[key] = s
	return s, nil
}

func (b *builder) bindVertices() error {
	for _, in := range b.mesh.Vertices.Inputs {
		var err error
		switch in.Semantic {
		case "POSITION":
			b.position, err = b.source(in.Source, 3)
		case "NORMAL":
			b.vertexNormal, err = b.source(in.Source, 3)
		case "TEXCOORD":
			if b.vertexTexCoord == nil {
				b.vertexTexCoord, err = b.source(in.Source, 2)
			}
		}
		if err != nil {
			return fmt.Errorf("vertices %s: %w", b.mesh.Vertices.ID, err)
		}
	}
	if b.position == nil {
		return fmt.Errorf("vertices %s: no POSITION input", b.mesh.Vertices.ID)
	}
	return nil
}

func (b *builder) addPrimitive(p *collada.Primitive) ([]uint32, error) {
	if p.Kind != collada.KindTriangles {
		return nil, fmt.Errorf("%s was not triangulated", p.Kind)
	}
	vertex, ok := p.Input("VERTEX")
	if !ok {
		return nil, errors.New("no VERTEX input")
	}
	if id := strings.TrimPrefix(vertex.Source, "#"); id != b.mesh.Vertices.ID {
		return nil, fmt.Errorf("VERTEX input references %s, not the mesh vertices", vertex.Source)
	}

	for _, in := range p.Inputs {
		if in.Offset < 0 {
			return nil, fmt.Errorf("input %s has negative offset %d", in.Semantic, in.Offset)
		}
	}

	var (
		normals, texcoords     *stream
		normalOff, texcoordOff int
		err                    error
	)
	if in, ok := p.Input("NORMAL"); ok {
		if normals, err = b.source(in.Source, 3); err != nil {
			return nil, err
		}
		normalOff = in.Offset
	}
	if in, ok := p.Input("TEXCOORD"); ok {
		if texcoords, err = b.source(in.Source, 2); err != nil {
			return nil, err
		}
		texcoordOff = in.Offset
	}

	stride := p.InputStride()
	idx := p.Indices()
	if len(idx)%(3*stride) != 0 {
		return nil, fmt.Errorf("%d indices do not form triangles of %d inputs", len(idx), stride)
	}

	out := make([]uint32, 0, len(idx)/stride)
	for base := 0; base < len(idx); base += stride {
		v := idx[base+vertex.Offset]
		if err := b.position.check(v); err != nil {
			return nil, err
		}
		c := corner{position: v}

		switch {
		case normals != nil:
			c.normal = attr{normals, idx[base+normalOff]}
		case b.vertexNormal != nil:
			c.normal = attr{b.vertexNormal, v}
		}
		switch {
		case texcoords != nil:
			c.texcoord = attr{texcoords, idx[base+texcoordOff]}
		case b.vertexTexCoord != nil:
			c.texcoord = attr{b.vertexTexCoord, v}
		}
		for _, a := range []attr{c.normal, c.texcoord} {
			if a.s == nil {
				continue
			}
			if err := a.s.check(a.i); err != nil {
				return nil, err
			}
		}

		n, err := b.vertex(c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (b *builder) vertex(c corner) (uint32, error) {
	if n, ok := b.index[c]; ok {
		return n, nil
	}
	if len(b.corners) == MaxVertices {
		return 0, ErrTooManyVertices
	}
	n := uint32(len(b.corners))
	b.index[c] = n
	b.corners = append(b.corners, c)
	return n, nil
}

// build materializes the vertex attributes. Vertices without a normal or
// texcoord get zero values when other vertices of the mesh have one.
func (b *builder) build(name string) *Geometry {
	g := &Geometry{Name: name, Positions: make([]mgl32.Vec3, len(b.corners))}
	var hasNormals, hasTexCoords bool
	for _, c := range b.corners {
		hasNormals = hasNormals || c.normal.s != nil
		hasTexCoords = hasTexCoords || c.texcoord.s != nil
	}
	if hasNormals {
		g.Normals = make([]mgl32.Vec3, len(b.corners))
	}
	if hasTexCoords {
		g.TexCoords = make([]mgl32.Vec2, len(b.corners))
	}
	for i, c := range b.corners {
		g.Positions[i] = b.position.vec3(c.position)
		if c.normal.s != nil {
			g.Normals[i] = c.normal.s.vec3(c.normal.i)
		}
		if c.texcoord.s != nil {
			g.TexCoords[i] = c.texcoord.s.vec2(c.texcoord.i)
		}
	}
	return g
}
