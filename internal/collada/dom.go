package collada

import (
	dae "github.com/GlenKelley/go-collada"
)

// fromDOM copies the geometry and image libraries of a decoded COLLADA
// tree into a Document.
func fromDOM(raw *dae.Collada) *Document {
	doc := &Document{Version: string(raw.Version)}

	for _, lib := range raw.LibraryGeometries {
		for _, g := range lib.Geometry {
			geom := Geometry{ID: g.Id, Name: g.Name}
			if g.Mesh != nil {
				geom.Mesh = meshFromDOM(g.Mesh)
			}
			doc.Geometries = append(doc.Geometries, geom)
		}
	}

	for _, lib := range raw.LibraryImages {
		for _, img := range lib.Image {
			doc.Images = append(doc.Images, Image{ID: img.Id, Name: img.Name, URI: string(img.InitFrom)})
		}
	}
	return doc
}

// meshFromDOM flattens a DOM mesh. Primitives are taken kind by kind
// (triangles, polylist, polygons), each kind in document order.
func meshFromDOM(m *dae.Mesh) *Mesh {
	out := &Mesh{Vertices: Vertices{ID: m.Vertices.Id}}
	for _, in := range m.Vertices.Input {
		out.Vertices.Inputs = append(out.Vertices.Inputs, Input{Semantic: in.Semantic, Source: string(in.Source)})
	}

	for _, s := range m.Source {
		src := Source{ID: s.Id, Name: s.Name}
		if fa := s.FloatArray; fa != nil {
			src.FloatArray = &FloatArray{ID: fa.Id, Count: int(fa.Count), Values: fa.F32()}
		}
		if tc := s.TechniqueCommon; tc != nil && tc.Accessor != nil {
			a := tc.Accessor
			src.Accessor = &Accessor{
				Source: string(a.Source),
				Count:  int(a.Count),
				Offset: int(a.Offset),
				Stride: int(a.Stride),
			}
		}
		out.Sources = append(out.Sources, src)
	}

	for _, t := range m.Triangles {
		p := &Primitive{Kind: KindTriangles, Material: t.Material, Count: int(t.Count)}
		for _, in := range t.Input {
			p.addInput(in.Semantic, string(in.Source), int(in.Offset), int(in.Set))
		}
		if t.HasP.P != nil {
			p.P = []Ints{t.HasP.P.I()}
		}
		out.Primitives = append(out.Primitives, p)
	}
	for _, pl := range m.Polylist {
		p := &Primitive{Kind: KindPolylist, Material: pl.Material, Count: int(pl.Count)}
		for _, in := range pl.Input {
			p.addInput(in.Semantic, string(in.Source), int(in.Offset), int(in.Set))
		}
		if pl.VCount != nil {
			p.VCount = pl.VCount.I()
		}
		if pl.HasP.P != nil {
			p.P = []Ints{pl.HasP.P.I()}
		}
		out.Primitives = append(out.Primitives, p)
	}
	for _, pg := range m.Polygons {
		p := &Primitive{Kind: KindPolygons, Material: pg.Material, Count: int(pg.Count)}
		for _, in := range pg.Input {
			p.addInput(in.Semantic, string(in.Source), int(in.Offset), int(in.Set))
		}
		for _, face := range pg.P {
			p.P = append(p.P, face.I())
		}
		out.Primitives = append(out.Primitives, p)
	}
	return out
}

func (p *Primitive) addInput(semantic, source string, offset, set int) {
	p.Inputs = append(p.Inputs, Input{Semantic: semantic, Source: source, Offset: offset, Set: set})
}
