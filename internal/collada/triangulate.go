package collada

// Triangulate rewrites every polylist and polygons primitive of every mesh
// in doc as an equivalent triangles primitive, fanning each face around
// its first vertex. Faces with fewer than three vertices yield nothing and
// <ph> holes are not read. A polylist whose vcount does not match its <p>
// is left untouched.
func Triangulate(doc *Document) {
	for i := range doc.Geometries {
		m := doc.Geometries[i].Mesh
		if m == nil {
			continue
		}
		for j, p := range m.Primitives {
			if p.Kind == KindTriangles {
				continue
			}
			if t, ok := triangulate(p); ok {
				m.Primitives[j] = t
			}
		}
	}
}

func triangulate(p *Primitive) (*Primitive, bool) {
	stride := p.InputStride()
	if stride == 0 {
		return nil, false
	}

	var faces [][]int
	switch p.Kind {
	case KindPolylist:
		idx := p.Indices()
		cursor := 0
		for _, vc := range p.VCount {
			end := cursor + vc*stride
			if vc < 0 || end > len(idx) {
				return nil, false
			}
			faces = append(faces, idx[cursor:end])
			cursor = end
		}
		if cursor != len(idx) {
			return nil, false
		}
	case KindPolygons:
		for _, face := range p.P {
			faces = append(faces, face[:len(face)-len(face)%stride])
		}
	default:
		return nil, false
	}

	var tris Ints
	for _, face := range faces {
		n := len(face) / stride
		corner := func(k int) []int { return face[k*stride : (k+1)*stride] }
		for k := 1; k+1 < n; k++ {
			tris = append(tris, corner(0)...)
			tris = append(tris, corner(k)...)
			tris = append(tris, corner(k+1)...)
		}
	}

	return &Primitive{
		Kind:     KindTriangles,
		Material: p.Material,
		Count:    len(tris) / (3 * stride),
		Inputs:   p.Inputs,
		P:        []Ints{tris},
	}, true
}
