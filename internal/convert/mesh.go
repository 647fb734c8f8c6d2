package convert

import (
	"encoding/binary"
	"fmt"
	"math"

	"a3dconvert/internal/a3d"
	"a3dconvert/internal/geometry"
)

// Vertex field names understood by the runtime.
const (
	FieldPosition = "position"
	FieldNormal   = "normal"
	FieldTexture0 = "texture0"
)

// RuntimeMesh builds the archive representation of g: one interleaved
// vertex buffer and one triangle index buffer per primitive.
func RuntimeMesh(g *geometry.Geometry) *a3d.Mesh {
	fields := []a3d.Field{{Name: FieldPosition, Element: a3d.Float32Element(3)}}
	if len(g.Normals) > 0 {
		fields = append(fields, a3d.Field{Name: FieldNormal, Element: a3d.Float32Element(3)})
	}
	if len(g.TexCoords) > 0 {
		fields = append(fields, a3d.Field{Name: FieldTexture0, Element: a3d.Float32Element(2)})
	}
	elem := a3d.StructElement("vertex", fields...)

	data := make([]byte, 0, int(elem.Size())*len(g.Positions))
	put := func(vs ...float32) {
		for _, v := range vs {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
		}
	}
	for i, p := range g.Positions {
		put(p[:]...)
		if len(g.Normals) > 0 {
			put(g.Normals[i][:]...)
		}
		if len(g.TexCoords) > 0 {
			put(g.TexCoords[i][:]...)
		}
	}

	m := &a3d.Mesh{
		Name:          g.Name,
		VertexBuffers: []*a3d.Allocation{a3d.NewVertexAllocation(g.Name+".vertices", elem, len(g.Positions), data)},
	}
	for i, p := range g.Primitives {
		m.Primitives = append(m.Primitives, a3d.Primitive{
			Type:    a3d.PrimitiveTriangle,
			Indices: a3d.NewIndexAllocation(fmt.Sprintf("%s.indices%d", g.Name, i), p.Indices),
		})
	}
	return m
}
