// Package geometry converts COLLADA meshes into indexed triangle meshes
// with one attribute value per vertex.
package geometry

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxVertices is the vertex limit of one geometry. Archive index buffers
// store 16-bit indices.
const MaxVertices = 1 << 16

var (
	ErrNoMesh          = errors.New("geometry has no mesh")
	ErrTooManyVertices = fmt.Errorf("more than %d vertices", MaxVertices)
)

// Primitive is one triangle list, usually one per material.
type Primitive struct {
	Material string
	Indices  []uint32
}

// Geometry is a converted mesh. Normals and TexCoords are either empty or
// parallel to Positions, and every index addresses Positions.
type Geometry struct {
	Name       string
	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	TexCoords  []mgl32.Vec2
	Primitives []Primitive
}

func (g *Geometry) VertexCount() int { return len(g.Positions) }

func (g *Geometry) TriangleCount() int {
	n := 0
	for _, p := range g.Primitives {
		n += len(p.Indices) / 3
	}
	return n
}

// Validate checks the attribute and index invariants.
func (g *Geometry) Validate() error {
	n := len(g.Positions)
	if n > MaxVertices {
		return ErrTooManyVertices
	}
	if len(g.Normals) != 0 && len(g.Normals) != n {
		return fmt.Errorf("%d normals for %d positions", len(g.Normals), n)
	}
	if len(g.TexCoords) != 0 && len(g.TexCoords) != n {
		return fmt.Errorf("%d texcoords for %d positions", len(g.TexCoords), n)
	}
	for i, p := range g.Primitives {
		if len(p.Indices)%3 != 0 {
			return fmt.Errorf("primitive %d: %d indices is not a triangle list", i, len(p.Indices))
		}
		for _, idx := range p.Indices {
			if int(idx) >= n {
				return fmt.Errorf("primitive %d: index %d out of range (%d vertices)", i, idx, n)
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the positions.
func (g *Geometry) Bounds() Box {
	return BoundsOf(g.Positions)
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mgl32.Vec3
}

// BoundsOf returns the box enclosing points, or the zero Box when there
// are none.
func BoundsOf(points []mgl32.Vec3) Box {
	if len(points) == 0 {
		return Box{}
	}
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = mgl32.Vec3{min(b.Min[0], p[0]), min(b.Min[1], p[1]), min(b.Min[2], p[2])}
		b.Max = mgl32.Vec3{max(b.Max[0], p[0]), max(b.Max[1], p[1]), max(b.Max[2], p[2])}
	}
	return b
}

func (b Box) Size() mgl32.Vec3   { return b.Max.Sub(b.Min) }
func (b Box) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Radius is the radius of the sphere through the box corners.
func (b Box) Radius() float32 { return b.Size().Len() / 2 }
