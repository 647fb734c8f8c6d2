package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl32"

	"a3dconvert/internal/a3d"
	"a3dconvert/internal/convert"
	"a3dconvert/internal/geometry"
)

// dumpHead is how many payload bytes -dump prints per allocation.
const dumpHead = 32

func main() {
	dump := flag.Bool("dump", false, "Print every decoded object")
	extract := flag.String("extract", "", "Write embedded images to this directory as WebP")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: a3dinfo [-dump] [-extract dir] file.a3d")
		os.Exit(2)
	}
	path := flag.Arg(0)

	a, err := a3d.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("A3D %d.%d, %d entries\n", a.Major, a.Minor, len(a.Entries))

	spew.Config.Indent = "\t"
	spew.Config.DisableMethods = true
	spew.Config.MaxDepth = 6

	if *extract != "" {
		if err := os.MkdirAll(*extract, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	failed := 0
	for i, e := range a.Entries {
		obj, err := a.Object(i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [%d] %s: %v\n", i, e.Name, err)
			failed++
			continue
		}
		fmt.Printf("  [%d] %s %q (%d bytes at %d)\n", i, e.Class, e.Name, e.Length, e.Offset)

		switch o := obj.(type) {
		case *a3d.Mesh:
			printMesh(o)
		case *a3d.Allocation:
			if o.IsImage() {
				fmt.Printf("    Image: %dx%d\n", o.Type.DimX, max(o.Type.DimY, 1))
				if *extract != "" {
					if err := writeWebP(o, *extract); err != nil {
						fmt.Fprintf(os.Stderr, "    %v\n", err)
						failed++
					}
				}
			} else {
				fmt.Printf("    Cells: %d x %d bytes\n", o.Count(), o.Type.Element.Size())
			}
		}

		if *dump {
			spew.Dump(dumpView(obj))
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func printMesh(m *a3d.Mesh) {
	fmt.Printf("    Vertices: %d, Triangles: %d, Buffers: %d, Primitives: %d\n",
		m.VertexCount(), m.TriangleCount(), len(m.VertexBuffers), len(m.Primitives))
	if len(m.VertexBuffers) == 0 {
		return
	}
	pos, err := m.VertexBuffers[0].Vec3s(convert.FieldPosition)
	if err != nil || len(pos) == 0 {
		return
	}
	points := make([]mgl32.Vec3, len(pos))
	for i, p := range pos {
		points[i] = p
	}
	b := geometry.BoundsOf(points)
	size, center := b.Size(), b.Center()
	fmt.Printf("    BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n", b.Min[0], b.Max[0], b.Min[1], b.Max[1], b.Min[2], b.Max[2])
	fmt.Printf("    Size: %.3f x %.3f x %.3f, center (%.3f, %.3f, %.3f), radius %.3f\n",
		size[0], size[1], size[2], center[0], center[1], center[2], b.Radius())
}

type allocationDump struct {
	Name     string
	Type     *a3d.Type
	DataLen  int
	DataHead []byte
}

type primitiveDump struct {
	Type    a3d.PrimitiveType
	Indices *allocationDump
}

type meshDump struct {
	Name          string
	VertexBuffers []*allocationDump
	Primitives    []primitiveDump
}

// dumpView mirrors obj with allocation payloads cut to their first bytes.
func dumpView(obj a3d.Object) any {
	switch o := obj.(type) {
	case *a3d.Mesh:
		m := meshDump{Name: o.Name}
		for _, vb := range o.VertexBuffers {
			m.VertexBuffers = append(m.VertexBuffers, allocationView(vb))
		}
		for _, p := range o.Primitives {
			m.Primitives = append(m.Primitives, primitiveDump{Type: p.Type, Indices: allocationView(p.Indices)})
		}
		return m
	case *a3d.Allocation:
		return allocationView(o)
	}
	return obj
}

func allocationView(a *a3d.Allocation) *allocationDump {
	if a == nil {
		return nil
	}
	return &allocationDump{
		Name:     a.Name,
		Type:     a.Type,
		DataLen:  len(a.Data),
		DataHead: a.Data[:min(len(a.Data), dumpHead)],
	}
}

func writeWebP(a *a3d.Allocation, dir string) error {
	img, err := a.Image()
	if err != nil {
		return err
	}
	outPath := filepath.Join(dir, filepath.Base(a.Name)+".webp")
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode %s: %w", a.Name, err)
	}
	fmt.Printf("    Wrote %s\n", outPath)
	return nil
}
