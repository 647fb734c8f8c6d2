// Package convert runs the COLLADA to A3D pipeline: load, triangulate,
// convert geometry, write the archive.
package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"a3dconvert/internal/a3d"
	"a3dconvert/internal/collada"
	"a3dconvert/internal/geometry"
	"a3dconvert/internal/texture"
)

// ErrNoGeometry is returned when there is no converted mesh to write.
var ErrNoGeometry = errors.New("convert: no mesh geometry to write")

// Converter holds the state of one conversion. Progress goes to Out and
// failures to Err.
type Converter struct {
	Out io.Writer
	Err io.Writer

	// EmbedTextures appends the document's images to the archive after
	// the meshes. Textures resolves image URIs; when nil, images are
	// looked up next to the source document.
	EmbedTextures bool
	Textures      texture.Resolver

	source     string
	doc        *collada.Document
	geometries []*geometry.Geometry
	images     []string
}

// New returns a Converter printing to the standard streams.
func New() *Converter {
	return &Converter{Out: os.Stdout, Err: os.Stderr}
}

// Load reads and converts the COLLADA document at path, replacing any
// previously loaded geometry. It fails if the document cannot be read or
// any mesh geometry fails to convert; in the latter case the geometries
// that did convert are still kept.
func (c *Converter) Load(path string) error {
	c.source, c.doc, c.geometries, c.images = path, nil, nil, nil

	doc, err := collada.Open(path)
	if err != nil {
		fmt.Fprintf(c.Err, "Failed to read file %s.\n", path)
		return err
	}

	// Only triangle lists can be written.
	collada.Triangulate(doc)
	c.doc = doc

	geoms, err := geometry.ConvertLibrary(doc, c.Out)
	c.geometries = geoms
	if err != nil {
		for _, e := range split(err) {
			fmt.Fprintf(c.Err, "Failed to convert %v\n", e)
		}
		return fmt.Errorf("convert: %s: %w", path, err)
	}
	return nil
}

// Geometries returns the converted geometries in document order.
func (c *Converter) Geometries() []*geometry.Geometry {
	return c.geometries
}

// Images returns the names of the images embedded by the last WriteA3D.
func (c *Converter) Images() []string {
	return c.images
}

// WriteA3D writes the loaded geometries, and optionally the document's
// images, to an archive at path.
func (c *Converter) WriteA3D(path string) error {
	f, err := BuildArchive(c.geometries)
	if err != nil {
		return err
	}
	c.images = nil
	if c.EmbedTextures && c.doc != nil {
		c.appendImages(f)
	}
	if err := f.WriteFile(path); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	return nil
}

// Run loads input and writes output. Nothing is written unless every mesh
// geometry converted.
func (c *Converter) Run(input, output string) error {
	if err := c.Load(input); err != nil {
		return err
	}
	return c.WriteA3D(output)
}

// BuildArchive appends one runtime mesh per geometry, in order.
func BuildArchive(geoms []*geometry.Geometry) (*a3d.File, error) {
	if len(geoms) == 0 {
		return nil, ErrNoGeometry
	}
	f := a3d.NewFile()
	for _, g := range geoms {
		f.Append(RuntimeMesh(g))
	}
	return f, nil
}

// WriteArchive writes geoms as an archive at path. An empty geoms writes
// nothing and returns ErrNoGeometry.
func WriteArchive(geoms []*geometry.Geometry, path string) error {
	f, err := BuildArchive(geoms)
	if err != nil {
		return err
	}
	if err := f.WriteFile(path); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	return nil
}

func (c *Converter) appendImages(f *a3d.File) {
	if len(c.doc.Images) == 0 {
		return
	}
	resolver := c.Textures
	if resolver == nil {
		resolver = texture.NewCache(texture.BuildIndex(filepath.Dir(c.source)))
	}
	for i := range c.doc.Images {
		img := &c.doc.Images[i]
		pix, err := resolver.Resolve(img.Path())
		if err != nil {
			fmt.Fprintf(c.Out, "Skipping image: %s, %v\n", img.Label(), err)
			continue
		}
		fmt.Fprintf(c.Out, "Embedding image: %s\n", img.Label())
		b := pix.Bounds()
		f.Append(a3d.NewImageAllocation(img.Label(), b.Dx(), b.Dy(), pix.Pix))
		c.images = append(c.images, img.Label())
	}
}

// split returns the members of an errors.Join result, or err itself.
func split(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
