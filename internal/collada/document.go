// Package collada loads the geometry and image libraries of a COLLADA
// (.dae) document.
package collada

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	dae "github.com/GlenKelley/go-collada"
	"golang.org/x/text/encoding/ianaindex"
)

// Document is the subset of a COLLADA scene the converter needs.
type Document struct {
	Version    string
	Images     []Image
	Geometries []Geometry
}

// Geometry is one <geometry> entry. Mesh is nil for non-mesh geometry
// such as splines or convex meshes.
type Geometry struct {
	ID   string
	Name string
	Mesh *Mesh
}

// Image is one <image> entry of library_images.
type Image struct {
	ID   string
	Name string
	URI  string
}

// Path returns the image URI as written in the document.
func (img *Image) Path() string {
	return strings.TrimSpace(img.URI)
}

// Label returns the image name, or its id when the name is empty.
func (img *Image) Label() string {
	if img.Name != "" {
		return img.Name
	}
	return img.ID
}

// Open parses the COLLADA document at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("collada: open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("collada: parse %s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a COLLADA document from r. Documents declared in a
// non-UTF-8 encoding are transcoded.
func Decode(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	start, err := rootElement(dec)
	if err != nil {
		return nil, err
	}
	if start.Name.Local != "COLLADA" {
		return nil, fmt.Errorf("root element is <%s>, not <COLLADA>", start.Name.Local)
	}

	var raw dae.Collada
	if err := dec.DecodeElement(&raw, &start); err != nil {
		return nil, err
	}
	return fromDOM(&raw), nil
}

func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, io.ErrUnexpectedEOF
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q: unsupported", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
