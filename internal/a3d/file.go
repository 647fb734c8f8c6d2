// Package a3d reads and writes A3D archives: a magic string, an index of
// named top-level objects, and a data block holding the serialized objects.
//
// Layout (all values little-endian, aligned to their size within their
// block):
//
//	[12]byte  "Android3D_ff"
//	u64       header size
//	header    u32 major, u32 minor, u32 is32bit, u32 entry count,
//	          entries of {string name, u32 class, u64 offset, u64 length}
//	u64       data size
//	data      objects, each starting on an 8-byte boundary
package a3d

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	Magic        = "Android3D_ff"
	MajorVersion = 1
	MinorVersion = 1
)

var ErrBadMagic = errors.New("a3d: not an A3D archive")

// Object is a top-level archive entry.
type Object interface {
	ClassID() ClassID
	ObjectName() string
	serialize(w *writer)
}

// IndexEntry locates one object inside the data block.
type IndexEntry struct {
	Name   string
	Class  ClassID
	Offset uint64
	Length uint64
}

// File accumulates objects for writing.
type File struct {
	objects []Object
}

// NewFile returns an empty archive.
func NewFile() *File {
	return &File{}
}

// Append adds obj as the next entry. Objects are serialized when the
// archive is written, not when they are appended.
func (f *File) Append(obj Object) {
	f.objects = append(f.objects, obj)
}

// Len returns the number of appended entries.
func (f *File) Len() int { return len(f.objects) }

// Bytes serializes the whole archive.
func (f *File) Bytes() []byte {
	data := &writer{}
	entries := make([]IndexEntry, 0, len(f.objects))
	for _, obj := range f.objects {
		data.align(8)
		start := data.pos()
		obj.serialize(data)
		entries = append(entries, IndexEntry{
			Name:   obj.ObjectName(),
			Class:  obj.ClassID(),
			Offset: uint64(start),
			Length: uint64(data.pos() - start),
		})
	}

	hdr := &writer{}
	hdr.u32(MajorVersion)
	hdr.u32(MinorVersion)
	hdr.u32(1)
	hdr.u32(uint32(len(entries)))
	for _, e := range entries {
		hdr.str(e.Name)
		hdr.u32(uint32(e.Class))
		hdr.u64(e.Offset)
		hdr.u64(e.Length)
	}

	out := &writer{}
	out.bytes([]byte(Magic))
	out.u64(uint64(hdr.pos()))
	out.bytes(hdr.buf)
	out.u64(uint64(data.pos()))
	out.bytes(data.buf)
	return out.buf
}

// WriteTo writes the serialized archive to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// WriteFile writes the archive to path, replacing any existing file.
func (f *File) WriteFile(path string) error {
	if err := os.WriteFile(path, f.Bytes(), 0644); err != nil {
		return fmt.Errorf("a3d: write %s: %w", path, err)
	}
	return nil
}

// Archive is a decoded A3D archive. Objects are decoded on demand.
type Archive struct {
	Major   uint32
	Minor   uint32
	Entries []IndexEntry
	data    []byte
}

// ReadFile reads and decodes the archive at path.
func ReadFile(path string) (*Archive, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("a3d: read %s: %w", path, err)
	}
	a, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("a3d: decode %s: %w", path, err)
	}
	return a, nil
}

// Decode parses the archive header and index. raw is retained.
func Decode(raw []byte) (*Archive, error) {
	if len(raw) < len(Magic) || !bytes.Equal(raw[:len(Magic)], []byte(Magic)) {
		return nil, ErrBadMagic
	}
	r := &reader{data: raw, off: len(Magic)}
	hdrSize := int(r.u64())
	hdrBytes := r.bytes(hdrSize)
	dataSize := int(r.u64())
	data := r.bytes(dataSize)
	if r.err != nil {
		return nil, r.err
	}

	h := &reader{data: hdrBytes}
	a := &Archive{Major: h.u32(), Minor: h.u32(), data: data}
	_ = h.u32() // is32bit
	n := h.u32()
	if h.err != nil {
		return nil, h.err
	}
	if a.Major != MajorVersion {
		return nil, fmt.Errorf("a3d: unsupported version %d.%d", a.Major, a.Minor)
	}
	for i := uint32(0); i < n; i++ {
		e := IndexEntry{
			Name:   h.str(),
			Class:  ClassID(h.u32()),
			Offset: h.u64(),
			Length: h.u64(),
		}
		if h.err != nil {
			return nil, fmt.Errorf("a3d: index entry %d: %w", i, h.err)
		}
		if e.Offset+e.Length > uint64(len(data)) || e.Offset+e.Length < e.Offset {
			return nil, fmt.Errorf("a3d: index entry %q out of range", e.Name)
		}
		a.Entries = append(a.Entries, e)
	}
	return a, nil
}

// Object decodes entry i.
func (a *Archive) Object(i int) (Object, error) {
	if i < 0 || i >= len(a.Entries) {
		return nil, fmt.Errorf("a3d: entry %d out of range", i)
	}
	e := a.Entries[i]
	// Alignment inside an object is relative to the data block, so the
	// reader walks the whole block starting at the entry offset.
	r := &reader{data: a.data[:e.Offset+e.Length], off: int(e.Offset)}
	switch e.Class {
	case ClassMesh:
		return decoded(readMesh(r))
	case ClassAllocation:
		return decoded(readAllocation(r))
	case ClassType:
		return decoded(readType(r))
	case ClassElement:
		return decoded(readElement(r))
	}
	return nil, fmt.Errorf("a3d: entry %q has unsupported class %v", e.Name, e.Class)
}

// decoded keeps a typed nil out of the Object interface on error.
func decoded[T Object](obj T, err error) (Object, error) {
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Meshes decodes every mesh entry in index order.
func (a *Archive) Meshes() ([]*Mesh, error) {
	var out []*Mesh
	for i, e := range a.Entries {
		if e.Class != ClassMesh {
			continue
		}
		obj, err := a.Object(i)
		if err != nil {
			return nil, err
		}
		out = append(out, obj.(*Mesh))
	}
	return out, nil
}
