package texture

import (
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Index resolves image URIs from a document to files on disk. URIs are
// tried as written first, then by file name and finally by stem among the
// images found next to the document.
type Index struct {
	base  string
	names map[string]string // lower(file name) -> path
	stems map[string]string // lower(stem) -> path
}

// alphaFormats win over opaque formats sharing a stem.
var alphaFormats = map[string]bool{".png": true, ".tga": true, ".webp": true, ".tif": true, ".tiff": true}

// BuildIndex scans dir and its subdirectories, one level deep, for
// decodable images.
func BuildIndex(dir string) *Index {
	idx := &Index{
		base:  dir,
		names: make(map[string]string),
		stems: make(map[string]string),
	}

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && filepath.Dir(path) != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !Supported(path) {
			return nil
		}
		name := strings.ToLower(filepath.Base(path))
		if _, exists := idx.names[name]; !exists {
			idx.names[name] = path
		}

		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		existing, exists := idx.stems[stem]
		if !exists {
			idx.stems[stem] = path
		} else if alphaFormats[ext] && !alphaFormats[strings.ToLower(filepath.Ext(existing))] {
			idx.stems[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the file for an image URI, or ("", false).
func (idx *Index) ResolvePath(uri string) (string, bool) {
	p := uriPath(uri)
	if p == "" {
		return "", false
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(idx.base, p)
	}
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return p, true
	}

	name := strings.ToLower(filepath.Base(p))
	if path, ok := idx.names[name]; ok {
		return path, true
	}
	path, ok := idx.stems[strings.TrimSuffix(name, filepath.Ext(name))]
	return path, ok
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.names)
}

// uriPath turns "file:///C:/tex/a%20b.png", "file:tex/a.png" or
// "tex\a.png" into a local path.
func uriPath(uri string) string {
	s := strings.ReplaceAll(strings.TrimSpace(uri), "\\", "/")
	if strings.HasPrefix(s, "file:") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		s = u.Path
		if s == "" {
			s = u.Opaque
		}
	} else if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	// Drive letter after a URI slash: /C:/tex/a.png
	if len(s) > 2 && s[0] == '/' && s[2] == ':' {
		s = s[1:]
	}
	return filepath.FromSlash(s)
}
