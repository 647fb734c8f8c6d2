package texture

import (
	"fmt"
	"image"
)

// Resolver resolves an image URI to a decoded image.
type Resolver interface {
	Resolve(uri string) (*image.NRGBA, error)
}

// Cache decodes each resolved file once. It is not safe for concurrent
// use.
type Cache struct {
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches an image by URI. Decode failures are cached
// too.
func (c *Cache) Resolve(uri string) (*image.NRGBA, error) {
	path, ok := c.index.ResolvePath(uri)
	if !ok {
		return nil, fmt.Errorf("texture: %s not found", uri)
	}
	if entry, exists := c.items[path]; exists {
		return entry.img, entry.err
	}
	img, err := Load(path)
	c.items[path] = &cacheEntry{img: img, err: err}
	return img, err
}
