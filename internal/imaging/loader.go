package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"sync"
)

// ImageCache provides thread-safe caching of decoded images keyed by their
// cross-reference id, so an image placed several times (or rendered for both
// the crop and the OCR clip) is decoded once.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// Page-scoped users should Clear() when moving on to the next page.
type ImageCache struct {
	mu     sync.RWMutex
	images map[int]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[int]image.Image),
	}
}

// Load returns the cached image for id or calls decode to produce it. Decode
// errors are returned and not cached.
func (c *ImageCache) Load(id int, decode func() (image.Image, error)) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[id]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := decode()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[id] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[int]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache.
func (c *ImageCache) Evict(id int) {
	c.mu.Lock()
	delete(c.images, id)
	c.mu.Unlock()
}

// Decode decodes PNG, JPEG or GIF data.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
