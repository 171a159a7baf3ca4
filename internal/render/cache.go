package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/JonMunkholm/weldview/internal/core"
)

// Cache is a core.Renderer that keeps the latest scene and its rendered
// images. SVG is rendered when the scene arrives; PNG on first request.
type Cache struct {
	renderer ChartRenderer

	mu      sync.RWMutex
	scene   core.Scene
	version uint64
	images  map[Format][]byte
}

// NewCache returns an empty cache drawing with r.
func NewCache(r ChartRenderer) *Cache {
	return &Cache{renderer: r, images: make(map[Format][]byte)}
}

// Render stores scene and pre-renders the SVG.
func (c *Cache) Render(_ context.Context, scene core.Scene) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scene = scene
	c.version++
	clear(c.images)

	if scene.Empty() {
		return nil
	}
	var buf bytes.Buffer
	if err := c.renderer.Draw(scene, SVG, &buf); err != nil {
		return err
	}
	c.images[SVG] = buf.Bytes()
	return nil
}

// Scene returns the last rendered scene.
func (c *Cache) Scene() core.Scene {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scene
}

// Version increments on every Render; pages use it to bust image caches.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Image returns the chart in format f, rendering it if needed.
func (c *Cache) Image(f Format) ([]byte, error) {
	c.mu.RLock()
	img, ok := c.images[f]
	scene := c.scene
	version := c.version
	c.mu.RUnlock()

	if ok {
		return img, nil
	}
	if scene.Empty() {
		return nil, ErrEmptyScene
	}

	var buf bytes.Buffer
	if err := c.renderer.Draw(scene, f, &buf); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.version == version {
		c.images[f] = buf.Bytes()
	}
	c.mu.Unlock()
	return buf.Bytes(), nil
}

// FileOutput is a core.Renderer that writes each scene to a file.
type FileOutput struct {
	Renderer ChartRenderer
	Path     string
	Format   Format
}

// Render writes scene to o.Path, replacing any previous content.
func (o FileOutput) Render(_ context.Context, scene core.Scene) error {
	if scene.Empty() {
		return ErrEmptyScene
	}

	var buf bytes.Buffer
	if err := o.Renderer.Draw(scene, o.Format, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(o.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
