package core

import (
	"context"
	"log/slog"
	"sync"
)

// Renderer draws a settled scene. Implementations must not retain the
// scene's slices beyond the call.
type Renderer interface {
	Render(ctx context.Context, scene Scene) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, scene Scene) error

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, scene Scene) error {
	return f(ctx, scene)
}

// Controller is the command surface of the application. Each command
// mutates the session and then renders exactly once, after the state has
// settled. Commands are serialized so a render never observes half of one.
type Controller struct {
	session  *Session
	renderer Renderer
	policy   RegionPolicy
	opts     BatchOptions

	mu sync.Mutex
}

// NewController wires a session to a renderer.
func NewController(session *Session, renderer Renderer, policy RegionPolicy, opts BatchOptions) *Controller {
	return &Controller{
		session:  session,
		renderer: renderer,
		policy:   policy,
		opts:     opts,
	}
}

// Session returns the controlled session for read access.
func (c *Controller) Session() *Session {
	return c.session
}

// Scene builds the scene for the current visible datasets.
func (c *Controller) Scene() Scene {
	return BuildScene(c.session.VisibleDatasets(), c.policy)
}

// OnFilesSelected loads a batch and renders once after every file settled.
// Per-file failures are part of the result; the returned error is only a
// render failure.
func (c *Controller) OnFilesSelected(ctx context.Context, sources []FileSource) (BatchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := LoadBatch(ctx, c.session, sources, c.opts)
	return result, c.render(ctx)
}

// OnRemove deletes a dataset.
func (c *Controller) OnRemove(ctx context.Context, id int) error {
	return c.command(ctx, func() error { return c.session.Remove(id) })
}

// OnToggleVisible flips a dataset's visibility and returns the dataset as the
// command left it.
func (c *Controller) OnToggleVisible(ctx context.Context, id int) (Dataset, error) {
	var ds Dataset
	err := c.command(ctx, func() (err error) {
		ds, err = c.session.toggleVisible(id)
		return err
	})
	return ds, err
}

// OnSetColor assigns a dataset's color and returns the updated dataset.
func (c *Controller) OnSetColor(ctx context.Context, id int, color string) (Dataset, error) {
	var ds Dataset
	err := c.command(ctx, func() (err error) {
		ds, err = c.session.setColor(id, color)
		return err
	})
	return ds, err
}

// OnClearAll removes every dataset.
func (c *Controller) OnClearAll(ctx context.Context) error {
	return c.command(ctx, func() error {
		c.session.Clear()
		return nil
	})
}

// command runs mutate and renders if it succeeded.
func (c *Controller) command(ctx context.Context, mutate func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := mutate(); err != nil {
		return err
	}
	return c.render(ctx)
}

func (c *Controller) render(ctx context.Context) error {
	if c.renderer == nil {
		return nil
	}
	scene := c.Scene()
	if err := c.renderer.Render(ctx, scene); err != nil {
		slog.Error("render failed", "series", len(scene.Series), "error", err)
		return err
	}
	return nil
}
