// internal/browser/browser.go
// Package browser provides headless page rendering for scrapes that
// need JavaScript execution before extraction.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verakocha/veriflow/pkg/types"
)

// ErrRendererUnavailable is returned when a scrape asks for a rendering
// engine that is not registered in this process.
var ErrRendererUnavailable = errors.New(
	"browser renderer is not available: install Chrome/Chromium or use the static engine")

// RenderRequest describes one page render.
type RenderRequest struct {
	URL             string
	UserAgent       string
	Headers         map[string]string
	Cookies         map[string]string
	WaitForSelector string

	// NextSelector, when set, is evaluated in-page after rendering and
	// the matched link's absolute href is reported as NextURL.
	NextSelector string

	Timeout time.Duration
}

// RenderResult carries the rendered document and the resolved next page
// link, if any.
type RenderResult struct {
	HTML    string
	NextURL string
}

// Renderer renders one page to HTML. Implementations must release all
// browser resources before Render returns, on every exit path.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (*RenderResult, error)
	Name() string
}

// Registry resolves renderers by scrape engine.
type Registry struct {
	renderers map[types.ScrapeEngine]Renderer
}

// NewRegistry creates a registry with the default Chrome renderer bound
// to the browser engine.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[types.ScrapeEngine]Renderer)}
	r.Register(types.EngineBrowser, NewChromeRenderer())
	return r
}

// Register binds a renderer to an engine name, replacing any existing
// binding.
func (r *Registry) Register(engine types.ScrapeEngine, renderer Renderer) {
	r.renderers[engine] = renderer
}

// Get returns the renderer for an engine or ErrRendererUnavailable.
func (r *Registry) Get(engine types.ScrapeEngine) (Renderer, error) {
	renderer, ok := r.renderers[engine]
	if !ok || renderer == nil {
		return nil, fmt.Errorf("engine %q: %w", engine, ErrRendererUnavailable)
	}
	return renderer, nil
}
