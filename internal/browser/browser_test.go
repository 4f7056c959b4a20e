// internal/browser/browser_test.go
package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/verakocha/veriflow/pkg/types"
)

type stubRenderer struct {
	html string
}

func (s *stubRenderer) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	return &RenderResult{HTML: s.html}, nil
}

func (s *stubRenderer) Name() string { return "stub" }

func TestRegistryResolvesRegisteredRenderer(t *testing.T) {
	r := NewRegistry()
	r.Register(types.EngineBrowser, &stubRenderer{html: "<html></html>"})

	renderer, err := r.Get(types.EngineBrowser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renderer.Name() != "stub" {
		t.Errorf("expected stub renderer, got %s", renderer.Name())
	}
}

func TestRegistryUnknownEngine(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get(types.ScrapeEngine("spdy"))
	if err == nil {
		t.Fatal("expected error for unknown engine")
	}
	if !errors.Is(err, ErrRendererUnavailable) {
		t.Errorf("expected ErrRendererUnavailable, got %v", err)
	}
}

func TestChromeRendererName(t *testing.T) {
	if name := NewChromeRenderer().Name(); name != "chrome" {
		t.Errorf("expected chrome, got %s", name)
	}
}
