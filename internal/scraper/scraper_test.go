// internal/scraper/scraper_test.go
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/verakocha/veriflow/internal/browser"
	"github.com/verakocha/veriflow/pkg/types"
)

const productListHTML = `<html><body>
<div class="product">
  <h2 class="name">Laptop Pro</h2>
  <span class="price">$1,299.00</span>
  <a class="detail" href="/p/1">details</a>
</div>
<div class="product">
  <h2 class="name">Mouse</h2>
  <span class="price">$24.50</span>
  <a class="detail" href="/p/2">details</a>
</div>
</body></html>`

func htmlServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, html)
	}))
}

func TestScrapeMultipleSelector(t *testing.T) {
	server := htmlServer(t, productListHTML)
	defer server.Close()

	s := NewService(browser.NewRegistry(), nil)
	result := s.Scrape(context.Background(), &types.ScrapingConfig{
		URL: server.URL,
		Selectors: []types.SelectorConfig{
			{Name: "product", Selector: ".product", Multiple: true},
			{Name: "name", Selector: ".name"},
			{Name: "price", Selector: ".price", Transform: "number"},
			{Name: "link", Selector: ".detail", Attribute: "href"},
		},
	})

	if !result.Success {
		t.Fatalf("scrape failed: %s", result.Error)
	}
	if result.TotalRecords != 2 {
		t.Fatalf("expected 2 records, got %d", result.TotalRecords)
	}
	if result.Data[0]["name"] != "Laptop Pro" {
		t.Errorf("expected scoped name extraction, got %v", result.Data[0]["name"])
	}
	if price, ok := result.Data[0]["price"].(float64); !ok || price != 1299.00 {
		t.Errorf("expected price 1299.00, got %v", result.Data[0]["price"])
	}
	if result.Data[1]["link"] != "/p/2" {
		t.Errorf("expected link attribute, got %v", result.Data[1]["link"])
	}
}

func TestScrapeAggregateRecord(t *testing.T) {
	server := htmlServer(t, `<html><body>
		<h1 id="title">Quarterly Report</h1>
		<span id="total">42</span>
	</body></html>`)
	defer server.Close()

	s := NewService(browser.NewRegistry(), nil)
	result := s.Scrape(context.Background(), &types.ScrapingConfig{
		URL: server.URL,
		Selectors: []types.SelectorConfig{
			{Name: "title", Selector: "#title"},
			{Name: "total", Selector: "#total", Transform: "number"},
		},
	})

	if !result.Success {
		t.Fatalf("scrape failed: %s", result.Error)
	}
	if result.TotalRecords != 1 {
		t.Fatalf("expected single aggregate record, got %d", result.TotalRecords)
	}
	if result.Data[0]["title"] != "Quarterly Report" {
		t.Errorf("unexpected title: %v", result.Data[0]["title"])
	}
}

func TestScrapeFollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		next := ""
		switch page {
		case "", "1":
			page, next = "1", "/?page=2"
		case "2":
			next = "/?page=3"
		}
		fmt.Fprintf(w, `<html><body><div class="item">item-%s</div>`, page)
		if next != "" {
			fmt.Fprintf(w, `<a class="next" href="%s">next</a>`, next)
		}
		fmt.Fprint(w, `</body></html>`)
	}))
	defer server.Close()

	s := NewService(browser.NewRegistry(), nil)
	result := s.Scrape(context.Background(), &types.ScrapingConfig{
		URL: server.URL,
		Selectors: []types.SelectorConfig{
			{Name: "item", Selector: ".item", Multiple: true},
		},
		Pagination: &types.ScrapePagination{
			Enabled:      true,
			NextSelector: "a.next",
			MaxPages:     3,
			Delay:        10 * time.Millisecond,
		},
	})

	if !result.Success {
		t.Fatalf("scrape failed: %s", result.Error)
	}
	if result.PagesScraped != 3 {
		t.Errorf("expected 3 pages, got %d", result.PagesScraped)
	}
	if result.TotalRecords != 3 {
		t.Errorf("expected 3 records, got %d", result.TotalRecords)
	}
}

func TestScrapePaginationStopsWithoutNextLink(t *testing.T) {
	server := htmlServer(t, `<html><body><div class="item">only</div></body></html>`)
	defer server.Close()

	s := NewService(browser.NewRegistry(), nil)
	result := s.Scrape(context.Background(), &types.ScrapingConfig{
		URL: server.URL,
		Selectors: []types.SelectorConfig{
			{Name: "item", Selector: ".item", Multiple: true},
		},
		Pagination: &types.ScrapePagination{
			Enabled:      true,
			NextSelector: "a.next",
			MaxPages:     5,
			Delay:        10 * time.Millisecond,
		},
	})

	if result.PagesScraped != 1 {
		t.Errorf("expected 1 page, got %d", result.PagesScraped)
	}
}

func TestScrapeUnknownTransformRejected(t *testing.T) {
	s := NewService(browser.NewRegistry(), nil)
	result := s.Scrape(context.Background(), &types.ScrapingConfig{
		URL: "http://example.com",
		Selectors: []types.SelectorConfig{
			{Name: "x", Selector: ".x", Transform: "rot13"},
		},
	})

	if result.Success {
		t.Fatal("expected failure for unknown transform")
	}
	if !strings.Contains(result.Error, "rot13") {
		t.Errorf("error should name the transform, got %q", result.Error)
	}
}

func TestScrapeNetworkFailureEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewService(browser.NewRegistry(), nil)
	result := s.Scrape(context.Background(), &types.ScrapingConfig{
		URL:       server.URL,
		Selectors: []types.SelectorConfig{{Name: "x", Selector: ".x"}},
	})

	if result.Success {
		t.Fatal("expected failure for HTTP 500")
	}
	if result.Error == "" {
		t.Error("expected error message in envelope")
	}
}

type fakeRenderer struct {
	pages map[string]browser.RenderResult
}

func (f *fakeRenderer) Render(ctx context.Context, req browser.RenderRequest) (*browser.RenderResult, error) {
	page, ok := f.pages[req.URL]
	if !ok {
		return nil, fmt.Errorf("no page for %s", req.URL)
	}
	return &page, nil
}

func (f *fakeRenderer) Name() string { return "fake" }

func TestScrapeDynamicPath(t *testing.T) {
	registry := browser.NewRegistry()
	registry.Register(types.EngineBrowser, &fakeRenderer{
		pages: map[string]browser.RenderResult{
			"http://spa.test/1": {
				HTML:    `<html><body><div class="row">r1</div></body></html>`,
				NextURL: "http://spa.test/2",
			},
			"http://spa.test/2": {
				HTML: `<html><body><div class="row">r2</div></body></html>`,
			},
		},
	})

	s := NewService(registry, nil)
	result := s.Scrape(context.Background(), &types.ScrapingConfig{
		URL:        "http://spa.test/1",
		JavaScript: true,
		Selectors: []types.SelectorConfig{
			{Name: "row", Selector: ".row", Multiple: true},
		},
		Pagination: &types.ScrapePagination{
			Enabled:      true,
			NextSelector: "a.next",
			MaxPages:     5,
			Delay:        10 * time.Millisecond,
		},
	})

	if !result.Success {
		t.Fatalf("scrape failed: %s", result.Error)
	}
	if result.PagesScraped != 2 {
		t.Errorf("expected 2 rendered pages, got %d", result.PagesScraped)
	}
	if result.Data[0]["row"] != "r1" || result.Data[1]["row"] != "r2" {
		t.Errorf("unexpected rows: %v", result.Data)
	}
}

func TestScrapeMissingRendererIsActionable(t *testing.T) {
	s := NewService(&browser.Registry{}, nil)
	result := s.Scrape(context.Background(), &types.ScrapingConfig{
		URL:        "http://spa.test",
		JavaScript: true,
		Selectors:  []types.SelectorConfig{{Name: "x", Selector: ".x"}},
	})

	if result.Success {
		t.Fatal("expected failure without a renderer")
	}
	if !strings.Contains(result.Error, "renderer is not available") {
		t.Errorf("expected actionable renderer error, got %q", result.Error)
	}
}

func TestApplyTransforms(t *testing.T) {
	cases := []struct {
		raw       string
		transform string
		want      interface{}
	}{
		{"$1,299.00", "number", 1299.00},
		{"no digits", "number", nil},
		{"2024-03-15", "date", "2024-03-15"},
		{"15/03/2024", "date", "2024-03-15"},
		{"garbage", "date", "garbage"},
		{"  padded  ", "trim", "padded"},
		{"MiXeD", "lowercase", "mixed"},
		{"MiXeD", "uppercase", "MIXED"},
		{"as-is", "", "as-is"},
		{"as-is", "text", "as-is"},
	}

	for _, tc := range cases {
		if got := applyTransform(tc.raw, tc.transform); got != tc.want {
			t.Errorf("transform %q on %q: expected %v, got %v", tc.transform, tc.raw, tc.want, got)
		}
	}
}

func TestTestURLStaticPage(t *testing.T) {
	big := "<html><body>" + strings.Repeat("<p>server rendered content</p>", 300) + "</body></html>"
	server := htmlServer(t, big)
	defer server.Close()

	s := NewService(browser.NewRegistry(), nil)
	probe, err := s.TestURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !probe.Accessible {
		t.Error("expected accessible")
	}
	if probe.RequiresJavaScript {
		t.Error("large plain page should not require JavaScript")
	}
	if probe.RecommendedEngine != types.EngineStatic {
		t.Errorf("expected static engine, got %s", probe.RecommendedEngine)
	}
}

func TestTestURLDetectsSPA(t *testing.T) {
	server := htmlServer(t, `<html><body><div id="root"></div><script src="/app.js"></script></body></html>`)
	defer server.Close()

	s := NewService(browser.NewRegistry(), nil)
	probe, err := s.TestURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !probe.RequiresJavaScript {
		t.Error("expected JavaScript requirement for SPA shell")
	}
	if probe.RecommendedEngine != types.EngineBrowser {
		t.Errorf("expected browser engine, got %s", probe.RecommendedEngine)
	}
}
