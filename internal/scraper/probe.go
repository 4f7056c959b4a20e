// internal/scraper/probe.go
package scraper

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verakocha/veriflow/pkg/types"
)

const (
	probeTimeout = 10 * time.Second

	// Pages smaller than this are assumed to be client-side rendered
	// shells rather than full server-rendered documents.
	minStaticHTMLSize = 5000
)

// spaMarkers are framework hydration fingerprints that indicate the
// page body is built by JavaScript.
var spaMarkers = []string{
	"__next",
	"data-reactroot",
	"ng-version",
	`id="root"`,
	"vue",
}

// TestURL probes a URL with HEAD then GET and recommends a scraping
// engine based on what came back.
func (s *Service) TestURL(ctx context.Context, rawURL string) (*types.URLProbe, error) {
	probe := &types.URLProbe{RecommendedEngine: types.EngineStatic}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	head, err := http.NewRequestWithContext(probeCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		probe.Error = err.Error()
		return probe, nil
	}
	head.Header.Set("User-Agent", defaultUserAgent)
	if resp, err := s.httpClient.Do(head); err == nil {
		probe.StatusCode = resp.StatusCode
		resp.Body.Close()
	}

	get, err := http.NewRequestWithContext(probeCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		probe.Error = err.Error()
		return probe, nil
	}
	get.Header.Set("User-Agent", defaultUserAgent)

	resp, err := s.httpClient.Do(get)
	if err != nil {
		probe.Error = err.Error()
		return probe, nil
	}
	defer resp.Body.Close()

	probe.StatusCode = resp.StatusCode
	probe.Accessible = resp.StatusCode >= 200 && resp.StatusCode < 400

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		probe.Error = err.Error()
		return probe, nil
	}
	probe.ContentLength = len(body)

	html := strings.ToLower(string(body))
	for _, marker := range spaMarkers {
		if strings.Contains(html, strings.ToLower(marker)) {
			probe.RequiresJavaScript = true
			break
		}
	}
	if !probe.RequiresJavaScript && probe.ContentLength < minStaticHTMLSize {
		probe.RequiresJavaScript = true
	}

	if probe.RequiresJavaScript {
		probe.RecommendedEngine = types.EngineBrowser
	}
	return probe, nil
}
