// internal/scraper/scraper.go
// Package scraper extracts structured records from web pages using
// declarative CSS selectors, over either a static HTML fetch or a
// headless browser render.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/verakocha/veriflow/internal/browser"
	"github.com/verakocha/veriflow/pkg/types"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultTimeout         = 30 * time.Second
	defaultPaginationDelay = time.Second
	defaultMaxPages        = 1

	// politenessInterval caps the fetch rate toward a single scrape
	// target independently of the configured pagination delay.
	politenessInterval = 500 * time.Millisecond
)

// Service runs scrapes. It is safe for concurrent use.
type Service struct {
	httpClient *http.Client
	renderers  *browser.Registry
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewService creates a scraping service backed by the given renderer
// registry.
func NewService(renderers *browser.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		renderers: renderers,
		limiter:   rate.NewLimiter(rate.Every(politenessInterval), 1),
		logger:    logger,
	}
}

// Scrape runs one scrape to completion and returns an envelope; network
// and parse failures are reported inside the result, not as errors.
func (s *Service) Scrape(ctx context.Context, cfg *types.ScrapingConfig) *types.ScrapingResult {
	start := time.Now()
	result := &types.ScrapingResult{}

	if err := validateConfig(cfg); err != nil {
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	var (
		rows  []types.Row
		pages int
		err   error
	)
	if cfg.JavaScript || cfg.Engine == types.EngineBrowser {
		rows, pages, err = s.scrapeDynamic(ctx, cfg)
	} else {
		rows, pages, err = s.scrapeStatic(ctx, cfg)
	}

	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		s.logger.Warn("scrape failed",
			zap.String("url", cfg.URL),
			zap.Error(err),
		)
		return result
	}

	result.Success = true
	result.Data = rows
	result.PagesScraped = pages
	result.TotalRecords = len(rows)

	s.logger.Info("scrape finished",
		zap.String("url", cfg.URL),
		zap.Int("pages", pages),
		zap.Int("records", len(rows)),
		zap.Duration("duration", result.Duration),
	)
	return result
}

func validateConfig(cfg *types.ScrapingConfig) error {
	if cfg == nil || cfg.URL == "" {
		return errors.New("scrape URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return fmt.Errorf("invalid scrape URL: %w", err)
	}
	if len(cfg.Selectors) == 0 {
		return errors.New("at least one selector is required")
	}
	for _, selector := range cfg.Selectors {
		if selector.Name == "" || selector.Selector == "" {
			return fmt.Errorf("selector %q: name and selector are required", selector.Name)
		}
		if !validTransform(selector.Transform) {
			return fmt.Errorf("selector %q: unknown transform %q", selector.Name, selector.Transform)
		}
	}
	return nil
}

// scrapeStatic fetches pages over plain GET and follows the pagination
// next link until it runs out or the page cap is reached.
func (s *Service) scrapeStatic(ctx context.Context, cfg *types.ScrapingConfig) ([]types.Row, int, error) {
	maxPages, delay := paginationSettings(cfg.Pagination)

	var rows []types.Row
	pageURL := cfg.URL
	pages := 0

	for pageURL != "" && pages < maxPages {
		if pages > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return rows, pages, err
			}
		}

		html, err := s.fetchHTML(ctx, pageURL, cfg)
		if err != nil {
			return rows, pages, err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return rows, pages, fmt.Errorf("parse %s: %w", pageURL, err)
		}

		rows = append(rows, extractRecords(doc, cfg.Selectors)...)
		pages++

		if cfg.Pagination == nil || !cfg.Pagination.Enabled {
			break
		}
		pageURL = nextPageURL(doc, cfg.Pagination.NextSelector, pageURL)
	}

	return rows, pages, nil
}

// scrapeDynamic renders pages through the registered browser engine and
// follows pagination by evaluating the next link in-page.
func (s *Service) scrapeDynamic(ctx context.Context, cfg *types.ScrapingConfig) ([]types.Row, int, error) {
	renderer, err := s.renderers.Get(types.EngineBrowser)
	if err != nil {
		return nil, 0, err
	}

	maxPages, delay := paginationSettings(cfg.Pagination)

	nextSelector := ""
	if cfg.Pagination != nil && cfg.Pagination.Enabled {
		nextSelector = cfg.Pagination.NextSelector
	}

	var rows []types.Row
	pageURL := cfg.URL
	pages := 0

	for pageURL != "" && pages < maxPages {
		if pages > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return rows, pages, err
			}
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return rows, pages, err
		}

		rendered, err := renderer.Render(ctx, browser.RenderRequest{
			URL:             pageURL,
			UserAgent:       cfg.UserAgent,
			Headers:         cfg.Headers,
			Cookies:         cfg.Cookies,
			WaitForSelector: cfg.WaitForSelector,
			NextSelector:    nextSelector,
			Timeout:         cfg.Timeout,
		})
		if err != nil {
			return rows, pages, err
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered.HTML))
		if err != nil {
			return rows, pages, fmt.Errorf("parse %s: %w", pageURL, err)
		}

		rows = append(rows, extractRecords(doc, cfg.Selectors)...)
		pages++
		pageURL = rendered.NextURL
	}

	return rows, pages, nil
}

func (s *Service) fetchHTML(ctx context.Context, pageURL string, cfg *types.ScrapingConfig) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for name, value := range cfg.Headers {
		req.Header.Set(name, value)
	}
	for name, value := range cfg.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return string(body), nil
}

func paginationSettings(p *types.ScrapePagination) (maxPages int, delay time.Duration) {
	maxPages = defaultMaxPages
	delay = defaultPaginationDelay
	if p != nil && p.Enabled {
		if p.MaxPages > 0 {
			maxPages = p.MaxPages
		}
		if p.Delay > 0 {
			delay = p.Delay
		}
	}
	return maxPages, delay
}

// nextPageURL resolves the pagination link relative to the current page.
func nextPageURL(doc *goquery.Document, selector, current string) string {
	if selector == "" {
		return ""
	}
	href, ok := doc.Find(selector).First().Attr("href")
	if !ok || href == "" {
		return ""
	}

	base, err := url.Parse(current)
	if err != nil {
		return ""
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return ""
	}
	return resolved.String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
