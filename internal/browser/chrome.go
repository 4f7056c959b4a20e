// internal/browser/chrome.go
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 30 * time.Second

// ChromeRenderer renders pages with a headless Chrome instance scoped
// to a single Render call.
type ChromeRenderer struct {
	execOptions []chromedp.ExecAllocatorOption
}

// NewChromeRenderer creates a Chrome renderer with headless defaults.
func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{
		execOptions: []chromedp.ExecAllocatorOption{
			chromedp.NoFirstRun,
			chromedp.NoDefaultBrowserCheck,
			chromedp.DisableGPU,
			chromedp.NoSandbox, // Required for Docker environments
			chromedp.Headless,
		},
	}
}

// Name implements Renderer.
func (r *ChromeRenderer) Name() string {
	return "chrome"
}

// Render navigates to the requested URL and returns the rendered HTML.
// The allocator and browser contexts are cancelled before returning on
// every path, so each call holds browser resources only for its own
// duration.
func (r *ChromeRenderer) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	opts := r.execOptions
	if req.UserAgent != "" {
		opts = append(append([]chromedp.ExecAllocatorOption{}, opts...), chromedp.UserAgent(req.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	tasks := []chromedp.Action{network.Enable()}
	if len(req.Headers) > 0 {
		headers := make(network.Headers, len(req.Headers))
		for name, value := range req.Headers {
			headers[name] = value
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(headers))
	}
	if len(req.Cookies) > 0 {
		tasks = append(tasks, setCookiesAction(req.URL, req.Cookies))
	}

	tasks = append(tasks,
		chromedp.Navigate(req.URL),
		chromedp.WaitReady("body"),
	)
	if req.WaitForSelector != "" {
		tasks = append(tasks, chromedp.WaitVisible(req.WaitForSelector))
	}

	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html))

	var nextURL string
	if req.NextSelector != "" {
		script := fmt.Sprintf(
			`(function(){var el=document.querySelector(%q);return el&&el.href?el.href:"";})()`,
			req.NextSelector)
		tasks = append(tasks, chromedp.Evaluate(script, &nextURL))
	}

	if err := chromedp.Run(runCtx, tasks...); err != nil {
		if isLaunchFailure(err) {
			return nil, fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
		}
		return nil, fmt.Errorf("render %s: %w", req.URL, err)
	}

	return &RenderResult{HTML: html, NextURL: nextURL}, nil
}

// setCookiesAction installs cookies for the target host before
// navigation.
func setCookiesAction(rawURL string, cookies map[string]string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("cookie target url: %w", err)
		}
		for name, value := range cookies {
			if err := network.SetCookie(name, value).WithDomain(parsed.Hostname()).Do(ctx); err != nil {
				return fmt.Errorf("set cookie %q: %w", name, err)
			}
		}
		return nil
	})
}

// isLaunchFailure distinguishes a missing or broken Chrome install from
// an ordinary navigation error.
func isLaunchFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "executable file not found") ||
		strings.Contains(msg, "exec:") ||
		strings.Contains(msg, "fork/exec")
}
