// internal/apiclient/client.go

// Package apiclient executes logical API requests for the ingestion
// pipeline: auth injection, per-host fixed-window rate limiting,
// linear-backoff retries and paginated record collection.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verakocha/veriflow/pkg/types"
)

// Default request configuration
const (
	DefaultTimeout               = 30 * time.Second
	DefaultRetryDelay            = time.Second
	DefaultConnectionTestTimeout = 10 * time.Second
)

// MetricsObserver receives client-level counter events. The monitoring
// package's Metrics satisfies it.
type MetricsObserver interface {
	ObserveRetry()
	ObserveRateLimitHit()
}

// nopMetrics is the observer used when none is configured.
type nopMetrics struct{}

func (nopMetrics) ObserveRetry()        {}
func (nopMetrics) ObserveRateLimitHit() {}

// Options configures a Client. The zero value selects the defaults.
type Options struct {
	MaxRequestsPerWindow int
	RateLimitWindow      time.Duration
	Transport            http.RoundTripper
	Logger               *zap.Logger
	Metrics              MetricsObserver
}

// Client executes API requests. Each Client owns its rate-limit table,
// so independent clients never share window state.
type Client struct {
	httpClient *http.Client
	limiter    *hostLimiter
	tokens     *tokenCache
	logger     *zap.Logger
	metrics    MetricsObserver
}

// NewClient creates a new API client with the given options.
func NewClient(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		limiter:    newHostLimiter(opts.MaxRequestsPerWindow, opts.RateLimitWindow),
		tokens:     newTokenCache(),
		logger:     logger,
		metrics:    metrics,
	}
}

// Request executes one logical request: rate-limit check, auth
// injection, then up to RetryCount+1 attempts with linear backoff.
// Expected failures are reported inside the envelope, never as an error.
//
// HTTP error statuses are terminal: they produce Success=false without
// consuming retry attempts. Only transport-level failures retry.
func (c *Client) Request(ctx context.Context, cfg types.APIRequestConfig) *types.APIResponse {
	start := time.Now()

	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Hostname() == "" {
		return &types.APIResponse{
			Success:  false,
			Error:    fmt.Sprintf("invalid URL: %s", cfg.URL),
			Duration: time.Since(start),
		}
	}

	if cfg.Method == "" {
		cfg.Method = types.MethodGet
	}
	if !cfg.Method.IsValid() {
		return &types.APIResponse{
			Success:  false,
			Error:    fmt.Sprintf("unsupported HTTP method: %s", cfg.Method),
			Duration: time.Since(start),
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	// One logical request consumes one window slot, regardless of how
	// many retry attempts it takes.
	if err := c.limiter.allow(parsed.Hostname()); err != nil {
		c.metrics.ObserveRateLimitHit()
		c.logger.Warn("request rejected by rate limiter",
			zap.String("host", parsed.Hostname()),
			zap.Error(err))
		return &types.APIResponse{
			Success:  false,
			Error:    err.Error(),
			Duration: time.Since(start),
		}
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.RetryCount; attempt++ {
		resp, err := c.attempt(ctx, cfg)
		if err == nil {
			resp.Duration = time.Since(start)
			return resp
		}
		lastErr = err

		if attempt < cfg.RetryCount {
			c.metrics.ObserveRetry()
			delay := cfg.RetryDelay * time.Duration(attempt+1)
			c.logger.Debug("request attempt failed, retrying",
				zap.String("url", cfg.URL),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &types.APIResponse{
					Success:  false,
					Error:    ctx.Err().Error(),
					Duration: time.Since(start),
				}
			}
		}
	}

	return &types.APIResponse{
		Success:  false,
		Error:    lastErr.Error(),
		Duration: time.Since(start),
	}
}

// attempt performs a single HTTP exchange. A returned error means the
// attempt is retryable; HTTP error statuses return a non-success
// envelope with err == nil.
func (c *Client) attempt(ctx context.Context, cfg types.APIRequestConfig) (*types.APIResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var bodyReader io.Reader
	contentType := ""
	if cfg.Body != nil {
		switch b := cfg.Body.(type) {
		case string:
			bodyReader = strings.NewReader(b)
		case []byte:
			bodyReader = bytes.NewReader(b)
		default:
			encoded, err := json.Marshal(b)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
			bodyReader = bytes.NewReader(encoded)
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(attemptCtx, string(cfg.Method), cfg.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	query := req.URL.Query()
	for key, value := range cfg.QueryParams {
		query.Set(key, value)
	}

	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	if err := c.applyAuth(attemptCtx, req, query, cfg.Auth); err != nil {
		return nil, err
	}
	req.URL.RawQuery = query.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("request timed out after %s: %w", cfg.Timeout, err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	result := &types.APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Data:       decodeBody(resp.Header.Get("Content-Type"), body),
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Success = true
	} else {
		result.Success = false
		result.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return result, nil
}

// decodeBody parses a JSON payload when the content type or shape
// indicates one; anything else is kept as the raw string.
func decodeBody(contentType string, body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}

	trimmed := bytes.TrimSpace(body)
	looksJSON := len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
	if strings.Contains(contentType, "json") || looksJSON {
		var decoded interface{}
		if err := json.Unmarshal(trimmed, &decoded); err == nil {
			return decoded
		}
	}
	return string(body)
}

// TestConnection probes the configured endpoint with no retries and a
// short fixed timeout, reporting latency regardless of outcome.
func (c *Client) TestConnection(ctx context.Context, cfg types.APIRequestConfig) *types.ConnectionTestResult {
	cfg.RetryCount = 0
	cfg.Timeout = DefaultConnectionTestTimeout

	resp := c.Request(ctx, cfg)
	result := &types.ConnectionTestResult{
		Success: resp.Success,
		Latency: resp.Duration,
	}
	if resp.Success {
		result.Message = fmt.Sprintf("connection succeeded (HTTP %d)", resp.StatusCode)
	} else {
		result.Message = resp.Error
	}
	return result
}

// Remaining reports the unused request slots for a hostname's current
// rate-limit window.
func (c *Client) Remaining(host string) int {
	return c.limiter.remaining(host)
}
