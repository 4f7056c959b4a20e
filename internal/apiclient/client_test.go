// internal/apiclient/client_test.go
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/verakocha/veriflow/pkg/types"
)

// failingTransport always fails, recording how many attempts were made.
type failingTransport struct {
	attempts int32
}

func (t *failingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&t.attempts, 1)
	return nil, fmt.Errorf("simulated network failure")
}

// countingMetrics records observer calls for assertions.
type countingMetrics struct {
	retries       int32
	rateLimitHits int32
}

func (m *countingMetrics) ObserveRetry()        { atomic.AddInt32(&m.retries, 1) }
func (m *countingMetrics) ObserveRateLimitHit() { atomic.AddInt32(&m.rateLimitHits, 1) }

func TestBearerAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Options{})
	resp := client.Request(context.Background(), types.APIRequestConfig{
		URL:    server.URL,
		Method: types.MethodGet,
		Auth:   types.AuthConfig{Type: types.AuthBearer, Token: "abc"},
	})

	if !resp.Success {
		t.Fatalf("request failed: %s", resp.Error)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("expected Authorization 'Bearer abc', got %q", gotAuth)
	}
}

func TestAPIKeyInQueryAndHeader(t *testing.T) {
	var gotHeader, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.Query().Get("api_key")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Options{})

	resp := client.Request(context.Background(), types.APIRequestConfig{
		URL:  server.URL,
		Auth: types.AuthConfig{Type: types.AuthAPIKey, Key: "X-Api-Key", Value: "secret", Location: types.APIKeyInHeader},
	})
	if !resp.Success || gotHeader != "secret" {
		t.Errorf("expected header api key 'secret', got %q (success=%v)", gotHeader, resp.Success)
	}

	resp = client.Request(context.Background(), types.APIRequestConfig{
		URL:  server.URL,
		Auth: types.AuthConfig{Type: types.AuthAPIKey, Key: "api_key", Value: "qsecret", Location: types.APIKeyInQuery},
	})
	if !resp.Success || gotQuery != "qsecret" {
		t.Errorf("expected query api key 'qsecret', got %q (success=%v)", gotQuery, resp.Success)
	}
}

func TestBasicAuthHeader(t *testing.T) {
	var user, pass string
	var ok bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok = r.BasicAuth()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Options{})
	resp := client.Request(context.Background(), types.APIRequestConfig{
		URL:  server.URL,
		Auth: types.AuthConfig{Type: types.AuthBasic, Username: "alice", Password: "s3cret"},
	})

	if !resp.Success {
		t.Fatalf("request failed: %s", resp.Error)
	}
	if !ok || user != "alice" || pass != "s3cret" {
		t.Errorf("expected basic auth alice/s3cret, got %s/%s (ok=%v)", user, pass, ok)
	}
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Options{MaxRequestsPerWindow: 3, RateLimitWindow: time.Hour})

	for i := 0; i < 3; i++ {
		resp := client.Request(context.Background(), types.APIRequestConfig{URL: server.URL})
		if !resp.Success {
			t.Fatalf("request %d unexpectedly failed: %s", i+1, resp.Error)
		}
	}

	resp := client.Request(context.Background(), types.APIRequestConfig{URL: server.URL, RetryCount: 5})
	if resp.Success {
		t.Fatal("expected rate-limited request to fail")
	}
	if !strings.Contains(resp.Error, "rate limit exceeded") {
		t.Errorf("expected rate limit error, got %q", resp.Error)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Errorf("expected 3 network calls, got %d", got)
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Options{MaxRequestsPerWindow: 1, RateLimitWindow: 50 * time.Millisecond})

	if resp := client.Request(context.Background(), types.APIRequestConfig{URL: server.URL}); !resp.Success {
		t.Fatalf("first request failed: %s", resp.Error)
	}
	if resp := client.Request(context.Background(), types.APIRequestConfig{URL: server.URL}); resp.Success {
		t.Fatal("second request should have been rate limited")
	}

	time.Sleep(60 * time.Millisecond)

	if resp := client.Request(context.Background(), types.APIRequestConfig{URL: server.URL}); !resp.Success {
		t.Fatalf("request after window reset failed: %s", resp.Error)
	}
}

func TestRetryCountContract(t *testing.T) {
	transport := &failingTransport{}
	client := NewClient(Options{Transport: transport})

	resp := client.Request(context.Background(), types.APIRequestConfig{
		URL:        "http://example.invalid/data",
		RetryCount: 3,
		RetryDelay: time.Millisecond,
	})

	if resp.Success {
		t.Fatal("expected request to fail")
	}
	if got := atomic.LoadInt32(&transport.attempts); got != 4 {
		t.Errorf("expected exactly 4 attempts for retryCount=3, got %d", got)
	}
}

func TestMetricsObserverCounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	metrics := &countingMetrics{}
	limited := NewClient(Options{MaxRequestsPerWindow: 1, RateLimitWindow: time.Hour, Metrics: metrics})

	if resp := limited.Request(context.Background(), types.APIRequestConfig{URL: server.URL}); !resp.Success {
		t.Fatalf("first request failed: %s", resp.Error)
	}
	if resp := limited.Request(context.Background(), types.APIRequestConfig{URL: server.URL}); resp.Success {
		t.Fatal("second request should have been rate limited")
	}
	if got := atomic.LoadInt32(&metrics.rateLimitHits); got != 1 {
		t.Errorf("expected 1 rate limit hit observed, got %d", got)
	}

	retrying := NewClient(Options{Transport: &failingTransport{}, Metrics: metrics})
	retrying.Request(context.Background(), types.APIRequestConfig{
		URL:        "http://example.invalid/data",
		RetryCount: 3,
		RetryDelay: time.Millisecond,
	})

	if got := atomic.LoadInt32(&metrics.retries); got != 3 {
		t.Errorf("expected 3 retries observed for retryCount=3, got %d", got)
	}
}

func TestErrorStatusDoesNotRetry(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Options{})
	resp := client.Request(context.Background(), types.APIRequestConfig{
		URL:        server.URL,
		RetryCount: 3,
		RetryDelay: time.Millisecond,
	})

	if resp.Success {
		t.Fatal("expected non-2xx response to be reported as failure")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected single attempt for HTTP error status, got %d", got)
	}
}

func TestOAuth2DegradesOnTokenFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer tokenServer.Close()

	var gotAuth string
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer apiServer.Close()

	client := NewClient(Options{})
	resp := client.Request(context.Background(), types.APIRequestConfig{
		URL: apiServer.URL,
		Auth: types.AuthConfig{
			Type:   types.AuthOAuth2,
			OAuth2: &types.OAuth2Config{ClientID: "id", ClientSecret: "secret", TokenURL: tokenServer.URL},
		},
	})

	if !resp.Success {
		t.Fatalf("degraded request should still succeed, got: %s", resp.Error)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header after token failure, got %q", gotAuth)
	}
}

func TestOAuth2FailOnTokenError(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer tokenServer.Close()

	client := NewClient(Options{})
	resp := client.Request(context.Background(), types.APIRequestConfig{
		URL: "http://example.invalid/data",
		Auth: types.AuthConfig{
			Type: types.AuthOAuth2,
			OAuth2: &types.OAuth2Config{
				ClientID: "id", ClientSecret: "secret",
				TokenURL: tokenServer.URL, FailOnTokenError: true,
			},
		},
	})

	if resp.Success {
		t.Fatal("expected request to fail when FailOnTokenError is set")
	}
	if !strings.Contains(resp.Error, "token") {
		t.Errorf("expected token error, got %q", resp.Error)
	}
}

func TestOAuth2TokenInjectedAndCached(t *testing.T) {
	var tokenRequests int32
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenRequests, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	var gotAuth string
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer apiServer.Close()

	client := NewClient(Options{})
	cfg := types.APIRequestConfig{
		URL: apiServer.URL,
		Auth: types.AuthConfig{
			Type:   types.AuthOAuth2,
			OAuth2: &types.OAuth2Config{ClientID: "id", ClientSecret: "secret", TokenURL: tokenServer.URL},
		},
	}

	for i := 0; i < 3; i++ {
		if resp := client.Request(context.Background(), cfg); !resp.Success {
			t.Fatalf("request %d failed: %s", i+1, resp.Error)
		}
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("expected oauth2 bearer token, got %q", gotAuth)
	}
	if got := atomic.LoadInt32(&tokenRequests); got != 1 {
		t.Errorf("expected a single token exchange, got %d", got)
	}
}

func TestTestConnectionReportsLatency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Options{})
	result := client.TestConnection(context.Background(), types.APIRequestConfig{URL: server.URL})

	if !result.Success {
		t.Fatalf("connection test failed: %s", result.Message)
	}
	if result.Latency <= 0 {
		t.Error("expected positive latency")
	}

	result = client.TestConnection(context.Background(), types.APIRequestConfig{URL: "http://127.0.0.1:1/nothing"})
	if result.Success {
		t.Fatal("expected connection test against closed port to fail")
	}
	if result.Latency <= 0 {
		t.Error("expected latency to be reported on failure too")
	}
}

func TestJSONBodyDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"rows": 42}`)
	}))
	defer server.Close()

	client := NewClient(Options{})
	resp := client.Request(context.Background(), types.APIRequestConfig{URL: server.URL})

	if !resp.Success {
		t.Fatalf("request failed: %s", resp.Error)
	}
	obj, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected decoded JSON object, got %T", resp.Data)
	}
	if obj["rows"] != float64(42) {
		t.Errorf("expected rows=42, got %v", obj["rows"])
	}
}
