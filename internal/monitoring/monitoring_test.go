// internal/monitoring/monitoring_test.go
package monitoring

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsHandlerExposesCounters(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("api", true)
	m.ObserveRequest("api", false)
	m.ObserveRateLimitHit()
	m.ObserveRows("file", 120)
	m.ObserveIssues(2, 5, 1)
	m.ObserveCategory("financial")
	m.ObservePages("static", 3)
	m.ObserveStage("parse", 50*time.Millisecond)

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body := recorder.Body.String()
	for _, metric := range []string{
		`veriflow_requests_total{outcome="success",source="api"} 1`,
		`veriflow_rate_limit_hits_total 1`,
		`veriflow_rows_ingested_total{source="file"} 120`,
		`veriflow_validation_issues_total{severity="warning"} 5`,
		`veriflow_dataset_category_total{category="financial"} 1`,
		`veriflow_pages_scraped_total{engine="static"} 3`,
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %q", metric)
		}
	}
}

func TestHealthSnapshot(t *testing.T) {
	h := NewHealth("1.2.3")

	recorder := httptest.NewRecorder()
	h.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/health", nil))

	var snapshot HealthSnapshot
	if err := json.Unmarshal(recorder.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("invalid health payload: %v", err)
	}
	if snapshot.Status != HealthStatusHealthy {
		t.Errorf("expected healthy, got %s", snapshot.Status)
	}
	if snapshot.Version != "1.2.3" {
		t.Errorf("expected version passthrough, got %s", snapshot.Version)
	}
	if snapshot.Goroutines <= 0 {
		t.Error("expected positive goroutine count")
	}
}
