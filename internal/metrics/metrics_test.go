package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNewCollector_RegistersMetrics はCollectorが全メトリクスを登録することを検証する。
func TestNewCollector_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordExtractSuccess()
	c.RecordExtractFailure("no_content")
	c.RecordHTTPStatus(200)
	c.RecordFetchLatency(120 * time.Millisecond)
	c.RecordParagraphsExtracted(5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	want := []string{
		"webclip_extract_success_total",
		"webclip_extract_fail_total",
		"webclip_http_status_total",
		"webclip_fetch_latency_seconds",
		"webclip_paragraphs_extracted_total",
	}
	for _, n := range want {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}

// TestCollector_CounterValues はカウンターが正しく加算されることを検証する。
func TestCollector_CounterValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordExtractSuccess()
	c.RecordExtractSuccess()
	c.RecordParagraphsExtracted(3)
	c.RecordParagraphsExtracted(4)

	if got := testutil.ToFloat64(c.extractSuccess); got != 2 {
		t.Errorf("extractSuccess = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.paragraphs); got != 7 {
		t.Errorf("paragraphs = %v, want 7", got)
	}
}

// TestSetupMetricsRoute_ServesMetrics は/metricsパスでメトリクスが返ることを検証する。
func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordExtractSuccess()

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "webclip_extract_success_total") {
		t.Error("response should contain webclip_extract_success_total metric")
	}
}
