package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitializeMetricsPopulatesSeries(t *testing.T) {
	InitializeMetrics("test-host")

	FilesScannedTotal.WithLabelValues("test-host").Inc()
	if got := testutil.ToFloat64(FilesScannedTotal.WithLabelValues("test-host")); got != 1 {
		t.Errorf("expected counter at 1, got %v", got)
	}
}

func TestHealthCheckHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	healthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
