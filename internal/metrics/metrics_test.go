package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/apperr"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	return string(body)
}

func TestMetrics(t *testing.T) {
	m := New()
	m.ObserveOperation("createBill", nil)
	m.ObserveOperation("createBill", nil)
	m.ObserveOperation("createBill", apperr.Validation("bad"))
	m.ObserveBill(decimal.RequireFromString("30"))
	m.ObserveRequest("POST", "/api/bills", 201, 5*time.Millisecond)

	body := scrape(t, m)
	for _, want := range []string{
		`rupaya_ledger_operations_total{operation="createBill",outcome="ok"} 2`,
		`rupaya_ledger_operations_total{operation="createBill",outcome="validation"} 1`,
		`rupaya_bill_total_amount_count 1`,
		`rupaya_http_request_duration_seconds_count{method="POST",route="/api/bills",status="201"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	// None of these may panic.
	m.ObserveOperation("createBill", nil)
	m.ObserveBill(decimal.NewFromInt(1))
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
}
