package observability_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-payroll/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBatchTracker(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	assert.NoError(t, m.TrackBatch("SKIP_EXISTING").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.TrackBatch("SKIP_EXISTING").End(boom), boom)

	count, err := testutil.GatherAndCount(reg, "payroll_generation_runs_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAddEntriesAndOutbox(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.AddEntries("created", 3)
	m.AddEntries("skipped", 0)
	m.OutboxEvent("hr.payroll.payslip.requested.v1", "sent")
	m.ConsumedMessage("hr.employee.lifecycle.v1", "processed")

	count, err := testutil.GatherAndCount(reg, "payroll_entries_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "payroll_outbox_events_total", "payroll_consumed_messages_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *observability.Metrics

	assert.NotPanics(t, func() {
		m.AddEntries("created", 1)
		m.OutboxEvent("t", "sent")
		_ = m.TrackBatch("REJECT_EXISTING").End(nil)
	})
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	r := gin.New()
	r.Use(m.HTTPMiddleware())
	r.GET("/api/v1/payroll-entries/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/payroll-entries/abc", nil))

	count, err := testutil.GatherAndCount(reg, "payroll_http_request_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
