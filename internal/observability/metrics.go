package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for payroll runs, the outbox and HTTP.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	batches       *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	entries       *prometheus.CounterVec
	outbox        *prometheus.CounterVec
	consumed      *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the collectors against registerer. When registerer is
// nil the default Prometheus registerer is used, once per process.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// BatchTracker records one payroll generation run.
type BatchTracker struct {
	metrics *Metrics
	policy  string
	start   time.Time
}

func (m *Metrics) TrackBatch(policy string) *BatchTracker {
	return &BatchTracker{metrics: m, policy: policy, start: time.Now()}
}

// End records the run outcome and returns err untouched.
func (t *BatchTracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	t.metrics.batches.WithLabelValues(t.policy, status).Inc()
	t.metrics.batchDuration.WithLabelValues(t.policy).Observe(time.Since(t.start).Seconds())
	return err
}

// AddEntries counts per-employee outcomes: created, overwritten, skipped, failed, negative_net.
func (m *Metrics) AddEntries(outcome string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.entries.WithLabelValues(outcome).Add(float64(count))
}

func (m *Metrics) OutboxEvent(topic, status string) {
	if m == nil {
		return
	}
	m.outbox.WithLabelValues(topic, status).Inc()
}

func (m *Metrics) ConsumedMessage(topic, status string) {
	if m == nil {
		return
	}
	m.consumed.WithLabelValues(topic, status).Inc()
}

// HTTPMiddleware observes request latency by route template.
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_generation_runs_total",
		Help: "Payroll generation runs partitioned by duplicate policy and status.",
	}, []string{"policy", "status"})
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payroll_generation_duration_seconds",
		Help:    "Duration in seconds of payroll generation runs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"policy"})
	entries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_entries_total",
		Help: "Per-employee payroll generation outcomes.",
	}, []string{"outcome"})
	outbox := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_outbox_events_total",
		Help: "Outbox events handled by the publisher worker.",
	}, []string{"topic", "status"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_consumed_messages_total",
		Help: "Kafka messages handled by consumers.",
	}, []string{"topic", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payroll_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	registerer.MustRegister(batches, batchDuration, entries, outbox, consumed, httpDuration)
	return &Metrics{
		batches:       batches,
		batchDuration: batchDuration,
		entries:       entries,
		outbox:        outbox,
		consumed:      consumed,
		httpDuration:  httpDuration,
	}
}
