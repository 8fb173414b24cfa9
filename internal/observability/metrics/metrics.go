package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	allocationsApplied prometheus.Counter
	allocationSurplus  prometheus.Counter
	paymentsCreated    *prometheus.CounterVec
	accrualsGenerated  prometheus.Counter
	importRowsMatched  *prometheus.CounterVec
}

// New configures the domain metrics instruments.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vznos_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vznos_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		allocationsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "vznos_payment_allocations_total",
			Help: "Payment allocations created.",
		}),
		allocationSurplus: factory.NewCounter(prometheus.CounterOpts{
			Name: "vznos_payment_allocation_surplus_total",
			Help: "Allocations that finished with unallocated surplus.",
		}),
		paymentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vznos_payments_created_total",
			Help: "Payments created by source.",
		}, []string{"source"}),
		accrualsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "vznos_accruals_generated_total",
			Help: "Accruals created by period generation.",
		}),
		importRowsMatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vznos_import_rows_total",
			Help: "Parsed import rows by match type.",
		}, []string{"match_type"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RecordAllocation(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.allocationsApplied.Add(float64(n))
}

func (m *Metrics) RecordAllocationSurplus() {
	if m == nil {
		return
	}
	m.allocationSurplus.Inc()
}

func (m *Metrics) RecordPaymentCreated(source string) {
	if m == nil {
		return
	}
	m.paymentsCreated.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordAccrualsGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.accrualsGenerated.Add(float64(n))
}

func (m *Metrics) RecordImportRow(matchType string) {
	if m == nil {
		return
	}
	m.importRowsMatched.WithLabelValues(matchType).Inc()
}

// GinMiddleware records per-request counters and latency.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
