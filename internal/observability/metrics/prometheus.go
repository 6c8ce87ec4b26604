package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics tracks inbound requests for the /metrics endpoint.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(registerer prometheus.Registerer) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consultinvoice_http_requests_total",
			Help: "Counts HTTP requests by route, method and status.",
		}, []string{"route", "method", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consultinvoice_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.requests = registerOrExisting(registerer, m.requests).(*prometheus.CounterVec)
	m.duration = registerOrExisting(registerer, m.duration).(*prometheus.HistogramVec)
	return m
}

// GinMiddleware records request counts and latency.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
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
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// SourceMetrics tracks upstream fetch latency and volume.
type SourceMetrics struct {
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	records  *prometheus.GaugeVec
}

func NewSourceMetrics(registerer prometheus.Registerer) *SourceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &SourceMetrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consultinvoice_source_fetches_total",
			Help: "Counts source fetches by source and outcome.",
		}, []string{"source", "state"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consultinvoice_source_fetch_duration_seconds",
			Help:    "Source fetch latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "consultinvoice_source_records",
			Help: "Records returned by the last fetch of each source.",
		}, []string{"source"}),
	}
	m.fetches = registerOrExisting(registerer, m.fetches).(*prometheus.CounterVec)
	m.duration = registerOrExisting(registerer, m.duration).(*prometheus.HistogramVec)
	m.records = registerOrExisting(registerer, m.records).(*prometheus.GaugeVec)
	return m
}

func (m *SourceMetrics) ObserveFetch(source, state string, elapsed time.Duration, records int) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source, state).Inc()
	m.duration.WithLabelValues(source).Observe(elapsed.Seconds())
	m.records.WithLabelValues(source).Set(float64(records))
}

func registerOrExisting(registerer prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := registerer.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}
