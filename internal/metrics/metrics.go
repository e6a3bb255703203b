package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Metrics bundles the service's prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// BoardCounter supplies the current number of persisted boards for the
// boards_total gauge.
type BoardCounter interface {
	Count() (int64, error)
}

func New(boards BoardCounter, logger *zap.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Count of handled HTTP requests.",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(m.RequestsTotal, m.RequestDuration)

	boardsTotal := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "boards_total",
		Help: "Number of boards currently persisted.",
	}, func() float64 {
		count, err := boards.Count()
		if err != nil {
			logger.Warn("Failed to count boards for metrics", zap.Error(err))
			return 0
		}
		return float64(count)
	})
	registry.MustRegister(boardsTotal)

	return m
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
