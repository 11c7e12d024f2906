package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panel",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of panel API requests broken down by endpoint and result.",
	}, []string{"endpoint", "result"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "panel",
		Subsystem: "api",
		Name:      "latency_seconds",
		Help:      "Latency distribution for panel API requests.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5,
		},
	}, []string{"endpoint", "result"})

	datasetUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panel",
		Subsystem: "dataset",
		Name:      "uploads_total",
		Help:      "Dataset uploads broken down by detected format and result.",
	}, []string{"format", "result"})

	stateImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panel",
		Subsystem: "state",
		Name:      "imports_total",
		Help:      "Panel state document imports broken down by result.",
	}, []string{"result"})
)

// Metrics 记录每个请求的次数与耗时
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		result := resultLabel(c.Writer.Status())
		apiRequests.WithLabelValues(endpoint, result).Inc()
		apiLatency.WithLabelValues(endpoint, result).Observe(time.Since(start).Seconds())
	}
}

func resultLabel(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status >= http.StatusBadRequest:
		return "client_error"
	default:
		return "success"
	}
}
