package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics HTTP 指标中间件
//
// 📋 路由标签使用 gin 的路由模板（/v1/proofs/:id），避免路径参数造成标签膨胀
type Metrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestSize     *prometheus.SummaryVec
	inflight        prometheus.Gauge
}

// NewMetrics 创建指标中间件并注册到给定注册表
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "splitproof",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "splitproof",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"method", "route"},
		),
		requestSize: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace:  "splitproof",
				Subsystem:  "api",
				Name:       "request_size_bytes",
				Help:       "API request size in bytes",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"method", "route"},
		),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "splitproof",
			Subsystem: "api",
			Name:      "requests_inflight",
			Help:      "Number of API requests being served",
		}),
	}
	reg.MustRegister(m.requestCounter, m.requestDuration, m.requestSize, m.inflight)
	return m
}

// Middleware 返回 gin 中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		if size := c.Request.ContentLength; size > 0 {
			m.requestSize.WithLabelValues(method, route).Observe(float64(size))
		}
		m.requestCounter.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
