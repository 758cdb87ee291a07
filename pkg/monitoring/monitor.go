package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	CatalogQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_queries_total",
			Help: "Catalog browse queries by data source",
		},
		[]string{"source"},
	)

	CatalogFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_fallback_total",
			Help: "Catalog fetches that failed and were served from the last known snapshot",
		},
	)

	LessonPersists = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lesson_completion_persist_total",
			Help: "Lesson completion persist calls by outcome",
		},
		[]string{"outcome"},
	)

	QuizSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Submitted quiz attempts by result",
		},
		[]string{"result"},
	)
)

// 数据来源与结果标签
const (
	SourceLive     = "live"
	SourceSnapshot = "snapshot"
	SourceEmpty    = "empty"

	OutcomeConfirmed  = "confirmed"
	OutcomeRolledBack = "rolled_back"
	OutcomeDiscarded  = "discarded"

	ResultPassed = "passed"
	ResultFailed = "failed"
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(CatalogQueries)
		prometheus.MustRegister(CatalogFallbacks)
		prometheus.MustRegister(LessonPersists)
		prometheus.MustRegister(QuizSubmissions)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
