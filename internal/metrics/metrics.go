package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry коллекторы приложения.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proposal_portal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "proposal_portal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proposal_portal",
			Subsystem: "proposals",
			Name:      "submissions_total",
			Help:      "Proposal submissions by outcome (created, invalid, failed).",
		},
		[]string{"outcome"},
	)

	exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proposal_portal",
			Subsystem: "proposals",
			Name:      "exports_total",
			Help:      "Admin exports by rendered format.",
		},
		[]string{"format"},
	)

	adminLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proposal_portal",
			Subsystem: "admin",
			Name:      "logins_total",
			Help:      "Admin sign-in attempts by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		submissions,
		exports,
		adminLogins,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Outcome результат отправки заявки.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeInvalid Outcome = "invalid"
	OutcomeFailed  Outcome = "failed"
)

// Handler отдаёт зарегистрированные метрики.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordSubmission учитывает отправку заявки.
func RecordSubmission(outcome Outcome) {
	submissions.WithLabelValues(string(outcome)).Inc()
}

// RecordExport учитывает выгрузку в заданном формате.
func RecordExport(format string) {
	exports.WithLabelValues(format).Inc()
}

// RecordAdminLogin учитывает попытку входа администратора.
func RecordAdminLogin(result string) {
	adminLogins.WithLabelValues(result).Inc()
}

// GinMiddleware собирает метрики HTTP по шаблону маршрута.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
