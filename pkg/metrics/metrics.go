package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics. A private registry keeps
// tests free of duplicate-registration panics from the global one.
var Registry = prometheus.NewRegistry()

var (
	FormsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "p2h_forms_submitted_total",
			Help: "Total number of inspection forms accepted by intake.",
		},
	)

	ChecklistsCapturedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "p2h_checklists_captured_total",
			Help: "Total number of checklist batches persisted.",
		},
		[]string{"has_issues"},
	)

	ReviewDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "p2h_review_decisions_total",
			Help: "Status transitions committed, by target status and actor role.",
		},
		[]string{"status", "actor_role"},
	)

	ReviewRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "p2h_review_refused_total",
			Help: "Review attempts refused before commit.",
		},
		[]string{"reason"}, // not_found, invalid_state, checklist_missing, race_lost
	)

	NotifyFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "p2h_notify_failures_total",
			Help: "Review events that could not be published.",
		},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "p2h_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route template.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		FormsSubmittedTotal,
		ChecklistsCapturedTotal,
		ReviewDecisionsTotal,
		ReviewRejectedTotal,
		NotifyFailuresTotal,
		HTTPRequestDuration,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware observes request latency labelled by the matched route template,
// so path parameters do not explode label cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		HTTPRequestDuration.WithLabelValues(c.Method(), route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
