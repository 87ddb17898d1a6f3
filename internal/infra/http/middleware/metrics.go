package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_leads_generated_total",
			Help: "Total number of leads generated and stored",
		},
		[]string{"kind"},
	)

	messagesDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_messages_dispatched_total",
			Help: "Total number of campaign messages by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	paymentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_payments_processed_total",
			Help: "Total number of payments processed",
		},
		[]string{"method", "status"},
	)

	campaignTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_campaign_transitions_total",
			Help: "Total number of campaign status transitions",
		},
		[]string{"from", "to"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps ids out of the path label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// Outreach records the domain counters.
type Outreach struct{}

func (Outreach) LeadsGenerated(kind entity.LeadKind, n int) {
	leadsGenerated.WithLabelValues(string(kind)).Add(float64(n))
}

func (Outreach) MessageDispatched(channel entity.Channel, ok bool) {
	outcome := "failed"
	if ok {
		outcome = "succeeded"
	}
	messagesDispatched.WithLabelValues(string(channel), outcome).Inc()
}

func (Outreach) PaymentProcessed(method entity.PaymentMethod, status entity.PaymentStatus) {
	paymentsProcessed.WithLabelValues(string(method), string(status)).Inc()
}

// RecordCampaignTransition has the shape of a ledger observer.
func RecordCampaignTransition(c *entity.Campaign, from entity.CampaignStatus) {
	campaignTransitions.WithLabelValues(string(from), string(c.Status)).Inc()
}
