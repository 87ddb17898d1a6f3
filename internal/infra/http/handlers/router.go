package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/sitm-outreach/internal/infra/http/middleware"
)

// Router groups every handler the API exposes.
type Router struct {
	Health    *HealthHandler
	Content   *ContentHandler
	Leads     *LeadHandler
	Campaigns *CampaignHandler
	Jobs      *JobHandler
	Financing *FinancingHandler
	Payments  *PaymentHandler
	Bookings  *BookingHandler

	// Limiter guards lead generation and payments. Nil disables it.
	Limiter        *RateLimiter
	AllowedOrigins []string

	// Halt is called when a request finds the campaign ledger corrupt.
	// Nil exits the process.
	Halt middleware.Halt
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(middleware.Recover(rt.Halt))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.origins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         int((5 * time.Minute).Seconds()),
	}))

	limited := func(h http.HandlerFunc) http.Handler {
		if rt.Limiter == nil {
			return h
		}
		return rt.Limiter.Middleware(h)
	}

	r.Get("/health", rt.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/programs", rt.Content.ListPrograms)

	r.Route("/leads", func(r chi.Router) {
		r.Method(http.MethodPost, "/generate", limited(rt.Leads.Generate))
		r.Method(http.MethodPost, "/generate/async", limited(rt.Leads.GenerateAsync))
		r.Get("/", rt.Leads.List)
		r.Patch("/{id}/status", rt.Leads.UpdateStatus)
	})

	r.Post("/content/render", rt.Content.Render)
	r.Get("/content/placeholders", rt.Content.Placeholders)

	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", rt.Campaigns.Create)
		r.Get("/", rt.Campaigns.List)
		r.Get("/{id}", rt.Campaigns.Get)
		r.Post("/{id}/schedule", rt.Campaigns.Schedule)
		r.Post("/{id}/dispatch", rt.Campaigns.Dispatch)
		r.Post("/{id}/outcome", rt.Campaigns.RecordOutcome)
		r.Post("/{id}/cancel", rt.Campaigns.Cancel)
		r.Post("/{id}/rerun", rt.Campaigns.Rerun)
	})

	r.Get("/jobs/{id}", rt.Jobs.Get)
	r.Delete("/jobs/{id}", rt.Jobs.Cancel)

	r.Get("/financing/quote", rt.Financing.Quote)
	r.Get("/financing/options", rt.Financing.Options)

	r.Method(http.MethodPost, "/payments", limited(rt.Payments.Process))
	r.Get("/payments/plans", rt.Payments.Plans)
	r.Method(http.MethodPost, "/payments/links", limited(rt.Payments.Link))
	r.Get("/payments/{id}", rt.Payments.Get)

	r.Method(http.MethodPost, "/bookings", limited(rt.Bookings.Book))
	r.Get("/bookings/slots", rt.Bookings.Slots)

	return r
}

func (rt *Router) origins() []string {
	if len(rt.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return rt.AllowedOrigins
}
