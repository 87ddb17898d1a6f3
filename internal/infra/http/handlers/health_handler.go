package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const Version = "1.0.0"

const (
	depHealthy       = "healthy"
	depNotConfigured = "not configured"
)

type HealthHandler struct {
	StartTime time.Time
	checks    []dependencyCheck
}

type dependencyCheck struct {
	name string
	ping func(ctx context.Context) error // nil quando a dependência não está configurada
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler pings only the backends that were configured. Outreach
// runs fully in memory when all of them are nil.
func NewHealthHandler(db *sql.DB, rabbitMQ *amqp091.Connection, rdb *redis.Client) *HealthHandler {
	h := &HealthHandler{StartTime: time.Now()}

	database := dependencyCheck{name: "database"}
	if db != nil {
		database.ping = db.PingContext
	}
	rabbit := dependencyCheck{name: "rabbitmq"}
	if rabbitMQ != nil {
		rabbit.ping = func(context.Context) error {
			if rabbitMQ.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	progress := dependencyCheck{name: "redis"}
	if rdb != nil {
		progress.ping = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	h.checks = []dependencyCheck{database, rabbit, progress}
	return h
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if c.ping == nil {
			deps[c.name] = depNotConfigured
			continue
		}
		if err := c.ping(ctx); err != nil {
			deps[c.name] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			deps[c.name] = depHealthy
		}
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
