package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/mediashare-backend/api/responses"
	"github.com/angelmondragon/mediashare-backend/pkg/config"
)

const (
	healthStatusOK       = "ok"
	healthStatusDegraded = "degraded"
	envHeader            = "X-MediaShare-Env"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Storage   string `json:"storage,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthLive answers as long as the process serves requests.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// Health pings the database and, when provided, the upload directory. Any
// failure turns the response into a 503 with status degraded.
func Health(cfg *config.Config, database Pinger, storage Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		resp := healthResponse{
			Status:    healthStatusOK,
			Database:  "connected",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		status := http.StatusOK

		if database == nil || database.Ping(r.Context()) != nil {
			resp.Status = healthStatusDegraded
			resp.Database = "disconnected"
			status = http.StatusServiceUnavailable
		}
		if storage != nil {
			resp.Storage = "writable"
			if storage.Ping(r.Context()) != nil {
				resp.Status = healthStatusDegraded
				resp.Storage = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}

		responses.WriteSuccessStatus(w, status, resp)
	}
}
