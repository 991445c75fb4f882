package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ecoleta/ecoleta-go/internal/handler"
	"github.com/ecoleta/ecoleta-go/internal/metrics"
	"github.com/ecoleta/ecoleta-go/internal/middleware"
)

type routerDeps struct {
	metrics        *metrics.Metrics
	sessions       middleware.SessionVerifier
	auth           *handler.AuthHandler
	pickups        *handler.PickupHandler
	rateLimitRPS   float64
	rateLimitBurst int
}

// newRouter wires the HTTP surface. API routes are mounted only when their
// handlers are present, so health and metrics stay up without a database.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics(d.metrics))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", d.metrics.Handler())

	if d.auth == nil || d.pickups == nil || d.sessions == nil {
		return r
	}

	r.Get("/api/v1/materials", d.pickups.HandleListMaterials)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(d.rateLimitRPS, d.rateLimitBurst))
		r.Post("/api/v1/pickups", d.pickups.HandleCreate)
		r.Post("/api/v1/auth/login", d.auth.HandleLogin)
	})

	r.Post("/api/v1/auth/renew", d.auth.HandleRenew)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(d.sessions))
		r.Get("/api/v1/auth/verify", d.auth.HandleVerify)
		r.Get("/api/v1/pickups", d.pickups.HandleList)
		r.Get("/api/v1/pickups/{id}", d.pickups.HandleGet)
		r.Put("/api/v1/pickups/{id}/status", d.pickups.HandleUpdateStatus)
	})

	return r
}
