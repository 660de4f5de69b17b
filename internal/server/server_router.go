package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func buildRouter(d *dashboard) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// UI/static
	r.HandleFunc("/", d.uiHandler)
	r.HandleFunc("/favicon.ico", d.uiHandler)
	r.HandleFunc("/ui/shared.js", d.uiHandler)

	// Health/info
	r.Get("/healthz", healthzHandler)
	r.Get("/api/v1/server-info", serverInfoHandler)

	// Widget API
	r.Get("/api/v1/widgets", d.widgetsHandler)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
