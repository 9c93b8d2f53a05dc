package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StartServer starts the HTTP server with all routes configured
func StartServer(reg IRegistry, config ServerConfig, logger *zap.Logger) error {
	metrics := NewMetrics()
	server := NewServer(reg, config, metrics)

	r := Router(server, config, metrics)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	logger.Info("schema registry listening",
		zap.String("addr", addr),
	)
	return http.ListenAndServe(addr, r)
}

// Router assembles the chi router for the registry service.
func Router(server *Server, config ServerConfig, metrics *Metrics) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if metrics != nil {
		r.Use(metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if config.APIKey != "" {
			r.Use(apiKeyMiddleware(config.APIKey, metrics))
		}

		r.Get("/health", server.handleHealth)

		r.Post("/schemas", server.handleRegister)
		r.Get("/schemas", server.handleListSchemas)
		r.Get("/schemas/{id}", server.handleGetSchema)

		r.Post("/compat", server.handleCompat)
	})

	return r
}
