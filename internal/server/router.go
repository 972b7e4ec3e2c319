package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"smart-calculator/internal/calculator"
	"smart-calculator/internal/handlers"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/session"
)

func NewRouter(store *session.Store) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r)
	session.RegisterRoutes(r, store)

	return r
}
