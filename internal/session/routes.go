package session

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the session endpoints under /sessions. Each UI event
// has its own POST endpoint.
func RegisterRoutes(r chi.Router, store *Store) {
	h := NewHandler(store)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)

			r.Post("/digit", h.event("digit", pressDigit))
			r.Post("/operation", h.event("operation", pressOperation))
			r.Post("/equal", h.event("equal", pressEqual))
			r.Post("/sign", h.event("sign", toggleSign))
			r.Post("/clear", h.event("clear", clearAll))
			r.Post("/mode", h.event("mode", toggleMode))
			r.Post("/solve", h.event("solve", solve))

			r.Get("/history", h.History)
			r.Delete("/history", h.event("clear_history", clearHistory))
			r.Post("/history/toggle", h.event("toggle_history", toggleHistory))
		})
	})
}
