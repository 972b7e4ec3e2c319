package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the stateless calculator endpoints onto the given
// router under the /calculator prefix.
func RegisterRoutes(r chi.Router) {
	r.Route("/calculator", func(r chi.Router) {
		for _, op := range []Operation{Add, Subtract, Multiply, Divide, Percent} {
			r.Post("/"+op.String(), BinaryHandler(op))
		}
		r.Post("/chain", Chain)
	})
}
