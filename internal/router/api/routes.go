package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/evyataryagoni/iplocator/internal/handler"
)

// SetupRoutes configures all /api routes
func SetupRoutes(locations *handler.LocationHandler, users *handler.UserHandler) chi.Router {
	r := chi.NewRouter()

	// POST /api/location?ip=<ip> with {"username": ...}
	r.Post("/location", locations.Resolve)

	r.Route("/locations", func(r chi.Router) {
		r.Get("/", locations.List)
		r.Post("/", locations.Create) // ?userId=<id>
		r.Get("/{id}", locations.Get)
		r.Put("/{id}", locations.Update)
		r.Delete("/{id}", locations.Delete)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.List)
		r.Post("/", users.Create)
		r.Get("/{id}", users.Get)
		r.Put("/{id}", users.Update)
		r.Delete("/{id}", users.Delete)
		r.Get("/{id}/locations", locations.ListByUser)
	})

	return r
}
