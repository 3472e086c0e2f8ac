package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/poslogithub/magic-league-generator/internal/api/handlers"
	"github.com/poslogithub/magic-league-generator/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		poolHandler := handlers.NewPoolHandler(s.service)
		r.Get("/sets", poolHandler.GetSets)
		r.Get("/period", poolHandler.GetPeriod)
		r.With(requireJSON).Post("/pool", poolHandler.GeneratePool)

		decklistHandler := handlers.NewDecklistHandler(s.service, s.images)
		r.Route("/decklist", func(r chi.Router) {
			r.With(requireJSON).Post("/validate", decklistHandler.Validate)
			r.With(requireJSON).Post("/fix", decklistHandler.Fix)
			// Plain-text decklist bodies.
			r.Post("/parse", decklistHandler.Parse)
			r.Post("/image", decklistHandler.Image)
		})

		catalogHandler := handlers.NewCatalogHandler(s.service)
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/{set}", catalogHandler.SetInfo)
			r.Get("/{set}/{number}", catalogHandler.GetCard)
		})
	})
}

// healthCheck reports that the server is up and how large its catalog is.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]any{
		"status": "ok",
		"cards":  s.service.Catalog().Len(),
	})
}
