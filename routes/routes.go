package routes

import (
	"net/http"

	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

// Options настраивают общую цепочку middleware.
type Options struct {
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter // nil отключает лимит
	Metrics        middleware.HTTPObserver
	MetricsHandler http.Handler
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	teamHandler *handlers.TeamHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	if opts.Metrics != nil {
		router.Use(middleware.Metrics(opts.Metrics))
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Location", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Служебные маршруты вне лимита
	router.Get("/healthz", healthHandler.HealthzHandler)
	if opts.MetricsHandler != nil {
		router.Handle("/metrics", opts.MetricsHandler)
	}

	router.Group(func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Handler)
		}

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListHandler)
			r.Post("/", tournamentHandler.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetByIDHandler)
				r.Delete("/", tournamentHandler.DeleteHandler)

				r.Post("/schedule", tournamentHandler.GenerateScheduleHandler)
				r.Delete("/schedule", tournamentHandler.ClearScheduleHandler)
				r.Post("/knockout/advance", tournamentHandler.AdvanceKnockoutHandler)

				r.Get("/matches", matchHandler.ListByTournamentHandler)
				r.Get("/standings", standingsHandler.GetStandingsHandler)
				r.Get("/bracket", standingsHandler.GetBracketHandler)
			})
		})

		r.Put("/matches/{matchID}", matchHandler.RecordResultHandler)
		r.Post("/teams/generate", teamHandler.GenerateHandler)
	})
}
