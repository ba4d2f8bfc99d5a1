package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/beachrally/tournament-server/handlers"
	"github.com/beachrally/tournament-server/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Team       *handlers.TeamHandler
	Match      *handlers.MatchHandler
	Pool       *handlers.PoolHandler
	PoolMatch  *handlers.PoolMatchHandler
	Location   *handlers.LocationHandler
	WebSocket  *handlers.WebSocketHandler
}

// SetupRoutes wires the full HTTP surface. Reads are public, every
// mutation sits behind the admin token.
func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret string, corsOrigins []string) {
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireAdmin := middleware.RequireAdmin(jwtSecret)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.With(requireAdmin).Get("/verify", h.Auth.Verify)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.List)
			r.With(requireAdmin).Post("/", h.Tournament.Create)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.Get)
				r.Get("/updates", h.Tournament.ListUpdates)
				r.Get("/teams", h.Team.ListByTournament)
				r.Get("/matches", h.Match.ListByTournament)
				r.Get("/bracket", h.Match.GetBracket)
				r.Get("/pools", h.Pool.ListByTournament)
				r.Get("/pool-matches", h.PoolMatch.ListByTournament)
				r.Get("/standings", h.Pool.TournamentStandings)

				r.Group(func(r chi.Router) {
					r.Use(requireAdmin)
					r.Put("/", h.Tournament.Update)
					r.Delete("/", h.Tournament.Delete)
					r.Put("/status", h.Tournament.UpdateStatus)
					r.Post("/logo", h.Tournament.UploadLogo)
					r.Post("/teams", h.Team.Create)
					r.Post("/bracket", h.Match.CreateBracket)
					r.Post("/pools", h.Pool.Create)
					r.Post("/complete-pool-play", h.Pool.CompletePoolPlay)
				})
			})
		})

		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Get("/", h.Team.Get)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Put("/", h.Team.Update)
				r.Delete("/", h.Team.Delete)
			})
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", h.Match.Get)
			r.With(requireAdmin).Put("/", h.Match.Update)
		})

		r.Route("/pools/{poolID}", func(r chi.Router) {
			r.Get("/", h.Pool.Get)
			r.Get("/standings", h.Pool.Standings)
		})

		r.Route("/pool-matches/{poolMatchID}", func(r chi.Router) {
			r.Get("/", h.PoolMatch.Get)
			r.With(requireAdmin).Put("/score", h.PoolMatch.RecordScore)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", h.Location.List)
			r.Get("/{locationID}", h.Location.Get)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", h.Location.Create)
				r.Put("/{locationID}", h.Location.Update)
				r.Delete("/{locationID}", h.Location.Delete)
			})
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}
