package routes

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/vr-score-keeper/handlers"
	"github.com/Dosada05/vr-score-keeper/middleware"
	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Home       *handlers.HomeHandler
	Health     *handlers.HealthHandler
	Tournament *handlers.TournamentHandler
	Player     *handlers.PlayerHandler
	Match      *handlers.MatchHandler
	Score      *handlers.ScoreHandler
	User       *handlers.UserHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", h.Auth.Login)
	router.Get("/healthz", h.Health.Healthz)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))

		r.With(can(models.CapViewStandings)).Get("/", h.Home.SummaryHandler)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", h.User.GetProfileHandler)
			r.Put("/", h.User.UpdateProfileHandler)
			r.Put("/password", h.User.ChangePasswordHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(can(models.CapManageUsers))
			r.Get("/", h.User.ListHandler)
			r.Post("/", h.User.CreateHandler)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.With(can(models.CapViewTournaments)).Get("/", h.Tournament.ListHandler)
			r.With(can(models.CapManageTournaments)).Post("/", h.Tournament.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.With(can(models.CapViewTournaments)).Get("/standings", h.Tournament.StandingsHandler)
				r.With(can(models.CapManageScores)).Post("/matches", h.Tournament.CreateMatchHandler)

				r.Group(func(r chi.Router) {
					r.Use(can(models.CapManageTournaments))
					r.Get("/", h.Tournament.GetByIDHandler)
					r.Put("/", h.Tournament.UpdateHandler)
					r.Delete("/", h.Tournament.DeleteHandler)
					r.Post("/winner", h.Tournament.RecomputeWinnerHandler)
					r.Get("/players", h.Tournament.ListRosterHandler)
					r.Put("/players/{playerID}", h.Tournament.RegisterPlayerHandler)
					r.Delete("/players/{playerID}", h.Tournament.UnregisterPlayerHandler)
				})
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.With(can(models.CapManageTournaments)).Get("/", h.Match.ListHandler)
			r.Route("/{matchID}", func(r chi.Router) {
				r.With(can(models.CapManageScores)).Post("/scores", h.Match.SubmitScoresHandler)

				r.Group(func(r chi.Router) {
					r.Use(can(models.CapManageTournaments))
					r.Get("/", h.Match.GetByIDHandler)
					r.Put("/", h.Match.UpdateHandler)
					r.Delete("/", h.Match.DeleteHandler)
				})
			})
		})

		r.Route("/scores", func(r chi.Router) {
			r.With(can(models.CapManageScores)).Get("/", h.Score.ListHandler)
			r.Route("/{scoreID}", func(r chi.Router) {
				r.With(can(models.CapManageScores)).Get("/", h.Score.GetByIDHandler)
				r.With(can(models.CapManageScores)).Put("/", h.Score.UpdateHandler)
				r.With(can(models.CapManageTournaments)).Delete("/", h.Score.DeleteHandler)
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Use(can(models.CapManageTournaments))
			r.Get("/", h.Player.ListHandler)
			r.Post("/", h.Player.CreateHandler)
			r.Get("/{playerID}", h.Player.GetByIDHandler)
			r.Put("/{playerID}", h.Player.UpdateHandler)
			r.Delete("/{playerID}", h.Player.DeleteHandler)
			r.Post("/{playerID}/avatar", h.Player.UploadAvatarHandler)
		})
	})
}

func can(capability models.Capability) func(http.Handler) http.Handler {
	return middleware.RequireCapability(capability)
}
