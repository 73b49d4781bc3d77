package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lunchvote/internal/container"
	"lunchvote/internal/middleware"
	apperrors "lunchvote/pkg/errors"
)

// RequestTimeout bounds every request handled by the router
const RequestTimeout = 30 * time.Second

// NewRouter configures the HTTP routes over the container's services
func NewRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.RequestID())
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(corsConfig, log))
	r.Use(chiMiddleware.Timeout(RequestTimeout))

	healthHandler := NewHealthHandler(c.Services.Health, log)
	pollHandler := NewPollHandler(c.Services.Polls, c.Services.Tally, log)
	votingHandler := NewVotingHandler(c.Services.Votes, log)

	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.IsDevelopment() {
		r.Mount("/debug", chiMiddleware.Profiler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/groups", pollHandler.ListGroups)
		r.Post("/votes", votingHandler.SubmitVote)

		r.Route("/polls", func(r chi.Router) {
			r.Post("/", pollHandler.CreatePoll)
			r.Get("/active", pollHandler.GetActivePoll)
			r.Get("/{pollId}/results", pollHandler.GetResults)

			r.With(middleware.AdminAuth(cfg.AdminJWTSecret, log)).
				Delete("/{pollId}", pollHandler.DeletePoll)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, apperrors.NewNotFoundError("Endpoint not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, &apperrors.AppError{
			Type:       apperrors.ErrorTypeInvalidInput,
			Message:    "Method not allowed",
			StatusCode: http.StatusMethodNotAllowed,
		})
	})

	log.Info("Router configured successfully")
	return r
}
