package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/speaker-diarize/backend/internal/api/handlers"
	"github.com/speaker-diarize/backend/internal/api/middleware"
	"github.com/speaker-diarize/backend/internal/auth"
	"github.com/speaker-diarize/backend/internal/config"
	"github.com/speaker-diarize/backend/internal/db"
	"github.com/speaker-diarize/backend/internal/job"
	"github.com/speaker-diarize/backend/internal/pipeline"
)

func NewRouter(database *db.Database, jwtService *auth.JWTService, cfg *config.Config, queue *job.Queue, service *pipeline.Service) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Handlers
	authHandler := handlers.NewAuthHandler(database, jwtService)
	uploadHandler := handlers.NewUploadHandler(cfg.UploadPath, cfg.MaxUploadMB, cfg.Engine, queue, service)
	jobHandler := handlers.NewJobHandler(queue)
	transcriptHandler := handlers.NewTranscriptHandler(cfg.OutputPath, queue)
	settingsHandler := handlers.NewSettingsHandler(database)

	uploadLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/login", authHandler.Login)
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))

			// Auth
			r.Get("/auth/me", authHandler.Me)

			// Transcriptions
			r.With(uploadLimiter.Handler).Post("/transcriptions", uploadHandler.Upload)
			r.Get("/transcriptions/{id}", transcriptHandler.GetTranscript)
			r.Get("/transcriptions/{id}/download/{format}", transcriptHandler.Download)

			// Jobs
			r.Get("/jobs", jobHandler.ListJobs)
			r.Get("/jobs/{id}", jobHandler.GetJob)
			r.Delete("/jobs/{id}", jobHandler.CancelJob)
			r.Post("/jobs/{id}/retry", jobHandler.RetryJob)

			// Settings (admin only)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))
				r.Use(middleware.MaxBodySize(64 * 1024))
				r.Get("/settings", settingsHandler.GetSettings)
				r.Put("/settings", settingsHandler.UpdateSettings)
			})
		})
	})

	return r
}
