package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nutriscan/nutriscan-go/internal/metrics"
	"github.com/nutriscan/nutriscan-go/internal/middleware"
	"github.com/nutriscan/nutriscan-go/internal/storage"
)

// RouterDeps groups everything NewRouter wires together.
type RouterDeps struct {
	Users    UserService
	Logs     LogService
	Analysis AnalysisService
	Chat     ChatService
	Objects  storage.ImageStore

	Logger         *slog.Logger
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	AuthLimiter    *middleware.RateLimiter

	JWTSecret      string
	RequireAuth    bool
	MaxUploadBytes int64
}

// NewRouter builds the API routes.
//
// Middleware order: Recovery, Logging, then per-group auth and rate limits.
// /logs and /ai always accept a token; with RequireAuth they demand one.
func NewRouter(d RouterDeps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	users := NewUserHandler(d.Users, d.Logger)
	logs := NewLogHandler(d.Logs, d.Logger)
	ai := NewAIHandler(d.Analysis, d.Chat, d.MaxUploadBytes, d.Logger)
	objects := NewStorageHandler(d.Objects, d.MaxUploadBytes, d.Logger)

	auth := middleware.OptionalJWTAuth(d.JWTSecret)
	if d.RequireAuth {
		auth = middleware.JWTAuth(d.JWTSecret)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logging(d.Logger, d.Metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Middleware)
			}
			r.Post("/register", users.HandleRegister)
			r.Post("/login", users.HandleLogin)
		})

		r.Post("/", users.HandleCreate)
		r.Get("/", users.HandleList)
		r.Get("/{id}", users.HandleGet)
		r.Put("/{id}", users.HandleUpdate)
		r.Delete("/{id}", users.HandleDelete)
	})

	r.Route("/logs", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", logs.HandleListByUser)
		r.Get("/user/{userId}", logs.HandleListByUser)
		r.Get("/{id}", logs.HandleGet)
		r.Delete("/{id}", logs.HandleDelete)
	})

	r.Route("/ai", func(r chi.Router) {
		r.Use(auth)
		r.Post("/agent/upload", ai.HandleUpload)
		r.Get("/chat", ai.HandleChat)
		r.Post("/chat", ai.HandleChat)
	})

	r.Route("/s3", func(r chi.Router) {
		r.Post("/upload", objects.HandleUpload)
		r.Post("/uploads", objects.HandleUploadMany)
	})

	return r
}
