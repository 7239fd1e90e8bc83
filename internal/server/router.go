package server

import (
	"io/fs"
	"net/http"

	"veda-backend/internal/handlers"
	"veda-backend/internal/metrics"
	customMiddleware "veda-backend/internal/middleware"
	"veda-backend/internal/notify"
	"veda-backend/internal/repository"
	"veda-backend/internal/upstream"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Deps carries everything the router wires together.
type Deps struct {
	Repo     *repository.AnalyticsRepo
	Text     upstream.TextGenerator
	Speech   upstream.SpeechSynthesizer
	Notifier notify.Notifier
	Metrics  *metrics.Collector
	Logger   *zap.Logger

	// AllowedOrigins defaults to "*" when empty.
	AllowedOrigins []string
	// ReadSecret enables JWT auth on GET /api/analytics.
	ReadSecret  string
	RateLimiter *customMiddleware.RateLimiter
	// Static is served at / when non-nil.
	Static fs.FS
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	analyticsHandler := handlers.NewAnalyticsHandler(d.Repo, d.Notifier, logger)
	proxyHandler := handlers.NewProxyHandler(d.Text, d.Speech, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(d.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(answerOptions)

	r.MethodNotAllowed(handlers.Unsupported)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"veda-backend","storage":"` + d.Repo.BackendName() + `"}`))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.MethodNotAllowed(handlers.Unsupported)

		// Proxy routes spend provider quota, so they are rate limited.
		r.Group(func(r chi.Router) {
			r.Use(d.RateLimiter.Handler)
			r.Post("/generate-content", proxyHandler.GenerateContent)
			r.Post("/text-to-speech", proxyHandler.TextToSpeech)
			r.Post("/synthesize-speech", proxyHandler.TextToSpeech)
		})

		r.Post("/analytics", analyticsHandler.AppendRecord)
		r.With(customMiddleware.JWTAuth(d.ReadSecret)).Get("/analytics", analyticsHandler.ListRecords)
		r.Post("/analytics/rate", analyticsHandler.RateRecord)
	})

	if d.Static != nil {
		r.Handle("/*", http.FileServer(http.FS(d.Static)))
	}

	return r
}

// answerOptions replies 200 with an empty body to every OPTIONS request that
// reaches it. Real CORS preflights are answered earlier by cors.Handler.
func answerOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			handlers.Preflight(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
