package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"veda-backend/internal/config"
	"veda-backend/internal/database"
	"veda-backend/internal/logger"
	"veda-backend/internal/metrics"
	customMiddleware "veda-backend/internal/middleware"
	"veda-backend/internal/notify"
	"veda-backend/internal/repository"
	"veda-backend/internal/server"
	"veda-backend/internal/storage"
	"veda-backend/internal/upstream"
	"veda-backend/web"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	collector := metrics.NewCollector("veda")

	backend, closeBackend, err := openBackend(cfg, zl)
	if err != nil {
		zl.Fatal("failed to open storage backend", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer closeBackend()
	if cfg.Storage.Cache {
		backend = storage.NewCachedBackend(backend)
	}

	repo := repository.NewAnalyticsRepo(backend, collector, zl)

	googleOpts := upstream.Options{
		APIKey:  cfg.Google.APIKey,
		Timeout: cfg.Google.Timeout,
		Metrics: collector,
		Logger:  zl,
	}
	geminiOpts := googleOpts
	geminiOpts.BaseURL = cfg.Google.GeminiBaseURL
	ttsOpts := googleOpts
	ttsOpts.BaseURL = cfg.Google.TTSBaseURL

	var notifier notify.Notifier = notify.NewLogNotifier(zl)
	if cfg.Notify.ResendAPIKey != "" {
		notifier = notify.NewResendNotifier(cfg.Notify.ResendAPIKey, cfg.Notify.From, cfg.Notify.To, zl)
	}

	var static fs.FS = web.Static()
	if cfg.StaticDir != "" {
		static = os.DirFS(cfg.StaticDir)
	}

	handler := server.NewRouter(server.Deps{
		Repo:           repo,
		Text:           upstream.NewGeminiClient(cfg.Google.GeminiModel, geminiOpts),
		Speech:         upstream.NewSpeechClient(ttsOpts),
		Notifier:       notifier,
		Metrics:        collector,
		Logger:         zl,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ReadSecret:     cfg.Auth.ReadSecret,
		RateLimiter:    customMiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		Static:         static,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("🚀 Veda backend starting",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", repo.BackendName()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		zl.Error("server failed", zap.Error(err))
	case sig := <-stop:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openBackend builds the configured storage backend. The returned func
// releases any client the backend holds.
func openBackend(cfg *config.Config, zl *zap.Logger) (storage.Backend, func(), error) {
	noop := func() {}
	sc := cfg.Storage

	switch sc.Backend {
	case config.BackendFile:
		b := storage.NewFileBackend(sc.FilePath)
		if err := b.EnsureFile(); err != nil {
			return nil, noop, err
		}
		return b, noop, nil

	case config.BackendMemory:
		return storage.NewMemoryBackend(), noop, nil

	case config.BackendS3:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b, err := storage.NewS3BackendFromEnv(ctx, storage.S3Options{
			Bucket:   sc.S3.Bucket,
			Key:      sc.S3.Key,
			Region:   sc.S3.Region,
			Endpoint: sc.S3.Endpoint,
		})
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil

	case config.BackendRedis:
		b, err := storage.DialRedis(storage.RedisOptions{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
			Key:      sc.Redis.Key,
		})
		if err != nil {
			return nil, noop, err
		}
		return b, func() {
			if err := b.Close(); err != nil {
				zl.Warn("closing redis", zap.Error(err))
			}
		}, nil

	case config.BackendMongo:
		db, err := database.Connect(sc.Mongo.URI, sc.Mongo.Database, zl)
		if err != nil {
			return nil, noop, err
		}
		b := storage.NewMongoBackend(db.Collection(sc.Mongo.Collection), sc.Mongo.DocumentID)
		return b, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.Disconnect(ctx, db); err != nil {
				zl.Warn("disconnecting mongo", zap.Error(err))
			}
		}, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend %q", sc.Backend)
}
