package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"

	"speechcraft/internal/api"
	"speechcraft/internal/config"
	internaldb "speechcraft/internal/db"
	"speechcraft/internal/db/repository"
	"speechcraft/internal/domain"
	"speechcraft/internal/feed"
	"speechcraft/internal/middleware"
	"speechcraft/internal/provider/assemblyai"
	"speechcraft/internal/service/transcription"
	"speechcraft/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	// Open the job store with hardened connection settings.
	// writeDB: single-connection pool for serialized writes (WAL + txlock=immediate).
	// readDB:  4-connection pool for concurrent reads (WAL, no txlock).
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		log.Fatalf("open job store: %v", err)
	}
	defer writeDB.Close()
	defer readDB.Close()

	// Migrations run on the write pool (DDL requires write access)
	if err := internaldb.RunMigrations(writeDB); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	repo := repository.NewTranscriptionRepo(writeDB, readDB)
	hub := feed.NewHub(logger)
	store := feed.NewNotifyingStore(repo, hub, logger)

	// Speech-to-text provider. nil without an API key: reads still work,
	// submissions are rejected with a config error.
	var provider domain.Provider
	if cfg.AssemblyAIKey != "" {
		var opts []assemblyai.Option
		if cfg.AssemblyAIBaseURL != "" {
			opts = append(opts, assemblyai.WithBaseURL(cfg.AssemblyAIBaseURL))
		}
		provider = assemblyai.NewClient(cfg.AssemblyAIKey, opts...)
	}

	audio, err := buildAudioStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("audio storage: %v", err)
	}

	svcOpts := []transcription.Option{
		transcription.WithPollInterval(cfg.PollInterval),
		transcription.WithMaxPollAttempts(cfg.PollMaxAttempts),
		transcription.WithWorkers(cfg.PollWorkers),
	}
	if audio != nil {
		svcOpts = append(svcOpts, transcription.WithAudioStore(audio))
	}
	svc := transcription.NewService(store, provider, logger, svcOpts...)
	go func() {
		if err := svc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("polling workers stopped", "error", err)
		}
	}()

	limiterStore := middleware.NewLimiterStore(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	// Background maintenance: reap jobs stuck past the polling ceiling
	// (crashed or restarted pollers) and sweep idle rate limiters.
	sched := cron.New()
	if _, err := sched.AddFunc("@every 1m", func() {
		if err := svc.ReapStale(ctx); err != nil {
			logger.Error("stale job reaper failed", "error", err)
		}
	}); err != nil {
		log.Fatalf("schedule reaper: %v", err)
	}
	if _, err := sched.AddFunc("@every 5m", func() {
		if n := limiterStore.Sweep(10 * time.Minute); n > 0 {
			logger.Debug("swept idle rate limiters", "count", n)
		}
	}); err != nil {
		log.Fatalf("schedule limiter sweep: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(limiterStore, cfg.RateLimitBurst))

	handler := api.NewHandler(svc, store, hub, logger)
	r.Route("/api", func(r chi.Router) {
		if cfg.Auth.Enabled() {
			validator, err := buildValidator(ctx, cfg)
			if err != nil {
				log.Fatalf("auth: %v", err)
			}
			r.Use(middleware.Authenticator(validator))
		}
		handler.Routes(r)
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
}

// buildAudioStore wires the configured blob backends into a scheme router.
// Returns nil when no backend is configured.
func buildAudioStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.AudioStore, error) {
	var s3, azure, gcs domain.AudioStore

	if cfg.Storage.HasS3() {
		store, err := storage.NewS3Store(storage.S3Config{
			Endpoint: cfg.Storage.S3Endpoint,
			Region:   cfg.Storage.S3Region,
			KeyID:    cfg.Storage.S3KeyID,
			Secret:   cfg.Storage.S3Secret,
		})
		if err != nil {
			return nil, err
		}
		s3 = store
		logger.Info("S3 audio storage enabled", "endpoint", cfg.Storage.S3Endpoint)
	}
	if cfg.Storage.HasAzure() {
		store, err := storage.NewAzureStore(cfg.Storage.AzureAccountName, cfg.Storage.AzureAccountKey)
		if err != nil {
			return nil, err
		}
		azure = store
		logger.Info("Azure audio storage enabled", "account", cfg.Storage.AzureAccountName)
	}
	if cfg.Storage.HasGCS() {
		store, err := storage.NewGCSStore(ctx, cfg.Storage.GCSKeyFilePath)
		if err != nil {
			return nil, err
		}
		gcs = store
		logger.Info("GCS audio storage enabled")
	}

	if s3 == nil && azure == nil && gcs == nil {
		return nil, nil
	}
	return storage.NewRouter(s3, azure, gcs), nil
}

// buildValidator picks the token validator: OIDC discovery when an issuer is
// configured, explicit JWKS when only that is given, HS256 shared secret
// otherwise.
func buildValidator(ctx context.Context, cfg *config.Config) (middleware.JWTValidator, error) {
	auth := cfg.Auth
	switch {
	case auth.IssuerURL != "" && auth.JWKSURL == "":
		return middleware.NewOIDCValidator(ctx, auth.IssuerURL, auth.Audience)
	case auth.JWKSURL != "":
		return middleware.NewOIDCValidatorFromJWKS(ctx, auth.JWKSURL, auth.IssuerURL, auth.Audience)
	default:
		return middleware.NewHS256Validator(auth.JWTSecret)
	}
}
