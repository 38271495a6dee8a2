package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/skillserve/skillapi/internal/config"
	"github.com/skillserve/skillapi/internal/db"
	dbRedis "github.com/skillserve/skillapi/internal/db/redis"
	logpkg "github.com/skillserve/skillapi/internal/logger"
	"github.com/skillserve/skillapi/internal/metrics"
	"github.com/skillserve/skillapi/internal/repository/querycache"
	chiTransport "github.com/skillserve/skillapi/internal/transport/chi"
	"github.com/skillserve/skillapi/internal/transport/inference"
	"github.com/skillserve/skillapi/internal/transport/openai"
	"github.com/skillserve/skillapi/internal/version"

	healthuc "github.com/skillserve/skillapi/internal/usecase/health"
	skilluc "github.com/skillserve/skillapi/internal/usecase/skill"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting skillapi server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("model_provider", cfg.Model.Provider),
		zap.Bool("cache_enabled", cfg.Cache.Enabled()),
	)

	// Optional query cache store.
	var store db.Store
	if cfg.Cache.Enabled() {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache")
	}

	// Register model metrics explicitly (no init())
	metrics.RegisterModelMetrics()

	classifier, reader, modelChecker := buildModelClients(cfg, logger)

	skillSvc := skilluc.New(classifier, reader, logger)

	var runner skilluc.Runner = skillSvc
	if store != nil {
		runner = querycache.New(
			skillSvc, store, cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.QueryCacheTotal, logger,
		)
	}

	// Pass nil interface (not typed nil pointer!) if the cache is disabled.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(cachePinger, modelChecker)

	server := chiTransport.NewServer(runner, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildModelClients assembles the provider-specific skill clients. The
// openai provider covers classification only; question answering needs
// the inference provider.
func buildModelClients(cfg config.Config, logger *zap.Logger) (skilluc.Classifier, skilluc.Reader, healthuc.ModelChecker) {
	switch cfg.Model.Provider {
	case "openai":
		cls := openai.NewClassifier(&openai.Config{
			APIKey:     cfg.Model.OpenAI.APIKey,
			BaseURL:    cfg.Model.OpenAI.BaseURL,
			Model:      cfg.Model.OpenAI.Model,
			Dimensions: cfg.Model.OpenAI.Dimensions,
			Logger:     logger,
		})
		logger.Info("Model client created",
			zap.String("provider", "openai"),
			zap.String("model", cfg.Model.OpenAI.Model),
		)
		return cls, nil, cls
	default:
		client := inference.NewClient(&inference.Config{
			BaseURL: cfg.Model.Inference.BaseURL,
			APIKey:  cfg.Model.Inference.APIKey,
			Timeout: time.Duration(cfg.Model.Inference.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		logger.Info("Model client created",
			zap.String("provider", "inference"),
			zap.String("base_url", cfg.Model.Inference.BaseURL),
		)
		return client, client, client
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
