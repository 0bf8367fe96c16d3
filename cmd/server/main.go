package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/kmazur/interview-copilot/internal/auth"
	"github.com/kmazur/interview-copilot/internal/config"
	"github.com/kmazur/interview-copilot/internal/handlers"
	"github.com/kmazur/interview-copilot/internal/logger"
	"github.com/kmazur/interview-copilot/internal/metrics"
	"github.com/kmazur/interview-copilot/internal/middleware"
	"github.com/kmazur/interview-copilot/internal/pipeline"
	"github.com/kmazur/interview-copilot/internal/question"
	"github.com/kmazur/interview-copilot/internal/services/generate"
	"github.com/kmazur/interview-copilot/internal/services/transcribe"
	"github.com/kmazur/interview-copilot/internal/store"
	"github.com/kmazur/interview-copilot/internal/telemetry"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for model API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.Debug || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.Bool("require_auth", cfg.RequireAuth),
		zap.Bool("use_database", cfg.UseDatabase),
		zap.Bool("stream_answers", cfg.StreamAnswers),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry, optional
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "interview-copilot-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Storage
	var (
		st     store.Store
		pinger handlers.Pinger
	)
	if cfg.UseDatabase {
		pg, err := store.OpenPostgres(cfg.DatabaseURL, cfg.HistoryRetention)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
		}
		defer func() {
			if err := pg.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_database")
		st = pg
		pinger = pg
	} else {
		st = store.NewMemoryStore(cfg.HistoryRetention)
		zapLogger.Info("using_in_memory_store")
	}

	// Redis backs the shared rate-limit counters when configured.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("invalid_redis_url", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	}

	// Model clients
	engine, err := transcribe.NewGoogleEngine(context.Background(), cfg.TranscriptionModel, cfg.TranscriptionLanguage, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_transcription_engine", zap.Error(err))
	}
	defer func() {
		if err := engine.Close(); err != nil {
			zapLogger.Warn("failed_to_close_transcription_engine", zap.Error(err))
		}
	}()

	generator := generate.NewOpenAIGenerator(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.GenerationModel, zapLogger, debugMode)

	m := metrics.New()
	classifier := question.New(nil, 0)
	authSvc := auth.NewService(st, cfg.JWTSecretKey, time.Duration(cfg.JWTExpireMinutes)*time.Minute)

	pipe := pipeline.New(engine, generator, classifier, st, m, zapLogger, pipeline.Options{
		Language:      cfg.TranscriptionLanguage,
		StreamAnswers: cfg.StreamAnswers,
	})

	// Handlers
	audioHandler := handlers.NewAudioHandler(pipe, m, zapLogger, cfg.TranscriptionLanguage, cfg.DefaultSampleRate)
	contextHandler := handlers.NewContextHandler(st, zapLogger)
	historyHandler := handlers.NewHistoryHandler(st, zapLogger)
	authHandler := handlers.NewAuthHandler(authSvc, zapLogger)
	sessionHandler := handlers.NewSessionHandler(m, zapLogger)
	healthHandler := handlers.NewHealthHandler(generator, pinger, cfg.TranscriptionModel, zapLogger)
	wsHandler := handlers.NewWSHandler(pipe, authSvc, st, m, zapLogger, cfg.RequireAuth, cfg.DefaultSampleRate)

	// Router and middleware. gorilla/mux executes Use() middleware in
	// registration order, outermost first.
	r := mux.NewRouter()

	if cfg.OTELEnabled && cfg.OTELEndpoint != "" {
		r.Use(otelmux.Middleware("interview-copilot-api"))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnforceHTTPS))
	if cfg.EnforceHTTPS {
		r.Use(middleware.EnforceHTTPS)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.RateLimitEnabled {
		rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimitPerMinute)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
		r.Use(rateLimitMW)
	}
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.HTTPMetrics(m))

	// Public surface
	r.HandleFunc("/", handlers.Root).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")
	r.HandleFunc("/api/health", healthHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/ws/audio", wsHandler.HandleWS).Methods("GET")

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.Use(middleware.ContentType)
	authRouter.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRouter.HandleFunc("/login", authHandler.Login).Methods("POST")

	// Pipeline and session surface. Authentication is resolved once
	// per request here; whether it is mandatory is deployment policy.
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.ContentType)
	apiRouter.Use(middleware.Auth(authSvc, cfg.RequireAuth, zapLogger))
	apiRouter.HandleFunc("/transcribe", audioHandler.Transcribe).Methods("POST")
	apiRouter.HandleFunc("/generate", audioHandler.Generate).Methods("POST")
	apiRouter.HandleFunc("/process_audio", audioHandler.ProcessAudio).Methods("POST")
	apiRouter.HandleFunc("/context", contextHandler.Get).Methods("GET")
	apiRouter.HandleFunc("/context", contextHandler.Update).Methods("POST")
	apiRouter.HandleFunc("/history", historyHandler.List).Methods("GET")
	apiRouter.HandleFunc("/history", historyHandler.Clear).Methods("DELETE")
	apiRouter.HandleFunc("/start", sessionHandler.Start).Methods("POST")
	apiRouter.HandleFunc("/stop", sessionHandler.Stop).Methods("POST")
	apiRouter.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	// Preflight requests short-circuit after the CORS middleware.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   120 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
