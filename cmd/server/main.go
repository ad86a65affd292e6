package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sunnah_sayings/internal/config"
	"sunnah_sayings/internal/handler"
	"sunnah_sayings/internal/identity"
	"sunnah_sayings/internal/logger"
	"sunnah_sayings/internal/metrics"
	"sunnah_sayings/internal/repository"
	"sunnah_sayings/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.DefaultConfig()).Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	log := logger.New(logCfg)
	if envErr != nil {
		log.Info("No .env file found or error loading, relying on environment variables")
	}

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	store, err := config.ConnectDB(ctx, cfg.DB, log)
	cancel()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(store.DB)
	quoteRepo := repository.NewQuoteRepository(store.DB)

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Warn("Failed to ensure user indexes", "error", err)
	}
	if err := quoteRepo.EnsureIndexes(ctx); err != nil {
		log.Warn("Failed to ensure quote indexes", "error", err)
	}
	cancel()

	// --- Identity Provider ---
	verifier, err := newVerifier(context.Background(), cfg.Identity, log)
	if err != nil {
		log.Error("Failed to initialize identity provider", "error", err)
		os.Exit(1)
	}
	log.Info("Identity provider ready", "provider", cfg.Identity.Provider)

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		log.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	// --- Setup Gin Router ---
	router := handler.NewRouter(handler.Dependencies{
		Users:          service.NewUserService(userRepo),
		Quotes:         service.NewQuoteService(quoteRepo),
		Verifier:       verifier,
		Store:          store,
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        m,
		Gatherer:       reg,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Sunnah Sayings is running", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exiting")
}

func newVerifier(ctx context.Context, cfg config.IdentityConfig, log logger.Logger) (identity.Verifier, error) {
	if cfg.Provider == config.IdentityProviderHMAC {
		log.Warn("Using HMAC identity tokens; do not use in production")
		return identity.NewHMACVerifier(cfg.HMACSecret, cfg.HMACIssuer, cfg.HMACTTL), nil
	}
	v, err := identity.NewFirebaseVerifier(ctx, identity.FirebaseConfig{
		ProjectID:       cfg.ProjectID,
		CredentialsJSON: cfg.CredentialsJSON,
		Logger:          log.With("component", "firebase"),
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
