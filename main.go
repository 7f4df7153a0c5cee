package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/api"
	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/config"
	"github.com/awakenedyouth/awakened-be/internal/database"
	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/logger"
	"github.com/awakenedyouth/awakened-be/internal/metrics"
	"github.com/awakenedyouth/awakened-be/internal/monitoring"
	"github.com/awakenedyouth/awakened-be/internal/services"
	"github.com/awakenedyouth/awakened-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

const sessionTTL = 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	// Set up the key-value store
	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open store")
	}
	defer store.Close()

	m := metrics.New()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	activityService := services.NewActivityService(store)
	notificationService := services.NewNotificationService(store, hub, m)
	authService := services.NewAuthService(store, notificationService, activityService, m, services.AdminAccount{
		Login:    cfg.AdminLogin,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	})
	submissionService := services.NewSubmissionService(store, notificationService, activityService, m)
	columnService := services.NewColumnService(store, activityService)
	searchService := services.NewSearchService(store, m)
	engagementService := services.NewEngagementService(store, columnService, activityService)

	// Set up and run the background scheduler
	scheduler, err := monitoring.NewScheduler(notificationService, authService, cfg.DemoBroadcast)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	go scheduler.Run()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Hub:                hub,
		Tokens:             auth.NewTokenManager(cfg.JWTSecret, sessionTTL),
		Metrics:            m,
		Auth:               authService,
		Submissions:        submissionService,
		Columns:            columnService,
		Search:             searchService,
		Notifications:      notificationService,
		Activities:         activityService,
		Engagement:         engagementService,
		AllowedOrigins:     cfg.AllowedOrigins,
		SecureCookies:      cfg.IsProduction(),
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		TrustProxy:         cfg.TrustProxy,
	})

	// Set up server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("store", cfg.StoreBackend).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}

// openStore returns the configured store backend.
func openStore(cfg *config.Config) (localstore.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return localstore.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case "memory":
		return localstore.NewMemoryStore(), nil
	default:
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return localstore.NewSQLStore(db), nil
	}
}
