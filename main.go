package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/thesis-review-portal/internal/cache"
	"github.com/SAP-F-2025/thesis-review-portal/internal/config"
	"github.com/SAP-F-2025/thesis-review-portal/internal/controller"
	"github.com/SAP-F-2025/thesis-review-portal/internal/events"
	"github.com/SAP-F-2025/thesis-review-portal/internal/export"
	"github.com/SAP-F-2025/thesis-review-portal/internal/gateway"
	"github.com/SAP-F-2025/thesis-review-portal/internal/handlers"
	"github.com/SAP-F-2025/thesis-review-portal/internal/render"
	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
	"github.com/SAP-F-2025/thesis-review-portal/internal/utils"
	"github.com/SAP-F-2025/thesis-review-portal/internal/validator"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	ctx := context.Background()

	// Initialize the credential store
	var (
		redisClient *redis.Client
		gormStore   *session.GormStore
		store       session.Store
		storeHealth handlers.Prober
	)
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		redisStore := session.NewRedisStore(redisClient)
		store, storeHealth = redisStore, redisStore
	case config.SessionStorePostgres:
		gormStore, err = session.OpenGormStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store, storeHealth = gormStore, gormStore
	default:
		store = session.NewMemoryStore()
	}
	logger.Info("Credential store ready", "store", cfg.Session.Store)
	sessions := session.NewManager(store)

	// Initialize the activity event publisher
	var publisher *events.WatermillPublisher
	if len(cfg.Events.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.Topic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
	} else {
		publisher, _ = events.NewGoChannelPublisher(cfg.Events.Topic, slogLogger)
	}

	// Backend gateway, renderer and controller
	gw := gateway.NewClient(cfg.Backend.URL, &http.Client{Timeout: cfg.Backend.Timeout}, slogLogger)
	renderer, err := render.New(render.Options{
		DownloadURL: gw.DownloadURL,
		Location:    cfg.Location(),
		Markdown:    cfg.UI.RenderMarkdown,
	})
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}
	ctrl := controller.New(
		gw,
		sessions,
		controller.NewDebouncer(cfg.UI.SearchDebounce),
		publisher,
		export.New(cfg.Location()),
		slogLogger,
	)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	probeCtx, cancelProbe := context.WithTimeout(ctx, 10*time.Second)
	router, err := handlers.Bootstrap(probeCtx, handlers.Deps{
		Backend:    gw,
		Controller: ctrl,
		Sessions:   sessions,
		Renderer:   renderer,
		Validator:  validator.New(),
		Logger:     logger,
		Options: handlers.Options{
			Cookie: handlers.CookieConfig{
				Name:   cfg.Session.CookieName,
				Secure: cfg.Session.CookieSecure,
			},
			RequestsPerSecond: cfg.Limits.RequestsPerSecond,
			Burst:             cfg.Limits.Burst,
			StoreHealth:       storeHealth,
			TrustedProxies:    cfg.Session.TrustedProxies,
		},
	})
	cancelProbe()
	if err != nil {
		if !errors.Is(err, handlers.ErrBackendUnreachable) {
			log.Fatalf("Failed to bootstrap: %v", err)
		}
		logger.Error("Backend is unreachable, only the connectivity error page is served", "backend_url", cfg.Backend.URL, "error", err)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "backend_url", cfg.Backend.URL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := publisher.Close(); err != nil {
		log.Printf("Failed to close event publisher: %v", err)
	}

	// Close database connection
	if gormStore != nil {
		if err := gormStore.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
