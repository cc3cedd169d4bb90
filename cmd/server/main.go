package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/booking"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/config"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/database"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/handlers"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/middleware"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/services"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
	pkgjwt "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/jwt"
	"github.com/Kiran6976/Houserent-Frontend-sub000/pkg/sealer"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting HomeRent web front-end")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.NewConnection(startCtx, cfg.Database)
	if err != nil {
		cancelStart()
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(startCtx, db); err != nil {
		cancelStart()
		logger.Fatalf("Failed to prepare database schema: %v", err)
	}
	cancelStart()
	logger.Info("Database connection established")

	tokenSealer, err := sealer.New(cfg.Session.EncryptionKey)
	if err != nil {
		logger.Fatalf("Failed to initialize token sealer: %v", err)
	}

	// Initialize services
	logger.Info("Initializing services...")
	sessionRepo := database.NewWebSessionRepository(db)
	jwtService := pkgjwt.NewService(cfg.Session.Secret, cfg.Session.TTL)
	apiClient := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)
	rateLimitService := services.NewRateLimitService(db)

	var alerter notify.Alerter = notify.NoopAlerter{}
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegramAlerter(cfg.Telegram.BotToken, cfg.Telegram.OpsChatID, logger)
		if err != nil {
			logger.WithError(err).Warn("Telegram alerts disabled")
		} else {
			alerter = tg
			logger.Info("Telegram ops alerts enabled")
		}
	}

	sessions := middleware.NewSessionManager(
		middleware.NewPostgresBackend(sessionRepo, tokenSealer),
		jwtService,
		apiClient,
		notify.NewHub(),
		middleware.SessionOptions{
			CookieName:   cfg.Session.CookieName,
			CookieSecure: cfg.Session.CookieSecure,
			Store:        session.Options{ResendCooldown: cfg.Auth.OTPResendCooldown},
			Logger:       logger,
		},
	)

	registry := booking.NewRegistry(booking.Config{
		PollInterval: cfg.Booking.PollInterval,
		Logger:       logger,
	})
	workspaces := handlers.NewWorkspaces(logger, alerter, validation.New())

	router := handlers.NewRouter(handlers.RouterDeps{
		Sessions:   sessions,
		Registry:   registry,
		Workspaces: workspaces,
		Limiter:    rateLimitService,
		DB:         db,
		CORS:       cfg.CORS,
		Logger:     logger,
		Version:    version,
	})

	// Start background reaper for idle flows and expired sessions
	expirationService := services.NewFlowExpirationService(
		services.IdleClosers{registry, sessions, workspaces},
		sessionRepo,
		rateLimitService,
		logger,
		cfg.Booking.FlowIdleTimeout,
		cfg.Booking.ReapInterval,
	)
	expirationService.Start()
	logger.WithFields(logrus.Fields{
		"idle_timeout": cfg.Booking.FlowIdleTimeout.String(),
		"interval":     cfg.Booking.ReapInterval.String(),
	}).Info("Flow expiration service started")

	// Setup HTTP server. WriteTimeout stays off because booking flows stream
	// server-sent events for as long as the tab is open.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		logger.Infof("Proxying API at %s", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	expirationService.Stop()

	// Open event streams end once their flows close
	if n := registry.CloseAll(); n > 0 {
		logger.WithField("flows", n).Info("Closed open booking flows")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
