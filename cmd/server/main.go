package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/star-emergency/alert-gateway/pkg/api"
	"github.com/star-emergency/alert-gateway/pkg/auth"
	"github.com/star-emergency/alert-gateway/pkg/cache"
	"github.com/star-emergency/alert-gateway/pkg/config"
	"github.com/star-emergency/alert-gateway/pkg/services"
	"github.com/star-emergency/alert-gateway/pkg/store"
	"github.com/star-emergency/alert-gateway/pkg/ws"
)

// @title STAR Emergency Alert Gateway API
// @version 1.0
// @description API for emergency alert monitoring, account onboarding and user administration
// @BasePath /api

func main() {
	// Configure Log Level from Environment Variable
	logLevelStr := os.Getenv("LOG_LEVEL")
	switch strings.ToLower(logLevelStr) {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	case "fatal":
		logrus.SetLevel(logrus.FatalLevel)
	case "panic":
		logrus.SetLevel(logrus.PanicLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel) // Default to Info
	}
	logrus.Infof("Log level set to: %s", logrus.GetLevel().String())

	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up the Postgres store
	db, err := store.NewPostgres(ctx, &cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		logrus.Fatalf("Failed to ensure schema: %v", err)
	}

	// Set up the session cache
	sessionTTL := time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
	sessions, err := cache.NewSessionCache(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, sessionTTL)
	if err != nil {
		logrus.Fatalf("Failed to connect to redis: %v", err)
	}
	defer sessions.Close()

	// Start the push channel hub
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	go hub.Run(ctx)

	// Initialize services
	alertService := services.NewAlertService(db, hub)
	accountService := services.NewAccountService(db)
	userService := services.NewUserService(db)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, sessionTTL)
	captcha := auth.NewRecaptchaVerifier(cfg.Auth.RecaptchaSecret, cfg.Auth.RecaptchaURL)

	// Set up the Echo server
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(cfg.Server.AllowedOrigins, ","),
	}))

	// API routes
	apiHandler := api.NewAPIHandler(alertService, accountService, userService, tokens, sessions, captcha, hub)
	apiHandler.SetupRoutes(e)

	// Swagger documentation
	e.GET("/swagger/*", echo.WrapHandler(httpSwagger.Handler()))

	// Static files for UI
	e.Static("/", "./ui/build")

	// Create HTTP server
	// Use PORT environment variable if available, otherwise use config
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logrus.Infof("Starting server on port %s", port)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Stop the hub and background work
	cancel()

	// Create a deadline for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	// Shutdown the server
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}
