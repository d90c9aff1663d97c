package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-alerts/internal/alerts/config"
	delivery "golang-stock-alerts/internal/alerts/delivery/http"
	"golang-stock-alerts/internal/alerts/repository"
	"golang-stock-alerts/internal/alerts/service"
	"golang-stock-alerts/pkg/logger"
	"golang-stock-alerts/pkg/mailer"
	"golang-stock-alerts/pkg/postgres"
	"golang-stock-alerts/pkg/redis"
	"golang-stock-alerts/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the alert service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Alert Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	alertRepo := repository.NewAlertRepository(db.DB)
	priceRepo := repository.NewStockPriceRepository(db.DB)
	notificationRepo := repository.NewNotificationLogRepository(db.DB)
	quoteRepo := repository.NewQuoteRepository(cfg, appLogger)

	// Initialize notification transports
	mailClient := mailer.NewClient(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)

	var telegramNotifier telegram.Notifier
	if cfg.Telegram.Enabled {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize services
	pollInterval, err := time.ParseDuration(cfg.Poller.Interval)
	if err != nil {
		appLogger.Fatal("Invalid poll interval", logger.ErrorField(err))
	}
	evaluator := service.NewEvaluator(appLogger)
	dispatcher := service.NewDispatcher(appLogger, mailClient, telegramNotifier, notificationRepo)
	pollerSvc := service.NewPollerService(cfg, appLogger, quoteRepo, priceRepo, alertRepo, evaluator, dispatcher, redisClient, pollInterval)
	alertSvc := service.NewAlertService(alertRepo, notificationRepo, appLogger, cfg.Feed.Symbols)
	priceSvc := service.NewPriceService(appLogger, priceRepo, redisClient, cfg.Feed.Symbols)

	// Start poller
	go pollerSvc.Start(ctx)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	alertHandler := delivery.NewAlertHandler(alertSvc, appLogger)
	alertsGroup := apiV1.Group("/alerts")
	alertHandler.RegisterRoutes(alertsGroup)

	priceHandler := delivery.NewPriceHandler(priceSvc, appLogger)
	pricesGroup := apiV1.Group("/prices")
	priceHandler.RegisterRoutes(pricesGroup)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "alert-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-alerts.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing alert-service CLI: %s\n", err)
		os.Exit(1)
	}
}
