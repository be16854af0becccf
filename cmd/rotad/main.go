package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"rota-backend/config"
	"rota-backend/internal/api"
	"rota-backend/internal/db"
	"rota-backend/internal/mw"
	"rota-backend/internal/notification"
	"rota-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "rota-backend ", log.LstdFlags)

	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		logger.Println(".env loaded")
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	if err := appStore.SeedBranches(ctx, cfg.Branches); err != nil {
		logger.Fatalf("failed to seed branches: %v", err)
	}
	logger.Printf("data store initialized, %d branches seeded", len(cfg.Branches))

	// Push notifications are optional; without VAPID keys the API runs
	// with notifications disabled.
	var notifier api.Notifier
	var pool *notification.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions := webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions)
		pool.Start(ctx)
		notifier = pool
		logger.Printf("notification worker pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured; push notifications disabled")
	}

	var reminder *notification.Reminder
	if cfg.Reminder.Enabled && pool != nil {
		reminder, err = notification.NewReminder(cfg.Reminder.CronSpec, cfg.Reminder.Timezone, appStore, pool)
		if err != nil {
			logger.Fatalf("failed to set up duty reminders: %v", err)
		}
		if err := reminder.Start(ctx); err != nil {
			logger.Fatalf("failed to start duty reminders: %v", err)
		}
		logger.Printf("duty reminder scan scheduled (%s, %s)", cfg.Reminder.CronSpec, cfg.Reminder.Timezone)
	}

	// Initialize router
	responseCache := mw.NewResponseCache(time.Duration(cfg.Server.CacheTTLSeconds) * time.Second)
	router := api.NewRouter(appStore, responseCache, notifier, cfg)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	if reminder != nil {
		reminder.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
