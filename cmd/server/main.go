package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rentpay/internal/app"
	"rentpay/internal/config"
	"rentpay/internal/event"
	"rentpay/internal/handler"
	"rentpay/internal/provider"
	internalRedis "rentpay/internal/redis"
	"rentpay/internal/rentservice"
	"rentpay/internal/repository/postgres"
	"rentpay/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, emitter := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	// Drain in-flight audit and notification publishes before closing Redis.
	emitter.Flush()

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server along with
// the event emitter, which must be flushed before the process exits.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *event.Emitter) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)
	eventStore := internalRedis.NewEventStore(redisClient)

	// Initialize repositories.
	paymentRepo := postgres.NewPaymentRepository(db)

	// Payment provider.
	stripeClient := provider.NewStripeClient(cfg.Stripe.APIKey, cfg.Stripe.WebhookSecret)

	// Rent service client with a degraded fallback when disabled.
	var rentClient rentservice.Client
	if cfg.RentService.Enabled {
		rentClient = rentservice.NewHTTPClient(cfg.RentService.BaseURL, cfg.RentService.Timeout)
	} else {
		log.Println("[RENT-SERVICE] disabled, using fallback client")
		rentClient = rentservice.NewFallback()
	}

	// Audit and notification emitter backed by Redis Streams.
	emitter := event.NewEmitter(eventStore)

	// Initialize services.
	paymentService := service.NewPaymentService(paymentRepo, stripeClient, rentClient, emitter, cacheStore)
	webhookService := service.NewWebhookService(paymentRepo, stripeClient, rentClient, emitter, lockStore, cacheStore)

	// Initialize handlers.
	paymentHandler := handler.NewPaymentHandler(paymentService)
	webhookHandler := handler.NewWebhookHandler(webhookService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		PaymentHandler: paymentHandler,
		WebhookHandler: webhookHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, emitter
}
