package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"rentpay/internal/handler"
	"rentpay/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PaymentHandler *handler.PaymentHandler
	WebhookHandler *handler.WebhookHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.GET("", deps.PaymentHandler.GetPayments)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.GET("/provider/:providerId", deps.PaymentHandler.GetPaymentByProviderID)
			payments.POST("", deps.PaymentHandler.CreatePayment)
			payments.POST("/provider/:providerId/refund", deps.PaymentHandler.RefundPayment)
			payments.DELETE("/:id", deps.PaymentHandler.DeletePayment)
		}

		// Provider webhook routes.
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/payments", deps.WebhookHandler.HandleStatusEvent)
		}
	}

	return router
}
