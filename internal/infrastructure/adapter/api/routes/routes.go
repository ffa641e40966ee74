package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/api/handler"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/api/middleware"
)

// SetupRoutes configures all the routes for the API. The flat top-level
// routes are aliases kept for older mobile clients that predate the
// /api/payments group.
func SetupRoutes(
	router *gin.Engine,
	paymentHandler *handler.PaymentHandler,
	creditHandler *handler.CreditHandler,
) {
	payments := router.Group("/api/payments")
	{
		payments.POST("/initialize", paymentHandler.Initialize)
		payments.GET("/verify/:reference", paymentHandler.Verify)
		payments.POST("/retry/:transactionId", paymentHandler.RetryCreditUpdate)
	}

	// Legacy mobile client aliases
	router.POST("/initializePaystackTransaction", paymentHandler.Initialize)
	router.GET("/verifyPaystackTransaction/:reference", paymentHandler.Verify)
	router.POST("/retryPaymentCreditUpdate/:transactionId", paymentHandler.RetryCreditUpdate)

	router.GET("/users/:userId/credits", creditHandler.GetBalance)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
