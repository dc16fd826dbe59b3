package router

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storepay/internal/config"
	"storepay/internal/handler"
	"storepay/internal/handler/api"
	"storepay/internal/middleware"
	"storepay/internal/models"
	"storepay/internal/notify"
	"storepay/internal/payment"
	"storepay/internal/pkg/utils"
)

// Deps are the long-lived services the routes are built from. Gateway is
// nil when the gateway credentials are missing.
type Deps struct {
	Config   *config.Config
	Catalog  payment.Catalog
	Gateway  payment.Gateway
	Deduper  middleware.EventDeduper
	Notifier notify.Notifier
	Logger   *zap.Logger
}

// Setup configures all routes for the Echo server. The returned func waits
// for webhook notifications still in flight.
func Setup(e *echo.Echo, deps Deps) func(context.Context) error {
	cfg := deps.Config
	logger := deps.Logger

	// Global middleware
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: utils.GenerateUUID}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	e.Use(middleware.CORS())

	initializer := payment.NewInitializer(deps.Catalog, deps.Gateway, cfg.Checkout.Source, logger)
	reconciler := payment.NewReconciler(deps.Gateway, logger)

	paymentHandler := api.NewPaymentHandler(initializer, reconciler, deps.Gateway, logger)
	callbackHandler := handler.NewPaymentCallbackHandler(reconciler, deps.Notifier, cfg.Server.SiteURL, logger)
	checkoutHandler := handler.NewCheckoutPageHandler(deps.Catalog, cfg.Checkout.ScriptURL, deps.Gateway != nil, logger)

	// Payments API
	payments := e.Group("/payments")
	payments.POST("/initialize", paymentHandler.Initialize)
	payments.GET("/verify/:transactionId", paymentHandler.Verify)
	payments.POST("/confirm", paymentHandler.Confirm)
	payments.POST("/charge/bank-transfer", paymentHandler.BankTransfer)
	payments.GET("/config", paymentHandler.Config)
	payments.GET("/callback", callbackHandler.Callback)

	// Webhook (signature check first, then dedup by transaction id)
	payments.POST("/webhook", callbackHandler.Webhook,
		middleware.WebhookSignature(cfg.Gateway.SecretHash, logger),
		middleware.WebhookDedup(deps.Deduper, logger),
	)

	// Result views
	result := e.Group("/payment")
	result.GET("/success", callbackHandler.Success)
	result.GET("/failed", callbackHandler.Failed)
	result.GET("/cancelled", callbackHandler.Cancelled)

	e.GET("/checkout/:productId", checkoutHandler.Show)

	// Prometheus metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.APIResponse{
			Status: models.ResponseOK,
			Data: map[string]interface{}{
				"service":            cfg.Telemetry.ServiceName,
				"gateway_configured": deps.Gateway != nil,
			},
		})
	})

	return callbackHandler.Wait
}
