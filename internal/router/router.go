// Package router wires the JSON API routes and HTTP middleware.
package router

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dunelark/storefront/internal/handler"
	"github.com/dunelark/storefront/internal/telemetry"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	Cart    *handler.CartHandler
	Coupon  *handler.CouponHandler
	Order   *handler.OrderHandler
	Invoice *handler.InvoiceHandler
	Health  *handler.HealthHandler
}

// New builds the echo instance with middleware and routes.
func New(h Handlers, logger *slog.Logger, registry *prometheus.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	httpMetrics := telemetry.NewHTTPMetrics(registry)

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	e.Use(httpMetrics.Middleware())

	e.GET("/healthz", h.Health.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	e.GET("/cart", h.Cart.GetCart)
	e.DELETE("/cart", h.Cart.Clear)
	e.POST("/cart/items", h.Cart.AddItem)
	e.PATCH("/cart/items/:itemID", h.Cart.UpdateQuantity)
	e.DELETE("/cart/items/:itemID", h.Cart.RemoveItem)
	e.POST("/cart/merge", h.Cart.Merge)

	e.POST("/coupons/validate", h.Coupon.Validate)
	e.POST("/coupons", h.Coupon.Create)
	e.POST("/coupons/:couponID/assignments", h.Coupon.Assign)

	e.POST("/orders", h.Order.Create)
	e.GET("/orders", h.Order.List)
	e.GET("/orders/:orderID", h.Order.Get)
	e.POST("/orders/:orderID/cancel", h.Order.Cancel)
	e.PATCH("/orders/:orderID/status", h.Order.UpdateStatus)

	e.GET("/users/:userID/purchases/:productID", h.Order.HasPurchased)

	e.GET("/orders/:orderID/invoice", h.Invoice.GetForOrder)
	e.POST("/orders/:orderID/invoice", h.Invoice.Derive)

	return e
}

// requestLogger logs one line per request through the application logger.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			logger.Info("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestID,
			)
			return err
		}
	}
}
