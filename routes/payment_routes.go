package routes

import (
	"time"

	"github.com/apicalbio/shopify_backend/handlers"
	"github.com/apicalbio/shopify_backend/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Webhook stays unauthenticated; the storefront cannot present a JWT.
	api.Post("/payments/webhook", handlers.HandleShopifyWebhook)

	payments := api.Group("/payments", middleware.Protected())
	payments.Get("/", handlers.ListPayments)
	payments.Get("/:id", handlers.GetPayment)
	payments.Post("/:id/refund",
		middleware.AdminRequired(),
		limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}),
		idempotency.New(),
		handlers.RefundPaymentHandler)

	orders := api.Group("/orders", middleware.Protected())
	orders.Post("/:id/payment-session",
		limiter.New(limiter.Config{Max: 100, Expiration: time.Minute}),
		idempotency.New(),
		handlers.CreatePaymentSessionHandler)
	orders.Post("/:id/payment-intent",
		limiter.New(limiter.Config{Max: 100, Expiration: time.Minute}),
		idempotency.New(),
		handlers.CreatePaymentIntentHandler)
	orders.Post("/:id/confirm-payment",
		limiter.New(limiter.Config{Max: 50, Expiration: time.Minute}),
		idempotency.New(),
		handlers.ConfirmPaymentHandler)
}
