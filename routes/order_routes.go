package routes

import (
	"github.com/apicalbio/shopify_backend/handlers"
	"github.com/apicalbio/shopify_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func OrderRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	orders := api.Group("/orders", middleware.Protected())
	orders.Post("/", handlers.CreateOrder)
	orders.Get("/", handlers.ListOrders)
	orders.Get("/:id", handlers.GetOrder)
	orders.Put("/:id", handlers.UpdateOrder)
	orders.Delete("/:id", middleware.AdminRequired(), handlers.DeleteOrder)
	orders.Post("/:id/cancel", handlers.CancelOrder)
}
