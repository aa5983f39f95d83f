package routes

import (
	"github.com/apicalbio/shopify_backend/handlers"
	"github.com/apicalbio/shopify_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func PDFRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected())

	api.Post("/orders/:id/generate-pdf", handlers.GenerateOrderPDF)
	api.Get("/orders/:id/labels/download", handlers.DownloadLabels)
	api.Get("/orders/:id/labels/print", handlers.PrintLabels)
	api.Get("/orders/:id/labels/preview", handlers.PreviewPDF)
	api.Post("/orders/:id/email-pdf", handlers.EmailPDF)

	api.Post("/batch/generate-pdfs", handlers.BatchGeneratePDFs)
	api.Post("/batch/download", handlers.BatchDownload)
}
