package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/apicalbio/shopify_backend/database"
	"github.com/apicalbio/shopify_backend/models"
	"github.com/apicalbio/shopify_backend/notifications"
	"github.com/apicalbio/shopify_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchPDFRequest struct {
	OrderIDs []string `json:"order_ids" validate:"required,min=1"`
}

func loadOrderForPDF(c *fiber.Ctx) (*models.Order, error) {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	var order models.Order
	if err := database.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return &order, nil
}

// labelsFor returns the order's label sheet, rendering and caching it
// on a miss.
func labelsFor(order *models.Order) ([]byte, error) {
	if pdfData, ok := services.LabelCache.Get(order.ID); ok {
		return pdfData, nil
	}

	pdfData, err := services.GenerateSampleLabels(order)
	if err != nil {
		return nil, err
	}
	services.LabelCache.Save(order.ID, pdfData)
	return pdfData, nil
}

// GenerateOrderPDF renders the sheet, uploads it, and returns the
// hosted URL.
func GenerateOrderPDF(c *fiber.Ctx) error {
	order, err := loadOrderForPDF(c)
	if order == nil {
		return err
	}

	pdfData, err := labelsFor(order)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF for order %s: %v", order.OrderReference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating PDF: Please try again later"})
	}

	pdfURL, err := services.UploadLabelsPDF(pdfData, order.OrderReference)
	if err != nil {
		log.Printf("🔥 Failed to upload PDF for order %s: %v", order.OrderReference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to host generated PDF"})
	}

	return c.JSON(fiber.Map{"pdf_url": pdfURL})
}

// DownloadLabels serves the sheet as an attachment.
func DownloadLabels(c *fiber.Ctx) error {
	order, err := loadOrderForPDF(c)
	if order == nil {
		return err
	}

	pdfData, err := labelsFor(order)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF for order %s: %v", order.OrderReference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating PDF: Please try again later"})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="sample_labels_%s.pdf"`, order.OrderReference))
	return c.Send(pdfData)
}

// PrintLabels serves the sheet inline with print-friendly headers.
func PrintLabels(c *fiber.Ctx) error {
	order, err := loadOrderForPDF(c)
	if order == nil {
		return err
	}

	pdfData, err := labelsFor(order)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF for order %s: %v", order.OrderReference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating PDF: Please try again later"})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "inline")
	return c.Send(pdfData)
}

// PreviewPDF renders the sheet in the browser, cache-backed.
func PreviewPDF(c *fiber.Ctx) error {
	return PrintLabels(c)
}

// EmailPDF sends the sheet to the order's customer as an attachment.
func EmailPDF(c *fiber.Ctx) error {
	order, err := loadOrderForPDF(c)
	if order == nil {
		return err
	}

	pdfData, err := labelsFor(order)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF for order %s: %v", order.OrderReference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating PDF: Please try again later"})
	}

	success := notifications.SendPDFEmail(order.CustomerName, order.CustomerEmail, order.OrderReference, pdfData)
	return c.JSON(fiber.Map{"success": success})
}

func parseBatchOrderIDs(c *fiber.Ctx) ([]models.Order, error) {
	var req BatchPDFRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "order_ids list cannot be empty"})
	}

	orders := make([]models.Order, 0, len(req.OrderIDs))
	var invalidIDs []string
	for _, raw := range req.OrderIDs {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			invalidIDs = append(invalidIDs, raw)
			continue
		}
		var order models.Order
		if err := database.DB.First(&order, "id = ?", orderID).Error; err != nil {
			invalidIDs = append(invalidIDs, raw)
			continue
		}
		orders = append(orders, order)
	}

	if len(invalidIDs) > 0 {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("Invalid order IDs: %v", invalidIDs)})
	}
	return orders, nil
}

// BatchGeneratePDFs renders and uploads each order's sheet, returning
// the hosted URLs.
func BatchGeneratePDFs(c *fiber.Ctx) error {
	orders, err := parseBatchOrderIDs(c)
	if orders == nil {
		return err
	}

	pdfURLs := make([]string, 0, len(orders))
	for i := range orders {
		pdfData, err := labelsFor(&orders[i])
		if err != nil {
			log.Printf("🔥 Batch PDF generation failed at order %s: %v", orders[i].OrderReference, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating PDF: Please try again later"})
		}
		pdfURL, err := services.UploadLabelsPDF(pdfData, orders[i].OrderReference)
		if err != nil {
			log.Printf("🔥 Batch PDF upload failed at order %s: %v", orders[i].OrderReference, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to host generated PDF"})
		}
		pdfURLs = append(pdfURLs, pdfURL)
	}

	return c.JSON(fiber.Map{"pdf_urls": pdfURLs})
}

// BatchDownload streams one merged PDF containing every requested
// order's sheet.
func BatchDownload(c *fiber.Ctx) error {
	orders, err := parseBatchOrderIDs(c)
	if orders == nil {
		return err
	}

	pdfData, err := services.GenerateBatchLabels(orders)
	if err != nil {
		log.Printf("🔥 Batch PDF generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating PDF: Please try again later"})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="batch_labels.pdf"`)
	return c.Send(pdfData)
}
