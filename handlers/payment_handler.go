package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/apicalbio/shopify_backend/database"
	"github.com/apicalbio/shopify_backend/models"
	"github.com/apicalbio/shopify_backend/payments"
	"github.com/apicalbio/shopify_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type RefundRequest struct {
	Amount string `json:"amount,omitempty"`
}

type ShopifyWebhookPayload struct {
	ID              int64  `json:"id"`
	FinancialStatus string `json:"financial_status"`
}

func ListPayments(c *fiber.Ctx) error {
	query := database.DB.Model(&models.PaymentAttempt{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if orderID := c.Query("order_id"); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	var attempts []models.PaymentAttempt
	if err := query.Find(&attempts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}

	return c.JSON(fiber.Map{"payments": attempts})
}

func GetPayment(c *fiber.Ctx) error {
	attemptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var attempt models.PaymentAttempt
	if err := database.DB.First(&attempt, "id = ?", attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(attempt)
}

// CreatePaymentIntentHandler opens a Stripe intent for the order's full
// amount and records the attempt as INITIATED.
func CreatePaymentIntentHandler(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	order, err := services.GetOrder(database.DB, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	attempt, err := services.CreatePaymentAttempt(database.DB, order.ID, order.Amount, "card")
	if err != nil {
		if code, known := validationStatus(err); known {
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment attempt"})
	}

	intent, err := payments.CreatePaymentIntent(order)
	if err != nil {
		var paymentErr *payments.PaymentError
		if errors.As(err, &paymentErr) {
			if _, failErr := services.FailPayment(database.DB, attempt.ID, paymentErr.Message); failErr != nil {
				log.Printf("🔥 Failed to mark payment attempt %s as failed: %v", attempt.ID, failErr)
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment intent"})
	}

	attempt.PaymentID = &intent.ID
	if err := database.DB.Save(attempt).Error; err != nil {
		log.Printf("🔥 Failed to save payment intent id on attempt %s: %v", attempt.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payment record"})
	}

	return c.JSON(fiber.Map{
		"payment_id":        attempt.ID,
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
	})
}

// ConfirmPaymentHandler checks the intent with Stripe and applies the
// COMPLETED (or FAILED) transition to the recorded attempt.
func ConfirmPaymentHandler(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	var req ConfirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var attempt models.PaymentAttempt
	err = database.DB.Where("order_id = ? AND payment_id = ?", orderID, req.PaymentIntentID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment attempt not found for this intent"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	succeeded, err := payments.ConfirmPayment(req.PaymentIntentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !succeeded {
		if _, err := services.FailPayment(database.DB, attempt.ID, "payment not succeeded on processor"); err != nil {
			log.Printf("🔥 Failed to mark payment attempt %s as failed: %v", attempt.ID, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment confirmation failed"})
	}

	completed, err := services.CompletePayment(database.DB, attempt.ID, &req.PaymentIntentID)
	if err != nil {
		if code, known := validationStatus(err); known {
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete payment"})
	}

	return c.JSON(fiber.Map{"status": "payment_confirmed", "payment": completed})
}

// CreatePaymentSessionHandler creates the order on the storefront and
// returns the hosted payment URL. The storefront's order id is stored
// so later webhooks can find the order.
func CreatePaymentSessionHandler(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	order, err := services.GetOrder(database.DB, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if order.Status == models.OrderStatusCancelled || order.Status == models.OrderStatusRefunded {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": models.ErrOrderNotPayable.Error()})
	}

	client, err := services.NewShopifyClient()
	if err != nil {
		log.Printf("🔥 Shopify client unavailable: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storefront integration not configured"})
	}
	defer client.Close()

	session, err := client.CreatePaymentSession(order)
	if err != nil {
		log.Printf("🔥 Failed to create Shopify payment session for order %s: %v", order.OrderReference, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to create storefront payment session"})
	}

	order.ShopifyOrderID = &session.ShopifyOrderID
	if err := services.UpdateOrder(database.DB, order); err != nil {
		log.Printf("🔥 Failed to save storefront order id on order %s: %v", order.OrderReference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update order"})
	}

	return c.JSON(fiber.Map{
		"payment_url":      session.PaymentURL,
		"shopify_order_id": session.ShopifyOrderID,
	})
}

// RefundPaymentHandler is admin-only. An omitted amount refunds the
// full attempt.
func RefundPaymentHandler(c *fiber.Ctx) error {
	attemptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var req RefundRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	amount := decimal.Zero
	if req.Amount != "" {
		amount, err = decimal.NewFromString(req.Amount)
		if err != nil || amount.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid refund amount"})
		}
	}

	attempt, err := services.RefundPayment(database.DB, attemptID, amount)
	if err != nil {
		if code, known := validationStatus(err); known {
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process refund"})
	}

	var gatewayErr error
	if attempt.PaymentID != nil {
		if err := payments.RefundIntent(*attempt.PaymentID, amount); err != nil {
			log.Printf("🔥 Stripe refund for intent %s failed after local refund: %v", *attempt.PaymentID, err)
			gatewayErr = err
		}
	}

	return c.JSON(refundResponse(attempt, gatewayErr))
}

// refundResponse reports the committed local refund; a gateway failure
// after the local commit is surfaced to the caller, not only logged.
func refundResponse(attempt *models.PaymentAttempt, gatewayErr error) fiber.Map {
	resp := fiber.Map{"status": "refund_processed", "payment": attempt}
	if gatewayErr != nil {
		resp["warning"] = "refund recorded but the gateway refund failed, reconcile manually: " + gatewayErr.Error()
	}
	return resp
}

// HandleShopifyWebhook updates order status from the storefront's
// payment notifications.
func HandleShopifyWebhook(c *fiber.Ctx) error {
	var payload ShopifyWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	shopifyOrderID := strconv.FormatInt(payload.ID, 10)

	var order models.Order
	if err := database.DB.Where("shopify_order_id = ?", shopifyOrderID).First(&order).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}

	log.Printf("Received Shopify webhook for order %s, financial_status: %s", order.OrderReference, payload.FinancialStatus)

	switch payload.FinancialStatus {
	case "paid":
		if order.Status == models.OrderStatusCompleted {
			return c.JSON(fiber.Map{"success": true, "message": "Webhook already processed"})
		}
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", order.ID).Error; err != nil {
				return err
			}
			attempt := models.NewPaymentAttempt(&order, order.Amount, "shopify")
			if err := attempt.Complete(&order); err != nil {
				return err
			}
			if err := tx.Create(attempt).Error; err != nil {
				return err
			}
			return tx.Save(&order).Error
		})
		if err != nil {
			if code, known := validationStatus(err); known {
				return c.Status(code).JSON(fiber.Map{"error": err.Error()})
			}
			log.Printf("🔥 Failed to process paid webhook for order %s: %v", order.OrderReference, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
		}
	case "pending":
		order.Status = models.OrderStatusProcessing
		if err := database.DB.Save(&order).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update order"})
		}
	default:
		log.Printf("Ignoring Shopify financial_status %q for order %s", payload.FinancialStatus, order.OrderReference)
	}

	return c.JSON(fiber.Map{"success": true})
}
