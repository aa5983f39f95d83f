package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/apicalbio/shopify_backend/database"
	"github.com/apicalbio/shopify_backend/models"
	"github.com/apicalbio/shopify_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateOrderRequest struct {
	OrderReference string          `json:"order_reference,omitempty"`
	Amount         string          `json:"amount" validate:"required"`
	Currency       string          `json:"currency" validate:"required,len=3"`
	CustomerEmail  string          `json:"customer_email" validate:"required,email"`
	CustomerName   string          `json:"customer_name,omitempty"`
	OrderData      json.RawMessage `json:"order_data,omitempty"`
}

type UpdateOrderRequest struct {
	Currency      *string         `json:"currency,omitempty"`
	CustomerEmail *string         `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	OrderData     json.RawMessage `json:"order_data,omitempty"`
}

type OrderResponse struct {
	models.Order
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PaymentStatus string          `json:"payment_status"`
}

func orderResponse(order *models.Order) OrderResponse {
	return OrderResponse{
		Order:         *order,
		TotalPaid:     order.TotalPaid(order.Payments),
		PaymentStatus: order.PaymentStatus(order.Payments),
	}
}

// validationStatus maps the core's validation failures onto 400s while
// letting unexpected persistence errors stay 500s.
func validationStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, models.ErrInvalidCurrency),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrMissingReference),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrAmountExceedsOrder),
		errors.Is(err, models.ErrOrderNotPayable),
		errors.Is(err, models.ErrRefundExceedsPayment):
		return fiber.StatusBadRequest, true
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.StatusConflict, true
	}
	return fiber.StatusInternalServerError, false
}

func CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}

	order := models.Order{
		OrderReference: req.OrderReference,
		Amount:         amount,
		Currency:       req.Currency,
		CustomerEmail:  req.CustomerEmail,
		CustomerName:   req.CustomerName,
		OrderData:      req.OrderData,
	}

	if err := services.CreateOrder(database.DB, &order); err != nil {
		if code, known := validationStatus(err); known {
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create order"})
	}

	return c.Status(fiber.StatusCreated).JSON(orderResponse(&order))
}

func ListOrders(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	status := c.Query("status")

	countQuery := database.DB.Model(&models.Order{})
	listQuery := database.DB.Preload("Payments").Order("created_at DESC")
	if status != "" {
		countQuery = countQuery.Where("status = ?", status)
		listQuery = listQuery.Where("status = ?", status)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count orders"})
	}

	var orders []models.Order
	if err := listQuery.Offset((page - 1) * limit).Limit(limit).Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, orderResponse(&orders[i]))
	}

	return c.JSON(fiber.Map{
		"orders": responses,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func GetOrder(c *fiber.Ctx) error {
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

	return c.JSON(orderResponse(order))
}

func UpdateOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	var req UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := services.GetOrder(database.DB, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	// order_reference and amount are immutable once created.
	if req.Currency != nil {
		order.Currency = *req.Currency
	}
	if req.CustomerEmail != nil {
		order.CustomerEmail = *req.CustomerEmail
	}
	if req.CustomerName != nil {
		order.CustomerName = *req.CustomerName
	}
	if req.OrderData != nil {
		order.OrderData = req.OrderData
	}

	if err := services.UpdateOrder(database.DB, order); err != nil {
		if code, known := validationStatus(err); known {
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update order"})
	}

	return c.JSON(orderResponse(order))
}

// DeleteOrder is an administrative hard delete; attempts cascade with
// the order.
func DeleteOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	result := database.DB.Delete(&models.Order{}, "id = ?", orderID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete order"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func CancelOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	order, err := services.CancelOrder(database.DB, orderID)
	if err != nil {
		if code, known := validationStatus(err); known {
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel order"})
	}

	return c.JSON(orderResponse(order))
}
