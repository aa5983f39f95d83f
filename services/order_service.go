package services

import (
	"github.com/apicalbio/shopify_backend/models"
	"github.com/apicalbio/shopify_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOrder validates and persists a new order. A missing reference
// gets a generated unique one.
func CreateOrder(db *gorm.DB, order *models.Order) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if order.OrderReference == "" {
			reference, err := utils.GenerateUniqueOrderReference(tx)
			if err != nil {
				return err
			}
			order.OrderReference = reference
		}
		if order.Status == "" {
			order.Status = models.OrderStatusPending
		}
		if err := order.Validate(); err != nil {
			return err
		}
		return tx.Create(order).Error
	})
}

// UpdateOrder re-validates the order and persists it. Payment attempts
// are never written through the order.
func UpdateOrder(db *gorm.DB, order *models.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	return db.Omit(clause.Associations).Save(order).Error
}

// CancelOrder serializes against concurrent mutations of the same order
// with a row lock, then applies the cancel transition.
func CancelOrder(db *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return err
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder loads an order together with its payment attempts.
func GetOrder(db *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Payments").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
