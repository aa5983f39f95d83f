package services

import (
	"github.com/apicalbio/shopify_backend/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// All payment mutations lock the owning order row first, so two
// concurrent transitions on the same order cannot interleave their
// read-validate-write steps.

// loadAttemptLocked resolves the attempt's owning order, locks the
// order row, then re-reads the attempt. The re-read matters: a
// transaction that blocked on the lock must see the attempt state the
// winner committed, not whatever it read before waiting.
func loadAttemptLocked(tx *gorm.DB, attemptID uuid.UUID, attempt *models.PaymentAttempt, order *models.Order) error {
	if err := tx.First(attempt, "id = ?", attemptID).Error; err != nil {
		return err
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(order, "id = ?", attempt.OrderID).Error; err != nil {
		return err
	}
	return tx.First(attempt, "id = ?", attemptID).Error
}

func CreatePaymentAttempt(db *gorm.DB, orderID uuid.UUID, amount decimal.Decimal, method string) (*models.PaymentAttempt, error) {
	var attempt *models.PaymentAttempt
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		attempt = models.NewPaymentAttempt(&order, amount, method)
		if err := attempt.Validate(&order); err != nil {
			return err
		}
		return tx.Create(attempt).Error
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// CompletePayment marks the attempt COMPLETED and saves the order-level
// propagation in the same transaction.
func CompletePayment(db *gorm.DB, attemptID uuid.UUID, externalPaymentID *string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := loadAttemptLocked(tx, attemptID, &attempt, &order); err != nil {
			return err
		}

		if err := attempt.Complete(&order); err != nil {
			return err
		}
		if externalPaymentID != nil {
			attempt.PaymentID = externalPaymentID
		}
		if err := tx.Save(&attempt).Error; err != nil {
			return err
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func FailPayment(db *gorm.DB, attemptID uuid.UUID, message string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := loadAttemptLocked(tx, attemptID, &attempt, &order); err != nil {
			return err
		}
		if err := attempt.Fail(message); err != nil {
			return err
		}
		return tx.Save(&attempt).Error
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// RefundPayment refunds the attempt, loading its siblings so the model
// can decide whether the order-level REFUNDED cascade applies. A zero
// amount refunds the full attempt.
func RefundPayment(db *gorm.DB, attemptID uuid.UUID, amount decimal.Decimal) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := loadAttemptLocked(tx, attemptID, &attempt, &order); err != nil {
			return err
		}

		var siblings []models.PaymentAttempt
		if err := tx.Where("order_id = ?", order.ID).Find(&siblings).Error; err != nil {
			return err
		}

		previousOrderStatus := order.Status
		if err := attempt.Refund(&order, siblings, amount); err != nil {
			return err
		}
		if err := tx.Save(&attempt).Error; err != nil {
			return err
		}
		if order.Status != previousOrderStatus {
			return tx.Save(&order).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
