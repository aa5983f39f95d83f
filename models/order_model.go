package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
	OrderStatusRefunded   = "REFUNDED"
)

const (
	PaymentStateUnpaid        = "UNPAID"
	PaymentStatePartiallyPaid = "PARTIALLY_PAID"
	PaymentStatePaid          = "PAID"
)

// AllowedCurrencies is the only set of currencies an order may carry.
var AllowedCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD"}

type Order struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderReference string          `json:"order_reference" gorm:"size:100;not null;uniqueIndex"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`
	Currency       string          `json:"currency" gorm:"size:3;not null"`
	CustomerEmail  string          `json:"customer_email" gorm:"size:255;not null"`
	CustomerName   string          `json:"customer_name" gorm:"size:100"`
	Status         string          `json:"status" gorm:"size:20;not null;default:'PENDING';index"`
	ShopifyOrderID *string         `json:"shopify_order_id,omitempty" gorm:"size:255;unique"`
	OrderData      json.RawMessage `json:"order_data,omitempty" gorm:"type:jsonb"`

	Payments []PaymentAttempt `json:"payments,omitempty" gorm:"foreignkey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces the field-level invariants independent of whatever
// constraints the database additionally applies. It must run before
// every persist.
func (o *Order) Validate() error {
	if o.OrderReference == "" {
		return ErrMissingReference
	}
	if !o.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	for _, c := range AllowedCurrencies {
		if o.Currency == c {
			return nil
		}
	}
	return ErrInvalidCurrency
}

func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return false
	}
	return true
}

// Cancel moves the order to CANCELLED. Child payment attempts are left
// untouched.
func (o *Order) Cancel() error {
	if !o.CanCancel() {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusCancelled
	return nil
}

// TotalPaid sums the amounts of COMPLETED attempts only. It is
// recomputed from the attempt list on every call; attempts can change
// status at any time, so caching the sum would go stale.
func (o *Order) TotalPaid(attempts []PaymentAttempt) decimal.Decimal {
	total := decimal.Zero
	for _, a := range attempts {
		if a.Status == PaymentStatusCompleted {
			total = total.Add(a.Amount)
		}
	}
	return total
}

func (o *Order) PaymentStatus(attempts []PaymentAttempt) string {
	paid := o.TotalPaid(attempts)
	switch {
	case paid.GreaterThanOrEqual(o.Amount):
		return PaymentStatePaid
	case paid.IsPositive():
		return PaymentStatePartiallyPaid
	}
	return PaymentStateUnpaid
}
