package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusInitiated  = "INITIATED"
	PaymentStatusProcessing = "PROCESSING"
	PaymentStatusCompleted  = "COMPLETED"
	PaymentStatusFailed     = "FAILED"
	PaymentStatusRefunded   = "REFUNDED"
)

type PaymentAttempt struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID       uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`
	Status        string          `json:"status" gorm:"size:20;not null;default:'INITIATED';index"`
	PaymentMethod string          `json:"payment_method" gorm:"size:50;not null;default:'card';index"`
	PaymentID     *string         `json:"payment_id,omitempty" gorm:"size:100"`
	ErrorMessage  *string         `json:"error_message,omitempty" gorm:"type:text"`
	Metadata      json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`

	Order Order `json:"-" gorm:"foreignkey:OrderID"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPaymentAttempt(order *Order, amount decimal.Decimal, method string) *PaymentAttempt {
	if method == "" {
		method = "card"
	}
	return &PaymentAttempt{
		OrderID:       order.ID,
		Amount:        amount,
		Status:        PaymentStatusInitiated,
		PaymentMethod: method,
	}
}

// Validate enforces the attempt invariants against the owning order.
// It must run before every persist.
func (p *PaymentAttempt) Validate(order *Order) error {
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.Amount.GreaterThan(order.Amount) {
		return ErrAmountExceedsOrder
	}
	if order.Status == OrderStatusCancelled || order.Status == OrderStatusRefunded {
		return ErrOrderNotPayable
	}
	return nil
}

// MarkProcessing moves a freshly initiated attempt into PROCESSING.
func (p *PaymentAttempt) MarkProcessing() error {
	if p.Status != PaymentStatusInitiated {
		return ErrInvalidTransition
	}
	p.Status = PaymentStatusProcessing
	return nil
}

// Complete marks the attempt COMPLETED and propagates completion to the
// owning order. The propagation is an explicit part of this transition
// rather than a save hook, so it applies whether the attempt is fresh
// or has already been through PROCESSING.
func (p *PaymentAttempt) Complete(order *Order) error {
	if p.Status != PaymentStatusInitiated && p.Status != PaymentStatusProcessing {
		return ErrInvalidTransition
	}
	if err := p.Validate(order); err != nil {
		return err
	}
	p.Status = PaymentStatusCompleted
	order.Status = OrderStatusCompleted
	return nil
}

// Fail marks the attempt FAILED with the processor's error message.
// FAILED is terminal.
func (p *PaymentAttempt) Fail(message string) error {
	if p.Status != PaymentStatusInitiated && p.Status != PaymentStatusProcessing {
		return ErrInvalidTransition
	}
	p.Status = PaymentStatusFailed
	p.ErrorMessage = &message
	return nil
}

func (p *PaymentAttempt) CanRefund() bool {
	return p.Status == PaymentStatusCompleted
}

// Refund moves a COMPLETED attempt to REFUNDED. A zero amount means a
// full refund. When the refund covers the full attempt amount and the
// order has no other attempts, the order itself goes to REFUNDED;
// partial refunds and orders with sibling attempts leave the order
// status untouched.
func (p *PaymentAttempt) Refund(order *Order, siblings []PaymentAttempt, amount decimal.Decimal) error {
	if !p.CanRefund() {
		return ErrInvalidTransition
	}
	refundAmount := amount
	if refundAmount.IsZero() {
		refundAmount = p.Amount
	}
	if refundAmount.GreaterThan(p.Amount) {
		return ErrRefundExceedsPayment
	}

	p.Status = PaymentStatusRefunded

	hasOthers := false
	for _, s := range siblings {
		if s.ID != p.ID {
			hasOthers = true
			break
		}
	}
	if refundAmount.Equal(p.Amount) && !hasOthers {
		order.Status = OrderStatusRefunded
	}
	return nil
}
