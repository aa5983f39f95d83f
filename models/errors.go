package models

import "errors"

var (
	ErrInvalidCurrency      = errors.New("currency must be one of USD, EUR, GBP, CAD, AUD")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrMissingReference     = errors.New("order reference is required")
	ErrInvalidTransition    = errors.New("entity cannot change to the requested status from its current state")
	ErrAmountExceedsOrder   = errors.New("payment amount cannot exceed order amount")
	ErrOrderNotPayable      = errors.New("cannot process payment for cancelled or refunded order")
	ErrRefundExceedsPayment = errors.New("refund amount cannot exceed payment amount")
)
