package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentAttempt_Defaults(t *testing.T) {
	order := newTestOrder("100.00")

	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "")
	require.Equal(t, PaymentStatusInitiated, attempt.Status)
	require.Equal(t, "card", attempt.PaymentMethod)
	require.Equal(t, order.ID, attempt.OrderID)

	attempt = NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "bank_transfer")
	require.Equal(t, "bank_transfer", attempt.PaymentMethod)
}

func TestPaymentAttemptValidate_AmountExceedsOrder(t *testing.T) {
	order := newTestOrder("100.00")

	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.01"), "card")
	require.ErrorIs(t, attempt.Validate(order), ErrAmountExceedsOrder)

	// Requested attempt status makes no difference.
	attempt.Status = PaymentStatusCompleted
	require.ErrorIs(t, attempt.Validate(order), ErrAmountExceedsOrder)
}

func TestPaymentAttemptValidate_OrderNotPayable(t *testing.T) {
	for _, status := range []string{OrderStatusCancelled, OrderStatusRefunded} {
		order := newTestOrder("100.00")
		order.Status = status
		attempt := NewPaymentAttempt(order, decimal.RequireFromString("50.00"), "card")
		require.ErrorIs(t, attempt.Validate(order), ErrOrderNotPayable, "order status %s", status)
	}
}

func TestPaymentAttemptValidate_NonPositiveAmount(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.Zero, "card")
	require.ErrorIs(t, attempt.Validate(order), ErrInvalidAmount)
}

func TestMarkProcessing(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")

	require.NoError(t, attempt.MarkProcessing())
	require.Equal(t, PaymentStatusProcessing, attempt.Status)

	require.ErrorIs(t, attempt.MarkProcessing(), ErrInvalidTransition)
}

func TestComplete_PropagatesToOrder(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")

	require.NoError(t, attempt.Complete(order))
	require.Equal(t, PaymentStatusCompleted, attempt.Status)
	require.Equal(t, OrderStatusCompleted, order.Status)
}

func TestComplete_FromProcessing(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")
	require.NoError(t, attempt.MarkProcessing())

	require.NoError(t, attempt.Complete(order))
	require.Equal(t, OrderStatusCompleted, order.Status)
}

func TestComplete_TerminalStatesRejected(t *testing.T) {
	for _, status := range []string{PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded} {
		order := newTestOrder("100.00")
		attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")
		attempt.Status = status
		require.ErrorIs(t, attempt.Complete(order), ErrInvalidTransition, "from %s", status)
	}
}

func TestComplete_RevalidatesAgainstOrder(t *testing.T) {
	order := newTestOrder("100.00")
	order.Status = OrderStatusCancelled
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")

	require.ErrorIs(t, attempt.Complete(order), ErrOrderNotPayable)
	require.Equal(t, PaymentStatusInitiated, attempt.Status)
	require.Equal(t, OrderStatusCancelled, order.Status)
}

func TestFail(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")

	require.NoError(t, attempt.Fail("card declined"))
	require.Equal(t, PaymentStatusFailed, attempt.Status)
	require.NotNil(t, attempt.ErrorMessage)
	require.Equal(t, "card declined", *attempt.ErrorMessage)

	// FAILED is terminal.
	require.ErrorIs(t, attempt.Fail("again"), ErrInvalidTransition)
	require.ErrorIs(t, attempt.Complete(order), ErrInvalidTransition)
}

func TestRefund_RequiresCompletedAttempt(t *testing.T) {
	for _, status := range []string{PaymentStatusInitiated, PaymentStatusProcessing, PaymentStatusFailed, PaymentStatusRefunded} {
		order := newTestOrder("100.00")
		attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")
		attempt.Status = status
		err := attempt.Refund(order, nil, decimal.Zero)
		require.ErrorIs(t, err, ErrInvalidTransition, "from %s", status)
	}
}

func TestRefund_SoleAttemptFullRefundCascades(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")
	require.NoError(t, attempt.Complete(order))

	require.NoError(t, attempt.Refund(order, []PaymentAttempt{*attempt}, decimal.Zero))
	require.Equal(t, PaymentStatusRefunded, attempt.Status)
	require.Equal(t, OrderStatusRefunded, order.Status)
}

func TestRefund_PartialRefundDoesNotCascade(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")
	require.NoError(t, attempt.Complete(order))

	require.NoError(t, attempt.Refund(order, []PaymentAttempt{*attempt}, decimal.RequireFromString("40.00")))
	require.Equal(t, PaymentStatusRefunded, attempt.Status)
	require.Equal(t, OrderStatusCompleted, order.Status)
}

func TestRefund_SiblingAttemptsBlockCascade(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("60.00"), "card")
	attempt.ID = uuid.New()
	require.NoError(t, attempt.Complete(order))

	sibling := completedAttempt(order.ID, "40.00")
	siblings := []PaymentAttempt{*attempt, sibling}

	require.NoError(t, attempt.Refund(order, siblings, decimal.Zero))
	require.Equal(t, PaymentStatusRefunded, attempt.Status)
	require.Equal(t, OrderStatusCompleted, order.Status)
}

func TestRefund_SecondRefundRejected(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("100.00"), "card")
	require.NoError(t, attempt.Complete(order))
	require.NoError(t, attempt.Refund(order, []PaymentAttempt{*attempt}, decimal.Zero))

	// A caller acting on the post-refund state must be turned away, so
	// the gateway refund is never issued twice.
	err := attempt.Refund(order, []PaymentAttempt{*attempt}, decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, PaymentStatusRefunded, attempt.Status)
	require.Equal(t, OrderStatusRefunded, order.Status)
}

func TestRefund_ExceedingPaymentRejected(t *testing.T) {
	order := newTestOrder("100.00")
	attempt := NewPaymentAttempt(order, decimal.RequireFromString("50.00"), "card")
	require.NoError(t, attempt.Complete(order))

	err := attempt.Refund(order, []PaymentAttempt{*attempt}, decimal.RequireFromString("50.01"))
	require.ErrorIs(t, err, ErrRefundExceedsPayment)
	require.Equal(t, PaymentStatusCompleted, attempt.Status)
	require.Equal(t, OrderStatusCompleted, order.Status)
}
