package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestOrder(amount string) *Order {
	return &Order{
		ID:             uuid.New(),
		OrderReference: "ORD-TEST-001",
		Amount:         decimal.RequireFromString(amount),
		Currency:       "USD",
		CustomerEmail:  "customer@example.com",
		CustomerName:   "Jane Customer",
		Status:         OrderStatusPending,
	}
}

func completedAttempt(orderID uuid.UUID, amount string) PaymentAttempt {
	return PaymentAttempt{
		ID:      uuid.New(),
		OrderID: orderID,
		Amount:  decimal.RequireFromString(amount),
		Status:  PaymentStatusCompleted,
	}
}

func TestOrderValidate_AllowedCurrencies(t *testing.T) {
	for _, currency := range AllowedCurrencies {
		order := newTestOrder("100.00")
		order.Currency = currency
		require.NoError(t, order.Validate(), "currency %s should validate", currency)
	}
}

func TestOrderValidate_RejectsUnknownCurrency(t *testing.T) {
	for _, currency := range []string{"JPY", "KES", "usd", ""} {
		order := newTestOrder("100.00")
		order.Currency = currency
		require.ErrorIs(t, order.Validate(), ErrInvalidCurrency, "currency %q", currency)
	}
}

func TestOrderValidate_RejectsNonPositiveAmount(t *testing.T) {
	order := newTestOrder("0.00")
	require.ErrorIs(t, order.Validate(), ErrInvalidAmount)

	order = newTestOrder("-5.00")
	require.ErrorIs(t, order.Validate(), ErrInvalidAmount)
}

func TestOrderValidate_RejectsMissingReference(t *testing.T) {
	order := newTestOrder("100.00")
	order.OrderReference = ""
	require.ErrorIs(t, order.Validate(), ErrMissingReference)
}

func TestOrderCancel(t *testing.T) {
	tests := []struct {
		status  string
		wantErr error
	}{
		{OrderStatusPending, nil},
		{OrderStatusProcessing, nil},
		{OrderStatusCompleted, ErrInvalidTransition},
		{OrderStatusCancelled, ErrInvalidTransition},
		{OrderStatusRefunded, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			order := newTestOrder("100.00")
			order.Status = tt.status
			err := order.Cancel()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, tt.status, order.Status)
				return
			}
			require.NoError(t, err)
			require.Equal(t, OrderStatusCancelled, order.Status)
		})
	}
}

func TestOrderTotalPaid_CountsOnlyCompletedAttempts(t *testing.T) {
	order := newTestOrder("100.00")
	attempts := []PaymentAttempt{
		completedAttempt(order.ID, "40.00"),
		{OrderID: order.ID, Amount: decimal.RequireFromString("30.00"), Status: PaymentStatusInitiated},
		{OrderID: order.ID, Amount: decimal.RequireFromString("30.00"), Status: PaymentStatusFailed},
		{OrderID: order.ID, Amount: decimal.RequireFromString("30.00"), Status: PaymentStatusRefunded},
	}

	require.True(t, order.TotalPaid(attempts).Equal(decimal.RequireFromString("40.00")))

	// Adding another non-COMPLETED attempt never changes the total.
	attempts = append(attempts, PaymentAttempt{
		OrderID: order.ID,
		Amount:  decimal.RequireFromString("25.00"),
		Status:  PaymentStatusProcessing,
	})
	require.True(t, order.TotalPaid(attempts).Equal(decimal.RequireFromString("40.00")))
}

func TestOrderPaymentStatus(t *testing.T) {
	order := newTestOrder("100.00")

	require.Equal(t, PaymentStateUnpaid, order.PaymentStatus(nil))

	attempts := []PaymentAttempt{completedAttempt(order.ID, "50.00")}
	require.Equal(t, PaymentStatePartiallyPaid, order.PaymentStatus(attempts))

	attempts = append(attempts, completedAttempt(order.ID, "50.00"))
	require.Equal(t, PaymentStatePaid, order.PaymentStatus(attempts))

	// Overpayment still reads as PAID.
	attempts = append(attempts, completedAttempt(order.ID, "10.00"))
	require.Equal(t, PaymentStatePaid, order.PaymentStatus(attempts))
}
