package handlers

import (
	"errors"
	"testing"

	"github.com/apicalbio/shopify_backend/models"
	"github.com/stretchr/testify/require"
)

func TestRefundResponse_GatewayFailureSurfaced(t *testing.T) {
	attempt := &models.PaymentAttempt{Status: models.PaymentStatusRefunded}

	resp := refundResponse(attempt, nil)
	require.Equal(t, "refund_processed", resp["status"])
	require.NotContains(t, resp, "warning")

	resp = refundResponse(attempt, errors.New("gateway timeout"))
	require.Equal(t, "refund_processed", resp["status"])
	require.Contains(t, resp, "warning")
	require.Contains(t, resp["warning"], "gateway timeout")
}
