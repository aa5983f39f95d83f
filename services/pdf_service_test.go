package services

import (
	"encoding/json"
	"testing"

	"github.com/apicalbio/shopify_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLabelPageFor(t *testing.T) {
	order := &models.Order{
		OrderReference: "ORD-ABCD1234",
		CustomerName:   "Jane Customer",
		CustomerEmail:  "customer@example.com",
		Amount:         decimal.RequireFromString("60.00"),
		Currency:       "USD",
		OrderData:      json.RawMessage(`{"items":[{"name":"Blood Panel","quantity":2,"price":"30.00"}]}`),
	}

	p := labelPageFor(order)
	require.Equal(t, "ORD-ABCD1234", p.OrderReference)
	require.Equal(t, "Jane Customer", p.CustomerName)
	require.Len(t, p.Items, 1)
	require.Equal(t, "Blood Panel", p.Items[0].Name)
	require.Equal(t, 2, p.Items[0].Quantity)
}

func TestLabelPageFor_MalformedOrderData(t *testing.T) {
	order := &models.Order{
		OrderReference: "ORD-ABCD1234",
		OrderData:      json.RawMessage(`not json`),
	}

	p := labelPageFor(order)
	require.Empty(t, p.Items)
}

func TestLabelPageFor_NoOrderData(t *testing.T) {
	p := labelPageFor(&models.Order{OrderReference: "ORD-EMPTY"})
	require.Empty(t, p.Items)
}
