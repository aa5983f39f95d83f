package services

import (
	"encoding/json"
	"testing"

	"github.com/apicalbio/shopify_backend/models"
	"github.com/stretchr/testify/require"
)

func TestFormatLineItems(t *testing.T) {
	order := &models.Order{
		OrderData: json.RawMessage(`{"items":[
			{"name":"Blood Panel","quantity":2,"price":"30.00"},
			{}
		]}`),
	}

	items := formatLineItems(order)
	require.Len(t, items, 2)

	require.Equal(t, "Blood Panel", items[0]["title"])
	require.Equal(t, 2, items[0]["quantity"])
	require.Equal(t, "30.00", items[0]["price"])
	require.Equal(t, false, items[0]["requires_shipping"])

	// Missing fields get defaults instead of dropping the line.
	require.Equal(t, "Unknown Item", items[1]["title"])
	require.Equal(t, 1, items[1]["quantity"])
	require.Equal(t, "0.00", items[1]["price"])
}

func TestFormatLineItems_NoItems(t *testing.T) {
	require.Empty(t, formatLineItems(&models.Order{}))
}
