package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"100.00", "10000"},
		{"0.01", "1"},
		{"19.99", "1999"},
		{"250.50", "25050"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, minorUnits(decimal.RequireFromString(tt.amount)))
	}
}
