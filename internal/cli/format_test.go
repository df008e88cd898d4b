package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		amount float64
	}{
		{name: "crore", amount: 12_345_678, want: "₹1.2Cr"},
		{name: "exact crore", amount: 10_000_000, want: "₹1.0Cr"},
		{name: "lakh", amount: 350_000, want: "₹3.5L"},
		{name: "thousand", amount: 4_000, want: "₹4.0K"},
		{name: "rounds into next digit", amount: 99_999, want: "₹100.0K"},
		{name: "small", amount: 950, want: "₹950"},
		{name: "fraction", amount: 12.6, want: "₹13"},
		{name: "zero", amount: 0, want: "₹0"},
		{name: "negative", amount: -2_500_000, want: "-₹25.0L"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.amount))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		want   string
		amount float64
	}{
		{amount: 0, want: "₹0"},
		{amount: 999, want: "₹999"},
		{amount: 1_000, want: "₹1,000"},
		{amount: 100_000, want: "₹1,00,000"},
		{amount: 1_234_567, want: "₹12,34,567"},
		{amount: 12_345_678_901, want: "₹12,34,56,78,901"},
		{amount: -50_000.4, want: "-₹50,000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.amount))
		})
	}
}
