package cli

import (
	"strings"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

var (
	crore    = decimal.NewFromInt(10_000_000)
	lakh     = decimal.NewFromInt(100_000)
	thousand = decimal.NewFromInt(1_000)
)

// FormatCurrency renders an amount in compact rupee notation: ₹1.2Cr, ₹3.5L,
// ₹4.0K or ₹950. Negative amounts keep the sign in front of the symbol.
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	var body string
	switch {
	case d.GreaterThanOrEqual(crore):
		body = d.Div(crore).StringFixed(1) + "Cr"
	case d.GreaterThanOrEqual(lakh):
		body = d.Div(lakh).StringFixed(1) + "L"
	case d.GreaterThanOrEqual(thousand):
		body = d.Div(thousand).StringFixed(1) + "K"
	default:
		body = d.StringFixed(0)
	}
	if body == "0" {
		sign = ""
	}
	return sign + rupee + body
}

// FormatAmount renders a whole-rupee amount with lakh/crore digit grouping,
// e.g. ₹12,34,567.
func FormatAmount(amount float64) string {
	digits := decimal.NewFromFloat(amount).Round(0).StringFixed(0)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if digits == "0" {
		sign = ""
	}
	return sign + rupee + groupIndian(digits)
}

// groupIndian groups the last three digits, then every two before them.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}
