package services

import (
	"fmt"
	"math"
	"strings"
)

// DefaultCurrencyPrefix is printed before every monetary amount.
const DefaultCurrencyPrefix = "Rs."

// currencyPrefix is set once at startup from configuration.
var currencyPrefix = DefaultCurrencyPrefix

// SetCurrencyPrefix overrides the prefix used by FormatMoney. An empty prefix
// restores the default.
func SetCurrencyPrefix(p string) {
	p = strings.TrimSpace(p)
	if p == "" {
		p = DefaultCurrencyPrefix
	}
	currencyPrefix = p
}

// CurrencyPrefix returns the configured prefix.
func CurrencyPrefix() string { return currencyPrefix }

// FormatMoney formats an amount with the currency prefix, Indian digit
// grouping and exactly two decimals, e.g. "Rs. 1,23,456.78".
func FormatMoney(amount float64) string {
	return currencyPrefix + " " + FormatAmount(amount)
}

// FormatAmount formats an amount using the Indian numbering system where,
// after the rightmost 3 digits, digits are grouped in pairs
// (e.g., 1,23,45,678.90). The result always has 2 decimal places.
func FormatAmount(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrorMarker
	}
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)

	result := applyIndianGrouping(parts[0]) + "." + parts[1]
	if negative && raw != "0.00" {
		result = "-" + result
	}
	return result
}

// applyIndianGrouping inserts commas into an integer string using the
// Indian numbering system: the rightmost 3 digits form the first group,
// then every 2 digits form subsequent groups.
func applyIndianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]

	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}
	return result
}

// FormatQty prints whole quantities without decimals.
func FormatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}

// FormatPercent prints a margin fraction as a percentage, e.g. 0.15 -> "15%".
func FormatPercent(fraction float64) string {
	p := fraction * 100
	if math.Abs(p-math.Round(p)) < 1e-9 {
		return fmt.Sprintf("%.0f%%", math.Round(p))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", p), "0"), ".") + "%"
}
