package services

import (
	"math"
	"strings"
)

// AmountToWords spells out an amount in the Indian numbering system, e.g.
// 1234.5 -> "One Thousand Two Hundred and Thirty Four Rupees and Fifty Paise Only".
func AmountToWords(amount float64) string {
	if amount < 0 {
		return "Minus " + AmountToWords(-amount)
	}

	paiseTotal := int64(math.Round(amount * 100))
	rupees := paiseTotal / 100
	paise := paiseTotal % 100

	var sb strings.Builder
	if rupees == 0 {
		sb.WriteString("Zero")
	} else {
		sb.WriteString(convertToIndianWords(rupees))
	}
	sb.WriteString(" Rupees")
	if paise > 0 {
		sb.WriteString(" and ")
		sb.WriteString(convertUnder100(paise))
		sb.WriteString(" Paise")
	}
	sb.WriteString(" Only")
	return sb.String()
}

func convertToIndianWords(n int64) string {
	if n == 0 {
		return ""
	}

	var parts []string

	if n >= 10000000 {
		parts = append(parts, convertToIndianWords(n/10000000)+" Crore")
		n %= 10000000
	}
	if n >= 100000 {
		parts = append(parts, convertUnder100(n/100000)+" Lakh")
		n %= 100000
	}
	if n >= 1000 {
		parts = append(parts, convertUnder100(n/1000)+" Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, ones[n/100]+" Hundred")
		n %= 100
	}
	if n > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and "+convertUnder100(n))
		} else {
			parts = append(parts, convertUnder100(n))
		}
	}

	return strings.Join(parts, " ")
}

func convertUnder100(n int64) string {
	if n < 20 {
		return ones[n]
	}
	result := tens[n/10]
	if n%10 != 0 {
		result += " " + ones[n%10]
	}
	return result
}

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}
