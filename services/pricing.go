// Package services provides the quote domain: columns, templates, pricing,
// composition and document rendering.
package services

func CalcItemTotal(qty, unitPrice float64) float64 {
	return qty * unitPrice
}

func CalcFamilySubtotal(items []QuoteItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Total
	}
	return sum
}

type SectionTotals struct {
	Subtotal      float64
	MarginPercent float64
	MarginAmount  float64
	Total         float64
}

func CalcSectionTotals(subtotal, margin float64) SectionTotals {
	amount := subtotal * margin
	return SectionTotals{
		Subtotal:      subtotal,
		MarginPercent: margin * 100,
		MarginAmount:  amount,
		Total:         subtotal + amount,
	}
}

func CalcQuoteTotal(families []QuoteFamily) float64 {
	var total float64
	for _, f := range families {
		total += CalcSectionTotals(f.Subtotal, f.MarginApplied).Total
	}
	return total
}
