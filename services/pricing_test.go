package services

import (
	"math"
	"testing"
)

func TestCalcItemTotal(t *testing.T) {
	tests := []struct {
		name      string
		qty       float64
		unitPrice float64
		expect    float64
	}{
		{"basic multiplication", 2, 100, 200},
		{"zero qty", 0, 100, 0},
		{"zero price", 5, 0, 0},
		{"decimal values", 2.5, 100.50, 251.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcItemTotal(tt.qty, tt.unitPrice)
			if got != tt.expect {
				t.Errorf("CalcItemTotal(%v, %v) = %v, want %v", tt.qty, tt.unitPrice, got, tt.expect)
			}
		})
	}
}

func TestCalcFamilySubtotal(t *testing.T) {
	items := []QuoteItem{{Total: 200}, {Total: 30.5}, {Total: 0}}
	if got := CalcFamilySubtotal(items); got != 230.5 {
		t.Errorf("CalcFamilySubtotal = %v, want 230.5", got)
	}
	if got := CalcFamilySubtotal(nil); got != 0 {
		t.Errorf("CalcFamilySubtotal(nil) = %v, want 0", got)
	}
}

func TestCalcSectionTotals(t *testing.T) {
	tests := []struct {
		name       string
		subtotal   float64
		margin     float64
		wantAmount float64
		wantTotal  float64
	}{
		{"fifteen percent", 200, 0.15, 30, 230},
		{"no margin", 50, 0, 0, 50},
		{"empty section", 0, 0.25, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcSectionTotals(tt.subtotal, tt.margin)
			if math.Abs(got.MarginAmount-tt.wantAmount) > 0.001 {
				t.Errorf("MarginAmount = %v, want %v", got.MarginAmount, tt.wantAmount)
			}
			if math.Abs(got.Total-tt.wantTotal) > 0.001 {
				t.Errorf("Total = %v, want %v", got.Total, tt.wantTotal)
			}
			if got.Subtotal != tt.subtotal {
				t.Errorf("Subtotal = %v, want %v", got.Subtotal, tt.subtotal)
			}
		})
	}
}

func TestCalcQuoteTotal(t *testing.T) {
	families := []QuoteFamily{
		{Subtotal: 200, MarginApplied: 0.15},
		{Subtotal: 50, MarginApplied: 0},
	}
	if got := CalcQuoteTotal(families); math.Abs(got-280) > 0.001 {
		t.Errorf("CalcQuoteTotal = %v, want 280", got)
	}
	if got := CalcQuoteTotal(nil); got != 0 {
		t.Errorf("CalcQuoteTotal(nil) = %v, want 0", got)
	}
}
