package services

import (
	"errors"
	"math"
	"testing"
)

func sampleSelections() []FamilySelection {
	return []FamilySelection{
		{
			Family: ProductFamily{ID: "fam_light", Name: "Lighting", Category: "Electrical", BaseMargin: 0.15},
			Products: []Product{
				{ID: "p_lamp", Name: "Desk Lamp", Price: 100, CustomFields: map[string]any{"brand": "Lumo"}},
			},
		},
		{
			Family: ProductFamily{ID: "fam_svc", Name: "Services", BaseMargin: 0},
			Products: []Product{
				{ID: "p_fit", Name: "Fitting", Price: 50},
			},
		},
	}
}

func TestCompose_EndToEndTotals(t *testing.T) {
	q := AddFamilies(Quote{}, sampleSelections())

	q, err := SetItemField(q, 0, 0, "qty", 2)
	if err != nil {
		t.Fatalf("SetItemField qty: %v", err)
	}

	fam := q.Families[0]
	if fam.Items[0].Total != 200 {
		t.Errorf("item total = %v, want 200", fam.Items[0].Total)
	}
	if fam.Subtotal != 200 {
		t.Errorf("subtotal = %v, want 200", fam.Subtotal)
	}
	st := CalcSectionTotals(fam.Subtotal, fam.MarginApplied)
	if math.Abs(st.MarginAmount-30) > 1e-9 || math.Abs(st.Total-230) > 1e-9 {
		t.Errorf("section totals = %+v, want margin 30 total 230", st)
	}
	if math.Abs(q.TotalAmount-280) > 1e-9 {
		t.Errorf("TotalAmount = %v, want 280", q.TotalAmount)
	}
}

func TestNewQuoteItem_Defaults(t *testing.T) {
	p := Product{ID: "p1", Name: "Chair", Price: 75, CustomFields: map[string]any{"brand": "Oak"}}
	item := NewQuoteItem(p)

	if item.Qty != 1 || item.UnitType != DefaultUnitType || item.Total != 75 {
		t.Errorf("NewQuoteItem = %+v", item)
	}
	p.CustomFields["brand"] = "Changed"
	if item.CustomFields["brand"] != "Oak" {
		t.Error("item custom fields alias the product's map")
	}
}

func TestNewQuoteFamily_FreezesMargin(t *testing.T) {
	sel := sampleSelections()[0]
	qf := NewQuoteFamily(sel)
	sel.Family.BaseMargin = 0.5
	if qf.MarginApplied != 0.15 {
		t.Errorf("MarginApplied = %v, want 0.15", qf.MarginApplied)
	}
}

func TestSetItemField_TotalFollowsQtyAndPrice(t *testing.T) {
	q := AddFamilies(Quote{}, sampleSelections())

	edits := []struct {
		key   string
		value any
	}{
		{"qty", "3"},
		{"unit_price", 40.5},
		{"quantity", 4},
		{"price", "12.25"},
	}
	for _, e := range edits {
		var err error
		q, err = SetItemField(q, 0, 0, e.key, e.value)
		if err != nil {
			t.Fatalf("SetItemField(%s): %v", e.key, err)
		}
		it := q.Families[0].Items[0]
		if it.Total != it.Qty*it.UnitPrice {
			t.Errorf("after %s: total %v != qty %v * price %v", e.key, it.Total, it.Qty, it.UnitPrice)
		}
	}
	if q.Families[0].Items[0].Total != 49 {
		t.Errorf("final total = %v, want 49", q.Families[0].Items[0].Total)
	}
}

func TestSetItemField_Errors(t *testing.T) {
	q := AddFamilies(Quote{}, sampleSelections())

	tests := []struct {
		name   string
		fi, ii int
		key    string
		value  any
		target error
	}{
		{"bad family", 5, 0, "qty", 1, ErrIndexOutOfRange},
		{"bad item", 0, 9, "qty", 1, ErrIndexOutOfRange},
		{"non-numeric qty", 0, 0, "qty", "lots", ErrValidation},
		{"NaN qty", 0, 0, "qty", "NaN", ErrValidation},
		{"infinite price", 0, 0, "unit_price", "Inf", ErrValidation},
		{"signed infinity qty", 0, 0, "qty", "+Infinity", ErrValidation},
		{"total is derived", 0, 0, "total", 10, ErrFieldNotEditable},
		{"family is fixed", 0, 0, "family", "x", ErrFieldNotEditable},
		{"blank key", 0, 0, " ", 1, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SetItemField(q, tt.fi, tt.ii, tt.key, tt.value)
			if !errors.Is(err, tt.target) {
				t.Fatalf("err = %v, want %v", err, tt.target)
			}
			if got.Families[0].Items[0].Qty != 1 {
				t.Error("failed edit changed the quote")
			}
		})
	}
}

func TestSetItemField_CustomFields(t *testing.T) {
	q := AddFamilies(Quote{}, sampleSelections())

	q2, err := SetItemField(q, 0, 0, "warranty_years", 3.0)
	if err != nil {
		t.Fatalf("set custom: %v", err)
	}
	if q2.Families[0].Items[0].CustomFields["warranty_years"] != 3.0 {
		t.Errorf("custom field not set: %v", q2.Families[0].Items[0].CustomFields)
	}
	if _, ok := q.Families[0].Items[0].CustomFields["warranty_years"]; ok {
		t.Error("edit mutated the original quote")
	}

	q3, _ := SetItemField(q2, 0, 0, "brand", nil)
	if _, ok := q3.Families[0].Items[0].CustomFields["brand"]; ok {
		t.Error("nil value did not delete the custom field")
	}
}

func TestRemoveItem_KeepsEmptyFamily(t *testing.T) {
	q := AddFamilies(Quote{}, sampleSelections())

	q, err := RemoveItem(q, 0, 0)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(q.Families) != 2 {
		t.Fatalf("families = %d, want 2", len(q.Families))
	}
	if len(q.Families[0].Items) != 0 || q.Families[0].Subtotal != 0 {
		t.Errorf("emptied family = %+v", q.Families[0])
	}
	if q.TotalAmount != 50 {
		t.Errorf("TotalAmount = %v, want 50", q.TotalAmount)
	}
}

func TestRemoveFamily_RequiresConfirmation(t *testing.T) {
	q := AddFamilies(Quote{}, sampleSelections())

	if _, err := RemoveFamily(q, 0, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("err = %v, want ErrConfirmationRequired", err)
	}
	q, err := RemoveFamily(q, 0, true)
	if err != nil {
		t.Fatalf("RemoveFamily: %v", err)
	}
	if len(q.Families) != 1 || q.Families[0].FamilyName != "Services" {
		t.Errorf("families after removal = %+v", q.Families)
	}
	if q.TotalAmount != 50 {
		t.Errorf("TotalAmount = %v, want 50", q.TotalAmount)
	}
}

func TestAddItem(t *testing.T) {
	q := AddFamilies(Quote{}, sampleSelections())
	q, err := AddItem(q, 1, QuoteItem{Name: "Cabling", Qty: 10, UnitPrice: 2.5})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	it := q.Families[1].Items[1]
	if it.UnitType != DefaultUnitType || it.Total != 25 {
		t.Errorf("added item = %+v", it)
	}
	if q.Families[1].Subtotal != 75 {
		t.Errorf("subtotal = %v, want 75", q.Families[1].Subtotal)
	}
	if _, err := AddItem(q, 2, QuoteItem{}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := AddItem(q, 0, QuoteItem{Name: "Bad", Qty: 1, UnitPrice: math.Inf(1)}); !errors.Is(err, ErrValidation) {
		t.Errorf("infinite price: err = %v, want ErrValidation", err)
	}
}

func TestKeepMargins(t *testing.T) {
	stored := AddFamilies(Quote{}, sampleSelections())
	edited := cloneQuote(stored)
	edited.Families[0].MarginApplied = 0.9
	edited.Families = append(edited.Families, QuoteFamily{FamilyID: "fam_new", MarginApplied: 0.3})

	got := KeepMargins(edited, stored.Families)
	if got.Families[0].MarginApplied != stored.Families[0].MarginApplied {
		t.Errorf("stored family margin = %v, want %v", got.Families[0].MarginApplied, stored.Families[0].MarginApplied)
	}
	if got.Families[2].MarginApplied != 0.3 {
		t.Errorf("new family margin = %v, want 0.3", got.Families[2].MarginApplied)
	}
	if edited.Families[0].MarginApplied != 0.9 {
		t.Error("KeepMargins modified its input")
	}
	if got.TotalAmount != Recompute(got).TotalAmount {
		t.Error("KeepMargins did not recompute totals")
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	q := AddFamilies(Quote{}, sampleSelections())
	q.Families[0].Items[0].Qty = 7
	q.Families[0].Items[0].Total = 1

	once := Recompute(q)
	twice := Recompute(once)
	if once.TotalAmount != twice.TotalAmount {
		t.Errorf("TotalAmount changed on second Recompute: %v -> %v", once.TotalAmount, twice.TotalAmount)
	}
	if once.Families[0].Items[0].Total != 700 {
		t.Errorf("item total = %v, want 700", once.Families[0].Items[0].Total)
	}
}

func TestValidateForSave(t *testing.T) {
	withFamilies := AddFamilies(Quote{}, sampleSelections())
	nanQty := cloneQuote(SetCustomer(withFamilies, Customer{Name: "Acme"}))
	nanQty.Families[0].Items[0].Qty = math.NaN()

	tests := []struct {
		name    string
		q       Quote
		wantErr string
	}{
		{"missing customer", withFamilies, "customer_name"},
		{"missing families", Quote{Customer: Customer{Name: "Acme"}}, "families"},
		{"valid", SetCustomer(withFamilies, Customer{Name: "Acme"}), ""},
		{"non-finite qty", nanQty, "qty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForSave(tt.q)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.wantErr {
				t.Fatalf("err = %v, want validation error on %s", err, tt.wantErr)
			}
		})
	}
}
