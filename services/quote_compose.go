package services

import (
	"fmt"
	"math"
	"strings"

	"quotedesk/formula"
)

// DefaultUnitType is assigned to items materialized from the catalog.
const DefaultUnitType = "unit"

// cloneQuote returns a deep copy of q so edits never alias the caller's slices
// or custom field maps.
func cloneQuote(q Quote) Quote {
	out := q
	if q.Families == nil {
		return out
	}
	out.Families = make([]QuoteFamily, len(q.Families))
	for i, f := range q.Families {
		out.Families[i] = cloneFamily(f)
	}
	return out
}

func cloneFamily(f QuoteFamily) QuoteFamily {
	out := f
	out.Items = make([]QuoteItem, len(f.Items))
	for i, it := range f.Items {
		out.Items[i] = cloneItem(it)
	}
	return out
}

func cloneItem(it QuoteItem) QuoteItem {
	out := it
	if it.CustomFields != nil {
		out.CustomFields = make(map[string]any, len(it.CustomFields))
		for k, v := range it.CustomFields {
			out.CustomFields[k] = v
		}
	}
	return out
}

// NewQuoteItem materializes a catalog product as a quote line with qty 1.
func NewQuoteItem(p Product) QuoteItem {
	item := QuoteItem{
		ID:        p.ID,
		Name:      p.Name,
		Qty:       1,
		UnitPrice: p.Price,
		UnitType:  DefaultUnitType,
		Total:     CalcItemTotal(1, p.Price),
	}
	if len(p.CustomFields) > 0 {
		item.CustomFields = make(map[string]any, len(p.CustomFields))
		for k, v := range p.CustomFields {
			item.CustomFields[k] = v
		}
	}
	return item
}

// NewQuoteFamily snapshots a family and its current products as a quote section.
// The family's base margin is frozen into MarginApplied.
func NewQuoteFamily(sel FamilySelection) QuoteFamily {
	qf := QuoteFamily{
		FamilyID:      sel.Family.ID,
		FamilyName:    sel.Family.Name,
		Category:      sel.Family.Category,
		Items:         make([]QuoteItem, 0, len(sel.Products)),
		MarginApplied: sel.Family.BaseMargin,
	}
	for _, p := range sel.Products {
		qf.Items = append(qf.Items, NewQuoteItem(p))
	}
	qf.Subtotal = CalcFamilySubtotal(qf.Items)
	return qf
}

// AddFamilies appends one section per selection. Existing sections are untouched.
func AddFamilies(q Quote, selections []FamilySelection) Quote {
	out := cloneQuote(q)
	for _, sel := range selections {
		out.Families = append(out.Families, NewQuoteFamily(sel))
	}
	return Recompute(out)
}

// AddItem appends an item to the family at fi.
func AddItem(q Quote, fi int, item QuoteItem) (Quote, error) {
	if fi < 0 || fi >= len(q.Families) {
		return q, fmt.Errorf("%w: family %d of %d", ErrIndexOutOfRange, fi, len(q.Families))
	}
	if err := checkItemNumbers(item); err != nil {
		return q, err
	}
	out := cloneQuote(q)
	item = cloneItem(item)
	if item.UnitType == "" {
		item.UnitType = DefaultUnitType
	}
	item.Total = CalcItemTotal(item.Qty, item.UnitPrice)
	out.Families[fi].Items = append(out.Families[fi].Items, item)
	return Recompute(out), nil
}

// SetItemField sets one field of the item at (fi, ii). Editing qty or
// unit_price recomputes the item total in the same step. Keys that are not
// built-in fields are stored as custom fields; a nil value removes one.
func SetItemField(q Quote, fi, ii int, key string, value any) (Quote, error) {
	if fi < 0 || fi >= len(q.Families) {
		return q, fmt.Errorf("%w: family %d of %d", ErrIndexOutOfRange, fi, len(q.Families))
	}
	if ii < 0 || ii >= len(q.Families[fi].Items) {
		return q, fmt.Errorf("%w: item %d of %d", ErrIndexOutOfRange, ii, len(q.Families[fi].Items))
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return q, NewValidationError("field", "field key is required")
	}

	out := cloneQuote(q)
	item := &out.Families[fi].Items[ii]

	switch CanonicalKey(key) {
	case KeyName:
		item.Name = fmt.Sprint(valueOrEmpty(value))
	case KeyUnitType:
		item.UnitType = fmt.Sprint(valueOrEmpty(value))
	case KeyQty:
		n, err := formula.ToNumber(value)
		if err != nil {
			return q, NewValidationError(KeyQty, "quantity must be a number")
		}
		item.Qty = n
		item.Total = CalcItemTotal(item.Qty, item.UnitPrice)
	case KeyPrice:
		n, err := formula.ToNumber(value)
		if err != nil {
			return q, NewValidationError("unit_price", "unit price must be a number")
		}
		item.UnitPrice = n
		item.Total = CalcItemTotal(item.Qty, item.UnitPrice)
	case KeyTotal, KeyFamily, "id":
		return q, fmt.Errorf("%w: %s", ErrFieldNotEditable, key)
	default:
		if value == nil {
			delete(item.CustomFields, key)
			break
		}
		if item.CustomFields == nil {
			item.CustomFields = map[string]any{}
		}
		item.CustomFields[key] = value
	}

	return Recompute(out), nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func checkItemNumbers(item QuoteItem) error {
	if !finite(item.Qty) {
		return NewValidationError(KeyQty, "quantity must be a number")
	}
	if !finite(item.UnitPrice) {
		return NewValidationError("unit_price", "unit price must be a number")
	}
	return nil
}

func valueOrEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}

// RemoveItem removes the item at (fi, ii). An emptied family is kept.
func RemoveItem(q Quote, fi, ii int) (Quote, error) {
	if fi < 0 || fi >= len(q.Families) {
		return q, fmt.Errorf("%w: family %d of %d", ErrIndexOutOfRange, fi, len(q.Families))
	}
	if ii < 0 || ii >= len(q.Families[fi].Items) {
		return q, fmt.Errorf("%w: item %d of %d", ErrIndexOutOfRange, ii, len(q.Families[fi].Items))
	}
	out := cloneQuote(q)
	items := out.Families[fi].Items
	out.Families[fi].Items = append(items[:ii:ii], items[ii+1:]...)
	return Recompute(out), nil
}

// RemoveFamily removes the family at fi together with all its items. The
// removal is irreversible and must be confirmed by the caller.
func RemoveFamily(q Quote, fi int, confirmed bool) (Quote, error) {
	if fi < 0 || fi >= len(q.Families) {
		return q, fmt.Errorf("%w: family %d of %d", ErrIndexOutOfRange, fi, len(q.Families))
	}
	if !confirmed {
		return q, fmt.Errorf("%w: removing %q deletes %d items", ErrConfirmationRequired, q.Families[fi].FamilyName, len(q.Families[fi].Items))
	}
	out := cloneQuote(q)
	out.Families = append(out.Families[:fi:fi], out.Families[fi+1:]...)
	return Recompute(out), nil
}

// KeepMargins restores MarginApplied from stored for every family of q that
// was already on the stored quote, matched by family id.
func KeepMargins(q Quote, stored []QuoteFamily) Quote {
	frozen := make(map[string]float64, len(stored))
	for _, f := range stored {
		if f.FamilyID != "" {
			frozen[f.FamilyID] = f.MarginApplied
		}
	}
	out := cloneQuote(q)
	for i := range out.Families {
		if m, ok := frozen[out.Families[i].FamilyID]; ok {
			out.Families[i].MarginApplied = m
		}
	}
	return Recompute(out)
}

// SetCustomer replaces the customer snapshot.
func SetCustomer(q Quote, c Customer) Quote {
	out := cloneQuote(q)
	out.Customer = c
	return out
}

// Recompute refreshes every derived amount: item totals, family subtotals and
// the grand total. It is idempotent.
func Recompute(q Quote) Quote {
	out := cloneQuote(q)
	for fi := range out.Families {
		f := &out.Families[fi]
		for ii := range f.Items {
			f.Items[ii].Total = CalcItemTotal(f.Items[ii].Qty, f.Items[ii].UnitPrice)
		}
		f.Subtotal = CalcFamilySubtotal(f.Items)
	}
	out.TotalAmount = CalcQuoteTotal(out.Families)
	return out
}

// ValidateForSave checks the fields a quote needs before it is persisted.
func ValidateForSave(q Quote) error {
	if strings.TrimSpace(q.Customer.Name) == "" {
		return NewValidationError("customer_name", "customer name is required")
	}
	if len(q.Families) == 0 {
		return NewValidationError("families", "add at least one product family")
	}
	for _, f := range q.Families {
		if !finite(f.MarginApplied) {
			return NewValidationError("margin_applied", "margin must be a number")
		}
		for _, it := range f.Items {
			if err := checkItemNumbers(it); err != nil {
				return err
			}
		}
	}
	return nil
}
