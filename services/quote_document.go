package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"quotedesk/formula"
)

// ErrorMarker is shown in place of a cell value whose formula failed.
const ErrorMarker = "#ERR"

// DocumentTitle heads every generated quote.
const DocumentTitle = "QUOTATION"

// MaxDocumentColumns is the most columns a document table can hold.
const MaxDocumentColumns = 12

var monetaryHints = []string{"price", "total", "amount", "cost", "rate", "value", "margin"}

// isMonetary guesses from a formula column's key and label whether its result
// is a currency amount.
func isMonetary(col ResolvedColumn) bool {
	if col.Kind.Monetary() {
		return true
	}
	haystack := strings.ToLower(col.Key + " " + col.Label)
	for _, hint := range monetaryHints {
		if strings.Contains(haystack, hint) {
			return true
		}
	}
	return false
}

// FormulaContext builds the variables visible to a formula evaluated for one
// item: every registered column key defaulting to zero, the item's custom
// fields, the owning family's name, and the item's numeric fields.
func FormulaContext(reg *Registry, family QuoteFamily, item QuoteItem) map[string]any {
	vars := make(map[string]any, len(reg.columns)+len(item.CustomFields)+8)
	for _, key := range reg.Keys() {
		vars[key] = 0.0
	}
	for k, v := range item.CustomFields {
		vars[k] = v
	}
	vars[KeyName] = item.Name
	vars[KeyUnitType] = item.UnitType
	vars[KeyFamily] = family.FamilyName
	vars[KeyPrice] = item.UnitPrice
	vars["unit_price"] = item.UnitPrice
	vars[KeyQty] = item.Qty
	vars["quantity"] = item.Qty
	vars[KeyTotal] = CalcItemTotal(item.Qty, item.UnitPrice)
	return vars
}

// Cell is one rendered table cell.
type Cell struct {
	Text  string      `json:"text"`
	Align ColumnAlign `json:"align"`
	Error bool        `json:"error,omitempty"`
}

// CellResolver turns items into display strings for a fixed column set.
// Formulas are compiled once per column.
type CellResolver struct {
	reg      *Registry
	compiled map[string]*formula.Expr
}

// NewCellResolver prepares cols for resolution against reg. Formulas that do
// not compile are remembered as nil and resolve to ErrorMarker.
func NewCellResolver(reg *Registry, cols []ResolvedColumn) *CellResolver {
	r := &CellResolver{reg: reg, compiled: map[string]*formula.Expr{}}
	for _, c := range cols {
		if c.Kind != KindFormula {
			continue
		}
		expr, err := formula.Compile(c.Formula)
		if err != nil {
			expr = nil
		}
		r.compiled[c.Key] = expr
	}
	return r
}

// Resolve returns the cell for item under col.
func (r *CellResolver) Resolve(col ResolvedColumn, family QuoteFamily, item QuoteItem) Cell {
	cell := Cell{Align: cellAlign(col)}
	switch col.Kind {
	case KindName:
		cell.Text = item.Name
	case KindQuantity:
		cell.Text = FormatQty(item.Qty)
	case KindPrice:
		cell.Text = FormatMoney(item.UnitPrice)
	case KindTotal:
		cell.Text = FormatMoney(CalcItemTotal(item.Qty, item.UnitPrice))
	case KindUnit:
		cell.Text = strings.ToUpper(item.UnitType)
	case KindFamily:
		cell.Text = family.FamilyName
	case KindFormula:
		v, ok := r.evaluate(col, family, item)
		switch {
		case !ok:
			cell.Text = ErrorMarker
			cell.Error = true
		case isMonetary(col):
			cell.Text = FormatMoney(v)
		default:
			cell.Text = strconv.FormatFloat(v, 'f', 2, 64)
		}
	default:
		cell.Text = formatCustomValue(item.CustomFields[col.Key])
	}
	return cell
}

func (r *CellResolver) evaluate(col ResolvedColumn, family QuoteFamily, item QuoteItem) (float64, bool) {
	expr, ok := r.compiled[col.Key]
	if !ok {
		compiled, err := formula.Compile(col.Formula)
		if err != nil {
			return 0, false
		}
		expr = compiled
	}
	if expr == nil {
		return 0, false
	}
	v, err := expr.Eval(FormulaContext(r.reg, family, item))
	if err != nil {
		return 0, false
	}
	return v, true
}

func cellAlign(col ResolvedColumn) ColumnAlign {
	if col.Align != "" {
		return col.Align
	}
	switch col.Kind {
	case KindQuantity, KindPrice, KindTotal, KindFormula:
		return AlignEnd
	case KindUnit:
		return AlignCenter
	}
	if col.Type == ColumnNumber {
		return AlignEnd
	}
	return AlignStart
}

func formatCustomValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatFloat(val, 'f', 0, 64)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}

// DocumentSection is one family's table.
type DocumentSection struct {
	Title       string        `json:"title"`
	Category    string        `json:"category,omitempty"`
	Rows        [][]Cell      `json:"rows"`
	Totals      SectionTotals `json:"-"`
	ShowMargin  bool          `json:"show_margin"`
	Subtotal    string        `json:"subtotal"`
	MarginLabel string        `json:"margin_label,omitempty"`
	Margin      string        `json:"margin,omitempty"`
	Total       string        `json:"total"`
}

// QuoteDocument is a quote resolved against a column set and ready to draw.
// The PDF, HTML preview and spreadsheet exports all render from it.
type QuoteDocument struct {
	Org           Organization      `json:"organization"`
	Title         string            `json:"title"`
	QuoteID       string            `json:"quote_id"`
	Date          time.Time         `json:"date"`
	Customer      Customer          `json:"customer"`
	Columns       []ResolvedColumn  `json:"columns"`
	Sections      []DocumentSection `json:"sections"`
	GrandTotal    float64           `json:"grand_total"`
	GrandText     string            `json:"grand_total_text"`
	AmountInWords string            `json:"amount_in_words"`
}

// BuildQuoteDocument resolves every cell of q. Only selected columns are
// drawn; if none are selected the default columns are used. Columns past
// MaxDocumentColumns are dropped.
func BuildQuoteDocument(q Quote, org Organization, cols []ResolvedColumn, reg *Registry, now time.Time) *QuoteDocument {
	selected := SelectedColumns(cols)
	if len(selected) == 0 {
		selected = SelectedColumns(ResolveForTemplate(nil, reg))
	}
	if len(selected) > MaxDocumentColumns {
		selected = selected[:MaxDocumentColumns]
	}

	q = Recompute(q)
	resolver := NewCellResolver(reg, selected)

	date := q.CreatedAt
	if date.IsZero() {
		date = now
	}
	quoteID := q.DisplayID
	if quoteID == "" {
		quoteID = "DRAFT"
	}

	doc := &QuoteDocument{
		Org:           org,
		Title:         DocumentTitle,
		QuoteID:       quoteID,
		Date:          date,
		Customer:      q.Customer,
		Columns:       selected,
		Sections:      make([]DocumentSection, 0, len(q.Families)),
		GrandTotal:    q.TotalAmount,
		GrandText:     FormatMoney(q.TotalAmount),
		AmountInWords: AmountToWords(q.TotalAmount),
	}

	for _, fam := range q.Families {
		totals := CalcSectionTotals(fam.Subtotal, fam.MarginApplied)
		sec := DocumentSection{
			Title:      fam.FamilyName,
			Category:   fam.Category,
			Rows:       make([][]Cell, 0, len(fam.Items)),
			Totals:     totals,
			ShowMargin: fam.MarginApplied > 0,
			Subtotal:   FormatMoney(totals.Subtotal),
			Total:      FormatMoney(totals.Total),
		}
		if sec.ShowMargin {
			sec.MarginLabel = fmt.Sprintf("Margin (%s)", FormatPercent(fam.MarginApplied))
			sec.Margin = FormatMoney(totals.MarginAmount)
		}
		for _, item := range fam.Items {
			cells := make([]Cell, len(selected))
			for i, c := range selected {
				cells[i] = resolver.Resolve(c, fam, item)
			}
			sec.Rows = append(sec.Rows, cells)
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc
}
