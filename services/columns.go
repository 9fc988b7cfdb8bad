package services

import (
	"fmt"
	"strings"

	"quotedesk/formula"
)

// ColumnType is the data type of a product/quote-item column.
type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnNumber  ColumnType = "number"
	ColumnBoolean ColumnType = "boolean"
	ColumnDate    ColumnType = "date"
	ColumnFormula ColumnType = "formula"
)

// ColumnAlign is the horizontal alignment of a column's cells.
type ColumnAlign string

const (
	AlignStart  ColumnAlign = "start"
	AlignCenter ColumnAlign = "center"
	AlignEnd    ColumnAlign = "end"
)

// Column is a single field definition in an organization's column set.
type Column struct {
	Key      string      `json:"key"`
	Label    string      `json:"label"`
	Type     ColumnType  `json:"type"`
	Editable bool        `json:"editable"`
	Formula  string      `json:"formula,omitempty"`
	Align    ColumnAlign `json:"align,omitempty"`
	System   bool        `json:"system,omitempty"`
}

// System column keys. Their key and type never change.
const (
	KeyName     = "name"
	KeyPrice    = "price"
	KeyFamily   = "family"
	KeyQty      = "qty"
	KeyUnitType = "unit_type"
	KeyTotal    = "total"
)

// SystemColumns returns the built-in columns shared by the product editor,
// the template editor and the document renderer.
func SystemColumns() []Column {
	return []Column{
		{Key: KeyName, Label: "Item", Type: ColumnText, Editable: true, Align: AlignStart, System: true},
		{Key: KeyPrice, Label: "Unit Price", Type: ColumnNumber, Editable: true, Align: AlignEnd, System: true},
		{Key: KeyFamily, Label: "Family", Type: ColumnText, Editable: false, Align: AlignStart, System: true},
		{Key: KeyQty, Label: "Quantity", Type: ColumnNumber, Editable: true, Align: AlignEnd, System: true},
		{Key: KeyUnitType, Label: "Unit", Type: ColumnText, Editable: true, Align: AlignCenter, System: true},
		{Key: KeyTotal, Label: "Total", Type: ColumnNumber, Editable: false, Align: AlignEnd, System: true},
	}
}

// columnAliases maps legacy or alternate keys onto their canonical system key.
var columnAliases = map[string]string{
	"item":        KeyName,
	"quantity":    KeyQty,
	"unit_price":  KeyPrice,
	"unit":        KeyUnitType,
	"family_name": KeyFamily,
}

// CanonicalKey resolves an alias to its system key; other keys are returned unchanged.
func CanonicalKey(key string) string {
	if canonical, ok := columnAliases[key]; ok {
		return canonical
	}
	return key
}

// Registry is the ordered set of columns available to one organization.
type Registry struct {
	columns []Column
	byKey   map[string]int
}

// ResolveRegistry merges system and custom columns. System columns come first
// and always win; custom entries with an empty, reserved or repeated key are
// skipped.
func ResolveRegistry(system, custom []Column) *Registry {
	r := &Registry{byKey: make(map[string]int, len(system)+len(custom))}
	for _, c := range system {
		c.System = true
		r.add(c)
	}
	for _, c := range custom {
		c.Key = strings.TrimSpace(c.Key)
		if c.Key == "" {
			continue
		}
		if _, reserved := columnAliases[c.Key]; reserved {
			continue
		}
		if _, exists := r.byKey[c.Key]; exists {
			continue
		}
		c.System = false
		if c.Label == "" {
			c.Label = c.Key
		}
		if c.Type == "" {
			c.Type = ColumnText
		}
		r.add(c)
	}
	return r
}

// NewRegistry is shorthand for ResolveRegistry(SystemColumns(), custom).
func NewRegistry(custom []Column) *Registry {
	return ResolveRegistry(SystemColumns(), custom)
}

func (r *Registry) add(c Column) {
	r.byKey[c.Key] = len(r.columns)
	r.columns = append(r.columns, c)
}

// Columns returns the columns in registry order.
func (r *Registry) Columns() []Column {
	out := make([]Column, len(r.columns))
	copy(out, r.columns)
	return out
}

// Lookup finds a column by key, following aliases.
func (r *Registry) Lookup(key string) (Column, bool) {
	if i, ok := r.byKey[key]; ok {
		return r.columns[i], true
	}
	if i, ok := r.byKey[CanonicalKey(key)]; ok {
		return r.columns[i], true
	}
	return Column{}, false
}

// Keys returns every registered key in order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.columns))
	for i, c := range r.columns {
		keys[i] = c.Key
	}
	return keys
}

// CustomColumns returns only the organization-defined columns.
func (r *Registry) CustomColumns() []Column {
	var out []Column
	for _, c := range r.columns {
		if !c.System {
			out = append(out, c)
		}
	}
	return out
}

var validColumnTypes = map[ColumnType]bool{
	ColumnText: true, ColumnNumber: true, ColumnBoolean: true, ColumnDate: true, ColumnFormula: true,
}

var validAligns = map[ColumnAlign]bool{"": true, AlignStart: true, AlignCenter: true, AlignEnd: true}

// ValidateCustomColumns checks an organization's custom column list before it
// is saved.
func ValidateCustomColumns(custom []Column) error {
	reserved := map[string]bool{}
	for _, c := range SystemColumns() {
		reserved[c.Key] = true
	}
	for alias := range columnAliases {
		reserved[alias] = true
	}

	known := map[string]bool{}
	for k := range reserved {
		known[k] = true
	}
	for _, c := range custom {
		known[strings.TrimSpace(c.Key)] = true
	}

	seen := map[string]bool{}
	for i, c := range custom {
		key := strings.TrimSpace(c.Key)
		field := fmt.Sprintf("columns[%d].key", i)
		switch {
		case key == "":
			return NewValidationError(field, "column key is required")
		case reserved[key]:
			return NewValidationError(field, fmt.Sprintf("%q is a built-in column", key))
		case seen[key]:
			return NewValidationError(field, fmt.Sprintf("duplicate column key %q", key))
		}
		seen[key] = true

		if !validColumnTypes[c.Type] {
			return NewValidationError(fmt.Sprintf("columns[%d].type", i), fmt.Sprintf("unknown column type %q", c.Type))
		}
		if !validAligns[c.Align] {
			return NewValidationError(fmt.Sprintf("columns[%d].align", i), fmt.Sprintf("unknown alignment %q", c.Align))
		}
		if c.Type == ColumnFormula {
			if strings.TrimSpace(c.Formula) == "" {
				return NewValidationError(fmt.Sprintf("columns[%d].formula", i), "formula is required for formula columns")
			}
			expr, err := formula.Compile(c.Formula)
			if err != nil {
				return NewValidationError(fmt.Sprintf("columns[%d].formula", i), err.Error())
			}
			for _, name := range expr.Variables() {
				if !known[name] {
					return NewValidationError(fmt.Sprintf("columns[%d].formula", i), fmt.Sprintf("unknown column %q", name))
				}
			}
		} else if c.Formula != "" {
			return NewValidationError(fmt.Sprintf("columns[%d].formula", i), "only formula columns may carry a formula")
		}
	}
	return nil
}
