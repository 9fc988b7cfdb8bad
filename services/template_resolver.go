package services

import (
	"fmt"
	"strings"
)

// TemplateColumn is one saved entry of a template. Label is denormalized at
// save time so the entry still renders after its column is deleted.
type TemplateColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Template is a named, ordered column selection for generated documents.
type Template struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Columns   []TemplateColumn `json:"columns"`
	IsDefault bool             `json:"is_default"`
}

// ColumnKind says how a resolved column obtains its cell values. It is decided
// once during resolution so the editor and the renderers never disagree.
type ColumnKind int

const (
	KindCustom ColumnKind = iota
	KindName
	KindQuantity
	KindPrice
	KindTotal
	KindUnit
	KindFamily
	KindFormula
)

var kindNames = map[ColumnKind]string{
	KindCustom:   "custom",
	KindName:     "name",
	KindQuantity: "quantity",
	KindPrice:    "price",
	KindTotal:    "total",
	KindUnit:     "unit",
	KindFamily:   "family",
	KindFormula:  "formula",
}

func (k ColumnKind) String() string { return kindNames[k] }

// MarshalText renders the kind by name in JSON payloads.
func (k ColumnKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Monetary reports whether values of this kind are currency amounts.
func (k ColumnKind) Monetary() bool { return k == KindPrice || k == KindTotal }

// ResolvedColumn is a column as shown by the template editor and drawn by
// the document renderers.
type ResolvedColumn struct {
	Key      string      `json:"key"`
	Label    string      `json:"label"`
	Selected bool        `json:"selected"`
	IsSystem bool        `json:"is_system"`
	Kind     ColumnKind  `json:"kind"`
	Type     ColumnType  `json:"type"`
	Formula  string      `json:"formula,omitempty"`
	Align    ColumnAlign `json:"align,omitempty"`
}

// DefaultColumnKeys is pre-selected when an organization has no saved template.
var DefaultColumnKeys = []string{KeyName, KeyFamily, KeyUnitType, KeyQty, KeyPrice, KeyTotal}

// DefaultTemplateColumns returns the first-use selection labelled from reg.
func DefaultTemplateColumns(reg *Registry) []TemplateColumn {
	out := make([]TemplateColumn, 0, len(DefaultColumnKeys))
	for _, key := range DefaultColumnKeys {
		col, _ := reg.Lookup(key)
		out = append(out, TemplateColumn{Key: key, Label: col.Label})
	}
	return out
}

func kindOf(key string, col Column, registered bool) ColumnKind {
	switch CanonicalKey(key) {
	case KeyName:
		return KindName
	case KeyQty:
		return KindQuantity
	case KeyPrice:
		return KindPrice
	case KeyTotal:
		return KindTotal
	case KeyUnitType:
		return KindUnit
	case KeyFamily:
		return KindFamily
	}
	if registered && col.Type == ColumnFormula {
		return KindFormula
	}
	return KindCustom
}

// ResolveTemplateColumns merges a saved column list with the registry. Saved
// entries come first in saved order and are selected; the remaining registry
// columns follow in registry order, unselected. Saved keys missing from the
// registry keep their saved label and are treated as custom text columns.
func ResolveTemplateColumns(saved []TemplateColumn, reg *Registry) []ResolvedColumn {
	consumed := make(map[string]bool, len(saved))
	out := make([]ResolvedColumn, 0, len(saved)+len(reg.columns))

	for _, sc := range saved {
		key := strings.TrimSpace(sc.Key)
		if key == "" {
			continue
		}
		col, registered := reg.Lookup(key)
		if registered {
			key = col.Key
		}
		if consumed[key] {
			continue
		}
		consumed[key] = true

		label := strings.TrimSpace(sc.Label)
		if label == "" {
			label = col.Label
		}
		if label == "" {
			label = key
		}

		rc := ResolvedColumn{
			Key:      key,
			Label:    label,
			Selected: true,
			IsSystem: registered && col.System,
			Kind:     kindOf(key, col, registered),
			Type:     ColumnText,
		}
		if registered {
			rc.Type = col.Type
			rc.Formula = col.Formula
			rc.Align = col.Align
		}
		out = append(out, rc)
	}

	for _, col := range reg.columns {
		if consumed[col.Key] {
			continue
		}
		out = append(out, ResolvedColumn{
			Key:      col.Key,
			Label:    col.Label,
			Selected: false,
			IsSystem: col.System,
			Kind:     kindOf(col.Key, col, true),
			Type:     col.Type,
			Formula:  col.Formula,
			Align:    col.Align,
		})
	}
	return out
}

// ResolveForTemplate resolves t against reg, falling back to the default
// selection when t is nil.
func ResolveForTemplate(t *Template, reg *Registry) []ResolvedColumn {
	if t == nil {
		return ResolveTemplateColumns(DefaultTemplateColumns(reg), reg)
	}
	return ResolveTemplateColumns(t.Columns, reg)
}

// SelectedColumns returns the selected columns in display order.
func SelectedColumns(cols []ResolvedColumn) []ResolvedColumn {
	var out []ResolvedColumn
	for _, c := range cols {
		if c.Selected {
			out = append(out, c)
		}
	}
	return out
}

// MoveColumn moves the column at index from to index to and returns the new
// order. The input slice is not modified and no selection state changes.
func MoveColumn(cols []ResolvedColumn, from, to int) ([]ResolvedColumn, error) {
	if from < 0 || from >= len(cols) || to < 0 || to >= len(cols) {
		return nil, fmt.Errorf("%w: move %d -> %d in %d columns", ErrIndexOutOfRange, from, to, len(cols))
	}
	out := make([]ResolvedColumn, 0, len(cols))
	moved := cols[from]
	for i, c := range cols {
		if i != from {
			out = append(out, c)
		}
	}
	out = append(out[:to], append([]ResolvedColumn{moved}, out[to:]...)...)
	return out, nil
}

// TemplateColumnsFromSelection converts an edited column list back to the
// saved form, keeping only selected entries in their current order.
func TemplateColumnsFromSelection(cols []ResolvedColumn) []TemplateColumn {
	var out []TemplateColumn
	for _, c := range cols {
		if c.Selected {
			out = append(out, TemplateColumn{Key: c.Key, Label: c.Label})
		}
	}
	return out
}

// ValidateTemplate checks a template before it is saved.
func ValidateTemplate(name string, columns []TemplateColumn) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", "template name is required")
	}
	if len(columns) == 0 {
		return NewValidationError("columns", "select at least one column")
	}
	seen := map[string]bool{}
	for i, c := range columns {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			return NewValidationError(fmt.Sprintf("columns[%d].key", i), "column key is required")
		}
		canonical := CanonicalKey(key)
		if seen[canonical] {
			return NewValidationError(fmt.Sprintf("columns[%d].key", i), fmt.Sprintf("duplicate column %q", key))
		}
		seen[canonical] = true
	}
	return nil
}
