package services

import (
	"encoding/base64"
	"fmt"

	"github.com/a-h/templ"
)

type previewGroupKind int

const (
	groupCustomer previewGroupKind = iota
	groupTitle
	groupTable
	groupSpacer
	groupGrand
	groupWords
)

// previewPage is one planned page regrouped for HTML: consecutive bands of a
// section share one table.
type previewPage struct {
	Number int
	Groups []previewGroup
}

type previewGroup struct {
	Kind   previewGroupKind
	Title  string
	Header bool
	Rows   []previewRow
	// Span is the colspan of a summary label cell.
	Span int
}

type previewRow struct {
	Cells   []Cell
	Stripe  bool
	Summary bool
	Label   string
	Value   string
}

// RenderQuotePreview renders doc as HTML pages that break where the PDF does.
func RenderQuotePreview(doc *QuoteDocument, logo Logo) templ.Component {
	return quotePreview(doc, logo, previewPages(doc, PlanLayout(doc, DefaultPageMetrics())))
}

func previewPages(doc *QuoteDocument, layout []LayoutPage) []previewPage {
	span := max(len(doc.Columns)-1, 1)
	pages := make([]previewPage, 0, len(layout))
	for i, lp := range layout {
		page := previewPage{Number: i + 1}
		var table *previewGroup
		flush := func() {
			if table != nil {
				page.Groups = append(page.Groups, *table)
				table = nil
			}
		}
		openTable := func() *previewGroup {
			if table == nil {
				table = &previewGroup{Kind: groupTable, Span: span}
			}
			return table
		}

		for _, b := range lp.Blocks {
			switch b.Kind {
			case BlockCustomer:
				page.Groups = append(page.Groups, previewGroup{Kind: groupCustomer})
			case BlockSectionTitle:
				flush()
				page.Groups = append(page.Groups, previewGroup{Kind: groupTitle, Title: sectionTitle(doc.Sections[b.Section], b.Continued)})
			case BlockTableHeader:
				flush()
				openTable().Header = true
			case BlockItemRow:
				t := openTable()
				t.Rows = append(t.Rows, previewRow{Cells: doc.Sections[b.Section].Rows[b.Row], Stripe: b.Row%2 == 1})
			case BlockSubtotal, BlockMargin, BlockSectionTotal:
				sec := doc.Sections[b.Section]
				label, value := "Subtotal", sec.Subtotal
				if b.Kind == BlockMargin {
					label, value = sec.MarginLabel, sec.Margin
				} else if b.Kind == BlockSectionTotal {
					label, value = "Section Total", sec.Total
				}
				t := openTable()
				t.Rows = append(t.Rows, previewRow{Summary: true, Label: label, Value: value})
			case BlockSpacer:
				flush()
				page.Groups = append(page.Groups, previewGroup{Kind: groupSpacer})
			case BlockGrandTotal:
				flush()
				page.Groups = append(page.Groups, previewGroup{Kind: groupGrand})
			case BlockAmountWords:
				flush()
				page.Groups = append(page.Groups, previewGroup{Kind: groupWords})
			}
		}
		flush()
		pages = append(pages, page)
	}
	return pages
}

func sectionTitle(sec DocumentSection, continued bool) string {
	title := sec.Title
	if sec.Category != "" {
		title += " - " + sec.Category
	}
	if continued {
		title += " (continued)"
	}
	return title
}

func logoDataURL(logo Logo) string {
	return "data:" + logo.MIME() + ";base64," + base64.StdEncoding.EncodeToString(logo.Data)
}

func pageLabel(n, total int) string {
	return fmt.Sprintf("Page %d of %d", n, total)
}

func htmlAlign(a ColumnAlign) string {
	switch a {
	case AlignEnd:
		return "right"
	case AlignCenter:
		return "center"
	}
	return "left"
}
