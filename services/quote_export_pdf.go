package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfHeaderBg   = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfWhite      = &props.Color{Red: 255, Green: 255, Blue: 255}
	pdfMuted      = &props.Color{Red: 90, Green: 90, Blue: 90}
	pdfStripeBg   = &props.Color{Red: 245, Green: 245, Blue: 245}
	pdfSummaryBg  = &props.Color{Red: 236, Green: 236, Blue: 236}
	pdfErrorColor = &props.Color{Red: 200, Green: 30, Blue: 30}
)

// GenerateQuotePDF renders doc as an A4 PDF. The header and footer repeat on
// every page and page breaks follow PlanLayout.
func GenerateQuotePDF(doc *QuoteDocument, logo Logo) ([]byte, error) {
	pm := DefaultPageMetrics()
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(pm.LeftMargin).
		WithTopMargin(pm.TopMargin).
		WithRightMargin(pm.RightMargin).
		WithMaxGridSize(pm.GridSize).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterHeader(quoteHeaderRows(doc, logo, pm)...); err != nil {
		return nil, fmt.Errorf("failed to register PDF header: %w", err)
	}
	if err := m.RegisterFooter(quoteFooterRows(doc, pm)...); err != nil {
		return nil, fmt.Errorf("failed to register PDF footer: %w", err)
	}

	spans := ColumnSpans(doc.Columns, pm.GridSize)
	for i, lp := range PlanLayout(doc, pm) {
		rows := make([]core.Row, 0, len(lp.Blocks))
		for _, b := range lp.Blocks {
			rows = append(rows, pdfBlockRow(doc, b, spans, pm))
		}
		if i == 0 {
			m.AddRows(rows...)
			continue
		}
		m.AddPages(page.New().Add(rows...))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return out.GetBytes(), nil
}

// quoteHeaderRows builds the repeating header. Its heights add up to
// PageMetrics.HeaderHeight.
func quoteHeaderRows(doc *QuoteDocument, logo Logo, pm PageMetrics) []core.Row {
	grid := pm.GridSize
	titleSpan := grid * 5 / 12
	logoSpan := 0
	if !logo.Empty() {
		logoSpan = grid / 6
	}
	orgCol := col.New(grid - titleSpan - logoSpan)

	top := row.New(22)
	if logoSpan > 0 {
		top.Add(col.New(logoSpan).Add(
			image.NewFromBytes(logo.Data, logo.Ext, props.Rect{Center: true, Percent: 90}),
		))
	}
	top.Add(
		orgCol.Add(
			text.New(doc.Org.Name, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Left}),
			text.New(joinNonEmpty([]string{doc.Org.ContactNumber, doc.Org.Email}, "  |  "), props.Text{
				Top: 7, Size: 8, Align: align.Left, Color: pdfMuted,
			}),
			text.New(doc.Org.Address, props.Text{Top: 12, Size: 8, Align: align.Left, Color: pdfMuted}),
		),
		col.New(titleSpan).Add(
			text.New(doc.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Right}),
			text.New("Quote No: "+doc.QuoteID, props.Text{Top: 9, Size: 9, Align: align.Right, Color: pdfMuted}),
			text.New("Date: "+doc.Date.Format("02 Jan 2006"), props.Text{Top: 14, Size: 9, Align: align.Right, Color: pdfMuted}),
		),
	)

	rule := row.New(1).Add(col.New(grid).WithStyle(&props.Cell{BackgroundColor: pdfHeaderBg}))

	return []core.Row{
		top,
		row.New(pm.HeaderHeight - 22 - 1 - 4),
		rule,
		row.New(4),
	}
}

func quoteFooterRows(doc *QuoteDocument, pm PageMetrics) []core.Row {
	return []core.Row{
		row.New(pm.FooterHeight).Add(
			col.New(pm.GridSize).Add(
				text.New(fmt.Sprintf("%s  |  %s", doc.Org.Name, doc.QuoteID), props.Text{
					Top:   3,
					Size:  7,
					Align: align.Left,
					Color: &props.Color{Red: 140, Green: 140, Blue: 140},
				}),
			),
		),
	}
}

func pdfAlign(a ColumnAlign) align.Type {
	switch a {
	case AlignEnd:
		return align.Right
	case AlignCenter:
		return align.Center
	}
	return align.Left
}

// pdfBlockRow draws one planned band.
func pdfBlockRow(doc *QuoteDocument, b LayoutBlock, spans []int, pm PageMetrics) core.Row {
	grid := pm.GridSize
	switch b.Kind {
	case BlockCustomer:
		c := doc.Customer
		return row.New(b.Height).Add(
			col.New(grid).Add(
				text.New("Bill To", props.Text{Size: 8, Style: fontstyle.Bold, Color: pdfMuted}),
				text.New(c.Name, props.Text{Top: 5, Size: 10, Style: fontstyle.Bold}),
				text.New(joinNonEmpty([]string{c.Phone, c.Email}, "  |  "), props.Text{Top: 11, Size: 8, Color: pdfMuted}),
				text.New(c.Address, props.Text{Top: 16, Size: 8, Color: pdfMuted}),
			),
		)

	case BlockSectionTitle:
		sec := doc.Sections[b.Section]
		title := sec.Title
		if sec.Category != "" {
			title += " - " + sec.Category
		}
		if b.Continued {
			title += " (continued)"
		}
		return row.New(b.Height).Add(
			col.New(grid).Add(text.New(title, props.Text{Top: 2, Size: 10, Style: fontstyle.Bold})),
		)

	case BlockTableHeader:
		cells := make([]core.Col, len(doc.Columns))
		for i, c := range doc.Columns {
			cells[i] = col.New(spans[i]).Add(
				text.New(c.Label, props.Text{
					Top:   1.5,
					Left:  1,
					Right: 1,
					Size:  8,
					Style: fontstyle.Bold,
					Align: pdfAlign(cellAlign(c)),
					Color: pdfWhite,
				}),
			).WithStyle(&props.Cell{BackgroundColor: pdfHeaderBg})
		}
		return row.New(b.Height).Add(cells...)

	case BlockItemRow:
		cells := doc.Sections[b.Section].Rows[b.Row]
		out := make([]core.Col, len(cells))
		for i, c := range cells {
			tp := props.Text{Top: 1.5, Left: 1, Right: 1, Size: 8, Align: pdfAlign(c.Align)}
			if c.Error {
				tp.Color = pdfErrorColor
				tp.Style = fontstyle.Bold
			}
			cc := col.New(spans[i]).Add(text.New(c.Text, tp))
			if b.Row%2 == 1 {
				cc = cc.WithStyle(&props.Cell{BackgroundColor: pdfStripeBg})
			}
			out[i] = cc
		}
		return row.New(b.Height).Add(out...)

	case BlockSubtotal:
		sec := doc.Sections[b.Section]
		return summaryRow(b.Height, grid, "Subtotal", sec.Subtotal, false)

	case BlockMargin:
		sec := doc.Sections[b.Section]
		return summaryRow(b.Height, grid, sec.MarginLabel, sec.Margin, false)

	case BlockSectionTotal:
		sec := doc.Sections[b.Section]
		return summaryRow(b.Height, grid, "Section Total", sec.Total, true)

	case BlockGrandTotal:
		return row.New(b.Height).Add(
			col.New(grid*2/3).Add(
				text.New("Grand Total", props.Text{Top: 2.5, Size: 11, Style: fontstyle.Bold, Align: align.Right, Color: pdfWhite}),
			).WithStyle(&props.Cell{BackgroundColor: pdfHeaderBg}),
			col.New(grid-grid*2/3).Add(
				text.New(doc.GrandText, props.Text{Top: 2.5, Right: 1, Size: 11, Style: fontstyle.Bold, Align: align.Right, Color: pdfWhite}),
			).WithStyle(&props.Cell{BackgroundColor: pdfHeaderBg}),
		)

	case BlockAmountWords:
		return row.New(b.Height).Add(
			col.New(grid).Add(
				text.New("Amount in words: "+doc.AmountInWords, props.Text{Top: 2, Size: 8, Style: fontstyle.Italic}),
			),
		)
	}
	return row.New(b.Height)
}

func summaryRow(height float64, grid int, label, value string, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	cell := &props.Cell{BackgroundColor: pdfSummaryBg}
	return row.New(height).Add(
		col.New(grid*2/3).Add(
			text.New(label, props.Text{Top: 1.5, Size: 8, Style: style, Align: align.Right}),
		).WithStyle(cell),
		col.New(grid-grid*2/3).Add(
			text.New(value, props.Text{Top: 1.5, Right: 1, Size: 8, Style: style, Align: align.Right}),
		).WithStyle(cell),
	)
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(parts []string, sep string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return ""
	}
	result := out[0]
	for _, p := range out[1:] {
		result += sep + p
	}
	return result
}
