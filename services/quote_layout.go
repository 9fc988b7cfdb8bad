package services

import (
	"math"
	"unicode/utf8"
)

// BlockKind identifies one horizontal band of a laid-out document body.
type BlockKind int

const (
	BlockCustomer BlockKind = iota
	BlockSectionTitle
	BlockTableHeader
	BlockItemRow
	BlockSubtotal
	BlockMargin
	BlockSectionTotal
	BlockSpacer
	BlockGrandTotal
	BlockAmountWords
)

// LayoutBlock is a band placed on a page. Section and Row index into the
// document; Row is -1 for bands that are not item rows.
type LayoutBlock struct {
	Kind      BlockKind
	Section   int
	Row       int
	Height    float64
	Continued bool
}

// LayoutPage is the ordered body content of one page.
type LayoutPage struct {
	Blocks []LayoutBlock
	Used   float64
}

// PageMetrics describes page geometry and band heights in millimetres.
type PageMetrics struct {
	PageWidth    float64
	PageHeight   float64
	LeftMargin   float64
	RightMargin  float64
	TopMargin    float64
	BottomMargin float64

	HeaderHeight float64
	FooterHeight float64

	CustomerHeight     float64
	SectionTitleHeight float64
	TableHeaderHeight  float64
	RowHeight          float64
	SummaryRowHeight   float64
	SpacerHeight       float64
	GrandTotalHeight   float64
	WordsHeight        float64

	// CharWidth is the average glyph width of body text, used to estimate
	// how many lines a cell wraps onto.
	CharWidth float64
	GridSize  int
	// Slack is subtracted from the body height so the planner breaks pages
	// before the PDF backend would.
	Slack float64
}

// DefaultPageMetrics matches the A4 portrait PDF produced by GenerateQuotePDF.
func DefaultPageMetrics() PageMetrics {
	return PageMetrics{
		PageWidth:          210,
		PageHeight:         297,
		LeftMargin:         10,
		RightMargin:        10,
		TopMargin:          10,
		BottomMargin:       20.0025,
		HeaderHeight:       38,
		FooterHeight:       8,
		CustomerHeight:     24,
		SectionTitleHeight: 9,
		TableHeaderHeight:  8,
		RowHeight:          7,
		SummaryRowHeight:   7,
		SpacerHeight:       5,
		GrandTotalHeight:   10,
		WordsHeight:        8,
		CharWidth:          1.6,
		GridSize:           24,
		Slack:              2,
	}
}

// ContentWidth is the printable width between the side margins.
func (pm PageMetrics) ContentWidth() float64 {
	return pm.PageWidth - pm.LeftMargin - pm.RightMargin
}

// BodyHeight is the vertical space left for body bands on every page.
func (pm PageMetrics) BodyHeight() float64 {
	return pm.PageHeight - pm.TopMargin - pm.BottomMargin - pm.HeaderHeight - pm.FooterHeight - pm.Slack
}

var kindWeights = map[ColumnKind]int{
	KindName:     4,
	KindFamily:   2,
	KindQuantity: 1,
	KindUnit:     1,
	KindPrice:    2,
	KindTotal:    2,
	KindFormula:  2,
	KindCustom:   2,
}

// ColumnSpans splits grid units across cols by weight. Every column gets at
// least one unit and the spans always sum to grid when len(cols) <= grid.
func ColumnSpans(cols []ResolvedColumn, grid int) []int {
	n := len(cols)
	if n == 0 {
		return nil
	}
	spans := make([]int, n)
	if n >= grid {
		for i := range spans {
			spans[i] = 1
		}
		return spans
	}

	total := 0
	for _, c := range cols {
		total += kindWeights[c.Kind]
	}
	remaining := grid - n
	used := 0
	frac := make([]float64, n)
	for i, c := range cols {
		exact := float64(remaining) * float64(kindWeights[c.Kind]) / float64(total)
		whole := int(math.Floor(exact))
		spans[i] = 1 + whole
		frac[i] = exact - float64(whole)
		used += whole
	}
	for left := remaining - used; left > 0; left-- {
		best := 0
		for i := 1; i < n; i++ {
			if frac[i] > frac[best] {
				best = i
			}
		}
		spans[best]++
		frac[best] = -1
	}
	return spans
}

// rowHeight estimates the height of an item row from how far its longest
// cell wraps.
func rowHeight(cells []Cell, spans []int, pm PageMetrics) float64 {
	lines := 1
	for i, c := range cells {
		if i >= len(spans) {
			break
		}
		width := float64(spans[i]) / float64(pm.GridSize) * pm.ContentWidth()
		perLine := int((width - 2) / pm.CharWidth)
		if perLine < 1 {
			perLine = 1
		}
		n := (utf8.RuneCountInString(c.Text) + perLine - 1) / perLine
		if n > lines {
			lines = n
		}
	}
	if lines == 1 {
		return pm.RowHeight
	}
	return pm.RowHeight + float64(lines-1)*pm.RowHeight*0.6
}

type planner struct {
	pm    PageMetrics
	avail float64
	pages []LayoutPage
}

func (p *planner) current() *LayoutPage { return &p.pages[len(p.pages)-1] }

func (p *planner) newPage() { p.pages = append(p.pages, LayoutPage{}) }

func (p *planner) fits(h float64) bool { return p.current().Used+h <= p.avail }

func (p *planner) put(blocks ...LayoutBlock) {
	cur := p.current()
	for _, b := range blocks {
		cur.Blocks = append(cur.Blocks, b)
		cur.Used += b.Height
	}
}

// keep places blocks together, starting a new page when they do not fit and
// the current page already has content.
func (p *planner) keep(blocks ...LayoutBlock) {
	var h float64
	for _, b := range blocks {
		h += b.Height
	}
	if !p.fits(h) && len(p.current().Blocks) > 0 {
		p.newPage()
	}
	p.put(blocks...)
}

// PlanLayout assigns the body bands of doc to pages. A section title and its
// table header are always placed together with the first item row, or with
// the subtotal when the section is empty, so a header is never left alone at
// the bottom of a page. Sections that continue on a new page repeat their
// title and table header.
func PlanLayout(doc *QuoteDocument, pm PageMetrics) []LayoutPage {
	p := &planner{pm: pm, avail: pm.BodyHeight(), pages: []LayoutPage{{}}}
	spans := ColumnSpans(doc.Columns, pm.GridSize)

	p.put(LayoutBlock{Kind: BlockCustomer, Section: -1, Row: -1, Height: pm.CustomerHeight})

	for si, sec := range doc.Sections {
		title := LayoutBlock{Kind: BlockSectionTitle, Section: si, Row: -1, Height: pm.SectionTitleHeight}
		header := LayoutBlock{Kind: BlockTableHeader, Section: si, Row: -1, Height: pm.TableHeaderHeight}

		summary := []LayoutBlock{{Kind: BlockSubtotal, Section: si, Row: -1, Height: pm.SummaryRowHeight}}
		if sec.ShowMargin {
			summary = append(summary,
				LayoutBlock{Kind: BlockMargin, Section: si, Row: -1, Height: pm.SummaryRowHeight},
				LayoutBlock{Kind: BlockSectionTotal, Section: si, Row: -1, Height: pm.SummaryRowHeight},
			)
		}

		if len(sec.Rows) == 0 {
			p.keep(append([]LayoutBlock{title, header}, summary...)...)
		} else {
			first := LayoutBlock{Kind: BlockItemRow, Section: si, Row: 0, Height: rowHeight(sec.Rows[0], spans, pm)}
			p.keep(title, header, first)
			for ri := 1; ri < len(sec.Rows); ri++ {
				row := LayoutBlock{Kind: BlockItemRow, Section: si, Row: ri, Height: rowHeight(sec.Rows[ri], spans, pm)}
				if p.fits(row.Height) {
					p.put(row)
					continue
				}
				p.newPage()
				contTitle, contHeader := title, header
				contTitle.Continued = true
				contHeader.Continued = true
				p.put(contTitle, contHeader, row)
			}
			p.keep(summary...)
		}

		if si < len(doc.Sections)-1 {
			spacer := LayoutBlock{Kind: BlockSpacer, Section: si, Row: -1, Height: pm.SpacerHeight}
			if p.fits(spacer.Height) {
				p.put(spacer)
			}
		}
	}

	p.keep(
		LayoutBlock{Kind: BlockGrandTotal, Section: -1, Row: -1, Height: pm.GrandTotalHeight},
		LayoutBlock{Kind: BlockAmountWords, Section: -1, Row: -1, Height: pm.WordsHeight},
	)
	return p.pages
}
