package services

import (
	"fmt"
	"testing"
)

func layoutDoc(sectionRows ...int) *QuoteDocument {
	reg := NewRegistry(nil)
	cols := SelectedColumns(ResolveForTemplate(nil, reg))
	doc := &QuoteDocument{Columns: cols}
	for si, n := range sectionRows {
		sec := DocumentSection{Title: fmt.Sprintf("Section %d", si), ShowMargin: si%2 == 0}
		for r := 0; r < n; r++ {
			row := make([]Cell, len(cols))
			for i := range row {
				row[i] = Cell{Text: "x"}
			}
			sec.Rows = append(sec.Rows, row)
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc
}

func TestColumnSpans_SumToGrid(t *testing.T) {
	reg := NewRegistry(nil)
	all := ResolveTemplateColumns(nil, reg)
	for n := 1; n <= len(all); n++ {
		spans := ColumnSpans(all[:n], 24)
		sum := 0
		for _, s := range spans {
			if s < 1 {
				t.Errorf("n=%d: span %d < 1", n, s)
			}
			sum += s
		}
		if sum != 24 {
			t.Errorf("n=%d: spans %v sum to %d, want 24", n, spans, sum)
		}
	}
	if ColumnSpans(nil, 24) != nil {
		t.Error("no columns should give nil spans")
	}
}

func TestPlanLayout_NoOrphanHeaders(t *testing.T) {
	pm := DefaultPageMetrics()
	doc := layoutDoc(3, 40, 0, 25, 60)
	pages := PlanLayout(doc, pm)

	if len(pages) < 3 {
		t.Fatalf("expected several pages, got %d", len(pages))
	}
	for pi, p := range pages {
		if p.Used > pm.BodyHeight() {
			t.Errorf("page %d overflows: %.1f > %.1f", pi, p.Used, pm.BodyHeight())
		}
		for bi, b := range p.Blocks {
			switch b.Kind {
			case BlockSectionTitle:
				if bi+1 >= len(p.Blocks) || p.Blocks[bi+1].Kind != BlockTableHeader {
					t.Errorf("page %d: section title not followed by its table header", pi)
				}
			case BlockTableHeader:
				if bi+1 >= len(p.Blocks) {
					t.Errorf("page %d: table header is the last block", pi)
					continue
				}
				next := p.Blocks[bi+1].Kind
				if next != BlockItemRow && next != BlockSubtotal {
					t.Errorf("page %d: table header followed by %v", pi, next)
				}
			}
		}
	}
}

func TestPlanLayout_ContinuationRepeatsHeader(t *testing.T) {
	pages := PlanLayout(layoutDoc(80), DefaultPageMetrics())
	if len(pages) < 2 {
		t.Fatalf("expected a continuation page, got %d pages", len(pages))
	}
	first := pages[1].Blocks
	if first[0].Kind != BlockSectionTitle || !first[0].Continued {
		t.Errorf("continuation page starts with %+v", first[0])
	}
	if first[1].Kind != BlockTableHeader || !first[1].Continued {
		t.Errorf("continuation header = %+v", first[1])
	}

	rows := 0
	for _, p := range pages {
		for _, b := range p.Blocks {
			if b.Kind == BlockItemRow {
				rows++
			}
		}
	}
	if rows != 80 {
		t.Errorf("placed %d rows, want 80", rows)
	}
}

func TestPlanLayout_TotalsStayTogether(t *testing.T) {
	pages := PlanLayout(layoutDoc(27), DefaultPageMetrics())
	last := pages[len(pages)-1].Blocks
	n := len(last)
	if last[n-2].Kind != BlockGrandTotal || last[n-1].Kind != BlockAmountWords {
		t.Errorf("last blocks = %v, %v", last[n-2].Kind, last[n-1].Kind)
	}

	for pi, p := range pages {
		for bi, b := range p.Blocks {
			if b.Kind == BlockMargin && (bi == 0 || p.Blocks[bi-1].Kind != BlockSubtotal) {
				t.Errorf("page %d: margin row separated from subtotal", pi)
			}
		}
	}
}

func TestRowHeight_Wraps(t *testing.T) {
	pm := DefaultPageMetrics()
	spans := []int{4, 20}
	short := rowHeight([]Cell{{Text: "a"}, {Text: "b"}}, spans, pm)
	if short != pm.RowHeight {
		t.Errorf("short row = %v, want %v", short, pm.RowHeight)
	}
	long := rowHeight([]Cell{{Text: "a very long product description that wraps"}, {Text: "b"}}, spans, pm)
	if long <= pm.RowHeight {
		t.Errorf("long row = %v, want > %v", long, pm.RowHeight)
	}
}
