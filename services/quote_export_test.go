package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func exportDoc(t *testing.T, rows int) *QuoteDocument {
	t.Helper()
	reg := NewRegistry([]Column{{Key: "bad", Label: "Bad", Type: ColumnFormula, Formula: "price / 0"}})
	var products []Product
	for i := 0; i < rows; i++ {
		products = append(products, Product{ID: "p", Name: "Panel Light", Price: 1250})
	}
	q := AddFamilies(Quote{DisplayID: "BLI-26-27-0007", Customer: Customer{Name: "Northwind <Traders>"}}, []FamilySelection{
		{Family: ProductFamily{Name: "Lighting", BaseMargin: 0.15}, Products: products},
		{Family: ProductFamily{Name: "Services"}, Products: []Product{{Name: "=HYPERLINK(\"x\")", Price: 10}}},
	})
	cols := ResolveTemplateColumns([]TemplateColumn{{Key: "name"}, {Key: "qty"}, {Key: "price"}, {Key: "bad"}, {Key: "total"}}, reg)
	return BuildQuoteDocument(q, Organization{Name: "Brightline", Email: "hi@example.com"}, cols, reg, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
}

func TestGenerateQuotePDF(t *testing.T) {
	tests := []struct {
		name string
		rows int
		logo Logo
	}{
		{"single page no logo", 3, Logo{}},
		{"multi page with placeholder", 90, PlaceholderLogo()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := GenerateQuotePDF(exportDoc(t, tt.rows), tt.logo)
			if err != nil {
				t.Fatalf("GenerateQuotePDF error: %v", err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF-")) {
				t.Errorf("output is not a PDF, starts with %q", data[:min(len(data), 8)])
			}
		})
	}
}

func TestRenderQuotePreview(t *testing.T) {
	doc := exportDoc(t, 90)
	pages := PlanLayout(doc, DefaultPageMetrics())

	var buf bytes.Buffer
	if err := RenderQuotePreview(doc, PlaceholderLogo()).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	html := buf.String()

	if got := strings.Count(html, `<section class="qd-page">`); got != len(pages) {
		t.Errorf("preview has %d pages, layout has %d", got, len(pages))
	}
	for _, frag := range []string{
		"Northwind &lt;Traders&gt;",
		"BLI-26-27-0007",
		"Margin (15%)",
		`class="qd-err"`,
		"data:image/png;base64,",
		"(continued)",
	} {
		if !strings.Contains(html, frag) {
			t.Errorf("preview missing %q", frag)
		}
	}
	if strings.Contains(html, "<Traders>") {
		t.Error("customer name was not escaped")
	}
}

func TestGenerateQuoteExcel(t *testing.T) {
	data, err := GenerateQuoteExcel(exportDoc(t, 2))
	if err != nil {
		t.Fatalf("GenerateQuoteExcel error: %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != "BLI-26-27-0007" {
		t.Errorf("sheet name = %q", sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}

	found := map[string]bool{}
	for _, r := range rows {
		for _, c := range r {
			found[c] = true
		}
	}
	for _, want := range []string{"Brightline", "Panel Light", ErrorMarker, "Rs. 2,500.00", "Grand Total", `'=HYPERLINK("x")`} {
		if !found[want] {
			t.Errorf("workbook missing cell %q", want)
		}
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"plain":  "plain",
		"=1+1":   "'=1+1",
		"+cmd":   "'+cmd",
		"-2":     "'-2",
		"@SUM()": "'@SUM()",
	}
	for in, want := range tests {
		if got := sanitizeExcelCell(in); got != want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", in, got, want)
		}
	}
}
