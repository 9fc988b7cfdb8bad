package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateQuoteExcel writes doc to a single-sheet workbook using the same
// resolved cell text as the PDF.
func GenerateQuoteExcel(doc *QuoteDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := doc.QuoteID
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if sheet == "" {
		sheet = "Quote"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	ncols := len(doc.Columns)
	if ncols < 2 {
		ncols = 2
	}
	lastCol, err := excelize.ColumnNumberToName(ncols)
	if err != nil {
		return nil, fmt.Errorf("column name: %w", err)
	}
	for i, c := range doc.Columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := 14.0
		if c.Kind == KindName {
			width = 40
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", name, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#212529"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	alignStyles := map[ColumnAlign]int{}
	for _, a := range []ColumnAlign{AlignStart, AlignCenter, AlignEnd} {
		id, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Size: 10},
			Alignment: &excelize.Alignment{Horizontal: htmlAlign(a), WrapText: true, Vertical: "top"},
			Border:    thinBorders(),
		})
		if err != nil {
			return nil, fmt.Errorf("create cell style: %w", err)
		}
		alignStyles[a] = id
	}
	errorStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10, Color: "#C81E1E"},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create error style: %w", err)
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#ECECEC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary style: %w", err)
	}

	set := func(cell string, v any) {
		if s, ok := v.(string); ok {
			v = sanitizeExcelCell(s)
		}
		f.SetCellValue(sheet, cell, v)
	}
	cellName := func(c, r int) string {
		name, _ := excelize.CoordinatesToCellName(c, r)
		return name
	}

	r := 1
	set(cellName(1, r), doc.Org.Name)
	f.SetCellStyle(sheet, cellName(1, r), cellName(1, r), titleStyle)
	r++
	set(cellName(1, r), joinNonEmpty([]string{doc.Org.ContactNumber, doc.Org.Email, doc.Org.Address}, " | "))
	r += 2
	set(cellName(1, r), doc.Title+" "+doc.QuoteID)
	f.SetCellStyle(sheet, cellName(1, r), cellName(1, r), sectionStyle)
	r++
	set(cellName(1, r), "Date: "+doc.Date.Format("02 Jan 2006"))
	r++
	set(cellName(1, r), "Bill To: "+joinNonEmpty([]string{doc.Customer.Name, doc.Customer.Phone, doc.Customer.Email, doc.Customer.Address}, ", "))
	r += 2

	summary := func(label, value string) {
		labelEnd, _ := excelize.ColumnNumberToName(ncols - 1)
		from := fmt.Sprintf("A%d", r)
		to := fmt.Sprintf("%s%d", labelEnd, r)
		if from != to {
			f.MergeCell(sheet, from, to)
		}
		set(from, label)
		set(fmt.Sprintf("%s%d", lastCol, r), value)
		f.SetCellStyle(sheet, from, fmt.Sprintf("%s%d", lastCol, r), summaryStyle)
		r++
	}

	for _, sec := range doc.Sections {
		title := sec.Title
		if sec.Category != "" {
			title += " - " + sec.Category
		}
		set(cellName(1, r), title)
		f.SetCellStyle(sheet, cellName(1, r), cellName(1, r), sectionStyle)
		r++

		for i, c := range doc.Columns {
			set(cellName(i+1, r), c.Label)
		}
		if len(doc.Columns) > 0 {
			f.SetCellStyle(sheet, cellName(1, r), cellName(len(doc.Columns), r), headerStyle)
		}
		r++

		for _, cells := range sec.Rows {
			for i, c := range cells {
				name := cellName(i+1, r)
				set(name, c.Text)
				style := alignStyles[c.Align]
				if c.Error {
					style = errorStyle
				}
				f.SetCellStyle(sheet, name, name, style)
			}
			r++
		}

		summary("Subtotal", sec.Subtotal)
		if sec.ShowMargin {
			summary(sec.MarginLabel, sec.Margin)
			summary("Section Total", sec.Total)
		}
		r++
	}

	summary("Grand Total", doc.GrandText)
	set(cellName(1, r), "Amount in words: "+doc.AmountInWords)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1,
		}
	}
	return borders
}
