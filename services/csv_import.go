package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ImportRowError is a field-level problem on one uploaded row. Row is
// 1-based and counts the header row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ProductImportResult is the outcome of parsing an uploaded product sheet.
type ProductImportResult struct {
	TotalRows    int              `json:"total_rows"`
	Products     []Product        `json:"-"`
	Errors       []ImportRowError `json:"errors"`
	Unrecognized []string         `json:"unrecognized_columns,omitempty"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// ParseProductFile picks the parser from the file extension.
func ParseProductFile(filename string, r io.Reader) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseExcel(r)
	}
	return nil, nil, NewValidationError("file", "upload a .csv or .xlsx file")
}

// mapHeadersToColumns maps uploaded headers to column keys by label or key,
// case-insensitively. Formula columns are derived and never imported.
func mapHeadersToColumns(headers []string, reg *Registry) ([]string, []string) {
	lookup := map[string]string{}
	for _, c := range reg.Columns() {
		if c.Type == ColumnFormula || c.Key == KeyTotal || c.Key == KeyQty || c.Key == KeyUnitType {
			continue
		}
		lookup[strings.ToLower(c.Key)] = c.Key
		lookup[strings.ToLower(strings.TrimSpace(c.Label))] = c.Key
	}
	for alias, key := range columnAliases {
		if _, ok := lookup[strings.ToLower(key)]; ok {
			lookup[alias] = key
		}
	}

	mapped := make([]string, len(headers))
	var unrecognized []string
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(h), "*")))
		if key, ok := lookup[norm]; ok {
			mapped[i] = key
			continue
		}
		unrecognized = append(unrecognized, h)
	}
	return mapped, unrecognized
}

// parseMoney accepts "1,250.50", "Rs. 1250" and plain numbers.
func parseMoney(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, CurrencyPrefix())
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}

// ImportProducts turns parsed rows into products. families maps a lowercased
// family name to its id. Rows with errors are reported and skipped.
func ImportProducts(headers []string, rows [][]string, reg *Registry, families map[string]string) ProductImportResult {
	mapped, unrecognized := mapHeadersToColumns(headers, reg)
	res := ProductImportResult{TotalRows: len(rows), Unrecognized: unrecognized}

	for ri, row := range rows {
		rowNum := ri + 2
		p := Product{}
		var rowErrs []ImportRowError
		blank := true

		for ci, key := range mapped {
			if key == "" || ci >= len(row) {
				continue
			}
			raw := strings.TrimSpace(row[ci])
			if raw == "" {
				continue
			}
			blank = false
			col, _ := reg.Lookup(key)

			switch key {
			case KeyName:
				p.Name = raw
			case KeyPrice:
				v, err := parseMoney(raw)
				if err != nil {
					rowErrs = append(rowErrs, ImportRowError{Row: rowNum, Field: col.Label, Message: "price must be a number"})
					continue
				}
				p.Price = v
			case KeyFamily:
				id, ok := families[strings.ToLower(raw)]
				if !ok {
					rowErrs = append(rowErrs, ImportRowError{Row: rowNum, Field: col.Label, Message: fmt.Sprintf("unknown family %q", raw)})
					continue
				}
				p.FamilyID = id
			default:
				v, err := coerceCustomValue(col.Type, raw)
				if err != nil {
					rowErrs = append(rowErrs, ImportRowError{Row: rowNum, Field: col.Label, Message: err.Error()})
					continue
				}
				if p.CustomFields == nil {
					p.CustomFields = map[string]any{}
				}
				p.CustomFields[key] = v
			}
		}

		if blank {
			res.TotalRows--
			continue
		}
		if p.Name == "" {
			rowErrs = append(rowErrs, ImportRowError{Row: rowNum, Field: "Item", Message: "name is required"})
		}
		if len(rowErrs) > 0 {
			res.Errors = append(res.Errors, rowErrs...)
			continue
		}
		res.Products = append(res.Products, p)
	}
	return res
}

func coerceCustomValue(t ColumnType, raw string) (any, error) {
	switch t {
	case ColumnNumber:
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		return v, nil
	case ColumnBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "y", "1":
			return true, nil
		case "false", "no", "n", "0":
			return false, nil
		}
		return nil, fmt.Errorf("must be yes or no")
	case ColumnDate:
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return nil, fmt.Errorf("must be a date (YYYY-MM-DD)")
		}
		return raw, nil
	}
	return raw, nil
}
