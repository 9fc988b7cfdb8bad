package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// DefaultQuotePrefix is used when an organization has not set its own.
const DefaultQuotePrefix = "QT"

// GetFiscalYear returns the Indian fiscal year string for a given date.
// Indian fiscal year runs April to March.
// Jan 2026 → "25-26", May 2026 → "26-27"
func GetFiscalYear(t time.Time) string {
	year := t.Year()
	startYear := year
	if t.Month() < time.April {
		startYear = year - 1
	}
	return fmt.Sprintf("%02d-%02d", startYear%100, (startYear+1)%100)
}

func formatQuoteNumber(prefix, fiscalYear string, sequence int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, fiscalYear, sequence)
}

// GenerateQuoteNumber returns the next display id for an organization.
// Format: {prefix}-{fiscal_year}-{sequence}, sequence counted per
// organization per fiscal year.
func GenerateQuoteNumber(app core.App, orgID, prefix string, now time.Time) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultQuotePrefix
	}
	fiscalYear := GetFiscalYear(now)
	stem := fmt.Sprintf("%s-%s-", prefix, fiscalYear)

	existing, err := app.FindRecordsByFilter(
		"quotes",
		"organization = {:org} && display_id ~ {:stem}",
		"",
		0,
		0,
		map[string]any{"org": orgID, "stem": stem + "%"},
	)
	if err != nil {
		return "", fmt.Errorf("count quotes: %w", err)
	}
	return formatQuoteNumber(prefix, fiscalYear, len(existing)+1), nil
}
