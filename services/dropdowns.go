package services

import "strings"

// UnitTypeOptions is the list offered by the item editor's unit picker. Any
// other free-text unit is still accepted.
var UnitTypeOptions = []string{
	"unit",
	"nos",
	"set",
	"pair",
	"box",
	"lot",
	"sqft",
	"sqm",
	"rmt",
	"kg",
	"ltr",
	"hour",
	"day",
	"month",
	"lumpsum",
}

// NormalizeUnitType trims and lowercases a unit, defaulting blanks to
// DefaultUnitType.
func NormalizeUnitType(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	if u == "" {
		return DefaultUnitType
	}
	return u
}
