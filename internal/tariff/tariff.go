package tariff

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies a customer for rating purposes.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryBusiness Category = "business"
	CategorySocial   Category = "social"
)

var ErrInvalidCategory = errors.New("invalid_category")

func ParseCategory(value string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryStandard:
		return CategoryStandard, nil
	case CategoryBusiness:
		return CategoryBusiness, nil
	case CategorySocial:
		return CategorySocial, nil
	default:
		return "", ErrInvalidCategory
	}
}

// Rate is the per-category charge basis. Amounts are rupiah.
type Rate struct {
	PerUnitRate int64 `mapstructure:"perUnitRate" json:"per_unit_rate"`
	BaseFee     int64 `mapstructure:"baseFee" json:"base_fee"`
}

// Table maps categories to rates and carries the late-payment constants.
type Table struct {
	Rates   map[Category]Rate `mapstructure:"rates" json:"rates"`
	DueDay  int               `mapstructure:"dueDay" json:"due_day"`
	LateFee int64             `mapstructure:"lateFee" json:"late_fee"`
}

// Default returns the cooperative's standing tariff.
func Default() Table {
	return Table{
		Rates: map[Category]Rate{
			CategoryStandard: {PerUnitRate: 1500, BaseFee: 7000},
			CategoryBusiness: {PerUnitRate: 2000, BaseFee: 7000},
			CategorySocial:   {PerUnitRate: 0, BaseFee: 7000},
		},
		DueDay:  10,
		LateFee: 5000,
	}
}

// Lookup resolves a category to its rate. An unknown category is a
// programming error, not a runtime condition.
func (t Table) Lookup(c Category) Rate {
	rate, ok := t.Rates[c]
	if !ok {
		panic(fmt.Sprintf("tariff: unknown category %q", c))
	}
	return rate
}
