package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"standard": CategoryStandard,
		"Business": CategoryBusiness,
		" SOCIAL ": CategorySocial,
	}
	for input, want := range cases {
		got, err := ParseCategory(input)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseCategory("industrial")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = ParseCategory("")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestDefaultTable(t *testing.T) {
	table := Default()

	assert.Equal(t, int64(1500), table.Lookup(CategoryStandard).PerUnitRate)
	assert.Equal(t, int64(2000), table.Lookup(CategoryBusiness).PerUnitRate)
	assert.Equal(t, int64(0), table.Lookup(CategorySocial).PerUnitRate)
	assert.Equal(t, int64(7000), table.Lookup(CategoryStandard).BaseFee)
	assert.Equal(t, 10, table.DueDay)
	assert.Equal(t, int64(5000), table.LateFee)
}

func TestLookup_PanicsOnUnknownCategory(t *testing.T) {
	table := Default()
	assert.Panics(t, func() {
		table.Lookup(Category("industrial"))
	})
}
