package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sagafalabella/scraper/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestResolvePrices(t *testing.T) {
	tests := []struct {
		name     string
		entries  []domain.PriceEntry
		expected Prices
	}{
		{
			name: "list, online and loyalty prices",
			entries: []domain.PriceEntry{
				{Type: domain.PriceTypeNormal, Crossed: true, Price: domain.PriceValues{"100"}},
				{Type: domain.PriceTypeInternet, Crossed: false, Price: domain.PriceValues{"80"}},
				{Type: domain.PriceTypeCMR, Crossed: false, Price: domain.PriceValues{"70"}},
			},
			expected: Prices{ListPrice: f(100), DiscountedPrice: f(80), LoyaltyCardPrice: f(70)},
		},
		{
			name:     "no entries",
			entries:  nil,
			expected: Prices{},
		},
		{
			name: "only malformed entries",
			entries: []domain.PriceEntry{
				{Type: domain.PriceTypeNormal, Crossed: true, Price: domain.PriceValues{"abc"}},
				{Type: domain.PriceTypeInternet, Price: domain.PriceValues{}},
				{Type: domain.PriceTypeCMR, Price: nil},
				{Type: domain.PriceTypeEvent, Price: domain.PriceValues{""}},
			},
			expected: Prices{},
		},
		{
			name: "single uncrossed normal price is the list price",
			entries: []domain.PriceEntry{
				{Type: domain.PriceTypeNormal, Crossed: false, Price: domain.PriceValues{"59.9"}},
			},
			expected: Prices{ListPrice: f(59.9)},
		},
		{
			name: "malformed entry skipped, rest kept",
			entries: []domain.PriceEntry{
				{Type: domain.PriceTypeNormal, Crossed: true, Price: domain.PriceValues{"1,299.90"}},
				{Type: domain.PriceTypeEvent, Crossed: false, Price: domain.PriceValues{"89.90"}},
			},
			expected: Prices{DiscountedPrice: f(89.90)},
		},
		{
			name: "uncrossed price before the discount overwrites list price",
			entries: []domain.PriceEntry{
				{Type: domain.PriceTypeNormal, Crossed: true, Price: domain.PriceValues{"120"}},
				{Type: domain.PriceTypeNormal, Crossed: false, Price: domain.PriceValues{"110"}},
			},
			expected: Prices{ListPrice: f(110)},
		},
		{
			name: "crossed cmr price ignored",
			entries: []domain.PriceEntry{
				{Type: domain.PriceTypeCMR, Crossed: true, Price: domain.PriceValues{"50"}},
			},
			expected: Prices{},
		},
		{
			name: "non finite values skipped",
			entries: []domain.PriceEntry{
				{Type: domain.PriceTypeInternet, Price: domain.PriceValues{"NaN"}},
				{Type: domain.PriceTypeCMR, Price: domain.PriceValues{"Inf"}},
			},
			expected: Prices{},
		},
		{
			name: "only the first value of an entry is read",
			entries: []domain.PriceEntry{
				{Type: domain.PriceTypeInternet, Price: domain.PriceValues{"45.5", "99"}},
			},
			expected: Prices{DiscountedPrice: f(45.5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				got := ResolvePrices(tt.entries)
				assert.Equal(t, tt.expected, got)
			})
		})
	}
}
