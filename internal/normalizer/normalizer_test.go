package normalizer

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagafalabella/scraper/internal/domain"
)

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestNormalize(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)

	start := time.Date(2025, 12, 24, 15, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Millisecond)

	n := New(lima)
	n.now = fixedClock(start, end)

	raw := json.RawMessage(`{
		"displayName": "Dog Chow Adultos Medianos 3kg",
		"skuId": "S2",
		"productId": "P2",
		"brand": "DOG CHOW",
		"sellerName": "Falabella",
		"url": "https://www.falabella.com.pe/falabella-pe/product/P2",
		"prices": [
			{"type": "normalPrice", "crossed": true, "price": ["100.00"]},
			{"type": "internetPrice", "crossed": false, "price": ["80.00"]},
			{"type": "cmrPrice", "crossed": false, "price": ["70.00"]}
		]
	}`)

	entry, err := domain.ParseRawCatalogEntry(raw)
	require.NoError(t, err)
	product := n.NormalizeEntry(domain.AnimalDog, entry, domain.FoodCategoryLabel)

	assert.Equal(t, "perro", product.AnimalCategory)
	require.NotNil(t, product.ProductCategory)
	assert.Equal(t, domain.FoodCategoryLabel, *product.ProductCategory)
	assert.Nil(t, product.ProductSubcategory)
	require.NotNil(t, product.ConsideredWeight)
	assert.Equal(t, "3 kg", *product.ConsideredWeight)
	assert.Equal(t, f(100), product.PriceWithoutDiscount)
	assert.Equal(t, f(80), product.PublicPrice)
	assert.Equal(t, f(70), product.LoyaltyCardPrice)
	assert.Equal(t, "DOG CHOW", *product.Brand)
	assert.Equal(t, "Falabella", *product.SoldBy)
	assert.Nil(t, product.PromotionTitle)
	assert.Nil(t, product.PromotionDescription)
	assert.Nil(t, product.ProductDescription)
	assert.Equal(t, "S2", product.SKU)
	assert.Equal(t, "P2", product.ProductID)
	assert.Equal(t, lima, product.ExtractionStartTime.Location())
	assert.True(t, product.ExtractionStartTime.Equal(start))
	assert.True(t, product.ExtractionEndTime.Equal(end))
	assert.False(t, product.ExtractionEndTime.Before(product.ExtractionStartTime))
}

func TestNormalizeWeightOnlyForFood(t *testing.T) {
	n := New(time.UTC)
	entry := &domain.RawCatalogEntry{
		DisplayName: "Cama para perro 5kg de relleno",
		SkuID:       "S9",
		ProductID:   "P9",
		URL:         "https://example.test/p9",
	}

	product := n.NormalizeEntry(domain.AnimalDog, entry, "Camas")
	assert.Nil(t, product.ConsideredWeight)
	assert.Nil(t, product.Brand)
	assert.Nil(t, product.SoldBy)
	assert.Equal(t, Prices{}, Prices{
		ListPrice:        product.PriceWithoutDiscount,
		DiscountedPrice:  product.PublicPrice,
		LoyaltyCardPrice: product.LoyaltyCardPrice,
	})
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing sku", raw: `{"displayName": "x", "productId": "p", "url": "u"}`},
		{name: "missing url", raw: `{"displayName": "x", "skuId": "s", "productId": "p"}`},
		{name: "wrong type", raw: `{"displayName": 12, "skuId": "s", "productId": "p", "url": "u"}`},
		{name: "not an object", raw: `"oops"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseRawCatalogEntry(json.RawMessage(tt.raw))
			assert.True(t, errors.Is(err, domain.ErrInvalidEntry))
		})
	}
}

func TestNormalizeEndNeverBeforeStart(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	n := New(time.UTC)
	n.now = fixedClock(start, start.Add(-time.Second))

	product := n.NormalizeEntry(domain.AnimalCat, &domain.RawCatalogEntry{
		DisplayName: "Arena 10kg", SkuID: "S", ProductID: "P", URL: "U",
	}, "Arena")
	assert.True(t, product.ExtractionEndTime.Equal(start))
}
