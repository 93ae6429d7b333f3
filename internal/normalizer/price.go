package normalizer

import (
	"math"
	"strconv"
	"strings"

	"sagafalabella/scraper/internal/domain"
)

// Prices are the three typed prices of a product.
type Prices struct {
	ListPrice        *float64
	DiscountedPrice  *float64
	LoyaltyCardPrice *float64
}

// ResolvePrices maps the storefront price entries onto typed prices. Entries
// are applied in order and later entries overwrite earlier ones. An entry whose
// first value is not a finite number is skipped.
func ResolvePrices(entries []domain.PriceEntry) Prices {
	var prices Prices

	for _, entry := range entries {
		price, ok := firstPrice(entry.Price)
		if !ok {
			continue
		}

		switch {
		case entry.Type == domain.PriceTypeNormal && entry.Crossed:
			prices.ListPrice = &price
		case entry.Type == domain.PriceTypeCMR && !entry.Crossed:
			prices.LoyaltyCardPrice = &price
		case (entry.Type == domain.PriceTypeEvent || entry.Type == domain.PriceTypeInternet) && !entry.Crossed:
			prices.DiscountedPrice = &price
		}

		// a lone uncrossed non-CMR price is the list price until a discount shows up
		if prices.DiscountedPrice == nil && !entry.Crossed && entry.Type != domain.PriceTypeCMR {
			listPrice := price
			prices.ListPrice = &listPrice
		}
	}

	return prices
}

func firstPrice(values domain.PriceValues) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(values[0]), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}
