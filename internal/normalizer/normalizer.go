package normalizer

import (
	"time"

	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/textutil"
)

// Normalizer turns listing entries into canonical records.
type Normalizer struct {
	location *time.Location
	now      func() time.Time
}

func New(location *time.Location) *Normalizer {
	if location == nil {
		location = time.UTC
	}
	return &Normalizer{
		location: location,
		now:      time.Now,
	}
}

// NormalizeEntry maps an entry validated by domain.ParseRawCatalogEntry.
func (n *Normalizer) NormalizeEntry(animal domain.AnimalType, entry *domain.RawCatalogEntry, categoryLabel string) *domain.ScrapedProduct {
	start := n.now().In(n.location)

	prices := ResolvePrices(entry.Prices)

	var weight *string
	if categoryLabel == domain.FoodCategoryLabel {
		weight = textutil.ExtractWeight(entry.DisplayName)
	}

	name := entry.DisplayName
	product := &domain.ScrapedProduct{
		AnimalCategory:       animal.String(),
		ProductCategory:      domain.NullableString(categoryLabel),
		Brand:                trimmed(entry.Brand),
		Name:                 &name,
		SoldBy:               trimmed(entry.SellerName),
		ConsideredWeight:     weight,
		PriceWithoutDiscount: prices.ListPrice,
		PublicPrice:          prices.DiscountedPrice,
		LoyaltyCardPrice:     prices.LoyaltyCardPrice,
		ExtractionStartTime:  start,
		ProductID:            entry.ProductID,
		SKU:                  entry.SkuID,
		URL:                  entry.URL,
	}

	end := n.now().In(n.location)
	if end.Before(start) {
		end = start
	}
	product.ExtractionEndTime = end

	return product
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return domain.NullableString(*s)
}
