package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type PriceType string

const (
	PriceTypeNormal   PriceType = "normalPrice"
	PriceTypeCMR      PriceType = "cmrPrice"
	PriceTypeEvent    PriceType = "eventPrice"
	PriceTypeInternet PriceType = "internetPrice"
)

// PriceValues holds the raw price strings of one price entry. Numeric JSON
// values are kept as their literal text; anything else becomes an empty string.
type PriceValues []string

func (p *PriceValues) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// null or a non-array value means no prices
		*p = nil
		return nil
	}

	values := make(PriceValues, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			values = append(values, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err == nil {
			values = append(values, n.String())
			continue
		}
		values = append(values, "")
	}
	*p = values
	return nil
}

type PriceEntry struct {
	Type    PriceType   `json:"type"`
	Crossed bool        `json:"crossed"`
	Price   PriceValues `json:"price"`
}

// RawCatalogEntry is one product as returned by the listing endpoint.
type RawCatalogEntry struct {
	DisplayName string       `json:"displayName"`
	SkuID       string       `json:"skuId"`
	ProductID   string       `json:"productId"`
	Brand       *string      `json:"brand"`
	SellerName  *string      `json:"sellerName"`
	URL         string       `json:"url"`
	Prices      []PriceEntry `json:"prices"`
}

// Validate reports the required fields the entry is missing.
func (e *RawCatalogEntry) Validate() error {
	var missing []string
	if strings.TrimSpace(e.DisplayName) == "" {
		missing = append(missing, "displayName")
	}
	if strings.TrimSpace(e.SkuID) == "" {
		missing = append(missing, "skuId")
	}
	if strings.TrimSpace(e.ProductID) == "" {
		missing = append(missing, "productId")
	}
	if strings.TrimSpace(e.URL) == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidEntry, strings.Join(missing, ", "))
	}
	return nil
}

// ParseRawCatalogEntry decodes and validates a single listing entry.
func ParseRawCatalogEntry(data []byte) (*RawCatalogEntry, error) {
	var entry RawCatalogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if err := entry.Validate(); err != nil {
		return &entry, err
	}
	return &entry, nil
}

// ScrapedProduct is the canonical record carried through every stage.
// JSON names follow the columns of the relational table.
type ScrapedProduct struct {
	AnimalCategory       string    `json:"categoria_animal"`
	ProductCategory      *string   `json:"categoria_producto"`
	ProductSubcategory   *string   `json:"sub_categoria_producto"`
	Brand                *string   `json:"marca"`
	Name                 *string   `json:"nombre"`
	SoldBy               *string   `json:"vendido_por"`
	PromotionTitle       *string   `json:"titulo_promocion"`
	PromotionDescription *string   `json:"descripcion_promocion"`
	ProductDescription   *string   `json:"descripcion_producto"`
	ConsideredWeight     *string   `json:"peso_considerado"`
	PriceWithoutDiscount *float64  `json:"precio_sin_descuento"`
	PublicPrice          *float64  `json:"precio_publico"`
	LoyaltyCardPrice     *float64  `json:"precio_cmr"`
	ExtractionStartTime  time.Time `json:"fecha_extraccion_inicio"`
	ExtractionEndTime    time.Time `json:"fecha_extraccion_final"`
	ProductID            string    `json:"product_id"`
	SKU                  string    `json:"sku"`
	URL                  string    `json:"url"`
}

// NeedsDetails reports whether any field filled by the detail page is still empty.
func (p *ScrapedProduct) NeedsDetails() bool {
	return p.ProductCategory == nil || p.ProductSubcategory == nil || p.ProductDescription == nil
}

// ApplyDetails fills only the fields that are still nil.
func (p *ScrapedProduct) ApplyDetails(details DetailInfo) {
	if p.ProductCategory == nil {
		p.ProductCategory = details.Category
	}
	if p.ProductSubcategory == nil {
		p.ProductSubcategory = details.Subcategory
	}
	if p.ProductDescription == nil {
		p.ProductDescription = details.Description
	}
}

// DetailInfo is what the detail page contributes to a product.
type DetailInfo struct {
	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
	Description *string `json:"description"`
}

func (d DetailInfo) IsEmpty() bool {
	return d.Category == nil && d.Subcategory == nil && d.Description == nil
}

// NullableString returns nil for blank input.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ListingPage is one page of a category listing.
type ListingPage struct {
	PageNumber int                `json:"page_number"`
	Category   CategoryDescriptor `json:"category"`
	Entries    []json.RawMessage  `json:"entries"`
}
