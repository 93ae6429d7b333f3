package repository

import (
	"context"
	"time"

	"sagafalabella/scraper/internal/domain"
)

// ProductSink is the relational destination of the persistence stage.
type ProductSink interface {
	Name() string
	EnsureSchema(ctx context.Context) error
	// Load appends rows in chunks. With Truncate set the destination is
	// emptied first.
	Load(ctx context.Context, rows []ProductRow, opts LoadOptions) (int64, error)
	Close() error
}

type LoadOptions struct {
	ChunkSize int
	Truncate  bool
}

// ProductRow is a ScrapedProduct without its detail-page URL.
type ProductRow struct {
	AnimalCategory       string    `bson:"categoria_animal"`
	ProductCategory      *string   `bson:"categoria_producto"`
	ProductSubcategory   *string   `bson:"sub_categoria_producto"`
	Brand                *string   `bson:"marca"`
	Name                 *string   `bson:"nombre"`
	SoldBy               *string   `bson:"vendido_por"`
	PromotionTitle       *string   `bson:"titulo_promocion"`
	PromotionDescription *string   `bson:"descripcion_promocion"`
	ProductDescription   *string   `bson:"descripcion_producto"`
	ConsideredWeight     *string   `bson:"peso_considerado"`
	PriceWithoutDiscount *float64  `bson:"precio_sin_descuento"`
	PublicPrice          *float64  `bson:"precio_publico"`
	LoyaltyCardPrice     *float64  `bson:"precio_cmr"`
	ExtractionStartTime  time.Time `bson:"fecha_extraccion_inicio"`
	ExtractionEndTime    time.Time `bson:"fecha_extraccion_final"`
	ProductID            string    `bson:"product_id"`
	SKU                  string    `bson:"sku"`
}

// Columns lists the table columns in the order of ProductRow.Values.
var Columns = []string{
	"categoria_animal",
	"categoria_producto",
	"sub_categoria_producto",
	"marca",
	"nombre",
	"vendido_por",
	"titulo_promocion",
	"descripcion_promocion",
	"descripcion_producto",
	"peso_considerado",
	"precio_sin_descuento",
	"precio_publico",
	"precio_cmr",
	"fecha_extraccion_inicio",
	"fecha_extraccion_final",
	"product_id",
	"sku",
}

func NewProductRow(p *domain.ScrapedProduct) ProductRow {
	return ProductRow{
		AnimalCategory:       p.AnimalCategory,
		ProductCategory:      p.ProductCategory,
		ProductSubcategory:   p.ProductSubcategory,
		Brand:                p.Brand,
		Name:                 p.Name,
		SoldBy:               p.SoldBy,
		PromotionTitle:       p.PromotionTitle,
		PromotionDescription: p.PromotionDescription,
		ProductDescription:   p.ProductDescription,
		ConsideredWeight:     p.ConsideredWeight,
		PriceWithoutDiscount: p.PriceWithoutDiscount,
		PublicPrice:          p.PublicPrice,
		LoyaltyCardPrice:     p.LoyaltyCardPrice,
		ExtractionStartTime:  p.ExtractionStartTime,
		ExtractionEndTime:    p.ExtractionEndTime,
		ProductID:            p.ProductID,
		SKU:                  p.SKU,
	}
}

func NewProductRows(products []domain.ScrapedProduct) []ProductRow {
	rows := make([]ProductRow, 0, len(products))
	for i := range products {
		rows = append(rows, NewProductRow(&products[i]))
	}
	return rows
}

// Values returns the row in Columns order.
func (r ProductRow) Values() []any {
	return []any{
		r.AnimalCategory,
		r.ProductCategory,
		r.ProductSubcategory,
		r.Brand,
		r.Name,
		r.SoldBy,
		r.PromotionTitle,
		r.PromotionDescription,
		r.ProductDescription,
		r.ConsideredWeight,
		r.PriceWithoutDiscount,
		r.PublicPrice,
		r.LoyaltyCardPrice,
		r.ExtractionStartTime,
		r.ExtractionEndTime,
		r.ProductID,
		r.SKU,
	}
}

// chunks splits rows into consecutive slices of at most size elements.
func chunks[T any](rows []T, size int) [][]T {
	if size <= 0 {
		size = len(rows)
	}
	var out [][]T
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
