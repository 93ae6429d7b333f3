package staging

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"sagafalabella/scraper/internal/domain"
)

const timestampLayout = time.RFC3339Nano

// Codec serializes a whole snapshot of records.
type Codec interface {
	Encode(records []domain.ScrapedProduct) ([]byte, error)
	Decode(data []byte) ([]domain.ScrapedProduct, error)
}

// NewCodec returns the codec for format. Decoded timestamps are expressed in
// location.
func NewCodec(format Format, location *time.Location) (Codec, error) {
	if location == nil {
		location = time.UTC
	}
	switch format {
	case FormatJSON:
		return jsonCodec{location: location}, nil
	case FormatParquet:
		return parquetCodec{location: location}, nil
	case FormatCSV:
		return csvCodec{location: location}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}

type jsonCodec struct {
	location *time.Location
}

func (c jsonCodec) Encode(records []domain.ScrapedProduct) ([]byte, error) {
	if records == nil {
		records = []domain.ScrapedProduct{}
	}
	return json.MarshalIndent(records, "", "    ")
}

func (c jsonCodec) Decode(data []byte) ([]domain.ScrapedProduct, error) {
	var records []domain.ScrapedProduct
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode json artifact: %w", err)
	}
	for i := range records {
		records[i].ExtractionStartTime = records[i].ExtractionStartTime.In(c.location)
		records[i].ExtractionEndTime = records[i].ExtractionEndTime.In(c.location)
	}
	return records, nil
}

// parquetRow is the columnar layout of a record. Timestamps keep their
// offset as ISO-8601 text.
type parquetRow struct {
	AnimalCategory       string   `parquet:"categoria_animal"`
	ProductCategory      *string  `parquet:"categoria_producto,optional"`
	ProductSubcategory   *string  `parquet:"sub_categoria_producto,optional"`
	Brand                *string  `parquet:"marca,optional"`
	Name                 *string  `parquet:"nombre,optional"`
	SoldBy               *string  `parquet:"vendido_por,optional"`
	PromotionTitle       *string  `parquet:"titulo_promocion,optional"`
	PromotionDescription *string  `parquet:"descripcion_promocion,optional"`
	ProductDescription   *string  `parquet:"descripcion_producto,optional"`
	ConsideredWeight     *string  `parquet:"peso_considerado,optional"`
	PriceWithoutDiscount *float64 `parquet:"precio_sin_descuento,optional"`
	PublicPrice          *float64 `parquet:"precio_publico,optional"`
	LoyaltyCardPrice     *float64 `parquet:"precio_cmr,optional"`
	ExtractionStartTime  string   `parquet:"fecha_extraccion_inicio"`
	ExtractionEndTime    string   `parquet:"fecha_extraccion_final"`
	ProductID            string   `parquet:"product_id"`
	SKU                  string   `parquet:"sku"`
	URL                  string   `parquet:"url"`
}

type parquetCodec struct {
	location *time.Location
}

func (c parquetCodec) Encode(records []domain.ScrapedProduct) ([]byte, error) {
	rows := make([]parquetRow, len(records))
	for i, r := range records {
		rows[i] = parquetRow{
			AnimalCategory:       r.AnimalCategory,
			ProductCategory:      r.ProductCategory,
			ProductSubcategory:   r.ProductSubcategory,
			Brand:                r.Brand,
			Name:                 r.Name,
			SoldBy:               r.SoldBy,
			PromotionTitle:       r.PromotionTitle,
			PromotionDescription: r.PromotionDescription,
			ProductDescription:   r.ProductDescription,
			ConsideredWeight:     r.ConsideredWeight,
			PriceWithoutDiscount: r.PriceWithoutDiscount,
			PublicPrice:          r.PublicPrice,
			LoyaltyCardPrice:     r.LoyaltyCardPrice,
			ExtractionStartTime:  r.ExtractionStartTime.Format(timestampLayout),
			ExtractionEndTime:    r.ExtractionEndTime.Format(timestampLayout),
			ProductID:            r.ProductID,
			SKU:                  r.SKU,
			URL:                  r.URL,
		}
	}

	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return nil, fmt.Errorf("encode parquet artifact: %w", err)
	}
	return buf.Bytes(), nil
}

func (c parquetCodec) Decode(data []byte) ([]domain.ScrapedProduct, error) {
	rows, err := parquet.Read[parquetRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decode parquet artifact: %w", err)
	}

	records := make([]domain.ScrapedProduct, len(rows))
	for i, r := range rows {
		start, err := parseTimestamp(r.ExtractionStartTime, c.location)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		end, err := parseTimestamp(r.ExtractionEndTime, c.location)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		records[i] = domain.ScrapedProduct{
			AnimalCategory:       r.AnimalCategory,
			ProductCategory:      r.ProductCategory,
			ProductSubcategory:   r.ProductSubcategory,
			Brand:                r.Brand,
			Name:                 r.Name,
			SoldBy:               r.SoldBy,
			PromotionTitle:       r.PromotionTitle,
			PromotionDescription: r.PromotionDescription,
			ProductDescription:   r.ProductDescription,
			ConsideredWeight:     r.ConsideredWeight,
			PriceWithoutDiscount: r.PriceWithoutDiscount,
			PublicPrice:          r.PublicPrice,
			LoyaltyCardPrice:     r.LoyaltyCardPrice,
			ExtractionStartTime:  start,
			ExtractionEndTime:    end,
			ProductID:            r.ProductID,
			SKU:                  r.SKU,
			URL:                  r.URL,
		}
	}
	return records, nil
}

var csvHeader = []string{
	"categoria_animal", "categoria_producto", "sub_categoria_producto", "marca", "nombre", "vendido_por",
	"titulo_promocion", "descripcion_promocion", "descripcion_producto", "peso_considerado",
	"precio_sin_descuento", "precio_publico", "precio_cmr",
	"fecha_extraccion_inicio", "fecha_extraccion_final", "product_id", "sku", "url",
}

// csvCodec writes empty cells for nil values.
type csvCodec struct {
	location *time.Location
}

func (c csvCodec) Encode(records []domain.ScrapedProduct) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.AnimalCategory,
			str(r.ProductCategory), str(r.ProductSubcategory), str(r.Brand), str(r.Name), str(r.SoldBy),
			str(r.PromotionTitle), str(r.PromotionDescription), str(r.ProductDescription), str(r.ConsideredWeight),
			num(r.PriceWithoutDiscount), num(r.PublicPrice), num(r.LoyaltyCardPrice),
			r.ExtractionStartTime.Format(timestampLayout), r.ExtractionEndTime.Format(timestampLayout),
			r.ProductID, r.SKU, r.URL,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("encode csv artifact: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv artifact: %w", err)
	}
	return buf.Bytes(), nil
}

func (c csvCodec) Decode(data []byte) ([]domain.ScrapedProduct, error) {
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv artifact: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]domain.ScrapedProduct, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("csv row %d: expected %d columns, got %d", i+1, len(csvHeader), len(row))
		}

		var prices [3]*float64
		for j := range prices {
			if prices[j], err = parseNum(row[10+j]); err != nil {
				return nil, fmt.Errorf("csv row %d: %w", i+1, err)
			}
		}
		start, err := parseTimestamp(row[13], c.location)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}
		end, err := parseTimestamp(row[14], c.location)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}

		records = append(records, domain.ScrapedProduct{
			AnimalCategory:       row[0],
			ProductCategory:      opt(row[1]),
			ProductSubcategory:   opt(row[2]),
			Brand:                opt(row[3]),
			Name:                 opt(row[4]),
			SoldBy:               opt(row[5]),
			PromotionTitle:       opt(row[6]),
			PromotionDescription: opt(row[7]),
			ProductDescription:   opt(row[8]),
			ConsideredWeight:     opt(row[9]),
			PriceWithoutDiscount: prices[0],
			PublicPrice:          prices[1],
			LoyaltyCardPrice:     prices[2],
			ExtractionStartTime:  start,
			ExtractionEndTime:    end,
			ProductID:            row[15],
			SKU:                  row[16],
			URL:                  row[17],
		})
	}
	return records, nil
}

func parseTimestamp(s string, location *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.In(location), nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func opt(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func num(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func parseNum(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return &f, nil
}
