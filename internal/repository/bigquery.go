package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
)

// bigQueryRow mirrors ProductRow with nullable BigQuery column types.
type bigQueryRow struct {
	AnimalCategory       string                 `bigquery:"categoria_animal"`
	ProductCategory      bigquery.NullString    `bigquery:"categoria_producto"`
	ProductSubcategory   bigquery.NullString    `bigquery:"sub_categoria_producto"`
	Brand                bigquery.NullString    `bigquery:"marca"`
	Name                 bigquery.NullString    `bigquery:"nombre"`
	SoldBy               bigquery.NullString    `bigquery:"vendido_por"`
	PromotionTitle       bigquery.NullString    `bigquery:"titulo_promocion"`
	PromotionDescription bigquery.NullString    `bigquery:"descripcion_promocion"`
	ProductDescription   bigquery.NullString    `bigquery:"descripcion_producto"`
	ConsideredWeight     bigquery.NullString    `bigquery:"peso_considerado"`
	PriceWithoutDiscount bigquery.NullFloat64   `bigquery:"precio_sin_descuento"`
	PublicPrice          bigquery.NullFloat64   `bigquery:"precio_publico"`
	LoyaltyCardPrice     bigquery.NullFloat64   `bigquery:"precio_cmr"`
	ExtractionStartTime  bigquery.NullTimestamp `bigquery:"fecha_extraccion_inicio"`
	ExtractionEndTime    bigquery.NullTimestamp `bigquery:"fecha_extraccion_final"`
	ProductID            string                 `bigquery:"product_id"`
	SKU                  string                 `bigquery:"sku"`
}

func nullString(s *string) bigquery.NullString {
	if s == nil {
		return bigquery.NullString{}
	}
	return bigquery.NullString{StringVal: *s, Valid: true}
}

func nullFloat(f *float64) bigquery.NullFloat64 {
	if f == nil {
		return bigquery.NullFloat64{}
	}
	return bigquery.NullFloat64{Float64: *f, Valid: true}
}

func toBigQueryRow(r ProductRow) *bigQueryRow {
	return &bigQueryRow{
		AnimalCategory:       r.AnimalCategory,
		ProductCategory:      nullString(r.ProductCategory),
		ProductSubcategory:   nullString(r.ProductSubcategory),
		Brand:                nullString(r.Brand),
		Name:                 nullString(r.Name),
		SoldBy:               nullString(r.SoldBy),
		PromotionTitle:       nullString(r.PromotionTitle),
		PromotionDescription: nullString(r.PromotionDescription),
		ProductDescription:   nullString(r.ProductDescription),
		ConsideredWeight:     nullString(r.ConsideredWeight),
		PriceWithoutDiscount: nullFloat(r.PriceWithoutDiscount),
		PublicPrice:          nullFloat(r.PublicPrice),
		LoyaltyCardPrice:     nullFloat(r.LoyaltyCardPrice),
		ExtractionStartTime:  bigquery.NullTimestamp{Timestamp: r.ExtractionStartTime, Valid: !r.ExtractionStartTime.IsZero()},
		ExtractionEndTime:    bigquery.NullTimestamp{Timestamp: r.ExtractionEndTime, Valid: !r.ExtractionEndTime.IsZero()},
		ProductID:            r.ProductID,
		SKU:                  r.SKU,
	}
}

type BigQuerySink struct {
	client  *bigquery.Client
	dataset string
	table   string
}

func NewBigQuerySink(client *bigquery.Client, dataset, table string) *BigQuerySink {
	return &BigQuerySink{
		client:  client,
		dataset: dataset,
		table:   table,
	}
}

func (s *BigQuerySink) Name() string { return "bigquery" }

func (s *BigQuerySink) tableRef() *bigquery.Table {
	return s.client.Dataset(s.dataset).Table(s.table)
}

func (s *BigQuerySink) EnsureSchema(ctx context.Context) error {
	t := s.tableRef()
	_, err := t.Metadata(ctx)
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return fmt.Errorf("EnsureSchema: reading table metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(bigQueryRow{})
	if err != nil {
		return fmt.Errorf("EnsureSchema: inferring schema: %w", err)
	}
	if err := t.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("EnsureSchema: creating table: %w", err)
	}
	log.Infof("🆕 Created BigQuery table %s.%s", s.dataset, s.table)
	return nil
}

func (s *BigQuerySink) truncate(ctx context.Context) error {
	q := s.client.Query(fmt.Sprintf("TRUNCATE TABLE `%s.%s.%s`", s.client.Project(), s.dataset, s.table))
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running truncate: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for truncate: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("truncate job failed: %w", err)
	}
	return nil
}

func (s *BigQuerySink) Load(ctx context.Context, rows []ProductRow, opts LoadOptions) (int64, error) {
	if opts.Truncate {
		if err := s.truncate(ctx); err != nil {
			return 0, fmt.Errorf("Load: %w", err)
		}
		log.Infof("🧹 Truncated table %s.%s", s.dataset, s.table)
	}

	inserter := s.tableRef().Inserter()
	var total int64
	for i, chunk := range chunks(rows, opts.ChunkSize) {
		bqRows := make([]*bigQueryRow, len(chunk))
		for j, row := range chunk {
			bqRows[j] = toBigQueryRow(row)
		}
		if err := inserter.Put(ctx, bqRows); err != nil {
			return total, fmt.Errorf("Load: inserting chunk %d: %w", i+1, err)
		}
		total += int64(len(chunk))
	}
	return total, nil
}

func (s *BigQuerySink) Close() error {
	return s.client.Close()
}
