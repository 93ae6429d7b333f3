package service

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/domain/task"
	"sagafalabella/scraper/internal/metrics"
	"sagafalabella/scraper/internal/staging"
)

// Reconcile merges animal_category across every record sharing a SKU and
// keeps the first record of each SKU.
func Reconcile(records []domain.ScrapedProduct) []domain.ScrapedProduct {
	merged := make(map[string]string, len(records))
	for _, record := range records {
		merged[record.SKU] = domain.MergeAnimalCategory(merged[record.SKU], record.AnimalCategory)
	}

	out := make([]domain.ScrapedProduct, 0, len(merged))
	kept := make(map[string]struct{}, len(merged))
	for _, record := range records {
		if _, ok := kept[record.SKU]; ok {
			continue
		}
		kept[record.SKU] = struct{}{}
		record.AnimalCategory = merged[record.SKU]
		out = append(out, record)
	}
	return out
}

// EnrichDetails fills category, subcategory and description from product
// pages for every record still missing one of them. Lookup failures are
// logged and journaled; they never fail the batch.
func (s *Service) EnrichDetails(ctx context.Context, records []domain.ScrapedProduct) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.options.EnrichWorkers)

	for i := range records {
		record := &records[i]
		if !record.NeedsDetails() || record.URL == "" {
			s.metrics.DetailEnrichments.WithLabelValues(metrics.OutcomeSkipped).Inc()
			continue
		}

		g.Go(func() error {
			details, err := s.client.GetProductDetails(gctx, record.SKU, record.URL)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.WithFields(log.Fields{"sku": record.SKU, "url": record.URL}).
					Warnf("⚠️ Product details unavailable: %v", err)
				s.metrics.DetailEnrichments.WithLabelValues(metrics.OutcomeFailed).Inc()
				s.journal(gctx, &task.DetailFailureTask{
					Failure:   newFailure(s.runID, err),
					SKU:       record.SKU,
					ProductID: record.ProductID,
					URL:       record.URL,
				})
				return nil
			}

			if details.IsEmpty() {
				s.metrics.DetailEnrichments.WithLabelValues(metrics.OutcomeEmpty).Inc()
				return nil
			}
			record.ApplyDetails(details)
			s.metrics.DetailEnrichments.WithLabelValues(metrics.OutcomeEnriched).Inc()
			return nil
		})
	}

	return g.Wait()
}

func (s *Service) enrich(ctx context.Context, runDate string) (string, int, error) {
	records, _, err := s.artifacts.Read(ctx, staging.LayerRaw, runDate)
	if err != nil {
		return "", 0, err
	}

	unique := Reconcile(records)
	log.Infof("🔗 Reconciled %d raw records into %d unique SKUs", len(records), len(unique))

	if err := s.EnrichDetails(ctx, unique); err != nil {
		return "", 0, err
	}

	artifact, err := s.artifacts.Write(ctx, staging.LayerMaster, runDate, unique)
	if err != nil {
		return "", 0, err
	}
	return artifact, len(unique), nil
}
