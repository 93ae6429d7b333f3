package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/domain/task"
	"sagafalabella/scraper/internal/staging"
)

// Traverse walks every category of every animal and returns the reconciled
// product list. A SKU seen again under the same animal is skipped; a SKU seen
// under another animal extends the animal_category of the first record.
func (s *Service) Traverse(ctx context.Context) ([]domain.ScrapedProduct, error) {
	var products []domain.ScrapedProduct
	index := make(map[string]int)

	for _, animal := range s.catalog.Animals() {
		seen := make(map[string]struct{})
		log.Infof("🐾 Traversing categories for %s", animal.DisplayName())

		for _, category := range s.catalog.ForAnimal(animal) {
			added, err := s.traverseCategory(ctx, category, seen, index, &products)
			if err != nil {
				return nil, err
			}
			log.Infof("✅ Completed %s/%s (%s): %d new products", animal, category.Label, category.ID, added)
		}
	}

	log.Infof("📦 Traversal finished with %d unique products", len(products))
	return products, nil
}

func (s *Service) traverseCategory(
	ctx context.Context,
	category domain.CategoryDescriptor,
	seen map[string]struct{},
	index map[string]int,
	products *[]domain.ScrapedProduct,
) (int, error) {
	animal := category.Animal.String()
	added := 0

	for pageNumber := 1; ; pageNumber++ {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		page, err := s.client.GetListingPage(ctx, category, pageNumber)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return added, ctxErr
			}
			log.WithFields(log.Fields{
				"animal":   animal,
				"category": category.ID,
				"page":     pageNumber,
			}).Errorf("❌ Listing fetch failed, ending category: %v", err)
			s.metrics.PageFailures.WithLabelValues(animal).Inc()
			s.journal(ctx, &task.PageFailureTask{
				Failure:      newFailure(s.runID, err),
				Animal:       category.Animal,
				CategoryID:   category.ID,
				CategorySlug: category.Slug,
				PageNumber:   pageNumber,
			})
			return added, nil
		}
		if page == nil {
			log.Debugf("No more results for %s/%s after page %d", animal, category.ID, pageNumber-1)
			return added, nil
		}
		s.metrics.PagesFetched.WithLabelValues(animal).Inc()

		for _, raw := range page.Entries {
			entry, err := domain.ParseRawCatalogEntry(raw)
			if err != nil {
				fields := log.Fields{"animal": animal, "category": category.ID, "page": pageNumber}
				if entry != nil && entry.SkuID != "" {
					fields["sku"] = entry.SkuID
				}
				log.WithFields(fields).Warnf("⚠️ Skipping invalid entry: %v", err)
				s.metrics.InvalidEntries.WithLabelValues(animal).Inc()
				continue
			}

			if _, ok := seen[entry.SkuID]; ok {
				continue
			}
			seen[entry.SkuID] = struct{}{}

			product := s.normalizer.NormalizeEntry(category.Animal, entry, category.Label)
			s.metrics.ProductsNormalized.WithLabelValues(animal).Inc()

			if i, ok := index[product.SKU]; ok {
				existing := &(*products)[i]
				existing.AnimalCategory = domain.MergeAnimalCategory(existing.AnimalCategory, product.AnimalCategory)
				s.metrics.ReconciledSKUs.Inc()
				log.Debugf("🔗 SKU %s now belongs to %s", product.SKU, existing.AnimalCategory)
				continue
			}

			index[product.SKU] = len(*products)
			*products = append(*products, *product)
			added++
		}
	}
}

func (s *Service) scrape(ctx context.Context, runDate string) (string, int, error) {
	products, err := s.Traverse(ctx)
	if err != nil {
		return "", 0, err
	}

	artifact, err := s.artifacts.Write(ctx, staging.LayerRaw, runDate, products)
	if err != nil {
		return "", 0, err
	}
	return artifact, len(products), nil
}
