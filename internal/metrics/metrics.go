package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	log "github.com/sirupsen/logrus"
)

const namespace = "sagafalabella"

// Detail enrichment outcomes.
const (
	OutcomeEnriched = "enriched"
	OutcomeEmpty    = "empty"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

// Metrics is a per-run registry of pipeline counters.
type Metrics struct {
	Registry *prometheus.Registry

	PagesFetched       *prometheus.CounterVec
	PageFailures       *prometheus.CounterVec
	ProductsNormalized *prometheus.CounterVec
	InvalidEntries     *prometheus.CounterVec
	ReconciledSKUs     prometheus.Counter
	DetailEnrichments  *prometheus.CounterVec
	RowsPersisted      prometheus.Counter
	StageDuration      *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Listing pages fetched with at least one result.",
		}, []string{"animal"}),
		PageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_failures_total",
			Help:      "Listing page fetches that ended a category early.",
		}, []string{"animal"}),
		ProductsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_normalized_total",
			Help:      "Catalog entries turned into product records.",
		}, []string{"animal"}),
		InvalidEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_entries_total",
			Help:      "Catalog entries skipped because they failed validation.",
		}, []string{"animal"}),
		ReconciledSKUs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciled_skus_total",
			Help:      "SKUs seen under more than one animal.",
		}),
		DetailEnrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detail_enrichments_total",
			Help:      "Product detail lookups by outcome.",
		}, []string{"outcome"}),
		RowsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_persisted_total",
			Help:      "Rows appended to the relational sink.",
		}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last run of each stage.",
		}, []string{"stage"}),
	}

	m.Registry.MustRegister(
		m.PagesFetched,
		m.PageFailures,
		m.ProductsNormalized,
		m.InvalidEntries,
		m.ReconciledSKUs,
		m.DetailEnrichments,
		m.RowsPersisted,
		m.StageDuration,
	)
	return m
}

// Push sends the registry to a Prometheus pushgateway. An empty url is a no-op.
func (m *Metrics) Push(url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.Registry).Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	log.Infof("📈 Pushed metrics to %s (job %s)", url, job)
	return nil
}
