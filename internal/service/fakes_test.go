package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/domain/task"
	"sagafalabella/scraper/internal/metrics"
	"sagafalabella/scraper/internal/normalizer"
	"sagafalabella/scraper/internal/queue"
	"sagafalabella/scraper/internal/repository"
	"sagafalabella/scraper/internal/staging"
	"sagafalabella/scraper/internal/state"
)

const runDate = "20251224"

type fakeClient struct {
	mu          sync.Mutex
	pages       map[string][][]json.RawMessage
	pageErrors  map[string]map[int]error
	details     map[string]domain.DetailInfo
	detailErrs  map[string]error
	listCalls   int
	detailCalls []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		pages:      make(map[string][][]json.RawMessage),
		pageErrors: make(map[string]map[int]error),
		details:    make(map[string]domain.DetailInfo),
		detailErrs: make(map[string]error),
	}
}

func (c *fakeClient) GetListingPage(_ context.Context, category domain.CategoryDescriptor, pageNumber int) (*domain.ListingPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++

	if err := c.pageErrors[category.ID][pageNumber]; err != nil {
		return nil, err
	}
	pages := c.pages[category.ID]
	if pageNumber > len(pages) || len(pages[pageNumber-1]) == 0 {
		return nil, nil
	}
	return &domain.ListingPage{PageNumber: pageNumber, Category: category, Entries: pages[pageNumber-1]}, nil
}

func (c *fakeClient) GetProductDetails(_ context.Context, sku, _ string) (domain.DetailInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detailCalls = append(c.detailCalls, sku)

	if err := c.detailErrs[sku]; err != nil {
		return domain.DetailInfo{}, err
	}
	return c.details[sku], nil
}

type fakeSink struct {
	schemaCalls int
	loads       [][]repository.ProductRow
	opts        []repository.LoadOptions
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) EnsureSchema(context.Context) error {
	s.schemaCalls++
	return nil
}

func (s *fakeSink) Load(_ context.Context, rows []repository.ProductRow, opts repository.LoadOptions) (int64, error) {
	s.loads = append(s.loads, rows)
	s.opts = append(s.opts, opts)
	return int64(len(rows)), nil
}

func (s *fakeSink) Close() error { return nil }

type fakeQueue struct {
	mu    sync.Mutex
	tasks []task.Task
}

func (q *fakeQueue) AddTask(_ context.Context, t task.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	return fmt.Sprintf("%d-0", len(q.tasks)), nil
}

func (q *fakeQueue) ListTasks(context.Context, string, int64) ([]queue.Entry, error) {
	return nil, nil
}

func (q *fakeQueue) Len(_ context.Context, taskType string) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var n int64
	for _, t := range q.tasks {
		if t.TaskType() == taskType {
			n++
		}
	}
	return n, nil
}

func (q *fakeQueue) Clear(context.Context, string) error { return nil }

type fixture struct {
	client    *fakeClient
	sink      *fakeSink
	queue     *fakeQueue
	state     state.StateManager
	artifacts *staging.Artifacts
	metrics   *metrics.Metrics
	catalog   *domain.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lima, err := time.LoadLocation("America/Lima")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return &fixture{
		client: newFakeClient(),
		sink:   &fakeSink{},
		queue:  &fakeQueue{},
		state:  state.NewMemoryStateManager(),
		artifacts: staging.NewArtifacts(
			staging.NewLocalStoreFs(afero.NewMemMapFs()),
			staging.PathBuilder{Root: "/biomont", Country: "peru", Area: "retail", Dataset: "productos", App: "scraper", Frequency: "diario"},
			nil,
			lima,
		),
		metrics: metrics.New(),
		catalog: domain.NewCatalog([]domain.CategoryDescriptor{
			{ID: "CATDOG1", Animal: domain.AnimalDog, Label: "Alimentos", Slug: "alimento-perros"},
			{ID: "CATDOG2", Animal: domain.AnimalDog, Label: "Juguetes", Slug: "juguetes-perros"},
			{ID: "CATCAT1", Animal: domain.AnimalCat, Label: "Alimentos", Slug: "alimento-gatos"},
		}),
	}
}

func (f *fixture) service(opts Options) *Service {
	return NewService(
		f.catalog,
		f.client,
		normalizer.New(time.UTC),
		f.artifacts,
		f.sink,
		f.queue,
		f.state,
		f.metrics,
		opts,
	)
}

func entry(sku, name string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"displayName": %q,
		"skuId": %q,
		"productId": "P-%s",
		"brand": "Acme",
		"sellerName": "Falabella",
		"url": "https://www.falabella.com.pe/falabella-pe/product/%s",
		"prices": [
			{"type": "normalPrice", "crossed": true, "price": ["100"]},
			{"type": "eventPrice", "crossed": false, "price": ["80"]},
			{"type": "cmrPrice", "crossed": false, "price": ["70"]}
		]
	}`, name, sku, sku, sku))
}

func page(entries ...json.RawMessage) []json.RawMessage {
	return entries
}

func strPtr(s string) *string { return &s }
