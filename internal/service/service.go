package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sagafalabella/scraper/internal/client"
	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/domain/task"
	"sagafalabella/scraper/internal/metrics"
	"sagafalabella/scraper/internal/normalizer"
	"sagafalabella/scraper/internal/queue"
	"sagafalabella/scraper/internal/repository"
	"sagafalabella/scraper/internal/staging"
	"sagafalabella/scraper/internal/state"
)

type Options struct {
	EnrichWorkers int
	ChunkSize     int
	Truncate      bool
}

type Service struct {
	runID        string
	catalog      *domain.Catalog
	client       client.CatalogClient
	normalizer   *normalizer.Normalizer
	artifacts    *staging.Artifacts
	sink         repository.ProductSink
	queue        queue.Queue
	stateManager state.StateManager
	metrics      *metrics.Metrics
	options      Options
}

// NewService builds the pipeline. queue may be nil, in which case failures
// are only logged.
func NewService(
	catalog *domain.Catalog,
	client client.CatalogClient,
	normalizer *normalizer.Normalizer,
	artifacts *staging.Artifacts,
	sink repository.ProductSink,
	queue queue.Queue,
	stateManager state.StateManager,
	metrics *metrics.Metrics,
	options Options,
) *Service {
	if options.EnrichWorkers <= 0 {
		options.EnrichWorkers = 1
	}
	return &Service{
		runID:        uuid.NewString(),
		catalog:      catalog,
		client:       client,
		normalizer:   normalizer,
		artifacts:    artifacts,
		sink:         sink,
		queue:        queue,
		stateManager: stateManager,
		metrics:      metrics,
		options:      options,
	}
}

func (s *Service) RunID() string {
	return s.runID
}

// stageFunc runs one stage and reports the artifact it produced and how many
// records it handled.
type stageFunc func(ctx context.Context, runDate string) (string, int, error)

func (s *Service) runStage(ctx context.Context, stage domain.Stage, runDate string, fn stageFunc) (*domain.Checkpoint, error) {
	logger := log.WithFields(log.Fields{"run_id": s.runID, "stage": stage, "date": runDate})
	logger.Infof("🚀 Starting stage %s", stage)

	// later stages were built from the output this run replaces
	for _, downstream := range stage.Downstream() {
		if err := s.stateManager.ClearCheckpoint(ctx, downstream, runDate); err != nil {
			return nil, fmt.Errorf("stage %s: clearing %s checkpoint: %w", stage, downstream, err)
		}
	}

	started := time.Now()
	artifact, records, err := fn(ctx, runDate)
	elapsed := time.Since(started)
	s.metrics.StageDuration.WithLabelValues(stage.String()).Set(elapsed.Seconds())
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", stage, err)
	}

	checkpoint := domain.Checkpoint{
		Stage:      stage,
		RunID:      s.runID,
		RunDate:    runDate,
		Artifact:   artifact,
		Records:    records,
		FinishedAt: time.Now().UTC(),
	}
	if err := s.stateManager.SetCheckpoint(ctx, checkpoint); err != nil {
		logger.Warnf("⚠️ Failed to record checkpoint: %v", err)
	}

	logger.Infof("✅ Stage %s finished in %s: %d records (%s)", stage, elapsed.Round(time.Millisecond), records, artifact)
	return &checkpoint, nil
}

func (s *Service) Scrape(ctx context.Context, runDate string) (*domain.Checkpoint, error) {
	return s.runStage(ctx, domain.StageScrape, runDate, s.scrape)
}

func (s *Service) Enrich(ctx context.Context, runDate string) (*domain.Checkpoint, error) {
	return s.runStage(ctx, domain.StageEnrich, runDate, s.enrich)
}

func (s *Service) Persist(ctx context.Context, runDate string) (*domain.Checkpoint, error) {
	return s.runStage(ctx, domain.StagePersist, runDate, s.persist)
}

// Run executes every stage in order. With resume set, a stage whose checkpoint
// exists for runDate is skipped as long as its artifact is still stored.
func (s *Service) Run(ctx context.Context, runDate string, resume bool) error {
	stages := map[domain.Stage]func(context.Context, string) (*domain.Checkpoint, error){
		domain.StageScrape:  s.Scrape,
		domain.StageEnrich:  s.Enrich,
		domain.StagePersist: s.Persist,
	}

	for _, stage := range domain.Stages {
		if resume {
			done, err := s.completed(ctx, stage, runDate)
			if err != nil {
				return err
			}
			if done {
				log.Infof("⏭️ Skipping stage %s for %s, already completed", stage, runDate)
				continue
			}
		}
		if _, err := stages[stage](ctx, runDate); err != nil {
			return err
		}
	}

	log.WithField("run_id", s.runID).Infof("🏁 Pipeline finished for %s", runDate)
	return nil
}

func (s *Service) completed(ctx context.Context, stage domain.Stage, runDate string) (bool, error) {
	checkpoint, err := s.stateManager.GetCheckpoint(ctx, stage, runDate)
	if errors.Is(err, domain.ErrCheckpointNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stage == domain.StagePersist {
		return true, nil
	}

	exists, err := s.artifacts.Exists(ctx, checkpoint.Artifact)
	if err != nil {
		return false, fmt.Errorf("failed to check artifact %s: %w", checkpoint.Artifact, err)
	}
	if !exists {
		log.Warnf("🔄 Checkpoint for %s points to missing artifact %s, running again", stage, checkpoint.Artifact)
	}
	return exists, nil
}

// journal appends a failure to the queue when one is configured.
func (s *Service) journal(ctx context.Context, t task.Task) {
	if s.queue == nil {
		return
	}
	if _, err := s.queue.AddTask(ctx, t); err != nil {
		log.Errorf("❌ Failed to journal %s: %v", t.TaskType(), err)
	}
}

func newFailure(runID string, err error) task.Failure {
	failure := task.Failure{
		RunID:    runID,
		Error:    err.Error(),
		FailedAt: time.Now().UTC(),
	}
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		failure.StatusCode = fetchErr.StatusCode
	}
	return failure
}
