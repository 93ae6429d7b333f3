package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"sagafalabella/scraper/internal/repository"
	"sagafalabella/scraper/internal/staging"
)

func (s *Service) persist(ctx context.Context, runDate string) (string, int, error) {
	records, artifact, err := s.artifacts.Read(ctx, staging.LayerMaster, runDate)
	if err != nil {
		return "", 0, err
	}

	rows := repository.NewProductRows(records)

	if err := s.sink.EnsureSchema(ctx); err != nil {
		return "", 0, fmt.Errorf("failed to prepare %s sink: %w", s.sink.Name(), err)
	}

	n, err := s.sink.Load(ctx, rows, repository.LoadOptions{
		ChunkSize: s.options.ChunkSize,
		Truncate:  s.options.Truncate,
	})
	s.metrics.RowsPersisted.Add(float64(n))
	if err != nil {
		return "", 0, fmt.Errorf("failed to load rows into %s: %w", s.sink.Name(), err)
	}

	log.Infof("🗄️ Appended %d rows to %s", n, s.sink.Name())
	return artifact, int(n), nil
}
