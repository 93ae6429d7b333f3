package container

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"sagafalabella/scraper/internal/client"
	"sagafalabella/scraper/internal/config"
	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/metrics"
	"sagafalabella/scraper/internal/normalizer"
	"sagafalabella/scraper/internal/proxy"
	"sagafalabella/scraper/internal/queue"
	"sagafalabella/scraper/internal/repository"
	"sagafalabella/scraper/internal/service"
	"sagafalabella/scraper/internal/staging"
	"sagafalabella/scraper/internal/state"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Location     *time.Location
	Catalog      *domain.Catalog
	Client       client.CatalogClient
	Artifacts    *staging.Artifacts
	Sink         repository.ProductSink
	Queue        queue.Queue
	StateManager state.StateManager
	Metrics      *metrics.Metrics

	Service *service.Service

	closers []io.Closer
	redis   *redis.Client
}

// New creates a new container with all dependencies initialized. Nothing
// here talks to the sink; connections are opened on first use.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", cfg.App.Timezone, err)
	}

	container := &Container{
		Config:   cfg,
		Location: location,
		Catalog:  domain.DefaultCatalog(),
		Metrics:  metrics.New(),
	}

	proxySupplier := proxy.NewSupplier(ctx, cfg.Catalog.Proxies, cfg.Catalog.BaseURL)
	container.Client = client.NewFalabellaClient(cfg.Catalog, container.Catalog, proxySupplier)

	store, err := container.newBlobStore(ctx)
	if err != nil {
		container.Close()
		return nil, err
	}
	formats, err := artifactFormats(cfg.Datalake)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Artifacts = staging.NewArtifacts(store, staging.PathBuilder{
		Root:      cfg.Datalake.Root,
		Country:   cfg.Datalake.Country,
		Area:      cfg.Datalake.Area,
		Dataset:   cfg.Datalake.Dataset,
		App:       cfg.Datalake.App,
		Frequency: cfg.Datalake.Frequency,
	}, formats, location)

	sink, err := container.newSink(ctx)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Sink = sink

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			_ = rdb.Close()
			container.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		container.redis = rdb
		container.Queue = queue.NewRedisQueue(rdb, cfg.Redis.KeyPrefix)
		container.StateManager = state.NewRedisStateManager(rdb, cfg.Redis.KeyPrefix)
	} else {
		log.Debug("Redis disabled, checkpoints are kept in memory and failures are only logged")
		container.StateManager = state.NewMemoryStateManager()
	}

	container.Service = service.NewService(
		container.Catalog,
		container.Client,
		normalizer.New(location),
		container.Artifacts,
		container.Sink,
		container.Queue,
		container.StateManager,
		container.Metrics,
		service.Options{
			EnrichWorkers: cfg.Enrich.Workers,
			ChunkSize:     cfg.Sink.ChunkSize,
			Truncate:      cfg.Sink.Truncate,
		},
	)

	return container, nil
}

func (c *Container) newBlobStore(ctx context.Context) (staging.BlobStore, error) {
	switch c.Config.Datalake.Backend {
	case "local":
		return staging.NewLocalStore(c.Config.Datalake.LocalDir), nil
	case "hdfs":
		return staging.NewHDFSStore(c.Config.Datalake.HDFS), nil
	case "gcs":
		gcs, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS client: %w", err)
		}
		store := staging.NewGCSStore(gcs, c.Config.Datalake.GCS.Bucket)
		c.closers = append(c.closers, store)
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownBackend, c.Config.Datalake.Backend)
	}
}

func (c *Container) newSink(ctx context.Context) (repository.ProductSink, error) {
	cfg := c.Config
	switch cfg.Sink.Type {
	case "postgres":
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		return repository.NewPostgresSink(db, cfg.Sink.Table), nil
	case "bigquery":
		bq, err := bigquery.NewClient(ctx, cfg.BigQuery.Project)
		if err != nil {
			return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
		}
		return repository.NewBigQuerySink(bq, cfg.BigQuery.Dataset, cfg.Sink.Table), nil
	case "mongo":
		return repository.NewMongoSink(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSink, cfg.Sink.Type)
	}
}

func artifactFormats(cfg config.DatalakeConfig) (map[staging.Layer]staging.Format, error) {
	raw, err := staging.ParseFormat(cfg.RawFormat)
	if err != nil {
		return nil, fmt.Errorf("datalake.raw_format: %w", err)
	}
	master, err := staging.ParseFormat(cfg.MasterFormat)
	if err != nil {
		return nil, fmt.Errorf("datalake.master_format: %w", err)
	}
	return map[staging.Layer]staging.Format{
		staging.LayerRaw:    raw,
		staging.LayerMaster: master,
	}, nil
}

// PushMetrics sends the run's metrics when a pushgateway is configured.
func (c *Container) PushMetrics() {
	if err := c.Metrics.Push(c.Config.Metrics.PushgatewayURL, c.Config.Metrics.Job); err != nil {
		log.Warnf("⚠️ %v", err)
	}
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.Sink != nil {
		if err := c.Sink.Close(); err != nil {
			log.Warnf("Failed to close %s sink: %v", c.Sink.Name(), err)
		}
	}
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			log.Warnf("Failed to close staging store: %v", err)
		}
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}

	log.Debug("Container shut down successfully")
	return nil
}
