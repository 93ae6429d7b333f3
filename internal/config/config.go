package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Enrich   EnrichConfig   `mapstructure:"enrich"`
	Datalake DatalakeConfig `mapstructure:"datalake"`
	Sink     SinkConfig     `mapstructure:"sink"`
	Database DatabaseConfig `mapstructure:"database"`
	BigQuery BigQueryConfig `mapstructure:"bigquery"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	Timezone string `mapstructure:"timezone"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// CatalogConfig holds storefront API configuration
type CatalogConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	ListingPath          string   `mapstructure:"listing_path"`
	PID                  string   `mapstructure:"pid"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	UserAgent            string   `mapstructure:"user_agent"`
	Proxies              []string `mapstructure:"proxies"`
}

type EnrichConfig struct {
	Workers int `mapstructure:"workers"`
}

// DatalakeConfig describes where staging artifacts live and how they are named
type DatalakeConfig struct {
	Backend      string     `mapstructure:"backend"`
	Root         string     `mapstructure:"root"`
	Country      string     `mapstructure:"country"`
	Area         string     `mapstructure:"area"`
	Dataset      string     `mapstructure:"dataset"`
	App          string     `mapstructure:"app"`
	Frequency    string     `mapstructure:"frequency"`
	RawFormat    string     `mapstructure:"raw_format"`
	MasterFormat string     `mapstructure:"master_format"`
	LocalDir     string     `mapstructure:"local_dir"`
	HDFS         HDFSConfig `mapstructure:"hdfs"`
	GCS          GCSConfig  `mapstructure:"gcs"`
}

type HDFSConfig struct {
	URL     string `mapstructure:"url"`
	User    string `mapstructure:"user"`
	Timeout int    `mapstructure:"timeout"`
}

type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
}

type SinkConfig struct {
	Type      string `mapstructure:"type"`
	Table     string `mapstructure:"table"`
	ChunkSize int    `mapstructure:"chunk_size"`
	Truncate  bool   `mapstructure:"truncate"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

type BigQueryConfig struct {
	Project string `mapstructure:"project"`
	Dataset string `mapstructure:"dataset"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// Load loads configuration from an optional YAML file with .env and
// environment variable overrides. An empty path searches ./config.yaml.
func Load(path string) (*Config, error) {
	// .env is optional, real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks enumerated values and sizes.
func (c *Config) Validate() error {
	var errs []error

	switch c.Datalake.Backend {
	case "local", "hdfs", "gcs":
	default:
		errs = append(errs, fmt.Errorf("datalake.backend must be one of local, hdfs, gcs: got %q", c.Datalake.Backend))
	}
	if c.Datalake.Backend == "hdfs" && c.Datalake.HDFS.URL == "" {
		errs = append(errs, errors.New("datalake.hdfs.url is required for the hdfs backend"))
	}
	if c.Datalake.Backend == "gcs" && c.Datalake.GCS.Bucket == "" {
		errs = append(errs, errors.New("datalake.gcs.bucket is required for the gcs backend"))
	}
	for key, format := range map[string]string{
		"datalake.raw_format":    c.Datalake.RawFormat,
		"datalake.master_format": c.Datalake.MasterFormat,
	} {
		switch format {
		case "json", "parquet", "csv":
		default:
			errs = append(errs, fmt.Errorf("%s must be one of json, parquet, csv: got %q", key, format))
		}
	}

	switch c.Sink.Type {
	case "postgres", "bigquery", "mongo":
	default:
		errs = append(errs, fmt.Errorf("sink.type must be one of postgres, bigquery, mongo: got %q", c.Sink.Type))
	}
	if c.Sink.ChunkSize <= 0 {
		errs = append(errs, errors.New("sink.chunk_size must be positive"))
	}
	if c.Sink.Table == "" {
		errs = append(errs, errors.New("sink.table is required"))
	}

	if c.Catalog.Timeout <= 0 {
		errs = append(errs, errors.New("catalog.timeout must be positive"))
	}
	if c.Catalog.MaxRetries < 0 {
		errs = append(errs, errors.New("catalog.max_retries must not be negative"))
	}
	if c.Enrich.Workers <= 0 {
		errs = append(errs, errors.New("enrich.workers must be positive"))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "data-platform")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.timezone", "America/Lima")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	v.SetDefault("catalog.base_url", "https://www.falabella.com.pe")
	v.SetDefault("catalog.listing_path", "/s/browse/v1/listing/pe")
	v.SetDefault("catalog.pid", "799c102f-9b4c-44be-a421-23e366a63b82")
	v.SetDefault("catalog.timeout", 10)
	v.SetDefault("catalog.max_retries", 0)
	v.SetDefault("catalog.max_requests_per_second", 0)
	v.SetDefault("catalog.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("catalog.proxies", []string{})

	v.SetDefault("enrich.workers", 1)

	v.SetDefault("datalake.backend", "local")
	v.SetDefault("datalake.root", "/biomont")
	v.SetDefault("datalake.country", "peru")
	v.SetDefault("datalake.area", "retail")
	v.SetDefault("datalake.dataset", "productos")
	v.SetDefault("datalake.app", "scraper")
	v.SetDefault("datalake.frequency", "diario")
	v.SetDefault("datalake.raw_format", "json")
	v.SetDefault("datalake.master_format", "parquet")
	v.SetDefault("datalake.local_dir", "./tmp")
	v.SetDefault("datalake.hdfs.url", "")
	v.SetDefault("datalake.hdfs.user", "hdfs")
	v.SetDefault("datalake.hdfs.timeout", 60)
	v.SetDefault("datalake.gcs.bucket", "")

	v.SetDefault("sink.type", "postgres")
	v.SetDefault("sink.table", "webscrapping_sagafalabella")
	v.SetDefault("sink.chunk_size", 10000)
	v.SetDefault("sink.truncate", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "test_biomont")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "root")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("bigquery.project", "")
	v.SetDefault("bigquery.dataset", "")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "biomont")
	v.SetDefault("mongo.collection", "webscrapping_sagafalabella")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "sagafalabella")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "sagafalabella_scraper")
}
