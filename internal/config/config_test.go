package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data-platform", cfg.App.Name)
	assert.Equal(t, "America/Lima", cfg.App.Timezone)
	assert.Equal(t, "https://www.falabella.com.pe", cfg.Catalog.BaseURL)
	assert.Equal(t, 10, cfg.Catalog.Timeout)
	assert.Equal(t, 0, cfg.Catalog.MaxRetries)
	assert.Equal(t, "/biomont", cfg.Datalake.Root)
	assert.Equal(t, "json", cfg.Datalake.RawFormat)
	assert.Equal(t, "parquet", cfg.Datalake.MasterFormat)
	assert.Equal(t, "postgres", cfg.Sink.Type)
	assert.Equal(t, 10000, cfg.Sink.ChunkSize)
	assert.Equal(t, "webscrapping_sagafalabella", cfg.Sink.Table)
	assert.Equal(t, "test_biomont", cfg.Database.Name)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=root dbname=test_biomont sslmode=disable", cfg.Database.DSN())
}

func TestLoadFileAndEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  timeout: 25
  proxies:
    - http://proxy-1:8080
datalake:
  backend: hdfs
  hdfs:
    url: http://namenode:9870
redis:
  enabled: true
  port: 6380
`), 0o644))

	t.Setenv("SINK_CHUNK_SIZE", "500")
	t.Setenv("DATABASE_HOST", "db.internal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Catalog.Timeout)
	assert.Equal(t, []string{"http://proxy-1:8080"}, cfg.Catalog.Proxies)
	assert.Equal(t, "hdfs", cfg.Datalake.Backend)
	assert.Equal(t, "http://namenode:9870", cfg.Datalake.HDFS.URL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
	assert.Equal(t, 500, cfg.Sink.ChunkSize)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())

	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "unknown backend", mutate: func(c *Config) { c.Datalake.Backend = "s3" }, errMsg: "datalake.backend"},
		{name: "hdfs without url", mutate: func(c *Config) { c.Datalake.Backend = "hdfs" }, errMsg: "datalake.hdfs.url"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.Datalake.Backend = "gcs" }, errMsg: "datalake.gcs.bucket"},
		{name: "unknown format", mutate: func(c *Config) { c.Datalake.MasterFormat = "orc" }, errMsg: "datalake.master_format"},
		{name: "unknown sink", mutate: func(c *Config) { c.Sink.Type = "sqlite" }, errMsg: "sink.type"},
		{name: "zero chunk", mutate: func(c *Config) { c.Sink.ChunkSize = 0 }, errMsg: "sink.chunk_size"},
		{name: "zero workers", mutate: func(c *Config) { c.Enrich.Workers = 0 }, errMsg: "enrich.workers"},
		{name: "negative retries", mutate: func(c *Config) { c.Catalog.MaxRetries = -1 }, errMsg: "catalog.max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	assert.NoError(t, base.Validate())
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
