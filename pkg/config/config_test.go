package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	cfg, err := LoadFromReader("yaml", []byte(""))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "./catalog.db", cfg.Database.Path)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 4, cfg.Engine.MaxWorker)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromReader_Overrides(t *testing.T) {
	content := []byte(`
engine:
  max_worker: 8
database:
  type: postgres
  host: db.internal
  port: 5433
storage:
  type: cos
  bucket: columns
  region: ap-guangzhou
log:
  level: debug
`)

	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Engine.MaxWorker)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "cos", cfg.Storage.Type)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadFromReader("yaml", []byte(""))
		require.NoError(t, err)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		cfg := base()
		cfg.Database.Path = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("postgres requires a host", func(t *testing.T) {
		cfg := base()
		cfg.Database.Type = "postgres"
		cfg.Database.Host = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown database type", func(t *testing.T) {
		cfg := base()
		cfg.Database.Type = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("worker count", func(t *testing.T) {
		cfg := base()
		cfg.Engine.MaxWorker = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestDatasetDir(t *testing.T) {
	cfg, err := LoadFromReader("yaml", []byte("engine:\n  data_dir: /tmp/fc"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fc/jets", cfg.DatasetDir("jets"))
}
