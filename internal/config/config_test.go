package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/nlp-playground/testutil"
)

func TestDefaults(t *testing.T) {
	cfg, err := Decode(New(""))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.ServiceURL)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, map[string]any{"C": 1.0}, cfg.Hyperparameters)
	assert.False(t, cfg.Log.JSON)
	assert.True(t, strings.HasSuffix(cfg.ArchivePath, "transcripts.db"))
	assert.Equal(t, ":8000", cfg.FakeService.Addr)
	assert.Equal(t, 800, cfg.FakeService.ChunkSize)
	assert.Equal(t, 100, cfg.FakeService.ChunkOverlap)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("NLP_PLAYGROUND_SERVICE_URL", "http://backend:9000")
	t.Setenv("NLP_PLAYGROUND_REQUEST_TIMEOUT", "30s")
	t.Setenv("NLP_PLAYGROUND_LOG_JSON", "true")

	cfg, err := Decode(New(""))
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.ServiceURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_File(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteFile(t, dir, "playground.yaml", []byte(`
service_url: https://nlp.example.com
request_timeout: 45s
hyperparameters:
  C: 0.5
  max_iter: 300
fake_service:
  chunk_size: 400
  chunk_overlap: 50
`))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://nlp.example.com", cfg.ServiceURL)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0.5, cfg.Hyperparameters["C"])
	assert.Equal(t, 300, cfg.Hyperparameters["max_iter"])
	assert.Equal(t, 400, cfg.FakeService.ChunkSize)
	assert.Equal(t, 50, cfg.FakeService.ChunkOverlap)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("/nonexistent/nlp-playground.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ServiceURL:     "http://localhost:8000",
			RequestTimeout: time.Minute,
			ArchivePath:    "transcripts.db",
			FakeService:    FakeConfig{ChunkSize: 800, ChunkOverlap: 100},
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.ServiceURL = "localhost:8000" }},
		{"empty url", func(c *Config) { c.ServiceURL = "" }},
		{"empty archive path", func(c *Config) { c.ArchivePath = "" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero chunk size", func(c *Config) { c.FakeService.ChunkSize = 0 }},
		{"overlap too large", func(c *Config) { c.FakeService.ChunkOverlap = 800 }},
		{"negative overlap", func(c *Config) { c.FakeService.ChunkOverlap = -1 }},
	}

	base := valid()
	require.NoError(t, base.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
