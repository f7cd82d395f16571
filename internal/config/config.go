// Package config loads playground settings from defaults, an optional YAML
// file, a .env file and NLP_PLAYGROUND_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix namespaces environment overrides, e.g. NLP_PLAYGROUND_SERVICE_URL
	EnvPrefix = "NLP_PLAYGROUND"

	// FileName is the config file looked up without an explicit --config
	FileName = "nlp-playground"
)

// Config is the resolved playground configuration
type Config struct {
	ServiceURL      string         `mapstructure:"service_url"`
	RequestTimeout  time.Duration  `mapstructure:"request_timeout"`
	Hyperparameters map[string]any `mapstructure:"hyperparameters"`
	ArchivePath     string         `mapstructure:"archive_path"`
	Log             LogConfig      `mapstructure:"log"`
	FakeService     FakeConfig     `mapstructure:"fake_service"`
}

// LogConfig controls logger output
type LogConfig struct {
	JSON    bool `mapstructure:"json"`
	Verbose bool `mapstructure:"verbose"`
}

// FakeConfig configures the local stand-in service
type FakeConfig struct {
	Addr         string `mapstructure:"addr"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("service_url", "http://localhost:8000")
	v.SetDefault("request_timeout", 2*time.Minute)
	v.SetDefault("hyperparameters", map[string]any{"C": 1.0})
	v.SetDefault("archive_path", defaultArchivePath())

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbose", false)

	v.SetDefault("fake_service.addr", ":8000")
	v.SetDefault("fake_service.chunk_size", 800)
	v.SetDefault("fake_service.chunk_overlap", 100)
}

// defaultArchivePath is where workspace transcripts are saved.
func defaultArchivePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".nlp-playground", "transcripts.db")
	}
	return filepath.Join(home, ".nlp-playground", "transcripts.db")
}

// New returns a viper instance with defaults and environment binding. When
// path is empty the config file is searched in the working directory and
// $HOME/.config/nlp-playground.
func New(path string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		return v
	}
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", FileName))
	}
	return v
}

// Load reads .env (if present) and the config file, then decodes the result.
// A missing config file is not an error unless path names it explicitly.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	v := New(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Hyperparameters = restoreCase(cfg.Hyperparameters)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// caseSensitiveParams are hyperparameters the service reads with exact spelling.
var caseSensitiveParams = []string{"C"}

// restoreCase undoes viper's lowercasing of map keys for caseSensitiveParams.
func restoreCase(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		for _, name := range caseSensitiveParams {
			if strings.EqualFold(k, name) {
				k = name
				break
			}
		}
		out[k] = v
	}
	return out
}

// Validate rejects settings the client cannot work with.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.ServiceURL, "http://") && !strings.HasPrefix(c.ServiceURL, "https://") {
		return errors.WithHint(
			errors.Newf("invalid service_url %q", c.ServiceURL),
			"use an absolute http:// or https:// URL",
		)
	}
	if c.ArchivePath == "" {
		return errors.New("archive_path must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.Newf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.FakeService.ChunkSize <= 0 {
		return errors.Newf("fake_service.chunk_size must be positive, got %d", c.FakeService.ChunkSize)
	}
	if c.FakeService.ChunkOverlap < 0 || c.FakeService.ChunkOverlap >= c.FakeService.ChunkSize {
		return errors.Newf("fake_service.chunk_overlap must be in [0, %d)", c.FakeService.ChunkSize)
	}
	return nil
}
