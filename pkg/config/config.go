// Package config loads goxmatch settings from an optional .env file, an
// optional config file and GOXMATCH_ environment variables, and turns them
// into evaluator options, a logger and a value index.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/sandrolain/goxmatch/pkg/evaluator"
	"github.com/sandrolain/goxmatch/pkg/index"
	"github.com/sandrolain/goxmatch/pkg/profiler"
	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/store"
)

// DefaultPrefix is the environment variable prefix used when Load gets none.
const DefaultPrefix = "GOXMATCH"

// Config holds the runtime settings.
type Config struct {
	Engine               string        `mapstructure:"engine"`
	TranslationCacheSize int           `mapstructure:"translation_cache_size"`
	Timeout              time.Duration `mapstructure:"timeout"`
	Workers              int           `mapstructure:"workers"`
	Profiling            bool          `mapstructure:"profiling"`
	Metrics              bool          `mapstructure:"metrics"`
	Log                  LogConfig     `mapstructure:"log"`
	Index                IndexConfig   `mapstructure:"index"`
}

// IndexConfig selects and configures the value index.
type IndexConfig struct {
	// Driver is "memory", "sqlite", or empty for no index.
	Driver string `mapstructure:"driver"`
	// DSN is the sqlite data source.
	DSN string `mapstructure:"dsn"`
	// Paths maps element path patterns to index type names.
	Paths map[string]string `mapstructure:"paths"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine", regex.Default.Name())
	v.SetDefault("translation_cache_size", 0)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("workers", 4)
	v.SetDefault("profiling", false)
	v.SetDefault("metrics", false)
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)
	v.SetDefault("index.driver", "")
	v.SetDefault("index.dsn", "file::memory:?cache=shared")
	v.SetDefault("index.paths", map[string]string{})
}

// Load reads the configuration.
//
// Values come, from lowest to highest precedence, from the defaults, the
// config file at path (yaml, toml or json; skipped when path is empty),
// and environment variables named prefix + "_" + key with dots replaced by
// underscores, e.g. GOXMATCH_LOG_LEVEL. A .env file in the working
// directory is loaded into the environment first when present.
func Load(path, prefix string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := regex.EngineByName(c.Engine); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Index.Driver) {
	case "", "none", "memory", "sqlite":
	default:
		return fmt.Errorf("config: unknown index driver %q", c.Index.Driver)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: negative timeout %s", c.Timeout)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// EngineValue returns the configured regex engine.
func (c *Config) EngineValue() regex.Engine {
	e, err := regex.EngineByName(c.Engine)
	if err != nil {
		return regex.Default
	}
	return e
}

// EvalOptions maps the configuration onto evaluator options. Metrics are
// registered with reg, or the default registerer when reg is nil.
func (c *Config) EvalOptions(logger *slog.Logger, reg prometheus.Registerer) []evaluator.EvalOption {
	opts := []evaluator.EvalOption{
		evaluator.WithEngine(c.EngineValue()),
		evaluator.WithTimeout(c.Timeout),
	}
	if c.TranslationCacheSize > 0 {
		opts = append(opts, evaluator.WithTranslationCacheSize(c.TranslationCacheSize))
	}
	if logger != nil {
		opts = append(opts, evaluator.WithLogger(logger))
	}

	var profs profiler.Multi
	if c.Profiling {
		if logger == nil {
			logger = slog.Default()
		}
		profs = append(profs, profiler.NewSlog(logger))
	}
	if c.Metrics {
		profs = append(profs, profiler.NewMetrics(reg))
	}
	switch len(profs) {
	case 0:
	case 1:
		opts = append(opts, evaluator.WithProfiler(profs[0]))
	default:
		opts = append(opts, evaluator.WithProfiler(profs))
	}
	return opts
}

// OpenIndex opens the configured value index. It returns a nil indexer when
// no driver is set. The returned close function is never nil.
func (c *Config) OpenIndex() (index.Indexer, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(c.Index.Driver) {
	case "memory":
		return index.NewMemoryIndex(c.EngineValue()), noop, nil
	case "sqlite":
		idx, err := index.NewSQLIndex(c.Index.DSN, c.EngineValue())
		if err != nil {
			return nil, noop, err
		}
		return idx, idx.Close, nil
	default:
		return nil, noop, nil
	}
}

// StoreConfig returns the document store settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{Paths: c.Index.Paths}
}
