package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "TRAFFICSIM_"
	configEnvVar = "TRAFFICSIM_CONFIG_PATH"
)

// Loader builds a Config from defaults, an optional YAML file, then
// environment overrides, in that priority order.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader returns a Loader with the default search paths and prefix.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/trafficsim/config.yaml",
		},
		envPrefix: envPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type LoaderOption func(*Loader)

func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) { l.configPaths = paths }
}

func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) { l.envPrefix = prefix }
}

// Load resolves defaults -> config file -> environment -> validation.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := l.loadConfigFile(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
	}
	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		"app.name":        "trafficsim",
		"app.version":     "0.1.0",
		"app.environment": "development",

		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		"sim.horizon":        86400,
		"sim.alpha":          1.0,
		"sim.synthetic_kind": "grid",
		"sim.grid_rows":      6,
		"sim.grid_cols":      6,
		"sim.linear_nodes":   4,
		"sim.edge_length":    50.0,
		"sim.free_speed":     10.0,
		"sim.flow_cap":       0.25,
		"sim.lanes":          1,

		"planner.replan_probability": 0.5,
		"planner.seed":               int64(1),

		"optimizer.max_runs": 20,

		"database.enabled":             false,
		"database.host":                "localhost",
		"database.port":                5432,
		"database.database":            "trafficsim",
		"database.username":            "postgres",
		"database.ssl_mode":            "disable",
		"database.max_open_conns":      10,
		"database.max_idle_conns":      2,
		"database.conn_max_lifetime":   5 * time.Minute,
		"database.conn_max_idle_time":  5 * time.Minute,
		"database.migrations_path":    "migrations",
		"database.auto_migrate":       true,

		"cache.backend":        "memory",
		"cache.default_ttl":     10 * time.Minute,
		"cache.max_entries":     50000,
		"cache.redis_addr":      "localhost:6379",
		"cache.redis_pool_size": 10,

		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "trafficsim",

		"report.format":     "csv",
		"report.output_dir": "reports",
		"report.chunk_size": 1000,

		"audit.enabled":     true,
		"audit.backend":     "stdout",
		"audit.buffer_size": 1000,
	}
	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}
	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}
	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, l.envPrefix)),
			"_", ".", 1,
		)
	}), nil)
}

// MustLoad loads the configuration or panics, for use at process startup.
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load loads configuration with default search paths and prefix.
func Load() (*Config, error) {
	return NewLoader().Load()
}
