// Package config layers default values, an optional YAML file and
// environment overrides into a single Config, the way every teacher
// service boots: defaults -> file -> env, highest priority last.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the simulation/optimizer CLI.
type Config struct {
	App       AppConfig       `koanf:"app"`
	Log       LogConfig       `koanf:"log"`
	Sim       SimConfig       `koanf:"sim"`
	Planner   PlannerConfig   `koanf:"planner"`
	Optimizer OptimizerConfig `koanf:"optimizer"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Report    ReportConfig    `koanf:"report"`
	Audit     AuditConfig     `koanf:"audit"`
}

// AppConfig carries identifying metadata, unused by the simulation itself;
// the name labels the metrics subsystem and the report author.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	Output     string `koanf:"output"`
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`
	Compress   bool   `koanf:"compress"`
}

// SimConfig points at the input MATSim-style network/plans files, or
// selects a synthetic topology when those paths are empty.
type SimConfig struct {
	NetworkPath   string  `koanf:"network_path"`
	PlansPath     string  `koanf:"plans_path"`
	Horizon       int     `koanf:"horizon"`
	Alpha         float64 `koanf:"alpha"`
	SyntheticKind string  `koanf:"synthetic_kind"` // grid, linear, or empty when loading from file
	GridRows      int     `koanf:"grid_rows"`
	GridCols      int     `koanf:"grid_cols"`
	LinearNodes   int     `koanf:"linear_nodes"`
	EdgeLength    float64 `koanf:"edge_length"` // meters, synthetic topologies only
	FreeSpeed     float64 `koanf:"free_speed"`  // meters/second, synthetic topologies only
	FlowCap       float64 `koanf:"flow_cap"`    // vehicles/second per lane, synthetic topologies only
	Lanes         int     `koanf:"lanes"`       // synthetic topologies only
}

// PlannerConfig configures the per-agent replanning walk.
type PlannerConfig struct {
	ReplanProbability float64 `koanf:"replan_probability"`
	Seed              int64   `koanf:"seed"`
}

// OptimizerConfig bounds the iterative simulate/update/replan loop.
type OptimizerConfig struct {
	MaxRuns int `koanf:"max_runs"`
}

// DatabaseConfig configures the Postgres-backed history store.
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	MigrationsPath  string        `koanf:"migrations_path"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

// CacheConfig configures the router's memoization cache.
type CacheConfig struct {
	Backend       string        `koanf:"backend"` // memory, redis
	DefaultTTL    time.Duration `koanf:"default_ttl"`
	MaxEntries    int           `koanf:"max_entries"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	RedisPoolSize int           `koanf:"redis_pool_size"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
}

// ReportConfig configures the per-iteration report writer.
type ReportConfig struct {
	Format    string `koanf:"format"` // csv, json, markdown, excel, pdf
	OutputDir string `koanf:"output_dir"`
	ChunkSize int    `koanf:"chunk_size"`
}

// AuditConfig configures the audit log sink.
type AuditConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Backend    string `koanf:"backend"` // stdout, file
	FilePath   string `koanf:"file_path"`
	BufferSize int    `koanf:"buffer_size"`
}

// Validate checks cross-field invariants the loader can't express as
// simple defaults.
func (c *Config) Validate() error {
	if c.Planner.ReplanProbability < 0 || c.Planner.ReplanProbability > 1 {
		return fmt.Errorf("config: planner.replan_probability must be within [0,1], got %f", c.Planner.ReplanProbability)
	}
	if c.Sim.Alpha <= 0 || c.Sim.Alpha > 1 {
		return fmt.Errorf("config: sim.alpha must be within (0,1], got %f", c.Sim.Alpha)
	}
	if c.Optimizer.MaxRuns < 0 {
		return fmt.Errorf("config: optimizer.max_runs must be non-negative, got %d", c.Optimizer.MaxRuns)
	}
	if c.Sim.NetworkPath == "" && c.Sim.SyntheticKind == "" {
		return fmt.Errorf("config: either sim.network_path or sim.synthetic_kind must be set")
	}
	return nil
}
