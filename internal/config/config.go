package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type RedisConfig struct {
	// Enabled turns on the reblog count cache.
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	TTL     time.Duration `yaml:"ttl"`
}

// ScoringConfig carries the trending/hot tunables and the community
// moderation toggle.
type ScoringConfig struct {
	VoteWeight        float64 `yaml:"voteWeight"`
	InteractionWeight float64 `yaml:"interactionWeight"`
	ReblogWeight      float64 `yaml:"reblogWeight"`
	CommentWeight     float64 `yaml:"commentWeight"`
	ReblogDivisor     float64 `yaml:"reblogDivisor"`
	CommentDivisor    float64 `yaml:"commentDivisor"`
	TrendingTimescale float64 `yaml:"trendingTimescale"`
	HotFactor         float64 `yaml:"hotFactor"`
	// CommunityOverride lets community moderation replace the computed
	// hide/gray flags on community-owned posts.
	CommunityOverride bool `yaml:"communityOverride"`
}

type PipelineConfig struct {
	// Workers bounds concurrent record builds (and thereby reblog lookups).
	Workers int `yaml:"workers"`
	// LookupRPS and LookupBurst rate-limit reblog count queries.
	LookupRPS   float64       `yaml:"lookupRps"`
	LookupBurst int           `yaml:"lookupBurst"`
	Interval    time.Duration `yaml:"interval"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{DBPath: "./hivedex.db"},
		Redis:   RedisConfig{Enabled: false, Addr: "127.0.0.1:6379", TTL: 5 * time.Minute},
		Scoring: ScoringConfig{
			VoteWeight:        0.2,
			InteractionWeight: 0.7,
			ReblogWeight:      1.0,
			CommentWeight:     0.7,
			ReblogDivisor:     1.0,
			CommentDivisor:    2.0,
			TrendingTimescale: 240000,
			HotFactor:         24,
			CommunityOverride: true,
		},
		Pipeline: PipelineConfig{Workers: 8, LookupRPS: 200, LookupBurst: 50, Interval: time.Minute},
		Metrics:  MetricsConfig{Addr: ""},
		Logging:  LoggingConfig{Level: "info", Console: true},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if v := os.Getenv("HIVEDEX_DB"); v != "" && c.Storage.DBPath == "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" && c.Redis.Addr == "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" && c.Metrics.Addr == "" {
		c.Metrics.Addr = v
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
