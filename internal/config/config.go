package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"quiz-rewards-engine/internal/achievements"
	"quiz-rewards-engine/internal/rewards"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
	Storage struct {
		Driver string `yaml:"driver"` // memory, file, redis, postgres, sqlite
		Path   string `yaml:"path"`
		Key    string `yaml:"key"`
	} `yaml:"storage"`
	Audit struct {
		Driver string `yaml:"driver"` // file or redis
		Path   string `yaml:"path"`
		Key    string `yaml:"key"`
		MaxLen int64  `yaml:"max_len"`
	} `yaml:"audit"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		DSN string `yaml:"dsn"`
	} `yaml:"sqlite"`
	Challenges struct {
		File    string `yaml:"file"`
		TTL     string `yaml:"ttl"`
		Default string `yaml:"default"`
	} `yaml:"challenges"`
	Rewards struct {
		Thresholds []rewards.Threshold `yaml:"thresholds"`
	} `yaml:"rewards"`
	Achievements *achievements.Node `yaml:"achievements"`
}

// Default is used when no config file exists.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads YAML config from path. A missing file yields Default.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data.json"
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "gamify:ledger"
	}
	if c.Audit.Driver == "" {
		c.Audit.Driver = "file"
	}
	if c.Audit.Path == "" {
		c.Audit.Path = "audit.log"
	}
	if c.Audit.Key == "" {
		c.Audit.Key = "gamify:audit"
	}
	if c.SQLite.DSN == "" {
		c.SQLite.DSN = "file:gamify.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}
	if c.Challenges.Default == "" {
		c.Challenges.Default = "quiz1"
	}
	if len(c.Rewards.Thresholds) == 0 {
		c.Rewards.Thresholds = rewards.DefaultThresholds()
	}
	if c.Achievements == nil {
		tree := achievements.DefaultTaxonomy()
		c.Achievements = &tree
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
