package scheduler

import (
	"time"

	"github.com/reguahq/regua/internal/config"
)

// Config controls dunning run cadence and batch sizes.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	BatchSize   int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 24 * time.Hour,
		JobTimeout:  5 * time.Minute,
		BatchSize:   200,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval: cfg.DunningRunInterval,
		JobTimeout:  cfg.DunningJobTimeout,
		BatchSize:   cfg.DunningBatchSize,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}
