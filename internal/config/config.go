// Package config loads application settings from a YAML file and resolves
// defaults. The task core itself reads no configuration; everything is
// resolved here once and passed down explicitly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ytget/mediatask/internal/download"
	"github.com/ytget/mediatask/internal/task"
)

// Limits
const (
	// MaxWorkers caps the pool size to keep a typo in the config from
	// spawning hundreds of OS threads.
	MaxWorkers = 64

	DefaultDownloadDir = "downloads"
	DefaultLogLevel    = "info"
)

// Config holds every tunable setting of the application.
type Config struct {
	Workers        int    `yaml:"workers"`
	Executor       string `yaml:"executor"`
	DownloadDir    string `yaml:"download_dir"`
	FormatSelector string `yaml:"format_selector"`
	AudioFormat    string `yaml:"audio_format"`
	Retries        int    `yaml:"retries"`
	BatchSize      int    `yaml:"batch_size"`
	LogLevel       string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Workers:        task.DefaultWorkers,
		Executor:       task.ExecutorGoroutine,
		DownloadDir:    DefaultDownloadDir,
		FormatSelector: download.DefaultFormatSelector,
		AudioFormat:    download.DefaultAudioFormat,
		Retries:        download.MaxAttempts,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads a YAML config file and merges it over the defaults. A missing
// value in the file keeps its default.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the config for values the application cannot run with.
func (c *Config) Validate() error {
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 0 and %d, got %d", MaxWorkers, c.Workers)
	}

	switch c.Executor {
	case "", task.ExecutorGoroutine, task.ExecutorOSThread:
	default:
		return fmt.Errorf("unknown executor kind: %s", c.Executor)
	}

	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}

	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", c.BatchSize)
	}

	return nil
}
