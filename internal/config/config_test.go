package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ytget/mediatask/internal/task"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Workers != task.DefaultWorkers {
		t.Errorf("Expected %d workers, got %d", task.DefaultWorkers, cfg.Workers)
	}
	if cfg.Executor != task.ExecutorGoroutine {
		t.Errorf("Expected goroutine executor, got %s", cfg.Executor)
	}
	if cfg.DownloadDir != DefaultDownloadDir {
		t.Errorf("Expected download dir %s, got %s", DefaultDownloadDir, cfg.DownloadDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `workers: 8
executor: osthread
download_dir: /tmp/media
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Workers)
	}
	if cfg.Executor != task.ExecutorOSThread {
		t.Errorf("Expected osthread executor, got %s", cfg.Executor)
	}
	if cfg.DownloadDir != "/tmp/media" {
		t.Errorf("Expected /tmp/media, got %s", cfg.DownloadDir)
	}

	// Unset values keep their defaults
	if cfg.AudioFormat != Default().AudioFormat {
		t.Errorf("Expected default audio format, got %s", cfg.AudioFormat)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/path/to/nowhere.yaml")
	if err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, false},
		{"too many workers", func(c *Config) { c.Workers = MaxWorkers + 1 }, false},
		{"empty executor", func(c *Config) { c.Executor = "" }, true},
		{"unknown executor", func(c *Config) { c.Executor = "forkbomb" }, false},
		{"negative batch size", func(c *Config) { c.BatchSize = -2 }, false},
		{"negative retries", func(c *Config) { c.Retries = -1 }, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)

			err := cfg.Validate()
			if test.ok && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
			if !test.ok && err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}
