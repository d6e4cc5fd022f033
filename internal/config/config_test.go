package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if len(cfg.Library.AllowedExtensions) != 3 {
		t.Errorf("expected 3 default extensions, got %v", cfg.Library.AllowedExtensions)
	}
	if cfg.Library.MaxUploadSizeMB != 50 {
		t.Errorf("expected 50MB default upload size, got %d", cfg.Library.MaxUploadSizeMB)
	}
	if cfg.Tunnel.Enabled {
		t.Error("tunnel must be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port, got %s", cfg.Server.Port)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	original := DefaultConfig()
	original.Server.Port = "9090"
	original.Library.Path = "/srv/music"
	original.Logging.Format = "json"
	if err := original.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", loaded.Server.Port)
	}
	if loaded.Library.Path != "/srv/music" {
		t.Errorf("expected /srv/music, got %s", loaded.Library.Path)
	}
	if loaded.Logging.Format != "json" {
		t.Errorf("expected json format, got %s", loaded.Logging.Format)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"empty host", func(c *Config) { c.Server.Host = "" }, true},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, true},
		{"empty library path", func(c *Config) { c.Library.Path = "" }, true},
		{"no extensions", func(c *Config) { c.Library.AllowedExtensions = nil }, true},
		{"extension without dot", func(c *Config) { c.Library.AllowedExtensions = []string{"mp3"} }, true},
		{"zero upload size", func(c *Config) { c.Library.MaxUploadSizeMB = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestGetAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "3000"
	if got := cfg.GetAddress(); got != "127.0.0.1:3000" {
		t.Errorf("expected 127.0.0.1:3000, got %s", got)
	}
}
