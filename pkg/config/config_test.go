package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Server.Endpoint != "/analyze" {
		t.Errorf("Endpoint = %s, want /analyze", cfg.Server.Endpoint)
	}
	if cfg.Server.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 (unbounded)", cfg.Server.Timeout)
	}
	if cfg.Output.HideDelay != time.Second {
		t.Errorf("HideDelay = %v, want 1s", cfg.Output.HideDelay)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"EmptyURL", func(c *Config) { c.Server.URL = "" }},
		{"EndpointWithoutSlash", func(c *Config) { c.Server.Endpoint = "analyze" }},
		{"NegativeTimeout", func(c *Config) { c.Server.Timeout = -time.Second }},
		{"NegativeBandwidth", func(c *Config) { c.Server.BandwidthLimit = -1 }},
		{"BadFormat", func(c *Config) { c.Output.Format = "xml" }},
		{"NegativeHideDelay", func(c *Config) { c.Output.HideDelay = -time.Millisecond }},
		{"BadLogFormat", func(c *Config) { c.Logging.Format = "xml" }},
		{"BadLogLevel", func(c *Config) { c.Logging.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Server.URL = "https://similarity.example.com"
	cfg.Server.BandwidthLimit = 2048
	cfg.Output.Format = "html"
	cfg.Output.HideDelay = 250 * time.Millisecond
	cfg.Exclude = []string{"*.o", ".git/"}

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if loaded.Server.URL != cfg.Server.URL {
		t.Errorf("URL = %s, want %s", loaded.Server.URL, cfg.Server.URL)
	}
	if loaded.Server.BandwidthLimit != 2048 {
		t.Errorf("BandwidthLimit = %d, want 2048", loaded.Server.BandwidthLimit)
	}
	if loaded.Output.Format != "html" {
		t.Errorf("Format = %s, want html", loaded.Output.Format)
	}
	if loaded.Output.HideDelay != 250*time.Millisecond {
		t.Errorf("HideDelay = %v, want 250ms", loaded.Output.HideDelay)
	}
	if len(loaded.Exclude) != 2 || loaded.Exclude[0] != "*.o" {
		t.Errorf("Exclude = %v", loaded.Exclude)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  url: http://10.0.0.5:5000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Server.URL != "http://10.0.0.5:5000" {
		t.Errorf("URL = %s", cfg.Server.URL)
	}
	if cfg.Server.Endpoint != "/analyze" {
		t.Errorf("Endpoint = %s, want default /analyze", cfg.Server.Endpoint)
	}
	if !cfg.Output.Progress {
		t.Error("Progress should default to true")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() should reject invalid output format")
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFromFile() should fail for a missing file")
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("SIMNORRIS_SERVER_URL", "http://override.test:8080")
	t.Setenv("SIMNORRIS_OUTPUT_FORMAT", "json")
	t.Setenv("SIMNORRIS_OUTPUT_HIDE_DELAY", "3s")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if cfg.Server.URL != "http://override.test:8080" {
		t.Errorf("URL = %s", cfg.Server.URL)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Format = %s, want json", cfg.Output.Format)
	}
	if cfg.Output.HideDelay != 3*time.Second {
		t.Errorf("HideDelay = %v, want 3s", cfg.Output.HideDelay)
	}
}
