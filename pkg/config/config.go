package config

import (
	"time"

	"github.com/sdejongh/simnorris/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Exclude []string      `yaml:"exclude" mapstructure:"exclude"`
}

// ServerConfig holds settings for the analysis server
type ServerConfig struct {
	URL            string        `yaml:"url" mapstructure:"url"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Proxy          string        `yaml:"proxy" mapstructure:"proxy"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`                 // 0 waits forever
	BandwidthLimit int64         `yaml:"bandwidth_limit" mapstructure:"bandwidth_limit"` // bytes per second, 0 = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format    string        `yaml:"format" mapstructure:"format"`         // "human", "json" or "html"
	Progress  bool          `yaml:"progress" mapstructure:"progress"`     // Show progress bar
	Quiet     bool          `yaml:"quiet" mapstructure:"quiet"`           // Suppress non-error output
	HideDelay time.Duration `yaml:"hide_delay" mapstructure:"hide_delay"` // Delay before the progress bar is hidden
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Format  string `yaml:"format" mapstructure:"format"` // "json" or "text"
	Level   string `yaml:"level" mapstructure:"level"`   // "debug", "info", "warn", "error"
	File    string `yaml:"file" mapstructure:"file"`     // Log file path (empty = no file)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:      "http://127.0.0.1:5000",
			Endpoint: models.DefaultEndpoint,
		},
		Output: OutputConfig{
			Format:    "human",
			Progress:  true,
			HideDelay: time.Second,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
		},
		Exclude: []string{},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	op := models.AnalysisOperation{ServerURL: c.Server.URL, Endpoint: c.Server.Endpoint}
	if err := op.Validate(); err != nil {
		return err
	}

	if c.Server.Timeout < 0 {
		return &models.ValidationError{
			Field:   "server.timeout",
			Message: "must not be negative",
		}
	}

	if c.Server.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "server.bandwidth_limit",
			Message: "must not be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true, "html": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human', 'json' or 'html'",
		}
	}

	if c.Output.HideDelay < 0 {
		return &models.ValidationError{
			Field:   "output.hide_delay",
			Message: "must not be negative",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
