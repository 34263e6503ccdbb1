package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/simnorris/pkg/config"
	"github.com/sdejongh/simnorris/pkg/ratelimit"
)

// validateAnalyzeFlags validates the analyze command flags.
// Missing sources are not an error here: an empty selection is reported
// to the user by the alert.
func validateAnalyzeFlags() error {
	if err := validateOutputFormat(analyzeFlags.Output); err != nil {
		return err
	}

	// Validate log format
	validLogFormats := map[string]bool{
		"":     true,
		"text": true,
		"json": true,
	}
	if !validLogFormats[analyzeFlags.LogFormat] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", analyzeFlags.LogFormat)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[analyzeFlags.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", analyzeFlags.LogLevel)
	}

	if analyzeFlags.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %s (must not be negative)", analyzeFlags.Timeout)
	}
	if analyzeFlags.HideDelay < 0 {
		return fmt.Errorf("invalid hide delay: %s (must not be negative)", analyzeFlags.HideDelay)
	}

	return nil
}

// validateOutputFormat accepts an empty format, meaning the configured one
func validateOutputFormat(format string) error {
	validFormats := map[string]bool{
		"":      true,
		"human": true,
		"json":  true,
		"html":  true,
	}
	if !validFormats[format] {
		return fmt.Errorf("invalid output format: %s (valid: human, json, html)", format)
	}
	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) error {
	// Server
	if analyzeFlags.Server != "" {
		cfg.Server.URL = analyzeFlags.Server
	}
	if analyzeFlags.Endpoint != "" {
		cfg.Server.Endpoint = analyzeFlags.Endpoint
	}
	if analyzeFlags.Proxy != "" {
		cfg.Server.Proxy = analyzeFlags.Proxy
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Server.Timeout = analyzeFlags.Timeout
	}

	// Bandwidth limit
	if analyzeFlags.Bandwidth != "" {
		rate, err := ratelimit.ParseRate(analyzeFlags.Bandwidth)
		if err != nil {
			return fmt.Errorf("--bandwidth: %w", err)
		}
		cfg.Server.BandwidthLimit = rate
	}

	// Exclude patterns
	if len(analyzeFlags.Exclude) > 0 {
		cfg.Exclude = analyzeFlags.Exclude
	}

	// Output format
	if analyzeFlags.Output != "" {
		cfg.Output.Format = analyzeFlags.Output
	}
	if cmd.Flags().Changed("hide-delay") {
		cfg.Output.HideDelay = analyzeFlags.HideDelay
	}

	// Logging
	if analyzeFlags.LogFile != "" {
		cfg.Logging.File = analyzeFlags.LogFile
		cfg.Logging.Enabled = true
	}
	if analyzeFlags.LogFormat != "" {
		cfg.Logging.Format = analyzeFlags.LogFormat
	}
	if analyzeFlags.LogLevel != "" {
		cfg.Logging.Level = analyzeFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Enable progress in verbose mode
	if globalFlags.Verbose && !globalFlags.Quiet {
		cfg.Output.Progress = true
	}

	return nil
}
