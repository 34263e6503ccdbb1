package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/simnorris/pkg/analyze"
	"github.com/sdejongh/simnorris/pkg/config"
	"github.com/sdejongh/simnorris/pkg/logging"
	"github.com/sdejongh/simnorris/pkg/models"
	"github.com/sdejongh/simnorris/pkg/output"
	"github.com/sdejongh/simnorris/pkg/selection"
	"github.com/sdejongh/simnorris/pkg/upload"
)

// AnalyzeFlags holds analyze command flags
type AnalyzeFlags struct {
	Files     []string
	Folder    string
	Archive   string
	Server    string
	Endpoint  string
	Output    string
	Report    string
	Exclude   []string
	Bandwidth string
	Proxy     string
	Timeout   time.Duration
	HideDelay time.Duration
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var analyzeFlags AnalyzeFlags

// exitFunc ends the process with the report's exit code
var exitFunc = os.Exit

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Upload files and show the similarity report",
		Long: `Upload individual files, a folder and an archive to the analysis server
in one request, then show the similarity of every compared pair.

Files are sent in that order: individual files, folder contents, archive.`,
		Example: `  simnorris analyze --file a.c --file b.c
  simnorris analyze --folder ./submissions --exclude "*.o" -o html --report report.html
  simnorris analyze --archive batch.zip --server http://grader:5000`,
		RunE: runAnalyze,
	}

	// Sources
	cmd.Flags().StringArrayVarP(&analyzeFlags.Files, "file", "f", nil, "individual file to upload (repeatable)")
	cmd.Flags().StringVar(&analyzeFlags.Folder, "folder", "", "folder whose files are all uploaded")
	cmd.Flags().StringVar(&analyzeFlags.Archive, "archive", "", "archive (.zip) to upload")
	cmd.Flags().StringSliceVar(&analyzeFlags.Exclude, "exclude", []string{}, "glob patterns to exclude from the folder")

	// Server
	cmd.Flags().StringVar(&analyzeFlags.Server, "server", "", "analysis server URL (default http://127.0.0.1:5000)")
	cmd.Flags().StringVar(&analyzeFlags.Endpoint, "endpoint", "", "analysis endpoint path (default /analyze)")
	cmd.Flags().StringVar(&analyzeFlags.Proxy, "proxy", "", "HTTP proxy URL")
	cmd.Flags().DurationVar(&analyzeFlags.Timeout, "timeout", 0, "request timeout (0 waits forever)")
	cmd.Flags().StringVarP(&analyzeFlags.Bandwidth, "bandwidth", "b", "", "upload bandwidth limit (e.g., \"512K\", \"10M\")")

	// Output
	cmd.Flags().StringVarP(&analyzeFlags.Output, "output", "o", "", "output format: human, json, html")
	cmd.Flags().StringVar(&analyzeFlags.Report, "report", "", "also write an HTML report to file")
	cmd.Flags().DurationVar(&analyzeFlags.HideDelay, "hide-delay", time.Second, "how long the finished progress bar stays visible")

	// Logging flags
	cmd.Flags().StringVar(&analyzeFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&analyzeFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&analyzeFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// Validate flags
	if err := validateAnalyzeFlags(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create logger
	logger, err := createLogger(cfg.Logging, globalFlags.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	code, err := analyzeSelection(ctx, cmd, cfg, logger)
	logger.Close()
	if err != nil {
		return err
	}

	// Exit with appropriate code
	exitFunc(code)
	return nil
}

// analyzeSelection gathers, uploads and renders; it returns the exit code.
// Errors are returned only for failures that happen before anything is shown.
func analyzeSelection(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger logging.Logger) (int, error) {
	gatherer := selection.NewGatherer(logger)
	sel, err := gatherer.Gather(ctx, selection.Sources{
		Files:   analyzeFlags.Files,
		Folder:  analyzeFlags.Folder,
		Archive: analyzeFlags.Archive,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to gather files: %w", err)
	}

	uploader, err := upload.NewClient(upload.Options{
		ServerURL:      cfg.Server.URL,
		Endpoint:       cfg.Server.Endpoint,
		Timeout:        cfg.Server.Timeout,
		Proxy:          cfg.Server.Proxy,
		BandwidthLimit: cfg.Server.BandwidthLimit,
		Logger:         logger,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create upload client: %w", err)
	}

	surface, err := newSurface(cfg, analyzeFlags.Report, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return 0, err
	}

	client := analyze.NewClient(
		uploader,
		surface.progress,
		surface.panel,
		output.NewTerminalAlerter(cmd.ErrOrStderr()),
		logger,
		analyze.WithHideDelay(cfg.Output.HideDelay),
	)

	report, err := client.SubmitAndAnalyze(ctx, sel)
	report.WaitHidden()

	if report.Status != models.StatusNoInput {
		if ferr := surface.flush(); ferr != nil {
			return 0, ferr
		}
	}

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return 0, err
	}

	logger.Info(ctx, "analysis finished", logging.Fields{
		"operation_id": report.OperationID,
		"status":       string(report.Status),
		"duration":     report.Duration.Round(time.Millisecond).String(),
	})

	return report.Status.ExitCode(), nil
}

// surface is the set of presentation targets for one invocation
type surface struct {
	progress   output.ProgressIndicator
	panel      output.ResultsPanel
	document   *output.HTMLPanel // -o html, flushed to stdout
	jsonOut    *output.JSONPanel // -o json, written per render
	reportFile *output.HTMLPanel // --report
	reportPath string
}

// newSurface builds the panel for the output format plus an HTML report
// panel when a report path is given. The progress bar is only drawn for
// human output outside quiet mode.
func newSurface(cfg *config.Config, reportPath string, stdout, stderr io.Writer) (*surface, error) {
	s := &surface{reportPath: reportPath}

	panel, err := output.NewPanel(cfg.Output.Format, stdout)
	if err != nil {
		return nil, err
	}
	switch p := panel.(type) {
	case *output.HTMLPanel:
		s.document = p
	case *output.JSONPanel:
		s.jsonOut = p
	}

	if reportPath != "" {
		s.reportFile = output.NewHTMLPanel(nil)
		s.panel = output.NewMultiPanel(panel, s.reportFile)
	} else {
		s.panel = panel
	}

	if cfg.Output.Format == "human" && cfg.Output.Progress && !cfg.Output.Quiet {
		s.progress = output.NewBarProgress(stderr, "Analyzing")
	} else {
		s.progress = output.NewNullProgress()
	}

	return s, nil
}

func (s *surface) flush() error {
	if s.jsonOut != nil {
		if err := s.jsonOut.Flush(); err != nil {
			return err
		}
	}
	if s.document != nil {
		if err := s.document.Flush(); err != nil {
			return err
		}
	}
	if s.reportFile != nil {
		if err := s.reportFile.WriteReportFile(s.reportPath); err != nil {
			return err
		}
	}
	return nil
}

// createLogger creates a logger based on configuration.
// A log file wins; otherwise verbose mode logs to stderr.
func createLogger(cfg config.LoggingConfig, verbose bool, stderr io.Writer) (logging.Logger, error) {
	format := logging.ParseFormat(cfg.Format)
	level := logging.ParseLevel(cfg.Level)

	if cfg.File != "" {
		return logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.File,
			Format:     format,
			Level:      level,
			MaxSize:    10 * 1024 * 1024, // 10 MB
			MaxBackups: 5,
		})
	}

	if verbose || cfg.Enabled {
		return logging.NewStreamLogger(stderr, format, level), nil
	}

	return logging.NewNullLogger(), nil
}
