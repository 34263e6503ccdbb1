package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/simnorris/pkg/config"
	"github.com/sdejongh/simnorris/pkg/models"
)

// RenderFlags holds render command flags
type RenderFlags struct {
	Input  string
	Output string
	Report string
}

var renderFlags RenderFlags

// NewRenderCommand creates the render command
func NewRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved analysis response",
		Long: `Render a JSON response previously returned by the analysis server,
without uploading anything. Use "-" to read the response from stdin.`,
		RunE: runRender,
	}

	cmd.Flags().StringVarP(&renderFlags.Input, "input", "i", "", "response JSON file, or - for stdin (required)")
	cmd.MarkFlagRequired("input")

	cmd.Flags().StringVarP(&renderFlags.Output, "output", "o", "", "output format: human, json, html")
	cmd.Flags().StringVar(&renderFlags.Report, "report", "", "also write an HTML report to file")

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(renderFlags.Output); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if renderFlags.Output != "" {
		cfg.Output.Format = renderFlags.Output
	}

	code, err := renderResponse(cmd, cfg)
	if err != nil {
		return err
	}

	exitFunc(code)
	return nil
}

// renderResponse decodes the saved response and renders it like a live one
func renderResponse(cmd *cobra.Command, cfg *config.Config) (int, error) {
	data, err := readInput(renderFlags.Input, cmd.InOrStdin())
	if err != nil {
		return 0, err
	}

	resp, err := models.DecodeResponse(data)
	if err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", renderFlags.Input, err)
	}

	// No progress bar for offline rendering
	cfg.Output.Progress = false
	surface, err := newSurface(cfg, renderFlags.Report, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return 0, err
	}

	status := models.StatusSuccess
	if resp.IsError() {
		surface.panel.RenderError(resp.Error)
		status = models.StatusServerError
	} else {
		surface.panel.RenderReport(resp.Comparisons)
	}

	if err := surface.flush(); err != nil {
		return 0, err
	}

	return status.ExitCode(), nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read response file: %w", err)
	}
	return data, nil
}
