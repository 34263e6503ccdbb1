package analyze

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/simnorris/pkg/logging"
	"github.com/sdejongh/simnorris/pkg/models"
	"github.com/sdejongh/simnorris/pkg/output"
)

// DefaultHideDelay is how long the progress indicator stays at 100%
const DefaultHideDelay = time.Second

// Uploader submits a selection and returns the decoded server response
type Uploader interface {
	Analyze(ctx context.Context, sel *models.FileSelection) (*models.AnalysisResponse, error)
}

// Scheduler runs f once after d without blocking the caller
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Option configures a Client
type Option func(*Client)

// WithHideDelay sets the delay between completion and hiding the progress
// indicator. Negative values are treated as zero.
func WithHideDelay(d time.Duration) Option {
	return func(c *Client) {
		c.hideDelay = max(d, 0)
	}
}

// WithScheduler replaces time.AfterFunc for the delayed hide
func WithScheduler(s Scheduler) Option {
	return func(c *Client) {
		if s != nil {
			c.schedule = s
		}
	}
}

// Client uploads a selection and renders the similarity report it gets back
type Client struct {
	uploader  Uploader
	progress  output.ProgressIndicator
	panel     output.ResultsPanel
	alerter   output.Alerter
	logger    logging.Logger
	hideDelay time.Duration
	schedule  Scheduler
	inflight  atomic.Int32
}

// NewClient creates a new upload-and-report client
func NewClient(
	uploader Uploader,
	progress output.ProgressIndicator,
	panel output.ResultsPanel,
	alerter output.Alerter,
	logger logging.Logger,
	opts ...Option,
) *Client {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if progress == nil {
		progress = output.NewNullProgress()
	}

	c := &Client{
		uploader:  uploader,
		progress:  progress,
		panel:     panel,
		alerter:   alerter,
		logger:    logger,
		hideDelay: DefaultHideDelay,
		schedule:  afterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitAndAnalyze sends the selection in one request and renders the outcome.
//
// An empty selection raises the alert and returns a *models.UserInputError
// without touching the network. Otherwise the progress indicator is shown at
// 0% and the results panel hidden until the response arrives; the indicator is
// then set to 100% and hidden after the hide delay, while rendering happens
// immediately. The report's Hidden channel is closed once that hide has run.
//
// A server error field is rendered as an error line and returned as
// *models.ServerError. Transport and decoding failures are rendered the same
// way and returned as *models.TransportError.
func (c *Client) SubmitAndAnalyze(ctx context.Context, sel *models.FileSelection) (*models.AnalysisReport, error) {
	report := &models.AnalysisReport{
		OperationID: uuid.New().String(),
		StartTime:   time.Now(),
	}
	if u, ok := c.uploader.(interface{ URL() string }); ok {
		report.ServerURL = u.URL()
	}

	logger := c.logger.WithFields(logging.Fields{"operation_id": report.OperationID})

	if sel.Empty() {
		c.alerter.Alert(models.NoFilesMessage)
		err := &models.UserInputError{Message: models.NoFilesMessage}
		logger.Warn(ctx, "no files selected", nil)
		return c.finish(report, models.StatusNoInput, err), err
	}

	if err := sel.Validate(); err != nil {
		logger.Error(ctx, "invalid selection", err, nil)
		return c.finish(report, models.StatusFailed, err), err
	}

	// Overlapping calls are allowed; their renders may interleave
	if n := c.inflight.Add(1); n > 1 {
		logger.Warn(ctx, "analysis started while another is in flight", logging.Fields{
			"in_flight": n,
		})
	}
	defer c.inflight.Add(-1)

	report.FilesSubmitted = sel.Count()
	report.ByOrigin = sel.CountByOrigin()
	report.BytesSubmitted = sel.TotalBytes()

	logger.Info(ctx, "submitting files for analysis", logging.Fields{
		"files": report.FilesSubmitted,
		"bytes": report.BytesSubmitted,
	})

	c.progress.Show()
	c.progress.SetPercent(0)
	c.panel.Hide()

	resp, err := c.uploader.Analyze(ctx, sel)
	if err != nil {
		report.Hidden = c.scheduleHide()
		c.panel.RenderError(describe(err))
		logger.Error(ctx, "analysis request failed", err, nil)

		var te *models.TransportError
		if !errors.As(err, &te) {
			err = &models.TransportError{Op: "send", Err: err}
		}
		return c.finish(report, models.StatusFailed, err), err
	}

	c.progress.SetPercent(100)
	report.Hidden = c.scheduleHide()
	report.Response = resp

	if resp.IsError() {
		c.panel.RenderError(resp.Error)
		err := &models.ServerError{Message: resp.Error}
		logger.Warn(ctx, "server reported an error", logging.Fields{"error": resp.Error})
		return c.finish(report, models.StatusServerError, err), err
	}

	c.panel.RenderReport(resp.Comparisons)
	logger.Info(ctx, "analysis results rendered", logging.Fields{
		"comparisons": len(resp.Comparisons),
	})

	return c.finish(report, models.StatusSuccess, nil), nil
}

// scheduleHide hides the progress indicator after the hide delay and returns
// a channel closed once it has
func (c *Client) scheduleHide() <-chan struct{} {
	done := make(chan struct{})
	c.schedule(c.hideDelay, func() {
		c.progress.Hide()
		close(done)
	})
	return done
}

func (c *Client) finish(report *models.AnalysisReport, status models.ReportStatus, err error) *models.AnalysisReport {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	report.Status = status
	report.Err = err
	return report
}

// describe turns a failure into the text shown after the error glyph
func describe(err error) string {
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}
