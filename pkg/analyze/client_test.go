package analyze

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sdejongh/simnorris/pkg/models"
)

// recorder collects surface calls in the order they happen
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeProgress struct{ rec *recorder }

func (p fakeProgress) Show()            { p.rec.add("progress.show") }
func (p fakeProgress) SetPercent(n int) { p.rec.add("progress." + strconv.Itoa(n)) }
func (p fakeProgress) Hide()            { p.rec.add("progress.hide") }

type fakePanel struct {
	rec     *recorder
	visible bool
	errMsg  string
	cards   []models.ComparisonResult
}

func (p *fakePanel) Hide()         { p.visible = false; p.rec.add("panel.hide") }
func (p *fakePanel) Visible() bool { return p.visible }

func (p *fakePanel) RenderError(msg string) {
	p.visible = true
	p.errMsg = msg
	p.cards = nil
	p.rec.add("panel.error")
}

func (p *fakePanel) RenderReport(c []models.ComparisonResult) {
	p.visible = true
	p.errMsg = ""
	p.cards = c
	p.rec.add("panel.report")
}

type fakeAlerter struct {
	rec  *recorder
	msgs []string
}

func (a *fakeAlerter) Alert(msg string) {
	a.msgs = append(a.msgs, msg)
	a.rec.add("alert")
}

type fakeUploader struct {
	rec   *recorder
	calls int
	resp  *models.AnalysisResponse
	err   error
}

func (u *fakeUploader) Analyze(ctx context.Context, sel *models.FileSelection) (*models.AnalysisResponse, error) {
	u.calls++
	u.rec.add("upload")
	return u.resp, u.err
}

// manualScheduler holds delayed functions until fire is called
type manualScheduler struct {
	rec    *recorder
	delays []time.Duration
	funcs  []func()
}

func (s *manualScheduler) schedule(d time.Duration, f func()) {
	s.delays = append(s.delays, d)
	s.funcs = append(s.funcs, f)
	s.rec.add("schedule")
}

func (s *manualScheduler) fire() {
	for _, f := range s.funcs {
		f()
	}
	s.funcs = nil
}

type harness struct {
	rec      *recorder
	panel    *fakePanel
	alerter  *fakeAlerter
	uploader *fakeUploader
	sched    *manualScheduler
	client   *Client
}

func newHarness(resp *models.AnalysisResponse, err error) *harness {
	rec := &recorder{}
	h := &harness{
		rec:      rec,
		panel:    &fakePanel{rec: rec},
		alerter:  &fakeAlerter{rec: rec},
		uploader: &fakeUploader{rec: rec, resp: resp, err: err},
		sched:    &manualScheduler{rec: rec},
	}
	h.client = NewClient(h.uploader, fakeProgress{rec: rec}, h.panel, h.alerter, nil,
		WithScheduler(h.sched.schedule))
	return h
}

func twoFiles() *models.FileSelection {
	return models.NewFileSelection(
		[]models.SelectedFile{{Origin: models.OriginFile, Path: "/tmp/a.c", Name: "a.c", Size: 10}},
		nil,
		[]models.SelectedFile{{Origin: models.OriginArchive, Path: "/tmp/s.zip", Name: "s.zip", Size: 20}},
	)
}

func highResponse() *models.AnalysisResponse {
	return &models.AnalysisResponse{Comparisons: []models.ComparisonResult{
		{Files: [2]string{"a.c", "b.c"}, Metrics: models.Metrics{Overall: 92, Verdict: "High similarity"}},
	}}
}

func equalEvents(got, want []string) bool {
	return strings.Join(got, ",") == strings.Join(want, ",")
}

// ============== Empty Selection Tests ==============

func TestSubmitAndAnalyze_EmptySelection(t *testing.T) {
	for _, sel := range []*models.FileSelection{nil, models.NewFileSelection(nil, nil, nil)} {
		h := newHarness(highResponse(), nil)

		report, err := h.client.SubmitAndAnalyze(context.Background(), sel)

		var inputErr *models.UserInputError
		if !errors.As(err, &inputErr) {
			t.Fatalf("expected UserInputError, got %v", err)
		}
		if h.uploader.calls != 0 {
			t.Errorf("uploader called %d times, want 0", h.uploader.calls)
		}
		if len(h.alerter.msgs) != 1 || h.alerter.msgs[0] != "Please upload at least one file!" {
			t.Errorf("alerts = %v", h.alerter.msgs)
		}
		if !equalEvents(h.rec.list(), []string{"alert"}) {
			t.Errorf("events = %v, want only the alert", h.rec.list())
		}
		if report.Status != models.StatusNoInput || report.Status.ExitCode() != 3 {
			t.Errorf("status = %s", report.Status)
		}

		// nothing was shown, so nothing to wait for
		report.WaitHidden()
	}
}

// ============== Success Tests ==============

func TestSubmitAndAnalyze_Success(t *testing.T) {
	h := newHarness(highResponse(), nil)

	report, err := h.client.SubmitAndAnalyze(context.Background(), twoFiles())
	if err != nil {
		t.Fatalf("SubmitAndAnalyze() error = %v", err)
	}

	want := []string{
		"progress.show", "progress.0", "panel.hide",
		"upload",
		"progress.100", "schedule", "panel.report",
	}
	if !equalEvents(h.rec.list(), want) {
		t.Errorf("events = %v\nwant %v", h.rec.list(), want)
	}

	if len(h.panel.cards) != 1 || h.panel.cards[0].Files[0] != "a.c" {
		t.Errorf("cards = %+v", h.panel.cards)
	}
	if report.Status != models.StatusSuccess || report.FilesSubmitted != 2 || report.BytesSubmitted != 30 {
		t.Errorf("report = %+v", report)
	}
	if report.OperationID == "" {
		t.Error("expected an operation ID")
	}
	if report.ByOrigin[models.OriginArchive] != 1 {
		t.Errorf("ByOrigin = %v", report.ByOrigin)
	}
}

func TestSubmitAndAnalyze_HideAfterDelay(t *testing.T) {
	h := newHarness(highResponse(), nil)

	report, err := h.client.SubmitAndAnalyze(context.Background(), twoFiles())
	if err != nil {
		t.Fatalf("SubmitAndAnalyze() error = %v", err)
	}

	// rendered already, hide still pending
	if !h.panel.visible {
		t.Fatal("panel should be rendered before the hide fires")
	}
	select {
	case <-report.Hidden:
		t.Fatal("progress hidden before the delay elapsed")
	default:
	}
	if len(h.sched.delays) != 1 || h.sched.delays[0] != DefaultHideDelay {
		t.Errorf("delays = %v, want [%v]", h.sched.delays, DefaultHideDelay)
	}

	h.sched.fire()
	report.WaitHidden()

	events := h.rec.list()
	if events[len(events)-1] != "progress.hide" {
		t.Errorf("last event = %s, want progress.hide", events[len(events)-1])
	}
}

func TestSubmitAndAnalyze_RealTimer(t *testing.T) {
	rec := &recorder{}
	client := NewClient(&fakeUploader{rec: rec, resp: highResponse()},
		fakeProgress{rec: rec}, &fakePanel{rec: rec}, &fakeAlerter{rec: rec}, nil,
		WithHideDelay(20*time.Millisecond))

	start := time.Now()
	report, err := client.SubmitAndAnalyze(context.Background(), twoFiles())
	if err != nil {
		t.Fatalf("SubmitAndAnalyze() error = %v", err)
	}

	select {
	case <-report.Hidden:
	case <-time.After(2 * time.Second):
		t.Fatal("progress never hidden")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("hidden after %v, want at least 20ms", elapsed)
	}
}

// ============== Error Tests ==============

func TestSubmitAndAnalyze_ServerErrorWins(t *testing.T) {
	resp := highResponse()
	resp.Error = "bad file"
	h := newHarness(resp, nil)

	report, err := h.client.SubmitAndAnalyze(context.Background(), twoFiles())

	var serverErr *models.ServerError
	if !errors.As(err, &serverErr) || serverErr.Message != "bad file" {
		t.Fatalf("expected ServerError(bad file), got %v", err)
	}
	if h.panel.errMsg != "bad file" || h.panel.cards != nil {
		t.Errorf("panel error=%q cards=%v", h.panel.errMsg, h.panel.cards)
	}
	if report.Status != models.StatusServerError || report.Status.ExitCode() != 1 {
		t.Errorf("status = %s", report.Status)
	}

	want := []string{
		"progress.show", "progress.0", "panel.hide",
		"upload",
		"progress.100", "schedule", "panel.error",
	}
	if !equalEvents(h.rec.list(), want) {
		t.Errorf("events = %v\nwant %v", h.rec.list(), want)
	}
}

func TestSubmitAndAnalyze_TransportFailure(t *testing.T) {
	failure := &models.TransportError{Op: "send", Err: errors.New("connection refused")}
	h := newHarness(nil, failure)

	report, err := h.client.SubmitAndAnalyze(context.Background(), twoFiles())

	var te *models.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if h.panel.errMsg != "send failed: connection refused" {
		t.Errorf("panel error = %q", h.panel.errMsg)
	}
	if report.Status != models.StatusFailed || report.Response != nil {
		t.Errorf("report = %+v", report)
	}

	// the indicator never reaches 100% but is still hidden
	for _, e := range h.rec.list() {
		if e == "progress.100" {
			t.Error("progress should not reach 100% on failure")
		}
	}
	h.sched.fire()
	report.WaitHidden()
}

func TestSubmitAndAnalyze_PlainErrorWrapped(t *testing.T) {
	h := newHarness(nil, context.Canceled)

	_, err := h.client.SubmitAndAnalyze(context.Background(), twoFiles())

	var te *models.TransportError
	if !errors.As(err, &te) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected wrapped cancellation, got %v", err)
	}
	if h.panel.errMsg != "request cancelled" {
		t.Errorf("panel error = %q", h.panel.errMsg)
	}
}

func TestSubmitAndAnalyze_InvalidSelection(t *testing.T) {
	h := newHarness(highResponse(), nil)
	sel := &models.FileSelection{Files: []models.SelectedFile{
		{Origin: models.OriginArchive, Path: "/tmp/s.zip", Name: "s.zip"},
		{Origin: models.OriginFile, Path: "/tmp/a.c", Name: "a.c"},
	}}

	_, err := h.client.SubmitAndAnalyze(context.Background(), sel)

	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if h.uploader.calls != 0 {
		t.Error("invalid selection must not be uploaded")
	}
}

// ============== Concurrency Tests ==============

func TestSubmitAndAnalyze_Overlapping(t *testing.T) {
	rec := &recorder{}
	block := make(chan struct{})
	uploader := &blockingUploader{release: block, resp: highResponse(), started: make(chan struct{}, 2)}
	client := NewClient(uploader, fakeProgress{rec: rec}, &lockedPanel{}, &fakeAlerter{rec: rec}, nil,
		WithHideDelay(0))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.SubmitAndAnalyze(context.Background(), twoFiles()); err != nil {
				t.Errorf("SubmitAndAnalyze() error = %v", err)
			}
		}()
	}

	<-uploader.started
	<-uploader.started
	if got := client.inflight.Load(); got != 2 {
		t.Errorf("in flight = %d, want 2", got)
	}
	close(block)
	wg.Wait()

	if got := client.inflight.Load(); got != 0 {
		t.Errorf("in flight after completion = %d, want 0", got)
	}
}

type blockingUploader struct {
	release chan struct{}
	started chan struct{}
	resp    *models.AnalysisResponse
}

func (u *blockingUploader) Analyze(ctx context.Context, sel *models.FileSelection) (*models.AnalysisResponse, error) {
	u.started <- struct{}{}
	<-u.release
	return u.resp, nil
}

type lockedPanel struct {
	mu      sync.Mutex
	renders int
}

func (p *lockedPanel) Hide()         {}
func (p *lockedPanel) Visible() bool { return true }
func (p *lockedPanel) RenderError(string) {
	p.mu.Lock()
	p.renders++
	p.mu.Unlock()
}
func (p *lockedPanel) RenderReport([]models.ComparisonResult) {
	p.mu.Lock()
	p.renders++
	p.mu.Unlock()
}
