package output

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"sync"

	"github.com/sdejongh/simnorris/pkg/models"
)

var panelTemplates = template.Must(template.New("panel").Parse(`
{{- define "error" -}}
<p style="color:red;">❌ {{.}}</p>
{{- end -}}

{{- define "report" -}}
<h3>📊 Analysis Results</h3>
{{- range . }}
      <div class="result-card" style="border-color:{{.Color}}">
        <div><b>{{.Left}}</b> ↔ <b>{{.Right}}</b></div>
        <div class="bar-container">
          <div style="width:{{.Width}}%;background:{{.Color}};height:8px;"></div>
        </div>
        <p style="margin:5px 0 0;">Similarity: <b>{{.Percent}}%</b> | Verdict: <span style="color:{{.Color}}">{{.Verdict}}</span></p>
      </div>
{{- end -}}
{{- end -}}

{{- define "document" -}}
<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Analysis Results</title>
<style>
body { background:#1e1e1e; color:#eee; font-family:sans-serif; }
.hidden { display:none; }
.result-card { border:2px solid; border-radius:8px; padding:10px; margin:10px 0; }
.bar-container { background:#333; border-radius:4px; margin-top:6px; }
</style>
</head>
<body>
<div id="results"{{if not .Visible}} class="hidden"{{end}}>{{.Content}}</div>
</body>
</html>
{{ end -}}
`))

// htmlCard is the template view of one comparison. Color and Width are
// produced here from numbers and classified labels, never from raw input.
type htmlCard struct {
	Left    string
	Right   string
	Percent string
	Width   template.CSS
	Color   template.CSS
	Verdict string
}

func newHTMLCard(cmp models.ComparisonResult) htmlCard {
	return htmlCard{
		Left:    cmp.Files[0],
		Right:   cmp.Files[1],
		Percent: cmp.Metrics.OverallText(),
		Width:   template.CSS(models.Metrics{Overall: clampPercent(cmp.Metrics.Overall)}.OverallText()),
		Color:   template.CSS(cmp.Metrics.Color().String()),
		Verdict: cmp.Metrics.Verdict,
	}
}

// HTMLPanel keeps the results markup in memory, like a DOM element's
// innerHTML plus its hidden class. Names and messages are escaped.
type HTMLPanel struct {
	mu      sync.Mutex
	writer  io.Writer
	content template.HTML
	visible bool
}

// NewHTMLPanel creates a panel; w receives the document on Flush
func NewHTMLPanel(w io.Writer) *HTMLPanel {
	if w == nil {
		w = os.Stdout
	}
	return &HTMLPanel{writer: w}
}

func (p *HTMLPanel) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

func (p *HTMLPanel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *HTMLPanel) RenderError(msg string) {
	p.render("error", msg)
}

func (p *HTMLPanel) RenderReport(comparisons []models.ComparisonResult) {
	cards := make([]htmlCard, 0, len(comparisons))
	for _, cmp := range comparisons {
		cards = append(cards, newHTMLCard(cmp))
	}
	p.render("report", cards)
}

func (p *HTMLPanel) render(name string, data any) {
	var buf bytes.Buffer
	if err := panelTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		// the templates are static; a failure here is a programming error
		panic(fmt.Sprintf("render %s: %v", name, err))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = template.HTML(buf.String())
	p.visible = true
}

// Content returns the current inner markup of the panel
func (p *HTMLPanel) Content() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.content)
}

// WriteDocument writes a standalone page holding the panel
func (p *HTMLPanel) WriteDocument(w io.Writer) error {
	p.mu.Lock()
	data := struct {
		Visible bool
		Content template.HTML
	}{p.visible, p.content}
	p.mu.Unlock()

	if err := panelTemplates.ExecuteTemplate(w, "document", data); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	return nil
}

// Flush writes the document to the panel's writer
func (p *HTMLPanel) Flush() error {
	return p.WriteDocument(p.writer)
}

// WriteReportFile writes the document to path
func (p *HTMLPanel) WriteReportFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	return p.WriteDocument(file)
}
