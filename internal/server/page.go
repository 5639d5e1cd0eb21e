package server

import (
	"encoding/base64"
	"html/template"
	"strings"

	"github.com/hyperifyio/wordfreq/internal/pipeline"
	"github.com/hyperifyio/wordfreq/internal/rank"
	"github.com/hyperifyio/wordfreq/internal/render"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	URL       string
	Charts    []option
	Backends  []option
	MinCount  int
	MinLow    int
	MinHigh   int
	TopN      int
	Submitted bool
	Title     string
	Text      string
	Error     string
	Entries   []rank.Entry
	Chart     *chartView
	Message   string
}

// chartView embeds a rendered artifact in the result page. Exactly one of
// HTML, Text or Data is set.
type chartView struct {
	// HTML goes into an iframe srcdoc.
	HTML string
	Text string
	// Data is a data: URI for binary artifacts such as PDF.
	Data template.URL
	Note string
}

func embedChart(art render.Artifact) *chartView {
	v := &chartView{Note: art.Note}
	switch {
	case strings.HasPrefix(art.ContentType, "text/html"):
		v.HTML = string(art.Body)
	case strings.HasPrefix(art.ContentType, "text/plain"):
		v.Text = string(art.Body)
	default:
		v.Data = template.URL("data:" + art.ContentType + ";base64," + base64.StdEncoding.EncodeToString(art.Body))
	}
	return v
}

func (s *Server) newPageData(target string, rc pipeline.RenderConfig) pageData {
	d := pageData{
		URL:      target,
		MinCount: rc.MinCount,
		MinLow:   minCountLow,
		MinHigh:  minCountHigh,
		TopN:     rc.TopN,
	}
	for _, c := range render.ChartTypes {
		d.Charts = append(d.Charts, option{Value: string(c), Label: c.Label(), Selected: c == rc.ChartType})
	}
	for _, b := range s.renderers.Backends() {
		d.Backends = append(d.Backends, option{Value: string(b), Label: string(b), Selected: b == rc.Backend})
	}
	return d
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>wordfreq</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; min-height: 100vh; }
aside { width: 18rem; padding: 1rem; background: #f4f4f4; }
main { flex: 1; padding: 1rem; }
label { display: block; margin-top: .8rem; }
input[type=url], select { width: 100%; }
textarea { width: 100%; height: 12rem; }
table { border-collapse: collapse; margin-top: 1rem; }
td, th { border: 1px solid #ccc; padding: .2rem .6rem; }
iframe { width: 100%; height: 560px; border: 0; }
.error { color: #b00; }
.message { padding: 2rem; color: #555; }
pre.chart { font-family: monospace; line-height: 1.2; }
.note { color: #555; font-size: .9rem; }
</style>
</head>
<body>
<aside>
<form method="get" action="/">
<label>URL <input type="url" name="url" value="{{.URL}}" placeholder="https://example.com/" required></label>
<label>Chart type
<select name="chart">{{range .Charts}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select>
</label>
<label>Backend
<select name="backend">{{range .Backends}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select>
</label>
<label>Minimum count: <output id="minv">{{.MinCount}}</output>
<input type="range" name="min" min="{{.MinLow}}" max="{{.MinHigh}}" value="{{.MinCount}}" oninput="document.getElementById('minv').value=this.value">
</label>
<input type="hidden" name="top" value="{{.TopN}}">
<p><button type="submit">Analyze</button></p>
</form>
</aside>
<main>
<h1>Word frequency</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Submitted}}
<h2>{{if .Title}}{{.Title}}{{else}}Page text{{end}}</h2>
<textarea readonly>{{.Text}}</textarea>
{{if .Entries}}
<table>
<tr><th>#</th><th>Word</th><th>Count</th></tr>
{{range $i, $e := .Entries}}<tr><td>{{inc $i}}</td><td>{{$e.Word}}</td><td>{{$e.Count}}</td></tr>
{{end}}</table>
{{end}}
{{if .Chart}}{{with .Chart}}
{{if .HTML}}<iframe srcdoc="{{.HTML}}" title="chart"></iframe>{{else if .Text}}<pre class="chart">{{.Text}}</pre>{{else}}<iframe src="{{.Data}}" title="chart"></iframe>{{end}}
{{if .Note}}<p class="note">Note: {{.Note}}</p>{{end}}
{{end}}{{else if .Message}}<p class="message">{{.Message}}</p>{{end}}
{{end}}
</main>
</body>
</html>
`
