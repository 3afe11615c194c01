// Package report renders an evaluation as human-readable documents. Both
// renderers are pure functions of the evaluation structure.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/srs-capital/fii-screener/internal/model"
)

// htmlDoc is a self-contained printable page: title, status line colored
// by approval, score, criteria table and missing-metric notice.
var htmlDoc = template.Must(template.New("report").Funcs(template.FuncMap{
	"f2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"faixa": formatRange,
}).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Análise de FII - Método SRS FI - {{.Ev.Ticker}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2.5cm; color: #222; }
h1 { text-align: center; }
.meta { color: #555; }
.status-pass { color: #157f3b; font-weight: bold; }
.status-fail { color: #b01818; font-weight: bold; }
table { border-collapse: collapse; width: 100%; margin-top: 1em; }
th, td { border: 1px solid #444; padding: 8px; text-align: center; }
th { background: #808080; color: #f5f5f5; }
tr:nth-child(even) td { background: #f5f0e1; }
.missing { margin-top: 1em; color: #8a6d00; }
</style>
</head>
<body>
<h1>Análise de FII - Método SRS FI<br>{{.Ev.Ticker}}</h1>
<p class="meta">Data: {{.GeneratedAt.Format "02/01/2006 15:04"}}</p>
<p>
<b>Status:</b> <span class="{{if .Ev.Approved}}status-pass{{else}}status-fail{{end}}">{{.Ev.Recommendation}}</span><br>
<b>Nota SRS FI:</b> {{.Ev.Score}}/10
</p>
<table>
<tr><th>Critério</th><th>Valor</th><th>Faixa Aceita</th><th>Status</th></tr>
{{range .Ev.Criteria}}<tr>
<td>{{.Name}}</td>
<td>{{f2 .Value}}</td>
<td>{{faixa .}}</td>
<td>{{if .Passed}}&#9989; Aprovado{{else}}&#10060; Reprovado{{end}}</td>
</tr>
{{end}}</table>
{{if .Ev.MissingMetrics}}<p class="missing"><b>Métricas não encontradas:</b> {{range $i, $m := .Ev.MissingMetrics}}{{if $i}}, {{end}}{{$m}}{{end}}</p>{{end}}
</body>
</html>
`))

// HTML renders the evaluation as a printable HTML document.
func HTML(ev model.Evaluation) ([]byte, error) {
	return htmlAt(ev, time.Now())
}

func htmlAt(ev model.Evaluation, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Ev          model.Evaluation
		GeneratedAt time.Time
	}{ev, now}
	if err := htmlDoc.Execute(&buf, data); err != nil {
		return nil, eris.Wrap(err, "report: render html")
	}
	return buf.Bytes(), nil
}

// Markdown renders a terminal-friendly summary of the evaluation.
func Markdown(ev model.Evaluation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# SRS FI Screening: %s\n\n", ev.Ticker)
	fmt.Fprintf(&b, "- Recommendation: %s\n", ev.Recommendation)
	fmt.Fprintf(&b, "- Score: %.1f/10\n", ev.Score)
	fmt.Fprintf(&b, "- Approved: %t\n", ev.Approved)
	fmt.Fprintf(&b, "- Document kind: %s\n\n", ev.Metrics.Kind)

	b.WriteString("## Criteria\n")
	if len(ev.Criteria) == 0 {
		b.WriteString("No criteria could be evaluated.\n")
	}
	for _, c := range ev.Criteria {
		mark := "FAIL"
		if c.Passed {
			mark = "PASS"
		}
		fmt.Fprintf(&b, "- %s: %.2f (accepted %s) [%s]\n", c.Name, c.Value, formatRange(c), mark)
	}

	if len(ev.MissingMetrics) > 0 {
		b.WriteString("\n## Missing metrics\n")
		for _, m := range ev.MissingMetrics {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}

	return b.String()
}

// formatRange renders the accepted range of a criterion as "min - max".
func formatRange(c model.Criterion) string {
	return fmt.Sprintf("%s - %s", trimFloat(c.Min), trimFloat(c.Max))
}

// trimFloat prints a threshold without trailing zeros: 0.65 stays "0.65",
// 100 stays "100".
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
