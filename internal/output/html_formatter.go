package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/rpgo/portfolio-survival/internal/calculation"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTMLFormatter renders the markdown report to HTML inside a page with a
// percentile fan chart.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Parse(htmlTemplateSource))

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

type bandSeries struct {
	Labels []int     `json:"labels"`
	P10    []float64 `json:"p10"`
	P50    []float64 `json:"p50"`
	P90    []float64 `json:"p90"`
}

// survivalClass buckets a survival probability for display.
func survivalClass(p float64) (class, risk string) {
	switch {
	case p >= 0.85:
		return "success", "Low"
	case p >= 0.70:
		return "warning", "Moderate"
	default:
		return "danger", "High"
	}
}

func (h HTMLFormatter) Format(report *calculation.PlanReport) ([]byte, error) {
	md, err := MarkdownFormatter{}.Format(report)
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	if err := markdownRenderer.Convert(md, &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	s := report.Summary
	chart := bandSeries{}
	for _, cp := range s.AnnualCheckpoints {
		chart.Labels = append(chart.Labels, cp.Year)
		chart.P10 = append(chart.P10, cp.P10)
		chart.P50 = append(chart.P50, cp.P50)
		chart.P90 = append(chart.P90, cp.P90)
	}
	chartJSON, err := json.Marshal(chart)
	if err != nil {
		return nil, err
	}

	title := "Portfolio Survival Report"
	subtitle := fmt.Sprintf("%d paths over %d years", s.Paths, report.Inputs.HorizonYears)
	if report.Name != "" {
		title = report.Name + " | " + title
		subtitle = report.Name + ": " + subtitle
	}
	class, risk := survivalClass(s.SurvivalProbability)
	generated := ""
	if !report.GeneratedAt.IsZero() {
		generated = report.GeneratedAt.Format("2006-01-02 15:04")
	}

	data := struct {
		Title         string
		Subtitle      string
		Survival      string
		SurvivalClass string
		RiskLevel     string
		MedianEnding  string
		Paths         int
		Body          template.HTML
		Chart         template.JS
		Generated     string
	}{
		Title:         title,
		Subtitle:      subtitle,
		Survival:      FormatPercentage(s.SurvivalProbability),
		SurvivalClass: class,
		RiskLevel:     risk,
		MedianEnding:  FormatCurrency(s.EndingBalance.P50),
		Paths:         s.Paths,
		// goldmark omits raw HTML in the source by default
		Body:      template.HTML(body.String()),
		Chart:     template.JS(chartJSON),
		Generated: generated,
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
