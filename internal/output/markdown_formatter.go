package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// MarkdownFormatter renders the report as GitHub-flavoured markdown. It is
// also the source the HTML report is rendered from.
type MarkdownFormatter struct{}

func (m MarkdownFormatter) Name() string { return "markdown" }

func (m MarkdownFormatter) Format(report *calculation.PlanReport) ([]byte, error) {
	if report == nil || report.Summary == nil {
		return nil, fmt.Errorf("report has no simulation summary")
	}
	s := report.Summary
	var buf bytes.Buffer

	title := "Portfolio survival"
	if report.Name != "" {
		title += ": " + report.Name
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Survival probability: %s** across %d paths of %d months (`%s` model, seed %d).\n\n",
		FormatPercentage(s.SurvivalProbability), s.Paths, s.HorizonMonths, report.Variant, report.Seed)

	fmt.Fprintln(&buf, "## Highlights")
	fmt.Fprintln(&buf)
	for _, h := range Highlights(report) {
		fmt.Fprintf(&buf, "- %s\n", h)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "## Ending balance")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "| Percentile | Balance |")
	fmt.Fprintln(&buf, "|---|---:|")
	for _, row := range []struct {
		label string
		value float64
	}{
		{"10th", s.EndingBalance.P10},
		{"25th", s.EndingBalance.P25},
		{"Median", s.EndingBalance.P50},
		{"75th", s.EndingBalance.P75},
		{"90th", s.EndingBalance.P90},
	} {
		fmt.Fprintf(&buf, "| %s | %s |\n", row.label, FormatCurrency(row.value))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "## Annual checkpoints")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "| Year | Month | 10th | Median | 90th |")
	fmt.Fprintln(&buf, "|---:|---:|---:|---:|---:|")
	for _, cp := range s.AnnualCheckpoints {
		fmt.Fprintf(&buf, "| %d | %d | %s | %s | %s |\n", cp.Year, cp.Month, FormatCurrency(cp.P10), FormatCurrency(cp.P50), FormatCurrency(cp.P90))
	}
	fmt.Fprintln(&buf)

	if len(s.AnnualWithdrawals) > 0 {
		fmt.Fprintln(&buf, "## Mean net withdrawals")
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "| Year | Taxable | Traditional | Roth | Total |")
		fmt.Fprintln(&buf, "|---:|---:|---:|---:|---:|")
		for _, w := range s.AnnualWithdrawals {
			fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n", w.Year, FormatCurrency(w.Taxable), FormatCurrency(w.Traditional), FormatCurrency(w.Roth), FormatCurrency(w.Total()))
		}
		fmt.Fprintln(&buf)
	}

	fmt.Fprintln(&buf, "## Assumptions")
	fmt.Fprintln(&buf)
	for _, a := range GenerateAssumptions(report) {
		fmt.Fprintf(&buf, "- %s\n", a)
	}
	for _, a := range DefaultAssumptions {
		fmt.Fprintf(&buf, "- %s\n", a)
	}

	if len(report.DataIssues) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "## Data quality")
		fmt.Fprintln(&buf)
		for _, issue := range report.DataIssues {
			fmt.Fprintf(&buf, "- %s\n", issue)
		}
	}
	return buf.Bytes(), nil
}
