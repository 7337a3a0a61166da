package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// ConsoleFormatter renders the detailed console report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *calculation.PlanReport) ([]byte, error) {
	if report == nil || report.Summary == nil {
		return nil, fmt.Errorf("report has no simulation summary")
	}
	s := report.Summary
	in := report.Inputs
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf, "PORTFOLIO SURVIVAL ANALYSIS")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	if report.Name != "" {
		fmt.Fprintf(&buf, "Plan: %s\n", report.Name)
	}
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&buf, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range GenerateAssumptions(report) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	for _, a := range DefaultAssumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "STARTING POSITION")
	fmt.Fprintln(&buf, strings.Repeat("=", 45))
	fmt.Fprintf(&buf, "Portfolio:              %s\n", FormatCurrency(in.InitialBalance))
	if report.Variant == calculation.VariantTaxed {
		b := in.Buckets.Array()
		fmt.Fprintf(&buf, "  Taxable:              %s\n", FormatCurrency(b[0]))
		fmt.Fprintf(&buf, "  Traditional:          %s\n", FormatCurrency(b[1]))
		fmt.Fprintf(&buf, "  Roth:                 %s\n", FormatCurrency(b[2]))
	}
	fmt.Fprintf(&buf, "Monthly spending today: %s\n", FormatCurrency(in.MonthlySpending+in.MonthlyMortgage))
	fmt.Fprintf(&buf, "Retirement in:          %d years\n", in.YearsUntilRetirement)
	fmt.Fprintf(&buf, "Horizon:                %d years (%d months)\n", in.HorizonYears, in.HorizonMonths)
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "RESULTS")
	fmt.Fprintln(&buf, strings.Repeat("=", 45))
	fmt.Fprintf(&buf, "Model:                  %s\n", report.Variant)
	fmt.Fprintf(&buf, "Survival probability:   %s (%d of %d paths failed)\n", FormatPercentage(s.SurvivalProbability), s.FailedPaths, s.Paths)
	fmt.Fprintf(&buf, "Ending balance P10:     %s\n", FormatCurrency(s.EndingBalance.P10))
	fmt.Fprintf(&buf, "Ending balance P25:     %s\n", FormatCurrency(s.EndingBalance.P25))
	fmt.Fprintf(&buf, "Ending balance median:  %s\n", FormatCurrency(s.EndingBalance.P50))
	fmt.Fprintf(&buf, "Ending balance P75:     %s\n", FormatCurrency(s.EndingBalance.P75))
	fmt.Fprintf(&buf, "Ending balance P90:     %s\n", FormatCurrency(s.EndingBalance.P90))
	if s.PathReturns.Mean != 0 {
		fmt.Fprintf(&buf, "Mean path return:       %s annualized\n", FormatPercentage(s.PathReturns.AnnualizedMean))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "ANNUAL CHECKPOINTS (portfolio balance percentiles)")
	fmt.Fprintln(&buf, strings.Repeat("-", 72))
	fmt.Fprintf(&buf, "%-6s %-6s %18s %18s %18s\n", "Year", "Month", "10th", "Median", "90th")
	for _, cp := range s.AnnualCheckpoints {
		fmt.Fprintf(&buf, "%-6d %-6d %18s %18s %18s\n", cp.Year, cp.Month, FormatCurrency(cp.P10), FormatCurrency(cp.P50), FormatCurrency(cp.P90))
	}
	fmt.Fprintln(&buf)

	if len(s.AnnualWithdrawals) > 0 {
		fmt.Fprintln(&buf, "MEAN NET WITHDRAWALS BY BUCKET")
		fmt.Fprintln(&buf, strings.Repeat("-", 72))
		fmt.Fprintf(&buf, "%-6s %15s %15s %15s %15s\n", "Year", "Taxable", "Traditional", "Roth", "Total")
		for _, w := range s.AnnualWithdrawals {
			fmt.Fprintf(&buf, "%-6d %15s %15s %15s %15s\n", w.Year, FormatCurrency(w.Taxable), FormatCurrency(w.Traditional), FormatCurrency(w.Roth), FormatCurrency(w.Total()))
		}
		fmt.Fprintln(&buf)
	}

	if len(report.DataIssues) > 0 {
		fmt.Fprintln(&buf, "DATA QUALITY:")
		for _, issue := range report.DataIssues {
			fmt.Fprintf(&buf, "  ! %s\n", issue)
		}
		fmt.Fprintln(&buf)
	}

	fmt.Fprintln(&buf, "HIGHLIGHTS:")
	for _, h := range Highlights(report) {
		fmt.Fprintf(&buf, "- %s\n", h)
	}
	return buf.Bytes(), nil
}
