package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// ConsoleLiteFormatter provides a concise console style summary via the formatter interface.
type ConsoleLiteFormatter struct{}

func (c ConsoleLiteFormatter) Name() string { return "console-lite" }

func (c ConsoleLiteFormatter) Format(report *calculation.PlanReport) ([]byte, error) {
	if report == nil || report.Summary == nil {
		return nil, fmt.Errorf("report has no simulation summary")
	}
	s := report.Summary
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "PORTFOLIO SURVIVAL SUMMARY")
	fmt.Fprintln(&buf, "================================")
	if report.Name != "" {
		fmt.Fprintf(&buf, "Plan: %s\n", report.Name)
	}
	fmt.Fprintf(&buf, "Model=%s Paths=%d Months=%d Seed=%d\n", report.Variant, s.Paths, s.HorizonMonths, report.Seed)
	fmt.Fprintf(&buf, "Survival=%s Ending P10=%s P50=%s P90=%s\n",
		FormatPercentage(s.SurvivalProbability),
		FormatCurrency(s.EndingBalance.P10),
		FormatCurrency(s.EndingBalance.P50),
		FormatCurrency(s.EndingBalance.P90),
	)
	if report.Fallback != "" {
		fmt.Fprintf(&buf, "Note: %s\n", report.Fallback)
	}
	return buf.Bytes(), nil
}

// FormatComparison renders a side-by-side summary of several plans.
func FormatComparison(reports []*calculation.PlanReport) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "PLAN COMPARISON")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "%-28s %-13s %10s %16s %16s\n", "Plan", "Model", "Survival", "Median end", "P10 end")
	for i, r := range reports {
		if r == nil || r.Summary == nil {
			continue
		}
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("Plan %d", i+1)
		}
		fmt.Fprintf(&buf, "%-28s %-13s %10s %16s %16s\n", name, r.Variant,
			FormatPercentage(r.Summary.SurvivalProbability), FormatCurrency(r.Summary.EndingBalance.P50), FormatCurrency(r.Summary.EndingBalance.P10))
	}
	rec := RankPlans(reports)
	if rec.PlanName != "" {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Recommended: %s (survival %s, %+.1f points vs first plan)\n",
			rec.PlanName, FormatPercentage(rec.SurvivalProbability), rec.SurvivalChange*100)
	}
	return buf.Bytes()
}
