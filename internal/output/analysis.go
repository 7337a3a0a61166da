package output

import (
	"fmt"
	"math"
	"sort"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// Highlights narrates the headline results of a plan.
func Highlights(report *calculation.PlanReport) []string {
	s := report.Summary
	if s == nil {
		return nil
	}
	var out []string

	out = append(out, fmt.Sprintf("%s of %d simulated paths never ran out of money.",
		FormatPercentage(s.SurvivalProbability), s.Paths))
	out = append(out, fmt.Sprintf("Median balance at the end of the horizon: %s (10th percentile %s, 90th percentile %s).",
		FormatCurrency(s.EndingBalance.P50), FormatCurrency(s.EndingBalance.P10), FormatCurrency(s.EndingBalance.P90)))

	if line, ok := medianTrend(s.AnnualCheckpoints); ok {
		out = append(out, line)
	}

	if s.DepletionMonth != nil {
		out = append(out, fmt.Sprintf("Failed paths typically ran out after %.1f years (earliest 10%% by %.1f years).",
			s.DepletionMonth.P50/12, s.DepletionMonth.P10/12))
	}

	if len(s.AnnualWithdrawals) > 0 {
		first := s.AnnualWithdrawals[0]
		for _, w := range s.AnnualWithdrawals {
			if w.Total() > 0 {
				first = w
				break
			}
		}
		if first.Total() > 0 {
			out = append(out, fmt.Sprintf("Year %d withdrawals (mean, after tax): taxable %s, traditional %s, roth %s.",
				first.Year+1, FormatCurrency(first.Taxable), FormatCurrency(first.Traditional), FormatCurrency(first.Roth)))
		}
	}

	if report.Fallback != "" {
		out = append(out, "Note: "+report.Fallback+".")
	}
	return out
}

// medianTrend compares the last two annual checkpoints. A rising median is
// reported as "up".
func medianTrend(checkpoints []calculation.AnnualCheckpoint) (string, bool) {
	if len(checkpoints) < 2 {
		return "", false
	}
	prev := checkpoints[len(checkpoints)-2]
	last := checkpoints[len(checkpoints)-1]
	delta := last.P50 - prev.P50
	if math.Abs(delta) <= 0.01 {
		return "", false
	}
	direction := "down"
	if delta > 0 {
		direction = "up"
	}
	return fmt.Sprintf("Year-over-year median balance is %s by %s (year %d to year %d).",
		direction, FormatCurrency(math.Abs(delta)), prev.Year, last.Year), true
}

// Recommendation encapsulates the selection result of the best plan.
type Recommendation struct {
	PlanName            string  `json:"plan_name"`
	SurvivalProbability float64 `json:"survival_probability"`
	MedianEnding        float64 `json:"median_ending"`
	// SurvivalChange is relative to the first plan compared.
	SurvivalChange float64 `json:"survival_change"`
}

// RankPlans picks the plan with the highest survival probability, breaking
// ties on the median ending balance.
func RankPlans(reports []*calculation.PlanReport) Recommendation {
	type ranked struct {
		name     string
		survival float64
		median   float64
	}
	var ranks []ranked
	for i, r := range reports {
		if r == nil || r.Summary == nil {
			continue
		}
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("Plan %d", i+1)
		}
		ranks = append(ranks, ranked{name, r.Summary.SurvivalProbability, r.Summary.EndingBalance.P50})
	}
	if len(ranks) == 0 {
		return Recommendation{}
	}
	baseline := ranks[0].survival
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].survival != ranks[j].survival {
			return ranks[i].survival > ranks[j].survival
		}
		return ranks[i].median > ranks[j].median
	})
	best := ranks[0]
	return Recommendation{
		PlanName:            best.name,
		SurvivalProbability: best.survival,
		MedianEnding:        best.median,
		SurvivalChange:      best.survival - baseline,
	}
}
