package output

import (
	"fmt"
	"strings"

	"github.com/rpgo/portfolio-survival/internal/calculation"
	"github.com/rpgo/portfolio-survival/internal/domain"
)

// DefaultAssumptions lists modelling rules that hold for every plan.
var DefaultAssumptions = []string{
	"Spending, mortgage and income are in today's dollars; spending is inflated monthly from today",
	"Income (social security, pension, rental, windfalls) is not inflated and offsets spending, never below zero",
	"Returns are resampled month by month, with replacement, from the historical series",
	"A path fails the first month its balance is zero or below and counts as failed even if it later recovers",
}

// GenerateAssumptions creates the assumptions list from a report's actual inputs.
func GenerateAssumptions(report *calculation.PlanReport) []string {
	in := report.Inputs
	var out []string

	out = append(out, fmt.Sprintf("Inflation: %s annually (%.3f%% monthly)",
		FormatPercentage(in.AnnualInflation), in.MonthlyInflation*100))

	switch report.Variant {
	case calculation.VariantSingleAsset:
		out = append(out, "Portfolio: single equity series")
	default:
		rebalance := "no rebalancing"
		if in.Allocation.AnnualRebalance {
			rebalance = "rebalanced every 12 months"
		}
		out = append(out, fmt.Sprintf("Portfolio: %s equity / %s bonds, %s",
			FormatPercentage(in.Allocation.EquityWeight), FormatPercentage(in.Allocation.BondWeight()), rebalance))
	}

	if report.Variant == calculation.VariantTaxed {
		order := make([]string, 0, len(domain.WithdrawalOrder))
		for _, b := range domain.WithdrawalOrder {
			order = append(order, b.String())
		}
		out = append(out, fmt.Sprintf("Withdrawals: %s; capital gains %s, ordinary income %s, Roth untaxed",
			strings.Join(order, " → "), FormatPercentage(in.Tax.CapitalGainsRate), FormatPercentage(in.Tax.OrdinaryIncomeRate)))
	}

	if in.MonthlyContribution > 0 && in.MonthsUntilRetirement > 0 {
		target := "the portfolio"
		if report.Variant == calculation.VariantTaxed {
			target = "the " + string(in.Tax.ContributionTarget) + " bucket"
		}
		out = append(out, fmt.Sprintf("Contributions: %s/month growing %s a year into %s until retirement",
			FormatCurrency(in.MonthlyContribution), FormatPercentage(in.AnnualContributionGrowth), target))
	}

	if in.MonthlyMortgage > 0 {
		out = append(out, fmt.Sprintf("Mortgage: %s/month for %d months", FormatCurrency(in.MonthlyMortgage), in.MonthsUntilMortgageEnd))
	}

	for _, s := range []*calculation.SeriesSummary{report.Equity, report.Bond} {
		if s == nil {
			continue
		}
		out = append(out, fmt.Sprintf("History: %s %s to %s (%d months, mean %.2f%%/month)",
			s.Name, s.Start, s.End, s.Months, s.Statistics.Mean*100))
	}

	out = append(out, fmt.Sprintf("Simulation: %d paths over %d months, seed %d", in.Simulations, in.HorizonMonths, report.Seed))
	return out
}
