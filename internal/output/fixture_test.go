package output

import (
	"testing"
	"time"

	"github.com/rpgo/portfolio-survival/internal/calculation"
	"github.com/rpgo/portfolio-survival/internal/domain"
)

// buildTestReport aggregates three hand-made paths over 25 months:
// path 0 runs out at month 10, paths 1 and 2 grow by 100 a month.
func buildTestReport(t *testing.T, taxed bool) *calculation.PlanReport {
	t.Helper()
	const paths, months = 3, 25
	res := &calculation.SimulationResult{
		Variant:       calculation.VariantTwoAsset,
		Paths:         paths,
		HorizonMonths: months,
		Balances:      make([][]float64, paths),
		Alive:         make([][]bool, paths),
		PathReturns:   []float64{0.004, 0.005, 0.006},
	}
	starts := []float64{100, 1000, 2000}
	steps := []float64{-10, 100, 100}
	for i := 0; i < paths; i++ {
		res.Balances[i] = make([]float64, months)
		res.Alive[i] = make([]bool, months)
		for m := 0; m < months; m++ {
			b := starts[i] + steps[i]*float64(m)
			res.Balances[i][m] = b
			res.Alive[i][m] = b > 0
		}
	}
	if taxed {
		res.Variant = calculation.VariantTaxed
		res.Withdrawals = make([][]calculation.BucketAmounts, paths)
		for i := range res.Withdrawals {
			res.Withdrawals[i] = make([]calculation.BucketAmounts, months)
			for m := range res.Withdrawals[i] {
				res.Withdrawals[i][m] = calculation.BucketAmounts{100, 50, 0}
			}
		}
	}
	summary, err := calculation.Aggregate(res)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	spend := make([]float64, months)
	income := make([]float64, months)
	for m := range spend {
		spend[m] = 150
		income[m] = 50
	}
	return &calculation.PlanReport{
		Name:        "Test plan",
		GeneratedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Inputs: calculation.PlanInputs{
			HorizonYears:     2,
			HorizonMonths:    months,
			InitialBalance:   3100,
			MonthlySpending:  150,
			AnnualInflation:  0.025,
			MonthlyInflation: calculation.MonthlyRateFromAnnual(0.025),
			Allocation:       domain.NewAllocationPolicy(0.6, true),
			Tax:              domain.NewTaxPolicy(0.22, 0.15, domain.TargetTraditional),
			UseTaxed:         taxed,
			Simulations:      paths,
		},
		Variant: res.Variant,
		Seed:    42,
		Equity: &calculation.SeriesSummary{
			Name: "equity", Source: "equity.csv", Start: "2000-01", End: "2009-12", Months: 120,
			Statistics: calculation.HistoricalStatistics{Mean: 0.006, Count: 120},
		},
		DataIssues: []string{"equity: 1 missing month (2004-06)"},
		Summary:    summary,
		Schedules: calculation.PlanSchedules{
			Spending:      spend,
			Income:        income,
			NetSpending:   calculation.ApplyIncomeOffset(spend, income),
			Contributions: make([]float64, months),
		},
		Result: res,
	}
}
