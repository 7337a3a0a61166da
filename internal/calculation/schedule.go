package calculation

import "math"

// MonthlyRateFromAnnual converts an annual rate to the equivalent compounded
// monthly rate.
func MonthlyRateFromAnnual(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12.0) - 1
}

// BuildSpendingSchedule returns the nominal amount withdrawn in each month.
// Nothing is spent before retirement; from then on the current monthly spend,
// plus the mortgage while it lasts, is inflated from month zero.
func BuildSpendingSchedule(months int, monthlySpendNow, monthlyMortgage float64, monthsUntilRetirement, monthsUntilMortgageEnd int, monthlyInflation float64) []float64 {
	spend := make([]float64, months)
	for t := 0; t < months; t++ {
		if t < monthsUntilRetirement {
			continue
		}
		growth := math.Pow(1+monthlyInflation, float64(t))
		amount := monthlySpendNow * growth
		if t < monthsUntilMortgageEnd {
			amount += monthlyMortgage * growth
		}
		if amount < 0 {
			amount = 0
		}
		spend[t] = amount
	}
	return spend
}

// ApplyIncomeOffset reduces each month's spending by the income received
// that month, never below zero. Months without an income entry are unchanged.
func ApplyIncomeOffset(spend, income []float64) []float64 {
	out := make([]float64, len(spend))
	for t, s := range spend {
		if t < len(income) {
			s -= income[t]
		}
		out[t] = math.Max(0, s)
	}
	return out
}

// BuildContributionSchedule returns the amount saved in each month before
// retirement, growing at the monthly equivalent of annualGrowth.
func BuildContributionSchedule(months int, monthlyContributionNow float64, monthsUntilRetirement int, annualGrowth float64) []float64 {
	contrib := make([]float64, months)
	if monthlyContributionNow <= 0 {
		return contrib
	}
	g := MonthlyRateFromAnnual(annualGrowth)
	for t := 0; t < months && t < monthsUntilRetirement; t++ {
		contrib[t] = monthlyContributionNow * math.Pow(1+g, float64(t))
	}
	return contrib
}
