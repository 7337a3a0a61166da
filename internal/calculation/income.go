package calculation

import (
	"github.com/rpgo/portfolio-survival/internal/domain"
	"github.com/rpgo/portfolio-survival/pkg/dateutil"
	money "github.com/rpgo/portfolio-survival/pkg/decimal"
	"github.com/shopspring/decimal"
)

// BuildIncomeSeries returns the household's monthly non-portfolio income
// (social security, pensions, rentals and windfalls) over the horizon.
func BuildIncomeSeries(h domain.Household, months int) []float64 {
	income := make([]float64, months)

	addStreams := func(p domain.Person, src domain.IncomeSources) {
		if src.SocialSecurityStartAge > 0 {
			addMonthly(income, monthly(src.SocialSecurity), dateutil.MonthsUntilAge(p.Age, src.SocialSecurityStartAge), months)
		}
		if src.PensionStartAge > 0 {
			addMonthly(income, monthly(src.Pension), dateutil.MonthsUntilAge(p.Age, src.PensionStartAge), months)
		}
		start := 0
		if src.RentalStartAge > 0 {
			start = dateutil.MonthsUntilAge(p.Age, src.RentalStartAge)
		}
		end := months
		if src.RentalEndAge > 0 {
			end = dateutil.MonthsUntilAge(p.Age, src.RentalEndAge)
		}
		addMonthly(income, monthly(src.Rental), start, end)
	}

	addStreams(h.Self, h.SelfIncome)
	if h.Partner != nil {
		addStreams(*h.Partner, h.PartnerIncome)
	}

	base := h.YoungestAge()
	for _, w := range h.Windfalls {
		if w.Age <= 0 || !w.Amount.IsPositive() {
			continue
		}
		if t := dateutil.MonthsUntilAge(base, w.Age); t < months {
			income[t] += w.Amount.InexactFloat64()
		}
	}
	return income
}

func monthly(annual decimal.Decimal) float64 {
	return money.NewMoneyFromDecimal(annual).Monthly().InexactFloat64()
}

func addMonthly(series []float64, amount float64, start, end int) {
	if amount <= 0 {
		return
	}
	if end > len(series) {
		end = len(series)
	}
	for t := start; t < end; t++ {
		series[t] += amount
	}
}
