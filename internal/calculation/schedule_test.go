package calculation

import (
	"math"
	"testing"

	"github.com/rpgo/portfolio-survival/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlyRateFromAnnual(t *testing.T) {
	m := MonthlyRateFromAnnual(0.024)
	assert.InDelta(t, 0.024, math.Pow(1+m, 12)-1, 1e-12)
	assert.Equal(t, 0.0, MonthlyRateFromAnnual(0))
}

func TestBuildSpendingSchedule(t *testing.T) {
	i := 0.002
	spend := BuildSpendingSchedule(48, 1000, 500, 12, 24, i)
	assert.Len(t, spend, 48)

	for t0 := 0; t0 < 12; t0++ {
		assert.Equal(t, 0.0, spend[t0], "no spending before retirement (month %d)", t0)
	}
	// inflation compounds from month zero, not from retirement
	assert.InDelta(t, 1500*math.Pow(1+i, 12), spend[12], 1e-9)
	assert.InDelta(t, 1500*math.Pow(1+i, 23), spend[23], 1e-9)
	// mortgage ends
	assert.InDelta(t, 1000*math.Pow(1+i, 24), spend[24], 1e-9)

	for t0 := 25; t0 < 48; t0++ {
		assert.GreaterOrEqual(t, spend[t0], spend[t0-1], "non-decreasing after the mortgage ends")
	}
}

func TestBuildSpendingSchedule_MonotoneInInflation(t *testing.T) {
	const months, retire, mortgageEnd = 120, 18, 60
	rates := []float64{-0.002, 0, 0.002, 0.005}

	schedules := make([][]float64, len(rates))
	for i, rate := range rates {
		schedules[i] = BuildSpendingSchedule(months, 3000, 1200, retire, mortgageEnd, rate)
	}
	for i := 1; i < len(rates); i++ {
		lo, hi := schedules[i-1], schedules[i]
		for t0 := 0; t0 < months; t0++ {
			if t0 < retire {
				assert.Equal(t, 0.0, hi[t0], "rate %v month %d", rates[i], t0)
				assert.Equal(t, 0.0, lo[t0], "rate %v month %d", rates[i-1], t0)
				continue
			}
			assert.GreaterOrEqual(t, hi[t0], lo[t0], "rate %v vs %v at month %d", rates[i], rates[i-1], t0)
		}
	}
}

func TestBuildSpendingSchedule_ZeroInflationIsFlat(t *testing.T) {
	spend := BuildSpendingSchedule(12, 1000, 0, 0, 0, 0)
	for _, s := range spend {
		assert.Equal(t, 1000.0, s)
	}
}

func TestApplyIncomeOffset(t *testing.T) {
	spend := []float64{100, 100, 100, 100}
	out := ApplyIncomeOffset(spend, []float64{30, 150, 0})
	assert.Equal(t, []float64{70, 0, 100, 100}, out)
	assert.Equal(t, []float64{100, 100, 100, 100}, spend, "input untouched")
	assert.Equal(t, spend, ApplyIncomeOffset(spend, nil))
}

func TestBuildContributionSchedule(t *testing.T) {
	c := BuildContributionSchedule(36, 500, 24, 0.03)
	g := MonthlyRateFromAnnual(0.03)
	assert.Equal(t, 500.0, c[0])
	assert.InDelta(t, 500*math.Pow(1+g, 12), c[12], 1e-9)
	assert.InDelta(t, 500*1.03, c[12], 1e-9, "twelve months of growth equals the annual rate")
	for t0 := 24; t0 < 36; t0++ {
		assert.Equal(t, 0.0, c[t0], "no contributions from retirement on")
	}

	for _, amount := range []float64{0, -100} {
		for _, v := range BuildContributionSchedule(12, amount, 12, 0.05) {
			assert.Equal(t, 0.0, v)
		}
	}
}

func TestBuildIncomeSeries(t *testing.T) {
	h := domain.Household{
		Self:    domain.Person{Age: 60, RetirementAge: 62, LifeExpectancy: 90},
		Partner: &domain.Person{Age: 58, RetirementAge: 62, LifeExpectancy: 90},
		SelfIncome: domain.IncomeSources{
			SocialSecurity:         decimal.NewFromInt(24000),
			SocialSecurityStartAge: 62,
			Rental:                 decimal.NewFromInt(12000),
			RentalEndAge:           61,
		},
		PartnerIncome: domain.IncomeSources{
			Pension:         decimal.NewFromInt(6000),
			PensionStartAge: 59,
		},
		Windfalls: []domain.Windfall{
			{Label: "inheritance", Amount: decimal.NewFromInt(50000), Age: 60},
			{Label: "too late", Amount: decimal.NewFromInt(1), Age: 99},
			{Label: "ignored", Amount: decimal.Zero, Age: 59},
		},
	}
	income := BuildIncomeSeries(h, 36)
	assert.Len(t, income, 36)

	// months 0-11: rental only
	assert.InDelta(t, 1000, income[0], 1e-9)
	// months 12-23: pension (partner turns 59) and no rental
	assert.InDelta(t, 500, income[12], 1e-9)
	// windfall when the younger person (58) reaches 60: month 24
	assert.InDelta(t, 500+2000+50000, income[24], 1e-9)
	assert.InDelta(t, 2500, income[25], 1e-9)
}

func TestBuildIncomeSeries_Empty(t *testing.T) {
	h := domain.Household{Self: domain.Person{Age: 40, RetirementAge: 65, LifeExpectancy: 90}}
	for _, v := range BuildIncomeSeries(h, 24) {
		assert.Equal(t, 0.0, v)
	}
}
