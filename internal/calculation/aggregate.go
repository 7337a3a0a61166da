package calculation

import (
	"fmt"
	"math"
	"sort"

	"github.com/rpgo/portfolio-survival/pkg/dateutil"
)

// PercentileBand is the 10th/50th/90th percentile of balances at one month.
type PercentileBand struct {
	Month int     `json:"month"`
	P10   float64 `json:"p10"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
}

// AnnualCheckpoint is the band reported for a year of the horizon.
type AnnualCheckpoint struct {
	Year int `json:"year"`
	PercentileBand
}

// AnnualWithdrawal sums the mean net withdrawals from each bucket over a year.
type AnnualWithdrawal struct {
	Year        int     `json:"year"`
	Taxable     float64 `json:"taxable"`
	Traditional float64 `json:"traditional"`
	Roth        float64 `json:"roth"`
}

// Total returns the year's combined net withdrawal.
func (a AnnualWithdrawal) Total() float64 { return a.Taxable + a.Traditional + a.Roth }

// PercentileRanges represents percentile ranges of a distribution
type PercentileRanges struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// ReturnSummary describes the spread of per-path mean monthly returns.
type ReturnSummary struct {
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"std_dev"`
	AnnualizedMean float64 `json:"annualized_mean"`
}

// AggregateResult is the statistical summary of a SimulationResult.
type AggregateResult struct {
	Variant             Variant            `json:"variant"`
	Paths               int                `json:"paths"`
	HorizonMonths       int                `json:"horizon_months"`
	SurvivalProbability float64            `json:"survival_probability"`
	Bands               []PercentileBand   `json:"bands"`
	AnnualCheckpoints   []AnnualCheckpoint `json:"annual_checkpoints"`
	EndingBalance       PercentileRanges   `json:"ending_balance"`
	// DepletionMonth is over failed paths only: the first month each was not alive.
	DepletionMonth    *PercentileRanges  `json:"depletion_month,omitempty"`
	FailedPaths       int                `json:"failed_paths"`
	MeanWithdrawals   []BucketAmounts    `json:"mean_withdrawals,omitempty"`
	AnnualWithdrawals []AnnualWithdrawal `json:"annual_withdrawals,omitempty"`
	PathReturns       ReturnSummary      `json:"path_returns"`
}

// Percentile returns the p-th percentile (0-100) of values using linear
// interpolation between the closest ranks. values is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func rangesOf(sorted []float64) PercentileRanges {
	return PercentileRanges{
		P10: percentileSorted(sorted, 10),
		P25: percentileSorted(sorted, 25),
		P50: percentileSorted(sorted, 50),
		P75: percentileSorted(sorted, 75),
		P90: percentileSorted(sorted, 90),
	}
}

// Aggregate summarises a simulation: monthly percentile bands, survival
// probability, annual checkpoints and, for the taxed variant, mean
// withdrawals by bucket.
func Aggregate(res *SimulationResult) (*AggregateResult, error) {
	if res == nil || len(res.Balances) == 0 {
		return nil, fmt.Errorf("%w: no simulated paths to aggregate", ErrInputInvalid)
	}
	paths := len(res.Balances)
	months := len(res.Balances[0])
	if months == 0 {
		return nil, fmt.Errorf("%w: simulated paths have no months", ErrInputInvalid)
	}

	agg := &AggregateResult{
		Variant:       res.Variant,
		Paths:         paths,
		HorizonMonths: months,
		Bands:         make([]PercentileBand, months),
	}

	column := make([]float64, paths)
	for t := 0; t < months; t++ {
		for i := 0; i < paths; i++ {
			column[i] = res.Balances[i][t]
		}
		sort.Float64s(column)
		agg.Bands[t] = PercentileBand{
			Month: t,
			P10:   percentileSorted(column, 10),
			P50:   percentileSorted(column, 50),
			P90:   percentileSorted(column, 90),
		}
		if t == months-1 {
			agg.EndingBalance = rangesOf(column)
		}
	}

	// a path survives only if it is alive in every month
	var survived int
	var depletion []float64
	for i := 0; i < paths; i++ {
		failedAt := -1
		for t, alive := range res.Alive[i] {
			if !alive {
				failedAt = t
				break
			}
		}
		if failedAt < 0 {
			survived++
			continue
		}
		depletion = append(depletion, float64(failedAt))
	}
	agg.SurvivalProbability = float64(survived) / float64(paths)
	agg.FailedPaths = len(depletion)
	if len(depletion) > 0 {
		sort.Float64s(depletion)
		r := rangesOf(depletion)
		agg.DepletionMonth = &r
	}

	years := dateutil.YearsSpanned(months)
	agg.AnnualCheckpoints = make([]AnnualCheckpoint, years)
	for y := 0; y < years; y++ {
		agg.AnnualCheckpoints[y] = AnnualCheckpoint{Year: y, PercentileBand: agg.Bands[dateutil.CheckpointMonth(y, months)]}
	}

	if res.Withdrawals != nil {
		agg.MeanWithdrawals = meanWithdrawals(res.Withdrawals, months)
		agg.AnnualWithdrawals = annualWithdrawals(agg.MeanWithdrawals)
	}

	agg.PathReturns = summariseReturns(res.PathReturns)
	return agg, nil
}

func meanWithdrawals(w [][]BucketAmounts, months int) []BucketAmounts {
	mean := make([]BucketAmounts, months)
	if len(w) == 0 {
		return mean
	}
	for _, path := range w {
		for t := 0; t < months && t < len(path); t++ {
			for k := range mean[t] {
				mean[t][k] += path[t][k]
			}
		}
	}
	n := float64(len(w))
	for t := range mean {
		for k := range mean[t] {
			mean[t][k] /= n
		}
	}
	return mean
}

func annualWithdrawals(mean []BucketAmounts) []AnnualWithdrawal {
	years := dateutil.YearsSpanned(len(mean))
	out := make([]AnnualWithdrawal, years)
	for y := 0; y < years; y++ {
		out[y].Year = y
		end := min(len(mean), (y+1)*12)
		for t := y * 12; t < end; t++ {
			out[y].Taxable += mean[t][0]
			out[y].Traditional += mean[t][1]
			out[y].Roth += mean[t][2]
		}
	}
	return out
}

func summariseReturns(returns []float64) ReturnSummary {
	if len(returns) == 0 {
		return ReturnSummary{}
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))
	var ss float64
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	return ReturnSummary{
		Mean:           mean,
		StdDev:         math.Sqrt(ss / float64(len(returns))),
		AnnualizedMean: math.Pow(1+mean, 12) - 1,
	}
}
