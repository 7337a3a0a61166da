package calculation

import (
	"context"
	"fmt"
	"sync"

	"github.com/rpgo/portfolio-survival/internal/domain"
)

// Variant identifies which path simulator produced a result.
type Variant string

const (
	VariantSingleAsset Variant = "single_asset"
	VariantTwoAsset    Variant = "two_asset"
	VariantTaxed       Variant = "taxed"
)

// BucketAmounts holds one value per tax bucket, indexed by domain.Bucket.
type BucketAmounts [3]float64

// SimulationResult holds every simulated path. Rows are paths, columns are months.
type SimulationResult struct {
	Variant       Variant `json:"variant"`
	Seed          int64   `json:"seed"`
	Paths         int     `json:"paths"`
	HorizonMonths int     `json:"horizon_months"`

	Balances [][]float64 `json:"-"`
	Alive    [][]bool    `json:"-"`
	// Withdrawals is set by the taxed simulator only: net amount drawn from
	// each bucket per path and month.
	Withdrawals [][]BucketAmounts `json:"-"`
	// PathReturns is each path's mean monthly portfolio return.
	PathReturns []float64 `json:"-"`
}

// DefaultChunkSize is the number of paths handed to one worker at a time.
const DefaultChunkSize = 64

// PathSimulator runs independent paths in parallel, bounded by Concurrency.
type PathSimulator struct {
	Concurrency int
	ChunkSize   int
}

// NewPathSimulator creates a simulator with the given worker bound.
func NewPathSimulator(concurrency int) *PathSimulator {
	if concurrency < 1 {
		concurrency = domain.DefaultConcurrency
	}
	return &PathSimulator{Concurrency: concurrency, ChunkSize: DefaultChunkSize}
}

func newResult(variant Variant, paths, months int) *SimulationResult {
	res := &SimulationResult{
		Variant:       variant,
		Paths:         paths,
		HorizonMonths: months,
		Balances:      make([][]float64, paths),
		Alive:         make([][]bool, paths),
		PathReturns:   make([]float64, paths),
	}
	for i := 0; i < paths; i++ {
		res.Balances[i] = make([]float64, months)
		res.Alive[i] = make([]bool, months)
	}
	return res
}

// forEachChunk splits [0, paths) into chunks and runs fn on each. Chunks
// write disjoint rows, so no further synchronisation is needed.
func (ps *PathSimulator) forEachChunk(ctx context.Context, paths int, fn func(lo, hi int)) error {
	chunk := ps.ChunkSize
	if chunk < 1 {
		chunk = DefaultChunkSize
	}
	workers := ps.Concurrency
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers) // Limit concurrent chunks

	for lo := 0; lo < paths; lo += chunk {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return err
		}
		hi := min(lo+chunk, paths)
		semaphore <- struct{}{} // Acquire semaphore
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release semaphore
			fn(lo, hi)
		}(lo, hi)
	}

	wg.Wait()
	return nil
}

func checkShapes(name string, matrix [][]float64, paths, months int) error {
	if len(matrix) != paths {
		return fmt.Errorf("%w: %s has %d paths, want %d", ErrInputInvalid, name, len(matrix), paths)
	}
	for i, row := range matrix {
		if len(row) < months {
			return fmt.Errorf("%w: %s path %d has %d months, want %d", ErrInputInvalid, name, i, len(row), months)
		}
	}
	return nil
}

func checkSchedules(spend, contrib []float64) (int, error) {
	months := len(spend)
	if months < 1 {
		return 0, fmt.Errorf("%w: empty spending schedule", ErrInputInvalid)
	}
	if contrib != nil && len(contrib) != months {
		return 0, fmt.Errorf("%w: contribution schedule has %d months, spending has %d", ErrInputInvalid, len(contrib), months)
	}
	return months, nil
}

func contributionAt(contrib []float64, t int) float64 {
	if contrib == nil {
		return 0
	}
	return contrib[t]
}

// SimulateSingleAsset runs one balance per path against one return series.
// Each month the previous balance (floored at zero) plus the contribution
// grows by the month's return, then that month's spending is withdrawn.
// Balances may go negative; a path is alive while its balance is positive.
func (ps *PathSimulator) SimulateSingleAsset(ctx context.Context, initial float64, returns [][]float64, spend, contrib []float64) (*SimulationResult, error) {
	months, err := checkSchedules(spend, contrib)
	if err != nil {
		return nil, err
	}
	paths := len(returns)
	if paths < 1 {
		return nil, fmt.Errorf("%w: no simulated paths", ErrInputInvalid)
	}
	if err := checkShapes("returns", returns, paths, months); err != nil {
		return nil, err
	}

	res := newResult(VariantSingleAsset, paths, months)
	err = ps.forEachChunk(ctx, paths, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			bal := max(initial, 0)
			var sumReturn float64
			for t := 0; t < months; t++ {
				r := returns[i][t]
				bal = (max(bal, 0)+contributionAt(contrib, t))*(1+r) - spend[t]
				res.Balances[i][t] = bal
				res.Alive[i][t] = bal > 0
				sumReturn += r
			}
			res.PathReturns[i] = sumReturn / float64(months)
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SimulateTwoAsset holds separate equity and bond balances per path. Each
// month: contributions are split by the target weights, both buckets grow by
// their own return, spending is withdrawn in proportion to the current
// equity share, and with annual rebalancing the buckets are reset to the
// target weights every twelfth month.
func (ps *PathSimulator) SimulateTwoAsset(ctx context.Context, initial float64, equity, bond [][]float64, spend, contrib []float64, alloc domain.AllocationPolicy) (*SimulationResult, error) {
	months, err := checkSchedules(spend, contrib)
	if err != nil {
		return nil, err
	}
	paths := len(equity)
	if paths < 1 {
		return nil, fmt.Errorf("%w: no simulated paths", ErrInputInvalid)
	}
	if err := checkShapes("equity returns", equity, paths, months); err != nil {
		return nil, err
	}
	if err := checkShapes("bond returns", bond, paths, months); err != nil {
		return nil, err
	}

	alloc = domain.NewAllocationPolicy(alloc.EquityWeight, alloc.AnnualRebalance)
	we, wb := alloc.EquityWeight, alloc.BondWeight()

	res := newResult(VariantTwoAsset, paths, months)
	err = ps.forEachChunk(ctx, paths, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			start := max(initial, 0)
			e, b := start*we, start*wb
			var sumReturn float64
			for t := 0; t < months; t++ {
				re, rb := equity[i][t], bond[i][t]
				c := contributionAt(contrib, t)
				e = (max(e, 0) + c*we) * (1 + re)
				b = (max(b, 0) + c*wb) * (1 + rb)

				if s := spend[t]; s > 0 {
					var shareE float64
					if total := e + b; total > 0 {
						shareE = e / total
					}
					e -= s * shareE
					b -= s * (1 - shareE)
				}

				if alloc.AnnualRebalance && t > 0 && t%12 == 0 {
					total := e + b
					e, b = total*we, total*wb
				}

				bal := e + b
				res.Balances[i][t] = bal
				res.Alive[i][t] = bal > 0
				sumReturn += we*re + wb*rb
			}
			res.PathReturns[i] = sumReturn / float64(months)
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SimulateTaxed tracks taxable, traditional and Roth buckets per path. Each
// month the contribution goes to the target bucket, every bucket grows by
// the blended equity/bond return, and spending is met in the fixed order
// taxable, traditional, Roth. Taxed withdrawals are grossed up so the
// amount left after tax covers the need.
func (ps *PathSimulator) SimulateTaxed(ctx context.Context, initial domain.AccountBuckets, equity, bond [][]float64, spend, contrib []float64, alloc domain.AllocationPolicy, tax domain.TaxPolicy) (*SimulationResult, error) {
	months, err := checkSchedules(spend, contrib)
	if err != nil {
		return nil, err
	}
	paths := len(equity)
	if paths < 1 {
		return nil, fmt.Errorf("%w: no simulated paths", ErrInputInvalid)
	}
	if err := checkShapes("equity returns", equity, paths, months); err != nil {
		return nil, err
	}
	if err := checkShapes("bond returns", bond, paths, months); err != nil {
		return nil, err
	}

	alloc = domain.NewAllocationPolicy(alloc.EquityWeight, alloc.AnnualRebalance)
	tax = domain.NewTaxPolicy(tax.OrdinaryIncomeRate, tax.CapitalGainsRate, tax.ContributionTarget)
	we, wb := alloc.EquityWeight, alloc.BondWeight()
	target := tax.ContributionTarget.Bucket()
	start := initial.Array()
	for k := range start {
		start[k] = max(start[k], 0)
	}

	res := newResult(VariantTaxed, paths, months)
	res.Withdrawals = make([][]BucketAmounts, paths)
	for i := range res.Withdrawals {
		res.Withdrawals[i] = make([]BucketAmounts, months)
	}

	err = ps.forEachChunk(ctx, paths, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			buckets := start
			var sumReturn float64
			for t := 0; t < months; t++ {
				buckets[target] += contributionAt(contrib, t)

				r := we*equity[i][t] + wb*bond[i][t]
				for k := range buckets {
					buckets[k] *= 1 + r
				}
				sumReturn += r

				res.Withdrawals[i][t] = withdrawOrdered(&buckets, spend[t], tax)

				bal := buckets[0] + buckets[1] + buckets[2]
				res.Balances[i][t] = bal
				res.Alive[i][t] = bal > 0
			}
			res.PathReturns[i] = sumReturn / float64(months)
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// withdrawOrdered draws need (net of tax) from the buckets in withdrawal
// order and returns the net amount each bucket delivered. Unmet need is
// simply unmet.
func withdrawOrdered(buckets *[3]float64, need float64, tax domain.TaxPolicy) BucketAmounts {
	var net BucketAmounts
	for _, b := range domain.WithdrawalOrder {
		if need <= 0 {
			break
		}
		balance := buckets[b]
		if balance <= 0 {
			continue
		}
		rate := tax.RateFor(b)
		gross := need / (1 - rate)
		if gross <= balance {
			buckets[b] = balance - gross
			net[b] = need
			need = 0
			continue
		}
		buckets[b] = 0
		got := balance * (1 - rate)
		net[b] = got
		need -= got
	}
	return net
}
