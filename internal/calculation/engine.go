package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/rpgo/portfolio-survival/internal/domain"
	"github.com/rpgo/portfolio-survival/pkg/dateutil"
)

// PlanInputs are the simulation parameters derived from a configuration.
type PlanInputs struct {
	HorizonYears             int                     `json:"horizon_years"`
	HorizonMonths            int                     `json:"horizon_months"`
	YearsUntilRetirement     int                     `json:"years_until_retirement"`
	MonthsUntilRetirement    int                     `json:"months_until_retirement"`
	MonthsUntilMortgageEnd   int                     `json:"months_until_mortgage_end"`
	InitialBalance           float64                 `json:"initial_balance"`
	Buckets                  domain.AccountBuckets   `json:"buckets"`
	MonthlySpending          float64                 `json:"monthly_spending"`
	MonthlyMortgage          float64                 `json:"monthly_mortgage"`
	AnnualInflation          float64                 `json:"annual_inflation"`
	MonthlyInflation         float64                 `json:"monthly_inflation"`
	MonthlyContribution      float64                 `json:"monthly_contribution"`
	AnnualContributionGrowth float64                 `json:"annual_contribution_growth"`
	Allocation               domain.AllocationPolicy `json:"allocation"`
	Tax                      domain.TaxPolicy        `json:"tax"`
	UseTaxed                 bool                    `json:"use_taxed"`
	Simulations              int                     `json:"simulations"`
	Concurrency              int                     `json:"-"`
	Seed                     *int64                  `json:"seed,omitempty"`
}

// DerivePlanInputs turns a household configuration into simulation inputs.
// Omitted settings take their defaults; weights and rates are clamped.
func DerivePlanInputs(config *domain.Configuration) PlanInputs {
	cfg := *config
	cfg.ApplyDefaults()
	h := cfg.Household

	horizonYears := h.HorizonYears()
	yearsUntilRet := h.YearsUntilRetirement()
	annualInflation := cfg.Simulation.AnnualInflation.InexactFloat64()

	in := PlanInputs{
		HorizonYears:             horizonYears,
		HorizonMonths:            dateutil.HorizonMonths(float64(horizonYears)),
		YearsUntilRetirement:     yearsUntilRet,
		MonthsUntilRetirement:    yearsUntilRet * 12,
		InitialBalance:           h.TotalAssets().InexactFloat64(),
		Buckets:                  h.Buckets(),
		MonthlySpending:          h.MonthlySpending().InexactFloat64(),
		AnnualInflation:          annualInflation,
		MonthlyInflation:         MonthlyRateFromAnnual(annualInflation),
		MonthlyContribution:      cfg.Policy.MonthlyContribution.InexactFloat64(),
		AnnualContributionGrowth: cfg.Policy.AnnualContributionGrowth.InexactFloat64(),
		Allocation:               cfg.Policy.Allocation(),
		Tax:                      cfg.Policy.Tax(),
		UseTaxed:                 cfg.Policy.UseTaxed,
		Simulations:              cfg.Simulation.Simulations,
		Concurrency:              cfg.Simulation.Concurrency,
		Seed:                     cfg.Simulation.Seed,
	}
	if h.Expenses.MortgagePayment.IsPositive() {
		in.MonthlyMortgage = h.Expenses.MortgagePayment.InexactFloat64()
		in.MonthsUntilMortgageEnd = dateutil.MonthsUntilAge(h.MortgagePayerAge(), h.Expenses.MortgageEndsAtAge)
	}
	return in
}

// PlanSchedules are the deterministic monthly cash flows fed to the simulator.
type PlanSchedules struct {
	Spending      []float64 `json:"spending"`
	Income        []float64 `json:"income"`
	NetSpending   []float64 `json:"net_spending"`
	Contributions []float64 `json:"contributions"`
}

// BuildPlanSchedules builds spending, income and contribution schedules for a plan.
func BuildPlanSchedules(in PlanInputs, h domain.Household) PlanSchedules {
	spend := BuildSpendingSchedule(in.HorizonMonths, in.MonthlySpending, in.MonthlyMortgage, in.MonthsUntilRetirement, in.MonthsUntilMortgageEnd, in.MonthlyInflation)
	income := BuildIncomeSeries(h, in.HorizonMonths)
	return PlanSchedules{
		Spending:      spend,
		Income:        income,
		NetSpending:   ApplyIncomeOffset(spend, income),
		Contributions: BuildContributionSchedule(in.HorizonMonths, in.MonthlyContribution, in.MonthsUntilRetirement, in.AnnualContributionGrowth),
	}
}

// SeriesSummary describes a loaded return history.
type SeriesSummary struct {
	Name       string               `json:"name"`
	Source     string               `json:"source"`
	Start      string               `json:"start"`
	End        string               `json:"end"`
	Months     int                  `json:"months"`
	Statistics HistoricalStatistics `json:"statistics"`
}

func summariseSeries(s *ReturnSeries) *SeriesSummary {
	if s == nil {
		return nil
	}
	return &SeriesSummary{
		Name:       s.Name,
		Source:     s.Source,
		Start:      s.Start().Format("2006-01"),
		End:        s.End().Format("2006-01"),
		Months:     s.Len(),
		Statistics: s.Statistics,
	}
}

// PlanReport is everything produced for one plan.
type PlanReport struct {
	Name        string           `json:"name,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
	Inputs      PlanInputs       `json:"inputs"`
	Variant     Variant          `json:"variant"`
	Seed        int64            `json:"seed"`
	Fallback    string           `json:"fallback,omitempty"`
	Equity      *SeriesSummary   `json:"equity_history"`
	Bond        *SeriesSummary   `json:"bond_history,omitempty"`
	DataIssues  []string         `json:"data_issues,omitempty"`
	Summary     *AggregateResult `json:"summary"`

	Config    *domain.Configuration `json:"-"`
	Schedules PlanSchedules         `json:"-"`
	Result    *SimulationResult     `json:"-"`
}

// CalculationEngine orchestrates loading, sampling, simulation and aggregation.
type CalculationEngine struct {
	// DataPath, when set, is the base directory for relative return files.
	DataPath string
	Logger   Logger
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{Logger: NopLogger{}}
}

// SetLogger sets the logger for the calculation engine. If nil is provided, a no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// RunPlan simulates one configuration. The variant follows the available
// data: a bond history enables the two-asset model, and with use_taxed the
// three-bucket taxed model; without bond returns it degrades to a single
// equity series.
func (ce *CalculationEngine) RunPlan(ctx context.Context, config *domain.Configuration) (*PlanReport, error) {
	started := nowFunc()
	inputs := DerivePlanInputs(config)

	hdm := NewHistoricalDataManager(ce.DataPath, config.Simulation.EquityReturns, config.Simulation.BondReturns)
	if err := hdm.LoadAllData(); err != nil {
		return nil, fmt.Errorf("failed to load market data: %w", err)
	}
	if hdm.BondUnavailable != nil {
		ce.Logger.Warnf("bond returns unavailable, using equity only: %v", hdm.BondUnavailable)
	}
	issues, _ := hdm.ValidateDataQuality()
	for _, issue := range issues {
		ce.Logger.Debugf("data quality: %s", issue)
	}

	schedules := BuildPlanSchedules(inputs, config.Household)
	ce.Logger.Debugf("plan: horizon=%d months, retirement in %d months, %d paths",
		inputs.HorizonMonths, inputs.MonthsUntilRetirement, inputs.Simulations)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sampler := NewSampler(inputs.Seed)
	ps := NewPathSimulator(inputs.Concurrency)
	report := &PlanReport{
		Name:       config.Name,
		Inputs:     inputs,
		Seed:       sampler.Seed(),
		Equity:     summariseSeries(hdm.Equity),
		Bond:       summariseSeries(hdm.Bond),
		DataIssues: issues,
		Config:     config,
		Schedules:  schedules,
	}

	var res *SimulationResult
	var err error
	if hdm.HasBond() {
		eq, bd, jerr := hdm.JointReturns()
		if jerr != nil {
			return nil, fmt.Errorf("failed to align return histories: %w", jerr)
		}
		eqPaths, bdPaths, serr := sampler.JointBootstrap(eq, bd, inputs.Simulations, inputs.HorizonMonths)
		if serr != nil {
			return nil, fmt.Errorf("failed to sample returns: %w", serr)
		}
		if inputs.UseTaxed {
			res, err = ps.SimulateTaxed(ctx, inputs.Buckets, eqPaths, bdPaths, schedules.NetSpending, schedules.Contributions, inputs.Allocation, inputs.Tax)
		} else {
			res, err = ps.SimulateTwoAsset(ctx, inputs.InitialBalance, eqPaths, bdPaths, schedules.NetSpending, schedules.Contributions, inputs.Allocation)
		}
	} else {
		if inputs.UseTaxed {
			report.Fallback = "taxed withdrawals need bond returns; simulated a single equity series"
		} else if inputs.Allocation.EquityWeight < 1 {
			report.Fallback = "no bond returns; simulated a single equity series"
		}
		eqPaths, serr := sampler.Bootstrap(hdm.Equity.Returns(), inputs.Simulations, inputs.HorizonMonths)
		if serr != nil {
			return nil, fmt.Errorf("failed to sample returns: %w", serr)
		}
		res, err = ps.SimulateSingleAsset(ctx, inputs.InitialBalance, eqPaths, schedules.NetSpending, schedules.Contributions)
	}
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	res.Seed = sampler.Seed()

	summary, err := Aggregate(res)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate results: %w", err)
	}

	report.Variant = res.Variant
	report.Result = res
	report.Summary = summary
	report.GeneratedAt = nowFunc()
	ce.Logger.Infof("%s simulation of %d paths x %d months finished in %s: survival %.1f%%",
		res.Variant, res.Paths, res.HorizonMonths, report.GeneratedAt.Sub(started).Round(time.Millisecond), summary.SurvivalProbability*100)
	return report, nil
}

// RunPlans simulates several configurations in order, for side-by-side comparison.
func (ce *CalculationEngine) RunPlans(ctx context.Context, configs []*domain.Configuration) ([]*PlanReport, error) {
	reports := make([]*PlanReport, 0, len(configs))
	for i, cfg := range configs {
		report, err := ce.RunPlan(ctx, cfg)
		if err != nil {
			name := cfg.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			return nil, fmt.Errorf("plan %s: %w", name, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}
