package domain

import (
	"github.com/shopspring/decimal"
)

// SimulationSettings controls the Monte Carlo run and where market history lives.
type SimulationSettings struct {
	Simulations     int             `yaml:"simulations" json:"simulations"`
	AnnualInflation decimal.Decimal `yaml:"annual_inflation" json:"annual_inflation"`
	Seed            *int64          `yaml:"seed,omitempty" json:"seed,omitempty"`
	Concurrency     int             `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
	EquityReturns   string          `yaml:"equity_returns" json:"equity_returns"`
	BondReturns     string          `yaml:"bond_returns,omitempty" json:"bond_returns,omitempty"`
}

// Configuration is the complete input for one plan.
type Configuration struct {
	Name       string             `yaml:"name,omitempty" json:"name,omitempty"`
	Household  Household          `yaml:"household" json:"household"`
	Policy     Policy             `yaml:"policy" json:"policy"`
	Simulation SimulationSettings `yaml:"simulation" json:"simulation"`
}

// Default values applied to omitted settings.
const (
	DefaultSimulations  = 1000
	DefaultConcurrency  = 10
	DefaultSeed         = int64(42)
	DefaultEquityWeight = 0.60
)

// ApplyDefaults fills omitted settings in place.
func (c *Configuration) ApplyDefaults() {
	if c.Simulation.Simulations <= 0 {
		c.Simulation.Simulations = DefaultSimulations
	}
	if c.Simulation.Concurrency <= 0 {
		c.Simulation.Concurrency = DefaultConcurrency
	}
	if c.Policy.EquityWeight == nil {
		c.Policy.EquityWeight = Weight(DefaultEquityWeight)
	}
	if c.Policy.ContributionTarget == "" {
		c.Policy.ContributionTarget = TargetTraditional
	}
	if c.Household.Expenses.MortgagePayer == "" {
		c.Household.Expenses.MortgagePayer = PayerSelf
	}
}
