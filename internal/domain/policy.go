package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Bucket is a tax treatment for invested money.
type Bucket int

const (
	Taxable Bucket = iota
	Traditional
	Roth
)

// WithdrawalOrder is the fixed order spending is drawn from the buckets.
var WithdrawalOrder = [3]Bucket{Taxable, Traditional, Roth}

func (b Bucket) String() string {
	switch b {
	case Taxable:
		return "taxable"
	case Traditional:
		return "traditional"
	case Roth:
		return "roth"
	}
	return fmt.Sprintf("bucket(%d)", int(b))
}

// ContributionTarget names the bucket that receives pre-retirement
// contributions.
type ContributionTarget string

const (
	TargetTaxable     ContributionTarget = "taxable"
	TargetTraditional ContributionTarget = "traditional"
	TargetRoth        ContributionTarget = "roth"
)

// ParseContributionTarget accepts the bucket names case-insensitively.
// An empty string selects the traditional bucket.
func ParseContributionTarget(s string) (ContributionTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "traditional":
		return TargetTraditional, nil
	case "taxable":
		return TargetTaxable, nil
	case "roth":
		return TargetRoth, nil
	}
	return "", fmt.Errorf("unknown contribution target %q (want taxable, traditional or roth)", s)
}

// Bucket returns the bucket the target refers to.
func (c ContributionTarget) Bucket() Bucket {
	switch c {
	case TargetTaxable:
		return Taxable
	case TargetRoth:
		return Roth
	}
	return Traditional
}

// UnmarshalYAML rejects unknown target names at load time.
func (c *ContributionTarget) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseContributionTarget(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalText lets JSON requests use the same names.
func (c *ContributionTarget) UnmarshalText(text []byte) error {
	parsed, err := ParseContributionTarget(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// AccountBuckets holds balances by tax treatment.
type AccountBuckets struct {
	Taxable     decimal.Decimal `json:"taxable"`
	Traditional decimal.Decimal `json:"traditional"`
	Roth        decimal.Decimal `json:"roth"`
}

// Total returns the combined balance.
func (b AccountBuckets) Total() decimal.Decimal {
	return b.Taxable.Add(b.Traditional).Add(b.Roth)
}

// Array returns the balances as floats indexed by Bucket.
func (b AccountBuckets) Array() [3]float64 {
	return [3]float64{b.Taxable.InexactFloat64(), b.Traditional.InexactFloat64(), b.Roth.InexactFloat64()}
}

// MaxTaxRate caps flat tax rates so the gross-up stays finite.
const MaxTaxRate = 0.99

// AllocationPolicy is the target equity/bond split.
type AllocationPolicy struct {
	EquityWeight    float64
	AnnualRebalance bool
}

// NewAllocationPolicy clamps the equity weight into [0, 1].
func NewAllocationPolicy(equityWeight float64, annualRebalance bool) AllocationPolicy {
	return AllocationPolicy{EquityWeight: clamp(equityWeight, 0, 1), AnnualRebalance: annualRebalance}
}

// BondWeight is the complement of the equity weight.
func (a AllocationPolicy) BondWeight() float64 { return 1 - a.EquityWeight }

// TaxPolicy holds flat withdrawal tax rates and the contribution bucket.
type TaxPolicy struct {
	OrdinaryIncomeRate float64
	CapitalGainsRate   float64
	ContributionTarget ContributionTarget
}

// NewTaxPolicy clamps both rates into [0, MaxTaxRate].
func NewTaxPolicy(ordinary, capitalGains float64, target ContributionTarget) TaxPolicy {
	if target == "" {
		target = TargetTraditional
	}
	return TaxPolicy{
		OrdinaryIncomeRate: clamp(ordinary, 0, MaxTaxRate),
		CapitalGainsRate:   clamp(capitalGains, 0, MaxTaxRate),
		ContributionTarget: target,
	}
}

// RateFor returns the rate applied to withdrawals from a bucket.
func (t TaxPolicy) RateFor(b Bucket) float64 {
	switch b {
	case Taxable:
		return t.CapitalGainsRate
	case Traditional:
		return t.OrdinaryIncomeRate
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v != v {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Policy is the user-facing allocation, contribution and tax settings.
type Policy struct {
	EquityWeight             *decimal.Decimal   `yaml:"equity_weight,omitempty" json:"equity_weight,omitempty"`
	AnnualRebalance          bool               `yaml:"annual_rebalance" json:"annual_rebalance"`
	MonthlyContribution      decimal.Decimal    `yaml:"monthly_contribution" json:"monthly_contribution"`
	AnnualContributionGrowth decimal.Decimal    `yaml:"annual_contribution_growth" json:"annual_contribution_growth"`
	ContributionTarget       ContributionTarget `yaml:"contribution_target" json:"contribution_target"`
	UseTaxed                 bool               `yaml:"use_taxed" json:"use_taxed"`
	OrdinaryIncomeTaxRate    decimal.Decimal    `yaml:"ordinary_income_tax_rate" json:"ordinary_income_tax_rate"`
	CapitalGainsTaxRate      decimal.Decimal    `yaml:"capital_gains_tax_rate" json:"capital_gains_tax_rate"`
}

// Allocation converts the configured weights into a clamped AllocationPolicy.
// An omitted equity weight means DefaultEquityWeight.
func (p Policy) Allocation() AllocationPolicy {
	w := DefaultEquityWeight
	if p.EquityWeight != nil {
		w = p.EquityWeight.InexactFloat64()
	}
	return NewAllocationPolicy(w, p.AnnualRebalance)
}

// Weight returns a pointer to v as a decimal, for optional policy fields.
func Weight(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// Tax converts the configured rates into a clamped TaxPolicy.
func (p Policy) Tax() TaxPolicy {
	return NewTaxPolicy(p.OrdinaryIncomeTaxRate.InexactFloat64(), p.CapitalGainsTaxRate.InexactFloat64(), p.ContributionTarget)
}
