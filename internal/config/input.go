package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpgo/portfolio-survival/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MaxSimulations bounds the number of paths a single plan may request.
const MaxSimulations = 100000

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a plan configuration from a YAML file. Relative market
// data paths are resolved against the directory holding the file.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config, err := ip.Parse(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(filename)
	config.Simulation.EquityReturns = resolvePath(dir, config.Simulation.EquityReturns)
	config.Simulation.BondReturns = resolvePath(dir, config.Simulation.BondReturns)

	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Parse decodes a YAML configuration and applies defaults. Unknown keys are
// rejected so that misspelt settings do not silently fall back to defaults.
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	config.ApplyDefaults()
	return &config, nil
}

func resolvePath(dir, p string) string {
	if strings.TrimSpace(p) == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// SaveToFile writes a configuration as YAML.
func (ip *InputParser) SaveToFile(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// ValidateConfiguration rejects structurally invalid plans. Weights and tax
// rates are not checked here: out-of-range values are clamped when the plan
// is simulated.
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if config == nil {
		return fmt.Errorf("no configuration provided")
	}
	h := &config.Household

	if err := ip.validatePerson("self", &h.Self); err != nil {
		return err
	}
	if h.Partner != nil {
		if err := ip.validatePerson("partner", h.Partner); err != nil {
			return err
		}
	}

	if err := validateAccounts("self_accounts", h.SelfAccounts); err != nil {
		return err
	}
	if err := validateAccounts("partner_accounts", h.PartnerAccounts); err != nil {
		return err
	}
	if err := validateIncome("self_income", h.SelfIncome); err != nil {
		return err
	}
	if err := validateIncome("partner_income", h.PartnerIncome); err != nil {
		return err
	}

	for i, w := range h.Windfalls {
		if w.Amount.IsNegative() {
			return fmt.Errorf("windfall %d: amount cannot be negative", i)
		}
		if w.Age < 0 {
			return fmt.Errorf("windfall %d: age cannot be negative", i)
		}
	}

	if err := ip.validateExpenses(h); err != nil {
		return fmt.Errorf("expenses validation failed: %w", err)
	}

	if _, err := domain.ParseContributionTarget(string(config.Policy.ContributionTarget)); err != nil {
		return fmt.Errorf("policy validation failed: %w", err)
	}

	return ip.validateSimulation(&config.Simulation)
}

func (ip *InputParser) validatePerson(role string, p *domain.Person) error {
	if p.Age <= 0 {
		return fmt.Errorf("%s: age must be positive", role)
	}
	if p.RetirementAge <= 0 {
		return fmt.Errorf("%s: retirement age must be positive", role)
	}
	if p.LifeExpectancy <= p.Age {
		return fmt.Errorf("%s: life expectancy (%d) must be greater than age (%d)", role, p.LifeExpectancy, p.Age)
	}
	if p.LifeExpectancy > 120 {
		return fmt.Errorf("%s: life expectancy cannot exceed 120", role)
	}
	return nil
}

func validateAccounts(name string, a domain.Accounts) error {
	for label, v := range map[string]decimal.Decimal{
		"401k":            a.FourOhOneK,
		"traditional_ira": a.TraditionalIRA,
		"roth_ira":        a.RothIRA,
		"brokerage":       a.Brokerage,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s.%s cannot be negative", name, label)
		}
	}
	return nil
}

func validateIncome(name string, in domain.IncomeSources) error {
	if in.SocialSecurity.IsNegative() || in.Pension.IsNegative() || in.Rental.IsNegative() {
		return fmt.Errorf("%s: income amounts cannot be negative", name)
	}
	if in.SocialSecurityStartAge < 0 || in.PensionStartAge < 0 || in.RentalStartAge < 0 || in.RentalEndAge < 0 {
		return fmt.Errorf("%s: start and end ages cannot be negative", name)
	}
	if in.RentalEndAge > 0 && in.RentalEndAge <= in.RentalStartAge {
		return fmt.Errorf("%s: rental end age must be after the start age", name)
	}
	return nil
}

func (ip *InputParser) validateExpenses(h *domain.Household) error {
	e := h.Expenses
	if e.Basic.IsNegative() || e.Discretionary.IsNegative() {
		return fmt.Errorf("annual spending cannot be negative")
	}
	if e.MortgagePayment.IsNegative() {
		return fmt.Errorf("mortgage payment cannot be negative")
	}
	if e.MortgagePayment.IsPositive() && e.MortgageEndsAtAge <= 0 {
		return fmt.Errorf("mortgage_ends_at_age is required when a mortgage payment is set")
	}
	switch e.MortgagePayer {
	case "", domain.PayerSelf:
	case domain.PayerPartner, domain.PayerJoint:
		if h.Partner == nil {
			return fmt.Errorf("mortgage payer %q requires a partner", e.MortgagePayer)
		}
	default:
		return fmt.Errorf("mortgage payer must be 'self', 'partner' or 'joint'")
	}
	return nil
}

func (ip *InputParser) validateSimulation(s *domain.SimulationSettings) error {
	if s.Simulations < 1 || s.Simulations > MaxSimulations {
		return fmt.Errorf("simulations must be between 1 and %d", MaxSimulations)
	}
	if s.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}
	if s.AnnualInflation.LessThan(decimal.NewFromFloat(-0.10)) {
		return fmt.Errorf("inflation rate cannot be less than -10%% (extreme deflation)")
	}
	if s.AnnualInflation.GreaterThan(decimal.NewFromFloat(0.5)) {
		return fmt.Errorf("inflation rate cannot exceed 50%%")
	}
	if strings.TrimSpace(s.EquityReturns) == "" {
		return fmt.Errorf("simulation.equity_returns is required")
	}
	return nil
}

// CreateExampleConfiguration returns a two-person household a few years
// from retirement.
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	seed := domain.DefaultSeed
	return &domain.Configuration{
		Name: "Example household",
		Household: domain.Household{
			Self:    domain.Person{Name: "Alex", Age: 58, RetirementAge: 62, LifeExpectancy: 90},
			Partner: &domain.Person{Name: "Sam", Age: 56, RetirementAge: 62, LifeExpectancy: 92},
			SelfAccounts: domain.Accounts{
				FourOhOneK:     decimal.NewFromInt(420000),
				TraditionalIRA: decimal.NewFromInt(60000),
				RothIRA:        decimal.NewFromInt(45000),
				Brokerage:      decimal.NewFromInt(120000),
			},
			PartnerAccounts: domain.Accounts{
				FourOhOneK: decimal.NewFromInt(210000),
				RothIRA:    decimal.NewFromInt(30000),
			},
			SelfIncome: domain.IncomeSources{
				SocialSecurity:         decimal.NewFromInt(28000),
				SocialSecurityStartAge: 67,
				Rental:                 decimal.NewFromInt(14400),
				RentalEndAge:           75,
			},
			PartnerIncome: domain.IncomeSources{
				SocialSecurity:         decimal.NewFromInt(21000),
				SocialSecurityStartAge: 67,
				Pension:                decimal.NewFromInt(12000),
				PensionStartAge:        62,
			},
			Windfalls: []domain.Windfall{
				{Label: "Downsize home", Amount: decimal.NewFromInt(150000), Age: 70},
			},
			Expenses: domain.Expenses{
				Basic:             decimal.NewFromInt(60000),
				Discretionary:     decimal.NewFromInt(18000),
				MortgagePayment:   decimal.NewFromInt(1850),
				MortgageEndsAtAge: 65,
				MortgagePayer:     domain.PayerJoint,
			},
		},
		Policy: domain.Policy{
			EquityWeight:             domain.Weight(domain.DefaultEquityWeight),
			AnnualRebalance:          true,
			MonthlyContribution:      decimal.NewFromInt(2500),
			AnnualContributionGrowth: decimal.NewFromFloat(0.03),
			ContributionTarget:       domain.TargetTraditional,
			UseTaxed:                 true,
			OrdinaryIncomeTaxRate:    decimal.NewFromFloat(0.22),
			CapitalGainsTaxRate:      decimal.NewFromFloat(0.15),
		},
		Simulation: domain.SimulationSettings{
			Simulations:     domain.DefaultSimulations,
			AnnualInflation: decimal.NewFromFloat(0.025),
			Seed:            &seed,
			Concurrency:     domain.DefaultConcurrency,
			EquityReturns:   "equity_monthly.csv",
			BondReturns:     "bond_monthly.csv",
		},
	}
}
