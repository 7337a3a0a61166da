package domain

import (
	"github.com/shopspring/decimal"
)

// Person holds the ages that drive a household member's timeline.
type Person struct {
	Name           string `yaml:"name,omitempty" json:"name,omitempty"`
	Age            int    `yaml:"age" json:"age"`
	RetirementAge  int    `yaml:"retirement_age" json:"retirement_age"`
	LifeExpectancy int    `yaml:"life_expectancy" json:"life_expectancy"`
}

// Accounts lists a person's investable balances by account type.
type Accounts struct {
	FourOhOneK     decimal.Decimal `yaml:"401k" json:"401k"`
	TraditionalIRA decimal.Decimal `yaml:"traditional_ira" json:"traditional_ira"`
	RothIRA        decimal.Decimal `yaml:"roth_ira" json:"roth_ira"`
	Brokerage      decimal.Decimal `yaml:"brokerage" json:"brokerage"`
}

// Total returns the sum of all account balances.
func (a Accounts) Total() decimal.Decimal {
	return a.FourOhOneK.Add(a.TraditionalIRA).Add(a.RothIRA).Add(a.Brokerage)
}

// IncomeSources are annual amounts paid from a start age. A zero start age
// disables social security and pension; for rental it means "starts now" and
// a zero end age means the rental never stops.
type IncomeSources struct {
	SocialSecurity         decimal.Decimal `yaml:"social_security" json:"social_security"`
	SocialSecurityStartAge int             `yaml:"social_security_start_age" json:"social_security_start_age"`
	Pension                decimal.Decimal `yaml:"pension" json:"pension"`
	PensionStartAge        int             `yaml:"pension_start_age" json:"pension_start_age"`
	Rental                 decimal.Decimal `yaml:"rental" json:"rental"`
	RentalStartAge         int             `yaml:"rental_start_age" json:"rental_start_age"`
	RentalEndAge           int             `yaml:"rental_end_age" json:"rental_end_age"`
}

// Windfall is a one-time amount received when the younger household member
// reaches Age.
type Windfall struct {
	Label  string          `yaml:"label" json:"label"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
	Age    int             `yaml:"age" json:"age"`
}

// MortgagePayer identifies whose age determines when the mortgage ends.
type MortgagePayer string

const (
	PayerSelf    MortgagePayer = "self"
	PayerPartner MortgagePayer = "partner"
	PayerJoint   MortgagePayer = "joint"
)

// Expenses are annual spending amounts in today's dollars plus the monthly
// mortgage payment.
type Expenses struct {
	Basic             decimal.Decimal `yaml:"basic" json:"basic"`
	Discretionary     decimal.Decimal `yaml:"discretionary" json:"discretionary"`
	MortgagePayment   decimal.Decimal `yaml:"mortgage_payment" json:"mortgage_payment"`
	MortgageEndsAtAge int             `yaml:"mortgage_ends_at_age" json:"mortgage_ends_at_age"`
	MortgagePayer     MortgagePayer   `yaml:"mortgage_payer" json:"mortgage_payer"`
}

// Household groups one or two people with their accounts and cash flows.
type Household struct {
	Self            Person        `yaml:"self" json:"self"`
	Partner         *Person       `yaml:"partner,omitempty" json:"partner,omitempty"`
	SelfAccounts    Accounts      `yaml:"self_accounts" json:"self_accounts"`
	PartnerAccounts Accounts      `yaml:"partner_accounts" json:"partner_accounts"`
	SelfIncome      IncomeSources `yaml:"self_income" json:"self_income"`
	PartnerIncome   IncomeSources `yaml:"partner_income" json:"partner_income"`
	Windfalls       []Windfall    `yaml:"windfalls" json:"windfalls,omitempty"`
	Expenses        Expenses      `yaml:"expenses" json:"expenses"`
}

// People returns every configured household member, self first.
func (h Household) People() []Person {
	if h.Partner == nil {
		return []Person{h.Self}
	}
	return []Person{h.Self, *h.Partner}
}

// HorizonYears is the longest remaining life expectancy in the household.
func (h Household) HorizonYears() int {
	horizon := 0
	for _, p := range h.People() {
		if years := p.LifeExpectancy - p.Age; years > horizon {
			horizon = years
		}
	}
	return horizon
}

// YearsUntilRetirement is measured to the earliest retirement in the household.
func (h Household) YearsUntilRetirement() int {
	people := h.People()
	years := people[0].RetirementAge - people[0].Age
	for _, p := range people[1:] {
		if y := p.RetirementAge - p.Age; y < years {
			years = y
		}
	}
	if years < 0 {
		return 0
	}
	return years
}

// YoungestAge is the baseline age for joint events such as windfalls.
func (h Household) YoungestAge() int {
	if h.Partner != nil && h.Partner.Age < h.Self.Age {
		return h.Partner.Age
	}
	return h.Self.Age
}

// MortgagePayerAge returns the current age of whoever the mortgage end age
// refers to.
func (h Household) MortgagePayerAge() int {
	switch h.Expenses.MortgagePayer {
	case PayerPartner:
		if h.Partner != nil {
			return h.Partner.Age
		}
	case PayerJoint:
		return h.YoungestAge()
	}
	return h.Self.Age
}

// TotalAssets is the household's investable balance across all accounts.
func (h Household) TotalAssets() decimal.Decimal {
	return h.SelfAccounts.Total().Add(h.PartnerAccounts.Total())
}

// Buckets maps account types onto tax treatment: brokerage is taxable,
// 401(k) and traditional IRA are tax-deferred, Roth IRA is tax-free.
func (h Household) Buckets() AccountBuckets {
	return AccountBuckets{
		Taxable:     h.SelfAccounts.Brokerage.Add(h.PartnerAccounts.Brokerage),
		Traditional: h.SelfAccounts.FourOhOneK.Add(h.SelfAccounts.TraditionalIRA).Add(h.PartnerAccounts.FourOhOneK).Add(h.PartnerAccounts.TraditionalIRA),
		Roth:        h.SelfAccounts.RothIRA.Add(h.PartnerAccounts.RothIRA),
	}
}

// MonthlySpending is the current monthly living cost excluding the mortgage.
func (h Household) MonthlySpending() decimal.Decimal {
	return h.Expenses.Basic.Add(h.Expenses.Discretionary).Div(decimal.NewFromInt(12))
}
