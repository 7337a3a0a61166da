package decimal

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used by Format when no currency is given.
const DefaultCurrency = money.USD

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a float64
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Round rounds the money amount to cents using banker's rounding
func (m Money) Round() Money {
	return Money{m.Decimal.Round(2)}
}

// Monthly converts an annual amount to monthly
func (m Money) Monthly() Money {
	return Money{m.Decimal.Div(decimal.NewFromInt(12))}
}

// Add adds another Money amount
func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

// Zero returns a zero Money amount
func Zero() Money {
	return Money{decimal.Zero}
}

// String returns the amount with two decimals and no currency symbol.
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// Format renders the amount in US dollars with grouping, e.g. "$1,234.50".
func (m Money) Format() string {
	return m.FormatIn(DefaultCurrency)
}

// FormatWhole renders the amount rounded to whole currency units, e.g. "$1,235".
func (m Money) FormatWhole() string {
	return trimFraction(Money{m.Decimal.Round(0)}.Format())
}

// FormatIn renders the amount in the given ISO currency. Unknown currencies
// fall back to the plain decimal string.
func (m Money) FormatIn(code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return m.String()
	}
	factor := decimal.New(1, int32(cur.Fraction))
	minor := m.Decimal.Mul(factor).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func trimFraction(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[:i]
		}
	}
	return s
}
