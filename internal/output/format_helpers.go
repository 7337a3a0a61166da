package output

import (
	"fmt"
	"strconv"

	"github.com/rpgo/portfolio-survival/pkg/decimal"
)

// FormatCurrency formats an amount as whole US dollars with grouping.
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatCurrency(amount float64) string { return decimal.NewMoney(amount).FormatWhole() }

// FormatCents formats an amount as US dollars with cents.
func FormatCents(amount float64) string { return decimal.NewMoney(amount).Format() }

// FormatPercentage formats a fraction as a percentage with 1 decimal.
func FormatPercentage(fraction float64) string { return fmt.Sprintf("%.1f%%", fraction*100) }

func intToString(i int) string { return strconv.Itoa(i) }

func floatToString(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
