package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/rpgo/portfolio-survival/internal/calculation"
	"github.com/rpgo/portfolio-survival/internal/config"
	"github.com/rpgo/portfolio-survival/internal/domain"
	"github.com/rpgo/portfolio-survival/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// Prints the months where a plan's cash flows change: retirement, income
// start and stop, windfalls and the end of the mortgage.
func main() {
	configFile := flag.String("config", "", "plan configuration (default: built-in example household)")
	flag.Parse()

	parser := config.NewInputParser()
	cfg := parser.CreateExampleConfiguration()
	if *configFile != "" {
		loaded, err := parser.LoadFromFile(*configFile)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	in := calculation.DerivePlanInputs(cfg)
	s := calculation.BuildPlanSchedules(in, cfg.Household)
	fmt.Printf("Horizon %d months, retirement at month %d, mortgage ends at month %d\n",
		in.HorizonMonths, in.MonthsUntilRetirement, in.MonthsUntilMortgageEnd)

	h := cfg.Household
	marks := map[int]string{
		0:                        "start",
		in.MonthsUntilRetirement: "retirement",
	}
	if in.MonthlyMortgage > 0 {
		marks[in.MonthsUntilMortgageEnd] = "mortgage ends"
	}
	mark := func(p domain.Person, age int, label string) {
		if age > 0 {
			marks[dateutil.MonthsUntilAge(p.Age, age)] = label
		}
	}
	mark(h.Self, h.SelfIncome.SocialSecurityStartAge, "self social security")
	mark(h.Self, h.SelfIncome.PensionStartAge, "self pension")
	mark(h.Self, h.SelfIncome.RentalEndAge, "self rental ends")
	if h.Partner != nil {
		mark(*h.Partner, h.PartnerIncome.SocialSecurityStartAge, "partner social security")
		mark(*h.Partner, h.PartnerIncome.PensionStartAge, "partner pension")
		mark(*h.Partner, h.PartnerIncome.RentalEndAge, "partner rental ends")
	}
	for _, w := range h.Windfalls {
		marks[dateutil.MonthsUntilAge(h.YoungestAge(), w.Age)] = "windfall: " + w.Label
	}

	for t := 0; t < in.HorizonMonths; t++ {
		label, ok := marks[t]
		if !ok {
			continue
		}
		for _, m := range []int{t - 1, t} {
			if m < 0 {
				continue
			}
			note := ""
			if m == t {
				note = label
			}
			fmt.Printf("month %3d  spend %10s  income %10s  net %10s  contrib %9s  %s\n", m,
				decimal.NewFromFloat(s.Spending[m]).StringFixed(2),
				decimal.NewFromFloat(s.Income[m]).StringFixed(2),
				decimal.NewFromFloat(s.NetSpending[m]).StringFixed(2),
				decimal.NewFromFloat(s.Contributions[m]).StringFixed(2),
				note)
		}
	}
}
