package main

import (
	"fmt"

	"github.com/rpgo/portfolio-survival/internal/calculation"
	"github.com/rpgo/portfolio-survival/internal/config"
	money "github.com/rpgo/portfolio-survival/pkg/decimal"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a plan configuration without simulating it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(configFile)
			if err != nil {
				return err
			}
			in := calculation.DerivePlanInputs(cfg)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration is valid: %s\n", configFile)
			fmt.Fprintf(out, "  Horizon:        %d years (%d months)\n", in.HorizonYears, in.HorizonMonths)
			fmt.Fprintf(out, "  Retirement in:  %d years\n", in.YearsUntilRetirement)
			h := cfg.Household
			total := money.Zero()
			self := money.NewMoneyFromDecimal(h.SelfAccounts.Total())
			fmt.Fprintf(out, "  Self accounts:  %s\n", self.Format())
			total = total.Add(self)
			if h.Partner != nil {
				partner := money.NewMoneyFromDecimal(h.PartnerAccounts.Total())
				fmt.Fprintf(out, "  Partner:        %s\n", partner.Format())
				total = total.Add(partner)
			}
			fmt.Fprintf(out, "  Portfolio:      %s\n", total.Format())
			spend := money.NewMoneyFromDecimal(h.Expenses.Basic.Add(h.Expenses.Discretionary)).Monthly().Round()
			fmt.Fprintf(out, "  Monthly spend:  %s\n", spend.Format())
			fmt.Fprintf(out, "  Simulations:    %d\n", in.Simulations)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Plan configuration file (YAML)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
