package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rpgo/portfolio-survival/internal/calculation"
	"github.com/rpgo/portfolio-survival/internal/config"
	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	var configFile string
	var every, months int
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the deterministic spending, income and contribution schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(configFile)
			if err != nil {
				return err
			}
			in := calculation.DerivePlanInputs(cfg)
			s := calculation.BuildPlanSchedules(in, cfg.Household)
			if every < 1 {
				every = 1
			}
			limit := in.HorizonMonths
			if months > 0 && months < limit {
				limit = months
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "Month\tYear\tSpending\tIncome\tNet\tContribution\t")
			for t := 0; t < limit; t += every {
				fmt.Fprintf(w, "%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t\n", t, t/12, s.Spending[t], s.Income[t], s.NetSpending[t], s.Contributions[t])
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Plan configuration file (YAML)")
	cmd.Flags().IntVar(&every, "every", 12, "Print every n-th month")
	cmd.Flags().IntVar(&months, "months", 0, "Only print the first n months")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
