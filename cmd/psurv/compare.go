package main

import (
	"github.com/rpgo/portfolio-survival/internal/domain"
	"github.com/rpgo/portfolio-survival/internal/output"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var seed int64
	var simulations int
	cmd := &cobra.Command{
		Use:   "compare PLAN.yaml PLAN.yaml...",
		Short: "Simulate several plans and rank them by survival probability",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configs := make([]*domain.Configuration, 0, len(args))
			for _, file := range args {
				cfg, err := loadPlan(cmd, file, seed, simulations, 0)
				if err != nil {
					return err
				}
				if cfg.Name == "" {
					cfg.Name = file
				}
				configs = append(configs, cfg)
			}
			reports, err := newEngine(cmd).RunPlans(cmd.Context(), configs)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(output.FormatComparison(reports))
			return err
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "Use the same seed for every plan")
	cmd.Flags().IntVar(&simulations, "simulations", 0, "Override the number of simulated paths")
	return cmd
}
