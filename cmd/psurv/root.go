package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "psurv",
		Short: "Portfolio survival analysis for retirement plans",
		Long: `psurv simulates a household's retirement portfolio month by month against
bootstrapped historical returns and reports how often the money lasts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging to stderr")

	root.AddCommand(
		newSimulateCmd(),
		newCompareCmd(),
		newValidateCmd(),
		newExampleCmd(),
		newScheduleCmd(),
		newScenarioCmd(),
		newServeCmd(),
	)
	return root
}

func verboseFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}
