package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rpgo/portfolio-survival/internal/config"
	"github.com/spf13/cobra"
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Export or import a plan as key,value CSV",
	}
	cmd.AddCommand(newScenarioExportCmd(), newScenarioImportCmd())
	return cmd
}

func newScenarioExportCmd() *cobra.Command {
	var configFile, outFile string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every setting of a plan as a dotted key and its value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(configFile)
			if err != nil {
				return err
			}
			if outFile == "" {
				return config.ExportScenarioCSV(cmd.OutOrStdout(), cfg)
			}
			f, err := os.Create(outFile)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outFile, err)
			}
			defer f.Close()
			if err := config.ExportScenarioCSV(f, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scenario written to %s\n", outFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Plan configuration file (YAML)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "CSV file to write (default stdout)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newScenarioImportCmd() *cobra.Command {
	var configFile, csvFile, outFile string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Apply a key,value CSV to a base plan and save the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewInputParser()
			base, err := parser.LoadFromFile(configFile)
			if err != nil {
				return err
			}
			f, err := os.Open(csvFile)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", csvFile, err)
			}
			defer f.Close()

			res, err := config.ImportScenarioCSV(f, base)
			if err != nil {
				return err
			}
			if err := parser.ValidateConfiguration(res.Config); err != nil {
				return fmt.Errorf("imported plan is invalid: %w", err)
			}
			if err := parser.SaveToFile(res.Config, outFile); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Applied %d settings, plan written to %s\n", len(res.Applied), outFile)
			if len(res.Skipped) > 0 {
				fmt.Fprintf(out, "Skipped unknown keys: %s\n", strings.Join(res.Skipped, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Base plan configuration file (YAML)")
	cmd.Flags().StringVar(&csvFile, "csv", "", "Scenario CSV to apply")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Where to save the resulting plan (YAML)")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
