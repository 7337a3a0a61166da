package main

import (
	"fmt"

	"github.com/rpgo/portfolio-survival/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExampleCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print or write an example plan configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewInputParser()
			cfg := parser.CreateExampleConfiguration()
			if outFile != "" {
				if err := parser.SaveToFile(cfg, outFile); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", outFile)
				return nil
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write the configuration to this file")
	return cmd
}
