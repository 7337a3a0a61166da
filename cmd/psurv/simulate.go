package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/rpgo/portfolio-survival/internal/calculation"
	"github.com/rpgo/portfolio-survival/internal/config"
	"github.com/rpgo/portfolio-survival/internal/domain"
	"github.com/rpgo/portfolio-survival/internal/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type simulateOptions struct {
	configFile  string
	format      string
	outputDir   string
	query       string
	seed        int64
	simulations int
	concurrency int
	allCSV      bool
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the Monte Carlo survival analysis for a plan",
		Example: `  psurv simulate -c plan.yaml
  psurv simulate -c plan.yaml -f html -o reports
  psurv simulate -c plan.yaml --query '$.summary.survival_probability'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "Plan configuration file (YAML)")
	f.StringVarP(&opts.format, "format", "f", "console", "Report format: "+fmt.Sprint(output.AvailableFormatterNames())+" or all")
	f.StringVarP(&opts.outputDir, "output", "o", "", "Write reports to this directory instead of stdout")
	f.StringVar(&opts.query, "query", "", "Print the result of a JSONPath query over the JSON report")
	f.Int64Var(&opts.seed, "seed", 0, "Override the random seed")
	f.IntVar(&opts.simulations, "simulations", 0, "Override the number of simulated paths")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Override the number of parallel workers")
	f.BoolVar(&opts.allCSV, "all-csv", false, "Also write checkpoint, monthly and path CSVs to the output directory")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// loadPlan reads a configuration and applies command line overrides.
func loadPlan(cmd *cobra.Command, file string, seed int64, simulations, concurrency int) (*domain.Configuration, error) {
	parser := config.NewInputParser()
	cfg, err := parser.LoadFromFile(file)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = &seed
	}
	if simulations > 0 {
		cfg.Simulation.Simulations = simulations
	}
	if concurrency > 0 {
		cfg.Simulation.Concurrency = concurrency
	}
	if err := parser.ValidateConfiguration(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func newEngine(cmd *cobra.Command) *calculation.CalculationEngine {
	engine := calculation.NewCalculationEngine()
	engine.SetLogger(newCLILogger(cmd.ErrOrStderr(), verboseFlag(cmd)))
	return engine
}

func runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	var formatter output.Formatter
	if output.NormalizeFormatName(opts.format) != "all" {
		f, err := output.Lookup(opts.format)
		if err != nil {
			return err
		}
		formatter = f
	} else if opts.outputDir == "" {
		return fmt.Errorf("format \"all\" needs --output")
	}
	if opts.allCSV && opts.outputDir == "" {
		return fmt.Errorf("--all-csv needs --output")
	}

	cfg, err := loadPlan(cmd, opts.configFile, opts.seed, opts.simulations, opts.concurrency)
	if err != nil {
		return err
	}
	report, err := newEngine(cmd).RunPlan(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.query != "" {
		data, err := output.QueryJSON(report, opts.query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	if opts.outputDir != "" {
		files, err := output.GenerateReport(report, opts.format, opts.outputDir)
		if err != nil {
			return err
		}
		if opts.allCSV {
			csvFiles, err := output.GenerateAllCSVReports(report, opts.outputDir)
			if err != nil {
				return err
			}
			files = append(files, csvFiles...)
		}
		for _, f := range files {
			fmt.Fprintf(out, "Report written to %s\n", f)
		}
		return nil
	}

	if formatter.Name() == "pdf" {
		return fmt.Errorf("pdf output needs --output")
	}
	data, err := formatter.Format(report)
	if err != nil {
		return err
	}
	if formatter.Name() == "markdown" && isTerminal(out) {
		data = renderMarkdown(data)
	}
	_, err = out.Write(data)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderMarkdown styles markdown for the terminal, returning it unchanged
// when rendering fails.
func renderMarkdown(md []byte) []byte {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	styled, err := r.RenderBytes(md)
	if err != nil {
		return md
	}
	return styled
}
