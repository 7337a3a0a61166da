package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplePlan = "../../test/testdata/example_config.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulate_Console(t *testing.T) {
	out, err := execute(t, "simulate", "-c", examplePlan, "--simulations", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "PORTFOLIO SURVIVAL ANALYSIS")
	assert.Contains(t, out, "Model:                  taxed")
}

func TestSimulate_Query(t *testing.T) {
	out, err := execute(t, "simulate", "-c", examplePlan, "--simulations", "50", "--seed", "9", "--query", "$.seed")
	require.NoError(t, err)
	assert.Equal(t, "9", strings.TrimSpace(out))
}

func TestSimulate_OutputDir(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "simulate", "-c", examplePlan, "--simulations", "20", "-f", "all", "-o", dir, "--all-csv")
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(out, "Report written to"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 6)
}

func TestSimulate_Errors(t *testing.T) {
	_, err := execute(t, "simulate", "-c", examplePlan, "-f", "docx")
	assert.ErrorContains(t, err, "unsupported format")

	_, err = execute(t, "simulate", "-c", examplePlan, "--simulations", "10", "-f", "pdf")
	assert.ErrorContains(t, err, "pdf output needs --output")

	_, err = execute(t, "simulate", "-c", "does-not-exist.yaml")
	assert.ErrorContains(t, err, "failed to read file")

	_, err = execute(t, "simulate")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	out, err := execute(t, "compare", "--simulations", "30", examplePlan, "../../test/testdata/no_bonds_config.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "PLAN COMPARISON")
	assert.Contains(t, out, "Example household")
	assert.Contains(t, out, "Equity only")
	assert.Contains(t, out, "Recommended:")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "-c", examplePlan)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "36 years (432 months)")
	assert.Contains(t, out, "Self accounts:  $645,000.00")
	assert.Contains(t, out, "Partner:        $240,000.00")
	assert.Contains(t, out, "Portfolio:      $885,000.00")
	assert.Contains(t, out, "Monthly spend:  $6,500.00")
}

func TestExample_RoundTripsThroughValidate(t *testing.T) {
	out, err := execute(t, "example")
	require.NoError(t, err)
	assert.Contains(t, out, "equity_returns: equity_monthly.csv")

	path := filepath.Join(t.TempDir(), "plan.yaml")
	_, err = execute(t, "example", "-o", path)
	require.NoError(t, err)
	_, err = execute(t, "validate", "-c", path)
	require.NoError(t, err)
}

func TestSchedule(t *testing.T) {
	out, err := execute(t, "schedule", "-c", examplePlan, "--months", "60")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header plus months 0, 12, 24, 36 and 48
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "Contribution")
}

func TestScenarioExportImport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "scenario.csv")
	_, err := execute(t, "scenario", "export", "-c", examplePlan, "-o", csvPath)
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	edited := strings.Replace(string(data), "simulation.simulations,500", "simulation.simulations,250", 1) + "not.a.key,1\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(edited), 0644))

	planPath := filepath.Join(dir, "plan.yaml")
	out, err := execute(t, "scenario", "import", "-c", examplePlan, "--csv", csvPath, "-o", planPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped unknown keys: not.a.key")

	saved, err := os.ReadFile(planPath)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "simulations: 250")
}

func TestServe_MissingDataDir(t *testing.T) {
	_, err := execute(t, "serve", "--data-dir", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "data directory")
}
