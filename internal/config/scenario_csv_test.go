package config

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/rpgo/portfolio-survival/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportRows(t *testing.T, config *domain.Configuration) map[string]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ExportScenarioCSV(&buf, config))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"key", "value"}, records[0])

	rows := make(map[string]string, len(records)-1)
	for i, rec := range records[1:] {
		if i > 0 {
			assert.Less(t, records[i][0], rec[0], "rows sorted by key")
		}
		rows[rec[0]] = rec[1]
	}
	return rows
}

func TestExportScenarioCSV(t *testing.T) {
	config := NewInputParser().CreateExampleConfiguration()
	rows := exportRows(t, config)

	assert.Equal(t, "58", rows["household.self.age"])
	assert.Equal(t, "420000", rows["household.self_accounts.401k"])
	assert.Equal(t, "joint", rows["household.expenses.mortgage_payer"])
	assert.Equal(t, "true", rows["policy.use_taxed"])
	assert.Equal(t, "0.22", rows["policy.ordinary_income_tax_rate"])
	assert.Equal(t, "42", rows["simulation.seed"])
	assert.JSONEq(t, `[{"label":"Downsize home","amount":"150000","age":70}]`, rows["household.windfalls"])
	assert.NotContains(t, rows, "household")
}

func TestImportScenarioCSV_RoundTrip(t *testing.T) {
	original := NewInputParser().CreateExampleConfiguration()
	var buf bytes.Buffer
	require.NoError(t, ExportScenarioCSV(&buf, original))

	imported, err := ImportScenarioCSV(&buf, original)
	require.NoError(t, err)
	assert.Empty(t, imported.Skipped)
	assert.NotEmpty(t, imported.Applied)
	assert.Equal(t, exportRows(t, original), exportRows(t, imported.Config))
}

func TestImportScenarioCSV_UpdatesExistingKeysOnly(t *testing.T) {
	base := NewInputParser().CreateExampleConfiguration()
	in := strings.Join([]string{
		"key,value",
		"household.self.retirement_age,63.0",
		"household.expenses.basic,65000",
		"policy.annual_rebalance,no",
		"policy.use_taxed,Y",
		"policy.contribution_target,roth",
		"household.self.salary,90000",
		"nonexistent.deep.key,1",
		",ignored",
		`household.windfalls,"[{""label"":""Inheritance"",""amount"":75000,""age"":66},{""label"":"""",""amount"":0}]"`,
	}, "\n")

	imported, err := ImportScenarioCSV(strings.NewReader(in), base)
	require.NoError(t, err)
	assert.Equal(t, []string{"household.self.salary", "nonexistent.deep.key"}, imported.Skipped)
	assert.Len(t, imported.Applied, 6)

	c := imported.Config
	assert.Equal(t, 63, c.Household.Self.RetirementAge)
	assert.True(t, c.Household.Expenses.Basic.Equal(decimal.NewFromInt(65000)))
	assert.False(t, c.Policy.AnnualRebalance)
	assert.True(t, c.Policy.UseTaxed)
	assert.Equal(t, domain.TargetRoth, c.Policy.ContributionTarget)
	require.Len(t, c.Household.Windfalls, 1, "empty windfall rows dropped")
	assert.Equal(t, "Inheritance", c.Household.Windfalls[0].Label)
	assert.True(t, c.Household.Windfalls[0].Amount.Equal(decimal.NewFromInt(75000)))
	assert.Equal(t, 66, c.Household.Windfalls[0].Age)

	// base untouched
	assert.Equal(t, 62, base.Household.Self.RetirementAge)
	assert.Len(t, base.Household.Windfalls, 1)
	assert.Equal(t, "Downsize home", base.Household.Windfalls[0].Label)
}

func TestImportScenarioCSV_Errors(t *testing.T) {
	base := NewInputParser().CreateExampleConfiguration()

	_, err := ImportScenarioCSV(strings.NewReader(""), base)
	assert.Error(t, err)

	_, err = ImportScenarioCSV(strings.NewReader("name,amount\nx,1\n"), base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key,value")

	_, err = ImportScenarioCSV(strings.NewReader("key,value\nhousehold.self.age,old\n"), base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "household.self.age")

	_, err = ImportScenarioCSV(strings.NewReader("key,value\nhousehold.expenses.basic,lots\n"), base)
	assert.Error(t, err, "decimal amounts are checked when applied")

	_, err = ImportScenarioCSV(strings.NewReader("key,value\npolicy.contribution_target,hsa\n"), base)
	assert.Error(t, err)

	_, err = ImportScenarioCSV(strings.NewReader("key,value\nhousehold.windfalls,{}\n"), base)
	assert.Error(t, err)
}
