package calculation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeReturnsCSV writes a Date,Return file with consecutive months from January 2000.
func writeReturnsCSV(t *testing.T, dir, name string, returns []float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Return\n")
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range returns {
		fmt.Fprintf(&b, "%s,%g\n", start.AddDate(0, i, 0).Format("2006-01-02"), r)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func repeat(r float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func TestLoadMonthlyReturns_ReturnColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeReturnsCSV(t, dir, "equity.csv", []float64{0.01, -0.02, 0.03})

	s, err := LoadMonthlyReturns(path)
	require.NoError(t, err)
	assert.Equal(t, "equity", s.Name)
	assert.Equal(t, path, s.Source)
	assert.Equal(t, []float64{0.01, -0.02, 0.03}, s.Returns())
	assert.Equal(t, 3, s.Statistics.Count)
	assert.InDelta(t, 0.02/3, s.Statistics.Mean, 1e-12)
	assert.InDelta(t, 0.01, s.Statistics.Median, 1e-12)
	assert.Equal(t, -0.02, s.Statistics.Min)
	assert.Equal(t, 0.03, s.Statistics.Max)
}

func TestLoadMonthlyReturns_DerivesFromPrices(t *testing.T) {
	dir := t.TempDir()
	// rows deliberately out of order, with one malformed row
	content := "Date,Open,Adj Close\n" +
		"2020-03-01,0,121\n" +
		"2020-01-01,0,100\n" +
		"not-a-date,0,5\n" +
		"2020-02-01,0,110\n"
	path := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := LoadMonthlyReturns(path)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len(), "first price has no prior month")
	assert.InDelta(t, 0.10, s.Points[0].Return, 1e-12)
	assert.InDelta(t, 0.10, s.Points[1].Return, 1e-12)
	assert.Equal(t, time.February, s.Start().Month())
	assert.Equal(t, time.March, s.End().Month())
}

func TestLoadMonthlyReturns_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadMonthlyReturns(filepath.Join(dir, "missing.csv"))
	assert.True(t, errors.Is(err, ErrInputMissing), "got %v", err)

	nan := filepath.Join(dir, "nan.csv")
	require.NoError(t, os.WriteFile(nan, []byte("Date,Return\n2020-01-01,NaN\n2020-02-01,\n"), 0644))
	_, err = LoadMonthlyReturns(nan)
	assert.True(t, errors.Is(err, ErrInputInvalid), "got %v", err)

	noValue := filepath.Join(dir, "novalue.csv")
	require.NoError(t, os.WriteFile(noValue, []byte("Date,Volume\n2020-01-01,100\n"), 0644))
	_, err = LoadMonthlyReturns(noValue)
	assert.True(t, errors.Is(err, ErrInputInvalid), "got %v", err)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = LoadMonthlyReturns(empty)
	assert.True(t, errors.Is(err, ErrInputInvalid), "got %v", err)
}

func TestAlignSeries_MinimumOverlap(t *testing.T) {
	start := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	a23, err := MonthlySeries("eq", start, repeat(0.01, 23))
	require.NoError(t, err)
	b23, err := MonthlySeries("bd", start, repeat(0.002, 23))
	require.NoError(t, err)
	_, _, err = AlignSeries(a23, b23)
	assert.True(t, errors.Is(err, ErrInputInvalid))

	a24, _ := MonthlySeries("eq", start, repeat(0.01, 24))
	b24, _ := MonthlySeries("bd", start, repeat(0.002, 24))
	x, y, err := AlignSeries(a24, b24)
	require.NoError(t, err)
	assert.Len(t, x, 24)
	assert.Len(t, y, 24)
}

func TestAlignSeries_UsesSharedMonths(t *testing.T) {
	eqReturns := make([]float64, 36)
	for i := range eqReturns {
		eqReturns[i] = float64(i)
	}
	eq, _ := MonthlySeries("eq", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), eqReturns)
	// bond starts a year later and ends with equity
	bd, _ := MonthlySeries("bd", time.Date(2001, 1, 15, 0, 0, 0, 0, time.UTC), repeat(0.5, 24))

	x, y, err := AlignSeries(eq, bd)
	require.NoError(t, err)
	require.Len(t, x, 24)
	assert.Equal(t, 12.0, x[0], "equity aligned to the first shared month")
	assert.Equal(t, 0.5, y[0])
}

func TestHistoricalDataManager(t *testing.T) {
	dir := t.TempDir()
	writeReturnsCSV(t, dir, "equity.csv", repeat(0.01, 30))

	// configured bond file that does not exist: equity-only fallback
	hdm := NewHistoricalDataManager(dir, "equity.csv", "bond.csv")
	require.NoError(t, hdm.LoadAllData())
	assert.True(t, hdm.IsLoaded)
	assert.False(t, hdm.HasBond())
	assert.True(t, errors.Is(hdm.BondUnavailable, ErrInputMissing))
	_, _, err := hdm.JointReturns()
	assert.Error(t, err)

	// bond present but unusable: fatal
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("Date,Return\n2000-01-01,NaN\n"), 0644))
	hdm = NewHistoricalDataManager(dir, "equity.csv", "bad.csv")
	err = hdm.LoadAllData()
	assert.True(t, errors.Is(err, ErrInputInvalid))

	// both present
	writeReturnsCSV(t, dir, "bond.csv", repeat(0.003, 30))
	hdm = NewHistoricalDataManager(dir, "equity.csv", "bond.csv")
	require.NoError(t, hdm.LoadAllData())
	assert.True(t, hdm.HasBond())
	eq, bd, err := hdm.JointReturns()
	require.NoError(t, err)
	assert.Len(t, eq, 30)
	assert.Len(t, bd, 30)

	issues, err := hdm.ValidateDataQuality()
	require.NoError(t, err)
	assert.Empty(t, issues)

	// missing equity file
	hdm = NewHistoricalDataManager(dir, "nope.csv", "")
	assert.True(t, errors.Is(hdm.LoadAllData(), ErrInputMissing))
}

func TestValidateDataQuality_FlagsGapsAndOutliers(t *testing.T) {
	dir := t.TempDir()
	content := "Date,Return\n2000-01-01,0.01\n2000-02-01,0.9\n2000-05-01,0.01\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eq.csv"), []byte(content), 0644))

	hdm := NewHistoricalDataManager(dir, "eq.csv", "")
	require.NoError(t, hdm.LoadAllData())
	assert.Equal(t, []string{"2000-03", "2000-04"}, hdm.Equity.Statistics.MissingMonths)

	issues, err := hdm.ValidateDataQuality()
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0], "missing 2 months")
	assert.Contains(t, issues[1], "Extreme return")

	_, err = NewHistoricalDataManager(dir, "eq.csv", "").ValidateDataQuality()
	assert.Error(t, err, "not loaded yet")
}
