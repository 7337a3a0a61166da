package calculation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rpgo/portfolio-survival/pkg/dateutil"
)

// MinJointHistoryMonths is the shortest overlapping history accepted when
// equity and bond returns are resampled together.
const MinJointHistoryMonths = 24

// ReturnPoint is one month's fractional return.
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// ReturnSeries is a monthly return history, ascending by date, with no
// missing values.
type ReturnSeries struct {
	Name       string               `json:"name"`
	Source     string               `json:"source"`
	Points     []ReturnPoint        `json:"points"`
	Statistics HistoricalStatistics `json:"statistics"`
}

// HistoricalStatistics provides statistical summary of the dataset
type HistoricalStatistics struct {
	Mean           float64  `json:"mean"`
	Median         float64  `json:"median"`
	StdDev         float64  `json:"std_dev"`
	Min            float64  `json:"min"`
	Max            float64  `json:"max"`
	Count          int      `json:"count"`
	AnnualizedMean float64  `json:"annualized_mean"`
	MissingMonths  []string `json:"missing_months,omitempty"`
}

// NewReturnSeries sorts the points by date and drops non-finite values.
// A series with nothing left is rejected with ErrInputInvalid.
func NewReturnSeries(name string, points []ReturnPoint) (*ReturnSeries, error) {
	clean := make([]ReturnPoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Return) || math.IsInf(p.Return, 0) {
			continue
		}
		clean = append(clean, p)
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("%w: %s: empty or NaN series", ErrInputInvalid, name)
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Date.Before(clean[j].Date) })

	s := &ReturnSeries{Name: name, Points: clean}
	s.Statistics = calculateStatistics(s)
	return s, nil
}

// MonthlySeries builds a series of consecutive months starting at start.
func MonthlySeries(name string, start time.Time, returns []float64) (*ReturnSeries, error) {
	points := make([]ReturnPoint, len(returns))
	first := dateutil.FirstOfMonth(start)
	for i, r := range returns {
		points[i] = ReturnPoint{Date: dateutil.AddMonths(first, i), Return: r}
	}
	return NewReturnSeries(name, points)
}

// Len returns the number of months in the series.
func (s *ReturnSeries) Len() int { return len(s.Points) }

// Returns returns the raw return values in date order.
func (s *ReturnSeries) Returns() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Return
	}
	return out
}

// Start and End report the covered date range.
func (s *ReturnSeries) Start() time.Time { return s.Points[0].Date }
func (s *ReturnSeries) End() time.Time   { return s.Points[len(s.Points)-1].Date }

// LoadMonthlyReturns reads a CSV of monthly returns. The file needs a date
// column and either a return column or a price column (AdjClose, Close,
// Price) from which returns are derived as month-over-month changes.
func LoadMonthlyReturns(path string) (*ReturnSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: returns file %s not found", ErrInputMissing, path)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	series, err := ParseMonthlyReturns(file, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	series.Source = path
	return series, nil
}

// ParseMonthlyReturns parses return history from CSV. Malformed rows are skipped.
func ParseMonthlyReturns(r io.Reader, name string) (*ReturnSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s: empty file", ErrInputInvalid, name)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	dateCol, returnCol, priceCol := locateColumns(header)
	if returnCol < 0 && priceCol < 0 {
		return nil, fmt.Errorf("%w: %s: no Return or AdjClose column", ErrInputInvalid, name)
	}
	valueCol := returnCol
	if valueCol < 0 {
		valueCol = priceCol
	}

	type row struct {
		date  time.Time
		value float64
	}
	var rows []row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row: %w", err)
		}
		if len(record) <= dateCol || len(record) <= valueCol {
			continue // Skip malformed rows
		}
		date, err := dateutil.ParseDate(record[dateCol])
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[valueCol]), 64)
		if err != nil {
			continue
		}
		rows = append(rows, row{date: date, value: value})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	var points []ReturnPoint
	if returnCol >= 0 {
		points = make([]ReturnPoint, 0, len(rows))
		for _, rw := range rows {
			points = append(points, ReturnPoint{Date: rw.date, Return: rw.value})
		}
	} else {
		// price history: the first row has no prior month and is dropped
		for i := 1; i < len(rows); i++ {
			prev := rows[i-1].value
			if prev == 0 || math.IsNaN(prev) {
				continue
			}
			points = append(points, ReturnPoint{Date: rows[i].date, Return: rows[i].value/prev - 1})
		}
	}
	return NewReturnSeries(name, points)
}

func locateColumns(header []string) (dateCol, returnCol, priceCol int) {
	dateCol, returnCol, priceCol = -1, -1, -1
	for i, h := range header {
		key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "\ufeff", "").Replace(strings.TrimSpace(h)))
		switch key {
		case "date", "month", "period":
			if dateCol < 0 {
				dateCol = i
			}
		case "return", "returns", "monthlyreturn":
			if returnCol < 0 {
				returnCol = i
			}
		case "adjclose", "adjustedclose":
			priceCol = i
		case "close", "price", "value":
			if priceCol < 0 {
				priceCol = i
			}
		}
	}
	if dateCol < 0 {
		dateCol = 0
	}
	return dateCol, returnCol, priceCol
}

func calculateStatistics(s *ReturnSeries) HistoricalStatistics {
	values := s.Returns()
	if len(values) == 0 {
		return HistoricalStatistics{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var varianceSum float64
	for _, v := range values {
		d := v - mean
		varianceSum += d * d
	}

	var missing []string
	for i := 1; i < len(s.Points); i++ {
		gap := dateutil.MonthsBetween(s.Points[i-1].Date, s.Points[i].Date)
		for m := 1; m < gap; m++ {
			missing = append(missing, dateutil.AddMonths(dateutil.FirstOfMonth(s.Points[i-1].Date), m).Format("2006-01"))
		}
	}

	return HistoricalStatistics{
		Mean:           mean,
		Median:         percentileSorted(sorted, 50),
		StdDev:         math.Sqrt(varianceSum / float64(len(values))),
		Min:            sorted[0],
		Max:            sorted[len(sorted)-1],
		Count:          len(values),
		AnnualizedMean: math.Pow(1+mean, 12) - 1,
		MissingMonths:  missing,
	}
}

// AlignSeries returns the returns of both series over the calendar months
// they share, in date order. Fewer than MinJointHistoryMonths shared months
// is an ErrInputInvalid.
func AlignSeries(a, b *ReturnSeries) ([]float64, []float64, error) {
	byMonth := make(map[int]float64, len(b.Points))
	for _, p := range b.Points {
		byMonth[dateutil.MonthKey(p.Date)] = p.Return
	}
	var xs, ys []float64
	for _, p := range a.Points {
		if r, ok := byMonth[dateutil.MonthKey(p.Date)]; ok {
			xs = append(xs, p.Return)
			ys = append(ys, r)
		}
	}
	if len(xs) < MinJointHistoryMonths {
		return nil, nil, fmt.Errorf("%w: insufficient overlapping history between %s and %s: %d months, need %d",
			ErrInputInvalid, a.Name, b.Name, len(xs), MinJointHistoryMonths)
	}
	return xs, ys, nil
}

// HistoricalDataManager loads the equity and optional bond return histories.
type HistoricalDataManager struct {
	DataPath   string        `json:"data_path"`
	EquityFile string        `json:"equity_file"`
	BondFile   string        `json:"bond_file"`
	Equity     *ReturnSeries `json:"equity"`
	Bond       *ReturnSeries `json:"bond,omitempty"`
	// BondUnavailable records why a configured bond file was not used.
	BondUnavailable error `json:"-"`
	IsLoaded        bool  `json:"is_loaded"`
}

// NewHistoricalDataManager creates a new historical data manager. Relative
// file names are resolved against dataPath when it is set.
func NewHistoricalDataManager(dataPath, equityFile, bondFile string) *HistoricalDataManager {
	return &HistoricalDataManager{
		DataPath:   dataPath,
		EquityFile: equityFile,
		BondFile:   bondFile,
	}
}

func (hdm *HistoricalDataManager) resolve(file string) string {
	if hdm.DataPath == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(hdm.DataPath, file)
}

// LoadAllData loads the equity series (required) and the bond series. A
// bond file that does not exist leaves Bond nil; one that exists but cannot
// be used is an error.
func (hdm *HistoricalDataManager) LoadAllData() error {
	if hdm.IsLoaded {
		return nil // Already loaded
	}
	if strings.TrimSpace(hdm.EquityFile) == "" {
		return fmt.Errorf("%w: no equity returns file configured", ErrInputMissing)
	}

	equity, err := LoadMonthlyReturns(hdm.resolve(hdm.EquityFile))
	if err != nil {
		return fmt.Errorf("failed to load equity returns: %w", err)
	}
	hdm.Equity = equity

	if strings.TrimSpace(hdm.BondFile) != "" {
		bond, err := LoadMonthlyReturns(hdm.resolve(hdm.BondFile))
		switch {
		case errors.Is(err, ErrInputMissing):
			hdm.BondUnavailable = err
		case err != nil:
			return fmt.Errorf("failed to load bond returns: %w", err)
		default:
			hdm.Bond = bond
		}
	}

	hdm.IsLoaded = true
	return nil
}

// HasBond reports whether a bond history is available.
func (hdm *HistoricalDataManager) HasBond() bool { return hdm.Bond != nil }

// JointReturns aligns equity and bond histories for joint resampling.
func (hdm *HistoricalDataManager) JointReturns() ([]float64, []float64, error) {
	if !hdm.IsLoaded {
		return nil, nil, fmt.Errorf("historical data not loaded")
	}
	if hdm.Bond == nil {
		return nil, nil, fmt.Errorf("%w: no bond returns loaded", ErrInputMissing)
	}
	return AlignSeries(hdm.Equity, hdm.Bond)
}

// ValidateDataQuality performs quality checks on the loaded data
func (hdm *HistoricalDataManager) ValidateDataQuality() ([]string, error) {
	if !hdm.IsLoaded {
		return nil, fmt.Errorf("historical data not loaded")
	}

	var issues []string
	for _, s := range []*ReturnSeries{hdm.Equity, hdm.Bond} {
		if s == nil {
			continue
		}
		if n := len(s.Statistics.MissingMonths); n > 0 {
			issues = append(issues, fmt.Sprintf("%s is missing %d months (first %s)", s.Name, n, s.Statistics.MissingMonths[0]))
		}
		// Check for extreme outliers (monthly moves beyond +/-50%)
		for _, p := range s.Points {
			if p.Return > 0.5 || p.Return < -0.5 {
				issues = append(issues, fmt.Sprintf("Extreme return in %s for %s: %.4f", s.Name, p.Date.Format("2006-01"), p.Return))
			}
		}
	}
	if hdm.Bond != nil {
		if _, _, err := AlignSeries(hdm.Equity, hdm.Bond); err != nil {
			issues = append(issues, err.Error())
		}
	}
	return issues, nil
}
