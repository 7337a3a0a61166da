package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// PathsCSVExporter writes the raw balance matrix, one row per simulated path.
type PathsCSVExporter struct{}

func (p PathsCSVExporter) Name() string { return "paths-csv" }

func (p PathsCSVExporter) Format(report *calculation.PlanReport) ([]byte, error) {
	res := report.Result
	if res == nil || len(res.Balances) == 0 {
		return nil, fmt.Errorf("report carries no simulated paths")
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Path", "Survived", "DepletionMonth", "MeanMonthlyReturn"}
	for t := 0; t < res.HorizonMonths; t++ {
		header = append(header, "M"+strconv.Itoa(t))
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, balances := range res.Balances {
		depleted := -1
		for t, alive := range res.Alive[i] {
			if !alive {
				depleted = t
				break
			}
		}
		meanReturn := 0.0
		if i < len(res.PathReturns) {
			meanReturn = res.PathReturns[i]
		}
		row := make([]string, 0, len(header))
		row = append(row,
			strconv.Itoa(i),
			strconv.FormatBool(depleted < 0),
			strconv.Itoa(depleted),
			strconv.FormatFloat(meanReturn, 'f', 6, 64),
		)
		for _, b := range balances {
			row = append(row, floatToString(b))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write path row: %w", err)
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// GenerateAllCSVReports writes the checkpoint, monthly and path CSVs into outputDir.
func GenerateAllCSVReports(report *calculation.PlanReport, outputDir string) ([]string, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outputs := []struct {
		file string
		f    Formatter
	}{
		{"survival_checkpoints.csv", CSVCheckpointExporter{}},
		{"survival_monthly.csv", CSVDetailedExporter{}},
		{"survival_paths.csv", PathsCSVExporter{}},
	}
	var written []string
	for _, o := range outputs {
		data, err := o.f.Format(report)
		if err != nil {
			return written, fmt.Errorf("failed to generate %s: %w", o.file, err)
		}
		path := filepath.Join(outputDir, o.file)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", o.file, err)
		}
		written = append(written, path)
	}
	return written, nil
}
