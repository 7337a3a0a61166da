package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// CSVCheckpointExporter writes one row per annual checkpoint.
type CSVCheckpointExporter struct{}

func (c CSVCheckpointExporter) Name() string { return "csv" }

func (c CSVCheckpointExporter) Format(report *calculation.PlanReport) ([]byte, error) {
	if report == nil || report.Summary == nil {
		return nil, fmt.Errorf("report has no simulation summary")
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Month", "P10", "P50", "P90", "SurvivalProbability"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	survival := strconv.FormatFloat(report.Summary.SurvivalProbability, 'f', 4, 64)
	for _, cp := range report.Summary.AnnualCheckpoints {
		row := []string{
			intToString(cp.Year),
			intToString(cp.Month),
			floatToString(cp.P10),
			floatToString(cp.P50),
			floatToString(cp.P90),
			survival,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
