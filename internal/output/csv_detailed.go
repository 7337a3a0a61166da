package output

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// CSVDetailedExporter writes one row per month: balance percentiles, the
// deterministic cash flows and, for the taxed model, mean withdrawals by bucket.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(report *calculation.PlanReport) ([]byte, error) {
	if report == nil || report.Summary == nil {
		return nil, fmt.Errorf("report has no simulation summary")
	}
	s := report.Summary
	withdrawals := len(s.MeanWithdrawals) > 0

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Month", "Year", "P10", "P50", "P90", "Spending", "Income", "NetSpending", "Contribution"}
	if withdrawals {
		header = append(header, "WithdrawTaxable", "WithdrawTraditional", "WithdrawRoth")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	sched := report.Schedules
	for _, band := range s.Bands {
		t := band.Month
		row := []string{
			intToString(t),
			intToString(t / 12),
			floatToString(band.P10),
			floatToString(band.P50),
			floatToString(band.P90),
			floatToString(valueAt(sched.Spending, t)),
			floatToString(valueAt(sched.Income, t)),
			floatToString(valueAt(sched.NetSpending, t)),
			floatToString(valueAt(sched.Contributions, t)),
		}
		if withdrawals {
			mw := s.MeanWithdrawals[t]
			row = append(row, floatToString(mw[0]), floatToString(mw[1]), floatToString(mw[2]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func valueAt(series []float64, t int) float64 {
	if t < 0 || t >= len(series) {
		return 0
	}
	return series[t]
}
