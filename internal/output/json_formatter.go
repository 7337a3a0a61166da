package output

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// JSONFormatter serializes the plan report as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *calculation.PlanReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}
	return json.MarshalIndent(reportDocument(report), "", "  ")
}

// reportView adds the derived text sections to the serialised report.
type reportView struct {
	*calculation.PlanReport
	Assumptions []string `json:"assumptions"`
	Highlights  []string `json:"highlights"`
}

func reportDocument(report *calculation.PlanReport) reportView {
	return reportView{
		PlanReport:  report,
		Assumptions: GenerateAssumptions(report),
		Highlights:  Highlights(report),
	}
}

// Query evaluates a JSONPath expression, e.g. "$.summary.survival_probability",
// against the JSON form of the report.
func Query(report *calculation.PlanReport, path string) (any, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to query")
	}
	data, err := json.Marshal(reportDocument(report))
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", path, err)
	}
	return v, nil
}

// QueryJSON is Query with the result encoded as indented JSON.
func QueryJSON(report *calculation.PlanReport, path string) ([]byte, error) {
	v, err := Query(report, path)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}
