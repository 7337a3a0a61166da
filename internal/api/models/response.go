package models

import (
	"github.com/rpgo/portfolio-survival/internal/calculation"
	"github.com/rpgo/portfolio-survival/internal/output"
)

// Error codes returned in ErrorDetail.Code.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeInputMissing    = "INPUT_MISSING"
	CodeInputInvalid    = "INPUT_INVALID"
	CodeSimulationError = "SIMULATION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeLimitExceeded   = "LIMIT_EXCEEDED"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// QueryResponse carries the result of a JSONPath query over a report.
type QueryResponse struct {
	Query  string `json:"query"`
	Result any    `json:"result"`
}

// FormatsResponse lists the report formats the simulate endpoint accepts.
type FormatsResponse struct {
	Formats []string `json:"formats"`
	Aliases []string `json:"aliases"`
}

// PlanSummary is one row of a comparison.
type PlanSummary struct {
	Name                string                       `json:"name"`
	Variant             calculation.Variant          `json:"variant"`
	SurvivalProbability float64                      `json:"survival_probability"`
	EndingBalance       calculation.PercentileRanges `json:"ending_balance"`
}

// CompareResponse is returned by POST /api/v1/compare.
type CompareResponse struct {
	Plans          []PlanSummary         `json:"plans"`
	Recommendation output.Recommendation `json:"recommendation"`
}
