package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rpgo/portfolio-survival/internal/api/models"
	"github.com/rpgo/portfolio-survival/internal/calculation"
	"github.com/rpgo/portfolio-survival/internal/config"
	"github.com/rpgo/portfolio-survival/internal/domain"
	"github.com/rpgo/portfolio-survival/internal/output"
)

// DefaultEquityFile is the equity history used when a plan names none.
const DefaultEquityFile = "equity_monthly.csv"

// Request limits applied when the handler is created without overrides.
// A path-month is one simulated month of one path.
const (
	DefaultMaxPathMonths = 5_000_000
	DefaultMaxPlans      = 10
)

// SimulationHandler runs plans submitted over HTTP against the market data
// in DataDir.
type SimulationHandler struct {
	DataDir string
	Logger  calculation.Logger

	// MaxPathMonths caps simulations × horizon months for one plan.
	MaxPathMonths int
	// MaxPlans caps the number of plans in one comparison.
	MaxPlans int

	parser *config.InputParser
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(dataDir string, logger calculation.Logger) *SimulationHandler {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	return &SimulationHandler{
		DataDir:       dataDir,
		Logger:        logger,
		MaxPathMonths: DefaultMaxPathMonths,
		MaxPlans:      DefaultMaxPlans,
		parser:        config.NewInputParser(),
	}
}

// Example handles GET /api/v1/example
func (h *SimulationHandler) Example(c *gin.Context) {
	c.JSON(http.StatusOK, h.parser.CreateExampleConfiguration())
}

// Formats handles GET /api/v1/formats
func (h *SimulationHandler) Formats(c *gin.Context) {
	c.JSON(http.StatusOK, models.FormatsResponse{
		Formats: output.AvailableFormatterNames(),
		Aliases: output.AvailableFormatAliases(),
	})
}

// Simulate handles POST /api/v1/simulate. The report is returned as JSON
// unless ?format= names another formatter; ?query= returns a JSONPath
// selection from the JSON report instead.
func (h *SimulationHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
		return
	}

	format := c.Query("format")
	var formatter output.Formatter
	if format != "" {
		f, err := output.Lookup(format)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
			return
		}
		formatter = f
	}

	report, ok := h.run(c, req.Config)
	if !ok {
		return
	}

	if q := c.Query("query"); q != "" {
		v, err := output.Query(report, q)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
			return
		}
		c.JSON(http.StatusOK, models.QueryResponse{Query: q, Result: v})
		return
	}

	if formatter == nil {
		formatter = output.JSONFormatter{}
		format = "json"
	}
	data, err := formatter.Format(report)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, models.CodeSimulationError, err)
		return
	}
	c.Data(http.StatusOK, output.ContentType(format), data)
}

// Compare handles POST /api/v1/compare
func (h *SimulationHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
		return
	}

	if h.MaxPlans > 0 && len(req.Plans) > h.MaxPlans {
		abortWithError(c, http.StatusUnprocessableEntity, models.CodeLimitExceeded,
			fmt.Errorf("%d plans exceed the limit of %d per comparison", len(req.Plans), h.MaxPlans))
		return
	}

	resp := models.CompareResponse{}
	reports := make([]*calculation.PlanReport, 0, len(req.Plans))
	for i, cfg := range req.Plans {
		if cfg == nil {
			abortWithError(c, http.StatusBadRequest, models.CodeInvalidRequest, fmt.Errorf("plan #%d is empty", i+1))
			return
		}
		report, ok := h.run(c, cfg)
		if !ok {
			return
		}
		name := report.Name
		if name == "" {
			name = fmt.Sprintf("Plan %d", i+1)
		}
		reports = append(reports, report)
		resp.Plans = append(resp.Plans, models.PlanSummary{
			Name:                name,
			Variant:             report.Variant,
			SurvivalProbability: report.Summary.SurvivalProbability,
			EndingBalance:       report.Summary.EndingBalance,
		})
	}
	resp.Recommendation = output.RankPlans(reports)
	c.JSON(http.StatusOK, resp)
}

// run validates a configuration and simulates it, writing the error
// response itself when anything fails.
func (h *SimulationHandler) run(c *gin.Context, cfg *domain.Configuration) (*calculation.PlanReport, bool) {
	cfg.ApplyDefaults()
	h.pinMarketData(cfg)
	if err := h.parser.ValidateConfiguration(cfg); err != nil {
		abortWithError(c, http.StatusBadRequest, models.CodeInvalidConfig, err)
		return nil, false
	}
	if h.MaxPathMonths > 0 {
		in := calculation.DerivePlanInputs(cfg)
		if in.Simulations*in.HorizonMonths > h.MaxPathMonths {
			abortWithError(c, http.StatusUnprocessableEntity, models.CodeLimitExceeded,
				fmt.Errorf("%d simulations over %d months exceed the limit of %d path-months", in.Simulations, in.HorizonMonths, h.MaxPathMonths))
			return nil, false
		}
	}

	engine := calculation.NewCalculationEngine()
	engine.DataPath = h.DataDir
	engine.SetLogger(h.Logger)
	report, err := engine.RunPlan(c.Request.Context(), cfg)
	if err != nil {
		status, code := classify(err)
		abortWithError(c, status, code, err)
		return nil, false
	}
	return report, true
}

// pinMarketData keeps clients inside the server data directory: only the
// base name of a requested file is used. An empty bond file stays empty and
// selects the single-asset model.
func (h *SimulationHandler) pinMarketData(cfg *domain.Configuration) {
	pin := func(name, fallback string) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return fallback
		}
		return filepath.Base(filepath.Clean(name))
	}
	cfg.Simulation.EquityReturns = pin(cfg.Simulation.EquityReturns, DefaultEquityFile)
	cfg.Simulation.BondReturns = pin(cfg.Simulation.BondReturns, "")
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, calculation.ErrInputMissing):
		return http.StatusNotFound, models.CodeInputMissing
	case errors.Is(err, calculation.ErrInputInvalid):
		return http.StatusUnprocessableEntity, models.CodeInputInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, models.CodeSimulationError
	}
	return http.StatusInternalServerError, models.CodeSimulationError
}

func abortWithError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}
