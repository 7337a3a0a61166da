// Package api exposes the survival engine over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rpgo/portfolio-survival/internal/api/handlers"
	"github.com/rpgo/portfolio-survival/internal/api/middleware"
	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// Options configures the HTTP router.
type Options struct {
	// DataDir holds the market data files plans are simulated against.
	DataDir        string
	AllowedOrigins []string
	Logger         calculation.Logger
	// AccessLog enables gin's request logger.
	AccessLog bool
	// MaxPathMonths and MaxPlans override the handler's request limits
	// when positive.
	MaxPathMonths int
	MaxPlans      int
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	if opts.AccessLog {
		router.Use(gin.Logger())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(opts.AllowedOrigins))

	sim := handlers.NewSimulationHandler(opts.DataDir, opts.Logger)
	if opts.MaxPathMonths > 0 {
		sim.MaxPathMonths = opts.MaxPathMonths
	}
	if opts.MaxPlans > 0 {
		sim.MaxPlans = opts.MaxPlans
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/example", sim.Example)
		api.GET("/formats", sim.Formats)
		api.POST("/simulate", sim.Simulate)
		api.POST("/compare", sim.Compare)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
