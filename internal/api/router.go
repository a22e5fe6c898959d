package api

import (
	"github.com/gin-gonic/gin"

	"github.com/livingdw67/ira-analysis/internal/api/handlers"
	"github.com/livingdw67/ira-analysis/internal/api/middleware"
	"github.com/livingdw67/ira-analysis/internal/scenario"
	"github.com/livingdw67/ira-analysis/internal/store"
)

// Options wires the router. Metrics may be nil to skip instrumentation.
type Options struct {
	Runner      *scenario.Runner
	Store       store.Store
	Metrics     *middleware.Metrics
	State       string
	CORSOrigins []string
}

func NewRouter(opt Options) *gin.Engine {
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS(opt.CORSOrigins...))
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	if opt.Metrics != nil {
		router.Use(opt.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(opt.Metrics.Handler()))
	}
	router.NoRoute(middleware.NotFound())

	scenarioHandler := handlers.NewScenarioHandler(opt.Runner, opt.Store, opt.Metrics)
	countyHandler := handlers.NewCountyHandler(opt.Runner, opt.State)
	archetypeHandler := handlers.NewArchetypeHandler(opt.Runner)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/scenario", scenarioHandler.RunScenario)
		v1.POST("/scenario/compare", scenarioHandler.CompareScenarios)
		v1.GET("/scenario/sweep", scenarioHandler.SweepAdoption)
		v1.GET("/scenario/:id", scenarioHandler.GetScenario)

		v1.GET("/counties", countyHandler.ListCounties)
		v1.GET("/counties/rank", countyHandler.RankCounties)

		v1.GET("/archetype", archetypeHandler.GetArchetype)
	}
	return router
}
