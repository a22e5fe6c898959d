package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/livingdw67/ira-analysis/internal/api/middleware"
	"github.com/livingdw67/ira-analysis/internal/api/models"
	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/scenario"
	"github.com/livingdw67/ira-analysis/internal/store"
)

const defaultSweepStep = 10

// ScenarioHandler handles scenario-related requests
type ScenarioHandler struct {
	runner  *scenario.Runner
	store   store.Store
	metrics *middleware.Metrics
}

// NewScenarioHandler creates a new scenario handler. metrics may be nil.
func NewScenarioHandler(r *scenario.Runner, s store.Store, m *middleware.Metrics) *ScenarioHandler {
	return &ScenarioHandler{runner: r, store: s, metrics: m}
}

func toRequest(req models.ScenarioParams) (scenario.Request, error) {
	w, err := parseWindow(req.Window)
	if err != nil {
		return scenario.Request{}, err
	}
	out := scenario.Request{
		County:        req.County,
		COP:           req.COP,
		UnitScale:     req.UnitScale,
		PriorityLimit: req.PriorityLimit,
		Window:        w,
	}
	if req.AdoptionPercent != nil {
		out.AdoptionPercent = *req.AdoptionPercent
	}
	return out, nil
}

func outcome(res *scenario.Result) string {
	if res.Empty != nil {
		return "empty"
	}
	return "ok"
}

func includeSeries(c *gin.Context) bool {
	return c.DefaultQuery("series", "true") != "false"
}

// RunScenario handles POST /api/v1/scenario
func (h *ScenarioHandler) RunScenario(c *gin.Context) {
	var req models.ScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sreq, err := toRequest(models.ScenarioParams(req))
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := h.runner.Run(sreq)
	if err != nil {
		h.metrics.ScenarioRun("error")
		writeError(c, err)
		return
	}
	h.metrics.ScenarioRun(outcome(res))

	// A store failure only costs the client a later GET.
	if err := h.store.Put(c.Request.Context(), res); err != nil {
		log.Printf("[ScenarioHandler] failed to store scenario %s: %v", res.ID, err)
	}
	log.Printf("[ScenarioHandler] scenario %s: county=%q adoption=%.0f%% converts=%d peak %.3f -> %.3f",
		res.ID, res.County, res.AdoptionPercent, res.Scenario.ConvertCount, res.Scenario.PeakBefore, res.Scenario.PeakAfter)
	c.JSON(http.StatusOK, models.NewScenarioResponse(res, includeSeries(c)))
}

// GetScenario handles GET /api/v1/scenario/:id
func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	res, err := h.store.Get(c.Request.Context(), c.Param("id"))
	h.metrics.StoreLookup(err == nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewScenarioResponse(res, includeSeries(c)))
}

// mergeRequest overlays the non-zero fields of v onto base.
func mergeRequest(base models.ScenarioParams, v models.ScenarioVariation) models.ScenarioParams {
	out := base
	if v.County != "" {
		out.County = v.County
	}
	if v.AdoptionPercent != nil {
		out.AdoptionPercent = v.AdoptionPercent
	}
	if v.COP != 0 {
		out.COP = v.COP
	}
	if v.UnitScale != 0 {
		out.UnitScale = v.UnitScale
	}
	return out
}

// CompareScenarios handles POST /api/v1/scenario/compare. The adoption
// percent may come from the base or from each variation.
func (h *ScenarioHandler) CompareScenarios(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	vars := make([]scenario.Variation, 0, len(req.Variations))
	for i, v := range req.Variations {
		merged := mergeRequest(req.Base, v)
		if merged.AdoptionPercent == nil {
			writeError(c, model.Invalid(fmt.Sprintf("variations[%d].adoption_percent", i), nil, "is required when base.adoption_percent is unset"))
			return
		}
		sreq, err := toRequest(merged)
		if err != nil {
			writeError(c, err)
			return
		}
		vars = append(vars, scenario.Variation{Name: v.Name, Request: sreq})
	}
	results, err := h.runner.Compare(vars)
	if err != nil {
		h.metrics.ScenarioRun("error")
		writeError(c, err)
		return
	}

	resp := models.CompareResponse{Comparison: make([]models.ComparisonResult, 0, len(results))}
	series := includeSeries(c)
	for _, r := range results {
		h.metrics.ScenarioRun(outcome(r.Result))
		if err := h.store.Put(c.Request.Context(), r.Result); err != nil {
			log.Printf("[ScenarioHandler] failed to store scenario %s: %v", r.Result.ID, err)
		}
		resp.Comparison = append(resp.Comparison, models.ComparisonResult{
			Name:     r.Name,
			Scenario: models.NewScenarioResponse(r.Result, series),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// SweepAdoption handles GET /api/v1/scenario/sweep
func (h *ScenarioHandler) SweepAdoption(c *gin.Context) {
	var req models.SweepRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Step == 0 {
		req.Step = defaultSweepStep
	}
	w, err := parseWindow(req.WindowParams)
	if err != nil {
		writeError(c, err)
		return
	}
	points, err := h.runner.Sweep(scenario.Request{
		County:    req.County,
		COP:       req.COP,
		UnitScale: req.UnitScale,
		Window:    w,
	}, req.Step)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SweepResponse{County: req.County, Step: req.Step, Points: points})
}
