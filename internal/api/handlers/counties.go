package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/livingdw67/ira-analysis/internal/api/models"
	"github.com/livingdw67/ira-analysis/internal/scenario"
)

// CountyHandler handles county listing and ranking
type CountyHandler struct {
	runner *scenario.Runner
	state  string
}

// NewCountyHandler creates a new county handler
func NewCountyHandler(r *scenario.Runner, state string) *CountyHandler {
	return &CountyHandler{runner: r, state: state}
}

// ListCounties handles GET /api/v1/counties
func (h *CountyHandler) ListCounties(c *gin.Context) {
	counties := h.runner.Counties()
	c.JSON(http.StatusOK, models.CountiesResponse{
		State:    h.state,
		Total:    len(counties),
		Counties: counties,
	})
}

// RankCounties handles GET /api/v1/counties/rank
func (h *CountyHandler) RankCounties(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := parseWindow(req.WindowParams)
	if err != nil {
		writeError(c, err)
		return
	}
	adoption := h.runner.Settings().AdoptionPercent
	if req.AdoptionPercent != nil {
		adoption = *req.AdoptionPercent
	}

	ranked, err := h.runner.RankCounties(scenario.Request{AdoptionPercent: adoption, COP: req.COP, Window: w})
	if err != nil {
		writeError(c, err)
		return
	}

	// Apply limit
	if req.Limit > 0 && req.Limit < len(ranked) {
		ranked = ranked[:req.Limit]
	}

	rankings := make([]models.Ranking, len(ranked))
	for i, r := range ranked {
		rankings[i] = models.Ranking{Rank: i + 1, CountyImpact: r}
	}
	c.JSON(http.StatusOK, models.RankResponse{AdoptionPercent: adoption, Rankings: rankings})
}
