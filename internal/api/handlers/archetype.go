package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/livingdw67/ira-analysis/internal/api/models"
	"github.com/livingdw67/ira-analysis/internal/scenario"
)

// ArchetypeHandler describes the loaded archetype
type ArchetypeHandler struct {
	runner *scenario.Runner
}

func NewArchetypeHandler(r *scenario.Runner) *ArchetypeHandler {
	return &ArchetypeHandler{runner: r}
}

// GetArchetype handles GET /api/v1/archetype
func (h *ArchetypeHandler) GetArchetype(c *gin.Context) {
	var req models.ArchetypeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := parseWindow(req.WindowParams)
	if err != nil {
		writeError(c, err)
		return
	}
	info, err := h.runner.Archetype(req.COP, w)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ArchetypeResponse{
		BuildingID: info.BuildingID,
		COP:        info.COP,
		CadenceMin: info.Cadence.Minutes(),
		Intervals:  info.Intervals,
		Gaps:       info.Gaps,
		Window:     info.Window,
		Before:     info.Before,
		After:      info.After,
		AddedLoad:  info.AddedLoad,
	})
}
