package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/livingdw67/ira-analysis/internal/api/models"
	"github.com/livingdw67/ira-analysis/internal/data"
	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/scenario"
	"github.com/livingdw67/ira-analysis/internal/store"
)

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// writeError maps engine errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var inv *model.InvalidInputError
	switch {
	case errors.As(err, &inv):
		details := map[string]interface{}{
			"field":      inv.Field,
			"constraint": inv.Constraint,
		}
		if inv.Value != nil {
			details["value"] = fmt.Sprint(inv.Value)
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_INPUT",
				Message: err.Error(),
				Details: details,
			},
		})
	case errors.Is(err, scenario.ErrUnknownCounty):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "UNKNOWN_COUNTY",
				Message: err.Error(),
			},
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: err.Error(),
			},
		})
	default:
		log.Printf("[API] internal error on %s: %v", c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
			},
		})
	}
}

// parseWindow returns nil when the request leaves the window to the server.
func parseWindow(p models.WindowParams) (*scenario.Window, error) {
	if p.Full {
		return &scenario.Window{}, nil
	}
	if p.Start == "" && p.End == "" {
		return nil, nil
	}
	w := &scenario.Window{}
	var err error
	if p.Start != "" {
		if w.Start, err = data.ParseTimestamp(p.Start); err != nil {
			return nil, model.Invalid("window_start", p.Start, "must be YYYY-MM-DD or RFC 3339")
		}
	}
	if p.End != "" {
		if w.End, err = data.ParseTimestamp(p.End); err != nil {
			return nil, model.Invalid("window_end", p.End, "must be YYYY-MM-DD or RFC 3339")
		}
	}
	return w, nil
}
