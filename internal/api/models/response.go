package models

import (
	"time"

	"github.com/livingdw67/ira-analysis/internal/analysis"
	"github.com/livingdw67/ira-analysis/internal/scenario"
)

// ScenarioResponse represents one completed scenario
type ScenarioResponse struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Status    string          `json:"status"` // "ok" or "empty"
	Empty     bool            `json:"empty"`
	Message   string          `json:"message,omitempty"`
	Inputs    ScenarioInputs  `json:"inputs"`
	Summary   ScenarioSummary `json:"summary"`
	Series    []SeriesPoint   `json:"series,omitempty"`
	Priority  PriorityList    `json:"priority"`
}

// ScenarioInputs echoes the normalized request
type ScenarioInputs struct {
	County          string          `json:"county"`
	AdoptionPercent float64         `json:"adoption_percent"`
	COP             float64         `json:"cop"`
	UnitScale       float64         `json:"unit_scale"`
	Window          scenario.Window `json:"window"`
}

// ScenarioSummary contains the headline peak metrics
type ScenarioSummary struct {
	Buildings            int                `json:"buildings"`
	Addressable          int                `json:"addressable"`
	Converts             int                `json:"converts"`
	PeakBefore           float64            `json:"peak_before"`
	PeakAfter            float64            `json:"peak_after"`
	PeakGrowthAbsolute   float64            `json:"peak_growth_absolute"`
	PeakGrowthPercentage float64            `json:"peak_growth_percentage"`
	PeakBeforeAt         time.Time          `json:"peak_before_at"`
	PeakAfterAt          time.Time          `json:"peak_after_at"`
	Before               analysis.LoadStats `json:"before"`
	After                analysis.LoadStats `json:"after"`
	WorstDay             *scenario.WorstDay `json:"worst_day,omitempty"`
}

// SeriesPoint is one interval of the before/after curves
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Baseline  float64   `json:"baseline"`
	Projected float64   `json:"projected"`
}

// PriorityList is the high-priority building table
type PriorityList struct {
	Mode   string                 `json:"mode"`
	Reason string                 `json:"reason,omitempty"`
	Total  int                    `json:"total"`
	Rows   []scenario.PriorityRow `json:"rows"`
}

// NewScenarioResponse flattens a runner result for the wire.
func NewScenarioResponse(r *scenario.Result, includeSeries bool) ScenarioResponse {
	resp := ScenarioResponse{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Status:    "ok",
		Inputs: ScenarioInputs{
			County:          r.County,
			AdoptionPercent: r.AdoptionPercent,
			COP:             r.COP,
			Window:          r.Window,
		},
		Summary: ScenarioSummary{
			Buildings:   r.Buildings,
			Addressable: r.Addressable,
			Before:      r.Before,
			After:       r.After,
			WorstDay:    r.WorstDay,
		},
		Priority: PriorityList{
			Mode:   string(r.PriorityMode),
			Reason: r.PriorityReason,
			Total:  r.PriorityTotal,
			Rows:   r.Priority,
		},
	}
	if resp.Priority.Rows == nil {
		resp.Priority.Rows = []scenario.PriorityRow{}
	}
	if r.Empty != nil {
		resp.Status = "empty"
		resp.Empty = true
		resp.Message = r.Empty.Error()
	}
	if sc := r.Scenario; sc != nil {
		resp.Inputs.UnitScale = sc.UnitScale
		resp.Summary.Converts = sc.ConvertCount
		resp.Summary.PeakBefore = sc.PeakBefore
		resp.Summary.PeakAfter = sc.PeakAfter
		resp.Summary.PeakGrowthAbsolute = sc.PeakGrowthAbsolute
		resp.Summary.PeakGrowthPercentage = sc.PeakGrowthPercentage
		resp.Summary.PeakBeforeAt = sc.PeakBeforeAt
		resp.Summary.PeakAfterAt = sc.PeakAfterAt
		if includeSeries {
			resp.Series = make([]SeriesPoint, len(sc.Timestamps))
			for i, t := range sc.Timestamps {
				resp.Series[i] = SeriesPoint{Timestamp: t, Baseline: sc.Baseline[i], Projected: sc.Projected[i]}
			}
		}
	}
	return resp
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name     string           `json:"name"`
	Scenario ScenarioResponse `json:"scenario"`
}

// SweepResponse lists peak metrics by adoption rate
type SweepResponse struct {
	County string                `json:"county"`
	Step   float64               `json:"step"`
	Points []scenario.SweepPoint `json:"points"`
}

// CountiesResponse lists the counties of the loaded population
type CountiesResponse struct {
	State    string                   `json:"state"`
	Total    int                      `json:"total"`
	Counties []scenario.CountySummary `json:"counties"`
}

// RankResponse represents counties ordered by projected peak growth
type RankResponse struct {
	AdoptionPercent float64   `json:"adoption_percent"`
	Rankings        []Ranking `json:"rankings"`
}

// Ranking represents one ranked county
type Ranking struct {
	Rank int `json:"rank"`
	analysis.CountyImpact
}

// ArchetypeResponse describes the archetype inside a window
type ArchetypeResponse struct {
	BuildingID string             `json:"bldg_id"`
	COP        float64            `json:"cop"`
	CadenceMin float64            `json:"cadence_minutes"`
	Intervals  int                `json:"intervals"`
	Gaps       int                `json:"gaps"`
	Window     scenario.Window    `json:"window"`
	Before     analysis.LoadStats `json:"before"`
	After      analysis.LoadStats `json:"after"`
	AddedLoad  analysis.LoadStats `json:"added_load"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
