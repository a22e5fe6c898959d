package models

// WindowParams clips the archetype series. Dates are YYYY-MM-DD or RFC 3339.
// Both empty with Full unset means the configured window.
type WindowParams struct {
	Start string `json:"start,omitempty" form:"window_start"`
	End   string `json:"end,omitempty" form:"window_end"`
	// Full uses the whole archetype series.
	Full bool `json:"full,omitempty" form:"full_series"`
}

// ScenarioRequest represents the request body for running one scenario
type ScenarioRequest struct {
	County          string       `json:"county"` // "" = whole state
	AdoptionPercent *float64     `json:"adoption_percent" binding:"required"`
	COP             float64      `json:"cop,omitempty"`
	UnitScale       float64      `json:"unit_scale,omitempty"`
	PriorityLimit   int          `json:"priority_limit,omitempty"` // default 50, max 50
	Window          WindowParams `json:"window,omitempty"`
}

// ScenarioParams is a ScenarioRequest without required fields, used as the
// base of a comparison. Each variation must end up with an adoption percent.
type ScenarioParams struct {
	County          string       `json:"county"`
	AdoptionPercent *float64     `json:"adoption_percent,omitempty"`
	COP             float64      `json:"cop,omitempty"`
	UnitScale       float64      `json:"unit_scale,omitempty"`
	PriorityLimit   int          `json:"priority_limit,omitempty"`
	Window          WindowParams `json:"window,omitempty"`
}

// CompareRequest runs several variations of a base scenario
type CompareRequest struct {
	Base       ScenarioParams      `json:"base"`
	Variations []ScenarioVariation `json:"variations" binding:"required,min=1"`
}

// ScenarioVariation overrides non-zero fields of the base request
type ScenarioVariation struct {
	Name            string   `json:"name"`
	County          string   `json:"county,omitempty"`
	AdoptionPercent *float64 `json:"adoption_percent,omitempty"`
	COP             float64  `json:"cop,omitempty"`
	UnitScale       float64  `json:"unit_scale,omitempty"`
}

// SweepRequest is bound from the query string of GET /scenario/sweep
type SweepRequest struct {
	County    string  `form:"county"`
	Step      float64 `form:"step"` // default 10
	COP       float64 `form:"cop"`
	UnitScale float64 `form:"unit_scale"`
	WindowParams
}

// RankRequest is bound from the query string of GET /counties/rank
type RankRequest struct {
	AdoptionPercent *float64 `form:"adoption_percent"` // default: configured
	COP             float64  `form:"cop"`
	Limit           int      `form:"limit"` // 0 = all
	WindowParams
}

// ArchetypeRequest is bound from the query string of GET /archetype
type ArchetypeRequest struct {
	COP float64 `form:"cop"`
	WindowParams
}
