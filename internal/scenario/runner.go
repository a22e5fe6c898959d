package scenario

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/livingdw67/ira-analysis/internal/analysis"
	"github.com/livingdw67/ira-analysis/internal/fleet"
	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/simulate"
)

// MaxPriorityLimit caps the high-priority list.
const MaxPriorityLimit = 50

// ErrUnknownCounty is returned for a county the population does not contain.
var ErrUnknownCounty = errors.New("unknown county")

// Window clips the archetype series. Zero ends are open.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Settings are the defaults applied to a Request's zero fields. A zero
// Window takes the default window unless WholeSeries is set.
type Settings struct {
	COP             float64
	UnitScale       float64
	AdoptionPercent float64
	PriorityLimit   int
	Window          Window
	WholeSeries     bool
}

// DefaultSettings reproduce the reference dashboard: COP 3, kWh to MWh,
// 20% adoption, 50 rows, the January 2018 cold snap.
func DefaultSettings() Settings {
	return Settings{
		COP:             simulate.DefaultCOP,
		UnitScale:       fleet.DefaultUnitScale,
		AdoptionPercent: 20,
		PriorityLimit:   MaxPriorityLimit,
		Window: Window{
			Start: time.Date(2018, 1, 16, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2018, 1, 19, 0, 0, 0, 0, time.UTC),
		},
	}
}

// Request is one scenario. County "" means the whole population.
// AdoptionPercent is always explicit; the other zero values take Settings.
type Request struct {
	County          string
	AdoptionPercent float64
	COP             float64
	UnitScale       float64
	PriorityLimit   int
	// Window nil uses the configured window; &Window{} uses the whole series.
	Window *Window
}

// PriorityRow is one entry of the high-priority list. FloorArea is nil when
// the source had no value.
type PriorityRow struct {
	ID          string   `json:"bldg_id"`
	City        string   `json:"city,omitempty"`
	FloorArea   *float64 `json:"sqft,omitempty"`
	Vintage     string   `json:"vintage,omitempty"`
	Income      string   `json:"income,omitempty"`
	HeatingFuel string   `json:"heating_fuel,omitempty"`
}

// Result is a completed scenario.
type Result struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	County          string  `json:"county"`
	AdoptionPercent float64 `json:"adoption_percent"`
	COP             float64 `json:"cop"`
	Window          Window  `json:"window"`

	Buildings   int `json:"buildings"`
	Addressable int `json:"addressable"`

	Scenario *fleet.Scenario    `json:"scenario"`
	Before   analysis.LoadStats `json:"before"`
	After    analysis.LoadStats `json:"after"`
	// WorstDay is the calendar day whose own peak grows the most.
	WorstDay *WorstDay          `json:"worst_day,omitempty"`

	PriorityMode   fleet.PriorityMode `json:"priority_mode"`
	PriorityReason string             `json:"priority_reason,omitempty"`
	PriorityTotal  int                `json:"priority_total"`
	Priority       []PriorityRow      `json:"priority"`

	Empty *model.EmptyResultError `json:"empty,omitempty"`
}

// WorstDay is the projected daily peak with the largest growth over the
// same day's baseline peak.
type WorstDay struct {
	Day    time.Time `json:"day"`
	At     time.Time `json:"at"`
	Peak   float64   `json:"peak"`
	Growth float64   `json:"growth"`
}

// Runner answers scenario requests against one population and one archetype.
// Both are read-only after construction, so a Runner is safe for concurrent use.
type Runner struct {
	population model.Population
	archetype  model.IntervalSeries
	settings   Settings
	counties   map[string]bool
}

func NewRunner(pop model.Population, archetype model.IntervalSeries, s Settings) (*Runner, error) {
	d := DefaultSettings()
	if s.COP == 0 {
		s.COP = d.COP
	}
	if s.UnitScale == 0 {
		s.UnitScale = d.UnitScale
	}
	if s.PriorityLimit == 0 {
		s.PriorityLimit = d.PriorityLimit
	}
	switch {
	case s.WholeSeries:
		s.Window = Window{}
	case s.Window.Start.IsZero() && s.Window.End.IsZero():
		s.Window = d.Window
	}
	if s.AdoptionPercent < 0 || s.AdoptionPercent > 100 {
		return nil, model.Invalid("adoption_percent", s.AdoptionPercent, "must be in [0, 100]")
	}
	if _, err := simulate.Simulate(archetype, s.COP); err != nil {
		return nil, fmt.Errorf("archetype %s: %w", archetype.BuildingID, err)
	}
	r := &Runner{population: pop, archetype: archetype, settings: s, counties: map[string]bool{}}
	for _, c := range fleet.Counties(pop) {
		r.counties[c] = true
	}
	log.Printf("[Scenario] Runner ready: %d buildings, %d counties, archetype %s (%d intervals)",
		pop.Len(), len(r.counties), archetype.BuildingID, archetype.Len())
	return r, nil
}

func (r *Runner) Settings() Settings { return r.settings }

func (r *Runner) normalize(req Request) (Request, Window, error) {
	if req.COP == 0 {
		req.COP = r.settings.COP
	}
	if req.UnitScale == 0 {
		req.UnitScale = r.settings.UnitScale
	}
	if req.PriorityLimit <= 0 || req.PriorityLimit > MaxPriorityLimit {
		req.PriorityLimit = r.settings.PriorityLimit
	}
	if math.IsNaN(req.AdoptionPercent) || req.AdoptionPercent < 0 || req.AdoptionPercent > 100 {
		return req, Window{}, model.Invalid("adoption_percent", req.AdoptionPercent, "must be in [0, 100]")
	}
	w := r.settings.Window
	if req.Window != nil {
		w = *req.Window
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return req, w, model.Invalid("window", nil, "end is before start")
	}
	if req.County != "" && !r.counties[req.County] {
		return req, w, fmt.Errorf("%w: %s", ErrUnknownCounty, req.County)
	}
	return req, w, nil
}

// simulateWindow clips the archetype and substitutes heat-pump load.
func (r *Runner) simulateWindow(w Window, cop float64) (*model.SimulatedSeries, error) {
	series := r.archetype.Window(w.Start, w.End)
	if series.Len() == 0 {
		return nil, model.Invalid("window", nil, "contains no archetype intervals")
	}
	return simulate.Simulate(series, cop)
}

// Run executes one scenario. An empty gas-heated subset is not an error: the
// result carries zero curves and Empty explains why.
func (r *Runner) Run(req Request) (*Result, error) {
	req, w, err := r.normalize(req)
	if err != nil {
		return nil, err
	}
	sim, err := r.simulateWindow(w, req.COP)
	if err != nil {
		return nil, err
	}

	subset := r.population
	if req.County != "" {
		subset = fleet.InCounty(r.population, req.County)
	}
	gas := fleet.GasHeated(subset)

	sc, err := fleet.Aggregate(sim, fleet.Params{
		SubsetCount:      gas.Len(),
		AdoptionFraction: req.AdoptionPercent / 100,
		UnitScale:        req.UnitScale,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		County:          req.County,
		AdoptionPercent: req.AdoptionPercent,
		COP:             req.COP,
		Window:          w,
		Buildings:       subset.Len(),
		Addressable:     gas.Len(),
		Scenario:        sc,
		Before:          analysis.ComputeLoadStats(sc.Timestamps, sc.Baseline),
		After:           analysis.ComputeLoadStats(sc.Timestamps, sc.Projected),
	}
	if day, growth, ok := analysis.PeakDayGrowth(res.Before.DailyPeaks, res.After.DailyPeaks); ok {
		res.WorstDay = &WorstDay{Day: day.Day, At: day.At, Peak: day.Value, Growth: growth}
	}

	if gas.Len() == 0 {
		res.Empty = &model.EmptyResultError{
			Filter:     describe(req.County) + " with gas or propane heat",
			Suggestion: "choose another county",
		}
		res.Priority = []PriorityRow{}
		return res, nil
	}

	set := fleet.HighPriority(gas)
	res.PriorityMode = set.Mode
	res.PriorityReason = set.Reason
	res.PriorityTotal = len(set.Buildings)
	for _, b := range set.Top(req.PriorityLimit) {
		res.Priority = append(res.Priority, priorityRow(b))
	}
	return res, nil
}

func describe(county string) string {
	if county == "" {
		return "population"
	}
	return "county " + county
}

func priorityRow(b model.Building) PriorityRow {
	row := PriorityRow{
		ID:          b.ID,
		City:        b.City,
		Vintage:     b.Vintage,
		Income:      b.Income,
		HeatingFuel: b.HeatingFuel,
	}
	if b.HasFloorArea() {
		v := b.FloorArea
		row.FloorArea = &v
	}
	return row
}
