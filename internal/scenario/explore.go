package scenario

import (
	"fmt"
	"time"

	"github.com/livingdw67/ira-analysis/internal/analysis"
	"github.com/livingdw67/ira-analysis/internal/fleet"
	"github.com/livingdw67/ira-analysis/internal/model"
)

// CountySummary is one entry of the county picker.
type CountySummary struct {
	Name      string `json:"name"`
	Buildings int    `json:"buildings"`
	GasHeated int    `json:"gas_heated"`
}

func (r *Runner) Counties() []CountySummary {
	names := fleet.Counties(r.population)
	idx := make(map[string]int, len(names))
	out := make([]CountySummary, len(names))
	for i, n := range names {
		idx[n] = i
		out[i].Name = n
	}
	for _, b := range r.population.Buildings {
		i, ok := idx[b.County]
		if !ok {
			continue
		}
		out[i].Buildings++
		if fleet.IsGasHeated(b) {
			out[i].GasHeated++
		}
	}
	return out
}

// ArchetypeInfo describes the archetype series inside a window.
type ArchetypeInfo struct {
	BuildingID string             `json:"bldg_id"`
	COP        float64            `json:"cop"`
	Cadence    time.Duration      `json:"cadence"`
	Intervals  int                `json:"intervals"`
	Gaps       int                `json:"gaps"`
	Window     Window             `json:"window"`
	Before     analysis.LoadStats `json:"before"`
	After      analysis.LoadStats `json:"after"`
	AddedLoad  analysis.LoadStats `json:"added_load"`
}

func (r *Runner) Archetype(cop float64, window *Window) (*ArchetypeInfo, error) {
	if cop == 0 {
		cop = r.settings.COP
	}
	w := r.settings.Window
	if window != nil {
		w = *window
	}
	sim, err := r.simulateWindow(w, cop)
	if err != nil {
		return nil, err
	}
	clipped := r.archetype.Window(w.Start, w.End)
	return &ArchetypeInfo{
		BuildingID: r.archetype.BuildingID,
		COP:        cop,
		Cadence:    clipped.Cadence(),
		Intervals:  clipped.Len(),
		Gaps:       len(clipped.Gaps()),
		Window:     w,
		Before:     analysis.ComputeLoadStats(sim.Timestamps, sim.Electricity),
		After:      analysis.ComputeLoadStats(sim.Timestamps, sim.TotalLoadAfter),
		AddedLoad:  analysis.ComputeLoadStats(sim.Timestamps, sim.AddedLoad),
	}, nil
}

// SweepPoint is the peak picture at one adoption rate.
type SweepPoint struct {
	AdoptionPercent      float64 `json:"adoption_percent"`
	Converts             int     `json:"converts"`
	PeakAfter            float64 `json:"peak_after"`
	PeakGrowthAbsolute   float64 `json:"peak_growth_absolute"`
	PeakGrowthPercentage float64 `json:"peak_growth_percentage"`
}

// Sweep runs req at adoption 0, step, 2*step, ... up to and including 100.
// req.AdoptionPercent is ignored.
func (r *Runner) Sweep(req Request, step float64) ([]SweepPoint, error) {
	if !(step > 0 && step <= 100) {
		return nil, model.Invalid("step", step, "must be in (0, 100]")
	}
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
	gas := fleet.GasHeated(subset).Len()

	var out []SweepPoint
	for i := 0; ; i++ {
		pct := float64(i) * step
		if pct > 100 {
			pct = 100
		}
		sc, err := fleet.Aggregate(sim, fleet.Params{SubsetCount: gas, AdoptionFraction: pct / 100, UnitScale: req.UnitScale})
		if err != nil {
			return nil, err
		}
		out = append(out, SweepPoint{
			AdoptionPercent:      pct,
			Converts:             sc.ConvertCount,
			PeakAfter:            sc.PeakAfter,
			PeakGrowthAbsolute:   sc.PeakGrowthAbsolute,
			PeakGrowthPercentage: sc.PeakGrowthPercentage,
		})
		if pct >= 100 {
			break
		}
	}
	return out, nil
}

// Variation is one named request of a comparison.
type Variation struct {
	Name    string
	Request Request
}

// Comparison pairs a variation name with its result.
type Comparison struct {
	Name   string  `json:"name"`
	Result *Result `json:"result"`
}

// Compare runs every variation. The first failure aborts the comparison.
func (r *Runner) Compare(vars []Variation) ([]Comparison, error) {
	if len(vars) == 0 {
		return nil, model.Invalid("variations", nil, "must not be empty")
	}
	out := make([]Comparison, 0, len(vars))
	for i, v := range vars {
		name := v.Name
		if name == "" {
			name = fmt.Sprintf("variation_%d", i+1)
		}
		res, err := r.Run(v.Request)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, Comparison{Name: name, Result: res})
	}
	return out, nil
}

// RankCounties runs req for every county and ranks them by peak growth.
// req.County is ignored.
func (r *Runner) RankCounties(req Request) ([]analysis.CountyImpact, error) {
	var impacts []analysis.CountyImpact
	for _, c := range fleet.Counties(r.population) {
		req.County = c
		res, err := r.Run(req)
		if err != nil {
			return nil, fmt.Errorf("county %s: %w", c, err)
		}
		impacts = append(impacts, analysis.CountyImpact{
			County:               c,
			Addressable:          res.Addressable,
			Converts:             res.Scenario.ConvertCount,
			PeakBefore:           res.Scenario.PeakBefore,
			PeakAfter:            res.Scenario.PeakAfter,
			PeakGrowthAbsolute:   res.Scenario.PeakGrowthAbsolute,
			PeakGrowthPercentage: res.Scenario.PeakGrowthPercentage,
		})
	}
	return analysis.RankByPeakGrowth(impacts), nil
}
