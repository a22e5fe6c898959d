package fleet

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/livingdw67/ira-analysis/internal/model"
)

// DefaultUnitScale converts the archetype's kWh per interval into MWh.
const DefaultUnitScale = 1000.0

// Params are the scalar inputs of one scenario.
type Params struct {
	// SubsetCount is the number of addressable buildings in the filtered population.
	SubsetCount int
	// AdoptionFraction is the share of SubsetCount that converts, in [0, 1].
	AdoptionFraction float64
	// UnitScale divides archetype units into aggregate units (1000 for kWh -> MWh).
	UnitScale float64
}

func (p Params) Validate() error {
	if p.SubsetCount < 0 {
		return model.Invalid("subset_count", p.SubsetCount, "must be >= 0")
	}
	if math.IsNaN(p.AdoptionFraction) || p.AdoptionFraction < 0 || p.AdoptionFraction > 1 {
		return model.Invalid("adoption_fraction", p.AdoptionFraction, "must be in [0, 1]")
	}
	if math.IsNaN(p.UnitScale) || math.IsInf(p.UnitScale, 0) || p.UnitScale <= 0 {
		return model.Invalid("unit_scale", p.UnitScale, "must be a finite number > 0")
	}
	return nil
}

// ConvertCount is floor(SubsetCount * AdoptionFraction). A tiny tolerance
// keeps products like 100*0.29 from flooring to 28.
func (p Params) ConvertCount() int {
	return int(math.Floor(float64(p.SubsetCount)*p.AdoptionFraction + 1e-9))
}

// Scenario is the aggregate before/after picture for one set of Params.
//
// The archetype's draw is taken as the average draw of every addressable
// building. There is no normalization for floor area or vintage mix.
type Scenario struct {
	Params
	ConvertCount int

	Timestamps []time.Time
	Baseline   []float64
	Projected  []float64

	PeakBefore           float64
	PeakAfter            float64
	PeakGrowthAbsolute   float64
	PeakGrowthPercentage float64
	PeakBeforeAt         time.Time
	PeakAfterAt          time.Time
}

// Aggregate scales one building's simulated series to a fleet:
//
//	baseline[t]  = electricity[t] * subset_count / unit_scale
//	projected[t] = baseline[t] + added_load[t] * convert_count / unit_scale
//
// peak_growth_percentage is 0 when peak_before is 0.
func Aggregate(sim *model.SimulatedSeries, p Params) (*Scenario, error) {
	if sim == nil {
		return nil, model.Invalid("simulated", nil, "is nil")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := len(sim.Timestamps)
	if n == 0 {
		return nil, model.Invalid("simulated", nil, "has no intervals")
	}
	if len(sim.Electricity) != n || len(sim.AddedLoad) != n {
		return nil, model.Invalid("simulated", nil,
			fmt.Sprintf("channels misaligned: %d timestamps, %d electricity, %d added_load", n, len(sim.Electricity), len(sim.AddedLoad)))
	}

	converts := p.ConvertCount()
	subset := float64(p.SubsetCount)
	conv := float64(converts)

	sc := &Scenario{
		Params:       p,
		ConvertCount: converts,
		Timestamps:   append([]time.Time(nil), sim.Timestamps...),
		Baseline:     make([]float64, n),
		Projected:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		base := sim.Electricity[i] * subset / p.UnitScale
		sc.Baseline[i] = base
		sc.Projected[i] = base + sim.AddedLoad[i]*conv/p.UnitScale
	}

	bi := floats.MaxIdx(sc.Baseline)
	ai := floats.MaxIdx(sc.Projected)
	sc.PeakBefore, sc.PeakBeforeAt = sc.Baseline[bi], sc.Timestamps[bi]
	sc.PeakAfter, sc.PeakAfterAt = sc.Projected[ai], sc.Timestamps[ai]
	sc.PeakGrowthAbsolute = sc.PeakAfter - sc.PeakBefore
	if sc.PeakBefore > 0 {
		sc.PeakGrowthPercentage = 100 * sc.PeakGrowthAbsolute / sc.PeakBefore
	}
	return sc, nil
}
