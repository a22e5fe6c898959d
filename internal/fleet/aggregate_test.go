package fleet

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/simulate"
)

var t0 = time.Date(2018, 1, 17, 0, 0, 0, 0, time.UTC)

func simulated(t *testing.T, elec, gas []float64) *model.SimulatedSeries {
	t.Helper()
	ts := make([]time.Time, len(elec))
	for i := range ts {
		ts[i] = t0.Add(time.Duration(i) * 15 * time.Minute)
	}
	sim, err := simulate.Simulate(model.NewIntervalSeries("1", ts, elec, gas), simulate.DefaultCOP)
	require.NoError(t, err)
	return sim
}

func TestAggregateScenarioExample(t *testing.T) {
	sim := simulated(t, []float64{1.0, 2.0}, []float64{3.0, 0.0})

	sc, err := Aggregate(sim, Params{SubsetCount: 100, AdoptionFraction: 0.5, UnitScale: 1000})
	require.NoError(t, err)

	assert.Equal(t, 50, sc.ConvertCount)
	assert.InDeltaSlice(t, []float64{0.1, 0.2}, sc.Baseline, 1e-12)
	assert.InDeltaSlice(t, []float64{0.15, 0.2}, sc.Projected, 1e-12)
	assert.InDelta(t, 0.2, sc.PeakBefore, 1e-12)
	assert.InDelta(t, 0.2, sc.PeakAfter, 1e-12)
	assert.InDelta(t, 0.0, sc.PeakGrowthAbsolute, 1e-12)
	assert.InDelta(t, 0.0, sc.PeakGrowthPercentage, 1e-9)
	assert.Equal(t, t0.Add(15*time.Minute), sc.PeakBeforeAt)
}

func TestAggregatePeakShift(t *testing.T) {
	// Heating peak early, electric peak late: adoption moves the peak.
	sim := simulated(t, []float64{1.0, 1.5, 2.0}, []float64{9.0, 3.0, 0.0})

	sc, err := Aggregate(sim, Params{SubsetCount: 1000, AdoptionFraction: 1, UnitScale: 1000})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, sc.PeakBefore, 1e-12)
	assert.InDelta(t, 4.0, sc.PeakAfter, 1e-12)
	assert.Equal(t, t0, sc.PeakAfterAt)
	assert.InDelta(t, 2.0, sc.PeakGrowthAbsolute, 1e-12)
	assert.InDelta(t, 100.0, sc.PeakGrowthPercentage, 1e-9)
}

func TestAggregateZeroAdoptionIsIdentity(t *testing.T) {
	sim := simulated(t, []float64{0.3, 0.9, 0.4}, []float64{5, 6, 7})
	sc, err := Aggregate(sim, Params{SubsetCount: 4321, AdoptionFraction: 0, UnitScale: 1000})
	require.NoError(t, err)

	assert.Equal(t, 0, sc.ConvertCount)
	assert.Equal(t, sc.Baseline, sc.Projected)
	assert.Equal(t, 0.0, sc.PeakGrowthAbsolute)
}

func TestAggregateFullAdoptionBound(t *testing.T) {
	sim := simulated(t, []float64{0.3, 0.9, 0.4}, []float64{5, 6, 7})
	const n, scale = 250, 1000.0
	sc, err := Aggregate(sim, Params{SubsetCount: n, AdoptionFraction: 1, UnitScale: scale})
	require.NoError(t, err)

	for i := range sc.Projected {
		assert.InDelta(t, sc.Baseline[i]+sim.AddedLoad[i]*n/scale, sc.Projected[i], 1e-12)
	}
}

func TestAggregateMonotoneInAdoption(t *testing.T) {
	sim := simulated(t, []float64{0.5, 2.5, 0.7, 1.2}, []float64{6.1, 0.2, 4.4, 0.0})
	prev := math.Inf(-1)
	for pct := 0; pct <= 100; pct++ {
		sc, err := Aggregate(sim, Params{SubsetCount: 733, AdoptionFraction: float64(pct) / 100, UnitScale: 1000})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sc.PeakAfter, prev, "adoption %d%%", pct)
		prev = sc.PeakAfter
	}
}

func TestAggregateZeroPeakGuard(t *testing.T) {
	sim := simulated(t, []float64{0, 0}, []float64{3, 0})
	sc, err := Aggregate(sim, Params{SubsetCount: 10, AdoptionFraction: 1, UnitScale: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sc.PeakBefore)
	assert.Greater(t, sc.PeakAfter, 0.0)
	assert.Equal(t, 0.0, sc.PeakGrowthPercentage)

	sc, err = Aggregate(sim, Params{SubsetCount: 0, AdoptionFraction: 0.5, UnitScale: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sc.PeakGrowthPercentage)
}

func TestAggregateIsReproducible(t *testing.T) {
	sim := simulated(t, []float64{0.5, 2.5}, []float64{6.1, 0.2})
	before := append([]float64(nil), sim.Electricity...)

	a, err := Aggregate(sim, Params{SubsetCount: 100, AdoptionFraction: 0.3, UnitScale: 1000})
	require.NoError(t, err)
	_, err = Aggregate(sim, Params{SubsetCount: 100, AdoptionFraction: 0.9, UnitScale: 1000})
	require.NoError(t, err)
	c, err := Aggregate(sim, Params{SubsetCount: 100, AdoptionFraction: 0.3, UnitScale: 1000})
	require.NoError(t, err)

	assert.Equal(t, a, c)
	assert.Equal(t, before, sim.Electricity)
}

func TestAggregateRejectsBadParams(t *testing.T) {
	sim := simulated(t, []float64{1}, []float64{1})
	cases := map[string]Params{
		"negative subset":  {SubsetCount: -1, AdoptionFraction: 0.5, UnitScale: 1000},
		"adoption above 1": {SubsetCount: 1, AdoptionFraction: 1.01, UnitScale: 1000},
		"adoption below 0": {SubsetCount: 1, AdoptionFraction: -0.1, UnitScale: 1000},
		"adoption NaN":     {SubsetCount: 1, AdoptionFraction: math.NaN(), UnitScale: 1000},
		"zero scale":       {SubsetCount: 1, AdoptionFraction: 0.5, UnitScale: 0},
		"negative scale":   {SubsetCount: 1, AdoptionFraction: 0.5, UnitScale: -1000},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Aggregate(sim, p)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}

	_, err := Aggregate(nil, Params{SubsetCount: 1, AdoptionFraction: 0.5, UnitScale: 1})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = Aggregate(&model.SimulatedSeries{}, Params{SubsetCount: 1, AdoptionFraction: 0.5, UnitScale: 1})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestConvertCountFloors(t *testing.T) {
	assert.Equal(t, 50, Params{SubsetCount: 100, AdoptionFraction: 0.5}.ConvertCount())
	assert.Equal(t, 29, Params{SubsetCount: 100, AdoptionFraction: 0.29}.ConvertCount())
	assert.Equal(t, 3, Params{SubsetCount: 7, AdoptionFraction: 0.5}.ConvertCount())
	assert.Equal(t, 0, Params{SubsetCount: 3, AdoptionFraction: 0.2}.ConvertCount())
	assert.Equal(t, 7, Params{SubsetCount: 7, AdoptionFraction: 1}.ConvertCount())
}
