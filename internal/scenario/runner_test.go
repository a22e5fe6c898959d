package scenario

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livingdw67/ira-analysis/internal/fleet"
	"github.com/livingdw67/ira-analysis/internal/model"
)

// archetype covers 2018-01-15 .. 2018-01-20 hourly. Gas heating peaks at
// 06:00 each day, electricity at 18:00.
func archetype() model.IntervalSeries {
	start := time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC)
	n := 6 * 24
	ts := make([]time.Time, n)
	elec := make([]float64, n)
	gas := make([]float64, n)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * time.Hour)
		elec[i] = 1
		gas[i] = 0.3
		switch ts[i].Hour() {
		case 18:
			elec[i] = 2
		case 6:
			gas[i] = 9
		}
	}
	return model.NewIntervalSeries("arch", ts, elec, gas)
}

func population() model.Population {
	var bs []model.Building
	add := func(n int, county, fuel, income string) {
		for i := 0; i < n; i++ {
			bs = append(bs, model.Building{
				ID: county + fuel + income + string(rune('a'+i)), County: county,
				FloorArea: 2000, HeatingFuel: fuel, Income: income,
			})
		}
	}
	add(80, "Greenville", "Natural Gas", "60000-69999")
	add(20, "Greenville", "Propane", "100000-119999")
	add(30, "Greenville", "Electricity", "200000+")
	add(10, "Richland", "Electricity", "100000-119999")
	bs[0].FloorArea = math.NaN()
	return model.NewPopulation(bs, model.FieldHeatingFuel, model.FieldIncome, model.FieldCounty)
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := NewRunner(population(), archetype(), Settings{})
	require.NoError(t, err)
	return r
}

func TestRunCounty(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(Request{County: "Greenville", AdoptionPercent: 50})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 130, res.Buildings)
	assert.Equal(t, 100, res.Addressable)
	assert.Equal(t, 50, res.Scenario.ConvertCount)
	assert.Nil(t, res.Empty)

	// cold-snap window 01-16 00:00 .. 01-19 00:00 inclusive
	assert.Len(t, res.Scenario.Timestamps, 3*24+1)
	// evening electric peak before, morning heating peak after
	assert.InDelta(t, 0.2, res.Scenario.PeakBefore, 1e-12)
	assert.Equal(t, 18, res.Scenario.PeakBeforeAt.Hour())
	assert.InDelta(t, 0.1+50*3.0/1000, res.Scenario.PeakAfter, 1e-12)
	assert.Equal(t, 6, res.Scenario.PeakAfterAt.Hour())
	assert.Equal(t, res.Scenario.PeakAfter, res.After.Max)

	// every full day grows alike; the first one wins
	require.NotNil(t, res.WorstDay)
	assert.Equal(t, time.Date(2018, 1, 16, 0, 0, 0, 0, time.UTC), res.WorstDay.Day)
	assert.Equal(t, 6, res.WorstDay.At.Hour())
	assert.InDelta(t, 0.05, res.WorstDay.Growth, 1e-12)
	assert.InDelta(t, res.Scenario.PeakAfter, res.WorstDay.Peak, 1e-12)

	assert.Equal(t, fleet.ModeFiltered, res.PriorityMode)
	assert.Equal(t, 20, res.PriorityTotal)
	assert.Len(t, res.Priority, 20)
}

func TestRunCapsPriorityList(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(Request{AdoptionPercent: 20, PriorityLimit: 500})
	require.NoError(t, err)
	assert.Equal(t, 20, res.PriorityTotal)

	res, err = r.Run(Request{AdoptionPercent: 20, PriorityLimit: 5})
	require.NoError(t, err)
	assert.Len(t, res.Priority, 5)
}

func TestRunFallbackKeepsMissingFloorArea(t *testing.T) {
	pop := population()
	for i := range pop.Buildings {
		pop.Buildings[i].Income = ""
	}
	r, err := NewRunner(pop, archetype(), Settings{})
	require.NoError(t, err)

	res, err := r.Run(Request{County: "Greenville", AdoptionPercent: 10})
	require.NoError(t, err)
	assert.Equal(t, fleet.ModeFallback, res.PriorityMode)
	assert.Equal(t, fleet.ReasonNoIncomeData, res.PriorityReason)
	assert.Len(t, res.Priority, MaxPriorityLimit)
	assert.Nil(t, res.Priority[0].FloorArea)
	require.NotNil(t, res.Priority[1].FloorArea)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestRunEmptySubset(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(Request{County: "Richland", AdoptionPercent: 100})
	require.NoError(t, err)
	require.NotNil(t, res.Empty)
	assert.ErrorIs(t, res.Empty, model.ErrEmptyResult)
	assert.Equal(t, 0, res.Addressable)
	assert.Equal(t, 0.0, res.Scenario.PeakAfter)
	assert.Empty(t, res.Priority)
}

func TestRunRejectsBadRequests(t *testing.T) {
	r := newRunner(t)

	_, err := r.Run(Request{County: "Nowhere", AdoptionPercent: 20})
	assert.ErrorIs(t, err, ErrUnknownCounty)

	for _, pct := range []float64{-1, 100.5, math.NaN()} {
		_, err = r.Run(Request{AdoptionPercent: pct})
		assert.ErrorIs(t, err, model.ErrInvalidInput, "adoption %v", pct)
	}

	_, err = r.Run(Request{AdoptionPercent: 20, COP: -3})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	far := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = r.Run(Request{AdoptionPercent: 20, Window: &Window{Start: far}})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = r.Run(Request{AdoptionPercent: 20, Window: &Window{Start: far, End: far.Add(-time.Hour)}})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRunWholeSeriesWindow(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(Request{AdoptionPercent: 20, Window: &Window{}})
	require.NoError(t, err)
	assert.Len(t, res.Scenario.Timestamps, 6*24)

	whole, err := NewRunner(population(), archetype(), Settings{WholeSeries: true})
	require.NoError(t, err)
	res, err = whole.Run(Request{AdoptionPercent: 20})
	require.NoError(t, err)
	assert.Len(t, res.Scenario.Timestamps, 6*24)
	assert.True(t, whole.Settings().Window.Start.IsZero())
}

func TestRunIsReproducible(t *testing.T) {
	r := newRunner(t)
	a, err := r.Run(Request{County: "Greenville", AdoptionPercent: 35})
	require.NoError(t, err)
	b, err := r.Run(Request{County: "Greenville", AdoptionPercent: 35})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Scenario, b.Scenario)
	assert.Equal(t, a.Priority, b.Priority)
}

func TestNewRunnerRejectsBadArchetype(t *testing.T) {
	bad := archetype()
	bad.GasHeating.Values[3] = -1
	_, err := NewRunner(population(), bad, Settings{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = NewRunner(population(), archetype(), Settings{AdoptionPercent: 120})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
