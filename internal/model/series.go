package model

import (
	"math"
	"time"
)

// Missing marks an absent reading in a Channel. Use IsMissing to test for it.
var Missing = math.NaN()

func IsMissing(v float64) bool { return math.IsNaN(v) }

// Channel is one named column of an interval series.
// Units: kWh per interval (15-minute cadence in ResStock).
type Channel struct {
	Name       string
	Timestamps []time.Time
	Values     []float64
}

func (c Channel) Len() int { return len(c.Values) }

// IntervalSeries is one building's raw interval data: electricity and
// gas-heating consumption, each with its own timestamp index.
type IntervalSeries struct {
	BuildingID  string
	Electricity Channel
	GasHeating  Channel
}

// NewIntervalSeries builds a series whose two channels share the same index.
func NewIntervalSeries(buildingID string, ts []time.Time, electricity, gasHeating []float64) IntervalSeries {
	return IntervalSeries{
		BuildingID:  buildingID,
		Electricity: Channel{Name: "electricity", Timestamps: ts, Values: electricity},
		GasHeating:  Channel{Name: "gas_heating", Timestamps: ts, Values: gasHeating},
	}
}

func (s IntervalSeries) Len() int { return s.Electricity.Len() }

// Cadence returns the spacing between the first two electricity readings,
// or 0 when there are fewer than two.
func (s IntervalSeries) Cadence() time.Duration {
	ts := s.Electricity.Timestamps
	if len(ts) < 2 {
		return 0
	}
	return ts[1].Sub(ts[0])
}

// Gap is a spot where the series cadence breaks.
type Gap struct {
	After    time.Time
	Before   time.Time
	Expected time.Duration
}

func (g Gap) Missing() int {
	if g.Expected <= 0 {
		return 0
	}
	return int(g.Before.Sub(g.After)/g.Expected) - 1
}

// Gaps lists every place where consecutive electricity timestamps are further
// apart than the series cadence. Gaps are reported, never filled.
func (s IntervalSeries) Gaps() []Gap {
	step := s.Cadence()
	if step <= 0 {
		return nil
	}
	ts := s.Electricity.Timestamps
	var out []Gap
	for i := 1; i < len(ts); i++ {
		if d := ts[i].Sub(ts[i-1]); d != step {
			out = append(out, Gap{After: ts[i-1], Before: ts[i], Expected: step})
		}
	}
	return out
}

// Window returns the readings with timestamps in [start, end]. A zero start or
// end leaves that side open. Channels are clipped independently.
func (s IntervalSeries) Window(start, end time.Time) IntervalSeries {
	return IntervalSeries{
		BuildingID:  s.BuildingID,
		Electricity: s.Electricity.window(start, end),
		GasHeating:  s.GasHeating.window(start, end),
	}
}

func (c Channel) window(start, end time.Time) Channel {
	out := Channel{Name: c.Name}
	for i, t := range c.Timestamps {
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !end.IsZero() && t.After(end) {
			continue
		}
		out.Timestamps = append(out.Timestamps, t)
		out.Values = append(out.Values, c.Values[i])
	}
	return out
}

// SimulatedSeries is an IntervalSeries after heat-pump substitution.
// For every index i:
//
//	AddedLoad[i] == GasHeating[i] / COP
//	TotalLoadAfter[i] == Electricity[i] + AddedLoad[i]
type SimulatedSeries struct {
	BuildingID     string
	COP            float64
	Timestamps     []time.Time
	Electricity    []float64
	GasHeating     []float64
	AddedLoad      []float64
	TotalLoadAfter []float64
}

func (s *SimulatedSeries) Len() int { return len(s.Timestamps) }
