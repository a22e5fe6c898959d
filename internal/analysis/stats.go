package analysis

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LoadStats summarizes one load curve.
type LoadStats struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`

	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	P05  float64 `json:"p05"`
	P95  float64 `json:"p95"`

	// LoadFactor is Mean / Max; 0 for an all-zero curve.
	LoadFactor float64   `json:"load_factor"`
	PeakAt     time.Time `json:"peak_at"`

	DailyPeaks []DailyPeak `json:"daily_peaks,omitempty"`
}

// DailyPeak is the highest value of one calendar day (UTC).
type DailyPeak struct {
	Day   time.Time `json:"day"`
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// ComputeLoadStats expects ts and values of equal length, in time order.
func ComputeLoadStats(ts []time.Time, values []float64) LoadStats {
	s := LoadStats{}
	if len(values) == 0 || len(ts) != len(values) {
		return s
	}
	s.Count = len(values)
	s.Start = ts[0]
	s.End = ts[len(ts)-1]

	s.Min = floats.Min(values)
	imax := floats.MaxIdx(values)
	s.Max = values[imax]
	s.PeakAt = ts[imax]
	s.Mean = stat.Mean(values, nil)
	if s.Max > 0 {
		s.LoadFactor = s.Mean / s.Max
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	s.P05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)

	s.DailyPeaks = dailyPeaks(ts, values)
	return s
}

func dailyPeaks(ts []time.Time, values []float64) []DailyPeak {
	var out []DailyPeak
	for i, t := range ts {
		day := t.UTC().Truncate(24 * time.Hour)
		if n := len(out); n > 0 && out[n-1].Day.Equal(day) {
			if values[i] > out[n-1].Value {
				out[n-1].At, out[n-1].Value = t, values[i]
			}
			continue
		}
		out = append(out, DailyPeak{Day: day, At: t, Value: values[i]})
	}
	return out
}

// PeakDayGrowth pairs the daily peaks of two curves over the same index and
// returns the day whose peak grows the most. ok is false when the curves
// share no day.
func PeakDayGrowth(before, after []DailyPeak) (day DailyPeak, growth float64, ok bool) {
	byDay := make(map[time.Time]float64, len(before))
	for _, p := range before {
		byDay[p.Day] = p.Value
	}
	growth = math.Inf(-1)
	for _, p := range after {
		b, found := byDay[p.Day]
		if !found {
			continue
		}
		if g := p.Value - b; g > growth {
			day, growth, ok = p, g, true
		}
	}
	if !ok {
		growth = 0
	}
	return day, growth, ok
}
