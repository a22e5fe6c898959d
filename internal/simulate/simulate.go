package simulate

import (
	"fmt"
	"math"
	"time"

	"github.com/livingdw67/ira-analysis/internal/model"
)

// DefaultCOP is the reference heat-pump efficiency.
const DefaultCOP = 3.0

// Simulate replaces the building's gas heating with heat-pump electric load:
//
//	added_load       = gas_heating / cop
//	total_load_after = electricity + added_load
//
// The input is not modified. Missing readings, negative readings, misaligned
// channels and a non-positive cop are rejected with *model.InvalidInputError;
// callers must impute or drop bad readings first.
func Simulate(series model.IntervalSeries, cop float64) (*model.SimulatedSeries, error) {
	if math.IsNaN(cop) || math.IsInf(cop, 0) || cop <= 0 {
		return nil, model.Invalid("cop", cop, "must be a finite number > 0")
	}
	if err := validate(series); err != nil {
		return nil, err
	}

	n := series.Len()
	out := &model.SimulatedSeries{
		BuildingID:     series.BuildingID,
		COP:            cop,
		Timestamps:     append([]time.Time(nil), series.Electricity.Timestamps...),
		Electricity:    append([]float64(nil), series.Electricity.Values...),
		GasHeating:     append([]float64(nil), series.GasHeating.Values...),
		AddedLoad:      make([]float64, n),
		TotalLoadAfter: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		added := out.GasHeating[i] / cop
		out.AddedLoad[i] = added
		out.TotalLoadAfter[i] = out.Electricity[i] + added
	}
	return out, nil
}

func validate(s model.IntervalSeries) error {
	e, g := s.Electricity, s.GasHeating
	if len(e.Timestamps) != len(e.Values) {
		return model.Invalid("electricity", nil, fmt.Sprintf("has %d timestamps for %d values", len(e.Timestamps), len(e.Values)))
	}
	if len(g.Timestamps) != len(g.Values) {
		return model.Invalid("gas_heating", nil, fmt.Sprintf("has %d timestamps for %d values", len(g.Timestamps), len(g.Values)))
	}
	if len(e.Values) != len(g.Values) {
		return model.Invalid("gas_heating", nil, fmt.Sprintf("has %d readings, electricity has %d", len(g.Values), len(e.Values)))
	}
	for i := range e.Timestamps {
		if !e.Timestamps[i].Equal(g.Timestamps[i]) {
			return model.Invalid("gas_heating", g.Timestamps[i].Format(time.RFC3339),
				fmt.Sprintf("not aligned with electricity index at row %d (%s)", i, e.Timestamps[i].Format(time.RFC3339)))
		}
		if i > 0 && !e.Timestamps[i].After(e.Timestamps[i-1]) {
			return model.Invalid("timestamp", e.Timestamps[i].Format(time.RFC3339),
				fmt.Sprintf("not strictly increasing at row %d", i))
		}
	}
	if err := checkReadings(e); err != nil {
		return err
	}
	return checkReadings(g)
}

func checkReadings(c model.Channel) error {
	for i, v := range c.Values {
		switch {
		case model.IsMissing(v):
			return model.Invalid(c.Name, nil, fmt.Sprintf("reading missing at %s", c.Timestamps[i].Format(time.RFC3339)))
		case math.IsInf(v, 0):
			return model.Invalid(c.Name, v, fmt.Sprintf("reading not finite at %s", c.Timestamps[i].Format(time.RFC3339)))
		case v < 0:
			return model.Invalid(c.Name, v, fmt.Sprintf("negative consumption at %s", c.Timestamps[i].Format(time.RFC3339)))
		}
	}
	return nil
}
