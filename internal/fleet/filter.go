package fleet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/livingdw67/ira-analysis/internal/model"
)

var (
	gasFuelMarkers    = []string{"gas", "propane"}
	highIncomeMarkers = []string{"100", "200"}
)

// PriorityMode tells callers how a high-priority set was produced.
type PriorityMode string

const (
	// ModeFiltered means the income filter was applied and matched.
	ModeFiltered PriorityMode = "filtered"
	// ModeFallback means the set is the whole gas-heated subset.
	ModeFallback PriorityMode = "fallback"
)

// Fallback reasons.
const (
	ReasonNoIncomeData = "income data not available for this population"
	ReasonNoMatch      = "no high-income households in this subset"
)

// PrioritySet is the high-priority intervention list.
type PrioritySet struct {
	Mode      PriorityMode
	Reason    string
	Buildings []model.Building
}

// Top returns at most n buildings in source order.
func (s PrioritySet) Top(n int) []model.Building {
	if n < 0 || n >= len(s.Buildings) {
		return s.Buildings
	}
	return s.Buildings[:n]
}

func containsAnyFold(s string, markers []string) bool {
	s = strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// IsGasHeated reports whether the heating-fuel label mentions gas or propane.
func IsGasHeated(b model.Building) bool {
	return containsAnyFold(b.HeatingFuel, gasFuelMarkers)
}

// IsHighIncome reports whether the income bracket label contains a 100 or 200
// bracket marker.
func IsHighIncome(b model.Building) bool {
	return containsAnyFold(b.Income, highIncomeMarkers)
}

// GasHeated returns the addressable market: buildings heated with gas or propane.
func GasHeated(pop model.Population) model.Population {
	out := make([]model.Building, 0, len(pop.Buildings))
	for _, b := range pop.Buildings {
		if IsGasHeated(b) {
			out = append(out, b)
		}
	}
	return pop.Subset(out)
}

// InCounty returns the buildings whose county equals county exactly.
func InCounty(pop model.Population, county string) model.Population {
	out := make([]model.Building, 0)
	for _, b := range pop.Buildings {
		if b.County == county {
			out = append(out, b)
		}
	}
	return pop.Subset(out)
}

// Counties returns the distinct non-empty counties, sorted.
func Counties(pop model.Population) []string {
	seen := map[string]bool{}
	for _, b := range pop.Buildings {
		if b.County != "" {
			seen[b.County] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// HighPriority narrows a gas-heated subset to high-income households. When the
// population carries no income data at all the full subset is returned with
// ModeFallback; the same happens, with a different reason, when the filter
// matches nothing.
func HighPriority(gas model.Population) PrioritySet {
	if !hasIncomeData(gas) {
		return PrioritySet{Mode: ModeFallback, Reason: ReasonNoIncomeData, Buildings: gas.Buildings}
	}
	out := make([]model.Building, 0)
	for _, b := range gas.Buildings {
		if IsHighIncome(b) {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return PrioritySet{Mode: ModeFallback, Reason: ReasonNoMatch, Buildings: gas.Buildings}
	}
	return PrioritySet{Mode: ModeFiltered, Buildings: out}
}

func hasIncomeData(pop model.Population) bool {
	if !pop.Has(model.FieldIncome) {
		return false
	}
	for _, b := range pop.Buildings {
		if b.Income != "" {
			return true
		}
	}
	return false
}

// SelectArchetype picks the first natural-gas-heated building larger than
// minFloorArea, in source order. Propane homes are skipped: their heating load
// is not in the natural gas channel the simulator substitutes.
func SelectArchetype(pop model.Population, minFloorArea float64) (model.Building, error) {
	for _, b := range pop.Buildings {
		if containsAnyFold(b.HeatingFuel, gasFuelMarkers[:1]) && b.HasFloorArea() && b.FloorArea > minFloorArea {
			return b, nil
		}
	}
	return model.Building{}, &model.EmptyResultError{
		Filter:     fmt.Sprintf("natural gas heat with floor area > %.0f sq ft", minFloorArea),
		Suggestion: "try lowering the floor-area filter",
	}
}
