package analysis

import "sort"

// CountyImpact is the peak picture of one county at a fixed adoption rate.
type CountyImpact struct {
	County               string  `json:"county"`
	Addressable          int     `json:"addressable"`
	Converts             int     `json:"converts"`
	PeakBefore           float64 `json:"peak_before"`
	PeakAfter            float64 `json:"peak_after"`
	PeakGrowthAbsolute   float64 `json:"peak_growth_absolute"`
	PeakGrowthPercentage float64 `json:"peak_growth_percentage"`
}

// RankByPeakGrowth sorts counties by absolute peak growth, largest first.
// Ties keep alphabetical order so the ranking is stable across runs.
func RankByPeakGrowth(impacts []CountyImpact) []CountyImpact {
	out := append([]CountyImpact(nil), impacts...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PeakGrowthAbsolute != out[j].PeakGrowthAbsolute {
			return out[i].PeakGrowthAbsolute > out[j].PeakGrowthAbsolute
		}
		return out[i].County < out[j].County
	})
	return out
}
