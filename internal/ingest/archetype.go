package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/livingdw67/ira-analysis/internal/data"
	"github.com/livingdw67/ira-analysis/internal/fleet"
	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/resolve"
	"github.com/livingdw67/ira-analysis/internal/simulate"
)

// ArchetypeOptions drives one archetype build.
type ArchetypeOptions struct {
	MetadataCSV string
	// TimeseriesRoot is the by_state directory of the release.
	TimeseriesRoot string
	Key            resolve.Key
	Layouts        []resolve.LayoutVariant
	MinFloorArea   float64
	COP            float64
	// AllowGaps lets a series with cadence gaps through; gaps are still logged.
	AllowGaps bool
	Output    string
}

// ArchetypeResult is what a build produced.
type ArchetypeResult struct {
	Building   model.Building
	Resolution resolve.Resolution
	File       string
	Gaps       []model.Gap
	Simulated  *model.SimulatedSeries
}

// BuildArchetype selects the archetype from the metadata CSV, locates its
// interval file, runs the heat-pump substitution and writes the profile.
func BuildArchetype(ctx context.Context, store data.Store, opt ArchetypeOptions) (*ArchetypeResult, error) {
	pop, err := data.LoadMetadataCSV(opt.MetadataCSV)
	if err != nil {
		return nil, err
	}
	b, err := fleet.SelectArchetype(pop, opt.MinFloorArea)
	if err != nil {
		return nil, err
	}
	log.Printf("[Ingest] Target selected: building %s (%.0f sq ft, %s)", b.ID, b.FloorArea, b.HeatingFuel)

	res := &ArchetypeResult{Building: b}
	root := strings.TrimSuffix(data.TrimScheme(opt.TimeseriesRoot), "/")
	r := resolve.NewResolver(store, opt.Layouts)
	if res.Resolution, err = r.Resolve(ctx, root, opt.Key); err != nil {
		return nil, err
	}
	if res.File, err = r.FindBuildingFile(ctx, res.Resolution.Path, b.ID); err != nil {
		return nil, err
	}
	log.Printf("[Ingest] Found %s", res.File)

	series, err := data.ReadTimeseriesParquet(ctx, store, res.File, b.ID)
	if err != nil {
		return nil, err
	}
	res.Gaps = series.Gaps()
	if len(res.Gaps) > 0 {
		g := res.Gaps[0]
		log.Printf("[Ingest] Series has %d cadence gaps, first after %s (%d intervals missing)",
			len(res.Gaps), g.After.Format("2006-01-02 15:04"), g.Missing())
		if !opt.AllowGaps {
			return nil, fmt.Errorf("building %s: %d cadence gaps in interval data", b.ID, len(res.Gaps))
		}
	}

	cop := opt.COP
	if cop == 0 {
		cop = simulate.DefaultCOP
	}
	if res.Simulated, err = simulate.Simulate(series, cop); err != nil {
		return nil, fmt.Errorf("building %s: %w", b.ID, err)
	}
	if opt.Output != "" {
		if err := simulate.WriteProfileCSV(opt.Output, res.Simulated); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", opt.Output, err)
		}
		log.Printf("[Ingest] Saved %d intervals to %s", res.Simulated.Len(), opt.Output)
	}
	return res, nil
}
