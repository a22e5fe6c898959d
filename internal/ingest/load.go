package ingest

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/livingdw67/ira-analysis/internal/data"
	"github.com/livingdw67/ira-analysis/internal/scenario"
)

// LoadRunner reads the metadata CSV and the archetype profile written by
// BuildArchetype and prepares a scenario runner over them. The archetype id
// comes from the profile's bldg_id column, or its file name for profiles
// written without one.
func LoadRunner(metadataCSV, archetypeCSV string, s scenario.Settings) (*scenario.Runner, error) {
	pop, err := data.LoadMetadataCSV(metadataCSV)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	profile, err := data.LoadProfileCSV(archetypeCSV, "")
	if err != nil {
		return nil, fmt.Errorf("archetype: %w", err)
	}
	if profile.Series.BuildingID == "" {
		profile.Series.BuildingID = strings.TrimSuffix(filepath.Base(archetypeCSV), filepath.Ext(archetypeCSV))
	}
	if gaps := profile.Series.Gaps(); len(gaps) > 0 {
		log.Printf("[Ingest] WARNING: archetype profile %s has %d cadence gaps", archetypeCSV, len(gaps))
	}
	log.Printf("[Ingest] Loaded %d buildings from %s and %d intervals from %s",
		pop.Len(), metadataCSV, profile.Series.Len(), archetypeCSV)
	return scenario.NewRunner(pop, profile.Series, s)
}
