package data

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/resolve"
)

// PopulationFromFrame resolves the metadata schema against f's header and
// builds one Building per row. Rows without an id are skipped; a repeated id
// is an error.
func PopulationFromFrame(f *Frame) (model.Population, error) {
	cm, err := resolve.MetadataSchema.Resolve(f.Columns)
	if err != nil {
		return model.Population{}, fmt.Errorf("metadata schema: %w", err)
	}

	var fields []model.Field
	for _, c := range resolve.MetadataSchema {
		if cm.Has(c.Canonical) {
			fields = append(fields, model.Field(c.Canonical))
		}
	}

	seen := make(map[string]int, len(f.Rows))
	buildings := make([]model.Building, 0, len(f.Rows))
	skipped, badArea := 0, 0
	for i, row := range f.Rows {
		id := normalizeID(cm.Value(row, string(model.FieldBuildingID)))
		if id == "" {
			skipped++
			continue
		}
		if prev, dup := seen[id]; dup {
			return model.Population{}, fmt.Errorf("duplicate building id %s at rows %d and %d", id, prev+1, i+1)
		}
		seen[id] = i

		area := math.NaN()
		if s := cm.Value(row, string(model.FieldFloorArea)); s != "" {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				area = v
			} else {
				badArea++
			}
		}
		buildings = append(buildings, model.Building{
			ID:          id,
			City:        cm.Value(row, string(model.FieldCity)),
			County:      cm.Value(row, string(model.FieldCounty)),
			FloorArea:   area,
			Vintage:     cm.Value(row, string(model.FieldVintage)),
			HeatingFuel: cm.Value(row, string(model.FieldHeatingFuel)),
			CoolingType: cm.Value(row, string(model.FieldCoolingType)),
			Income:      cm.Value(row, string(model.FieldIncome)),
			UsageLevel:  cm.Value(row, string(model.FieldUsageLevel)),
		})
	}
	if skipped > 0 {
		log.Printf("[Metadata] Skipped %d rows without a building id", skipped)
	}
	if badArea > 0 {
		log.Printf("[Metadata] %d rows have a non-numeric floor area", badArea)
	}
	return model.NewPopulation(buildings, fields...), nil
}

// normalizeID turns ids that went through a float column ("123.0") back into
// their integer form.
func normalizeID(s string) string {
	if whole, frac, ok := strings.Cut(s, "."); ok && strings.Trim(frac, "0") == "" {
		if _, err := strconv.ParseInt(whole, 10, 64); err == nil {
			return whole
		}
	}
	return s
}

// LoadMetadataCSV reads a metadata CSV such as the one pull-metadata writes.
func LoadMetadataCSV(path string) (model.Population, error) {
	f, err := ReadCSVFile(path)
	if err != nil {
		return model.Population{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	pop, err := PopulationFromFrame(f)
	if err != nil {
		return model.Population{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("[Metadata] Loaded %d buildings from %s", pop.Len(), path)
	return pop, nil
}

// ProjectMetadata keeps the resolved metadata columns of f under their
// concrete names, in schema order.
func ProjectMetadata(f *Frame, cm *resolve.ColumnMap) (*Frame, error) {
	var idx []int
	var header []string
	for _, c := range resolve.MetadataSchema {
		i, ok := cm.Index(c.Canonical)
		if !ok {
			continue
		}
		name, _ := cm.Name(c.Canonical)
		if c.Canonical == string(model.FieldBuildingID) {
			// an id recovered from a pandas index gets its real name back
			name = c.Canonical
		}
		idx = append(idx, i)
		header = append(header, name)
	}
	return f.Project(idx, header)
}
