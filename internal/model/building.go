package model

import "math"

// Field is a canonical metadata field name. Concrete column names may differ
// between dataset releases; see resolve.MetadataSchema for the alias table.
type Field string

const (
	FieldBuildingID  Field = "bldg_id"
	FieldCity        Field = "in.city"
	FieldCounty      Field = "in.county"
	FieldFloorArea   Field = "in.sqft"
	FieldVintage     Field = "in.vintage"
	FieldHeatingFuel Field = "in.heating_fuel"
	FieldCoolingType Field = "in.hvac_cooling_type"
	FieldIncome      Field = "in.income"
	FieldUsageLevel  Field = "in.usage_level"
	FieldState       Field = "in.state"
)

// Building is one row of building metadata. It is immutable once loaded and
// identified solely by ID.
type Building struct {
	ID          string
	City        string
	County      string
	FloorArea   float64 // sq ft; NaN when absent
	Vintage     string
	HeatingFuel string
	CoolingType string
	Income      string
	UsageLevel  string
}

func (b Building) HasFloorArea() bool { return !math.IsNaN(b.FloorArea) }

// Population is a set of buildings together with the canonical fields that
// were present in the source. A field missing from Fields means the column did
// not exist, which is different from every value being blank.
type Population struct {
	Buildings []Building
	Fields    map[Field]bool
}

func NewPopulation(buildings []Building, fields ...Field) Population {
	p := Population{Buildings: buildings, Fields: make(map[Field]bool, len(fields))}
	for _, f := range fields {
		p.Fields[f] = true
	}
	return p
}

func (p Population) Has(f Field) bool { return p.Fields[f] }

func (p Population) Len() int { return len(p.Buildings) }

// Subset returns a population with the same field set and the given buildings.
func (p Population) Subset(buildings []Building) Population {
	return Population{Buildings: buildings, Fields: p.Fields}
}
