package resolve

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Column is a canonical field and the other names it has shipped under.
// Aliases are tried in order after the canonical name.
type Column struct {
	Canonical string
	Aliases   []string
	Required  bool
}

func (c Column) names() []string {
	return append([]string{c.Canonical}, c.Aliases...)
}

// Schema is a declared alias table, resolved once per table.
type Schema []Column

// MetadataSchema covers the building metadata table. The id column may come
// back as an unnamed pandas index, hence the index aliases.
var MetadataSchema = Schema{
	{Canonical: "bldg_id", Aliases: []string{"building_id", "__index_level_0__", "index"}, Required: true},
	{Canonical: "in.city"},
	{Canonical: "in.county"},
	{Canonical: "in.sqft", Aliases: []string{"in.geometry_floor_area"}},
	{Canonical: "in.vintage"},
	{Canonical: "in.heating_fuel", Aliases: []string{"in.hvac_heating_type"}},
	{Canonical: "in.hvac_cooling_type"},
	{Canonical: "in.income"},
	{Canonical: "in.usage_level"},
	{Canonical: "in.state", Aliases: []string{"in.state_abbreviation"}},
}

// Timeseries column names.
const (
	ColTimestamp      = "timestamp"
	ColElectricity    = "out.electricity.total.energy_consumption"
	ColGasHeating     = "out.natural_gas.heating.energy_consumption"
	ColAddedLoad      = "added_load"
	ColTotalLoadAfter = "total_load_after"
	ColBuildingID     = "bldg_id"
)

// TimeseriesSchema covers one building's interval file. Later releases append
// a unit suffix to every output column.
var TimeseriesSchema = Schema{
	{Canonical: ColTimestamp, Required: true},
	{Canonical: ColElectricity, Aliases: []string{ColElectricity + ".kwh"}, Required: true},
	{Canonical: ColGasHeating, Aliases: []string{ColGasHeating + ".kwh"}, Required: true},
}

// ProfileSchema covers the simulator artifact. added_load was written as
// hp_added_load by earlier tooling, which also left out bldg_id.
var ProfileSchema = append(append(Schema{}, TimeseriesSchema...),
	Column{Canonical: ColAddedLoad, Aliases: []string{"hp_added_load"}},
	Column{Canonical: ColTotalLoadAfter},
	Column{Canonical: ColBuildingID, Aliases: []string{"building_id"}},
)

// ResolveColumn returns the first of the canonical name and its aliases that
// appears in columns.
func ResolveColumn(columns []string, c Column) (string, error) {
	present := make(map[string]bool, len(columns))
	for _, name := range columns {
		present[strings.TrimSpace(name)] = true
	}
	for _, name := range c.names() {
		if present[name] {
			return name, nil
		}
	}
	return "", &MissingColumnError{Field: c.Canonical, Tried: c.names()}
}

// ColumnMap is a resolved Schema: canonical field -> column name and index.
type ColumnMap struct {
	names   map[string]string
	index   map[string]int
	Missing []string
}

// Resolve maps every column of s onto the given header. A missing required
// column is fatal; missing optional columns are collected in Missing.
func (s Schema) Resolve(columns []string) (*ColumnMap, error) {
	m := &ColumnMap{
		names: make(map[string]string, len(s)),
		index: make(map[string]int, len(s)),
	}
	pos := make(map[string]int, len(columns))
	for i, name := range columns {
		name = strings.TrimSpace(name)
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	var fatal []error
	for _, c := range s {
		name, err := ResolveColumn(columns, c)
		if err != nil {
			if c.Required {
				fatal = append(fatal, err)
				continue
			}
			log.Printf("[Resolver] Warning: %v; continuing without it", err)
			m.Missing = append(m.Missing, c.Canonical)
			continue
		}
		if name != c.Canonical {
			log.Printf("[Resolver] Column %s resolved via alias %s", c.Canonical, name)
		}
		m.names[c.Canonical] = name
		m.index[c.Canonical] = pos[name]
	}
	if len(fatal) > 0 {
		return nil, errors.Join(fatal...)
	}
	return m, nil
}

// Name returns the concrete column name for a canonical field.
func (m *ColumnMap) Name(canonical string) (string, bool) {
	n, ok := m.names[canonical]
	return n, ok
}

// Index returns the header position of a canonical field.
func (m *ColumnMap) Index(canonical string) (int, bool) {
	i, ok := m.index[canonical]
	return i, ok
}

func (m *ColumnMap) Has(canonical string) bool {
	_, ok := m.names[canonical]
	return ok
}

// Columns returns the concrete names of every resolved field, in schema order.
func (m *ColumnMap) Columns(s Schema) []string {
	out := make([]string, 0, len(m.names))
	for _, c := range s {
		if n, ok := m.names[c.Canonical]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Value returns row[field] or "" when the field is unresolved or the row is short.
func (m *ColumnMap) Value(row []string, canonical string) string {
	i, ok := m.index[canonical]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (m *ColumnMap) String() string {
	parts := make([]string, 0, len(m.names))
	for k, v := range m.names {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
