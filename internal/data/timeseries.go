package data

import (
	"context"
	"fmt"
	"log"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/resolve"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTimestamp accepts RFC 3339, the naive layouts pandas writes and a bare
// date. Naive timestamps are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseReading maps a blank cell to model.Missing.
func parseReading(s string) (float64, error) {
	if s == "" {
		return model.Missing, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Profile is an interval series read back from disk. AddedLoad is nil when
// the file does not carry the column.
type Profile struct {
	Series    model.IntervalSeries
	AddedLoad []float64
}

// SeriesFromFrame reads timestamp, electricity and gas heating from f.
func SeriesFromFrame(f *Frame, buildingID string) (model.IntervalSeries, error) {
	p, err := profileFromFrame(f, buildingID, resolve.TimeseriesSchema)
	if err != nil {
		return model.IntervalSeries{}, err
	}
	return p.Series, nil
}

func profileFromFrame(f *Frame, buildingID string, schema resolve.Schema) (*Profile, error) {
	cm, err := schema.Resolve(f.Columns)
	if err != nil {
		return nil, fmt.Errorf("timeseries schema: %w", err)
	}
	n := len(f.Rows)
	ts := make([]time.Time, n)
	elec := make([]float64, n)
	gas := make([]float64, n)
	var added []float64
	if cm.Has(resolve.ColAddedLoad) {
		added = make([]float64, n)
	}
	for i, row := range f.Rows {
		if ts[i], err = ParseTimestamp(cm.Value(row, resolve.ColTimestamp)); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if elec[i], err = parseReading(cm.Value(row, resolve.ColElectricity)); err != nil {
			return nil, fmt.Errorf("row %d electricity: %w", i+1, err)
		}
		if gas[i], err = parseReading(cm.Value(row, resolve.ColGasHeating)); err != nil {
			return nil, fmt.Errorf("row %d gas heating: %w", i+1, err)
		}
		if added != nil {
			if added[i], err = parseReading(cm.Value(row, resolve.ColAddedLoad)); err != nil {
				return nil, fmt.Errorf("row %d added load: %w", i+1, err)
			}
		}
	}
	if buildingID == "" && n > 0 {
		buildingID = normalizeID(cm.Value(f.Rows[0], resolve.ColBuildingID))
	}
	return &Profile{
		Series:    model.NewIntervalSeries(buildingID, ts, elec, gas),
		AddedLoad: added,
	}, nil
}

// LoadProfileCSV reads the simulator artifact (or any CSV with the timeseries
// columns) from path. An empty buildingID takes the file's bldg_id column.
func LoadProfileCSV(path, buildingID string) (*Profile, error) {
	f, err := ReadCSVFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	p, err := profileFromFrame(f, buildingID, resolve.ProfileSchema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ReadTimeseriesParquet fetches one building's Parquet file from store and
// reads only the resolved timeseries columns.
func ReadTimeseriesParquet(ctx context.Context, store Store, p, buildingID string) (model.IntervalSeries, error) {
	raw, err := store.ReadFile(ctx, p)
	if err != nil {
		return model.IntervalSeries{}, err
	}
	pf, err := OpenParquet(raw)
	if err != nil {
		return model.IntervalSeries{}, err
	}
	defer pf.Close()

	cm, err := resolve.TimeseriesSchema.Resolve(pf.Columns())
	if err != nil {
		return model.IntervalSeries{}, fmt.Errorf("%s: %w", p, err)
	}
	log.Printf("[Timeseries] %s columns: %s", path.Base(p), cm)
	f, err := pf.Read(ctx, cm.Columns(resolve.TimeseriesSchema))
	if err != nil {
		return model.IntervalSeries{}, fmt.Errorf("%s: %w", p, err)
	}
	return SeriesFromFrame(f, buildingID)
}
