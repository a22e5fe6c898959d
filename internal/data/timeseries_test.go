package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/simulate"
)

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2018, 1, 17, 6, 15, 0, 0, time.UTC)
	for _, s := range []string{"2018-01-17T06:15:00Z", "2018-01-17 06:15:00", "2018-01-17T06:15:00", "2018-01-17 06:15"} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}
	day, err := ParseTimestamp("2018-01-17")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, 1, 17, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseTimestamp("17/01/2018")
	assert.Error(t, err)
}

// Written by the earlier Python tooling: pandas timestamps, hp_added_load.
const legacyProfile = `timestamp,out.electricity.total.energy_consumption,out.natural_gas.heating.energy_consumption,hp_added_load,total_load_after
2018-01-17 00:00:00,1.0,3.0,1.0,2.0
2018-01-17 00:15:00,2.0,0.0,0.0,2.0
`

func TestLoadLegacyProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archetype_profile.csv")
	require.NoError(t, os.WriteFile(path, []byte(legacyProfile), 0o644))

	p, err := LoadProfileCSV(path, "42")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Series.Len())
	assert.Equal(t, []float64{3, 0}, p.Series.GasHeating.Values)
	assert.Equal(t, []float64{1, 0}, p.AddedLoad)
	assert.Empty(t, p.Series.Gaps())

	p, err = LoadProfileCSV(path, "")
	require.NoError(t, err)
	assert.Equal(t, "", p.Series.BuildingID)
}

func TestProfileRoundTripThroughSimulator(t *testing.T) {
	ts := []time.Time{jan17, jan17.Add(15 * time.Minute)}
	sim, err := simulate.Simulate(model.NewIntervalSeries("7", ts, []float64{1, 2}, []float64{3, 0}), simulate.DefaultCOP)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "archetype_profile.csv")
	require.NoError(t, simulate.WriteProfileCSV(path, sim))

	p, err := LoadProfileCSV(path, "7")
	require.NoError(t, err)
	assert.Equal(t, sim.Electricity, p.Series.Electricity.Values)
	assert.Equal(t, sim.AddedLoad, p.AddedLoad)
	assert.True(t, ts[1].Equal(p.Series.Electricity.Timestamps[1]))

	p, err = LoadProfileCSV(path, "")
	require.NoError(t, err)
	assert.Equal(t, "7", p.Series.BuildingID)
}

func TestSeriesFromFrameBlankIsMissing(t *testing.T) {
	f := &Frame{
		Columns: []string{"timestamp", "out.electricity.total.energy_consumption", "out.natural_gas.heating.energy_consumption"},
		Rows:    [][]string{{"2018-01-17 00:00:00", "", "1"}},
	}
	s, err := SeriesFromFrame(f, "1")
	require.NoError(t, err)
	assert.True(t, model.IsMissing(s.Electricity.Values[0]))

	f.Rows[0][2] = "lots"
	_, err = SeriesFromFrame(f, "1")
	assert.ErrorContains(t, err, "gas heating")
}

func TestSeriesFromFrameRequiresChannels(t *testing.T) {
	f := &Frame{Columns: []string{"timestamp", "out.electricity.total.energy_consumption"}}
	_, err := SeriesFromFrame(f, "1")
	assert.ErrorContains(t, err, "out.natural_gas.heating.energy_consumption")
}
