package simulate

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livingdw67/ira-analysis/internal/model"
)

var t0 = time.Date(2018, 1, 17, 0, 0, 0, 0, time.UTC)

func index(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = t0.Add(time.Duration(i) * 15 * time.Minute)
	}
	return out
}

func series(elec, gas []float64) model.IntervalSeries {
	return model.NewIntervalSeries("12345", index(len(elec)), elec, gas)
}

func TestSimulateScenarioExample(t *testing.T) {
	sim, err := Simulate(series([]float64{1.0, 2.0}, []float64{3.0, 0.0}), DefaultCOP)
	require.NoError(t, err)

	assert.Equal(t, "12345", sim.BuildingID)
	assert.Equal(t, 3.0, sim.COP)
	assert.InDeltaSlice(t, []float64{1.0, 0.0}, sim.AddedLoad, 1e-12)
	assert.InDeltaSlice(t, []float64{2.0, 2.0}, sim.TotalLoadAfter, 1e-12)
	assert.Equal(t, 2, sim.Len())
}

func TestSimulateConservation(t *testing.T) {
	elec := []float64{0.41, 0.38, 0.52, 1.73, 2.05, 0.0}
	gas := []float64{2.2, 3.9, 0.0, 5.1, 0.7, 1.3}
	for _, cop := range []float64{0.5, 1, 2.5, 3, 4.2} {
		sim, err := Simulate(series(elec, gas), cop)
		require.NoError(t, err)
		for i := range elec {
			assert.InDelta(t, elec[i]+gas[i]/cop, sim.TotalLoadAfter[i], 1e-12)
			assert.InDelta(t, sim.Electricity[i]+sim.AddedLoad[i], sim.TotalLoadAfter[i], 1e-12)
		}
	}
}

func TestSimulateIdentityAsCOPGrows(t *testing.T) {
	elec := []float64{0.4, 1.1, 0.9}
	gas := []float64{6.0, 12.5, 0.3}
	sim, err := Simulate(series(elec, gas), 1e12)
	require.NoError(t, err)
	for i := range elec {
		assert.InDelta(t, 0, sim.AddedLoad[i], 1e-9)
		assert.InDelta(t, elec[i], sim.TotalLoadAfter[i], 1e-9)
	}
}

func TestSimulateDoesNotMutateInput(t *testing.T) {
	in := series([]float64{1, 2}, []float64{3, 6})
	sim, err := Simulate(in, 3)
	require.NoError(t, err)

	sim.Electricity[0] = 99
	sim.Timestamps[0] = time.Time{}
	assert.Equal(t, 1.0, in.Electricity.Values[0])
	assert.Equal(t, t0, in.Electricity.Timestamps[0])
}

func TestSimulateRejectsBadCOP(t *testing.T) {
	for _, cop := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Simulate(series([]float64{1}, []float64{1}), cop)
		assert.ErrorIs(t, err, model.ErrInvalidInput, "cop=%v", cop)
	}
}

func TestSimulateRejectsNegativeReadings(t *testing.T) {
	_, err := Simulate(series([]float64{1, -0.1}, []float64{0, 0}), 3)
	var ie *model.InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "electricity", ie.Field)

	_, err = Simulate(series([]float64{1, 1}, []float64{0, -2}), 3)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "gas_heating", ie.Field)
}

func TestSimulateRejectsMissingGasReading(t *testing.T) {
	_, err := Simulate(series([]float64{1, 1, 1}, []float64{0.5, model.Missing, 0}), 3)
	var ie *model.InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "gas_heating", ie.Field)
	assert.Contains(t, err.Error(), "missing")
}

func TestSimulateRejectsMisalignedChannels(t *testing.T) {
	s := series([]float64{1, 1}, []float64{1, 1})
	s.GasHeating.Timestamps = []time.Time{t0, t0.Add(30 * time.Minute)}
	_, err := Simulate(s, 3)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	s = series([]float64{1, 1}, []float64{1, 1})
	s.GasHeating = model.Channel{Name: "gas_heating", Timestamps: index(1), Values: []float64{1}}
	_, err = Simulate(s, 3)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSimulateRejectsDuplicateTimestamps(t *testing.T) {
	ts := []time.Time{t0, t0, t0.Add(15 * time.Minute)}
	s := model.NewIntervalSeries("1", ts, []float64{1, 1, 1}, []float64{0, 0, 0})
	_, err := Simulate(s, 3)
	var ie *model.InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "timestamp", ie.Field)
}

func TestSimulateEmptySeries(t *testing.T) {
	sim, err := Simulate(model.IntervalSeries{}, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, sim.Len())
}

func TestWriteProfileCSVReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "archetype_profile.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("stale,content\n1,2\n3,4\n5,6\n"), 0o644))

	sim, err := Simulate(series([]float64{1.0, 2.0}, []float64{3.0, 0.0}), 3)
	require.NoError(t, err)
	require.NoError(t, WriteProfileCSV(path, sim))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, ProfileHeader, rows[0])
	assert.Equal(t, []string{"2018-01-17T00:00:00Z", "1", "3", "1", "2", "12345"}, rows[1])
	assert.Equal(t, []string{"2018-01-17T00:15:00Z", "2", "0", "0", "2", "12345"}, rows[2])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
