package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livingdw67/ira-analysis/internal/data"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, "SC", c.Dataset.State)
	assert.Equal(t, "sc_resstock_metadata.csv", c.Files.MetadataCSV)
	assert.Equal(t, 2500.0, c.Archetype.MinFloorArea)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, time.Hour, c.Cache.TTL)
	assert.True(t, *c.Dataset.Anonymous)
	assert.Equal(t,
		"s3://oedi-data-lake/nrel-pds-building-stock/end-use-load-profiles-for-us-building-stock/2021/resstock_amy2018_release_1/timeseries_individual_buildings/by_state",
		c.Dataset.TimeseriesRoot())

	s, err := c.Scenario.Settings()
	require.NoError(t, err)
	assert.Equal(t, 3.0, s.COP)
	assert.Equal(t, 20.0, s.AdoptionPercent)
	assert.Equal(t, time.Date(2018, 1, 16, 0, 0, 0, 0, time.UTC), s.Window.Start)
	assert.Equal(t, time.Date(2018, 1, 19, 0, 0, 0, 0, time.UTC), s.Window.End)
}

func TestLoadLayoutsFileRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "layouts.yaml", `layouts:
  - name: flat
    template: "{state}-{upgrade}"
`)
	p := writeFile(t, dir, "config.yaml", `dataset:
  root: /mnt/eulp
  state: GA
  layouts_file: layouts.yaml
scenario:
  cop: 2.5
  window_start: "2018-01-01"
  window_end: "2018-01-02 12:00:00"
`)
	c, err := Load(p)
	require.NoError(t, err)
	require.Len(t, c.Dataset.Layouts, 1)
	assert.Equal(t, "flat", c.Dataset.Layouts[0].Name)
	assert.Equal(t, filepath.Join("/mnt/eulp", "2021", "resstock_amy2018_release_1"), c.Dataset.ReleaseRoot())
	assert.Equal(t, "ga_resstock_metadata.csv", c.Files.MetadataCSV)

	st, err := c.Dataset.OpenStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &data.LocalStore{}, st)

	s, err := c.Scenario.Settings()
	require.NoError(t, err)
	assert.Equal(t, 2.5, s.COP)
	assert.Equal(t, 12, s.Window.End.Hour())
}

func TestLoadKeepsZeroAdoption(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.yaml", "scenario:\n  default_adoption_percent: 0\n")
	c, err := Load(p)
	require.NoError(t, err)
	s, err := c.Scenario.Settings()
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.AdoptionPercent)

	zero := 0.0
	out := MergeScenario(Default().Scenario, ScenarioConfig{DefaultAdoptionPercent: &zero})
	require.NotNil(t, out.DefaultAdoptionPercent)
	assert.Equal(t, 0.0, *out.DefaultAdoptionPercent)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad layout":   "dataset:\n  layouts:\n    - name: x\n      template: \"state={state}\"\n",
		"cop":          "scenario:\n  cop: -1\n",
		"adoption":     "scenario:\n  default_adoption_percent: 140\n",
		"limit":        "scenario:\n  priority_limit: 51\n",
		"window order": "scenario:\n  window_start: \"2018-02-01\"\n  window_end: \"2018-01-01\"\n",
		"window parse": "scenario:\n  window_start: \"yesterday\"\n",
		"port":         "server:\n  port: 70000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(p)
			assert.Error(t, err)
		})
	}

	p := writeFile(t, t.TempDir(), "config.yaml", "dataset: [")
	_, err := LoadUnchecked(p)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("IRA_METADATA_CSV", "/data/meta.csv")

	c, err := LoadFromEnv("")
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "localhost:6379", c.Cache.RedisAddr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Server.CORSOrigins)
	assert.Equal(t, "/data/meta.csv", c.Files.MetadataCSV)

	t.Setenv("API_PORT", "eighty")
	_, err = LoadFromEnv("")
	assert.ErrorContains(t, err, "API_PORT")
}

func TestMergeScenario(t *testing.T) {
	base := Default().Scenario
	out := MergeScenario(base, ScenarioConfig{COP: 4, WindowEnd: "2018-01-20"})
	assert.Equal(t, 4.0, out.COP)
	assert.Equal(t, "2018-01-20", out.WindowEnd)
	assert.Equal(t, base.WindowStart, out.WindowStart)
	assert.Equal(t, base.UnitScale, out.UnitScale)
}
