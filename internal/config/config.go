package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/livingdw67/ira-analysis/internal/data"
	"github.com/livingdw67/ira-analysis/internal/resolve"
	"github.com/livingdw67/ira-analysis/internal/scenario"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Files     FilesConfig     `yaml:"files"`
	Archetype ArchetypeConfig `yaml:"archetype"`
	Scenario  ScenarioConfig  `yaml:"scenario"`
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
}

type DatasetConfig struct {
	// Root is the end-use load profile root, "s3://bucket/prefix" or a local mirror.
	Root        string `yaml:"root"`
	ReleaseYear string `yaml:"release_year"`
	Name        string `yaml:"name"`
	State       string `yaml:"state"`
	Upgrade     string `yaml:"upgrade"`

	Region    string `yaml:"region"`
	Anonymous *bool  `yaml:"anonymous"`
	Endpoint  string `yaml:"endpoint"`

	// Optional: load layout variants from a separate YAML list.
	// If both LayoutsFile and Layouts are provided, Layouts wins.
	LayoutsFile string                  `yaml:"layouts_file"`
	Layouts     []resolve.LayoutVariant `yaml:"layouts"`
}

type FilesConfig struct {
	MetadataCSV  string `yaml:"metadata_csv"`
	ArchetypeCSV string `yaml:"archetype_csv"`
}

type ArchetypeConfig struct {
	MinFloorArea float64 `yaml:"min_floor_area"`
	AllowGaps    bool    `yaml:"allow_gaps"`
}

// ScenarioConfig holds runner defaults. A nil DefaultAdoptionPercent takes
// the built-in default; an explicit 0 is kept.
type ScenarioConfig struct {
	COP                    float64  `yaml:"cop"`
	UnitScale              float64  `yaml:"unit_scale"`
	DefaultAdoptionPercent *float64 `yaml:"default_adoption_percent"`
	PriorityLimit          int      `yaml:"priority_limit"`
	WindowStart            string   `yaml:"window_start"`
	WindowEnd              string   `yaml:"window_end"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	Env         string   `yaml:"env"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type CacheConfig struct {
	// RedisAddr selects the Redis store; empty keeps scenarios in memory.
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

// Default is the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it or fill
// defaults. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if c.Dataset.LayoutsFile != "" && len(c.Dataset.Layouts) == 0 {
		layoutsPath := c.Dataset.LayoutsFile
		if !filepath.IsAbs(layoutsPath) {
			// Prefer paths relative to the config file, fall back to cwd.
			cand := filepath.Join(filepath.Dir(path), layoutsPath)
			if _, err := os.Stat(cand); err == nil {
				layoutsPath = cand
			}
		}
		layouts, err := loadLayoutsFile(layoutsPath)
		if err != nil {
			return nil, err
		}
		c.Dataset.Layouts = layouts
	}
	return &c, nil
}

// LoadFromEnv loads a .env file if present, then the YAML config (defaults
// only when path is empty), then applies environment overrides.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	var c *Config
	if path == "" {
		c = Default()
	} else {
		var err error
		if c, err = LoadUnchecked(path); err != nil {
			return nil, err
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("API_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("API_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("IRA_DATASET_ROOT"); v != "" {
		c.Dataset.Root = v
	}
	if v := os.Getenv("IRA_METADATA_CSV"); v != "" {
		c.Files.MetadataCSV = v
	}
	if v := os.Getenv("IRA_ARCHETYPE_CSV"); v != "" {
		c.Files.ArchetypeCSV = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	d := &c.Dataset
	if d.Root == "" {
		d.Root = "s3://oedi-data-lake/nrel-pds-building-stock/end-use-load-profiles-for-us-building-stock"
	}
	if d.ReleaseYear == "" {
		d.ReleaseYear = "2021"
	}
	if d.Name == "" {
		d.Name = "resstock_amy2018_release_1"
	}
	if d.State == "" {
		d.State = "SC"
	}
	if d.Upgrade == "" {
		d.Upgrade = "0"
	}
	if d.Region == "" {
		d.Region = data.DefaultRegion
	}
	if d.Anonymous == nil {
		anon := true
		d.Anonymous = &anon
	}
	if len(d.Layouts) == 0 {
		d.Layouts = append([]resolve.LayoutVariant(nil), resolve.DefaultLayouts...)
	}

	if c.Files.MetadataCSV == "" {
		c.Files.MetadataCSV = strings.ToLower(d.State) + "_resstock_metadata.csv"
	}
	if c.Files.ArchetypeCSV == "" {
		c.Files.ArchetypeCSV = "archetype_profile.csv"
	}
	if c.Archetype.MinFloorArea == 0 {
		c.Archetype.MinFloorArea = 2500
	}

	s := &c.Scenario
	def := scenario.DefaultSettings()
	if s.COP == 0 {
		s.COP = def.COP
	}
	if s.UnitScale == 0 {
		s.UnitScale = def.UnitScale
	}
	if s.DefaultAdoptionPercent == nil {
		pct := def.AdoptionPercent
		s.DefaultAdoptionPercent = &pct
	}
	if s.PriorityLimit == 0 {
		s.PriorityLimit = def.PriorityLimit
	}
	if s.WindowStart == "" && s.WindowEnd == "" {
		s.WindowStart = def.Window.Start.Format(time.DateOnly)
		s.WindowEnd = def.Window.End.Format(time.DateOnly)
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Dataset.Root == "" {
		return errors.New("dataset.root is required")
	}
	if c.Dataset.State == "" || c.Dataset.Upgrade == "" {
		return errors.New("dataset.state and dataset.upgrade are required")
	}
	for i, l := range c.Dataset.Layouts {
		if l.Name == "" {
			return fmt.Errorf("dataset.layouts[%d].name is required", i)
		}
		if !strings.Contains(l.Template, "{state}") || !strings.Contains(l.Template, "{upgrade}") {
			return fmt.Errorf("dataset.layouts[%d] (%s): template must contain {state} and {upgrade}", i, l.Name)
		}
	}
	if c.Archetype.MinFloorArea < 0 {
		return errors.New("archetype.min_floor_area must be >= 0")
	}
	if _, err := c.Scenario.Settings(); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must be >= 0")
	}
	return nil
}

// Settings converts the scenario section for the runner.
func (s ScenarioConfig) Settings() (scenario.Settings, error) {
	out := scenario.Settings{
		COP:           s.COP,
		UnitScale:     s.UnitScale,
		PriorityLimit: s.PriorityLimit,
	}
	if s.DefaultAdoptionPercent != nil {
		out.AdoptionPercent = *s.DefaultAdoptionPercent
	}
	if !(s.COP > 0) {
		return out, fmt.Errorf("scenario.cop must be > 0, got %v", s.COP)
	}
	if !(s.UnitScale > 0) {
		return out, fmt.Errorf("scenario.unit_scale must be > 0, got %v", s.UnitScale)
	}
	if out.AdoptionPercent < 0 || out.AdoptionPercent > 100 {
		return out, fmt.Errorf("scenario.default_adoption_percent must be in [0, 100], got %v", out.AdoptionPercent)
	}
	if s.PriorityLimit < 1 || s.PriorityLimit > scenario.MaxPriorityLimit {
		return out, fmt.Errorf("scenario.priority_limit must be in [1, %d], got %d", scenario.MaxPriorityLimit, s.PriorityLimit)
	}
	var err error
	if s.WindowStart != "" {
		if out.Window.Start, err = data.ParseTimestamp(s.WindowStart); err != nil {
			return out, fmt.Errorf("scenario.window_start: %w", err)
		}
	}
	if s.WindowEnd != "" {
		if out.Window.End, err = data.ParseTimestamp(s.WindowEnd); err != nil {
			return out, fmt.Errorf("scenario.window_end: %w", err)
		}
	}
	if !out.Window.Start.IsZero() && !out.Window.End.IsZero() && out.Window.End.Before(out.Window.Start) {
		return out, errors.New("scenario.window_end is before window_start")
	}
	return out, nil
}

// ReleaseRoot is the directory of one dataset release.
func (d DatasetConfig) ReleaseRoot() string {
	return joinRoot(d.Root, d.ReleaseYear, d.Name)
}

// TimeseriesRoot is the by_state directory of the release.
func (d DatasetConfig) TimeseriesRoot() string {
	return joinRoot(d.ReleaseRoot(), "timeseries_individual_buildings", "by_state")
}

func (d DatasetConfig) Key() resolve.Key {
	return resolve.Key{State: d.State, Upgrade: d.Upgrade}
}

func (d DatasetConfig) S3() data.S3Config {
	return data.S3Config{
		Region:          d.Region,
		Anonymous:       d.Anonymous == nil || *d.Anonymous,
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Endpoint:        d.Endpoint,
	}
}

// OpenStore returns the S3 store for an s3:// root and the local store otherwise.
func (d DatasetConfig) OpenStore(ctx context.Context) (data.Store, error) {
	if data.IsRemote(d.Root) {
		s, err := data.NewS3Store(ctx, d.S3())
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return data.NewLocalStore(), nil
}

func joinRoot(root string, parts ...string) string {
	if data.IsRemote(root) {
		return "s3://" + path.Join(append([]string{data.TrimScheme(root)}, parts...)...)
	}
	return filepath.Join(append([]string{root}, parts...)...)
}

type layoutsFileWrapper struct {
	Layouts []resolve.LayoutVariant `yaml:"layouts"`
}

func loadLayoutsFile(path string) ([]resolve.LayoutVariant, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w layoutsFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return w.Layouts, nil
}

// MergeScenario overlays non-zero fields from override onto base.
// Used to apply command-line flags over the config file.
func MergeScenario(base, override ScenarioConfig) ScenarioConfig {
	out := base
	if override.COP != 0 {
		out.COP = override.COP
	}
	if override.UnitScale != 0 {
		out.UnitScale = override.UnitScale
	}
	if override.DefaultAdoptionPercent != nil {
		out.DefaultAdoptionPercent = override.DefaultAdoptionPercent
	}
	if override.PriorityLimit != 0 {
		out.PriorityLimit = override.PriorityLimit
	}
	if override.WindowStart != "" {
		out.WindowStart = override.WindowStart
	}
	if override.WindowEnd != "" {
		out.WindowEnd = override.WindowEnd
	}
	return out
}
