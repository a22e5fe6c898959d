package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/livingdw67/ira-analysis/internal/config"
	"github.com/livingdw67/ira-analysis/internal/ingest"
	"github.com/livingdw67/ira-analysis/internal/scenario"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = cmdAnalyze(os.Args[2:])
	case "scenario":
		err = cmdScenario(os.Args[2:])
	case "sweep":
		err = cmdSweep(os.Args[2:])
	case "counties":
		err = cmdCounties(os.Args[2:])
	case "rank":
		err = cmdRank(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli analyze  [--config config.yaml] [--metadata sc_resstock_metadata.csv] [--out archetype_profile.csv]")
	fmt.Println("  cli scenario --county \"SC, Greenville County\" --adoption 20 [--cop 3] [--json]")
	fmt.Println("  cli sweep    [--county NAME] [--step 10]")
	fmt.Println("  cli counties")
	fmt.Println("  cli rank     [--adoption 20] [--limit 10]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - analyze picks the archetype home, fetches its interval data and writes the heat-pump profile")
	fmt.Println("  - scenario, sweep, counties and rank read the metadata CSV and the profile written by analyze")
}

// scenarioFlags are shared by the subcommands that run the scenario engine.
type scenarioFlags struct {
	cfgPath    *string
	cop        *float64
	unitScale  *float64
	start      *string
	end        *string
	fullSeries *bool
}

func addScenarioFlags(fs *flag.FlagSet) *scenarioFlags {
	return &scenarioFlags{
		cfgPath:    fs.String("config", os.Getenv("IRA_CONFIG"), "Path to YAML config (defaults when empty)"),
		cop:        fs.Float64("cop", 0, "Heat pump coefficient of performance (0 = config)"),
		unitScale:  fs.Float64("unit-scale", 0, "Divisor from kWh to reported units (0 = config)"),
		start:      fs.String("start", "", "Window start, YYYY-MM-DD (empty = config)"),
		end:        fs.String("end", "", "Window end, YYYY-MM-DD (empty = config)"),
		fullSeries: fs.Bool("full-series", false, "Ignore the window and use the whole archetype series"),
	}
}

func (f *scenarioFlags) load() (*config.Config, *scenario.Runner, error) {
	cfg, err := config.LoadFromEnv(*f.cfgPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.Scenario = config.MergeScenario(cfg.Scenario, config.ScenarioConfig{
		COP:         *f.cop,
		UnitScale:   *f.unitScale,
		WindowStart: *f.start,
		WindowEnd:   *f.end,
	})
	settings, err := cfg.Scenario.Settings()
	if err != nil {
		return nil, nil, err
	}
	if *f.fullSeries {
		settings.WholeSeries = true
	}
	r, err := ingest.LoadRunner(cfg.Files.MetadataCSV, cfg.Files.ArchetypeCSV, settings)
	if err != nil {
		return nil, nil, err
	}
	return cfg, r, nil
}

func cmdAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	cfgPath := fs.String("config", os.Getenv("IRA_CONFIG"), "Path to YAML config (defaults when empty)")
	metadata := fs.String("metadata", "", "Metadata CSV written by pull-metadata (empty = config)")
	root := fs.String("root", "", "Dataset root, s3://bucket/prefix or a local mirror (empty = config)")
	state := fs.String("state", "", "State partition (empty = config)")
	upgrade := fs.String("upgrade", "", "Upgrade partition (empty = config)")
	minSqft := fs.Float64("min-sqft", 0, "Minimum floor area for the archetype (0 = config)")
	cop := fs.Float64("cop", 0, "Heat pump COP used for the profile (0 = config)")
	allowGaps := fs.Bool("allow-gaps", false, "Accept interval data with cadence gaps")
	outPath := fs.String("out", "", "Output CSV path (empty = config)")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall timeout for object storage calls")
	_ = fs.Parse(args)

	cfg, err := config.LoadFromEnv(*cfgPath)
	if err != nil {
		return err
	}
	if *root != "" {
		cfg.Dataset.Root = *root
	}
	if *state != "" {
		cfg.Dataset.State = *state
	}
	if *upgrade != "" {
		cfg.Dataset.Upgrade = *upgrade
	}
	if *metadata != "" {
		cfg.Files.MetadataCSV = *metadata
	}
	if *outPath != "" {
		cfg.Files.ArchetypeCSV = *outPath
	}
	if *minSqft != 0 {
		cfg.Archetype.MinFloorArea = *minSqft
	}
	cfg.Scenario = config.MergeScenario(cfg.Scenario, config.ScenarioConfig{COP: *cop})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	store, err := cfg.Dataset.OpenStore(ctx)
	if err != nil {
		return err
	}

	res, err := ingest.BuildArchetype(ctx, store, ingest.ArchetypeOptions{
		MetadataCSV:    cfg.Files.MetadataCSV,
		TimeseriesRoot: cfg.Dataset.TimeseriesRoot(),
		Key:            cfg.Dataset.Key(),
		Layouts:        cfg.Dataset.Layouts,
		MinFloorArea:   cfg.Archetype.MinFloorArea,
		COP:            cfg.Scenario.COP,
		AllowGaps:      cfg.Archetype.AllowGaps || *allowGaps,
		Output:         cfg.Files.ArchetypeCSV,
	})
	if err != nil {
		return err
	}

	sim := res.Simulated
	fmt.Printf("Archetype building %s (%.0f sq ft, %s)\n", res.Building.ID, res.Building.FloorArea, res.Building.HeatingFuel)
	fmt.Printf("Layout %s -> %s\n", res.Resolution.Variant.Name, res.File)
	fmt.Printf("Wrote %d rows to %s (gaps: %d)\n", sim.Len(), cfg.Files.ArchetypeCSV, len(res.Gaps))
	return nil
}

func cmdScenario(args []string) error {
	fs := flag.NewFlagSet("scenario", flag.ExitOnError)
	sf := addScenarioFlags(fs)
	county := fs.String("county", "", "County name as in the metadata (empty = whole state)")
	adoption := fs.Float64("adoption", -1, "Adoption percent 0-100 (negative = config default)")
	limit := fs.Int("limit", 0, "High-priority rows to print (0 = config, max 50)")
	asJSON := fs.Bool("json", false, "Print the full result as JSON")
	_ = fs.Parse(args)

	_, r, err := sf.load()
	if err != nil {
		return err
	}
	pct := *adoption
	if pct < 0 {
		pct = r.Settings().AdoptionPercent
	}
	res, err := r.Run(scenario.Request{County: *county, AdoptionPercent: pct, PriorityLimit: *limit})
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	sc := res.Scenario
	fmt.Printf("County: %s  adoption: %.0f%%  COP: %.2f\n", orAll(res.County), res.AdoptionPercent, res.COP)
	fmt.Printf("Buildings: %d  addressable (gas heat): %d  converts: %d\n", res.Buildings, res.Addressable, sc.ConvertCount)
	if res.Empty != nil {
		fmt.Printf("Empty: %v\n", res.Empty)
		return nil
	}
	fmt.Printf("Peak before: %.3f at %s\n", sc.PeakBefore, sc.PeakBeforeAt.Format("2006-01-02 15:04"))
	fmt.Printf("Peak after:  %.3f at %s\n", sc.PeakAfter, sc.PeakAfterAt.Format("2006-01-02 15:04"))
	fmt.Printf("Peak growth: %+.3f (%.1f%%)\n", sc.PeakGrowthAbsolute, sc.PeakGrowthPercentage)
	fmt.Printf("Load factor: %.2f -> %.2f\n", res.Before.LoadFactor, res.After.LoadFactor)
	fmt.Println()
	fmt.Printf("High-priority buildings (%s, %d total)\n", res.PriorityMode, res.PriorityTotal)
	if res.PriorityReason != "" {
		fmt.Printf("  note: %s\n", res.PriorityReason)
	}
	fmt.Printf("%-10s %-28s %-8s %-12s %-16s %-12s\n", "bldg_id", "city", "sqft", "vintage", "income", "fuel")
	for _, p := range res.Priority {
		sqft := "-"
		if p.FloorArea != nil {
			sqft = fmt.Sprintf("%.0f", *p.FloorArea)
		}
		fmt.Printf("%-10s %-28s %-8s %-12s %-16s %-12s\n", p.ID, p.City, sqft, p.Vintage, p.Income, p.HeatingFuel)
	}
	return nil
}

func cmdSweep(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	sf := addScenarioFlags(fs)
	county := fs.String("county", "", "County name (empty = whole state)")
	step := fs.Float64("step", 10, "Adoption step in percent")
	_ = fs.Parse(args)

	_, r, err := sf.load()
	if err != nil {
		return err
	}
	points, err := r.Sweep(scenario.Request{County: *county}, *step)
	if err != nil {
		return err
	}
	fmt.Printf("County: %s\n", orAll(*county))
	fmt.Printf("%-9s %-9s %-12s %-12s %-8s\n", "adoption", "converts", "peak_after", "growth", "growth%")
	for _, p := range points {
		fmt.Printf("%-9.0f %-9d %-12.3f %-12.3f %-8.1f\n", p.AdoptionPercent, p.Converts, p.PeakAfter, p.PeakGrowthAbsolute, p.PeakGrowthPercentage)
	}
	return nil
}

func cmdCounties(args []string) error {
	fs := flag.NewFlagSet("counties", flag.ExitOnError)
	sf := addScenarioFlags(fs)
	_ = fs.Parse(args)

	cfg, r, err := sf.load()
	if err != nil {
		return err
	}
	counties := r.Counties()
	fmt.Printf("%d counties in %s\n", len(counties), cfg.Files.MetadataCSV)
	fmt.Printf("%-32s %-10s %-10s\n", "county", "buildings", "gas_heat")
	for _, c := range counties {
		fmt.Printf("%-32s %-10d %-10d\n", c.Name, c.Buildings, c.GasHeated)
	}
	return nil
}

func cmdRank(args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	sf := addScenarioFlags(fs)
	adoption := fs.Float64("adoption", -1, "Adoption percent 0-100 (negative = config default)")
	limit := fs.Int("limit", 0, "Rows to print (0 = all)")
	_ = fs.Parse(args)

	_, r, err := sf.load()
	if err != nil {
		return err
	}
	pct := *adoption
	if pct < 0 {
		pct = r.Settings().AdoptionPercent
	}
	ranked, err := r.RankCounties(scenario.Request{AdoptionPercent: pct})
	if err != nil {
		return err
	}
	if *limit > 0 && *limit < len(ranked) {
		ranked = ranked[:*limit]
	}
	fmt.Printf("%-4s %-32s %-11s %-9s %-12s %-12s %-8s\n", "rank", "county", "addressable", "converts", "peak_before", "growth", "growth%")
	for i, c := range ranked {
		fmt.Printf("%-4d %-32s %-11d %-9d %-12.3f %-12.3f %-8.1f\n",
			i+1,
			c.County,
			c.Addressable,
			c.Converts,
			c.PeakBefore,
			c.PeakGrowthAbsolute,
			c.PeakGrowthPercentage,
		)
	}
	return nil
}

func orAll(county string) string {
	if county == "" {
		return "(all)"
	}
	return county
}
