package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/livingdw67/ira-analysis/internal/data"
	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/scenario"
	"github.com/livingdw67/ira-analysis/internal/simulate"
)

// Demo:
// - Build a synthetic cold-week archetype (15-minute intervals)
// - Simulate the heat-pump substitution and write the profile CSV
// - Read it back and run one scenario over a small synthetic county
func main() {
	days := flag.Int("days", 7, "Days of synthetic interval data")
	homes := flag.Int("homes", 400, "Gas-heated homes in the synthetic county")
	adoption := flag.Float64("adoption", 20, "Adoption percent")
	cop := flag.Float64("cop", simulate.DefaultCOP, "Heat pump COP")
	outCSV := flag.String("out", "", "Optional path to keep the profile CSV (default: temp dir)")
	flag.Parse()

	series := syntheticArchetype(*days)
	sim, err := simulate.Simulate(series, *cop)
	if err != nil {
		log.Fatalf("simulate: %v", err)
	}

	path := *outCSV
	if path == "" {
		dir, err := os.MkdirTemp("", "ira-demo")
		if err != nil {
			log.Fatal(err)
		}
		defer os.RemoveAll(dir)
		path = filepath.Join(dir, "archetype_profile.csv")
	}
	if err := simulate.WriteProfileCSV(path, sim); err != nil {
		log.Fatalf("write profile: %v", err)
	}
	profile, err := data.LoadProfileCSV(path, series.BuildingID)
	if err != nil {
		log.Fatalf("read profile: %v", err)
	}
	fmt.Printf("Profile: %d intervals, cadence %s, written to %s\n", profile.Series.Len(), profile.Series.Cadence(), path)

	pop := syntheticCounty(*homes)
	r, err := scenario.NewRunner(pop, profile.Series, scenario.Settings{COP: *cop, WholeSeries: true})
	if err != nil {
		log.Fatalf("runner: %v", err)
	}
	res, err := r.Run(scenario.Request{County: "Demo County", AdoptionPercent: *adoption})
	if err != nil {
		log.Fatalf("run: %v", err)
	}

	sc := res.Scenario
	fmt.Printf("Homes: %d  gas-heated: %d  converts at %.0f%%: %d\n", res.Buildings, res.Addressable, res.AdoptionPercent, sc.ConvertCount)
	fmt.Printf("Peak before: %.3f MWh at %s\n", sc.PeakBefore, sc.PeakBeforeAt.Format("Mon 15:04"))
	fmt.Printf("Peak after:  %.3f MWh at %s\n", sc.PeakAfter, sc.PeakAfterAt.Format("Mon 15:04"))
	fmt.Printf("Growth:      %+.3f MWh (%.1f%%)\n", sc.PeakGrowthAbsolute, sc.PeakGrowthPercentage)
	fmt.Printf("Priority list: %d homes (%s)\n", res.PriorityTotal, res.PriorityMode)
}

// syntheticArchetype has an evening electric peak and a pre-dawn heating
// peak that deepens through the week.
func syntheticArchetype(days int) model.IntervalSeries {
	start := time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC)
	n := days * 96
	ts := make([]time.Time, n)
	elec := make([]float64, n)
	gas := make([]float64, n)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * 15 * time.Minute)
		h := float64(ts[i].Hour()) + float64(ts[i].Minute())/60
		day := float64(i / 96)
		elec[i] = 0.25 + 0.35*bump(h, 19, 2.5)
		gas[i] = (0.4 + 0.1*day) * (0.3 + bump(h, 6, 2))
	}
	return model.NewIntervalSeries("demo", ts, elec, gas)
}

func bump(h, center, width float64) float64 {
	d := (h - center) / width
	return math.Exp(-d * d)
}

func syntheticCounty(gasHomes int) model.Population {
	incomes := []string{"40000-49999", "60000-69999", "100000-119999", "200000+"}
	var bs []model.Building
	for i := 0; i < gasHomes; i++ {
		bs = append(bs, model.Building{
			ID:          fmt.Sprintf("%d", 1000+i),
			County:      "Demo County",
			City:        "Demo City",
			FloorArea:   1400 + float64(i%12)*150,
			Vintage:     fmt.Sprintf("%d0s", 196+i%6),
			Income:      incomes[i%len(incomes)],
			HeatingFuel: "Natural Gas",
		})
	}
	for i := 0; i < gasHomes/2; i++ {
		bs = append(bs, model.Building{ID: fmt.Sprintf("e%d", i), County: "Demo County", HeatingFuel: "Electricity", FloorArea: 1800})
	}
	return model.NewPopulation(bs, model.FieldHeatingFuel, model.FieldIncome, model.FieldCounty, model.FieldCity, model.FieldVintage, model.FieldFloorArea)
}
