package simulate

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/livingdw67/ira-analysis/internal/model"
	"github.com/livingdw67/ira-analysis/internal/resolve"
)

// ProfileHeader is the column layout of the simulator artifact. Keep it stable;
// the API server reads this file back.
var ProfileHeader = []string{
	resolve.ColTimestamp,
	resolve.ColElectricity,
	resolve.ColGasHeating,
	resolve.ColAddedLoad,
	resolve.ColTotalLoadAfter,
	resolve.ColBuildingID,
}

// WriteProfileCSV writes sim to path, fully replacing any existing file.
// The rows go to a temp file in the same directory which is then renamed.
func WriteProfileCSV(path string, sim *model.SimulatedSeries) error {
	if sim == nil {
		return fmt.Errorf("simulated series is nil")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := writeProfile(tmp, sim); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeProfile(f *os.File, sim *model.SimulatedSeries) error {
	w := csv.NewWriter(f)
	if err := w.Write(ProfileHeader); err != nil {
		return err
	}
	for i, t := range sim.Timestamps {
		row := []string{
			t.Format(time.RFC3339),
			fmtFloat(sim.Electricity[i]),
			fmtFloat(sim.GasHeating[i]),
			fmtFloat(sim.AddedLoad[i]),
			fmtFloat(sim.TotalLoadAfter[i]),
			sim.BuildingID,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
