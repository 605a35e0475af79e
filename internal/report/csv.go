package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

var csvHeader = []string{
	"flight", "kind", "category", "target",
	"runway", "position", "sequence", "time", "delay",
}

// EncodeCSV writes the schedule in registry order
func EncodeCSV(w io.Writer, schedule []models.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, a := range schedule {
		row := []string{
			a.FlightID,
			a.Kind.String(),
			a.Category.String(),
			ftoa(a.Target),

			itoa(a.Runway),
			itoa(a.Position),
			itoa(a.Sequence),
			ftoa(a.Time),
			ftoa(a.Delay),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the schedule to path, creating parent directories
func WriteCSV(path string, schedule []models.Assignment) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := EncodeCSV(f, schedule); err != nil {
		return err
	}
	return f.Close()
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
