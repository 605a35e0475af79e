package config

import (
	"fmt"

	"github.com/GoSim-25-26J-441/runway-core/internal/encoding"
	"github.com/GoSim-25-26J-441/runway-core/internal/evaluator"
	"github.com/GoSim-25-26J-441/runway-core/internal/separation"
	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Flights returns the flight set, arrivals first. A flights_file replaces
// the inline lists.
func (s *Scenario) Flights() ([]models.Flight, error) {
	if s.FlightsFile != "" {
		return LoadFlightsJSON(s.FlightsFile)
	}

	out := make([]models.Flight, 0, len(s.Arrivals)+len(s.Departures))
	for _, f := range s.Arrivals {
		mf, err := f.toModel(models.Arrival)
		if err != nil {
			return nil, err
		}
		out = append(out, mf)
	}
	for _, f := range s.Departures {
		mf, err := f.toModel(models.Departure)
		if err != nil {
			return nil, err
		}
		out = append(out, mf)
	}
	return out, nil
}

func (f Flight) toModel(kind models.OperationKind) (models.Flight, error) {
	cat, err := models.ParseWakeCategory(f.Category)
	if err != nil {
		return models.Flight{}, fmt.Errorf("flight %s: %w", f.ID, err)
	}
	return models.Flight{ID: f.ID, Kind: kind, Category: cat, Target: f.Time}, nil
}

// SeparationTables converts the configured tables; nil means the reference
// tables
func (s *Scenario) SeparationTables() (separation.Tables, error) {
	if s.Separation == nil {
		return separation.DefaultTables(), nil
	}
	if err := validateSeparation(s.Separation); err != nil {
		return separation.Tables{}, err
	}
	return separation.Tables{
		ArrArr: toTable(s.Separation.ArrArr),
		ArrDep: toTable(s.Separation.ArrDep),
		DepArr: toTable(s.Separation.DepArr),
		DepDep: toTable(s.Separation.DepDep),
	}, nil
}

func toTable(rows [][]float64) separation.Table {
	var t separation.Table
	for i := range t {
		copy(t[i][:], rows[i])
	}
	return t
}

// SeparationFromTables converts tables into their YAML form
func SeparationFromTables(t separation.Tables) *Separation {
	return &Separation{
		ArrArr: fromTable(t.ArrArr),
		ArrDep: fromTable(t.ArrDep),
		DepArr: fromTable(t.DepArr),
		DepDep: fromTable(t.DepDep),
	}
}

func fromTable(t separation.Table) [][]float64 {
	rows := make([][]float64, len(t))
	for i := range t {
		rows[i] = append([]float64(nil), t[i][:]...)
	}
	return rows
}

// EncodingOptions returns the time-window options of the scenario
func (s *Scenario) EncodingOptions() (encoding.Options, error) {
	rounder, ok := encoding.RounderByName(s.Rounding)
	if !ok {
		return encoding.Options{}, &models.ConfigurationError{Field: "rounding", Reason: fmt.Sprintf("unknown rounding %q", s.Rounding)}
	}
	mode := encoding.DepartureMode(s.DepartureMode)
	if mode == "" {
		mode = encoding.DepartureAdvance
	}
	return encoding.Options{
		MaxDelayArrival:   s.MaxDelay.Arrival,
		MaxDelayDeparture: s.MaxDelay.Departure,
		WindowLower:       s.Window.Lower,
		WindowUpper:       s.Window.Upper,
		DepartureMode:     mode,
		Rounder:           rounder,
	}, nil
}

// PenaltyConstants returns the configured penalties, or the defaults
func (s *Scenario) PenaltyConstants() evaluator.Penalties {
	if s.Penalties == nil {
		return evaluator.DefaultPenalties()
	}
	return evaluator.Penalties{
		Window:     s.Penalties.Window,
		Uniqueness: s.Penalties.Uniqueness,
		Separation: s.Penalties.Separation,
		Dedication: s.Penalties.Dedication,
	}
}
