package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// LoadScenario loads and parses a scenario file. A relative flights_file is
// resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	scenario, err := ParseScenarioYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	if scenario.FlightsFile != "" && !filepath.IsAbs(scenario.FlightsFile) {
		scenario.FlightsFile = filepath.Join(filepath.Dir(path), scenario.FlightsFile)
	}
	return scenario, nil
}

// validateScenario runs the struct tag checks, then the cross-field checks
// the tags cannot express
func validateScenario(s *Scenario) error {
	if err := structValidator().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &models.ConfigurationError{
				Field:  strings.TrimPrefix(fe.Namespace(), "Scenario."),
				Reason: fmt.Sprintf("failed %q check (value %v)", fe.Tag(), fe.Value()),
			}
		}
		return err
	}

	if err := validateFlights(s); err != nil {
		return fmt.Errorf("flights validation failed: %w", err)
	}

	if s.Separation != nil {
		if err := validateSeparation(s.Separation); err != nil {
			return fmt.Errorf("separation validation failed: %w", err)
		}
	}

	if s.Search.DE.MutationMin > s.Search.DE.MutationMax {
		return &models.ConfigurationError{Field: "search.de.mutation_min", Reason: "must not exceed mutation_max"}
	}
	if s.Search.SA.FinalTemp >= s.Search.SA.InitialTemp {
		return &models.ConfigurationError{Field: "search.sa.final_temp", Reason: "must be below initial_temp"}
	}
	if s.Search.BO.Calls < s.Search.BO.InitialPoints {
		return &models.ConfigurationError{Field: "search.bo.calls", Reason: "must be at least initial_points"}
	}

	return nil
}

// validateFlights checks ids and categories of the inline flights
func validateFlights(s *Scenario) error {
	ids := make(map[string]bool, len(s.Arrivals)+len(s.Departures))
	check := func(list string, fs []Flight) error {
		for i, f := range fs {
			if ids[f.ID] {
				return &models.ConfigurationError{Field: fmt.Sprintf("%s[%d].id", list, i), Reason: fmt.Sprintf("duplicate flight id %s", f.ID)}
			}
			ids[f.ID] = true
			if _, err := models.ParseWakeCategory(f.Category); err != nil {
				return fmt.Errorf("%s[%d]: %w", list, i, err)
			}
		}
		return nil
	}
	if err := check("arrivals", s.Arrivals); err != nil {
		return err
	}
	return check("departures", s.Departures)
}

// validateSeparation checks that every provided table is 4x4 and non-negative
func validateSeparation(sep *Separation) error {
	tables := []struct {
		name  string
		table [][]float64
	}{
		{"arr_arr", sep.ArrArr},
		{"arr_dep", sep.ArrDep},
		{"dep_arr", sep.DepArr},
		{"dep_dep", sep.DepDep},
	}
	for _, t := range tables {
		if len(t.table) != models.NumWakeCategories {
			return &models.ConfigurationError{Field: "separation." + t.name, Reason: fmt.Sprintf("expected %d rows, got %d", models.NumWakeCategories, len(t.table))}
		}
		for i, row := range t.table {
			if len(row) != models.NumWakeCategories {
				return &models.ConfigurationError{Field: "separation." + t.name, Reason: fmt.Sprintf("row %d has %d columns", i, len(row))}
			}
			for j, v := range row {
				if v < 0 {
					return &models.ConfigurationError{Field: "separation." + t.name, Reason: fmt.Sprintf("gap [%d][%d] is negative", i, j)}
				}
			}
		}
	}
	return nil
}
