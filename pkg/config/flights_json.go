package config

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// LoadFlightsJSON reads a flight table. The document has "arrivals" and
// "departures" members, each either an array of flight objects or an object
// keyed by flight id:
//
//	{"arrivals": {"A1": {"type": "M", "ETA": 100}},
//	 "departures": [{"id": "D1", "category": "medium", "ETD": 130}]}
//
// Category may be given as "category" or "type"; the target time as "time",
// "ETA"/"eta" or "ETD"/"etd".
func LoadFlightsJSON(path string) ([]models.Flight, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flights file %s: %w", path, err)
	}
	flights, err := ParseFlightsJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flights, nil
}

// ParseFlightsJSON parses a flight table from JSON bytes. Arrivals come
// first in the result, each block in document order.
func ParseFlightsJSON(data []byte) ([]models.Flight, error) {
	if !gjson.ValidBytes(data) {
		return nil, &models.ConfigurationError{Field: "flights_file", Reason: "invalid JSON"}
	}
	doc := gjson.ParseBytes(data)

	arrivals, err := parseFlightBlock(doc.Get("arrivals"), models.Arrival)
	if err != nil {
		return nil, err
	}
	departures, err := parseFlightBlock(doc.Get("departures"), models.Departure)
	if err != nil {
		return nil, err
	}
	if len(arrivals)+len(departures) == 0 {
		return nil, &models.ConfigurationError{Field: "flights_file", Reason: "no arrivals or departures found"}
	}
	return append(arrivals, departures...), nil
}

func parseFlightBlock(block gjson.Result, kind models.OperationKind) ([]models.Flight, error) {
	if !block.Exists() {
		return nil, nil
	}
	if !block.IsArray() && !block.IsObject() {
		return nil, &models.ConfigurationError{Field: "flights_file", Reason: fmt.Sprintf("%s must be an array or object", kind)}
	}

	var (
		out []models.Flight
		err error
	)
	block.ForEach(func(key, v gjson.Result) bool {
		var f models.Flight
		f, err = parseFlight(key, v, kind)
		if err != nil {
			return false
		}
		out = append(out, f)
		return true
	})
	return out, err
}

func parseFlight(key, v gjson.Result, kind models.OperationKind) (models.Flight, error) {
	id := v.Get("id").String()
	if id == "" && key.Type == gjson.String {
		id = key.String()
	}
	if id == "" {
		return models.Flight{}, &models.ConfigurationError{Field: "flights_file", Reason: fmt.Sprintf("%s entry without id", kind)}
	}

	catField := firstOf(v, "category", "type")
	if !catField.Exists() {
		return models.Flight{}, &models.ConfigurationError{Field: "flights_file", Reason: fmt.Sprintf("flight %s has no category", id)}
	}
	category, err := models.ParseWakeCategory(catField.String())
	if err != nil {
		return models.Flight{}, fmt.Errorf("flight %s: %w", id, err)
	}

	var timeField gjson.Result
	if kind == models.Arrival {
		timeField = firstOf(v, "time", "ETA", "eta")
	} else {
		timeField = firstOf(v, "time", "ETD", "etd")
	}
	if timeField.Type != gjson.Number {
		return models.Flight{}, &models.ConfigurationError{Field: "flights_file", Reason: fmt.Sprintf("flight %s has no numeric target time", id)}
	}

	return models.Flight{ID: id, Kind: kind, Category: category, Target: timeField.Float()}, nil
}

func firstOf(v gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}
