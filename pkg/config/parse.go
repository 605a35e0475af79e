package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseScenarioYAML parses a Scenario from YAML bytes and validates it.
// Fields missing from the document keep their DefaultScenario values; the
// reference flights are used only when the document names no flights at
// all (inline or via flights_file).
func ParseScenarioYAML(data []byte) (*Scenario, error) {
	scenario := DefaultScenario()
	scenario.Arrivals, scenario.Departures = nil, nil

	if err := yaml.Unmarshal(data, scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario yaml: %w", err)
	}
	if len(scenario.Arrivals) == 0 && len(scenario.Departures) == 0 && scenario.FlightsFile == "" {
		scenario.Arrivals, scenario.Departures = defaultArrivals(), defaultDepartures()
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// ParseScenarioYAMLString parses a Scenario from a YAML string and validates it.
func ParseScenarioYAMLString(yamlText string) (*Scenario, error) {
	return ParseScenarioYAML([]byte(yamlText))
}

// Encode renders the scenario back to YAML
func (s *Scenario) Encode() ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenario: %w", err)
	}
	return out, nil
}
