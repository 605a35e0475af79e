package config

import (
	"github.com/GoSim-25-26J-441/runway-core/internal/encoding"
	"github.com/GoSim-25-26J-441/runway-core/internal/evaluator"
	"github.com/GoSim-25-26J-441/runway-core/internal/search"
	"github.com/GoSim-25-26J-441/runway-core/internal/separation"
)

// DefaultScenario returns the reference scenario: four arrivals, ten
// departures, window [100, 800] and 500 s of allowed delay, solved by
// differential evolution with the reference settings.
func DefaultScenario() *Scenario {
	p := evaluator.DefaultPenalties()
	return &Scenario{
		LogLevel:      "info",
		Window:        Window{Lower: 100, Upper: 800},
		MaxDelay:      MaxDelay{Arrival: 500, Departure: 500},
		DepartureMode: string(encoding.DepartureAdvance),
		Rounding:      "half_up",
		Penalties: &Penalties{
			Window:     p.Window,
			Uniqueness: p.Uniqueness,
			Separation: p.Separation,
			Dedication: p.Dedication,
		},
		Arrivals:   defaultArrivals(),
		Departures: defaultDepartures(),
		Separation: SeparationFromTables(separation.DefaultTables()),
		Search: Search{
			Algorithm:         search.AlgorithmDE,
			Restarts:          1,
			Trials:            1,
			LogEvery:          100,
			Convergence:       "none",
			ConvergenceConfig: *search.DefaultConvergenceConfig(),
			DE:                search.DefaultDEConfig(),
			SA:                search.DefaultSAConfig(),
			BO:                search.DefaultBOConfig(),
		},
	}
}

func defaultArrivals() []Flight {
	return []Flight{
		{ID: "A1", Category: "medium", Time: 100},
		{ID: "A2", Category: "large", Time: 140},
		{ID: "A3", Category: "medium", Time: 320},
		{ID: "A4", Category: "heavy", Time: 400},
	}
}

func defaultDepartures() []Flight {
	return []Flight{
		{ID: "D1", Category: "medium", Time: 130},
		{ID: "D2", Category: "medium", Time: 180},
		{ID: "D3", Category: "light", Time: 270},
		{ID: "D4", Category: "medium", Time: 360},
		{ID: "D5", Category: "light", Time: 420},
		{ID: "D6", Category: "large", Time: 560},
		{ID: "D7", Category: "medium", Time: 630},
		{ID: "D8", Category: "medium", Time: 700},
		{ID: "D9", Category: "light", Time: 200},
		{ID: "D10", Category: "heavy", Time: 800},
	}
}
