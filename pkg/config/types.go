package config

import (
	"github.com/GoSim-25-26J-441/runway-core/internal/search"
)

// Scenario is the complete description of one scheduling run
type Scenario struct {
	LogLevel      string      `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFile       string      `yaml:"log_file,omitempty"`
	Window        Window      `yaml:"window"`
	MaxDelay      MaxDelay    `yaml:"max_delay"`
	DepartureMode string      `yaml:"departure_mode" validate:"omitempty,oneof=advance delay"`
	Rounding      string      `yaml:"rounding" validate:"omitempty,oneof=half_up half_even"`
	Penalties     *Penalties  `yaml:"penalties,omitempty"`
	Arrivals      []Flight    `yaml:"arrivals" validate:"dive"`
	Departures    []Flight    `yaml:"departures" validate:"dive"`
	FlightsFile   string      `yaml:"flights_file,omitempty"`
	Separation    *Separation `yaml:"separation,omitempty"`
	Search        Search      `yaml:"search"`
	Output        Output      `yaml:"output"`
}

// Window is the global absolute time window in seconds
type Window struct {
	Lower float64 `yaml:"lower" validate:"gte=0"`
	Upper float64 `yaml:"upper" validate:"gtefield=Lower"`
}

// MaxDelay bounds how far a flight may move from its target
type MaxDelay struct {
	Arrival   float64 `yaml:"arrival" validate:"gte=0"`
	Departure float64 `yaml:"departure" validate:"gte=0"`
}

// Flight is one inline flight entry. Time is the ETA for arrivals and the
// ETD for departures.
type Flight struct {
	ID       string  `yaml:"id" validate:"required"`
	Category string  `yaml:"category" validate:"required"`
	Time     float64 `yaml:"time" validate:"gte=0"`
}

// Penalties overrides the evaluator's penalty constants
type Penalties struct {
	Window     float64 `yaml:"window" validate:"gt=0"`
	Uniqueness float64 `yaml:"uniqueness" validate:"gt=0"`
	Separation float64 `yaml:"separation" validate:"gt=0"`
	Dedication float64 `yaml:"dedication" validate:"gt=0"`
}

// Separation holds the four 4x4 wake separation tables, rows indexed by the
// leading category and columns by the trailing one
type Separation struct {
	ArrArr [][]float64 `yaml:"arr_arr"`
	ArrDep [][]float64 `yaml:"arr_dep"`
	DepArr [][]float64 `yaml:"dep_arr"`
	DepDep [][]float64 `yaml:"dep_dep"`
}

// Search configures the optimizer and the restart/trial schedule
type Search struct {
	Algorithm string `yaml:"algorithm" validate:"omitempty,oneof=de sa bo"`
	Seed      int64  `yaml:"seed"`
	Workers   int    `yaml:"workers" validate:"gte=0"`
	// Restarts chains runs, each warm-started from the previous best
	Restarts int `yaml:"restarts" validate:"gte=1"`
	// Trials runs independent seeds per restart and keeps the best
	Trials   int `yaml:"trials" validate:"gte=1"`
	LogEvery int `yaml:"log_every" validate:"gte=0"`

	Convergence       string                   `yaml:"convergence" validate:"omitempty,oneof=none no_improvement plateau combined"`
	ConvergenceConfig search.ConvergenceConfig `yaml:"convergence_config"`

	DE search.DEConfig `yaml:"de"`
	SA search.SAConfig `yaml:"sa"`
	BO search.BOConfig `yaml:"bo"`
}

// Output names the files written at the end of a run
type Output struct {
	Solution  string `yaml:"solution,omitempty"`
	WarmStart string `yaml:"warm_start,omitempty"`
	CSV       string `yaml:"csv,omitempty"`
}
