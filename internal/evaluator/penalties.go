package evaluator

import (
	"fmt"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Penalties are the fixed additive costs per violation.
//
// Window and Separation are charged once per offending flight or pair,
// Dedication once per arrival on the departures-only runway, and Uniqueness
// once per vector however many pairs collide.
type Penalties struct {
	Window     float64 `yaml:"window"`
	Uniqueness float64 `yaml:"uniqueness"`
	Separation float64 `yaml:"separation"`
	Dedication float64 `yaml:"dedication"`
}

// DefaultPenalties returns constants ordered safety > structure > window
func DefaultPenalties() Penalties {
	return Penalties{
		Window:     1000,
		Uniqueness: 20000,
		Separation: 40000,
		Dedication: 40000,
	}
}

// Validate checks the severity ordering. maxTotalDelay is the largest delay
// sum reachable inside the search box; the uniqueness penalty must be at
// least twice that. maxFlightDelay is the widest single time window, which
// the window penalty must exceed so that leaving a window never pays off.
func (p Penalties) Validate(maxTotalDelay, maxFlightDelay float64) error {
	if p.Window <= 0 {
		return &models.ConfigurationError{Field: "penalties.window", Reason: "must be positive"}
	}
	if p.Window <= maxFlightDelay {
		return &models.ConfigurationError{Field: "penalties.window", Reason: fmt.Sprintf("must exceed the widest flight window (%g <= %g)", p.Window, maxFlightDelay)}
	}
	if p.Uniqueness <= p.Window {
		return &models.ConfigurationError{Field: "penalties.uniqueness", Reason: fmt.Sprintf("must exceed the window penalty (%g <= %g)", p.Uniqueness, p.Window)}
	}
	if p.Uniqueness < 2*maxTotalDelay {
		return &models.ConfigurationError{Field: "penalties.uniqueness", Reason: fmt.Sprintf("must be at least twice the maximum total delay (%g < %g)", p.Uniqueness, 2*maxTotalDelay)}
	}
	if p.Separation <= p.Uniqueness {
		return &models.ConfigurationError{Field: "penalties.separation", Reason: fmt.Sprintf("must exceed the uniqueness penalty (%g <= %g)", p.Separation, p.Uniqueness)}
	}
	if p.Dedication <= p.Uniqueness {
		return &models.ConfigurationError{Field: "penalties.dedication", Reason: fmt.Sprintf("must exceed the uniqueness penalty (%g <= %g)", p.Dedication, p.Uniqueness)}
	}
	return nil
}
