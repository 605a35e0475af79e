// Package flights holds the immutable catalog of runway operations to be
// scheduled. Arrivals always precede departures; the dedicated-runway rule
// relies on that ordering.
package flights

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Registry is an ordered, read-only flight set
type Registry struct {
	flights  []models.Flight
	arrivals int
	index    map[string]int
}

// New validates the flights and builds a registry. The slice is copied.
func New(flights []models.Flight) (*Registry, error) {
	if len(flights) == 0 {
		return nil, &models.ConfigurationError{Field: "flights", Reason: "at least one flight must be defined"}
	}

	r := &Registry{
		flights: make([]models.Flight, len(flights)),
		index:   make(map[string]int, len(flights)),
	}
	copy(r.flights, flights)

	seenDeparture := false
	for i, f := range r.flights {
		if f.ID == "" {
			return nil, &models.ConfigurationError{Field: "flights", Reason: fmt.Sprintf("flight %d: id cannot be empty", i)}
		}
		if _, dup := r.index[f.ID]; dup {
			return nil, &models.ConfigurationError{Field: "flights", Reason: fmt.Sprintf("duplicate flight id: %s", f.ID)}
		}
		r.index[f.ID] = i

		if !f.Kind.Valid() {
			return nil, &models.ConfigurationError{Field: "flights", Reason: fmt.Sprintf("flight %s: undefined operation kind %d", f.ID, int(f.Kind))}
		}
		if !f.Category.Valid() {
			return nil, &models.ConfigurationError{Field: "flights", Reason: fmt.Sprintf("flight %s: undefined wake category %d", f.ID, int(f.Category))}
		}
		if f.Target < 0 || math.IsNaN(f.Target) || math.IsInf(f.Target, 0) {
			return nil, &models.ConfigurationError{Field: "flights", Reason: fmt.Sprintf("flight %s: target time must be a non-negative number, got %g", f.ID, f.Target)}
		}

		switch f.Kind {
		case models.Arrival:
			if seenDeparture {
				return nil, &models.ConfigurationError{Field: "flights", Reason: fmt.Sprintf("arrival %s listed after a departure", f.ID)}
			}
			r.arrivals++
		case models.Departure:
			seenDeparture = true
		}
	}

	return r, nil
}

// MustNew is like New but panics on error. Intended for static fixtures.
func MustNew(flights []models.Flight) *Registry {
	r, err := New(flights)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of flights
func (r *Registry) Len() int {
	return len(r.flights)
}

// ArrivalCount returns the size of the leading arrival block
func (r *Registry) ArrivalCount() int {
	return r.arrivals
}

// DepartureCount returns the number of departures
func (r *Registry) DepartureCount() int {
	return len(r.flights) - r.arrivals
}

// Flights returns a copy of the ordered flight set
func (r *Registry) Flights() []models.Flight {
	out := make([]models.Flight, len(r.flights))
	copy(out, r.flights)
	return out
}

// Flight returns the flight at registry index i
func (r *Registry) Flight(i int) models.Flight {
	return r.flights[i]
}

func (r *Registry) Kind(i int) models.OperationKind {
	return r.flights[i].Kind
}

func (r *Registry) Category(i int) models.WakeCategory {
	return r.flights[i].Category
}

func (r *Registry) Target(i int) float64 {
	return r.flights[i].Target
}

// IsArrivalBlock reports whether index i falls within the leading arrivals
func (r *Registry) IsArrivalBlock(i int) bool {
	return i >= 0 && i < r.arrivals
}

// Lookup returns the registry index of a flight id
func (r *Registry) Lookup(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}
