package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// OperationKind distinguishes arrivals from departures
type OperationKind int

const (
	Arrival OperationKind = iota
	Departure
)

// String returns the lowercase name of the kind
func (k OperationKind) String() string {
	switch k {
	case Arrival:
		return "arrival"
	case Departure:
		return "departure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is a declared operation kind
func (k OperationKind) Valid() bool {
	return k == Arrival || k == Departure
}

// WakeCategory is the aircraft size class used for wake separation lookups.
// The numeric value is the row/column index into a separation table.
type WakeCategory int

const (
	Light WakeCategory = iota
	Medium
	Large
	Heavy
)

// NumWakeCategories is the number of declared wake categories
const NumWakeCategories = 4

var wakeCategoryNames = [NumWakeCategories]string{"light", "medium", "large", "heavy"}

// String returns the lowercase name of the category
func (c WakeCategory) String() string {
	if c.Valid() {
		return wakeCategoryNames[c]
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Valid reports whether c is a declared wake category
func (c WakeCategory) Valid() bool {
	return c >= Light && c <= Heavy
}

// ParseWakeCategory parses a category name (case-insensitive). Single-letter
// forms L, M, G (large) and H are accepted as well.
func ParseWakeCategory(s string) (WakeCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light", "l":
		return Light, nil
	case "medium", "m":
		return Medium, nil
	case "large", "g":
		return Large, nil
	case "heavy", "h":
		return Heavy, nil
	default:
		return 0, &ConfigurationError{Field: "category", Reason: fmt.Sprintf("unknown wake category %q", s)}
	}
}

// Flight is a single runway operation. Target is the ETA for arrivals and
// the ETD for departures, in seconds since the scenario epoch.
type Flight struct {
	ID       string        `json:"id"`
	Kind     OperationKind `json:"kind"`
	Category WakeCategory  `json:"category"`
	Target   float64       `json:"target"`
}

// Bound is a closed interval constraint on one vector component
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Width returns Upper - Lower
func (b Bound) Width() float64 {
	return b.Upper - b.Lower
}

// Clip projects v into the interval
func (b Bound) Clip(v float64) float64 {
	if v < b.Lower {
		return b.Lower
	}
	if v > b.Upper {
		return b.Upper
	}
	return v
}

// Bounds is a flat box-constraint list, one entry per vector component
type Bounds []Bound

// Validate checks that every interval is finite and non-empty
func (bs Bounds) Validate() error {
	if len(bs) == 0 {
		return &ConfigurationError{Field: "bounds", Reason: "bounds list is empty"}
	}
	for i, b := range bs {
		if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) || math.IsInf(b.Lower, 0) || math.IsInf(b.Upper, 0) {
			return &ConfigurationError{Field: "bounds", Reason: fmt.Sprintf("component %d has a non-finite bound", i)}
		}
		if b.Lower > b.Upper {
			return &ConfigurationError{Field: "bounds", Reason: fmt.Sprintf("component %d: lower %g > upper %g", i, b.Lower, b.Upper)}
		}
	}
	return nil
}

// Clip returns a copy of x projected into the box
func (bs Bounds) Clip(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if i < len(bs) {
			out[i] = bs[i].Clip(v)
		} else {
			out[i] = v
		}
	}
	return out
}

// Diagnostics counts the constraint violations found in one evaluation
type Diagnostics struct {
	PositionConflicts    int `json:"position_conflicts"`
	WindowViolations     int `json:"window_violations"`
	SeparationConflicts  int `json:"separation_conflicts"`
	DedicationViolations int `json:"dedication_violations"`
}

// Feasible reports whether no constraint was violated
func (d Diagnostics) Feasible() bool {
	return d.PositionConflicts == 0 && d.WindowViolations == 0 &&
		d.SeparationConflicts == 0 && d.DedicationViolations == 0
}

// Breakdown is the full result of evaluating a candidate vector
type Breakdown struct {
	TotalDelay float64 `json:"total_delay"`
	Penalty    float64 `json:"penalty"`
	Cost       float64 `json:"cost"`
	Diagnostics
}

// Assignment is one decoded schedule row
type Assignment struct {
	Index    int           `json:"index"`
	FlightID string        `json:"flight_id"`
	Kind     OperationKind `json:"kind"`
	Category WakeCategory  `json:"category"`
	Target   float64       `json:"target"`
	Runway   int           `json:"runway"`
	Position int           `json:"position"`
	Sequence int           `json:"sequence"` // order on the runway by time
	Time     float64       `json:"time"`
	Delay    float64       `json:"delay"`
}

// SeriesPoint is one sample of a per-generation series
type SeriesPoint struct {
	Generation int       `json:"generation"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// Aggregation holds summary statistics over a series
type Aggregation struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
}

// MetricsSummary is a snapshot of everything a collector has seen
type MetricsSummary struct {
	StartTime   time.Time               `json:"start_time"`
	EndTime     time.Time               `json:"end_time"`
	Duration    time.Duration           `json:"duration"`
	Evaluations int64                   `json:"evaluations"`
	Feasible    int64                   `json:"feasible"`
	Violations  Diagnostics             `json:"violations"`
	Series      map[string]*Aggregation `json:"series,omitempty"`
}
