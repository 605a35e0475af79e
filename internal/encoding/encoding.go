// Package encoding defines the flat solution vector searched by the
// optimizer: N sequence positions, then N operation times, then N runway
// choices, one entry per registry flight.
package encoding

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/runway-core/internal/flights"
	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Runways is the number of runways a flight can be assigned to
const Runways = 2

// DepartureMode selects how a departure may deviate from its ETD
type DepartureMode string

const (
	// DepartureAdvance lets departures be pulled earlier, down to
	// ETD - MaxDelayDeparture. Deviation counts as ETD - t.
	DepartureAdvance DepartureMode = "advance"
	// DepartureDelay lets departures slip later, up to ETD + MaxDelayDeparture.
	// Deviation counts as t - ETD.
	DepartureDelay DepartureMode = "delay"
)

// Options configures the per-flight time windows
type Options struct {
	MaxDelayArrival   float64
	MaxDelayDeparture float64
	WindowLower       float64
	WindowUpper       float64
	DepartureMode     DepartureMode
	Rounder           Rounder
}

// DefaultOptions returns the reference window: [100, 800] with 500 s of
// allowed deviation in either direction.
func DefaultOptions() Options {
	return Options{
		MaxDelayArrival:   500,
		MaxDelayDeparture: 500,
		WindowLower:       100,
		WindowUpper:       800,
		DepartureMode:     DepartureAdvance,
		Rounder:           RoundHalfUp,
	}
}

// Candidate is a decoded solution vector
type Candidate struct {
	Positions []int
	Times     []float64
	Runways   []int
}

// Encoding maps between flat vectors and candidates for one registry
type Encoding struct {
	n       int
	opts    Options
	bounds  models.Bounds
	rounder Rounder
}

// New computes the box bounds for every vector component
func New(reg *flights.Registry, opts Options) (*Encoding, error) {
	if reg == nil {
		return nil, &models.ConfigurationError{Field: "registry", Reason: "registry is nil"}
	}
	if opts.MaxDelayArrival < 0 || opts.MaxDelayDeparture < 0 {
		return nil, &models.ConfigurationError{Field: "max_delay", Reason: "maximum delays cannot be negative"}
	}
	if opts.WindowLower > opts.WindowUpper {
		return nil, &models.ConfigurationError{Field: "window", Reason: fmt.Sprintf("lower %g > upper %g", opts.WindowLower, opts.WindowUpper)}
	}
	if opts.DepartureMode == "" {
		opts.DepartureMode = DepartureAdvance
	}
	if opts.DepartureMode != DepartureAdvance && opts.DepartureMode != DepartureDelay {
		return nil, &models.ConfigurationError{Field: "departure_mode", Reason: fmt.Sprintf("unknown mode %q (must be advance or delay)", opts.DepartureMode)}
	}
	rounder := opts.Rounder
	if rounder == nil {
		rounder = RoundHalfUp
	}

	n := reg.Len()
	bounds := make(models.Bounds, 3*n)
	for i := 0; i < n; i++ {
		bounds[i] = models.Bound{Lower: 0, Upper: float64(n - 1)}
		bounds[2*n+i] = models.Bound{Lower: 0, Upper: Runways - 1}

		f := reg.Flight(i)
		var tb models.Bound
		switch {
		case f.Kind == models.Arrival:
			tb = models.Bound{Lower: f.Target, Upper: math.Min(f.Target+opts.MaxDelayArrival, opts.WindowUpper)}
		case opts.DepartureMode == DepartureAdvance:
			tb = models.Bound{Lower: math.Max(f.Target-opts.MaxDelayDeparture, opts.WindowLower), Upper: f.Target}
		default:
			tb = models.Bound{Lower: f.Target, Upper: math.Min(f.Target+opts.MaxDelayDeparture, opts.WindowUpper)}
		}
		if tb.Lower > tb.Upper {
			return nil, &models.ConfigurationError{
				Field:  "window",
				Reason: fmt.Sprintf("flight %s has an empty time window [%g, %g]", f.ID, tb.Lower, tb.Upper),
			}
		}
		bounds[n+i] = tb
	}

	return &Encoding{n: n, opts: opts, bounds: bounds, rounder: rounder}, nil
}

// Flights returns N
func (e *Encoding) Flights() int {
	return e.n
}

// Dimension returns the vector length, 3N
func (e *Encoding) Dimension() int {
	return 3 * e.n
}

// Options returns the options the encoding was built with
func (e *Encoding) Options() Options {
	return e.opts
}

// Bounds returns a copy of the flat box-constraint list
func (e *Encoding) Bounds() models.Bounds {
	out := make(models.Bounds, len(e.bounds))
	copy(out, e.bounds)
	return out
}

// TimeBound returns the time window of flight i
func (e *Encoding) TimeBound(i int) models.Bound {
	return e.bounds[e.n+i]
}

// MaxTotalDelay is the largest total deviation any in-box vector can reach
func (e *Encoding) MaxTotalDelay() float64 {
	total := 0.0
	for i := 0; i < e.n; i++ {
		total += e.bounds[e.n+i].Width()
	}
	return total
}

// MaxFlightDelay is the widest time window of any single flight
func (e *Encoding) MaxFlightDelay() float64 {
	widest := 0.0
	for i := 0; i < e.n; i++ {
		widest = max(widest, e.bounds[e.n+i].Width())
	}
	return widest
}

// Clip returns x projected into the box
func (e *Encoding) Clip(x []float64) []float64 {
	return e.bounds.Clip(x)
}

// Decode splits x into its three segments, rounding positions and runways
func (e *Encoding) Decode(x []float64) (*Candidate, error) {
	if len(x) != e.Dimension() {
		return nil, &models.ConfigurationError{
			Field:  "vector",
			Reason: fmt.Sprintf("length %d does not match %d flights (want %d)", len(x), e.n, e.Dimension()),
		}
	}

	c := &Candidate{
		Positions: make([]int, e.n),
		Times:     make([]float64, e.n),
		Runways:   make([]int, e.n),
	}
	for i := 0; i < e.n; i++ {
		c.Positions[i] = e.rounder(x[i])
		c.Times[i] = x[e.n+i]
		c.Runways[i] = e.rounder(x[2*e.n+i])
	}
	return c, nil
}

// Encode is the inverse of Decode for integral positions and runways
func (e *Encoding) Encode(c *Candidate) ([]float64, error) {
	if len(c.Positions) != e.n || len(c.Times) != e.n || len(c.Runways) != e.n {
		return nil, &models.ConfigurationError{Field: "candidate", Reason: fmt.Sprintf("segments must all have length %d", e.n)}
	}
	x := make([]float64, e.Dimension())
	for i := 0; i < e.n; i++ {
		x[i] = float64(c.Positions[i])
		x[e.n+i] = c.Times[i]
		x[2*e.n+i] = float64(c.Runways[i])
	}
	return x, nil
}
