// Package evaluator scores candidate schedules. Every constraint violation
// becomes an additive penalty, so the cost is finite for any vector of the
// right length and the search can treat the whole box as valid.
package evaluator

import (
	"cmp"
	"slices"

	"github.com/GoSim-25-26J-441/runway-core/internal/encoding"
	"github.com/GoSim-25-26J-441/runway-core/internal/flights"
	"github.com/GoSim-25-26J-441/runway-core/internal/separation"
	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// DepartureOnlyRunway is the runway reserved for departures
const DepartureOnlyRunway = 1

// Recorder receives the violation counts of every evaluation. It must be
// safe for concurrent use.
type Recorder interface {
	RecordEvaluation(d models.Diagnostics)
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithRecorder attaches a diagnostics sink
func WithRecorder(r Recorder) Option {
	return func(e *Evaluator) {
		e.recorder = r
	}
}

// Evaluator computes cost = total delay + penalties. It keeps no mutable
// state and may be shared by concurrent goroutines.
type Evaluator struct {
	reg       *flights.Registry
	sep       *separation.Matrix
	enc       *encoding.Encoding
	penalties Penalties
	recorder  Recorder

	// per-flight limits, precomputed
	earliest []float64
	latest   []float64
}

// New wires an evaluator. The penalty constants are checked against the
// encoding's maximum reachable delays.
func New(reg *flights.Registry, sep *separation.Matrix, enc *encoding.Encoding, p Penalties, opts ...Option) (*Evaluator, error) {
	if reg == nil || sep == nil || enc == nil {
		return nil, &models.ConfigurationError{Field: "evaluator", Reason: "registry, separation model and encoding are required"}
	}
	if enc.Flights() != reg.Len() {
		return nil, &models.ConfigurationError{Field: "evaluator", Reason: "encoding was built for a different registry"}
	}
	if err := p.Validate(enc.MaxTotalDelay(), enc.MaxFlightDelay()); err != nil {
		return nil, err
	}

	e := &Evaluator{
		reg:       reg,
		sep:       sep,
		enc:       enc,
		penalties: p,
		earliest:  make([]float64, reg.Len()),
		latest:    make([]float64, reg.Len()),
	}
	for _, opt := range opts {
		opt(e)
	}

	eo := enc.Options()
	for i := 0; i < reg.Len(); i++ {
		target := reg.Target(i)
		switch {
		case reg.Kind(i) == models.Arrival:
			e.earliest[i], e.latest[i] = target, target+eo.MaxDelayArrival
		case eo.DepartureMode == encoding.DepartureDelay:
			e.earliest[i], e.latest[i] = target, target+eo.MaxDelayDeparture
		default:
			e.earliest[i], e.latest[i] = target-eo.MaxDelayDeparture, target
		}
	}
	return e, nil
}

// Dimension returns the expected vector length
func (e *Evaluator) Dimension() int {
	return e.enc.Dimension()
}

// Bounds returns the search box of the underlying encoding
func (e *Evaluator) Bounds() models.Bounds {
	return e.enc.Bounds()
}

// Penalties returns the configured penalty constants
func (e *Evaluator) Penalties() Penalties {
	return e.penalties
}

// Cost returns the scalar objective. It panics if x has the wrong length,
// which the search driver rules out before the first call.
func (e *Evaluator) Cost(x []float64) float64 {
	b, err := e.Evaluate(x)
	if err != nil {
		panic(err)
	}
	return b.Cost
}

// Evaluate decodes x and returns the delay, penalty and violation counts
func (e *Evaluator) Evaluate(x []float64) (models.Breakdown, error) {
	c, err := e.enc.Decode(x)
	if err != nil {
		return models.Breakdown{}, err
	}

	var b models.Breakdown

	if conflicts := e.positionConflicts(c); conflicts > 0 {
		b.PositionConflicts = conflicts
		b.Penalty += e.penalties.Uniqueness
	}

	for i := range c.Times {
		b.TotalDelay += e.delay(i, c.Times[i])
		if !e.inWindow(i, c.Times[i]) {
			b.WindowViolations++
			b.Penalty += e.penalties.Window
		}
	}

	for _, seq := range e.runwaySequences(c) {
		for k := 1; k < len(seq); k++ {
			pred, succ := seq[k-1], seq[k]
			gap := e.sep.MustMinimumGap(e.reg.Kind(pred), e.reg.Kind(succ), e.reg.Category(pred), e.reg.Category(succ))
			if c.Times[pred]+gap > c.Times[succ] {
				b.SeparationConflicts++
				b.Penalty += e.penalties.Separation
			}
		}
	}

	if runwaysInUse(c) > 1 {
		for i, r := range c.Runways {
			if r == DepartureOnlyRunway && e.reg.IsArrivalBlock(i) {
				b.DedicationViolations++
				b.Penalty += e.penalties.Dedication
			}
		}
	}

	b.Cost = b.TotalDelay + b.Penalty
	if e.recorder != nil {
		e.recorder.RecordEvaluation(b.Diagnostics)
	}
	return b, nil
}

// delay is the deviation of flight i from its target in the permitted
// direction; deviation in the other direction is a window violation and
// contributes no delay.
func (e *Evaluator) delay(i int, t float64) float64 {
	target := e.reg.Target(i)
	if e.reg.Kind(i) == models.Departure && e.enc.Options().DepartureMode != encoding.DepartureDelay {
		return max(0, target-t)
	}
	return max(0, t-target)
}

func (e *Evaluator) inWindow(i int, t float64) bool {
	return t >= e.earliest[i] && t <= e.latest[i]
}

// positionConflicts returns N minus the number of distinct
// (position, runway) pairs
func (e *Evaluator) positionConflicts(c *encoding.Candidate) int {
	type slot struct{ position, runway int }
	seen := make(map[slot]struct{}, len(c.Positions))
	for i := range c.Positions {
		seen[slot{c.Positions[i], c.Runways[i]}] = struct{}{}
	}
	return len(c.Positions) - len(seen)
}

// runwaysInUse counts the distinct runways carrying at least one flight.
// Dedication only applies when the traffic is split.
func runwaysInUse(c *encoding.Candidate) int {
	seen := make(map[int]struct{}, 2)
	for _, r := range c.Runways {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// runwaySequences groups flight indices by runway, each group ordered by
// operation time with ties broken by registry index. Groups are returned
// in ascending runway order.
func (e *Evaluator) runwaySequences(c *encoding.Candidate) [][]int {
	groups := make(map[int][]int)
	for i, r := range c.Runways {
		groups[r] = append(groups[r], i)
	}

	runways := make([]int, 0, len(groups))
	for r := range groups {
		runways = append(runways, r)
	}
	slices.Sort(runways)

	out := make([][]int, 0, len(runways))
	for _, r := range runways {
		seq := groups[r]
		slices.SortStableFunc(seq, func(a, b int) int {
			if d := cmp.Compare(c.Times[a], c.Times[b]); d != 0 {
				return d
			}
			return cmp.Compare(a, b)
		})
		out = append(out, seq)
	}
	return out
}
