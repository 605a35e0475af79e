package evaluator

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/GoSim-25-26J-441/runway-core/internal/encoding"
	"github.com/GoSim-25-26J-441/runway-core/internal/flights"
	"github.com/GoSim-25-26J-441/runway-core/internal/separation"
	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

const n = 14

// feasibleReference is a hand-built conflict-free schedule for the reference
// traffic. Runway 0 carries A1, D9, A2, A3, A4; runway 1 the other
// departures. Total delay is 258 s.
func feasibleReference() []float64 {
	positions := []float64{0, 2, 3, 4, 0, 1, 2, 3, 4, 5, 6, 7, 1, 8}
	times := []float64{100, 269, 370, 439, 120, 180, 270, 360, 420, 560, 630, 700, 170, 800}
	runways := []float64{0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1}

	x := make([]float64, 0, 3*n)
	x = append(x, positions...)
	x = append(x, times...)
	return append(x, runways...)
}

func newReferenceEvaluator(t *testing.T, opts ...Option) *Evaluator {
	t.Helper()
	reg := flights.MustNew(flights.Reference())
	enc, err := encoding.New(reg, encoding.DefaultOptions())
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	e, err := New(reg, separation.Default(), enc, DefaultPenalties(), opts...)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	return e
}

func mustEvaluate(t *testing.T, e *Evaluator, x []float64) models.Breakdown {
	t.Helper()
	b, err := e.Evaluate(x)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	return b
}

func TestFeasibleReference(t *testing.T) {
	e := newReferenceEvaluator(t)
	b := mustEvaluate(t, e, feasibleReference())

	if !b.Feasible() {
		t.Fatalf("expected a feasible schedule, got %+v", b.Diagnostics)
	}
	if b.Penalty != 0 {
		t.Fatalf("expected zero penalty, got %f", b.Penalty)
	}
	if b.TotalDelay != 258 || b.Cost != 258 {
		t.Fatalf("expected delay and cost 258, got delay %f cost %f", b.TotalDelay, b.Cost)
	}
	if e.Cost(feasibleReference()) != 258 {
		t.Fatalf("Cost disagrees with Evaluate")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	e := newReferenceEvaluator(t)
	x := feasibleReference()
	x[n+5] = 150.7 // D2 early, creates a separation conflict with D1
	x[3] = 2.5

	first := e.Cost(x)
	for i := 0; i < 20; i++ {
		if got := e.Cost(x); got != first {
			t.Fatalf("call %d returned %f, first call returned %f", i, got, first)
		}
	}
}

func TestArrivalDelayMonotonic(t *testing.T) {
	e := newReferenceEvaluator(t)
	base := mustEvaluate(t, e, feasibleReference()).TotalDelay

	// A4 is last on runway 0, so it can slide later without new conflicts
	prev := base
	for _, tm := range []float64{450, 500, 600, 700} {
		x := feasibleReference()
		x[n+3] = tm
		b := mustEvaluate(t, e, x)
		if b.TotalDelay <= prev {
			t.Fatalf("delay did not increase at A4 time %f: %f <= %f", tm, b.TotalDelay, prev)
		}
		prev = b.TotalDelay
	}

	// Moving A1 below its ETA never produces negative delay
	x := feasibleReference()
	x[n+0] = 60
	b := mustEvaluate(t, e, x)
	if b.TotalDelay != base {
		t.Fatalf("early arrival changed the delay term: %f vs %f", b.TotalDelay, base)
	}
}

func TestBoundaryAtTarget(t *testing.T) {
	e := newReferenceEvaluator(t)
	x := feasibleReference()
	// A1 is exactly at ETA and D2 exactly at ETD in the reference plan
	if x[n+0] != 100 || x[n+5] != 180 {
		t.Fatal("fixture changed")
	}
	sched, err := e.Schedule(x)
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if sched[0].Delay != 0 || sched[5].Delay != 0 {
		t.Fatalf("expected zero delay at target, got A1=%f D2=%f", sched[0].Delay, sched[5].Delay)
	}
	if b := mustEvaluate(t, e, x); b.WindowViolations != 0 {
		t.Fatalf("expected no window violations, got %d", b.WindowViolations)
	}
}

func TestWindowViolation(t *testing.T) {
	e := newReferenceEvaluator(t)

	tests := []struct {
		name   string
		flight int
		time   float64
	}{
		{"arrival before ETA", 0, 90},
		{"arrival beyond max delay", 3, 901},
		{"departure after ETD", 13, 810},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := feasibleReference()
			x[n+tt.flight] = tt.time
			b := mustEvaluate(t, e, x)
			if b.WindowViolations != 1 {
				t.Fatalf("expected 1 window violation, got %d", b.WindowViolations)
			}
			if b.SeparationConflicts != 0 {
				t.Fatalf("fixture should not add separation conflicts, got %d", b.SeparationConflicts)
			}
			if b.Penalty != DefaultPenalties().Window {
				t.Fatalf("expected penalty %f, got %f", DefaultPenalties().Window, b.Penalty)
			}
		})
	}
}

func TestUniquenessFlatPenalty(t *testing.T) {
	e := newReferenceEvaluator(t)
	p := DefaultPenalties()

	one := feasibleReference()
	one[5] = 0 // D2 shares (0, runway 1) with D1
	b1 := mustEvaluate(t, e, one)
	if b1.PositionConflicts != 1 {
		t.Fatalf("expected 1 position conflict, got %d", b1.PositionConflicts)
	}
	if b1.Penalty != p.Uniqueness {
		t.Fatalf("expected uniqueness penalty %f, got %f", p.Uniqueness, b1.Penalty)
	}

	three := feasibleReference()
	three[5], three[6], three[7] = 0, 0, 0
	b3 := mustEvaluate(t, e, three)
	if b3.PositionConflicts != 3 {
		t.Fatalf("expected 3 position conflicts, got %d", b3.PositionConflicts)
	}
	if b3.Penalty != p.Uniqueness {
		t.Fatalf("uniqueness penalty must be flat, got %f", b3.Penalty)
	}

	// Same position on different runways is not a conflict
	x := feasibleReference()
	if x[0] != x[4] || x[2*n+0] == x[2*n+4] {
		t.Fatal("fixture changed")
	}
	if b := mustEvaluate(t, e, x); b.PositionConflicts != 0 {
		t.Fatalf("expected no conflict across runways, got %d", b.PositionConflicts)
	}
}

func TestSeparationConflict(t *testing.T) {
	e := newReferenceEvaluator(t)
	fixed := mustEvaluate(t, e, feasibleReference())

	x := feasibleReference()
	x[n+5] = 170 // D2 only 50 s after D1 (needs 60)
	b := mustEvaluate(t, e, x)

	if b.SeparationConflicts != 1 {
		t.Fatalf("expected 1 separation conflict, got %d", b.SeparationConflicts)
	}
	if b.Penalty != DefaultPenalties().Separation {
		t.Fatalf("expected separation penalty, got %f", b.Penalty)
	}
	if b.TotalDelay != fixed.TotalDelay+10 {
		t.Fatalf("expected delay to grow by 10, got %f", b.TotalDelay)
	}
	if b.Cost <= fixed.Cost {
		t.Fatalf("violating schedule must cost more: %f <= %f", b.Cost, fixed.Cost)
	}
}

func TestSeparationUsesTimeOrderNotPosition(t *testing.T) {
	e := newReferenceEvaluator(t)
	x := feasibleReference()
	// Reverse the position labels on runway 1; times are unchanged
	for i := 4; i < 12; i++ {
		x[i] = 11 - x[i]
	}
	x[13] = 3
	b := mustEvaluate(t, e, x)
	if !b.Feasible() {
		t.Fatalf("relabelled positions should stay feasible, got %+v", b.Diagnostics)
	}
}

func TestSeparationTieBrokenByIndex(t *testing.T) {
	reg := flights.MustNew([]models.Flight{
		{ID: "D1", Kind: models.Departure, Category: models.Medium, Target: 300},
		{ID: "D2", Kind: models.Departure, Category: models.Medium, Target: 300},
	})
	enc, err := encoding.New(reg, encoding.DefaultOptions())
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	e, err := New(reg, separation.Default(), enc, DefaultPenalties())
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}

	x := []float64{0, 1, 300, 300, 0, 0}
	b := mustEvaluate(t, e, x)
	if b.SeparationConflicts != 1 {
		t.Fatalf("simultaneous departures on one runway must conflict once, got %d", b.SeparationConflicts)
	}
	sched, _ := e.Schedule(x)
	if sched[0].Sequence != 0 || sched[1].Sequence != 1 {
		t.Fatalf("ties must be ordered by registry index, got %d, %d", sched[0].Sequence, sched[1].Sequence)
	}
}

func TestDedicationRule(t *testing.T) {
	reg := flights.MustNew([]models.Flight{
		{ID: "A1", Kind: models.Arrival, Category: models.Medium, Target: 100},
		{ID: "A2", Kind: models.Arrival, Category: models.Medium, Target: 400},
		{ID: "D1", Kind: models.Departure, Category: models.Medium, Target: 600},
	})
	enc, err := encoding.New(reg, encoding.DefaultOptions())
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	e, err := New(reg, separation.Default(), enc, DefaultPenalties())
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	p := DefaultPenalties()

	tests := []struct {
		name       string
		runways    []float64
		violations int
	}{
		{"departure on runway 1", []float64{0, 0, 1}, 0},
		{"everything on runway 0", []float64{0, 0, 0}, 0},
		{"one arrival on runway 1", []float64{1, 0, 1}, 1},
		{"all on runway 1", []float64{1, 1, 1}, 0},
		{"arrivals on runway 1 with departure on runway 0", []float64{1, 1, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := append([]float64{0, 1, 2, 100, 400, 600}, tt.runways...)
			b := mustEvaluate(t, e, x)
			if b.DedicationViolations != tt.violations {
				t.Fatalf("expected %d dedication violations, got %d", tt.violations, b.DedicationViolations)
			}
			if b.Penalty != float64(tt.violations)*p.Dedication {
				t.Fatalf("unexpected penalty %f", b.Penalty)
			}
		})
	}
}

func TestDelayModeDepartures(t *testing.T) {
	reg := flights.MustNew([]models.Flight{
		{ID: "D1", Kind: models.Departure, Category: models.Light, Target: 200},
	})
	opts := encoding.DefaultOptions()
	opts.DepartureMode = encoding.DepartureDelay
	enc, err := encoding.New(reg, opts)
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	e, err := New(reg, separation.Default(), enc, DefaultPenalties())
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}

	b := mustEvaluate(t, e, []float64{0, 260, 1})
	if b.TotalDelay != 60 || b.WindowViolations != 0 {
		t.Fatalf("expected 60 s of delay inside the window, got %+v", b)
	}

	b = mustEvaluate(t, e, []float64{0, 150, 1})
	if b.TotalDelay != 0 || b.WindowViolations != 1 {
		t.Fatalf("early departure should be a window violation without delay, got %+v", b)
	}
}

func TestPenaltyDominance(t *testing.T) {
	e := newReferenceEvaluator(t)

	// V' keeps D9 on runway 0 (feasible, delay 258). V moves D9 to its ETD,
	// saving 30 s of delay but breaking the 99 s gap ahead of A2.
	feasible := feasibleReference()
	violating := feasibleReference()
	violating[n+12] = 200

	bv := mustEvaluate(t, e, violating)
	bf := mustEvaluate(t, e, feasible)
	if bv.SeparationConflicts == 0 {
		t.Fatal("fixture should violate separation")
	}
	if bv.TotalDelay >= bf.TotalDelay {
		t.Fatal("fixture should have less raw delay")
	}
	if bv.Cost <= bf.Cost {
		t.Fatalf("separation violation must dominate delay: %f <= %f", bv.Cost, bf.Cost)
	}
}

type countingRecorder struct {
	evaluations atomic.Int64
	conflicts   atomic.Int64
}

func (r *countingRecorder) RecordEvaluation(d models.Diagnostics) {
	r.evaluations.Add(1)
	r.conflicts.Add(int64(d.SeparationConflicts))
}

func TestRecorderDoesNotChangeCost(t *testing.T) {
	rec := &countingRecorder{}
	withRec := newReferenceEvaluator(t, WithRecorder(rec))
	plain := newReferenceEvaluator(t)

	x := feasibleReference()
	x[n+5] = 170
	if withRec.Cost(x) != plain.Cost(x) {
		t.Fatal("recorder changed the cost")
	}
	if rec.evaluations.Load() != 1 || rec.conflicts.Load() != 1 {
		t.Fatalf("unexpected recorder counts: %d evaluations, %d conflicts", rec.evaluations.Load(), rec.conflicts.Load())
	}
}

func TestConcurrentEvaluation(t *testing.T) {
	e := newReferenceEvaluator(t)
	x := feasibleReference()
	x[n+5] = 170
	want := e.Cost(x)

	var wg sync.WaitGroup
	errs := make(chan float64, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := e.Cost(x); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("concurrent evaluation returned %f, expected %f", got, want)
	}
}

func TestLengthMismatch(t *testing.T) {
	e := newReferenceEvaluator(t)
	_, err := e.Evaluate(make([]float64, 10))
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected Cost to panic on a malformed vector")
		}
	}()
	e.Cost(make([]float64, 10))
}

func TestSchedule(t *testing.T) {
	e := newReferenceEvaluator(t)
	sched, err := e.Schedule(feasibleReference())
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if len(sched) != n {
		t.Fatalf("expected %d assignments, got %d", n, len(sched))
	}

	a2 := sched[1]
	if a2.FlightID != "A2" || a2.Runway != 0 || a2.Sequence != 2 || a2.Delay != 129 {
		t.Fatalf("unexpected A2 assignment: %+v", a2)
	}
	d9 := sched[12]
	if d9.FlightID != "D9" || d9.Sequence != 1 || d9.Delay != 30 || d9.Kind != models.Departure {
		t.Fatalf("unexpected D9 assignment: %+v", d9)
	}
	d10 := sched[13]
	if d10.Runway != 1 || d10.Sequence != 8 {
		t.Fatalf("unexpected D10 assignment: %+v", d10)
	}
}

func TestNewValidatesPenalties(t *testing.T) {
	reg := flights.MustNew(flights.Reference())
	enc, _ := encoding.New(reg, encoding.DefaultOptions())

	tests := []struct {
		name   string
		modify func(p *Penalties)
	}{
		{"zero window", func(p *Penalties) { p.Window = 0 }},
		{"window not above widest flight window", func(p *Penalties) { p.Window = 500 }},
		{"uniqueness below window", func(p *Penalties) { p.Uniqueness = 500 }},
		{"uniqueness below twice max delay", func(p *Penalties) { p.Uniqueness = 9000 }},
		{"separation not above uniqueness", func(p *Penalties) { p.Separation = p.Uniqueness }},
		{"dedication not above uniqueness", func(p *Penalties) { p.Dedication = 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPenalties()
			tt.modify(&p)
			_, err := New(reg, separation.Default(), enc, p)
			var cfgErr *models.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
		})
	}

	if _, err := New(nil, separation.Default(), enc, DefaultPenalties()); err == nil {
		t.Fatal("expected error for nil registry")
	}
	other := flights.MustNew(flights.Reference()[:3])
	if _, err := New(other, separation.Default(), enc, DefaultPenalties()); err == nil {
		t.Fatal("expected error for mismatched encoding")
	}
}
