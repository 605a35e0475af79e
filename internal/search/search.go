// Package search runs derivative-free global optimizers over a box-bounded
// objective. The optimizers know nothing about runways: they minimize a
// func([]float64) float64 inside a models.Bounds box.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Objective maps a vector to a scalar cost; lower is better. It must be
// safe for concurrent use.
type Objective func(x []float64) float64

// Problem is anything that can be minimized by the driver
type Problem interface {
	Cost(x []float64) float64
	Dimension() int
}

// Optimizer is a pluggable global minimizer
type Optimizer interface {
	// Minimize searches the box for a low-cost vector. warmStart may be nil;
	// otherwise it has len(bounds) entries and seeds the search.
	Minimize(ctx context.Context, obj Objective, bounds models.Bounds, warmStart []float64) (*Result, error)
	// Name returns the algorithm name used in config and logs
	Name() string
}

// Step is one generation (or reporting interval) of a run
type Step struct {
	Generation  int
	BestCost    float64
	MeanCost    float64
	Evaluations int
}

// ProgressReporter is called after every recorded step
type ProgressReporter func(step Step)

// Result is the outcome of one optimizer run
type Result struct {
	Algorithm   string
	Best        []float64
	Cost        float64
	Generations int
	Evaluations int
	Duration    time.Duration
	History     []Step
	Converged   bool
	Reason      string
}

// Stop reasons
const (
	ReasonBudget   = "generation budget exhausted"
	ReasonCanceled = "context canceled"
)

// Driver validates a problem against its box and hands it to an optimizer
type Driver struct {
	optimizer Optimizer
	logger    *slog.Logger
}

// NewDriver creates a driver around opt. A nil logger uses slog.Default().
func NewDriver(opt Optimizer, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{optimizer: opt, logger: logger}
}

// Optimizer returns the wrapped optimizer
func (d *Driver) Optimizer() Optimizer {
	return d.optimizer
}

// Optimize checks bounds and warm start before the first evaluation, then
// runs the optimizer. Malformed input yields a *models.ConfigurationError.
func (d *Driver) Optimize(ctx context.Context, p Problem, bounds models.Bounds, warmStart []float64) (*Result, error) {
	if d.optimizer == nil {
		return nil, &models.ConfigurationError{Field: "search.algorithm", Reason: "no optimizer configured"}
	}
	if p == nil {
		return nil, &models.ConfigurationError{Field: "problem", Reason: "problem is nil"}
	}
	if err := ValidateBounds(bounds, p.Dimension()); err != nil {
		return nil, err
	}
	if warmStart != nil {
		if err := validateWarmStart(warmStart, len(bounds)); err != nil {
			return nil, err
		}
		warmStart = bounds.Clip(warmStart)
	}

	d.logger.Debug("search started",
		"algorithm", d.optimizer.Name(),
		"dimension", len(bounds),
		"warm_start", warmStart != nil)

	res, err := d.optimizer.Minimize(ctx, p.Cost, bounds, warmStart)
	if res != nil {
		d.logger.Debug("search finished",
			"algorithm", res.Algorithm,
			"best_cost", res.Cost,
			"generations", res.Generations,
			"evaluations", res.Evaluations,
			"reason", res.Reason,
			"duration", res.Duration)
	}
	return res, err
}

// ValidateBounds checks that bounds has dim finite, non-empty intervals
func ValidateBounds(bounds models.Bounds, dim int) error {
	if len(bounds) != dim {
		return &models.ConfigurationError{
			Field:  "bounds",
			Reason: fmt.Sprintf("got %d bounds for a problem of dimension %d", len(bounds), dim),
		}
	}
	return bounds.Validate()
}

func validateWarmStart(x []float64, dim int) error {
	if len(x) != dim {
		return &models.ConfigurationError{
			Field:  "warm_start",
			Reason: fmt.Sprintf("length %d does not match dimension %d", len(x), dim),
		}
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &models.ConfigurationError{Field: "warm_start", Reason: fmt.Sprintf("component %d is not finite", i)}
		}
	}
	return nil
}

func cloneVector(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}
