package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
	"github.com/GoSim-25-26J-441/runway-core/pkg/utils"
)

// AlgorithmSA is the registry name of simulated annealing
const AlgorithmSA = "sa"

// SAConfig configures simulated annealing
type SAConfig struct {
	Iterations  int     `yaml:"iterations" validate:"gte=1"`
	InitialTemp float64 `yaml:"initial_temp" validate:"gt=0"`
	FinalTemp   float64 `yaml:"final_temp" validate:"gt=0"`
	Alpha       float64 `yaml:"alpha" validate:"gt=0,lt=1"`
	// StepFraction scales the Gaussian move relative to each bound's width
	StepFraction float64 `yaml:"step_fraction" validate:"gt=0,lte=1"`
	// ReportEvery is the number of iterations per recorded step
	ReportEvery int   `yaml:"report_every" validate:"gte=0"`
	Seed        int64 `yaml:"-"`
}

// DefaultSAConfig returns a schedule tuned for penalty-scale costs
func DefaultSAConfig() SAConfig {
	return SAConfig{
		Iterations:   200000,
		InitialTemp:  5000,
		FinalTemp:    0.01,
		Alpha:        0.9999,
		StepFraction: 0.1,
		ReportEvery:  1000,
	}
}

// Validate checks the configuration
func (c SAConfig) Validate() error {
	if c.Iterations <= 0 {
		return &models.ConfigurationError{Field: "search.sa.iterations", Reason: fmt.Sprintf("must be > 0 (got %d)", c.Iterations)}
	}
	if c.InitialTemp <= 0 {
		return &models.ConfigurationError{Field: "search.sa.initial_temp", Reason: fmt.Sprintf("must be > 0 (got %f)", c.InitialTemp)}
	}
	if c.FinalTemp <= 0 || c.FinalTemp >= c.InitialTemp {
		return &models.ConfigurationError{Field: "search.sa.final_temp", Reason: fmt.Sprintf("must lie in (0, initial_temp) (got %f)", c.FinalTemp)}
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return &models.ConfigurationError{Field: "search.sa.alpha", Reason: fmt.Sprintf("must lie in (0, 1) (got %f)", c.Alpha)}
	}
	if c.StepFraction <= 0 || c.StepFraction > 1 {
		return &models.ConfigurationError{Field: "search.sa.step_fraction", Reason: fmt.Sprintf("must lie in (0, 1] (got %f)", c.StepFraction)}
	}
	if c.ReportEvery < 0 {
		return &models.ConfigurationError{Field: "search.sa.report_every", Reason: "cannot be negative"}
	}
	return nil
}

// SimulatedAnnealing walks a single trajectory, perturbing one component
// per move and accepting worse moves by the Metropolis criterion under a
// geometric cooling schedule.
type SimulatedAnnealing struct {
	cfg         SAConfig
	progress    ProgressReporter
	convergence ConvergenceStrategy
}

// NewSimulatedAnnealing validates cfg and returns an optimizer
func NewSimulatedAnnealing(cfg SAConfig) (*SimulatedAnnealing, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReportEvery == 0 {
		cfg.ReportEvery = 1000
	}
	return &SimulatedAnnealing{cfg: cfg}, nil
}

// WithProgressReporter sets a callback invoked every ReportEvery iterations
func (s *SimulatedAnnealing) WithProgressReporter(fn ProgressReporter) *SimulatedAnnealing {
	s.progress = fn
	return s
}

// WithConvergence sets an early-stop strategy, checked against the history
// every ReportEvery iterations. Each recorded step counts as one generation.
func (s *SimulatedAnnealing) WithConvergence(c ConvergenceStrategy) *SimulatedAnnealing {
	s.convergence = c
	return s
}

func (s *SimulatedAnnealing) Name() string {
	return AlgorithmSA
}

// Minimize anneals from the warm start, or from a uniform random point
func (s *SimulatedAnnealing) Minimize(ctx context.Context, obj Objective, bounds models.Bounds, warmStart []float64) (*Result, error) {
	start := time.Now()
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	dim := len(bounds)
	if warmStart != nil && len(warmStart) != dim {
		return nil, &models.ConfigurationError{Field: "warm_start", Reason: fmt.Sprintf("length %d does not match dimension %d", len(warmStart), dim)}
	}

	rng := utils.NewRandSource(s.cfg.Seed)

	var curr []float64
	if warmStart != nil {
		curr = bounds.Clip(warmStart)
	} else {
		curr = make([]float64, dim)
		for j, b := range bounds {
			curr[j] = rng.UniformFloat64(b.Lower, b.Upper)
		}
	}
	currCost := sanitize(obj(curr))
	best := cloneVector(curr)
	bestCost := currCost
	cand := make([]float64, dim)

	evals := 1
	history := []Step{{Generation: 0, BestCost: bestCost, MeanCost: currCost, Evaluations: evals}}
	s.report(history[0])

	result := func(iter int, converged bool, reason string) *Result {
		return &Result{
			Algorithm:   AlgorithmSA,
			Best:        best,
			Cost:        bestCost,
			Generations: iter,
			Evaluations: evals,
			Duration:    time.Since(start),
			History:     history,
			Converged:   converged,
			Reason:      reason,
		}
	}

	temp := s.cfg.InitialTemp
	iter := 0
	for iter < s.cfg.Iterations && temp > s.cfg.FinalTemp {
		if iter%s.cfg.ReportEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result(iter, false, ReasonCanceled), err
			}
		}

		copy(cand, curr)
		j := rng.Intn(dim)
		b := bounds[j]
		cand[j] = utils.ClampFloat64(rng.NormFloat64(cand[j], s.cfg.StepFraction*b.Width()), b.Lower, b.Upper)

		candCost := sanitize(obj(cand))
		evals++

		delta := candCost - currCost
		if delta <= 0 || rng.Float64() < math.Exp(-delta/temp) {
			curr, cand = cand, curr
			currCost = candCost
			if currCost < bestCost {
				bestCost = currCost
				copy(best, curr)
			}
		}

		temp *= s.cfg.Alpha
		iter++

		if iter%s.cfg.ReportEvery == 0 {
			step := Step{Generation: iter, BestCost: bestCost, MeanCost: currCost, Evaluations: evals}
			history = append(history, step)
			s.report(step)

			if s.convergence != nil {
				if ok, reason := s.convergence.CheckConvergence(history); ok {
					return result(iter, true, reason), nil
				}
			}
		}
	}

	reason := ReasonBudget
	if temp <= s.cfg.FinalTemp {
		reason = "final temperature reached"
	}
	return result(iter, false, reason), nil
}

func (s *SimulatedAnnealing) report(step Step) {
	if s.progress != nil {
		s.progress(step)
	}
}
