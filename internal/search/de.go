package search

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
	"github.com/GoSim-25-26J-441/runway-core/pkg/utils"
)

// AlgorithmDE is the registry name of differential evolution
const AlgorithmDE = "de"

// Population initialisation schemes
const (
	InitLatinHypercube = "latinhypercube"
	InitRandom         = "random"
)

// DEConfig configures differential evolution (best/1/bin)
type DEConfig struct {
	// PopulationMultiplier times the dimension gives the population size
	PopulationMultiplier int `yaml:"population" validate:"gte=1"`
	Generations          int `yaml:"generations" validate:"gte=1"`
	// Differential weight is redrawn each generation from [MutationMin, MutationMax)
	MutationMin   float64 `yaml:"mutation_min" validate:"gte=0,lte=2"`
	MutationMax   float64 `yaml:"mutation_max" validate:"gte=0,lte=2"`
	Recombination float64 `yaml:"recombination" validate:"gte=0,lte=1"`
	Init          string  `yaml:"init"`
	// Workers bounds concurrent evaluations; 0 means GOMAXPROCS
	Workers int   `yaml:"-"`
	Seed    int64 `yaml:"-"`
}

// DefaultDEConfig returns the reference settings: population multiplier 15,
// 1000 generations, mutation dithered over [0.5, 1), recombination 0.7.
func DefaultDEConfig() DEConfig {
	return DEConfig{
		PopulationMultiplier: 15,
		Generations:          1000,
		MutationMin:          0.5,
		MutationMax:          1.0,
		Recombination:        0.7,
		Init:                 InitLatinHypercube,
	}
}

// Validate checks the configuration
func (c DEConfig) Validate() error {
	if c.PopulationMultiplier < 1 {
		return &models.ConfigurationError{Field: "search.de.population", Reason: fmt.Sprintf("must be >= 1 (got %d)", c.PopulationMultiplier)}
	}
	if c.Generations < 1 {
		return &models.ConfigurationError{Field: "search.de.generations", Reason: fmt.Sprintf("must be >= 1 (got %d)", c.Generations)}
	}
	if c.MutationMin < 0 || c.MutationMax > 2 || c.MutationMin > c.MutationMax {
		return &models.ConfigurationError{Field: "search.de.mutation", Reason: fmt.Sprintf("need 0 <= min <= max <= 2 (got [%g, %g])", c.MutationMin, c.MutationMax)}
	}
	if c.Recombination < 0 || c.Recombination > 1 {
		return &models.ConfigurationError{Field: "search.de.recombination", Reason: fmt.Sprintf("must lie in [0, 1] (got %g)", c.Recombination)}
	}
	switch c.Init {
	case "", InitLatinHypercube, InitRandom:
	default:
		return &models.ConfigurationError{Field: "search.de.init", Reason: fmt.Sprintf("unknown scheme %q", c.Init)}
	}
	if c.Workers < 0 {
		return &models.ConfigurationError{Field: "search.workers", Reason: "cannot be negative"}
	}
	return nil
}

// DifferentialEvolution is a population-based global optimizer. Each
// generation is built from the previous one and then evaluated as a batch
// by a bounded worker pool; random draws happen on the calling goroutine
// only, so results depend on the seed and not on the worker count.
type DifferentialEvolution struct {
	cfg         DEConfig
	progress    ProgressReporter
	convergence ConvergenceStrategy
}

// NewDifferentialEvolution validates cfg and returns an optimizer
func NewDifferentialEvolution(cfg DEConfig) (*DifferentialEvolution, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Init == "" {
		cfg.Init = InitLatinHypercube
	}
	return &DifferentialEvolution{cfg: cfg}, nil
}

// WithProgressReporter sets a callback invoked after every generation
func (de *DifferentialEvolution) WithProgressReporter(fn ProgressReporter) *DifferentialEvolution {
	de.progress = fn
	return de
}

// WithConvergence enables early stopping
func (de *DifferentialEvolution) WithConvergence(s ConvergenceStrategy) *DifferentialEvolution {
	de.convergence = s
	return de
}

// Config returns the configuration in use
func (de *DifferentialEvolution) Config() DEConfig {
	return de.cfg
}

func (de *DifferentialEvolution) Name() string {
	return AlgorithmDE
}

// PopulationSize returns the number of individuals for a problem of dim
// components (never fewer than 5)
func (de *DifferentialEvolution) PopulationSize(dim int) int {
	return max(5, de.cfg.PopulationMultiplier*dim)
}

// Minimize runs best/1/bin with deferred updating. A warm start replaces
// the first member of the initial population.
func (de *DifferentialEvolution) Minimize(ctx context.Context, obj Objective, bounds models.Bounds, warmStart []float64) (*Result, error) {
	start := time.Now()
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	dim := len(bounds)
	if warmStart != nil && len(warmStart) != dim {
		return nil, &models.ConfigurationError{Field: "warm_start", Reason: fmt.Sprintf("length %d does not match dimension %d", len(warmStart), dim)}
	}

	rng := utils.NewRandSource(de.cfg.Seed)
	np := de.PopulationSize(dim)

	population := de.initialPopulation(rng, bounds, np)
	if warmStart != nil {
		population[0] = bounds.Clip(warmStart)
	}
	costs := de.evaluateAll(obj, population)
	evals := np

	bestIdx := utils.MinIndex(costs)
	history := []Step{{Generation: 0, BestCost: costs[bestIdx], MeanCost: utils.Mean(costs), Evaluations: evals}}
	de.report(history[0])

	result := func(gen int, converged bool, reason string) *Result {
		return &Result{
			Algorithm:   AlgorithmDE,
			Best:        cloneVector(population[bestIdx]),
			Cost:        costs[bestIdx],
			Generations: gen,
			Evaluations: evals,
			Duration:    time.Since(start),
			History:     history,
			Converged:   converged,
			Reason:      reason,
		}
	}

	trials := make([][]float64, np)
	for gen := 1; gen <= de.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return result(gen-1, false, ReasonCanceled), err
		}

		f := de.cfg.MutationMin
		if de.cfg.MutationMax > de.cfg.MutationMin {
			f = rng.UniformFloat64(de.cfg.MutationMin, de.cfg.MutationMax)
		}
		best := population[bestIdx]
		for i := 0; i < np; i++ {
			trials[i] = de.trial(rng, bounds, population, best, i, f)
		}

		trialCosts := de.evaluateAll(obj, trials)
		evals += np

		for i := 0; i < np; i++ {
			if trialCosts[i] <= costs[i] {
				population[i], trials[i] = trials[i], population[i]
				costs[i] = trialCosts[i]
			}
		}
		bestIdx = utils.MinIndex(costs)

		step := Step{Generation: gen, BestCost: costs[bestIdx], MeanCost: utils.Mean(costs), Evaluations: evals}
		history = append(history, step)
		de.report(step)

		if de.convergence != nil {
			if ok, reason := de.convergence.CheckConvergence(history); ok {
				return result(gen, true, reason), nil
			}
		}
	}

	return result(de.cfg.Generations, false, ReasonBudget), nil
}

// trial builds the best/1/bin candidate for target i. Components mutated
// outside the box are redrawn uniformly inside it.
func (de *DifferentialEvolution) trial(rng *utils.RandSource, bounds models.Bounds, population [][]float64, best []float64, i int, f float64) []float64 {
	np := len(population)
	dim := len(bounds)

	r1, r2 := pickDistinct(rng, np, i)

	out := make([]float64, dim)
	copy(out, population[i])

	jrand := rng.Intn(dim)
	for j := 0; j < dim; j++ {
		if j != jrand && rng.Float64() >= de.cfg.Recombination {
			continue
		}
		v := best[j] + f*(population[r1][j]-population[r2][j])
		if v < bounds[j].Lower || v > bounds[j].Upper {
			v = rng.UniformFloat64(bounds[j].Lower, bounds[j].Upper)
		}
		out[j] = v
	}
	return out
}

// pickDistinct draws two different indices in [0, n), both different from
// exclude when the population allows it
func pickDistinct(rng *utils.RandSource, n, exclude int) (int, int) {
	if n < 3 {
		return rng.Intn(n), rng.Intn(n)
	}
	r1 := rng.Intn(n)
	for r1 == exclude {
		r1 = rng.Intn(n)
	}
	r2 := rng.Intn(n)
	for r2 == exclude || r2 == r1 {
		r2 = rng.Intn(n)
	}
	return r1, r2
}

func (de *DifferentialEvolution) initialPopulation(rng *utils.RandSource, bounds models.Bounds, np int) [][]float64 {
	if de.cfg.Init == InitRandom {
		return uniformSample(rng, bounds, np)
	}
	return latinHypercube(rng, bounds, np)
}

func uniformSample(rng *utils.RandSource, bounds models.Bounds, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, len(bounds))
		for j, b := range bounds {
			out[i][j] = rng.UniformFloat64(b.Lower, b.Upper)
		}
	}
	return out
}

// latinHypercube draws n points with one sample per stratum in every dimension
func latinHypercube(rng *utils.RandSource, bounds models.Bounds, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, len(bounds))
	}
	for j, b := range bounds {
		strata := rng.Perm(n)
		for i := 0; i < n; i++ {
			u := (float64(strata[i]) + rng.Float64()) / float64(n)
			out[i][j] = b.Lower + u*b.Width()
		}
	}
	return out
}

func (de *DifferentialEvolution) evaluateAll(obj Objective, xs [][]float64) []float64 {
	return evaluateBatch(obj, xs, de.cfg.Workers)
}

// evaluateBatch scores xs on up to workers goroutines (0 means GOMAXPROCS);
// costs[i] belongs to xs[i]
func evaluateBatch(obj Objective, xs [][]float64, workers int) []float64 {
	costs := make([]float64, len(xs))
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 {
		for i, x := range xs {
			costs[i] = sanitize(obj(x))
		}
		return costs
	}

	p := pool.New().WithMaxGoroutines(workers)
	for i, x := range xs {
		i, x := i, x
		p.Go(func() {
			costs[i] = sanitize(obj(x))
		})
	}
	p.Wait()
	return costs
}

func (de *DifferentialEvolution) report(step Step) {
	if de.progress != nil {
		de.progress(step)
	}
}

// sanitize keeps NaN from poisoning comparisons
func sanitize(c float64) float64 {
	if math.IsNaN(c) {
		return math.Inf(1)
	}
	return c
}
