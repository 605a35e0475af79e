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

// AlgorithmBO is the registry name of sequential Bayesian optimization
const AlgorithmBO = "bo"

// Acquisition functions
const (
	AcquisitionEI  = "ei"
	AcquisitionPI  = "pi"
	AcquisitionLCB = "lcb"
)

// localScale is the Gaussian step, in unit-cube coordinates, of candidates
// drawn around the incumbent
const localScale = 0.1

// BOConfig configures Bayesian optimization
type BOConfig struct {
	// InitialPoints are sampled by Latin hypercube before the surrogate is used.
	// A warm start takes one of these slots.
	InitialPoints int `yaml:"initial_points" validate:"gte=1"`
	// Calls is the total evaluation budget, initial points included
	Calls       int    `yaml:"calls" validate:"gte=1"`
	Acquisition string `yaml:"acquisition" validate:"omitempty,oneof=ei pi lcb"`
	// Xi is the improvement margin of ei and pi, in standardized cost units
	Xi float64 `yaml:"xi" validate:"gte=0"`
	// Kappa weighs the standard deviation in lcb
	Kappa float64 `yaml:"kappa" validate:"gte=0"`
	// Candidates is the number of points scored per acquisition step; half
	// are uniform in the box, half perturb the incumbent
	Candidates int `yaml:"candidates" validate:"gte=1"`
	// LengthScale of the kernel in unit-cube coordinates; 0 fits it by
	// marginal likelihood at every step
	LengthScale float64 `yaml:"length_scale" validate:"gte=0"`
	Noise       float64 `yaml:"noise" validate:"gte=0"`
	// Workers bounds concurrent evaluations and candidate scoring; 0 means GOMAXPROCS
	Workers int   `yaml:"-"`
	Seed    int64 `yaml:"-"`
}

// DefaultBOConfig returns 10 initial points, 100 calls and expected improvement
func DefaultBOConfig() BOConfig {
	return BOConfig{
		InitialPoints: 10,
		Calls:         100,
		Acquisition:   AcquisitionEI,
		Xi:            0.01,
		Kappa:         1.96,
		Candidates:    1000,
		Noise:         1e-6,
	}
}

// Validate checks the configuration
func (c BOConfig) Validate() error {
	if c.InitialPoints < 1 {
		return &models.ConfigurationError{Field: "search.bo.initial_points", Reason: fmt.Sprintf("must be >= 1 (got %d)", c.InitialPoints)}
	}
	if c.Calls < c.InitialPoints {
		return &models.ConfigurationError{Field: "search.bo.calls", Reason: fmt.Sprintf("must be >= initial_points (%d < %d)", c.Calls, c.InitialPoints)}
	}
	switch c.Acquisition {
	case "", AcquisitionEI, AcquisitionPI, AcquisitionLCB:
	default:
		return &models.ConfigurationError{Field: "search.bo.acquisition", Reason: fmt.Sprintf("unknown acquisition function %q", c.Acquisition)}
	}
	if c.Xi < 0 || c.Kappa < 0 {
		return &models.ConfigurationError{Field: "search.bo", Reason: "xi and kappa cannot be negative"}
	}
	if c.Candidates < 1 {
		return &models.ConfigurationError{Field: "search.bo.candidates", Reason: fmt.Sprintf("must be >= 1 (got %d)", c.Candidates)}
	}
	if c.LengthScale < 0 || c.Noise < 0 {
		return &models.ConfigurationError{Field: "search.bo", Reason: "length_scale and noise cannot be negative"}
	}
	return nil
}

// BayesianOptimization evaluates one point at a time. After the initial
// design it fits a Gaussian process to every observation and evaluates the
// candidate that maximizes the acquisition function.
type BayesianOptimization struct {
	cfg         BOConfig
	progress    ProgressReporter
	convergence ConvergenceStrategy
}

// NewBayesianOptimization validates cfg and returns an optimizer
func NewBayesianOptimization(cfg BOConfig) (*BayesianOptimization, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Acquisition == "" {
		cfg.Acquisition = AcquisitionEI
	}
	return &BayesianOptimization{cfg: cfg}, nil
}

// WithProgressReporter sets a callback invoked after the initial design and
// after every model-guided evaluation
func (bo *BayesianOptimization) WithProgressReporter(fn ProgressReporter) *BayesianOptimization {
	bo.progress = fn
	return bo
}

// WithConvergence sets an early-stop strategy; each model-guided
// evaluation counts as one generation
func (bo *BayesianOptimization) WithConvergence(c ConvergenceStrategy) *BayesianOptimization {
	bo.convergence = c
	return bo
}

func (bo *BayesianOptimization) Name() string {
	return AlgorithmBO
}

// Minimize runs the ask/evaluate/tell loop until Calls evaluations are spent
func (bo *BayesianOptimization) Minimize(ctx context.Context, obj Objective, bounds models.Bounds, warmStart []float64) (*Result, error) {
	start := time.Now()
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	dim := len(bounds)
	if warmStart != nil && len(warmStart) != dim {
		return nil, &models.ConfigurationError{Field: "warm_start", Reason: fmt.Sprintf("length %d does not match dimension %d", len(warmStart), dim)}
	}

	rng := utils.NewRandSource(bo.cfg.Seed)

	xs := latinHypercube(rng, bounds, bo.cfg.InitialPoints)
	if warmStart != nil {
		xs[0] = bounds.Clip(warmStart)
	}
	ys := evaluateBatch(obj, xs, bo.cfg.Workers)

	bestIdx := utils.MinIndex(ys)
	history := []Step{{Generation: 0, BestCost: ys[bestIdx], MeanCost: utils.Mean(ys), Evaluations: len(ys)}}
	bo.report(history[0])

	result := func(iter int, converged bool, reason string) *Result {
		return &Result{
			Algorithm:   AlgorithmBO,
			Best:        cloneVector(xs[bestIdx]),
			Cost:        ys[bestIdx],
			Generations: iter,
			Evaluations: len(ys),
			Duration:    time.Since(start),
			History:     history,
			Converged:   converged,
			Reason:      reason,
		}
	}

	units := make([][]float64, len(xs))
	for i, x := range xs {
		units[i] = toUnit(bounds, x)
	}

	iterations := bo.cfg.Calls - bo.cfg.InitialPoints
	for iter := 1; iter <= iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return result(iter-1, false, ReasonCanceled), err
		}

		next := bo.ask(rng, units, ys, units[bestIdx])
		x := fromUnit(bounds, next)
		y := sanitize(obj(x))

		xs = append(xs, x)
		units = append(units, next)
		ys = append(ys, y)
		if y < ys[bestIdx] {
			bestIdx = len(ys) - 1
		}

		step := Step{Generation: iter, BestCost: ys[bestIdx], MeanCost: utils.Mean(ys), Evaluations: len(ys)}
		history = append(history, step)
		bo.report(step)

		if bo.convergence != nil {
			if ok, reason := bo.convergence.CheckConvergence(history); ok {
				return result(iter, true, reason), nil
			}
		}
	}

	return result(iterations, false, ReasonBudget), nil
}

// ask returns the next point to evaluate in unit-cube coordinates. If the
// surrogate cannot be fitted the first uniform candidate is returned.
func (bo *BayesianOptimization) ask(rng *utils.RandSource, units [][]float64, ys []float64, incumbent []float64) []float64 {
	candidates := bo.candidates(rng, len(incumbent), incumbent)

	gp, err := fitGP(units, finiteCosts(ys), bo.cfg.LengthScale, bo.cfg.Noise)
	if err != nil {
		return candidates[0]
	}
	best := gp.standardize(finiteMin(ys))

	scores := make([]float64, len(candidates))
	workers := bo.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (len(candidates) + workers - 1) / workers
	p := pool.New().WithMaxGoroutines(workers)
	for lo := 0; lo < len(candidates); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(candidates))
		p.Go(func() {
			for i := lo; i < hi; i++ {
				mu, sigma := gp.predict(candidates[i])
				scores[i] = bo.acquire(mu, sigma, best)
			}
		})
	}
	p.Wait()

	pick := 0
	for i, s := range scores {
		if s > scores[pick] {
			pick = i
		}
	}
	return candidates[pick]
}

// acquire scores a prediction; higher is better. mu, sigma and best are in
// standardized units.
func (bo *BayesianOptimization) acquire(mu, sigma, best float64) float64 {
	switch bo.cfg.Acquisition {
	case AcquisitionPI:
		return normCDF((best - mu - bo.cfg.Xi) / sigma)
	case AcquisitionLCB:
		return -(mu - bo.cfg.Kappa*sigma)
	default:
		return expectedImprovement(mu, sigma, best, bo.cfg.Xi)
	}
}

// candidates draws the acquisition sample on the main goroutine so runs
// stay reproducible for a given seed
func (bo *BayesianOptimization) candidates(rng *utils.RandSource, dim int, incumbent []float64) [][]float64 {
	n := bo.cfg.Candidates
	out := make([][]float64, n)
	local := n / 2
	// perturb about three components per local candidate
	rate := math.Min(1, 3/float64(dim))
	for i := range out {
		c := make([]float64, dim)
		if i < n-local {
			for j := range c {
				c[j] = rng.Float64()
			}
		} else {
			copy(c, incumbent)
			forced := rng.Intn(dim)
			for j := range c {
				if j == forced || rng.Float64() < rate {
					c[j] = utils.ClampFloat64(rng.NormFloat64(c[j], localScale), 0, 1)
				}
			}
		}
		out[i] = c
	}
	return out
}

func (bo *BayesianOptimization) report(step Step) {
	if bo.progress != nil {
		bo.progress(step)
	}
}

// expectedImprovement of a Gaussian prediction below best by more than xi
func expectedImprovement(mu, sigma, best, xi float64) float64 {
	if sigma <= 0 {
		return 0
	}
	imp := best - mu - xi
	z := imp / sigma
	return imp*normCDF(z) + sigma*normPDF(z)
}

func normCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}

func normPDF(z float64) float64 {
	return math.Exp(-0.5*z*z) / math.Sqrt(2*math.Pi)
}

// finiteCosts replaces infinite costs with the largest finite one so the
// surrogate can be fitted
func finiteCosts(ys []float64) []float64 {
	ceiling := math.Inf(-1)
	for _, y := range ys {
		if !math.IsInf(y, 0) {
			ceiling = math.Max(ceiling, y)
		}
	}
	if math.IsInf(ceiling, -1) {
		ceiling = 0
	}
	out := make([]float64, len(ys))
	for i, y := range ys {
		if math.IsInf(y, 0) {
			y = ceiling
		}
		out[i] = y
	}
	return out
}

func finiteMin(ys []float64) float64 {
	fs := finiteCosts(ys)
	return fs[utils.MinIndex(fs)]
}

func toUnit(bounds models.Bounds, x []float64) []float64 {
	u := make([]float64, len(x))
	for j, b := range bounds {
		if w := b.Width(); w > 0 {
			u[j] = (x[j] - b.Lower) / w
		}
	}
	return u
}

func fromUnit(bounds models.Bounds, u []float64) []float64 {
	x := make([]float64, len(u))
	for j, b := range bounds {
		x[j] = utils.ClampFloat64(b.Lower+u[j]*b.Width(), b.Lower, b.Upper)
	}
	return x
}
