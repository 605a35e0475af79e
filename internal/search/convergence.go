package search

import (
	"fmt"
	"math"
)

// ConvergenceStrategy decides whether a run can stop before its budget
type ConvergenceStrategy interface {
	// CheckConvergence inspects the history so far
	CheckConvergence(history []Step) (bool, string)
	// Name returns the name of the convergence strategy
	Name() string
}

// ConvergenceConfig holds configuration for convergence detection
type ConvergenceConfig struct {
	// NoImprovementGenerations is the number of generations without a new best before stopping
	NoImprovementGenerations int `yaml:"no_improvement_generations"`
	// PlateauGenerations is the window over which the best cost must stay within ScoreTolerance
	PlateauGenerations int `yaml:"plateau_generations"`
	// ScoreTolerance is the absolute tolerance for cost changes to be considered equal
	ScoreTolerance float64 `yaml:"score_tolerance"`
	// MinGenerations is the minimum number of generations before convergence can be detected
	MinGenerations int `yaml:"min_generations"`
}

// DefaultConvergenceConfig returns a default convergence configuration
func DefaultConvergenceConfig() *ConvergenceConfig {
	return &ConvergenceConfig{
		NoImprovementGenerations: 100,
		PlateauGenerations:       50,
		ScoreTolerance:           1e-6,
		MinGenerations:           20,
	}
}

// NewConvergenceStrategy returns the strategy registered under name.
// An empty name or "none" returns nil, meaning run to budget.
func NewConvergenceStrategy(name string, config *ConvergenceConfig) (ConvergenceStrategy, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "no_improvement":
		return NewNoImprovementStrategy(config), nil
	case "plateau":
		return NewPlateauStrategy(config), nil
	case "combined":
		return NewCombinedStrategy(config), nil
	default:
		return nil, &UnknownStrategyError{Name: name}
	}
}

// UnknownStrategyError is returned for an unregistered strategy name
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown convergence strategy: %s", e.Name)
}

// NoImprovementStrategy stops when the best cost has not improved for N generations
type NoImprovementStrategy struct {
	config *ConvergenceConfig
}

// NewNoImprovementStrategy creates a new no-improvement convergence strategy
func NewNoImprovementStrategy(config *ConvergenceConfig) *NoImprovementStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &NoImprovementStrategy{config: config}
}

func (s *NoImprovementStrategy) Name() string {
	return "no_improvement"
}

func (s *NoImprovementStrategy) CheckConvergence(history []Step) (converged bool, reason string) {
	if len(history) < s.config.MinGenerations || s.config.NoImprovementGenerations <= 0 {
		return false, ""
	}

	best := math.Inf(1)
	bestAt := -1
	for i, step := range history {
		if step.BestCost < best-s.config.ScoreTolerance {
			best = step.BestCost
			bestAt = i
		}
	}
	if bestAt < 0 {
		return false, ""
	}

	since := len(history) - 1 - bestAt
	if since >= s.config.NoImprovementGenerations {
		return true, fmt.Sprintf("no improvement for %d generations (best at generation %d)", since, history[bestAt].Generation)
	}
	return false, ""
}

// PlateauStrategy stops when the best cost stayed within tolerance over a window
type PlateauStrategy struct {
	config *ConvergenceConfig
}

// NewPlateauStrategy creates a new plateau convergence strategy
func NewPlateauStrategy(config *ConvergenceConfig) *PlateauStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &PlateauStrategy{config: config}
}

func (s *PlateauStrategy) Name() string {
	return "plateau"
}

func (s *PlateauStrategy) CheckConvergence(history []Step) (converged bool, reason string) {
	if len(history) < s.config.MinGenerations || s.config.PlateauGenerations <= 0 {
		return false, ""
	}
	if len(history) < s.config.PlateauGenerations {
		return false, ""
	}

	recent := history[len(history)-s.config.PlateauGenerations:]
	lo, hi := recent[0].BestCost, recent[0].BestCost
	for _, step := range recent {
		lo = math.Min(lo, step.BestCost)
		hi = math.Max(hi, step.BestCost)
	}

	if spread := hi - lo; spread <= s.config.ScoreTolerance {
		return true, fmt.Sprintf("best cost plateaued for %d generations (range: %.6f)", s.config.PlateauGenerations, spread)
	}
	return false, ""
}

// CombinedStrategy converges as soon as any member strategy does
type CombinedStrategy struct {
	strategies []ConvergenceStrategy
}

// NewCombinedStrategy combines the no-improvement and plateau strategies
func NewCombinedStrategy(config *ConvergenceConfig) *CombinedStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &CombinedStrategy{
		strategies: []ConvergenceStrategy{
			NewNoImprovementStrategy(config),
			NewPlateauStrategy(config),
		},
	}
}

func (s *CombinedStrategy) Name() string {
	return "combined"
}

func (s *CombinedStrategy) CheckConvergence(history []Step) (converged bool, reason string) {
	for _, strategy := range s.strategies {
		if ok, why := strategy.CheckConvergence(history); ok {
			return true, fmt.Sprintf("%s: %s", strategy.Name(), why)
		}
	}
	return false, ""
}

// AddStrategy adds a custom strategy to the combined strategy
func (s *CombinedStrategy) AddStrategy(strategy ConvergenceStrategy) {
	s.strategies = append(s.strategies, strategy)
}
