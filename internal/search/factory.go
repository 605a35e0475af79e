package search

import (
	"fmt"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Settings selects and configures one optimizer instance
type Settings struct {
	Algorithm   string
	DE          DEConfig
	SA          SAConfig
	BO          BOConfig
	Convergence ConvergenceStrategy
	Progress    ProgressReporter
}

// Algorithms lists the registered optimizer names
func Algorithms() []string {
	return []string{AlgorithmDE, AlgorithmSA, AlgorithmBO}
}

// New builds the optimizer named by s.Algorithm ("" selects DE)
func New(s Settings) (Optimizer, error) {
	switch s.Algorithm {
	case "", AlgorithmDE:
		de, err := NewDifferentialEvolution(s.DE)
		if err != nil {
			return nil, err
		}
		return de.WithProgressReporter(s.Progress).WithConvergence(s.Convergence), nil
	case AlgorithmSA:
		sa, err := NewSimulatedAnnealing(s.SA)
		if err != nil {
			return nil, err
		}
		return sa.WithProgressReporter(s.Progress).WithConvergence(s.Convergence), nil
	case AlgorithmBO:
		bo, err := NewBayesianOptimization(s.BO)
		if err != nil {
			return nil, err
		}
		return bo.WithProgressReporter(s.Progress).WithConvergence(s.Convergence), nil
	default:
		return nil, &models.ConfigurationError{
			Field:  "search.algorithm",
			Reason: fmt.Sprintf("unknown algorithm %q (want one of %v)", s.Algorithm, Algorithms()),
		}
	}
}
