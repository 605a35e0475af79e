package search

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
)

func testBOConfig(seed int64) BOConfig {
	cfg := DefaultBOConfig()
	cfg.Calls = 40
	cfg.Candidates = 300
	cfg.Workers = 2
	cfg.Seed = seed
	return cfg
}

func TestBOConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *BOConfig)
		expectError bool
	}{
		{"default", func(c *BOConfig) {}, false},
		{"empty acquisition means ei", func(c *BOConfig) { c.Acquisition = "" }, false},
		{"zero initial points", func(c *BOConfig) { c.InitialPoints = 0 }, true},
		{"calls below initial points", func(c *BOConfig) { c.Calls = 5 }, true},
		{"unknown acquisition", func(c *BOConfig) { c.Acquisition = "ucb" }, true},
		{"negative xi", func(c *BOConfig) { c.Xi = -1 }, true},
		{"zero candidates", func(c *BOConfig) { c.Candidates = 0 }, true},
		{"negative length scale", func(c *BOConfig) { c.LengthScale = -0.1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBOConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestBOMinimizesSphere(t *testing.T) {
	for _, acq := range []string{AcquisitionEI, AcquisitionPI, AcquisitionLCB} {
		t.Run(acq, func(t *testing.T) {
			cfg := testBOConfig(11)
			cfg.Acquisition = acq
			bo, err := NewBayesianOptimization(cfg)
			if err != nil {
				t.Fatalf("NewBayesianOptimization: %v", err)
			}
			res, err := bo.Minimize(context.Background(), sphere, box(2, -5, 5), nil)
			if err != nil {
				t.Fatalf("Minimize returned error: %v", err)
			}
			if res.Cost > 1 {
				t.Fatalf("expected a low cost, got %g", res.Cost)
			}
			if res.Evaluations != cfg.Calls || res.Generations != cfg.Calls-cfg.InitialPoints {
				t.Fatalf("expected %d evaluations over %d iterations, got %d over %d",
					cfg.Calls, cfg.Calls-cfg.InitialPoints, res.Evaluations, res.Generations)
			}
			if res.Algorithm != AlgorithmBO || res.Reason != ReasonBudget {
				t.Fatalf("unexpected result: %s %q", res.Algorithm, res.Reason)
			}
			if sphere(res.Best) != res.Cost {
				t.Fatalf("reported cost %g does not match best vector cost %g", res.Cost, sphere(res.Best))
			}
		})
	}
}

func TestBOBeatsInitialDesign(t *testing.T) {
	bo, _ := NewBayesianOptimization(testBOConfig(4))
	res, err := bo.Minimize(context.Background(), sphere, box(3, -2, 2), nil)
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if len(res.History) != 31 {
		t.Fatalf("expected 31 steps, got %d", len(res.History))
	}
	if res.History[len(res.History)-1].BestCost >= res.History[0].BestCost {
		t.Fatalf("model-guided steps did not improve on the initial design: %g >= %g",
			res.History[len(res.History)-1].BestCost, res.History[0].BestCost)
	}
	for i := 1; i < len(res.History); i++ {
		if res.History[i].BestCost > res.History[i-1].BestCost {
			t.Fatalf("best cost worsened at step %d", i)
		}
	}
}

func TestBOWarmStartNeverWorse(t *testing.T) {
	warm := []float64{0.05, -0.05}
	bo, _ := NewBayesianOptimization(testBOConfig(9))
	res, err := bo.Minimize(context.Background(), sphere, box(2, -5, 5), warm)
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if res.Cost > sphere(warm) {
		t.Fatalf("result %g is worse than warm start %g", res.Cost, sphere(warm))
	}
}

func TestBODeterministic(t *testing.T) {
	run := func(workers int) *Result {
		cfg := testBOConfig(31)
		cfg.Calls = 20
		cfg.Workers = workers
		bo, _ := NewBayesianOptimization(cfg)
		res, err := bo.Minimize(context.Background(), sphere, box(3, -1, 1), nil)
		if err != nil {
			t.Fatalf("Minimize returned error: %v", err)
		}
		return res
	}
	a, b := run(1), run(4)
	if a.Cost != b.Cost || !slices.Equal(a.Best, b.Best) {
		t.Fatal("same seed produced different results across worker counts")
	}
}

func TestBOInfiniteCosts(t *testing.T) {
	// half the box is infeasible
	obj := func(x []float64) float64 {
		if x[0] > 0 {
			return math.NaN()
		}
		return sphere(x)
	}
	bo, _ := NewBayesianOptimization(testBOConfig(2))
	res, err := bo.Minimize(context.Background(), obj, box(2, -1, 1), nil)
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if math.IsInf(res.Cost, 0) || math.IsNaN(res.Cost) || res.Best[0] > 0 {
		t.Fatalf("expected a finite best from the feasible half, got %g at %v", res.Cost, res.Best)
	}
}

func TestBOCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bo, _ := NewBayesianOptimization(testBOConfig(1))
	res, err := bo.Minimize(ctx, sphere, box(2, -1, 1), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Generations != 0 || res.Evaluations != 10 || res.Reason != ReasonCanceled {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestBOConvergenceStopsEarly(t *testing.T) {
	bo, _ := NewBayesianOptimization(testBOConfig(6))
	bo.WithConvergence(NewNoImprovementStrategy(&ConvergenceConfig{NoImprovementGenerations: 4, MinGenerations: 1}))

	flat := func(x []float64) float64 { return 1 }
	res, err := bo.Minimize(context.Background(), flat, box(2, 0, 1), nil)
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if !res.Converged || res.Generations != 4 {
		t.Fatalf("expected convergence after 4 iterations, got converged=%v iterations=%d", res.Converged, res.Generations)
	}
}

func TestExpectedImprovement(t *testing.T) {
	if ei := expectedImprovement(0, 0, 1, 0); ei != 0 {
		t.Errorf("zero variance should give zero improvement, got %g", ei)
	}
	low := expectedImprovement(-1, 0.5, 0, 0)
	high := expectedImprovement(1, 0.5, 0, 0)
	if low <= high {
		t.Errorf("a lower mean should improve more: %g <= %g", low, high)
	}
	narrow := expectedImprovement(1, 0.1, 0, 0)
	wide := expectedImprovement(1, 2, 0, 0)
	if wide <= narrow {
		t.Errorf("more uncertainty should improve more above the incumbent: %g <= %g", wide, narrow)
	}
}

func TestGPInterpolates(t *testing.T) {
	x := [][]float64{{0}, {0.25}, {0.5}, {0.75}, {1}}
	y := []float64{3, 1, 0, 1, 3}
	gp, err := fitGP(x, y, 0.3, 1e-8)
	if err != nil {
		t.Fatalf("fitGP: %v", err)
	}
	for i, xi := range x {
		mu, sigma := gp.predict(xi)
		if got := mu*gp.yStd + gp.yMean; math.Abs(got-y[i]) > 1e-3 {
			t.Errorf("point %d: predicted %g, observed %g", i, got, y[i])
		}
		if sigma > 1e-2 {
			t.Errorf("point %d: expected near-zero spread at an observation, got %g", i, sigma)
		}
	}
	if _, far := gp.predict([]float64{5}); far < 0.9 {
		t.Errorf("expected prior spread far from the data, got %g", far)
	}

	auto, err := fitGP(x, y, 0, 1e-6)
	if err != nil {
		t.Fatalf("fitGP with fitted length scale: %v", err)
	}
	if !slices.Contains(lengthScaleGrid, auto.lengthScale) {
		t.Errorf("length scale %g not taken from the grid", auto.lengthScale)
	}
}
