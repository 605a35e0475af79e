package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

type sphereProblem struct {
	dim   int
	calls int
}

func (p *sphereProblem) Cost(x []float64) float64 {
	p.calls++
	return sphere(x)
}

func (p *sphereProblem) Dimension() int { return p.dim }

// recordingOptimizer captures what the driver hands over
type recordingOptimizer struct {
	warm []float64
}

func (r *recordingOptimizer) Name() string { return "recording" }

func (r *recordingOptimizer) Minimize(ctx context.Context, obj Objective, bounds models.Bounds, warmStart []float64) (*Result, error) {
	r.warm = warmStart
	x := make([]float64, len(bounds))
	return &Result{Algorithm: r.Name(), Best: x, Cost: obj(x)}, nil
}

func TestDriverRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		bounds models.Bounds
		warm   []float64
	}{
		{"bounds too short", box(2, 0, 1), nil},
		{"bounds too long", box(4, 0, 1), nil},
		{"inverted bound", models.Bounds{{Lower: 0, Upper: 1}, {Lower: 2, Upper: 1}, {Lower: 0, Upper: 1}}, nil},
		{"infinite bound", models.Bounds{{Lower: 0, Upper: 1}, {Lower: 0, Upper: math.Inf(1)}, {Lower: 0, Upper: 1}}, nil},
		{"warm start length", box(3, 0, 1), []float64{0, 0}},
		{"warm start NaN", box(3, 0, 1), []float64{0, math.NaN(), 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &sphereProblem{dim: 3}
			d := NewDriver(&recordingOptimizer{}, nil)
			_, err := d.Optimize(context.Background(), p, tt.bounds, tt.warm)
			var cfgErr *models.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if p.calls != 0 {
				t.Fatalf("objective was evaluated %d times before validation failed", p.calls)
			}
		})
	}
}

func TestDriverClipsWarmStart(t *testing.T) {
	rec := &recordingOptimizer{}
	d := NewDriver(rec, nil)
	_, err := d.Optimize(context.Background(), &sphereProblem{dim: 2}, box(2, 0, 1), []float64{-3, 0.5})
	if err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}
	if rec.warm[0] != 0 || rec.warm[1] != 0.5 {
		t.Fatalf("warm start not clipped: %v", rec.warm)
	}
}

func TestDriverRunsOptimizer(t *testing.T) {
	de, err := NewDifferentialEvolution(testDEConfig(99, 50))
	if err != nil {
		t.Fatalf("NewDifferentialEvolution: %v", err)
	}
	d := NewDriver(de, nil)
	if d.Optimizer().Name() != AlgorithmDE {
		t.Fatalf("unexpected optimizer %q", d.Optimizer().Name())
	}

	res, err := d.Optimize(context.Background(), &sphereProblem{dim: 2}, box(2, -2, 2), nil)
	if err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}
	if res.Cost > 1e-2 {
		t.Fatalf("expected a low cost, got %g", res.Cost)
	}
}

func TestDriverNilOptimizer(t *testing.T) {
	_, err := NewDriver(nil, nil).Optimize(context.Background(), &sphereProblem{dim: 1}, box(1, 0, 1), nil)
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestNewOptimizer(t *testing.T) {
	tests := []struct {
		algorithm string
		expected  string
	}{
		{"", AlgorithmDE},
		{"de", AlgorithmDE},
		{"sa", AlgorithmSA},
		{"bo", AlgorithmBO},
	}
	for _, tt := range tests {
		opt, err := New(Settings{Algorithm: tt.algorithm, DE: DefaultDEConfig(), SA: DefaultSAConfig(), BO: DefaultBOConfig()})
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", tt.algorithm, err)
		}
		if opt.Name() != tt.expected {
			t.Errorf("New(%q).Name() = %q, expected %q", tt.algorithm, opt.Name(), tt.expected)
		}
	}

	_, err := New(Settings{Algorithm: "bayes"})
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	_, err = New(Settings{Algorithm: "de", DE: DEConfig{}})
	if err == nil {
		t.Fatal("expected invalid DE config to be rejected")
	}
	_, err = New(Settings{Algorithm: "bo", BO: BOConfig{}})
	if err == nil {
		t.Fatal("expected invalid BO config to be rejected")
	}
}
