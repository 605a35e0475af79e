package planner

import (
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/runway-core/internal/search"
)

func trialWithCost(id string, restart, index int, cost float64) Trial {
	return Trial{ID: id, Restart: restart, Index: index, Result: &search.Result{Cost: cost}}
}

func TestCompareTrials(t *testing.T) {
	trials := []Trial{
		trialWithCost("r0t0", 0, 0, 900),
		trialWithCost("r0t1", 0, 1, 700),
		trialWithCost("r1t0", 1, 0, 500),
		trialWithCost("r1t1", 1, 1, 600),
		{ID: "r2t0", Restart: 2, Index: 0},
		trialWithCost("r2t1", 2, 1, 300),
	}

	c, err := CompareTrials(trials)
	if err != nil {
		t.Fatalf("CompareTrials: %v", err)
	}
	if c.BestTrialID != "r2t1" || c.WorstTrialID != "r0t0" {
		t.Errorf("unexpected best/worst: %s/%s", c.BestTrialID, c.WorstTrialID)
	}
	if c.MeanCost != 600 {
		t.Errorf("expected mean 600, got %f", c.MeanCost)
	}
	want := []float64{700, 500, 300}
	if len(c.RestartBest) != len(want) {
		t.Fatalf("expected %v, got %v", want, c.RestartBest)
	}
	for i := range want {
		if c.RestartBest[i] != want[i] {
			t.Errorf("restart %d: expected %f, got %f", i, want[i], c.RestartBest[i])
		}
	}
	if c.Trend != TrendImproving {
		t.Errorf("expected improving trend, got %s", c.Trend)
	}
}

func TestCompareTrialsNoResults(t *testing.T) {
	if _, err := CompareTrials([]Trial{{ID: "x"}}); err == nil {
		t.Fatal("expected error without results")
	}
}

func TestDetermineTrend(t *testing.T) {
	tests := []struct {
		name     string
		costs    []float64
		expected string
	}{
		{"single", []float64{5}, TrendStable},
		{"flat", []float64{5, 5, 5}, TrendStable},
		{"falling", []float64{9, 7, 4}, TrendImproving},
		{"rising", []float64{1, 2, 3}, TrendDegrading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineTrend(tt.costs); got != tt.expected {
				t.Errorf("determineTrend(%v) = %s, expected %s", tt.costs, got, tt.expected)
			}
		})
	}
}

func TestImprovementPercentage(t *testing.T) {
	if got := ImprovementPercentage(400, 300); math.Abs(got-25) > 1e-9 {
		t.Errorf("expected 25%%, got %f", got)
	}
	if got := ImprovementPercentage(0, 10); got != 0 {
		t.Errorf("expected 0 for zero baseline, got %f", got)
	}
	if got := ImprovementPercentage(100, 120); got >= 0 {
		t.Errorf("expected a negative value for a worse result, got %f", got)
	}
}
