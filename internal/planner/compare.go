package planner

import (
	"errors"

	"github.com/GoSim-25-26J-441/runway-core/pkg/utils"
)

// Trends reported by CompareTrials
const (
	TrendImproving = "improving"
	TrendDegrading = "degrading"
	TrendStable    = "stable"
)

// TrialComparison summarizes the finished trials of a run
type TrialComparison struct {
	BestTrialID  string
	WorstTrialID string
	MeanCost     float64
	CostStdDev   float64
	// RestartBest holds the best cost of each restart, in order
	RestartBest []float64
	// Trend is the direction of RestartBest over the restarts
	Trend string
}

// CompareTrials compares the trials that produced a result
func CompareTrials(trials []Trial) (*TrialComparison, error) {
	var (
		costs       []float64
		best, worst *Trial
		restartBest []float64
	)
	for i := range trials {
		t := &trials[i]
		if t.Result == nil {
			continue
		}
		costs = append(costs, t.Result.Cost)
		if best == nil || t.Result.Cost < best.Result.Cost {
			best = t
		}
		if worst == nil || t.Result.Cost > worst.Result.Cost {
			worst = t
		}

		for len(restartBest) <= t.Restart {
			restartBest = append(restartBest, t.Result.Cost)
		}
		if t.Result.Cost < restartBest[t.Restart] {
			restartBest[t.Restart] = t.Result.Cost
		}
	}
	if best == nil {
		return nil, errors.New("no trial produced a result")
	}

	return &TrialComparison{
		BestTrialID:  best.ID,
		WorstTrialID: worst.ID,
		MeanCost:     utils.Mean(costs),
		CostStdDev:   utils.StdDev(costs),
		RestartBest:  restartBest,
		Trend:        determineTrend(restartBest),
	}, nil
}

// determineTrend fits a least-squares line through the costs; a falling
// line is an improvement
func determineTrend(costs []float64) string {
	if len(costs) < 2 {
		return TrendStable
	}

	n := float64(len(costs))
	var sumX, sumY, sumXY, sumX2 float64
	for i, c := range costs {
		x := float64(i)
		sumX += x
		sumY += c
		sumXY += x * c
		sumX2 += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)

	switch {
	case slope < -0.01:
		return TrendImproving
	case slope > 0.01:
		return TrendDegrading
	default:
		return TrendStable
	}
}

// ImprovementPercentage is the relative cost reduction from before to
// after, in percent. It is 0 when before is 0.
func ImprovementPercentage(before, after float64) float64 {
	if before == 0 {
		return 0
	}
	return (before - after) / before * 100
}
