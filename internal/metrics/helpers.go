package metrics

import (
	"sort"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
	"github.com/GoSim-25-26J-441/runway-core/pkg/utils"
)

// Common series names
const (
	SeriesBestCost = "best_cost"
	SeriesMeanCost = "mean_cost"
)

// TrialSeries returns the series name used for one trial of a run,
// e.g. "best_cost/run-20240601-120000-ab12cd34/r0/t1".
func TrialSeries(metric, trialID string) string {
	if trialID == "" {
		return metric
	}
	return metric + "/" + trialID
}

// RecordBestCost records the best cost of a generation
func RecordBestCost(c *Collector, trialID string, generation int, cost float64) {
	c.Record(TrialSeries(SeriesBestCost, trialID), generation, cost)
}

// RecordMeanCost records the population mean cost of a generation
func RecordMeanCost(c *Collector, trialID string, generation int, cost float64) {
	c.Record(TrialSeries(SeriesMeanCost, trialID), generation, cost)
}

// FeasibleRate returns the share of evaluations that had no violation
func FeasibleRate(s *models.MetricsSummary) float64 {
	if s == nil || s.Evaluations == 0 {
		return 0
	}
	return float64(s.Feasible) / float64(s.Evaluations)
}

func aggregate(points []models.SeriesPoint) *models.Aggregation {
	if len(points) == 0 {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	sort.Float64s(values)

	sum := utils.Sum(values)
	return &models.Aggregation{
		Count: int64(len(values)),
		Sum:   sum,
		Min:   values[0],
		Max:   values[len(values)-1],
		Mean:  sum / float64(len(values)),
		P50:   percentile(values, 0.50),
		P95:   percentile(values, 0.95),
	}
}

// percentile interpolates linearly within a sorted slice
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
