package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
)

// Collector gathers evaluation counters and per-generation series during a
// run. Counters are lock-free so the collector can sit behind every
// evaluator call; series are guarded by a mutex.
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	evaluations          atomic.Int64
	feasible             atomic.Int64
	positionConflicts    atomic.Int64
	windowViolations     atomic.Int64
	separationConflicts  atomic.Int64
	dedicationViolations atomic.Int64

	// series name -> samples in recording order
	series map[string][]models.SeriesPoint
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		series:    make(map[string][]models.SeriesPoint),
	}
}

// Start marks the start of metric collection
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of metric collection
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// RecordEvaluation counts one evaluator call and its violations
func (c *Collector) RecordEvaluation(d models.Diagnostics) {
	c.evaluations.Add(1)
	if d.Feasible() {
		c.feasible.Add(1)
	}
	c.positionConflicts.Add(int64(d.PositionConflicts))
	c.windowViolations.Add(int64(d.WindowViolations))
	c.separationConflicts.Add(int64(d.SeparationConflicts))
	c.dedicationViolations.Add(int64(d.DedicationViolations))
}

// Record appends a sample to the named series
func (c *Collector) Record(name string, generation int, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[name] = append(c.series[name], models.SeriesPoint{
		Generation: generation,
		Value:      value,
		Timestamp:  time.Now(),
	})
}

// Evaluations returns the number of recorded evaluations
func (c *Collector) Evaluations() int64 {
	return c.evaluations.Load()
}

// Violations returns the accumulated violation counts
func (c *Collector) Violations() models.Diagnostics {
	return models.Diagnostics{
		PositionConflicts:    int(c.positionConflicts.Load()),
		WindowViolations:     int(c.windowViolations.Load()),
		SeparationConflicts:  int(c.separationConflicts.Load()),
		DedicationViolations: int(c.dedicationViolations.Load()),
	}
}

// Series returns a copy of the samples recorded under name
func (c *Collector) Series(name string) []models.SeriesPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.series[name]
	if points == nil {
		return nil
	}
	out := make([]models.SeriesPoint, len(points))
	copy(out, points)
	return out
}

// SeriesNames returns the recorded series names in sorted order
func (c *Collector) SeriesNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns a snapshot of counters and per-series statistics
func (c *Collector) Summary() *models.MetricsSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := &models.MetricsSummary{
		StartTime:   c.startTime,
		EndTime:     c.endTime,
		Evaluations: c.evaluations.Load(),
		Feasible:    c.feasible.Load(),
		Violations:  c.Violations(),
		Series:      make(map[string]*models.Aggregation, len(c.series)),
	}
	if !c.endTime.IsZero() {
		summary.Duration = c.endTime.Sub(c.startTime)
	}
	for name, points := range c.series {
		if agg := aggregate(points); agg != nil {
			summary.Series[name] = agg
		}
	}
	return summary
}

// Clear resets all counters and series
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evaluations.Store(0)
	c.feasible.Store(0)
	c.positionConflicts.Store(0)
	c.windowViolations.Store(0)
	c.separationConflicts.Store(0)
	c.dedicationViolations.Store(0)
	c.series = make(map[string][]models.SeriesPoint)
	c.startTime = time.Now()
	c.endTime = time.Time{}
}
