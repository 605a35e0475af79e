// Package planner turns a scenario into a runway schedule. It wires the
// flight registry, separation model, encoding and evaluator, then runs the
// configured optimizer as a chain of restarts with concurrent trials.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GoSim-25-26J-441/runway-core/internal/encoding"
	"github.com/GoSim-25-26J-441/runway-core/internal/evaluator"
	"github.com/GoSim-25-26J-441/runway-core/internal/flights"
	"github.com/GoSim-25-26J-441/runway-core/internal/metrics"
	"github.com/GoSim-25-26J-441/runway-core/internal/report"
	"github.com/GoSim-25-26J-441/runway-core/internal/search"
	"github.com/GoSim-25-26J-441/runway-core/internal/separation"
	"github.com/GoSim-25-26J-441/runway-core/internal/store"
	"github.com/GoSim-25-26J-441/runway-core/pkg/config"
	"github.com/GoSim-25-26J-441/runway-core/pkg/models"
	"github.com/GoSim-25-26J-441/runway-core/pkg/utils"
)

// Planner runs one scenario. It is not reusable across concurrent Run calls.
type Planner struct {
	scenario  *config.Scenario
	registry  *flights.Registry
	encoding  *encoding.Encoding
	evaluator *evaluator.Evaluator
	collector *metrics.Collector
	trials    *TrialStore
	logger    *slog.Logger
	runID     string
}

// Option configures a Planner
type Option func(*Planner)

// WithLogger sets the logger; the default is slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRunID fixes the run id instead of generating one
func WithRunID(id string) Option {
	return func(p *Planner) {
		if id != "" {
			p.runID = id
		}
	}
}

// Plan is the outcome of a run
type Plan struct {
	RunID     string
	Algorithm string
	Seed      int64

	// Best is the result of the winning trial
	Best        *search.Result
	BestTrialID string
	Breakdown   models.Breakdown
	Schedule    []models.Assignment
	Trials      []Trial
	Comparison  *TrialComparison
	Metrics     *models.MetricsSummary

	// WarmStartCost is the cost of the warm-start vector, or +Inf for a
	// cold start
	WarmStartCost float64
	Generations   int
	Evaluations   int
	Duration      time.Duration
	Canceled      bool
}

// Improvement is the percentage cost reduction over the warm start; 0 for
// a cold start
func (pl *Plan) Improvement() float64 {
	if math.IsInf(pl.WarmStartCost, 1) {
		return 0
	}
	return ImprovementPercentage(pl.WarmStartCost, pl.Breakdown.Cost)
}

// New builds the problem described by s
func New(s *config.Scenario, opts ...Option) (*Planner, error) {
	if s == nil {
		return nil, &models.ConfigurationError{Field: "scenario", Reason: "scenario is nil"}
	}

	fs, err := s.Flights()
	if err != nil {
		return nil, fmt.Errorf("failed to load flights: %w", err)
	}
	reg, err := flights.New(fs)
	if err != nil {
		return nil, fmt.Errorf("failed to build flight registry: %w", err)
	}

	tables, err := s.SeparationTables()
	if err != nil {
		return nil, err
	}
	sep, err := separation.New(tables)
	if err != nil {
		return nil, fmt.Errorf("failed to build separation model: %w", err)
	}

	encOpts, err := s.EncodingOptions()
	if err != nil {
		return nil, err
	}
	enc, err := encoding.New(reg, encOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to build encoding: %w", err)
	}

	collector := metrics.NewCollector()
	ev, err := evaluator.New(reg, sep, enc, s.PenaltyConstants(), evaluator.WithRecorder(collector))
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluator: %w", err)
	}

	p := &Planner{
		scenario:  s,
		registry:  reg,
		encoding:  enc,
		evaluator: ev,
		collector: collector,
		trials:    NewTrialStore(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == "" {
		p.runID = utils.GenerateRunID()
	}
	p.logger = p.logger.With("run_id", p.runID)
	return p, nil
}

func (p *Planner) RunID() string                   { return p.runID }
func (p *Planner) Registry() *flights.Registry     { return p.registry }
func (p *Planner) Encoding() *encoding.Encoding    { return p.encoding }
func (p *Planner) Evaluator() *evaluator.Evaluator { return p.evaluator }
func (p *Planner) Collector() *metrics.Collector   { return p.collector }
func (p *Planner) Trials() *TrialStore             { return p.trials }

// FlightIDs returns the flight ids in vector order
func (p *Planner) FlightIDs() []string {
	ids := make([]string, p.registry.Len())
	for i := range ids {
		ids[i] = p.registry.Flight(i).ID
	}
	return ids
}

// Run searches for a schedule. warmStart may be nil. Each restart is seeded
// from the best vector found so far; within a restart the trials run
// concurrently with seeds derived from search.seed (a zero seed resolves
// to one clock seed for the whole run).
//
// When ctx is canceled after at least one trial produced a result, Run
// returns the best plan so far together with the context error.
func (p *Planner) Run(ctx context.Context, warmStart []float64) (*Plan, error) {
	sc := p.scenario.Search
	if warmStart != nil && len(warmStart) != p.evaluator.Dimension() {
		return nil, &models.ConfigurationError{Field: "warm_start", Reason: fmt.Sprintf("length %d does not match dimension %d", len(warmStart), p.evaluator.Dimension())}
	}

	seed := utils.NewRandSource(sc.Seed).Seed()

	start := time.Now()
	p.collector.Start()
	warmCost := math.Inf(1)
	if warmStart != nil {
		warmCost = p.evaluator.Cost(p.evaluator.Bounds().Clip(warmStart))
	}

	p.logger.Info("planning started",
		"algorithm", algorithmName(sc.Algorithm),
		"flights", p.registry.Len(),
		"dimension", p.evaluator.Dimension(),
		"restarts", sc.Restarts,
		"trials", sc.Trials,
		"seed", seed,
		"warm_start", warmStart != nil)

	var (
		best    Trial
		found   bool
		runErr  error
		current = warmStart
	)
	for r := 0; r < sc.Restarts; r++ {
		err := p.runRestart(ctx, r, seed, current)
		if rb, ok := p.trials.Best(r); ok {
			p.logger.Info("restart finished",
				"restart", r,
				"best_cost", rb.Result.Cost,
				"trial_id", rb.ID)
			if !found || rb.Result.Cost < best.Result.Cost {
				best, found = rb, true
			}
			current = best.Result.Best
		}
		if err != nil {
			runErr = err
			break
		}
	}

	p.collector.Stop()
	if !found {
		if runErr == nil {
			runErr = errors.New("no trial produced a result")
		}
		return nil, fmt.Errorf("planning failed: %w", runErr)
	}
	canceled := runErr != nil && ctx.Err() != nil
	if runErr != nil && !canceled {
		return nil, fmt.Errorf("planning failed: %w", runErr)
	}

	plan, err := p.buildPlan(best, seed, start)
	if err != nil {
		return nil, err
	}
	plan.Canceled = canceled
	plan.WarmStartCost = warmCost

	p.logger.Info("planning finished",
		"best_cost", plan.Breakdown.Cost,
		"total_delay", plan.Breakdown.TotalDelay,
		"penalty", plan.Breakdown.Penalty,
		"feasible", plan.Breakdown.Feasible(),
		"evaluations", plan.Evaluations,
		"feasible_rate", metrics.FeasibleRate(plan.Metrics),
		"trend", plan.Comparison.Trend,
		"improvement_pct", plan.Improvement(),
		"duration", plan.Duration,
		"canceled", canceled)

	if canceled {
		return plan, ctx.Err()
	}
	return plan, nil
}

// runRestart runs every trial of restart r with seeds derived from base. A
// trial failure cancels the others; cancellation of ctx is reported after
// all trials have stopped.
func (p *Planner) runRestart(ctx context.Context, r int, base int64, warmStart []float64) error {
	sc := p.scenario.Search
	g, gctx := errgroup.WithContext(ctx)

	for t := 0; t < sc.Trials; t++ {
		id := utils.GenerateTrialID(p.runID, r, t)
		seed := TrialSeed(base, r, t, sc.Trials)
		if _, err := p.trials.Create(id, r, t, seed); err != nil {
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			return p.runTrial(gctx, id, seed, warmStart)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Planner) runTrial(ctx context.Context, id string, seed int64, warmStart []float64) error {
	sc := p.scenario.Search
	log := p.logger.With("trial_id", id)

	conv, err := search.NewConvergenceStrategy(sc.Convergence, &sc.ConvergenceConfig)
	if err != nil {
		return p.fail(id, err)
	}

	de := sc.DE
	de.Seed, de.Workers = seed, sc.Workers
	sa := sc.SA
	sa.Seed = seed
	bo := sc.BO
	bo.Seed, bo.Workers = seed, sc.Workers

	opt, err := search.New(search.Settings{
		Algorithm:   sc.Algorithm,
		DE:          de,
		SA:          sa,
		BO:          bo,
		Convergence: conv,
		Progress:    p.progressReporter(id, log),
	})
	if err != nil {
		return p.fail(id, err)
	}

	_ = p.trials.SetStatus(id, TrialRunning, "")
	res, err := search.NewDriver(opt, log).Optimize(ctx, p.evaluator, p.evaluator.Bounds(), warmStart)
	if res != nil {
		_ = p.trials.SetResult(id, res)
	}
	if err != nil {
		if ctx.Err() != nil && res != nil {
			_ = p.trials.SetStatus(id, TrialCanceled, err.Error())
			return nil
		}
		return p.fail(id, err)
	}
	_ = p.trials.SetStatus(id, TrialCompleted, "")

	log.Debug("trial finished",
		"best_cost", res.Cost,
		"generations", res.Generations,
		"converged", res.Converged,
		"reason", res.Reason)
	return nil
}

func (p *Planner) fail(id string, err error) error {
	_ = p.trials.SetStatus(id, TrialFailed, err.Error())
	return fmt.Errorf("trial %s: %w", id, err)
}

// progressReporter records per-generation series and logs every log_every
// generations
func (p *Planner) progressReporter(id string, log *slog.Logger) search.ProgressReporter {
	every := p.scenario.Search.LogEvery
	return func(step search.Step) {
		metrics.RecordBestCost(p.collector, id, step.Generation, step.BestCost)
		metrics.RecordMeanCost(p.collector, id, step.Generation, step.MeanCost)
		if every > 0 && step.Generation%every == 0 {
			log.Info("generation",
				"generation", step.Generation,
				"best_cost", step.BestCost,
				"mean_cost", step.MeanCost,
				"evaluations", step.Evaluations)
		}
	}
}

func (p *Planner) buildPlan(best Trial, seed int64, start time.Time) (*Plan, error) {
	bd, err := p.evaluator.Evaluate(best.Result.Best)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate best vector: %w", err)
	}
	schedule, err := p.evaluator.Schedule(best.Result.Best)
	if err != nil {
		return nil, fmt.Errorf("failed to decode best vector: %w", err)
	}

	trials := p.trials.List()
	comparison, err := CompareTrials(trials)
	if err != nil {
		return nil, err
	}
	plan := &Plan{
		RunID:       p.runID,
		Algorithm:   best.Result.Algorithm,
		Seed:        seed,
		Best:        best.Result,
		BestTrialID: best.ID,
		Breakdown:   bd,
		Schedule:    schedule,
		Trials:      trials,
		Comparison:  comparison,
		Duration:    time.Since(start),
	}
	for _, t := range trials {
		if t.Result != nil {
			plan.Generations += t.Result.Generations
			plan.Evaluations += t.Result.Evaluations
		}
	}
	plan.Metrics = p.collector.Summary()
	return plan, nil
}

// Solution returns the persisted form of the plan's best vector
func (p *Planner) Solution(plan *Plan) *store.Solution {
	return &store.Solution{
		RunID:     plan.RunID,
		Algorithm: plan.Algorithm,
		Seed:      plan.Seed,
		FlightIDs: p.FlightIDs(),
		Vector:    append([]float64(nil), plan.Best.Best...),
		Cost:      plan.Best.Cost,
		CreatedAt: time.Now().UTC(),
	}
}

// Report returns the printable form of the plan
func (p *Planner) Report(plan *Plan) *report.Report {
	return &report.Report{
		RunID:       plan.RunID,
		Algorithm:   plan.Algorithm,
		Schedule:    plan.Schedule,
		Breakdown:   plan.Breakdown,
		Mode:        p.encoding.Options().DepartureMode,
		Generations: plan.Generations,
		Evaluations: plan.Evaluations,
		Elapsed:     plan.Duration,
	}
}

// TrialSeed derives the seed of trial t of restart r. Restart 0, trial 0
// uses base itself.
func TrialSeed(base int64, r, t, trials int) int64 {
	return base + int64(r*trials+t)
}

func algorithmName(name string) string {
	if name == "" {
		return search.AlgorithmDE
	}
	return name
}
