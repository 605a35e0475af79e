package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoSim-25-26J-441/runway-core/internal/planner"
	"github.com/GoSim-25-26J-441/runway-core/internal/report"
	"github.com/GoSim-25-26J-441/runway-core/internal/store"
	"github.com/GoSim-25-26J-441/runway-core/pkg/config"
	"github.com/GoSim-25-26J-441/runway-core/pkg/logger"
)

// options are the command-line overrides applied on top of the scenario
type options struct {
	configPath  string
	logLevel    string
	seed        int64
	seedSet     bool
	algorithm   string
	generations int
	warmStart   string
	out         string
	csv         string
	printConfig bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "scenario YAML file (empty runs the reference scenario)")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.Int64Var(&opts.seed, "seed", 0, "random seed override")
	flag.StringVar(&opts.algorithm, "algorithm", "", "optimizer override (de, sa, bo)")
	flag.IntVar(&opts.generations, "generations", 0, "DE generations, SA iterations or BO calls override")
	flag.StringVar(&opts.warmStart, "warm-start", "", "solution file to seed the search from")
	flag.StringVar(&opts.out, "out", "", "where to save the best solution")
	flag.StringVar(&opts.csv, "csv", "", "where to write the schedule as CSV")
	flag.BoolVar(&opts.printConfig, "print-config", false, "print the effective scenario and exit")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.seedSet = true
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		logger.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	scenario, err := loadScenario(opts)
	if err != nil {
		return err
	}

	if opts.printConfig {
		out, err := scenario.Encode()
		if err != nil {
			return err
		}
		_, err = stdout.Write(out)
		return err
	}

	log := logger.NewText(scenario.LogLevel, os.Stderr)
	if scenario.LogFile != "" {
		fileLog, closer, err := logger.NewFile(scenario.LogLevel, scenario.LogFile)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer closer.Close()
		log = fileLog
	}
	logger.SetDefault(log)

	p, err := planner.New(scenario, planner.WithLogger(log))
	if err != nil {
		return err
	}

	warm, err := loadWarmStart(scenario.Output.WarmStart, p, log)
	if err != nil {
		return err
	}

	plan, err := p.Run(ctx, warm)
	if err != nil && plan == nil {
		return err
	}
	if err != nil {
		log.Warn("search interrupted, keeping best solution so far", "error", err)
	}

	if path := scenario.Output.Solution; path != "" {
		if err := store.Save(path, p.Solution(plan)); err != nil {
			return fmt.Errorf("failed to save solution: %w", err)
		}
		log.Info("solution saved", "path", path, "cost", plan.Best.Cost)
	}
	if path := scenario.Output.CSV; path != "" {
		if err := report.WriteCSV(path, plan.Schedule); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		log.Info("schedule written", "path", path)
	}

	return report.Write(stdout, p.Report(plan))
}

// loadScenario reads the scenario and applies the flag overrides
func loadScenario(opts options) (*config.Scenario, error) {
	scenario := config.DefaultScenario()
	if opts.configPath != "" {
		s, err := config.LoadScenario(opts.configPath)
		if err != nil {
			return nil, err
		}
		scenario = s
	}

	if opts.logLevel != "" {
		scenario.LogLevel = opts.logLevel
	}
	if opts.seedSet {
		scenario.Search.Seed = opts.seed
	}
	if opts.algorithm != "" {
		scenario.Search.Algorithm = opts.algorithm
	}
	if opts.generations > 0 {
		scenario.Search.DE.Generations = opts.generations
		scenario.Search.SA.Iterations = opts.generations
		scenario.Search.BO.Calls = max(opts.generations, scenario.Search.BO.InitialPoints)
	}
	if opts.warmStart != "" {
		scenario.Output.WarmStart = opts.warmStart
	}
	if opts.out != "" {
		scenario.Output.Solution = opts.out
	}
	if opts.csv != "" {
		scenario.Output.CSV = opts.csv
	}

	out, err := scenario.Encode()
	if err != nil {
		return nil, err
	}
	// re-parse so overrides go through the same validation as the file
	return config.ParseScenarioYAML(out)
}

// loadWarmStart returns the saved vector at path, or nil when path is
// empty or the file does not exist yet
func loadWarmStart(path string, p *planner.Planner, log *slog.Logger) ([]float64, error) {
	if path == "" {
		return nil, nil
	}
	sol, err := store.Load(path, p.Evaluator().Dimension())
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("warm start file not found, starting cold", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := sol.CheckFlights(p.FlightIDs()); err != nil {
		return nil, err
	}
	log.Info("warm start loaded", "path", path, "cost", sol.Cost, "from_run", sol.RunID)
	return sol.Vector, nil
}
