// Command ccyoe runs CCYOE yield analytics from the terminal: backtests,
// parameter searches, sensitivity sweeps and stress tests over a CSV yield
// history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cambi-labs/ccyoe/analyzer"
	"github.com/cambi-labs/ccyoe/backtest"
	"github.com/cambi-labs/ccyoe/core"
	"github.com/cambi-labs/ccyoe/feed"
	zerologger "github.com/cambi-labs/ccyoe/logger/zerolog"
	"github.com/cambi-labs/ccyoe/optimizer"
	"github.com/cambi-labs/ccyoe/storage"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	str2duration "github.com/xhit/go-str2duration/v2"
)

func main() {
	var (
		dataPath  = flag.String("data", "", "path to the yield history CSV")
		mode      = flag.String("mode", "backtest", "backtest | optimize | sweep | stress | analyze")
		from      = flag.String("from", "", "window start (YYYY-MM-DD, default series start)")
		to        = flag.String("to", "", "window end (YYYY-MM-DD, default series end)")
		interval  = flag.String("interval", "1d", "minimum time between rebalances (e.g. 1d, 1w)")
		threshold = flag.Float64("threshold", 100, "rebalance trigger threshold in bp")
		objective = flag.String("objective", string(core.ObjectiveSharpeRatio), "optimization objective")
		strategy  = flag.String("strategy", string(optimizer.StrategyEvolution), "search strategy")
		sweep     = flag.String("sweep", "rebalance_threshold", "parameter swept in sweep mode")
		samples   = flag.Int("samples", 10, "sweep sample count")
		storePath = flag.String("store", "", "buntdb file persisting results (optional)")
		label     = flag.String("label", "", "label attached to persisted results")
		progress  = flag.Bool("progress", false, "render a progress bar")
		verbose   = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	console := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	log := zerologger.NewAdapter(&console)
	if *verbose {
		log.SetLevel(core.DebugLevel)
	} else {
		log.SetLevel(core.InfoLevel)
	}

	if *dataPath == "" {
		log.Fatal("missing required -data flag")
	}

	series, err := feed.LoadCSV(*dataPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load yield history")
	}

	start, end, err := resolveWindow(series, *from, *to)
	if err != nil {
		log.WithError(err).Fatal("invalid window")
	}

	cfg := core.DefaultPolicyConfig()
	cfg.RebalanceThreshold = *threshold
	if days, err := intervalDays(*interval); err != nil {
		log.WithError(err).Fatal("invalid -interval")
	} else {
		cfg.MinRebalanceInterval = days
	}

	var store core.RunStore
	if *storePath != "" {
		bunt, err := storage.NewFromFile(*storePath)
		if err != nil {
			log.WithError(err).Fatal("failed to open run store")
		}
		store = bunt
	}

	app := &app{
		series:    series,
		cfg:       cfg,
		log:       log,
		store:     store,
		start:     start,
		end:       end,
		label:     *label,
		progress:  *progress,
		objective: core.Objective(*objective),
		strategy:  optimizer.Strategy(*strategy),
	}

	ctx := context.Background()
	switch *mode {
	case "backtest":
		err = app.runBacktest()
	case "optimize":
		err = app.runOptimize(ctx)
	case "sweep":
		err = app.runSweep(ctx, *sweep, *samples)
	case "stress":
		err = app.runStress()
	case "analyze":
		err = app.runAnalyze()
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.WithError(err).Fatal("run failed")
	}
}

type app struct {
	series    *core.YieldSeries
	cfg       core.PolicyConfig
	log       core.Logger
	store     core.RunStore
	start     time.Time
	end       time.Time
	label     string
	progress  bool
	objective core.Objective
	strategy  optimizer.Strategy
}

func (a *app) engineOptions() []backtest.Option {
	opts := []backtest.Option{backtest.WithLogger(a.log)}
	if a.progress {
		opts = append(opts, backtest.WithProgressBar())
	}
	return opts
}

func (a *app) runBacktest() error {
	engine, err := backtest.NewEngine(a.series, a.cfg, a.engineOptions()...)
	if err != nil {
		return err
	}
	result, err := engine.Run(a.start, a.end, core.DefaultInitialPortfolio())
	if err != nil {
		return err
	}

	backtest.WriteSummary(os.Stdout, result)

	if a.store != nil {
		return a.store.SaveBacktest(&core.BacktestRecord{
			Label:  a.label,
			Config: a.cfg,
			Result: *result,
		})
	}
	return nil
}

func (a *app) runOptimize(ctx context.Context) error {
	opt, err := optimizer.New(a.series, a.cfg, optimizer.NewConfig().WithLogger(a.log))
	if err != nil {
		return err
	}

	result, err := opt.Optimize(ctx, optimizer.Request{
		Objective:        a.objective,
		Strategy:         a.strategy,
		From:             a.start,
		To:               a.end,
		RunFinalBacktest: true,
	})
	if err != nil {
		return err
	}

	report := optimizer.ValidateResult(result, nil, nil, 1e-6)
	if !report.Feasible {
		a.log.WithField("violations", report.Violations).Warn("optimum violates constraints")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Parameter", "Value"})
	for _, name := range core.ParamNames {
		table.Append([]string{name, fmt.Sprintf("%.4f", result.OptimalParams[name])})
	}
	table.Append([]string{"objective (" + result.Objective + ")", fmt.Sprintf("%.6f", result.OptimalValue)})
	table.Append([]string{"converged", fmt.Sprintf("%v", result.Converged)})
	table.Append([]string{"evaluations", fmt.Sprintf("%d", result.FuncEvaluations)})
	table.Render()

	if result.Backtest != nil {
		backtest.WriteSummary(os.Stdout, result.Backtest)
	}

	if a.store != nil {
		return a.store.SaveOptimization(&core.OptimizationRecord{
			Label:  a.label,
			Result: *result,
		})
	}
	return nil
}

func (a *app) runSweep(ctx context.Context, param string, samples int) error {
	opt, err := optimizer.New(a.series, a.cfg,
		optimizer.NewConfig().WithLogger(a.log).WithParallelism(4))
	if err != nil {
		return err
	}

	points, err := opt.Sensitivity(ctx, optimizer.Request{
		Objective: a.objective,
		From:      a.start,
		To:        a.end,
	}, param, samples)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{param, "Objective", "Return", "Volatility", "Sharpe", "Max DD"})
	for _, p := range points {
		table.Append([]string{
			fmt.Sprintf("%.4f", p.ParameterValue),
			fmt.Sprintf("%.6f", p.ObjectiveValue),
			fmt.Sprintf("%.2f %%", p.TotalReturn*100),
			fmt.Sprintf("%.2f %%", p.Volatility*100),
			fmt.Sprintf("%.3f", p.SharpeRatio),
			fmt.Sprintf("%.2f %%", p.MaxDrawdown*100),
		})
	}
	table.Render()
	return nil
}

func (a *app) runStress() error {
	results, err := backtest.RunStressTest(a.series, a.cfg, backtest.DefaultScenarios(),
		a.start, a.end, core.DefaultInitialPortfolio(), backtest.WithLogger(a.log))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Scenario", "Return", "Volatility", "Max DD", "Rebalances"})
	for _, scenario := range backtest.DefaultScenarios() {
		r := results[scenario.Name]
		table.Append([]string{
			scenario.Name,
			fmt.Sprintf("%.2f %%", r.TotalReturn*100),
			fmt.Sprintf("%.2f %%", r.Volatility*100),
			fmt.Sprintf("%.2f %%", r.MaxDrawdown*100),
			fmt.Sprintf("%d", r.RebalanceCount),
		})
	}
	table.Render()
	return nil
}

func (a *app) runAnalyze() error {
	window, err := a.series.Window(a.start, a.end)
	if err != nil {
		return err
	}
	an, err := analyzer.New(window, analyzer.WithLogger(a.log))
	if err != nil {
		return err
	}
	summaries, err := an.SummarizeAll()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Asset", "Mean", "Min", "Max", "Vol", "Trend", "R²", "Autocorr"})
	for _, asset := range window.Assets() {
		s := summaries[asset]
		table.Append([]string{
			asset,
			fmt.Sprintf("%.1f", s.MeanYield),
			fmt.Sprintf("%.1f", s.MinYield),
			fmt.Sprintf("%.1f", s.MaxYield),
			fmt.Sprintf("%.1f", s.Volatility),
			s.Trend.Direction,
			fmt.Sprintf("%.3f", s.Trend.RSquared),
			fmt.Sprintf("%.3f", s.Stability.Autocorrelation),
		})
	}
	table.Render()

	cross, err := an.CrossAsset()
	if err != nil {
		return err
	}
	fmt.Printf("avg correlation: %.3f  diversification ratio: %.3f\n",
		cross.Correlations.Average, cross.DiversificationRatio)
	return nil
}

// resolveWindow parses the window flags, defaulting to the full series.
func resolveWindow(series *core.YieldSeries, from, to string) (time.Time, time.Time, error) {
	start := series.Start()
	end := series.End()
	var err error
	if from != "" {
		if start, err = time.Parse(time.DateOnly, from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if to != "" {
		if end, err = time.Parse(time.DateOnly, to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to: %w", err)
		}
	}
	return start, end, nil
}

// intervalDays converts a duration string like "1d" or "1w" into whole days.
func intervalDays(s string) (int, error) {
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("interval must not be negative")
	}
	return int(d.Hours() / 24), nil
}
