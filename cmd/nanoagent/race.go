package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"amrikyy/nanoagent/internal/app"
	"amrikyy/nanoagent/internal/simulate"
	"amrikyy/nanoagent/pkg/cli"
	"amrikyy/nanoagent/pkg/config"
	"amrikyy/nanoagent/pkg/racer"
	"amrikyy/nanoagent/pkg/telemetry"
)

const shutdownTimeout = 10 * time.Second

var raceFlags struct {
	scenario    string
	rounds      int
	interval    time.Duration
	metricsAddr string
	format      string
	watch       bool
	hold        bool
	quiet       bool
}

var raceCmd = &cobra.Command{
	Use:   "race",
	Short: "Race the strategies of a scenario",
	Long: `Register the simulated strategies of a scenario file and run one decision
per round. Each round races the top weighted strategies, keeps the cheapest
valid quote and updates strategy weights. Weights are restored from and saved
to the configured backend.

The config file is watched while racing: changes to the engine section are
applied without a restart. SIGHUP forces a reload.

Examples:
  # Race the bundled scenario
  nanoagent race --scenario configs/scenario.yaml

  # Fifty rounds, JSON output
  nanoagent race -s configs/scenario.yaml --rounds 50 --format json

  # Keep serving /metrics and /ready after the last round
  nanoagent race -s configs/scenario.yaml --metrics-addr :9090 --hold`,
	RunE: runRace,
}

func init() {
	rootCmd.AddCommand(raceCmd)

	raceCmd.Flags().StringVarP(&raceFlags.scenario, "scenario", "s", "configs/scenario.yaml", "scenario file")
	raceCmd.Flags().IntVarP(&raceFlags.rounds, "rounds", "n", 0, "override the scenario's number of rounds")
	raceCmd.Flags().DurationVar(&raceFlags.interval, "interval", 0, "pause between rounds")
	raceCmd.Flags().StringVar(&raceFlags.metricsAddr, "metrics-addr", "", "serve metrics and health endpoints on this address")
	raceCmd.Flags().StringVarP(&raceFlags.format, "format", "o", "text", "output format: text, json, csv")
	raceCmd.Flags().BoolVar(&raceFlags.watch, "watch", true, "reload engine settings when the config file changes")
	raceCmd.Flags().BoolVar(&raceFlags.hold, "hold", false, "keep running after the last round until interrupted")
	raceCmd.Flags().BoolVarP(&raceFlags.quiet, "quiet", "q", false, "do not show progress")
}

// raceOutput is the JSON form of a race.
type raceOutput struct {
	Decisions cli.DecisionsTable                `json:"decisions"`
	Report    *racer.PerformanceReport          `json:"report"`
	Weights   map[string]float64                `json:"weights"`
	Providers map[string]simulate.ProviderStats `json:"providers"`
}

func runRace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sc, err := simulate.LoadScenario(raceFlags.scenario)
	if err != nil {
		return cli.NewConfigError(raceFlags.scenario, err)
	}
	if raceFlags.rounds > 0 {
		sc.Rounds = raceFlags.rounds
	}

	formatter, err := cli.NewFormatter(cli.OutputFormat(raceFlags.format))
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := app.New(cfg, versionInfo(), telemetry.WithLogWriter(cmd.ErrOrStderr()))
	if err != nil {
		return cli.NewCommandError("race", err)
	}
	logger := a.Logger()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	if err := a.Start(ctx); err != nil {
		return cli.NewCommandError("race", err)
	}

	providers, err := sc.Register(a.Engine())
	if err != nil {
		return cli.NewCommandError("race", err)
	}

	addr := cfg.Telemetry.Metrics.ListenAddress
	if raceFlags.metricsAddr != "" {
		addr = raceFlags.metricsAddr
	}
	if addr != "" {
		if _, err := a.Serve(addr); err != nil {
			return cli.NewCommandError("race", err)
		}
	}

	if raceFlags.watch {
		stopWatch := watchConfig(ctx, a, logger)
		defer stopWatch()
	}

	var progressOut io.Writer
	if !raceFlags.quiet {
		progressOut = cmd.ErrOrStderr()
	}
	rows, successes := raceRounds(ctx, a.Engine(), sc, raceFlags.interval, progressOut)

	engine := a.Engine()
	out := raceOutput{
		Decisions: rows,
		Report:    engine.Report(),
		Weights:   engine.Weights(),
		Providers: make(map[string]simulate.ProviderStats, len(providers)),
	}
	for _, p := range providers {
		out.Providers[p.Name()] = p.Stats()
	}
	if err := writeRace(cmd.OutOrStdout(), formatter, out); err != nil {
		return err
	}

	if raceFlags.hold && ctx.Err() == nil {
		logger.Info("rounds finished, holding until interrupted")
		<-ctx.Done()
	}

	if successes == 0 && len(rows) > 0 {
		return fmt.Errorf("%d rounds raced: %w", len(rows), cli.ErrNoDecision)
	}
	return nil
}

// raceRounds runs one decision per round until the rounds are exhausted or
// ctx ends. A nil progressOut disables the progress bar.
func raceRounds(ctx context.Context, engine racer.Engine, sc *simulate.Scenario, interval time.Duration, progressOut io.Writer) (cli.DecisionsTable, int) {
	var progress *cli.Progress
	if progressOut != nil {
		progress = cli.NewProgress(progressOut, "Racing", sc.Rounds)
		defer progress.Finish()
	}

	rows := make(cli.DecisionsTable, 0, sc.Rounds)
	successes := 0
	for round := 1; round <= sc.Rounds; round++ {
		if ctx.Err() != nil {
			break
		}

		d := engine.Execute(ctx, sc.Task(round), nil)
		rows = append(rows, cli.NewDecisionRow(d))
		if d.Success {
			successes++
		}
		if progress != nil {
			progress.Step(d.Success)
		}

		if interval > 0 && round < sc.Rounds {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
	}
	return rows, successes
}

func writeRace(w io.Writer, formatter cli.Formatter, out raceOutput) error {
	switch formatter.(type) {
	case *cli.JSONFormatter:
		return formatter.FormatTo(w, out)
	case *cli.CSVFormatter:
		return formatter.FormatTo(w, out.Decisions)
	}

	sections := []struct {
		title string
		table cli.Table
	}{
		{"Decisions", out.Decisions},
		{"Strategies", cli.ReportTable{Report: out.Report}},
		{"Weights", cli.WeightsTable(out.Weights)},
	}
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s:\n", s.title)
		if err := formatter.FormatTo(w, s.table); err != nil {
			return err
		}
	}

	if h := out.Report.History; h.Decisions > 0 {
		fmt.Fprintf(w, "\n%d decisions, success rate %.1f%%, average confidence %.3f, %.1f strategies per task\n",
			h.Decisions, h.SuccessRate*100, h.AverageConfidence, h.AverageStrategiesPerTask)
	}
	return nil
}

// watchConfig applies engine settings from the config file when it changes
// or when SIGHUP arrives, until the returned stop function is called. It
// does nothing when the file does not exist.
func watchConfig(ctx context.Context, a *app.App, logger *slog.Logger) (stop func()) {
	if _, err := os.Stat(cfgFile); err != nil {
		logger.Debug("config file not found, reload disabled", "path", cfgFile)
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	apply := func(cfg *config.Config) {
		if err := a.Reload(cfg); err != nil {
			logger.Error("config reload rejected", "error", err)
		}
	}

	w, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, logger)
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		w.SetLoader(readConfig)
		go func() {
			if err := w.Watch(ctx, apply); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	hup, stopHup := cli.HangupChannel()
	go func() {
		defer stopHup()
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				cfg, err := readConfig(cfgFile)
				if err != nil {
					logger.Error("config reload failed", "error", err)
					continue
				}
				apply(cfg)
			}
		}
	}()

	return func() {
		cancel()
		if w != nil {
			if err := w.Stop(); err != nil {
				logger.Warn("failed to stop config watcher", "error", err)
			}
		}
	}
}
