package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"amrikyy/nanoagent/internal/simulate"
	"amrikyy/nanoagent/pkg/cli"
)

var validateFlags struct {
	scenario string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and scenario files",
	Long: `Load the configuration file with environment overrides and report every
invalid field. With --scenario the scenario file is checked as well.

Examples:
  # Validate the default config file
  nanoagent validate

  # Validate a config and a scenario
  nanoagent validate --config /etc/nanoagent.yaml --scenario configs/scenario.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.scenario, "scenario", "s", "", "scenario file to validate")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Configuration valid")
	fmt.Fprintf(out, "  engine: max_strategies=%d timeout=%s min_confidence=%.2f learning=%t\n",
		cfg.Engine.MaxStrategies, cfg.Engine.Timeout, cfg.Engine.MinConfidence, cfg.Engine.LearningEnabled)
	fmt.Fprintf(out, "  weights: backend=%s checkpoint=%q\n", cfg.Weights.Backend, cfg.Weights.CheckpointSchedule)

	if validateFlags.scenario == "" {
		return nil
	}

	sc, err := simulate.LoadScenario(validateFlags.scenario)
	if err != nil {
		return cli.NewConfigError(validateFlags.scenario, err)
	}
	fmt.Fprintf(out, "✓ Scenario valid (%d strategies, %d rounds)\n", len(sc.Strategies), sc.Rounds)
	return nil
}
