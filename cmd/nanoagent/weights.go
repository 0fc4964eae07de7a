package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"amrikyy/nanoagent/internal/app"
	"amrikyy/nanoagent/pkg/cli"
	"amrikyy/nanoagent/pkg/weights"
)

var weightsFlags struct {
	format string
	all    bool
}

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Inspect and reset persisted strategy weights",
	Long: `Read or modify the strategy weights saved by the configured weights backend.
Weights are only persisted with the sqlite backend.`,
}

var weightsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted weights",
	Long: `List every persisted strategy weight with the time it was last saved.

Examples:
  nanoagent weights list
  nanoagent weights list --format csv`,
	Args: cobra.NoArgs,
	RunE: runWeightsList,
}

var weightsResetCmd = &cobra.Command{
	Use:   "reset [strategy...]",
	Short: "Forget persisted weights",
	Long: `Delete the persisted weight of the named strategies, or of every strategy
with --all. A strategy without a persisted weight starts at 1.0 the next time
it is registered.

Examples:
  nanoagent weights reset kiwi scraper
  nanoagent weights reset --all`,
	RunE: runWeightsReset,
}

func init() {
	rootCmd.AddCommand(weightsCmd)
	weightsCmd.AddCommand(weightsListCmd, weightsResetCmd)

	weightsListCmd.Flags().StringVarP(&weightsFlags.format, "format", "o", "text", "output format: text, json, csv")
	weightsResetCmd.Flags().BoolVar(&weightsFlags.all, "all", false, "reset every strategy")
}

// openPersistentBackend opens the configured backend, refusing the memory
// backend, which never holds weights across processes.
func openPersistentBackend(cmd *cobra.Command) (weights.Backend, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Weights.Backend != "sqlite" {
		return nil, cli.NewConfigError(cfgFile,
			fmt.Errorf("weights.backend is %q: only the sqlite backend persists weights", cfg.Weights.Backend))
	}
	return app.OpenBackend(cfg.Weights)
}

func runWeightsList(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(weightsFlags.format))
	if err != nil {
		return err
	}

	backend, err := openPersistentBackend(cmd)
	if err != nil {
		return err
	}
	defer backend.Close()

	records, err := backend.Load(cmd.Context())
	if err != nil {
		return cli.NewCommandError("weights list", err)
	}
	return formatter.FormatTo(cmd.OutOrStdout(), cli.RecordsTable(records))
}

func runWeightsReset(cmd *cobra.Command, args []string) error {
	if weightsFlags.all == (len(args) > 0) {
		return errors.New("name one or more strategies, or pass --all")
	}

	backend, err := openPersistentBackend(cmd)
	if err != nil {
		return err
	}
	defer backend.Close()

	names, err := resetTargets(cmd.Context(), backend, args, weightsFlags.all)
	if err != nil {
		return cli.NewCommandError("weights reset", err)
	}

	for _, name := range names {
		if err := backend.Delete(cmd.Context(), name); err != nil {
			return cli.NewCommandError("weights reset", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Reset %s\n", name)
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No persisted weights")
	}
	return nil
}

func resetTargets(ctx context.Context, backend weights.Backend, args []string, all bool) ([]string, error) {
	if !all {
		return args, nil
	}
	records, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Strategy
	}
	return names, nil
}
