package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"amrikyy/nanoagent/pkg/cli"
	"amrikyy/nanoagent/pkg/config"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "nanoagent",
	Short: "Nanoagent - adaptive multi-strategy price racing",
	Long: `Nanoagent runs several price strategies concurrently for the same task,
scores every result, keeps the best valid one and adjusts each strategy's
weight so that reliable strategies are tried first next time.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "nanoagent.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// loadConfig reads the config file with environment overrides and the
// command-line overrides. When the default file is absent the built-in
// defaults are used instead.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := readConfig(cfgFile)
	if err == nil || cmd.Flags().Changed("config") || !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}

	if cfg, err = config.DefaultsWithEnvOverrides(); err != nil {
		return nil, cli.NewConfigError("", err)
	}
	if err := applyOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readConfig loads path and applies the command-line overrides. Startup and
// both reload paths go through it so a reload never drops --log-level.
func readConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError(path, err)
	}
	if err := applyOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) error {
	if logLevel == "" {
		return nil
	}
	cfg.Telemetry.Logging.Level = logLevel
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("--log-level", err)
	}
	return nil
}
