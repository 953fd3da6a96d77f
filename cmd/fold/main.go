package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/fold/internal/config"
)

var (
	logger *zap.Logger
	env    config.Env

	dataDir  string
	logLevel string
	workers  int

	scenarioFile string
	preset       string
	steps        int
	noSave       bool
	jsonOut      string

	series string

	gap        float64
	maxGap     float64
	stiffness  float64
	mass       float64
	direction  string
	paramsYAML string
)

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "fold",
		Short:        "contact barrier kernel and scenario runner",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = buildLogger(logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", env.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", env.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", env.Workers, "constraint evaluation workers")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "use a preset scenario")
	runCmd.Flags().IntVar(&steps, "steps", 0, "override the number of steps")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also export the run as json (- for stdout)")

	liveCmd := &cobra.Command{
		Use:   "live [scenario.yaml]",
		Short: "run a scenario with a live view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&preset, "preset", "", "use a preset scenario")
	liveCmd.Flags().IntVar(&steps, "steps", 0, "override the number of steps")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "energy,iterations,beta", "comma separated series (energy, iterations, beta, x<i>)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenarios",
		RunE:  listPresets,
	}

	typesCmd := &cobra.Command{
		Use:   "types",
		Short: "list registered constraint types",
		RunE:  listTypes,
	}

	evalCmd := &cobra.Command{
		Use:   "eval [type]",
		Short: "evaluate one constraint on a local state",
		Args:  cobra.ExactArgs(1),
		RunE:  evalConstraint,
	}
	evalCmd.Flags().Float64Var(&gap, "gap", 0, "signed gap")
	evalCmd.Flags().Float64Var(&maxGap, "max-gap", 0, "activation threshold")
	evalCmd.Flags().Float64Var(&stiffness, "stiffness", 0, "state stiffness (0 derives one)")
	evalCmd.Flags().Float64Var(&mass, "mass", 1, "effective mass")
	evalCmd.Flags().StringVar(&direction, "direction", "0,0,-1", "violation direction x,y,z")
	evalCmd.Flags().StringVar(&paramsYAML, "params", "{}", "constraint parameters as yaml")

	spdCmd := &cobra.Command{
		Use:   "spd a11 a12 a13 a21 a22 a23 a31 a32 a33",
		Short: "condition a 3x3 matrix to symmetric positive definite",
		Args:  cobra.ExactArgs(9),
		RunE:  conditionMatrix,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, presetsCmd, typesCmd, evalCmd, spdCmd)
	return rootCmd
}

func main() {
	var err error
	if env, err = config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
