package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fold/internal/config"
	"github.com/san-kum/fold/internal/experiment"
	"github.com/san-kum/fold/internal/fold"
	"github.com/san-kum/fold/internal/metrics"
	"github.com/san-kum/fold/internal/storage"
	"github.com/san-kum/fold/internal/tui"
	"github.com/san-kum/fold/internal/vecmath"
)

var errNoScenario = errors.New("need a scenario file or --preset")

func loadScenario(args []string) (*config.Scenario, error) {
	var sc *config.Scenario
	switch {
	case preset != "":
		sc = config.GetPreset(preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	case len(args) == 1:
		var err error
		if sc, err = config.Load(args[0]); err != nil {
			return nil, err
		}
	default:
		return nil, errNoScenario
	}
	if steps > 0 {
		sc.Steps = steps
	}
	return sc, nil
}

func newRunner(l *zap.Logger) *experiment.Runner {
	r := experiment.New(fold.NewDefaultRegistry(),
		experiment.WithLogger(l),
		experiment.WithWorkers(workers))
	for _, m := range metrics.Default() {
		r.AddMetric(m)
	}
	return r
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := newRunner(logger).Run(ctx, sc)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tui.RenderSummary(res))

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(sc, res)
		if err != nil {
			return err
		}
		logger.Info("run stored", zap.String("id", runID), zap.String("dir", dataDir))
		fmt.Fprintf(out, "run: %s\n", runID)
	}

	switch jsonOut {
	case "":
	case "-":
		return storage.WriteJSON(out, sc, res)
	default:
		return storage.ExportJSON(jsonOut, sc, res)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	records := make(chan experiment.StepRecord)
	done := make(chan error, 1)

	// Logging would tear the live view.
	runner := newRunner(zap.NewNop())
	runner.AddObserver(experiment.ObserverFunc(func(rec experiment.StepRecord) {
		select {
		case records <- rec:
		case <-ctx.Done():
		}
	}))

	go func() {
		_, err := runner.Run(ctx, sc)
		close(records)
		done <- err
	}()

	p := tea.NewProgram(tui.NewModel(sc.Name, len(sc.Positions), records, done))
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSTEPS\tDT\tCONVERGED\tPEAK ENERGY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%.0f%%\t%.3e\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Steps,
			run.DeltaTime,
			100*run.Metrics["convergence_rate"],
			run.Metrics["peak_energy"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadSteps(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "scenario: %s\n", meta.Scenario)
	fmt.Fprintf(out, "steps: %d\n\n", len(records))

	for _, name := range strings.Split(series, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		data, err := tui.Extract(records, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, tui.Plot(data, name+" vs step", 80, 10))
		fmt.Fprintln(out)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tCONSTRAINTS\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		sc := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, sc.Steps, len(sc.Constraints), sc.Description)
	}
	return w.Flush()
}

func listTypes(cmd *cobra.Command, args []string) error {
	for _, f := range fold.NewDefaultRegistry().List() {
		fmt.Fprintln(cmd.OutOrStdout(), f.Type)
	}
	return nil
}

func evalConstraint(cmd *cobra.Command, args []string) error {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(paramsYAML), &raw); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	c, err := fold.NewDefaultRegistry().Create(fold.Type(args[0]), fold.Params(raw))
	if err != nil {
		return err
	}
	dir, err := parseVec(direction)
	if err != nil {
		return fmt.Errorf("direction: %w", err)
	}

	e := c.Evaluate(fold.State{
		Gap:           gap,
		MaxGap:        maxGap,
		Stiffness:     stiffness,
		Direction:     dir,
		EffectiveMass: mass,
	}, fold.Context{})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "energy:   %.9g\n", e.Energy)
	fmt.Fprintf(out, "gradient: %v\n", e.Gradient)
	fmt.Fprintln(out, "hessian:")
	printMatrix(cmd, e.Hessian)
	return nil
}

func conditionMatrix(cmd *cobra.Command, args []string) error {
	vals, err := parseFloats(args)
	if err != nil {
		return err
	}
	m, err := vecmath.Mat3FromRows([][]float64{vals[0:3], vals[3:6], vals[6:9]})
	if err != nil {
		return err
	}
	spd, err := fold.EnforceSPD(m, fold.DefaultSPDOptions())
	if err != nil {
		return err
	}
	printMatrix(cmd, spd)
	fmt.Fprintf(cmd.OutOrStdout(), "positive definite: %t\n", spd.IsPositiveDefinite())
	return nil
}

func printMatrix(cmd *cobra.Command, m vecmath.Mat3) {
	for _, row := range m.Rows() {
		fmt.Fprintf(cmd.OutOrStdout(), "  % .6g  % .6g  % .6g\n", row[0], row[1], row[2])
	}
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseVec(s string) (vecmath.Vec3, error) {
	vals, err := parseFloats(strings.Split(s, ","))
	if err != nil {
		return vecmath.Vec3{}, err
	}
	return vecmath.VecFromSlice(vals)
}
