package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/analysis"
	"github.com/san-kum/pidsim/internal/automation"
	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/experiment"
	"github.com/san-kum/pidsim/internal/optim"
	"github.com/san-kum/pidsim/internal/series"
	"github.com/san-kum/pidsim/internal/sim"
	"github.com/san-kum/pidsim/internal/storage"
)

var (
	scenarioFile string
	outFile      string
	maxLag       float64
	phaseMode    string

	kpRange    string
	kiRange    string
	kdRange    string
	tuneMetric string
	workers    int
	top        int
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var hooks []sim.Hook
	info := storage.RunInfo{Preset: preset}
	if scenarioFile != "" {
		sc, err := automation.LoadScenario(scenarioFile)
		if err != nil {
			return err
		}
		hooks = append(hooks, sc.Hook(log))
		info.Scenario = sc.Name
		// run long enough to see the last event land
		if !cmd.Flags().Changed("time") && sc.End() >= cfg.Sim.Duration {
			cfg.Sim.Duration = sc.End() + 1
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(log), experiment.WithHooks(hooks...))
	if err != nil {
		return err
	}

	fmt.Printf("running %.1fs at %d fps...\n", cfg.Sim.Duration, cfg.Sim.FPS)
	started := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	info.Seed = exp.Seed()
	info.FPS = cfg.Sim.FPS
	info.Duration = cfg.Sim.Duration
	info.Integrator = cfg.Sim.Integrator
	info.Controller = cfg.Controller.Type
	info.Params = cfg.Tunables().Params()

	runID, err := st.Save(info, result)
	if err != nil {
		return err
	}
	log.Info("run stored", zap.String("id", runID), zap.Int("steps", result.StepsTaken))

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	printMetrics(os.Stdout, result.Metrics)
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tFPS\tCTRL\tPRESET\tSCENARIO\tRMS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%d\t%s\t%s\t%s\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.FPS,
			run.Controller,
			orDash(run.Preset),
			orDash(run.Scenario),
			run.Metrics["rms_error"],
		)
	}

	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Reading, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	readings, err := st.LoadReadings(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(readings) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, readings, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, readings, err := loadRun(args[0])
	if err != nil {
		return err
	}
	res := &sim.Result{Readings: readings}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d (%.2fs)\n\n", len(readings), readings[len(readings)-1].Time)

	errs := res.Column(sim.MetricError)
	lo, hi, _ := series.SymmetricRange(errs)
	fmt.Println(asciigraph.Plot(errs,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(lo),
		asciigraph.UpperBound(hi),
		asciigraph.Caption("error"),
	))
	fmt.Println()

	target, position := res.Column(sim.MetricTarget), res.Column(sim.MetricPosition)
	lo, hi, _ = series.SymmetricRange(target, position)
	fmt.Println(asciigraph.PlotMany([][]float64{target, position},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(lo),
		asciigraph.UpperBound(hi),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.Caption("target (red) / position (green)"),
	))
	fmt.Println()

	fmt.Println(asciigraph.Plot(res.Column(sim.MetricCommand),
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("command"),
	))
	return nil
}

// output opens outFile, or stdout when it is empty.
func output(def string) (io.Writer, func() error, error) {
	name := outFile
	if name == "" {
		name = def
	}
	if name == "" || name == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, readings, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output("")
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, readings); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, readings, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output("")
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, readings); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

func exportPNG(cmd *cobra.Command, args []string) error {
	meta, readings, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output(meta.ID + ".png")
	if err != nil {
		return err
	}

	opts := storage.DefaultChartOptions()
	opts.Title = fmt.Sprintf("run %s", meta.ID)
	if err := storage.WritePNG(w, readings, opts); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if w != os.Stdout {
		fmt.Fprintf(os.Stderr, "wrote %s\n", orDefault(outFile, meta.ID+".png"))
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, readings, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("dt: %.5fs  samples: %d\n\n", meta.Dt, len(readings))

	ts := analysis.Track(readings, meta.Dt, maxLag)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "tracking:")
	fmt.Fprintf(w, "  mean |error|\t%.4f\n", ts.MeanAbsError)
	fmt.Fprintf(w, "  max |error|\t%.4f\n", ts.MaxAbsError)
	fmt.Fprintf(w, "  rms error\t%.4f\n", ts.RMSError)
	fmt.Fprintf(w, "  mean error\t%.4f\n", ts.MeanError)
	fmt.Fprintf(w, "  lag\t%.3fs\n", ts.Lag)
	if err := w.Flush(); err != nil {
		return err
	}

	if meta.Params[sim.ParamAmplitude] == 0 {
		ss := analysis.StepResponse(readings, 0.02)
		fmt.Println("\nstep response:")
		fmt.Printf("  initial error: %.4f\n", ss.InitialError)
		fmt.Printf("  overshoot: %.2f%%\n", ss.Overshoot*100)
		fmt.Printf("  rise time: %s\n", seconds(ss.RiseTime))
		fmt.Printf("  settling time: %s\n", seconds(ss.SettlingTime))
	}

	bins := analysis.ErrorSpectrum(readings, meta.Dt)
	if len(bins) == 0 {
		return nil
	}
	if dom, ok := analysis.Dominant(bins); ok {
		fmt.Printf("\ndominant error frequency: %.4f Hz (period %.2fs)\n", dom.Freq, 1/dom.Freq)
	}

	// the low end is where a slow loop's error lives
	n := min(len(bins), 128)
	power := make([]float64, n)
	for i := range power {
		power[i] = bins[i].Power
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(power,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("error power spectrum, 0 to %.2f Hz", bins[n-1].Freq)),
	))
	return nil
}

func seconds(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3fs", v)
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, readings, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var (
		portrait *analysis.PhasePortrait
		axes     string
	)
	switch phaseMode {
	case "body":
		portrait = analysis.NewPhasePortrait(readings)
		axes = "position (x) vs velocity (y)"
	case "error":
		portrait = analysis.TrackingPortrait(readings, meta.Dt)
		axes = "error (x) vs error rate (y)"
	default:
		return fmt.Errorf("unknown phase mode %q (body, error)", phaseMode)
	}

	fmt.Printf("phase portrait: %s\n", axes)
	fmt.Printf("points: %d\n\n", len(portrait.Points))
	fmt.Println(portrait.ASCII(70, 24))
	return nil
}

// parseRange reads "lo:hi:n" into n evenly spaced values.
func parseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("range %q: want lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", s, err)
	}
	if n < 1 {
		return nil, fmt.Errorf("range %q: need at least one value", s)
	}
	return optim.Linspace(lo, hi, n), nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Sim.Seed == 0 {
		// every trial must see the same reference phase
		cfg.Sim.Seed = time.Now().UnixNano()
	}

	names := []string{sim.ParamKp, sim.ParamKi, sim.ParamKd}
	var ranges [][]float64
	for _, r := range []string{kpRange, kiRange, kdRange} {
		vals, err := parseRange(r)
		if err != nil {
			return err
		}
		ranges = append(ranges, vals)
	}

	n := workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	gs := optim.NewGridSearch(names, ranges).WithWorkers(n)

	fmt.Printf("searching %d gain sets on %d workers (metric %s, seed %d)...\n",
		len(gs.Points()), n, tuneMetric, cfg.Sim.Seed)
	started := time.Now()

	best, trials, err := gs.Search(cmd.Context(), cfg, tuneMetric)
	if err != nil {
		return err
	}
	log.Info("grid search done", zap.Int("trials", len(trials)), zap.Duration("elapsed", time.Since(started)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tKP\tKI\tKD\t%s\n", strings.ToUpper(tuneMetric))
	for i, t := range trials[:min(max(top, 1), len(trials))] {
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t%.6f\n", i+1,
			t.Params[sim.ParamKp], t.Params[sim.ParamKi], t.Params[sim.ParamKd], t.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: --kp %g --ki %g --kd %g\n",
		best.Params[sim.ParamKp], best.Params[sim.ParamKi], best.Params[sim.ParamKd])
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Sim.Seed == 0 {
		cfg.Sim.Seed = time.Now().UnixNano()
	}

	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tRMS_ERROR\tIAE\tPEAK_CMD\tFINAL_POS\tSTATUS")

	for _, name := range registry.ListIntegrators() {
		run := cfg.Clone()
		run.Sim.Integrator = name

		exp, err := experiment.New(run, experiment.WithLogger(log), experiment.WithRegistry(registry))
		if err != nil {
			return err
		}
		result, err := exp.Run(cmd.Context())
		status := "ok"
		if err != nil {
			if cmd.Context().Err() != nil {
				return err
			}
			status = err.Error()
		}
		final := 0.0
		if result != nil && len(result.Readings) > 0 {
			final = result.Readings[len(result.Readings)-1].Position
		}
		var m map[string]float64
		if result != nil {
			m = result.Metrics
		}
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.3f\t%.3f\t%s\n", name,
			m["rms_error"], m["iae"], m["peak_command"], final, status)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCTRL\tKP\tKI\tKD\tBIAS\tAMPLITUDE\tPERIOD")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\t%g\t%g\n", name, p.Controller.Type,
			p.Controller.Kp, p.Controller.Ki, p.Controller.Kd,
			p.Environment.Bias, p.Environment.Amplitude, p.Environment.Period)
	}
	return w.Flush()
}
