package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/experiment"
	"github.com/san-kum/pidsim/internal/gui"
	"github.com/san-kum/pidsim/internal/logging"
	"github.com/san-kum/pidsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string

	kp         float64
	ki         float64
	kd         float64
	bias       float64
	amplitude  float64
	period     float64
	horizon    float64
	fps        int
	seed       int64
	duration   float64
	start      float64
	integrator string
	controller string

	theme string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pidsim",
		Short: "closed-loop PID boat simulator",
		Args:  cobra.NoArgs,
		// no subcommand opens the live dashboard
		RunE: runLive,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pidsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also log to this rotated file")
	addSimFlags(rootCmd)
	rootCmd.Flags().StringVar(&theme, "theme", "ocean", "color theme")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the loop with the live terminal dashboard",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "ocean", "color theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the loop in a desktop window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addSimFlags(guiCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file of timed parameter changes (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render run charts to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.png)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "tracking statistics and error spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&maxLag, "max-lag", 2, "largest position lag searched, seconds")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&phaseMode, "mode", "body", "body (position/velocity) or error (error/error rate)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search the gains against a metric",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&kpRange, "kp-range", "5:25:5", "kp values as lo:hi:n")
	tuneCmd.Flags().StringVar(&kiRange, "ki-range", "0:2:3", "ki values as lo:hi:n")
	tuneCmd.Flags().StringVar(&kdRange, "kd-range", "100:500:5", "kd values as lo:hi:n")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "rms_error", "metric to minimize")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")
	tuneCmd.Flags().IntVar(&top, "top", 5, "trials to print")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run the same gains with every integrator",
		Args:  cobra.NoArgs,
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(liveCmd, guiCmd, runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportPNGCmd, analyzeCmd, phaseCmd, tuneCmd, compareCmd, presetsCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&kp, "kp", 0, "proportional gain")
	f.Float64Var(&ki, "ki", 0, "integral gain")
	f.Float64Var(&kd, "kd", 0, "derivative gain")
	f.Float64Var(&bias, "bias", 0, "constant force on the body")
	f.Float64Var(&amplitude, "amplitude", 0, "reference amplitude")
	f.Float64Var(&period, "period", 0, "reference period, seconds")
	f.Float64Var(&horizon, "horizon", 0, "chart window, seconds")
	f.IntVar(&fps, "fps", 0, "ticks per second")
	f.Int64Var(&seed, "seed", 0, "phase seed (0 draws one)")
	f.Float64Var(&duration, "time", 0, "headless run length, seconds")
	f.Float64Var(&start, "start", 0, "starting position")
	f.StringVar(&integrator, "integrator", "", "body integrator")
	f.StringVar(&controller, "controller", "", "controller (pid, none)")
}

// resolveConfig layers the sources: preset, then config file, then
// PIDSIM_* environment, then flags the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	floats := map[string]*float64{
		"kp":        &cfg.Controller.Kp,
		"ki":        &cfg.Controller.Ki,
		"kd":        &cfg.Controller.Kd,
		"bias":      &cfg.Environment.Bias,
		"amplitude": &cfg.Environment.Amplitude,
		"period":    &cfg.Environment.Period,
		"horizon":   &cfg.Sim.Horizon,
		"time":      &cfg.Sim.Duration,
		"start":     &cfg.Sim.StartPosition,
	}
	for name, dst := range floats {
		if flags.Changed(name) {
			v, err := flags.GetFloat64(name)
			if err != nil {
				return nil, err
			}
			*dst = v
		}
	}
	if flags.Changed("fps") {
		cfg.Sim.FPS = fps
	}
	if flags.Changed("seed") {
		cfg.Sim.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Sim.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller.Type = controller
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to stderr for batch commands. Interactive views pass
// interactive=true and only get the file sink.
func newLogger(cfg *config.Config, interactive bool) (*zap.Logger, error) {
	var console zapcore.WriteSyncer
	if !interactive {
		console = zapcore.Lock(os.Stderr)
	}
	return logging.New(cfg.Log, console)
}

func setup(cmd *cobra.Command, interactive bool) (*config.Config, *zap.Logger, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg, interactive)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	exp, err := experiment.New(cfg, experiment.WithLogger(log))
	if err != nil {
		return err
	}
	return viz.Run(cmd.Context(), exp.Loop(), log, theme)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	exp, err := experiment.New(cfg, experiment.WithLogger(log))
	if err != nil {
		return err
	}
	return gui.Run(cmd.Context(), exp.Loop(), log)
}
