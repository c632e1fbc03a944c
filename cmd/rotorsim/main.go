package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/control"
	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/experiment"
	"github.com/san-kum/rotorsim/internal/logging"
	"github.com/san-kum/rotorsim/internal/models"
	"github.com/san-kum/rotorsim/internal/optim"
	"github.com/san-kum/rotorsim/internal/report"
	"github.com/san-kum/rotorsim/internal/rotor"
)

var (
	logLevel  string
	logFormat string
	log       zerolog.Logger

	// Timing
	totalTime  float64
	sampleTime float64
	integrator string
	// Shaft
	inertia    float64
	braking    float64
	initialRPM float64
	// Drive
	mode         string
	torqueConst  float64
	referenceRPM float64
	voltage      float64
	kp           float64
	ki           float64
	kd           float64
	lagged       bool
	// Load
	loadMoment float64
	stepTime   float64
	stepMoment float64
	// Config file
	configFile string
	// Preset name
	preset string
	// Output
	format string

	// ramp
	rampInertia float64
	rampBraking float64
	rampMe      float64
	rampLoad    float64
	rampOmega0  float64
	rampDt      float64
	rampTime    float64
	rampSteps   int

	// tune
	kpGrid      string
	kiGrid      string
	kdGrid      string
	tuneMetric  string
	tuneResults int
)

// main registers the rotorsim commands and exits with status 1 when a
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "rotorsim",
		Short:         "crankshaft speed simulation with explicit Euler integration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel, logFormat, "rotorsim")
			if err != nil {
				return err
			}
			log = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "log format (console, json)")

	stepsCmd := &cobra.Command{
		Use:   "steps",
		Short: "number of samples covering a horizon",
		Args:  cobra.NoArgs,
		RunE:  countSteps,
	}
	stepsCmd.Flags().Float64Var(&totalTime, "time", config.DefaultTotalTime, "simulation horizon in seconds")
	stepsCmd.Flags().Float64Var(&sampleTime, "dt", config.DefaultSampleTime, "sampling period in seconds")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate the regulated drive",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addDriveFlags(runCmd)
	runCmd.Flags().StringVar(&format, "format", report.FormatSummary, "output format (summary, csv, json)")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run the configured drive with euler and rk4",
		Args:  cobra.NoArgs,
		RunE:  compareIntegrators,
	}
	addDriveFlags(compareCmd)

	rampCmd := &cobra.Command{
		Use:   "ramp",
		Short: "integrate the shaft under constant moments",
		Args:  cobra.NoArgs,
		RunE:  runRamp,
	}
	rampCmd.Flags().Float64Var(&rampInertia, "inertia", config.DefaultInertia, "moment of inertia J")
	rampCmd.Flags().Float64Var(&rampBraking, "braking", config.DefaultBrakingMoment, "braking moment M0")
	rampCmd.Flags().Float64Var(&rampMe, "me", 0, "electromagnetic moment Me")
	rampCmd.Flags().Float64Var(&rampLoad, "load", 0, "load moment Mload")
	rampCmd.Flags().Float64Var(&rampOmega0, "omega0", 0, "initial angular velocity (rad/s)")
	rampCmd.Flags().Float64Var(&rampDt, "dt", config.DefaultSampleTime, "sampling period in seconds")
	rampCmd.Flags().IntVar(&rampSteps, "steps", 0, "number of samples (default: derived from --time)")
	rampCmd.Flags().Float64Var(&rampTime, "time", 10, "simulation horizon when --steps is not set")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search over regulator gains",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addDriveFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&kpGrid, "kp-grid", "0.003,0.007,0.015", "comma separated Kp candidates")
	tuneCmd.Flags().StringVar(&kiGrid, "ki-grid", "0.00005,0.00015,0.0003", "comma separated Ki candidates")
	tuneCmd.Flags().StringVar(&kdGrid, "kd-grid", "0,0.0015", "comma separated Kd candidates")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "itae", "score (iae, itae, overshoot, steady_state_error, settling_time)")
	tuneCmd.Flags().IntVar(&tuneResults, "top", 5, "number of results to print")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration (or --preset) as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	configInitCmd.Flags().StringVar(&preset, "preset", "", "preset to write")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(stepsCmd, runCmd, compareCmd, rampCmd, tuneCmd, presetsCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addDriveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&totalTime, "time", config.DefaultTotalTime, "simulation horizon in seconds")
	cmd.Flags().Float64Var(&sampleTime, "dt", config.DefaultSampleTime, "sampling period in seconds")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4)")
	cmd.Flags().Float64Var(&inertia, "inertia", config.DefaultInertia, "moment of inertia J")
	cmd.Flags().Float64Var(&braking, "braking", config.DefaultBrakingMoment, "braking moment M0")
	cmd.Flags().Float64Var(&initialRPM, "rpm0", 0, "initial speed in rpm")
	cmd.Flags().StringVar(&mode, "mode", config.ModeClosedLoop, "drive mode (closed_loop, open_loop)")
	cmd.Flags().Float64Var(&torqueConst, "kt", config.DefaultTorqueConstant, "torque constant Me/U")
	cmd.Flags().Float64Var(&referenceRPM, "reference", config.DefaultReferenceRPM, "reference speed in rpm")
	cmd.Flags().Float64Var(&voltage, "voltage", 0, "fixed voltage in open_loop mode")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&loadMoment, "load", config.DefaultLoadMoment, "load moment Mload")
	cmd.Flags().Float64Var(&stepTime, "step-time", 0, "time at which the load switches to --step-load")
	cmd.Flags().Float64Var(&stepMoment, "step-load", 0, "load moment after --step-time")
	cmd.Flags().BoolVar(&lagged, "lagged", false, "apply each regulator voltage one sample late")
}

// resolveConfig layers defaults, preset, config file, ROTORSIM_
// environment and explicitly set flags, in that order. Flag variables are
// shared between commands, so only flags set on this command are applied.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	base := config.DefaultConfig()
	if preset != "" {
		if base = config.GetPreset(preset); base == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	cfg, err := config.LoadOver(base, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("time", func() { cfg.Simulation.TotalTime = totalTime })
	set("dt", func() { cfg.Simulation.SampleTime = sampleTime })
	set("integrator", func() { cfg.Simulation.Integrator = integrator })
	set("inertia", func() { cfg.Shaft.Inertia = inertia })
	set("braking", func() { cfg.Shaft.BrakingMoment = braking })
	set("rpm0", func() { cfg.Shaft.InitialRPM = initialRPM })
	set("mode", func() { cfg.Drive.Mode = mode })
	set("kt", func() { cfg.Drive.TorqueConstant = torqueConst })
	set("reference", func() { cfg.Drive.ReferenceRPM = referenceRPM })
	set("voltage", func() { cfg.Drive.Voltage = voltage })
	set("kp", func() { cfg.Drive.Kp = kp })
	set("ki", func() { cfg.Drive.Ki = ki })
	set("kd", func() { cfg.Drive.Kd = kd })
	set("load", func() { cfg.Load.Moment = loadMoment })
	set("step-time", func() { cfg.Load.StepTime = stepTime })
	set("step-load", func() { cfg.Load.StepMoment = stepMoment })
	set("lagged", func() { cfg.Drive.Lagged = lagged })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func countSteps(cmd *cobra.Command, args []string) error {
	n, err := dynamo.StepCount(totalTime, sampleTime)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(log))
	if err != nil {
		return err
	}

	run, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	return report.Write(os.Stdout, format, run)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL RPM\tPEAK RPM\tELAPSED")

	finals := make([]float64, 0, 2)
	for _, name := range []string{"euler", "rk4"} {
		cfg := base.Clone()
		cfg.Simulation.Integrator = name

		exp, err := experiment.New(cfg, experiment.WithLogger(log))
		if err != nil {
			return err
		}
		run, err := exp.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		finals = append(finals, run.FinalRPM())
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%v\n", name, run.FinalRPM(), run.Metrics["peak_rpm"], run.Elapsed)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nfinal rpm difference: %.6f\n", math.Abs(finals[0]-finals[1]))
	return nil
}

func runRamp(cmd *cobra.Command, args []string) error {
	n := rampSteps
	if !cmd.Flags().Changed("steps") {
		var err error
		if n, err = dynamo.StepCount(rampTime, rampDt); err != nil {
			return err
		}
	}

	p := rotor.Params{Inertia: rampInertia, BrakingMoment: rampBraking}
	samples, err := rotor.Integrate(p, rampOmega0, rampDt, n, control.NewConstant(rampMe, rampLoad))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOMEGA\tRPM")
	for _, s := range samples {
		fmt.Fprintf(w, "%.4f\t%.6f\t%.4f\n", s.Time, s.Omega, models.RadPerSecToRPM(s.Omega))
	}
	return w.Flush()
}

func tuneGains(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	kps, err := parseGrid(kpGrid)
	if err != nil {
		return fmt.Errorf("--kp-grid: %w", err)
	}
	kis, err := parseGrid(kiGrid)
	if err != nil {
		return fmt.Errorf("--ki-grid: %w", err)
	}
	kds, err := parseGrid(kdGrid)
	if err != nil {
		return fmt.Errorf("--kd-grid: %w", err)
	}

	search := optim.NewGridSearch(kps, kis, kds, tuneMetric)
	search.SetLogger(log)

	results, err := search.Search(cmd.Context(), base)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KP\tKI\tKD\t%s\n", strings.ToUpper(tuneMetric))
	for i, r := range results {
		if i >= tuneResults {
			break
		}
		score := fmt.Sprintf("%.6g", r.Score)
		if r.Err != nil {
			score = "error: " + r.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%g\t%g\t%s\n", r.Kp, r.Ki, r.Kd, score)
	}
	return w.Flush()
}

func parseGrid(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
