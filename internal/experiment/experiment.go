package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/rotorsim/internal/analysis"
	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/control"
	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/integrators"
	"github.com/san-kum/rotorsim/internal/metrics"
	"github.com/san-kum/rotorsim/internal/models"
)

// Sample is one row of a drive run.
type Sample struct {
	Time          float64 `json:"time"`
	Omega         float64 `json:"omega"`
	RPM           float64 `json:"rpm"`
	Voltage       float64 `json:"voltage"`
	Moment        float64 `json:"electromagnetic_moment"`
	LoadMoment    float64 `json:"load_moment"`
	BrakingMoment float64 `json:"braking_moment"`
}

// Run is the outcome of one experiment. Response is nil in open-loop mode.
type Run struct {
	Config   *config.Config     `json:"config"`
	Samples  []Sample           `json:"samples"`
	Metrics  map[string]float64 `json:"metrics"`
	Response *analysis.Response `json:"response,omitempty"`
	Elapsed  time.Duration      `json:"elapsed"`
}

// FinalRPM returns the speed of the last sample.
func (r *Run) FinalRPM() float64 {
	if len(r.Samples) == 0 {
		return 0
	}
	return r.Samples[len(r.Samples)-1].RPM
}

// Series returns the times and RPM values of the run.
func (r *Run) Series() (times, rpm []float64) {
	times = make([]float64, len(r.Samples))
	rpm = make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		times[i] = s.Time
		rpm[i] = s.RPM
	}
	return times, rpm
}

type Experiment struct {
	cfg       *config.Config
	shaft     *models.Crankshaft
	drive     *control.Drive
	simulator *dynamo.Simulator
	log       zerolog.Logger
}

type Option func(*Experiment)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

// New validates cfg and wires the crankshaft, integrator and moment
// supplier it describes.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", dynamo.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg: cfg.Clone(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.shaft = models.NewCrankshaft(cfg.Shaft.Inertia, cfg.Shaft.BrakingMoment)
	if err := e.shaft.Validate(); err != nil {
		return nil, err
	}

	integ, err := integrators.Get(cfg.Simulation.Integrator)
	if err != nil {
		return nil, err
	}

	var supplier dynamo.Controller
	load := loadProfile(cfg.Load)
	switch cfg.Drive.Mode {
	case config.ModeOpenLoop:
		moment := cfg.Drive.TorqueConstant * cfg.Drive.Voltage
		supplier = control.Func(func(t, omega float64) (float64, float64) {
			return moment, load.Moment(t, omega)
		})
	default:
		pid := control.NewPID(cfg.Drive.Kp, cfg.Drive.Ki, cfg.Drive.Kd).
			WithLimits(cfg.Drive.UMin, cfg.Drive.UMax)
		e.drive = control.NewDrive(pid, cfg.Drive.TorqueConstant, cfg.Drive.ReferenceRPM, load, cfg.Simulation.SampleTime)
		e.drive.Lagged = cfg.Drive.Lagged
		supplier = e.drive
	}

	e.simulator = dynamo.New(e.shaft, integ, supplier)
	e.simulator.SetLogger(e.log)
	for _, m := range metrics.Default(e.shaft) {
		e.simulator.AddMetric(m)
	}

	return e, nil
}

func loadProfile(c config.LoadConfig) control.LoadProfile {
	if c.StepTime > 0 {
		return control.StepLoad{Before: c.Moment, After: c.StepMoment, At: c.StepTime}
	}
	return control.ConstantLoad(c.Moment)
}

// Config returns the validated configuration the experiment runs with.
func (e *Experiment) Config() *config.Config {
	return e.cfg
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}

func (e *Experiment) Run(ctx context.Context) (*Run, error) {
	x0 := dynamo.State{models.RPMToRadPerSec(e.cfg.Shaft.InitialRPM)}

	start := time.Now()
	result, err := e.simulator.Run(ctx, x0, e.cfg.Timing())
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	run := &Run{
		Config:  e.cfg,
		Samples: e.samples(result),
		Metrics: result.Metrics,
		Elapsed: elapsed,
	}

	if e.drive != nil {
		times, rpm := run.Series()
		resp, err := analysis.StepResponse(times, rpm, e.cfg.Drive.ReferenceRPM)
		if err == nil {
			run.Response = &resp
		} else {
			e.log.Debug().Err(err).Msg("step response unavailable")
		}
	}

	e.log.Info().
		Str("integrator", e.cfg.Simulation.Integrator).
		Str("mode", e.cfg.Drive.Mode).
		Int("samples", len(run.Samples)).
		Float64("final_rpm", run.FinalRPM()).
		Dur("elapsed", elapsed).
		Msg("run completed")

	return run, nil
}

func (e *Experiment) samples(result *dynamo.Result) []Sample {
	var voltages []float64
	if e.drive != nil {
		voltages = e.drive.Voltages()
	}

	out := make([]Sample, len(result.States))
	for i, x := range result.States {
		u := result.Controls[i]
		s := Sample{
			Time:          result.Times[i],
			Omega:         x[0],
			RPM:           models.RadPerSecToRPM(x[0]),
			Moment:        u[models.ElectromagneticMoment],
			LoadMoment:    u[models.LoadMoment],
			BrakingMoment: e.shaft.BrakingMoment,
		}
		switch {
		case i < len(voltages):
			s.Voltage = voltages[i]
		case e.drive == nil:
			s.Voltage = e.cfg.Drive.Voltage
		}
		out[i] = s
	}
	return out
}
