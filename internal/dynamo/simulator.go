package dynamo

import (
	"context"
	"math"

	"github.com/rs/zerolog"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
	log        zerolog.Logger
}

func New(dyn System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        zerolog.Nop(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetLogger attaches a logger used for per-run diagnostics.
func (s *Simulator) SetLogger(l zerolog.Logger) { s.log = l }

// Run simulates cfg.Steps() samples starting from x0 at t=0.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	steps, err := cfg.Steps()
	if err != nil {
		return nil, err
	}
	return s.run(ctx, x0, cfg.SampleTime, steps, cfg.ValidateState)
}

// RunSteps simulates a pre-counted number of samples spaced dt apart.
// States are not checked for NaN/Inf: divergence is left to the caller.
func (s *Simulator) RunSteps(ctx context.Context, x0 State, dt float64, steps int) (*Result, error) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return nil, invalidArgf("sample time must be positive, got %g", dt)
	}
	if steps < 1 {
		return nil, invalidArgf("step count must be at least 1, got %d", steps)
	}
	return s.run(ctx, x0, dt, steps, false)
}

func (s *Simulator) run(ctx context.Context, x0 State, dt float64, steps int, validate bool) (*Result, error) {
	if s.dyn == nil || s.integrator == nil || s.controller == nil {
		return nil, invalidArgf("simulator requires a system, an integrator and a controller")
	}
	if dim := s.dyn.StateDim(); len(x0) != dim {
		return nil, &SimError{Step: 0, Time: 0, Err: ErrDimensionMismatch}
	}

	result := &Result{
		States:   make([]State, 0, steps),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	if r, ok := s.controller.(Resetter); ok {
		r.Reset()
	}

	s.log.Debug().
		Int("steps", steps).
		Float64("dt", dt).
		Msg("simulation started")

	x := x0.Clone()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		// t is i*dt, never an accumulated sum.
		t := float64(i) * dt
		u := s.controller.Compute(x, t)

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u.Clone())
		result.Times = append(result.Times, t)

		if i == steps-1 {
			break
		}

		next := s.integrator.Step(s.dyn, x, u, t, dt)
		if validate && !next.IsValid() {
			err := &SimError{Step: i + 1, Time: float64(i+1) * dt, Err: ErrInvalidState}
			s.log.Warn().Err(err).Msg("simulation diverged")
			s.collect(result)
			return result, err
		}

		x = next
		result.StepsTaken++
	}

	s.collect(result)

	s.log.Debug().
		Int("samples", len(result.States)).
		Floats64("final_state", result.Final()).
		Msg("simulation finished")

	return result, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
