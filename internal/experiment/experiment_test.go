package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/models"
)

func shortConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Simulation.TotalTime = 30
	return cfg
}

func TestRunClosedLoop(t *testing.T) {
	exp, err := New(shortConfig())
	require.NoError(t, err)

	run, err := exp.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, run.Samples, 301)
	first := run.Samples[0]
	assert.Equal(t, 0.0, first.Time)
	assert.Equal(t, 0.0, first.RPM)
	assert.Equal(t, config.DefaultBrakingMoment, first.BrakingMoment)
	assert.Equal(t, config.DefaultLoadMoment, first.LoadMoment)

	// first sample: error 3000 rpm, P=21, I=3000*0.00015*0.1
	wantU := 0.007*3000 + 0.00015*3000*0.1
	assert.InDelta(t, wantU, first.Voltage, 1e-12)
	assert.InDelta(t, config.DefaultTorqueConstant*wantU, first.Moment, 1e-12)

	for _, s := range run.Samples {
		assert.GreaterOrEqual(t, s.Voltage, config.DefaultUMin)
		assert.LessOrEqual(t, s.Voltage, config.DefaultUMax)
	}

	require.NotNil(t, run.Response)
	assert.Equal(t, config.DefaultReferenceRPM, run.Response.Reference)
	assert.Contains(t, run.Metrics, "peak_rpm")
	assert.Contains(t, run.Metrics, "control_effort")
	assert.Contains(t, run.Metrics, "kinetic_energy")
}

func TestRunFollowsEulerRecurrence(t *testing.T) {
	cfg := shortConfig()
	exp, err := New(cfg)
	require.NoError(t, err)

	run, err := exp.Run(context.Background())
	require.NoError(t, err)

	dt := cfg.Simulation.SampleTime
	for i := 0; i+1 < len(run.Samples); i++ {
		s := run.Samples[i]
		want := s.Omega + dt/cfg.Shaft.Inertia*(s.Moment-s.BrakingMoment-s.LoadMoment)
		assert.InDelta(t, want, run.Samples[i+1].Omega, 1e-9, "sample %d", i+1)
	}
}

func TestRunOpenLoop(t *testing.T) {
	cfg := shortConfig()
	cfg.Drive.Mode = config.ModeOpenLoop
	cfg.Drive.Voltage = 10
	cfg.Load.Moment = 1

	exp, err := New(cfg)
	require.NoError(t, err)

	run, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Nil(t, run.Response)
	// net moment 4 - 0.2 - 1 = 2.8 N·m over J=1.2 for 30 s
	wantOmega := 2.8 / 1.2 * 30
	assert.InDelta(t, models.RadPerSecToRPM(wantOmega), run.FinalRPM(), 1e-6)
	for _, s := range run.Samples {
		assert.Equal(t, 10.0, s.Voltage)
	}
}

func TestRunLoadStep(t *testing.T) {
	cfg := shortConfig()
	cfg.Load.Moment = 1
	cfg.Load.StepTime = 10
	cfg.Load.StepMoment = 4

	exp, err := New(cfg)
	require.NoError(t, err)

	run, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, run.Samples[99].LoadMoment)
	assert.Equal(t, 4.0, run.Samples[100].LoadMoment)
}

func TestRunRepeatable(t *testing.T) {
	exp, err := New(shortConfig())
	require.NoError(t, err)

	a, err := exp.Run(context.Background())
	require.NoError(t, err)
	b, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Samples, b.Samples)
}

func TestRunRK4(t *testing.T) {
	cfg := shortConfig()
	cfg.Simulation.Integrator = "rk4"

	exp, err := New(cfg)
	require.NoError(t, err)

	run, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, math.IsNaN(run.FinalRPM()))
}

func TestNewInvalid(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	cfg := shortConfig()
	cfg.Shaft.Inertia = 0
	_, err = New(cfg)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

type sampleCounter struct {
	n    int
	last float64
}

func (c *sampleCounter) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	c.n++
	c.last = t
}

func TestRunObserver(t *testing.T) {
	exp, err := New(shortConfig())
	require.NoError(t, err)

	counter := &sampleCounter{}
	exp.GetSimulator().AddObserver(counter)

	run, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(run.Samples), counter.n)
	assert.InDelta(t, 30.0, counter.last, 1e-9)
}

func TestRunLagged(t *testing.T) {
	direct, err := New(shortConfig())
	require.NoError(t, err)
	want, err := direct.Run(context.Background())
	require.NoError(t, err)

	cfg := shortConfig()
	cfg.Drive.Lagged = true
	lagged, err := New(cfg)
	require.NoError(t, err)
	run, err := lagged.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, run.Samples, len(want.Samples))
	assert.Equal(t, 0.0, run.Samples[0].Voltage)
	assert.Equal(t, 0.0, run.Samples[0].Moment)
	// sample 1 applies the voltage computed from the initial error
	assert.InDelta(t, want.Samples[0].Voltage, run.Samples[1].Voltage, 1e-12)
}
