package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Control is the per-step input vector handed to a System.
type Control []float64

func (c Control) Clone() Control {
	out := make(Control, len(c))
	copy(out, c)
	return out
}

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Hamiltonian is implemented by systems with a notion of stored energy.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Controller supplies the control input for the sample at time t.
type Controller interface {
	Compute(x State, t float64) Control
}

// Resetter is implemented by controllers and suppliers that keep state
// between samples.
type Resetter interface {
	Reset()
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

// Config holds the simulation timing. A valid Config has positive times
// and SampleTime <= TotalTime.
type Config struct {
	TotalTime     float64
	SampleTime    float64
	ValidateState bool
}

// NewConfig returns a validated Config.
func NewConfig(totalTime, sampleTime float64) (Config, error) {
	cfg := Config{TotalTime: totalTime, SampleTime: sampleTime, ValidateState: true}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if math.IsNaN(c.SampleTime) || math.IsInf(c.SampleTime, 0) || c.SampleTime <= 0 {
		return invalidArgf("sample time must be positive, got %g", c.SampleTime)
	}
	if math.IsNaN(c.TotalTime) || math.IsInf(c.TotalTime, 0) || c.TotalTime <= 0 {
		return invalidArgf("total time must be positive, got %g", c.TotalTime)
	}
	if c.SampleTime > c.TotalTime {
		return invalidArgf("sample time %g exceeds total time %g", c.SampleTime, c.TotalTime)
	}
	return nil
}

// Steps returns the number of samples the configuration covers.
func (c Config) Steps() (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return StepCount(c.TotalTime, c.SampleTime)
}

// Result holds one sample per produced step. Controls[i] is the input
// computed at Times[i]; StepsTaken counts integrator updates.
type Result struct {
	States     []State
	Controls   []Control
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Series returns component idx of every recorded state.
func (r *Result) Series(idx int) []float64 {
	out := make([]float64, len(r.States))
	for i, s := range r.States {
		if idx < len(s) {
			out[i] = s[idx]
		}
	}
	return out
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
