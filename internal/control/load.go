package control

// LoadProfile yields the external load moment for a sample.
type LoadProfile interface {
	Moment(t, omega float64) float64
}

// ConstantLoad is a load moment that never changes.
type ConstantLoad float64

func (c ConstantLoad) Moment(t, omega float64) float64 { return float64(c) }

// StepLoad switches from Before to After once t reaches At.
type StepLoad struct {
	Before float64
	After  float64
	At     float64
}

func (s StepLoad) Moment(t, omega float64) float64 {
	if t >= s.At {
		return s.After
	}
	return s.Before
}

// LoadFunc adapts a closure to a LoadProfile.
type LoadFunc func(t, omega float64) float64

func (f LoadFunc) Moment(t, omega float64) float64 { return f(t, omega) }
