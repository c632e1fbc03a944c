package control

import "math"

// PID is a discrete regulator evaluated once per sample:
//
//	u = Kp·e[i] + Ki·Σe·dt + Kd·(e[i]-e[i-1])/dt
//
// The derivative term is zero on the first sample. The output is clamped
// to [Min, Max]; the integral keeps accumulating while clamped.
type PID struct {
	Kp  float64
	Ki  float64
	Kd  float64
	Min float64
	Max float64

	errSum  float64
	prevErr float64
	first   bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp:    kp,
		Ki:    ki,
		Kd:    kd,
		Min:   math.Inf(-1),
		Max:   math.Inf(1),
		first: true,
	}
}

// WithLimits sets the output range and returns p.
func (p *PID) WithLimits(min, max float64) *PID {
	p.Min = min
	p.Max = max
	return p
}

// Update feeds the error of the current sample and returns the clamped
// regulator output.
func (p *PID) Update(err, dt float64) float64 {
	p.errSum += err

	out := p.Kp*err + p.Ki*p.errSum*dt
	if !p.first && dt > 0 {
		out += p.Kd * (err - p.prevErr) / dt
	}

	p.prevErr = err
	p.first = false

	return math.Max(p.Min, math.Min(p.Max, out))
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.errSum = 0
	p.prevErr = 0
	p.first = true
}
