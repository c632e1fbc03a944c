package metrics

import (
	"math"

	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/models"
)

// PeakRPM tracks the highest shaft speed seen, in RPM.
type PeakRPM struct {
	name string
	peak float64
}

func NewPeakRPM() *PeakRPM {
	return &PeakRPM{
		name: "peak_rpm",
		peak: math.Inf(-1),
	}
}

func (p *PeakRPM) Name() string { return p.name }

func (p *PeakRPM) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) == 0 {
		return
	}
	p.peak = math.Max(p.peak, models.RadPerSecToRPM(x[0]))
}

func (p *PeakRPM) Value() float64 {
	if math.IsInf(p.peak, -1) {
		return 0
	}
	return p.peak
}

func (p *PeakRPM) Reset() {
	p.peak = math.Inf(-1)
}
