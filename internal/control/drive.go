package control

import (
	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/models"
)

// Drive is a closed-loop speed regulator. Each sample it measures the
// shaft speed in RPM, feeds the error against ReferenceRPM to the
// regulator, and turns the resulting voltage into Me = TorqueConstant·U.
//
// When Lagged is set the voltage applied at sample i is the one computed
// at sample i-1, and 0 V at the first sample.
type Drive struct {
	Regulator      *PID
	TorqueConstant float64
	ReferenceRPM   float64
	Load           LoadProfile
	SampleTime     float64
	Lagged         bool

	held     float64
	voltages []float64
}

// NewDrive wires a drive. A nil regulator is replaced by a zero-gain PID,
// a nil load by zero load.
func NewDrive(regulator *PID, torqueConstant, referenceRPM float64, load LoadProfile, sampleTime float64) *Drive {
	if regulator == nil {
		regulator = NewPID(0, 0, 0)
	}
	if load == nil {
		load = ConstantLoad(0)
	}
	return &Drive{
		Regulator:      regulator,
		TorqueConstant: torqueConstant,
		ReferenceRPM:   referenceRPM,
		Load:           load,
		SampleTime:     sampleTime,
	}
}

func (d *Drive) Compute(x dynamo.State, t float64) dynamo.Control {
	var omega float64
	if len(x) > 0 {
		omega = x[0]
	}

	var voltage float64
	if d.Regulator != nil {
		errRPM := d.ReferenceRPM - models.RadPerSecToRPM(omega)
		voltage = d.Regulator.Update(errRPM, d.SampleTime)
	}
	if d.Lagged {
		voltage, d.held = d.held, voltage
	}
	d.voltages = append(d.voltages, voltage)

	return dynamo.Control{d.TorqueConstant * voltage, d.Load.Moment(t, omega)}
}

// Voltages returns the voltage applied at every sample since the last
// reset.
func (d *Drive) Voltages() []float64 {
	out := make([]float64, len(d.voltages))
	copy(out, d.voltages)
	return out
}

func (d *Drive) Reset() {
	if d.Regulator != nil {
		d.Regulator.Reset()
	}
	d.held = 0
	d.voltages = d.voltages[:0]
}
