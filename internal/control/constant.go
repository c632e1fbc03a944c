package control

import "github.com/san-kum/rotorsim/internal/dynamo"

// Constant supplies the same moments at every sample.
type Constant struct {
	Electromagnetic float64
	Load            float64
}

func NewConstant(me, mload float64) *Constant {
	return &Constant{
		Electromagnetic: me,
		Load:            mload,
	}
}

func (c *Constant) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{c.Electromagnetic, c.Load}
}

// Func adapts a closure of time and angular velocity to a supplier.
type Func func(t, omega float64) (me, mload float64)

func (f Func) Compute(x dynamo.State, t float64) dynamo.Control {
	var omega float64
	if len(x) > 0 {
		omega = x[0]
	}
	me, mload := f(t, omega)
	return dynamo.Control{me, mload}
}
