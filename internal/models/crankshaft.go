package models

import (
	"fmt"
	"math"

	"github.com/san-kum/rotorsim/internal/dynamo"
)

// Control vector layout expected by Crankshaft.
const (
	ElectromagneticMoment = iota
	LoadMoment
)

// Crankshaft is a rigid rotor driven by an electromagnetic moment against
// a constant braking moment and an external load:
//
//	J dω/dt = Me - M0 - Mload
//
// State is {ω} in rad/s, control is {Me, Mload} in N·m.
type Crankshaft struct {
	Inertia       float64
	BrakingMoment float64
}

func NewCrankshaft(inertia, brakingMoment float64) *Crankshaft {
	return &Crankshaft{
		Inertia:       inertia,
		BrakingMoment: brakingMoment,
	}
}

func (c *Crankshaft) StateDim() int {
	return 1
}

func (c *Crankshaft) ControlDim() int {
	return 2
}

// Validate rejects a non-positive inertia and non-finite parameters.
func (c *Crankshaft) Validate() error {
	if math.IsNaN(c.Inertia) || math.IsInf(c.Inertia, 0) || c.Inertia <= 0 {
		return fmt.Errorf("%w: moment of inertia must be positive, got %g", dynamo.ErrInvalidArgument, c.Inertia)
	}
	if math.IsNaN(c.BrakingMoment) || math.IsInf(c.BrakingMoment, 0) {
		return fmt.Errorf("%w: braking moment must be finite, got %g", dynamo.ErrInvalidArgument, c.BrakingMoment)
	}
	return nil
}

func (c *Crankshaft) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	var me, mload float64
	if len(u) > ElectromagneticMoment {
		me = u[ElectromagneticMoment]
	}
	if len(u) > LoadMoment {
		mload = u[LoadMoment]
	}

	alpha := (me - c.BrakingMoment - mload) / c.Inertia

	return dynamo.State{alpha}
}

// Energy is the rotational kinetic energy ½Jω².
func (c *Crankshaft) Energy(x dynamo.State) float64 {
	if len(x) == 0 {
		return 0
	}
	return 0.5 * c.Inertia * x[0] * x[0]
}
