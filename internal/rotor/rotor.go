// Package rotor integrates the angular velocity of a rotating shaft with
// the explicit Euler update
//
//	ω(t+Δt) = ω(t) + (Δt/J)·(Me(t) - M0 - Mload(t))
//
// where Me and Mload come from a per-step moment supplier.
package rotor

import (
	"context"
	"fmt"

	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/integrators"
	"github.com/san-kum/rotorsim/internal/models"
)

// Params are the constant mechanical properties of the shaft.
type Params struct {
	Inertia       float64
	BrakingMoment float64
}

// Sample is the angular velocity at one instant.
type Sample struct {
	Time  float64
	Omega float64
}

// Integrate advances omega0 over steps samples spaced sampleTime apart.
// The returned slice has exactly steps elements and starts at {0, omega0}.
// The supplier receives the state {ω} and must return {Me, Mload}.
func Integrate(p Params, omega0, sampleTime float64, steps int, supplier dynamo.Controller) ([]Sample, error) {
	shaft := models.NewCrankshaft(p.Inertia, p.BrakingMoment)
	if err := shaft.Validate(); err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: moment supplier is nil", dynamo.ErrInvalidArgument)
	}

	sim := dynamo.New(shaft, integrators.NewEuler(), supplier)
	result, err := sim.RunSteps(context.Background(), dynamo.State{omega0}, sampleTime, steps)
	if err != nil {
		return nil, err
	}

	return Samples(result), nil
}

// IntegrateHorizon is Integrate over the samples covering cfg.
func IntegrateHorizon(p Params, omega0 float64, cfg dynamo.Config, supplier dynamo.Controller) ([]Sample, error) {
	steps, err := cfg.Steps()
	if err != nil {
		return nil, err
	}
	return Integrate(p, omega0, cfg.SampleTime, steps, supplier)
}

// Samples extracts (time, ω) pairs from a crankshaft simulation result.
func Samples(result *dynamo.Result) []Sample {
	omega := result.Series(0)
	out := make([]Sample, len(omega))
	for i, w := range omega {
		out[i] = Sample{Time: result.Times[i], Omega: w}
	}
	return out
}
