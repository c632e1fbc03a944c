package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/rotorsim/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int   { return 2 }
func (s *simpleDynamics) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	u := dynamo.Control{}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

type ramp struct{ rate float64 }

func (r *ramp) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{r.rate}
}

func (r *ramp) StateDim() int   { return 1 }
func (r *ramp) ControlDim() int { return 0 }

func TestRK4MatchesEulerOnConstantDerivative(t *testing.T) {
	dyn := &ramp{rate: 2.5}
	euler := NewEuler()
	rk4 := NewRK4()

	xe := dynamo.State{1}
	xr := dynamo.State{1}
	for i := 0; i < 10; i++ {
		xe = euler.Step(dyn, xe, nil, float64(i), 0.5)
		xr = rk4.Step(dyn, xr, nil, float64(i), 0.5)
	}

	if math.Abs(xe[0]-xr[0]) > 1e-12 {
		t.Errorf("expected identical results, euler=%v rk4=%v", xe[0], xr[0])
	}
	if math.Abs(xe[0]-13.5) > 1e-12 {
		t.Errorf("expected 13.5, got %v", xe[0])
	}
}
