// Package dynamo provides the simulation core for first-order rotational
// dynamics.
//
// The package defines the fundamental interfaces and types used to step an
// ordinary differential equation forward in time:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//   - [Controller]: per-step supplier of control inputs
//   - [Simulator]: orchestrates simulation runs
//   - [StepCount]: number of samples covering a simulation horizon
//
// # Example
//
//	cfg, _ := dynamo.NewConfig(30, 0.1) // 301 samples
//	shaft := models.NewCrankshaft(1.2, 0.2)
//	sim := dynamo.New(shaft, integrators.NewEuler(), control.NewConstant(1, 0))
//	result, _ := sim.Run(ctx, dynamo.State{0}, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Run independent simulators
// when evaluating several configurations in parallel.
package dynamo
