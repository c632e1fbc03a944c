// Package control provides per-step moment suppliers for the crankshaft.
//
// Suppliers implement the [dynamo.Controller] interface and return the
// control vector {Me, Mload} consumed by [models.Crankshaft]:
//
//   - [Constant]: fixed electromagnetic and load moments (open loop)
//   - [Func]: closure adapter for arbitrary moment models
//   - [Drive]: speed regulator driving a DC motor through a [PID]
//
// # Usage
//
//	pid := control.NewPID(0.007, 0.00015, 0.0015).WithLimits(0, 24)
//	drive := control.NewDrive(pid, 0.4, 3000, control.ConstantLoad(5), 0.1)
//	sim := dynamo.New(shaft, integrators.NewEuler(), drive)
//
// Suppliers with internal state implement [dynamo.Resetter] and are reset
// by the simulator at the start of every run.
package control
