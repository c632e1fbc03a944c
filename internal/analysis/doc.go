// Package analysis characterizes the speed response of a regulated shaft.
//
// [StepResponse] reduces a sampled trace and its reference to the usual
// step-response figures:
//
//   - rise time (10% to 90% of the commanded change)
//   - settling time (±2% band around the reference)
//   - overshoot, steady-state error and tail ripple
//   - IAE and ITAE error integrals, used to score regulator gains
//
// # Example
//
//	resp, err := analysis.StepResponse(times, rpm, 3000)
//	if err == nil && resp.Settled() {
//	    fmt.Printf("settled after %.1fs\n", resp.SettlingTime)
//	}
package analysis
