package dynamo

import "math"

// StepCount returns the number of discrete samples needed to cover
// [0, totalTime] at a fixed sampleTime, counting the initial sample at t=0.
//
// The division is truncated, so when totalTime is not a multiple of
// sampleTime the last sample falls short of totalTime by the remainder.
func StepCount(totalTime, sampleTime float64) (int, error) {
	if math.IsNaN(sampleTime) || math.IsInf(sampleTime, 0) || sampleTime <= 0 {
		return 0, invalidArgf("sample time must be positive, got %g", sampleTime)
	}
	if math.IsNaN(totalTime) || math.IsInf(totalTime, 0) || totalTime < 0 {
		return 0, invalidArgf("total time must be non-negative, got %g", totalTime)
	}

	q := math.Floor(totalTime / sampleTime)
	if q >= math.MaxInt32 {
		return 0, invalidArgf("%g/%g yields too many steps", totalTime, sampleTime)
	}
	return int(q) + 1, nil
}
