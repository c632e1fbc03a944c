package analysis

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/rotorsim/internal/dynamo"
)

const (
	settlingBand  = 0.02
	tailFraction  = 0.1
	riseLowLevel  = 0.1
	riseHighLevel = 0.9
)

// Response summarizes how a trace approaches its reference. Times that
// are never reached are NaN.
type Response struct {
	Reference        float64 `json:"reference"`
	Initial          float64 `json:"initial"`
	Final            float64 `json:"final"`
	SteadyStateError float64 `json:"steady_state_error"`
	OvershootPercent float64 `json:"overshoot_percent"`
	RiseTime         float64 `json:"rise_time"`
	SettlingTime     float64 `json:"settling_time"`
	TailStdDev       float64 `json:"tail_std_dev"`
	IAE              float64 `json:"iae"`
	ITAE             float64 `json:"itae"`
}

// Settled reports whether the trace ends inside the settling band.
func (r Response) Settled() bool {
	return !math.IsNaN(r.SettlingTime)
}

// MarshalJSON encodes unreached times as null.
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	return json.Marshal(struct {
		plain
		RiseTime     *float64 `json:"rise_time"`
		SettlingTime *float64 `json:"settling_time"`
	}{
		plain:        plain(r),
		RiseTime:     reached(r.RiseTime),
		SettlingTime: reached(r.SettlingTime),
	})
}

func reached(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// Metric returns a named figure of merit, as used by the gain tuner.
func (r Response) Metric(name string) (float64, error) {
	switch name {
	case "iae":
		return r.IAE, nil
	case "itae":
		return r.ITAE, nil
	case "overshoot":
		return r.OvershootPercent, nil
	case "steady_state_error":
		return math.Abs(r.SteadyStateError), nil
	case "settling_time":
		if !r.Settled() {
			return math.Inf(1), nil
		}
		return r.SettlingTime, nil
	default:
		return 0, fmt.Errorf("%w: unknown response metric %q", dynamo.ErrInvalidArgument, name)
	}
}

// StepResponse analyzes values sampled at times against reference.
func StepResponse(times, values []float64, reference float64) (Response, error) {
	if len(times) != len(values) {
		return Response{}, fmt.Errorf("%w: %d times for %d values", dynamo.ErrInvalidArgument, len(times), len(values))
	}
	if len(values) < 2 {
		return Response{}, fmt.Errorf("%w: need at least 2 samples, got %d", dynamo.ErrInvalidArgument, len(values))
	}
	if floats.HasNaN(values) {
		return Response{}, fmt.Errorf("%w: trace contains NaN", dynamo.ErrInvalidArgument)
	}

	y0 := values[0]
	n := len(values)
	resp := Response{
		Reference: reference,
		Initial:   y0,
		Final:     values[n-1],
	}

	tailLen := int(math.Ceil(float64(n) * tailFraction))
	tail := values[n-tailLen:]
	mean, std := stat.MeanStdDev(tail, nil)
	resp.SteadyStateError = reference - mean
	if tailLen > 1 {
		resp.TailStdDev = std
	}

	span := math.Abs(reference - y0)
	if span == 0 {
		span = math.Max(math.Abs(reference), 1)
	}
	dir := 1.0
	if reference < y0 {
		dir = -1
	}

	// Overshoot is measured past the reference in the direction of travel.
	var extreme float64
	if dir > 0 {
		extreme = floats.Max(values)
	} else {
		extreme = floats.Min(values)
	}
	resp.OvershootPercent = math.Max(0, dir*(extreme-reference)/span*100)

	resp.RiseTime = riseTime(times, values, y0, reference, dir)
	resp.SettlingTime = settlingTime(times, values, reference, span*settlingBand)

	absErr := make([]float64, n)
	timedErr := make([]float64, n)
	for i, v := range values {
		absErr[i] = math.Abs(reference - v)
		timedErr[i] = (times[i] - times[0]) * absErr[i]
	}
	resp.IAE = integrate.Trapezoidal(times, absErr)
	resp.ITAE = integrate.Trapezoidal(times, timedErr)

	return resp, nil
}

func riseTime(times, values []float64, y0, reference, dir float64) float64 {
	if reference == y0 {
		return 0
	}
	low := y0 + riseLowLevel*(reference-y0)
	high := y0 + riseHighLevel*(reference-y0)

	tLow := math.NaN()
	for i, v := range values {
		if math.IsNaN(tLow) && dir*(v-low) >= 0 {
			tLow = times[i]
		}
		if dir*(v-high) >= 0 {
			if math.IsNaN(tLow) {
				tLow = times[i]
			}
			return times[i] - tLow
		}
	}
	return math.NaN()
}

func settlingTime(times, values []float64, reference, band float64) float64 {
	last := -1
	for i, v := range values {
		if math.Abs(v-reference) > band {
			last = i
		}
	}
	switch {
	case last == -1:
		return times[0]
	case last == len(values)-1:
		return math.NaN()
	default:
		return times[last+1]
	}
}
