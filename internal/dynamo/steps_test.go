package dynamo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepCount(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		sample float64
		want   int
	}{
		{"thirty seconds", 30, 0.1, 301},
		{"zero horizon", 0, 0.1, 1},
		{"truncates", 10, 3, 4},
		{"exact multiple", 9, 3, 4},
		{"sample longer than horizon", 1, 2, 1},
		{"default horizon", 1000, 0.1, 10001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StepCount(tt.total, tt.sample)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepCount_InvalidArgument(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		sample float64
	}{
		{"zero sample", 30, 0},
		{"negative sample", 30, -0.1},
		{"negative horizon", -1, 0.1},
		{"NaN sample", 30, math.NaN()},
		{"infinite horizon", math.Inf(1), 0.1},
		{"too many steps", 1e12, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StepCount(tt.total, tt.sample)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestStepCount_AtLeastOne(t *testing.T) {
	for _, total := range []float64{0, 0.01, 0.5, 1, 7.3, 100} {
		for _, sample := range []float64{0.001, 0.1, 1, 3, 250} {
			got, err := StepCount(total, sample)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, 1, "total=%g sample=%g", total, sample)
		}
	}
}

func TestStepCount_Idempotent(t *testing.T) {
	a, errA := StepCount(12.5, 0.3)
	b, errB := StepCount(12.5, 0.3)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}
