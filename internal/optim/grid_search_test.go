package optim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/dynamo"
)

func baseConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Simulation.TotalTime = 60
	return cfg
}

func TestGridSearchOrdersByScore(t *testing.T) {
	g := NewGridSearch([]float64{0, 0.007, 0.02}, []float64{0.00015}, []float64{0, 0.0015}, "itae")

	results, err := g.Search(context.Background(), baseConfig())
	require.NoError(t, err)
	require.Len(t, results, 6)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Score, results[i].Score)
	}
	assert.NoError(t, results[0].Err)
	assert.False(t, math.IsInf(results[0].Score, 1))
}

func TestGridSearchPrefersRegulatorOverZeroGains(t *testing.T) {
	g := NewGridSearch([]float64{0, 0.007}, []float64{0, 0.00015}, []float64{0}, "iae")

	results, err := g.Search(context.Background(), baseConfig())
	require.NoError(t, err)

	// with all gains zero the drive never produces torque
	last := results[len(results)-1]
	assert.Equal(t, 0.0, last.Kp)
	assert.Equal(t, 0.0, last.Ki)
}

func TestGridSearchUnknownMetric(t *testing.T) {
	g := NewGridSearch([]float64{0.007}, []float64{0}, []float64{0}, "energy")

	results, err := g.Search(context.Background(), baseConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, results[0].Err, dynamo.ErrInvalidArgument)
	assert.True(t, math.IsInf(results[0].Score, 1))
}

func TestGridSearchInvalid(t *testing.T) {
	g := NewGridSearch(nil, []float64{0}, []float64{0}, "itae")
	_, err := g.Search(context.Background(), baseConfig())
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	g = NewGridSearch([]float64{1}, []float64{0}, []float64{0}, "itae")
	open := baseConfig()
	open.Drive.Mode = config.ModeOpenLoop
	_, err = g.Search(context.Background(), open)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	_, err = g.Search(context.Background(), nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]float64{0.007}, []float64{0}, []float64{0}, "itae")
	_, err := g.Search(ctx, baseConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
