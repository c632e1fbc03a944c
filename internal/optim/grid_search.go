package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/experiment"
)

// Gains is one regulator setting and the score it achieved.
type Gains struct {
	Kp    float64 `json:"kp"`
	Ki    float64 `json:"ki"`
	Kd    float64 `json:"kd"`
	Score float64 `json:"score"`
	Err   error   `json:"-"`
}

// GridSearch scores every combination of the given gain ranges.
type GridSearch struct {
	kp, ki, kd []float64
	metric     string
	log        zerolog.Logger
}

func NewGridSearch(kp, ki, kd []float64, metric string) *GridSearch {
	return &GridSearch{kp: kp, ki: ki, kd: kd, metric: metric, log: zerolog.Nop()}
}

func (g *GridSearch) SetLogger(l zerolog.Logger) { g.log = l }

// Search runs the closed loop described by base once per combination and
// returns all combinations ordered by ascending score. Failed runs score
// +Inf and keep their error.
func (g *GridSearch) Search(ctx context.Context, base *config.Config) ([]Gains, error) {
	if len(g.kp) == 0 || len(g.ki) == 0 || len(g.kd) == 0 {
		return nil, fmt.Errorf("%w: every gain needs at least one candidate", dynamo.ErrInvalidArgument)
	}
	if base == nil {
		return nil, fmt.Errorf("%w: nil base config", dynamo.ErrInvalidArgument)
	}
	if base.Drive.Mode != config.ModeClosedLoop {
		return nil, fmt.Errorf("%w: gain search needs a closed-loop drive", dynamo.ErrInvalidArgument)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]Gains, 0, len(g.kp)*len(g.ki)*len(g.kd))
	for _, kp := range g.kp {
		for _, ki := range g.ki {
			for _, kd := range g.kd {
				candidates = append(candidates, Gains{Kp: kp, Ki: ki, Kd: kd})
			}
		}
	}

	g.log.Info().
		Int("candidates", len(candidates)).
		Str("metric", g.metric).
		Msg("gain search started")

	dynamo.ParallelFor(len(candidates), 1, func(start, end int) {
		for i := start; i < end; i++ {
			candidates[i].Score, candidates[i].Err = g.evaluate(ctx, base, candidates[i])
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score < candidates[j].Score
	})

	best := candidates[0]
	g.log.Info().
		Float64("kp", best.Kp).
		Float64("ki", best.Ki).
		Float64("kd", best.Kd).
		Float64("score", best.Score).
		Msg("gain search finished")

	return candidates, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, gains Gains) (float64, error) {
	cfg := base.Clone()
	cfg.Drive.Kp = gains.Kp
	cfg.Drive.Ki = gains.Ki
	cfg.Drive.Kd = gains.Kd

	exp, err := experiment.New(cfg)
	if err != nil {
		return math.Inf(1), err
	}
	run, err := exp.Run(ctx)
	if err != nil {
		return math.Inf(1), err
	}
	if run.Response == nil {
		return math.Inf(1), fmt.Errorf("no step response for kp=%g ki=%g kd=%g", gains.Kp, gains.Ki, gains.Kd)
	}

	score, err := run.Response.Metric(g.metric)
	if err != nil {
		return math.Inf(1), err
	}
	if math.IsNaN(score) {
		return math.Inf(1), nil
	}
	return score, nil
}
