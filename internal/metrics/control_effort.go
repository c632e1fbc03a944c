package metrics

import (
	"math"

	"github.com/san-kum/rotorsim/internal/dynamo"
)

// ControlEffort is the mean absolute value of one control channel.
type ControlEffort struct {
	name    string
	channel int
	sum     float64
	samples int
}

func NewControlEffort(channel int) *ControlEffort {
	return &ControlEffort{
		name:    "control_effort",
		channel: channel,
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if c.channel < len(u) {
		c.sum += math.Abs(u[c.channel])
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
