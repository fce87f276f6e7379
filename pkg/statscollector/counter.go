package statscollector

import (
	"fmt"
	"math"
)

// Counter accumulates a running mean without retaining sample history.
type Counter struct {
	sum     uint64
	samples uint64
}

// Sample adds v to the counter.
func (c *Counter) Sample(v uint64) {
	c.sum += v
	c.samples++
}

// Get returns the current mean and spread. With no samples it returns NaN and
// +Inf. Spread is always zero otherwise and carries no statistical meaning.
func (c Counter) Get() (float64, float64) {
	if c.samples == 0 {
		return math.NaN(), math.Inf(1)
	}
	return float64(c.sum) / float64(c.samples), 0
}

// Samples returns how many values were sampled.
func (c Counter) Samples() uint64 {
	return c.samples
}

// Sum returns the total of all sampled values.
func (c Counter) Sum() uint64 {
	return c.sum
}

func (c Counter) String() string {
	mean, spread := c.Get()
	return fmt.Sprintf("%v±%v", mean, spread)
}
