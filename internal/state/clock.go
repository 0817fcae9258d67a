package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock is a Lamport clock for one site.
type Clock struct {
	site    string
	lamport atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string { return c.site }

// Tick advances the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	return c.lamport.Add(1)
}

// Observe moves the clock past a timestamp received from another site.
func (c *Clock) Observe(ts uint64) {
	for {
		cur := c.lamport.Load()
		if ts <= cur || c.lamport.CompareAndSwap(cur, ts) {
			return
		}
	}
}

// stamp orders writes to a last-writer-wins register.
type stamp struct {
	lamport uint64
	site    string
}

func (s stamp) after(o stamp) bool {
	if s.lamport != o.lamport {
		return s.lamport > o.lamport
	}
	return s.site > o.site
}
