package state

import (
	"sync"

	"github.com/google/uuid"
)

// NewSiteID returns a random identifier for this editing session.
func NewSiteID() string {
	return uuid.NewString()
}

// Clock is a Lamport clock shared by every operation a board emits.
type Clock struct {
	counter uint64
	mu      sync.Mutex
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return c.counter
}

// Observe advances the clock past a timestamp received from another site.
func (c *Clock) Observe(ts uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts > c.counter {
		c.counter = ts
	}
}

func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter
}

// stamp orders operations on the same shape: higher lamport wins, site breaks ties.
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
