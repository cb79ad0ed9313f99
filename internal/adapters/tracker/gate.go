package tracker

import (
	"context"
	"sync"
	"time"
)

// Gate serializes access to the external source
//
// Callers queue in arrival order and each is released only once a minimum
// spacing interval has elapsed since the previous release. This is a ticket
// queue, not a token bucket: release order always matches arrival order
type Gate struct {
	mu      sync.Mutex
	tail    chan struct{}
	last    time.Time
	spacing time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

// NewGate builds a gate with the given minimum spacing between releases
// zero spacing still serializes but never sleeps
func NewGate(spacing time.Duration) *Gate {
	return &Gate{
		spacing: spacing,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Wait blocks until this caller's ticket is released
// a canceled ctx abandons the ticket but never breaks the chain for later callers
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	prev := g.tail
	done := make(chan struct{})
	g.tail = done
	g.mu.Unlock()

	// the next ticket waits on us no matter how we exit
	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	last := g.last
	g.mu.Unlock()

	if !last.IsZero() {
		if wait := g.spacing - g.now().Sub(last); wait > 0 {
			g.sleep(wait)
		}
	}

	g.mu.Lock()
	g.last = g.now()
	g.mu.Unlock()
	return nil
}
