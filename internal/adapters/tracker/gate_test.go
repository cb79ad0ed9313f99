package tracker

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock drives Gate deterministically: sleep advances time instantly
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Sleep(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	f.sleeps = append(f.sleeps, d)
}

func newFakeGate(spacing time.Duration) (*Gate, *fakeClock) {
	clk := &fakeClock{now: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)}
	g := NewGate(spacing)
	g.now = clk.Now
	g.sleep = clk.Sleep
	return g, clk
}

func TestGateReleasesInArrivalOrder(t *testing.T) {
	g, _ := newFakeGate(0)

	// hold the chain head so every ticket queues before any releases
	head := make(chan struct{})
	g.mu.Lock()
	g.tail = head
	g.mu.Unlock()

	const n = 20
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	ctx := context.Background()

	for i := 0; i < n; i++ {
		g.mu.Lock()
		prevTail := g.tail
		g.mu.Unlock()

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := g.Wait(ctx); err != nil {
				t.Errorf("Wait: %v", err)
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}(i)

		// ticket i is queued once Wait has swapped the tail
		for {
			g.mu.Lock()
			queued := g.tail != prevTail
			g.mu.Unlock()
			if queued {
				break
			}
		}
	}

	close(head)
	wg.Wait()

	if len(order) != n {
		t.Fatalf("released %d tickets, want %d", len(order), n)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("release order %v, want arrival order", order)
		}
	}
}

func TestGateEnforcesSpacing(t *testing.T) {
	g, clk := newFakeGate(time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := g.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}

	// the first release never sleeps, the following two wait the full spacing
	if len(clk.sleeps) != 2 {
		t.Fatalf("sleeps = %v, want 2 entries", clk.sleeps)
	}
	for i, d := range clk.sleeps {
		if d != time.Second {
			t.Fatalf("sleep %d = %v, want 1s", i, d)
		}
	}
}

func TestGateCanceledTicketDoesNotBreakChain(t *testing.T) {
	g, _ := newFakeGate(0)

	// occupy the head of the chain
	blocked := make(chan struct{})
	g.mu.Lock()
	g.tail = blocked
	g.mu.Unlock()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Wait(canceled); err == nil {
		t.Fatalf("expected context error")
	}

	// release the head: the ticket behind the canceled one must still pass
	close(blocked)
	done := make(chan error, 1)
	go func() { done <- g.Wait(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait after canceled ticket: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("chain stalled after canceled ticket")
	}
}
