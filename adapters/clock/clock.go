// Package clock provides Clock implementations.
package clock

import (
	"sync"
	"time"

	"github.com/artpar/apiquery/ports"
)

// Real returns the actual current time.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time {
	return time.Now()
}

// Fake is a controllable clock for tests. With a non-zero step, every call
// to Now advances the clock by step after reading it, so elapsed-time
// measurements come out deterministic.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewFake creates a fake clock set to t.
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

// NewTicking creates a fake clock set to t that advances by step per read.
func NewTicking(t time.Time, step time.Duration) *Fake {
	return &Fake{current: t, step: step}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.current
	f.current = f.current.Add(f.step)
	return now
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// Since returns the time elapsed on c since t.
func Since(c ports.Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}

var (
	_ ports.Clock = Real{}
	_ ports.Clock = (*Fake)(nil)
)
