// Package clockx provides an injectable wall clock so token expiry can be
// tested without sleeping.
package clockx

import (
	"sync"
	"time"
)

// Clock is the time source used for issued-at and expiry computation.
// Implementations must return UTC instants.
type Clock interface {
	Now() time.Time
}

// System returns a Clock backed by the real wall clock.
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fake is a controllable Clock for tests. It only moves when told to.
type Fake struct {
	mu sync.Mutex
	t  time.Time
}

// NewFake returns a Fake pinned to start (converted to UTC).
func NewFake(start time.Time) *Fake {
	return &Fake{t: start.UTC()}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Advance moves the fake clock forward by d. Negative d moves it back,
// which is occasionally handy for skew tests.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// Set pins the fake clock to t (converted to UTC).
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t.UTC()
}
