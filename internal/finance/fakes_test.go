package finance

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeListing serves canned listings per segment and counts calls.
type fakeListing struct {
	mu       sync.Mutex
	listings map[string][]DirectoryRecord
	errs     map[string]error
	calls    []string
}

func (f *fakeListing) Listing(_ context.Context, segment string) ([]DirectoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, segment)
	if err := f.errs[segment]; err != nil {
		return nil, err
	}
	return f.listings[segment], nil
}

func (f *fakeListing) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeHistory serves canned closes per full symbol and records requests.
type fakeHistory struct {
	mu     sync.Mutex
	closes map[string][]float64
	errs   map[string]error
	delay  map[string]time.Duration
	calls  []string
}

var errUnknownSymbol = errors.New("http 404: unknown symbol")

func (f *fakeHistory) DailyCloses(ctx context.Context, symbol string) ([]float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	d := f.delay[symbol]
	err := f.errs[symbol]
	cl, ok := f.closes[symbol]
	f.mu.Unlock()
	if d > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errUnknownSymbol
	}
	return cl, nil
}

func (f *fakeHistory) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
