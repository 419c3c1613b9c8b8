package mocks

import (
	"sync"
	"time"

	"github.com/tmccall/arenad/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Time only moves
// when Advance or Set is called; pending AfterFunc calls fire synchronously
// when the clock passes their deadline.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	timers      []*mockTimer
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Set sets the clock to the given time and fires due timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.currentTime = t
	due := c.collectDue()
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

// Advance moves the clock forward by the given duration and fires due timers
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	due := c.collectDue()
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

// NewTicker returns a manually driven ticker; use its Tick method
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

// AfterFunc registers f to run when the clock reaches now+d
func (c *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTimer{deadline: c.currentTime.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// PendingTimers returns the number of registered, unfired timers
func (c *MockClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// collectDue marks and returns the callbacks whose deadline has passed.
// Caller must hold c.mu.
func (c *MockClock) collectDue() []func() {
	var due []func()
	for _, t := range c.timers {
		if !t.done && !t.deadline.After(c.currentTime) {
			t.done = true
			due = append(due, t.f)
		}
	}
	return due
}

type mockTimer struct {
	deadline time.Time
	f        func()
	done     bool
}

func (t *mockTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}

// MockTicker is a ticker that fires only when Tick is called
type MockTicker struct {
	ch      chan time.Time
	stopped bool
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop marks the ticker stopped
func (t *MockTicker) Stop() {
	t.stopped = true
}

// Tick delivers one tick; it is dropped if nobody is receiving
func (t *MockTicker) Tick(at time.Time) {
	select {
	case t.ch <- at:
	default:
	}
}
