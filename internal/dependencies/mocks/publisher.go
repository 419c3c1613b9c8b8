package mocks

import (
	"sync"

	"github.com/tmccall/arenad/internal/broadcast"
	"github.com/tmccall/arenad/internal/model"
)

// Emit records one published event for assertions
type Emit struct {
	Channel  string         // empty for direct-to-client emits
	ClientID model.PlayerID // empty for channel emits
	Event    string
	Payload  any
}

// MockPublisher records channel membership and emitted events for testing
type MockPublisher struct {
	mu       sync.Mutex
	Emits    []Emit
	Channels map[string]map[model.PlayerID]bool
}

// Ensure MockPublisher implements Publisher
var _ broadcast.Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Channels: make(map[string]map[model.PlayerID]bool),
	}
}

func (p *MockPublisher) Join(clientID model.PlayerID, channel string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Channels[channel] == nil {
		p.Channels[channel] = make(map[model.PlayerID]bool)
	}
	p.Channels[channel][clientID] = true
}

func (p *MockPublisher) Leave(clientID model.PlayerID, channel string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.Channels[channel], clientID)
}

func (p *MockPublisher) ToChannel(channel string, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Emits = append(p.Emits, Emit{Channel: channel, Event: event, Payload: payload})
}

func (p *MockPublisher) ToClient(clientID model.PlayerID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Emits = append(p.Emits, Emit{ClientID: clientID, Event: event, Payload: payload})
}

// EventsNamed returns all recorded emits with the given event name
func (p *MockPublisher) EventsNamed(event string) []Emit {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Emit
	for _, e := range p.Emits {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// LastEventNamed returns the most recent emit with the given event name, or nil
func (p *MockPublisher) LastEventNamed(event string) *Emit {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.Emits) - 1; i >= 0; i-- {
		if p.Emits[i].Event == event {
			e := p.Emits[i]
			return &e
		}
	}
	return nil
}

// ResetEmits clears the recorded emits, keeping channel membership
func (p *MockPublisher) ResetEmits() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Emits = nil
}
