// Package status tracks the run lifecycle of a long-lived imx process.
package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/stecurtis/imx/internal/bus"
)

// State represents the exporter runtime state.
type State string

const (
	Idle    State = "IDLE"
	Running State = "RUNNING"
	Error   State = "ERROR"
)

var validTransitions = map[State][]State{
	Idle:    {Running},
	Running: {Idle, Error},
	Error:   {Running},
}

// Machine tracks and enforces exporter state transitions, publishing each
// change on the bus.
type Machine struct {
	mu      sync.RWMutex
	current State
	since   time.Time
	bus     *bus.Bus
}

// NewMachine creates a state machine starting Idle.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{current: Idle, since: time.Now(), bus: b}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Since returns when the current state was entered.
func (m *Machine) Since() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.since
}

// Transition attempts to move to a new state. Returns an error if the
// transition is not allowed.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.since = time.Now()
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      "run.status_changed",
			Timestamp: time.Now(),
			Payload:   StatusChange{From: from, To: to},
		})
	}
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
