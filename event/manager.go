package event

import (
	"sync"

	"github.com/Norconex/commons-lang-sub007/logger"
)

// Manager holds listeners and fires events at them. The zero value is not
// usable; create one with NewManager. All methods are safe for concurrent
// use.
type Manager struct {
	mu        sync.RWMutex
	listeners []Listener
	log       *logger.Logger
}

// NewManager creates an empty event manager.
func NewManager() *Manager {
	return &Manager{log: logger.WithComponent("event")}
}

// AddListener registers a listener. Listeners are notified in registration
// order.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// RemoveListener removes a previously registered listener, matched by
// interface equality.
func (m *Manager) RemoveListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.listeners {
		if existing == l {
			m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (m *Manager) ListenerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listeners)
}

// Fire delivers ev to every listener synchronously, in registration order.
// A listener panic is recovered and logged.
func (m *Manager) Fire(ev Event) {
	m.mu.RLock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.RUnlock()

	for _, l := range listeners {
		m.fireOne(l, ev)
	}
}

func (m *Manager) fireOne(l Listener, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error("event listener panicked", logger.Fields(
				"event", ev.Name,
				"panic", rec,
			))
		}
	}()
	l.OnEvent(ev)
}
