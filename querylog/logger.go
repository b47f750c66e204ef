package querylog

import (
	"errors"
	"sync"
	"time"
)

// ErrEmptyLog is returned when taking an event from a logger with nothing pending.
// Callers should check HasPending first.
var ErrEmptyLog = errors.New("querylog: no more events logged")

// Logger is an ordered buffer of query events, drained in the order they were recorded.
//
// A nil *Logger is valid and records nothing, which is how query logging is switched off.
type Logger struct {
	now func() time.Time

	mu          sync.Mutex
	events      []*Event
	connections []string
}

func New() *Logger {
	return &Logger{
		now: time.Now,
	}
}

// Record marks the event as started and appends it to the tail of the log.
func (l *Logger) Record(e *Event) {
	if l == nil || e == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e.start(l.now())
	l.events = append(l.events, e)
}

// Complete marks an already recorded event as completed. The event is updated in place, so
// it is not appended to the log a second time.
func (l *Logger) Complete(e *Event) {
	if l == nil || e == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e.complete(l.now())
}

func (l *Logger) HasPending() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.events) > 0
}

// Len is the number of pending events.
func (l *Logger) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.events)
}

// TakeNext removes and returns the oldest pending event.
func (l *Logger) TakeNext() (*Event, error) {
	if l == nil {
		return nil, ErrEmptyLog
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) == 0 {
		return nil, ErrEmptyLog
	}
	e := l.events[0]
	l.events[0] = nil
	l.events = l.events[1:]
	return e, nil
}

// Drain removes and returns every pending event, oldest first.
func (l *Logger) Drain() []*Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	events := l.events
	l.events = nil
	return events
}

// RegisterConnection adds name to the tracked connections. Registering a name twice is a no-op.
func (l *Logger) RegisterConnection(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range l.connections {
		if c == name {
			return
		}
	}
	l.connections = append(l.connections, name)
}

// Connections returns the registered connection names in the order they were first registered.
func (l *Logger) Connections() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.connections...)
}
