// Package observe carries progress notifications out of the parsing and
// matching core. The core never writes to a console; callers attach an
// Observer to see what happened.
package observe

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Kind names an event
type Kind string

const (
	TableParsed        Kind = "table.parsed"
	RowParsed          Kind = "table.row"
	ParseFailed        Kind = "table.failed"
	RequirementMatched Kind = "requirement.matched"
	FallbackTriggered  Kind = "fallback.triggered"
)

// Fields carries event attributes
type Fields map[string]interface{}

// Event is one notification
type Event struct {
	Kind   Kind
	Time   time.Time
	Fields Fields
}

// Observer receives events. Implementations must be safe for concurrent use.
type Observer interface {
	Notify(Event)
}

// Func adapts a function to Observer
type Func func(Event)

// Notify calls f(e)
func (f Func) Notify(e Event) { f(e) }

// Nop discards every event
var Nop Observer = Func(func(Event) {})

// Emit stamps and delivers an event; a nil observer is allowed
func Emit(o Observer, kind Kind, fields Fields) {
	if o == nil {
		return
	}
	o.Notify(Event{Kind: kind, Time: time.Now(), Fields: fields})
}

// LogObserver writes events as structured log entries
type LogObserver struct {
	logger *logrus.Logger
}

// NewLogObserver creates an observer backed by logger
func NewLogObserver(logger *logrus.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// Notify logs the event at a level chosen by its kind
func (l *LogObserver) Notify(e Event) {
	entry := l.logger.WithField("event", string(e.Kind)).WithFields(logrus.Fields(e.Fields))

	switch e.Kind {
	case FallbackTriggered, ParseFailed:
		entry.Warn(message(e.Kind))
	case RequirementMatched, TableParsed:
		entry.Info(message(e.Kind))
	default:
		entry.Debug(message(e.Kind))
	}
}

func message(k Kind) string {
	switch k {
	case TableParsed:
		return "table recovered"
	case RowParsed:
		return "row parsed"
	case ParseFailed:
		return "no usable table"
	case RequirementMatched:
		return "requirement matched"
	case FallbackTriggered:
		return "model strategy unavailable, using pattern strategy"
	}
	return string(k)
}

// Recorder keeps every event in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify appends the event
func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind were recorded
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Multi fans an event out to several observers
func Multi(observers ...Observer) Observer {
	return Func(func(e Event) {
		for _, o := range observers {
			if o != nil {
				o.Notify(e)
			}
		}
	})
}
