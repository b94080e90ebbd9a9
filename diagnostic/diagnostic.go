// Package diagnostic is vellum's lifecycle/diagnostic substrate:
// severity-tagged events carrying a correlation ID, fanned out to
// observers in registration order. It mirrors the teacher's
// observability.EventLogger shape (functional-option construction, a
// default-logger fallback) but keeps the log in memory and inspectable
// rather than writing it to a database — the deterministic core never
// touches storage.
package diagnostic

import "time"

// Severity ranks a DiagnosticEvent. Higher values are more severe.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String renders the lowercase severity name that is part of the public
// contract (spec §6: "info", "warning", "error").
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Module and Stage are free-form labels ("html", "css", "network",
// "rendering", ...) and ("parse", "fetch", "paint", ...) respectively.
// They are plain strings rather than closed enums because the set of
// modules/stages is open-ended across the pipeline.
type Module string
type Stage string

// Event is a single diagnostic record.
type Event struct {
	Severity      Severity
	Module        Module
	Stage         Stage
	Message       string
	CorrelationID uint64
	Timestamp     int64 // monotonic, comparable only to other events from the same Emitter
}

// Observer is notified of every event an Emitter accepts, in the order
// Observers were registered. An Observer must not call Emit on the
// emitter that is calling it (spec §5: no re-entrancy).
type Observer func(Event)

// Clock returns a monotonically non-decreasing timestamp. The default
// is backed by time.Now(); tests may inject a deterministic one.
type Clock func() int64

func monotonicNow() int64 {
	return time.Now().UnixNano()
}

// Emitter is the deterministic event log owned by exactly one caller
// (spec §5: no shared-resource/locking discipline is needed).
type Emitter struct {
	minSeverity   Severity
	correlationID uint64
	events        []Event
	observers     []Observer
	clock         Clock
	lastTimestamp int64
}

// Option configures an Emitter at construction time.
type Option func(*Emitter)

// WithMinSeverity sets the floor below which Emit is a no-op.
func WithMinSeverity(s Severity) Option {
	return func(e *Emitter) { e.minSeverity = s }
}

// WithClock injects a custom monotonic clock, primarily for tests that
// want deterministic timestamps.
func WithClock(c Clock) Option {
	return func(e *Emitter) { e.clock = c }
}

// New creates an Emitter. Default minimum severity is Info (everything
// is recorded).
func New(opts ...Option) *Emitter {
	e := &Emitter{clock: monotonicNow}
	for _, o := range opts {
		o(e)
	}
	return e
}

// nextTimestamp guarantees strictly non-decreasing timestamps even when
// the underlying clock's resolution is coarser than the call rate.
func (e *Emitter) nextTimestamp() int64 {
	ts := e.clock()
	if ts <= e.lastTimestamp {
		ts = e.lastTimestamp + 1
	}
	e.lastTimestamp = ts
	return ts
}

// Emit appends an event if severity is at or above the emitter's
// minimum, then notifies every observer in registration order.
func (e *Emitter) Emit(severity Severity, module Module, stage Stage, message string) {
	if severity < e.minSeverity {
		return
	}
	ev := Event{
		Severity:      severity,
		Module:        module,
		Stage:         stage,
		Message:       message,
		CorrelationID: e.correlationID,
		Timestamp:     e.nextTimestamp(),
	}
	e.events = append(e.events, ev)
	for _, obs := range e.observers {
		obs(ev)
	}
}

// Observe registers an observer. Observers are never removed in this
// module; callers that need churn should wrap one mutable Observer.
func (e *Emitter) Observe(obs Observer) {
	e.observers = append(e.observers, obs)
}

// SetCorrelationID changes the correlation ID stamped onto future
// events; already-recorded events keep whatever ID they were emitted
// with.
func (e *Emitter) SetCorrelationID(id uint64) {
	e.correlationID = id
}

// CorrelationID returns the ID that will be stamped on the next event.
func (e *Emitter) CorrelationID() uint64 {
	return e.correlationID
}

// Events returns all recorded events in emission order. The returned
// slice is a defensive copy.
func (e *Emitter) Events() []Event {
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// EventsBySeverity returns, in emission order, every event at exactly
// the given severity.
func (e *Emitter) EventsBySeverity(s Severity) []Event {
	var out []Event
	for _, ev := range e.events {
		if ev.Severity == s {
			out = append(out, ev)
		}
	}
	return out
}

// EventsByModule returns, in emission order, every event from the given
// module.
func (e *Emitter) EventsByModule(m Module) []Event {
	var out []Event
	for _, ev := range e.events {
		if ev.Module == m {
			out = append(out, ev)
		}
	}
	return out
}

// Clear empties the event log. Observers and the correlation ID are
// retained.
func (e *Emitter) Clear() {
	e.events = nil
}

// Format renders e as "[<severity>] <module>/<stage>: <message>",
// with " cid:<n>" appended iff CorrelationID is non-zero.
func Format(e Event) string {
	out := "[" + e.Severity.String() + "] " + string(e.Module) + "/" + string(e.Stage) + ": " + e.Message
	if e.CorrelationID != 0 {
		out += " cid:" + itoa(e.CorrelationID)
	}
	return out
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
