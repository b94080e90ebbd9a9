// Package failuretrace snapshots enough context around a failure to
// reproduce it later: the module/stage/message that failed, an ordered
// set of caller-supplied key/value snapshots, and a copy of the
// diagnostic log that preceded it.
package failuretrace

import (
	"fmt"

	"github.com/marrowdock/vellum/diagnostic"
)

// Snapshot is one (key, value) pair captured at failure time. Value is
// compared for reproducibility via its formatted representation, so
// any comparable or Stringer-ish value works.
type Snapshot struct {
	Key   string
	Value any
}

// Trace is a single captured failure.
type Trace struct {
	CorrelationID uint64
	Module        diagnostic.Module
	Stage         diagnostic.Stage
	ErrorMessage  string
	Snapshots     []Snapshot
	ContextEvents []diagnostic.Event
}

// AddSnapshot appends a (key, value) pair to the trace, in call order.
func (t *Trace) AddSnapshot(key string, value any) {
	t.Snapshots = append(t.Snapshots, Snapshot{Key: key, Value: value})
}

// IsReproducibleWith reports whether t and other agree on module,
// stage, error message, and the ordered snapshot list. CorrelationID
// and ContextEvents may differ — they're diagnostic color, not part of
// what makes a failure "the same failure".
func (t *Trace) IsReproducibleWith(other *Trace) bool {
	if t.Module != other.Module || t.Stage != other.Stage || t.ErrorMessage != other.ErrorMessage {
		return false
	}
	if len(t.Snapshots) != len(other.Snapshots) {
		return false
	}
	for i, s := range t.Snapshots {
		o := other.Snapshots[i]
		if s.Key != o.Key || fmt.Sprintf("%v", s.Value) != fmt.Sprintf("%v", o.Value) {
			return false
		}
	}
	return true
}

// Collector accumulates captured traces for later inspection (a
// recovery UI, a test assertion, a bug report).
type Collector struct {
	traces []*Trace
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Capture builds a Trace from the emitter's current correlation ID and
// event log, stores it, and returns it so the caller can attach
// snapshots before moving on.
func (c *Collector) Capture(emitter *diagnostic.Emitter, module diagnostic.Module, stage diagnostic.Stage, errorMessage string) *Trace {
	t := &Trace{
		CorrelationID: emitter.CorrelationID(),
		Module:        module,
		Stage:         stage,
		ErrorMessage:  errorMessage,
		ContextEvents: emitter.Events(),
	}
	c.traces = append(c.traces, t)
	return t
}

// Size returns the number of traces collected.
func (c *Collector) Size() int {
	return len(c.traces)
}

// Traces returns all collected traces in capture order.
func (c *Collector) Traces() []*Trace {
	out := make([]*Trace, len(c.traces))
	copy(out, c.traces)
	return out
}

// Clear empties the collector.
func (c *Collector) Clear() {
	c.traces = nil
}
