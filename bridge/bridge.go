// Package bridge is the DOM/event surface exposed to script-like
// callers: an event registry with synchronous dispatch, plus a small
// set of id/selector-addressed mutation and query helpers. Mutations
// are recorded in a Mutation log shaped like the teacher's
// mutation.Op/Record — a closed string enum and a flat JSON-tagged
// struct — so a sequence of bridge calls serializes deterministically
// the same way a domwatch mutation.Batch does.
package bridge

import (
	"github.com/marrowdock/vellum/cssom"
	"github.com/marrowdock/vellum/htmldom"
)

// EventType is the closed set of event kinds dispatch understands.
type EventType string

const (
	Click  EventType = "Click"
	Input  EventType = "Input"
	Change EventType = "Change"
)

// Event carries a target element id and its event type. Payload is an
// optional free-form value (e.g. the new value for Input/Change).
type Event struct {
	TargetID string
	Type     EventType
	Payload  string
}

// Handler is invoked synchronously with the dom and the dispatched
// event. A handler may mutate the dom but must not call Rerender on
// whatever pipeline owns it.
type Handler func(dom *htmldom.Node, event Event)

// DispatchResult is the outcome of Dispatch.
type DispatchResult struct {
	OK      bool
	Message string
}

type listenerKey struct {
	id  string
	typ EventType
}

// Registry holds handlers by value and never references DOM nodes
// beyond their id string.
type Registry struct {
	handlers map[listenerKey][]Handler
	Mutations []Mutation
}

// NewRegistry returns an empty event registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[listenerKey][]Handler{}}
}

// AddListener appends handler for (elementID, eventType) in
// registration order.
func (r *Registry) AddListener(elementID string, eventType EventType, handler Handler) {
	key := listenerKey{id: elementID, typ: eventType}
	r.handlers[key] = append(r.handlers[key], handler)
}

// Dispatch finds every handler registered for (event.TargetID,
// event.Type) and invokes each in registration order. If none matched,
// Message is "No handler for event".
func (r *Registry) Dispatch(dom *htmldom.Node, event Event) DispatchResult {
	key := listenerKey{id: event.TargetID, typ: event.Type}
	handlers := r.handlers[key]
	if len(handlers) == 0 {
		return DispatchResult{OK: true, Message: "No handler for event"}
	}
	for _, h := range handlers {
		h(dom, event)
	}
	return DispatchResult{OK: true, Message: ""}
}

// QueryByID returns the first element with the given id, or nil.
func QueryByID(root *htmldom.Node, id string) *htmldom.Node {
	return htmldom.FindByID(root, id)
}

// QuerySelector returns the first element matching selector in
// document order, or nil.
func QuerySelector(root *htmldom.Node, selector string) *htmldom.Node {
	parsed := parseSelectorList(selector)
	var found *htmldom.Node
	htmldom.Walk(root, func(n *htmldom.Node) {
		if found != nil || n.Type != htmldom.ElementNode {
			return
		}
		if cssom.MatchesAny(parsed, n) {
			found = n
		}
	})
	return found
}

// QuerySelectorAll returns every element matching selector, in
// document order.
func QuerySelectorAll(root *htmldom.Node, selector string) []*htmldom.Node {
	parsed := parseSelectorList(selector)
	var found []*htmldom.Node
	htmldom.Walk(root, func(n *htmldom.Node) {
		if n.Type != htmldom.ElementNode {
			return
		}
		if cssom.MatchesAny(parsed, n) {
			found = append(found, n)
		}
	})
	return found
}

func parseSelectorList(selector string) []cssom.Selector {
	sheet := cssom.Parse(selector + "{}")
	if len(sheet.Rules) == 0 {
		return nil
	}
	return sheet.Rules[0].Selectors
}
