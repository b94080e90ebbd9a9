package diagnostic

import "testing"

func TestEmitRespectsMinSeverity(t *testing.T) {
	e := New(WithMinSeverity(Warning))
	e.Emit(Info, "html", "parse", "ignored")
	e.Emit(Warning, "html", "parse", "kept")
	if len(e.Events()) != 1 {
		t.Fatalf("expected 1 event, got %d", len(e.Events()))
	}
	if e.Events()[0].Message != "kept" {
		t.Errorf("expected to keep the warning event")
	}
}

func TestObserversNotifiedInOrder(t *testing.T) {
	e := New()
	var order []string
	e.Observe(func(ev Event) { order = append(order, "first:"+ev.Message) })
	e.Observe(func(ev Event) { order = append(order, "second:"+ev.Message) })
	e.Emit(Info, "net", "fetch", "go")

	want := []string{"first:go", "second:go"}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Errorf("got %v, want %v", order, want)
	}
}

func TestSetCorrelationIDAffectsFutureOnly(t *testing.T) {
	e := New()
	e.Emit(Info, "net", "fetch", "before")
	e.SetCorrelationID(42)
	e.Emit(Info, "net", "fetch", "after")

	events := e.Events()
	if events[0].CorrelationID != 0 {
		t.Errorf("expected first event to keep cid 0, got %d", events[0].CorrelationID)
	}
	if events[1].CorrelationID != 42 {
		t.Errorf("expected second event to carry cid 42, got %d", events[1].CorrelationID)
	}
}

func TestTimestampsMonotonic(t *testing.T) {
	var fixed int64 = 100
	e := New(WithClock(func() int64 { return fixed }))
	for i := 0; i < 5; i++ {
		e.Emit(Info, "net", "fetch", "tick")
	}
	events := e.Events()
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp < events[i-1].Timestamp {
			t.Fatalf("timestamps not monotonic: %v", events)
		}
	}
}

func TestClearKeepsObservers(t *testing.T) {
	e := New()
	count := 0
	e.Observe(func(Event) { count++ })
	e.Emit(Info, "m", "s", "one")
	e.Clear()
	if len(e.Events()) != 0 {
		t.Errorf("expected Clear to empty the log")
	}
	e.Emit(Info, "m", "s", "two")
	if count != 2 {
		t.Errorf("expected observer to still fire after Clear, got %d calls", count)
	}
}

func TestFormat(t *testing.T) {
	ev := Event{Severity: Warning, Module: "html", Stage: "parse", Message: "oops"}
	if got := Format(ev); got != "[warning] html/parse: oops" {
		t.Errorf("Format = %q", got)
	}
	ev.CorrelationID = 7
	if got := Format(ev); got != "[warning] html/parse: oops cid:7" {
		t.Errorf("Format with cid = %q", got)
	}
}

func TestEventsByFilters(t *testing.T) {
	e := New()
	e.Emit(Info, "html", "parse", "a")
	e.Emit(Warning, "css", "parse", "b")
	e.Emit(Warning, "html", "layout", "c")

	if got := e.EventsBySeverity(Warning); len(got) != 2 {
		t.Errorf("EventsBySeverity(Warning) = %d events, want 2", len(got))
	}
	if got := e.EventsByModule("html"); len(got) != 2 {
		t.Errorf("EventsByModule(html) = %d events, want 2", len(got))
	}
}
