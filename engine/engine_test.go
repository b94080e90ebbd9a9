package engine

import (
	"context"
	"testing"

	"github.com/marrowdock/vellum/bridge"
	"github.com/marrowdock/vellum/htmldom"
	"github.com/marrowdock/vellum/recovery"
	"github.com/marrowdock/vellum/requestpolicy"
	"github.com/marrowdock/vellum/rescache"
)

type stubFetcher struct {
	responses map[string]requestpolicy.Response
	calls     int
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) requestpolicy.Response {
	s.calls++
	if resp, ok := s.responses[url]; ok {
		return resp
	}
	return requestpolicy.Response{Error: "not found: " + url}
}

func TestNavigateHappyPathReachesComplete(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]requestpolicy.Response{
		"http://example.com/": {StatusCode: 200, Body: []byte(`<div id="x">hi</div>`)},
	}}
	e := New(fetcher)
	result := e.Navigate(context.Background(), "http://example.com/", NavigateOptions{ViewportW: 400, ViewportH: 300})

	if !result.OK {
		t.Fatalf("expected OK navigation, got %+v", result)
	}
	if result.Session.Stage != Complete {
		t.Errorf("Stage = %v, want Complete", result.Session.Stage)
	}
	if result.Session.Pipeline == nil {
		t.Fatal("expected a populated pipeline")
	}
	if result.Session.Pipeline.RenderCount != 1 {
		t.Errorf("RenderCount = %d, want 1", result.Session.Pipeline.RenderCount)
	}
}

func TestNavigateEmitsStageTransitionsInOrder(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]requestpolicy.Response{
		"http://example.com/": {StatusCode: 200, Body: []byte(`<p>hi</p>`)},
	}}
	e := New(fetcher)
	result := e.Navigate(context.Background(), "http://example.com/", NavigateOptions{})

	var stages []string
	for _, ev := range result.Session.Diagnostics.Events() {
		stages = append(stages, string(ev.Stage))
		if ev.Message[:len("Stage transition:")] != "Stage transition:" {
			t.Errorf("message %q does not start with 'Stage transition:'", ev.Message)
		}
	}
	want := []string{"idle", "fetching", "parsing", "styling", "layout", "rendering", "complete"}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i, w := range want {
		if stages[i] != w {
			t.Errorf("stages[%d] = %q, want %q", i, stages[i], w)
		}
	}
}

func TestNavigateRejectsUnsupportedScheme(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]requestpolicy.Response{}}
	e := New(fetcher)
	result := e.Navigate(context.Background(), "ftp://example.com/x", NavigateOptions{})

	if result.OK {
		t.Fatal("expected navigation to fail for an unsupported scheme")
	}
	if result.Session.Stage != Failed {
		t.Errorf("Stage = %v, want Failed", result.Session.Stage)
	}
	if fetcher.calls != 0 {
		t.Error("fetch should never be attempted when the policy gate rejects the url")
	}
	if result.Recovery == nil || len(result.Recovery.Steps) == 0 {
		t.Fatal("expected a non-empty recovery plan")
	}
	if last := result.Recovery.Steps[len(result.Recovery.Steps)-1]; last.Action != recovery.Cancel {
		t.Errorf("last recovery step = %v, want Cancel", last.Action)
	}
	if result.Session.Failures.Size() != 1 {
		t.Errorf("Failures.Size() = %d, want 1", result.Session.Failures.Size())
	}
}

func TestNavigateFailsOnFetchError(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]requestpolicy.Response{}}
	e := New(fetcher)
	result := e.Navigate(context.Background(), "http://example.com/missing", NavigateOptions{})

	if result.OK || result.Session.Stage != Failed {
		t.Fatalf("expected Failed result, got %+v", result)
	}
	if result.Recovery == nil {
		t.Fatal("expected a recovery plan for a fetch failure")
	}
	var sawRetry bool
	for _, step := range result.Recovery.Steps {
		if step.Action == recovery.Retry {
			sawRetry = true
		}
	}
	if !sawRetry {
		t.Errorf("expected a Retry step among %+v for a network failure", result.Recovery.Steps)
	}
}

func TestNavigateReusesCacheOnSecondCall(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]requestpolicy.Response{
		"http://example.com/": {StatusCode: 200, Body: []byte(`<p>hi</p>`)},
	}}
	e := New(fetcher)
	e.Navigate(context.Background(), "http://example.com/", NavigateOptions{})
	e.Navigate(context.Background(), "http://example.com/", NavigateOptions{})

	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (second navigation should hit cache)", fetcher.calls)
	}
}

func TestNavigateNoCacheFetchesEveryTime(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]requestpolicy.Response{
		"http://example.com/": {StatusCode: 200, Body: []byte(`<p>hi</p>`)},
	}}
	e := New(fetcher)
	opts := NavigateOptions{}
	e.Navigate(context.Background(), "http://example.com/", opts)
	opts.CachePolicy = rescache.NoCache
	e.Navigate(context.Background(), "http://example.com/", opts)

	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 under NoCache", fetcher.calls)
	}
}

func TestSessionBridgeDispatchesAgainstPipelineDOM(t *testing.T) {
	fetcher := &stubFetcher{responses: map[string]requestpolicy.Response{
		"http://example.com/": {StatusCode: 200, Body: []byte(`<button id="go">Go</button>`)},
	}}
	e := New(fetcher)
	result := e.Navigate(context.Background(), "http://example.com/", NavigateOptions{})

	clicked := false
	result.Session.Bridge.AddListener("go", bridge.Click, func(dom *htmldom.Node, ev bridge.Event) {
		clicked = true
	})
	dispatch := result.Session.Bridge.Dispatch(result.Session.Pipeline.DOM, bridge.Event{TargetID: "go", Type: bridge.Click})
	if !dispatch.OK || !clicked {
		t.Errorf("expected dispatch to invoke the handler, got %+v clicked=%v", dispatch, clicked)
	}
}
