// Package engine is the browser engine facade: Navigate drives a
// document through the Idle → Fetching → Parsing → Styling → Layout →
// Rendering → Complete/Failed lifecycle, emitting an Info diagnostic
// on every transition. It is modeled on the teacher's
// domwatch/internal/browser.Manager: an explicit state enum, a single
// transition function, and a diagnostic/log line on every state
// change — except transitions here run on the caller's thread with no
// mutex, since the core is single-threaded by contract. transitionTo
// does not check the order of stages; Navigate only calls it forward.
package engine

import (
	"context"

	"github.com/marrowdock/vellum/bridge"
	"github.com/marrowdock/vellum/cssom"
	"github.com/marrowdock/vellum/diagnostic"
	"github.com/marrowdock/vellum/failuretrace"
	"github.com/marrowdock/vellum/fetchio"
	"github.com/marrowdock/vellum/htmldom"
	"github.com/marrowdock/vellum/idgen"
	"github.com/marrowdock/vellum/recovery"
	"github.com/marrowdock/vellum/renderpipeline"
	"github.com/marrowdock/vellum/rescache"
	"github.com/marrowdock/vellum/requestpolicy"
	"github.com/marrowdock/vellum/urlkit"
)

// Stage is the closed set of lifecycle states named in spec.md §3.
type Stage string

const (
	Idle      Stage = "idle"
	Fetching  Stage = "fetching"
	Parsing   Stage = "parsing"
	Styling   Stage = "styling"
	Layout    Stage = "layout"
	Rendering Stage = "rendering"
	Complete  Stage = "complete"
	Failed    Stage = "failed"
)

// NavigateOptions configures one navigation. Zero value is usable;
// defaults fills in sane values the way domwatch's Config.defaults
// does.
type NavigateOptions struct {
	ViewportW   int
	ViewportH   int
	Policy      requestpolicy.Policy
	CachePolicy rescache.Mode
	MinSeverity diagnostic.Severity
}

func (o *NavigateOptions) defaults() {
	if o.ViewportW <= 0 {
		o.ViewportW = 1024
	}
	if o.ViewportH <= 0 {
		o.ViewportH = 768
	}
}

// Session is the per-navigation state exposed to the caller.
type Session struct {
	ID          string
	Stage       Stage
	Diagnostics *diagnostic.Emitter
	Pipeline    *renderpipeline.Pipeline
	Bridge      *bridge.Registry
	Failures    *failuretrace.Collector
}

func (s *Session) transitionTo(stage Stage) {
	s.Stage = stage
	s.Diagnostics.Emit(diagnostic.Info, "engine", diagnostic.Stage(stage), "Stage transition: "+string(stage))
}

// fail captures a failuretrace.Trace for the current (module, stage),
// builds a recovery.Plan from it, transitions to Failed, and returns
// the NavigateResult the caller sees.
func (s *Session) fail(planner *recovery.Planner, module diagnostic.Module, stage diagnostic.Stage, errorMessage string, snapshots ...failuretrace.Snapshot) NavigateResult {
	trace := s.Failures.Capture(s.Diagnostics, module, stage, errorMessage)
	for _, snap := range snapshots {
		trace.AddSnapshot(snap.Key, snap.Value)
	}
	plan := planner.PlanFromTrace(trace)
	s.transitionTo(Failed)
	return NavigateResult{OK: false, Message: errorMessage, Session: s, Recovery: plan}
}

// NavigateResult is the outcome of Navigate. Recovery is populated only
// when OK is false — it names the ordered recovery actions available
// for the failure that occurred.
type NavigateResult struct {
	OK       bool
	Message  string
	Session  *Session
	Recovery *recovery.Plan
}

// Engine owns the cross-navigation cache and the fetch collaborator.
type Engine struct {
	cache   *rescache.Cache
	fetcher fetchio.Fetcher
	idGen   idgen.Generator
	planner *recovery.Planner
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator overrides the default session-ID generator.
func WithIDGenerator(g idgen.Generator) Option {
	return func(e *Engine) { e.idGen = g }
}

// New creates an Engine backed by fetcher, starting with an empty
// CacheAll response cache.
func New(fetcher fetchio.Fetcher, opts ...Option) *Engine {
	e := &Engine{
		cache:   rescache.New(rescache.CacheAll),
		fetcher: fetcher,
		idGen:   idgen.Prefixed("sess_", idgen.UUIDv7()),
		planner: recovery.New(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Navigate drives one document through the full lifecycle.
func (e *Engine) Navigate(ctx context.Context, url string, opts NavigateOptions) NavigateResult {
	opts.defaults()
	e.cache.SetPolicy(opts.CachePolicy)

	session := &Session{
		ID:          e.idGen(),
		Diagnostics: diagnostic.New(diagnostic.WithMinSeverity(opts.MinSeverity)),
		Bridge:      bridge.NewRegistry(),
		Failures:    failuretrace.NewCollector(),
	}
	session.transitionTo(Idle)

	session.transitionTo(Fetching)
	check := requestpolicy.CheckRequestPolicy(url, opts.Policy)
	if !check.Allowed {
		return session.fail(e.planner, "requestpolicy", "check", check.Message, failuretrace.Snapshot{Key: "url", Value: url})
	}

	var resp requestpolicy.Response
	if !e.cache.Lookup(url, &resp) {
		resp = e.fetcher.Fetch(ctx, url)
		e.cache.Store(url, resp)
	}
	if resp.IsError() {
		session.Diagnostics.Emit(diagnostic.Error, "network", "fetch", "fetch failed: "+resp.Error)
		return session.fail(e.planner, "network", "fetch", "fetch failed: "+resp.Error, failuretrace.Snapshot{Key: "url", Value: url})
	}

	session.transitionTo(Parsing)
	doc := htmldom.Parse(string(resp.Body))
	for _, warning := range doc.Warnings {
		session.Diagnostics.Emit(diagnostic.Warning, "html", "parse", warning)
	}

	session.transitionTo(Styling)
	sheet := e.loadStylesheet(ctx, doc, url, opts.Policy)

	session.transitionTo(Layout)
	session.transitionTo(Rendering)
	session.Pipeline = renderpipeline.New(doc.Root, sheet, opts.ViewportW, opts.ViewportH)

	session.transitionTo(Complete)
	return NavigateResult{OK: true, Session: session}
}

// loadStylesheet resolves every <style>/<link rel=stylesheet> in doc
// against the fetch collaborator, routing each external request
// through the same request policy as the main navigation.
func (e *Engine) loadStylesheet(ctx context.Context, doc htmldom.Document, pageURL string, policy requestpolicy.Policy) cssom.Stylesheet {
	fetch := func(href string) (string, error) {
		resolved, err := urlkit.ResolveURL(pageURL, href)
		if err != nil {
			return "", err
		}
		check := requestpolicy.CheckRequestPolicy(resolved, policy)
		if !check.Allowed {
			return "", errBlocked(check.Message)
		}
		var resp requestpolicy.Response
		if !e.cache.Lookup(resolved, &resp) {
			resp = e.fetcher.Fetch(ctx, resolved)
			e.cache.Store(resolved, resp)
		}
		if resp.IsError() {
			return "", errBlocked(resp.Error)
		}
		return string(resp.Body), nil
	}
	result := cssom.LoadLinkedCSS(doc.Root, "", fetch)
	return result.Merged
}

type fetchError string

func (e fetchError) Error() string { return string(e) }

func errBlocked(msg string) error {
	if msg == "" {
		msg = "blocked"
	}
	return fetchError(msg)
}
