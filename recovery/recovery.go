// Package recovery maps a failed (module, stage) pair onto an ordered
// set of recovery actions a caller can offer the user. It is pure and
// synchronous — no goroutine loops or backoff sleeping here, and no
// other package retries either (fetchio makes one request per call); recovery only
// decides *what actions are available*, shaped after the teacher's
// connectivity.WithRetry/breaker doubling-backoff idiom but stripped
// down to a deterministic lookup table.
package recovery

import (
	"strings"

	"github.com/marrowdock/vellum/diagnostic"
	"github.com/marrowdock/vellum/failuretrace"
)

// Action is one of the four closed recovery actions. Kept as a closed
// sum type rather than a strategy interface: the description string is
// data carried by the plan, not behavior to invoke.
type Action int

const (
	Retry Action = iota
	Replay
	Skip
	Cancel
)

// String renders the action name that is part of the public contract
// (spec §6: "Retry", "Replay", "Cancel", "Skip").
func (a Action) String() string {
	switch a {
	case Retry:
		return "Retry"
	case Replay:
		return "Replay"
	case Skip:
		return "Skip"
	case Cancel:
		return "Cancel"
	default:
		return "Unknown"
	}
}

func describe(a Action) string {
	switch a {
	case Retry:
		return "retry the failed operation"
	case Replay:
		return "replay from the last known-good input"
	case Skip:
		return "skip this step and continue the pipeline"
	case Cancel:
		return "cancel and surface the failure to the user"
	default:
		return ""
	}
}

// Step is one entry in a RecoveryPlan.
type Step struct {
	Action      Action
	Description string
}

// Plan is an ordered recovery recommendation for one failure. It always
// ends with a Cancel step.
type Plan struct {
	CorrelationID uint64
	FailureModule diagnostic.Module
	FailureStage  diagnostic.Stage
	ErrorMessage  string
	Steps         []Step
}

func stepsFor(action ...Action) []Step {
	steps := make([]Step, len(action))
	for i, a := range action {
		steps[i] = Step{Action: a, Description: describe(a)}
	}
	return steps
}

func classOf(module diagnostic.Module, stage diagnostic.Stage) []Action {
	m := strings.ToLower(string(module))
	s := strings.ToLower(string(stage))

	switch {
	case m == "network" || s == "fetch" || s == "connect":
		return []Action{Retry, Skip, Cancel}
	case m == "html" || m == "css" || s == "parse" || s == "parsing":
		return []Action{Replay, Cancel}
	case m == "rendering" || s == "paint" || s == "layout":
		return []Action{Replay, Cancel}
	default:
		return []Action{Retry, Cancel}
	}
}

// Planner is a pure recovery planner that additionally keeps an append
// log of every plan it has produced, for UIs that want the history.
type Planner struct {
	history []*Plan
}

// New creates an empty Planner.
func New() *Planner {
	return &Planner{}
}

// PlanFromStage builds a RecoveryPlan for a failure at (module, stage)
// with the given error message. The plan always ends with Cancel.
func (p *Planner) PlanFromStage(module diagnostic.Module, stage diagnostic.Stage, errorMessage string) *Plan {
	plan := &Plan{
		FailureModule: module,
		FailureStage:  stage,
		ErrorMessage:  errorMessage,
		Steps:         stepsFor(classOf(module, stage)...),
	}
	p.history = append(p.history, plan)
	return plan
}

// PlanFromTrace copies correlation_id, module, and stage from a
// FailureTrace and delegates to PlanFromStage.
func (p *Planner) PlanFromTrace(trace *failuretrace.Trace) *Plan {
	plan := p.PlanFromStage(trace.Module, trace.Stage, trace.ErrorMessage)
	plan.CorrelationID = trace.CorrelationID
	return plan
}

// History returns every plan produced so far, in production order.
func (p *Planner) History() []*Plan {
	out := make([]*Plan, len(p.history))
	copy(out, p.history)
	return out
}

// Format renders a human-readable recovery block.
func (plan *Plan) Format() string {
	var b strings.Builder
	b.WriteString("Recovery Plan\n")
	b.WriteString("module: " + string(plan.FailureModule) + "\n")
	b.WriteString("stage: " + string(plan.FailureStage) + "\n")
	b.WriteString("error: " + plan.ErrorMessage + "\n")
	for _, step := range plan.Steps {
		b.WriteString("- " + step.Action.String() + ": " + step.Description + "\n")
	}
	return b.String()
}
