package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/preview"
	"github.com/roach88/kumihimo/internal/rules"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			mark := "ok"
			if !event.Accepted {
				mark = "dropped"
			}
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s (%s, step %d)\n",
				event.Seq, event.Op, event.Arg, mark, event.State, event.Step)
		}
	}

	return buf.String()
}

// AssertionContext provides the final session for evaluating assertions.
type AssertionContext struct {
	Session  *engine.Session
	Pattern  ir.Pattern
	Registry *rules.Registry
}

// assertLogLength checks the number of committed moves.
func assertLogLength(trace []TraceEvent, s *engine.Session, assertion Assertion) error {
	if got := s.Step(); got != *assertion.Count {
		return &AssertionError{
			Type:     AssertLogLength,
			Expected: fmt.Sprintf("%d moves", *assertion.Count),
			Actual:   fmt.Sprintf("%d moves", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertStrandAt checks where a strand sits in the live layout.
func assertStrandAt(trace []TraceEvent, s *engine.Session, assertion Assertion) error {
	strand, ok := s.Layout().Find(assertion.Strand)
	if !ok {
		return &AssertionError{
			Type:     AssertStrandAt,
			Expected: fmt.Sprintf("strand %s at %d", assertion.Strand, *assertion.Position),
			Actual:   "strand not on the ring",
			Trace:    trace,
		}
	}
	if strand.Position != *assertion.Position {
		return &AssertionError{
			Type:     AssertStrandAt,
			Expected: fmt.Sprintf("strand %s at %d", assertion.Strand, *assertion.Position),
			Actual:   fmt.Sprintf("strand %s at %d", assertion.Strand, strand.Position),
			Trace:    trace,
		}
	}
	return nil
}

// assertState checks the lifecycle state.
func assertState(trace []TraceEvent, s *engine.Session, assertion Assertion) error {
	if got := s.State().String(); got != assertion.State {
		return &AssertionError{
			Type:     AssertState,
			Expected: assertion.State,
			Actual:   got,
			Trace:    trace,
		}
	}
	return nil
}

// assertPreviewConsistent checks that both preview models replay the log
// without skips and that the log is reachable under the rule engine.
func assertPreviewConsistent(trace []TraceEvent, actx *AssertionContext) error {
	log := actx.Session.Log()

	if skips := preview.Loose(actx.Pattern, log).Skips(); len(skips) > 0 {
		return &AssertionError{
			Type:     AssertPreviewConsistent,
			Expected: "loose preview with no skipped steps",
			Actual:   fmt.Sprintf("skipped steps %v", skips),
			Trace:    trace,
		}
	}
	if skips := preview.Tight(actx.Pattern, log).Skips(); len(skips) > 0 {
		return &AssertionError{
			Type:     AssertPreviewConsistent,
			Expected: "tight preview with no skipped rows",
			Actual:   fmt.Sprintf("skipped rows %v", skips),
			Trace:    trace,
		}
	}

	replayed, err := engine.ReplayLog(actx.Pattern, actx.Registry, log)
	if err != nil {
		return &AssertionError{
			Type:     AssertPreviewConsistent,
			Expected: "log replays through the rule engine",
			Actual:   err.Error(),
			Trace:    trace,
		}
	}
	if replayed != actx.Session.Layout() {
		return &AssertionError{
			Type:     AssertPreviewConsistent,
			Expected: "replayed layout equals live layout",
			Actual:   "layouts differ",
			Trace:    trace,
		}
	}
	return nil
}

// assertLayoutEqualsSetup checks that every strand is on its setup slot.
func assertLayoutEqualsSetup(trace []TraceEvent, actx *AssertionContext) error {
	setup, err := ir.NewLayout(actx.Pattern.Setup)
	if err != nil {
		return fmt.Errorf("%s: %w", AssertLayoutEqualsSetup, err)
	}
	want, err := ir.LayoutDigest(setup)
	if err != nil {
		return fmt.Errorf("%s: %w", AssertLayoutEqualsSetup, err)
	}
	got, err := ir.LayoutDigest(actx.Session.Layout())
	if err != nil {
		return fmt.Errorf("%s: %w", AssertLayoutEqualsSetup, err)
	}
	if got != want {
		var moved []string
		for _, s := range actx.Pattern.Setup {
			if cur, ok := actx.Session.Layout().Find(s.ID); ok && cur.Position != s.Position {
				moved = append(moved, fmt.Sprintf("%s %d->%d", s.ID, s.Position, cur.Position))
			}
		}
		return &AssertionError{
			Type:     AssertLayoutEqualsSetup,
			Expected: "layout equal to setup",
			Actual:   "moved: " + strings.Join(moved, ", "),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if actx == nil || actx.Session == nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %s requires a session", i, assertion.Type))
			continue
		}

		switch assertion.Type {
		case AssertLogLength:
			err = assertLogLength(result.Trace, actx.Session, assertion)
		case AssertStrandAt:
			err = assertStrandAt(result.Trace, actx.Session, assertion)
		case AssertState:
			err = assertState(result.Trace, actx.Session, assertion)
		case AssertPreviewConsistent:
			err = assertPreviewConsistent(result.Trace, actx)
		case AssertLayoutEqualsSetup:
			err = assertLayoutEqualsSetup(result.Trace, actx)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
