package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/roach88/kumihimo/internal/catalog"
	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/logging"
	"github.com/roach88/kumihimo/internal/rules"
	"github.com/roach88/kumihimo/internal/testutil"
)

// Harness runs one scenario against a real session.
// The animator is instant and the session id fixed, so traces are
// byte-identical across runs.
type Harness struct {
	session  *engine.Session
	registry *rules.Registry
	pattern  ir.Pattern
	clock    *engine.Clock
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the catalog (scenario catalog or the embedded default)
//  2. Load the pattern into a fresh session
//  3. Issue every step, recording the outcome and checking expect clauses
//  4. Evaluate assertions against the final session
//
// Run returns an error only when the scenario cannot be executed at all,
// such as an unknown pattern; failed expectations land in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	cat, err := loadCatalog(ctx, scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	pattern, err := cat.Lookup(scenario.Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to find pattern: %w", err)
	}

	registry := rules.DefaultRegistry()
	logger := logging.Discard() // Suppress logs in tests
	session := engine.New(
		engine.WithRegistry(registry),
		engine.WithAnimator(engine.InstantAnimator{}),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.SessionID)),
		engine.WithLogger(logger),
	)
	if err := session.Load(pattern); err != nil {
		return nil, fmt.Errorf("failed to load pattern: %w", err)
	}

	h := &Harness{
		session:  session,
		registry: registry,
		pattern:  pattern,
		clock:    engine.NewClock(),
		logger:   logger,
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	result.SessionID = session.ID()
	for _, m := range session.Log() {
		result.Final = append(result.Final, m.String())
	}

	actx := &AssertionContext{
		Session:  session,
		Pattern:  pattern,
		Registry: registry,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func loadCatalog(ctx context.Context, path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.NewLoader().Load(ctx, path)
}

// executeSteps issues every step in order.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		before := h.session.Step()
		ev := TraceEvent{Seq: int64(h.clock.Next()), Op: step.Op()}

		accepted, err := h.execute(ctx, step, &ev)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i, ev.Op, err)
		}
		ev.Accepted = accepted
		ev.State = h.session.State().String()
		ev.Step = h.session.Step()

		if ev.Step > before {
			log := h.session.Log()
			for _, m := range log[before:] {
				ev.Moves = append(ev.Moves, m.String())
			}
		}
		result.AddTrace(ev)

		if step.Expect != "" {
			want := step.Expect == ExpectAccepted
			if accepted != want {
				result.AddError(fmt.Sprintf("step %d: %s %s: expected %s, got %s",
					i, ev.Op, ev.Arg, step.Expect, outcome(accepted)))
			}
		}

		h.logger.Info("scenario step completed",
			"step", i,
			"op", ev.Op,
			"arg", ev.Arg,
			"accepted", accepted,
			"state", ev.State,
		)
	}
	return nil
}

// execute issues one request. Rejections are outcomes, not errors; only
// failures the session cannot express as a rejection are returned.
func (h *Harness) execute(ctx context.Context, step Step, ev *TraceEvent) (bool, error) {
	switch ev.Op {
	case OpSelect:
		ev.Arg = step.Select
		return h.session.SelectStrand(step.Select), nil
	case OpChoose:
		ev.Arg = strconv.Itoa(*step.Choose)
		return h.session.ChooseDestination(ctx, *step.Choose)
	case OpCancel:
		return h.session.CancelSelection(), nil
	case OpUndo:
		return h.session.Undo(), nil
	case OpRestart:
		if err := h.session.Load(h.pattern); err != nil {
			return false, err
		}
		return true, nil
	case OpAuto:
		ev.Arg = strconv.Itoa(step.Auto)
		n, err := engine.Autoplay(ctx, h.session, step.Auto)
		if err != nil {
			var rerr *engine.RuntimeError
			if errors.As(err, &rerr) {
				return false, nil
			}
			return false, err
		}
		return n > 0, nil
	default:
		return false, fmt.Errorf("unknown step operation")
	}
}

func outcome(accepted bool) string {
	if accepted {
		return ExpectAccepted
	}
	return ExpectRejected
}
