package engine

import (
	"fmt"

	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/rules"
)

// ReplayLog re-applies log from pattern.Setup.
//
// Every recorded move must equal the rule's prescription for the layout and
// step at which it was made. Replay is the same code path as live play
// minus the animator, so a log produced by a Session always replays to the
// layout that session ended with. Replaying the same log twice yields the
// same layout.
func ReplayLog(p ir.Pattern, registry *rules.Registry, log ir.MoveLog) (ir.Layout, error) {
	rule, err := registry.Lookup(p.ID)
	if err != nil {
		return ir.Layout{}, NewUnknownPatternError(p.ID, err)
	}
	layout, err := ir.NewLayout(p.Setup)
	if err != nil {
		return ir.Layout{}, NewInvalidSetupError(p.ID, err)
	}
	if p.TotalSteps > 0 && len(log) > p.TotalSteps {
		return layout, NewReplayMismatchError(p.ID, p.TotalSteps,
			fmt.Sprintf("log has %d moves, pattern allows %d", len(log), p.TotalSteps))
	}

	for step, recorded := range log {
		expected, ok := rule.Next(layout, step)
		if !ok {
			return layout, NewReplayMismatchError(p.ID, step, "rule prescribes no move")
		}
		if expected.Move() != recorded {
			return layout, NewReplayMismatchError(p.ID, step,
				fmt.Sprintf("recorded %s, rule prescribes %s", recorded, expected.Move()))
		}
		layout, err = layout.Apply(recorded)
		if err != nil {
			return layout, NewReplayMismatchError(p.ID, step, err.Error())
		}
	}
	return layout, nil
}
