package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/rules"
)

// Session is the braid state machine for one pattern at a time.
//
// Thread-safety model:
//   - every method is safe from any goroutine
//   - the lock is never held while the animator runs
//   - requests that arrive while a move is in flight are dropped
//
// INVARIANTS:
//   - len(history) == len(log)
//   - layout is only mutated by a validated commit or an undo
//   - the rule is consulted with (layout, len(log)) only
type Session struct {
	mu sync.Mutex

	registry *rules.Registry
	animator Animator
	logger   *slog.Logger
	ids      IDGenerator
	clock    *Clock

	id       string
	pattern  ir.Pattern
	rule     rules.Rule
	layout   ir.Layout
	log      ir.MoveLog
	history  []ir.Layout
	state    State
	selected string
	busy     bool
}

// Option configures a Session.
type Option func(*Session)

// WithRegistry sets the rule registry. Default: rules.DefaultRegistry().
func WithRegistry(r *rules.Registry) Option {
	return func(s *Session) {
		s.registry = r
	}
}

// WithAnimator sets the move animator. Default: InstantAnimator.
func WithAnimator(a Animator) Option {
	return func(s *Session) {
		s.animator = a
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithIDGenerator sets the session id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		s.ids = g
	}
}

// New creates an Idle session.
func New(opts ...Option) *Session {
	s := &Session{
		registry: rules.DefaultRegistry(),
		animator: InstantAnimator{},
		logger:   slog.Default(),
		ids:      UUIDv7Generator{},
		clock:    NewClock(),
		state:    Idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load resets the session onto pattern.
//
// Loading the pattern already in play is a restart. On error the session is
// left exactly as it was.
func (s *Session) Load(p ir.Pattern) error {
	rule, err := s.registry.Lookup(p.ID)
	if err != nil {
		s.logger.Warn("pattern rejected", "pattern", p.ID, "error", err)
		return NewUnknownPatternError(p.ID, err)
	}

	layout, err := ir.NewLayout(p.Setup)
	if err != nil {
		return NewInvalidSetupError(p.ID, err)
	}
	if p.TotalSteps <= 0 {
		return NewInvalidSetupError(p.ID, fmt.Errorf("totalSteps must be positive, got %d", p.TotalSteps))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}

	p.Setup = slices.Clone(p.Setup)
	s.id = s.ids.Generate()
	s.pattern = p
	s.rule = rule
	s.layout = layout
	s.log = ir.MoveLog{}
	s.history = nil
	s.selected = ""
	s.state = Ready
	s.clock.Next()

	s.logger.Info("pattern loaded",
		"session", s.id,
		"pattern", p.ID,
		"family", rule.Family(),
		"strands", layout.Len(),
		"total_steps", p.TotalSteps,
	)
	return nil
}

// SelectStrand selects the source strand for the next move.
//
// Accepted only in Ready or AwaitingSelection, while not busy, and only for
// the strand the rule prescribes. Returns false otherwise.
func (s *Session) SelectStrand(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy || !s.state.acceptsSelection() {
		s.dropped("select", "strand", id)
		return false
	}
	p, ok := s.expectedLocked()
	if !ok || p.Source.ID != id {
		s.dropped("select", "strand", id)
		return false
	}

	s.selected = id
	s.state = AwaitingDestination
	s.clock.Next()
	s.logger.Debug("strand selected", "session", s.id, "strand", id, "step", len(s.log))
	return true
}

// CancelSelection drops the current selection.
func (s *Session) CancelSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy || s.state != AwaitingDestination {
		s.dropped("cancel")
		return false
	}
	s.selected = ""
	s.state = AwaitingSelection
	s.clock.Next()
	return true
}

// ChooseDestination moves the selected strand to pos.
//
// Accepted only in AwaitingDestination, while not busy, and only for the
// prescribed destination; a mismatch returns (false, nil). The session is
// busy while the animator runs. If the animator fails nothing is committed,
// the selection is kept and the error is returned.
func (s *Session) ChooseDestination(ctx context.Context, pos int) (bool, error) {
	s.mu.Lock()
	if s.busy || s.state != AwaitingDestination {
		s.dropped("choose", "position", pos)
		s.mu.Unlock()
		return false, nil
	}
	p, ok := s.expectedLocked()
	if !ok || p.Source.ID != s.selected || p.Destination != pos {
		s.dropped("choose", "position", pos)
		s.mu.Unlock()
		return false, nil
	}
	move := p.Move()
	s.busy = true
	s.clock.Next()
	animator := s.animator
	s.mu.Unlock()

	err := animator.Animate(ctx, move)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.clock.Next()

	if err != nil {
		s.logger.Warn("move animation failed", "session", s.id, "move", move.String(), "error", err)
		return false, fmt.Errorf("animate move %s: %w", move, err)
	}

	next, err := s.layout.Apply(move)
	if err != nil {
		return false, fmt.Errorf("apply move %s: %w", move, err)
	}

	s.history = append(s.history, s.layout)
	s.log = append(s.log, move)
	s.layout = next
	s.selected = ""
	if len(s.log) >= s.pattern.TotalSteps {
		s.state = Complete
	} else {
		s.state = AwaitingSelection
	}

	s.logger.Info("move committed",
		"session", s.id,
		"step", len(s.log),
		"strand", move.StrandID,
		"from", move.From,
		"to", move.To,
	)
	if s.state == Complete {
		s.logger.Info("pattern complete", "session", s.id, "pattern", s.pattern.ID)
	}
	return true, nil
}

// Undo reverts the last committed move.
//
// Accepted whenever history is non-empty and no move is in flight.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy || len(s.history) == 0 {
		s.dropped("undo")
		return false
	}

	last := len(s.history) - 1
	s.layout = s.history[last]
	s.history = s.history[:last]
	s.log = s.log[:last]
	s.selected = ""
	s.state = AwaitingSelection
	s.clock.Next()

	s.logger.Info("move undone", "session", s.id, "step", len(s.log))
	return true
}

func (s *Session) dropped(op string, args ...any) {
	attrs := append([]any{"session", s.id, "op", op, "state", s.state.String(), "busy", s.busy}, args...)
	s.logger.Debug("request dropped", attrs...)
}

// expectedLocked returns the prescribed move. Caller holds s.mu.
func (s *Session) expectedLocked() (rules.Prescribed, bool) {
	if s.rule == nil || s.state == Idle || s.state == Complete {
		return rules.Prescribed{}, false
	}
	return s.rule.Next(s.layout, len(s.log))
}

// ID returns the id assigned by the last Load.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a move is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Revision returns a counter that increases on every state change.
func (s *Session) Revision() uint64 {
	return s.clock.Current()
}

// Pattern returns the loaded pattern.
func (s *Session) Pattern() ir.Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pattern
	p.Setup = slices.Clone(p.Setup)
	return p
}

// Layout returns the live layout. The result is an independent copy.
func (s *Session) Layout() ir.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Log returns a copy of the move log.
func (s *Session) Log() ir.MoveLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Clone()
}

// Step returns the number of committed moves.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.log)
}

// Selected returns the selected strand.
func (s *Session) Selected() (ir.Strand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return ir.Strand{}, false
	}
	return s.layout.Find(s.selected)
}

// Expected returns the move the rule prescribes now.
func (s *Session) Expected() (rules.Prescribed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expectedLocked()
}

// IsLegalSource reports whether SelectStrand(id) would be accepted now.
func (s *Session) IsLegalSource(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy || !s.state.acceptsSelection() {
		return false
	}
	p, ok := s.expectedLocked()
	return ok && p.Source.ID == id
}

// IsLegalDestination reports whether ChooseDestination(pos) would be
// accepted now.
func (s *Session) IsLegalDestination(pos int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy || s.state != AwaitingDestination {
		return false
	}
	p, ok := s.expectedLocked()
	return ok && p.Source.ID == s.selected && p.Destination == pos
}

// Progress returns (moves completed, total steps).
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{Done: len(s.log), Total: s.pattern.TotalSteps}
}

// Snapshot returns a consistent view of the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	expected, ok := s.expectedLocked()
	return Snapshot{
		SessionID:   s.id,
		PatternID:   s.pattern.ID,
		Revision:    s.clock.Current(),
		State:       s.state,
		Busy:        s.busy,
		Progress:    Progress{Done: len(s.log), Total: s.pattern.TotalSteps},
		Layout:      s.layout,
		Log:         s.log.Clone(),
		Selected:    s.selected,
		Expected:    expected,
		HasExpected: ok,
	}
}

// historyLen is exposed to tests for the history/log invariant.
func (s *Session) historyLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}
