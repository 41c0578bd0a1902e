package engine

// State is the position of a session in its lifecycle.
type State int

const (
	// Idle means no pattern is loaded.
	Idle State = iota
	// Ready means a pattern is loaded and no move has been made.
	Ready
	// AwaitingSelection means the next source strand has not been picked.
	AwaitingSelection
	// AwaitingDestination means a source strand is selected.
	AwaitingDestination
	// Complete means the log holds TotalSteps moves.
	Complete
)

var stateNames = [...]string{
	Idle:                "idle",
	Ready:               "ready",
	AwaitingSelection:   "awaiting_selection",
	AwaitingDestination: "awaiting_destination",
	Complete:            "complete",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// ParseState maps a state name back to its value.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return Idle, false
}

// acceptsSelection reports whether a strand may be selected in this state.
func (s State) acceptsSelection() bool {
	return s == Ready || s == AwaitingSelection
}
