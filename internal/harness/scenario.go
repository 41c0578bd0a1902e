package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/kumihimo/internal/engine"
)

// Scenario is a scripted play session.
//
// Each step issues one request to the braid state machine exactly as the
// terminal player would; the harness records whether it was accepted and
// then evaluates the assertions against the final session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Pattern is the id of the pattern to load.
	Pattern string `yaml:"pattern"`

	// Catalog is an optional catalog file, relative to the scenario file.
	// If empty, the embedded default catalog is used.
	Catalog string `yaml:"catalog,omitempty"`

	// Steps are the requests to issue in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final session.
	Assertions []Assertion `yaml:"assertions"`

	// SessionID is an optional fixed session id for deterministic traces.
	// If empty, defaults to "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`
}

// Step is one request. Exactly one action field must be set.
type Step struct {
	// Select picks a source strand by id.
	Select string `yaml:"select,omitempty"`

	// Choose picks a destination slot for the selected strand.
	Choose *int `yaml:"choose,omitempty"`

	// Cancel drops the current selection.
	Cancel bool `yaml:"cancel,omitempty"`

	// Undo reverts the last committed move.
	Undo bool `yaml:"undo,omitempty"`

	// Restart reloads the pattern.
	Restart bool `yaml:"restart,omitempty"`

	// Auto applies up to N prescribed moves.
	Auto int `yaml:"auto,omitempty"`

	// Expect is "accepted" or "rejected". If empty, the outcome is only
	// recorded in the trace.
	Expect string `yaml:"expect,omitempty"`
}

// Step operation names, as they appear in traces.
const (
	OpSelect  = "select"
	OpChoose  = "choose"
	OpCancel  = "cancel"
	OpUndo    = "undo"
	OpRestart = "restart"
	OpAuto    = "auto"
)

// Expect values.
const (
	ExpectAccepted = "accepted"
	ExpectRejected = "rejected"
)

// Op returns the operation name of the step, or "" if none or several are set.
func (s Step) Op() string {
	var ops []string
	if s.Select != "" {
		ops = append(ops, OpSelect)
	}
	if s.Choose != nil {
		ops = append(ops, OpChoose)
	}
	if s.Cancel {
		ops = append(ops, OpCancel)
	}
	if s.Undo {
		ops = append(ops, OpUndo)
	}
	if s.Restart {
		ops = append(ops, OpRestart)
	}
	if s.Auto != 0 {
		ops = append(ops, OpAuto)
	}
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// Assertion validates the final session.
type Assertion struct {
	// Type specifies the assertion type:
	// - "log_length": the move log holds Count moves
	// - "strand_at": strand Strand sits at slot Position
	// - "state": the session is in State
	// - "preview_consistent": both previews replay the log with no skips and
	//   the log replays through the rule engine to the live layout
	// - "layout_equals_setup": every strand is back on its setup slot
	Type string `yaml:"type"`

	// Count is the expected log length (used by log_length).
	Count *int `yaml:"count,omitempty"`

	// Strand is the strand id (used by strand_at).
	Strand string `yaml:"strand,omitempty"`

	// Position is the expected slot (used by strand_at).
	Position *int `yaml:"position,omitempty"`

	// State is the expected state name (used by state).
	State string `yaml:"state,omitempty"`
}

// Assertion type constants.
const (
	AssertLogLength         = "log_length"
	AssertStrandAt          = "strand_at"
	AssertState             = "state"
	AssertPreviewConsistent = "preview_consistent"
	AssertLayoutEqualsSetup = "layout_equals_setup"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative catalog path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	if scenario.Catalog != "" {
		if _, err := os.Stat(scenario.Catalog); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: catalog file not found: %s", scenario.Catalog)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Catalog paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Pattern == "" {
		return fmt.Errorf("pattern is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op() == "" {
			return fmt.Errorf("steps[%d]: exactly one of select, choose, cancel, undo, restart, auto is required", i)
		}
		if step.Auto < 0 {
			return fmt.Errorf("steps[%d]: auto must be positive", i)
		}
		if step.Expect != "" && step.Expect != ExpectAccepted && step.Expect != ExpectRejected {
			return fmt.Errorf("steps[%d]: expect must be %q or %q, got %q", i, ExpectAccepted, ExpectRejected, step.Expect)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLogLength:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for log_length", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for log_length", index)
		}
	case AssertStrandAt:
		if a.Strand == "" {
			return fmt.Errorf("assertions[%d]: strand is required for strand_at", index)
		}
		if a.Position == nil {
			return fmt.Errorf("assertions[%d]: position is required for strand_at", index)
		}
	case AssertState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for state", index)
		}
		if _, ok := engine.ParseState(a.State); !ok {
			return fmt.Errorf("assertions[%d]: unknown state %q", index, a.State)
		}
	case AssertPreviewConsistent, AssertLayoutEqualsSetup:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
