package rules

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// Pattern ids bound by DefaultRegistry.
const (
	KongoGumi8     = "kongo_gumi_8"
	KakuYatsuGumi8 = "kaku_yatsu_gumi_8"
)

// UnknownPatternError reports a pattern id with no registered rule.
type UnknownPatternError struct {
	ID string
	// Suggestion is the closest registered id, or empty.
	Suggestion string
}

func (e *UnknownPatternError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown pattern %q (did you mean %q?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("unknown pattern %q", e.ID)
}

// Registry maps pattern ids to rules.
//
// A Registry is populated once at startup and read afterwards; it is not
// safe for concurrent Register calls.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// DefaultRegistry returns a registry holding the built-in pattern families.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.mustRegister(KongoGumi8, TwoZone{})
	r.mustRegister(KakuYatsuGumi8, FourZone{})
	return r
}

// Register binds id to rule. Binding an id twice is an error.
func (r *Registry) Register(id string, rule Rule) error {
	if id == "" {
		return fmt.Errorf("register rule: empty pattern id")
	}
	if rule == nil {
		return fmt.Errorf("register rule %q: nil rule", id)
	}
	if _, exists := r.rules[id]; exists {
		return fmt.Errorf("register rule %q: already registered", id)
	}
	r.rules[id] = rule
	return nil
}

func (r *Registry) mustRegister(id string, rule Rule) {
	if err := r.Register(id, rule); err != nil {
		panic(err)
	}
}

// Lookup returns the rule for id or an *UnknownPatternError.
func (r *Registry) Lookup(id string) (Rule, error) {
	if rule, ok := r.rules[id]; ok {
		return rule, nil
	}
	return nil, &UnknownPatternError{ID: id, Suggestion: Suggest(id, r.IDs())}
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.rules[id]
	return ok
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Suggest returns the candidate closest to input by edit distance, or ""
// when nothing is close enough to be a plausible typo.
func Suggest(input string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(input, c)
		if dist > suggestLimit(len(c)) {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && c < best) {
			best, bestDist = c, dist
		}
	}
	return best
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
