package catalog

import (
	"slices"
	"sort"

	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/rules"
)

// Catalog is an ordered set of patterns.
type Catalog struct {
	Patterns []ir.Pattern
	// Source is where the catalog was read from.
	Source string
}

// New builds a catalog from patterns already in memory, such as rows read
// back from the store. Patterns are validated like any other source.
func New(patterns []ir.Pattern, source string) (*Catalog, error) {
	doc := document{Patterns: make([]patternRecord, len(patterns))}
	for i, p := range patterns {
		rec := patternRecord{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			TotalSteps:   p.TotalSteps,
			PreviewImage: p.PreviewImage,
			Setup:        make([]strandRecord, len(p.Setup)),
		}
		for j, s := range p.Setup {
			rec.Setup[j] = strandRecord{ID: s.ID, Color: s.Color, Position: s.Position}
		}
		doc.Patterns[i] = rec
	}
	if len(doc.Patterns) == 0 {
		return nil, &LoadError{Code: ErrCodeEmpty, Message: "catalog has no patterns", Source: source}
	}
	if err := validate.Struct(doc); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidPattern, Message: describeValidation(err), Source: source, Err: err}
	}
	return build(doc, source)
}

// Find returns the pattern with id.
func (c *Catalog) Find(id string) (ir.Pattern, bool) {
	i := slices.IndexFunc(c.Patterns, func(p ir.Pattern) bool { return p.ID == id })
	if i < 0 {
		return ir.Pattern{}, false
	}
	p := c.Patterns[i]
	p.Setup = slices.Clone(p.Setup)
	return p, true
}

// Lookup is Find with an *rules.UnknownPatternError carrying a suggestion.
func (c *Catalog) Lookup(id string) (ir.Pattern, error) {
	if p, ok := c.Find(id); ok {
		return p, nil
	}
	return ir.Pattern{}, &rules.UnknownPatternError{ID: id, Suggestion: rules.Suggest(id, c.IDs())}
}

// IDs returns the pattern ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Patterns))
	for i, p := range c.Patterns {
		ids[i] = p.ID
	}
	sort.Strings(ids)
	return ids
}

// Unsupported returns the ids with no rule in reg. Such patterns can be
// listed but not played.
func (c *Catalog) Unsupported(reg *rules.Registry) []string {
	var out []string
	for _, p := range c.Patterns {
		if !reg.Has(p.ID) {
			out = append(out, p.ID)
		}
	}
	return out
}
