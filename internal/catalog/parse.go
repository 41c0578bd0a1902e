package catalog

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/kumihimo/internal/ir"
)

// Format is a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// DetectFormat picks a format from a file name or URL path.
func DetectFormat(name string) (Format, bool) {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	}
	return "", false
}

// document is the decoded shape of a catalog.
type document struct {
	Patterns []patternRecord `json:"patterns" validate:"required,min=1,dive"`
}

type patternRecord struct {
	ID           string         `json:"id" validate:"required,max=64"`
	Name         string         `json:"name" validate:"required,max=128"`
	Description  string         `json:"description" validate:"max=2048"`
	Setup        []strandRecord `json:"setup" validate:"required,min=1,max=16,dive"`
	TotalSteps   int            `json:"totalSteps" validate:"required,gt=0,lte=10000"`
	PreviewImage string         `json:"previewImage,omitempty" validate:"omitempty,max=512"`
}

type strandRecord struct {
	ID       string `json:"id" validate:"required,max=32"`
	Color    string `json:"color" validate:"required,strandcolor"`
	Position int    `json:"position" validate:"gte=0,lt=16"`
}

// Parse decodes, validates and normalises a catalog.
// source names the origin in error messages.
func Parse(data []byte, format Format, source string) (*Catalog, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, schemaVal, err := schema()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: err.Error(), Source: source, Err: err}
	}

	var v cue.Value
	switch format {
	case FormatJSON:
		expr, err := cuejson.Extract(source, data)
		if err != nil {
			return nil, parseError(source, err)
		}
		v = ctx.BuildExpr(expr)
	case FormatYAML:
		var raw any
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, parseError(source, err)
		}
		v = ctx.Encode(raw)
	case FormatCUE:
		v = ctx.CompileBytes(data, cue.Filename(source))
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupportedFormat,
			Message: fmt.Sprintf("unsupported catalog format %q", format),
			Source:  source,
		}
	}
	if err := v.Err(); err != nil {
		return nil, parseError(source, err)
	}

	// The original catalog shape is a bare array of patterns.
	if v.IncompleteKind() == cue.ListKind {
		v = ctx.CompileString("{}").FillPath(cue.ParsePath("patterns"), v)
	}

	unified := schemaVal.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaError(source, err)
	}

	var doc document
	if err := unified.Decode(&doc); err != nil {
		return nil, schemaError(source, err)
	}
	if len(doc.Patterns) == 0 {
		return nil, &LoadError{Code: ErrCodeEmpty, Message: "catalog has no patterns", Source: source}
	}
	if err := validate.Struct(doc); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidPattern, Message: describeValidation(err), Source: source, Err: err}
	}

	return build(doc, source)
}

func build(doc document, source string) (*Catalog, error) {
	c := &Catalog{Source: source, Patterns: make([]ir.Pattern, 0, len(doc.Patterns))}
	seen := make(map[string]bool, len(doc.Patterns))

	for _, rec := range doc.Patterns {
		p := ir.Pattern{
			ID:           norm.NFC.String(rec.ID),
			Name:         norm.NFC.String(strings.TrimSpace(rec.Name)),
			Description:  norm.NFC.String(strings.TrimSpace(rec.Description)),
			TotalSteps:   rec.TotalSteps,
			PreviewImage: rec.PreviewImage,
			Setup:        make([]ir.Strand, len(rec.Setup)),
		}
		for i, s := range rec.Setup {
			p.Setup[i] = ir.Strand{
				ID:       norm.NFC.String(s.ID),
				Color:    strings.ToLower(strings.TrimSpace(s.Color)),
				Position: s.Position,
			}
		}

		if seen[p.ID] {
			return nil, &LoadError{
				Code:    ErrCodeDuplicatePattern,
				Message: fmt.Sprintf("pattern id %q appears more than once", p.ID),
				Source:  source,
			}
		}
		seen[p.ID] = true

		if _, err := ir.NewLayout(p.Setup); err != nil {
			return nil, &LoadError{
				Code:    ErrCodeInvalidPattern,
				Message: fmt.Sprintf("pattern %q: %v", p.ID, err),
				Source:  source,
				Err:     err,
			}
		}
		c.Patterns = append(c.Patterns, p)
	}
	return c, nil
}

func parseError(source string, err error) *LoadError {
	le := &LoadError{Code: ErrCodeParseFailed, Message: err.Error(), Source: source, Err: err}
	attachPosition(le, err)
	return le
}

func schemaError(source string, err error) *LoadError {
	le := &LoadError{Code: ErrCodeSchema, Message: err.Error(), Source: source, Err: err}
	attachPosition(le, err)
	return le
}

// attachPosition copies the first CUE position found in err.
func attachPosition(le *LoadError, err error) {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return
	}
	le.Message = errs[0].Error()
	if positions := cueerrors.Positions(errs[0]); len(positions) > 0 {
		le.Pos = positions[0]
	}
}
