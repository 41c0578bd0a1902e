package catalog

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// LoadErrorCode categorizes catalog load failures.
type LoadErrorCode string

const (
	// ErrCodeNotFound indicates the catalog file does not exist.
	ErrCodeNotFound LoadErrorCode = "NOT_FOUND"

	// ErrCodeReadFailed indicates an I/O or transport failure.
	ErrCodeReadFailed LoadErrorCode = "READ_FAILED"

	// ErrCodeHTTPStatus indicates a non-2xx response from a catalog URL.
	ErrCodeHTTPStatus LoadErrorCode = "HTTP_STATUS"

	// ErrCodeUnsupportedFormat indicates an unknown file extension.
	ErrCodeUnsupportedFormat LoadErrorCode = "UNSUPPORTED_FORMAT"

	// ErrCodeParseFailed indicates malformed JSON, YAML or CUE.
	ErrCodeParseFailed LoadErrorCode = "PARSE_FAILED"

	// ErrCodeSchema indicates a violation of the #Catalog schema.
	ErrCodeSchema LoadErrorCode = "SCHEMA_VIOLATION"

	// ErrCodeInvalidPattern indicates a pattern that fails field validation
	// or has an impossible initial layout.
	ErrCodeInvalidPattern LoadErrorCode = "INVALID_PATTERN"

	// ErrCodeDuplicatePattern indicates two patterns sharing an id.
	ErrCodeDuplicatePattern LoadErrorCode = "DUPLICATE_PATTERN"

	// ErrCodeEmpty indicates a catalog with no patterns.
	ErrCodeEmpty LoadErrorCode = "EMPTY"
)

// LoadError reports why a catalog could not be loaded.
type LoadError struct {
	Code    LoadErrorCode
	Message string
	// Source is the file path or URL being loaded.
	Source string
	// Pos is the CUE source position, when known.
	Pos token.Pos
	Err error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Source != "" {
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is a *LoadError with the given code.
// An empty code matches any LoadError.
func IsLoadError(err error, code LoadErrorCode) bool {
	var le *LoadError
	if !errors.As(err, &le) {
		return false
	}
	return code == "" || le.Code == code
}
