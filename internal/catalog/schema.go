package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource []byte

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaVal  cue.Value
	schemaErr  error

	// schemaMu serializes use of schemaCtx; cue.Context is not safe for
	// concurrent use.
	schemaMu sync.Mutex
)

// schema returns the shared CUE context and the #Catalog definition.
// Callers hold schemaMu.
func schema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile catalog schema: %w", err)
			return
		}
		schemaVal = v.LookupPath(cue.ParsePath("#Catalog"))
		if err := schemaVal.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Catalog: %w", err)
		}
	})
	return schemaCtx, schemaVal, schemaErr
}

// Schema returns the CUE source of the catalog schema.
func Schema() string {
	return string(schemaSource)
}
