// Package catalog loads pattern definitions.
//
// A catalog is a list of immutable ir.Pattern records. It can come from a
// JSON file (either a bare array of patterns or {"patterns": [...]}), a YAML
// file, a CUE file, an http(s) URL, or the default catalog embedded in the
// binary. Every source goes through the same pipeline:
//
//  1. decode into a CUE value
//  2. unify with the embedded #Catalog schema and require concreteness
//  3. decode into Go records and run struct validation
//  4. NFC-normalise text, check layouts, reject duplicate ids
//
// Any failure is a *LoadError. Loading is never retried.
package catalog
