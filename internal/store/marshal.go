package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/kumihimo/internal/ir"
)

// marshalMoves converts a move log to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so the stored text hashes like the digest input.
func marshalMoves(log ir.MoveLog) (string, error) {
	data, err := ir.MarshalCanonical(log)
	if err != nil {
		return "", fmt.Errorf("marshal moves: %w", err)
	}
	return string(data), nil
}

// marshalStrands converts a setup or final layout to canonical JSON TEXT.
func marshalStrands(strands []ir.Strand) (string, error) {
	data, err := ir.MarshalCanonical(strands)
	if err != nil {
		return "", fmt.Errorf("marshal strands: %w", err)
	}
	return string(data), nil
}

// unmarshalMoves parses stored move TEXT. Unknown fields are rejected.
func unmarshalMoves(data string) (ir.MoveLog, error) {
	if data == "" || data == "[]" {
		return ir.MoveLog{}, nil
	}
	var log ir.MoveLog
	if err := decodeStrict(data, &log); err != nil {
		return nil, fmt.Errorf("unmarshal moves: %w", err)
	}
	return log, nil
}

// unmarshalStrands parses stored strand TEXT. Unknown fields are rejected.
func unmarshalStrands(data string) ([]ir.Strand, error) {
	if data == "" || data == "[]" {
		return []ir.Strand{}, nil
	}
	var strands []ir.Strand
	if err := decodeStrict(data, &strands); err != nil {
		return nil, fmt.Errorf("unmarshal strands: %w", err)
	}
	return strands, nil
}

func decodeStrict(data string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
