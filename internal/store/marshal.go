package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/csgen/internal/ir"
)

// marshalPattern converts a pattern to canonical JSON TEXT for storage.
// Each triple is a three-element array of {"kind","value"} terms.
func marshalPattern(p ir.Pattern) (string, error) {
	if p == nil {
		p = ir.Pattern{}
	}
	data, err := ir.MarshalCanonical(p)
	if err != nil {
		return "", fmt.Errorf("marshal pattern: %w", err)
	}
	return string(data), nil
}

// unmarshalPattern parses canonical pattern JSON back into a pattern.
// The result is never nil.
func unmarshalPattern(text string) (ir.Pattern, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal pattern: %w", err)
	}

	p := make(ir.Pattern, 0, len(raw))
	for i, triple := range raw {
		if len(triple) != 3 {
			return nil, fmt.Errorf("unmarshal pattern: triple %d has %d terms", i, len(triple))
		}
		var terms [3]ir.Term
		for j, data := range triple {
			term, err := ir.UnmarshalTerm(data)
			if err != nil {
				return nil, fmt.Errorf("unmarshal pattern: triple %d: %w", i, err)
			}
			terms[j] = term
		}
		p = append(p, ir.NewTriple(terms[0], terms[1], terms[2]))
	}
	return p, nil
}
