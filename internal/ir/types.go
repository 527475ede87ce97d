package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultSentinel is the substring that marks a template hole inside an
// IRI, e.g. http://dbpedia.org/resource/___TEMPLATE___.
const DefaultSentinel = "___TEMPLATE___"

// TriplePattern is an ordered (subject, predicate, object) triple of terms.
// The predicate is conventionally an IRI but this is not enforced.
type TriplePattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple creates a TriplePattern.
func NewTriple(s, p, o Term) TriplePattern {
	return TriplePattern{Subject: s, Predicate: p, Object: o}
}

// String renders the triple as "s p o" without a terminating dot.
// A nil term renders as nothing, which leaves the text unparseable.
func (t TriplePattern) String() string {
	return termString(t.Subject) + " " + termString(t.Predicate) + " " + termString(t.Object)
}

func termString(t Term) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// Terms returns subject, predicate and object in order.
func (t TriplePattern) Terms() [3]Term {
	return [3]Term{t.Subject, t.Predicate, t.Object}
}

type tripleJSON struct {
	Subject   json.RawMessage `json:"s"`
	Predicate json.RawMessage `json:"p"`
	Object    json.RawMessage `json:"o"`
}

// MarshalJSON implements json.Marshaler.
func (t TriplePattern) MarshalJSON() ([]byte, error) {
	var raw tripleJSON
	var err error
	if raw.Subject, err = MarshalTerm(t.Subject); err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	if raw.Predicate, err = MarshalTerm(t.Predicate); err != nil {
		return nil, fmt.Errorf("predicate: %w", err)
	}
	if raw.Object, err = MarshalTerm(t.Object); err != nil {
		return nil, fmt.Errorf("object: %w", err)
	}
	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TriplePattern) UnmarshalJSON(data []byte) error {
	var raw tripleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if t.Subject, err = UnmarshalTerm(raw.Subject); err != nil {
		return fmt.Errorf("subject: %w", err)
	}
	if t.Predicate, err = UnmarshalTerm(raw.Predicate); err != nil {
		return fmt.Errorf("predicate: %w", err)
	}
	if t.Object, err = UnmarshalTerm(raw.Object); err != nil {
		return fmt.Errorf("object: %w", err)
	}
	return nil
}

// Pattern is a basic graph pattern: an ordered sequence of triple patterns.
// Order is kept for deterministic serialization only; duplicates are kept.
type Pattern []TriplePattern

// NewPattern creates a Pattern from triples. The result never aliases the
// argument slice.
func NewPattern(triples ...TriplePattern) Pattern {
	p := make(Pattern, len(triples))
	copy(p, triples)
	return p
}

// Len returns the number of triples.
func (p Pattern) Len() int {
	return len(p)
}

// Clone returns a copy of p. A nil pattern clones to an empty pattern.
func (p Pattern) Clone() Pattern {
	out := make(Pattern, len(p))
	copy(out, p)
	return out
}

// Concat returns a new pattern holding p followed by other.
func (p Pattern) Concat(other Pattern) Pattern {
	out := make(Pattern, 0, len(p)+len(other))
	out = append(out, p...)
	return append(out, other...)
}

// String renders every triple followed by " . ".
func (p Pattern) String() string {
	var sb strings.Builder
	for _, t := range p {
		sb.WriteString(t.String())
		sb.WriteString(" . ")
	}
	return sb.String()
}

// Variables returns the distinct variable names in p, in first-seen order.
func (p Pattern) Variables() []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range p {
		for _, term := range t.Terms() {
			if v, ok := term.(Variable); ok && !seen[v.Name] {
				seen[v.Name] = true
				names = append(names, v.Name)
			}
		}
	}
	return names
}

// PromoteSentinels returns a copy of p in which every IRI whose value
// contains sentinel is replaced by a Placeholder carrying the IRI text.
// An empty sentinel returns an unchanged copy.
func PromoteSentinels(p Pattern, sentinel string) Pattern {
	out := p.Clone()
	if sentinel == "" {
		return out
	}
	promote := func(t Term) Term {
		if iri, ok := t.(IRI); ok && strings.Contains(iri.Value, sentinel) {
			return Placeholder{Marker: iri.Value}
		}
		return t
	}
	for i, t := range out {
		out[i] = TriplePattern{
			Subject:   promote(t.Subject),
			Predicate: promote(t.Predicate),
			Object:    promote(t.Object),
		}
	}
	return out
}
