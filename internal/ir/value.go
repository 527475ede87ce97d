package ir

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
)

// Term is a sealed interface representing an RDF term in a triple pattern.
// Only Variable, IRI, Literal, and Placeholder implement this.
type Term interface {
	term() // Sealed - only these types implement it

	// Kind reports which variant of the union this term is.
	Kind() TermKind

	// String returns the SPARQL surface form of the term.
	String() string
}

// TermKind identifies a Term variant.
type TermKind string

const (
	KindVariable    TermKind = "variable"
	KindIRI         TermKind = "iri"
	KindLiteral     TermKind = "literal"
	KindPlaceholder TermKind = "placeholder"
)

// Variable is a SPARQL query variable. Name excludes the leading '?'.
type Variable struct {
	Name string
}

func (Variable) term() {}

// Kind implements Term.
func (Variable) Kind() TermKind { return KindVariable }

// String renders the variable as ?name.
func (v Variable) String() string { return "?" + v.Name }

// IRI is an absolute IRI reference. Value excludes the angle brackets.
type IRI struct {
	Value string
}

func (IRI) term() {}

// Kind implements Term.
func (IRI) Kind() TermKind { return KindIRI }

// String renders the IRI enclosed in angle brackets.
func (i IRI) String() string { return "<" + i.Value + ">" }

// Literal is an RDF literal. Lexical holds the complete, already-quoted
// surface form including any datatype or language suffix, e.g.
// `"Queen"`, `"1970"^^<http://www.w3.org/2001/XMLSchema#gYear>`, `"chat"@fr`.
//
// The lexical form is emitted verbatim. A malformed lexical form is only
// detected when the surrounding query text is parsed.
type Literal struct {
	Lexical string
}

func (Literal) term() {}

// Kind implements Term.
func (Literal) Kind() TermKind { return KindLiteral }

// String returns the lexical form unchanged.
func (l Literal) String() string { return l.Lexical }

// Placeholder marks the single hole of a completeness statement template.
// Marker is the sentinel IRI text the template was authored with; it is
// kept so that a printed template reads the same as its source.
type Placeholder struct {
	Marker string
}

func (Placeholder) term() {}

// Kind implements Term.
func (Placeholder) Kind() TermKind { return KindPlaceholder }

// String renders the placeholder like the sentinel IRI it replaced.
func (p Placeholder) String() string {
	marker := p.Marker
	if marker == "" {
		marker = DefaultSentinel
	}
	return "<" + marker + ">"
}

// NewVariable creates a Variable. A leading '?' or '$' is stripped.
func NewVariable(name string) Variable {
	if len(name) > 0 && (name[0] == '?' || name[0] == '$') {
		name = name[1:]
	}
	return Variable{Name: name}
}

// NewIRI creates an IRI term.
func NewIRI(value string) IRI {
	return IRI{Value: value}
}

// IsIRIRefForbidden reports whether ch may not appear between the angle
// brackets of an IRIREF.
func IsIRIRefForbidden(ch byte) bool {
	return ch <= 0x20 || strings.IndexByte("<>\"{}|^`\\", ch) >= 0
}

// CheckIRIRef returns an error when iri is empty or cannot be written as
// <iri> in SPARQL.
func CheckIRIRef(iri string) error {
	if iri == "" {
		return fmt.Errorf("IRI is empty")
	}
	for i := 0; i < len(iri); i++ {
		if IsIRIRefForbidden(iri[i]) {
			return fmt.Errorf("invalid character %q at offset %d in IRI %q", iri[i], i, iri)
		}
	}
	return nil
}

// NewLiteral creates a Literal from an already-quoted lexical form.
func NewLiteral(lexical string) Literal {
	return Literal{Lexical: lexical}
}

// NewStringLiteral creates a plain string literal, quoting and escaping s.
func NewStringLiteral(s string) Literal {
	return Literal{Lexical: quad.String(s).String()}
}

// NewTypedLiteral creates a literal with a datatype IRI.
func NewTypedLiteral(value, datatype string) Literal {
	ts := quad.TypedString{Value: quad.String(value), Type: quad.IRI(datatype)}
	return Literal{Lexical: ts.String()}
}

// NewLangLiteral creates a language-tagged string literal.
func NewLangLiteral(value, lang string) Literal {
	ls := quad.LangString{Value: quad.String(value), Lang: lang}
	return Literal{Lexical: ls.String()}
}

// NewPlaceholder creates a Placeholder with the given marker text.
func NewPlaceholder(marker string) Placeholder {
	return Placeholder{Marker: marker}
}

// IsPlaceholder reports whether t is a Placeholder.
func IsPlaceholder(t Term) bool {
	_, ok := t.(Placeholder)
	return ok
}

// Label returns the plain string form of a term: variables keep their
// '?', IRIs and placeholders drop the angle brackets, literals are
// returned as written.
func Label(t Term) string {
	switch v := t.(type) {
	case Variable:
		return v.String()
	case IRI:
		return v.Value
	case Literal:
		return v.Lexical
	case Placeholder:
		if v.Marker == "" {
			return DefaultSentinel
		}
		return v.Marker
	default:
		return ""
	}
}

// termJSON is the wire form of a Term.
type termJSON struct {
	Kind  TermKind `json:"kind"`
	Value string   `json:"value"`
}

// termValue returns the variant payload of a term.
func termValue(t Term) (string, error) {
	switch v := t.(type) {
	case Variable:
		return v.Name, nil
	case IRI:
		return v.Value, nil
	case Literal:
		return v.Lexical, nil
	case Placeholder:
		return v.Marker, nil
	default:
		return "", fmt.Errorf("unknown term type: %T", t)
	}
}

// MarshalTerm marshals a Term to JSON as {"kind": ..., "value": ...}.
func MarshalTerm(t Term) ([]byte, error) {
	value, err := termValue(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(termJSON{Kind: t.Kind(), Value: value})
}

// UnmarshalTerm decodes a Term produced by MarshalTerm.
func UnmarshalTerm(data []byte) (Term, error) {
	var raw termJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return TermFromKind(raw.Kind, raw.Value)
}

// TermFromKind builds a Term from its kind tag and payload.
func TermFromKind(kind TermKind, value string) (Term, error) {
	switch kind {
	case KindVariable:
		return Variable{Name: value}, nil
	case KindIRI:
		return IRI{Value: value}, nil
	case KindLiteral:
		return Literal{Lexical: value}, nil
	case KindPlaceholder:
		return Placeholder{Marker: value}, nil
	default:
		return nil, fmt.Errorf("unknown term kind %q", kind)
	}
}
