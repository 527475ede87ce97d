// Package compiler loads completeness statement templates from CUE and
// YAML files.
//
// A template file declares one or more named templates:
//
//	template: "songs-by-artist": {
//		description: "Songs recorded by a band"
//		pattern: [
//			["?x", "rdf:type", "dbo:Song"],
//			{s: "?x", p: "dbo:artist", o: "dbr:___TEMPLATE___"},
//		]
//	}
//
// Triples are either {s, p, o} structs or three-element lists of terms in
// the notation accepted by ParseTerm. IRIs containing the sentinel are
// promoted to ir.Placeholder terms.
package compiler

import (
	"fmt"
	"maps"

	"github.com/roach88/csgen/internal/completeness"
	"github.com/roach88/csgen/internal/ir"
)

// Template is a compiled statement template.
type Template struct {
	Name        string
	Description string
	Prefixes    map[string]string
	Pattern     ir.Pattern
	Condition   ir.Pattern

	// Source is the file the template was compiled from, or "builtin".
	Source string
}

// Statement returns the template as a completeness statement.
func (t *Template) Statement() completeness.Statement {
	return completeness.New(t.Pattern, t.Condition)
}

// Hash returns the content hash of the template.
func (t *Template) Hash() (string, error) {
	return ir.TemplateHash(t.Name, t.Pattern, t.Condition)
}

// rawTemplate is the source shape shared by CUE and YAML.
type rawTemplate struct {
	name        string
	description string
	prefixes    map[string]string
	pattern     []rawTriple
	condition   []rawTriple
}

// rawTriple holds the three term texts of one triple and where it came from.
type rawTriple struct {
	terms [3]string
	at    func(field, msg string) *CompileError
}

// Loader compiles template sources.
type Loader struct {
	// Sentinel marks template holes inside IRIs. Empty uses ir.DefaultSentinel.
	Sentinel string
}

// NewLoader creates a Loader for sentinel.
func NewLoader(sentinel string) *Loader {
	return &Loader{Sentinel: sentinel}
}

func (l *Loader) sentinel() string {
	if l == nil || l.Sentinel == "" {
		return ir.DefaultSentinel
	}
	return l.Sentinel
}

// build turns a raw template into a Template.
func (l *Loader) build(raw rawTemplate, source string) (*Template, error) {
	t := &Template{
		Name:        raw.name,
		Description: raw.description,
		Prefixes:    maps.Clone(raw.prefixes),
		Source:      source,
	}
	if t.Prefixes == nil {
		t.Prefixes = map[string]string{}
	}

	if len(raw.pattern) == 0 {
		return nil, &CompileError{Template: raw.name, Field: "pattern", Message: "at least one triple is required", File: source}
	}

	var err error
	if t.Pattern, err = l.buildPattern(raw.pattern, t.Prefixes, "pattern"); err != nil {
		return nil, err
	}
	if t.Condition, err = l.buildPattern(raw.condition, t.Prefixes, "condition"); err != nil {
		return nil, err
	}
	return t, nil
}

func (l *Loader) buildPattern(raw []rawTriple, prefixes map[string]string, field string) (ir.Pattern, error) {
	p := make(ir.Pattern, 0, len(raw))
	for i, rt := range raw {
		var terms [3]ir.Term
		for j, text := range rt.terms {
			term, err := ParseTerm(text, prefixes, j == 1)
			if err != nil {
				return nil, rt.at(fieldPath(field, i, j), err.Error())
			}
			terms[j] = term
		}
		p = append(p, ir.NewTriple(terms[0], terms[1], terms[2]))
	}
	return ir.PromoteSentinels(p, l.sentinel()), nil
}

var positionNames = [3]string{"s", "p", "o"}

func fieldPath(field string, triple, position int) string {
	return fmt.Sprintf("%s[%d].%s", field, triple, positionNames[position])
}
