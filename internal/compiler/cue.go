package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// CompileCUE compiles every template under the top-level "template" field
// of a CUE source, in declaration order.
func (l *Loader) CompileCUE(filename string, src []byte) ([]*Template, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("", err)
	}

	templatesVal := v.LookupPath(cue.ParsePath("template"))
	if !templatesVal.Exists() {
		return nil, &CompileError{Field: "template", Message: "no templates declared", File: filename}
	}

	iter, err := templatesVal.Fields()
	if err != nil {
		return nil, formatCUEError("", err)
	}

	var templates []*Template
	for iter.Next() {
		t, err := l.CompileTemplate(iter.Value())
		if err != nil {
			return nil, err
		}
		t.Source = filename
		templates = append(templates, t)
	}
	if len(templates) == 0 {
		return nil, &CompileError{Field: "template", Message: "no templates declared", File: filename}
	}
	return templates, nil
}

// CompileTemplate parses a CUE value into a Template.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the template struct itself, e.g.:
//
//	v := ctx.CompileString(`template: songs: { pattern: [...] }`)
//	t, err := loader.CompileTemplate(v.LookupPath(cue.ParsePath("template.songs")))
func (l *Loader) CompileTemplate(v cue.Value) (*Template, error) {
	raw := rawTemplate{}

	// The name may be quoted in CUE, e.g. template: "songs-by-artist"
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		raw.name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	if err := v.Err(); err != nil {
		return nil, formatCUEError(raw.name, err)
	}

	descVal := v.LookupPath(cue.ParsePath("description"))
	if descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return nil, formatCUEError(raw.name, err)
		}
		raw.description = desc
	}

	prefixesVal := v.LookupPath(cue.ParsePath("prefixes"))
	if prefixesVal.Exists() {
		prefixes, err := parseCUEPrefixes(raw.name, prefixesVal)
		if err != nil {
			return nil, err
		}
		raw.prefixes = prefixes
	}

	patternVal := v.LookupPath(cue.ParsePath("pattern"))
	if !patternVal.Exists() {
		return nil, &CompileError{
			Template: raw.name,
			Field:    "pattern",
			Message:  "pattern is required",
			Pos:      v.Pos(),
		}
	}
	var err error
	if raw.pattern, err = parseCUETriples(raw.name, "pattern", patternVal); err != nil {
		return nil, err
	}

	conditionVal := v.LookupPath(cue.ParsePath("condition"))
	if conditionVal.Exists() {
		if raw.condition, err = parseCUETriples(raw.name, "condition", conditionVal); err != nil {
			return nil, err
		}
	}

	t, err := l.build(raw, "")
	if err != nil {
		if ce, ok := err.(*CompileError); ok && !ce.Pos.IsValid() && ce.File == "" {
			ce.Pos = v.Pos()
		}
		return nil, err
	}
	return t, nil
}

func parseCUEPrefixes(template string, v cue.Value) (map[string]string, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(template, err)
	}

	prefixes := make(map[string]string)
	for iter.Next() {
		ns, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(template, err)
		}
		prefixes[strings.Trim(iter.Label(), `"`)] = ns
	}
	return prefixes, nil
}

// parseCUETriples parses a list of {s, p, o} structs or [s, p, o] lists.
func parseCUETriples(template, field string, v cue.Value) ([]rawTriple, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(template, err)
	}

	var triples []rawTriple
	for i := 0; iter.Next(); i++ {
		tv := iter.Value()
		at := func(f, msg string) *CompileError {
			return &CompileError{Template: template, Field: f, Message: msg, Pos: tv.Pos()}
		}

		var rt rawTriple
		rt.at = at
		switch tv.IncompleteKind() {
		case cue.ListKind:
			terms, err := cueStrings(template, tv)
			if err != nil {
				return nil, err
			}
			if len(terms) != 3 {
				return nil, at(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("triple must have 3 terms, found %d", len(terms)))
			}
			copy(rt.terms[:], terms)
		case cue.StructKind:
			for j, name := range positionNames {
				termVal := tv.LookupPath(cue.ParsePath(name))
				if !termVal.Exists() {
					return nil, at(fieldPath(field, i, j), "term is required")
				}
				s, err := termVal.String()
				if err != nil {
					return nil, formatCUEError(template, err)
				}
				rt.terms[j] = s
			}
		default:
			return nil, at(fmt.Sprintf("%s[%d]", field, i), "triple must be a list or a struct with s, p, o")
		}
		triples = append(triples, rt)
	}
	return triples, nil
}

func cueStrings(template string, v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(template, err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(template, err)
		}
		out = append(out, s)
	}
	return out, nil
}
