package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/csgen/internal/ir"
	"github.com/roach88/csgen/internal/sparql"
)

var (
	varPattern      = regexp.MustCompile(`^[?$][A-Za-z0-9_]+$`)
	prefixedPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*)?:([^\s<>"{}|^\x60\\]*)$`)
)

// ParseTerm parses one term in template notation:
//
//	?x                 variable
//	<http://ex.org/a>  IRI
//	dbo:Song           prefixed name, expanded with prefixes
//	"Queen"@en         literal, kept verbatim
//	42, true           literal
//	a                  rdf:type (predicate position only)
//
// prefixes is consulted before ir.DefaultPrefixes. Sentinel promotion is
// left to the caller.
func ParseTerm(text string, prefixes map[string]string, predicate bool) (ir.Term, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, fmt.Errorf("empty term")
	case text == "a":
		if !predicate {
			return nil, fmt.Errorf("'a' is only allowed in predicate position")
		}
		return ir.NewIRI(ir.RDFType), nil
	case text[0] == '?' || text[0] == '$':
		if !varPattern.MatchString(text) {
			return nil, fmt.Errorf("invalid variable %q", text)
		}
		return ir.NewVariable(text), nil
	case text[0] == '<':
		return parseIRIRef(text)
	case text[0] == '"' || text[0] == '\'' || isNumberStart(text[0]) || text == "true" || text == "false":
		if predicate {
			return nil, fmt.Errorf("literal %s is not allowed in predicate position", text)
		}
		return parseLiteral(text)
	}

	m := prefixedPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("unrecognized term %q", text)
	}
	ns, ok := prefixes[m[1]]
	if !ok {
		ns, ok = ir.DefaultPrefixes[m[1]]
	}
	if !ok {
		return nil, fmt.Errorf("unknown prefix %q in %q", m[1], text)
	}
	return ir.NewIRI(ns + m[2]), nil
}

func isNumberStart(ch byte) bool {
	return ch == '-' || ch == '+' || (ch >= '0' && ch <= '9')
}

func parseIRIRef(text string) (ir.Term, error) {
	tokens, err := lexOne(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) != 1 || tokens[0].Type != sparql.TokenIRI {
		return nil, fmt.Errorf("invalid IRI %s", text)
	}
	return ir.NewIRI(tokens[0].Value), nil
}

// parseLiteral checks text is exactly one literal: a string with an
// optional language tag or datatype, a number, or a boolean.
func parseLiteral(text string) (ir.Term, error) {
	tokens, err := lexOne(text)
	if err != nil {
		return nil, err
	}

	ok := false
	switch {
	case len(tokens) == 1:
		ok = tokens[0].Type == sparql.TokenString || tokens[0].Type == sparql.TokenNumber ||
			tokens[0].Type == sparql.TokenName
	case len(tokens) == 2:
		ok = tokens[0].Type == sparql.TokenString && tokens[1].Type == sparql.TokenLangTag
	case len(tokens) == 3:
		ok = tokens[0].Type == sparql.TokenString && tokens[1].Type == sparql.TokenDatatypeMark &&
			tokens[2].Type == sparql.TokenIRI
	}
	if !ok {
		return nil, fmt.Errorf("invalid literal %s", text)
	}
	return ir.NewLiteral(text), nil
}

// lexOne tokenizes text and drops the trailing EOF.
func lexOne(text string) ([]sparql.Token, error) {
	lexer := sparql.NewLexer(text)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}
	tokens := lexer.Tokens()
	if n := len(tokens); n > 0 && tokens[n-1].Type == sparql.TokenEOF {
		tokens = tokens[:n-1]
	}
	return tokens, nil
}
