package sparql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/csgen/internal/ir"
)

// Parser parses query text. The zero value is ready to use.
type Parser struct{}

// Parse parses a single CONSTRUCT or SELECT query.
func (Parser) Parse(text string) (*Query, error) {
	return Parse(text)
}

// Parse parses a single CONSTRUCT or SELECT query.
// Errors are *ParseError or *MalformedTermError.
func Parse(text string) (*Query, error) {
	lexer := NewLexer(text)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}

	p := &parser{lexer: lexer, input: text}
	return p.parseQuery()
}

type parser struct {
	lexer *Lexer
	input string
}

func (p *parser) errorf(tok Token, format string, args ...any) *ParseError {
	return &ParseError{Line: tok.Line, Col: tok.Col, Message: fmt.Sprintf(format, args...)}
}

func isKeyword(tok Token, kw string) bool {
	return tok.Type == TokenName && strings.EqualFold(tok.Value, kw)
}

func (p *parser) expect(typ TokenType) (Token, error) {
	tok := p.lexer.NextToken()
	if tok.Type != typ {
		return tok, p.errorf(tok, "expected %s, found %s", typ, tok.describe())
	}
	return tok, nil
}

func (p *parser) expectKeyword(kw string) error {
	tok := p.lexer.NextToken()
	if !isKeyword(tok, kw) {
		return p.errorf(tok, "expected %s, found %s", kw, tok.describe())
	}
	return nil
}

func (p *parser) parseQuery() (*Query, error) {
	q := &Query{Limit: -1, Offset: -1}

	tok := p.lexer.PeekToken()
	switch {
	case isKeyword(tok, "CONSTRUCT"):
		p.lexer.NextToken()
		q.Form = FormConstruct
		template, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		q.Template = template
		if err := p.expectKeyword("WHERE"); err != nil {
			return nil, err
		}
	case isKeyword(tok, "SELECT"):
		p.lexer.NextToken()
		q.Form = FormSelect
		if err := p.parseSelectClause(q); err != nil {
			return nil, err
		}
		// WHERE is optional before the group in SELECT queries
		if isKeyword(p.lexer.PeekToken(), "WHERE") {
			p.lexer.NextToken()
		}
	default:
		return nil, p.errorf(tok, "expected CONSTRUCT or SELECT, found %s", tok.describe())
	}

	where, err := p.parseGroup()
	if err != nil {
		return nil, err
	}
	q.Where = where

	if err := p.parseModifiers(q); err != nil {
		return nil, err
	}

	if tok := p.lexer.NextToken(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s after query", tok.describe())
	}
	return q, nil
}

// parseSelectClause parses [DISTINCT] ( * | (var | (COUNT(...) AS var))+ ).
func (p *parser) parseSelectClause(q *Query) error {
	if isKeyword(p.lexer.PeekToken(), "DISTINCT") {
		p.lexer.NextToken()
		q.Distinct = true
	}

	if p.lexer.PeekToken().Type == TokenStar {
		p.lexer.NextToken()
		q.Star = true
		return nil
	}

	for {
		tok := p.lexer.PeekToken()
		switch tok.Type {
		case TokenVar:
			p.lexer.NextToken()
			q.Projection = append(q.Projection, Projection{Var: tok.Value})
		case TokenLeftParen:
			proj, err := p.parseAggregate()
			if err != nil {
				return err
			}
			q.Projection = append(q.Projection, proj)
		default:
			if len(q.Projection) == 0 {
				return p.errorf(tok, "expected projection, found %s", tok.describe())
			}
			return nil
		}
	}
}

// parseAggregate parses (COUNT([DISTINCT] ?v) AS ?r).
func (p *parser) parseAggregate() (Projection, error) {
	var proj Projection
	if _, err := p.expect(TokenLeftParen); err != nil {
		return proj, err
	}
	if err := p.expectKeyword("COUNT"); err != nil {
		return proj, err
	}
	proj.Aggregate = "COUNT"
	if _, err := p.expect(TokenLeftParen); err != nil {
		return proj, err
	}
	if isKeyword(p.lexer.PeekToken(), "DISTINCT") {
		p.lexer.NextToken()
		proj.Distinct = true
	}
	arg, err := p.expect(TokenVar)
	if err != nil {
		return proj, err
	}
	proj.Arg = arg.Value
	if _, err := p.expect(TokenRightParen); err != nil {
		return proj, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return proj, err
	}
	result, err := p.expect(TokenVar)
	if err != nil {
		return proj, err
	}
	proj.Var = result.Value
	if _, err := p.expect(TokenRightParen); err != nil {
		return proj, err
	}
	return proj, nil
}

// parseModifiers parses LIMIT and OFFSET in either order.
func (p *parser) parseModifiers(q *Query) error {
	for {
		tok := p.lexer.PeekToken()
		var target *int
		switch {
		case isKeyword(tok, "LIMIT"):
			target = &q.Limit
		case isKeyword(tok, "OFFSET"):
			target = &q.Offset
		default:
			return nil
		}
		p.lexer.NextToken()
		if *target >= 0 {
			return p.errorf(tok, "duplicate %s clause", strings.ToUpper(tok.Value))
		}
		num, err := p.expect(TokenNumber)
		if err != nil {
			return err
		}
		n, convErr := strconv.Atoi(num.Value)
		if convErr != nil || n < 0 {
			return p.errorf(num, "%s requires a non-negative integer, found %s", strings.ToUpper(tok.Value), num.Value)
		}
		*target = n
	}
}

// parseGroup parses { triples }. The result is never nil.
func (p *parser) parseGroup() (ir.Pattern, error) {
	if _, err := p.expect(TokenLeftBrace); err != nil {
		return nil, err
	}

	triples := ir.Pattern{}
	for {
		tok := p.lexer.PeekToken()
		switch tok.Type {
		case TokenRightBrace:
			p.lexer.NextToken()
			return triples, nil
		case TokenDot:
			return nil, p.errorf(tok, "unexpected '.'")
		case TokenEOF:
			return nil, p.errorf(tok, "unterminated group: expected }")
		}

		parsed, err := p.parseTriplesSameSubject()
		if err != nil {
			return nil, err
		}
		triples = append(triples, parsed...)

		next := p.lexer.PeekToken()
		switch next.Type {
		case TokenDot:
			p.lexer.NextToken()
		case TokenRightBrace:
		default:
			return nil, p.errorf(next, "expected '.' or '}', found %s", next.describe())
		}
	}
}

// parseTriplesSameSubject parses subject predicateObjectList where the list
// may use ';' and ','.
func (p *parser) parseTriplesSameSubject() ([]ir.TriplePattern, error) {
	subject, err := p.parseTerm(false)
	if err != nil {
		return nil, err
	}

	var triples []ir.TriplePattern
	for {
		predicate, err := p.parseTerm(true)
		if err != nil {
			return nil, err
		}
		for {
			object, err := p.parseTerm(false)
			if err != nil {
				return nil, err
			}
			triples = append(triples, ir.NewTriple(subject, predicate, object))
			if p.lexer.PeekToken().Type != TokenComma {
				break
			}
			p.lexer.NextToken()
		}
		if p.lexer.PeekToken().Type != TokenSemicolon {
			return triples, nil
		}
		p.lexer.NextToken()
		// A trailing ';' before '.' or '}' is allowed
		if next := p.lexer.PeekToken(); next.Type == TokenDot || next.Type == TokenRightBrace {
			return triples, nil
		}
	}
}

// parseTerm parses a variable, IRI, literal, or (in predicate position) 'a'.
// A predicate is a Verb: only a variable, an IRI or 'a'.
func (p *parser) parseTerm(predicate bool) (ir.Term, error) {
	tok := p.lexer.NextToken()
	if predicate && tok.Type != TokenVar && tok.Type != TokenIRI && !(tok.Type == TokenName && tok.Value == "a") {
		return nil, p.errorf(tok, "expected predicate (variable, IRI or 'a'), found %s", tok.describe())
	}
	switch tok.Type {
	case TokenVar:
		return ir.Variable{Name: tok.Value}, nil
	case TokenIRI:
		return ir.IRI{Value: tok.Value}, nil
	case TokenString:
		return p.parseLiteral(tok)
	case TokenNumber:
		return ir.Literal{Lexical: tok.Value}, nil
	case TokenName:
		if tok.Value == "a" {
			if !predicate {
				return nil, p.errorf(tok, "'a' is only allowed in predicate position")
			}
			return ir.IRI{Value: ir.RDFType}, nil
		}
		if tok.Value == "true" || tok.Value == "false" {
			return ir.Literal{Lexical: tok.Value}, nil
		}
		return nil, p.errorf(tok, "expected term, found %s", tok.describe())
	default:
		return nil, p.errorf(tok, "expected term, found %s", tok.describe())
	}
}

// parseLiteral combines a string token with an optional @lang or ^^<iri>
// suffix. The literal's lexical form is the exact source text.
func (p *parser) parseLiteral(str Token) (ir.Term, error) {
	end := str.End
	switch next := p.lexer.PeekToken(); next.Type {
	case TokenLangTag:
		p.lexer.NextToken()
		end = next.End
	case TokenDatatypeMark:
		p.lexer.NextToken()
		dt := p.lexer.NextToken()
		if dt.Type != TokenIRI {
			return nil, &MalformedTermError{
				Term:   p.input[str.Start:next.End],
				Line:   str.Line,
				Col:    str.Col,
				Reason: "datatype IRI expected after '^^'",
			}
		}
		end = dt.End
	}
	return ir.Literal{Lexical: p.input[str.Start:end]}, nil
}
