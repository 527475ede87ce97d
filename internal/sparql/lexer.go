package sparql

import (
	"unicode"

	"github.com/roach88/csgen/internal/ir"
)

// Lexer tokenizes SPARQL query text.
type Lexer struct {
	input   string
	pos     int
	line    int
	col     int
	tokens  []Token
	current int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		col:    1,
		tokens: []Token{},
	}
}

// Lex tokenizes the entire input. Errors are *ParseError or
// *MalformedTermError.
func (l *Lexer) Lex() error {
	for {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.input) {
			break
		}

		start := Token{Line: l.line, Col: l.col, Start: l.pos}

		var tok Token
		var err error
		switch ch := l.peek(); {
		case ch == '{':
			tok = l.single(start, TokenLeftBrace)
		case ch == '}':
			tok = l.single(start, TokenRightBrace)
		case ch == '(':
			tok = l.single(start, TokenLeftParen)
		case ch == ')':
			tok = l.single(start, TokenRightParen)
		case ch == '.' && !isDigit(l.peekAt(1)):
			tok = l.single(start, TokenDot)
		case ch == ';':
			tok = l.single(start, TokenSemicolon)
		case ch == ',':
			tok = l.single(start, TokenComma)
		case ch == '*':
			tok = l.single(start, TokenStar)
		case ch == '?' || ch == '$':
			tok, err = l.readVar(start)
		case ch == '<':
			tok, err = l.readIRI(start)
		case ch == '"' || ch == '\'':
			tok, err = l.readString(start)
		case ch == '@':
			tok, err = l.readLangTag(start)
		case ch == '^':
			tok, err = l.readDatatypeMark(start)
		case isDigit(ch) || ch == '+' || ch == '-' || ch == '.':
			tok, err = l.readNumber(start)
		case isNameStart(ch):
			tok, err = l.readName(start)
		default:
			err = &ParseError{Line: l.line, Col: l.col, Message: "unexpected character '" + string(ch) + "'"}
		}
		if err != nil {
			return err
		}
		l.tokens = append(l.tokens, tok)
	}

	l.tokens = append(l.tokens, Token{
		Type:  TokenEOF,
		Line:  l.line,
		Col:   l.col,
		Start: l.pos,
		End:   l.pos,
	})
	return nil
}

// Tokens returns every token produced by Lex, ending with TokenEOF.
func (l *Lexer) Tokens() []Token {
	return l.tokens
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col, Start: l.pos, End: l.pos}
	}
	token := l.tokens[l.current]
	l.current++
	return token
}

// PeekToken returns the next token without advancing.
func (l *Lexer) PeekToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col, Start: l.pos, End: l.pos}
	}
	return l.tokens[l.current]
}

func (l *Lexer) peek() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) single(start Token, typ TokenType) Token {
	l.advance()
	start.Type = typ
	start.Value = l.input[start.Start:l.pos]
	start.End = l.pos
	return start
}

func (l *Lexer) finish(start Token, typ TokenType, value string) Token {
	start.Type = typ
	start.Value = value
	start.End = l.pos
	return start
}

func (l *Lexer) malformed(start Token, reason string) *MalformedTermError {
	return &MalformedTermError{
		Term:   l.input[start.Start:l.pos],
		Line:   start.Line,
		Col:    start.Col,
		Reason: reason,
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.peek()
		if unicode.IsSpace(rune(ch)) {
			l.advance()
		} else if ch == '#' {
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		} else {
			break
		}
	}
}

// readVar reads ?name or $name.
func (l *Lexer) readVar(start Token) (Token, error) {
	l.advance() // skip ? or $
	begin := l.pos
	for l.pos < len(l.input) && isVarChar(l.peek()) {
		l.advance()
	}
	if l.pos == begin {
		return Token{}, &ParseError{Line: start.Line, Col: start.Col, Message: "variable name expected after '" + l.input[start.Start:begin] + "'"}
	}
	return l.finish(start, TokenVar, l.input[begin:l.pos]), nil
}

// readIRI reads <...>. Characters forbidden by the IRIREF production make
// the IRI malformed.
func (l *Lexer) readIRI(start Token) (Token, error) {
	l.advance() // skip <
	begin := l.pos
	for l.pos < len(l.input) {
		ch := l.peek()
		if ch == '>' {
			value := l.input[begin:l.pos]
			l.advance()
			return l.finish(start, TokenIRI, value), nil
		}
		if ir.IsIRIRefForbidden(ch) {
			l.advance()
			return Token{}, l.malformed(start, "invalid character in IRI")
		}
		l.advance()
	}
	return Token{}, l.malformed(start, "unterminated IRI")
}

// readString reads a single- or double-quoted string, short or long
// ("""...""" and '''...'''). The token value is the raw source text
// including the quotes.
func (l *Lexer) readString(start Token) (Token, error) {
	quote := l.peek()
	if l.peekAt(1) == quote && l.peekAt(2) == quote {
		return l.readLongString(start, quote)
	}
	l.advance()

	for l.pos < len(l.input) {
		ch := l.peek()
		switch {
		case ch == quote:
			l.advance()
			return l.finish(start, TokenString, l.input[start.Start:l.pos]), nil
		case ch == '\n' || ch == '\r':
			return Token{}, l.malformed(start, "unterminated string literal")
		case ch == '\\':
			l.advance()
			if err := l.readEscape(start); err != nil {
				return Token{}, err
			}
		default:
			l.advance()
		}
	}
	return Token{}, l.malformed(start, "unterminated string literal")
}

// readLongString reads a triple-quoted string. Newlines and lone or paired
// quotes are allowed inside; the first unescaped triple quote closes it.
func (l *Lexer) readLongString(start Token, quote byte) (Token, error) {
	for range 3 {
		l.advance()
	}

	for l.pos < len(l.input) {
		ch := l.peek()
		switch {
		case ch == quote && l.peekAt(1) == quote && l.peekAt(2) == quote:
			for range 3 {
				l.advance()
			}
			return l.finish(start, TokenString, l.input[start.Start:l.pos]), nil
		case ch == '\\':
			l.advance()
			if err := l.readEscape(start); err != nil {
				return Token{}, err
			}
		default:
			l.advance()
		}
	}
	return Token{}, l.malformed(start, "unterminated long string literal")
}

// readEscape consumes the character(s) after a backslash.
func (l *Lexer) readEscape(start Token) error {
	if l.pos >= len(l.input) {
		return l.malformed(start, "unterminated string literal")
	}
	esc := l.peek()
	l.advance()
	switch esc {
	case 't', 'b', 'n', 'r', 'f', '"', '\'', '\\':
		return nil
	case 'u', 'U':
		n := 4
		if esc == 'U' {
			n = 8
		}
		for range n {
			if !isHex(l.peek()) {
				return l.malformed(start, "invalid unicode escape")
			}
			l.advance()
		}
		return nil
	default:
		return l.malformed(start, "invalid escape sequence '\\"+string(esc)+"'")
	}
}

// readLangTag reads @lang(-subtag)*.
func (l *Lexer) readLangTag(start Token) (Token, error) {
	l.advance() // skip @
	begin := l.pos
	for isLetter(l.peek()) {
		l.advance()
	}
	if l.pos == begin {
		return Token{}, l.malformed(start, "language tag expected after '@'")
	}
	for l.peek() == '-' {
		l.advance()
		sub := l.pos
		for isLetter(l.peek()) || isDigit(l.peek()) {
			l.advance()
		}
		if l.pos == sub {
			return Token{}, l.malformed(start, "empty language subtag")
		}
	}
	return l.finish(start, TokenLangTag, l.input[begin:l.pos]), nil
}

func (l *Lexer) readDatatypeMark(start Token) (Token, error) {
	l.advance()
	if l.peek() != '^' {
		return Token{}, l.malformed(start, "expected '^^'")
	}
	l.advance()
	return l.finish(start, TokenDatatypeMark, "^^"), nil
}

// readNumber reads INTEGER, DECIMAL or DOUBLE with an optional sign.
func (l *Lexer) readNumber(start Token) (Token, error) {
	if ch := l.peek(); ch == '+' || ch == '-' {
		l.advance()
	}
	digits := 0
	for isDigit(l.peek()) {
		l.advance()
		digits++
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
			digits++
		}
	}
	if digits == 0 {
		return Token{}, l.malformed(start, "invalid number")
	}
	if ch := l.peek(); ch == 'e' || ch == 'E' {
		l.advance()
		if ch := l.peek(); ch == '+' || ch == '-' {
			l.advance()
		}
		if !isDigit(l.peek()) {
			return Token{}, l.malformed(start, "invalid exponent")
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.finish(start, TokenNumber, l.input[start.Start:l.pos]), nil
}

// readName reads a keyword, 'a', or a boolean. Prefixed names are
// rejected: queries carry full IRIs only.
func (l *Lexer) readName(start Token) (Token, error) {
	for isVarChar(l.peek()) || l.peek() == '-' {
		l.advance()
	}
	if l.peek() == ':' {
		l.advance()
		return Token{}, &ParseError{Line: start.Line, Col: start.Col, Message: "prefixed name " + l.input[start.Start:l.pos] + " is not supported"}
	}
	return l.finish(start, TokenName, l.input[start.Start:l.pos]), nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isHex(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isNameStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isVarChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
