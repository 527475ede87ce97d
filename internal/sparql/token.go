package sparql

import "fmt"

// TokenType represents the type of a SPARQL token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenVar
	TokenIRI
	TokenString
	TokenNumber
	TokenName // keywords, 'a', true/false
	TokenLangTag
	TokenDatatypeMark // ^^
	TokenLeftBrace
	TokenRightBrace
	TokenLeftParen
	TokenRightParen
	TokenDot
	TokenSemicolon
	TokenComma
	TokenStar
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenVar:          "Var",
	TokenIRI:          "IRI",
	TokenString:       "String",
	TokenNumber:       "Number",
	TokenName:         "Name",
	TokenLangTag:      "LangTag",
	TokenDatatypeMark: "^^",
	TokenLeftBrace:    "{",
	TokenRightBrace:   "}",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenDot:          ".",
	TokenSemicolon:    ";",
	TokenComma:        ",",
	TokenStar:         "*",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token.
//
// Value holds the decoded payload: the variable name without '?', the IRI
// without brackets, the raw string literal including its quotes, the tag
// without '@'. Start and End are byte offsets of the token in the input.
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
	Start int
	End   int
}

// String returns a string representation of the token.
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return fmt.Sprintf("EOF[%d:%d]", t.Line, t.Col)
	case TokenVar, TokenIRI, TokenString, TokenNumber, TokenName, TokenLangTag:
		return fmt.Sprintf("%s[%d:%d]:%q", t.Type, t.Line, t.Col, t.Value)
	default:
		return fmt.Sprintf("%q[%d:%d]", t.Type.String(), t.Line, t.Col)
	}
}

// describe renders the token the way error messages quote it.
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of query"
	case TokenVar:
		return "?" + t.Value
	case TokenIRI:
		return "<" + t.Value + ">"
	case TokenLangTag:
		return "@" + t.Value
	case TokenString, TokenNumber, TokenName:
		return t.Value
	default:
		return t.Type.String()
	}
}
