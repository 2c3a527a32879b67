package dql

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenNumber
	TokenString
	TokenOperator
	TokenPunct
	TokenKeyword
	TokenEOF
)

// Token represents a lexical token with its source offset.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// String returns a human-readable name for a token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenIdent:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	case TokenPunct:
		return "punctuation"
	case TokenKeyword:
		return "keyword"
	case TokenEOF:
		return "end of input"
	default:
		return "unknown"
	}
}

// isKeyword reports whether the token is the given keyword.
func (t Token) isKeyword(word string) bool {
	return t.Kind == TokenKeyword && t.Text == word
}

// isPunct reports whether the token is the given punctuation character.
func (t Token) isPunct(ch string) bool {
	return t.Kind == TokenPunct && t.Text == ch
}

// isOperator reports whether the token is the given operator.
func (t Token) isOperator(op string) bool {
	return t.Kind == TokenOperator && t.Text == op
}
