package dql

import (
	"strings"
	"unicode"
)

// Lexer tokenizes a single expression string.
type Lexer struct {
	input string
	pos   int
	ch    rune
	prev  Token
	begun bool
}

// NewLexer creates a new lexer over the input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = rune(l.input[l.pos])
	}
	l.pos++
}

// peekChar looks at the next character without advancing.
func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return rune(l.input[l.pos])
}

// skipWhitespace skips whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readString reads a quoted string, honoring backslash escapes.
func (l *Lexer) readString(quote rune) string {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case '\\':
				result.WriteRune('\\')
			case quote:
				result.WriteRune(quote)
			default:
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.ch == quote {
		l.readChar() // skip closing quote
	}

	return result.String()
}

// readNumber reads a plain decimal number, with an optional leading minus
// already validated by the caller.
func (l *Lexer) readNumber() string {
	var result strings.Builder

	if l.ch == '-' {
		result.WriteRune(l.ch)
		l.readChar()
	}

	for unicode.IsDigit(l.ch) || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	var result strings.Builder
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// literalPosition reports whether a '-' at the current position starts a
// numeric literal rather than a binary operator. That is the case at the
// start of the input and after anything that is not an operand.
func (l *Lexer) literalPosition() bool {
	if !l.begun {
		return true
	}
	switch l.prev.Kind {
	case TokenOperator:
		return true
	case TokenPunct:
		return l.prev.Text != ")" && l.prev.Text != "]"
	case TokenKeyword:
		// true/false/null are operands; AND/OR/NOT are not.
		return l.prev.Text == "AND" || l.prev.Text == "OR" || l.prev.Text == "NOT"
	default:
		return false
	}
}

// NextToken returns the next token. Unknown characters are silently
// skipped rather than reported.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()
		start := l.pos - 1

		var tok Token

		switch l.ch {
		case 0:
			tok = Token{Kind: TokenEOF, Pos: start}
		case '=':
			if l.peekChar() == '=' {
				l.readChar()
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: "==", Pos: start}
			} else if l.peekChar() == '>' {
				l.readChar()
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: "=>", Pos: start}
			} else {
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: "=", Pos: start}
			}
		case '!':
			if l.peekChar() == '=' {
				l.readChar()
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: "!=", Pos: start}
			} else {
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: "!", Pos: start}
			}
		case '<':
			if l.peekChar() == '=' {
				l.readChar()
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: "<=", Pos: start}
			} else {
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: "<", Pos: start}
			}
		case '>':
			if l.peekChar() == '=' {
				l.readChar()
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: ">=", Pos: start}
			} else {
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: ">", Pos: start}
			}
		case '&':
			if l.peekChar() == '&' {
				l.readChar()
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: "&&", Pos: start}
			} else {
				// Lone '&' is not part of the grammar; skip it.
				l.readChar()
				continue
			}
		case '|':
			if l.peekChar() == '|' {
				l.readChar()
				l.readChar()
				tok = Token{Kind: TokenOperator, Text: "||", Pos: start}
			} else {
				l.readChar()
				continue
			}
		case '+', '*', '/', '%':
			tok = Token{Kind: TokenOperator, Text: string(l.ch), Pos: start}
			l.readChar()
		case '-':
			if l.literalPosition() && unicode.IsDigit(l.peekChar()) {
				tok = Token{Kind: TokenNumber, Text: l.readNumber(), Pos: start}
			} else {
				tok = Token{Kind: TokenOperator, Text: "-", Pos: start}
				l.readChar()
			}
		case '(', ')', '[', ']', '.', ',':
			tok = Token{Kind: TokenPunct, Text: string(l.ch), Pos: start}
			l.readChar()
		case '\'', '"':
			quote := l.ch
			tok = Token{Kind: TokenString, Text: l.readString(quote), Pos: start}
		default:
			if unicode.IsDigit(l.ch) {
				tok = Token{Kind: TokenNumber, Text: l.readNumber(), Pos: start}
			} else if unicode.IsLetter(l.ch) || l.ch == '_' {
				value := l.readIdentifier()
				tok = keywordOrIdent(value, start)
			} else {
				// Unknown character: skip silently.
				l.readChar()
				continue
			}
		}

		l.prev = tok
		l.begun = true
		return tok
	}
}

// keywordOrIdent matches AND, OR, NOT, true, false and null
// case-insensitively; every other identifier keeps its case.
func keywordOrIdent(value string, pos int) Token {
	switch strings.ToUpper(value) {
	case "AND", "OR", "NOT":
		return Token{Kind: TokenKeyword, Text: strings.ToUpper(value), Pos: pos}
	case "TRUE", "FALSE", "NULL":
		return Token{Kind: TokenKeyword, Text: strings.ToLower(value), Pos: pos}
	}
	return Token{Kind: TokenIdent, Text: value, Pos: pos}
}

// Tokenize returns all tokens from the input, excluding the trailing EOF.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		if tok.Kind == TokenEOF {
			break
		}
		tokens = append(tokens, tok)
	}

	return tokens
}
