package dql

import (
	"strconv"
	"strings"
)

// exprParser is a recursive-descent parser over a token stream.
//
// Precedence, low to high: OR < AND < comparison < additive <
// multiplicative < unary < postfix < primary. Comparisons do not chain.
type exprParser struct {
	tokens []Token
	end    int
	pos    int
}

// ParseExpression tokenizes and parses a single expression.
func ParseExpression(text string) (Expr, error) {
	tokens := Tokenize(text)
	p := &exprParser{tokens: tokens, end: len(text)}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().Kind != TokenEOF {
		return nil, p.errExpected("end of expression")
	}
	return expr, nil
}

// current returns the current token.
func (p *exprParser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokenEOF, Pos: p.end}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing.
func (p *exprParser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Kind: TokenEOF, Pos: p.end}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token.
func (p *exprParser) advance() {
	p.pos++
}

// errExpected builds a ParseError for the current token.
func (p *exprParser) errExpected(expected string) error {
	tok := p.current()
	return &ParseError{Offset: tok.Pos, Got: tok.Text, Expected: expected}
}

// expectPunct checks that the current token is the given punctuation and
// advances past it.
func (p *exprParser) expectPunct(ch string) error {
	if !p.current().isPunct(ch) {
		return p.errExpected("'" + ch + "'")
	}
	p.advance()
	return nil
}

// parseOr parses OR expressions (lowest precedence, left-associative).
func (p *exprParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().isKeyword("OR") || p.current().isOperator("||") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Op: "OR", Left: left, Right: right}
	}

	return left, nil
}

// parseAnd parses AND expressions.
func (p *exprParser) parseAnd() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.current().isKeyword("AND") || p.current().isOperator("&&") {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Op: "AND", Left: left, Right: right}
	}

	return left, nil
}

// parseComparison parses a single pairwise comparison. Comparisons do not
// chain: a < b < c is a parse error.
func (p *exprParser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	tok := p.current()
	if tok.Kind != TokenOperator {
		return left, nil
	}
	switch tok.Text {
	case "=", "==", "!=", "<", ">", "<=", ">=":
		op := tok.Text
		if op == "==" {
			op = "="
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

// parseAdditive parses + and - (left-associative).
func (p *exprParser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.current().isOperator("+") || p.current().isOperator("-") {
		op := p.current().Text
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

// parseMultiplicative parses *, / and % (left-associative).
func (p *exprParser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.current().isOperator("*") || p.current().isOperator("/") || p.current().isOperator("%") {
		op := p.current().Text
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

// parseUnary parses NOT, unary minus and unary plus.
func (p *exprParser) parseUnary() (Expr, error) {
	tok := p.current()
	if tok.isKeyword("NOT") || tok.isOperator("!") {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "NOT", Operand: operand}, nil
	}
	if tok.isOperator("-") || tok.isOperator("+") {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: tok.Text, Operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses property access (.name) and index access ([expr]).
// A literal index is folded into a static property node; a dynamic index
// is kept as an IndexExpr and evaluated per row.
func (p *exprParser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		if p.current().isPunct(".") {
			p.advance()
			tok := p.current()
			if tok.Kind != TokenIdent && tok.Kind != TokenKeyword {
				return nil, p.errExpected("property name")
			}
			expr = &PropertyExpr{Target: expr, Name: tok.Text}
			p.advance()
			continue
		}
		if p.current().isPunct("[") {
			p.advance()
			index, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			if lit, ok := index.(*LiteralExpr); ok {
				switch lit.Value.Kind {
				case KindNumber:
					expr = &PropertyExpr{Target: expr, Name: strconv.Itoa(int(lit.Value.Data.(float64)))}
					continue
				case KindString:
					expr = &PropertyExpr{Target: expr, Name: lit.Value.Data.(string)}
					continue
				}
			}
			expr = &IndexExpr{Target: expr, Index: index}
			continue
		}
		return expr, nil
	}
}

// parsePrimary parses literals, parenthesized expressions, function calls
// and identifiers.
func (p *exprParser) parsePrimary() (Expr, error) {
	tok := p.current()

	switch tok.Kind {
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errExpected("number")
		}
		p.advance()
		return &LiteralExpr{Value: Num(f)}, nil
	case TokenString:
		p.advance()
		return &LiteralExpr{Value: Str(tok.Text)}, nil
	case TokenKeyword:
		switch tok.Text {
		case "true":
			p.advance()
			return &LiteralExpr{Value: BoolVal(true)}, nil
		case "false":
			p.advance()
			return &LiteralExpr{Value: BoolVal(false)}, nil
		case "null":
			p.advance()
			return &LiteralExpr{Value: Null}, nil
		}
		return nil, p.errExpected("expression")
	case TokenPunct:
		if tok.Text == "(" {
			p.advance()
			expr, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return expr, nil
		}
		return nil, p.errExpected("expression")
	case TokenIdent:
		if p.peek().isPunct("(") {
			return p.parseCall()
		}
		p.advance()
		return &IdentExpr{Name: tok.Text}, nil
	default:
		return nil, p.errExpected("expression")
	}
}

// parseCall parses name(arg, arg, ...). The argument list may be empty.
// An argument of the form ident => expr parses as a lambda.
func (p *exprParser) parseCall() (Expr, error) {
	name := p.current().Text
	p.advance() // function name
	p.advance() // opening paren

	var args []Expr

	if p.current().isPunct(")") {
		p.advance()
		return &CallExpr{Name: strings.ToLower(name), Args: args}, nil
	}

	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.current().isPunct(",") {
			p.advance()
			continue
		}
		break
	}

	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	return &CallExpr{Name: strings.ToLower(name), Args: args}, nil
}

// parseArg parses one call argument, allowing a lambda in this position.
func (p *exprParser) parseArg() (Expr, error) {
	if p.current().Kind == TokenIdent && p.peek().isOperator("=>") {
		param := p.current().Text
		p.advance()
		p.advance()
		body, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return &LambdaExpr{Param: param, Body: body}, nil
	}
	return p.parseOr()
}
