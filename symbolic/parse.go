package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/njchilds90/gocalc/internal/lexer"
)

// ============================================================
// Parser
// ============================================================

// ErrDivisionByZero is returned for a division by a literal zero. It is a
// math error, not a *lexer.SyntaxError.
var ErrDivisionByZero = errors.New("division by zero")

// Parse reads an expression such as "3x^2 + sin(2x) - 1/x".
func Parse(src string) (Expr, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != lexer.EOF {
		if t.Kind == lexer.Equals {
			return nil, p.errorf(t, "unexpected '=' in expression")
		}
		return nil, p.errorf(t, "unexpected %s", t)
	}
	return e, nil
}

// ParseEquation reads "lhs = rhs". Exactly one '=' is required.
func ParseEquation(src string) (*Equation, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.next(); t.Kind != lexer.Equals {
		return nil, p.errorf(t, "expected '=', found %s", t)
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != lexer.EOF {
		return nil, p.errorf(t, "unexpected %s", t)
	}
	return Eq(lhs, rhs), nil
}

type parser struct {
	toks []lexer.Token
	pos  int
}

func newParser(src string) (*parser, error) { return newParserWith(src, IsFunction) }

func newParserWith(src string, isFunc func(string) bool) (*parser, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &lexer.SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return &parser{toks: lexer.InsertImplicitMul(toks, isFunc)}, nil
}

func (p *parser) peek() lexer.Token { return p.toks[p.pos] }

func (p *parser) next() lexer.Token {
	t := p.toks[p.pos]
	if t.Kind != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t lexer.Token, format string, args ...any) error {
	return &lexer.SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isOp(op string) bool {
	t := p.peek()
	return t.Kind == lexer.Op && t.Text == op
}

// expr := term (('+'|'-') term)*
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().Text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = MulOf(N(-1), right)
		}
		left = AddOf(left, right)
	}
	return left, nil
}

// term := unary (('*'|'/') unary)*
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") || p.isOp("%") {
		opTok := p.next()
		if opTok.Text == "%" {
			return nil, p.errorf(opTok, "operator %% is not supported")
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if opTok.Text == "/" {
			if n, ok := right.(*Num); ok && n.IsZero() {
				return nil, fmt.Errorf("%w at position %d", ErrDivisionByZero, opTok.Pos)
			}
			right = PowOf(right, N(-1))
		}
		left = MulOf(left, right)
	}
	return left, nil
}

// unary := ('-'|'+') unary | power
func (p *parser) parseUnary() (Expr, error) {
	if p.isOp("-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return MulOf(N(-1), operand), nil
	}
	if p.isOp("+") {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

// power := primary ('^' unary)?   (right associative)
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.Kind {
	case lexer.Number:
		return parseNumber(t, p)
	case lexer.Ident:
		name := t.Text
		if IsFunction(name) && p.peek().Kind == lexer.LParen {
			p.next()
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if c := p.next(); c.Kind != lexer.RParen {
				return nil, p.errorf(c, "expected ')' after argument of %s, found %s", name, c)
			}
			return applyFunc(strings.ToLower(name), arg), nil
		}
		if IsFunction(name) {
			return nil, p.errorf(t, "function %s requires parentheses", name)
		}
		return S(name), nil
	case lexer.LParen:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.Kind != lexer.RParen {
			return nil, p.errorf(c, "expected ')', found %s", c)
		}
		return e, nil
	case lexer.LBracket:
		return nil, p.errorf(t, "matrix literal is not a scalar expression")
	}
	return nil, p.errorf(t, "unexpected %s", t)
}

func parseNumber(t lexer.Token, p *parser) (Expr, error) {
	text := t.Text
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, p.errorf(t, "invalid number %q", t.Text)
	}
	return &Num{val: r}, nil
}

// parseMatrix reads "[[a, b], [c, d]]" into a matrix of expressions.
func (p *parser) parseMatrix() (*Matrix, error) {
	if t := p.next(); t.Kind != lexer.LBracket {
		return nil, p.errorf(t, "expected '[', found %s", t)
	}
	var rows [][]Expr
	for {
		if t := p.next(); t.Kind != lexer.LBracket {
			return nil, p.errorf(t, "expected '[' to open a matrix row, found %s", t)
		}
		var row []Expr
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			row = append(row, e)
			t := p.next()
			if t.Kind == lexer.RBracket {
				break
			}
			if t.Kind != lexer.Comma {
				return nil, p.errorf(t, "expected ',' or ']' in matrix row, found %s", t)
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("matrix rows have different lengths (%d and %d)", len(rows[0]), len(row))
		}
		rows = append(rows, row)
		t := p.next()
		if t.Kind == lexer.RBracket {
			break
		}
		if t.Kind != lexer.Comma {
			return nil, p.errorf(t, "expected ',' or ']' after matrix row, found %s", t)
		}
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for i, row := range rows {
		for j, e := range row {
			m.Set(i, j, e)
		}
	}
	return m, nil
}
