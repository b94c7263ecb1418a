package numeric

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/njchilds90/gocalc/internal/lexer"
)

// IsFunction reports whether name is a known function.
func IsFunction(name string) bool {
	_, ok := floatFuncs[strings.ToLower(name)]
	return ok
}

// Parse builds an AST from text such as "2x^2 + sin(x)".
func Parse(src string) (Node, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &lexer.SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: lexer.InsertImplicitMul(toks, IsFunction)}
	n, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != lexer.EOF {
		return nil, p.errorf(t, "unexpected %s", t)
	}
	return n, nil
}

type parser struct {
	toks []lexer.Token
	pos  int
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

func (p *parser) op(ops string) (string, bool) {
	t := p.peek()
	if t.Kind == lexer.Op && strings.Contains(ops, t.Text) {
		return t.Text, true
	}
	return "", false
}

func (p *parser) sum() (Node, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.op("+-")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		left = binary(op, left, right)
	}
}

func (p *parser) product() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.op("*/%")
		if !ok {
			return left, nil
		}
		t := p.next()
		if op == "%" {
			return nil, p.errorf(t, "operator %% is not supported")
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binary(op, left, right)
	}
}

func (p *parser) unary() (Node, error) {
	if op, ok := p.op("+-"); ok {
		p.next()
		n, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return negate(n), nil
		}
		return n, nil
	}
	return p.power()
}

func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.op("^"); ok {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return binary("^", base, exp), nil
	}
	return base, nil
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.Kind {
	case lexer.Number:
		text := t.Text
		if strings.HasPrefix(text, ".") {
			text = "0" + text
		}
		r, ok := new(big.Rat).SetString(text)
		if !ok {
			return nil, p.errorf(t, "invalid number %q", t.Text)
		}
		return ratConst(r), nil
	case lexer.Ident:
		if !IsFunction(t.Text) {
			return &Symbol{Name: t.Text}, nil
		}
		if o := p.next(); o.Kind != lexer.LParen {
			return nil, p.errorf(o, "function %s requires parentheses", t.Text)
		}
		arg, err := p.sum()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.Kind != lexer.RParen {
			return nil, p.errorf(c, "expected ')', found %s", c)
		}
		return &Call{Fn: strings.ToLower(t.Text), Arg: arg}, nil
	case lexer.LParen:
		n, err := p.sum()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.Kind != lexer.RParen {
			return nil, p.errorf(c, "expected ')', found %s", c)
		}
		return n, nil
	case lexer.LBracket:
		return nil, p.errorf(t, "matrix literals are not supported by the numeric engine")
	case lexer.Equals:
		return nil, p.errorf(t, "unexpected '='")
	}
	return nil, p.errorf(t, "unexpected %s", t)
}
