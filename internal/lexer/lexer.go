// Package lexer turns math input text into tokens shared by the symbolic and
// numeric parsers.
//
// Both engines accept the same surface syntax: decimal numbers with optional
// exponent, identifiers ([A-Za-z][A-Za-z0-9_]*), the binary operators
// + - * / ^ % (and ** as a synonym for ^), parentheses, brackets, commas and a
// single '='. Juxtaposition such as "2x" or "(x+1)(x-1)" is turned into an
// explicit multiplication by InsertImplicitMul.
package lexer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Kind identifies a token class.
type Kind int

const (
	EOF Kind = iota
	Number
	Ident
	Op
	LParen
	RParen
	LBracket
	RBracket
	Comma
	Equals
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Number:
		return "number"
	case Ident:
		return "identifier"
	case Op:
		return "operator"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case Comma:
		return "','"
	case Equals:
		return "'='"
	}
	return "token"
}

// Token is a single lexeme with its byte offset in the source.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

func (t Token) String() string {
	if t.Kind == EOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%q", t.Text)
}

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

var replacer = strings.NewReplacer("×", "*", "÷", "/", "−", "-", "·", "*")

// Tokenize splits src into tokens. The final token is always EOF.
func Tokenize(src string) ([]Token, error) {
	src = replacer.Replace(src)
	var toks []Token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			i = scanNumber(src, i)
			toks = append(toks, Token{Kind: Number, Text: src[start:i], Pos: start})
		case isLetter(c):
			start := i
			for i < len(src) && (isLetter(src[i]) || isDigit(src[i]) || src[i] == '_') {
				i++
			}
			toks = append(toks, Token{Kind: Ident, Text: src[start:i], Pos: start})
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			toks = append(toks, Token{Kind: Op, Text: "^", Pos: i})
			i += 2
		case strings.IndexByte("+-*/^%", c) >= 0:
			toks = append(toks, Token{Kind: Op, Text: string(c), Pos: i})
			i++
		case c == '(':
			toks = append(toks, Token{Kind: LParen, Text: "(", Pos: i})
			i++
		case c == ')':
			toks = append(toks, Token{Kind: RParen, Text: ")", Pos: i})
			i++
		case c == '[':
			toks = append(toks, Token{Kind: LBracket, Text: "[", Pos: i})
			i++
		case c == ']':
			toks = append(toks, Token{Kind: RBracket, Text: "]", Pos: i})
			i++
		case c == ',':
			toks = append(toks, Token{Kind: Comma, Text: ",", Pos: i})
			i++
		case c == '=':
			toks = append(toks, Token{Kind: Equals, Text: "=", Pos: i})
			i++
		default:
			r := []rune(src[i:])[0]
			if unicode.IsSpace(r) {
				i += len(string(r))
				continue
			}
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, Token{Kind: EOF, Pos: len(src)})
	return toks, nil
}

func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	// Exponent only when digits follow; a bare "e" is the constant.
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			i = j
			for i < len(src) && isDigit(src[i]) {
				i++
			}
		}
	}
	return i
}

// InsertImplicitMul makes juxtaposed products explicit. An identifier
// directly followed by '(' is left alone when isFunc reports it as a
// function name.
func InsertImplicitMul(toks []Token, isFunc func(string) bool) []Token {
	out := make([]Token, 0, len(toks))
	for i, t := range toks {
		if i > 0 {
			prev := toks[i-1]
			if endsOperand(prev) && startsOperand(t) {
				if !(prev.Kind == Ident && t.Kind == LParen && isFunc(prev.Text)) {
					out = append(out, Token{Kind: Op, Text: "*", Pos: t.Pos})
				}
			}
		}
		out = append(out, t)
	}
	return out
}

func endsOperand(t Token) bool {
	return t.Kind == Number || t.Kind == Ident || t.Kind == RParen
}

func startsOperand(t Token) bool {
	return t.Kind == Number || t.Kind == Ident || t.Kind == LParen
}

var subscriptRe = regexp.MustCompile(`([A-Za-z])_([A-Za-z0-9]+)`)

// NormalizeSubscripts rewrites subscripted identifiers such as "a_1" into a
// single identifier "a1".
func NormalizeSubscripts(s string) string {
	return subscriptRe.ReplaceAllString(s, "$1$2")
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
