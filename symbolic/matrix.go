package symbolic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/gocalc/internal/lexer"
)

// ============================================================
// Matrix
// ============================================================

type Matrix struct {
	rows, cols int
	data       [][]Expr
}

var (
	ErrDimension = errors.New("matrix dimension mismatch")
	ErrNotSquare = errors.New("matrix is not square")
	ErrSingular  = errors.New("matrix is singular")
)

func NewMatrix(rows, cols int) *Matrix {
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
		for j := range data[i] {
			data[i][j] = N(0)
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = N(1)
	}
	return m
}

func (m *Matrix) checkBounds(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("symbolic: matrix index [%d,%d] out of range for %dx%d", row, col, m.rows, m.cols))
	}
}

func (m *Matrix) Get(row, col int) Expr {
	m.checkBounds(row, col)
	return m.data[row][col]
}

func (m *Matrix) Set(row, col int, val Expr) {
	m.checkBounds(row, col)
	m.data[row][col] = val
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) String() string {
	rows := make([]string, m.rows)
	for i, row := range m.data {
		cells := make([]string, len(row))
		for j, e := range row {
			cells[j] = e.String()
		}
		rows[i] = "[" + strings.Join(cells, ", ") + "]"
	}
	return "[" + strings.Join(rows, ", ") + "]"
}

func (m *Matrix) apply(f func(i, j int) Expr) *Matrix {
	out := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[i][j] = f(i, j)
		}
	}
	return out
}

func (m *Matrix) MatAdd(other *Matrix) (*Matrix, error) {
	if m.rows != other.rows || m.cols != other.cols {
		return nil, fmt.Errorf("%w: %dx%d + %dx%d", ErrDimension, m.rows, m.cols, other.rows, other.cols)
	}
	return m.apply(func(i, j int) Expr { return AddOf(m.data[i][j], other.data[i][j]) }), nil
}

func (m *Matrix) MatSub(other *Matrix) (*Matrix, error) {
	if m.rows != other.rows || m.cols != other.cols {
		return nil, fmt.Errorf("%w: %dx%d - %dx%d", ErrDimension, m.rows, m.cols, other.rows, other.cols)
	}
	return m.apply(func(i, j int) Expr { return AddOf(m.data[i][j], MulOf(N(-1), other.data[i][j])) }), nil
}

func (m *Matrix) MatMul(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf("%w: %dx%d * %dx%d", ErrDimension, m.rows, m.cols, other.rows, other.cols)
	}
	out := NewMatrix(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < other.cols; j++ {
			terms := make([]Expr, m.cols)
			for k := 0; k < m.cols; k++ {
				terms[k] = MulOf(m.data[i][k], other.data[k][j])
			}
			out.data[i][j] = AddOf(terms...)
		}
	}
	return out, nil
}

func (m *Matrix) Scale(scalar Expr) *Matrix {
	return m.apply(func(i, j int) Expr { return MulOf(scalar, m.data[i][j]) })
}

func (m *Matrix) Transpose() *Matrix {
	out := NewMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j][i] = m.data[i][j]
		}
	}
	return out
}

func (m *Matrix) Trace() (Expr, error) {
	if m.rows != m.cols {
		return nil, ErrNotSquare
	}
	terms := make([]Expr, m.rows)
	for i := range terms {
		terms[i] = m.data[i][i]
	}
	return AddOf(terms...), nil
}

// Det computes the determinant by cofactor expansion along the first row.
func (m *Matrix) Det() (Expr, error) {
	if m.rows != m.cols {
		return nil, ErrNotSquare
	}
	return matDet(m.data), nil
}

func matDet(data [][]Expr) Expr {
	n := len(data)
	switch n {
	case 1:
		return data[0][0].Simplify()
	case 2:
		return AddOf(MulOf(data[0][0], data[1][1]), MulOf(N(-1), data[0][1], data[1][0]))
	}
	terms := make([]Expr, n)
	for j := 0; j < n; j++ {
		sign := N(1)
		if j%2 == 1 {
			sign = N(-1)
		}
		terms[j] = MulOf(sign, data[0][j], matDet(minor(data, 0, j)))
	}
	return AddOf(terms...)
}

func minor(data [][]Expr, skipRow, skipCol int) [][]Expr {
	out := make([][]Expr, 0, len(data)-1)
	for i, row := range data {
		if i == skipRow {
			continue
		}
		r := make([]Expr, 0, len(row)-1)
		for j, e := range row {
			if j != skipCol {
				r = append(r, e)
			}
		}
		out = append(out, r)
	}
	return out
}

// Inverse returns adj(m)/det(m).
func (m *Matrix) Inverse() (*Matrix, error) {
	det, err := m.Det()
	if err != nil {
		return nil, err
	}
	if dn, ok := det.Eval(); ok && dn.IsZero() {
		return nil, ErrSingular
	}
	if m.rows == 1 {
		return m.apply(func(int, int) Expr { return PowOf(det, N(-1)) }), nil
	}
	cof := m.apply(func(i, j int) Expr {
		sign := N(1)
		if (i+j)%2 == 1 {
			sign = N(-1)
		}
		return MulOf(sign, matDet(minor(m.data, i, j)))
	})
	return cof.Transpose().Scale(PowOf(det, N(-1))), nil
}

// ============================================================
// Matrix expressions
// ============================================================

// matrixFuncs are the functions understood by EvaluateMatrix.
var matrixFuncs = map[string]bool{"det": true, "inv": true, "transpose": true, "trace": true}

// IsMatrixFunction reports whether name is a matrix function.
func IsMatrixFunction(name string) bool { return matrixFuncs[strings.ToLower(name)] }

// matValue is either a matrix or a scalar expression.
type matValue struct {
	m *Matrix
	s Expr
}

// EvaluateMatrix evaluates matrix literals such as "[[1,2],[3,4]]" combined
// with + - * and the functions det, inv, transpose and trace.
func EvaluateMatrix(src string) (string, error) {
	p, err := newParserWith(src, func(name string) bool { return IsFunction(name) || IsMatrixFunction(name) })
	if err != nil {
		return "", err
	}
	v, err := p.parseMatSum()
	if err != nil {
		return "", err
	}
	if t := p.peek(); t.Kind != lexer.EOF {
		return "", p.errorf(t, "unexpected %s", t)
	}
	if v.s != nil {
		return DeepSimplify(v.s).String(), nil
	}
	return v.m.apply(func(i, j int) Expr { return DeepSimplify(v.m.data[i][j]) }).String(), nil
}

func (p *parser) parseMatSum() (matValue, error) {
	left, err := p.parseMatProduct()
	if err != nil {
		return matValue{}, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		right, err := p.parseMatProduct()
		if err != nil {
			return matValue{}, err
		}
		switch {
		case left.m != nil && right.m != nil:
			if op.Text == "+" {
				left.m, err = left.m.MatAdd(right.m)
			} else {
				left.m, err = left.m.MatSub(right.m)
			}
			if err != nil {
				return matValue{}, err
			}
		case left.s != nil && right.s != nil:
			if op.Text == "-" {
				right.s = MulOf(N(-1), right.s)
			}
			left.s = AddOf(left.s, right.s)
		default:
			return matValue{}, p.errorf(op, "cannot add a matrix and a scalar")
		}
	}
	return left, nil
}

func (p *parser) parseMatProduct() (matValue, error) {
	left, err := p.parseMatFactor()
	if err != nil {
		return matValue{}, err
	}
	for p.isOp("*") {
		p.next()
		right, err := p.parseMatFactor()
		if err != nil {
			return matValue{}, err
		}
		switch {
		case left.m != nil && right.m != nil:
			if left.m, err = left.m.MatMul(right.m); err != nil {
				return matValue{}, err
			}
		case left.m != nil:
			left.m = left.m.Scale(right.s)
		case right.m != nil:
			left = matValue{m: right.m.Scale(left.s)}
		default:
			left.s = MulOf(left.s, right.s)
		}
	}
	return left, nil
}

func (p *parser) parseMatFactor() (matValue, error) {
	t := p.peek()
	switch {
	case t.Kind == lexer.LBracket:
		m, err := p.parseMatrix()
		if err != nil {
			return matValue{}, err
		}
		return matValue{m: m}, nil
	case t.Kind == lexer.LParen:
		p.next()
		v, err := p.parseMatSum()
		if err != nil {
			return matValue{}, err
		}
		if c := p.next(); c.Kind != lexer.RParen {
			return matValue{}, p.errorf(c, "expected ')', found %s", c)
		}
		return v, nil
	case t.Kind == lexer.Ident && IsMatrixFunction(t.Text):
		p.next()
		if o := p.next(); o.Kind != lexer.LParen {
			return matValue{}, p.errorf(o, "expected '(' after %s", t.Text)
		}
		arg, err := p.parseMatSum()
		if err != nil {
			return matValue{}, err
		}
		if c := p.next(); c.Kind != lexer.RParen {
			return matValue{}, p.errorf(c, "expected ')', found %s", c)
		}
		if arg.m == nil {
			return matValue{}, p.errorf(t, "%s expects a matrix argument", t.Text)
		}
		return applyMatrixFunc(strings.ToLower(t.Text), arg.m)
	}
	s, err := p.parseUnary()
	if err != nil {
		return matValue{}, err
	}
	return matValue{s: s}, nil
}

func applyMatrixFunc(name string, m *Matrix) (matValue, error) {
	switch name {
	case "det":
		d, err := m.Det()
		return matValue{s: d}, err
	case "trace":
		t, err := m.Trace()
		return matValue{s: t}, err
	case "transpose":
		return matValue{m: m.Transpose()}, nil
	case "inv":
		inv, err := m.Inverse()
		return matValue{m: inv}, err
	}
	return matValue{}, fmt.Errorf("unknown matrix function %q", name)
}
