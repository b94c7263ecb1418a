package numeric

import "fmt"

// Derivative returns d(n)/d(v). The result is not simplified.
func Derivative(n Node, v string) (Node, error) {
	switch t := n.(type) {
	case *Constant:
		return Const(0), nil
	case *Symbol:
		if t.Name == v {
			return Const(1), nil
		}
		return Const(0), nil
	case *Operator:
		return derivOperator(t, v)
	case *Call:
		return derivCall(t, v)
	}
	return nil, fmt.Errorf("cannot differentiate %T", n)
}

func derivOperator(o *Operator, v string) (Node, error) {
	if o.unary() {
		d, err := Derivative(o.Args[0], v)
		if err != nil {
			return nil, err
		}
		return negate(d), nil
	}
	u, w := o.Args[0], o.Args[1]
	du, err := Derivative(u, v)
	if err != nil {
		return nil, err
	}
	dw, err := Derivative(w, v)
	if err != nil {
		return nil, err
	}
	switch o.Op {
	case "+", "-":
		return binary(o.Op, du, dw), nil
	case "*":
		return binary("+", binary("*", du, w), binary("*", u, dw)), nil
	case "/":
		num := binary("-", binary("*", du, w), binary("*", u, dw))
		return binary("/", num, binary("^", w, Const(2))), nil
	case "^":
		switch {
		case !dependsOn(w, v):
			// n * u^(n-1) * u'
			return binary("*", binary("*", w, binary("^", u, binary("-", w, Const(1)))), du), nil
		case !dependsOn(u, v):
			// a^w * ln(a) * w'
			return binary("*", binary("*", o, &Call{Fn: "ln", Arg: u}), dw), nil
		default:
			// u^w * (w' ln(u) + w u'/u)
			inner := binary("+",
				binary("*", dw, &Call{Fn: "ln", Arg: u}),
				binary("/", binary("*", w, du), u))
			return binary("*", o, inner), nil
		}
	}
	return nil, fmt.Errorf("cannot differentiate operator %q", o.Op)
}

func derivCall(c *Call, v string) (Node, error) {
	u := c.Arg
	du, err := Derivative(u, v)
	if err != nil {
		return nil, err
	}
	var outer Node
	switch c.Fn {
	case "sin":
		outer = &Call{Fn: "cos", Arg: u}
	case "cos":
		outer = negate(&Call{Fn: "sin", Arg: u})
	case "tan":
		outer = binary("/", Const(1), binary("^", &Call{Fn: "cos", Arg: u}, Const(2)))
	case "asin":
		outer = binary("/", Const(1), &Call{Fn: "sqrt", Arg: binary("-", Const(1), binary("^", u, Const(2)))})
	case "acos":
		outer = negate(binary("/", Const(1), &Call{Fn: "sqrt", Arg: binary("-", Const(1), binary("^", u, Const(2)))}))
	case "atan":
		outer = binary("/", Const(1), binary("+", Const(1), binary("^", u, Const(2))))
	case "sinh":
		outer = &Call{Fn: "cosh", Arg: u}
	case "cosh":
		outer = &Call{Fn: "sinh", Arg: u}
	case "tanh":
		outer = binary("/", Const(1), binary("^", &Call{Fn: "cosh", Arg: u}, Const(2)))
	case "exp":
		outer = c
	case "ln", "log":
		outer = binary("/", Const(1), u)
	case "sqrt":
		outer = binary("/", Const(1), binary("*", Const(2), c))
	case "abs":
		outer = binary("/", c, u)
	case "sign", "floor", "ceil":
		return Const(0), nil
	default:
		return nil, fmt.Errorf("no derivative rule for function %s", c.Fn)
	}
	return binary("*", outer, du), nil
}
