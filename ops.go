package arc

import (
	"errors"
	"math"
)

// binop is a binary operator on single values.
type binop struct {
	name string
	f    func(k Kernel, x, y Value) (Value, error)
}

// unop is a unary operator on single values.
type unop struct {
	name string
	f    func(k Kernel, x Value) (Value, error)
}

var (
	opAdd     = arith("+", Kernel.Add)
	opSub     = arith("-", Kernel.Sub)
	opMul     = arith("*", Kernel.Mul)
	opDiv     = arith("/", Kernel.Div)
	opCall    = arith("application", Kernel.Mul)
	opPow     = binop{"^", power}
	opCompose = binop{".", compose}
	opEq      = binop{"==", func(k Kernel, x, y Value) (Value, error) { return Bool(same(x, y)), nil }}
	opNe      = binop{"!=", func(k Kernel, x, y Value) (Value, error) { return Bool(!same(x, y)), nil }}
	opLt      = order("<", func(c int) bool { return c < 0 })
	opGt      = order(">", func(c int) bool { return c > 0 })
	opLe      = order("<=", func(c int) bool { return c <= 0 })
	opGe      = order(">=", func(c int) bool { return c >= 0 })
	opAnd     = logic("and", func(x, y Bool) Bool { return x && y })
	opOr      = logic("or", func(x, y Bool) Bool { return x || y })

	opNeg       = unop{"-", negate}
	opNot       = unop{"not", not}
	opPercent   = unop{"%", percent}
	opFactorial = unop{"!", factorial}
)

// arith makes an operator from a kernel operation on complex numbers.
func arith(name string, f func(Kernel, Complex, Complex) (Complex, error)) binop {
	return binop{name, func(k Kernel, x, y Value) (Value, error) {
		a, ok := x.(Complex)
		if !ok {
			return nil, ErrMismatchedType
		}
		b, ok := y.(Complex)
		if !ok {
			return nil, ErrMismatchedType
		}
		r, err := f(k, a, b)
		if err != nil {
			return nil, err
		}
		return r, nil
	}}
}

// order makes an ordering comparison of real numbers from a test on the
// result of big.Rat.Cmp.
func order(name string, test func(int) bool) binop {
	return binop{name, func(k Kernel, x, y Value) (Value, error) {
		a, ok := x.(Complex)
		if !ok {
			return nil, ErrMismatchedType
		}
		b, ok := y.(Complex)
		if !ok {
			return nil, ErrMismatchedType
		}
		if !a.Defined() || !b.Defined() {
			return nil, ErrUndefined
		}
		if a.Imag().Sign() != 0 || b.Imag().Sign() != 0 {
			return nil, ErrUnordered
		}
		return Bool(test(a.Real().Cmp(b.Real()))), nil
	}}
}

func logic(name string, f func(x, y Bool) Bool) binop {
	return binop{name, func(k Kernel, x, y Value) (Value, error) {
		a, ok := x.(Bool)
		if !ok {
			return nil, ErrMismatchedType
		}
		b, ok := y.(Bool)
		if !ok {
			return nil, ErrMismatchedType
		}
		return f(a, b), nil
	}}
}

func negate(k Kernel, x Value) (Value, error) {
	a, ok := x.(Complex)
	if !ok {
		return nil, ErrMismatchedType
	}
	if a.A == math.MinInt64 || a.C == math.MinInt64 {
		return nil, ErrOverflow
	}
	return Neg(a), nil
}

func not(k Kernel, x Value) (Value, error) {
	a, ok := x.(Bool)
	if !ok {
		return nil, ErrMismatchedType
	}
	return !a, nil
}

func percent(k Kernel, x Value) (Value, error) {
	a, ok := x.(Complex)
	if !ok {
		return nil, ErrMismatchedType
	}
	r, err := k.Mul(a, Complex{1, 100, 0, 1})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// maxFactorial is the largest n for which n! fits in an int64.
const maxFactorial = 20

func factorial(k Kernel, x Value) (Value, error) {
	n, err := integer(x)
	if err != nil {
		return nil, err
	}
	switch {
	case n < 0:
		return nil, ErrNegative
	case n > maxFactorial:
		return nil, ErrOverflow
	}
	r := int64(1)
	for i := int64(2); i <= n; i++ {
		r *= i
	}
	return Complex{r, 1, 0, 1}, nil
}

// maxExponent bounds the magnitude of integer exponents.
const maxExponent = 4096

// power raises x to an integer power by repeated multiplication with the
// kernel. The result is not reduced.
func power(k Kernel, x, y Value) (Value, error) {
	a, ok := x.(Complex)
	if !ok {
		return nil, ErrMismatchedType
	}
	n, err := integer(y)
	if err != nil {
		return nil, err
	}
	if n > maxExponent || n < -maxExponent {
		return nil, ErrOverflow
	}
	one := Complex{1, 1, 0, 1}
	if n == 0 {
		return one, nil
	}
	m := n
	if m < 0 {
		m = -m
	}
	r := a
	for i := int64(1); i < m; i++ {
		if r, err = k.Mul(r, a); err != nil {
			return nil, err
		}
	}
	if n < 0 {
		if r, err = k.Div(one, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// integer returns the value of a real integer.
func integer(x Value) (int64, error) {
	a, ok := x.(Complex)
	if !ok {
		return 0, ErrMismatchedType
	}
	if !a.Defined() {
		return 0, ErrUndefined
	}
	re, im := a.Real(), a.Imag()
	if im.Sign() != 0 || !re.IsInt() || !re.Num().IsInt64() {
		return 0, ErrNotInteger
	}
	return re.Num().Int64(), nil
}

// compose makes f . g, the function that applies f to the result of g.
func compose(k Kernel, x, y Value) (Value, error) {
	f, ok := x.(Func)
	if !ok {
		return nil, ErrMismatchedType
	}
	g, ok := y.(Func)
	if !ok {
		return nil, ErrMismatchedType
	}
	body := &node{
		kind:  nodeCall,
		pos:   g.body.pos,
		left:  &node{kind: nodeConst, pos: g.body.pos, val: f},
		right: g.body.clone(),
	}
	return Func{pattern: g.pattern.clone(), body: body}, nil
}

// comparisons maps comparison node kinds to their operators.
var comparisons = map[nodeKind]binop{
	nodeEq: opEq,
	nodeNe: opNe,
	nodeLt: opLt,
	nodeGt: opGt,
	nodeLe: opLe,
	nodeGe: opGe,
}

// chain evaluates a comparison chain. Each operand is evaluated once. Every
// choice of one value per operand, with the leftmost varying slowest, gives
// the conjunction of the adjacent comparisons.
func (ctx *Context) chain(n *node) ([]Value, error) {
	vals := make([][]Value, len(n.elems))
	for i, e := range n.elems {
		v, err := e.eval(ctx)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	var r []Value
	pick := make([]Value, len(vals))
	var walk func(i int) error
	walk = func(i int) error {
		if i < len(vals) {
			for _, v := range vals[i] {
				pick[i] = v
				if err := walk(i + 1); err != nil {
					return err
				}
			}
			return nil
		}
		all := Bool(true)
		for j, kind := range n.ops {
			op := comparisons[kind]
			v, err := op.f(ctx.kernel, pick[j], pick[j+1])
			if err != nil {
				return opError(n, op.name, err, KindOf(pick[j]), KindOf(pick[j+1]))
			}
			all = all && v.(Bool)
		}
		r = append(r, all)
		return nil
	}
	if err := walk(0); err != nil {
		return nil, err
	}
	return dedup(r), nil
}

// binop evaluates both operands of a binary node and combines every pair of
// their values.
func (ctx *Context) binop(n *node, op binop) ([]Value, error) {
	xs, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	ys, err := n.right.eval(ctx)
	if err != nil {
		return nil, err
	}
	return ctx.cross(n, xs, ys, op)
}

// unop evaluates the operand of a unary node and applies op to each value.
func (ctx *Context) unop(n *node, op unop) ([]Value, error) {
	xs, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	return ctx.each(n, xs, op)
}

// cross applies op to each pair in the Cartesian product of xs and ys, in
// order with the left operand varying slowest, and removes duplicates. If
// either side is empty, so is the result.
func (ctx *Context) cross(n *node, xs, ys []Value, op binop) ([]Value, error) {
	r := make([]Value, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			v, err := op.f(ctx.kernel, x, y)
			if err != nil {
				return nil, opError(n, op.name, err, KindOf(x), KindOf(y))
			}
			r = append(r, v)
		}
	}
	return dedup(r), nil
}

// each applies op to each value and removes duplicates.
func (ctx *Context) each(n *node, xs []Value, op unop) ([]Value, error) {
	r := make([]Value, 0, len(xs))
	for _, x := range xs {
		v, err := op.f(ctx.kernel, x)
		if err != nil {
			return nil, opError(n, op.name, err, KindOf(x), "")
		}
		r = append(r, v)
	}
	return dedup(r), nil
}

// opError converts an operator failure into an InputError at n.
func opError(n *node, op string, err error, left, right string) error {
	if errors.Is(err, ErrMismatchedType) {
		return &TypeError{Op: op, Col: n.pos, Left: left, Right: right}
	}
	return &DomainError{Op: op, Col: n.pos, Err: err}
}
