package arc

import (
	"math/big"
	"strconv"
	"strings"
)

// Value is the result of evaluating an expression. It is one of Complex,
// Bool, Func, or Tuple.
type Value interface {
	String() string
	value()
}

// Complex is the exact complex number A/B + (C/D)i. Arithmetic does not
// reduce the fractions; denominators may share factors with their numerators
// and may be negative. Use Reduce to get lowest terms.
type Complex struct {
	A, B, C, D int64
}

// Bool is a truth value.
type Bool bool

// Func is a function value, an unevaluated pattern and body. Applying it
// substitutes the argument expression for the pattern's names in the body.
type Func struct {
	pattern *node
	body    *node
}

// Tuple is an ordered sequence of values.
type Tuple []Value

func (Complex) value() {}
func (Bool) value()    {}
func (Func) value()    {}
func (Tuple) value()   {}

// Real returns the real part of a complex number as a rational, or nil if
// its denominator is zero.
func (x Complex) Real() *big.Rat {
	return rat(x.A, x.B)
}

// Imag returns the imaginary part of a complex number as a rational, or nil
// if its denominator is zero.
func (x Complex) Imag() *big.Rat {
	return rat(x.C, x.D)
}

func rat(a, b int64) *big.Rat {
	if b == 0 {
		return nil
	}
	return new(big.Rat).SetFrac64(a, b)
}

// Defined reports whether neither denominator is zero.
func (x Complex) Defined() bool {
	return x.B != 0 && x.D != 0
}

// Reduce returns the number with both fractions in lowest terms and positive
// denominators. A part with a zero denominator, or whose reduced form does
// not fit in 64 bits, is left as it is.
func (x Complex) Reduce() Complex {
	x.A, x.B = reduce(x.A, x.B)
	x.C, x.D = reduce(x.C, x.D)
	return x
}

func reduce(a, b int64) (int64, int64) {
	r := rat(a, b)
	if r == nil || !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return a, b
	}
	return r.Num().Int64(), r.Denom().Int64()
}

func (x Complex) String() string {
	re, im := x.Real(), x.Imag()
	if re == nil || im == nil {
		return "undefined"
	}
	switch {
	case im.Sign() == 0:
		return re.RatString()
	case re.Sign() == 0:
		return imagString(im)
	case im.Sign() < 0:
		return re.RatString() + " - " + imagString(new(big.Rat).Neg(im))
	default:
		return re.RatString() + " + " + imagString(im)
	}
}

// imagString formats a non-zero imaginary part as i, -i, 2i, i/3, or 2i/3.
func imagString(im *big.Rat) string {
	var b strings.Builder
	num := im.Num()
	switch {
	case num.IsInt64() && num.Int64() == 1:
	case num.IsInt64() && num.Int64() == -1:
		b.WriteByte('-')
	default:
		b.WriteString(num.String())
	}
	b.WriteByte('i')
	if !im.IsInt() {
		b.WriteByte('/')
		b.WriteString(im.Denom().String())
	}
	return b.String()
}

func (b Bool) String() string {
	return strconv.FormatBool(bool(b))
}

// Pattern returns the function's parameter pattern as text.
func (f Func) Pattern() string {
	return f.pattern.String()
}

// Body returns the function's body as text.
func (f Func) Body() string {
	return f.body.String()
}

func (f Func) String() string {
	return f.Pattern() + " => " + f.Body()
}

func (t Tuple) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	if len(t) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// KindOf names the kind of a value for messages: complex, bool, function,
// tuple, or nothing for nil.
func KindOf(v Value) string {
	switch v.(type) {
	case Complex:
		return "complex"
	case Bool:
		return "bool"
	case Func:
		return "function"
	case Tuple:
		return "tuple"
	default:
		return "nothing"
	}
}

// Equal reports whether two values are structurally equal. Complex numbers
// are equal only if all four components are, so 1/2 and 2/4 differ. Function
// values compare their pattern and body trees.
func Equal(x, y Value) bool {
	switch x := x.(type) {
	case Complex:
		y, ok := y.(Complex)
		return ok && x == y
	case Bool:
		y, ok := y.(Bool)
		return ok && x == y
	case Func:
		y, ok := y.(Func)
		return ok && x.pattern.equal(y.pattern) && x.body.equal(y.body)
	case Tuple:
		y, ok := y.(Tuple)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return x == nil && y == nil
	}
}

// same reports whether two values denote the same thing, comparing complex
// numbers by value rather than by representation.
func same(x, y Value) bool {
	switch x := x.(type) {
	case Complex:
		y, ok := y.(Complex)
		if !ok {
			return false
		}
		if !x.Defined() || !y.Defined() {
			return x == y
		}
		return x.Real().Cmp(y.Real()) == 0 && x.Imag().Cmp(y.Imag()) == 0
	case Tuple:
		y, ok := y.(Tuple)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !same(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return Equal(x, y)
	}
}

// dedup returns the distinct values of vs in order of first appearance. The
// result never aliases vs.
func dedup(vs []Value) []Value {
	r := make([]Value, 0, len(vs))
outer:
	for _, v := range vs {
		for _, u := range r {
			if Equal(u, v) {
				continue outer
			}
		}
		r = append(r, v)
	}
	return r
}
