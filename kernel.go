package arc

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Kernel selects the formulas used for exact complex arithmetic. No kernel
// reduces its results.
type Kernel int8

const (
	// ReferenceKernel computes sums, differences, and quotients with the
	// reference formulas. Its addition takes the common denominator to be
	// b1*gcd(b1,b2)/b2 in truncating integer arithmetic and uses the real
	// part's denominator for the imaginary part as well. Its division adds
	// where the conjugate product subtracts in the imaginary numerator.
	ReferenceKernel Kernel = iota
	// TextbookKernel computes sums over the product of denominators and
	// divides by multiplying with the conjugate.
	TextbookKernel
)

var (
	// ErrDivideByZero is the error for division by an exact zero.
	ErrDivideByZero = errors.New("division by zero")
	// ErrUndefined is the error for arithmetic that would divide by an
	// operand's zero denominator.
	ErrUndefined = errors.New("undefined operand")
)

func (k Kernel) String() string {
	switch k {
	case ReferenceKernel:
		return "reference"
	case TextbookKernel:
		return "textbook"
	default:
		return "Kernel(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKernel returns the kernel with the given name.
func ParseKernel(name string) (Kernel, error) {
	switch strings.ToLower(name) {
	case "", "reference":
		return ReferenceKernel, nil
	case "textbook":
		return TextbookKernel, nil
	default:
		return 0, errors.New("unknown kernel " + strconv.Quote(name))
	}
}

// Neg negates a complex number.
func Neg(x Complex) Complex {
	return Complex{-x.A, x.B, -x.C, x.D}
}

// Mul multiplies two complex numbers. Both parts of the result share the
// denominator b1*b2*d1*d2. It fails only with ErrOverflow.
func (k Kernel) Mul(x, y Complex) (Complex, error) {
	a1, b1, c1, d1 := x.A, x.B, x.C, x.D
	a2, b2, c2, d2 := y.A, y.B, y.C, y.D
	var c checked
	af := c.sub(c.mul(a1, a2, d1, d2), c.mul(c1, c2, b1, b2))
	bf := c.mul(b1, b2, d1, d2)
	cf := c.add(c.mul(a1, c2, b2, d1), c.mul(a2, c1, b1, d2))
	return c.result(af, bf, cf, bf)
}

// Div divides x by y.
func (k Kernel) Div(x, y Complex) (Complex, error) {
	if !y.Defined() {
		return Complex{}, ErrUndefined
	}
	if y.A == 0 && y.C == 0 {
		return Complex{}, ErrDivideByZero
	}
	a1, b1, c1, d1 := x.A, x.B, x.C, x.D
	a2, b2, c2, d2 := y.A, y.B, y.C, y.D
	var c checked
	af := c.mul(b2, d2, c.add(c.mul(a1, a2, d1, d2), c.mul(c1, c2, b1, b2)))
	bf := c.mul(b1, d1, c.add(c.mul(a2, a2, d2, d2), c.mul(c2, c2, b2, b2)))
	var cf int64
	if k == TextbookKernel {
		cf = c.mul(b2, d2, c.sub(c.mul(a2, c1, b1, d2), c.mul(a1, c2, d1, b2)))
	} else {
		cf = c.mul(b2, d2, c.add(c.mul(a2, c1, b1, d2), c.mul(a1, c2, d1, b2)))
	}
	return c.result(af, bf, cf, bf)
}

// Add adds two complex numbers.
func (k Kernel) Add(x, y Complex) (Complex, error) {
	return k.sum(x, y, 1)
}

// Sub subtracts y from x.
func (k Kernel) Sub(x, y Complex) (Complex, error) {
	return k.sum(x, y, -1)
}

// sum computes x + s*y for s = ±1.
func (k Kernel) sum(x, y Complex, s int64) (Complex, error) {
	if !x.Defined() || !y.Defined() {
		return Complex{}, ErrUndefined
	}
	a1, b1, c1, d1 := x.A, x.B, x.C, x.D
	a2, b2, c2, d2 := y.A, y.B, y.C, y.D
	var c checked
	if k == TextbookKernel {
		return c.result(
			c.add(c.mul(a1, b2), c.mul(s, a2, b1)),
			c.mul(b1, b2),
			c.add(c.mul(c1, d2), c.mul(s, c2, d1)),
			c.mul(d1, d2),
		)
	}
	// Real part.
	lcm := c.div(c.mul(b1, gcd(b1, b2)), b2)
	af := c.add(c.mul(a1, c.div(lcm, b1)), c.mul(s, a2, c.div(lcm, b2)))
	// Imaginary part. The result keeps the real part's denominator.
	lcmi := c.div(c.mul(d1, gcd(d1, d2)), d2)
	cf := c.add(c.mul(c1, c.div(lcmi, d1)), c.mul(s, c2, c.div(lcmi, d2)))
	return c.result(af, lcm, cf, lcm)
}

// checked does int64 arithmetic and remembers whether any operation
// overflowed.
type checked struct {
	overflow bool
}

func (c *checked) mul(xs ...int64) int64 {
	r := int64(1)
	for _, x := range xs {
		p := r * x
		if x != 0 && (p/x != r || (x == -1 && r == math.MinInt64)) {
			c.overflow = true
		}
		r = p
	}
	return r
}

func (c *checked) add(x, y int64) int64 {
	s := x + y
	if (x > 0 && y > 0 && s < 0) || (x < 0 && y < 0 && s >= 0) {
		c.overflow = true
	}
	return s
}

func (c *checked) sub(x, y int64) int64 {
	s := x - y
	if (x >= 0 && y < 0 && s < 0) || (x < 0 && y > 0 && s >= 0) {
		c.overflow = true
	}
	return s
}

// div divides with truncation. y must not be zero.
func (c *checked) div(x, y int64) int64 {
	if x == math.MinInt64 && y == -1 {
		c.overflow = true
	}
	return x / y
}

func (c *checked) result(a, b, cc, d int64) (Complex, error) {
	if c.overflow {
		return Complex{}, ErrOverflow
	}
	return Complex{a, b, cc, d}, nil
}

// gcd returns the greatest common divisor of |x| and |y| carrying the sign of
// x*y. Zero counts as positive.
func gcd(x, y int64) int64 {
	a, b := uabs(x), uabs(y)
	for b != 0 {
		a, b = b, a%b
	}
	g := int64(a)
	if (x < 0) != (y < 0) {
		g = -g
	}
	return g
}

func uabs(x int64) uint64 {
	if x < 0 {
		return uint64(-x)
	}
	return uint64(x)
}
