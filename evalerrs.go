package arc

import (
	"errors"
	"strconv"
)

// ErrMismatchedType matches every TypeError with errors.Is.
var ErrMismatchedType = errors.New("mismatched type")

var (
	// ErrNotInteger is the error for factorials and exponents that are not
	// integers.
	ErrNotInteger = errors.New("not an integer")
	// ErrNegative is the error for the factorial of a negative integer.
	ErrNegative = errors.New("negative operand")
	// ErrOverflow is the error for results too large to represent.
	ErrOverflow = errors.New("result out of range")
	// ErrUnordered is the error for ordering comparisons of numbers with
	// imaginary parts.
	ErrUnordered = errors.New("complex numbers are not ordered")
)

// TypeError is an error indicating an operator applied to a value of the wrong
// kind. It implements InputError and matches ErrMismatchedType.
type TypeError struct {
	// Op is the operator.
	Op string
	// Col is the position at which the failing expression ends.
	Col int
	// Left and Right are the kinds of the operands. Right is empty for
	// unary operators.
	Left, Right string
}

func (err *TypeError) Error() string {
	if err.Right == "" {
		return errpos(err.Col, "mismatched type: "+err.Op+" "+err.Left)
	}
	return errpos(err.Col, "mismatched types: "+err.Left+" "+err.Op+" "+err.Right)
}

func (err *TypeError) Pos() int {
	return err.Col
}

func (err *TypeError) Is(target error) bool {
	return target == ErrMismatchedType
}

// DomainError is an error indicating an operand of the right kind outside the
// operator's domain, like a division by zero. It implements InputError and
// unwraps to the specific cause.
type DomainError struct {
	// Op is the operator.
	Op string
	// Col is the position at which the failing expression ends.
	Col int
	// Err is the cause, e.g. ErrDivideByZero.
	Err error
}

func (err *DomainError) Error() string {
	return errpos(err.Col, err.Err.Error()+" in "+err.Op)
}

func (err *DomainError) Pos() int {
	return err.Col
}

func (err *DomainError) Unwrap() error {
	return err.Err
}

// DefineError is an error indicating a definition of something other than a
// name or a function head. It implements InputError.
type DefineError struct {
	// Col is the position at which the left side ends.
	Col int
	// Target is the text of the left side.
	Target string
}

func (err *DefineError) Error() string {
	return errpos(err.Col, "cannot define "+err.Target)
}

func (err *DefineError) Pos() int {
	return err.Col
}

// DepthError is an error indicating evaluation nested deeper than the
// context allows, usually unbounded recursion. It implements InputError.
type DepthError struct {
	// Col is the position of the expression that exceeded the limit.
	Col int
	// Limit is the context's maximum depth.
	Limit int
}

func (err *DepthError) Error() string {
	return errpos(err.Col, "evaluation deeper than "+strconv.Itoa(err.Limit)+" levels")
}

func (err *DepthError) Pos() int {
	return err.Col
}
