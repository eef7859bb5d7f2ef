package arc

import "strconv"

// NumberError is an error indicating that a term was required but the parser
// found something else, or that a numeral does not fit the number
// representation. It implements InputError.
type NumberError struct {
	// Col is the position of the offending token.
	Col int
	// Found is the text of the offending token. It is empty at the end of
	// the input.
	Found string
	// Range is set when the token was a numeral too large to represent.
	Range bool
}

func (err *NumberError) Error() string {
	switch {
	case err.Range:
		return errpos(err.Col, "number out of range: "+err.Found)
	case err.Found == "":
		return errpos(err.Col, "number expected at end")
	default:
		return errpos(err.Col, "number expected, found "+strconv.Quote(err.Found))
	}
}

func (err *NumberError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched brackets in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position of the token where the close bracket was expected.
	Col int
	// Left is the opening bracket.
	Left string
	// Right is the mismatched closing bracket, or the empty string if the
	// bracket was never closed.
	Right string
}

func (err *BracketError) Error() string {
	if err.Right == "" {
		return errpos(err.Col, "missing closing delimiter for "+err.Left)
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

// TokenError is an error indicating a token left over after a complete
// expression, e.g. an unopened close bracket or a second "=". It implements
// InputError.
type TokenError struct {
	// Col is the position of the token.
	Col int
	// Text is the token.
	Text string
}

func (err *TokenError) Error() string {
	return errpos(err.Col, "unexpected "+strconv.Quote(err.Text))
}

func (err *TokenError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*NumberError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*TokenError)(nil)
	_ InputError = (*LexError)(nil)
	_ InputError = (*TypeError)(nil)
	_ InputError = (*DomainError)(nil)
	_ InputError = (*DefineError)(nil)
	_ InputError = (*DepthError)(nil)
)
