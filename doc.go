// Package arc implements an exact calculator over complex numbers with
// rational parts.
//
// The syntax is meant to look like math written in notes. "2 x y" is a
// multiplication of three terms, and so is "{2}[x](y)". When the left side of
// a juxtaposition is a function, it is an application instead: "sq 3" is 9.
// Functions are written "x => x + 1" or defined with a head, as in
// "f x = x + 1". Curried heads like "f x y = x y" define nested functions.
// Tuples are comma-separated, and a tuple pattern destructures its argument:
// "avg (x, y) = (x + y)/2".
//
// Every expression denotes a list of values rather than a single one. The
// operator +/- produces both signs, so "1 +/- 1" is the list 2, 0. Binary
// operators combine every value on the left with every value on the right and
// drop duplicates. A name that is not defined denotes nothing.
//
// Arithmetic is exact. A number is held as A/B + (C/D)i with 64-bit parts,
// and results are not reduced until they are printed. The Kernel type selects
// the formulas used for addition and division.
//
// Contexts hold the variable definitions that persist between lines. A line
// that fails to evaluate leaves its context's definitions as they were.
package arc
