package arc

import (
	"errors"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Define  = Lambda [ '=' Lambda ]
// Lambda  = Tuple [ ( '=>' | '->' ) Lambda ]
// Tuple   = Or { ',' Or } [ ',' ]
// Or      = And { 'or' And }
// And     = Cmp { 'and' Cmp }
// Cmp     = Add { ( '==' | '!=' | '<' | '>' | '<=' | '>=' ) Add }
// Add     = Compose { ( '+' | '-' | '+/-' ) Compose }
// Compose = Mul [ '.' Compose ]
// Mul     = Pow { ( '*' | '/' ) Pow }
// Pow     = Prefix [ '^' Pow ]
// Prefix  = ( '-' | '+/-' | '+' | 'not' ) Prefix | Apply
// Apply   = Postfix { Postfix }
// Postfix = Atom { '!' | '%' }
// Atom    = num | name | 'true' | 'false' | 'i' | '(' Define ')' | '[' Define ']' | '{' Define '}'

// Expr is a parsed expression that can be evaluated with a context.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the list of free variable names in the expression.
	names []string
}

// Parse parses an expression so it can be evaluated with a context. The given
// options are applied in order.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	text, err := readsrc(src, p.stop)
	if err != nil {
		return nil, err
	}
	return parse(text)
}

// ParseString is a shortcut to parse a string expression.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// readsrc reads runes up to EOF or the first rune in stop.
func readsrc(src io.RuneScanner, stop string) ([]rune, error) {
	var v []rune
	for {
		r, _, err := src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return v, nil
			}
			return nil, err
		}
		if strings.ContainsRune(stop, r) {
			return v, nil
		}
		v = append(v, r)
	}
}

func parse(src []rune) (*Expr, error) {
	scan := lex(src)
	n, err := parsedefine(scan)
	if err != nil {
		return nil, err
	}
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenEOF {
		return nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	names := make(map[string]bool)
	n.free(names, make(map[string]int))
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(names)),
	}
	for k := range names {
		ex.names = append(ex.names, k)
	}
	slices.Sort(ex.names)
	return &ex, nil
}

func binary(kind nodeKind, left, right *node) *node {
	return &node{kind: kind, pos: right.pos, left: left, right: right}
}

func unary(kind nodeKind, x *node) *node {
	return &node{kind: kind, pos: x.pos, left: x}
}

// parsedefine parses a definition, or whatever expression stands in its place.
// There is at most one = in an expression.
func parsedefine(scan *lexer) (*node, error) {
	lhs, err := parselambda(scan)
	if err != nil {
		return nil, err
	}
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenAssign {
		scan.push(tok)
		return lhs, nil
	}
	rhs, err := parselambda(scan)
	if err != nil {
		return nil, err
	}
	return binary(nodeDefine, lhs, rhs), nil
}

func parselambda(scan *lexer) (*node, error) {
	pat, err := parsetuple(scan)
	if err != nil {
		return nil, err
	}
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenFatArrow && tok.kind != tokenArrow {
		scan.push(tok)
		return pat, nil
	}
	body, err := parselambda(scan)
	if err != nil {
		return nil, err
	}
	return binary(nodeLambda, pat, body), nil
}

// parsetuple parses a comma-separated list. A single element without a comma
// is not a tuple. A comma before a close bracket or the end of input ends the
// tuple without adding an element.
func parsetuple(scan *lexer) (*node, error) {
	first, err := parseor(scan)
	if err != nil {
		return nil, err
	}
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenComma {
		scan.push(tok)
		return first, nil
	}
	n := &node{kind: nodeTuple, pos: tok.end, elems: []*node{first}}
	for {
		tok, err := scan.peek()
		if err != nil {
			return nil, err
		}
		if closes(tok.kind) {
			return n, nil
		}
		e, err := parseor(scan)
		if err != nil {
			return nil, err
		}
		n.elems = append(n.elems, e)
		n.pos = e.pos
		tok, err = scan.next()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokenComma {
			scan.push(tok)
			return n, nil
		}
		n.pos = tok.end
	}
}

func parseor(scan *lexer) (*node, error) {
	return parsekeyword(scan, "or", nodeOr, parseand)
}

func parseand(scan *lexer) (*node, error) {
	return parsekeyword(scan, "and", nodeAnd, parsecompare)
}

// parsekeyword parses a left-associative chain of operands joined by a
// keyword operator.
func parsekeyword(scan *lexer, kw string, kind nodeKind, operand func(*lexer) (*node, error)) (*node, error) {
	n, err := operand(scan)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokenIdent || tok.text != kw {
			scan.push(tok)
			return n, nil
		}
		rhs, err := operand(scan)
		if err != nil {
			return nil, err
		}
		n = binary(kind, n, rhs)
	}
}

var cmpops = map[tokenKind]nodeKind{
	tokenEq: nodeEq,
	tokenNe: nodeNe,
	tokenLt: nodeLt,
	tokenGt: nodeGt,
	tokenLe: nodeLe,
	tokenGe: nodeGe,
}

// parsecompare parses comparisons. A chain a < b < c becomes one Chain node
// so that each operand is evaluated once.
func parsecompare(scan *lexer) (*node, error) {
	left, err := parseadd(scan)
	if err != nil {
		return nil, err
	}
	elems := []*node{left}
	var ops []nodeKind
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		kind, ok := cmpops[tok.kind]
		if !ok {
			scan.push(tok)
			break
		}
		right, err := parseadd(scan)
		if err != nil {
			return nil, err
		}
		elems = append(elems, right)
		ops = append(ops, kind)
	}
	switch len(ops) {
	case 0:
		return left, nil
	case 1:
		return binary(ops[0], elems[0], elems[1]), nil
	default:
		return &node{kind: nodeChain, pos: elems[len(elems)-1].pos, elems: elems, ops: ops}, nil
	}
}

func parseadd(scan *lexer) (*node, error) {
	n, err := parsecompose(scan)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		var kind nodeKind
		switch tok.kind {
		case tokenPlus, tokenPlusMinus:
			kind = nodeAdd
		case tokenMinus:
			kind = nodeSub
		default:
			scan.push(tok)
			return n, nil
		}
		rhs, err := parsecompose(scan)
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenPlusMinus {
			// x +/- y -> x + (+/-y)
			rhs = unary(nodePlusMinus, rhs)
		}
		n = binary(kind, n, rhs)
	}
}

// parsecompose parses right-associative function composition.
func parsecompose(scan *lexer) (*node, error) {
	n, err := parsemul(scan)
	if err != nil {
		return nil, err
	}
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenDot {
		scan.push(tok)
		return n, nil
	}
	rhs, err := parsecompose(scan)
	if err != nil {
		return nil, err
	}
	return binary(nodeCompose, n, rhs), nil
}

func parsemul(scan *lexer) (*node, error) {
	n, err := parsepow(scan)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		var kind nodeKind
		switch tok.kind {
		case tokenStar:
			kind = nodeMul
		case tokenSlash:
			kind = nodeDiv
		default:
			scan.push(tok)
			return n, nil
		}
		rhs, err := parsepow(scan)
		if err != nil {
			return nil, err
		}
		n = binary(kind, n, rhs)
	}
}

// parsepow parses right-associative exponentiation.
func parsepow(scan *lexer) (*node, error) {
	n, err := parseprefix(scan)
	if err != nil {
		return nil, err
	}
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenCaret {
		scan.push(tok)
		return n, nil
	}
	rhs, err := parsepow(scan)
	if err != nil {
		return nil, err
	}
	return binary(nodePow, n, rhs), nil
}

func parseprefix(scan *lexer) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	var kind nodeKind
	switch {
	case tok.kind == tokenMinus:
		kind = nodeNeg
	case tok.kind == tokenPlusMinus:
		kind = nodePlusMinus
	case tok.kind == tokenPlus:
		// Unary plus is the operand itself.
		return parseprefix(scan)
	case tok.kind == tokenIdent && tok.text == "not":
		kind = nodeNot
	default:
		scan.push(tok)
		return parseapply(scan)
	}
	x, err := parseprefix(scan)
	if err != nil {
		return nil, err
	}
	return unary(kind, x), nil
}

// parseapply parses juxtaposed terms. "f x" and "2 x" both become calls; the
// evaluator decides whether a call is an application or a multiplication.
func parseapply(scan *lexer) (*node, error) {
	n, err := parsepostfix(scan)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := scan.peek()
		if err != nil {
			return nil, err
		}
		if !startsTerm(tok) {
			return n, nil
		}
		rhs, err := parsepostfix(scan)
		if err != nil {
			return nil, err
		}
		n = binary(nodeCall, n, rhs)
	}
}

func parsepostfix(scan *lexer) (*node, error) {
	n, err := parseatom(scan)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenBang:
			n = &node{kind: nodeFactorial, pos: tok.end, left: n}
		case tokenPercent:
			n = &node{kind: nodePercent, pos: tok.end, left: n}
		default:
			scan.push(tok)
			return n, nil
		}
	}
}

func parseatom(scan *lexer) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		num, den, ok := parsenum(tok.text)
		if !ok {
			return nil, &NumberError{Col: tok.pos, Found: tok.text, Range: true}
		}
		return &node{kind: nodeNum, pos: tok.end, num: num, den: den}, nil
	case tokenIdent:
		switch tok.text {
		case "true", "false":
			return &node{kind: nodeBool, pos: tok.end, name: tok.text}, nil
		case "i":
			return &node{kind: nodeImag, pos: tok.end}, nil
		case "and", "or", "not":
			return nil, &NumberError{Col: tok.pos, Found: tok.text}
		}
		return &node{kind: nodeName, pos: tok.end, name: tok.text}, nil
	case tokenLParen, tokenLBracket, tokenLBrace:
		match := rightbracket(tok.text)
		n, err := parsedefine(scan)
		if err != nil {
			return nil, err
		}
		end, err := scan.next()
		if err != nil {
			return nil, err
		}
		if end.text != CloseBrackets[match:match+1] {
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		n.pos = end.end
		return n, nil
	default:
		return nil, &NumberError{Col: tok.pos, Found: tok.text}
	}
}

// parsenum converts a numeral to a dividend and a power-of-ten divisor.
// Underscores are separators. The result is not ok if either part overflows.
func parsenum(text string) (num, den int64, ok bool) {
	text = strings.ReplaceAll(text, "_", "")
	whole, frac, _ := strings.Cut(text, ".")
	num, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	den = 1
	for range frac {
		if den > math.MaxInt64/10 {
			return 0, 0, false
		}
		den *= 10
	}
	return num, den, true
}

// startsTerm reports whether a token can begin an operand of an implicit
// application.
func startsTerm(tok lexToken) bool {
	switch tok.kind {
	case tokenNum, tokenLParen, tokenLBracket, tokenLBrace:
		return true
	case tokenIdent:
		switch tok.text {
		case "and", "or", "not":
			return false
		}
		return true
	default:
		return false
	}
}

// closes reports whether a token kind ends a bracketed subexpression.
func closes(k tokenKind) bool {
	switch k {
	case tokenRParen, tokenRBracket, tokenRBrace, tokenEOF:
		return true
	default:
		return false
	}
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("arc: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return OpenBrackets[right : right+1]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket index that the
// expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok lexToken, match int) error {
	switch {
	case match == -1:
		// Anything but EOF at the top level is left over.
		return &TokenError{Col: tok.pos, Text: tok.text}
	case tok.kind == tokenRParen, tok.kind == tokenRBracket, tok.kind == tokenRBrace:
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: tok.text}
	default:
		// EOF or some other token where the close bracket belongs.
		return &BracketError{Col: tok.pos, Left: leftbracket(match)}
	}
}

// Vars returns the names of the free variables in the expression, sorted.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false)
	return b.String()
}
