package arc

import (
	"strconv"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	// pos is the 1-based column of the first rune of the token.
	pos int
	// end is the cursor just past the token.
	end int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a numeral, digits with at most one decimal point.
	tokenNum
	// tokenIdent is a variable name or keyword.
	tokenIdent

	tokenAssign    // =
	tokenEq        // ==
	tokenNe        // !=
	tokenLt        // <
	tokenGt        // >
	tokenLe        // <=
	tokenGe        // >=
	tokenLParen    // (
	tokenRParen    // )
	tokenLBrace    // {
	tokenRBrace    // }
	tokenLBracket  // [
	tokenRBracket  // ]
	tokenBar       // |
	tokenPlus      // +
	tokenMinus     // -
	tokenStar      // *
	tokenSlash     // /
	tokenCaret     // ^
	tokenPercent   // %
	tokenBang      // !
	tokenDot       // .
	tokenArrow     // ->
	tokenFatArrow  // =>
	tokenPlusMinus // +/-
	tokenComma     // ,
	tokenQuote     // '
	tokenColon     // :
)

var tokenNames = [...]string{
	tokenNone:      "None",
	tokenEOF:       "EOF",
	tokenNum:       "Num",
	tokenIdent:     "Ident",
	tokenAssign:    "Assign",
	tokenEq:        "Eq",
	tokenNe:        "Ne",
	tokenLt:        "Lt",
	tokenGt:        "Gt",
	tokenLe:        "Le",
	tokenGe:        "Ge",
	tokenLParen:    "LParen",
	tokenRParen:    "RParen",
	tokenLBrace:    "LBrace",
	tokenRBrace:    "RBrace",
	tokenLBracket:  "LBracket",
	tokenRBracket:  "RBracket",
	tokenBar:       "Bar",
	tokenPlus:      "Plus",
	tokenMinus:     "Minus",
	tokenStar:      "Star",
	tokenSlash:     "Slash",
	tokenCaret:     "Caret",
	tokenPercent:   "Percent",
	tokenBang:      "Bang",
	tokenDot:       "Dot",
	tokenArrow:     "Arrow",
	tokenFatArrow:  "FatArrow",
	tokenPlusMinus: "PlusMinus",
	tokenComma:     "Comma",
	tokenQuote:     "Quote",
	tokenColon:     "Colon",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// symbols lists the operator and punctuation lexemes. Longer lexemes come
// before their prefixes so that the first match is the longest.
var symbols = []struct {
	text string
	kind tokenKind
}{
	{"+/-", tokenPlusMinus},
	{"->", tokenArrow},
	{"=>", tokenFatArrow},
	{"==", tokenEq},
	{"<=", tokenLe},
	{">=", tokenGe},
	{"!=", tokenNe},
	{"=", tokenAssign},
	{":", tokenColon},
	{"(", tokenLParen},
	{")", tokenRParen},
	{"{", tokenLBrace},
	{"}", tokenRBrace},
	{"[", tokenLBracket},
	{"]", tokenRBracket},
	{"<", tokenLt},
	{">", tokenGt},
	{"|", tokenBar},
	{"+", tokenPlus},
	{"-", tokenMinus},
	{"*", tokenStar},
	{"/", tokenSlash},
	{"^", tokenCaret},
	{"%", tokenPercent},
	{"!", tokenBang},
	{".", tokenDot},
	{",", tokenComma},
	{"'", tokenQuote},
}

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in CloseBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

type lexer struct {
	src []rune
	cur int
	p   lexToken
}

func lex(src []rune) *lexer {
	return &lexer{src: src}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("arc: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("arc: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// peek returns the next token without consuming it.
func (l *lexer) peek() (lexToken, error) {
	tok, err := l.next()
	if err != nil {
		return tok, err
	}
	l.push(tok)
	return tok, nil
}

// at reports whether the rune k places past the cursor satisfies f.
func (l *lexer) at(k int, f func(rune) bool) bool {
	i := l.cur + k
	return i < len(l.src) && f(l.src[i])
}

// next scans the next token from the input. At the end of the input, the
// result is an EOF token, as many times as next is called. An unrecognized
// rune is consumed and reported as a LexError.
func (l *lexer) next() (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	for l.cur < len(l.src) && unicode.IsSpace(l.src[l.cur]) {
		l.cur++
	}
	tok := lexToken{pos: l.cur + 1}
	switch {
	case l.cur >= len(l.src):
		tok.kind = tokenEOF
	case isDigit(l.src[l.cur]):
		tok.kind = tokenNum
		tok.text = l.scanNum()
	case isIdentStart(l.src[l.cur]):
		tok.kind = tokenIdent
		tok.text = l.scanIdent()
	default:
		kind, text := l.scanSymbol()
		if kind == tokenNone {
			tok.end = l.cur
			return tok, &LexError{Text: text, Col: tok.pos}
		}
		tok.kind = kind
		tok.text = text
	}
	tok.end = l.cur
	return tok, nil
}

// scanNum scans digits and underscores with at most one decimal point, which
// must be followed by a digit to belong to the number.
func (l *lexer) scanNum() string {
	start := l.cur
	dot := false
	for l.cur < len(l.src) {
		r := l.src[l.cur]
		switch {
		case isDigit(r), r == '_':
		case r == '.' && !dot && l.at(1, isDigit):
			dot = true
		default:
			return string(l.src[start:l.cur])
		}
		l.cur++
	}
	return string(l.src[start:l.cur])
}

func (l *lexer) scanIdent() string {
	start := l.cur
	for l.cur < len(l.src) {
		r := l.src[l.cur]
		if !isIdentStart(r) && !unicode.IsDigit(r) {
			break
		}
		l.cur++
	}
	return string(l.src[start:l.cur])
}

// scanSymbol scans an operator or punctuation lexeme. If none matches, the
// result kind is tokenNone and the offending rune is consumed.
func (l *lexer) scanSymbol() (tokenKind, string) {
	rest := l.src[l.cur:]
	for _, s := range symbols {
		if hasPrefix(rest, s.text) {
			l.cur += len(s.text)
			return s.kind, s.text
		}
	}
	l.cur++
	return tokenNone, string(rest[0])
}

// hasPrefix reports whether the runes start with the ASCII text s.
func hasPrefix(r []rune, s string) bool {
	if len(r) < len(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if r[i] != rune(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// LexError indicates an input symbol that matches no token. It implements
// InputError.
type LexError struct {
	// Text is the unrecognized symbol.
	Text string
	// Col is the 1-based position of the symbol.
	Col int
}

func (err *LexError) Error() string {
	return errpos(err.Col, "unrecognized symbol "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int {
	return err.Col
}
