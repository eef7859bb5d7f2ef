package arc

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

// diff finds the first pre-order node of n that differs from m, or nil, nil
// if the two ASTs are equal. Positions are ignored.
func (n *node) diff(m *node) (*node, *node) {
	if n == nil || m == nil {
		if n != m {
			return n, m
		}
		return nil, nil
	}
	if n.kind != m.kind || n.name != m.name || n.num != m.num || n.den != m.den || len(n.elems) != len(m.elems) || !reflect.DeepEqual(n.ops, m.ops) {
		return n, m
	}
	if n.kind == nodeNone {
		panic(fmt.Errorf("invalid node kind: n=%+v m=%+v", n, m))
	}
	for i := range n.elems {
		if d, e := n.elems[i].diff(m.elems[i]); d != nil || e != nil {
			return d, e
		}
	}
	if d, e := n.left.diff(m.left); d != nil || e != nil {
		return d, e
	}
	return n.right.diff(m.right)
}

// haskind checks whether a parse tree contains a node of the given type.
func (n *node) haskind(k nodeKind) bool {
	if n == nil {
		return false
	}
	if n.kind == k {
		return true
	}
	for _, e := range n.elems {
		if e.haskind(k) {
			return true
		}
	}
	return n.left.haskind(k) || n.right.haskind(k)
}

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"paren", "(x)", "x"},
		{"square", "[x]", "x"},
		{"curly", "{x}", "x"},
		{"multi", "([{{[((x))]}}])", "x"},

		{"plus", "+x", "x"},
		{"neg", "-x", "-(x)"},
		{"negneg", "--x", "-(-x)"},
		{"add", "x+y+z", "(x+y)+z"},
		{"sub", "x-y-z", "(x-y)-z"},
		{"muldiv", "x*y/z", "(x*y)/z"},
		{"pow", "x^y^z", "x^(y^z)"},
		{"negpow", "-x^y", "(-x)^y"},
		{"powneg", "x^-y", "x^(-y)"},
		{"desc", "w^x*y+z", "((w^x)*y)+z"},
		{"asc", "w+x*y^z", "w+(x*(y^z))"},

		{"terms", "x y z", "(x y) z"},
		{"numterm", "2x", "2 x"},
		{"applypow", "f x^2", "(f x)^2"},
		{"applyparen", "f(x)", "f x"},
		{"applytuple", "f(x, y)", "f (x, y)"},
		{"postfix", "x!%", "(x!)%"},
		{"applypostfix", "2x!", "2 (x!)"},

		{"compose", "f . g . h", "f . (g . h)"},
		{"composeapply", "f . g x", "f . (g x)"},
		{"composemul", "f . g * h", "f . (g * h)"},

		{"plusminus", "+/-x", "+/-(x)"},
		{"infixplusminus", "x +/- y", "x + (+/-y)"},
		{"plusminuschain", "x +/- y + z", "(x + +/-y) + z"},

		{"cmp", "a < b + c", "a < (b + c)"},
		{"cmpchain", "a < b <= c", "[a] < (b) <= {c}"},
		{"cmpchainparts", "a + 1 < b c == not d", "(a + 1) < (b c) == (not d)"},
		{"cmpchain3", "a == b != c > d", "(a) == (b) != (c) > (d)"},
		{"andor", "a and b or c and d", "(a and b) or (c and d)"},
		{"not", "not a and b", "(not a) and b"},
		{"notnot", "not not a", "not (not a)"},

		{"tuple", "x, y", "(x, y)"},
		{"tuple1", "x,", "(x,)"},
		{"tupletrailing", "(1, 2,)", "(1, 2)"},
		{"tuplecmp", "x == y, z", "(x == y), z"},
		{"nested", "(x, y), z", "((x, y)), z"},

		{"lambda", "x => y => z", "x => (y => z)"},
		{"arrow", "x -> y", "x => y"},
		{"lambdatuple", "x, y => x", "(x, y) => x"},
		{"define", "f x = x + 1", "(f x) = (x + 1)"},
		{"definelambda", "f = x => x", "f = (x => x)"},
		{"definecurried", "f x y = x y", "((f x) y) = (x y)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.a)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.a, err)
			}
			b, err := ParseString(c.b)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.b, err)
			}
			d, e := a.n.diff(b.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\t%q parses %v has %v\n\t%q parses %v has %v", c.a, a.n, d, c.b, b.n, e)
			}
		})
	}
}

func TestParseNumbers(t *testing.T) {
	cases := []struct {
		src      string
		num, den int64
	}{
		{"0", 0, 1},
		{"7", 7, 1},
		{"007", 7, 1},
		{"1.5", 15, 10},
		{"0.25", 25, 100},
		{"1.50", 150, 100},
		{"1_000", 1000, 1},
		{"1_000.000_1", 10000001, 10000},
		{"9223372036854775807", 9223372036854775807, 1},
	}
	for _, c := range cases {
		a, err := ParseString(c.src)
		if err != nil {
			t.Errorf("%q didn't parse: %v", c.src, err)
			continue
		}
		if a.n.kind != nodeNum || a.n.num != c.num || a.n.den != c.den {
			t.Errorf("%q parsed to %v %d/%d, want %d/%d", c.src, a.n.kind, a.n.num, a.n.den, c.num, c.den)
		}
	}
}

func TestParseLiterals(t *testing.T) {
	cases := []struct {
		src  string
		kind nodeKind
	}{
		{"i", nodeImag},
		{"true", nodeBool},
		{"false", nodeBool},
		{"x", nodeName},
		{"π", nodeName},
		{"2i", nodeCall},
	}
	for _, c := range cases {
		a, err := ParseString(c.src)
		if err != nil {
			t.Errorf("%q didn't parse: %v", c.src, err)
			continue
		}
		if a.n.kind != c.kind {
			t.Errorf("%q parsed to %v, want %v", c.src, a.n.kind, c.kind)
		}
	}
}

func TestExprString(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x", "(x)"},
		{"(((x)))", "(x)"},
		{"1.50", "(1.50)"},
		{"0.05", "(0.05)"},
		{"x+y", "([x] + [y])"},
		{"x+y*z", "([x] + [(y) * (z)])"},
		{"-x", "(-[x])"},
		{"+/-x", "(+/-[x])"},
		{"not p", "(not [p])"},
		{"x!", "([x]!)"},
		{"x, y", "([x], [y])"},
		{"x,", "([x],)"},
		{"f x = x", "([(f) (x)] = [x])"},
		{"x => i", "([x] => [i])"},
		{"a < b", "([a] < [b])"},
		{"a < b <= c", "([a] < [b] <= [c])"},
	}
	for _, c := range cases {
		a, err := ParseString(c.src)
		if err != nil {
			t.Errorf("%q didn't parse: %v", c.src, err)
			continue
		}
		if got := a.String(); got != c.want {
			t.Errorf("%q formatted as %q, want %q", c.src, got, c.want)
		}
		b, err := ParseString(a.String())
		if err != nil {
			t.Errorf("%q formatted as %q, which doesn't parse: %v", c.src, a, err)
			continue
		}
		if !a.n.equal(b.n) {
			t.Errorf("%q formatted as %q, which parses to %v", c.src, a, b)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  InputError
		pos  int
		res  []string
	}{
		{"empty", "", new(NumberError), 1, []string{`(?i)\bnumber expected\b`, `(?i)\bend\b`}},
		{"operand", "x +", new(NumberError), 4, []string{`(?i)\bnumber expected\b`, `(?i)\bend\b`}},
		{"pow", "x ^", new(NumberError), 4, []string{`(?i)\bnumber expected\b`}},
		{"emptyparen", "()", new(NumberError), 2, []string{`(?i)\bnumber expected\b`, `"\)"`}},
		{"nonunary", "*x", new(NumberError), 1, []string{`"\*"`}},
		{"keyword", "and", new(NumberError), 1, []string{`"and"`}},
		{"quote", "'", new(NumberError), 1, []string{`"'"`}},
		{"big", "99999999999999999999", new(NumberError), 1, []string{`(?i)\brange\b`}},
		{"smallfrac", "0.0000000000000000001", new(NumberError), 1, []string{`(?i)\brange\b`}},
		{"left", "(x", new(BracketError), 3, []string{`(?i)\bmissing closing delimiter\b`, `\(`}},
		{"left-inner", "((x)", new(BracketError), 5, []string{`(?i)\bmissing closing delimiter\b`, `\(`}},
		{"mismatch", "(x]", new(BracketError), 3, []string{`(?i)\bbracket\b`, `\(`, `]`}},
		{"mismatch-curly", "{x)", new(BracketError), 3, []string{`(?i)\bbracket\b`, `\{`, `\)`}},
		{"right", "x)", new(TokenError), 2, []string{`"\)"`}},
		{"right-terms", "x y)", new(TokenError), 4, []string{`"\)"`}},
		{"define2", "x = y = z", new(TokenError), 7, []string{`"="`}},
		{"lexer", "2^(-$)", new(LexError), 5, []string{`\$`}},
		{"bar", "|x|", new(NumberError), 1, []string{`"\|"`}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if a != nil {
				t.Errorf("%q parsed non-nil to %v", c.src, a.n)
			}
			if reflect.TypeOf(err) != reflect.TypeOf(c.err) {
				t.Fatalf("wrong error type from %q: want %T, got %T (%v)", c.src, c.err, err, err)
			}
			if p := err.(InputError).Pos(); p != c.pos {
				t.Errorf("error from %q at %d, want %d", c.src, p, c.pos)
			}
			msg := err.Error()
			for _, re := range c.res {
				if !regexp.MustCompile(re).MatchString(msg) {
					t.Errorf("error message %q does not match %s", msg, re)
				}
			}
		})
	}
}

func TestStopOn(t *testing.T) {
	cases := []struct {
		name string
		src  string
		stop string
		good [][]nodeKind
		bad  [][]nodeKind
	}{
		{"newline", "x\ny", "\n", [][]nodeKind{{nodeName}, {nodeName}}, [][]nodeKind{{nodeCall}, {nodeCall}}},
		{"semi", "x;y", ";", [][]nodeKind{{nodeName}, {nodeName}}, [][]nodeKind{{nodeCall}, {nodeCall}}},
		{"both", "x = 1; x\nx + 1", ";\n", [][]nodeKind{{nodeDefine}, {nodeName}, {nodeAdd}}, [][]nodeKind{{nodeCall}, {nodeDefine}, {nodeDefine}}},
		{"brackets", "(x\ny)", "\n", nil, nil},
	}
	for _, c := range cases {
		if len(c.good) != len(c.bad) {
			t.Fatalf("case %q has different sizes of good and bad: %v vs %v", c.name, c.good, c.bad)
		}
		t.Run(c.name, func(t *testing.T) {
			src := strings.NewReader(c.src)
			for i := range c.good {
				a, err := Parse(src, StopOn([]rune(c.stop)...))
				if err != nil {
					t.Errorf("%q iter %d didn't parse: %v", c.src, i, err)
					continue
				}
				for _, good := range c.good[i] {
					if !a.n.haskind(good) {
						t.Errorf("%q iter %d didn't have %v", c.src, i, good)
					}
				}
				for _, bad := range c.bad[i] {
					if a.n.haskind(bad) {
						t.Errorf("%q iter %d had %v", c.src, i, bad)
					}
				}
			}
			if len(c.good) == 0 {
				// A stop inside brackets ends the input early.
				if _, err := Parse(src, StopOn([]rune(c.stop)...)); err == nil {
					t.Errorf("%q parsed across a stop", c.src)
				}
				return
			}
			a, err := Parse(src)
			if _, ok := err.(*NumberError); !ok {
				t.Errorf("%q after %d iters parsed with error %#v and parse tree %v", c.src, len(c.good), err, a)
			}
		})
	}
}

func TestStopOnInvalid(t *testing.T) {
	for _, r := range "x,.0" {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("StopOn(%q) didn't panic", r)
				}
			}()
			StopOn(r)
		}()
	}
}

func TestVars(t *testing.T) {
	cases := []struct {
		name string
		src  string
		vars []string
	}{
		{"none", "1+2+3", nil},
		{"one", "1+2+x", []string{"x"}},
		{"sort", "z+y+x+w+v+u+t+s+r+q+p+o+n+m+l+k+j+h+g+f+e+d+c+b+a", strings.Fields("a b c d e f g h j k l m n o p q r s t u v w x y z")},
		{"reuse", "a+b+c+b+a", []string{"a", "b", "c"}},
		{"literals", "i + true + x", []string{"x"}},
		{"lambda", "x => x + y", []string{"y"}},
		{"tuplelambda", "(x, y) => x y z", []string{"z"}},
		{"shadow", "x + (x => x)", []string{"x"}},
		{"define", "f x = x + g", []string{"g"}},
		{"chain", "c < b < a", []string{"a", "b", "c"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("%q didn't parse: %v", c.src, err)
			}
			vars := a.Vars()
			if !reflect.DeepEqual(vars, c.vars) {
				t.Errorf("%q gave wrong variable names:\n\twant %q\n\tgot  %q", c.src, c.vars, vars)
			}
		})
	}
}

func TestParseChain(t *testing.T) {
	cases := []struct {
		src   string
		kind  nodeKind
		elems int
		ops   []nodeKind
	}{
		{"a < b", nodeLt, 0, nil},
		{"a < b < c", nodeChain, 3, []nodeKind{nodeLt, nodeLt}},
		{"a == b != c >= d", nodeChain, 4, []nodeKind{nodeEq, nodeNe, nodeGe}},
		{"(a < b) < c", nodeLt, 0, nil},
		{"a < b and b < c", nodeAnd, 0, nil},
	}
	for _, c := range cases {
		a, err := ParseString(c.src)
		if err != nil {
			t.Errorf("%q didn't parse: %v", c.src, err)
			continue
		}
		if a.n.kind != c.kind || len(a.n.elems) != c.elems || !reflect.DeepEqual(a.n.ops, c.ops) {
			t.Errorf("%q parsed as %v (%v) with %d operands and comparisons %v", c.src, a, a.n.kind, len(a.n.elems), a.n.ops)
		}
	}
}

func TestSubst(t *testing.T) {
	cases := []struct {
		name string
		src  string
		with map[string]string
		want string
	}{
		{"simple", "x + y", map[string]string{"x": "2"}, "2 + y"},
		{"all", "x x", map[string]string{"x": "(a + b)"}, "(a + b) (a + b)"},
		{"simultaneous", "(x, y)", map[string]string{"x": "y", "y": "x"}, "(y, x)"},
		{"shadowed", "x => x + y", map[string]string{"x": "1", "y": "2"}, "x => x + 2"},
		{"tupleshadow", "(x, y) => x + z", map[string]string{"x": "1", "z": "3"}, "(x, y) => x + 3"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if err != nil {
				t.Fatal(err)
			}
			with := make(map[string]*node, len(c.with))
			for k, v := range c.with {
				e, err := ParseString(v)
				if err != nil {
					t.Fatal(err)
				}
				with[k] = e.n
			}
			want, err := ParseString(c.want)
			if err != nil {
				t.Fatal(err)
			}
			orig := a.n.clone()
			got := a.n.subst(with)
			if d, e := got.diff(want.n); d != nil || e != nil {
				t.Errorf("wrong substitution:\n\tgot  %v has %v\n\twant %v has %v", got, d, want.n, e)
			}
			if !a.n.equal(orig) {
				t.Errorf("substitution modified the original tree: %v", a.n)
			}
		})
	}
}

func BenchmarkParse(b *testing.B) {
	cases := []struct {
		name string
		src  string
	}{
		{"descasc", "w^x*y+z+a*b^c"},
		{"ascdesc", "w+x*y^z^a*b+c"},
		{"nums", "1^1.1*1.1+1.1+0.1*1_000.5"},
		{"define", "f (x, y) = x +/- y"},
		{"cmpchain", "a < b <= c < d"},
	}
	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			var src strings.Reader
			for i := 0; i < b.N; i++ {
				src.Reset(c.src)
				Parse(&src)
			}
		})
	}
}
