package arc

import (
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultMaxDepth is the evaluation depth limit of a context created without
// the MaxDepth option.
const DefaultMaxDepth = 10000

// Context is a context for evaluating expressions. It holds a stack of scopes
// whose outermost, global scope persists across evaluations. It is not safe
// to use a Context concurrently.
type Context struct {
	scopes   []map[string][]Value
	kernel   Kernel
	log      zerolog.Logger
	depth    int
	maxDepth int
	prelude  bool
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		vals []Value
	}
	kernelopt Kernel
	depthopt  int
	logopt    struct {
		log zerolog.Logger
	}
	preludeopt bool
)

func (varopt) ctxOption()     {}
func (kernelopt) ctxOption()  {}
func (depthopt) ctxOption()   {}
func (logopt) ctxOption()     {}
func (preludeopt) ctxOption() {}

// SetVar sets the values of a global variable in the context.
func SetVar(name string, vals ...Value) ContextOption {
	return varopt{name, vals}
}

// WithKernel sets the arithmetic kernel. The default is ReferenceKernel.
func WithKernel(k Kernel) ContextOption {
	return kernelopt(k)
}

// MaxDepth sets the limit on evaluation nesting. Non-positive values select
// DefaultMaxDepth.
func MaxDepth(n int) ContextOption {
	return depthopt(n)
}

// WithLogger sets the logger that receives debug events for evaluations,
// definitions, and function applications.
func WithLogger(log zerolog.Logger) ContextOption {
	return logopt{log}
}

// NoPrelude creates a context without the default definitions. It has no
// effect on Clone.
func NoPrelude() ContextOption {
	return preludeopt(false)
}

// NewContext creates a new evaluation context. Its global scope holds the
// prelude definitions unless NoPrelude is given.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{
		scopes:   []map[string][]Value{make(map[string][]Value)},
		log:      zerolog.Nop(),
		maxDepth: DefaultMaxDepth,
		prelude:  true,
	}
	for _, opt := range opts {
		if p, ok := opt.(preludeopt); ok {
			ctx.prelude = bool(p)
		}
	}
	if ctx.prelude {
		ctx.loadPrelude()
	}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it. The copy has
// its own global scope. Panics if ctx is evaluating an expression.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	ctx.idle("Clone")
	n := Context{
		scopes:   []map[string][]Value{maps.Clone(ctx.scopes[0])},
		kernel:   ctx.kernel,
		log:      ctx.log,
		maxDepth: ctx.maxDepth,
		prelude:  ctx.prelude,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.scopes[0][opt.name] = slices.Clone(opt.vals)
		case kernelopt:
			n.kernel = Kernel(opt)
		case depthopt:
			n.maxDepth = int(opt)
			if n.maxDepth <= 0 {
				n.maxDepth = DefaultMaxDepth
			}
		case logopt:
			n.log = opt.log
		case preludeopt:
			// Only meaningful to NewContext.
		default:
			panic("arc: unknown option type")
		}
	}
	return &n
}

// idle panics if the context is in the middle of an evaluation.
func (ctx *Context) idle(method string) {
	if len(ctx.scopes) != 1 {
		panic("arc: " + method + " on in-use context")
	}
}

// Eval evaluates an expression and returns all the values it denotes, in
// order and without duplicates. If evaluation fails, the global scope is
// left as it was before the call.
func (ctx *Context) Eval(e *Expr) ([]Value, error) {
	ctx.idle("Eval")
	saved := maps.Clone(ctx.scopes[0])
	ctx.depth = 0
	r, err := e.n.eval(ctx)
	if err != nil {
		ctx.scopes = ctx.scopes[:1]
		ctx.scopes[0] = saved
		ctx.log.Debug().Stringer("expr", e).Err(err).Msg("evaluation failed")
		return nil, err
	}
	ctx.log.Debug().Stringer("expr", e).Int("values", len(r)).Msg("evaluated")
	return r, nil
}

// EvalString parses and evaluates a line of source text.
func (ctx *Context) EvalString(src string) ([]Value, error) {
	e, err := ParseString(src)
	if err != nil {
		return nil, err
	}
	return ctx.Eval(e)
}

// Set sets the values of a global variable. Returns ctx for chaining. Calling
// Set while the context is being used to evaluate an expression panics.
func (ctx *Context) Set(name string, vals ...Value) *Context {
	ctx.idle("Set")
	ctx.scopes[0][name] = slices.Clone(vals)
	return ctx
}

// Lookup returns a copy of the values of a variable, searching scopes from
// innermost to outermost. The second result is false if no scope defines the
// name.
func (ctx *Context) Lookup(name string) ([]Value, bool) {
	for i := len(ctx.scopes) - 1; i >= 0; i-- {
		if v, ok := ctx.scopes[i][name]; ok {
			return slices.Clone(v), true
		}
	}
	return nil, false
}

// Names returns the sorted names defined in the global scope.
func (ctx *Context) Names() []string {
	names := make([]string, 0, len(ctx.scopes[0]))
	for k := range ctx.scopes[0] {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Reset clears the global scope, then restores the prelude if the context was
// created with it.
func (ctx *Context) Reset() {
	ctx.idle("Reset")
	ctx.scopes[0] = make(map[string][]Value)
	if ctx.prelude {
		ctx.loadPrelude()
	}
}

// Kernel returns the arithmetic kernel the context uses.
func (ctx *Context) Kernel() Kernel {
	return ctx.kernel
}

func (ctx *Context) push() {
	ctx.scopes = append(ctx.scopes, make(map[string][]Value))
}

func (ctx *Context) pop() {
	ctx.scopes[len(ctx.scopes)-1] = nil
	ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]
}

// bind defines a name in the innermost scope.
func (ctx *Context) bind(name string, vals []Value) {
	ctx.scopes[len(ctx.scopes)-1][name] = vals
}

// eval computes all the values the node denotes.
func (n *node) eval(ctx *Context) ([]Value, error) {
	ctx.depth++
	defer func() { ctx.depth-- }()
	if ctx.depth > ctx.maxDepth {
		return nil, &DepthError{Col: n.pos, Limit: ctx.maxDepth}
	}
	switch n.kind {
	case nodeNum:
		return []Value{Complex{n.num, n.den, 0, 1}}, nil
	case nodeImag:
		return []Value{Complex{0, 1, 1, 1}}, nil
	case nodeBool:
		return []Value{Bool(n.name == "true")}, nil
	case nodeConst:
		return []Value{n.val}, nil
	case nodeName:
		// An undefined name denotes nothing.
		v, _ := ctx.Lookup(n.name)
		return v, nil
	case nodeLambda:
		return []Value{Func{pattern: n.left, body: n.right}}, nil
	case nodeDefine:
		return ctx.define(n)
	case nodeCall:
		return ctx.call(n)
	case nodeTuple:
		t := make(Tuple, 0, len(n.elems))
		for _, e := range n.elems {
			v, err := e.eval(ctx)
			if err != nil {
				return nil, err
			}
			t = append(t, v...)
		}
		return []Value{t}, nil
	case nodePlusMinus:
		xs, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		neg, err := ctx.each(n, xs, opNeg)
		if err != nil {
			return nil, err
		}
		return dedup(append(slices.Clone(xs), neg...)), nil
	case nodeNeg:
		return ctx.unop(n, opNeg)
	case nodeNot:
		return ctx.unop(n, opNot)
	case nodePercent:
		return ctx.unop(n, opPercent)
	case nodeFactorial:
		return ctx.unop(n, opFactorial)
	case nodePow:
		return ctx.binop(n, opPow)
	case nodeCompose:
		return ctx.binop(n, opCompose)
	case nodeMul:
		return ctx.binop(n, opMul)
	case nodeDiv:
		return ctx.binop(n, opDiv)
	case nodeAdd:
		return ctx.binop(n, opAdd)
	case nodeSub:
		return ctx.binop(n, opSub)
	case nodeEq:
		return ctx.binop(n, opEq)
	case nodeNe:
		return ctx.binop(n, opNe)
	case nodeLt:
		return ctx.binop(n, opLt)
	case nodeGt:
		return ctx.binop(n, opGt)
	case nodeLe:
		return ctx.binop(n, opLe)
	case nodeGe:
		return ctx.binop(n, opGe)
	case nodeChain:
		return ctx.chain(n)
	case nodeAnd:
		return ctx.binop(n, opAnd)
	case nodeOr:
		return ctx.binop(n, opOr)
	default:
		panic("arc: invalid AST node " + n.kind.String())
	}
}

// define binds the value of the right side to the name on the left. A left
// side like f x y is a function head: f x y = e defines f = x => y => e.
func (ctx *Context) define(n *node) ([]Value, error) {
	lhs, rhs := n.left, n.right
	for lhs.kind == nodeCall {
		rhs = &node{kind: nodeLambda, pos: rhs.pos, left: lhs.right, right: rhs}
		lhs = lhs.left
	}
	if lhs.kind != nodeName {
		return nil, &DefineError{Col: lhs.pos, Target: lhs.String()}
	}
	vals, err := rhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	ctx.bind(lhs.name, vals)
	ctx.log.Debug().Str("name", lhs.name).Int("values", len(vals)).Int("scope", len(ctx.scopes)-1).Msg("defined")
	return slices.Clone(vals), nil
}

// call evaluates a juxtaposition. If the left side is exactly one function,
// the call applies it to the right side's expression. Otherwise it is a
// multiplication of every left value by every right value.
func (ctx *Context) call(n *node) ([]Value, error) {
	fs, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	if len(fs) == 1 {
		if f, ok := fs[0].(Func); ok {
			return ctx.apply(n, f, n.right)
		}
	}
	xs, err := n.right.eval(ctx)
	if err != nil {
		return nil, err
	}
	return ctx.cross(n, fs, xs, opCall)
}

// apply substitutes the argument expression into the function body and
// evaluates the result in a new scope.
func (ctx *Context) apply(n *node, f Func, arg *node) ([]Value, error) {
	with, err := ctx.bindings(n, f.pattern, arg)
	if err != nil {
		return nil, err
	}
	body := f.body
	if len(with) != 0 {
		body = body.subst(with)
	}
	ctx.log.Debug().Stringer("func", f).Stringer("arg", arg).Msg("apply")
	ctx.push()
	defer ctx.pop()
	return body.eval(ctx)
}

// bindings matches an argument expression against a pattern. A name binds
// the whole argument. A tuple pattern binds a tuple expression's elements
// pairwise, or else the elements of the single tuple value the argument
// evaluates to. Other patterns bind nothing.
func (ctx *Context) bindings(n, pat, arg *node) (map[string]*node, error) {
	switch pat.kind {
	case nodeName:
		return map[string]*node{pat.name: arg}, nil
	case nodeTuple:
		// handled below
	default:
		return nil, nil
	}
	elems := arg.elems
	if arg.kind != nodeTuple {
		vs, err := arg.eval(ctx)
		if err != nil {
			return nil, err
		}
		t, ok := Tuple(nil), false
		if len(vs) == 1 {
			t, ok = vs[0].(Tuple)
		}
		if !ok {
			return nil, &TypeError{Op: "application", Col: n.pos, Left: "tuple pattern", Right: valueKinds(vs)}
		}
		elems = make([]*node, len(t))
		for i, v := range t {
			elems[i] = &node{kind: nodeConst, pos: arg.pos, val: v}
		}
	}
	if len(elems) != len(pat.elems) {
		return nil, &TypeError{Op: "application", Col: n.pos, Left: "tuple pattern of " + plural(len(pat.elems)), Right: "tuple of " + plural(len(elems))}
	}
	with := make(map[string]*node)
	for i, p := range pat.elems {
		m, err := ctx.bindings(n, p, elems[i])
		if err != nil {
			return nil, err
		}
		for k, v := range m {
			with[k] = v
		}
	}
	return with, nil
}

func valueKinds(vs []Value) string {
	switch len(vs) {
	case 0:
		return "nothing"
	case 1:
		return KindOf(vs[0])
	default:
		return "multiple values"
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 element"
	}
	return strconv.Itoa(n) + " elements"
}

// Eval is a shortcut to parse an expression and return its values in a new
// context.
func Eval(src io.RuneScanner, opts ...ContextOption) ([]Value, error) {
	ctx := NewContext(opts...)
	a, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return ctx.Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) ([]Value, error) {
	return Eval(strings.NewReader(src), opts...)
}
