package arc

import (
	"slices"
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression. Nodes are never
// shared between trees; operations that rewrite a tree copy it.
type node struct {
	kind nodeKind
	// pos is the cursor position at which the node finished parsing.
	pos int

	name     string
	num, den int64
	val      Value

	left  *node
	right *node
	elems []*node
	// ops are the comparisons between adjacent elems of a chain.
	ops []nodeKind
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum   // num/den
	nodeImag  // i
	nodeBool  // name is "true" or "false"
	nodeName  // lookup(name)
	nodeConst // val, an already evaluated value

	nodeCall      // apply left to right, or multiply
	nodePercent   // left%
	nodeFactorial // left!
	nodePow       // left ^ right
	nodeCompose   // left . right
	nodeMul       // left * right
	nodeDiv       // left / right
	nodeNeg       // -left
	nodePlusMinus // +/- left
	nodeAdd       // left + right
	nodeSub       // left - right
	nodeTuple     // elems
	nodeEq        // left == right
	nodeNe        // left != right
	nodeLt        // left < right
	nodeGt        // left > right
	nodeLe        // left <= right
	nodeGe        // left >= right
	nodeChain     // elems[0] ops[0] elems[1] ops[1] elems[2] ...
	nodeAnd       // left and right
	nodeOr        // left or right
	nodeNot       // not left
	nodeLambda    // left => right
	nodeDefine    // left = right
)

var nodeNames = [...]string{
	nodeNone:      "None",
	nodeNum:       "Num",
	nodeImag:      "Imag",
	nodeBool:      "Bool",
	nodeName:      "Name",
	nodeConst:     "Const",
	nodeCall:      "Call",
	nodePercent:   "Percent",
	nodeFactorial: "Factorial",
	nodePow:       "Pow",
	nodeCompose:   "Compose",
	nodeMul:       "Mul",
	nodeDiv:       "Div",
	nodeNeg:       "Neg",
	nodePlusMinus: "PlusMinus",
	nodeAdd:       "Add",
	nodeSub:       "Sub",
	nodeTuple:     "Tuple",
	nodeEq:        "Eq",
	nodeNe:        "Ne",
	nodeLt:        "Lt",
	nodeGt:        "Gt",
	nodeLe:        "Le",
	nodeGe:        "Ge",
	nodeChain:     "Chain",
	nodeAnd:       "And",
	nodeOr:        "Or",
	nodeNot:       "Not",
	nodeLambda:    "Lambda",
	nodeDefine:    "Define",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeNames[k]
}

// binops maps binary node kinds to their operator text.
var binops = map[nodeKind]string{
	nodeCall:    " ",
	nodePow:     " ^ ",
	nodeCompose: " . ",
	nodeMul:     " * ",
	nodeDiv:     " / ",
	nodeAdd:     " + ",
	nodeSub:     " - ",
	nodeEq:      " == ",
	nodeNe:      " != ",
	nodeLt:      " < ",
	nodeGt:      " > ",
	nodeLe:      " <= ",
	nodeGe:      " >= ",
	nodeAnd:     " and ",
	nodeOr:      " or ",
	nodeLambda:  " => ",
	nodeDefine:  " = ",
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, !square)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, !square)
		}
		b.WriteByte('$')
	case nodeNum:
		b.WriteString(numeral(n.num, n.den))
	case nodeImag:
		b.WriteByte('i')
	case nodeBool, nodeName:
		b.WriteString(n.name)
	case nodeConst:
		b.WriteString(n.val.String())
	case nodePercent:
		n.left.fmt(b, !square)
		b.WriteByte('%')
	case nodeFactorial:
		n.left.fmt(b, !square)
		b.WriteByte('!')
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, !square)
	case nodePlusMinus:
		b.WriteString("+/-")
		n.left.fmt(b, !square)
	case nodeNot:
		b.WriteString("not ")
		n.left.fmt(b, !square)
	case nodeTuple:
		for i, e := range n.elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.fmt(b, !square)
		}
		if len(n.elems) == 1 {
			b.WriteByte(',')
		}
	case nodeChain:
		for i, e := range n.elems {
			if i > 0 {
				b.WriteString(binops[n.ops[i-1]])
			}
			e.fmt(b, !square)
		}
	default:
		op, ok := binops[n.kind]
		if !ok {
			panic("arc: invalid node kind " + n.kind.String() + " after writing " + b.String())
		}
		n.left.fmt(b, !square)
		b.WriteString(op)
		n.right.fmt(b, !square)
	}
}

// numeral writes a literal's dividend and power-of-ten divisor back as a
// decimal numeral.
func numeral(num, den int64) string {
	s := strconv.FormatInt(num, 10)
	k := 0
	for d := den; d > 1; d /= 10 {
		k++
	}
	if k == 0 {
		return s
	}
	if len(s) <= k {
		s = strings.Repeat("0", k-len(s)+1) + s
	}
	return s[:len(s)-k] + "." + s[len(s)-k:]
}

// clone returns a deep copy of the tree rooted at n.
func (n *node) clone() *node {
	if n == nil {
		return nil
	}
	m := *n
	m.left = n.left.clone()
	m.right = n.right.clone()
	m.ops = slices.Clone(n.ops)
	if n.elems != nil {
		m.elems = make([]*node, len(n.elems))
		for i, e := range n.elems {
			m.elems[i] = e.clone()
		}
	}
	return &m
}

// subst returns a copy of the tree with every free variable named in with
// replaced by a copy of its replacement. Replacements are simultaneous. A
// lambda whose pattern binds a name hides that name from its body.
func (n *node) subst(with map[string]*node) *node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case nodeName:
		if r, ok := with[n.name]; ok {
			return r.clone()
		}
		return n.clone()
	case nodeLambda:
		inner := with
		for _, name := range n.left.patternNames() {
			if _, ok := inner[name]; !ok {
				continue
			}
			if len(inner) == len(with) {
				inner = make(map[string]*node, len(with))
				for k, v := range with {
					inner[k] = v
				}
			}
			delete(inner, name)
		}
		m := *n
		m.left = n.left.clone()
		m.right = n.right.subst(inner)
		return &m
	}
	m := *n
	m.left = n.left.subst(with)
	m.right = n.right.subst(with)
	m.ops = slices.Clone(n.ops)
	if n.elems != nil {
		m.elems = make([]*node, len(n.elems))
		for i, e := range n.elems {
			m.elems[i] = e.subst(with)
		}
	}
	return &m
}

// patternNames lists the names bound by a function pattern.
func (n *node) patternNames() []string {
	switch n.kind {
	case nodeName:
		return []string{n.name}
	case nodeTuple:
		var r []string
		for _, e := range n.elems {
			r = append(r, e.patternNames()...)
		}
		return r
	default:
		return nil
	}
}

// equal reports whether two trees have the same structure, ignoring
// positions.
func (n *node) equal(m *node) bool {
	if n == nil || m == nil {
		return n == m
	}
	if n.kind != m.kind || n.name != m.name || n.num != m.num || n.den != m.den {
		return false
	}
	if n.kind == nodeConst && !Equal(n.val, m.val) {
		return false
	}
	if len(n.elems) != len(m.elems) || !slices.Equal(n.ops, m.ops) {
		return false
	}
	for i := range n.elems {
		if !n.elems[i].equal(m.elems[i]) {
			return false
		}
	}
	return n.left.equal(m.left) && n.right.equal(m.right)
}

// free adds the names of the free variables in the tree to names.
func (n *node) free(names map[string]bool, bound map[string]int) {
	if n == nil {
		return
	}
	switch n.kind {
	case nodeName:
		if bound[n.name] == 0 {
			names[n.name] = true
		}
		return
	case nodeLambda:
		p := n.left.patternNames()
		for _, name := range p {
			bound[name]++
		}
		n.right.free(names, bound)
		for _, name := range p {
			bound[name]--
		}
		return
	case nodeDefine:
		// The defined name is not a use, but the arguments of a function
		// head are bound in the body.
		head, params := n.left, []string(nil)
		for head.kind == nodeCall {
			params = append(params, head.right.patternNames()...)
			head = head.left
		}
		if head.kind != nodeName {
			head.free(names, bound)
		}
		for _, name := range params {
			bound[name]++
		}
		n.right.free(names, bound)
		for _, name := range params {
			bound[name]--
		}
		return
	}
	n.left.free(names, bound)
	n.right.free(names, bound)
	for _, e := range n.elems {
		e.free(names, bound)
	}
}
