package arc

// prelude is the list of definitions a new context evaluates into its global
// scope, in order.
var prelude = []string{
	"id x = x",
	"sq x = x^2",
	"cube x = x^3",
	"recip x = 1/x",
	"half x = x/2",
	"double x = 2x",
	"avg (x, y) = (x + y)/2",
	"flip f = (x, y) => f (y, x)",
}

// loadPrelude evaluates the prelude definitions in ctx.
func (ctx *Context) loadPrelude() {
	for _, src := range prelude {
		e, err := ParseString(src)
		if err != nil {
			panic("arc: bad prelude definition " + src + ": " + err.Error())
		}
		if _, err := ctx.Eval(e); err != nil {
			panic("arc: bad prelude definition " + src + ": " + err.Error())
		}
	}
}
