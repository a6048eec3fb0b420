package unbrancher

import (
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
)

// env tracks the current SSA binding of every source name visible at
// one point in a proc body. Each If branch gets its own copy (§4.4):
// branches may rebind the same source name to different suffixes
// without affecting their sibling.
type env struct {
	namer *prim.Namer
	cur   map[ident.Ident]prim.PrimVarName
}

func newEnv(namer *prim.Namer) *env {
	return &env{namer: namer, cur: make(map[ident.Ident]prim.PrimVarName)}
}

func (e *env) copy() *env {
	c := newEnv(e.namer)
	for k, v := range e.cur {
		c.cur[k] = v
	}
	return c
}

// bind mints a fresh SSA suffix for name, records it as the current
// binding, and returns it. Used both for a parameter's initial in-flow
// binding and for any out-flow write.
func (e *env) bind(name ident.Ident) prim.PrimVarName {
	v := e.namer.Fresh(name)
	e.cur[name] = v
	return v
}

// current returns name's current binding, minting one via bind if name
// has not yet been seen (e.g. a module-level resource read before any
// local write).
func (e *env) current(name ident.Ident) prim.PrimVarName {
	if v, ok := e.cur[name]; ok {
		return v
	}
	return e.bind(name)
}

// names returns every source name currently bound, sorted for
// deterministic iteration (loop-variable lifting depends on this).
func (e *env) names() []ident.Ident {
	out := make([]ident.Ident, 0, len(e.cur))
	for n := range e.cur {
		out = append(out, n)
	}
	sortIdents(out)
	return out
}

func sortIdents(xs []ident.Ident) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
