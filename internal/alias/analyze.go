package alias

import (
	"fmt"

	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/prim"
	"github.com/wybec/wybe/internal/unionfind"
)

// AnalyzeProc runs one pass of §4.6's per-proc analysis over def
// (already advanced to primitive form): it walks def's ProcBody
// top-down threading a union-find AliasMap seeded from def's formal
// non-phantom parameters, unifying through escapable foreign calls and
// through callee alias maps resolved by resolve, dropping non-formal
// variables from the map once their final use has passed, and
// rewriting any `mutate` prim whose destructive flag can now be proven
// safe. It returns the resulting AliasMap — filtered to retain only
// entries keyed on def's formal non-phantom parameters (step 4) — and
// a rewritten copy of the ProcBody (§3 "analysis may produce a
// rewritten copy"); def itself is not mutated by this call.
func AnalyzeProc(def *astir.ProcDef, resolve Resolver) (*unionfind.AliasMap, *prim.ProcBody, error) {
	pimpl, ok := def.Impl.(*astir.PrimitiveImpl)
	if !ok {
		return nil, nil, fmt.Errorf("alias: proc %s is not in primitive form", def.Name)
	}

	aliasMap := unionfind.New()
	formals := make(map[prim.PrimVarName]bool, len(pimpl.Proto.Params))
	for _, p := range pimpl.Proto.Params {
		if p.Phantom {
			continue
		}
		aliasMap.Find(p.Name) // seed a singleton class
		formals[p.Name] = true
	}

	rewritten := analyzeBody(pimpl.Body, aliasMap, formals, resolve)
	filterToFormals(aliasMap, formals)
	return aliasMap, rewritten, nil
}

// analyzeBody is the recursive worker over one ProcBody (or fork
// branch): §4.6 steps 2-3.
func analyzeBody(body *prim.ProcBody, aliasMap *unionfind.AliasMap, formals map[prim.PrimVarName]bool, resolve Resolver) *prim.ProcBody {
	out := prim.NewProcBody()
	for _, pp := range body.Prims {
		newPrim := analyzePrim(pp.Prim, aliasMap, resolve)
		out.Prims = append(out.Prims, prim.PlacedPrim{Prim: newPrim, Pos: pp.Pos})
		removeFinalUse(newPrim, aliasMap, formals)
	}

	switch f := body.Fork.(type) {
	case *prim.PrimFork:
		branches := make([]*prim.ProcBody, len(f.Branches))
		for i, br := range f.Branches {
			// Each branch starts from a fresh, empty map (§4.6 step
			// 3); whatever it unifies is reported back into the
			// caller's ongoing map by union, not by replacement, so
			// branches never see each other's discoveries.
			branchMap := unionfind.New()
			branches[i] = analyzeBody(br, branchMap, formals, resolve)
			for _, pair := range branchMap.CanonicalPairs() {
				aliasMap.Unite(pair[0], pair[1])
			}
		}
		out.Fork = &prim.PrimFork{Var: f.Var, Final: f.Final, Branches: branches}
	default:
		out.Fork = body.Fork
	}
	return out
}

// analyzePrim applies one prim's aliasing contribution to aliasMap and
// returns its (possibly rewritten) replacement.
func analyzePrim(p prim.Prim, aliasMap *unionfind.AliasMap, resolve Resolver) prim.Prim {
	switch pr := p.(type) {
	case *prim.PrimForeignCall:
		// The destructive check is decided against the aliasMap as it
		// stood *before* this prim (§4.6 "examine the current
		// aliasMap"); only once that decision is made does this
		// prim's own in/out pair get united, so a mutate's output
		// never disqualifies its own input.
		if pr.Name == "mutate" {
			rewritten := rewriteMutate(pr, aliasMap)
			uniteInOut(pr.Args, aliasMap)
			return rewritten
		}
		if escapableOps[pr.Name] {
			uniteInOut(pr.Args, aliasMap)
		}
		return pr
	case *prim.PrimCall:
		unifyFromCallee(pr, aliasMap, resolve)
		return pr
	default:
		return p
	}
}

// unifyFromCallee maps the callee's own formal-parameter unifications
// through the actual-argument positions of this call site, uniting the
// corresponding caller variables (§4.6 step 2, second bullet). Pure
// parameters and literal arguments do not contribute.
func unifyFromCallee(call *prim.PrimCall, aliasMap *unionfind.AliasMap, resolve Resolver) {
	info, ok := resolve(call.Proc)
	if !ok || info.AliasMap == nil || info.Proto == nil {
		return
	}
	paramIndex := make(map[prim.PrimVarName]int, len(info.Proto.Params))
	for i, p := range info.Proto.Params {
		paramIndex[p.Name] = i
	}
	for _, pair := range info.AliasMap.CanonicalPairs() {
		ia, oka := paramIndex[pair[0]]
		ib, okb := paramIndex[pair[1]]
		if !oka || !okb || ia >= len(call.Args) || ib >= len(call.Args) {
			continue
		}
		va, okVa := call.Args[ia].(prim.ArgVar)
		vb, okVb := call.Args[ib].(prim.ArgVar)
		if okVa && okVb {
			aliasMap.Unite(va.Var, vb.Var)
		}
	}
}

// removeFinalUse drops every variable referenced by p whose FinalUse
// flag is set and which is not a formal parameter of the current proc,
// redirecting any class it rooted (§4.6 step 2, third bullet).
func removeFinalUse(p prim.Prim, aliasMap *unionfind.AliasMap, formals map[prim.PrimVarName]bool) {
	for _, a := range argsOf(p) {
		v, ok := a.(prim.ArgVar)
		if !ok || !v.FinalUse || formals[v.Var] {
			continue
		}
		aliasMap.Delete(v.Var)
	}
}

func argsOf(p prim.Prim) []prim.PrimArg {
	switch pr := p.(type) {
	case *prim.PrimCall:
		return pr.Args
	case *prim.PrimForeignCall:
		return pr.Args
	default:
		return nil
	}
}

// filterToFormals drops every tracked key that is not one of def's
// formal non-phantom parameters (§4.6 step 4), promoting a surviving
// formal sibling as root where one exists.
func filterToFormals(aliasMap *unionfind.AliasMap, formals map[prim.PrimVarName]bool) {
	for _, key := range aliasMap.Keys() {
		if !formals[key] {
			aliasMap.Delete(key)
		}
	}
}
