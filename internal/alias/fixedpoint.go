package alias

import (
	"fmt"

	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
	"github.com/wybec/wybe/internal/symtab"
	"github.com/wybec/wybe/internal/unionfind"
)

// AnalyzeSCC runs §4.6's bottom-up fixed point over one call-graph
// SCC. For an acyclic SCC (a single, non-self-recursive proc) this is
// a single pass; for a cyclic SCC it re-analyses every member until no
// member's ArgAliasMap changes between consecutive passes
// (unionfind.Changed — §4.6 "Change detection"). external resolves any
// call leaving this SCC (to an earlier, already-analysed SCC, or to
// another module); calls within the SCC resolve against the current
// iteration's in-progress results, so mutually- and self-recursive
// calls see their own (converging) alias map. Every member's
// ProcDef.Impl is updated in place: its Analysis is attached and any
// mutate prims proven safe are rewritten destructive.
func AnalyzeSCC(mod ident.ModSpec, members []*astir.ProcDef, external Resolver) error {
	type memberState struct {
		def   *astir.ProcDef
		spec  prim.ProcSpec
		pimpl *astir.PrimitiveImpl
	}

	states := make([]memberState, 0, len(members))
	current := make(map[string]CalleeInfo, len(members))
	for _, def := range members {
		pimpl, ok := def.Impl.(*astir.PrimitiveImpl)
		if !ok {
			return fmt.Errorf("alias: proc %s is not in primitive form", def.Name)
		}
		spec := prim.ProcSpec{Mod: mod, Name: def.Name, ID: def.ID}
		states = append(states, memberState{def: def, spec: spec, pimpl: pimpl})
		current[spec.String()] = CalleeInfo{AliasMap: unionfind.New(), Proto: pimpl.Proto}
	}

	resolve := func(spec prim.ProcSpec) (CalleeInfo, bool) {
		if info, ok := current[spec.String()]; ok {
			return info, true
		}
		if external != nil {
			return external(spec)
		}
		return CalleeInfo{}, false
	}

	// Each pass re-analyses every member's original, never-yet-rewritten
	// body: st.pimpl.Body is left untouched until the whole SCC has
	// reached its fixed point, so rewriteMutate is re-decided from
	// scratch on every pass (never short-circuited by a flag set during
	// an earlier, less-aliased pass — §4.6 "the destructive decision
	// must reflect the converged argAliasMap, not an intermediate one").
	// Only the final, stable pass's rewritten bodies are committed.
	rewrites := make([]*prim.ProcBody, len(states))
	for {
		changed := false
		for i, st := range states {
			prev := current[st.spec.String()]
			newMap, rewritten, err := AnalyzeProc(st.def, resolve)
			if err != nil {
				return err
			}
			if unionfind.Changed(prev.AliasMap, newMap) {
				changed = true
			}
			current[st.spec.String()] = CalleeInfo{AliasMap: newMap, Proto: st.pimpl.Proto}
			rewrites[i] = rewritten
		}
		if !changed {
			for i, st := range states {
				st.pimpl.Body = rewrites[i]
				st.pimpl.Analysis = &Analysis{ArgAliasMap: current[st.spec.String()].AliasMap, Proto: st.pimpl.Proto}
			}
			return nil
		}
	}
}

// AnalyzeModule runs alias analysis over every primitive-form proc
// defined in mod: it builds the intra-module call graph, computes its
// SCCs in bottom-up order, and analyses each in turn via AnalyzeSCC.
// A call into an earlier SCC of mod resolves to that callee's attached
// Analysis. external resolves calls leaving mod (to an already-loaded
// dependency); it is consulted for every call settled by neither of
// those nor by the current SCC's converging results.
func AnalyzeModule(mod *symtab.Module, external Resolver) error {
	var defs []*astir.ProcDef
	for _, overloads := range mod.Implementation.Procs {
		for _, def := range overloads {
			if _, ok := def.Impl.(*astir.PrimitiveImpl); ok {
				defs = append(defs, def)
			}
		}
	}
	graph, err := BuildCallGraph(mod.Spec, defs)
	if err != nil {
		return err
	}
	// Calls into an earlier SCC of mod resolve to that SCC's committed
	// analysis; anything else falls through to external.
	resolve := func(spec prim.ProcSpec) (CalleeInfo, bool) {
		if def, ok := graph.defOf[spec.String()]; ok {
			if info, ok := FromProcDef(def); ok {
				return info, true
			}
		}
		if external != nil {
			return external(spec)
		}
		return CalleeInfo{}, false
	}
	for _, scc := range graph.SCCs() {
		if err := AnalyzeSCC(mod.Spec, scc, resolve); err != nil {
			return err
		}
	}
	return nil
}
