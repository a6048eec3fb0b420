package alias

import (
	"github.com/wybec/wybe/internal/prim"
	"github.com/wybec/wybe/internal/unionfind"
)

// escapableOps are the foreign ops that can create aliases between
// their arguments (§4.6 "Escapable prim"): move, mutate, access, cast.
var escapableOps = map[string]bool{
	"move":   true,
	"mutate": true,
	"access": true,
	"cast":   true,
}

// uniteInOut unites every (in-arg, out-arg) pair of an escapable
// foreign call's arguments (§4.6 step 2, first bullet). Literal
// arguments never alias anything and are skipped.
func uniteInOut(args []prim.PrimArg, aliasMap *unionfind.AliasMap) {
	var ins, outs []prim.PrimVarName
	for _, a := range args {
		v, ok := a.(prim.ArgVar)
		if !ok {
			continue
		}
		if v.FlowDir == prim.Out {
			outs = append(outs, v.Var)
		} else {
			ins = append(ins, v.Var)
		}
	}
	for _, in := range ins {
		for _, out := range outs {
			aliasMap.Unite(in, out)
		}
	}
}

// rewriteMutate sets the destructive flag on a `mutate` foreign call
// whose input reference is proven safe (§4.6 "Rewriting mutate"):
// mutate(inRef, outRef, size, offset, newVal...) — the in-place
// destructive-update flag is modeled as a ForeignFlag (DestructiveFlag)
// rather than a positional argument.
//
// A mutate with a pointer-valued newVal (its final argument, when one
// is present) must pass the same singleton/final-use test before the
// flag is set — implemented literally per §9's note that this
// tightening should not be "fixed" to a single check.
func rewriteMutate(fc *prim.PrimForeignCall, aliasMap *unionfind.AliasMap) *prim.PrimForeignCall {
	if fc.Name != "mutate" || fc.HasFlag(DestructiveFlag) {
		return fc
	}
	if len(fc.Args) == 0 {
		return fc
	}
	inRef, ok := fc.Args[0].(prim.ArgVar)
	if !ok || !aliasMap.Singleton(inRef.Var) || !inRef.FinalUse {
		return fc
	}
	if len(fc.Args) >= 5 {
		if newVal, isVar := fc.Args[len(fc.Args)-1].(prim.ArgVar); isVar {
			if !aliasMap.Singleton(newVal.Var) || !newVal.FinalUse {
				return fc
			}
		}
	}
	return &prim.PrimForeignCall{
		Lang:  fc.Lang,
		Name:  fc.Name,
		Flags: append(append([]prim.ForeignFlag{}, fc.Flags...), DestructiveFlag),
		Args:  fc.Args,
	}
}
