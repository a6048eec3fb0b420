// Package alias implements the bottom-up, fixed-point alias analysis
// of §4.6: a union-find over each proc's formal parameters, propagated
// through call-graph SCCs, used to prove when a `mutate` foreign call's
// input reference is unaliased and in its final use — and therefore
// safe to mark destructive.
package alias

import (
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/prim"
	"github.com/wybec/wybe/internal/unionfind"
)

// DestructiveFlag is the ForeignFlag set on a `mutate` prim once
// analysis has proven its input reference safe to overwrite in place
// (§4.6 "Rewriting mutate").
const DestructiveFlag prim.ForeignFlag = "destructive"

// Analysis is the per-proc result attached to a PrimitiveImpl once
// alias analysis has run (§3 ProcDef, §4.6). ArgAliasMap is filtered
// to retain only entries keyed on the proc's formal non-phantom
// parameters (§4.6 step 4); Proto is kept alongside so callers can map
// a unified parameter pair to actual-argument positions at call sites.
type Analysis struct {
	ArgAliasMap *unionfind.AliasMap
	Proto       *astir.PrimProto
}

// IsAnalysis implements astir.Analysis.
func (*Analysis) IsAnalysis() {}

// CalleeInfo is what a Resolver hands back for a called proc: its
// (possibly still-converging, for same-SCC callees) alias map and its
// formal-parameter prototype.
type CalleeInfo struct {
	AliasMap *unionfind.AliasMap
	Proto    *astir.PrimProto
}

// Resolver looks up the CalleeInfo for a called ProcSpec. Callers
// build one from already-finalized modules (via FromProcDef) or from
// an in-progress SCC fixed-point iteration (AnalyzeSCC builds this
// part internally).
type Resolver func(prim.ProcSpec) (CalleeInfo, bool)

// FromProcDef extracts a CalleeInfo from a proc already advanced to
// primitive form with analysis attached. Returns false if def is not
// yet in primitive form or has not yet been analysed (e.g. it is still
// converging within its own SCC).
func FromProcDef(def *astir.ProcDef) (CalleeInfo, bool) {
	pimpl, ok := def.Impl.(*astir.PrimitiveImpl)
	if !ok {
		return CalleeInfo{}, false
	}
	an, ok := pimpl.Analysis.(*Analysis)
	if !ok || an == nil {
		return CalleeInfo{}, false
	}
	return CalleeInfo{AliasMap: an.ArgAliasMap, Proto: an.Proto}, true
}
