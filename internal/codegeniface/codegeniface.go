// Package codegeniface describes, at its interface only, the boundary
// the alias-annotated primitive form crosses into the LLVM emitter
// (§4.7): codegen is an external collaborator (§1 Out of scope) whose
// behaviour is deterministic given a proc already resolved and fully
// typed. Nothing in this package emits code; it exists so the rest of
// the pipeline has a concrete contract to hand its output to.
package codegeniface

import (
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/prim"
)

// Resolution is how a called ProcSpec settles: either to another known
// Wybe proc (already lowered to primitive form) or to a foreign
// declaration codegen must emit an extern for (§6 "any other language
// string denotes an external symbol").
type Resolution struct {
	Proc    *astir.ProcDef // non-nil iff this call resolves to a Wybe proc
	Foreign *ForeignDecl    // non-nil iff this call resolves to an extern symbol
}

// ForeignDecl names an external symbol a foreign call site references.
// Lang "llvm" is never a ForeignDecl target — it denotes the built-in
// operator set codegen lowers inline (§6).
type ForeignDecl struct {
	Lang string
	Name string
}

// Resolver settles every ProcSpec a primitive-form ProcBody calls, and
// is the only lookup codegen is allowed to perform outside the
// ProcDef handed to it.
type Resolver interface {
	Resolve(spec prim.ProcSpec) (Resolution, bool)
}

// Input is everything codegen needs for one proc: the alias-annotated,
// fork-structured primitive form, plus a Resolver able to settle every
// call inside it. Ready returns false if any argument in Body still
// carries an Unspecified TypeSpec — codegen's precondition that "no
// argument has an Unspecified type" (§4.7).
type Input struct {
	Def      *astir.ProcDef
	Resolver Resolver
}

// Ready reports whether in is a valid codegen input: Def must already
// be in primitive form, and every argument it touches must carry a
// concrete (non-Unspecified) TypeSpec.
func (in Input) Ready() bool {
	pimpl, ok := in.Def.Impl.(*astir.PrimitiveImpl)
	if !ok {
		return false
	}
	ready := true
	pimpl.Body.Walk(func(pp prim.PlacedPrim) {
		for _, a := range argsOf(pp.Prim) {
			if a.Type().IsUnspecified() {
				ready = false
			}
		}
	})
	return ready
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
